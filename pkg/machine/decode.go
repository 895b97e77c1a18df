// Copyright (C) 2021  Antonio Lassandro

// This program is free software: you can redistribute it and/or modify it
// under the terms of the GNU General Public License as published by the Free
// Software Foundation, either version 3 of the License, or (at your option)
// any later version.

// This program is distributed in the hope that it will be useful, but WITHOUT
// ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or
// FITNESS FOR A PARTICULAR PURPOSE.  See the GNU General Public License for
// more details.

// You should have received a copy of the GNU General Public License along
// with this program.  If not, see <http://www.gnu.org/licenses/>.

package machine

import (
	"fmt"
)

// Decode splits an opcode into its operand fields and classifies it. It never
// fails; opcodes without a handler decode to INSTRUCTION_INVALID.
//
// ---- [ class   | x     | y     | n     ]
// ---- [ class   | addr                  ]
// ---- [ class   | x     | byte          ]
func Decode(opcode uint16) Instruction {
	instr := Instruction{
		Opcode: opcode,
		Class:  uint8(opcode >> 12),
		Addr:   opcode & 0x0FFF,
		Nibble: uint8(opcode & 0x000F),
		X:      uint8((opcode >> 8) & 0xF),
		Y:      uint8((opcode >> 4) & 0xF),
		Byte:   uint8(opcode & 0x00FF),
	}

	instr.Type = classify(&instr)
	return instr
}

func classify(instr *Instruction) InstructionType {
	switch uint16(instr.Class) {
	case OP_SYS:
		switch {
		case instr.Opcode == 0x00E0:
			return INSTRUCTION_CLS
		case instr.Opcode == 0x00EE:
			return INSTRUCTION_RET
		default:
			return INSTRUCTION_SYS
		}
	case OP_JP:
		return INSTRUCTION_JP
	case OP_CALL:
		return INSTRUCTION_CALL
	case OP_SEB:
		return INSTRUCTION_SE_BYTE
	case OP_SNEB:
		return INSTRUCTION_SNE_BYTE
	case OP_SER:
		return INSTRUCTION_SE_REG
	case OP_LDB:
		return INSTRUCTION_LD_BYTE
	case OP_ADDB:
		return INSTRUCTION_ADD_BYTE
	case OP_ALU:
		switch instr.Nibble {
		case ALU_LD:
			return INSTRUCTION_LD_REG
		case ALU_OR:
			return INSTRUCTION_OR
		case ALU_AND:
			return INSTRUCTION_AND
		case ALU_XOR:
			return INSTRUCTION_XOR
		case ALU_ADD:
			return INSTRUCTION_ADD_REG
		case ALU_SUB:
			return INSTRUCTION_SUB
		case ALU_SHR:
			return INSTRUCTION_SHR
		case ALU_SUBN:
			return INSTRUCTION_SUBN
		case ALU_SHL:
			return INSTRUCTION_SHL
		}
	case OP_SNER:
		return INSTRUCTION_SNE_REG
	case OP_LDI:
		return INSTRUCTION_LD_I
	case OP_JPV0:
		return INSTRUCTION_JP_V0
	case OP_RND:
		return INSTRUCTION_RND
	case OP_DRW:
		return INSTRUCTION_DRW
	case OP_KEY:
		switch instr.Byte {
		case KEY_SKP:
			return INSTRUCTION_SKP
		case KEY_SKNP:
			return INSTRUCTION_SKNP
		}
	case OP_MISC:
		switch instr.Byte {
		case MISC_LD_VX_DT:
			return INSTRUCTION_LD_VX_DT
		case MISC_LD_VX_K:
			return INSTRUCTION_LD_VX_K
		case MISC_LD_DT_VX:
			return INSTRUCTION_LD_DT_VX
		case MISC_LD_ST_VX:
			return INSTRUCTION_LD_ST_VX
		case MISC_ADD_I_VX:
			return INSTRUCTION_ADD_I_VX
		case MISC_LD_F_VX:
			return INSTRUCTION_LD_F_VX
		case MISC_LD_B_VX:
			return INSTRUCTION_LD_B_VX
		case MISC_LD_MEM_VX:
			return INSTRUCTION_LD_MEM_VX
		case MISC_LD_VX_MEM:
			return INSTRUCTION_LD_VX_MEM
		}
	}

	return INSTRUCTION_INVALID
}

// String renders the instruction in assembler syntax.
func (instr Instruction) String() string {
	switch instr.Type {
	case INSTRUCTION_SYS:
		return fmt.Sprintf("SYS 0x%03X", instr.Addr)
	case INSTRUCTION_CLS:
		return "CLS"
	case INSTRUCTION_RET:
		return "RET"
	case INSTRUCTION_JP:
		return fmt.Sprintf("JP 0x%03X", instr.Addr)
	case INSTRUCTION_CALL:
		return fmt.Sprintf("CALL 0x%03X", instr.Addr)
	case INSTRUCTION_SE_BYTE:
		return fmt.Sprintf("SE V%X, 0x%02X", instr.X, instr.Byte)
	case INSTRUCTION_SNE_BYTE:
		return fmt.Sprintf("SNE V%X, 0x%02X", instr.X, instr.Byte)
	case INSTRUCTION_SE_REG:
		return fmt.Sprintf("SE V%X, V%X", instr.X, instr.Y)
	case INSTRUCTION_LD_BYTE:
		return fmt.Sprintf("LD V%X, 0x%02X", instr.X, instr.Byte)
	case INSTRUCTION_ADD_BYTE:
		return fmt.Sprintf("ADD V%X, 0x%02X", instr.X, instr.Byte)
	case INSTRUCTION_LD_REG:
		return fmt.Sprintf("LD V%X, V%X", instr.X, instr.Y)
	case INSTRUCTION_OR:
		return fmt.Sprintf("OR V%X, V%X", instr.X, instr.Y)
	case INSTRUCTION_AND:
		return fmt.Sprintf("AND V%X, V%X", instr.X, instr.Y)
	case INSTRUCTION_XOR:
		return fmt.Sprintf("XOR V%X, V%X", instr.X, instr.Y)
	case INSTRUCTION_ADD_REG:
		return fmt.Sprintf("ADD V%X, V%X", instr.X, instr.Y)
	case INSTRUCTION_SUB:
		return fmt.Sprintf("SUB V%X, V%X", instr.X, instr.Y)
	case INSTRUCTION_SHR:
		return fmt.Sprintf("SHR V%X", instr.X)
	case INSTRUCTION_SUBN:
		return fmt.Sprintf("SUBN V%X, V%X", instr.X, instr.Y)
	case INSTRUCTION_SHL:
		return fmt.Sprintf("SHL V%X", instr.X)
	case INSTRUCTION_SNE_REG:
		return fmt.Sprintf("SNE V%X, V%X", instr.X, instr.Y)
	case INSTRUCTION_LD_I:
		return fmt.Sprintf("LD I, 0x%03X", instr.Addr)
	case INSTRUCTION_JP_V0:
		return fmt.Sprintf("JP V0, 0x%03X", instr.Addr)
	case INSTRUCTION_RND:
		return fmt.Sprintf("RND V%X, 0x%02X", instr.X, instr.Byte)
	case INSTRUCTION_DRW:
		return fmt.Sprintf("DRW V%X, V%X, %d", instr.X, instr.Y, instr.Nibble)
	case INSTRUCTION_SKP:
		return fmt.Sprintf("SKP V%X", instr.X)
	case INSTRUCTION_SKNP:
		return fmt.Sprintf("SKNP V%X", instr.X)
	case INSTRUCTION_LD_VX_DT:
		return fmt.Sprintf("LD V%X, DT", instr.X)
	case INSTRUCTION_LD_VX_K:
		return fmt.Sprintf("LD V%X, K", instr.X)
	case INSTRUCTION_LD_DT_VX:
		return fmt.Sprintf("LD DT, V%X", instr.X)
	case INSTRUCTION_LD_ST_VX:
		return fmt.Sprintf("LD ST, V%X", instr.X)
	case INSTRUCTION_ADD_I_VX:
		return fmt.Sprintf("ADD I, V%X", instr.X)
	case INSTRUCTION_LD_F_VX:
		return fmt.Sprintf("LD F, V%X", instr.X)
	case INSTRUCTION_LD_B_VX:
		return fmt.Sprintf("LD B, V%X", instr.X)
	case INSTRUCTION_LD_MEM_VX:
		return fmt.Sprintf("LD [I], V%X", instr.X)
	case INSTRUCTION_LD_VX_MEM:
		return fmt.Sprintf("LD V%X, [I]", instr.X)
	}

	return fmt.Sprintf("DW 0x%04X", instr.Opcode)
}
