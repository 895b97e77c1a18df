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

const (
	MEMSPACE_FONT    uint16 = 0x0000
	MEMSPACE_PROGRAM uint16 = 0x0200
	MEMSPACE_END     uint16 = 0x1000
)

// Largest program image that fits between MEMSPACE_PROGRAM and MEMSPACE_END.
const MAX_PROGRAM_SIZE = int(MEMSPACE_END - MEMSPACE_PROGRAM)

const (
	REG_COUNT   = 16
	REG_FLAG    = 0xF
	STACK_DEPTH = 16
)

const (
	TIMER_HZ         = 60
	DEFAULT_CLOCK_HZ = 700
	MAX_CLOCK_HZ     = 1000000000
)

const (
	GLYPH_SIZE  = 5
	GLYPH_COUNT = 16
)

// Opcode classes (top nibble)
const (
	OP_SYS  uint16 = 0x0
	OP_JP   uint16 = 0x1
	OP_CALL uint16 = 0x2
	OP_SEB  uint16 = 0x3
	OP_SNEB uint16 = 0x4
	OP_SER  uint16 = 0x5
	OP_LDB  uint16 = 0x6
	OP_ADDB uint16 = 0x7
	OP_ALU  uint16 = 0x8
	OP_SNER uint16 = 0x9
	OP_LDI  uint16 = 0xA
	OP_JPV0 uint16 = 0xB
	OP_RND  uint16 = 0xC
	OP_DRW  uint16 = 0xD
	OP_KEY  uint16 = 0xE
	OP_MISC uint16 = 0xF
)

// OP_ALU selectors (low nibble)
const (
	ALU_LD   uint8 = 0x0
	ALU_OR   uint8 = 0x1
	ALU_AND  uint8 = 0x2
	ALU_XOR  uint8 = 0x3
	ALU_ADD  uint8 = 0x4
	ALU_SUB  uint8 = 0x5
	ALU_SHR  uint8 = 0x6
	ALU_SUBN uint8 = 0x7
	ALU_SHL  uint8 = 0xE
)

// OP_SYS, OP_KEY and OP_MISC selectors (low byte)
const (
	SYS_CLS uint8 = 0xE0
	SYS_RET uint8 = 0xEE

	KEY_SKP  uint8 = 0x9E
	KEY_SKNP uint8 = 0xA1

	MISC_LD_VX_DT  uint8 = 0x07
	MISC_LD_VX_K   uint8 = 0x0A
	MISC_LD_DT_VX  uint8 = 0x15
	MISC_LD_ST_VX  uint8 = 0x18
	MISC_ADD_I_VX  uint8 = 0x1E
	MISC_LD_F_VX   uint8 = 0x29
	MISC_LD_B_VX   uint8 = 0x33
	MISC_LD_MEM_VX uint8 = 0x55
	MISC_LD_VX_MEM uint8 = 0x65
)

const (
	INSTRUCTION_INVALID InstructionType = iota
	INSTRUCTION_SYS
	INSTRUCTION_CLS
	INSTRUCTION_RET
	INSTRUCTION_JP
	INSTRUCTION_CALL
	INSTRUCTION_SE_BYTE
	INSTRUCTION_SNE_BYTE
	INSTRUCTION_SE_REG
	INSTRUCTION_LD_BYTE
	INSTRUCTION_ADD_BYTE
	INSTRUCTION_LD_REG
	INSTRUCTION_OR
	INSTRUCTION_AND
	INSTRUCTION_XOR
	INSTRUCTION_ADD_REG
	INSTRUCTION_SUB
	INSTRUCTION_SHR
	INSTRUCTION_SUBN
	INSTRUCTION_SHL
	INSTRUCTION_SNE_REG
	INSTRUCTION_LD_I
	INSTRUCTION_JP_V0
	INSTRUCTION_RND
	INSTRUCTION_DRW
	INSTRUCTION_SKP
	INSTRUCTION_SKNP
	INSTRUCTION_LD_VX_DT
	INSTRUCTION_LD_VX_K
	INSTRUCTION_LD_DT_VX
	INSTRUCTION_LD_ST_VX
	INSTRUCTION_ADD_I_VX
	INSTRUCTION_LD_F_VX
	INSTRUCTION_LD_B_VX
	INSTRUCTION_LD_MEM_VX
	INSTRUCTION_LD_VX_MEM
)

const (
	MODE_RUNNING Mode = iota
	MODE_AWAITING_KEY
)

// Hexadecimal digit glyphs, 0 through F, 5 bytes each.
var FONT = [GLYPH_COUNT * GLYPH_SIZE]byte{
	0xF0, 0x90, 0x90, 0x90, 0xF0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xF0, 0x10, 0xF0, 0x80, 0xF0, // 2
	0xF0, 0x10, 0xF0, 0x10, 0xF0, // 3
	0x90, 0x90, 0xF0, 0x10, 0x10, // 4
	0xF0, 0x80, 0xF0, 0x10, 0xF0, // 5
	0xF0, 0x80, 0xF0, 0x90, 0xF0, // 6
	0xF0, 0x10, 0x20, 0x40, 0x40, // 7
	0xF0, 0x90, 0xF0, 0x90, 0xF0, // 8
	0xF0, 0x90, 0xF0, 0x10, 0xF0, // 9
	0xF0, 0x90, 0xF0, 0x90, 0x90, // A
	0xE0, 0x90, 0xE0, 0x90, 0xE0, // B
	0xF0, 0x80, 0x80, 0x80, 0xF0, // C
	0xE0, 0x90, 0x90, 0x90, 0xE0, // D
	0xF0, 0x80, 0xF0, 0x80, 0xF0, // E
	0xF0, 0x80, 0xF0, 0x80, 0x80, // F
}
