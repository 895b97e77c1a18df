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

package assembler

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/lassandro/gochip8/pkg/encoding"
	"github.com/lassandro/gochip8/pkg/machine"
)

func parseDirective(ident string) DirectiveType {
	// Bare DB/DW are accepted so disassembly listings reassemble
	if strings.EqualFold(ident, ".ORG") {
		return DIRECTIVE_ORG
	} else if strings.EqualFold(ident, ".DB") || strings.EqualFold(ident, "DB") {
		return DIRECTIVE_DB
	} else if strings.EqualFold(ident, ".DW") || strings.EqualFold(ident, "DW") {
		return DIRECTIVE_DW
	} else if strings.EqualFold(ident, ".END") {
		return DIRECTIVE_END
	}

	return DIRECTIVE_INVALID
}

func parseInstruction(ident string) InstructionType {
	if strings.EqualFold(ident, "CLS") {
		return INSTRUCTION_CLS
	} else if strings.EqualFold(ident, "RET") {
		return INSTRUCTION_RET
	} else if strings.EqualFold(ident, "SYS") {
		return INSTRUCTION_SYS
	} else if strings.EqualFold(ident, "JP") {
		return INSTRUCTION_JP
	} else if strings.EqualFold(ident, "CALL") {
		return INSTRUCTION_CALL
	} else if strings.EqualFold(ident, "SE") {
		return INSTRUCTION_SE
	} else if strings.EqualFold(ident, "SNE") {
		return INSTRUCTION_SNE
	} else if strings.EqualFold(ident, "LD") {
		return INSTRUCTION_LD
	} else if strings.EqualFold(ident, "ADD") {
		return INSTRUCTION_ADD
	} else if strings.EqualFold(ident, "OR") {
		return INSTRUCTION_OR
	} else if strings.EqualFold(ident, "AND") {
		return INSTRUCTION_AND
	} else if strings.EqualFold(ident, "XOR") {
		return INSTRUCTION_XOR
	} else if strings.EqualFold(ident, "SUB") {
		return INSTRUCTION_SUB
	} else if strings.EqualFold(ident, "SHR") {
		return INSTRUCTION_SHR
	} else if strings.EqualFold(ident, "SUBN") {
		return INSTRUCTION_SUBN
	} else if strings.EqualFold(ident, "SHL") {
		return INSTRUCTION_SHL
	} else if strings.EqualFold(ident, "RND") {
		return INSTRUCTION_RND
	} else if strings.EqualFold(ident, "DRW") {
		return INSTRUCTION_DRW
	} else if strings.EqualFold(ident, "SKP") {
		return INSTRUCTION_SKP
	} else if strings.EqualFold(ident, "SKNP") {
		return INSTRUCTION_SKNP
	}

	return INSTRUCTION_INVALID
}

func parseLiteral(token *Token, bits LiteralType) (uint16, error) {
	result, err := encoding.DecodeLiteral(token.Value)

	if err != nil {
		return 0, &InvalidLiteralError{token.Position}
	}

	if bits < LITERAL_WORD {
		limit := uint16(1) << bits
		negative := strings.HasPrefix(strings.TrimPrefix(token.Value, "#"), "-")

		if negative && int32(int16(result)) < -int32(limit>>1) {
			return 0, &OversizedLiteralError{
				token.Position, limit - 1, int16(result),
			}
		} else if !negative && result >= limit {
			return 0, &OversizedLiteralError{token.Position, limit - 1, result}
		}

		result &= limit - 1
	}

	return result, nil
}

func parseRegister(token *Token) (uint16, bool) {
	ident := token.Value

	if len(ident) != 2 || (ident[0] != 'V' && ident[0] != 'v') {
		return 0, false
	}

	reg, err := strconv.ParseUint(ident[1:], 16, 8)

	if err != nil {
		return 0, false
	}

	return uint16(reg), true
}

func parseOperand(token *Token) OperandType {
	switch token.Type {
	case TOKEN_LITERAL:
		return OPERAND_LITERAL
	case TOKEN_IDENT, TOKEN_LABEL:
		break
	default:
		return OPERAND_INVALID
	}

	if _, ok := parseRegister(token); ok {
		return OPERAND_REGISTER
	}

	switch strings.ToUpper(token.Value) {
	case "I":
		return OPERAND_I
	case "[I]":
		return OPERAND_INDIRECT
	case "DT":
		return OPERAND_DT
	case "ST":
		return OPERAND_ST
	case "K":
		return OPERAND_K
	case "F":
		return OPERAND_F
	case "B":
		return OPERAND_B
	}

	return OPERAND_LABEL
}

// Splits a single source line into tokens
func scanLine(line string, cursor Cursor) (tokens []Token, errs []error) {
	var builder strings.Builder
	var tokenStart int = 0
	var tokenType TokenType = TOKEN_NONE

	flush := func() {
		if builder.Len() > 0 {
			var token Token
			token.Position = Cursor{
				Line:     cursor.Line,
				Column:   tokenStart,
				Byte:     cursor.LineByte + int64(tokenStart-1),
				Size:     int64(builder.Len()),
				LineByte: cursor.LineByte,
			}
			token.Type = tokenType
			token.Value = builder.String()
			tokens = append(tokens, token)
			builder.Reset()
		}

		tokenType = TOKEN_NONE
	}

	for column, char := range line {
		cursor.Column = column + 1

		// String Literal body
		if tokenType == TOKEN_STRING {
			builder.WriteRune(char)

			if char == '"' {
				flush()
			}

			continue
		}

		if tokenType == TOKEN_NONE {
			tokenStart = cursor.Column
		}

		switch {
		// Whitespace and Operand Separator
		case unicode.IsSpace(char), char == ',':
			flush()
			continue

		// Comments
		case char == ';':
			flush()
			return

		// Label terminator (i.e. LOOP:), only valid on the first token
		case char == ':':
			if tokenType != TOKEN_IDENT || len(tokens) > 0 {
				errs = append(errs, &UnexpectedCharacterError{cursor, char})
			} else {
				tokenType = TOKEN_LABEL
			}

			flush()
			continue

		// String Literal
		case char == '"':
			if tokenType != TOKEN_NONE {
				errs = append(errs, &UnexpectedCharacterError{cursor, char})
				continue
			}

			tokenType = TOKEN_STRING

		// Assembler Directives
		case char == '.':
			if tokenType != TOKEN_NONE {
				errs = append(errs, &UnexpectedCharacterError{cursor, char})
				continue
			}

			tokenType = TOKEN_DIRECTIVE

		// Base 10 Literal (i.e. #42) and Numeric Sign
		case char == '#', char == '-':
			if tokenType == TOKEN_NONE {
				tokenType = TOKEN_LITERAL
			} else if tokenType != TOKEN_LITERAL {
				errs = append(errs, &UnexpectedCharacterError{cursor, char})
				continue
			}

		// Numeric Literal (i.e. 42, 0x2A, 0b101010)
		case unicode.IsDigit(char):
			if tokenType == TOKEN_NONE {
				tokenType = TOKEN_LITERAL
			}

		// Indirect Operand (i.e. [I])
		case char == '[':
			if tokenType != TOKEN_NONE {
				errs = append(errs, &UnexpectedCharacterError{cursor, char})
				continue
			}

			tokenType = TOKEN_IDENT

		case char == ']':
			if tokenType != TOKEN_IDENT {
				errs = append(errs, &UnexpectedCharacterError{cursor, char})
				continue
			}

		// Identifier
		case char == '_', unicode.IsLetter(char):
			if char > unicode.MaxASCII {
				errs = append(errs, &OversizedCharacterError{cursor})
				continue
			}

			if tokenType == TOKEN_NONE {
				tokenType = TOKEN_IDENT
			}

		default:
			if char > unicode.MaxASCII {
				errs = append(errs, &OversizedCharacterError{cursor})
			} else {
				errs = append(errs, &UnexpectedCharacterError{cursor, char})
			}

			continue
		}

		builder.WriteRune(char)
	}

	if tokenType == TOKEN_STRING {
		errs = append(errs, &InvalidStringError{cursor})
	}

	flush()
	return
}

// Assembles CHIP-8 source into a program image loaded at MEMSPACE_PROGRAM.
// When symtable is non-nil it receives the source offset of every emitted
// statement and the address of every label.
func Assemble(input io.Reader, symtable *SymTable) (result []byte, errs []error) {
	type LabelRef struct {
		Label    string
		Addr     uint16
		Type     RefType
		Position Cursor
	}

	var labels = make(map[string]uint16)
	var labelRefs []LabelRef

	var image [machine.MEMSPACE_END]byte
	var program = uint32(machine.MEMSPACE_PROGRAM)
	var end = program

	var scanner = bufio.NewScanner(input)

	var lineNum int = 1
	var lineByte int64 = 0

	errs = make([]error, 0)

	emit := func(values ...byte) bool {
		if program+uint32(len(values)) > uint32(machine.MEMSPACE_END) {
			return false
		}

		for _, value := range values {
			image[program] = value
			program++
		}

		if program > end {
			end = program
		}

		return true
	}

	// Process:
	// - Parse line
	// - Assemble line
	for scanner.Scan() {
		line := scanner.Text()

		cursor := Cursor{
			Line:     lineNum,
			Byte:     lineByte,
			Size:     int64(len(line)),
			LineByte: lineByte,
		}

		lineNum++
		lineByte += int64(len(line) + 1)

		tokens, lineErrs := scanLine(line, cursor)

		// Pass any potential assembler errors if we already had parser errors
		if len(lineErrs) > 0 {
			errs = append(errs, lineErrs...)
			continue
		}

		if len(tokens) == 0 {
			continue
		}

		// Assemble line
		// - Write instruction bytes to the image
		// - Save label refs for unknown labels
		// - Type check instruction arguments
		var label *Token = nil
		var directive DirectiveType
		var instruction InstructionType
		var keyword *Token = nil
		var operands []Token

		var scratch uint16 = 0

		// A colon always marks a label, even one spelled like a mnemonic
		if tokens[0].Type == TOKEN_LABEL {
			label = &tokens[0]
		} else if instruction = parseInstruction(tokens[0].Value); instruction != INSTRUCTION_INVALID {
			keyword = &tokens[0]
			operands = tokens[1:]
		} else if directive = parseDirective(tokens[0].Value); directive != DIRECTIVE_INVALID {
			keyword = &tokens[0]
			operands = tokens[1:]
		} else {
			label = &tokens[0]
		}

		if label != nil {
			if parseOperand(label) != OPERAND_LABEL {
				errs = append(
					errs, &UnknownIdentifierError{label.Position, label.Value},
				)

				continue
			}

			if _, exists := labels[label.Value]; !exists {
				labels[label.Value] = uint16(program)
			} else {
				errs = append(
					errs, &RedeclaredLabelError{label.Position, label.Value},
				)
			}

			// No need to assemble label-only statements
			if len(tokens) == 1 {
				continue
			}

			if instruction = parseInstruction(tokens[1].Value); instruction != INSTRUCTION_INVALID {
				keyword = &tokens[1]
				operands = tokens[2:]
			} else if directive = parseDirective(tokens[1].Value); directive != DIRECTIVE_INVALID {
				keyword = &tokens[1]
				operands = tokens[2:]
			}
		}

		if keyword == nil {
			errs = append(
				errs,
				&UnknownIdentifierError{tokens[1].Position, tokens[1].Value},
			)

			continue
		}

		argc := func(counts ...int) bool {
			for _, count := range counts {
				if len(operands) == count {
					return true
				}
			}

			errs = append(
				errs,
				&InvalidNumArgumentsError{
					keyword.Position, counts[0], len(operands),
				},
			)

			return false
		}

		register := func(i int) uint16 {
			if operands[i].Type != TOKEN_IDENT {
				errs = append(
					errs,
					&InvalidOperandError{
						operands[i].Position,
						[]TokenType{TOKEN_IDENT},
						operands[i].Type,
					},
				)

				return 0
			}

			reg, ok := parseRegister(&operands[i])

			if !ok {
				errs = append(errs, &InvalidRegisterError{operands[i].Position})
			}

			return reg
		}

		literal := func(i int, bits LiteralType) uint16 {
			if operands[i].Type != TOKEN_LITERAL {
				errs = append(
					errs,
					&InvalidOperandError{
						operands[i].Position,
						[]TokenType{TOKEN_LITERAL},
						operands[i].Type,
					},
				)

				return 0
			}

			value, err := parseLiteral(&operands[i], bits)

			if err != nil {
				errs = append(errs, err)
			}

			return value
		}

		address := func(i int) uint16 {
			switch parseOperand(&operands[i]) {
			case OPERAND_LITERAL:
				return literal(i, LITERAL_ADDR)
			case OPERAND_LABEL:
				labelRefs = append(
					labelRefs,
					LabelRef{
						operands[i].Value,
						uint16(program),
						REF_ADDR,
						operands[i].Position,
					},
				)

				return 0
			}

			errs = append(
				errs,
				&InvalidOperandError{
					operands[i].Position,
					[]TokenType{TOKEN_LITERAL, TOKEN_IDENT},
					operands[i].Type,
				},
			)

			return 0
		}

		if directive == DIRECTIVE_END {
			argc(0)
			break
		}

		switch directive {
		// .ORG #
		case DIRECTIVE_ORG:
			if !argc(1) {
				break
			}

			origin := literal(0, LITERAL_WORD)

			if origin < machine.MEMSPACE_PROGRAM || origin >= machine.MEMSPACE_END {
				errs = append(
					errs, &InvalidOriginError{operands[0].Position, origin},
				)

				break
			}

			program = uint32(origin)

		// .DB #, "...", ...
		case DIRECTIVE_DB:
			if len(operands) == 0 {
				argc(1)
				break
			}

			if symtable != nil {
				symtable.Symbols[uint16(program)] = cursor.LineByte
			}

			for i := range operands {
				var values []byte

				switch operands[i].Type {
				case TOKEN_STRING:
					s, err := strconv.Unquote(operands[i].Value)

					if err != nil {
						errs = append(
							errs, &InvalidStringError{operands[i].Position},
						)
					}

					for _, c := range s {
						if c > unicode.MaxASCII {
							errs = append(
								errs,
								&OversizedCharacterError{operands[i].Position},
							)

							break
						}

						values = append(values, byte(c))
					}

				default:
					values = append(values, byte(literal(i, LITERAL_BYTE)))
				}

				if !emit(values...) {
					errs = append(errs, &OversizedBinaryError{})
					return
				}
			}

		// .DW #, LABEL, ...
		case DIRECTIVE_DW:
			if len(operands) == 0 {
				argc(1)
				break
			}

			if symtable != nil {
				symtable.Symbols[uint16(program)] = cursor.LineByte
			}

			for i := range operands {
				var value uint16

				if parseOperand(&operands[i]) == OPERAND_LABEL {
					labelRefs = append(
						labelRefs,
						LabelRef{
							operands[i].Value,
							uint16(program),
							REF_WORD,
							operands[i].Position,
						},
					)
				} else {
					value = literal(i, LITERAL_WORD)
				}

				if !emit(encoding.SplitWord(value)) {
					errs = append(errs, &OversizedBinaryError{})
					return
				}
			}
		}

		switch instruction {
		// CLS  |0000    |0000   |1110   |0000   | Clear display
		// RET  |0000    |0000   |1110   |1110   | Return from subroutine
		// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
		case INSTRUCTION_CLS, INSTRUCTION_RET:
			if !argc(0) {
				break
			}

			if instruction == INSTRUCTION_CLS {
				scratch = uint16(machine.SYS_CLS)
			} else {
				scratch = uint16(machine.SYS_RET)
			}

		// SYS  |0000    |addr                   | Machine routine
		// CALL |0010    |addr                   | Call subroutine
		// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
		case INSTRUCTION_SYS, INSTRUCTION_CALL:
			if !argc(1) {
				break
			}

			if instruction == INSTRUCTION_SYS {
				scratch = machine.OP_SYS << 12
			} else {
				scratch = machine.OP_CALL << 12
			}

			scratch |= address(0)

		// JP   |0001    |addr                   | Jump
		// JP   |1011    |addr                   | Jump to V0 + addr
		// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
		case INSTRUCTION_JP:
			if !argc(1, 2) {
				break
			}

			if len(operands) == 1 {
				scratch = machine.OP_JP<<12 | address(0)
				break
			}

			if reg := register(0); reg != 0 {
				errs = append(errs, &InvalidRegisterError{operands[0].Position})
			}

			scratch = machine.OP_JPV0<<12 | address(1)

		// SE   |0011    |x      |byte           | Skip if Vx == byte
		// SE   |0101    |x      |y      |0000   | Skip if Vx == Vy
		// SNE  |0100    |x      |byte           | Skip if Vx != byte
		// SNE  |1001    |x      |y      |0000   | Skip if Vx != Vy
		// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
		case INSTRUCTION_SE, INSTRUCTION_SNE:
			if !argc(2) {
				break
			}

			x := register(0)

			if parseOperand(&operands[1]) == OPERAND_REGISTER {
				if instruction == INSTRUCTION_SE {
					scratch = machine.OP_SER << 12
				} else {
					scratch = machine.OP_SNER << 12
				}

				scratch |= x<<8 | register(1)<<4
			} else {
				if instruction == INSTRUCTION_SE {
					scratch = machine.OP_SEB << 12
				} else {
					scratch = machine.OP_SNEB << 12
				}

				scratch |= x<<8 | literal(1, LITERAL_BYTE)
			}

		// LD   |0110    |x      |byte           | Vx = byte
		// LD   |1000    |x      |y      |0000   | Vx = Vy
		// LD   |1010    |addr                   | I = addr
		// LD   |1111    |x      |selector       | Timers, keys, font, BCD, [I]
		// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
		case INSTRUCTION_LD:
			if !argc(2) {
				break
			}

			switch parseOperand(&operands[0]) {
			case OPERAND_REGISTER:
				x := register(0)

				switch parseOperand(&operands[1]) {
				case OPERAND_REGISTER:
					scratch = machine.OP_ALU<<12 | x<<8 | register(1)<<4 |
						uint16(machine.ALU_LD)
				case OPERAND_DT:
					scratch = machine.OP_MISC<<12 | x<<8 |
						uint16(machine.MISC_LD_VX_DT)
				case OPERAND_K:
					scratch = machine.OP_MISC<<12 | x<<8 |
						uint16(machine.MISC_LD_VX_K)
				case OPERAND_INDIRECT:
					scratch = machine.OP_MISC<<12 | x<<8 |
						uint16(machine.MISC_LD_VX_MEM)
				default:
					scratch = machine.OP_LDB<<12 | x<<8 | literal(1, LITERAL_BYTE)
				}

			case OPERAND_I:
				scratch = machine.OP_LDI<<12 | address(1)

			case OPERAND_DT:
				scratch = machine.OP_MISC<<12 | register(1)<<8 |
					uint16(machine.MISC_LD_DT_VX)

			case OPERAND_ST:
				scratch = machine.OP_MISC<<12 | register(1)<<8 |
					uint16(machine.MISC_LD_ST_VX)

			case OPERAND_F:
				scratch = machine.OP_MISC<<12 | register(1)<<8 |
					uint16(machine.MISC_LD_F_VX)

			case OPERAND_B:
				scratch = machine.OP_MISC<<12 | register(1)<<8 |
					uint16(machine.MISC_LD_B_VX)

			case OPERAND_INDIRECT:
				scratch = machine.OP_MISC<<12 | register(1)<<8 |
					uint16(machine.MISC_LD_MEM_VX)

			case OPERAND_LABEL:
				errs = append(errs, &InvalidRegisterError{operands[0].Position})

			default:
				errs = append(
					errs,
					&InvalidOperandError{
						operands[0].Position,
						[]TokenType{TOKEN_IDENT},
						operands[0].Type,
					},
				)
			}

		// ADD  |0111    |x      |byte           | Vx += byte
		// ADD  |1000    |x      |y      |0100   | Vx += Vy, VF = carry
		// ADD  |1111    |x      |0001   |1110   | I += Vx
		// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
		case INSTRUCTION_ADD:
			if !argc(2) {
				break
			}

			if parseOperand(&operands[0]) == OPERAND_I {
				scratch = machine.OP_MISC<<12 | register(1)<<8 |
					uint16(machine.MISC_ADD_I_VX)
				break
			}

			x := register(0)

			if parseOperand(&operands[1]) == OPERAND_REGISTER {
				scratch = machine.OP_ALU<<12 | x<<8 | register(1)<<4 |
					uint16(machine.ALU_ADD)
			} else {
				scratch = machine.OP_ADDB<<12 | x<<8 | literal(1, LITERAL_BYTE)
			}

		// OR   |1000    |x      |y      |0001   | Vx |= Vy
		// AND  |1000    |x      |y      |0010   | Vx &= Vy
		// XOR  |1000    |x      |y      |0011   | Vx ^= Vy
		// SUB  |1000    |x      |y      |0101   | Vx -= Vy, VF = no borrow
		// SUBN |1000    |x      |y      |0111   | Vx = Vy - Vx, VF = no borrow
		// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
		case INSTRUCTION_OR,
			INSTRUCTION_AND,
			INSTRUCTION_XOR,
			INSTRUCTION_SUB,
			INSTRUCTION_SUBN:
			if !argc(2) {
				break
			}

			var selector uint8

			switch instruction {
			case INSTRUCTION_OR:
				selector = machine.ALU_OR
			case INSTRUCTION_AND:
				selector = machine.ALU_AND
			case INSTRUCTION_XOR:
				selector = machine.ALU_XOR
			case INSTRUCTION_SUB:
				selector = machine.ALU_SUB
			case INSTRUCTION_SUBN:
				selector = machine.ALU_SUBN
			}

			scratch = machine.OP_ALU<<12 | register(0)<<8 | register(1)<<4 |
				uint16(selector)

		// SHR  |1000    |x      |y      |0110   | Vx >>= 1, VF = bit 0
		// SHL  |1000    |x      |y      |1110   | Vx <<= 1, VF = bit 7
		// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
		case INSTRUCTION_SHR, INSTRUCTION_SHL:
			if !argc(1, 2) {
				break
			}

			scratch = machine.OP_ALU<<12 | register(0)<<8

			if len(operands) == 2 {
				scratch |= register(1) << 4
			}

			if instruction == INSTRUCTION_SHR {
				scratch |= uint16(machine.ALU_SHR)
			} else {
				scratch |= uint16(machine.ALU_SHL)
			}

		// RND  |1100    |x      |byte           | Vx = random & byte
		// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
		case INSTRUCTION_RND:
			if !argc(2) {
				break
			}

			scratch = machine.OP_RND<<12 | register(0)<<8 | literal(1, LITERAL_BYTE)

		// DRW  |1101    |x      |y      |n      | Draw n-row sprite at I
		// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
		case INSTRUCTION_DRW:
			if !argc(3) {
				break
			}

			scratch = machine.OP_DRW<<12 | register(0)<<8 | register(1)<<4 |
				literal(2, LITERAL_NIBBLE)

		// SKP  |1110    |x      |1001   |1110   | Skip if key Vx down
		// SKNP |1110    |x      |1010   |0001   | Skip if key Vx up
		// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
		case INSTRUCTION_SKP, INSTRUCTION_SKNP:
			if !argc(1) {
				break
			}

			scratch = machine.OP_KEY<<12 | register(0)<<8

			if instruction == INSTRUCTION_SKP {
				scratch |= uint16(machine.KEY_SKP)
			} else {
				scratch |= uint16(machine.KEY_SKNP)
			}
		}

		if instruction != INSTRUCTION_INVALID {
			if symtable != nil {
				symtable.Symbols[uint16(program)] = cursor.LineByte
			}

			if !emit(encoding.SplitWord(scratch)) {
				errs = append(errs, &OversizedBinaryError{})
				return
			}
		}
	}

	if err := scanner.Err(); err != nil {
		errs = append(errs, err)
	}

	// Label
	// - Validate and resolve label references
	// - Add labels to symbol table
	for _, ref := range labelRefs {
		addr, exists := labels[ref.Label]

		if !exists {
			errs = append(errs, &UnknownLabelError{ref.Position, ref.Label})
			continue
		}

		switch ref.Type {
		case REF_ADDR:
			if addr > 0x0FFF {
				errs = append(
					errs, &OversizedLiteralError{ref.Position, 0x0FFF, addr},
				)

				continue
			}

			image[ref.Addr] |= byte(addr >> 8)
			image[ref.Addr+1] |= byte(addr)

		case REF_WORD:
			image[ref.Addr], image[ref.Addr+1] = encoding.SplitWord(addr)
		}
	}

	if symtable != nil {
		for label, addr := range labels {
			symtable.Labels[addr] = label
		}
	}

	result = make([]byte, end-uint32(machine.MEMSPACE_PROGRAM))
	copy(result, image[machine.MEMSPACE_PROGRAM:end])

	return
}
