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

package assembler_test

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"github.com/lassandro/gochip8/pkg/assembler"
)

type testCase struct {
	Name     string
	Input    string
	Output   map[uint16]uint16
	Size     int
	SymTable *assembler.SymTable
}

type failCase struct {
	Name  string
	Input string
	Error error
}

func testAssemblerSuccess(t *testing.T, test *testCase) {
	var symtarget *assembler.SymTable = nil

	if test.SymTable != nil {
		symtarget = assembler.NewSymTable("")
	}

	result, errs := assembler.Assemble(strings.NewReader(test.Input), symtarget)

	if len(errs) > 0 {
		t.Fatal(errs[0])
	}

	if test.Size != 0 && len(result) != test.Size {
		t.Fatalf(
			"Invalid image length\n"+
				"want:%d\n"+
				"have:%d",
			test.Size,
			len(result),
		)
	}

	expected := make(map[int]byte)

	for addr, word := range test.Output {
		offset := int(addr) - 0x200
		expected[offset] = byte(word >> 8)
		expected[offset+1] = byte(word)
	}

	for offset := 0; offset < len(result); offset++ {
		have := result[offset]
		want := expected[offset]

		if have != want {
			t.Fatalf(
				"Instruction encoding mismatch\n"+
					"want:%#02x (image[%#04x])\n"+
					"have:%#02x",
				want,
				offset+0x200,
				have,
			)
		}
	}

	for offset, want := range expected {
		if offset >= len(result) && want != 0 {
			t.Fatalf(
				"Missing instruction\n"+
					"want:%#02x (image[%#04x])\n"+
					"have:<nil>",
				want,
				offset+0x200,
			)
		}
	}

	if test.SymTable != nil {
		if !reflect.DeepEqual(test.SymTable.Symbols, symtarget.Symbols) {
			t.Fatalf(
				"Symtable encoding mismatch\nwant:%v\nhave:%v",
				test.SymTable.Symbols,
				symtarget.Symbols,
			)
		}

		if !reflect.DeepEqual(test.SymTable.Labels, symtarget.Labels) {
			t.Fatalf(
				"Symtable label mismatch\nwant:%v\nhave:%v",
				test.SymTable.Labels,
				symtarget.Labels,
			)
		}
	}
}

func testAssemblerFail(t *testing.T, test *failCase) {
	_, errs := assembler.Assemble(strings.NewReader(test.Input), nil)

	if test.Error == nil {
		panic("Fail case missing error value")
	}

	if len(errs) == 0 {
		t.Fatalf(
			"%s produced error of incorrect type"+
				"\nwant:%T (test.Error)\nhave:<nil>",
			t.Name(),
			test.Error,
		)
	}

	if len(errs) > 1 {
		errTypes := make([]reflect.Type, 0, len(errs))
		for _, err := range errs {
			errTypes = append(errTypes, reflect.TypeOf(err))
		}

		t.Fatalf(
			"%s produced multiple errors:\n\twant:%T (test.Error)\n\thave:%v",
			t.Name(),
			test.Error,
			errTypes,
		)
	}

	if reflect.TypeOf(errs[0]) != reflect.TypeOf(test.Error) {
		t.Fatalf(
			"%s produced error of incorrect type"+
				"\nwant:%T (test.Error)\nhave:%T",
			t.Name(),
			test.Error,
			errs[0],
		)
	}
}

func testSuccess(t *testing.T, tests []testCase) {
	t.Run("Success", func(t *testing.T) {
		for _, test := range tests {
			t.Run(test.Name, func(t *testing.T) {
				testAssemblerSuccess(t, &test)
			})
		}
	})
}

func testFail(t *testing.T, tests []failCase) {
	t.Run("Fail", func(t *testing.T) {
		for _, test := range tests {
			t.Run(test.Name, func(t *testing.T) {
				testAssemblerFail(t, &test)
			})
		}
	})
}

// CLS  |0000    |0000   |1110   |0000   | Clear display
// RET  |0000    |0000   |1110   |1110   | Return from subroutine
// SYS  |0000    |addr                   | Machine routine
// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
func TestSystem(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name:   "CLS",
			Input:  `CLS`,
			Output: map[uint16]uint16{0x200: 0x00E0},
			Size:   2,
		},
		{
			Name:   "RET",
			Input:  `ret`,
			Output: map[uint16]uint16{0x200: 0x00EE},
		},
		{
			Name:   "SYS",
			Input:  `SYS 0x123`,
			Output: map[uint16]uint16{0x200: 0x0123},
		},
	})

	testFail(t, []failCase{
		{
			Name:  "CLS Bad Argc",
			Input: `CLS V0`,
			Error: &assembler.InvalidNumArgumentsError{},
		},
		{
			Name:  "SYS Oversized",
			Input: `SYS 0x1000`,
			Error: &assembler.OversizedLiteralError{},
		},
	})
}

// JP   |0001    |addr                   | Jump
// CALL |0010    |addr                   | Call subroutine
// JP   |1011    |addr                   | Jump to V0 + addr
// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
func TestJump(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name:   "JP",
			Input:  `JP 0x300`,
			Output: map[uint16]uint16{0x200: 0x1300},
		},
		{
			Name:   "JP Decimal",
			Input:  `JP #768`,
			Output: map[uint16]uint16{0x200: 0x1300},
		},
		{
			Name:   "JP V0",
			Input:  `JP V0, 0x300`,
			Output: map[uint16]uint16{0x200: 0xB300},
		},
		{
			Name:   "CALL",
			Input:  `CALL 0x456`,
			Output: map[uint16]uint16{0x200: 0x2456},
		},
	})

	testFail(t, []failCase{
		{
			Name:  "JP Bad Register",
			Input: `JP V1, 0x300`,
			Error: &assembler.InvalidRegisterError{},
		},
		{
			Name:  "JP Oversized",
			Input: `JP 0x1000`,
			Error: &assembler.OversizedLiteralError{},
		},
		{
			Name:  "JP String",
			Input: `JP "foo"`,
			Error: &assembler.InvalidOperandError{},
		},
		{
			Name:  "JP Bad Argc",
			Input: `JP`,
			Error: &assembler.InvalidNumArgumentsError{},
		},
		{
			Name:  "CALL Bad Literal",
			Input: `CALL 0xZZ`,
			Error: &assembler.InvalidLiteralError{},
		},
	})
}

// SE   |0011    |x      |byte           | Skip if Vx == byte
// SE   |0101    |x      |y      |0000   | Skip if Vx == Vy
// SNE  |0100    |x      |byte           | Skip if Vx != byte
// SNE  |1001    |x      |y      |0000   | Skip if Vx != Vy
// SKP  |1110    |x      |1001   |1110   | Skip if key Vx down
// SKNP |1110    |x      |1010   |0001   | Skip if key Vx up
// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
func TestSkip(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name:   "SE Byte",
			Input:  `SE V1, 0x20`,
			Output: map[uint16]uint16{0x200: 0x3120},
		},
		{
			Name:   "SE Register",
			Input:  `SE V1, V2`,
			Output: map[uint16]uint16{0x200: 0x5120},
		},
		{
			Name:   "SNE Byte",
			Input:  `SNE VA, #255`,
			Output: map[uint16]uint16{0x200: 0x4AFF},
		},
		{
			Name:   "SNE Register",
			Input:  `SNE V1, V2`,
			Output: map[uint16]uint16{0x200: 0x9120},
		},
		{
			Name:   "SKP",
			Input:  `SKP V5`,
			Output: map[uint16]uint16{0x200: 0xE59E},
		},
		{
			Name:   "SKNP",
			Input:  `SKNP V5`,
			Output: map[uint16]uint16{0x200: 0xE5A1},
		},
	})

	testFail(t, []failCase{
		{
			Name:  "SE Oversized Byte",
			Input: `SE V1, 0x100`,
			Error: &assembler.OversizedLiteralError{},
		},
		{
			Name:  "SE Label Byte",
			Input: `SE V1, LABEL`,
			Error: &assembler.InvalidOperandError{},
		},
		{
			Name:  "SE Bad Register",
			Input: `SE VG, 1`,
			Error: &assembler.InvalidRegisterError{},
		},
		{
			Name:  "SE Literal Register",
			Input: `SE 1, V1`,
			Error: &assembler.InvalidOperandError{},
		},
		{
			Name:  "SKP Bad Argc",
			Input: `SKP V1, V2`,
			Error: &assembler.InvalidNumArgumentsError{},
		},
	})
}

// LD   |0110    |x      |byte           | Vx = byte
// LD   |1000    |x      |y      |0000   | Vx = Vy
// LD   |1010    |addr                   | I = addr
// LD   |1111    |x      |selector       | Timers, keys, font, BCD, [I]
// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
func TestLoad(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name:   "LD Byte",
			Input:  `LD V3, 0x42`,
			Output: map[uint16]uint16{0x200: 0x6342},
		},
		{
			Name:   "LD Negative Byte",
			Input:  `LD V0, #-1`,
			Output: map[uint16]uint16{0x200: 0x60FF},
		},
		{
			Name:   "LD Binary Byte",
			Input:  `LD V0, 0b10100101`,
			Output: map[uint16]uint16{0x200: 0x60A5},
		},
		{
			Name:   "LD Register",
			Input:  `LD V3, V4`,
			Output: map[uint16]uint16{0x200: 0x8340},
		},
		{
			Name:   "LD I",
			Input:  `LD I, 0x123`,
			Output: map[uint16]uint16{0x200: 0xA123},
		},
		{
			Name: "LD Misc",
			Input: `
			LD V3, DT
			LD V3, K
			LD DT, V3
			LD ST, V3
			LD F, V3
			LD B, V3
			LD [I], V3
			ld v3, [i]
			`,
			Output: map[uint16]uint16{
				0x200: 0xF307,
				0x202: 0xF30A,
				0x204: 0xF315,
				0x206: 0xF318,
				0x208: 0xF329,
				0x20A: 0xF333,
				0x20C: 0xF355,
				0x20E: 0xF365,
			},
			Size: 16,
		},
	})

	testFail(t, []failCase{
		{
			Name:  "LD Oversized Negative",
			Input: `LD V0, #-129`,
			Error: &assembler.OversizedLiteralError{},
		},
		{
			Name:  "LD Oversized Byte",
			Input: `LD V0, 256`,
			Error: &assembler.OversizedLiteralError{},
		},
		{
			Name:  "LD Label Destination",
			Input: `LD LABEL, V0`,
			Error: &assembler.InvalidRegisterError{},
		},
		{
			Name:  "LD String Destination",
			Input: `LD "a", V0`,
			Error: &assembler.InvalidOperandError{},
		},
		{
			Name:  "LD Timer Literal",
			Input: `LD DT, 5`,
			Error: &assembler.InvalidOperandError{},
		},
		{
			Name:  "LD Bad Argc",
			Input: `LD V0`,
			Error: &assembler.InvalidNumArgumentsError{},
		},
	})
}

// ADD  |0111    |x      |byte           | Vx += byte
// ADD  |1000    |x      |y      |0100   | Vx += Vy, VF = carry
// ADD  |1111    |x      |0001   |1110   | I += Vx
// RND  |1100    |x      |byte           | Vx = random & byte
// DRW  |1101    |x      |y      |n      | Draw n-row sprite at I
// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
func TestArithmetic(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name: "ALU",
			Input: `
			ADD V1, 0x01
			ADD V1, V2
			ADD I, V1
			OR V1, V2
			AND V1, V2
			XOR V1, V2
			SUB V1, V2
			SUBN V1, V2
			SHR V1
			SHR V1, V2
			SHL V1
			`,
			Output: map[uint16]uint16{
				0x200: 0x7101,
				0x202: 0x8124,
				0x204: 0xF11E,
				0x206: 0x8121,
				0x208: 0x8122,
				0x20A: 0x8123,
				0x20C: 0x8125,
				0x20E: 0x8127,
				0x210: 0x8106,
				0x212: 0x8126,
				0x214: 0x810E,
			},
		},
		{
			Name:   "RND",
			Input:  `RND V1, 0x0F`,
			Output: map[uint16]uint16{0x200: 0xC10F},
		},
		{
			Name:   "DRW",
			Input:  `DRW V1, V2, 5`,
			Output: map[uint16]uint16{0x200: 0xD125},
		},
		{
			Name:   "DRW Hex",
			Input:  `DRW V1, V2, 0xF`,
			Output: map[uint16]uint16{0x200: 0xD12F},
		},
	})

	testFail(t, []failCase{
		{
			Name:  "DRW Oversized",
			Input: `DRW V1, V2, 16`,
			Error: &assembler.OversizedLiteralError{},
		},
		{
			Name:  "OR Literal",
			Input: `OR V1, 1`,
			Error: &assembler.InvalidOperandError{},
		},
		{
			Name:  "SHL Bad Argc",
			Input: `SHL`,
			Error: &assembler.InvalidNumArgumentsError{},
		},
		{
			Name:  "ADD I Literal",
			Input: `ADD I, 1`,
			Error: &assembler.InvalidOperandError{},
		},
	})
}

func TestDirectives(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name: "ORG",
			Input: `
			.ORG 0x300
			CLS
			`,
			Output: map[uint16]uint16{0x300: 0x00E0},
			Size:   0x102,
		},
		{
			Name:   "DB",
			Input:  `.DB 0xF0, 0x90, 0x90, 0x90, 0xF0`,
			Output: map[uint16]uint16{0x200: 0xF090, 0x202: 0x9090, 0x204: 0xF000},
			Size:   5,
		},
		{
			Name:   "DB String",
			Input:  `.DB "HI", 0`,
			Output: map[uint16]uint16{0x200: 0x4849},
			Size:   3,
		},
		{
			Name: "DW",
			Input: `
			.DW 0x1234, DATA
			DATA
			DW 0xFFFF
			`,
			Output: map[uint16]uint16{
				0x200: 0x1234,
				0x202: 0x0204,
				0x204: 0xFFFF,
			},
			Size: 6,
		},
		{
			Name: "END",
			Input: `
			CLS
			.END
			RET
			`,
			Output: map[uint16]uint16{0x200: 0x00E0},
			Size:   2,
		},
	})

	testFail(t, []failCase{
		{
			Name:  "ORG Below Program",
			Input: `.ORG 0x100`,
			Error: &assembler.InvalidOriginError{},
		},
		{
			Name:  "ORG Past Memory",
			Input: `.ORG 0x1000`,
			Error: &assembler.InvalidOriginError{},
		},
		{
			Name:  "DB Oversized",
			Input: `.DB 256`,
			Error: &assembler.OversizedLiteralError{},
		},
		{
			Name:  "DB Bad Argc",
			Input: `.DB`,
			Error: &assembler.InvalidNumArgumentsError{},
		},
		{
			Name:  "DB Unterminated String",
			Input: `.DB "abc`,
			Error: &assembler.InvalidStringError{},
		},
		{
			Name:  "Unknown Directive",
			Input: `.FOO`,
			Error: &assembler.UnknownIdentifierError{},
		},
		{
			Name:  "END Bad Argc",
			Input: `.END 1`,
			Error: &assembler.InvalidNumArgumentsError{},
		},
	})
}

func TestComment(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name: "Comment",
			Input: `
			; Header comment
			CLS ; Trailing comment

			RET;No space
			`,
			Output: map[uint16]uint16{0x200: 0x00E0, 0x202: 0x00EE},
			Size:   4,
		},
	})

	testFail(t, []failCase{
		{
			Name:  "Unexpected Character",
			Input: `CLS @`,
			Error: &assembler.UnexpectedCharacterError{},
		},
		{
			Name:  "Non ASCII Identifier",
			Input: `CLS ü`,
			Error: &assembler.OversizedCharacterError{},
		},
	})
}

func TestLabel(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name: "Loop",
			Input: `
			START:
				LD V0, 0
			LOOP: ADD V0, 1
				SE V0, 10
				JP LOOP
				CALL SUB
				JP START
			SUB:	RET
			`,
			Output: map[uint16]uint16{
				0x200: 0x6000,
				0x202: 0x7001,
				0x204: 0x300A,
				0x206: 0x1202,
				0x208: 0x220C,
				0x20A: 0x1200,
				0x20C: 0x00EE,
			},
		},
		{
			Name: "Forwards Label",
			Input: `
			LD I, SPRITE
			DRW V0, V1, 1
			SPRITE .DB 0x80
			`,
			Output: map[uint16]uint16{
				0x200: 0xA204,
				0x202: 0xD011,
				0x204: 0x8000,
			},
			Size: 5,
		},
		{
			Name: "Mnemonic Names",
			Input: `
			CLS:	CALL OR
				JP CLS
			OR:	OR V0, V1
			RET:	RET
			`,
			Output: map[uint16]uint16{
				0x200: 0x2204,
				0x202: 0x1200,
				0x204: 0x8011,
				0x206: 0x00EE,
			},
			Size: 8,
		},
	})

	testFail(t, []failCase{
		{
			Name:  "Label Operand",
			Input: `JP LOOP:`,
			Error: &assembler.UnexpectedCharacterError{},
		},
		{
			Name:  "Unknown Label",
			Input: `JP NOWHERE`,
			Error: &assembler.UnknownLabelError{},
		},
		{
			Name: "Redeclared Label",
			Input: `
			LABEL: CLS
			LABEL: RET
			`,
			Error: &assembler.RedeclaredLabelError{},
		},
		{
			Name:  "Register Label",
			Input: `V0: CLS`,
			Error: &assembler.UnknownIdentifierError{},
		},
		{
			Name:  "Unknown Keyword",
			Input: `LABEL FOO`,
			Error: &assembler.UnknownIdentifierError{},
		},
	})
}

func TestProgramSize(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name: "Full Image",
			Input: `
			.ORG 0xFFE
			CLS
			`,
			Output: map[uint16]uint16{0xFFE: 0x00E0},
			Size:   0xE00,
		},
	})

	testFail(t, []failCase{
		{
			Name: "Oversized Binary",
			Input: `
			.ORG 0xFFE
			CLS
			CLS
			`,
			Error: &assembler.OversizedBinaryError{},
		},
		{
			Name: "Oversized Data",
			Input: `
			.ORG 0xFFF
			.DW 0x1234
			`,
			Error: &assembler.OversizedBinaryError{},
		},
	})
}

func TestSymtable(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name: "Symtable",
			/*
				+ 11	.ORG 0x300
				+  7	START:
				+  4	CLS
				+ 15	DATA: .DB 1, 2
				+  8	JP START
			*/
			Input: (".ORG 0x300\n" +
				"START:\n" +
				"CLS\n" +
				"DATA: .DB 1, 2\n" +
				"JP START"),
			Output: map[uint16]uint16{
				0x300: 0x00E0,
				0x302: 0x0102,
				0x304: 0x1300,
			},
			SymTable: &assembler.SymTable{
				Symbols: map[uint16]int64{
					0x300: 18, // CLS
					0x302: 22, // .DB
					0x304: 37, // JP
				},
				Labels: map[uint16]string{
					0x300: "START",
					0x302: "DATA",
				},
			},
		},
	})
}

func TestDisassemble(t *testing.T) {
	for opcode := 0; opcode <= 0xFFFF; opcode++ {
		source := assembler.Disassemble(uint16(opcode))

		result, errs := assembler.Assemble(strings.NewReader(source), nil)

		if len(errs) > 0 {
			t.Fatalf("%04X: %q did not reassemble\n%v", opcode, source, errs[0])
		}

		if len(result) != 2 {
			t.Fatalf("%04X: %q assembled to %d bytes", opcode, source, len(result))
		}

		reassembled := uint16(result[0])<<8 | uint16(result[1])

		if have := assembler.Disassemble(reassembled); have != source {
			t.Fatalf(
				"Disassembly mismatch for %04X\nwant:%s\nhave:%s",
				opcode,
				source,
				have,
			)
		}
	}
}

func TestListing(t *testing.T) {
	symtable := assembler.NewSymTable("")
	symtable.Labels[0x200] = "START"

	var buffer bytes.Buffer

	image := []byte{0x00, 0xE0, 0x12, 0x00, 0xFF}

	if err := assembler.Listing(&buffer, image, 0x200, symtable); err != nil {
		t.Fatal(err)
	}

	want := "START:\n" +
		"0x0200  00E0  CLS\n" +
		"0x0202  1200  JP 0x200\n" +
		"0x0204  FF    DB 0xFF\n"

	if have := buffer.String(); have != want {
		t.Fatalf("Listing mismatch\nwant:\n%s\nhave:\n%s", want, have)
	}

	if addr, ok := symtable.Lookup("START"); !ok || addr != 0x200 {
		t.Fatalf("Label lookup mismatch\nwant:0x200\nhave:%#04x (%v)", addr, ok)
	}
}
