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

package encoding_test

import (
	"testing"

	"github.com/pkg/errors"

	"github.com/lassandro/gochip8/pkg/encoding"
)

func TestDecodeLiteral(t *testing.T) {
	tests := []struct {
		Input  string
		Output uint16
	}{
		{"0x200", 0x200},
		{"x200", 0x200},
		{"0XFF", 0xFF},
		{"0b10100000", 0xA0},
		{"b1", 0x1},
		{"#15", 15},
		{"15", 15},
		{"#-1", 0xFFFF},
		{"65535", 0xFFFF},
	}

	for _, test := range tests {
		t.Run(test.Input, func(t *testing.T) {
			have, err := encoding.DecodeLiteral(test.Input)

			if err != nil {
				t.Fatal(err)
			}

			if have != test.Output {
				t.Fatalf(
					"Literal mismatch\nwant:%#04x\nhave:%#04x",
					test.Output,
					have,
				)
			}
		})
	}
}

func TestDecodeLiteralFailure(t *testing.T) {
	inputs := []string{"", "0x", "1x20", "0xFFFFF", "0b102", "#", "65536", "V0"}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			_, err := encoding.DecodeLiteral(input)

			if !errors.Is(err, encoding.ErrInvalidLiteral) {
				t.Fatalf(
					"Error mismatch for %q\nwant:%v\nhave:%v",
					input,
					encoding.ErrInvalidLiteral,
					err,
				)
			}
		})
	}
}

func TestWords(t *testing.T) {
	hi, lo := encoding.SplitWord(0xD4A7)

	if hi != 0xD4 || lo != 0xA7 {
		t.Fatalf("Split mismatch\nwant:D4 A7\nhave:%02X %02X", hi, lo)
	}

	if have := encoding.JoinWord(hi, lo); have != 0xD4A7 {
		t.Fatalf("Join mismatch\nwant:D4A7\nhave:%04X", have)
	}
}
