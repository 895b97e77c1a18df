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

package encoding

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

var ErrInvalidLiteral = errors.New("Invalid numeric literal")

// Decodes a hexidecimal string in the formats: 0xFFFF, xFFFF, 0xFF, xFF
func DecodeHex(s string) (uint16, error) {
	if i := strings.IndexAny(s, "xX"); i == 0 {
		s = "0" + s
	} else if i == -1 || i != 1 || s[0] != '0' {
		return 0, errors.Wrapf(ErrInvalidLiteral, "hex %q", s)
	}

	result, err := strconv.ParseUint(s, 0, 16)

	if err != nil {
		return 0, errors.Wrapf(ErrInvalidLiteral, "hex %q", s)
	}

	return uint16(result), nil
}

// Decodes a base-2 string in the formats: 0b11110000, b11110000
func DecodeBin(s string) (uint16, error) {
	if i := strings.IndexAny(s, "bB"); i == 0 {
		s = s[1:]
	} else if i == 1 && s[0] == '0' {
		s = s[2:]
	} else {
		return 0, errors.Wrapf(ErrInvalidLiteral, "binary %q", s)
	}

	result, err := strconv.ParseUint(s, 2, 16)

	if err != nil {
		return 0, errors.Wrapf(ErrInvalidLiteral, "binary %q", s)
	}

	return uint16(result), nil
}

// Decodes a base-10 string in the formats: #123, 123, #-1, -1
func DecodeInt(s string) (int32, error) {
	if i := strings.Index(s, "#"); i == 0 {
		s = s[1:]
	}

	result, err := strconv.ParseInt(s, 10, 32)

	if err != nil || result < -0x8000 || result > 0xFFFF {
		return 0, errors.Wrapf(ErrInvalidLiteral, "decimal %q", s)
	}

	return int32(result), nil
}

// Decodes any of the supported literal formats. Negative decimals are
// returned in two's complement form.
func DecodeLiteral(s string) (uint16, error) {
	lower := strings.ToLower(s)

	switch {
	case strings.HasPrefix(lower, "0x"), strings.HasPrefix(lower, "x"):
		return DecodeHex(s)
	case strings.HasPrefix(lower, "0b"), strings.HasPrefix(lower, "b"):
		return DecodeBin(s)
	}

	result, err := DecodeInt(s)
	return uint16(result), err
}

// Splits an opcode into its big-endian byte pair
func SplitWord(value uint16) (uint8, uint8) {
	return uint8(value >> 8), uint8(value)
}

// Joins a big-endian byte pair into an opcode
func JoinWord(hi, lo uint8) uint16 {
	return uint16(hi)<<8 | uint16(lo)
}
