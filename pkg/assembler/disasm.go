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
	"fmt"
	"io"

	"github.com/lassandro/gochip8/pkg/encoding"
	"github.com/lassandro/gochip8/pkg/machine"
)

// Renders a single opcode in the syntax accepted by Assemble
func Disassemble(opcode uint16) string {
	return machine.Decode(opcode).String()
}

// Writes an address, opcode and mnemonic listing of a program image that is
// loaded at origin. Labels from symtable are printed above their address.
func Listing(w io.Writer, image []byte, origin uint16, symtable *SymTable) error {
	for offset := 0; offset < len(image); offset += 2 {
		addr := origin + uint16(offset)

		if symtable != nil {
			if label, exists := symtable.Labels[addr]; exists {
				if _, err := fmt.Fprintf(w, "%s:\n", label); err != nil {
					return err
				}
			}
		}

		var err error

		if offset+1 < len(image) {
			opcode := encoding.JoinWord(image[offset], image[offset+1])
			_, err = fmt.Fprintf(
				w, "%#04x  %04X  %s\n", addr, opcode, Disassemble(opcode),
			)
		} else {
			_, err = fmt.Fprintf(
				w, "%#04x  %02X    DB 0x%02X\n", addr, image[offset], image[offset],
			)
		}

		if err != nil {
			return err
		}
	}

	return nil
}
