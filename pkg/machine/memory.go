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
	"github.com/lassandro/gochip8/pkg/encoding"
)

// Memory is the 4K address space. The font region below MEMSPACE_PROGRAM is
// readable but never writable by guest code.
type Memory [MEMSPACE_END]byte

func NewMemory() Memory {
	var mem Memory
	copy(mem[MEMSPACE_FONT:], FONT[:])
	return mem
}

func (mem *Memory) Read(addr uint16) (byte, error) {
	if addr >= MEMSPACE_END {
		return 0, &OutOfBoundsError{Addr: addr}
	}

	return mem[addr], nil
}

func (mem *Memory) Write(addr uint16, value byte) error {
	if addr < MEMSPACE_PROGRAM || addr >= MEMSPACE_END {
		return &OutOfBoundsError{Addr: addr, Write: true}
	}

	mem[addr] = value
	return nil
}

// Fetch returns the big-endian opcode stored at addr.
func (mem *Memory) Fetch(addr uint16) (uint16, error) {
	if err := mem.span(addr, 2, false); err != nil {
		return 0, err
	}

	return encoding.JoinWord(mem[addr], mem[addr+1]), nil
}

// span validates [addr, addr+count) for the given access kind without
// touching memory.
func (mem *Memory) span(addr uint16, count int, write bool) error {
	end := int(addr) + count

	if write && addr < MEMSPACE_PROGRAM {
		return &OutOfBoundsError{Addr: addr, Write: true}
	}

	if end > int(MEMSPACE_END) {
		bad := addr
		if int(addr) < int(MEMSPACE_END) {
			bad = MEMSPACE_END
		}
		return &OutOfBoundsError{Addr: bad, Write: write}
	}

	return nil
}
