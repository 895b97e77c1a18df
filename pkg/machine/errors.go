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

	"github.com/pkg/errors"
)

var (
	ErrOutOfBounds     = errors.New("address out of bounds")
	ErrUnknownOpcode   = errors.New("unknown opcode")
	ErrProgramTooLarge = errors.New("program exceeds program memory")
)

type OutOfBoundsError struct {
	Addr  uint16
	Write bool
}

func (err *OutOfBoundsError) Error() string {
	if err.Write {
		return fmt.Sprintf("Invalid memory write at %#04x", err.Addr)
	}

	return fmt.Sprintf("Invalid memory read at %#04x", err.Addr)
}

func (err *OutOfBoundsError) Is(target error) bool {
	return target == ErrOutOfBounds
}

type UnknownOpcodeError struct {
	Opcode uint16
}

func (err *UnknownOpcodeError) Error() string {
	return fmt.Sprintf("Unknown opcode %04X", err.Opcode)
}

func (err *UnknownOpcodeError) Is(target error) bool {
	return target == ErrUnknownOpcode
}
