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
	"log"
	"math/rand"
)

type InstructionType uint8
type Mode uint8

// Display is the surface sprites are composited onto. Draw XORs the sprite
// rows at (x, y) and reports whether any lit pixel was turned off.
type Display interface {
	Clear()
	Draw(x, y uint8, sprite []byte) bool
}

// Keypad reports the state of the 16 hexadecimal keys. Pressed returns the
// most recent key that went down since the previous call, if any.
type Keypad interface {
	IsPressed(key uint8) bool
	Pressed() (uint8, bool)
}

// Tone is driven on while the sound timer is non-zero.
type Tone interface {
	SetTone(on bool)
}

type DeviceHandler struct {
	Display Display
	Keypad  Keypad
	Tone    Tone
}

type MachineState struct {
	Registers [REG_COUNT]uint8
	Address   uint16
	Program   uint16
	Stack     uint8
	Frames    [STACK_DEPTH]uint16
	Depth     uint8 // live frames, saturating at STACK_DEPTH
	Delay     uint8
	Sound     uint8
	Mode      Mode
	Waiting   uint8
	Memory    Memory
}

type MachineDebugger interface {
	Step(mc *Machine)
	Read(addr uint16, mc *Machine)
	Write(addr uint16, mc *Machine)
}

type Machine struct {
	Devices   *DeviceHandler
	State     MachineState
	Debugger  MachineDebugger
	Rand      *rand.Rand
	Trace     *log.Logger
	ClockRate int

	toneOn bool
}

// Instruction is a decoded opcode. Every field is extracted regardless of
// Type so that handlers never touch the raw bits.
type Instruction struct {
	Type   InstructionType
	Opcode uint16
	Class  uint8
	Addr   uint16
	Nibble uint8
	X      uint8
	Y      uint8
	Byte   uint8
}
