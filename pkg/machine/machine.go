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
	"io"
	"math/rand"
	"time"

	"github.com/pkg/errors"
)

func (mc *MachineState) Reset() {
	for i := range mc.Registers {
		mc.Registers[i] = 0x00
	}

	for i := range mc.Frames {
		mc.Frames[i] = 0x0000
	}

	mc.Memory = NewMemory()
	mc.Address = 0x0000
	mc.Stack = 0x00
	mc.Depth = 0x00
	mc.Delay = 0x00
	mc.Sound = 0x00
	mc.Mode = MODE_RUNNING
	mc.Waiting = 0x00

	// Guest code conventionally starts right after the interpreter area
	mc.Program = MEMSPACE_PROGRAM
}

// New creates a machine with zeroed registers, the font loaded and the
// program counter at MEMSPACE_PROGRAM. Devices that are not supplied through
// options default to a 64x32 Framebuffer and a KeyState.
func New(options ...Option) (*Machine, error) {
	mc := &Machine{
		Devices:   &DeviceHandler{},
		ClockRate: DEFAULT_CLOCK_HZ,
	}

	mc.State.Reset()

	for _, opt := range options {
		if err := opt(mc); err != nil {
			return nil, err
		}
	}

	if mc.Devices.Display == nil {
		mc.Devices.Display = NewFramebuffer(RES_64X32)
	}

	if mc.Devices.Keypad == nil {
		mc.Devices.Keypad = NewKeyState()
	}

	if mc.Rand == nil {
		mc.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return mc, nil
}

// Reset returns the machine to its power-on state, blanking the display and
// silencing the tone.
func (mc *Machine) Reset() {
	mc.State.Reset()
	mc.display().Clear()
	mc.updateTone()
}

// LoadROM resets the machine and copies a raw program image to
// MEMSPACE_PROGRAM.
func (mc *Machine) LoadROM(reader io.Reader) error {
	mc.Reset()

	image, err := io.ReadAll(io.LimitReader(reader, int64(MAX_PROGRAM_SIZE)+1))

	if err != nil {
		return errors.Wrap(err, "reading program image")
	}

	if len(image) > MAX_PROGRAM_SIZE {
		return errors.Wrapf(
			ErrProgramTooLarge, "image larger than %d bytes", MAX_PROGRAM_SIZE,
		)
	}

	copy(mc.State.Memory[MEMSPACE_PROGRAM:], image)
	return nil
}

func (mc *Machine) display() Display {
	if mc.Devices == nil {
		mc.Devices = &DeviceHandler{}
	}

	if mc.Devices.Display == nil {
		mc.Devices.Display = NewFramebuffer(RES_64X32)
	}

	return mc.Devices.Display
}

func (mc *Machine) keypad() Keypad {
	if mc.Devices == nil {
		return nil
	}

	return mc.Devices.Keypad
}

func (mc *Machine) random() uint8 {
	if mc.Rand == nil {
		mc.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return uint8(mc.Rand.Intn(256))
}

// push saves a return address. The stack pointer wraps modulo STACK_DEPTH,
// so a 17th nested call overwrites the oldest frame.
func (mc *Machine) push(value uint16) {
	mc.State.Stack = (mc.State.Stack + 1) % STACK_DEPTH
	mc.State.Frames[mc.State.Stack] = value

	if mc.State.Depth < STACK_DEPTH {
		mc.State.Depth++
	}
}

func (mc *Machine) pop() uint16 {
	result := mc.State.Frames[mc.State.Stack]
	mc.State.Stack = (mc.State.Stack + STACK_DEPTH - 1) % STACK_DEPTH

	if mc.State.Depth > 0 {
		mc.State.Depth--
	}

	return result
}

func (mc *Machine) read(addr uint16) (byte, error) {
	value, err := mc.State.Memory.Read(addr)

	if err != nil {
		return 0, err
	}

	if mc.Debugger != nil {
		mc.Debugger.Read(addr, mc)
	}

	return value, nil
}

func (mc *Machine) write(addr uint16, value byte) error {
	if err := mc.State.Memory.Write(addr, value); err != nil {
		return err
	}

	if mc.Debugger != nil {
		mc.Debugger.Write(addr, mc)
	}

	return nil
}

// Step advances the machine by one instruction. While waiting for a key it
// only polls the keypad. On error the program counter, registers and memory
// are left as they were before the step.
func (mc *Machine) Step() error {
	if mc.State.Mode == MODE_AWAITING_KEY {
		mc.awaitKey()
	} else if err := mc.cycle(); err != nil {
		return err
	}

	if mc.Debugger != nil {
		mc.Debugger.Step(mc)
	}

	return nil
}

func (mc *Machine) cycle() error {
	pc := mc.State.Program

	opcode, err := mc.State.Memory.Fetch(pc)

	if err != nil {
		return errors.Wrapf(err, "fetch %#04x", pc)
	}

	if mc.Debugger != nil {
		mc.Debugger.Read(pc, mc)
		mc.Debugger.Read(pc+1, mc)
	}

	instr := Decode(opcode)

	if mc.Trace != nil {
		mc.Trace.Printf("%#04x %04X %s", pc, instr.Opcode, instr)
	}

	mc.State.Program = pc + 2

	if err := mc.execute(instr); err != nil {
		mc.State.Program = pc
		return errors.Wrapf(err, "step %#04x", pc)
	}

	return nil
}

func (mc *Machine) awaitKey() {
	keypad := mc.keypad()

	if keypad == nil {
		return
	}

	if key, ok := keypad.Pressed(); ok {
		mc.State.Registers[mc.State.Waiting] = key & 0xF
		mc.State.Mode = MODE_RUNNING
	}
}
