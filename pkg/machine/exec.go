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

// execute applies a decoded instruction. The program counter already points
// at the following instruction. Handlers validate every memory access before
// mutating anything so a failed instruction leaves no partial state.
func (mc *Machine) execute(instr Instruction) error {
	regs := &mc.State.Registers
	x := instr.X
	y := instr.Y

	switch instr.Type {
	// SYS  |0000    |addr                   | Host routine (ignored)
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case INSTRUCTION_SYS:

	// CLS  |0000    |0000   |1110   |0000   | Clear display
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case INSTRUCTION_CLS:
		mc.display().Clear()

	// RET  |0000    |0000   |1110   |1110   | Return from subroutine
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case INSTRUCTION_RET:
		mc.State.Program = mc.pop()

	// JP   |0001    |addr                   | Jump
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case INSTRUCTION_JP:
		mc.State.Program = instr.Addr

	// CALL |0010    |addr                   | Call subroutine
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case INSTRUCTION_CALL:
		mc.push(mc.State.Program)
		mc.State.Program = instr.Addr

	// SE   |0011    |x      |byte           | Skip if Vx == byte
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case INSTRUCTION_SE_BYTE:
		if regs[x] == instr.Byte {
			mc.State.Program += 2
		}

	// SNE  |0100    |x      |byte           | Skip if Vx != byte
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case INSTRUCTION_SNE_BYTE:
		if regs[x] != instr.Byte {
			mc.State.Program += 2
		}

	// SE   |0101    |x      |y      |0000   | Skip if Vx == Vy
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case INSTRUCTION_SE_REG:
		if regs[x] == regs[y] {
			mc.State.Program += 2
		}

	// LD   |0110    |x      |byte           | Vx = byte
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case INSTRUCTION_LD_BYTE:
		regs[x] = instr.Byte

	// ADD  |0111    |x      |byte           | Vx += byte, no carry
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case INSTRUCTION_ADD_BYTE:
		regs[x] += instr.Byte

	// LD   |1000    |x      |y      |0000   | Vx = Vy
	// OR   |1000    |x      |y      |0001   | Vx |= Vy
	// AND  |1000    |x      |y      |0010   | Vx &= Vy
	// XOR  |1000    |x      |y      |0011   | Vx ^= Vy
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case INSTRUCTION_LD_REG:
		regs[x] = regs[y]

	case INSTRUCTION_OR:
		regs[x] |= regs[y]

	case INSTRUCTION_AND:
		regs[x] &= regs[y]

	case INSTRUCTION_XOR:
		regs[x] ^= regs[y]

	// ADD  |1000    |x      |y      |0100   | Vx += Vy, VF = carry
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case INSTRUCTION_ADD_REG:
		vx, vy := regs[x], regs[y]
		sum := uint16(vx) + uint16(vy)

		regs[x] = uint8(sum)
		regs[REG_FLAG] = flag(sum > 0xFF)

	// SUB  |1000    |x      |y      |0101   | Vx -= Vy, VF = not borrow
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case INSTRUCTION_SUB:
		vx, vy := regs[x], regs[y]

		regs[x] = vx - vy
		regs[REG_FLAG] = flag(vx > vy)

	// SHR  |1000    |x      |y      |0110   | Vx >>= 1, VF = lost bit
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case INSTRUCTION_SHR:
		vx := regs[x]

		regs[x] = vx >> 1
		regs[REG_FLAG] = vx & 0x1

	// SUBN |1000    |x      |y      |0111   | Vx = Vy - Vx, VF = not borrow
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case INSTRUCTION_SUBN:
		vx, vy := regs[x], regs[y]

		regs[x] = vy - vx
		regs[REG_FLAG] = flag(vy > vx)

	// SHL  |1000    |x      |y      |1110   | Vx <<= 1, VF = lost bit
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case INSTRUCTION_SHL:
		vx := regs[x]

		regs[x] = vx << 1
		regs[REG_FLAG] = vx >> 7

	// SNE  |1001    |x      |y      |0000   | Skip if Vx != Vy
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case INSTRUCTION_SNE_REG:
		if regs[x] != regs[y] {
			mc.State.Program += 2
		}

	// LD   |1010    |addr                   | I = addr
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case INSTRUCTION_LD_I:
		mc.State.Address = instr.Addr

	// JP   |1011    |addr                   | Jump to addr + V0
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case INSTRUCTION_JP_V0:
		mc.State.Program = instr.Addr + uint16(regs[0])

	// RND  |1100    |x      |byte           | Vx = random & byte
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case INSTRUCTION_RND:
		regs[x] = mc.random() & instr.Byte

	// DRW  |1101    |x      |y      |n      | Draw n-byte sprite, VF = collision
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case INSTRUCTION_DRW:
		sprite := make([]byte, instr.Nibble)

		if err := mc.State.Memory.span(
			mc.State.Address, len(sprite), false,
		); err != nil {
			return err
		}

		for i := range sprite {
			sprite[i], _ = mc.read(mc.State.Address + uint16(i))
		}

		collision := mc.display().Draw(regs[x], regs[y], sprite)
		regs[REG_FLAG] = flag(collision)

	// SKP  |1110    |x      |1001   |1110   | Skip if key Vx is down
	// SKNP |1110    |x      |1010   |0001   | Skip if key Vx is up
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case INSTRUCTION_SKP:
		if mc.keyDown(regs[x]) {
			mc.State.Program += 2
		}

	case INSTRUCTION_SKNP:
		if !mc.keyDown(regs[x]) {
			mc.State.Program += 2
		}

	// LD   |1111    |x      |0000   |0111   | Vx = DT
	// LD   |1111    |x      |0001   |0101   | DT = Vx
	// LD   |1111    |x      |0001   |1000   | ST = Vx
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case INSTRUCTION_LD_VX_DT:
		regs[x] = mc.State.Delay

	case INSTRUCTION_LD_DT_VX:
		mc.State.Delay = regs[x]

	case INSTRUCTION_LD_ST_VX:
		mc.State.Sound = regs[x]
		mc.updateTone()

	// LD   |1111    |x      |0000   |1010   | Wait for key, Vx = key
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case INSTRUCTION_LD_VX_K:
		// Drop presses that happened before the wait began
		if keypad := mc.keypad(); keypad != nil {
			keypad.Pressed()
		}

		mc.State.Mode = MODE_AWAITING_KEY
		mc.State.Waiting = x

	// ADD  |1111    |x      |0001   |1110   | I += Vx (12-bit)
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case INSTRUCTION_ADD_I_VX:
		mc.State.Address = (mc.State.Address + uint16(regs[x])) & 0x0FFF

	// LD   |1111    |x      |0010   |1001   | I = glyph address of Vx
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case INSTRUCTION_LD_F_VX:
		mc.State.Address = MEMSPACE_FONT + uint16(regs[x]&0xF)*GLYPH_SIZE

	// LD   |1111    |x      |0011   |0011   | [I..I+2] = BCD of Vx
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case INSTRUCTION_LD_B_VX:
		addr := mc.State.Address

		if err := mc.State.Memory.span(addr, 3, true); err != nil {
			return err
		}

		value := regs[x]
		mc.write(addr, value/100)
		mc.write(addr+1, (value/10)%10)
		mc.write(addr+2, value%10)

	// LD   |1111    |x      |0101   |0101   | [I..I+x] = V0..Vx
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case INSTRUCTION_LD_MEM_VX:
		addr := mc.State.Address

		if err := mc.State.Memory.span(addr, int(x)+1, true); err != nil {
			return err
		}

		for i := uint16(0); i <= uint16(x); i++ {
			mc.write(addr+i, regs[i])
		}

	// LD   |1111    |x      |0110   |0101   | V0..Vx = [I..I+x]
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case INSTRUCTION_LD_VX_MEM:
		addr := mc.State.Address

		if err := mc.State.Memory.span(addr, int(x)+1, false); err != nil {
			return err
		}

		for i := uint16(0); i <= uint16(x); i++ {
			regs[i], _ = mc.read(addr + i)
		}

	default:
		return &UnknownOpcodeError{instr.Opcode}
	}

	return nil
}

func (mc *Machine) keyDown(key uint8) bool {
	keypad := mc.keypad()
	return keypad != nil && keypad.IsPressed(key&0xF)
}

func flag(set bool) uint8 {
	if set {
		return 1
	}

	return 0
}
