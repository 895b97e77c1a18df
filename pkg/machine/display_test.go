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

package machine_test

import (
	"testing"

	"github.com/lassandro/gochip8/pkg/machine"
)

func TestFramebufferDraw(t *testing.T) {
	fb := machine.NewFramebuffer(machine.RES_64X32)

	if fb.Draw(10, 5, []byte{0b1010_0000}) {
		t.Fatal("Collision reported on a blank display")
	}

	if !fb.Pixel(10, 5) || fb.Pixel(11, 5) || !fb.Pixel(12, 5) {
		t.Fatal("Sprite bits not composited at origin")
	}

	if !fb.Draw(10, 5, []byte{0b1000_0000}) {
		t.Fatal("Collision not reported when a lit pixel was erased")
	}

	if fb.Pixel(10, 5) || !fb.Pixel(12, 5) {
		t.Fatal("XOR did not clear only the overlapping pixel")
	}
}

func TestFramebufferWrapAndClip(t *testing.T) {
	fb := machine.NewFramebuffer(machine.RES_64X32)

	// Origin wraps around the screen
	fb.Draw(64+2, 32+1, []byte{0x80})

	if !fb.Pixel(2, 1) {
		t.Fatal("Sprite origin did not wrap")
	}

	// Columns past the right edge are clipped, not wrapped
	fb.Draw(62, 10, []byte{0xFF})

	if !fb.Pixel(62, 10) || !fb.Pixel(63, 10) || fb.Pixel(0, 10) || fb.Pixel(1, 10) {
		t.Fatal("Sprite was not clipped at the right edge")
	}

	// Rows past the bottom edge are clipped
	fb.Draw(20, 31, []byte{0x80, 0x80})

	if !fb.Pixel(20, 31) || fb.Pixel(20, 0) {
		t.Fatal("Sprite was not clipped at the bottom edge")
	}

	before := fb.Version()
	fb.Clear()

	if fb.Version() == before {
		t.Fatal("Clear did not bump the version")
	}

	pixels, _ := fb.Snapshot(nil)

	for i, lit := range pixels {
		if lit {
			t.Fatalf("Pixel %d still lit after Clear", i)
		}
	}
}

func TestResolutions(t *testing.T) {
	for _, want := range machine.RESOLUTIONS {
		have, err := machine.ParseResolution(want.String())

		if err != nil || have != want {
			t.Fatalf("Resolution mismatch\nwant:%s\nhave:%s (%v)", want, have, err)
		}
	}

	if _, err := machine.ParseResolution("32x16"); err == nil {
		t.Fatal("Unsupported resolution accepted")
	}
}

// DRW  |1101    |x      |y      |n      | Draw n-byte sprite, VF = collision
// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
func TestDraw(t *testing.T) {
	fb := machine.NewFramebuffer(machine.RES_64X32)
	mc, err := machine.New(machine.WithDisplay(fb))

	if err != nil {
		t.Fatal(err)
	}

	// LD F, V2 ; DRW V0, V1, 5 ; DRW V0, V1, 5 ; CLS
	program := []byte{0xF2, 0x29, 0xD0, 0x15, 0xD0, 0x15, 0x00, 0xE0}
	copy(mc.State.Memory[0x200:], program)

	mc.State.Registers[0] = 8
	mc.State.Registers[1] = 4
	mc.State.Registers[2] = 0x0

	for i := 0; i < 2; i++ {
		if err := mc.Step(); err != nil {
			t.Fatal(err)
		}
	}

	if have := mc.State.Registers[0xF]; have != 0 {
		t.Fatalf("Collision flag mismatch on first draw\nwant:0\nhave:%d", have)
	}

	// Glyph "0" is F0 90 90 90 F0
	if !fb.Pixel(8, 4) || !fb.Pixel(11, 4) || fb.Pixel(12, 4) || fb.Pixel(9, 5) {
		t.Fatal("Glyph not drawn at (V0, V1)")
	}

	if err := mc.Step(); err != nil {
		t.Fatal(err)
	}

	if have := mc.State.Registers[0xF]; have != 1 {
		t.Fatalf("Collision flag mismatch on second draw\nwant:1\nhave:%d", have)
	}

	pixels, _ := fb.Snapshot(nil)

	for i, lit := range pixels {
		if lit {
			t.Fatalf("Pixel %d still lit after drawing the sprite twice", i)
		}
	}

	fb.Draw(0, 0, []byte{0xFF})

	if err := mc.Step(); err != nil {
		t.Fatal(err)
	}

	if fb.Pixel(0, 0) {
		t.Fatal("CLS did not clear the display")
	}
}

func TestDrawOutOfBounds(t *testing.T) {
	fb := machine.NewFramebuffer(machine.RES_64X32)
	mc, _ := machine.New(machine.WithDisplay(fb))

	mc.State.Memory[0x200] = 0xD0
	mc.State.Memory[0x201] = 0x1F
	mc.State.Address = 0xFF8
	mc.State.Registers[0xF] = 0x7

	if err := mc.Step(); err == nil {
		t.Fatal("Sprite read past the end of memory succeeded")
	}

	if fb.Version() != 0 {
		t.Fatal("Failed draw touched the display")
	}

	if mc.State.Registers[0xF] != 0x7 || mc.State.Program != 0x200 {
		t.Fatal("Failed draw modified machine state")
	}
}
