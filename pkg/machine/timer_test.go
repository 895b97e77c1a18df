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
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/lassandro/gochip8/pkg/machine"
)

type testTone struct {
	changes []bool
}

func (tone *testTone) SetTone(on bool) {
	tone.changes = append(tone.changes, on)
}

func TestTick(t *testing.T) {
	mc, _ := machine.New()
	mc.State.Delay = 2

	mc.Tick()
	mc.Tick()

	if have := mc.State.Delay; have != 0 {
		t.Fatalf("Delay timer mismatch after 2 ticks\nwant:0\nhave:%d", have)
	}

	mc.Tick()

	if have := mc.State.Delay; have != 0 {
		t.Fatalf("Delay timer underflowed\nwant:0\nhave:%d", have)
	}
}

func TestTone(t *testing.T) {
	tone := &testTone{}
	mc, _ := machine.New(machine.WithTone(tone))

	// LD V0, 2 ; LD ST, V0
	copy(mc.State.Memory[0x200:], []byte{0x60, 0x02, 0xF0, 0x18})

	for i := 0; i < 2; i++ {
		if err := mc.Step(); err != nil {
			t.Fatal(err)
		}
	}

	if len(tone.changes) != 1 || !tone.changes[0] {
		t.Fatalf("Tone not started by LD ST\nhave:%v", tone.changes)
	}

	mc.Tick()

	if len(tone.changes) != 1 {
		t.Fatalf("Tone toggled while sound timer non-zero\nhave:%v", tone.changes)
	}

	mc.Tick()
	mc.Tick()

	if len(tone.changes) != 2 || tone.changes[1] {
		t.Fatalf("Tone not stopped at zero\nhave:%v", tone.changes)
	}

	if have := mc.State.Sound; have != 0 {
		t.Fatalf("Sound timer mismatch\nwant:0\nhave:%d", have)
	}
}

// LD   |1111    |x      |0000   |1010   | Wait for key, Vx = key
// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
func TestWaitForKey(t *testing.T) {
	keys := machine.NewKeyState()
	mc, _ := machine.New(machine.WithKeypad(keys))

	// Stale press from before the wait must be ignored
	keys.Press(0x1)

	// LD V3, K ; LD V4, 0x01
	copy(mc.State.Memory[0x200:], []byte{0xF3, 0x0A, 0x64, 0x01})
	mc.State.Delay = 10

	if err := mc.Step(); err != nil {
		t.Fatal(err)
	}

	if mc.State.Mode != machine.MODE_AWAITING_KEY {
		t.Fatal("Machine not waiting for a key")
	}

	for i := 0; i < 5; i++ {
		if err := mc.Step(); err != nil {
			t.Fatal(err)
		}
		mc.Tick()
	}

	if mc.State.Program != 0x202 || mc.State.Registers[4] != 0 {
		t.Fatal("Instructions executed while waiting for a key")
	}

	if have := mc.State.Delay; have != 5 {
		t.Fatalf("Delay timer stalled during key wait\nwant:5\nhave:%d", have)
	}

	keys.Release(0x1)
	keys.Press(0x7)

	if err := mc.Step(); err != nil {
		t.Fatal(err)
	}

	if mc.State.Mode != machine.MODE_RUNNING {
		t.Fatal("Machine still waiting after a key press")
	}

	if have := mc.State.Registers[3]; have != 0x7 {
		t.Fatalf("Key register mismatch\nwant:0x07\nhave:%#02x", have)
	}

	if err := mc.Step(); err != nil {
		t.Fatal(err)
	}

	if mc.State.Registers[4] != 0x01 || mc.State.Program != 0x204 {
		t.Fatal("Execution did not resume after the key press")
	}
}

func TestKeyState(t *testing.T) {
	keys := machine.NewKeyState()

	if _, ok := keys.Pressed(); ok {
		t.Fatal("Press reported on an idle keypad")
	}

	keys.Press(0x3)
	keys.Press(0x3)

	if !keys.IsPressed(0x3) {
		t.Fatal("Held key not reported")
	}

	if key, ok := keys.Pressed(); !ok || key != 0x3 {
		t.Fatalf("Press mismatch\nwant:0x3\nhave:%#x (%v)", key, ok)
	}

	if _, ok := keys.Pressed(); ok {
		t.Fatal("Press reported twice")
	}

	keys.Release(0x3)

	if keys.IsPressed(0x3) {
		t.Fatal("Released key still held")
	}
}

func TestRun(t *testing.T) {
	mc, _ := machine.New(machine.WithClockRate(2000))

	// JP 0x200
	copy(mc.State.Memory[0x200:], []byte{0x12, 0x00})
	mc.State.Delay = 0xFF

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	if err := mc.Run(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Run result mismatch\nwant:%v\nhave:%v", context.DeadlineExceeded, err)
	}

	if mc.State.Delay == 0xFF {
		t.Fatal("Timers did not tick while running")
	}
}

func TestRunFault(t *testing.T) {
	mc, _ := machine.New(machine.WithClockRate(2000))

	// LD V0, 1 ; 8008
	copy(mc.State.Memory[0x200:], []byte{0x60, 0x01, 0x80, 0x08})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	err := mc.Run(ctx)

	if !errors.Is(err, machine.ErrUnknownOpcode) {
		t.Fatalf("Run result mismatch\nwant:%v\nhave:%v", machine.ErrUnknownOpcode, err)
	}

	if mc.State.Program != 0x202 || mc.State.Registers[0] != 0x01 {
		t.Fatal("Machine did not stop on the faulting instruction")
	}
}

func TestClockRateOption(t *testing.T) {
	if _, err := machine.New(machine.WithClockRate(0)); err == nil {
		t.Fatal("Zero clock rate accepted")
	}

	if _, err := machine.New(machine.WithClockRate(2000000000)); err == nil {
		t.Fatal("Sub-nanosecond clock rate accepted")
	}

	if _, err := machine.New(machine.WithClockRate(machine.MAX_CLOCK_HZ)); err != nil {
		t.Fatalf("Maximum clock rate rejected\nhave:%v", err)
	}
}

func TestRunClockRateClamp(t *testing.T) {
	mc, _ := machine.New()
	mc.ClockRate = 2000000000

	// JP 0x200
	copy(mc.State.Memory[0x200:], []byte{0x12, 0x00})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := mc.Run(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Run result mismatch\nwant:%v\nhave:%v", context.DeadlineExceeded, err)
	}
}

func TestLoadROM(t *testing.T) {
	mc, _ := machine.New()
	mc.State.Registers[5] = 0x55
	mc.State.Program = 0x400

	if err := mc.LoadROM(bytes.NewReader([]byte{0x12, 0x34, 0x56})); err != nil {
		t.Fatal(err)
	}

	if mc.State.Program != machine.MEMSPACE_PROGRAM || mc.State.Registers[5] != 0 {
		t.Fatal("Loading did not reset the machine")
	}

	if !bytes.Equal(mc.State.Memory[0x200:0x203], []byte{0x12, 0x34, 0x56}) {
		t.Fatalf("Image not loaded at 0x200\nhave:% x", mc.State.Memory[0x200:0x203])
	}

	full := bytes.Repeat([]byte{0xAB}, machine.MAX_PROGRAM_SIZE)

	if err := mc.LoadROM(bytes.NewReader(full)); err != nil {
		t.Fatalf("Maximum size image rejected\nhave:%v", err)
	}

	oversized := append(full, 0x00)

	if err := mc.LoadROM(bytes.NewReader(oversized)); !errors.Is(err, machine.ErrProgramTooLarge) {
		t.Fatalf("Oversized image\nwant:%v\nhave:%v", machine.ErrProgramTooLarge, err)
	}
}
