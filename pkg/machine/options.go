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

	"github.com/pkg/errors"
)

// Option configures a Machine created with New.
type Option func(*Machine) error

// WithDisplay sets the surface sprites are drawn to.
func WithDisplay(display Display) Option {
	return func(mc *Machine) error {
		mc.Devices.Display = display
		return nil
	}
}

// WithKeypad sets the keypad queried by SKP, SKNP and LD Vx, K.
func WithKeypad(keypad Keypad) Option {
	return func(mc *Machine) error {
		mc.Devices.Keypad = keypad
		return nil
	}
}

// WithTone sets the output driven by the sound timer.
func WithTone(tone Tone) Option {
	return func(mc *Machine) error {
		mc.Devices.Tone = tone
		return nil
	}
}

// WithRand sets the source used by RND.
func WithRand(source *rand.Rand) Option {
	return func(mc *Machine) error {
		mc.Rand = source
		return nil
	}
}

// WithSeed seeds RND deterministically.
func WithSeed(seed int64) Option {
	return WithRand(rand.New(rand.NewSource(seed)))
}

func WithDebugger(dbg MachineDebugger) Option {
	return func(mc *Machine) error {
		mc.Debugger = dbg
		return nil
	}
}

// WithTrace logs every executed instruction to logger.
func WithTrace(logger *log.Logger) Option {
	return func(mc *Machine) error {
		mc.Trace = logger
		return nil
	}
}

// WithClockRate sets the number of instructions executed per second by Run.
func WithClockRate(hz int) Option {
	return func(mc *Machine) error {
		if hz <= 0 || hz > MAX_CLOCK_HZ {
			return errors.Errorf("invalid clock rate %d", hz)
		}
		mc.ClockRate = hz
		return nil
	}
}
