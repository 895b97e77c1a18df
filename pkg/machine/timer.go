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
	"context"
	"time"
)

// Tick advances both countdown timers by one 60 Hz period. Neither timer
// decrements past zero.
func (mc *Machine) Tick() {
	if mc.State.Delay > 0 {
		mc.State.Delay--
	}

	if mc.State.Sound > 0 {
		mc.State.Sound--
	}

	mc.updateTone()
}

func (mc *Machine) updateTone() {
	on := mc.State.Sound > 0

	if on == mc.toneOn {
		return
	}

	mc.toneOn = on

	if mc.Devices != nil && mc.Devices.Tone != nil {
		mc.Devices.Tone.SetTone(on)
	}
}

// Run executes instructions at ClockRate and ticks the timers at TIMER_HZ
// until ctx is cancelled or a step fails. Both schedules are served from this
// goroutine, so only one of them touches the machine at a time. Timers keep
// running while the machine waits for a key.
func (mc *Machine) Run(ctx context.Context) error {
	rate := mc.ClockRate

	if rate <= 0 {
		rate = DEFAULT_CLOCK_HZ
	}

	if rate > MAX_CLOCK_HZ {
		rate = MAX_CLOCK_HZ
	}

	cpu := time.NewTicker(time.Second / time.Duration(rate))
	defer cpu.Stop()

	timers := time.NewTicker(time.Second / TIMER_HZ)
	defer timers.Stop()

	defer func() {
		if mc.toneOn && mc.Devices != nil && mc.Devices.Tone != nil {
			mc.Devices.Tone.SetTone(false)
		}
		mc.toneOn = false
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-timers.C:
			mc.Tick()

		case <-cpu.C:
			if err := mc.Step(); err != nil {
				return err
			}
		}
	}
}
