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
	"sync"
)

// KeyState is a Keypad fed by a host input source, possibly from another
// goroutine.
type KeyState struct {
	mutex   sync.Mutex
	down    [16]bool
	last    uint8
	pending bool
}

func NewKeyState() *KeyState {
	return &KeyState{}
}

func (ks *KeyState) Press(key uint8) {
	ks.Set(key, true)
}

func (ks *KeyState) Release(key uint8) {
	ks.Set(key, false)
}

func (ks *KeyState) Set(key uint8, down bool) {
	key &= 0xF

	ks.mutex.Lock()
	defer ks.mutex.Unlock()

	if down && !ks.down[key] {
		ks.last = key
		ks.pending = true
	}

	ks.down[key] = down
}

func (ks *KeyState) IsPressed(key uint8) bool {
	ks.mutex.Lock()
	defer ks.mutex.Unlock()

	return ks.down[key&0xF]
}

func (ks *KeyState) Pressed() (uint8, bool) {
	ks.mutex.Lock()
	defer ks.mutex.Unlock()

	if !ks.pending {
		return 0, false
	}

	ks.pending = false
	return ks.last, true
}
