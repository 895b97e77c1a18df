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
	"sync"

	"github.com/pkg/errors"
)

type Resolution struct {
	Width  int
	Height int
}

var (
	RES_64X32  = Resolution{64, 32}
	RES_64X48  = Resolution{64, 48}
	RES_64X64  = Resolution{64, 64}
	RES_128X64 = Resolution{128, 64}
)

var RESOLUTIONS = []Resolution{RES_64X32, RES_64X48, RES_64X64, RES_128X64}

func (res Resolution) String() string {
	return fmt.Sprintf("%dx%d", res.Width, res.Height)
}

func ParseResolution(s string) (Resolution, error) {
	for _, res := range RESOLUTIONS {
		if res.String() == s {
			return res, nil
		}
	}

	return Resolution{}, errors.Errorf("unsupported resolution %q", s)
}

// Framebuffer is the monochrome display memory. It is safe for a presenter
// to read it from another goroutine while the machine draws.
type Framebuffer struct {
	mutex   sync.RWMutex
	res     Resolution
	pixels  []bool
	version uint64
}

func NewFramebuffer(res Resolution) *Framebuffer {
	return &Framebuffer{
		res:    res,
		pixels: make([]bool, res.Width*res.Height),
	}
}

func (fb *Framebuffer) Resolution() Resolution {
	return fb.res
}

func (fb *Framebuffer) Clear() {
	fb.mutex.Lock()
	defer fb.mutex.Unlock()

	for i := range fb.pixels {
		fb.pixels[i] = false
	}

	fb.version++
}

// Draw XORs sprite onto the display. The origin wraps around the screen;
// rows and columns running past the right or bottom edge are clipped.
func (fb *Framebuffer) Draw(x, y uint8, sprite []byte) bool {
	fb.mutex.Lock()
	defer fb.mutex.Unlock()

	ox := int(x) % fb.res.Width
	oy := int(y) % fb.res.Height
	collision := false

	for row, bits := range sprite {
		py := oy + row

		if py >= fb.res.Height {
			break
		}

		for col := 0; col < 8; col++ {
			px := ox + col

			if px >= fb.res.Width {
				break
			}

			if bits&(0x80>>col) == 0 {
				continue
			}

			i := py*fb.res.Width + px

			if fb.pixels[i] {
				collision = true
			}

			fb.pixels[i] = !fb.pixels[i]
		}
	}

	fb.version++
	return collision
}

func (fb *Framebuffer) Pixel(x, y int) bool {
	if x < 0 || y < 0 || x >= fb.res.Width || y >= fb.res.Height {
		return false
	}

	fb.mutex.RLock()
	defer fb.mutex.RUnlock()

	return fb.pixels[y*fb.res.Width+x]
}

// Version increases on every change to the display.
func (fb *Framebuffer) Version() uint64 {
	fb.mutex.RLock()
	defer fb.mutex.RUnlock()

	return fb.version
}

// Snapshot copies the pixels, row-major, into dst (grown if needed) and
// returns it together with the version it was taken at.
func (fb *Framebuffer) Snapshot(dst []bool) ([]bool, uint64) {
	fb.mutex.RLock()
	defer fb.mutex.RUnlock()

	if cap(dst) < len(fb.pixels) {
		dst = make([]bool, len(fb.pixels))
	}

	dst = dst[:len(fb.pixels)]
	copy(dst, fb.pixels)

	return dst, fb.version
}
