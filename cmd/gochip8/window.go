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

package main

import (
	"context"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/lassandro/gochip8/pkg/machine"
)

var (
	colorOn  = color.RGBA{0xE0, 0xE0, 0xE0, 0xFF}
	colorOff = color.RGBA{0x10, 0x10, 0x10, 0xFF}
)

// 1 2 3 4      1 2 3 C
// Q W E R  ->  4 5 6 D
// A S D F      7 8 9 E
// Z X C V      A 0 B F
var windowKeys = [16]ebiten.Key{
	0x0: ebiten.KeyX,
	0x1: ebiten.Key1,
	0x2: ebiten.Key2,
	0x3: ebiten.Key3,
	0x4: ebiten.KeyQ,
	0x5: ebiten.KeyW,
	0x6: ebiten.KeyE,
	0x7: ebiten.KeyA,
	0x8: ebiten.KeyS,
	0x9: ebiten.KeyD,
	0xA: ebiten.KeyZ,
	0xB: ebiten.KeyC,
	0xC: ebiten.Key4,
	0xD: ebiten.KeyR,
	0xE: ebiten.KeyF,
	0xF: ebiten.KeyV,
}

// ebiten.Game presenting a framebuffer and feeding the keypad
type window struct {
	ctx  context.Context
	fb   *machine.Framebuffer
	keys *machine.KeyState

	image   *ebiten.Image
	rgba    []byte
	pixels  []bool
	version uint64
	drawn   bool
}

func newWindow(ctx context.Context, fb *machine.Framebuffer, keys *machine.KeyState) *window {
	res := fb.Resolution()

	return &window{
		ctx:  ctx,
		fb:   fb,
		keys: keys,
		rgba: make([]byte, res.Width*res.Height*4),
	}
}

func (win *window) Update() error {
	select {
	case <-win.ctx.Done():
		return ebiten.Termination
	default:
	}

	if ebiten.IsWindowBeingClosed() || ebiten.IsKeyPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	for key, ekey := range windowKeys {
		win.keys.Set(uint8(key), ebiten.IsKeyPressed(ekey))
	}

	return nil
}

func (win *window) Draw(screen *ebiten.Image) {
	res := win.fb.Resolution()

	if win.image == nil {
		win.image = ebiten.NewImage(res.Width, res.Height)
	}

	var version uint64
	win.pixels, version = win.fb.Snapshot(win.pixels)

	if !win.drawn || version != win.version {
		for i, on := range win.pixels {
			c := colorOff
			if on {
				c = colorOn
			}

			win.rgba[i*4+0] = c.R
			win.rgba[i*4+1] = c.G
			win.rgba[i*4+2] = c.B
			win.rgba[i*4+3] = c.A
		}

		win.image.WritePixels(win.rgba)
		win.version = version
		win.drawn = true
	}

	screen.DrawImage(win.image, nil)
}

func (win *window) Layout(_, _ int) (int, int) {
	res := win.fb.Resolution()
	return res.Width, res.Height
}
