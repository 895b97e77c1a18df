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
	"bufio"
	"context"
	"log"
	"os"
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/term"

	"github.com/lassandro/gochip8/pkg/machine"
)

// Terminals only report key presses, so a key counts as held until no
// repeat arrives within this window.
const KEY_HOLD = 200 * time.Millisecond

const KEY_QUIT = 0x1B

// 1 2 3 4      1 2 3 C
// q w e r  ->  4 5 6 D
// a s d f      7 8 9 E
// z x c v      A 0 B F
var terminalKeys = map[byte]uint8{
	'1': 0x1, '2': 0x2, '3': 0x3, '4': 0xC,
	'q': 0x4, 'w': 0x5, 'e': 0x6, 'r': 0xD,
	'a': 0x7, 's': 0x8, 'd': 0x9, 'f': 0xE,
	'z': 0xA, 'x': 0x0, 'c': 0xB, 'v': 0xF,
}

type terminal struct {
	mutex sync.Mutex

	fb   *machine.Framebuffer
	keys *machine.KeyState
	out  *bufio.Writer
	quit func()

	held     [16]time.Time
	pixels   []bool
	version  uint64
	drawn    bool
	input    []byte
	rowCache []rune
}

func newTerminal(fb *machine.Framebuffer, keys *machine.KeyState) (*terminal, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return nil, errors.New("stdin is not a terminal, use -window")
	}

	res := fb.Resolution()

	if width, height, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		if width < res.Width || height < res.Height/2 {
			log.Printf(
				"terminal is %dx%d, the %s display needs %dx%d",
				width, height, res, res.Width, res.Height/2,
			)
		}
	}

	return &terminal{
		fb:       fb,
		keys:     keys,
		out:      bufio.NewWriter(os.Stdout),
		input:    make([]byte, 32),
		rowCache: make([]rune, res.Width),
	}, nil
}

func (tm *terminal) Start() error {
	if err := enterRawTerm(); err != nil {
		return err
	}

	tm.out.WriteString("\033[?25l\033[2J")
	tm.out.Flush()
	return nil
}

func (tm *terminal) Stop() {
	tm.mutex.Lock()
	defer tm.mutex.Unlock()

	tm.out.WriteString("\033[0m\033[?25h\r\n")
	tm.out.Flush()

	if err := exitRawTerm(); err != nil {
		log.Println(err)
	}
}

// Hands the terminal over to the debugger until Resume
func (tm *terminal) Suspend() {
	tm.mutex.Lock()

	tm.out.WriteString("\033[?25h\r\n")
	tm.out.Flush()

	if err := exitRawTerm(); err != nil {
		log.Println(err)
	}
}

func (tm *terminal) Resume() {
	if err := enterRawTerm(); err != nil {
		log.Println(err)
	}

	tm.out.WriteString("\033[?25l\033[2J")
	tm.drawn = false

	tm.mutex.Unlock()
}

// Polls the keypad and redraws the display at the timer rate until ctx is done
func (tm *terminal) Run(ctx context.Context) {
	frame := time.NewTicker(time.Second / machine.TIMER_HZ)
	defer frame.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-frame.C:
			tm.mutex.Lock()
			tm.poll(now)
			tm.render()
			tm.mutex.Unlock()
		}
	}
}

func (tm *terminal) poll(now time.Time) {
	n, err := readTerm(tm.input)

	if err != nil {
		log.Println(err)
		return
	}

	for _, char := range tm.input[:n] {
		// A lone escape quits; escape sequences (arrows etc.) are ignored
		if char == KEY_QUIT {
			if n == 1 && tm.quit != nil {
				tm.quit()
			}
			return
		}

		if char >= 'A' && char <= 'Z' {
			char += 'a' - 'A'
		}

		if key, exists := terminalKeys[char]; exists {
			tm.keys.Press(key)
			tm.held[key] = now.Add(KEY_HOLD)
		}
	}

	for key, deadline := range tm.held {
		if !deadline.IsZero() && now.After(deadline) {
			tm.keys.Release(uint8(key))
			tm.held[key] = time.Time{}
		}
	}
}

// Draws two framebuffer rows per text row with half block characters
func (tm *terminal) render() {
	var version uint64

	tm.pixels, version = tm.fb.Snapshot(tm.pixels)

	if tm.drawn && version == tm.version {
		return
	}

	res := tm.fb.Resolution()

	tm.out.WriteString("\033[H")

	for y := 0; y < res.Height; y += 2 {
		for x := 0; x < res.Width; x++ {
			top := tm.pixels[y*res.Width+x]
			bottom := y+1 < res.Height && tm.pixels[(y+1)*res.Width+x]

			switch {
			case top && bottom:
				tm.rowCache[x] = '█'
			case top:
				tm.rowCache[x] = '▀'
			case bottom:
				tm.rowCache[x] = '▄'
			default:
				tm.rowCache[x] = ' '
			}
		}

		tm.out.WriteString(string(tm.rowCache))
		tm.out.WriteString("\r\n")
	}

	tm.out.Flush()

	tm.version = version
	tm.drawn = true
}
