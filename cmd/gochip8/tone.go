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
	"encoding/binary"
	"math"
	"sync/atomic"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/pkg/errors"
)

const (
	TONE_SAMPLE_RATE = 44100
	TONE_FREQUENCY   = 440
	TONE_VOLUME      = 0.15
)

// Square wave generator driven by the sound timer
type beeper struct {
	context *oto.Context
	player  *oto.Player
	on      atomic.Bool
	phase   int
}

func newBeeper() (*beeper, error) {
	options := &oto.NewContextOptions{
		SampleRate:   TONE_SAMPLE_RATE,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
		BufferSize:   50 * time.Millisecond,
	}

	context, ready, err := oto.NewContext(options)

	if err != nil {
		return nil, errors.Wrap(err, "opening audio device")
	}

	<-ready

	bp := &beeper{context: context}
	bp.player = context.NewPlayer(bp)
	bp.player.Play()

	return bp, nil
}

func (bp *beeper) SetTone(on bool) {
	bp.on.Store(on)
}

// Called from the audio thread
func (bp *beeper) Read(p []byte) (int, error) {
	const period = TONE_SAMPLE_RATE / TONE_FREQUENCY

	count := len(p) / 4
	on := bp.on.Load()

	for i := 0; i < count; i++ {
		var sample float32

		if on {
			if bp.phase < period/2 {
				sample = TONE_VOLUME
			} else {
				sample = -TONE_VOLUME
			}
		}

		bp.phase = (bp.phase + 1) % period
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(sample))
	}

	return count * 4, nil
}

func (bp *beeper) Close() {
	bp.on.Store(false)
	bp.player.Close()
}
