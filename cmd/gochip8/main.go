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
	"encoding/gob"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/pkg/errors"

	"github.com/lassandro/gochip8/pkg/assembler"
	"github.com/lassandro/gochip8/pkg/debugger"
	"github.com/lassandro/gochip8/pkg/machine"
)

var helpvar bool
var debugvar bool
var tracevar bool
var windowvar bool
var mutevar bool
var hzvar int
var scalevar int
var seedvar int64
var modevar string

// Set while the terminal frontend owns stdin and stdout
var screen *terminal

var stop context.CancelFunc = func() {}
var done context.Context = context.Background()

const usage = "gochip8 [-debug] [-window] [-hz rate] [-mode WxH] filename"

func init() {
	exe, _ := os.Executable()
	log.SetFlags(0)
	log.SetPrefix(fmt.Sprintf("%s: ", filepath.Base(exe)))
	log.SetOutput(os.Stderr)
}

func init() {
	flag.BoolVar(&helpvar, "help", false, "Displays command usage")
	flag.BoolVar(&debugvar, "debug", false, "Runs the machine in a debug CLI")
	flag.BoolVar(
		&tracevar, "trace", false,
		"Logs every executed instruction to stderr",
	)
	flag.BoolVar(
		&windowvar, "window", false,
		"Presents the display in a window instead of the terminal",
	)
	flag.BoolVar(&mutevar, "mute", false, "Disables the sound timer tone")
	flag.IntVar(
		&hzvar, "hz", machine.DEFAULT_CLOCK_HZ,
		"Specifies the instruction rate in steps per second",
	)
	flag.IntVar(&scalevar, "scale", 10, "Specifies the window pixel scale")
	flag.Int64Var(
		&seedvar, "seed", 0,
		"Specifies a fixed seed for RND, zero seeds from the clock",
	)
	flag.StringVar(
		&modevar, "mode", machine.RES_64X32.String(),
		"Specifies the display resolution (64x32, 64x48, 64x64, 128x64)",
	)
	flag.Parse()
}

func quit() {
	stop()
}

func quitting() bool {
	return done.Err() != nil
}

func loadSymTable(dbg *debugger.Debugger, filename string) {
	symfile := filepath.Join(
		filepath.Dir(filename),
		strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))+".c8db",
	)

	file, err := os.Open(symfile)

	if err != nil {
		log.Println("Error loading symbol file")
		log.Println(err)
		return
	}

	defer file.Close()

	var symtable assembler.SymTable

	if err := gob.NewDecoder(file).Decode(&symtable); err != nil {
		log.Println("Error loading symbol file")
		log.Println(err)
		return
	}

	dbg.SymTable = &symtable

	if symtable.Source != "" {
		if source, err := os.Open(symtable.Source); err == nil {
			dbg.Source = source
		} else {
			log.Println("Error loading source file")
			log.Println(err)
		}
	}
}

func exitCode(err error) int {
	if err == nil || errors.Is(err, context.Canceled) {
		return 0
	}

	log.Println(err)
	return 1
}

func runTerminal(ctx context.Context, mc *machine.Machine, fb *machine.Framebuffer, keys *machine.KeyState) int {
	tm, err := newTerminal(fb, keys)

	if err != nil {
		log.Println(err)
		return 1
	}

	if err := tm.Start(); err != nil {
		log.Println(err)
		return 1
	}

	tm.quit = quit
	screen = tm

	frontend, cancel := context.WithCancel(ctx)
	finished := make(chan struct{})

	go func() {
		tm.Run(frontend)
		close(finished)
	}()

	err = mc.Run(ctx)

	cancel()
	<-finished

	screen = nil
	tm.Stop()

	return exitCode(err)
}

func runWindow(ctx context.Context, mc *machine.Machine, fb *machine.Framebuffer, keys *machine.KeyState, title string) int {
	res := fb.Resolution()

	ebiten.SetWindowSize(res.Width*scalevar, res.Height*scalevar)
	ebiten.SetWindowTitle(title)
	ebiten.SetRunnableOnUnfocused(true)

	result := make(chan error, 1)

	go func() {
		result <- mc.Run(ctx)
		quit()
	}()

	// ebiten must own the main goroutine
	if err := ebiten.RunGame(newWindow(ctx, fb, keys)); err != nil {
		quit()
		<-result
		log.Println(err)
		return 1
	}

	quit()
	return exitCode(<-result)
}

func gochip8() int {
	if helpvar {
		fmt.Println(usage)
		flag.PrintDefaults()
		return 0
	}

	args := flag.Args()

	if len(args) != 1 {
		log.Println(usage)
		return 1
	}

	res, err := machine.ParseResolution(modevar)

	if err != nil {
		log.Println(err)
		return 1
	}

	file, err := os.Open(args[0])

	if err != nil {
		log.Println(err)
		return 1
	}

	defer file.Close()

	fb := machine.NewFramebuffer(res)
	keys := machine.NewKeyState()

	options := []machine.Option{
		machine.WithDisplay(fb),
		machine.WithKeypad(keys),
		machine.WithClockRate(hzvar),
	}

	if seedvar != 0 {
		options = append(options, machine.WithSeed(seedvar))
	}

	if tracevar {
		options = append(
			options, machine.WithTrace(log.New(os.Stderr, "trace: ", 0)),
		)
	}

	if !mutevar {
		if bp, err := newBeeper(); err == nil {
			options = append(options, machine.WithTone(bp))
			defer bp.Close()
		} else {
			log.Println(err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var dbg *debugger.Debugger

	if debugvar {
		dbg = &debugger.Debugger{
			HandleBreak: handleBreak,
			HandleRead:  handleRead,
			HandleWrite: handleWrite,
			Binary:      file,
		}

		loadSymTable(dbg, args[0])

		if dbg.Source != nil {
			defer dbg.Source.Close()
		}

		options = append(options, machine.WithDebugger(dbg))

		c := make(chan os.Signal, 1)
		defer signal.Stop(c)

		signal.Notify(c, os.Interrupt)
		go func() {
			for range c {
				dbg.Interrupt()
			}
		}()
	} else {
		ctx, cancel = signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer cancel()
	}

	stop, done = cancel, ctx

	mc, err := machine.New(options...)

	if err != nil {
		log.Println(err)
		return 1
	}

	if err := mc.LoadROM(file); err != nil {
		log.Println(err)
		return 1
	}

	if debugvar {
		debugREPL(dbg, mc)
	}

	if windowvar {
		return runWindow(ctx, mc, fb, keys, "gochip8 - "+filepath.Base(args[0]))
	}

	return runTerminal(ctx, mc, fb, keys)
}

func main() {
	os.Exit(gochip8())
}
