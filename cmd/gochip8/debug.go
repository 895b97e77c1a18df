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
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/lassandro/gochip8/pkg/debugger"
	"github.com/lassandro/gochip8/pkg/encoding"
	"github.com/lassandro/gochip8/pkg/machine"
)

var lastcmd []string

func debugBreak(dbg *debugger.Debugger, args []string) {
	if len(args) == 0 {
		args = append(args, "l")
	}

	cmd := args[0]
	args = args[1:]

	switch cmd {
	case "a", "add":
		const usage = "break add [0x###|label]"

		if len(args) != 1 {
			log.Println(usage)
			return
		}

		addr, err := dbg.Resolve(args[0])

		if err != nil {
			log.Println(err)
			return
		}

		if dbg.AddBreakpoint(addr) {
			fmt.Printf("Breakpoint added [%#04x]\n", addr)
		}

	case "l", "ls", "list":
		const usage = "break list"

		if len(args) != 0 {
			log.Println(usage)
			return
		}

		var fmtstring string
		{
			digits := math.Floor(math.Log10(float64(len(dbg.Breakpoints) + 1)))
			fmtstring = fmt.Sprintf("#%%0%dd: %%#04x\n", int64(digits)+1)
		}

		for i, breakpoint := range dbg.Breakpoints {
			fmt.Printf(fmtstring, i, breakpoint.Addr)
		}

	case "r", "rm", "remove":
		const usage = "break remove [#]"

		if len(args) != 1 {
			log.Println(usage)
			return
		}

		i, err := strconv.ParseInt(args[0], 10, 64)

		if err != nil {
			log.Println(err)
			return
		}

		if i < 0 || i >= int64(len(dbg.Breakpoints)) {
			log.Println("Invalid breakpoint number")
			return
		}

		dbg.Breakpoints[i] = dbg.Breakpoints[len(dbg.Breakpoints)-1]
		dbg.Breakpoints = dbg.Breakpoints[:len(dbg.Breakpoints)-1]
		fmt.Printf("Breakpoint removed [%d]\n", i)

	case "clear":
		dbg.Breakpoints = make([]debugger.Breakpoint, 0)
		fmt.Println("Breakpoints reset")

	default:
		log.Printf("break: '%s' is not a valid command\n", cmd)
	}
}

func debugWatch(dbg *debugger.Debugger, args []string) {
	const usage = "watch [add|list|rm|clear]"

	if len(args) == 0 {
		log.Println(usage)
		return
	}

	cmd := args[0]
	args = args[1:]

	typenames := map[debugger.WatchpointType]string{
		debugger.ReadWatch:      "read",
		debugger.WriteWatch:     "write",
		debugger.ReadWriteWatch: "rwrite",
	}

	switch cmd {
	case "a", "add":
		const usage = "watch add [0x###|label] [read|write|readwrite]"

		if len(args) != 2 {
			log.Println(usage)
			return
		}

		addr, err := dbg.Resolve(args[0])

		if err != nil {
			log.Println(err)
			return
		}

		var wtype debugger.WatchpointType

		switch args[1] {
		case "r", "read":
			wtype = debugger.ReadWatch
		case "w", "write":
			wtype = debugger.WriteWatch
		case "rw", "rwrite", "readwrite":
			wtype = debugger.ReadWriteWatch
		default:
			log.Println(usage)
			return
		}

		if dbg.AddWatchpoint(addr, wtype) {
			fmt.Printf("Watchpoint added [%#04x] (%s)\n", addr, typenames[wtype])
		}

	case "l", "ls", "list":
		const usage = "watch list"

		if len(args) != 0 {
			log.Println(usage)
			return
		}

		var fmtstring string
		{
			digits := math.Floor(math.Log10(float64(len(dbg.Watchpoints) + 1)))
			fmtstring = fmt.Sprintf("#%%0%dd: %%#04x %%s\n", int64(digits)+1)
		}

		for i, watchpoint := range dbg.Watchpoints {
			fmt.Printf(fmtstring, i, watchpoint.Addr, typenames[watchpoint.Type])
		}

	case "r", "rm", "remove":
		const usage = "watch rm [#]"

		if len(args) != 1 {
			log.Println(usage)
			return
		}

		i, err := strconv.ParseInt(args[0], 10, 64)

		if err != nil {
			log.Println(err)
			return
		}

		if i < 0 || i >= int64(len(dbg.Watchpoints)) {
			log.Println("Invalid watchpoint number")
			return
		}

		dbg.Watchpoints[i] = dbg.Watchpoints[len(dbg.Watchpoints)-1]
		dbg.Watchpoints = dbg.Watchpoints[:len(dbg.Watchpoints)-1]
		fmt.Printf("Watchpoint removed [%d]\n", i)

	case "clear":
		dbg.Watchpoints = make([]debugger.Watchpoint, 0)
		fmt.Println("Watchpoints reset")

	default:
		log.Printf("watch: '%s' is not a valid command\n", cmd)
	}
}

func debugReg(dbg *debugger.Debugger, mc *machine.MachineState, args []string) {
	const usage = "register [V#|I|PC|SP|DT|ST] [0x###]"

	if len(args) == 0 {
		dbg.PrintRegisters(mc)
		return
	}

	if len(args) != 2 {
		log.Println(usage)
		return
	}

	value, err := encoding.DecodeHex(args[1])

	if err != nil {
		log.Println(err)
		return
	}

	name := strings.ToUpper(args[0])

	switch {
	case len(name) == 2 && name[0] == 'V':
		reg, err := strconv.ParseUint(name[1:], 16, 8)

		if err != nil {
			log.Println("Invalid register")
			return
		}

		mc.Registers[reg] = uint8(value)
	case name == "I":
		mc.Address = value
	case name == "PC":
		mc.Program = value
	case name == "SP":
		mc.Stack = uint8(value) % machine.STACK_DEPTH
		mc.Depth = mc.Stack
	case name == "DT":
		mc.Delay = uint8(value)
	case name == "ST":
		mc.Sound = uint8(value)
	default:
		log.Println("Invalid register")
		return
	}

	fmt.Printf("\033[1m%s:\033[0m %#04x\n", name, value)
}

// Parses the optional [0x###|label] [#] arguments shared by listing commands.
// A lone decimal argument is a count from the program counter.
func parseRange(dbg *debugger.Debugger, mc *machine.MachineState, args []string, size uint16) (uint16, uint16, bool) {
	var addr uint16 = mc.Program

	if len(args) > 2 {
		return 0, 0, false
	}

	if len(args) > 0 {
		resolved, err := dbg.Resolve(args[0])

		if err == nil {
			addr = resolved
		} else {
			value, err := strconv.ParseInt(args[0], 10, 16)

			if err != nil {
				log.Println(err)
				return 0, 0, false
			}

			size = uint16(value)
		}
	}

	if len(args) > 1 {
		value, err := strconv.ParseInt(args[1], 10, 16)

		if err != nil {
			log.Println(err)
			return 0, 0, false
		}

		size = uint16(value)
	}

	return addr, size, true
}

func debugSource(dbg *debugger.Debugger, mc *machine.MachineState, args []string) {
	const usage = "source [0x###|label] [#]"

	addr, size, ok := parseRange(dbg, mc, args, 3)

	if !ok {
		log.Println(usage)
		return
	}

	if dbg.Source == nil {
		dbg.PrintDisasm(mc, addr, size)
		return
	}

	dbg.PrintSource(addr, size)
}

func debugDisasm(dbg *debugger.Debugger, mc *machine.MachineState, args []string) {
	const usage = "disasm [0x###|label] [#]"

	addr, size, ok := parseRange(dbg, mc, args, debugger.CONTEXT_LINES)

	if !ok {
		log.Println(usage)
		return
	}

	dbg.PrintDisasm(mc, addr, size)
}

func debugJump(dbg *debugger.Debugger, mc *machine.MachineState, args []string) {
	const usage = "jump [0x###|label]"

	if len(args) != 1 {
		fmt.Println(usage)
		return
	}

	addr, err := dbg.Resolve(args[0])

	if err != nil {
		fmt.Println(err)
		return
	}

	mc.Program = addr
	fmt.Printf("\033[1mPC:\033[0m %#04x\n", addr)
}

func debugMemory(dbg *debugger.Debugger, mc *machine.MachineState, args []string) {
	const usage = "memory [0x###|label|#] [#]"

	addr, size, ok := parseRange(dbg, mc, args, 1)

	if !ok {
		log.Println(usage)
		return
	}

	dbg.PrintMem(mc, addr, size)
}

func debugSet(dbg *debugger.Debugger, mc *machine.MachineState, args []string) {
	const usage = "set [0x###|label] [0x##]"

	if len(args) != 2 {
		log.Println(usage)
		return
	}

	addr, err := dbg.Resolve(args[0])

	if err != nil {
		log.Println(err)
		return
	}

	value, err := encoding.DecodeHex(args[1])

	if err != nil {
		log.Println(err)
		return
	}

	if err := mc.Memory.Write(addr, uint8(value)); err != nil {
		log.Println(err)
		return
	}

	dbg.PrintMem(mc, addr, 1)
}

func debugKey(mc *machine.Machine, args []string) {
	const usage = "key [0-F]"

	if len(args) != 1 {
		log.Println(usage)
		return
	}

	key, err := strconv.ParseUint(args[0], 16, 4)

	if err != nil {
		log.Println(usage)
		return
	}

	if keys, ok := mc.Devices.Keypad.(*machine.KeyState); ok {
		keys.Press(uint8(key))
		keys.Release(uint8(key))
		fmt.Printf("Key %X pressed\n", key)
	}
}

func debugReset(dbg *debugger.Debugger, mc *machine.Machine) {
	if dbg.Binary == nil {
		fmt.Println("No program file loaded")
		return
	}

	reset := func(mc *machine.Machine) {
		if _, err := dbg.Binary.Seek(0, io.SeekStart); err != nil {
			log.Println(err)
			return
		}

		if err := mc.LoadROM(dbg.Binary); err != nil {
			log.Println(err)
			return
		}

		fmt.Println("Machine reset")
	}

	if !dbg.AtBoundary(mc, reset) {
		fmt.Println("Machine will reset once the current instruction completes")
	}
}

func debugREPL(dbg *debugger.Debugger, mc *machine.Machine) {
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("\033[1;30m(dbg)\033[0m ")

		if !scanner.Scan() {
			fmt.Println()
			quit()
			return
		}

		args := strings.Fields(scanner.Text())

		if len(args) == 0 {
			if len(lastcmd) == 0 {
				continue
			}
			args = lastcmd
		} else {
			lastcmd = make([]string, len(args))
			copy(lastcmd, args)
		}

		cmd := args[0]
		args = args[1:]

		switch cmd {
		case "b", "bp", "break", "breakpoint":
			debugBreak(dbg, args)

		case "w", "wp", "watch", "watchpoint":
			debugWatch(dbg, args)

		case "r", "reg", "register", "registers":
			debugReg(dbg, &mc.State, args)

		case "s", "src", "source":
			debugSource(dbg, &mc.State, args)

		case "d", "dis", "disasm":
			debugDisasm(dbg, &mc.State, args)

		case "l", "label", "labels":
			dbg.PrintLabels()

		case "bt", "stack":
			dbg.PrintStack(&mc.State)

		case "j", "jmp", "jump":
			debugJump(dbg, &mc.State, args)

		case "m", "mem", "memory":
			debugMemory(dbg, &mc.State, args)

		case "set":
			debugSet(dbg, &mc.State, args)

		case "k", "key":
			debugKey(mc, args)

		case "c", "continue":
			dbg.Break = false
			return

		case "n", "next":
			dbg.Break = true
			return

		case "q", "quit", "exit":
			quit()
			return

		case "clear":
			fmt.Print("\033[H\033[2J")

		case "reset":
			debugReset(dbg, mc)

		default:
			fmt.Printf("error: '%s' is not a valid command\n", cmd)
		}
	}
}

func stopped(dbg *debugger.Debugger, mc *machine.Machine) {
	fmt.Println()
	fmt.Println("Program stopped")

	if dbg.Source != nil {
		dbg.PrintSource(mc.State.Program, debugger.CONTEXT_LINES)
	} else {
		dbg.PrintDisasm(&mc.State, mc.State.Program, debugger.CONTEXT_LINES)
	}
}

func handleBreak(dbg *debugger.Debugger, mc *machine.Machine) {
	if quitting() {
		return
	}

	if screen != nil {
		screen.Suspend()
		defer screen.Resume()
	}

	if !dbg.Break {
		stopped(dbg, mc)
	} else {
		dbg.PrintDisasm(&mc.State, mc.State.Program, 1)
	}

	debugREPL(dbg, mc)
}

func handleRead(addr uint16, dbg *debugger.Debugger, mc *machine.Machine) {
	if quitting() {
		return
	}

	if screen != nil {
		screen.Suspend()
		defer screen.Resume()
	}

	fmt.Println()
	fmt.Printf("Program stopped reading [%#04x]\n", addr)
	dbg.PrintMem(&mc.State, addr, 1)
	debugREPL(dbg, mc)
}

func handleWrite(addr uint16, dbg *debugger.Debugger, mc *machine.Machine) {
	if quitting() {
		return
	}

	if screen != nil {
		screen.Suspend()
		defer screen.Resume()
	}

	fmt.Println()
	fmt.Printf("Program stopped writing [%#04x]\n", addr)
	dbg.PrintMem(&mc.State, addr, 1)
	debugREPL(dbg, mc)
}
