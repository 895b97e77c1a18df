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

package debugger

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/pkg/errors"

	"github.com/lassandro/gochip8/pkg/assembler"
	"github.com/lassandro/gochip8/pkg/encoding"
	"github.com/lassandro/gochip8/pkg/machine"
)

func (dbg *Debugger) out() io.Writer {
	if dbg.Output == nil {
		return os.Stdout
	}

	return dbg.Output
}

// Requests a break before the next instruction. Safe to call from a signal
// handler goroutine.
func (dbg *Debugger) Interrupt() {
	dbg.interrupt.Store(true)
}

// Runs fn immediately, unless called from a watchpoint handler. Then the
// instruction that hit the watchpoint is still executing and fn is held until
// it completes. Reports whether fn already ran.
func (dbg *Debugger) AtBoundary(mc *machine.Machine, fn func(*machine.Machine)) bool {
	if dbg.watching {
		dbg.deferred = append(dbg.deferred, fn)
		return false
	}

	fn(mc)
	return true
}

func (dbg *Debugger) Step(mc *machine.Machine) {
	for len(dbg.deferred) > 0 {
		fn := dbg.deferred[0]
		dbg.deferred = dbg.deferred[1:]
		fn(mc)
	}

	if dbg.interrupt.Swap(false) {
		dbg.Break = true
	}

	if dbg.Break {
		if dbg.HandleBreak != nil {
			dbg.HandleBreak(dbg, mc)
		}
		return
	}

	for _, breakpoint := range dbg.Breakpoints {
		if mc.State.Program == breakpoint.Addr {
			if dbg.HandleBreak != nil {
				dbg.HandleBreak(dbg, mc)
			}
			break
		}
	}
}

func (dbg *Debugger) Read(addr uint16, mc *machine.Machine) {
	for _, watchpoint := range dbg.Watchpoints {
		if watchpoint.Type == WriteWatch {
			continue
		}

		if addr == watchpoint.Addr {
			if dbg.HandleRead != nil {
				dbg.watching = true
				dbg.HandleRead(addr, dbg, mc)
				dbg.watching = false
			}
			break
		}
	}
}

func (dbg *Debugger) Write(addr uint16, mc *machine.Machine) {
	for _, watchpoint := range dbg.Watchpoints {
		if watchpoint.Type == ReadWatch {
			continue
		}

		if addr == watchpoint.Addr {
			if dbg.HandleWrite != nil {
				dbg.watching = true
				dbg.HandleWrite(addr, dbg, mc)
				dbg.watching = false
			}
			break
		}
	}
}

// Adds a breakpoint unless one already exists at addr
func (dbg *Debugger) AddBreakpoint(addr uint16) bool {
	for _, breakpoint := range dbg.Breakpoints {
		if breakpoint.Addr == addr {
			return false
		}
	}

	dbg.Breakpoints = append(dbg.Breakpoints, Breakpoint{addr})
	return true
}

// Adds a watchpoint unless an identical one already exists
func (dbg *Debugger) AddWatchpoint(addr uint16, wtype WatchpointType) bool {
	for _, watchpoint := range dbg.Watchpoints {
		if watchpoint.Addr == addr && watchpoint.Type == wtype {
			return false
		}
	}

	dbg.Watchpoints = append(dbg.Watchpoints, Watchpoint{addr, wtype})
	return true
}

// Resolves a label name or hex address
func (dbg *Debugger) Resolve(arg string) (uint16, error) {
	if dbg.SymTable != nil {
		if addr, exists := dbg.SymTable.Lookup(arg); exists {
			return addr, nil
		}
	}

	addr, err := encoding.DecodeHex(arg)

	if err != nil {
		return 0, errors.Errorf("Unable to find '%s'", arg)
	}

	return addr, nil
}

func (dbg *Debugger) PrintSource(addr uint16, count uint16) {
	w := dbg.out()

	if dbg.Source == nil {
		fmt.Fprintln(w, "No source file loaded")
		return
	}

	if dbg.SymTable == nil {
		fmt.Fprintln(w, "No symbol table loaded")
		return
	}

	offset, exists := dbg.SymTable.Symbols[addr]

	if !exists {
		fmt.Fprintf(w, "No instruction found at %#04x\n", addr)
		return
	}

	if _, err := dbg.Source.Seek(offset, io.SeekStart); err != nil {
		fmt.Fprintln(w, err)
		return
	}

	lines := make(map[int64]uint16, len(dbg.SymTable.Symbols))
	for lineaddr, linebyte := range dbg.SymTable.Symbols {
		lines[linebyte] = lineaddr
	}

	scanner := bufio.NewScanner(dbg.Source)
	scanner.Split(bufio.ScanLines)

	for i := uint16(0); i < count; i++ {
		if !scanner.Scan() {
			break
		}

		line := scanner.Text()

		if lineaddr, found := lines[offset]; found {
			fmt.Fprintf(w, "\033[1m[%#04x]\033[0m ", lineaddr)
		} else {
			fmt.Fprint(w, "\033[1;30m~~~~~~~\033[0m ")
		}

		fmt.Fprintln(w, line)

		offset += int64(len(line) + 1)
	}

	if err := scanner.Err(); err != nil {
		fmt.Fprintln(w, err)
	}
}

// Prints count instructions starting at addr, with labels when a symbol
// table is loaded. Falls back on this when no source file is available.
func (dbg *Debugger) PrintDisasm(mc *machine.MachineState, addr, count uint16) {
	w := dbg.out()

	for i := uint16(0); i < count; i++ {
		opcode, err := mc.Memory.Fetch(addr)

		if err != nil {
			break
		}

		if dbg.SymTable != nil {
			if label, exists := dbg.SymTable.Labels[addr]; exists {
				fmt.Fprintf(w, "\033[1;30m%s:\033[0m\n", label)
			}
		}

		marker := " "
		if addr == mc.Program {
			marker = ">"
		}

		fmt.Fprintf(
			w, "%s\033[1m[%#04x]\033[0m %04X  %s\n",
			marker, addr, opcode, assembler.Disassemble(opcode),
		)

		addr += 2
	}
}

func (dbg *Debugger) PrintMem(mc *machine.MachineState, addr, count uint16) {
	w := dbg.out()

	for i := addr; i < addr+count; i++ {
		if i >= machine.MEMSPACE_END {
			break
		}

		if i == addr {
			fmt.Fprintf(w, "\033[1m[%#04x]\033[0m ", i)
		} else if (i-addr)%8 == 0 {
			fmt.Fprintln(w)
			fmt.Fprintf(w, "\033[1m[%#04x]\033[0m ", i)
		}

		result := mc.Memory[i]

		if result == 0 {
			fmt.Fprintf(w, "\033[1;30m%#02x\033[0m ", result)
		} else {
			fmt.Fprintf(w, "%#02x ", result)
		}
	}

	fmt.Fprintln(w)
}

func (dbg *Debugger) PrintRegisters(mc *machine.MachineState) {
	w := dbg.out()

	for i, register := range mc.Registers {
		fmt.Fprintf(w, "\033[1mV%X:\033[0m %#02x\t", i, register)
		if i%8 == 7 {
			fmt.Fprintln(w)
		}
	}

	mode := "running"
	if mc.Mode == machine.MODE_AWAITING_KEY {
		mode = fmt.Sprintf("awaiting key (V%X)", mc.Waiting)
	}

	fmt.Fprintf(
		w,
		"\033[1mPC:\033[0m %#04x\t\033[1mI:\033[0m %#04x\t"+
			"\033[1mSP:\033[0m %d\t\033[1mDT:\033[0m %d\t"+
			"\033[1mST:\033[0m %d\t%s\n",
		mc.Program,
		mc.Address,
		mc.Stack,
		mc.Delay,
		mc.Sound,
		mode,
	)
}

func (dbg *Debugger) PrintStack(mc *machine.MachineState) {
	w := dbg.out()

	for depth := 0; depth < int(mc.Depth); depth++ {
		slot := (int(mc.Stack) - depth + machine.STACK_DEPTH) % machine.STACK_DEPTH
		fmt.Fprintf(w, "#%02d: %#04x", depth, mc.Frames[slot])

		if dbg.SymTable != nil {
			if label := dbg.nearestLabel(mc.Frames[slot]); label != "" {
				fmt.Fprintf(w, " \033[1;30m(%s)\033[0m", label)
			}
		}

		fmt.Fprintln(w)
	}
}

func (dbg *Debugger) nearestLabel(addr uint16) string {
	keys := make([]uint16, 0, len(dbg.SymTable.Labels))
	for labelAddr := range dbg.SymTable.Labels {
		keys = append(keys, labelAddr)
	}

	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	label := ""
	for _, labelAddr := range keys {
		if labelAddr > addr {
			break
		}
		label = dbg.SymTable.Labels[labelAddr]
	}

	return label
}

func (dbg *Debugger) PrintLabels() {
	w := dbg.out()

	if dbg.SymTable == nil {
		fmt.Fprintln(w, "No symbol table loaded")
		return
	}

	keys := make([]uint16, 0, len(dbg.SymTable.Labels))
	for addr := range dbg.SymTable.Labels {
		keys = append(keys, addr)
	}

	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	for _, addr := range keys {
		fmt.Fprintf(
			w, "\033[1m[%#04x]\033[0m %s\n", addr, dbg.SymTable.Labels[addr],
		)
	}
}
