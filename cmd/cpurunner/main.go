// Command cpurunner drives Blargg-style CPU test ROMs directly against
// the cpu/mmu pair (no PPU, no window) and watches the serial port for
// "Passed"/"Failed N tests" markers. It stays on the stdlib flag package
// rather than urfave/cli — a small diagnostic tool run from a terminal
// or CI job doesn't warrant the same CLI surface as the primary binary
// (see DESIGN.md).
package main

import (
	"bytes"
	"flag"
	"fmt"
	"log"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/kestrelsoft/gbz80/internal/cart"
	"github.com/kestrelsoft/gbz80/internal/cpu"
	"github.com/kestrelsoft/gbz80/internal/mmu"
)

func main() {
	romPath := flag.String("rom", "", "path to ROM (.gb)")
	bootPath := flag.String("bootrom", "", "optional DMG boot ROM to run from 0x0000 until FF50 disables it")
	steps := flag.Int("steps", 5_000_000, "max CPU steps to run")
	trace := flag.Bool("trace", false, "print PC/opcode/register state every step")
	auto := flag.Bool("auto", true, "auto-detect 'Passed' or 'Failed N tests' in serial output and exit with code 0/1")
	until := flag.String("until", "", "stop when serial output contains this substring (case-insensitive; checked only with -auto=false); empty to disable")
	timeout := flag.Duration("timeout", 0, "optional wall-clock timeout (e.g. 30s, 2m); 0 disables")
	flag.Parse()

	if *romPath == "" {
		log.Fatal("-rom is required")
	}
	rom, err := os.ReadFile(*romPath)
	if err != nil {
		log.Fatalf("read rom: %v", err)
	}
	var boot []byte
	if *bootPath != "" {
		boot, err = os.ReadFile(*bootPath)
		if err != nil {
			log.Fatalf("read bootrom: %v", err)
		}
	}

	c, err := cart.Load(rom)
	if err != nil {
		log.Fatalf("load rom: %v", err)
	}
	m := mmu.New(c)

	var ser bytes.Buffer
	m.SetSerialWriter(&ser)

	cp := cpu.New(m)
	if len(boot) >= 0x100 {
		if err := m.LoadBootROM(boot); err != nil {
			log.Fatalf("load bootrom: %v", err)
		}
	} else {
		cp.ResetNoBoot()
		m.Write(0xFF40, 0x91)
		m.Write(0xFF47, 0xFC)
		m.Write(0xFF48, 0xFF)
		m.Write(0xFF49, 0xFF)
	}

	failRe := regexp.MustCompile(`(?i)failed\s+(\d+)\s+tests?`)
	start := time.Now()
	var deadline time.Time
	if *timeout > 0 {
		deadline = start.Add(*timeout)
	}

	var cycles int
	for i := 0; i < *steps; i++ {
		pc := cp.PC
		op := m.Read(pc)
		cyc := cp.Step()
		cycles += cyc
		if *trace {
			fmt.Printf("PC=%04X OP=%02X cyc=%d A=%02X F=%02X B=%02X C=%02X D=%02X E=%02X H=%02X L=%02X SP=%04X IME=%t\n",
				pc, op, cyc, cp.A, cp.F, cp.B, cp.C, cp.D, cp.E, cp.H, cp.L, cp.SP, cp.IME)
		}

		s := ser.String()
		if *auto {
			if strings.Contains(strings.ToLower(s), "passed") {
				fmt.Printf("\nDetected PASS in serial output.\nDone: steps=%d cycles~=%d elapsed=%s\n",
					i+1, cycles, time.Since(start).Truncate(time.Millisecond))
				os.Exit(0)
			}
			if mtch := failRe.FindString(s); mtch != "" {
				fmt.Printf("\nDetected %q in serial output.\nDone: steps=%d cycles~=%d elapsed=%s\n",
					mtch, i+1, cycles, time.Since(start).Truncate(time.Millisecond))
				os.Exit(1)
			}
		} else if *until != "" && strings.Contains(strings.ToLower(s), strings.ToLower(*until)) {
			fmt.Printf("\nDetected %q in serial output.\nDone: steps=%d cycles~=%d elapsed=%s\n",
				*until, i+1, cycles, time.Since(start).Truncate(time.Millisecond))
			return
		}

		if !deadline.IsZero() && time.Now().After(deadline) {
			fmt.Printf("\nTimeout after %s.\nDone: steps=%d cycles~=%d elapsed=%s\n",
				time.Since(start).Truncate(time.Millisecond), i+1, cycles, time.Since(start).Truncate(time.Millisecond))
			os.Exit(2)
		}
	}
	fmt.Printf("\nDone: steps=%d cycles~=%d elapsed=%s\n", *steps, cycles, time.Since(start).Truncate(time.Millisecond))
}
