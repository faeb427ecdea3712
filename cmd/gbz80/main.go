// Command gbz80 is the primary entry point: it loads a cartridge image,
// wires an emu.Machine to an ebiten-backed window, and runs it until the
// window closes.
package main

import (
	"errors"
	"log/slog"
	"os"

	"github.com/urfave/cli"

	"github.com/kestrelsoft/gbz80/internal/emu"
	"github.com/kestrelsoft/gbz80/internal/ppu"
	"github.com/kestrelsoft/gbz80/internal/ui"
)

func main() {
	app := cli.NewApp()
	app.Name = "gbz80"
	app.Usage = "gbz80 [options] <ROM file>"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "rom",
			Usage: "path to ROM (.gb)",
		},
		cli.StringFlag{
			Name:  "bootrom",
			Usage: "optional DMG boot ROM to run before the cartridge entry point",
		},
		cli.BoolFlag{
			Name:  "skip_bios",
			Usage: "skip the boot ROM and start directly at the documented post-BIOS state",
		},
		cli.BoolFlag{
			Name:  "nostalgic",
			Usage: "use the green-tinted DMG palette instead of greyscale",
		},
		cli.BoolFlag{
			Name:  "trace",
			Usage: "log every CPU step at debug level",
		},
		cli.IntFlag{
			Name:  "scale",
			Usage: "window scale",
			Value: 3,
		},
		cli.StringFlag{
			Name:  "title",
			Usage: "window title",
			Value: "gbz80",
		},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		slog.Error("gbz80 exited with error", "err", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	romPath := c.String("rom")
	if romPath == "" {
		if c.NArg() > 0 {
			romPath = c.Args().Get(0)
		} else {
			cli.ShowAppHelp(c)
			return errors.New("no ROM path provided")
		}
	}

	rom, err := os.ReadFile(romPath)
	if err != nil {
		return err
	}

	var boot []byte
	if bootPath := c.String("bootrom"); bootPath != "" {
		boot, err = os.ReadFile(bootPath)
		if err != nil {
			return err
		}
	}

	cfg := emu.Config{
		SkipBoot:  c.Bool("skip_bios") || len(boot) == 0,
		Nostalgic: c.Bool("nostalgic"),
		Trace:     c.Bool("trace"),
	}

	palette := ppu.PaletteFor(cfg.Nostalgic)
	uiCfg := ui.Config{Title: c.String("title"), Scale: c.Int("scale")}
	presenter := ui.NewApp(uiCfg, palette)

	logger := slog.Default()
	m := emu.New(cfg, presenter, logger)
	if err := m.LoadCartridge(rom, boot); err != nil {
		return err
	}

	presenter.SetStepFunc(m.StepFrame)
	return presenter.Run()
}
