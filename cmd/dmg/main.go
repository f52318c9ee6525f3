package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli"

	"github.com/valerio/go-dmg/dmg"
	"github.com/valerio/go-dmg/dmg/backend"
	"github.com/valerio/go-dmg/dmg/backend/ebiten"
	"github.com/valerio/go-dmg/dmg/backend/headless"
	"github.com/valerio/go-dmg/dmg/backend/sdl2"
	"github.com/valerio/go-dmg/dmg/backend/terminal"
	"github.com/valerio/go-dmg/dmg/debug"
	"github.com/valerio/go-dmg/dmg/input"
	"github.com/valerio/go-dmg/dmg/input/action"
	"github.com/valerio/go-dmg/dmg/input/event"
	"github.com/valerio/go-dmg/dmg/statsview"
)

func main() {
	app := cli.NewApp()
	app.Name = "dmg"
	app.Description = "A lockstep DMG emulator core"
	app.Usage = "dmg [options] <ROM file>"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "headless",
			Usage: "Run without any output, for --frames frames",
		},
		cli.IntFlag{
			Name:  "frames",
			Usage: "Number of frames to run in headless mode (required for headless)",
		},
		cli.IntFlag{
			Name:  "snapshot-interval",
			Usage: "Save a PNG snapshot every N frames in headless mode (0 = disabled)",
		},
		cli.StringFlag{
			Name:  "snapshot-dir",
			Usage: "Directory to save frame snapshots (default: temp directory)",
		},
		cli.StringFlag{
			Name:  "backend",
			Usage: "Presentation backend: terminal, sdl2 or ebiten",
			Value: "terminal",
		},
		cli.IntFlag{
			Name:  "scale",
			Usage: "Window scale for the sdl2 and ebiten backends",
			Value: backend.DefaultScale,
		},
		cli.BoolFlag{
			Name:  "trace",
			Usage: "Log every executed instruction (implies --log-level debug)",
		},
		cli.BoolFlag{
			Name:  "statsview",
			Usage: "Serve runtime statistics on localhost:12600 (needs -tags statsview)",
		},
		cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level: debug, info, warn or error",
			Value: "info",
		},
	}
	app.Action = runEmulator

	if err := app.Run(os.Args); err != nil {
		slog.Error("Error running emulator", "error", err)
		os.Exit(1)
	}
}

func runEmulator(c *cli.Context) error {
	level, err := parseLevel(c.String("log-level"))
	if err != nil {
		return err
	}
	if c.Bool("trace") {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	romPath := c.Args().First()
	if romPath == "" {
		cli.ShowAppHelp(c)
		return errors.New("no ROM path provided")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if c.Bool("statsview") {
		if err := statsview.Launch(ctx); err != nil {
			return err
		}
	}

	machine, err := dmg.NewWithFile(dmg.Config{Trace: c.Bool("trace")}, romPath)
	if err != nil {
		return err
	}

	b, err := selectBackend(c, romPath, level)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	manager := input.NewManager(machine.Joypad())
	manager.On(action.EmulatorQuit, event.Press, cancel)
	manager.On(action.EmulatorPauseToggle, event.Press, machine.TogglePause)
	manager.On(action.EmulatorSnapshot, event.Press, func() {
		if _, err := debug.SaveFramePNGToDir(machine.Frame(), "dmg_snapshot", ""); err != nil {
			slog.Error("Failed to save snapshot", "error", err)
		}
	})

	title := "dmg"
	if cart := machine.Cartridge(); cart != nil && cart.Title != "" {
		title = "dmg - " + cart.Title
	}
	if err := b.Init(backend.Config{Title: title, Scale: c.Int("scale"), InputManager: manager}); err != nil {
		return err
	}
	defer func() {
		if err := b.Cleanup(); err != nil {
			slog.Error("Backend cleanup failed", "error", err)
		}
	}()

	if err := run(ctx, cancel, machine, b); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	slog.Info("Emulation stopped", "frames", machine.Frames())
	if out := machine.SerialOutput(); out != "" {
		fmt.Fprintln(os.Stdout, strings.TrimRight(out, "\x00"))
	}
	return nil
}

// run drives the machine on the current goroutine, or on a separate one when
// the backend needs the main goroutine for itself.
func run(ctx context.Context, cancel context.CancelFunc, machine *dmg.Machine, b backend.Backend) error {
	ml, ok := b.(backend.MainLoop)
	if !ok {
		return machine.Run(ctx, b)
	}

	done := make(chan error, 1)
	go func() {
		done <- machine.Run(ctx, b)
		cancel()
	}()

	if err := ml.MainLoop(ctx); err != nil {
		cancel()
		<-done
		return err
	}
	cancel()
	return <-done
}

func selectBackend(c *cli.Context, romPath string, level slog.Level) (backend.Backend, error) {
	if c.Bool("headless") {
		frames := c.Int("frames")
		if frames <= 0 {
			return nil, errors.New("headless mode requires --frames option with a positive value")
		}
		snapshots, err := headless.CreateSnapshotConfig(c.Int("snapshot-interval"), c.String("snapshot-dir"), romPath)
		if err != nil {
			return nil, err
		}
		return headless.New(frames, snapshots), nil
	}

	switch name := c.String("backend"); name {
	case "terminal":
		return terminal.New(terminal.WithLogLevel(level)), nil
	case "sdl2":
		return sdl2.New(), nil
	case "ebiten":
		return ebiten.New(), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", name)
	}
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return level, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}
