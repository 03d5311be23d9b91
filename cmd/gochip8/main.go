// Package main implements the gochip8 CHIP-8 emulator executable.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	retroapp "github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/log"

	"gochip8/internal/app"
	"gochip8/internal/version"
)

type options struct {
	romFile    string
	configFile string
	frameFile  string

	frames uint64

	debug   bool
	quiet   bool
	trace   bool
	nogui   bool
	version bool
}

func main() {
	opts := parseFlags()

	if opts.version {
		fmt.Println(version.Detailed())
		return
	}

	logger := app.CreateLogger(opts.debug, opts.quiet)
	if err := run(retroapp.Context(), logger, opts); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info("interrupted")
			return
		}
		logger.Fatal("emulator failed", log.Err(err))
	}
}

func parseFlags() options {
	var opts options

	flag.StringVar(&opts.romFile, "rom", "", "path to CHIP-8 ROM file")
	flag.StringVar(&opts.configFile, "config", "gochip8.json", "path to configuration file")
	flag.StringVar(&opts.frameFile, "frame-file", "", "write final display as PPM image (headless mode)")
	flag.Uint64Var(&opts.frames, "frames", 600, "number of frames to run in headless mode")
	flag.BoolVar(&opts.debug, "debug", false, "enable debug logging")
	flag.BoolVar(&opts.quiet, "quiet", false, "only log errors")
	flag.BoolVar(&opts.trace, "trace", false, "log every executed instruction")
	flag.BoolVar(&opts.nogui, "nogui", false, "run without a window (headless mode)")
	flag.BoolVar(&opts.version, "version", false, "print version and exit")

	flag.Usage = printUsage
	flag.Parse()
	return opts
}

func run(ctx context.Context, logger *log.Logger, opts options) error {
	config := app.NewConfig()
	if err := config.LoadFromFile(opts.configFile); err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	if opts.trace {
		config.Debug.Trace = true
	}
	if opts.nogui {
		config.Video.Backend = "headless"
	}

	logger.Info("gochip8 starting",
		log.String("version", version.Get()),
		log.String("config", opts.configFile),
	)

	application := app.NewApplication(logger, config)
	defer application.Cleanup()

	if opts.romFile == "" {
		printUsage()
		return errors.New("no ROM file given")
	}
	if err := application.LoadROM(opts.romFile); err != nil {
		return err
	}

	if opts.nogui {
		return application.RunHeadless(ctx, opts.frames, opts.frameFile)
	}
	return application.Run(ctx)
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: gochip8 -rom <file> [options]")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "options:")
	flag.PrintDefaults()
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "examples:")
	fmt.Fprintln(os.Stderr, "  gochip8 -rom game.ch8                    run with a window")
	fmt.Fprintln(os.Stderr, "  gochip8 -rom game.ch8 -trace -debug      log every instruction")
	fmt.Fprintln(os.Stderr, "  gochip8 -rom test.ch8 -nogui -frames 120 -frame-file out.ppm")
}
