package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"git.lost.host/meutraa/slideplay/internal/config"
	_ "github.com/joho/godotenv/autoload"
)

func main() {
	if err := run(os.Args[1:]); nil != err {
		log.Fatalln(err)
	}
}

// openLog sends the standard logger to the configured file, so that the
// game screen is never written over.
func openLog(cfg *config.Config) (func(), error) {
	if cfg.LogFile == "" {
		return func() {}, nil
	}
	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if nil != err {
		return nil, fmt.Errorf("unable to open log file: %w", err)
	}
	log.SetOutput(f)
	return func() {
		log.SetOutput(os.Stderr)
		f.Close()
	}, nil
}

func run(args []string) error {
	cfg, cmd, err := config.Parse(args)
	if nil != err {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch cmd.Name {
	case "check":
		return check(ctx, cmd)
	case "export":
		return export(cmd)
	case "history":
		return history(cfg, cmd)
	}

	closeLog, err := openLog(cfg)
	if nil != err {
		return err
	}
	defer closeLog()

	switch cmd.Name {
	case "compose":
		return composeTrack(ctx, cfg, cmd)
	case "play":
		err := play(ctx, cfg, cmd)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}
	return fmt.Errorf("unknown command %v", cmd.Name)
}
