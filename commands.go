package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"git.lost.host/meutraa/slideplay/internal/config"
	"git.lost.host/meutraa/slideplay/internal/midi"
	"git.lost.host/meutraa/slideplay/internal/parser"
	"git.lost.host/meutraa/slideplay/internal/score"
	"git.lost.host/meutraa/slideplay/internal/watch"
)

const watchDelay = 200 * time.Millisecond

func check(ctx context.Context, cmd *config.Command) error {
	psr := &parser.DefaultParser{}
	report := func() error {
		r, err := watch.Check(psr, cmd.Track)
		if nil != r {
			fmt.Print(r)
		}
		return err
	}

	err := report()
	if !cmd.Watch {
		return err
	}
	if nil != err {
		log.Println(err)
	}
	fmt.Printf("watching %v, ctrl-c to stop\n", cmd.Track)
	return watch.Watch(ctx, cmd.Track, watchDelay, func() {
		fmt.Println()
		if err := report(); nil != err {
			log.Println(err)
		}
	})
}

func export(cmd *config.Command) error {
	psr := &parser.DefaultParser{}
	track, err := psr.LoadFile(cmd.Track)
	if nil != err {
		return fmt.Errorf("unable to load track: %w", err)
	}
	if track.Empty() {
		return fmt.Errorf("%v has no notes to export", cmd.Track)
	}

	out := cmd.Output
	if out == "" {
		out = strings.TrimSuffix(cmd.Track, filepath.Ext(cmd.Track)) + ".mid"
	}
	if err := midi.ExportFile(track, out); nil != err {
		return err
	}
	fmt.Printf("wrote %v notes to %v\n", len(track.Notes), out)
	return nil
}

func history(cfg *config.Config, cmd *config.Command) error {
	psr := &parser.DefaultParser{}
	track, _, err := psr.LoadOrFallback(cmd.Track)
	if nil != err {
		return err
	}
	track.Prepare(cfg.TravelInterval())

	h, err := score.OpenHistory(cfg.Database)
	if nil != err {
		return err
	}
	defer h.Close()

	records, err := h.Load(track.Hash)
	if nil != err {
		return err
	}
	if len(records) == 0 {
		fmt.Printf("no scores for %v yet\n", track.Name)
		return nil
	}
	best, err := h.Best(track.Hash)
	if nil != err && !errors.Is(err, score.ErrNoHistory) {
		return err
	}

	fmt.Printf("%v, %v plays\n", track.Name, len(records))
	fmt.Printf("  %-16v %5v %7v %6v %5v %7v %7v %7v\n",
		"played", "score", "correct", "missed", "wrong", "notes", "beat", "replay")
	for i, r := range records {
		if cmd.Limit > 0 && i >= cmd.Limit {
			break
		}
		marker := " "
		if nil != best && best.ID == r.ID {
			marker = "*"
		}
		// Judging the recorded inputs again shows whether the rules changed since
		replayed := r.Replay(track, cfg.Window())
		fmt.Printf("%v %-16v %5v %7v %6v %5v %6.1f%% %6.1f%% %6.1f%%\n",
			marker, r.PlayedAt.Local().Format("2006-01-02 15:04"),
			r.Score, r.Correct, r.Missed, r.Wrong,
			r.NoteAccuracy, r.BeatAccuracy, replayed.NoteAccuracyPercent())
	}
	return nil
}
