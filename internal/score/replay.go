package score

import (
	"time"

	"git.lost.host/meutraa/slideplay/internal/game"
)

// Replay judges recorded inputs against a fresh copy of the track and
// returns the resulting counters. Like a live frame, each event is applied
// before the notes are swept at its time. The original track is not
// modified.
func Replay(track *game.Track, inputs []game.KeyEvent, window Window) Stats {
	return replay(track, inputs, window, nil)
}

// Replay judges the record's inputs with the instrument override it was
// played with.
func (r *Record) Replay(track *game.Track, window Window) Stats {
	return replay(track, r.Inputs, window, r.Override)
}

func replay(track *game.Track, inputs []game.KeyEvent, window Window, override *game.Instrument) Stats {
	ch := track.Clone()
	j := NewJudge(ch, window, nil)
	if nil != override {
		j.Override(*override)
	}
	for _, in := range inputs {
		j.Apply(in)
		j.Sweep(in.Time)
	}
	j.Sweep(ch.LastEnd() + window.Miss + time.Nanosecond)
	return j.Stats()
}
