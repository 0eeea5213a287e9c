package score

import (
	"time"

	"git.lost.host/meutraa/slideplay/internal/game"
)

// Feedback receives the side effects of judging. Implementations must not
// block; they are called from inside the frame.
type Feedback interface {
	// A correct press, with the stereo pan for the note
	Note(note *game.Note, pan float64)
	// A wrong or stray press
	Error()
}

type nopFeedback struct{}

func (nopFeedback) Note(*game.Note, float64) {}
func (nopFeedback) Error()                   {}

// Window holds the judging tolerances.
type Window struct {
	Hit  time.Duration // A press matches notes closer than this to the threshold
	Miss time.Duration // A tail further than this past the threshold is missed
}

// Verdict describes how a single press was judged.
type Verdict struct {
	Outcome  game.Outcome // Played or Wrong
	Note     *game.Note   // nil when nothing was near the threshold
	Distance time.Duration
}

// Stray reports a press with no note to match.
func (v Verdict) Stray() bool {
	return v.Note == nil
}

type Store interface {
	Save(record *Record) error
	Load(hash string) ([]Record, error)
	Best(hash string) (*Record, error)
	Close() error
}

type Record struct {
	ID           int64
	Session      string
	TrackHash    string
	TrackName    string
	PlayedAt     time.Time
	Score        int
	Correct      int
	Missed       int
	Wrong        int
	NoteAccuracy float64
	BeatAccuracy float64
	Override     *game.Instrument // Instrument forced on every note, nil for none
	Inputs       []game.KeyEvent
}

// NewRecord summarises a finished session.
func NewRecord(session string, track *game.Track, stats Stats, inputs []game.KeyEvent, at time.Time) *Record {
	return &Record{
		Session:      session,
		TrackHash:    track.Hash,
		TrackName:    track.Name,
		PlayedAt:     at,
		Score:        stats.Score,
		Correct:      stats.Correct,
		Missed:       stats.Missed,
		Wrong:        stats.Wrong,
		NoteAccuracy: stats.NoteAccuracyPercent(),
		BeatAccuracy: stats.MeanBeatAccuracy(),
		Inputs:       inputs,
	}
}
