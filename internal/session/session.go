package session

import (
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"git.lost.host/meutraa/slideplay/internal/game"
	"git.lost.host/meutraa/slideplay/internal/score"
	"github.com/google/uuid"
)

type Phase uint8

const (
	Instructions Phase = iota
	Preview
	Live
	Summary
	Aborted
)

var phaseNames = [...]string{"instructions", "preview", "live", "summary", "aborted"}

func (p Phase) String() string {
	if int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return fmt.Sprintf("Phase(%d)", p)
}

func (p Phase) Terminal() bool {
	return p == Summary || p == Aborted
}

var (
	ErrEmptyTrack = errors.New("track has no notes")
	ErrPhase      = errors.New("not allowed in this phase")
)

const previewTail = time.Second

// Frame is what the renderer needs to draw one tick.
type Frame struct {
	Phase   Phase
	Time    time.Duration
	Visible []*game.Note
	Stats   score.Stats
	Last    string
}

type Option func(*Session)

func WithWindow(w score.Window) Option {
	return func(s *Session) { s.window = w }
}

// WithTravel sets how long a note is on screen before reaching the threshold.
func WithTravel(d time.Duration) Option {
	return func(s *Session) { s.travel = d }
}

func WithGrace(d time.Duration) Option {
	return func(s *Session) { s.grace = d }
}

func WithFeedback(f score.Feedback) Option {
	return func(s *Session) { s.feedback = f }
}

// WithInstrument plays every note with i, as if toggled to it.
func WithInstrument(i game.Instrument) Option {
	return func(s *Session) {
		s.override = true
		s.instrument = i
	}
}

func WithLogger(l *log.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// Session drives one play of a track from the instructions screen to the
// summary. Like the judge it wraps, it is owned by the frame loop.
type Session struct {
	ID string

	track    *game.Track
	window   score.Window
	travel   time.Duration
	grace    time.Duration
	feedback score.Feedback
	logger   *log.Logger

	override   bool
	instrument game.Instrument

	phase     Phase
	judge     *score.Judge
	inputs    []game.KeyEvent
	previewed int
	ready     bool
}

func New(track *game.Track, opts ...Option) (*Session, error) {
	if track.Empty() {
		return nil, ErrEmptyTrack
	}
	s := &Session{
		ID:     uuid.NewString(),
		track:  track,
		window: score.Window{Hit: 40 * time.Second / 150, Miss: 40 * time.Second / 150},
		travel: 1400 * time.Second / 150,
		grace:  2 * time.Second,
		logger: log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(s)
	}
	track.Prepare(s.travel)
	s.judge = s.newJudge()
	return s, nil
}

func (s *Session) newJudge() *score.Judge {
	j := score.NewJudge(s.track, s.window, s.feedback)
	if s.override {
		j.Override(s.instrument)
	}
	return j
}

// Instrument returns the instrument forced on every note, if any.
func (s *Session) Instrument() (game.Instrument, bool) {
	return s.instrument, s.override
}

// ToggleInstrument switches between piano and guitar, starting the override
// if it was off, and sounds a sample of the new instrument.
func (s *Session) ToggleInstrument() (game.Instrument, error) {
	if s.phase.Terminal() {
		return s.instrument, ErrPhase
	}
	s.instrument = s.instrument.Toggle()
	s.override = true
	s.judge.Override(s.instrument)
	if nil != s.feedback {
		s.feedback.Note(&game.Note{
			Pitch:      game.Do,
			Octave:     4,
			Duration:   300 * time.Millisecond,
			Volume:     100,
			Instrument: s.instrument,
		}, 0.5)
	}
	s.logger.Printf("session %v: instrument %v", s.ID, s.instrument)
	return s.instrument, nil
}

func (s *Session) Phase() Phase {
	return s.phase
}

func (s *Session) Track() *game.Track {
	return s.track
}

func (s *Session) Window() score.Window {
	return s.window
}

func (s *Session) Stats() score.Stats {
	return s.judge.Stats()
}

// Inputs is the log of key events received while live.
func (s *Session) Inputs() []game.KeyEvent {
	return s.inputs
}

// Preview returns the notes whose start time was reached since the last call,
// each exactly once, and sounds them. Outcomes are never touched.
func (s *Session) Preview(t time.Duration) ([]*game.Note, error) {
	switch s.phase {
	case Instructions:
		s.phase = Preview
	case Preview:
	default:
		return nil, ErrPhase
	}

	due := []*game.Note{}
	for s.previewed < len(s.track.Notes) && s.track.Notes[s.previewed].Time <= t {
		n := s.track.Notes[s.previewed]
		due = append(due, n)
		if nil != s.feedback {
			sounded := n
			if s.override {
				c := *n
				c.Instrument = s.instrument
				sounded = &c
			}
			s.feedback.Note(sounded, s.judge.Pan(n))
		}
		s.previewed++
	}
	if t > s.track.LastEnd()+previewTail {
		s.ready = true
	}
	return due, nil
}

// PreviewDone reports whether the preview has played through or was skipped.
func (s *Session) PreviewDone() bool {
	return s.ready
}

func (s *Session) SkipPreview() error {
	if s.phase != Instructions && s.phase != Preview {
		return ErrPhase
	}
	s.previewed = len(s.track.Notes)
	s.ready = true
	return nil
}

// StartLive resets every outcome and starts judging from time zero.
func (s *Session) StartLive() error {
	if s.phase != Instructions && s.phase != Preview {
		return ErrPhase
	}
	s.track.Reset()
	s.judge = s.newJudge()
	s.inputs = nil
	s.phase = Live
	s.logger.Printf("session %v: live with %v notes", s.ID, len(s.track.Notes))
	return nil
}

// Tick applies the events in arrival order, sweeps for misses and reports
// what is on screen. Outside of Live it only reports the phase.
func (s *Session) Tick(t time.Duration, events []game.KeyEvent) Frame {
	if s.phase != Live {
		return Frame{Phase: s.phase, Time: t, Stats: s.judge.Stats(), Last: s.judge.Last}
	}

	for _, ev := range events {
		if !ev.Pitch.Valid() {
			continue
		}
		s.inputs = append(s.inputs, ev)
		s.judge.Apply(ev)
	}
	if missed := s.judge.Sweep(t); missed > 0 {
		s.logger.Printf("session %v: %v missed at %v", s.ID, missed, t)
	}

	frame := Frame{
		Phase:   Live,
		Time:    t,
		Visible: s.track.Visible(t),
		Stats:   s.judge.Stats(),
		Last:    s.judge.Last,
	}

	if s.track.Resolved() && t > s.track.LastEnd()+s.grace {
		s.phase = Summary
		frame.Phase = Summary
		s.logger.Printf("session %v: summary, score %v", s.ID, frame.Stats.Score)
	}
	return frame
}

func (s *Session) Abort() {
	if s.phase.Terminal() {
		return
	}
	s.logger.Printf("session %v: aborted in %v", s.ID, s.phase)
	s.phase = Aborted
}

// Result summarises a finished session for the score history.
func (s *Session) Result(at time.Time) (*score.Record, error) {
	if s.phase != Summary {
		return nil, ErrPhase
	}
	r := score.NewRecord(s.ID, s.track, s.judge.Stats(), s.inputs, at)
	if s.override {
		i := s.instrument
		r.Override = &i
	}
	return r, nil
}
