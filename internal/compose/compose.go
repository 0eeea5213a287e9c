package compose

import (
	"errors"
	"fmt"
	"os"
	"time"

	"git.lost.host/meutraa/slideplay/internal/game"
	"git.lost.host/meutraa/slideplay/internal/input"
	"git.lost.host/meutraa/slideplay/internal/parser"
	"git.lost.host/meutraa/slideplay/internal/score"
)

type State uint8

const (
	NoteSelection State = iota
	LengthSelection
	PositionSelection
)

func (s State) String() string {
	switch s {
	case NoteSelection:
		return "note"
	case LengthSelection:
		return "length"
	case PositionSelection:
		return "position"
	}
	return fmt.Sprintf("State(%d)", s)
}

const (
	MinOctave     = 1
	MaxOctave     = 7
	DefaultOctave = 4
	PositionStep  = 500 * time.Millisecond
	// Positions closer than this to a note of the same pitch are skipped
	collision  = 100 * time.Millisecond
	sampleLen  = 300 * time.Millisecond
	toggleKey  = 'a'
	noteVolume = 100
	centrePan  = 0.5
)

var Lengths = [...]time.Duration{500 * time.Millisecond, time.Second, 2 * time.Second, 4 * time.Second}

var ErrNothingToSave = errors.New("composition has no notes")

// Composer builds a track one note at a time: pick a pitch, then a length,
// then a start position.
type Composer struct {
	Notes      []*game.Note
	Octave     int
	Instrument game.Instrument
	Position   time.Duration

	state    State
	pitch    game.PitchClass
	length   int
	feedback score.Feedback
}

func New(feedback score.Feedback) *Composer {
	if nil == feedback {
		feedback = nopFeedback{}
	}
	return &Composer{Octave: DefaultOctave, Instrument: game.Piano, feedback: feedback}
}

type nopFeedback struct{}

func (nopFeedback) Note(*game.Note, float64) {}
func (nopFeedback) Error()                   {}

func (c *Composer) State() State {
	return c.state
}

// Selected is the pitch being placed, valid outside of NoteSelection.
func (c *Composer) Selected() game.PitchClass {
	return c.pitch
}

func (c *Composer) Length() time.Duration {
	return Lengths[c.length]
}

func (c *Composer) sample(p game.PitchClass, octave int, d time.Duration) {
	c.feedback.Note(&game.Note{
		Pitch:      p,
		Octave:     octave,
		Duration:   d,
		Volume:     noteVolume,
		Instrument: c.Instrument,
	}, centrePan)
}

// Select starts a note of pitch p.
func (c *Composer) Select(p game.PitchClass) bool {
	if c.state != NoteSelection || !p.Valid() {
		return false
	}
	c.pitch = p
	c.state = LengthSelection
	c.sample(p, c.Octave, sampleLen)
	return true
}

func (c *Composer) OctaveUp() {
	if c.state == NoteSelection && c.Octave < MaxOctave {
		c.Octave++
	}
}

func (c *Composer) OctaveDown() {
	if c.state == NoteSelection && c.Octave > MinOctave {
		c.Octave--
	}
}

func (c *Composer) ToggleInstrument() {
	if c.state != NoteSelection {
		return
	}
	c.Instrument = c.Instrument.Toggle()
	c.sample(game.Do, DefaultOctave, sampleLen)
}

func (c *Composer) collides(at time.Duration) bool {
	for _, n := range c.Notes {
		d := n.Time - at
		if d < 0 {
			d = -d
		}
		if n.Pitch == c.pitch && d < collision {
			return true
		}
	}
	return false
}

// Next cycles the length, or advances the position past any note of the
// same pitch.
func (c *Composer) Next() {
	switch c.state {
	case LengthSelection:
		c.length = (c.length + 1) % len(Lengths)
		c.sample(c.pitch, c.Octave, Lengths[c.length])
	case PositionSelection:
		c.Position += PositionStep
		for c.collides(c.Position) {
			c.Position += PositionStep
		}
	}
}

// Confirm moves from length to position selection, or adds the note.
func (c *Composer) Confirm() *game.Note {
	switch c.state {
	case LengthSelection:
		c.Position = 0
		c.state = PositionSelection
	case PositionSelection:
		n := &game.Note{
			Pitch:      c.pitch,
			Octave:     c.Octave,
			Time:       c.Position,
			Duration:   Lengths[c.length],
			Volume:     noteVolume,
			Instrument: c.Instrument,
		}
		c.Notes = append(c.Notes, n)
		c.state = NoteSelection
		c.sample(n.Pitch, n.Octave, n.Duration)
		return n
	}
	return nil
}

// Back cancels the note being placed, or deletes the last added note.
func (c *Composer) Back() {
	if c.state != NoteSelection {
		c.state = NoteSelection
		return
	}
	if len(c.Notes) > 0 {
		c.Notes = c.Notes[:len(c.Notes)-1]
		c.Position = 0
	}
}

// End is where the composition currently stops.
func (c *Composer) End() time.Duration {
	var end time.Duration
	for _, n := range c.Notes {
		if n.End() > end {
			end = n.End()
		}
	}
	return end
}

// Status describes the editor for display.
func (c *Composer) Status() []string {
	lines := []string{
		fmt.Sprintf("Instrument %v   Octave %v   Notes %v   Length of piece %.1fs",
			c.Instrument, c.Octave, len(c.Notes), c.End().Seconds()),
	}
	switch c.state {
	case NoteSelection:
		lines = append(lines,
			"Press a note key to place a note, up/down to change octave",
			"a switches instrument, backspace deletes the last note, ctrl-s saves, esc quits")
	case LengthSelection:
		lines = append(lines,
			fmt.Sprintf("%v%v length %v", c.pitch, c.Octave, Lengths[c.length]),
			"a changes the length, enter confirms, backspace cancels")
	case PositionSelection:
		lines = append(lines,
			fmt.Sprintf("%v%v %v at %v", c.pitch, c.Octave, Lengths[c.length], c.Position),
			"a moves the note later, enter adds it, backspace cancels")
	}
	return lines
}

func (c *Composer) Format() string {
	return parser.Format(c.Notes)
}

func (c *Composer) Save(path string) error {
	if len(c.Notes) == 0 {
		return ErrNothingToSave
	}
	if err := os.WriteFile(path, []byte(c.Format()), 0o644); nil != err {
		return fmt.Errorf("unable to save composition: %w", err)
	}
	return nil
}

// Handle applies a key event. It returns false when the editor should quit.
func (c *Composer) Handle(ev input.Event, pitch func(rune) (game.PitchClass, bool)) bool {
	if !ev.Pressed {
		return true
	}
	switch ev.Key {
	case input.KeyEsc:
		return false
	case input.KeyBackspace:
		c.Back()
		return true
	case input.KeyUp:
		c.OctaveUp()
		return true
	case input.KeyDown:
		c.OctaveDown()
		return true
	case input.KeyEnter, input.KeySpace:
		c.Confirm()
		return true
	}

	if ev.Rune == toggleKey {
		if c.state == NoteSelection {
			c.ToggleInstrument()
		} else {
			c.Next()
		}
		return true
	}
	if p, ok := pitch(ev.Rune); ok {
		c.Select(p)
	}
	return true
}
