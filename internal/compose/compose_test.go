package compose

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"git.lost.host/meutraa/slideplay/internal/game"
	"git.lost.host/meutraa/slideplay/internal/input"
	"git.lost.host/meutraa/slideplay/internal/parser"
)

type sounds struct {
	notes []*game.Note
}

func (s *sounds) Note(n *game.Note, _ float64) { s.notes = append(s.notes, n) }
func (s *sounds) Error()                       {}

func digits(r rune) (game.PitchClass, bool) {
	if r < '1' || r > '7' {
		return 0, false
	}
	return game.PitchClass(r - '1'), true
}

func press(r rune) input.Event {
	return input.Event{Rune: r, Pressed: true}
}

func key(k input.Key) input.Event {
	return input.Event{Key: k, Pressed: true}
}

func TestAddNote(t *testing.T) {
	s := &sounds{}
	c := New(s)

	if !c.Select(game.Mi) || c.State() != LengthSelection {
		t.Fatalf("state = %v", c.State())
	}
	c.Next() // 1s
	c.Next() // 2s
	if c.Length() != 2*time.Second {
		t.Errorf("length = %v", c.Length())
	}
	c.Confirm()
	if c.State() != PositionSelection || c.Position != 0 {
		t.Fatalf("state = %v at %v", c.State(), c.Position)
	}
	c.Next()
	c.Next()
	n := c.Confirm()
	if nil == n {
		t.Fatal("no note added")
	}
	if n.Pitch != game.Mi || n.Octave != DefaultOctave || n.Time != time.Second ||
		n.Duration != 2*time.Second || n.Volume != 100 || n.Instrument != game.Piano {
		t.Errorf("note = %+v", n)
	}
	if c.State() != NoteSelection || len(c.Notes) != 1 {
		t.Errorf("state = %v, notes = %v", c.State(), len(c.Notes))
	}
	// Selection, two lengths and the added note
	if len(s.notes) != 4 {
		t.Errorf("played %v samples", len(s.notes))
	}
}

func TestLengthsCycle(t *testing.T) {
	c := New(nil)
	c.Select(game.Do)
	seen := []time.Duration{c.Length()}
	for i := 0; i < len(Lengths); i++ {
		c.Next()
		seen = append(seen, c.Length())
	}
	expected := []time.Duration{500 * time.Millisecond, time.Second, 2 * time.Second, 4 * time.Second, 500 * time.Millisecond}
	for i := range expected {
		if seen[i] != expected[i] {
			t.Errorf("length %v = %v, want %v", i, seen[i], expected[i])
		}
	}
}

func TestPositionSkipsSamePitch(t *testing.T) {
	c := New(nil)
	c.Notes = []*game.Note{
		{Pitch: game.Re, Time: 500 * time.Millisecond, Duration: time.Second},
		{Pitch: game.Re, Time: time.Second, Duration: time.Second},
		{Pitch: game.Mi, Time: 1500 * time.Millisecond, Duration: time.Second},
	}
	c.Select(game.Re)
	c.Confirm()
	c.Next()
	if c.Position != 1500*time.Millisecond {
		t.Errorf("position = %v, want 1.5s", c.Position)
	}
}

func TestOctaveLimits(t *testing.T) {
	c := New(nil)
	for i := 0; i < 10; i++ {
		c.OctaveUp()
	}
	if c.Octave != MaxOctave {
		t.Errorf("octave = %v", c.Octave)
	}
	for i := 0; i < 10; i++ {
		c.OctaveDown()
	}
	if c.Octave != MinOctave {
		t.Errorf("octave = %v", c.Octave)
	}

	c.Select(game.Fa)
	c.OctaveUp()
	if c.Octave != MinOctave {
		t.Error("octave changed outside of note selection")
	}
}

func TestBack(t *testing.T) {
	c := New(nil)
	c.Notes = []*game.Note{{Pitch: game.Do, Duration: time.Second}}
	c.Select(game.Sol)
	c.Back()
	if c.State() != NoteSelection || len(c.Notes) != 1 {
		t.Errorf("cancel: state = %v, notes = %v", c.State(), len(c.Notes))
	}
	c.Position = 3 * time.Second
	c.Back()
	if len(c.Notes) != 0 || c.Position != 0 {
		t.Errorf("delete: notes = %v, position = %v", len(c.Notes), c.Position)
	}
	c.Back()
	if len(c.Notes) != 0 {
		t.Error("delete on an empty composition")
	}
}

func TestHandle(t *testing.T) {
	c := New(nil)
	events := []input.Event{
		press('a'),          // guitar
		key(input.KeyUp),    // octave 5
		press('6'),          // La
		{Rune: '6'},         // releases are ignored
		press('a'),          // 1s
		key(input.KeyEnter), // position
		press('a'),          // 0.5s
		key(input.KeySpace), // add
		press('9'),          // unbound
	}
	for _, ev := range events {
		if !c.Handle(ev, digits) {
			t.Fatalf("quit on %+v", ev)
		}
	}
	if len(c.Notes) != 1 {
		t.Fatalf("notes = %v", len(c.Notes))
	}
	n := c.Notes[0]
	if n.Pitch != game.La || n.Octave != 5 || n.Instrument != game.ElectroGuitar ||
		n.Duration != time.Second || n.Time != 500*time.Millisecond {
		t.Errorf("note = %+v", n)
	}
	if c.Handle(key(input.KeyEsc), digits) {
		t.Error("escape did not quit")
	}
}

func TestSave(t *testing.T) {
	c := New(nil)
	path := filepath.Join(t.TempDir(), "track.txt")
	if err := c.Save(path); !errors.Is(err, ErrNothingToSave) {
		t.Errorf("empty save: %v", err)
	}

	c.Notes = []*game.Note{
		{Pitch: game.Si, Octave: 3, Time: 2 * time.Second, Duration: 500 * time.Millisecond, Volume: 100},
		{Pitch: game.Do, Octave: 4, Time: 0, Duration: time.Second, Volume: 100, Instrument: game.ElectroGuitar},
	}
	if err := c.Save(path); nil != err {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if nil != err {
		t.Fatal(err)
	}
	expected := "Do4-0.0-1.0-100-1 Si3-2.0-0.5-100-0"
	if string(data) != expected {
		t.Errorf("saved %q, want %q", data, expected)
	}
	if c.Notes[0].Pitch != game.Si {
		t.Error("saving reordered the composition")
	}

	track := (&parser.DefaultParser{}).Parse("track.txt", data)
	if len(track.Notes) != 2 || track.Skipped != 0 {
		t.Errorf("saved track parsed to %v notes, %v skipped", len(track.Notes), track.Skipped)
	}
}
