package session

import (
	"errors"
	"testing"
	"time"

	"git.lost.host/meutraa/slideplay/internal/game"
	"git.lost.host/meutraa/slideplay/internal/parser"
	"git.lost.host/meutraa/slideplay/internal/score"
	"git.lost.host/meutraa/slideplay/internal/testdata"
)

type counter struct {
	notes, errors int
}

func (c *counter) Note(*game.Note, float64) { c.notes++ }
func (c *counter) Error()                   { c.errors++ }

func TestEmptyTrack(t *testing.T) {
	if _, err := New(nil); !errors.Is(err, ErrEmptyTrack) {
		t.Errorf("nil track: %v", err)
	}
	empty := (&parser.DefaultParser{}).Parse("empty", []byte("  "))
	if _, err := New(empty); !errors.Is(err, ErrEmptyTrack) {
		t.Errorf("empty track: %v", err)
	}
}

func TestPreview(t *testing.T) {
	fb := &counter{}
	s, err := New(testdata.GetTrack(testdata.Scenario), WithFeedback(fb))
	if nil != err {
		t.Fatal(err)
	}

	ticks := map[time.Duration]int{
		-time.Second:            0,
		0:                       1,
		time.Second:             0,
		2500 * time.Millisecond: 1,
		3 * time.Second:         0,
	}
	for _, at := range []time.Duration{-time.Second, 0, time.Second, 2500 * time.Millisecond, 3 * time.Second} {
		due, err := s.Preview(at)
		if nil != err {
			t.Fatal(err)
		}
		if len(due) != ticks[at] {
			t.Errorf("preview at %v returned %v notes, want %v", at, len(due), ticks[at])
		}
	}
	if s.Phase() != Preview || s.PreviewDone() {
		t.Errorf("phase = %v, done = %v", s.Phase(), s.PreviewDone())
	}
	if fb.notes != 2 {
		t.Errorf("preview sounded %v notes", fb.notes)
	}
	for _, n := range s.Track().Notes {
		if !n.Pending() {
			t.Errorf("preview changed %v to %v", n.Pitch, n.Outcome())
		}
	}

	// Last end is 3s, so the preview finishes after 4s
	s.Preview(4*time.Second + time.Millisecond)
	if !s.PreviewDone() {
		t.Error("preview did not finish")
	}
}

func TestSkipPreview(t *testing.T) {
	s, _ := New(testdata.GetTrack(testdata.Scenario))
	s.Preview(0)
	if err := s.SkipPreview(); nil != err {
		t.Fatal(err)
	}
	if due, _ := s.Preview(10 * time.Second); len(due) != 0 {
		t.Errorf("skipped preview still returned %v notes", len(due))
	}
	if err := s.StartLive(); nil != err || s.Phase() != Live {
		t.Errorf("start live: %v, %v", err, s.Phase())
	}
	if err := s.SkipPreview(); !errors.Is(err, ErrPhase) {
		t.Errorf("skip while live: %v", err)
	}
	if _, err := s.Preview(0); !errors.Is(err, ErrPhase) {
		t.Errorf("preview while live: %v", err)
	}
}

func TestLiveToSummary(t *testing.T) {
	s, _ := New(testdata.GetTrack(testdata.Scenario), WithWindow(score.Window{Hit: testdata.HitWindow, Miss: testdata.HitWindow}))
	if err := s.StartLive(); nil != err {
		t.Fatal(err)
	}

	f := s.Tick(0, []game.KeyEvent{game.Press(game.Do, 0)})
	if f.Phase != Live || f.Stats.Score != 1 {
		t.Fatalf("frame = %+v", f)
	}
	s.Tick(500*time.Millisecond, []game.KeyEvent{game.Release(game.Do, 500*time.Millisecond)})

	f = s.Tick(4*time.Second, nil)
	if f.Stats.Missed != 1 || f.Phase != Live {
		t.Fatalf("missed = %v, phase = %v", f.Stats.Missed, f.Phase)
	}

	// Resolved, but still inside the grace period after the last note
	if f = s.Tick(5*time.Second, nil); f.Phase != Live {
		t.Errorf("summary during grace")
	}
	if f = s.Tick(5*time.Second+time.Millisecond, nil); f.Phase != Summary {
		t.Errorf("phase = %v, want summary", f.Phase)
	}

	for _, n := range s.Track().Notes {
		count := 0
		for _, b := range []bool{n.Played(), n.Missed(), n.Wrong()} {
			if b {
				count++
			}
		}
		if count != 1 {
			t.Errorf("%v has %v outcomes at summary", n.Pitch, count)
		}
	}

	r, err := s.Result(time.Now())
	if nil != err {
		t.Fatal(err)
	}
	if r.Session != s.ID || r.Correct != 1 || r.Missed != 1 || r.NoteAccuracy != 50 || r.BeatAccuracy != 50 {
		t.Errorf("record = %+v", r)
	}
	if len(r.Inputs) != 2 {
		t.Errorf("recorded %v inputs", len(r.Inputs))
	}

	// Terminal phases ignore ticks
	f = s.Tick(time.Minute, []game.KeyEvent{game.Press(game.Re, time.Minute)})
	if f.Phase != Summary || f.Stats.Wrong != 0 || len(s.Inputs()) != 2 {
		t.Errorf("tick after summary changed state: %+v", f)
	}
}

func TestNoSummaryWhilePending(t *testing.T) {
	s, _ := New(testdata.GetTrack(testdata.Scenario), WithGrace(0))
	s.StartLive()
	// Re has not passed the threshold yet, grace or not
	if f := s.Tick(2500*time.Millisecond, nil); f.Phase != Live {
		t.Errorf("phase = %v with pending notes", f.Phase)
	}
}

func TestAbort(t *testing.T) {
	for _, live := range []bool{false, true} {
		s, _ := New(testdata.GetTrack(testdata.Scenario))
		if live {
			s.StartLive()
		}
		s.Abort()
		if s.Phase() != Aborted {
			t.Errorf("phase = %v", s.Phase())
		}
		if err := s.StartLive(); !errors.Is(err, ErrPhase) {
			t.Errorf("start after abort: %v", err)
		}
		if _, err := s.Result(time.Now()); !errors.Is(err, ErrPhase) {
			t.Errorf("result after abort: %v", err)
		}
	}
}

func TestStartLiveResets(t *testing.T) {
	track := testdata.GetTrack(testdata.Scenario)
	s, _ := New(track)
	s.Preview(0)
	track.Notes[0].Resolve(game.Missed)
	s.StartLive()
	if !track.Notes[0].Pending() {
		t.Error("outcomes not reset")
	}
}

func TestToggleInstrument(t *testing.T) {
	fb := &counter{}
	s, _ := New(testdata.GetTrack(testdata.Chord), WithFeedback(fb))
	if _, ok := s.Instrument(); ok {
		t.Error("override before toggling")
	}
	i, err := s.ToggleInstrument()
	if nil != err || i != game.ElectroGuitar {
		t.Fatalf("toggle = %v, %v", i, err)
	}
	if fb.notes != 1 {
		t.Errorf("toggle sounded %v samples", fb.notes)
	}

	// The override survives the judge being reset
	s.StartLive()
	f := s.Tick(time.Second, []game.KeyEvent{game.Press(game.Sol, time.Second)})
	if f.Stats.Correct != 1 || f.Stats.Wrong != 0 {
		t.Errorf("stats = %+v", f.Stats)
	}

	s.Tick(time.Minute, nil)
	r, err := s.Result(time.Now())
	if nil != err {
		t.Fatal(err)
	}
	if nil == r.Override || *r.Override != game.ElectroGuitar {
		t.Errorf("record override = %v", r.Override)
	}

	s.Abort()
	if _, err := s.ToggleInstrument(); !errors.Is(err, ErrPhase) {
		t.Errorf("toggle after summary: %v", err)
	}
}

func TestWithInstrument(t *testing.T) {
	s, _ := New(testdata.GetTrack(testdata.Chord), WithInstrument(game.Piano))
	if i, ok := s.Instrument(); !ok || i != game.Piano {
		t.Errorf("instrument = %v, %v", i, ok)
	}
	if i, _ := s.ToggleInstrument(); i != game.ElectroGuitar {
		t.Errorf("toggled to %v", i)
	}
}

func TestReplayMatchesLive(t *testing.T) {
	// A miss margin of zero makes a short note sweepable while still in the hit window
	window := score.Window{Hit: testdata.HitWindow, Miss: 0}
	track := testdata.GetTrack("Do4-1.0-0.1-100-0")
	s, _ := New(track, WithWindow(window))
	s.StartLive()

	at := 1200 * time.Millisecond
	s.Tick(at, []game.KeyEvent{game.Press(game.Do, at)})
	live := s.Tick(time.Minute, nil)
	if live.Phase != Summary || live.Stats.Correct != 1 {
		t.Fatalf("live frame = %+v", live)
	}

	r, err := s.Result(time.Now())
	if nil != err {
		t.Fatal(err)
	}
	replayed := r.Replay(track, window)
	if replayed.Correct != live.Stats.Correct || replayed.Wrong != live.Stats.Wrong || replayed.Missed != live.Stats.Missed {
		t.Log("live    ", live.Stats)
		t.Log("replayed", replayed)
		t.Fail()
	}
}
