package render

import (
	"bytes"
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"git.lost.host/meutraa/slideplay/internal/game"
	"git.lost.host/meutraa/slideplay/internal/score"
	"git.lost.host/meutraa/slideplay/internal/testdata"
	"git.lost.host/meutraa/slideplay/internal/theme"
)

func TestLayoutColumn(t *testing.T) {
	l := NewLayout(80, 8*time.Second)
	if l.Threshold != 10 {
		t.Fatalf("threshold = %v", l.Threshold)
	}
	tests := map[time.Duration]int{
		0:                10,
		8 * time.Second:  80,
		4 * time.Second:  45,
		-2 * time.Second: -8,
	}
	for at, expected := range tests {
		if c := l.Column(at, 0); c != expected {
			t.Log("at      ", at)
			t.Log("column  ", c)
			t.Log("expected", expected)
			t.Fail()
		}
	}
}

func TestLayoutSpan(t *testing.T) {
	l := NewLayout(80, 8*time.Second)
	n := &game.Note{Time: 0, Duration: time.Second}

	tests := []struct {
		now      time.Duration
		from, to int
		ok       bool
	}{
		{0, 10, 19, true},
		{-8 * time.Second, 80, 81, true},
		{-9 * time.Second, 89, 81, false},
		{time.Second, 6, 10, true},
		{10 * time.Second, 6, -69, false},
	}
	for _, test := range tests {
		from, to, _, ok := l.Span(n, test.now)
		if from != test.from || to != test.to || ok != test.ok {
			t.Errorf("at %v: span = [%v, %v) %v, want [%v, %v) %v",
				test.now, from, to, ok, test.from, test.to, test.ok)
		}
	}
}

func TestLanesDoNotOverlap(t *testing.T) {
	l := NewLayout(80, time.Second)
	seen := map[int]bool{}
	for _, p := range game.PitchClasses() {
		row := l.Lane(p)
		if seen[row] || row >= PanelRow {
			t.Errorf("%v lane at row %v", p, row)
		}
		seen[row] = true
	}
	if l.Lane(game.Do) <= l.Lane(game.Si) {
		t.Error("Do should be the bottom lane")
	}
}

func TestFill(t *testing.T) {
	var out bytes.Buffer
	r := &DefaultRenderer{Out: &out}
	r.Fill(3, 5, "x")
	r.Flush()
	if out.String() != "\033[3;5Hx" {
		t.Errorf("fill wrote %q", out.String())
	}
}

func TestDecorationsExpire(t *testing.T) {
	var out bytes.Buffer
	r := &DefaultRenderer{Out: &out}
	r.AddDecoration(1, 1, "*", 2)
	for i := 0; i < 3; i++ {
		r.tickDecorations()
	}
	if len(r.decorations) != 0 {
		t.Errorf("%v decorations left", len(r.decorations))
	}
	r.Flush()
	if !strings.HasSuffix(out.String(), "\033[1;1H ") {
		t.Errorf("expired decoration was not cleared: %q", out.String())
	}
}

func TestRenderLoop(t *testing.T) {
	r := &DefaultRenderer{Out: &bytes.Buffer{}}
	calls := 0
	var last time.Duration
	err := r.RenderLoop(context.Background(), time.Millisecond, func(elapsed time.Duration) bool {
		if elapsed < last {
			t.Errorf("elapsed went backwards")
		}
		last = elapsed
		calls++
		return calls < 3
	})
	if nil != err || calls != 3 {
		t.Errorf("err = %v, calls = %v", err, calls)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = r.RenderLoop(ctx, time.Millisecond, func(time.Duration) bool {
		t.Error("rendered after cancel")
		return true
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v", err)
	}
}

func TestMarks(t *testing.T) {
	r := &DefaultRenderer{Out: &bytes.Buffer{}}
	s := &Screen{R: r, Theme: &theme.DefaultTheme{}, Layout: NewLayout(80, time.Second)}

	var prev, cur score.Stats
	cur.Pitches[game.Mi].Correct = 1
	cur.Pitches[game.La].Wrong = 2
	s.Marks(prev, cur)
	if len(r.decorations) != 2 {
		t.Fatalf("%v marks", len(r.decorations))
	}
	s.Marks(cur, cur)
	if len(r.decorations) != 2 {
		t.Errorf("unchanged stats added marks")
	}
}

func TestFieldDrawsNotes(t *testing.T) {
	var out bytes.Buffer
	r := &DefaultRenderer{Out: &out}
	s := &Screen{R: r, Theme: &theme.DefaultTheme{}, Layout: NewLayout(80, 8*time.Second), Keys: []rune("1234567")}
	n := &game.Note{Pitch: game.Re, Time: 0, Duration: time.Second}
	s.Field(0, []*game.Note{n})
	r.Flush()

	row := s.Layout.Lane(game.Re)
	if !strings.Contains(out.String(), "2 Re") {
		t.Error("missing lane label")
	}
	for c := 10; c < 19; c++ {
		if !strings.Contains(out.String(), "\033["+strconv.Itoa(row)+";"+strconv.Itoa(c)+"H") {
			t.Errorf("column %v not drawn", c)
		}
	}
}

func TestSummaryGrades(t *testing.T) {
	var out bytes.Buffer
	r := &DefaultRenderer{Out: &out}
	s := &Screen{R: r, Theme: &theme.DefaultTheme{}, Layout: NewLayout(80, time.Second)}

	track := testdata.GetTrack(testdata.Chord)
	j := score.NewJudge(track, score.Window{Hit: testdata.HitWindow, Miss: testdata.HitWindow}, nil)
	j.Press(game.Mi, time.Second)
	j.Release(game.Mi, 2*time.Second)
	j.Sweep(time.Minute)

	s.Summary(track, j.Stats(), nil)
	r.Flush()
	text := out.String()
	for _, expected := range []string{
		"Note grade          F   33.3%",
		"Beat grade",
		"A+  100.0%",
		"Piano           beat 100.0% over 1 notes",
		"Electro Guitar  no beat accuracy data",
		"\033[38;2;0;255;0m█",
	} {
		if !strings.Contains(text, expected) {
			t.Errorf("summary is missing %q", expected)
		}
	}
}

func TestInstructionsToggleHint(t *testing.T) {
	var out bytes.Buffer
	r := &DefaultRenderer{Out: &out}
	s := &Screen{R: r, Theme: &theme.DefaultTheme{}, Keys: []rune("1234567")}
	track := testdata.GetTrack(testdata.Scenario)

	s.Instructions(track, false)
	r.Flush()
	if strings.Contains(out.String(), "switches between") {
		t.Error("hint without a toggle key")
	}
	out.Reset()
	s.Toggle = 'w'
	s.Instructions(track, false)
	r.Flush()
	if !strings.Contains(out.String(), "w switches between piano and guitar") {
		t.Error("missing toggle hint")
	}
}
