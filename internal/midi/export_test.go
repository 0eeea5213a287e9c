package midi

import (
	"bytes"
	"testing"
	"time"

	"git.lost.host/meutraa/slideplay/internal/game"
	"git.lost.host/meutraa/slideplay/internal/testdata"
	"gitlab.com/gomidi/midi/v2/smf"
)

func TestKey(t *testing.T) {
	tests := map[*game.Note]uint8{
		{Pitch: game.Do, Octave: 4}:  60,
		{Pitch: game.La, Octave: 4}:  69,
		{Pitch: game.Si, Octave: 0}:  23,
		{Pitch: game.Do, Octave: 20}: 127,
	}
	for n, expected := range tests {
		if k := Key(n); k != expected {
			t.Errorf("%v%v = %v, want %v", n.Pitch, n.Octave, k, expected)
		}
	}
}

func TestVelocity(t *testing.T) {
	tests := map[uint8]uint8{0: 0, 50: 63, 100: 127}
	for volume, expected := range tests {
		if v := Velocity(&game.Note{Volume: volume}); v != expected {
			t.Errorf("volume %v = %v, want %v", volume, v, expected)
		}
	}
}

type noteOn struct {
	channel, key, velocity uint8
	at                     int64 // microseconds
}

func readNoteOns(t *testing.T, data []byte) (*smf.SMF, []noteOn) {
	s, err := smf.ReadFrom(bytes.NewReader(data))
	if nil != err {
		t.Fatal(err)
	}
	ons := []noteOn{}
	for _, tr := range s.Tracks {
		var abs int64
		for _, ev := range tr {
			abs += int64(ev.Delta)
			var ch, key, vel uint8
			if ev.Message.GetNoteOn(&ch, &key, &vel) && vel > 0 {
				ons = append(ons, noteOn{ch, key, vel, s.TimeAt(abs)})
			}
		}
	}
	return s, ons
}

func TestExport(t *testing.T) {
	var buf bytes.Buffer
	if err := Export(testdata.GetTrack(testdata.Scenario), &buf); nil != err {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("MThd")) {
		t.Fatal("not a MIDI file")
	}

	s, ons := readNoteOns(t, buf.Bytes())
	if len(s.Tracks) != 2 {
		t.Errorf("%v tracks, want tempo and piano", len(s.Tracks))
	}
	expected := []noteOn{
		{0, 60, 127, 0},
		{0, 62, 127, int64(2 * time.Second / time.Microsecond)},
	}
	if len(ons) != len(expected) {
		t.Fatalf("note ons = %v", ons)
	}
	for i := range expected {
		if ons[i] != expected[i] {
			t.Errorf("note on %v = %+v, want %+v", i, ons[i], expected[i])
		}
	}
}

func TestExportSplitsInstruments(t *testing.T) {
	var buf bytes.Buffer
	if err := Export(testdata.GetTrack(testdata.Chord), &buf); nil != err {
		t.Fatal(err)
	}
	s, ons := readNoteOns(t, buf.Bytes())
	if len(s.Tracks) != 3 {
		t.Errorf("%v tracks, want 3", len(s.Tracks))
	}
	channels := map[uint8]int{}
	for _, on := range ons {
		channels[on.channel]++
	}
	if channels[0] != 2 || channels[1] != 1 {
		t.Errorf("notes per channel = %v", channels)
	}
}
