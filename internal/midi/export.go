package midi

import (
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"time"

	"git.lost.host/meutraa/slideplay/internal/game"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

const (
	Resolution = 960
	Tempo      = 120.0

	ticksPerSecond = Resolution * Tempo / 60
)

type voice struct {
	channel uint8
	program uint8
}

var voices = map[game.Instrument]voice{
	game.Piano:         {channel: 0, program: 0},  // Acoustic grand piano
	game.ElectroGuitar: {channel: 1, program: 29}, // Overdriven guitar
}

type event struct {
	tick uint32
	on   bool
	key  uint8
	vel  uint8
}

// Key is the MIDI note number of a note, middle C being Do4.
func Key(n *game.Note) uint8 {
	k := 12*(n.Octave+1) + int(n.Pitch.Semitone())
	if k < 0 {
		return 0
	}
	if k > 127 {
		return 127
	}
	return uint8(k)
}

func Velocity(n *game.Note) uint8 {
	v := int(n.Volume) * 127 / 100
	if v > 127 {
		return 127
	}
	return uint8(v)
}

func ticks(d time.Duration) uint32 {
	t := math.Round(d.Seconds() * ticksPerSecond)
	if t < 0 {
		return 0
	}
	return uint32(t)
}

func instrumentTrack(v voice, notes []*game.Note) smf.Track {
	events := make([]event, 0, 2*len(notes))
	for _, n := range notes {
		key := Key(n)
		events = append(events,
			event{tick: ticks(n.Time), on: true, key: key, vel: Velocity(n)},
			event{tick: ticks(n.End()), key: key},
		)
	}
	// Note offs first, so that repeated notes are not cut short
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].tick != events[j].tick {
			return events[i].tick < events[j].tick
		}
		return !events[i].on && events[j].on
	})

	var tr smf.Track
	tr.Add(0, midi.ProgramChange(v.channel, v.program))
	var last uint32
	for _, e := range events {
		delta := e.tick - last
		last = e.tick
		if e.on {
			tr.Add(delta, midi.NoteOn(v.channel, e.key, e.vel))
		} else {
			tr.Add(delta, midi.NoteOff(v.channel, e.key))
		}
	}
	tr.Close(0)
	return tr
}

// Build converts a track to a format 1 file: a tempo track followed by one
// track per instrument in use.
func Build(track *game.Track) (*smf.SMF, error) {
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(Resolution)

	var meta smf.Track
	meta.Add(0, smf.MetaTrackSequenceName(track.Name))
	meta.Add(0, smf.MetaTempo(Tempo))
	meta.Close(0)
	if err := s.Add(meta); nil != err {
		return nil, err
	}

	byInstrument := map[game.Instrument][]*game.Note{}
	for _, n := range track.Notes {
		byInstrument[n.Instrument] = append(byInstrument[n.Instrument], n)
	}
	for _, inst := range []game.Instrument{game.Piano, game.ElectroGuitar} {
		notes := byInstrument[inst]
		if len(notes) == 0 {
			continue
		}
		if err := s.Add(instrumentTrack(voices[inst], notes)); nil != err {
			return nil, fmt.Errorf("unable to add %v track: %w", inst, err)
		}
	}
	return s, nil
}

func Export(track *game.Track, w io.Writer) error {
	s, err := Build(track)
	if nil != err {
		return err
	}
	_, err = s.WriteTo(w)
	return err
}

func ExportFile(track *game.Track, path string) error {
	f, err := os.Create(path)
	if nil != err {
		return err
	}
	if err := Export(track, f); nil != err {
		f.Close()
		return fmt.Errorf("unable to write %v: %w", path, err)
	}
	return f.Close()
}
