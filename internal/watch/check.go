package watch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"git.lost.host/meutraa/slideplay/internal/game"
	"git.lost.host/meutraa/slideplay/internal/parser"
)

// Report summarises a track file.
type Report struct {
	Name        string
	Hash        string
	Notes       int
	Skipped     int
	Length      time.Duration
	MinOctave   int
	MaxOctave   int
	Pitches     [game.NPitch]int
	Instruments map[game.Instrument]int
}

func NewReport(track *game.Track) *Report {
	r := &Report{
		Name:        track.Name,
		Hash:        track.Hash,
		Notes:       len(track.Notes),
		Skipped:     track.Skipped,
		Length:      track.LastEnd(),
		Instruments: map[game.Instrument]int{},
	}
	r.MinOctave, r.MaxOctave = track.OctaveRange()
	for _, n := range track.Notes {
		r.Pitches[n.Pitch]++
		r.Instruments[n.Instrument]++
	}
	return r
}

// Check parses a track file. Malformed tokens are counted, not fatal; a
// file without a single valid note is.
func Check(p parser.Parser, path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if nil != err {
		return nil, err
	}
	track := p.Parse(filepath.Base(path), data)
	r := NewReport(track)
	if track.Empty() {
		return r, fmt.Errorf("%v: no valid notes, %v skipped", path, track.Skipped)
	}
	return r, nil
}

func (r *Report) Valid() bool {
	return r.Notes > 0
}

func (r *Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%v\n", r.Name)
	fmt.Fprintf(&b, "  notes    %v (%v skipped)\n", r.Notes, r.Skipped)
	fmt.Fprintf(&b, "  length   %.2fs\n", r.Length.Seconds())
	if r.Notes > 0 {
		fmt.Fprintf(&b, "  octaves  %v to %v\n", r.MinOctave, r.MaxOctave)
	}
	b.WriteString("  pitches ")
	for _, p := range game.PitchClasses() {
		fmt.Fprintf(&b, " %v:%v", p, r.Pitches[p])
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "  piano    %v\n", r.Instruments[game.Piano])
	fmt.Fprintf(&b, "  guitar   %v\n", r.Instruments[game.ElectroGuitar])
	fmt.Fprintf(&b, "  hash     %v\n", r.Hash)
	return b.String()
}
