package testdata

import (
	"io"
	"log"
	"time"

	"git.lost.host/meutraa/slideplay/internal/game"
	"git.lost.host/meutraa/slideplay/internal/parser"
)

// Do then Re, two seconds apart
const Scenario = "Do4-0.0-1.0-100-0 Re4-2.0-1.0-100-0"

// Two notes starting together, used for tie breaking
const Chord = "Mi4-1.0-0.5-100-0 Sol4-1.0-0.5-100-1 La5-4.0-2.0-60-0"

// Travel matches a 1400 pixel field at 150 pixels per second.
const Travel = 1400 * time.Second / 150

// HitWindow matches 40 pixels at 150 pixels per second.
const HitWindow = 40 * time.Second / 150

// GetTrack parses data and prepares it for play.
func GetTrack(data string) *game.Track {
	p := parser.DefaultParser{Logger: log.New(io.Discard, "", 0)}
	track := p.Parse("testdata", []byte(data))
	track.Prepare(Travel)
	return track
}
