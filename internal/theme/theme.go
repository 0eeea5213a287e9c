package theme

import (
	"image/color"

	"git.lost.host/meutraa/slideplay/internal/game"
)

type Theme interface {
	// One cell of a note; the head is the leftmost cell
	RenderNote(note *game.Note, head bool) string
	RenderThreshold(p game.PitchClass) string
	// Flash shown at the threshold after a press
	RenderMark(o game.Outcome) string
	PitchColor(p game.PitchClass) color.RGBA
	OutcomeColor(o game.Outcome) color.RGBA
	// From red to green as a hold approaches its full length
	BeatColor(accuracy float64) color.RGBA
}
