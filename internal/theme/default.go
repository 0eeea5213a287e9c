package theme

import (
	"fmt"
	"image/color"

	"git.lost.host/meutraa/slideplay/internal/game"
)

type DefaultTheme struct {
}

func (t *DefaultTheme) RenderNote(note *game.Note, head bool) string {
	c := t.PitchColor(note.Pitch)
	switch {
	case note.Played() && note.Measured() && note.BeatAccuracy > 0:
		c = t.BeatColor(note.BeatAccuracy)
	case !note.Pending():
		c = t.OutcomeColor(note.Outcome())
	}
	sym := tailSyms[instrumentIndex(note.Instrument)]
	if head {
		sym = headSym
	}
	return fmt.Sprintf("\033[38;2;%v;%v;%vm%v\033[0m", c.R, c.G, c.B, sym)
}

func (t *DefaultTheme) RenderThreshold(p game.PitchClass) string {
	c := t.PitchColor(p)
	return fmt.Sprintf("\033[38;2;%v;%v;%vm%v\033[0m", c.R, c.G, c.B, barSym)
}

func (t *DefaultTheme) RenderMark(o game.Outcome) string {
	c := t.OutcomeColor(o)
	sym := wrongSym
	if o == game.Played {
		sym = playedSym
	}
	return fmt.Sprintf("\033[38;2;%v;%v;%vm%v\033[0m", c.R, c.G, c.B, sym)
}

func (t *DefaultTheme) PitchColor(p game.PitchClass) color.RGBA {
	if !p.Valid() {
		return white
	}
	return pitchColors[p]
}

func (t *DefaultTheme) OutcomeColor(o game.Outcome) color.RGBA {
	col, ok := outcomeColors[o]
	if !ok {
		return white
	}
	return col
}

func (t *DefaultTheme) BeatColor(accuracy float64) color.RGBA {
	for _, b := range beatColors {
		if accuracy >= b.min {
			return b.color
		}
	}
	return beatColors[len(beatColors)-1].color
}

func instrumentIndex(i game.Instrument) int {
	if i == game.ElectroGuitar {
		return 1
	}
	return 0
}

const (
	headSym   = "█"
	barSym    = "┃"
	playedSym = "✓"
	wrongSym  = "✗"
)

var (
	white    = color.RGBA{255, 255, 255, 255}
	tailSyms = [...]string{"▬", "≈"}

	pitchColors = [game.NPitch]color.RGBA{
		{236, 30, 0, 255},  // Do red
		{236, 128, 0, 255}, // Re orange
		{236, 195, 0, 255}, // Mi yellow
		{0, 236, 128, 255}, // Fa green
		{0, 118, 236, 255}, // Sol blue
		{106, 0, 236, 255}, // La purple
		{236, 0, 106, 255}, // Si pink
	}
	beatColors = [...]struct {
		min   float64
		color color.RGBA
	}{
		{95, color.RGBA{0, 255, 0, 255}},
		{75, color.RGBA{128, 255, 0, 255}},
		{50, color.RGBA{255, 255, 0, 255}},
		{25, color.RGBA{255, 128, 0, 255}},
		{0, color.RGBA{255, 0, 0, 255}},
	}
	outcomeColors = map[game.Outcome]color.RGBA{
		game.Played: {110, 236, 89, 255},
		game.Missed: {106, 106, 106, 255},
		game.Wrong:  {236, 60, 60, 255},
	}
)
