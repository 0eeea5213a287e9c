package render

import (
	"fmt"
	"time"

	"git.lost.host/meutraa/slideplay/internal/game"
	"git.lost.host/meutraa/slideplay/internal/score"
	"git.lost.host/meutraa/slideplay/internal/theme"
)

const markFrames = 15

// Screen draws the game views onto a Renderer.
type Screen struct {
	R      Renderer
	Theme  theme.Theme
	Layout Layout
	Keys   []rune // Key label per pitch class
	Toggle rune   // Instrument toggle, zero when there is none
}

func (s *Screen) key(p game.PitchClass) string {
	if int(p) < len(s.Keys) {
		return string(s.Keys[p])
	}
	return " "
}

// Text writes whole lines starting at row.
func (s *Screen) Text(row int, lines ...string) {
	for i, line := range lines {
		s.R.ClearLine(row + i)
		s.R.Fill(row+i, 2, line)
	}
}

func (s *Screen) Instructions(track *game.Track, preview bool) {
	s.R.Clear()
	next := "Press space to start"
	if preview {
		next = "Press space to listen to the song first, or s to start playing"
	}
	lo, hi := track.OctaveRange()
	s.Text(2,
		fmt.Sprintf("%v: %v notes, octaves %v to %v, %.1fs", track.Name, len(track.Notes), lo, hi, track.LastEnd().Seconds()),
		"",
		"Notes slide from the right. Press the key of a note when its head",
		"reaches the bar, and hold it for as long as the note lasts.",
		"",
	)
	for i, p := range game.PitchClasses() {
		s.R.ClearLine(8 + i)
		s.R.Fill(8+i, 4, s.key(p)+"  ")
		s.R.FillColor(8+i, 7, s.Theme.PitchColor(p), p.String())
	}
	lines := []string{next}
	if s.Toggle != 0 {
		lines = append(lines, fmt.Sprintf("%c switches between piano and guitar", s.Toggle))
	}
	s.Text(8+game.NPitch+1, append(lines, "Esc quits at any time")...)
}

// Field draws the lanes and every note in them at time now.
func (s *Screen) Field(now time.Duration, notes []*game.Note) {
	for _, p := range game.PitchClasses() {
		row := s.Layout.Lane(p)
		s.R.ClearLine(row)
		s.R.Fill(row, 1, fmt.Sprintf("%v %-3v", s.key(p), p))
		s.R.Fill(row, s.Layout.Threshold, s.Theme.RenderThreshold(p))
	}
	for _, n := range notes {
		from, to, head, ok := s.Layout.Span(n, now)
		if !ok {
			continue
		}
		row := s.Layout.Lane(n.Pitch)
		for c := from; c < to; c++ {
			s.R.Fill(row, c, s.Theme.RenderNote(n, c == head))
		}
	}
}

func (s *Screen) Panel(stats score.Stats, last string, label string) {
	s.Text(PanelRow,
		fmt.Sprintf("%-10v Score %4v   Correct %4v   Missed %4v   Wrong %4v",
			label, stats.Score, stats.Correct, stats.Missed, stats.Wrong),
		fmt.Sprintf("Note accuracy %5.1f%%   Beat accuracy %5.1f%%",
			stats.NoteAccuracyPercent(), stats.MeanBeatAccuracy()),
		last,
	)
}

// Marks flashes a mark at the threshold of every pitch whose tally changed
// between two frames.
func (s *Screen) Marks(prev, cur score.Stats) {
	for _, p := range game.PitchClasses() {
		col, row := s.Layout.Threshold-1, s.Layout.Lane(p)
		if cur.Pitches[p].Wrong > prev.Pitches[p].Wrong {
			s.R.AddDecoration(col, row, s.Theme.RenderMark(game.Wrong), markFrames)
		} else if cur.Pitches[p].Correct > prev.Pitches[p].Correct {
			s.R.AddDecoration(col, row, s.Theme.RenderMark(game.Played), markFrames)
		}
	}
}

func (s *Screen) Summary(track *game.Track, stats score.Stats, best *score.Record) {
	s.R.Clear()
	s.Text(2,
		fmt.Sprintf("%v finished", track.Name),
		"",
		fmt.Sprintf("Score          %6v", stats.Score),
		fmt.Sprintf("Correct        %6v", stats.Correct),
		fmt.Sprintf("Missed         %6v", stats.Missed),
		fmt.Sprintf("Wrong          %6v", stats.Wrong),
		fmt.Sprintf("Note grade     %6v  %5.1f%%", stats.NoteGrade(), stats.NoteAccuracyPercent()),
	)
	s.R.ClearLine(9)
	s.R.Fill(9, 2, "Beat grade     ")
	s.R.FillColor(9, 17, s.Theme.BeatColor(stats.MeanBeatAccuracy()),
		fmt.Sprintf("%6v  %5.1f%%", stats.BeatGrade(), stats.MeanBeatAccuracy()))

	row := 11
	for _, p := range game.PitchClasses() {
		t := stats.Pitches[p]
		s.R.ClearLine(row)
		s.R.FillColor(row, 2, s.Theme.PitchColor(p), fmt.Sprintf("%-4v", p))
		s.R.Fill(row, 8, fmt.Sprintf("correct %4v   wrong %4v", t.Correct, t.Wrong))
		row++
	}

	row++
	cols, _ := s.R.Size()
	for _, i := range game.Instruments() {
		b := stats.Instruments[i]
		s.R.ClearLine(row)
		if b.Count == 0 {
			s.R.Fill(row, 2, fmt.Sprintf("%-15v no beat accuracy data", i))
			row++
			continue
		}
		s.R.Fill(row, 2, fmt.Sprintf("%-15v beat %5.1f%% over %v notes", i, b.Mean(), b.Count))
		row++

		// One block per measured note, coloured by how long it was held
		s.R.ClearLine(row)
		col := 4
		for _, n := range track.Notes {
			if col >= cols {
				break
			}
			if n.Instrument != i || !n.Played() || !n.Measured() {
				continue
			}
			s.R.FillColor(row, col, s.Theme.BeatColor(n.BeatAccuracy), "█")
			col++
		}
		row++
	}

	if nil != best {
		s.Text(row+1, fmt.Sprintf("Best: %.1f%% notes, %.1f%% beat on %v",
			best.NoteAccuracy, best.BeatAccuracy, best.PlayedAt.Local().Format("2006-01-02 15:04")))
		row += 2
	}
	s.Text(row+1, "Press any key to exit")
}
