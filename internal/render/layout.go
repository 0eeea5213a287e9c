package render

import (
	"math"
	"time"

	"git.lost.host/meutraa/slideplay/internal/game"
)

const (
	fieldTop = 3
	laneGap  = 2
	// First column right of the lane labels
	fieldLeft = 6
	PanelRow  = fieldTop + game.NPitch*laneGap + 1
)

// Layout maps track time onto terminal columns. Notes enter at the right
// edge one travel interval before they reach the threshold column.
type Layout struct {
	Cols             int
	Threshold        int
	ColumnsPerSecond float64
}

func NewLayout(cols int, travel time.Duration) Layout {
	threshold := cols / 8
	if threshold < fieldLeft+2 {
		threshold = fieldLeft + 2
	}
	field := cols - threshold
	if field < 1 {
		field = 1
	}
	cps := float64(field)
	if travel > 0 {
		cps /= travel.Seconds()
	}
	return Layout{Cols: cols, Threshold: threshold, ColumnsPerSecond: cps}
}

// Column of an instant relative to now.
func (l Layout) Column(at, now time.Duration) int {
	return l.Threshold + int(math.Round((at-now).Seconds()*l.ColumnsPerSecond))
}

// Lane is the row of a pitch class, Do at the bottom.
func (l Layout) Lane(p game.PitchClass) int {
	return fieldTop + (game.NPitch-1-int(p))*laneGap
}

// Span returns the columns [from, to) covered by a note and the column of
// its head, clipped to the field.
func (l Layout) Span(n *game.Note, now time.Duration) (from, to, head int, ok bool) {
	head = l.Column(n.Time, now)
	to = l.Column(n.End(), now)
	if to <= head {
		to = head + 1
	}
	from = head
	if from < fieldLeft {
		from = fieldLeft
	}
	if to > l.Cols+1 {
		to = l.Cols + 1
	}
	return from, to, head, from < to
}
