package parser

import (
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"git.lost.host/meutraa/slideplay/internal/game"
)

func formatSeconds(d time.Duration) string {
	s := strconv.FormatFloat(d.Seconds(), 'f', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

// FormatToken is the inverse of ParseToken. The instrument is always written.
func FormatToken(n *game.Note) string {
	var b strings.Builder
	b.WriteString(n.Pitch.String())
	b.WriteString(strconv.Itoa(n.Octave))
	b.WriteByte('-')
	b.WriteString(formatSeconds(n.Time))
	b.WriteByte('-')
	b.WriteString(formatSeconds(n.Duration))
	b.WriteByte('-')
	b.WriteString(strconv.Itoa(int(n.Volume)))
	b.WriteByte('-')
	b.WriteString(strconv.Itoa(int(n.Instrument)))
	return b.String()
}

// Format writes notes as a single line of tokens ordered by start time.
func Format(notes []*game.Note) string {
	sorted := make([]*game.Note, len(notes))
	copy(sorted, notes)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Time < sorted[j].Time
	})

	tokens := make([]string, len(sorted))
	for i, n := range sorted {
		tokens[i] = FormatToken(n)
	}
	return strings.Join(tokens, " ")
}

func Write(w io.Writer, notes []*game.Note) error {
	_, err := io.WriteString(w, Format(notes))
	return err
}
