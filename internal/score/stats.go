package score

import "git.lost.host/meutraa/slideplay/internal/game"

type Tally struct {
	Correct int
	Wrong   int
}

// Stats accumulates the results of one session. It is a plain value, so
// copying it takes a snapshot.
type Stats struct {
	Score   int
	Correct int
	Missed  int
	Wrong   int // Wrong notes and presses that matched nothing
	Pitches [game.NPitch]Tally

	beats       Beat
	Instruments [game.NInstrument]Beat // Beat accuracy by the note's instrument
}

// Beat accumulates hold accuracies.
type Beat struct {
	Sum   float64
	Count int
}

// Mean is 0 when nothing was measured.
func (b Beat) Mean() float64 {
	if b.Count == 0 {
		return 0
	}
	return b.Sum / float64(b.Count)
}

func (b *Beat) add(accuracy float64) {
	b.Sum += accuracy
	b.Count++
}

// Grade turns a percentage into a letter, from A+ at 95 down to F below 60.
func Grade(percent float64) string {
	p := int(percent)
	switch {
	case p >= 95:
		return "A+"
	case p >= 90:
		return "A"
	case p >= 80:
		return "B"
	case p >= 70:
		return "C"
	case p >= 60:
		return "D"
	}
	return "F"
}

func (s *Stats) correct(p game.PitchClass) {
	s.Score++
	s.Correct++
	s.Pitches[p].Correct++
}

func (s *Stats) wrong(p game.PitchClass) {
	s.Wrong++
	s.Pitches[p].Wrong++
}

func (s *Stats) beat(accuracy float64, i game.Instrument) {
	s.beats.add(accuracy)
	if i.Valid() {
		s.Instruments[i].add(accuracy)
	}
}

// NoteAccuracyPercent is correct / (correct + wrong + missed), as a percentage.
func (s Stats) NoteAccuracyPercent() float64 {
	total := s.Correct + s.Wrong + s.Missed
	if total == 0 {
		return 0
	}
	return float64(s.Correct) / float64(total) * 100
}

// MeanBeatAccuracy averages every measured hold.
func (s Stats) MeanBeatAccuracy() float64 {
	return s.beats.Mean()
}

func (s Stats) BeatCount() int {
	return s.beats.Count
}

func (s Stats) NoteGrade() string {
	return Grade(s.NoteAccuracyPercent())
}

func (s Stats) BeatGrade() string {
	return Grade(s.MeanBeatAccuracy())
}
