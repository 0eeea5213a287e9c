package game

// Outcome is the terminal classification of a note. A note starts Pending
// and moves to exactly one of the other values, once.
type Outcome uint8

const (
	Pending Outcome = iota
	Played
	Missed
	Wrong
)

var outcomeNames = [...]string{"pending", "played", "missed", "wrong"}

func (o Outcome) String() string {
	if int(o) >= len(outcomeNames) {
		return "unknown"
	}
	return outcomeNames[o]
}

func (o Outcome) Terminal() bool {
	return o != Pending
}
