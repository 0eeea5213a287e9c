package game

import "time"

// KeyEvent is a press or release of a pitch key, timestamped relative to
// the start of the session.
type KeyEvent struct {
	Pitch   PitchClass
	Pressed bool
	Time    time.Duration
}

func Press(p PitchClass, t time.Duration) KeyEvent {
	return KeyEvent{Pitch: p, Pressed: true, Time: t}
}

func Release(p PitchClass, t time.Duration) KeyEvent {
	return KeyEvent{Pitch: p, Time: t}
}
