package input

import (
	"context"
	"time"

	"git.lost.host/meutraa/slideplay/internal/game"
)

// Key names the non printable keys the game reacts to.
type Key uint8

const (
	KeyNone Key = iota
	KeyEsc
	KeySpace
	KeyEnter
	KeyBackspace
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeySave
)

// Event is a single key press or release. Rune is zero for named keys.
type Event struct {
	Rune    rune
	Key     Key
	Pressed bool
	Time    time.Duration
}

// Clock stamps events, usually with the time since the session started.
type Clock func() time.Duration

type Reader interface {
	// Read sends events until ctx is done or the source fails.
	Read(ctx context.Context, events chan<- Event) error
}

// KeyEvent converts a rune event to a pitch key event using the given
// binding.
func (e Event) KeyEvent(pitch func(rune) (game.PitchClass, bool)) (game.KeyEvent, bool) {
	if e.Rune == 0 {
		return game.KeyEvent{}, false
	}
	p, ok := pitch(e.Rune)
	if !ok {
		return game.KeyEvent{}, false
	}
	return game.KeyEvent{Pitch: p, Pressed: e.Pressed, Time: e.Time}, true
}

func send(ctx context.Context, events chan<- Event, ev Event) bool {
	select {
	case events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
