package input

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/eiannone/keyboard"
)

// KeyboardReader reads the terminal. Terminals only report presses, and
// repeat them while a key is held, so a press of a rune that is still held
// is taken as a repeat. The release is sent once repeats stop, stamped with
// the last repeat, or TapHold after the press when the key never repeated.
type KeyboardReader struct {
	Clock          Clock
	TapHold        time.Duration
	RepeatDelay    time.Duration // Longest wait for the first repeat
	RepeatInterval time.Duration // Longest wait between repeats
}

var namedKeys = map[keyboard.Key]Key{
	keyboard.KeyEsc:        KeyEsc,
	keyboard.KeyCtrlC:      KeyEsc,
	keyboard.KeySpace:      KeySpace,
	keyboard.KeyEnter:      KeyEnter,
	keyboard.KeyBackspace:  KeyBackspace,
	keyboard.KeyBackspace2: KeyBackspace,
	keyboard.KeyArrowUp:    KeyUp,
	keyboard.KeyArrowDown:  KeyDown,
	keyboard.KeyArrowLeft:  KeyLeft,
	keyboard.KeyArrowRight: KeyRight,
	keyboard.KeyCtrlS:      KeySave,
}

func translate(ev keyboard.KeyEvent) (Event, bool) {
	if ev.Rune == ' ' {
		return Event{Key: KeySpace, Pressed: true}, true
	}
	if ev.Rune != 0 {
		return Event{Rune: ev.Rune, Pressed: true}, true
	}
	if k, ok := namedKeys[ev.Key]; ok {
		return Event{Key: k, Pressed: true}, true
	}
	return Event{}, false
}

func (r *KeyboardReader) Read(ctx context.Context, events chan<- Event) error {
	keys, err := keyboard.GetKeys(128)
	if nil != err {
		return fmt.Errorf("unable to open keyboard: %w", err)
	}
	defer func() {
		if err := keyboard.Close(); nil != err {
			log.Println("unable to close keyboard:", err)
		}
	}()

	delay := r.RepeatDelay
	if delay < r.TapHold {
		delay = r.TapHold
	}
	interval := r.RepeatInterval
	if interval <= 0 {
		interval = 120 * time.Millisecond
	}
	t := newTapper(ctx, events, r.TapHold, delay, interval)
	defer t.stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case key, ok := <-keys:
			if !ok {
				return nil
			}
			if nil != key.Err {
				return fmt.Errorf("unable to read keyboard: %w", key.Err)
			}
			ev, ok := translate(key)
			if !ok {
				continue
			}
			ev.Time = r.Clock()
			if !t.press(ev) {
				return nil
			}
		}
	}
}

// hold is a rune the terminal still considers down.
type hold struct {
	timer    *time.Timer
	pressed  time.Duration
	last     time.Duration
	repeated bool
}

func (h *hold) released(tap time.Duration) time.Duration {
	if h.repeated {
		return h.last
	}
	return h.pressed + tap
}

// tapper folds key repeats into holds and schedules the synthesized
// releases. Every send happens under mu, so a release can never overtake
// the press that follows it.
type tapper struct {
	ctx      context.Context
	events   chan<- Event
	tap      time.Duration
	delay    time.Duration
	interval time.Duration

	mu   sync.Mutex
	held map[rune]*hold
}

func newTapper(ctx context.Context, events chan<- Event, tap, delay, interval time.Duration) *tapper {
	return &tapper{
		ctx:      ctx,
		events:   events,
		tap:      tap,
		delay:    delay,
		interval: interval,
		held:     map[rune]*hold{},
	}
}

func (t *tapper) press(ev Event) bool {
	if ev.Rune == 0 {
		return send(t.ctx, t.events, ev)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if h, ok := t.held[ev.Rune]; ok {
		if h.timer.Stop() {
			h.last = ev.Time
			h.repeated = true
			h.timer.Reset(t.interval)
			return true
		}
		// The timer fired but its callback is still waiting for mu
		delete(t.held, ev.Rune)
		if !send(t.ctx, t.events, Event{Rune: ev.Rune, Time: h.released(t.tap)}) {
			return false
		}
	}

	if !send(t.ctx, t.events, ev) {
		return false
	}
	r := ev.Rune
	h := &hold{pressed: ev.Time, last: ev.Time}
	h.timer = time.AfterFunc(t.delay, func() { t.expire(r, h) })
	t.held[r] = h
	return true
}

// expire sends the release of h, unless h was already replaced.
func (t *tapper) expire(r rune, h *hold) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.held[r] != h {
		return
	}
	delete(t.held, r)
	send(t.ctx, t.events, Event{Rune: r, Time: h.released(t.tap)})
}

func (t *tapper) stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for r, h := range t.held {
		h.timer.Stop()
		delete(t.held, r)
	}
}
