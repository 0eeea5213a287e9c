package input

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"
)

// From linux/input-event-codes.h
const (
	evKey = 0x01

	valueRelease = 0
	valuePress   = 1
)

type keyEvent struct {
	Time  syscall.Timeval
	Type  uint16
	Code  uint16
	Value int32
}

// Key codes of the US layout, https://github.com/torvalds/linux/blob/master/include/uapi/linux/input-event-codes.h
var codeRunes = map[uint16]rune{
	2: '1', 3: '2', 4: '3', 5: '4', 6: '5', 7: '6', 8: '7', 9: '8', 10: '9', 11: '0',
	16: 'q', 17: 'w', 18: 'e', 19: 'r', 20: 't', 21: 'y', 22: 'u', 23: 'i', 24: 'o', 25: 'p',
	30: 'a', 31: 's', 32: 'd', 33: 'f', 34: 'g', 35: 'h', 36: 'j', 37: 'k', 38: 'l',
	44: 'z', 45: 'x', 46: 'c', 47: 'v', 48: 'b', 49: 'n', 50: 'm',
}

var codeKeys = map[uint16]Key{
	1:   KeyEsc,
	14:  KeyBackspace,
	28:  KeyEnter,
	57:  KeySpace,
	103: KeyUp,
	105: KeyLeft,
	106: KeyRight,
	108: KeyDown,
}

// DeviceReader reads a Linux input device, which reports real releases.
// Reading usually needs membership of the input group.
type DeviceReader struct {
	Device string
	Clock  Clock
}

func decode(ev keyEvent) (Event, bool) {
	if ev.Type != evKey || (ev.Value != valuePress && ev.Value != valueRelease) {
		return Event{}, false
	}
	out := Event{Pressed: ev.Value == valuePress}
	if r, ok := codeRunes[ev.Code]; ok {
		out.Rune = r
		return out, true
	}
	if k, ok := codeKeys[ev.Code]; ok {
		out.Key = k
		return out, true
	}
	return Event{}, false
}

func readEvents(ctx context.Context, src io.Reader, clock Clock, events chan<- Event) error {
	var ev keyEvent
	for {
		if err := binary.Read(src, binary.LittleEndian, &ev); nil != err {
			if errors.Is(err, io.EOF) || nil != ctx.Err() {
				return nil
			}
			return fmt.Errorf("unable to read keyboard input: %w", err)
		}
		out, ok := decode(ev)
		if !ok {
			continue
		}
		out.Time = clock()
		if !send(ctx, events, out) {
			return nil
		}
	}
}

func (r *DeviceReader) Read(ctx context.Context, events chan<- Event) error {
	file, err := os.Open(r.Device)
	if err != nil {
		return err
	}
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
		case <-done:
		}
		file.Close()
	}()
	return readEvents(ctx, file, r.Clock, events)
}
