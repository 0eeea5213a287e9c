package parser

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode"

	"git.lost.host/meutraa/slideplay/internal/game"
)

type DefaultParser struct {
	Logger *log.Logger // Receives warnings for skipped tokens, nil uses the standard logger
}

func (p *DefaultParser) warnf(format string, v ...interface{}) {
	if nil != p.Logger {
		p.Logger.Printf(format, v...)
		return
	}
	log.Printf(format, v...)
}

// Hash identifies track content, ignoring surrounding whitespace.
func Hash(data []byte) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(string(data))))
	return base64.StdEncoding.EncodeToString(sum[:])
}

func seconds(s string) (time.Duration, error) {
	f, err := strconv.ParseFloat(s, 64)
	if nil != err {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%q is not a finite number", s)
	}
	return time.Duration(math.Round(f * float64(time.Second))), nil
}

// ParseToken reads a single <Pitch><Octave>-<Start>-<Duration>-<Volume>[-<Instrument>]
// token.
func ParseToken(token string) (*game.Note, error) {
	parts := strings.Split(token, "-")
	if len(parts) != 4 && len(parts) != 5 {
		return nil, fmt.Errorf("expected 4 or 5 fields, got %v", len(parts))
	}

	// The pitch is every letter of the first field, the octave every digit
	var name, digits strings.Builder
	for _, r := range parts[0] {
		if unicode.IsDigit(r) {
			digits.WriteRune(r)
		} else {
			name.WriteRune(r)
		}
	}
	pitch, err := game.ParsePitchClass(name.String())
	if nil != err {
		return nil, err
	}
	octave, err := strconv.Atoi(digits.String())
	if nil != err {
		return nil, fmt.Errorf("bad octave in %q", parts[0])
	}

	start, err := seconds(parts[1])
	if nil != err {
		return nil, fmt.Errorf("bad start time: %w", err)
	}
	if start < 0 {
		return nil, fmt.Errorf("negative start time %v", parts[1])
	}
	duration, err := seconds(parts[2])
	if nil != err {
		return nil, fmt.Errorf("bad duration: %w", err)
	}
	if duration <= 0 {
		return nil, fmt.Errorf("duration %v is not positive", parts[2])
	}
	volume, err := strconv.Atoi(parts[3])
	if nil != err || volume < 0 || volume > 100 {
		return nil, fmt.Errorf("volume %q not in 0-100", parts[3])
	}

	instrument := game.Piano
	if len(parts) == 5 {
		id, err := strconv.Atoi(parts[4])
		if nil != err || id < 0 || id > 255 || !game.Instrument(id).Valid() {
			return nil, fmt.Errorf("unknown instrument %q", parts[4])
		}
		instrument = game.Instrument(id)
	}

	return &game.Note{
		Pitch:      pitch,
		Octave:     octave,
		Time:       start,
		Duration:   duration,
		Volume:     uint8(volume),
		Instrument: instrument,
	}, nil
}

// Parse never fails: malformed tokens are logged and skipped.
func (p *DefaultParser) Parse(name string, data []byte) *game.Track {
	notes := []*game.Note{}
	skipped := 0
	for _, token := range strings.Fields(string(data)) {
		note, err := ParseToken(token)
		if nil != err {
			p.warnf("warning: skipping malformed entry %v: %v", token, err)
			skipped++
			continue
		}
		notes = append(notes, note)
	}

	track := game.NewTrack(name, Hash(data), notes)
	track.Skipped = skipped
	return track
}

// LoadFile reads and parses a track file.
func (p *DefaultParser) LoadFile(file string) (*game.Track, error) {
	data, err := os.ReadFile(file)
	if nil != err {
		return nil, err
	}
	return p.Parse(filepath.Base(file), data), nil
}

// LoadOrFallback behaves like LoadFile, but plays the built in track when
// the file does not exist. The boolean reports whether the fallback was used.
func (p *DefaultParser) LoadOrFallback(file string) (*game.Track, bool, error) {
	track, err := p.LoadFile(file)
	if nil == err {
		return track, false, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, false, fmt.Errorf("unable to load track: %w", err)
	}
	p.warnf("track %v not found, using fallback track", file)
	return p.Parse(FallbackName, []byte(FallbackTrack)), true, nil
}
