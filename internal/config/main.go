package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"git.lost.host/meutraa/slideplay/internal/game"
	"git.lost.host/meutraa/slideplay/internal/score"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/alecthomas/kingpin.v2"
	"gopkg.in/yaml.v3"
)

const Version = "0.3.0"

// Config holds every tunable. Distances are in pixels of a virtual field
// scrolling at ScrollSpeed pixels per second.
type Config struct {
	Keys           string        `yaml:"keys"`   // One rune per pitch class, Do to Si
	Device         string        `yaml:"device"` // Linux evdev keyboard, empty for terminal input
	FrameRate      float64       `yaml:"frame_rate"`
	ScrollSpeed    float64       `yaml:"scroll_speed"`
	TravelDistance float64       `yaml:"travel_distance"` // From the right edge to the threshold
	HitDistance    float64       `yaml:"hit_distance"`
	MissDistance   float64       `yaml:"miss_distance"`
	Grace          time.Duration `yaml:"grace"` // After the last note before the summary
	Preview        bool          `yaml:"preview"`
	TapHold        time.Duration `yaml:"tap_hold"`        // Synthesized hold for terminal input
	RepeatDelay    time.Duration `yaml:"repeat_delay"`    // Terminal autorepeat delay
	RepeatInterval time.Duration `yaml:"repeat_interval"` // Terminal autorepeat rate
	Instrument     string        `yaml:"instrument"`      // piano or guitar, empty plays each note's own
	ToggleKey      string        `yaml:"toggle_key"`      // Switches the instrument while playing
	Audio          bool          `yaml:"audio"`
	Database       string        `yaml:"database"`
	LogFile        string        `yaml:"log_file"`
}

// Command is the subcommand selected on the command line, with its arguments.
type Command struct {
	Name   string
	Track  string
	Output string
	Watch  bool
	Limit  int
}

func Default() *Config {
	return &Config{
		Keys:           "1234567",
		FrameRate:      60,
		ScrollSpeed:    150,
		TravelDistance: 1400,
		HitDistance:    40,
		MissDistance:   40,
		Grace:          2 * time.Second,
		Preview:        true,
		TapHold:        250 * time.Millisecond,
		RepeatDelay:    700 * time.Millisecond,
		RepeatInterval: 120 * time.Millisecond,
		ToggleKey:      "w",
		Audio:          true,
		Database:       "./scores.db",
		LogFile:        "slideplay.log",
	}
}

func distinctRunes(value interface{}) error {
	s, _ := value.(string)
	seen := map[rune]bool{}
	for _, r := range s {
		if seen[r] {
			return fmt.Errorf("key %q bound twice", r)
		}
		seen[r] = true
	}
	return nil
}

func (c *Config) unboundKey(value interface{}) error {
	s, _ := value.(string)
	if strings.ContainsAny(c.Keys, s) {
		return fmt.Errorf("key %q is already bound to a note", s)
	}
	return nil
}

func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Keys, validation.Required, validation.RuneLength(game.NPitch, game.NPitch), validation.By(distinctRunes)),
		validation.Field(&c.FrameRate, validation.Required, validation.Min(1.0), validation.Max(1000.0)),
		validation.Field(&c.ScrollSpeed, validation.Required, validation.Min(1.0)),
		validation.Field(&c.TravelDistance, validation.Required, validation.Min(1.0)),
		validation.Field(&c.HitDistance, validation.Required, validation.Min(1.0)),
		validation.Field(&c.MissDistance, validation.Min(0.0)),
		validation.Field(&c.Grace, validation.Min(time.Duration(0))),
		validation.Field(&c.TapHold, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&c.RepeatDelay, validation.Min(c.TapHold)),
		validation.Field(&c.RepeatInterval, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&c.Instrument, validation.In("piano", "guitar")),
		validation.Field(&c.ToggleKey, validation.Required, validation.RuneLength(1, 1), validation.By(c.unboundKey)),
		validation.Field(&c.Database, validation.Required),
	)
}

func (c *Config) seconds(pixels float64) time.Duration {
	return time.Duration(math.Round(pixels / c.ScrollSpeed * float64(time.Second)))
}

// TravelInterval is how long a note is visible before reaching the threshold.
func (c *Config) TravelInterval() time.Duration {
	return c.seconds(c.TravelDistance)
}

func (c *Config) Window() score.Window {
	return score.Window{Hit: c.seconds(c.HitDistance), Miss: c.seconds(c.MissDistance)}
}

func (c *Config) FramePeriod() time.Duration {
	return time.Duration(float64(time.Second) / c.FrameRate)
}

// Override returns the instrument that replaces every note's own, if any.
func (c *Config) Override() (game.Instrument, bool) {
	switch c.Instrument {
	case "piano":
		return game.Piano, true
	case "guitar":
		return game.ElectroGuitar, true
	}
	return game.Piano, false
}

// Toggle is the key that switches the instrument.
func (c *Config) Toggle() rune {
	for _, r := range c.ToggleKey {
		return r
	}
	return 0
}

// KeyPitch maps a bound key to its pitch class.
func (c *Config) KeyPitch(r rune) (game.PitchClass, bool) {
	for i, k := range []rune(c.Keys) {
		if k == r {
			return game.PitchClass(i), true
		}
	}
	return 0, false
}

// KeyFor returns the key bound to a pitch class.
func (c *Config) KeyFor(p game.PitchClass) rune {
	keys := []rune(c.Keys)
	if int(p) >= len(keys) {
		return '?'
	}
	return keys[p]
}

// Load reads a YAML file over target, expanding environment variables,
// and validates the result.
func Load(filename string, target *Config) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", filename, err)
	}

	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), target); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", filename, err)
	}

	if err := target.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// configPath finds the config file before the full command line is parsed,
// so that flags can override values from the file.
func configPath(args []string) string {
	path := os.Getenv("SLIDEPLAY_CONFIG")
	for i := 0; i < len(args); i++ {
		a := args[i]
		switch {
		case a == "--":
			return path
		case a == "--config" || a == "-c":
			if i+1 < len(args) {
				path = args[i+1]
				i++
			}
		case strings.HasPrefix(a, "--config="):
			path = strings.TrimPrefix(a, "--config=")
		}
	}
	return path
}

func ftoa(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Parse reads the optional config file and then the command line.
func Parse(args []string) (*Config, *Command, error) {
	cfg := Default()
	path := configPath(args)
	if path != "" {
		if err := Load(path, cfg); nil != err {
			return nil, nil, err
		}
	}

	cmd := &Command{}
	app := kingpin.New("slideplay", "Slide notes to the threshold and play them on time.")
	app.Version(Version)
	app.HelpFlag.Short('h')

	app.Flag("config", "YAML config file").Short('c').Default(path).Envar("SLIDEPLAY_CONFIG").String()
	app.Flag("keys", "Keys for Do Re Mi Fa Sol La Si").Short('k').Default(cfg.Keys).Envar("SLIDEPLAY_KEYS").StringVar(&cfg.Keys)
	app.Flag("device", "Linux input device for press and release events").Short('D').Default(cfg.Device).Envar("SLIDEPLAY_DEVICE").StringVar(&cfg.Device)
	app.Flag("frame-rate", "Frames per second").Short('R').Default(ftoa(cfg.FrameRate)).Float64Var(&cfg.FrameRate)
	app.Flag("scroll-speed", "Pixels per second").Short('s').Default(ftoa(cfg.ScrollSpeed)).Float64Var(&cfg.ScrollSpeed)
	app.Flag("travel", "Pixels from the right edge to the threshold").Default(ftoa(cfg.TravelDistance)).Float64Var(&cfg.TravelDistance)
	app.Flag("hit-distance", "Pixels from the threshold a press may match").Default(ftoa(cfg.HitDistance)).Float64Var(&cfg.HitDistance)
	app.Flag("miss-distance", "Pixels past the threshold before a note is missed").Default(ftoa(cfg.MissDistance)).Float64Var(&cfg.MissDistance)
	app.Flag("grace", "Delay after the last note before the summary").Default(cfg.Grace.String()).DurationVar(&cfg.Grace)
	app.Flag("preview", "Play the song once before the game").Default(strconv.FormatBool(cfg.Preview)).BoolVar(&cfg.Preview)
	app.Flag("tap-hold", "Hold length assumed for terminal key presses").Default(cfg.TapHold.String()).DurationVar(&cfg.TapHold)
	app.Flag("repeat-delay", "Longest wait for the terminal to repeat a held key").Default(cfg.RepeatDelay.String()).DurationVar(&cfg.RepeatDelay)
	app.Flag("repeat-interval", "Longest wait between repeats of a held key").Default(cfg.RepeatInterval.String()).DurationVar(&cfg.RepeatInterval)
	app.Flag("instrument", "Play every note with this instrument (piano or guitar)").Short('i').Default(cfg.Instrument).Envar("SLIDEPLAY_INSTRUMENT").StringVar(&cfg.Instrument)
	app.Flag("toggle-key", "Key that switches the instrument while playing").Default(cfg.ToggleKey).StringVar(&cfg.ToggleKey)
	app.Flag("audio", "Play note and error sounds").Default(strconv.FormatBool(cfg.Audio)).BoolVar(&cfg.Audio)
	app.Flag("database", "Score history database").Default(cfg.Database).Envar("SLIDEPLAY_DATABASE").StringVar(&cfg.Database)
	app.Flag("log", "Log file, empty for stderr").Default(cfg.LogFile).StringVar(&cfg.LogFile)

	play := app.Command("play", "Play a track").Default()
	play.Arg("track", "Track file").Default("track.txt").StringVar(&cmd.Track)

	check := app.Command("check", "Validate a track file")
	check.Arg("track", "Track file").Default("track.txt").StringVar(&cmd.Track)
	check.Flag("watch", "Check again whenever the file changes").Short('w').BoolVar(&cmd.Watch)

	export := app.Command("export", "Write a track as a MIDI file")
	export.Arg("track", "Track file").Default("track.txt").StringVar(&cmd.Track)
	export.Arg("output", "MIDI file, defaults to the track name with .mid").StringVar(&cmd.Output)

	history := app.Command("history", "Show previous scores of a track")
	history.Arg("track", "Track file").Default("track.txt").StringVar(&cmd.Track)
	history.Flag("limit", "Number of scores to show").Short('n').Default("10").IntVar(&cmd.Limit)

	compose := app.Command("compose", "Compose a track note by note")
	compose.Arg("output", "Track file to save to").Default("track.txt").StringVar(&cmd.Output)

	name, err := app.Parse(args)
	if nil != err {
		return nil, nil, err
	}
	cmd.Name = name

	if err := cfg.Validate(); nil != err {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, cmd, nil
}
