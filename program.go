package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"git.lost.host/meutraa/slideplay/internal/audio"
	"git.lost.host/meutraa/slideplay/internal/compose"
	"git.lost.host/meutraa/slideplay/internal/config"
	"git.lost.host/meutraa/slideplay/internal/game"
	"git.lost.host/meutraa/slideplay/internal/input"
	"git.lost.host/meutraa/slideplay/internal/parser"
	"git.lost.host/meutraa/slideplay/internal/render"
	"git.lost.host/meutraa/slideplay/internal/score"
	"git.lost.host/meutraa/slideplay/internal/session"
	"git.lost.host/meutraa/slideplay/internal/theme"
	"golang.org/x/sync/errgroup"
)

// clock measures time from an epoch that is moved when the session starts,
// and is read by the input goroutine.
type clock struct {
	epoch atomic.Int64
}

func newClock() *clock {
	c := &clock{}
	c.Reset()
	return c
}

func (c *clock) Reset() {
	c.epoch.Store(time.Now().UnixNano())
}

func (c *clock) Now() time.Duration {
	return time.Duration(time.Now().UnixNano() - c.epoch.Load())
}

// Program is the play command: instructions, optional preview, the game and
// its summary, all driven from the render loop.
type Program struct {
	Config   *config.Config
	Session  *session.Session
	Screen   *render.Screen
	History  score.Store
	Feedback score.Feedback

	clock   *clock
	events  chan input.Event
	drawn   bool
	stats   score.Stats
	waiting bool // Summary is shown, waiting for a key
}

func newFeedback(cfg *config.Config) score.Feedback {
	if !cfg.Audio {
		return audio.Nop{}
	}
	s, err := audio.NewSpeaker(audio.DefaultSampleRate)
	if nil != err {
		log.Println(err, "continuing without audio")
		return audio.Nop{}
	}
	return s
}

func newReader(cfg *config.Config, c *clock) input.Reader {
	if cfg.Device != "" {
		return &input.DeviceReader{Device: cfg.Device, Clock: c.Now}
	}
	return &input.KeyboardReader{
		Clock:          c.Now,
		TapHold:        cfg.TapHold,
		RepeatDelay:    cfg.RepeatDelay,
		RepeatInterval: cfg.RepeatInterval,
	}
}

func (p *Program) Init(track *game.Track, r render.Renderer) error {
	opts := []session.Option{
		session.WithWindow(p.Config.Window()),
		session.WithTravel(p.Config.TravelInterval()),
		session.WithGrace(p.Config.Grace),
		session.WithFeedback(p.Feedback),
		session.WithLogger(log.Default()),
	}
	if i, ok := p.Config.Override(); ok {
		opts = append(opts, session.WithInstrument(i))
	}
	var err error
	p.Session, err = session.New(track, opts...)
	if nil != err {
		return err
	}

	cols, _ := r.Size()
	p.Screen = &render.Screen{
		R:      r,
		Theme:  &theme.DefaultTheme{},
		Layout: render.NewLayout(cols, p.Config.TravelInterval()),
		Keys:   []rune(p.Config.Keys),
		Toggle: p.Config.Toggle(),
	}
	p.events = make(chan input.Event, 256)
	p.clock = newClock()
	return nil
}

// drain returns the events received since the last frame.
func (p *Program) drain() []input.Event {
	evs := []input.Event{}
	for {
		select {
		case ev := <-p.events:
			evs = append(evs, ev)
		default:
			return evs
		}
	}
}

func (p *Program) startLive() {
	p.Screen.R.Clear()
	p.clock.Reset()
	if err := p.Session.StartLive(); nil != err {
		log.Println(err)
	}
}

func (p *Program) startPreview() {
	p.Screen.R.Clear()
	p.clock.Reset()
	if _, err := p.Session.Preview(p.clock.Now()); nil != err {
		log.Println(err)
	}
}

// Update handles one frame. It returns false when the program should exit.
func (p *Program) Update() bool {
	evs := p.drain()
	for _, ev := range evs {
		if ev.Pressed && ev.Key == input.KeyEsc {
			p.Session.Abort()
			return false
		}
		if ev.Pressed && ev.Rune != 0 && ev.Rune == p.Config.Toggle() {
			if _, err := p.Session.ToggleInstrument(); nil != err {
				log.Println(err)
			}
		}
	}

	switch p.Session.Phase() {
	case session.Instructions:
		if !p.drawn {
			p.Screen.Instructions(p.Session.Track(), p.Config.Preview)
			p.drawn = true
		}
		for _, ev := range evs {
			if !ev.Pressed {
				continue
			}
			switch {
			case ev.Key == input.KeySpace && p.Config.Preview:
				p.startPreview()
				return true
			case ev.Key == input.KeySpace, ev.Rune == 's':
				p.startLive()
				return true
			}
		}

	case session.Preview:
		for _, ev := range evs {
			if ev.Pressed && ev.Key == input.KeySpace {
				p.Session.SkipPreview()
			}
		}
		now := p.clock.Now()
		if _, err := p.Session.Preview(now); nil != err {
			log.Println(err)
		}
		if p.Session.PreviewDone() {
			p.startLive()
			return true
		}
		p.Screen.Field(now, p.Session.Track().Visible(now))
		p.Screen.Panel(score.Stats{}, "Listen to the song, space to start playing", p.label("Preview"))

	case session.Live:
		keys := make([]game.KeyEvent, 0, len(evs))
		for _, ev := range evs {
			if kev, ok := ev.KeyEvent(p.Config.KeyPitch); ok {
				keys = append(keys, kev)
			}
		}
		frame := p.Session.Tick(p.clock.Now(), keys)
		p.Screen.Field(frame.Time, frame.Visible)
		p.Screen.Marks(p.stats, frame.Stats)
		p.Screen.Panel(frame.Stats, frame.Last, p.label(fmt.Sprintf("%5.1fs", frame.Time.Seconds())))
		p.stats = frame.Stats
		if frame.Phase == session.Summary {
			p.summary()
		}

	case session.Summary:
		for _, ev := range evs {
			if ev.Pressed {
				return false
			}
		}

	case session.Aborted:
		return false
	}
	return true
}

// label adds the forced instrument to a panel label.
func (p *Program) label(s string) string {
	if i, ok := p.Session.Instrument(); ok {
		return fmt.Sprintf("%v %v", s, i)
	}
	return s
}

func (p *Program) summary() {
	track := p.Session.Track()
	var best *score.Record
	if nil != p.History {
		b, err := p.History.Best(track.Hash)
		if nil != err && !errors.Is(err, score.ErrNoHistory) {
			log.Println(err)
		}
		best = b

		record, err := p.Session.Result(time.Now())
		if nil == err {
			err = p.History.Save(record)
		}
		if nil != err {
			log.Println("unable to save score:", err)
		}
	}
	p.Screen.Summary(track, p.Session.Stats(), best)
}

func play(ctx context.Context, cfg *config.Config, cmd *config.Command) error {
	psr := &parser.DefaultParser{}
	track, fallback, err := psr.LoadOrFallback(cmd.Track)
	if nil != err {
		return err
	}
	if fallback {
		log.Printf("playing the built in track instead of %v", cmd.Track)
	}

	p := &Program{Config: cfg, Feedback: newFeedback(cfg)}
	if h, err := score.OpenHistory(cfg.Database); nil != err {
		log.Println("scores will not be saved:", err)
	} else {
		p.History = h
		defer h.Close()
	}

	r := &render.DefaultRenderer{}
	if err := p.Init(track, r); nil != err {
		return err
	}
	if err := r.Init(); nil != err {
		return fmt.Errorf("unable to prepare terminal: %w", err)
	}
	defer r.Deinit()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return newReader(cfg, p.clock).Read(ctx, p.events)
	})
	g.Go(func() error {
		// The reader stops when the game loop is done
		defer cancel()
		return r.RenderLoop(ctx, cfg.FramePeriod(), func(time.Duration) bool {
			return p.Update()
		})
	})
	return g.Wait()
}

func composeTrack(ctx context.Context, cfg *config.Config, cmd *config.Command) error {
	c := compose.New(newFeedback(cfg))

	r := &render.DefaultRenderer{}
	if err := r.Init(); nil != err {
		return fmt.Errorf("unable to prepare terminal: %w", err)
	}
	defer r.Deinit()

	cols, _ := r.Size()
	screen := &render.Screen{R: r, Theme: &theme.DefaultTheme{}, Keys: []rune(cfg.Keys)}
	events := make(chan input.Event, 64)
	message := fmt.Sprintf("Saving to %v", cmd.Output)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		kr := &input.KeyboardReader{
			Clock:          newClock().Now,
			TapHold:        cfg.TapHold,
			RepeatDelay:    cfg.RepeatDelay,
			RepeatInterval: cfg.RepeatInterval,
		}
		return kr.Read(ctx, events)
	})
	g.Go(func() error {
		defer cancel()
		return r.RenderLoop(ctx, cfg.FramePeriod(), func(time.Duration) bool {
		drain:
			for {
				select {
				case ev := <-events:
					if ev.Pressed && ev.Key == input.KeySave {
						if err := c.Save(cmd.Output); nil != err {
							message = err.Error()
						} else {
							message = fmt.Sprintf("Saved %v notes to %v", len(c.Notes), cmd.Output)
							log.Println(message)
						}
						continue
					}
					if !c.Handle(ev, cfg.KeyPitch) {
						return false
					}
				default:
					break drain
				}
			}

			// Fit the whole piece with some room to place the next note
			span := c.End() + 2*time.Second
			if span < 10*time.Second {
				span = 10 * time.Second
			}
			screen.Layout = render.NewLayout(cols, span)
			screen.Field(0, c.Notes)
			if c.State() == compose.PositionSelection {
				col := screen.Layout.Column(c.Position, 0)
				r.Fill(screen.Layout.Lane(c.Selected()), col, "▲")
			}
			screen.Text(render.PanelRow, append(c.Status(), message)...)
			return true
		})
	})
	if err := g.Wait(); nil != err && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
