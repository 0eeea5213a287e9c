package render

import (
	"context"
	"fmt"
	"image/color"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/term"
)

type DefaultRenderer struct {
	Out io.Writer // Defaults to os.Stdout

	buffer       strings.Builder
	restoreState *term.State
	decorations  []*decoration
}

type decoration struct {
	X, Y    int
	Content string
	Frames  int // remaining frames until removed
}

func (r *DefaultRenderer) out() io.Writer {
	if nil == r.Out {
		return os.Stdout
	}
	return r.Out
}

func (r *DefaultRenderer) fd() (int, bool) {
	f, ok := r.out().(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 0, false
	}
	return int(f.Fd()), true
}

func (r *DefaultRenderer) Init() error {
	if fd, ok := r.fd(); ok {
		state, err := term.MakeRaw(fd)
		if nil != err {
			return err
		}
		r.restoreState = state
	}

	fmt.Fprintf(r.out(), "%s%s%s",
		"\033[?1049h", // Enable alternate buffer
		"\033[?25l",   // Make the cursor invisible
		"\033[J",      // Clear the screen
	)
	return nil
}

func (r *DefaultRenderer) Deinit() error {
	fmt.Fprintf(r.out(), "%s%s",
		"\033[?1049l", // Disable alternate buffer
		"\033[?25h",   // Make the cursor visible
	)
	if nil == r.restoreState {
		return nil
	}
	fd, _ := r.fd()
	return term.Restore(fd, r.restoreState)
}

// Size falls back to 80x24 when the output is not a terminal.
func (r *DefaultRenderer) Size() (int, int) {
	if fd, ok := r.fd(); ok {
		if cols, rows, err := term.GetSize(fd); nil == err {
			return cols, rows
		}
	}
	return 80, 24
}

func (r *DefaultRenderer) AddDecoration(col, row int, content string, frames int) {
	r.decorations = append(r.decorations, &decoration{
		X:       col,
		Y:       row,
		Content: content,
		Frames:  frames,
	})
	r.Fill(row, col, content)
}

// Living decorations are drawn again every frame, since the frame may have
// cleared their line.
func (r *DefaultRenderer) tickDecorations() {
	nd := make([]*decoration, 0, len(r.decorations))
	for _, d := range r.decorations {
		if d.Frames == 0 {
			r.Fill(d.Y, d.X, " ")
			continue
		}
		r.Fill(d.Y, d.X, d.Content)
		nd = append(nd, d)
		d.Frames--
	}
	r.decorations = nd
}

// RenderLoop calls render once per period with the time elapsed since the
// loop started, until render returns false or ctx is done.
func (r *DefaultRenderer) RenderLoop(
	ctx context.Context,
	period time.Duration,
	render func(elapsed time.Duration) bool,
) error {
	startTime := time.Now()
	timer := time.NewTimer(0)
	defer timer.Stop()
	for {
		if err := ctx.Err(); nil != err {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}

		now := time.Now()
		deadline := now.Add(period)

		cont := render(now.Sub(startTime))

		r.tickDecorations()
		if err := r.Flush(); nil != err {
			return err
		}
		if !cont {
			return nil
		}
		timer.Reset(time.Until(deadline))
	}
}

func (r *DefaultRenderer) moveTo(row, column int) {
	r.buffer.WriteString("\033[")
	r.buffer.WriteString(strconv.FormatInt(int64(row), 10))
	r.buffer.WriteString(";")
	r.buffer.WriteString(strconv.FormatInt(int64(column), 10))
	r.buffer.WriteString("H")
}

func (r *DefaultRenderer) Fill(row, column int, message string) {
	r.moveTo(row, column)
	r.buffer.WriteString(message)
}

func (r *DefaultRenderer) FillColor(row, column int, c color.RGBA, message string) {
	r.moveTo(row, column)
	r.buffer.WriteString("\033[38;2;")
	r.buffer.WriteString(strconv.FormatInt(int64(c.R), 10))
	r.buffer.WriteString(";")
	r.buffer.WriteString(strconv.FormatInt(int64(c.G), 10))
	r.buffer.WriteString(";")
	r.buffer.WriteString(strconv.FormatInt(int64(c.B), 10))
	r.buffer.WriteString("m")
	r.buffer.WriteString(message)
	r.buffer.WriteString("\033[0m")
}

func (r *DefaultRenderer) ClearLine(row int) {
	r.moveTo(row, 1)
	r.buffer.WriteString("\033[2K")
}

func (r *DefaultRenderer) Clear() {
	r.buffer.WriteString("\033[2J")
	r.decorations = nil
}

// Flush writes out everything filled so far.
func (r *DefaultRenderer) Flush() error {
	_, err := io.WriteString(r.out(), r.buffer.String())
	r.buffer.Reset()
	return err
}
