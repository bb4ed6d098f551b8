package output

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

// writerIsTTY returns true if the given writer exposes an Fd() method
// (e.g. *os.File) and that fd is a terminal. Falls back to false for
// plain io.Writer values such as *bytes.Buffer.
func writerIsTTY(w io.Writer) bool {
	type fder interface {
		Fd() uintptr
	}
	if f, ok := w.(fder); ok {
		return isatty.IsTerminal(f.Fd())
	}
	return false
}

// ProgressBar displays a counted progress bar.
// Example: [=========>          ] 3/7 Removing zap paths
type ProgressBar struct {
	total       int
	current     int
	description string
	width       int
	mu          sync.Mutex
	writer      io.Writer
}

// NewProgress creates a new progress bar writing to w.
func NewProgress(w io.Writer, total int, description string) *ProgressBar {
	return &ProgressBar{
		total:       total,
		description: description,
		width:       30,
		writer:      w,
	}
}

// Increment advances the bar by one and redraws it.
func (p *ProgressBar) Increment() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current < p.total {
		p.current++
	}
	p.render()
}

// Finish completes the progress bar and moves to a new line.
func (p *ProgressBar) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	alreadyDone := p.current == p.total
	p.current = p.total

	if writerIsTTY(p.writer) {
		p.render()
		fmt.Fprintln(p.writer)
	} else if !alreadyDone {
		// Non-TTY output already printed the final line when current hit total.
		p.render()
	}
}

// render draws the progress bar (must be called with lock held).
func (p *ProgressBar) render() {
	filled := 0
	if p.total > 0 {
		filled = (p.current * p.width) / p.total
	}

	var bar strings.Builder
	bar.WriteString("[")
	for i := 0; i < p.width; i++ {
		switch {
		case i < filled-1:
			bar.WriteString("=")
		case i == filled-1:
			bar.WriteString(">")
		default:
			bar.WriteString(" ")
		}
	}
	bar.WriteString("]")

	if writerIsTTY(p.writer) {
		fmt.Fprintf(p.writer, "\r%s %d/%d %s", bar.String(), p.current, p.total, p.description)
	} else if p.current == p.total {
		fmt.Fprintf(p.writer, "%s %d/%d %s\n", bar.String(), p.current, p.total, p.description)
	}
}

// Spinner displays an animated spinner with a message.
// Example: |  Checking upstream releases (3s elapsed)
type Spinner struct {
	message   string
	running   bool
	chars     []string
	mu        sync.Mutex
	writer    io.Writer
	ticker    *time.Ticker
	done      chan struct{}
	startTime time.Time
}

// NewSpinner creates a new spinner writing to w. On a non-TTY writer the
// message is printed once instead of animating.
func NewSpinner(w io.Writer, message string) *Spinner {
	return &Spinner{
		message: message,
		chars:   []string{"|", "/", "-", "\\"},
		writer:  w,
		done:    make(chan struct{}),
	}
}

// Start begins the spinner animation.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}
	s.running = true
	s.startTime = time.Now()

	if !writerIsTTY(s.writer) {
		fmt.Fprintf(s.writer, "%s...\n", s.message)
		return
	}

	s.ticker = time.NewTicker(100 * time.Millisecond)
	go func() {
		idx := 0
		for {
			select {
			case <-s.ticker.C:
				s.mu.Lock()
				if !s.running {
					s.mu.Unlock()
					return
				}
				elapsed := int(time.Since(s.startTime).Seconds())
				fmt.Fprintf(s.writer, "\r%s  %s (%ds elapsed)", s.chars[idx], s.message, elapsed)
				idx = (idx + 1) % len(s.chars)
				s.mu.Unlock()
			case <-s.done:
				return
			}
		}
	}()
}

// Stop stops the spinner animation and clears the line.
func (s *Spinner) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	s.running = false
	if s.ticker != nil {
		s.ticker.Stop()
	}
	close(s.done)

	if writerIsTTY(s.writer) {
		fmt.Fprintf(s.writer, "\r%s\r", strings.Repeat(" ", len(s.message)+20))
	}
}

// StopWithMessage stops the spinner and displays a final message.
func (s *Spinner) StopWithMessage(message string) {
	s.Stop()
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintln(s.writer, message)
}
