package cliui

import (
	"fmt"
	"io"
	"sync"
	"time"

	"charm.land/lipgloss/v2"
)

const frameInterval = 80 * time.Millisecond

var (
	frameStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	frames     = []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}
)

// spinner redraws a single status line until stopped.
type spinner struct {
	w    io.Writer
	msg  string
	stop chan struct{}
	done sync.WaitGroup
}

func startSpinner(w io.Writer, msg string) *spinner {
	s := &spinner{w: w, msg: msg, stop: make(chan struct{})}
	s.done.Add(1)
	go s.loop()
	return s
}

func (s *spinner) loop() {
	defer s.done.Done()

	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	for i := 0; ; i++ {
		fmt.Fprintf(s.w, "\r  %s %s", frameStyle.Render(frames[i%len(frames)]), s.msg)

		select {
		case <-s.stop:
			return
		case <-ticker.C:
		}
	}
}

// finish stops the animation and overwrites the line with the result.
func (s *spinner) finish(line string) {
	close(s.stop)
	s.done.Wait()
	fmt.Fprintf(s.w, "\r%s", line)
}

// Step runs fn and prints msg with a ✓ or ✗ and the elapsed time. On a
// terminal a spinner is shown while fn runs; elsewhere only the result line
// is printed. fn's error is returned.
func Step(w io.Writer, msg string, fn func() error) error {
	var s *spinner
	if IsTerminal(w) {
		s = startSpinner(w, msg)
	}

	start := time.Now()
	err := fn()
	line := fmt.Sprintf("  %s %s %s\n", Mark(err), msg, StepStyle.Render("("+FormatDuration(time.Since(start))+")"))

	if s != nil {
		s.finish(line)
	} else {
		fmt.Fprint(w, line)
	}
	return err
}

// FormatDuration formats d as whole milliseconds below a second and tenths
// of a second above ("12ms", "3.2s").
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}
