package cmd

import (
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"
	"time"

	"atomicgo.dev/cursor"
	"github.com/pterm/pterm"

	"sqlagent/cli/internal/logging"
	"sqlagent/cli/internal/terminal"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// startInlineSpinner starts an inline spinner animation on a single line.
// It displays rotating frames followed by text, updating the same line, and
// clears that line when the returned function is called.
func startInlineSpinner(w io.Writer, text string, frames []string, interval time.Duration) func() {
	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		i := 0
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		fmt.Fprintf(w, "\r%s %s", frames[0], text)
		for {
			select {
			case <-stop:
				line := fmt.Sprintf("%s %s", frames[i%len(frames)], text)
				// Clear the spinner line completely, then return
				fmt.Fprintf(w, "\r%*s\r", len([]rune(line)), "")
				return
			case <-ticker.C:
				i++
				fmt.Fprintf(w, "\r%s %s", frames[i%len(frames)], text)
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			wg.Wait()
		})
	}
}

// spinnerIndicator shows a spinner while a reply is pending. It satisfies
// render.Indicator. Outside a terminal it does nothing.
type spinnerIndicator struct {
	w  io.Writer
	mu sync.Mutex

	stop func()
}

func newSpinnerIndicator(w io.Writer) *spinnerIndicator {
	return &spinnerIndicator{w: w}
}

func (s *spinnerIndicator) Start(text string) {
	if !terminal.Interactive() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil {
		return
	}
	cursor.Hide()
	s.stop = startInlineSpinner(s.w, pterm.FgGray.Sprint(text), spinnerFrames, 80*time.Millisecond)
}

func (s *spinnerIndicator) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop == nil {
		return
	}
	s.stop()
	s.stop = nil
	cursor.Show()
}

// withSpinner runs fn while an inline spinner shows text.
func withSpinner(w io.Writer, text string, fn func() error) error {
	ind := newSpinnerIndicator(w)
	ind.Start(text)
	err := fn()
	ind.Stop()
	return err
}

// printField prints a "label: value" line in the CLI's info style.
func printField(label, value string) {
	pterm.Println(pterm.NewStyle(pterm.FgLightCyan).Sprint(label) + pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint(value))
}

// maskDSN replaces the password of a PostgreSQL DSN with *** and keeps the
// user name visible. Keyword/value DSNs fall back to logging.Mask.
func maskDSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return logging.Mask(dsn)
	}
	if u.User == nil {
		return dsn
	}
	if _, ok := u.User.Password(); !ok {
		return dsn
	}
	// url.UserPassword would percent-encode the mask.
	user := url.User(u.User.Username()).String()
	u.User = nil
	rest := strings.TrimPrefix(u.String(), u.Scheme+"://")
	return u.Scheme + "://" + user + ":***@" + rest
}
