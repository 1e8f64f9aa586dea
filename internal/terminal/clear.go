// Package terminal provides small helpers over the controlling terminal:
// its width, whether stdin/stdout are interactive, and erasing echoed input.
package terminal

import (
	"fmt"
	"io"
	"math"
	"os"

	"golang.org/x/term"
)

// Width returns the terminal width, or 80 when it cannot be determined.
func Width() int {
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		return width
	}
	return 80
}

// Interactive reports whether both stdin and stdout are terminals.
func Interactive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// LinesFor returns how many terminal rows textLength characters occupy at width.
func LinesFor(textLength, width int) int {
	if width <= 0 {
		width = 80
	}
	n := int(math.Ceil(float64(textLength) / float64(width)))
	if n < 1 {
		n = 1
	}
	return n
}

// ClearPreviousLines erases the prompt line(s) the user just typed on, so the
// input can be re-rendered as a chat bubble. textLength is prompt plus input.
func ClearPreviousLines(textLength int) {
	clearLines(os.Stdout, LinesFor(textLength, Width()))
}

// clearLines moves up over n lines plus the empty line Enter left the cursor
// on, clearing each one.
func clearLines(w io.Writer, n int) {
	linesToClear := n + 1
	for i := 0; i < linesToClear; i++ {
		fmt.Fprint(w, "\r\x1b[2K") // start of line, clear it
		if i < linesToClear-1 {
			fmt.Fprint(w, "\x1b[1A") // up one line
		}
	}
}
