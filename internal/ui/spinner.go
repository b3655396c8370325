package ui

import (
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/term"
)

var spinFrames = []rune("◐◓◑◒")

const spinInterval = 120 * time.Millisecond

// Busy shows label with a small animation and elapsed seconds on w while
// fn runs, then clears the line. On non-terminal writers it only runs fn.
func Busy[T any](w io.Writer, label string, fn func() (T, error)) (T, error) {
	if !isTerminal(w) {
		return fn()
	}

	done := make(chan struct{})
	drawn := make(chan struct{})
	go func() {
		defer close(drawn)
		start := time.Now()
		tick := time.NewTicker(spinInterval)
		defer tick.Stop()
		for n := 0; ; n++ {
			frame := StylePrimary.Render(string(spinFrames[n%len(spinFrames)]))
			secs := int(time.Since(start).Seconds())
			fmt.Fprintf(w, "\r%s %s %s", frame, label, StyleSubtle.Render(fmt.Sprintf("%ds", secs)))
			select {
			case <-done:
				fmt.Fprint(w, "\r\033[K")
				return
			case <-tick.C:
			}
		}
	}()

	v, err := fn()
	close(done)
	<-drawn
	return v, err
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
