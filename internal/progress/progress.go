// Package progress renders an inline single-line gauge of task queue
// drain on a terminal.
package progress

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"
)

const barWidth = 40

// Gauge periodically redraws a one-line progress bar until the watched
// queue is empty or the context is cancelled.
type Gauge struct {
	out       io.Writer
	total     int
	remaining func() int
	enqueued  func() bool
}

// New builds a gauge over total tasks. remaining reports how many tasks
// are still queued; enqueued reports whether the producer has finished
// enqueuing (switches the bar's pending marker).
func New(out io.Writer, total int, remaining func() int, enqueued func() bool) *Gauge {
	return &Gauge{out: out, total: total, remaining: remaining, enqueued: enqueued}
}

// Run redraws the gauge every tick until the queue drains. It blocks;
// run it on its own goroutine.
func (g *Gauge) Run(ctx context.Context) {
	if g.total == 0 {
		return
	}

	ticker := time.NewTicker(40 * time.Millisecond)
	defer ticker.Stop()

	for {
		remaining := g.remaining()
		fmt.Fprint(g.out, render(remaining, g.total, g.enqueued()))

		if remaining == 0 {
			fmt.Fprintln(g.out)
			return
		}

		select {
		case <-ctx.Done():
			fmt.Fprintln(g.out)
			return
		case <-ticker.C:
		}
	}
}

// render formats the carriage-returned gauge line. The marker after the
// bar is '+' while the producer is still enqueuing and '=' afterwards.
func render(remaining, total int, enqueued bool) string {
	if remaining > total {
		remaining = total
	}
	if remaining < 0 {
		remaining = 0
	}

	done := total - remaining
	filled := done * barWidth / total

	marker := "+"
	if enqueued {
		marker = "="
	}

	return fmt.Sprintf("\r[%s%s]%s %d/%d tasks",
		strings.Repeat("#", filled),
		strings.Repeat("-", barWidth-filled),
		marker, done, total)
}
