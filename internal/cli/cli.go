package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"loadcompose/internal/remote"

	"github.com/rs/zerolog/log"
)

// Source is the part of the execution service a watcher needs.
type Source interface {
	Status(ctx context.Context, resultID string) (*remote.Status, error)
	Stop(ctx context.Context, resultID string, force bool) error
}

type WatchOptions struct {
	Source   Source
	ResultID string
	Interval time.Duration
	Out      io.Writer
	// Interrupts are turned into stop requests, graceful first.
	Interrupts <-chan os.Signal
}

// Wait polls the result until it reaches a terminal status, printing a
// single progress line.
func Wait(ctx context.Context, opts WatchOptions) (*remote.Status, error) {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Interval <= 0 {
		opts.Interval = 10 * time.Second
	}
	stopper := remote.NewStopper(opts.ResultID, opts.Source.Stop)
	printHeader(opts.Out, opts.ResultID)

	startTime := time.Now()
	ticker := time.NewTicker(opts.Interval)
	defer ticker.Stop()

	var last *remote.Status
	poll := func() (bool, error) {
		st, err := opts.Source.Status(ctx, opts.ResultID)
		if err != nil {
			return false, err
		}
		last = st
		printProgress(opts.Out, st, time.Since(startTime))
		if remote.IsTerminal(st.Status) {
			fmt.Fprintln(opts.Out)
			return true, nil
		}
		return false, nil
	}

	if done, err := poll(); err != nil || done {
		return last, err
	}

	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(opts.Out)
			return last, ctx.Err()
		case <-opts.Interrupts:
			sent, err := stopper.Interrupt(ctx)
			switch {
			case err != nil:
				log.Warn().Err(err).Msg("stop request failed")
			case sent && stopper.Count() == 1:
				fmt.Fprintf(opts.Out, "\nStopping test %s (graceful). Interrupt again to terminate.\n", opts.ResultID)
			case sent:
				fmt.Fprintf(opts.Out, "\nTerminating test %s.\n", opts.ResultID)
			}
		case <-ticker.C:
			done, err := poll()
			if err != nil {
				return last, err
			}
			if done {
				return last, nil
			}
		}
	}
}

func printHeader(w io.Writer, resultID string) {
	fmt.Fprintf(w, "\nWATCHING RESULT %s\n", resultID)
	fmt.Fprintf(w, "======================================================================\n")
}

func printProgress(w io.Writer, st *remote.Status, elapsed time.Duration) {
	pct := st.Progress / 100
	if remote.IsTerminal(st.Status) {
		pct = 1
	}
	fmt.Fprintf(w, "\r%s %3.0f%% | %s | %-10s | quality: %s",
		progressBar(pct, 20), pct*100,
		elapsed.Round(time.Second),
		st.Status,
		orUnknown(st.QualityStatus),
	)
}

func orUnknown(s string) string {
	if s == "" {
		return "?"
	}
	return s
}

func progressBar(pct float64, width int) string {
	filled := int(pct * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return "[" + strings.Repeat("█", filled) + strings.Repeat("-", width-filled) + "]"
}
