package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"ops-dashboard/chronos"
)

// loadEngine restores the saved timers. A missing file starts empty.
func (c *cli) loadEngine(opts ...chronos.Option) (*chronos.Engine, error) {
	opts = append([]chronos.Option{chronos.WithClock(c.now), chronos.WithLogger(c.logger)}, opts...)
	e := chronos.NewEngine(opts...)
	if err := e.Load(c.timerFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	e.Tick()
	return e, nil
}

func parseMinutes(raw string) (time.Duration, error) {
	if d, err := time.ParseDuration(raw); err == nil {
		return d, nil
	}
	m, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is neither minutes nor a duration", raw)
	}
	return time.Duration(m * float64(time.Minute)), nil
}

func (c *cli) timer(ctx context.Context, args []string) error {
	verb, args := subcommand(args, "status")
	e, err := c.loadEngine()
	if err != nil {
		return err
	}

	switch verb {
	case "status", "ls":
		c.printTimers(e)
		return nil

	case "init":
		flags := newFlagSet("timer init")
		kind := flags.String("kind", string(chronos.KindCustom), "POMODORO|CUSTOM")
		rest, err := parseFlags(flags, args, 2)
		if err != nil {
			return err
		}
		d, err := parseMinutes(rest[1])
		if err != nil {
			return err
		}
		label := rest[0]
		if len(rest) > 2 {
			label = strings.Join(rest[2:], " ")
		}
		if err := e.Initialize(rest[0], d, label, chronos.Kind(strings.ToUpper(*kind))); err != nil {
			return err
		}

	case "start", "pause", "reset", "rm", "active":
		rest, err := parseFlags(newFlagSet("timer "+verb), args, 0)
		if err != nil {
			return err
		}
		id, err := c.timerID(e, rest)
		if err != nil {
			return err
		}
		action := map[string]func(string) error{
			"start":  e.Start,
			"pause":  e.Pause,
			"reset":  e.Reset,
			"rm":     e.Remove,
			"active": e.SetActive,
		}[verb]
		if err := action(id); err != nil {
			return fmt.Errorf("timer %s: %w", id, err)
		}

	case "adjust":
		rest, err := parseFlags(newFlagSet("timer adjust"), args, 1)
		if err != nil {
			return err
		}
		d, err := parseMinutes(rest[0])
		if err != nil {
			return err
		}
		if err := e.AdjustActive(d); err != nil {
			return err
		}

	case "bpm":
		// Not parsed as flags so that a relative change like -5 is accepted.
		rest := args
		if len(rest) == 0 {
			return fmt.Errorf("timer bpm: expected a tempo: %w", errUsage)
		}
		raw := rest[0]
		n, err := strconv.ParseFloat(strings.TrimLeft(raw, "+"), 64)
		if err != nil {
			return fmt.Errorf("bpm %q: %w", raw, err)
		}
		var bpm int
		if strings.HasPrefix(raw, "+") || strings.HasPrefix(raw, "-") {
			bpm = e.AdjustBPM(n)
		} else {
			bpm = e.SetBPM(n)
		}
		if len(rest) > 1 {
			beats, noteValue, ok := strings.Cut(rest[1], "/")
			b, errB := strconv.Atoi(beats)
			v, errV := strconv.Atoi(noteValue)
			if !ok || errB != nil || errV != nil {
				return fmt.Errorf("signature %q must look like 4/4", rest[1])
			}
			if err := e.SetSignature(b, v); err != nil {
				return err
			}
		}
		m := e.Metronome()
		fmt.Fprintf(c.out, "metronome %d bpm %d/%d\n", bpm, m.Signature[0], m.Signature[1])

	case "run":
		rest, err := parseFlags(newFlagSet("timer run"), args, 0)
		if err != nil {
			return err
		}
		id, err := c.timerID(e, rest)
		if err != nil {
			return err
		}
		if err := c.runTimer(ctx, e, id); err != nil {
			return err
		}

	default:
		return fmt.Errorf("timer %s: %w", verb, errUsage)
	}

	if err := e.Save(c.timerFile); err != nil {
		return err
	}
	if verb != "bpm" {
		c.printTimers(e)
	}
	return nil
}

// timerID picks the named timer or falls back to the active one.
func (c *cli) timerID(e *chronos.Engine, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	t, ok := e.Active()
	if !ok {
		return "", chronos.ErrNoActiveTimer
	}
	return t.ID, nil
}

// runTimer starts a timer and counts it down in the foreground. Interrupting
// pauses it so the saved state stays accurate.
func (c *cli) runTimer(ctx context.Context, e *chronos.Engine, id string) error {
	if err := e.Start(id); err != nil {
		return err
	}

	done := make(chan struct{})
	redraw := isTerminal(c.out)
	ticker := time.NewTicker(chronos.TickInterval)
	defer ticker.Stop()

	for {
		for _, t := range e.Tick() {
			if t.ID == id {
				close(done)
			}
		}

		t, _ := e.Get(id)
		line := fmt.Sprintf("%s  %s  %s", t.Label, chronos.FormatRemaining(t.RemainingAt(c.now())), t.Status)
		if redraw {
			fmt.Fprintf(c.out, "\r\033[K%s", line)
		}

		select {
		case <-done:
			if redraw {
				fmt.Fprintln(c.out)
			}
			fmt.Fprintf(c.out, "%s complete\n", t.Label)
			return nil
		case <-ctx.Done():
			if redraw {
				fmt.Fprintln(c.out)
			}
			return e.Pause(id)
		case <-ticker.C:
		}
	}
}

func (c *cli) printTimers(e *chronos.Engine) {
	active, _ := e.Active()
	now := c.now()

	tw := newTable(c.out, "", "ID", "KIND", "STATUS", "REMAINING", "LABEL")
	for _, t := range e.Timers() {
		mark := ""
		if t.ID == active.ID {
			mark = ">"
		}
		row(tw, mark, t.ID, string(t.Kind), string(t.Status), chronos.FormatRemaining(t.RemainingAt(now)), truncate(t.Label))
	}
	tw.Flush()

	m := e.Metronome()
	fmt.Fprintf(c.out, "metronome %d bpm %d/%d\n", m.BPM, m.Signature[0], m.Signature[1])
}
