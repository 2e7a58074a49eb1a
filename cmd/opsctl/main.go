// Command opsctl drives the ops dashboard backend from a terminal.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"ops-dashboard/client"
	"ops-dashboard/config"
)

var errUsage = errors.New("usage")

type command struct {
	summary string
	run     func(c *cli, ctx context.Context, args []string) error
}

var commands = map[string]command{
	"signup":    {"create an account and sign in", (*cli).signUp},
	"login":     {"sign in and store the session token", (*cli).login},
	"logout":    {"end the session", (*cli).logout},
	"whoami":    {"show the signed-in user", (*cli).whoami},
	"tasks":     {"list|add|done|rm|move|escalated", (*cli).tasks},
	"projects":  {"list|add|rm", (*cli).projects},
	"notes":     {"list|add|edit|rm|folders|mkdir", (*cli).notes},
	"events":    {"list|add|due|rm", (*cli).events},
	"logistics": {"list|add|toggle|rm|sectors|manifest", (*cli).logistics},
	"timer":     {"init|start|pause|reset|status|active|adjust|rm|run|bpm", (*cli).timer},
	"search":    {"search tasks, notes, projects, events and commands", (*cli).search},
	"watch":     {"reprint a table on every change", (*cli).watch},
	"sync":      {"status|retry|connect for the calendar export", (*cli).sync},
}

type cli struct {
	server    string
	tokenFile string
	timerFile string
	out       io.Writer
	in        io.Reader
	logger    *slog.Logger
	now       func() time.Time
}

func defaultPath(name string) string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "opsctl", name)
}

func main() {
	server := flag.String("server", config.GetEnv("OPS_SERVER", client.DefaultServer), "backend base URL")
	tokenFile := flag.String("token-file", config.GetEnv("OPS_TOKEN_FILE", defaultPath("session.json")), "where the session token is kept")
	timerFile := flag.String("timer-file", config.GetEnv("OPS_TIMER_FILE", defaultPath("chronos.json")), "where timer state is kept")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Usage = usage
	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := &cli{
		server:    strings.TrimRight(*server, "/"),
		tokenFile: *tokenFile,
		timerFile: *timerFile,
		out:       os.Stdout,
		in:        os.Stdin,
		logger:    logger,
		now:       time.Now,
	}

	if err := c.run(ctx, flag.Args()); err != nil {
		if errors.Is(err, errUsage) {
			usage()
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "opsctl:", err)
		os.Exit(1)
	}
}

func (c *cli) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, ok := commands[args[0]]
	if !ok {
		return fmt.Errorf("unknown command %q: %w", args[0], errUsage)
	}
	return cmd.run(c, ctx, args[1:])
}

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintln(out, "usage: opsctl [flags] <command> [args]")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "commands:")

	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(out, "  %-10s %s\n", name, commands[name].summary)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "flags:")
	flag.PrintDefaults()
}

// subcommand splits "verb args..." and defaults to def when no verb is given.
func subcommand(args []string, def string) (string, []string) {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return def, args
	}
	return args[0], args[1:]
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// parseFlags parses fs and requires at least min positional arguments.
func parseFlags(fs *flag.FlagSet, args []string, min int) ([]string, error) {
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("%s: %v: %w", fs.Name(), err, errUsage)
	}
	if fs.NArg() < min {
		return nil, fmt.Errorf("%s: expected %d argument(s): %w", fs.Name(), min, errUsage)
	}
	return fs.Args(), nil
}
