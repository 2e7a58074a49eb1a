package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"ops-dashboard/app"
	"ops-dashboard/config"
	"ops-dashboard/config/setup"
	"ops-dashboard/database"
	"ops-dashboard/realtime"
	"ops-dashboard/session"
	"ops-dashboard/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type harness struct {
	cli   *cli
	out   *bytes.Buffer
	clock *testClock
}

func newHarness(t *testing.T, server string) *harness {
	t.Helper()
	dir := t.TempDir()
	out := &bytes.Buffer{}
	clock := &testClock{now: time.Now()}
	return &harness{
		cli: &cli{
			server:    server,
			tokenFile: filepath.Join(dir, "session.json"),
			timerFile: filepath.Join(dir, "chronos.json"),
			out:       out,
			in:        strings.NewReader(""),
			logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
			now:       clock.Now,
		},
		out:   out,
		clock: clock,
	}
}

func (h *harness) run(t *testing.T, args ...string) string {
	t.Helper()
	h.out.Reset()
	require.NoError(t, h.cli.run(context.Background(), args), strings.Join(args, " "))
	return h.out.String()
}

// startBackend serves the real routes on a loopback port.
func startBackend(t *testing.T) string {
	t.Helper()

	db, err := database.New(filepath.Join(t.TempDir(), "ops.db"))
	require.NoError(t, err)
	require.NoError(t, db.Migrate())

	cfg := &config.Config{Env: "test", CORSOrigins: "*", SessionTTL: time.Hour}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	repo := database.NewRepository(db)
	hub := realtime.NewHub()
	repo.SetPublisher(hub)
	application := app.New(cfg, repo, hub, nil, session.NewStore(db.DB, cfg.SessionTTL), logger)

	fiberApp := setup.NewFiberApp(cfg, logger)
	setup.RegisterRoutes(fiberApp, application)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go fiberApp.Listener(ln)

	t.Cleanup(func() {
		hub.Close()
		fiberApp.Shutdown()
		db.Close()
	})
	return "http://" + ln.Addr().String()
}

var addedID = regexp.MustCompile(`added (\S+)`)

func added(t *testing.T, out string) string {
	t.Helper()
	m := addedID.FindStringSubmatch(out)
	require.Len(t, m, 2, out)
	return m[1]
}

func TestRunRejectsUnknownCommand(t *testing.T) {
	h := newHarness(t, "http://127.0.0.1:1")

	assert.ErrorIs(t, h.cli.run(context.Background(), nil), errUsage)
	assert.ErrorIs(t, h.cli.run(context.Background(), []string{"launch"}), errUsage)
	assert.ErrorIs(t, h.cli.run(context.Background(), []string{"tasks", "explode"}), errNotLoggedIn)
}

func TestTimerCommands(t *testing.T) {
	h := newHarness(t, "http://127.0.0.1:1")

	out := h.run(t, "timer", "init", "-kind", "pomodoro", "focus", "25", "Deep", "work")
	assert.Contains(t, out, "25:00")
	assert.Contains(t, out, "Deep work")

	h.run(t, "timer", "start")
	h.clock.Advance(90 * time.Second)
	out = h.run(t, "timer", "pause", "focus")
	assert.Contains(t, out, "23:30")
	assert.Contains(t, out, "PAUSED")

	h.clock.Advance(time.Hour)
	out = h.run(t, "timer", "status")
	assert.Contains(t, out, "23:30")

	h.run(t, "timer", "init", "tea", "3m")
	h.run(t, "timer", "start", "tea")
	h.clock.Advance(4 * time.Minute)
	out = h.run(t, "timer")
	assert.Regexp(t, `tea\s+CUSTOM\s+COMPLETE\s+00:00`, out)

	out = h.run(t, "timer", "bpm", "+5", "7/8")
	assert.Contains(t, out, "metronome 125 bpm 7/8")
	out = h.run(t, "timer", "bpm", "-500")
	assert.Contains(t, out, "metronome 30 bpm")

	h.run(t, "timer", "active", "tea")
	out = h.run(t, "timer", "adjust", "10")
	assert.Regexp(t, `>\s+tea\s+CUSTOM\s+IDLE\s+10:00`, out)

	err := h.cli.run(context.Background(), []string{"timer", "start", "missing"})
	assert.Error(t, err)
}

func TestParseWhen(t *testing.T) {
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.Local)
	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{in: "", want: time.Time{}},
		{in: "2h", want: now.Add(2 * time.Hour)},
		{in: "2025-03-02", want: time.Date(2025, 3, 2, 0, 0, 0, 0, time.Local)},
		{in: "2025-03-02 14:30", want: time.Date(2025, 3, 2, 14, 30, 0, 0, time.Local)},
		{in: "2025-03-02T14:30:00Z", want: time.Date(2025, 3, 2, 14, 30, 0, 0, time.UTC)},
		{in: "tomorrow", wantErr: true},
	}
	for _, tt := range tests {
		got, err := parseWhen(tt.in, now)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.True(t, tt.want.Equal(got), "%s: got %s", tt.in, got)
	}
}

func TestParseMinutes(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"25", 25 * time.Minute},
		{"1.5", 90 * time.Second},
		{"90s", 90 * time.Second},
	}
	for _, tt := range tests {
		got, err := parseMinutes(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.in)
	}
	_, err := parseMinutes("soon")
	assert.Error(t, err)
}

func TestSessionIsBoundToServer(t *testing.T) {
	h := newHarness(t, "http://127.0.0.1:1")
	require.NoError(t, utils.WriteJSON(h.cli.tokenFile, savedSession{Server: "http://elsewhere", Token: "t"}, 0o600))

	_, err := h.cli.client()
	assert.ErrorIs(t, err, errNotLoggedIn)
}

func TestEndToEnd(t *testing.T) {
	h := newHarness(t, startBackend(t))

	out := h.run(t, "signup", "-email", "ops@example.com", "-password", "hunter2hunter2")
	assert.Contains(t, out, "signed in as ops@example.com")
	assert.Contains(t, h.run(t, "whoami"), "ops@example.com")

	taskID := added(t, h.run(t, "tasks", "add", "-priority", "critical", "Deploy", "relay"))
	added(t, h.run(t, "tasks", "add", "-priority", "low", "Water", "plants"))

	out = h.run(t, "tasks")
	require.Contains(t, out, "Deploy relay")
	assert.Less(t, strings.Index(out, "Deploy relay"), strings.Index(out, "Water plants"))

	h.run(t, "tasks", "done", taskID)
	assert.NotContains(t, h.run(t, "tasks"), "Deploy relay")
	assert.Regexp(t, `critical\s+completed\s+Deploy relay`, h.run(t, "tasks", "list", "-all"))

	h.run(t, "tasks", "move", taskID, "in-progress")
	assert.Regexp(t, `critical\s+in-progress\s+Deploy relay`, h.run(t, "tasks"))

	out = h.run(t, "search", "/t", "deploy")
	assert.Contains(t, out, taskID)

	itemID := added(t, h.run(t, "logistics", "add", "-qty", "2", "Milk"))
	assert.Contains(t, h.run(t, "logistics", "toggle", itemID), "ACQUIRED")

	h.cli.in = strings.NewReader("first draft words")
	noteID := added(t, h.run(t, "notes", "add", "-content", "-", "Log"))
	h.cli.in = strings.NewReader("one two three four")
	assert.Contains(t, h.run(t, "notes", "edit", noteID), "4/1500 words")
	assert.Contains(t, h.run(t, "notes", "show", noteID), "one two three four")

	h.run(t, "logout")
	err := h.cli.run(context.Background(), []string{"tasks"})
	assert.ErrorIs(t, err, errNotLoggedIn)
}
