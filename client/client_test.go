package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ops-dashboard/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func TestSignInKeepsToken(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req models.CredentialsRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Password != "hunter2hunter2" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid email or password"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"data": map[string]interface{}{
				"token": "sess-1",
				"user":  map[string]string{"id": "u1", "email": req.Email},
			},
		})
	})
	mux.HandleFunc("/api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer sess-1" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Missing authorization"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"data": map[string]string{"id": "u1", "email": "ops@example.com"}})
	})
	mux.HandleFunc("/api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "Signed out"})
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := New(srv.URL)
	ctx := context.Background()

	_, err := c.Me(ctx)
	assert.True(t, IsUnauthorized(err))

	_, err = c.SignIn(ctx, "ops@example.com", "wrong")
	require.Error(t, err)
	assert.Equal(t, "Invalid email or password", err.Error())
	assert.Empty(t, c.Token())

	sess, err := c.SignIn(ctx, "ops@example.com", "hunter2hunter2")
	require.NoError(t, err)
	assert.Equal(t, "sess-1", sess.Token)
	assert.Equal(t, "u1", sess.User.ID)
	assert.Equal(t, "sess-1", c.Token())

	user, err := c.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ops@example.com", user.Email)

	require.NoError(t, c.SignOut(ctx))
	assert.Empty(t, c.Token())
}

func TestTableRequests(t *testing.T) {
	var seen []string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Method+" "+r.URL.RequestURI())

		switch {
		case r.Method == http.MethodGet:
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"data": []map[string]string{{"id": "t1", "title": "Patch relay", "priority": "high"}},
			})
		case r.Method == http.MethodPost:
			var in models.NewTask
			require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
			writeJSON(w, http.StatusCreated, map[string]interface{}{
				"data": map[string]string{"id": "t2", "title": in.Title, "priority": "medium"},
			})
		case r.Method == http.MethodPatch && strings.HasSuffix(r.URL.Path, "/missing"):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Row not found"})
		case r.Method == http.MethodPatch:
			var patch map[string]interface{}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&patch))
			assert.Equal(t, map[string]interface{}{"status": "completed", "tags": nil}, patch)
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"data": map[string]string{"id": "t1", "title": "Patch relay", "status": "completed"},
			})
		case r.Method == http.MethodDelete:
			writeJSON(w, http.StatusOK, map[string]string{"message": "Row deleted"})
		}
	}))
	defer srv.Close()

	tasks := New(srv.URL, WithToken("tok")).Tasks()
	ctx := context.Background()

	rows, err := tasks.Select(ctx, models.Query{ProjectID: "p1"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, models.PriorityHigh, rows[0].Priority)

	created, err := tasks.Insert(ctx, models.NewTask{Title: "Drill"})
	require.NoError(t, err)
	assert.Equal(t, "t2", created.ID)

	status := models.TaskCompleted
	updated, err := tasks.Update(ctx, "t1", models.TaskPatch{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, models.TaskCompleted, updated.Status)

	_, err = tasks.Update(ctx, "missing", models.TaskPatch{Status: &status})
	assert.True(t, IsNotFound(err))

	require.NoError(t, tasks.Delete(ctx, "t1"))

	assert.Equal(t, []string{
		"GET /api/tables/tasks?project_id=p1",
		"POST /api/tables/tasks",
		"PATCH /api/tables/tasks/t1",
		"PATCH /api/tables/tasks/missing",
		"DELETE /api/tables/tasks/t1",
	}, seen)
}

func TestUpdateSendsTagChanges(t *testing.T) {
	tests := []struct {
		name  string
		patch models.NotePatch
		want  []string
	}{
		{"untouched", models.NotePatch{Title: models.Ptr("Relay log")}, nil},
		{"cleared", models.NotePatch{Tags: []string{}}, []string{}},
		{"replaced", models.NotePatch{Tags: []string{"ops"}}, []string{"ops"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				var patch models.NotePatch
				require.NoError(t, json.NewDecoder(r.Body).Decode(&patch))
				assert.Equal(t, tt.want, patch.Tags)
				writeJSON(w, http.StatusOK, map[string]interface{}{
					"data": map[string]interface{}{"id": "n1", "tags": patch.Tags},
				})
			}))
			defer srv.Close()

			_, err := New(srv.URL, WithToken("tok")).Notes().Update(context.Background(), "n1", tt.patch)
			require.NoError(t, err)
		})
	}
}

func TestValidationErrorFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":  "priority must be one of: critical, high, medium, low",
			"fields": []map[string]string{{"field": "priority", "message": "priority must be one of: critical, high, medium, low"}},
		})
	}))
	defer srv.Close()

	_, err := New(srv.URL).Tasks().Insert(context.Background(), models.NewTask{Title: "x", Priority: "urgent"})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	require.Len(t, apiErr.Fields, 1)
	assert.Equal(t, "priority", apiErr.Fields[0].Field)
}

func TestEncodeQuery(t *testing.T) {
	from := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		name     string
		query    models.Query
		expected string
	}{
		{name: "Empty", query: models.Query{}, expected: ""},
		{name: "Inbox", query: models.Query{Inbox: true}, expected: "inbox=true"},
		{name: "Favorites in folder", query: models.Query{FolderID: "f1", Favorites: true}, expected: "favorite=true&folder_id=f1"},
		{name: "Event window", query: models.Query{From: from, To: from.Add(time.Hour)}, expected: "from=2026-01-02T03%3A04%3A05Z&to=2026-01-02T04%3A04%3A05Z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, EncodeQuery(tt.query).Encode())
		})
	}
}

func TestReadEvents(t *testing.T) {
	stream := ": subscribed tasks\n\n" +
		"event: change\ndata: {\"table\":\"tasks\",\"type\":\"INSERT\",\"record_id\":\"t1\"}\n\n" +
		": ping\n\n" +
		"data: line one\ndata: line two\n\n" +
		"event: change\ndata: {\"table\":\"tasks\",\"type\":\"DELETE\",\"record_id\":\"t1\"}\n\n"

	type event struct{ name, data string }
	var got []event
	err := readEvents(strings.NewReader(stream), func(name, data string) bool {
		got = append(got, event{name, data})
		return true
	})
	require.NoError(t, err)

	require.Len(t, got, 3)
	assert.Equal(t, "change", got[0].name)
	assert.Equal(t, event{"message", "line one\nline two"}, got[1])
	assert.Contains(t, got[2].data, "DELETE")

	calls := 0
	require.NoError(t, readEvents(strings.NewReader(stream), func(string, string) bool {
		calls++
		return false
	}))
	assert.Equal(t, 1, calls)
}

func TestSubscribe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/realtime/tasks" {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Unknown table"})
			return
		}
		assert.Equal(t, "text/event-stream", r.Header.Get("Accept"))

		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		fmt.Fprint(w, ": subscribed tasks\n\n")
		for i := 1; i <= 2; i++ {
			fmt.Fprintf(w, "event: change\ndata: {\"table\":\"tasks\",\"type\":\"UPDATE\",\"record_id\":\"t%d\"}\n\n", i)
			flusher.Flush()
		}
	}))
	defer srv.Close()

	c := New(srv.URL, WithToken("tok"))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := c.Subscribe(ctx, "secrets")
	assert.True(t, IsNotFound(err))

	changes, err := c.Subscribe(ctx, models.TableTasks)
	require.NoError(t, err)

	var ids []string
	for change := range changes {
		assert.Equal(t, models.ChangeUpdate, change.Type)
		ids = append(ids, change.RecordID)
	}
	assert.Equal(t, []string{"t1", "t2"}, ids)
}
