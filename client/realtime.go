package client

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"ops-dashboard/models"
)

// Subscribe opens the change stream for a table. The channel closes when ctx
// is done or the server ends the stream.
func (c *Client) Subscribe(ctx context.Context, table string) (<-chan models.Change, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/realtime/"+url.PathEscape(table), nil, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		var env envelope
		body, _ := io.ReadAll(resp.Body)
		_ = json.Unmarshal(body, &env)
		return nil, &APIError{Status: resp.StatusCode, Message: env.Error}
	}

	changes := make(chan models.Change)
	go func() {
		defer close(changes)
		defer resp.Body.Close()

		err := readEvents(resp.Body, func(event, data string) bool {
			if event != "change" {
				return true
			}
			var change models.Change
			if err := json.Unmarshal([]byte(data), &change); err != nil {
				c.logger.Warn("malformed change event", "table", table, "error", err)
				return true
			}
			select {
			case changes <- change:
				return true
			case <-ctx.Done():
				return false
			}
		})
		if err != nil && ctx.Err() == nil {
			c.logger.Warn("change stream ended", "table", table, "error", err)
		}
	}()

	return changes, nil
}

// readEvents parses a server-sent event stream and calls emit for every
// dispatched event until emit returns false or the stream ends.
func readEvents(r io.Reader, emit func(event, data string) bool) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var event string
	var data []string
	for scanner.Scan() {
		line := scanner.Text()

		if line == "" {
			if len(data) > 0 {
				name := event
				if name == "" {
					name = "message"
				}
				if !emit(name, strings.Join(data, "\n")) {
					return nil
				}
			}
			event, data = "", nil
			continue
		}
		if strings.HasPrefix(line, ":") {
			continue
		}

		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")
		switch field {
		case "event":
			event = value
		case "data":
			data = append(data, value)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read event stream: %w", err)
	}
	return nil
}
