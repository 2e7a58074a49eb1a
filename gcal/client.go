package gcal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"ops-dashboard/models"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// eventIDProperty links a Google event back to the local row.
const eventIDProperty = "ops_event_id"

// OAuthConfig builds the OAuth client used to refresh calendar tokens.
func OAuthConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes:       []string{calendar.CalendarEventsScope},
		Endpoint:     google.Endpoint,
	}
}

// Client wraps the Google Calendar API for a single user's calendar
type Client struct {
	service     *calendar.Service
	tokenSource oauth2.TokenSource
	calendarID  string
}

// NewClient creates a Calendar client with the given OAuth token. The token
// is refreshed automatically.
func NewClient(ctx context.Context, cfg *oauth2.Config, token *oauth2.Token, calendarID string) (*Client, error) {
	tokenSource := cfg.TokenSource(ctx, token)
	httpClient := oauth2.NewClient(ctx, tokenSource)

	srv, err := calendar.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, err
	}

	return &Client{
		service:     srv,
		tokenSource: tokenSource,
		calendarID:  calendarID,
	}, nil
}

// GetCurrentToken returns the current (possibly refreshed) OAuth token
func (c *Client) GetCurrentToken() (*oauth2.Token, error) {
	return c.tokenSource.Token()
}

// UpsertEvent creates or patches the Google copy of ev and returns its id.
// Without a known id the calendar is searched for a previous export first.
func (c *Client) UpsertEvent(ctx context.Context, ev models.CalendarEvent, gcalID string) (string, error) {
	body := ToGoogle(ev)

	if gcalID == "" {
		existing, err := c.findByLocalID(ctx, ev.ID)
		if err != nil {
			return "", fmt.Errorf("error searching for event: %w", err)
		}
		if existing != nil {
			gcalID = existing.Id
		}
	}

	if gcalID != "" {
		patched, err := c.service.Events.Patch(c.calendarID, gcalID, body).Context(ctx).Do()
		if err == nil {
			return patched.Id, nil
		}
		if !IsNotFound(err) {
			return "", err
		}
		// Removed on the Google side; export it again.
	}

	created, err := c.service.Events.Insert(c.calendarID, body).Context(ctx).Do()
	if err != nil {
		return "", err
	}
	return created.Id, nil
}

// DeleteEvent deletes an event from the calendar. Events that are already
// gone count as deleted.
func (c *Client) DeleteEvent(ctx context.Context, gcalID string) error {
	err := c.service.Events.Delete(c.calendarID, gcalID).Context(ctx).Do()
	if err != nil && !IsNotFound(err) {
		return err
	}
	return nil
}

// ListUpcoming fetches single events starting at or after from.
func (c *Client) ListUpcoming(ctx context.Context, from time.Time, limit int) ([]RemoteEvent, error) {
	events, err := c.service.Events.List(c.calendarID).
		TimeMin(from.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(int64(limit)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve events from calendar: %w", err)
	}

	remote := make([]RemoteEvent, 0, len(events.Items))
	for _, item := range events.Items {
		if ev, ok := FromGoogle(item); ok {
			remote = append(remote, ev)
		}
	}
	return remote, nil
}

func (c *Client) findByLocalID(ctx context.Context, localID string) (*calendar.Event, error) {
	events, err := c.service.Events.List(c.calendarID).
		PrivateExtendedProperty(fmt.Sprintf("%s=%s", eventIDProperty, localID)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	if len(events.Items) > 0 {
		return events.Items[0], nil
	}
	return nil, nil
}

// IsNotFound reports whether err is a Google API 404 or 410.
func IsNotFound(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusNotFound || apiErr.Code == http.StatusGone
	}
	return false
}

// IsUnauthorized reports whether err means the stored credentials no longer
// work.
func IsUnauthorized(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusUnauthorized
	}
	var retrieveErr *oauth2.RetrieveError
	return errors.As(err, &retrieveErr)
}
