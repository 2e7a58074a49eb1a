package main

import (
	"context"
	"fmt"

	"ops-dashboard/models"
)

func (c *cli) sync(ctx context.Context, args []string) error {
	verb, args := subcommand(args, "status")
	api, err := c.client()
	if err != nil {
		return err
	}

	switch verb {
	case "status":
		st, err := api.SyncStatus(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "enabled %t  connected %t  calendar %s\n", st.Enabled, st.Connected, orDash(st.CalendarID))
		fmt.Fprintf(c.out, "pending %d  failed %d\n", st.PendingCount, st.FailedCount)
		if len(st.FailedEvents) > 0 {
			tw := newTable(c.out, "ID", "RETRIES", "ERROR", "TITLE")
			for _, e := range st.FailedEvents {
				row(tw, e.ID, fmt.Sprint(e.SyncRetryCount), truncate(e.SyncError), truncate(e.Title))
			}
			return tw.Flush()
		}
		return nil

	case "retry":
		rest, err := parseFlags(newFlagSet("sync retry"), args, 1)
		if err != nil {
			return err
		}
		for _, id := range rest {
			if err := api.RetrySync(ctx, id); err != nil {
				return fmt.Errorf("retry %s: %w", id, err)
			}
		}
		fmt.Fprintf(c.out, "queued %d event(s)\n", len(rest))
		return nil

	case "connect":
		flags := newFlagSet("sync connect")
		calendar := flags.String("calendar", "primary", "Google Calendar id")
		access := flags.String("access-token", "", "OAuth access token")
		refresh := flags.String("refresh-token", "", "OAuth refresh token")
		importEvents := flags.Bool("import", false, "import existing calendar events")
		if _, err := parseFlags(flags, args, 0); err != nil {
			return err
		}
		st, err := api.ConnectCalendar(ctx, models.ConnectCalendarRequest{
			CalendarID:   *calendar,
			AccessToken:  *access,
			RefreshToken: *refresh,
			Import:       *importEvents,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "connected %s, %d event(s) pending\n", st.CalendarID, st.PendingCount)
		return nil
	}
	return fmt.Errorf("sync %s: %w", verb, errUsage)
}
