package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ops-dashboard/search"
	"ops-dashboard/store"
)

func (c *cli) search(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("search: expected a query: %w", errUsage)
	}
	query := strings.Join(args, " ")

	var sources []search.Source
	if !strings.HasPrefix(strings.TrimSpace(query), ">") {
		api, err := c.client()
		if err != nil {
			return err
		}
		opts := []store.Option{store.WithLogger(c.logger)}
		tasks := store.NewTaskStore(api.Tasks(), opts...)
		notes := store.NewNoteStore(api.Notes(), nil, opts...)
		projects := store.NewProjectStore(api.Projects(), opts...)
		events := store.NewEventStore(api.Events(), opts...)

		if err := errors.Join(tasks.Fetch(ctx), notes.Fetch(ctx), projects.Fetch(ctx), events.Fetch(ctx)); err != nil {
			return err
		}
		sources = append(sources, search.Tasks(tasks), search.Notes(notes), search.Projects(projects), search.Events(events))
	}

	results := search.NewIndex(sources...).Search(query)
	if len(results) == 0 {
		fmt.Fprintln(c.out, "no results")
		return nil
	}

	tw := newTable(c.out, "SCORE", "TYPE", "ID", "TITLE", "")
	for _, r := range results {
		row(tw, fmt.Sprint(r.Score), string(r.Kind), r.ID, truncate(r.Title), orDash(r.Action))
	}
	return tw.Flush()
}
