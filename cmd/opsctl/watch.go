package main

import (
	"context"
	"fmt"
	"io"

	"ops-dashboard/client"
	"ops-dashboard/models"
	"ops-dashboard/store"
)

// watched is a store that can be fetched, printed and refreshed from a feed.
type watched struct {
	fetch     func(context.Context) error
	subscribe func(context.Context, store.Feed) (<-chan struct{}, error)
	onChange  func(func())
	print     func(io.Writer)
}

func (c *cli) watchedStore(api *client.Client, table string) (*watched, error) {
	opts := []store.Option{store.WithLogger(c.logger), store.WithClock(c.now)}

	switch table {
	case models.TableTasks:
		s := store.NewTaskStore(api.Tasks(), opts...)
		return &watched{s.Fetch, s.Subscribe, s.OnChange, func(io.Writer) { c.printTasks(s.Visible()) }}, nil
	case models.TableEvents:
		s := store.NewEventStore(api.Events(), opts...)
		return &watched{s.Fetch, s.Subscribe, s.OnChange, func(io.Writer) { c.printEvents(s.Items()) }}, nil
	case models.TableProjects:
		s := store.NewProjectStore(api.Projects(), opts...)
		return &watched{s.Fetch, s.Subscribe, s.OnChange, func(w io.Writer) {
			tw := newTable(w, "ID", "STATUS", "PROGRESS", "NAME")
			for _, p := range s.Items() {
				row(tw, p.ID, string(p.Status), fmt.Sprintf("%d%%", p.Progress), truncate(p.Name))
			}
			tw.Flush()
		}}, nil
	case models.TableNotes:
		s := store.NewNoteStore(api.Notes(), nil, opts...)
		return &watched{s.Fetch, s.Subscribe, s.OnChange, func(w io.Writer) {
			tw := newTable(w, "ID", "UPDATED", "TITLE")
			for _, n := range s.Items() {
				row(tw, n.ID, shortTime(n.UpdatedAt), truncate(n.Title))
			}
			tw.Flush()
		}}, nil
	case models.TableLogisticsItems:
		s := store.NewLogisticsStore(api.LogisticsItems(), api.ManifestItems(), api.Sectors(), opts...)
		return &watched{s.Fetch, s.Collection.Subscribe, s.OnChange, func(w io.Writer) {
			tw := newTable(w, "ID", "STATUS", "QTY", "NAME")
			for _, it := range s.Items() {
				row(tw, it.ID, string(it.Status), fmt.Sprint(it.Qty), truncate(it.Name))
			}
			tw.Flush()
		}}, nil
	}
	return nil, fmt.Errorf("cannot watch %q: choose tasks, projects, notes, events or logistics_items", table)
}

// watch prints a table and reprints it after every refetch until interrupted.
func (c *cli) watch(ctx context.Context, args []string) error {
	rest, err := parseFlags(newFlagSet("watch"), args, 1)
	if err != nil {
		return err
	}
	api, err := c.client()
	if err != nil {
		return err
	}
	w, err := c.watchedStore(api, rest[0])
	if err != nil {
		return err
	}

	redraw := isTerminal(c.out)
	show := func() {
		if redraw {
			fmt.Fprint(c.out, "\033[H\033[2J")
		}
		fmt.Fprintf(c.out, "-- %s %s --\n", rest[0], shortTime(c.now()))
		w.print(c.out)
	}

	if err := w.fetch(ctx); err != nil {
		return err
	}
	show()
	w.onChange(show)

	done, err := w.subscribe(ctx, api)
	if err != nil {
		return err
	}
	<-done
	if ctx.Err() != nil {
		return nil
	}
	return fmt.Errorf("change feed for %s closed", rest[0])
}
