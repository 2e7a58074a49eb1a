package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ops-dashboard/models"
	"ops-dashboard/store"
)

func (c *cli) taskStore() (*store.TaskStore, error) {
	api, err := c.client()
	if err != nil {
		return nil, err
	}
	return store.NewTaskStore(api.Tasks(), store.WithLogger(c.logger), store.WithClock(c.now)), nil
}

func (c *cli) tasks(ctx context.Context, args []string) error {
	verb, args := subcommand(args, "list")
	s, err := c.taskStore()
	if err != nil {
		return err
	}

	switch verb {
	case "list", "ls":
		flags := newFlagSet("tasks list")
		project := flags.String("project", "", "only tasks of this project")
		inbox := flags.Bool("inbox", false, "only tasks without a project")
		all := flags.Bool("all", false, "include hidden tasks")
		if _, err := parseFlags(flags, args, 0); err != nil {
			return err
		}
		switch {
		case *project != "":
			err = s.FetchProject(ctx, *project)
		case *inbox:
			err = s.FetchInbox(ctx)
		default:
			err = s.Fetch(ctx)
		}
		if err != nil {
			return err
		}
		rows := s.Visible()
		if *all {
			rows = s.Items()
		}
		c.printTasks(rows)
		return nil

	case "escalated":
		if err := s.Fetch(ctx); err != nil {
			return err
		}
		c.printTasks(s.EscalatedNow())
		return nil

	case "add":
		flags := newFlagSet("tasks add")
		priority := flags.String("priority", string(models.PriorityMedium), "critical|high|medium|low")
		project := flags.String("project", "", "project id")
		due := flags.String("due", "", "due date (YYYY-MM-DD, RFC 3339 or a duration)")
		tags := flags.String("tags", "", "comma separated tags")
		rest, err := parseFlags(flags, args, 1)
		if err != nil {
			return err
		}
		draft := models.NewTask{
			Title:     strings.Join(rest, " "),
			Priority:  models.Priority(*priority),
			ProjectID: *project,
			Tags:      splitList(*tags),
		}
		if *due != "" {
			when, err := parseWhen(*due, c.now())
			if err != nil {
				return err
			}
			draft.DueDate = &when
		}
		row, err := s.Add(ctx, draft)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "added %s\n", row.ID)
		return nil

	case "done":
		flags := newFlagSet("tasks done")
		delay := flags.Duration("delay", 0, fmt.Sprintf("hold the task before completing it (the dashboard uses %s)", store.DefaultCompleteDelay))
		rest, err := parseFlags(flags, args, 1)
		if err != nil {
			return err
		}
		if err := s.Fetch(ctx); err != nil {
			return err
		}
		for _, id := range rest {
			if err := s.CompleteWithDelay(ctx, id, *delay); err != nil {
				return fmt.Errorf("complete %s: %w", id, err)
			}
			fmt.Fprintf(c.out, "completed %s\n", id)
		}
		return nil

	case "move":
		rest, err := parseFlags(newFlagSet("tasks move"), args, 2)
		if err != nil {
			return err
		}
		status := models.TaskStatus(rest[1])
		if !status.Valid() {
			return fmt.Errorf("status must be one of todo, in-progress, completed")
		}
		patch := models.TaskPatch{Status: &status}
		if status != models.TaskCompleted {
			patch.IsVisible = models.Ptr(true)
		}
		if err := s.Fetch(ctx); err != nil {
			return err
		}
		if err := s.Update(ctx, rest[0], patch); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "moved %s to %s\n", rest[0], status)
		return nil

	case "rm":
		rest, err := parseFlags(newFlagSet("tasks rm"), args, 1)
		if err != nil {
			return err
		}
		for _, id := range rest {
			if err := s.Delete(ctx, id); err != nil {
				return err
			}
		}
		fmt.Fprintf(c.out, "removed %d task(s)\n", len(rest))
		return nil
	}
	return fmt.Errorf("tasks %s: %w", verb, errUsage)
}

func (c *cli) printTasks(tasks []models.Task) {
	tw := newTable(c.out, "ID", "PRIORITY", "STATUS", "TITLE", "DUE")
	for _, t := range tasks {
		due := "-"
		if t.DueDate != nil {
			due = t.DueDate.Local().Format("2006-01-02")
		}
		row(tw, t.ID, string(t.Priority), string(t.Status), truncate(t.Title), due)
	}
	tw.Flush()
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (c *cli) projects(ctx context.Context, args []string) error {
	verb, args := subcommand(args, "list")
	api, err := c.client()
	if err != nil {
		return err
	}
	s := store.NewProjectStore(api.Projects(), store.WithLogger(c.logger))

	switch verb {
	case "list", "ls":
		if err := s.Fetch(ctx); err != nil {
			return err
		}
		tw := newTable(c.out, "ID", "CODE", "STATUS", "PROGRESS", "NAME")
		for _, p := range s.Items() {
			row(tw, p.ID, orDash(p.TechnicalID), string(p.Status), fmt.Sprintf("%d%%", p.Progress), truncate(p.Name))
		}
		return tw.Flush()

	case "add":
		flags := newFlagSet("projects add")
		code := flags.String("code", "", "technical id, e.g. OPS-7")
		desc := flags.String("desc", "", "description")
		rest, err := parseFlags(flags, args, 1)
		if err != nil {
			return err
		}
		p, err := s.Add(ctx, models.NewProject{Name: strings.Join(rest, " "), TechnicalID: *code, Description: *desc})
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "added %s\n", p.ID)
		return nil

	case "rm":
		rest, err := parseFlags(newFlagSet("projects rm"), args, 1)
		if err != nil {
			return err
		}
		for _, id := range rest {
			if err := s.Delete(ctx, id); err != nil {
				return err
			}
		}
		fmt.Fprintf(c.out, "removed %d project(s)\n", len(rest))
		return nil
	}
	return fmt.Errorf("projects %s: %w", verb, errUsage)
}

func (c *cli) events(ctx context.Context, args []string) error {
	verb, args := subcommand(args, "list")
	api, err := c.client()
	if err != nil {
		return err
	}
	s := store.NewEventStore(api.Events(), store.WithLogger(c.logger))

	switch verb {
	case "list", "ls":
		flags := newFlagSet("events list")
		from := flags.String("from", "", "start of the range")
		to := flags.String("to", "", "end of the range")
		if _, err := parseFlags(flags, args, 0); err != nil {
			return err
		}
		fromT, err := parseWhen(*from, c.now())
		if err != nil {
			return err
		}
		toT, err := parseWhen(*to, c.now())
		if err != nil {
			return err
		}
		if err := s.FetchRange(ctx, fromT, toT); err != nil {
			return err
		}
		c.printEvents(s.Items())
		return nil

	case "due":
		flags := newFlagSet("events due")
		lead := flags.Duration("lead", 15*time.Minute, "how far ahead to look")
		mark := flags.Bool("mark", false, "mark the returned alerts as fired")
		if _, err := parseFlags(flags, args, 0); err != nil {
			return err
		}
		now := c.now()
		if err := s.FetchRange(ctx, now, now.Add(*lead+time.Second)); err != nil {
			return err
		}
		due := s.DueAlerts(now, *lead)
		c.printEvents(due)
		if *mark {
			for _, e := range due {
				if err := s.MarkAlertFired(ctx, e.ID); err != nil {
					return err
				}
			}
		}
		return nil

	case "add":
		flags := newFlagSet("events add")
		start := flags.String("start", "", "start time")
		dur := flags.Duration("for", time.Hour, "length of the event")
		kind := flags.String("type", string(models.EventCore), "CORE|SYSTEM|RECON|LOGS")
		priority := flags.String("priority", string(models.EventMedium), "HIGH|MEDIUM|LOW")
		rest, err := parseFlags(flags, args, 1)
		if err != nil {
			return err
		}
		startT, err := parseWhen(*start, c.now())
		if err != nil {
			return err
		}
		if startT.IsZero() {
			return fmt.Errorf("events add: -start is required: %w", errUsage)
		}
		e, err := s.Add(ctx, models.NewCalendarEvent{
			Title:    strings.Join(rest, " "),
			StartAt:  startT,
			EndAt:    startT.Add(*dur),
			Type:     models.EventType(*kind),
			Priority: models.EventPriority(*priority),
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "added %s\n", e.ID)
		return nil

	case "rm":
		rest, err := parseFlags(newFlagSet("events rm"), args, 1)
		if err != nil {
			return err
		}
		for _, id := range rest {
			if err := s.Delete(ctx, id); err != nil {
				return err
			}
		}
		fmt.Fprintf(c.out, "removed %d event(s)\n", len(rest))
		return nil
	}
	return fmt.Errorf("events %s: %w", verb, errUsage)
}

func (c *cli) printEvents(events []models.CalendarEvent) {
	tw := newTable(c.out, "ID", "START", "END", "TYPE", "STATUS", "TITLE")
	for _, e := range events {
		row(tw, e.ID, shortTime(e.StartAt), shortTime(e.EndAt), string(e.Type), string(e.Status), truncate(e.Title))
	}
	tw.Flush()
}
