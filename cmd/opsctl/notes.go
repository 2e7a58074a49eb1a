package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"ops-dashboard/models"
	"ops-dashboard/store"
)

func (c *cli) notes(ctx context.Context, args []string) error {
	verb, args := subcommand(args, "list")
	api, err := c.client()
	if err != nil {
		return err
	}
	s := store.NewNoteStore(api.Notes(), api.Folders(), store.WithLogger(c.logger), store.WithClock(c.now))

	switch verb {
	case "list", "ls":
		flags := newFlagSet("notes list")
		folder := flags.String("folder", "", "only notes in this folder")
		favorites := flags.Bool("favorites", false, "only favorite notes")
		if _, err := parseFlags(flags, args, 0); err != nil {
			return err
		}
		s.SetQuery(models.Query{FolderID: *folder, Favorites: *favorites})
		if err := s.Fetch(ctx); err != nil {
			return err
		}
		tw := newTable(c.out, "ID", "FAV", "FOLDER", "UPDATED", "TITLE")
		for _, n := range s.Items() {
			fav := ""
			if n.IsFavorite {
				fav = "*"
			}
			row(tw, n.ID, fav, orDash(n.FolderID), shortTime(n.UpdatedAt), truncate(n.Title))
		}
		return tw.Flush()

	case "show":
		rest, err := parseFlags(newFlagSet("notes show"), args, 1)
		if err != nil {
			return err
		}
		if err := s.Fetch(ctx); err != nil {
			return err
		}
		n, ok := s.Get(rest[0])
		if !ok {
			return fmt.Errorf("note %s: %w", rest[0], store.ErrNotFound)
		}
		fmt.Fprintf(c.out, "# %s\n\n%s\n", n.Title, n.Content)
		return nil

	case "add":
		flags := newFlagSet("notes add")
		folder := flags.String("folder", "", "folder id")
		favorite := flags.Bool("fav", false, "mark as favorite")
		content := flags.String("content", "", "note body, - reads stdin")
		rest, err := parseFlags(flags, args, 1)
		if err != nil {
			return err
		}
		body, err := c.readContent(*content)
		if err != nil {
			return err
		}
		n, err := s.Add(ctx, models.NewNote{
			Title:      strings.Join(rest, " "),
			Content:    body,
			FolderID:   *folder,
			IsFavorite: *favorite,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "added %s\n", n.ID)
		return nil

	case "edit":
		flags := newFlagSet("notes edit")
		content := flags.String("content", "-", "new body, - reads stdin")
		rest, err := parseFlags(flags, args, 1)
		if err != nil {
			return err
		}
		if err := s.Fetch(ctx); err != nil {
			return err
		}
		if err := s.SetActive(rest[0]); err != nil {
			return fmt.Errorf("note %s: %w", rest[0], err)
		}
		body, err := c.readContent(*content)
		if err != nil {
			return err
		}
		s.UpdateBuffer(body)
		if err := s.SyncBuffer(ctx); err != nil {
			return err
		}
		session := s.Session()
		fmt.Fprintf(c.out, "saved %s: %d/%d words, %d chars\n",
			rest[0], session.CurrentWords, session.TargetWords, session.CurrentChars)
		return nil

	case "rm":
		rest, err := parseFlags(newFlagSet("notes rm"), args, 1)
		if err != nil {
			return err
		}
		for _, id := range rest {
			if err := s.Delete(ctx, id); err != nil {
				return err
			}
		}
		fmt.Fprintf(c.out, "removed %d note(s)\n", len(rest))
		return nil

	case "folders":
		if err := s.FetchFolders(ctx); err != nil {
			return err
		}
		tw := newTable(c.out, "ID", "COLOR", "NAME")
		for _, f := range s.Folders() {
			row(tw, f.ID, orDash(f.Color), f.Name)
		}
		return tw.Flush()

	case "mkdir":
		flags := newFlagSet("notes mkdir")
		color := flags.String("color", "", "hex color, e.g. #ff2a6d")
		rest, err := parseFlags(flags, args, 1)
		if err != nil {
			return err
		}
		f, err := api.Folders().Insert(ctx, models.NewFolder{Name: strings.Join(rest, " "), Color: *color})
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "added folder %s\n", f.ID)
		return nil
	}
	return fmt.Errorf("notes %s: %w", verb, errUsage)
}

func (c *cli) readContent(flagValue string) (string, error) {
	if flagValue != "-" {
		return flagValue, nil
	}
	b, err := io.ReadAll(c.in)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(b), nil
}
