package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"ops-dashboard/models"
	"ops-dashboard/store"
)

func (c *cli) logistics(ctx context.Context, args []string) error {
	verb, args := subcommand(args, "list")
	api, err := c.client()
	if err != nil {
		return err
	}
	s := store.NewLogisticsStore(api.LogisticsItems(), api.ManifestItems(), api.Sectors(), store.WithLogger(c.logger))
	if err := s.FetchAll(ctx); err != nil {
		return err
	}

	switch verb {
	case "list", "ls":
		names := make(map[string]string)
		for _, sec := range s.Sectors() {
			names[sec.ID] = sec.Name
		}
		tw := newTable(c.out, "ID", "STATUS", "QTY", "SECTOR", "NAME")
		for _, it := range s.Items() {
			row(tw, it.ID, string(it.Status), strconv.Itoa(it.Qty), orDash(names[it.SectorID]), truncate(it.Name))
		}
		return tw.Flush()

	case "sectors":
		tw := newTable(c.out, "ID", "PRIORITY", "NAME", "ITEMS")
		for _, sec := range s.Sectors() {
			row(tw, sec.ID, string(sec.Priority), sec.Name, strconv.Itoa(len(s.InSector(sec.ID))))
		}
		return tw.Flush()

	case "add":
		flags := newFlagSet("logistics add")
		sector := flags.String("sector", "", "sector id")
		qty := flags.Int("qty", 1, "quantity")
		kind := flags.String("kind", string(models.ItemSupply), "SUPPLY|TRAVEL")
		rest, err := parseFlags(flags, args, 1)
		if err != nil {
			return err
		}
		if *sector == "" {
			if sectors := s.Sectors(); len(sectors) > 0 {
				*sector = sectors[0].ID
			}
		}
		it, err := s.Add(ctx, models.NewLogisticsItem{
			Name:     strings.Join(rest, " "),
			Qty:      *qty,
			SectorID: *sector,
			Kind:     models.ItemKind(*kind),
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "added %s\n", it.ID)
		return nil

	case "toggle":
		rest, err := parseFlags(newFlagSet("logistics toggle"), args, 1)
		if err != nil {
			return err
		}
		for _, id := range rest {
			if err := s.ToggleStatus(ctx, id); err != nil {
				return fmt.Errorf("toggle %s: %w", id, err)
			}
			it, _ := s.Get(id)
			fmt.Fprintf(c.out, "%s is %s\n", id, it.Status)
		}
		return nil

	case "rm":
		rest, err := parseFlags(newFlagSet("logistics rm"), args, 1)
		if err != nil {
			return err
		}
		for _, id := range rest {
			if err := s.DeManifest(ctx, id); err != nil {
				return err
			}
		}
		fmt.Fprintf(c.out, "removed %d item(s)\n", len(rest))
		return nil

	case "manifest":
		return c.manifest(ctx, s, args)
	}
	return fmt.Errorf("logistics %s: %w", verb, errUsage)
}

func (c *cli) manifest(ctx context.Context, s *store.LogisticsStore, args []string) error {
	verb, args := subcommand(args, "list")

	switch verb {
	case "list", "ls":
		tw := newTable(c.out, "ID", "PACKED", "WEIGHT", "NAME")
		for _, m := range s.Manifest.Items() {
			packed := "yes"
			if m.IsDeManifested {
				packed = "no"
			}
			row(tw, m.ID, packed, fmt.Sprintf("%.2f kg", m.WeightKg), truncate(m.Name))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "total %.2f kg\n", s.ManifestWeight())
		return nil

	case "add":
		flags := newFlagSet("manifest add")
		weight := flags.Float64("kg", 0, "weight in kilograms")
		rest, err := parseFlags(flags, args, 1)
		if err != nil {
			return err
		}
		m, err := s.AddManifestItem(ctx, strings.Join(rest, " "), *weight)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "added %s\n", m.ID)
		return nil

	case "toggle":
		rest, err := parseFlags(newFlagSet("manifest toggle"), args, 1)
		if err != nil {
			return err
		}
		for _, id := range rest {
			if err := s.ToggleManifest(ctx, id); err != nil {
				return fmt.Errorf("toggle %s: %w", id, err)
			}
		}
		return nil

	case "reset":
		if err := s.ResetManifest(ctx); err != nil {
			return err
		}
		fmt.Fprintln(c.out, "manifest reset")
		return nil
	}
	return fmt.Errorf("logistics manifest %s: %w", verb, errUsage)
}
