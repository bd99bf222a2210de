// Gilstream - FFXIV Market Board Sync and Price Analytics
// Copyright 2026 Morgan W. (mogsworth)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mogsworth/gilstream

package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/mogsworth/gilstream/internal/sync"
)

// Flag defaults for the batch commands.
const (
	defaultProbeCount  = 100
	defaultTopLimit    = 10
	defaultReportDays  = 7
	snapshotDateFormat = "2006-01-02"
)

// parseFlags wraps flag parse failures in errUsage so they classify as
// validation errors instead of the command's storage fallback.
func parseFlags(fs *flag.FlagSet, args []string) error {
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	return nil
}

func requireWorld(name string) error {
	if name == "" {
		return fmt.Errorf("%w: -world is required", errUsage)
	}
	return nil
}

// cmdSync runs one batch pass over every tracked world. The one-shot path
// uses the plain client: the retry budget already covers blips, and there
// is no long-lived process for a breaker to protect.
func (a *app) cmdSync(ctx context.Context) error {
	engine := sync.NewEngine(a.db, a.client)
	summary, err := engine.SyncAll(ctx)
	if err != nil {
		return err
	}
	fmt.Println(summary.String())
	return nil
}

func (a *app) cmdInitTracking(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("init-tracking", flag.ContinueOnError)
	world := fs.String("world", "", "world name")
	count := fs.Int("count", defaultProbeCount, "recently updated items to probe")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := requireWorld(*world); err != nil {
		return err
	}
	if *count < 1 || *count > a.cfg.Universalis.MaxRecentEntries {
		return fmt.Errorf("%w: -count must be between 1 and %d", errUsage, a.cfg.Universalis.MaxRecentEntries)
	}

	report, err := a.market.InitializeTracking(ctx, *world, *count)
	if err != nil {
		return err
	}

	fmt.Printf("world %s  probed %d  tracked %d  failures %d\n",
		report.WorldName, report.Probed, report.Tracked, report.Failures)
	if len(report.TopItems) > 0 {
		fmt.Println("top items by sale velocity:")
		for _, item := range report.TopItems {
			fmt.Printf("  item %-8d velocity %8.1f  avg price %10.0f\n",
				item.ItemID, item.SaleVelocity, item.AveragePrice)
		}
	}
	return nil
}

func (a *app) cmdUpdate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("update", flag.ContinueOnError)
	world := fs.String("world", "", "world name")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := requireWorld(*world); err != nil {
		return err
	}

	report, err := a.market.UpdateTrackedItems(ctx, *world)
	if err != nil {
		return err
	}
	fmt.Printf("world %s  items %d  updated %d  failures %d  sales recorded %d\n",
		report.WorldName, report.Items, report.Updated, report.Failures, report.SalesRecorded)
	return nil
}

func (a *app) cmdTop(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("top", flag.ContinueOnError)
	world := fs.String("world", "", "world name")
	limit := fs.Int("limit", defaultTopLimit, "rows to show")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := requireWorld(*world); err != nil {
		return err
	}
	if *limit < 1 {
		return fmt.Errorf("%w: -limit must be positive", errUsage)
	}

	items, err := a.market.TopItems(ctx, *world, *limit)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Println("no snapshots recorded yet; run update first")
		return nil
	}

	fmt.Printf("%-8s  %-30s  %10s  %10s  %10s  %10s\n",
		"ITEM", "NAME", "NQ VEL", "HQ VEL", "NQ AVG", "HQ AVG")
	for _, item := range items {
		name := item.Name
		if name == "" {
			name = "(names not synced)"
		}
		fmt.Printf("%-8d  %-30.30s  %10s  %10s  %10s  %10s\n",
			item.ItemID, name,
			fmtFloat(item.NQSaleVelocity, 1), fmtFloat(item.HQSaleVelocity, 1),
			fmtFloat(item.NQAvgPrice, 0), fmtFloat(item.HQAvgPrice, 0))
	}
	return nil
}

func (a *app) cmdReport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	world := fs.String("world", "", "world name")
	item := fs.Int("item", 0, "item id")
	days := fs.Int("days", defaultReportDays, "history window in days")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := requireWorld(*world); err != nil {
		return err
	}
	if *item < 1 {
		return fmt.Errorf("%w: -item is required", errUsage)
	}
	if *days < 1 {
		return fmt.Errorf("%w: -days must be positive", errUsage)
	}

	report, err := a.market.ItemReport(ctx, *world, *item, *days)
	if err != nil {
		return err
	}

	name := report.ItemName
	if name == "" {
		name = fmt.Sprintf("item %d", report.ItemID)
	}
	fmt.Printf("%s on %s, last %d days  (last sale %s)\n",
		name, report.WorldName, report.Days, report.LastSaleAgo)

	if report.Trends != nil {
		fmt.Printf("trend: price %s  velocity %s\n",
			fmtPct(report.Trends.PriceChangePct), fmtPct(report.Trends.VelocityChangePct))
	}
	if len(report.Snapshots) == 0 {
		fmt.Println("no snapshots in window")
		return nil
	}

	fmt.Printf("%-12s  %10s  %10s  %10s  %10s\n",
		"DATE", "NQ AVG", "HQ AVG", "NQ VEL", "HQ VEL")
	for _, snap := range report.Snapshots {
		fmt.Printf("%-12s  %10s  %10s  %10s  %10s\n",
			snap.SnapshotDate.Format(snapshotDateFormat),
			fmtFloat(snap.NQAvgPrice, 0), fmtFloat(snap.HQAvgPrice, 0),
			fmtFloat(snap.NQSaleVelocity, 1), fmtFloat(snap.HQSaleVelocity, 1))
	}
	return nil
}

func (a *app) cmdListTracked(ctx context.Context) error {
	worlds, err := a.market.ListTracked(ctx)
	if err != nil {
		return err
	}
	if len(worlds) == 0 {
		fmt.Println("no tracked worlds; use track-world to add one")
		return nil
	}
	for _, world := range worlds {
		fmt.Printf("%-20s  id %-5d  items %-5d  since %s\n",
			world.WorldName, world.WorldID, world.ItemCount,
			world.AddedAt.Format(snapshotDateFormat))
	}
	return nil
}

func (a *app) cmdTrackWorld(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("track-world", flag.ContinueOnError)
	world := fs.String("world", "", "world name")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := requireWorld(*world); err != nil {
		return err
	}

	info, err := a.market.TrackWorld(ctx, *world)
	if err != nil {
		return err
	}
	fmt.Printf("tracking %s (id %d, %s / %s)\n", info.Name, info.ID, info.DataCenter, info.Region)
	return nil
}

func (a *app) cmdUntrackWorld(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("untrack-world", flag.ContinueOnError)
	world := fs.String("world", "", "world name")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := requireWorld(*world); err != nil {
		return err
	}

	removed, err := a.market.UntrackWorld(ctx, *world)
	if err != nil {
		return err
	}
	if removed {
		fmt.Printf("untracked %s\n", *world)
	} else {
		fmt.Printf("%s was not tracked\n", *world)
	}
	return nil
}

func (a *app) cmdWorlds(ctx context.Context) error {
	worlds, err := a.market.RefreshWorlds(ctx)
	if err != nil {
		return err
	}
	for _, world := range worlds {
		fmt.Printf("%-20s  id %-5d  %s / %s\n", world.Name, world.ID, world.DataCenter, world.Region)
	}
	return nil
}

func (a *app) cmdDataCenters(ctx context.Context) error {
	dcs, err := a.market.DataCenters(ctx)
	if err != nil {
		return err
	}
	for _, dc := range dcs {
		fmt.Printf("%-16s  %-16s  %d worlds\n", dc.Name, dc.Region, len(dc.Worlds))
	}
	return nil
}

func (a *app) cmdSyncItems(ctx context.Context) error {
	count, err := a.market.SyncItemNames(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("synced %d item names\n", count)
	return nil
}

func (a *app) cmdSyncMarketable(ctx context.Context) error {
	count, err := a.market.SyncMarketable(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("synced %d marketable items\n", count)
	return nil
}

// fmtFloat renders an optional metric, "-" when absent.
func fmtFloat(v *float64, decimals int) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.*f", decimals, *v)
}

// fmtPct renders an optional percent change with its sign, "-" when one of
// the window endpoints had no data.
func fmtPct(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%+.1f%%", *v)
}
