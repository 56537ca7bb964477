package main

import (
	"context"
	"fmt"
	"io"
	"os"

	appLogger "github.com/4Noyis/actuator-dashboard/internal/logger"
	"github.com/4Noyis/actuator-dashboard/internal/server/actuator"
	"github.com/4Noyis/actuator-dashboard/internal/server/config"
	"github.com/4Noyis/actuator-dashboard/internal/server/dashboard"
	"github.com/4Noyis/actuator-dashboard/internal/server/models"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
)

// One-shot terminal view of the dashboard: load every dataset once, print a
// summary and exit non-zero if any fetch failed.

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	appLogger.SetDebug(cfg.EnableDebugLog)
	if !cfg.EnableDebugLog {
		// fetch failures are printed below
		appLogger.SetOutput(io.Discard)
	}

	client := actuator.NewClient(cfg.Actuator.BaseURL, cfg.Actuator.Timeout)
	presenter := dashboard.New(context.Background(), client, dashboard.Options{PageSize: cfg.Dashboard.PageSize})
	presenter.LoadAll()
	presenter.Wait()
	snap := presenter.Snapshot()
	alerts := presenter.DrainAlerts()
	presenter.Close()

	printSummary(os.Stdout, client.BaseURL(), snap)

	if len(alerts) > 0 {
		red := color.New(color.FgRed, color.Bold)
		for _, a := range alerts {
			red.Fprintf(os.Stderr, "%s: %s\n", a.Dataset, a.Message)
		}
		os.Exit(1)
	}
}

func printSummary(w io.Writer, source string, snap models.Snapshot) {
	bold := color.New(color.Bold)
	faint := color.New(color.Faint)

	bold.Fprintf(w, "Actuator dashboard for %s\n", source)

	updated := "never"
	if snap.UpdatedAt != nil {
		updated = humanize.Time(*snap.UpdatedAt)
	}
	fmt.Fprintf(w, "Traces: %s ", humanize.Comma(int64(snap.Buckets.Len())))
	faint.Fprintf(w, "(updated %s)\n", updated)

	rows := []struct {
		label string
		count int
		c     *color.Color
	}{
		{"200", len(snap.Buckets.OK), color.New(color.FgGreen)},
		{"400", len(snap.Buckets.BadRequest), color.New(color.FgYellow)},
		{"404", len(snap.Buckets.NotFound), color.New(color.FgBlue)},
		{"500", len(snap.Buckets.ServerError), color.New(color.FgRed)},
		{"other", len(snap.Buckets.Other), color.New(color.FgWhite)},
	}
	for _, r := range rows {
		r.c.Fprintf(w, "  %-6s %5d\n", r.label, r.count)
	}

	cpu := "n/a"
	if snap.CPU != nil {
		if v, ok := snap.CPU.FirstValue(); ok {
			cpu = fmt.Sprintf("%.2f %%", v*100)
		}
	}
	fmt.Fprintf(w, "CPU usage: %s\n", cpu)

	if h := snap.Health; h != nil {
		status := color.GreenString(h.Status)
		if h.Status != "UP" {
			status = color.RedString(h.Status)
		}
		free := "n/a"
		if ds := h.Details.DiskSpace; ds != nil {
			free = ds.Details.FreeDisplay
		}
		fmt.Fprintf(w, "Health: %s, free disk %s\n", status, free)
	} else {
		fmt.Fprintln(w, "Health: n/a")
	}

	if snap.States.Uptime == models.StateLoaded {
		fmt.Fprintf(w, "Uptime: %s\n", snap.Uptime.Display)
	} else {
		fmt.Fprintln(w, "Uptime: n/a")
	}
}
