package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/claude/dianafit/internal/app"
	"github.com/claude/dianafit/internal/backup"
	"github.com/claude/dianafit/internal/models"
	"github.com/claude/dianafit/internal/stats"
	"github.com/claude/dianafit/internal/tracker"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List finished workouts, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd, app.Options{}, func(a *app.App) error {
				history := a.Tracker.History(cmd.Context())
				if len(history) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No workouts yet.")
					return nil
				}
				if limit > 0 && len(history) > limit {
					history = history[:limit]
				}
				rows := make([][]string, 0, len(history))
				for _, rec := range history {
					rows = append(rows, []string{
						rec.Date,
						rec.PassName,
						strconv.Itoa(rec.Duration/60) + " min",
						strconv.Itoa(rec.SetCount()),
						modeLabel(rec),
						humanize.Time(rec.CompletedAt.Time),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(cmd.OutOrStdout(),
					[]string{"Date", "Pass", "Duration", "Sets", "Mode", "Finished"}, rows,
					[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft, alignLeft}))
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Show at most this many workouts (0 for all)")
	return cmd
}

func modeLabel(rec models.WorkoutRecord) string {
	if rec.Mode == models.ViewList {
		return fmt.Sprintf("list %d%%", rec.CompletionPercent)
	}
	return string(models.ViewDetailed)
}

func newCalendarCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "calendar [YYYY-MM]",
		Short: "Show a month of training with statistics",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd, app.Options{}, func(a *app.App) error {
				month := a.Tracker.CurrentMonth()
				if len(args) == 1 {
					m, err := stats.ParseMonth(args[0])
					if err != nil {
						return err
					}
					month = m
				}
				printCalendar(cmd, a.Tracker.Calendar(cmd.Context(), month))
				return nil
			})
		},
	}
}

func printCalendar(cmd *cobra.Command, cal tracker.Calendar) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, cal.Grid.Label)
	fmt.Fprintln(out, " Må  Ti  On  To  Fr  Lö  Sö")

	var sb strings.Builder
	col := 0
	for ; col < cal.Grid.Leading; col++ {
		sb.WriteString("    ")
	}
	for _, d := range cal.Grid.Days {
		cell := fmt.Sprintf("%3d", d.Day)
		switch {
		case d.Workouts > 0:
			cell += "*"
		case d.Today:
			cell += "<"
		default:
			cell += " "
		}
		sb.WriteString(cell)
		col++
		if col%7 == 0 {
			fmt.Fprintln(out, strings.TrimRight(sb.String(), " "))
			sb.Reset()
		}
	}
	if sb.Len() > 0 {
		fmt.Fprintln(out, strings.TrimRight(sb.String(), " "))
	}

	s := cal.Summary
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Pass:        %d (%s)\n", s.Workouts, s.WorkoutsTrend.Label)
	fmt.Fprintf(out, "Timmar:      %.1f (%s)\n", s.TotalHours, s.HoursTrend.Label)
	fmt.Fprintf(out, "Snitt:       %d min\n", s.AverageMinutes)
	fmt.Fprintf(out, "Streak:      %d dagar\n", s.Streak)

	if len(cal.Recent) > 0 {
		fmt.Fprintln(out)
		rows := make([][]string, 0, len(cal.Recent))
		for _, r := range cal.Recent {
			rows = append(rows, []string{
				fmt.Sprintf("%d %s", r.Day, r.MonthShort), r.PassName,
				strconv.Itoa(r.DurationMinutes) + " min", strconv.Itoa(r.Exercises),
			})
		}
		fmt.Fprintln(out, renderTable(out, []string{"Day", "Pass", "Duration", "Exercises"}, rows,
			[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight}))
	}
}

func newBackupCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Export or restore workout history",
	}
	cmd.AddCommand(newBackupExportCommand(ctx))
	cmd.AddCommand(newBackupImportCommand(ctx))
	return cmd
}

func newBackupExportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Write a backup file (\"-\" for stdout)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd, app.Options{}, func(a *app.App) error {
				doc := a.Tracker.Export(cmd.Context())
				path := a.Tracker.ExportFilename()
				if len(args) == 1 {
					path = args[0]
				}
				if path == "-" {
					return backup.Write(cmd.OutOrStdout(), doc)
				}

				f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
				if err != nil {
					return fmt.Errorf("creating backup file: %w", err)
				}
				if err := backup.Write(f, doc); err != nil {
					f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return fmt.Errorf("closing backup file: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d workouts to %s\n", len(doc.WorkoutHistory), path)
				return nil
			})
		},
	}
}

func newBackupImportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the workout history with a backup file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening backup file: %w", err)
			}
			defer f.Close()
			return ctx.withApp(cmd, app.Options{}, func(a *app.App) error {
				n, err := a.Tracker.Import(cmd.Context(), f)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d workouts\n", n)
				return nil
			})
		},
	}
}

func newDataCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "data",
		Short: "Manage stored data",
	}
	var yes bool
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete the workout history and reset the plan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to delete data without --yes")
			}
			return ctx.withApp(cmd, app.Options{}, func(a *app.App) error {
				if err := a.Tracker.ClearAll(cmd.Context(), true); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "All workout data deleted.")
				return nil
			})
		},
	}
	clearCmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm deletion")
	cmd.AddCommand(clearCmd)
	return cmd
}

func newSettingsCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change preferences",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd, app.Options{}, func(a *app.App) error {
				printSettings(cmd, a.Tracker)
				return nil
			})
		},
	})

	var (
		plan     int
		theme    string
		viewMode string
	)
	set := &cobra.Command{
		Use:   "set",
		Short: "Change one or more preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if !flags.Changed("plan") && !flags.Changed("theme") && !flags.Changed("view-mode") {
				return fmt.Errorf("nothing to change; use --plan, --theme or --view-mode")
			}
			return ctx.withApp(cmd, app.Options{}, func(a *app.App) error {
				c := cmd.Context()
				if flags.Changed("plan") {
					if err := a.Tracker.SetActivePlan(c, plan); err != nil {
						return err
					}
				}
				if flags.Changed("theme") {
					if err := a.Tracker.SetTheme(c, models.Theme(theme)); err != nil {
						return err
					}
				}
				if flags.Changed("view-mode") {
					if err := a.Tracker.SetViewMode(c, models.ViewMode(viewMode)); err != nil {
						return err
					}
				}
				printSettings(cmd, a.Tracker)
				return nil
			})
		},
	}
	set.Flags().IntVar(&plan, "plan", 0, "Active training plan id")
	set.Flags().StringVar(&theme, "theme", "", "auto, light or dark")
	set.Flags().StringVar(&viewMode, "view-mode", "", "list or detailed")
	cmd.AddCommand(set)
	return cmd
}

func printSettings(cmd *cobra.Command, t *tracker.Tracker) {
	s := t.Settings(cmd.Context())
	name := ""
	if p, ok := t.Catalog().Plan(s.ActivePlan); ok {
		name = p.Name
	}
	rows := [][]string{
		{"Plan", fmt.Sprintf("%d %s", s.ActivePlan, name)},
		{"Theme", string(s.Theme)},
		{"View mode", string(s.ViewMode)},
		{"Screen", s.CurrentScreen},
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(cmd.OutOrStdout(), []string{"Setting", "Value"}, rows, nil))
}

