package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/claude/dianafit/internal/app"
	"github.com/claude/dianafit/internal/models"
	"github.com/claude/dianafit/internal/tracker"
	"github.com/claude/dianafit/internal/tui"
	"github.com/claude/dianafit/internal/workout"
	"github.com/spf13/cobra"
)

func newWorkoutCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workout",
		Short: "Run training passes",
	}
	cmd.AddCommand(newWorkoutPassesCommand(ctx))
	cmd.AddCommand(newWorkoutStartCommand(ctx))
	cmd.AddCommand(newWorkoutQuickCommand(ctx))
	return cmd
}

func newWorkoutPassesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "passes",
		Short: "List the passes of the active plan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd, app.Options{}, func(a *app.App) error {
				passes := a.Tracker.Passes(cmd.Context())
				rows := make([][]string, 0, len(passes))
				for _, p := range passes {
					units := workout.Flatten(p.Exercises)
					rows = append(rows, []string{p.Key, p.Name, p.Location, strconv.Itoa(p.Duration) + " min", strconv.Itoa(len(units))})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(cmd.OutOrStdout(),
					[]string{"Key", "Name", "Location", "Duration", "Units"}, rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight}))
				return nil
			})
		},
	}
}

func newWorkoutStartCommand(ctx *commandContext) *cobra.Command {
	var mode string
	cmd := &cobra.Command{
		Use:   "start <pass>",
		Short: "Start a pass in the interactive runner",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			viewMode := models.ViewMode(mode)
			if mode != "" && !viewMode.Valid() {
				return fmt.Errorf("unknown view mode %q (want list or detailed)", mode)
			}
			return runInteractive(cmd, ctx, func(t *tracker.Tracker) error {
				_, err := t.StartPass(cmd.Context(), args[0], viewMode)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&mode, "mode", "", "View mode: list or detailed (default: stored preference)")
	return cmd
}

func newWorkoutQuickCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:       "quick <last|next>",
		Short:     "Repeat the last pass or start the next one",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"last", "next"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var action tracker.QuickAction
			switch args[0] {
			case "last":
				action = tracker.QuickLast
			case "next":
				action = tracker.QuickNext
			default:
				return fmt.Errorf("unknown quick start %q (want last or next)", args[0])
			}
			return runInteractive(cmd, ctx, func(t *tracker.Tracker) error {
				_, err := t.QuickStart(cmd.Context(), action)
				if errors.Is(err, tracker.ErrNoHistory) {
					return errors.New("no previous workout to repeat")
				}
				return err
			})
		},
	}
}

// runInteractive opens the app with timer hooks feeding the TUI, starts a
// session via start and hands the terminal to the runner.
func runInteractive(cmd *cobra.Command, ctx *commandContext, start func(*tracker.Tracker) error) error {
	if !isTerminal(cmd.OutOrStdout()) {
		return errors.New("the workout runner needs an interactive terminal")
	}
	ticks := tui.NewTicks()
	return ctx.withApp(cmd, app.Options{Hooks: ticks.Hooks()}, func(a *app.App) error {
		if err := start(a.Tracker); err != nil {
			return err
		}
		rec, err := tui.Run(cmd.Context(), a.Tracker, ticks)
		if err != nil {
			return err
		}
		if rec == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "Workout cancelled.")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved %s: %s, %d sets.\n",
			rec.PassName, workout.FormatClock(time.Duration(rec.Duration)*time.Second), rec.SetCount())
		return nil
	})
}
