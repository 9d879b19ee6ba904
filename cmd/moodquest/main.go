package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"moodquest/internal/bootstrap"
	focusdto "moodquest/internal/modules/focus/dto"
	"moodquest/internal/platform/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "moodquest",
		Short:         "MoodQuest focus session client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default ~/.moodquest/config.yaml)")

	root.AddCommand(newTUICmd(&configPath))
	root.AddCommand(newSessionCmd(&configPath))
	root.AddCommand(newCheckinCmd(&configPath))
	root.AddCommand(newHistoryCmd(&configPath))
	return root
}

func loadApp(configPath string) (*bootstrap.App, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	return bootstrap.New(cfg)
}

func newTUICmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the moodquest terminal UI",
		RunE: func(_ *cobra.Command, _ []string) error {
			app, err := loadApp(*configPath)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			return bootstrap.RunTUI(app)
		},
	}
}

func newSessionCmd(configPath *string) *cobra.Command {
	session := &cobra.Command{Use: "session", Short: "Work session lifecycle"}

	var taskID, subtaskID string
	var minutes int
	var untimed bool
	start := &cobra.Command{
		Use:   "start",
		Short: "Start a work session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*configPath)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			out, err := app.FocusCLI.Start(context.Background(), focusdto.StartInput{
				TaskID:         taskID,
				SubtaskID:      subtaskID,
				PlannedMinutes: minutes,
				Untimed:        untimed,
			})
			if err != nil {
				return err
			}
			printSession(cmd, out)
			return nil
		},
	}
	start.Flags().StringVar(&taskID, "task", "", "task id to work against")
	start.Flags().StringVar(&subtaskID, "subtask", "", "subtask id to work against")
	start.Flags().IntVar(&minutes, "minutes", 25, "planned duration in minutes (1-479)")
	start.Flags().BoolVar(&untimed, "untimed", false, "track elapsed time with no countdown")

	session.AddCommand(start)

	session.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List active sessions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*configPath)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			ctx := context.Background()
			if _, err := app.FocusCLI.Refresh(ctx); err != nil {
				return err
			}
			sessions := app.FocusCLI.List(ctx)
			if len(sessions) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no active sessions")
				return nil
			}
			for _, s := range sessions {
				printSession(cmd, s)
			}
			return nil
		},
	})

	shorts := map[string]string{
		"pause":  "Pause a session, freezing its elapsed time",
		"resume": "Resume a paused session",
		"cancel": "Cancel a session without rewards",
	}
	for _, op := range []string{"pause", "resume", "cancel"} {
		op := op
		session.AddCommand(&cobra.Command{
			Use:   op + " [session-id]",
			Short: shorts[op],
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				app, err := loadApp(*configPath)
				if err != nil {
					return err
				}
				defer func() { _ = app.Close() }()
				ctx := context.Background()
				sessionID, err := resolveSessionID(ctx, app, args)
				if err != nil {
					return err
				}
				var out focusdto.SessionOutput
				switch op {
				case "pause":
					out, err = app.FocusCLI.Pause(ctx, sessionID)
				case "resume":
					out, err = app.FocusCLI.Resume(ctx, sessionID)
				case "cancel":
					out, err = app.FocusCLI.Cancel(ctx, sessionID)
				}
				if err != nil {
					return err
				}
				printSession(cmd, out)
				return nil
			},
		})
	}

	var markDone bool
	complete := &cobra.Command{
		Use:   "complete [session-id]",
		Short: "Complete a session and collect rewards",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(*configPath)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			ctx := context.Background()
			sessionID, err := resolveSessionID(ctx, app, args)
			if err != nil {
				return err
			}
			out, err := app.FocusCLI.Complete(ctx, sessionID, markDone)
			if err != nil {
				return err
			}
			printSession(cmd, out.Session)
			if len(out.Rewards) > 0 {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "rewards: %s\n", string(out.Rewards))
			}
			return nil
		},
	}
	complete.Flags().BoolVar(&markDone, "done", false, "also mark the underlying work item done")
	session.AddCommand(complete)

	var extraMinutes int
	extend := &cobra.Command{
		Use:   "extend [session-id]",
		Short: "Extend a timed session",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(*configPath)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			ctx := context.Background()
			sessionID, err := resolveSessionID(ctx, app, args)
			if err != nil {
				return err
			}
			out, err := app.FocusCLI.Extend(ctx, sessionID, extraMinutes)
			if err != nil {
				return err
			}
			printSession(cmd, out)
			return nil
		},
	}
	extend.Flags().IntVar(&extraMinutes, "minutes", 5, "minutes to add to the plan")
	session.AddCommand(extend)

	return session
}

// resolveSessionID picks the explicit id when given, otherwise refreshes and
// accepts a lone server-side session. Two or more sessions need an explicit
// choice.
func resolveSessionID(ctx context.Context, app *bootstrap.App, args []string) (string, error) {
	if len(args) > 0 && strings.TrimSpace(args[0]) != "" {
		return args[0], nil
	}
	if _, err := app.FocusCLI.Refresh(ctx); err != nil {
		return "", err
	}
	sessions := app.FocusCLI.List(ctx)
	switch len(sessions) {
	case 0:
		return "", fmt.Errorf("no active sessions")
	case 1:
		return sessions[0].ID, nil
	default:
		return "", fmt.Errorf("%d active sessions, pass a session id", len(sessions))
	}
}

func newCheckinCmd(configPath *string) *cobra.Command {
	var claim bool
	var mood int

	checkin := &cobra.Command{
		Use:   "checkin",
		Short: "Walk the first-load check-in queue",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*configPath)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			ctx := context.Background()
			out := cmd.OutOrStdout()

			for {
				gate := app.CheckinCLI.Evaluate(ctx)
				if gate.Err != "" {
					_, _ = fmt.Fprintf(out, "warning: %s\n", gate.Err)
				}
				if !gate.Show {
					_, _ = fmt.Fprintln(out, "all caught up")
					return nil
				}
				switch gate.Phase {
				case "catchup":
					if c := gate.CatchUp; c != nil {
						_, _ = fmt.Fprintf(out, "catch-up: +%d XP, %d level(s)", c.XP, c.LevelsGained)
						if len(c.Genres) > 0 {
							_, _ = fmt.Fprintf(out, ", genres: %s", strings.Join(c.Genres, ", "))
						}
						_, _ = fmt.Fprintln(out)
					}
					app.CheckinCLI.Advance()
				case "daily_bonus":
					if !claim {
						_, _ = fmt.Fprintln(out, "daily bonus available (rerun with --claim)")
						app.CheckinCLI.Advance()
						continue
					}
					claimed, err := app.CheckinCLI.ClaimBonus(ctx)
					if err != nil {
						_, _ = fmt.Fprintf(out, "bonus claim failed: %v\n", err)
					} else {
						_, _ = fmt.Fprintf(out, "daily bonus claimed: +%d (streak %d)\n", claimed.Amount, claimed.Streak)
					}
					app.CheckinCLI.Advance()
				case "mood":
					if mood == 0 {
						_, _ = fmt.Fprintln(out, "mood check-in due (rerun with --mood 1..5)")
						app.CheckinCLI.Advance()
						continue
					}
					if err := app.CheckinCLI.LogMood(ctx, mood); err != nil {
						return err
					}
					_, _ = fmt.Fprintf(out, "mood logged (%d/5)\n", mood)
					app.CheckinCLI.Advance()
				default:
					return nil
				}
			}
		},
	}
	checkin.Flags().BoolVar(&claim, "claim", false, "claim the daily bonus when available")
	checkin.Flags().IntVar(&mood, "mood", 0, "log a mood score 1..5 when due")
	return checkin
}

func newHistoryCmd(configPath *string) *cobra.Command {
	var limit int

	history := &cobra.Command{
		Use:   "history",
		Short: "Show locally recorded session history",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*configPath)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			ctx := context.Background()

			entries, err := app.FocusCLI.History(ctx, limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no recorded sessions")
				return nil
			}
			for _, e := range entries {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%dmin\t%s\n",
					e.EndedAt.Format("2006-01-02 15:04"), e.Work, e.Outcome, e.FocusedMinutes, e.SessionID)
			}

			since := time.Now().UTC().Truncate(24 * time.Hour)
			totals, err := app.FocusCLI.HistoryTotals(ctx, since)
			if err == nil && totals.Sessions > 0 {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "today: %d session(s), %d focused minutes\n",
					totals.Sessions, totals.FocusedMinutes)
			}
			return nil
		},
	}
	history.Flags().IntVar(&limit, "limit", 20, "entries to show")
	return history
}

func printSession(cmd *cobra.Command, s focusdto.SessionOutput) {
	plan := "untimed"
	if !s.Untimed {
		plan = fmt.Sprintf("%dmin", s.PlannedMinutes)
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\tstarted=%s\n",
		s.ID, s.Work, s.Status, plan, s.StartedAt.Format(time.RFC3339))
}
