package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/ilyadubrovsky/tracking-attendance/internal/app"
	"github.com/ilyadubrovsky/tracking-attendance/internal/config"
	"github.com/ilyadubrovsky/tracking-attendance/internal/domain"
	"github.com/ilyadubrovsky/tracking-attendance/internal/render"
	"github.com/ilyadubrovsky/tracking-attendance/internal/service"
	"github.com/spf13/cobra"
)

// withTracker loads the configuration, builds the tracker and hands it to fn.
func withTracker(ctx context.Context, configPath string, fn func(tr service.Tracker) error) error {
	cfg, err := config.NewConfig(configPath)
	if err != nil {
		return fmt.Errorf("config.NewConfig: %w", err)
	}
	initLogger(cfg.Log)

	a, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("app.New: %w", err)
	}
	defer a.Close()

	return fn(a.Tracker())
}

func setupCommands() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "tracking-attendance",
		Short:         "Track class attendance against the timetable and the academic calendar",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "path to the yaml configuration")

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show attendance per subject",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTracker(cmd.Context(), configPath, func(tr service.Tracker) error {
				fmt.Fprintln(cmd.OutOrStdout(), render.Subjects(tr.Summaries(), tr.Threshold()))
				return nil
			})
		},
	}

	overallCmd := &cobra.Command{
		Use:   "overall",
		Short: "Show overall attendance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTracker(cmd.Context(), configPath, func(tr service.Tracker) error {
				fmt.Fprintln(cmd.OutOrStdout(), render.Overall(tr.Overall(), tr.Threshold()))
				return nil
			})
		},
	}

	subjectCompletion := func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		var subjects []string
		err := withTracker(context.Background(), configPath, func(tr service.Tracker) error {
			subjects = tr.Subjects()
			return nil
		})
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		return subjects, cobra.ShellCompDirectiveNoFileComp
	}

	markCmd := func(mark domain.Mark) *cobra.Command {
		return &cobra.Command{
			Use:               fmt.Sprintf("%s [subject]", mark),
			Short:             fmt.Sprintf("Mark one class of a subject %s", mark),
			Args:              cobra.ExactArgs(1),
			ValidArgsFunction: subjectCompletion,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withTracker(cmd.Context(), configPath, func(tr service.Tracker) error {
					var (
						res domain.MarkResult
						err error
					)
					if mark == domain.MarkAbsent {
						res, err = tr.RecordAbsent(cmd.Context(), args[0])
					} else {
						res, err = tr.RecordPresent(cmd.Context(), args[0])
					}
					if err != nil {
						return err
					}

					fmt.Fprintln(cmd.OutOrStdout(), render.Mark(res, mark))
					summary, err := tr.Summary(args[0])
					if err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), render.Subject(summary, tr.Threshold()))
					return nil
				})
			},
		}
	}

	dayCmd := &cobra.Command{
		Use:   "day [date]",
		Short: "Show the classes of a date, today by default",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTracker(cmd.Context(), configPath, func(tr service.Tracker) error {
				date, err := tr.ParseDate(firstArg(args))
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), render.Day(tr.Day(date)))
				return nil
			})
		},
	}

	var markDayAbsent bool
	markDayCmd := &cobra.Command{
		Use:   "mark-day [date]",
		Short: "Mark every class of a date, present unless --absent is set",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mark := domain.MarkPresent
			if markDayAbsent {
				mark = domain.MarkAbsent
			}
			return withTracker(cmd.Context(), configPath, func(tr service.Tracker) error {
				date, err := tr.ParseDate(firstArg(args))
				if err != nil {
					return err
				}
				day, results, err := tr.MarkDay(cmd.Context(), date, mark)
				if err != nil {
					return err
				}
				if day.Status != domain.DayTeaching {
					fmt.Fprintln(cmd.OutOrStdout(), render.Day(day))
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), render.Marks(results, mark))
				return nil
			})
		},
	}
	markDayCmd.Flags().BoolVar(&markDayAbsent, "absent", false, "mark the classes missed")

	var resetConfirmed bool
	resetCmd := &cobra.Command{
		Use:   "reset",
		Short: "Clear every attendance record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !resetConfirmed {
				return errors.New("reset clears every record, pass --yes to confirm")
			}
			return withTracker(cmd.Context(), configPath, func(tr service.Tracker) error {
				if _, err := tr.ResetAll(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "All attendance records are cleared.")
				return nil
			})
		},
	}
	resetCmd.Flags().BoolVar(&resetConfirmed, "yes", false, "confirm the reset")

	botCmd := &cobra.Command{
		Use:   "bot",
		Short: "Serve the tracker over a Telegram bot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cfg, err := config.NewConfig(configPath)
			if err != nil {
				return fmt.Errorf("config.NewConfig: %w", err)
			}
			initLogger(cfg.Log)

			a, err := app.New(ctx, cfg)
			if err != nil {
				return fmt.Errorf("app.New: %w", err)
			}
			defer a.Close()

			return a.RunBot(ctx)
		},
	}

	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(overallCmd)
	rootCmd.AddCommand(markCmd(domain.MarkPresent))
	rootCmd.AddCommand(markCmd(domain.MarkAbsent))
	rootCmd.AddCommand(dayCmd)
	rootCmd.AddCommand(markDayCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(botCmd)

	return rootCmd
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
