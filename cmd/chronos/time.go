package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/blockberries/chronos/types"
)

func (a *app) nowCommand() *cobra.Command {
	var layout string
	cmd := &cobra.Command{
		Use:   "now",
		Short: "Print the current time",
		Long:  "Read the clock and print it with --layout, the configured time layout if empty.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conn, err := a.connect(cmd.Context())
			if err != nil {
				return err
			}
			ts, err := conn.Now(cmd.Context())
			if err != nil {
				return err
			}
			text, err := conn.FormatTime(cmd.Context(), ts, layout)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
	cmd.Flags().StringVarP(&layout, "layout", "l", "", "time layout, e.g. \"%F %T.%3%6%9\"")
	return cmd
}

func (a *app) formatCommand() *cobra.Command {
	var layout string
	cmd := &cobra.Command{
		Use:   "format <unix-nanoseconds>",
		Short: "Format a timestamp",
		Long:  "Format a count of nanoseconds since 1970-01-01T00:00:00Z with --layout.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ns, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid timestamp %q: %w", args[0], err)
			}
			ts, err := types.TimestampFromUnixNano(ns)
			if err != nil {
				return err
			}
			conn, err := a.connect(cmd.Context())
			if err != nil {
				return err
			}
			text, err := conn.FormatTime(cmd.Context(), ts, layout)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
	cmd.Flags().StringVarP(&layout, "layout", "l", "", "time layout")
	return cmd
}

func (a *app) parseCommand() *cobra.Command {
	var layout string
	cmd := &cobra.Command{
		Use:   "parse <text>",
		Short: "Parse a timestamp",
		Long:  "Parse text laid out as --layout and print nanoseconds since the epoch.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := a.connect(cmd.Context())
			if err != nil {
				return err
			}
			ts, err := conn.ParseTime(cmd.Context(), args[0], layout)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ts.UnixNano())
			return nil
		},
	}
	cmd.Flags().StringVarP(&layout, "layout", "l", "", "time layout")
	return cmd
}

func (a *app) ticksCommand() *cobra.Command {
	var (
		layout   string
		interval = types.Seconds(1)
		count    int
	)
	cmd := &cobra.Command{
		Use:   "ticks",
		Short: "Print the time repeatedly",
		Long:  "Stream the clock every --interval and print each tick, stopping after --count ticks when positive.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			conn, err := a.connect(ctx)
			if err != nil {
				return err
			}
			ticker := conn.AsTicker()
			if ticker == nil {
				return errors.New("the connected service does not stream ticks")
			}
			ch, err := ticker.Ticks(ctx, interval)
			if err != nil {
				return err
			}
			for n := 0; count <= 0 || n < count; n++ {
				ts, ok := <-ch
				if !ok {
					return ctx.Err()
				}
				text, err := conn.FormatTime(ctx, ts, layout)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), text)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&layout, "layout", "l", "", "time layout")
	cmd.Flags().Var(durationFlag{&interval}, "interval", "tick interval, e.g. 250ms")
	cmd.Flags().IntVarP(&count, "count", "n", 0, "stop after this many ticks, 0 to run until interrupted")
	return cmd
}
