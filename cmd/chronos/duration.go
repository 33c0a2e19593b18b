package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/blockberries/chronos/types"
)

// durationFlag adapts types.Duration to pflag.Value.
type durationFlag struct{ d *types.Duration }

func (f durationFlag) String() string {
	if f.d == nil {
		return ""
	}
	b, _ := f.d.MarshalText()
	return string(b)
}

func (f durationFlag) Set(s string) error { return f.d.UnmarshalText([]byte(s)) }
func (f durationFlag) Type() string       { return "duration" }

// scalar applies an integer or real scalar operation to d.
func scalar(d types.Duration, s string, ints func(types.Duration, int64) (types.Duration, error), reals func(types.Duration, float64) (types.Duration, error)) (types.Duration, error) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return ints(d, n)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return types.Zero, fmt.Errorf("invalid scalar %q", s)
	}
	return reals(d, f)
}

func (a *app) durationCommand() *cobra.Command {
	var (
		layout, infLayout string
		add, sub          types.Duration
		mul, div          string
	)
	cmd := &cobra.Command{
		Use:   "duration <value>",
		Short: "Format and combine durations",
		Long: `Parse a duration such as "1h30m", "inf" or "-inf", apply --add, --sub, --mul
and --div in that order, and print the result. Arithmetic on infinities
saturates; undefined results such as inf - inf are errors.`,
		Example: `  chronos duration 36h --mul 2.5
  chronos duration inf --sub 1h --inf-layout "%+inf"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var d types.Duration
			if err := d.UnmarshalText([]byte(args[0])); err != nil {
				return err
			}

			var err error
			if cmd.Flags().Changed("add") {
				if d, err = d.Add(add); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("sub") {
				if d, err = d.Sub(sub); err != nil {
					return err
				}
			}
			if mul != "" {
				if d, err = scalar(d, mul, types.Duration.Mul, types.Duration.MulFloat); err != nil {
					return err
				}
			}
			if div != "" {
				if d, err = scalar(d, div, types.Duration.Div, types.Duration.DivFloat); err != nil {
					return err
				}
			}

			conn, err := a.connect(cmd.Context())
			if err != nil {
				return err
			}
			text, err := conn.FormatDuration(cmd.Context(), d, layout, infLayout)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
	cmd.Flags().StringVarP(&layout, "layout", "l", "", `duration layout, e.g. "%-%dd %T.%3"`)
	cmd.Flags().StringVar(&infLayout, "inf-layout", "", "layout for infinite results")
	cmd.Flags().Var(durationFlag{&add}, "add", "duration to add")
	cmd.Flags().Var(durationFlag{&sub}, "sub", "duration to subtract")
	cmd.Flags().StringVar(&mul, "mul", "", "integer or real factor")
	cmd.Flags().StringVar(&div, "div", "", "integer or real divisor")
	return cmd
}
