package cmd

import (
	"fmt"
	"math"
	"text/tabwriter"

	"github.com/sarchlab/vtester/datarecording"
	"github.com/sarchlab/vtester/tracing"
	"github.com/spf13/cobra"
)

var traceCmd = &cobra.Command{
	Use:   "trace <trace.sqlite3>",
	Short: "List the clock events of a trace database.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dr, err := datarecording.NewReader(args[0])
		if err != nil {
			return err
		}

		reader := tracing.NewTraceReader(dr)
		defer reader.Close()

		q := tracing.ClockEventQuery{}
		q.Pin, _ = cmd.Flags().GetString("pin")
		q.Op, _ = cmd.Flags().GetString("op")
		q.Limit, _ = cmd.Flags().GetInt("limit")

		if cmd.Flags().Changed("from") || cmd.Flags().Changed("to") {
			q.EnableCycleRange = true
			q.StartCycle, _ = cmd.Flags().GetUint64("from")
			q.EndCycle, _ = cmd.Flags().GetUint64("to")
		}

		events, err := reader.ListClockEvents(cmd.Context(), q)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "CYCLE\tPIN\tOP\tFROM\tTO\tHALF PERIOD\tTIMESET")

		for _, e := range events {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%d\t%s\n",
				e.Cycle, e.Pin, e.Op, e.From, e.To, e.HalfPeriod, e.Timeset)
		}

		return w.Flush()
	},
}

func init() {
	f := traceCmd.Flags()
	f.String("pin", "", "only list the events of this pin")
	f.String("op", "", "only list this operation, e.g. start_clock")
	f.Int("limit", 0, "list at most this many events, 0 for all")
	f.Uint64("from", 0, "the first cycle to list")
	f.Uint64("to", math.MaxInt64, "the last cycle to list")

	rootCmd.AddCommand(traceCmd)
}
