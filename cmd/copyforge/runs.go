package main

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func runsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect stored runs",
	}
	cmd.AddCommand(runsListCmd())
	cmd.AddCommand(runsShowCmd())
	return cmd
}

func runsListCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			workDir, err := os.Getwd()
			if err != nil {
				return err
			}
			cfg, err := loadConfig(workDir)
			if err != nil {
				return err
			}
			st, _, closeFn, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer closeFn()

			runs, err := st.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tCREATED\tCHANNEL\tTOPIC\tSTATUS\tSCORE\tATTEMPTS")
			for _, run := range runs {
				status := run.Status
				if run.BestEffort {
					status += " (best effort)"
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%d\t%d\n",
					run.ID, run.CreatedAt, run.Channel, run.Topic, status, run.Score, run.Attempts)
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "how many runs to list")
	return cmd
}

func runsShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show one run's timeline and artifacts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("bad run id %q", args[0])
			}
			workDir, err := os.Getwd()
			if err != nil {
				return err
			}
			cfg, err := loadConfig(workDir)
			if err != nil {
				return err
			}
			st, _, closeFn, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer closeFn()

			ctx := cmd.Context()
			run, err := st.GetRun(ctx, runID)
			if err != nil {
				return err
			}
			fmt.Printf("run %d: %s / %s\n", run.ID, run.Channel, run.Topic)
			fmt.Printf("  audience: %s\n  goal: %s\n", run.Audience, run.Goal)
			fmt.Printf("  status: %s, score %d, %d attempt(s)", run.Status, run.Score, run.Attempts)
			if run.BestEffort {
				fmt.Print(", best effort")
			}
			fmt.Println()

			events, err := st.ListEvents(ctx, runID)
			if err != nil {
				return err
			}
			fmt.Println("timeline:")
			for _, ev := range events {
				fmt.Printf("  %s  %-16s %s\n", ev.TS, ev.Kind, ev.Message)
			}

			artifacts, err := st.ListArtifacts(ctx, runID)
			if err != nil {
				return err
			}
			fmt.Println("artifacts:")
			for _, a := range artifacts {
				fmt.Printf("  %s (%d bytes)\n", a.Phase, len(a.Payload))
			}
			return nil
		},
	}
	return cmd
}
