package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mongoflat/mongoflat/internal/core/domain"
)

var runsCmd = &cobra.Command{
	Use:   "runs [entity]",
	Short: "Show import run history",
	Long: `Prints past import runs, most recent first. With an entity, only
that entity's runs are shown.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRuns,
}

// runsLimit is a flag for the runs command.
var runsLimit int

func init() {
	runsCmd.Flags().IntVar(&runsLimit, "limit", 10, "Maximum runs to show (0 for all)")
	rootCmd.AddCommand(runsCmd)
}

func runRuns(cmd *cobra.Command, args []string) error {
	if browseService == nil {
		return errors.New("browse service not configured")
	}

	entity := ""
	if len(args) > 0 {
		entity = args[0]
	}
	ctx := context.Background()

	runs, err := browseService.Runs(ctx, entity, runsLimit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(runs) == 0 {
		cmd.Println("No import runs recorded.")
		return nil
	}

	for _, run := range runs {
		printRun(cmd, run)
		cmd.Println()
	}

	cmd.Printf("Total: %d runs\n", len(runs))
	return nil
}

func printRun(cmd *cobra.Command, run domain.RunSummary) {
	cmd.Printf("%s  %s  %s  [%s]\n", run.ID, run.Entity, run.Phase, run.State)
	cmd.Printf("  Started:  %s\n", run.StartedAt.Format("2006-01-02 15:04:05"))
	if !run.FinishedAt.IsZero() {
		cmd.Printf("  Finished: %s (%s)\n",
			run.FinishedAt.Format("2006-01-02 15:04:05"), run.Duration().Round(time.Millisecond))
	}
	cmd.Printf("  Rows: %d  Records: %d  Keys: %d  Queries: %d  Date warnings: %d\n",
		run.Stats.RowsRead, run.Stats.RecordsWritten, run.Stats.KeysDiscovered,
		run.Stats.Queries, run.Stats.DateWarnings)
	if run.Error != "" {
		cmd.Printf("  Error: %s\n", run.Error)
	}
}
