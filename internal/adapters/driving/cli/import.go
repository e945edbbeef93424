package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/debug"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/mongoflat/mongoflat/internal/adapters/driving/tui"
	"github.com/mongoflat/mongoflat/internal/core/domain"
)

var importCmd = &cobra.Command{
	Use:   "import [entity]",
	Short: "Import documents into flat records",
	Long: `Runs an import for the named entity, or a full import of every
configured entity when no entity is given.

A full import re-reads everything the entity's import query selects.
With --delta, only documents changed since the entity's stored watermark
are discovered and re-imported; the first import of an entity must be a
full one so a watermark exists.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runImport,
}

// Flags for the import command.
var (
	importDelta bool
	importTUI   bool
)

func init() {
	importCmd.Flags().BoolVar(&importDelta, "delta", false, "Import only documents changed since the last run")
	importCmd.Flags().BoolVar(&importTUI, "tui", false, "Monitor the import in the terminal UI")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	if importService == nil {
		return errors.New("import service not configured")
	}

	ctx := context.Background()

	if len(args) == 0 {
		if importDelta {
			return errors.New("--delta requires an entity")
		}
		return runImportAll(ctx, cmd)
	}

	entity := args[0]
	if importTUI {
		return runImportTUI(cmd, entity, importDelta)
	}

	mode := "full"
	if importDelta {
		mode = "delta"
	}
	cmd.Printf("Starting %s import for entity %s...\n", mode, entity)

	summary, err := importWithProgress(ctx, cmd, entity, importDelta)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	cmd.Printf("%s\n", summary)
	return nil
}

func runImportAll(ctx context.Context, cmd *cobra.Command) error {
	cmd.Println("Importing all entities...")

	summaries, err := importService.ImportAll(ctx)
	for _, s := range summaries {
		cmd.Printf("  %s\n", s)
	}
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	cmd.Printf("Total: %d entities imported.\n", len(summaries))
	return nil
}

// importWithProgress runs the import while polling status for progress
// updates.
func importWithProgress(
	ctx context.Context,
	cmd *cobra.Command,
	entity string,
	delta bool,
) (domain.RunSummary, error) {
	type result struct {
		summary domain.RunSummary
		err     error
	}

	// Start the import in a goroutine
	resCh := make(chan result, 1)
	go func() {
		var r result
		if delta {
			r.summary, r.err = importService.DeltaImport(ctx, entity)
		} else {
			r.summary, r.err = importService.FullImport(ctx, entity)
		}
		resCh <- r
	}()

	// Poll status every 500ms
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	var lastRows int64
	for {
		select {
		case res := <-resCh:
			if lastRows > 0 {
				cmd.Println()
			}
			return res.summary, res.err
		case <-ticker.C:
			// Check progress (ignore status error - best effort)
			status, err := importService.Status(ctx)
			if err == nil && status.Running && status.Stats.RowsRead > lastRows {
				cmd.Printf("\r%s: %d rows read, %d records written",
					status.Phase, status.Stats.RowsRead, status.Stats.RecordsWritten)
				lastRows = status.Stats.RowsRead
			}
		}
	}
}

// runImportTUI monitors the import in the terminal UI instead of plain
// progress lines.
func runImportTUI(cmd *cobra.Command, entity string, delta bool) error {
	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	monitor := tui.NewMonitor(importService, entity, delta)

	p := tea.NewProgram(monitor, tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("terminal UI error: %w", err)
	}

	// Report the run's outcome once the screen is back to normal.
	m, ok := final.(*tui.Monitor)
	if !ok {
		return nil
	}
	if runErr := m.Err(); runErr != nil {
		return fmt.Errorf("import failed: %w", runErr)
	}
	if summary, done := m.Summary(); done {
		cmd.Printf("%s\n", summary)
	}
	return nil
}
