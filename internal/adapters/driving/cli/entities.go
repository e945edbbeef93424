package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var entitiesCmd = &cobra.Command{
	Use:   "entities",
	Short: "List entities holding imported records",
	Args:  cobra.NoArgs,
	RunE:  runEntities,
}

func init() {
	rootCmd.AddCommand(entitiesCmd)
}

func runEntities(cmd *cobra.Command, _ []string) error {
	if browseService == nil {
		return errors.New("browse service not configured")
	}

	ctx := context.Background()

	counts, err := browseService.Entities(ctx)
	if err != nil {
		return fmt.Errorf("failed to list entities: %w", err)
	}

	if len(counts) == 0 {
		cmd.Println("No records imported yet.")
		return nil
	}

	cmd.Printf("%-24s %s\n", "ENTITY", "RECORDS")
	for _, c := range counts {
		cmd.Printf("%-24s %d\n", c.Entity, c.Records)
	}

	cmd.Printf("\nTotal: %d entities\n", len(counts))
	return nil
}
