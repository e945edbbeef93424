package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/mongoflat/mongoflat/internal/core/domain"
)

var recordsCmd = &cobra.Command{
	Use:   "records [entity]",
	Short: "Show imported records for an entity",
	Long: `Prints the flat records a previous import stored for an entity.
Fields appear as dotted paths, one line per field. Use --doc to show a
single record by its document id.`,
	Args: cobra.ExactArgs(1),
	RunE: runRecords,
}

// Flags for the records command.
var (
	recordsDocID string
	recordsLimit int
)

func init() {
	recordsCmd.Flags().StringVar(&recordsDocID, "doc", "", "Show only the record with this document id")
	recordsCmd.Flags().IntVar(&recordsLimit, "limit", 20, "Maximum records to show (0 for all)")
	rootCmd.AddCommand(recordsCmd)
}

func runRecords(cmd *cobra.Command, args []string) error {
	if browseService == nil {
		return errors.New("browse service not configured")
	}

	entity := args[0]
	ctx := context.Background()

	if recordsDocID != "" {
		rec, err := browseService.Record(ctx, entity, recordsDocID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("no record %s in entity %s", recordsDocID, entity)
			}
			return fmt.Errorf("failed to get record: %w", err)
		}
		printRecord(cmd, rec)
		return nil
	}

	records, err := browseService.Records(ctx, entity, recordsLimit)
	if err != nil {
		return fmt.Errorf("failed to list records: %w", err)
	}

	if len(records) == 0 {
		cmd.Printf("No records stored for entity %s.\n", entity)
		return nil
	}

	for _, rec := range records {
		printRecord(cmd, rec)
		cmd.Println()
	}

	cmd.Printf("Total: %d records\n", len(records))
	return nil
}

// printRecord prints one flat record, identity first, remaining fields
// in path order.
func printRecord(cmd *cobra.Command, rec domain.FlatRecord) {
	if id, ok := rec.ID(); ok {
		cmd.Printf("%s\n", id)
	} else {
		cmd.Println("(no id)")
	}

	fields := make([]string, 0, len(rec))
	for field := range rec {
		if field == domain.IDField {
			continue
		}
		fields = append(fields, field)
	}
	sort.Strings(fields)

	for _, field := range fields {
		cmd.Printf("  %s: %v\n", field, rec[field])
	}
}
