// Seed command loads synthetic flags from CSV.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/pagemark/internal/seed"
)

var seedCmd = &cobra.Command{
	Use:   "seed <csv-file>",
	Short: "Clear the store and load flags from a CSV file",
	Long: `Seed clears both flag tables and loads the rows from a CSV file
through the store client. The file must have a header row; see the
package documentation for recognized columns.

Example:
  pagemark seed testdata/flags.csv --endpoint http://localhost:3000`,
	Args: cobra.ExactArgs(1),
	RunE: runSeed,
}

func runSeed(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()

	client, err := newStoreClient()
	if err != nil {
		return err
	}

	result, err := seed.Run(cmd.Context(), client, f, logger)
	if err != nil {
		return err
	}
	fmt.Printf("Seeded %d content flag(s), %d link flag(s)\n", result.Content, result.Links)
	return nil
}
