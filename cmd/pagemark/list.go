// List command shows stored flags.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/pagemark/internal/highlight"
	"github.com/mesh-intelligence/pagemark/pkg/types"
)

var listLinks bool

var listCmd = &cobra.Command{
	Use:   "list [page-url]",
	Short: "List flags stored for a page, or all link flags",
	Long: `List shows the content flags stored for a page, newest first. With
--links it lists every stored link flag instead (the store cannot filter
those server-side; matching is by normalized URL on read).

Example:
  pagemark list https://news.example/a
  pagemark list --links`,
	Args: cobra.MaximumNArgs(1),
	RunE: runList,
}

func init() {
	listCmd.Flags().BoolVar(&listLinks, "links", false, "list link flags instead of content flags")
}

func runList(cmd *cobra.Command, args []string) error {
	client, err := newStoreClient()
	if err != nil {
		return err
	}

	if listLinks {
		rows, err := client.ListLinkFlags(cmd.Context())
		if err != nil {
			return err
		}
		if flagJSON {
			return printJSON(rows)
		}
		for _, rec := range rows {
			fmt.Printf("%s  %-15s %3d%%  %s\n", rec.ID, rec.FlagKind, rec.Confidence, rec.LinkURL)
		}
		fmt.Printf("%d link flag(s)\n", len(rows))
		return nil
	}

	if len(args) == 0 {
		return fmt.Errorf("page URL required unless --links is set")
	}
	pageKey := types.PageKey(args[0])
	rows, err := client.ListContentFlags(cmd.Context(), pageKey)
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(rows)
	}
	for _, rec := range rows {
		fmt.Printf("%s  %-15s %3d%% (%s)  %s\n",
			rec.ID, rec.FlagKind, rec.Confidence,
			highlight.ConfidenceBand(rec.Confidence), truncate(rec.Content, 60))
	}
	fmt.Printf("%d flag(s) for %s\n", len(rows), pageKey)
	return nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
