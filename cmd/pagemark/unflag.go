// Unflag command deletes a stored flag.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/net/html"

	"github.com/mesh-intelligence/pagemark/pkg/types"
)

var (
	unflagPage string
	unflagOut  string
	unflagLink bool
)

var unflagCmd = &cobra.Command{
	Use:   "unflag <id>",
	Short: "Delete a flag by id",
	Long: `Unflag deletes a stored flag. For content flags, pass --page to
also re-render the page with that flag's highlight stripped (including
unwrapping any narrowing marker).

Example:
  pagemark unflag 0198f2a4-... --page https://news.example/a --out clean.html`,
	Args: cobra.ExactArgs(1),
	RunE: runUnflag,
}

func init() {
	unflagCmd.Flags().StringVar(&unflagPage, "page", "", "page URL to re-render without the flag")
	unflagCmd.Flags().StringVar(&unflagOut, "out", "", "output file for the re-rendered page")
	unflagCmd.Flags().BoolVar(&unflagLink, "link", false, "the id names a link flag")
}

func runUnflag(cmd *cobra.Command, args []string) error {
	id := types.RecordID(args[0])

	if unflagLink {
		client, err := newStoreClient()
		if err != nil {
			return err
		}
		if err := client.DeleteLinkFlag(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Println("Deleted link flag", id)
		return nil
	}

	workflow, err := newWorkflow()
	if err != nil {
		return err
	}

	var doc *html.Node
	if unflagPage != "" {
		doc, err = fetchPage(unflagPage)
		if err != nil {
			return err
		}
		// Re-apply stored highlights so the target's highlight exists
		// before Unflag strips it.
		workflow.LoadHighlights(cmd.Context(), doc, unflagPage)
	}

	if err := workflow.Unflag(cmd.Context(), doc, id); err != nil {
		return err
	}
	fmt.Println("Deleted flag", id)

	if doc != nil && unflagOut != "" {
		return writeDocument(doc, unflagOut)
	}
	return nil
}
