// Render command re-applies stored highlights to a page.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var renderOut string

var renderCmd = &cobra.Command{
	Use:   "render <page-url>",
	Short: "Render a page with its stored flags highlighted",
	Long: `Render fetches a page, loads its flags from the store, re-anchors
each one (structural locator first, text matching as fallback), and
writes the highlighted document. Flags whose anchors no longer resolve
are skipped silently.

Example:
  pagemark render https://news.example/a --out highlighted.html`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringVar(&renderOut, "out", "", "output file (default: stdout)")
}

func runRender(cmd *cobra.Command, args []string) error {
	pageURL := args[0]
	doc, err := fetchPage(pageURL)
	if err != nil {
		return err
	}

	workflow, err := newWorkflow()
	if err != nil {
		return err
	}

	applied := workflow.LoadHighlights(cmd.Context(), doc, pageURL)
	fmt.Fprintf(os.Stderr, "Applied %d highlight(s)\n", len(applied))

	matched, err := workflow.MatchingLinkFlags(cmd.Context(), pageURL)
	if err == nil && len(matched) > 0 {
		fmt.Fprintf(os.Stderr, "Warning: this page's URL carries %d link flag(s)\n", len(matched))
	}

	return writeDocument(doc, renderOut)
}
