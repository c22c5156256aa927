// Scan command runs the suspicion scan over a page.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/pagemark/internal/scanner"
)

var scanCmd = &cobra.Command{
	Use:   "scan <page-url>",
	Short: "Scan a page for suspicious content",
	Long: `Scan extracts the page's prose blocks, chunks them, and evaluates
every chunk against the scan oracle concurrently. Only positive findings
are reported, in document order. Requires a configured oracle key.

Example:
  pagemark scan https://news.example/a --json`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func runScan(cmd *cobra.Command, args []string) error {
	pageURL := args[0]

	oracleClient := newOracleClient()
	if !oracleClient.Configured() {
		return fmt.Errorf("scan requires an oracle key (set oracle_api_key in config)")
	}

	doc, err := fetchPage(pageURL)
	if err != nil {
		return err
	}

	findings, err := scanner.New(oracleClient, logger).Scan(cmd.Context(), doc, pageURL)
	if err != nil {
		return err
	}

	if flagJSON {
		return printJSON(findings)
	}
	if len(findings) == 0 {
		fmt.Println("Nothing suspicious found")
		return nil
	}
	for i, f := range findings {
		fmt.Printf("%d. %s\n   Reason: %s\n", i+1, truncate(f.Text, 80), f.Reasoning)
		for _, src := range f.Sources {
			fmt.Println("   Source:", src)
		}
	}
	return nil
}
