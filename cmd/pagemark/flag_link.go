// Flag-link command submits a flag against a link URL.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/pagemark/internal/flagging"
)

var (
	linkFlagKind   string
	linkNote       string
	linkConfidence int
	linkFrom       string
)

var flagLinkCmd = &cobra.Command{
	Use:   "flag-link <link-url>",
	Short: "Flag a link URL rather than in-page content",
	Long: `Flag-link records a flag against a whole URL, the CLI counterpart
of the extension's right-click context action on links. Link flags match
later visits by normalized URL, so tracking-free variants of the same
address still hit.

Example:
  pagemark flag-link https://scam.example/offer --kind scam \
      --from https://news.example/a`,
	Args: cobra.ExactArgs(1),
	RunE: runFlagLink,
}

func init() {
	flagLinkCmd.Flags().StringVar(&linkFlagKind, "kind", "", "flag kind: scam, misinformation, fake_profile, other")
	flagLinkCmd.Flags().StringVar(&linkFrom, "from", "", "URL of the page the link was found on")
	flagLinkCmd.Flags().StringVar(&linkNote, "note", "", "optional note")
	flagLinkCmd.Flags().IntVar(&linkConfidence, "confidence", 50, "confidence percent, 0-100")
	_ = flagLinkCmd.MarkFlagRequired("kind")
}

func runFlagLink(cmd *cobra.Command, args []string) error {
	workflow, err := newWorkflow()
	if err != nil {
		return err
	}

	stored, err := workflow.SubmitLink(cmd.Context(), flagging.LinkRequest{
		LinkURL:    args[0],
		FromURL:    linkFrom,
		FlagKind:   linkFlagKind,
		Note:       linkNote,
		Confidence: linkConfidence,
	})
	if err != nil {
		return err
	}

	if flagJSON {
		return printJSON(stored)
	}
	fmt.Printf("Flagged link as %s (id %s)\n", stored.FlagKind, stored.ID)
	return nil
}
