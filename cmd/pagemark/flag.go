// Flag command submits a content flag against a page.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/net/html"

	"github.com/mesh-intelligence/pagemark/internal/dom"
	"github.com/mesh-intelligence/pagemark/internal/flagging"
	"github.com/mesh-intelligence/pagemark/pkg/types"
)

var (
	flagFlagKind   string
	flagNote       string
	flagConfidence int
	flagText       string
	flagImageSrc   string
	flagVideoSrc   string
	flagOut        string
)

var flagCmd = &cobra.Command{
	Use:   "flag <page-url>",
	Short: "Flag content on a page",
	Long: `Flag submits a content flag against a page. The selection is given
with exactly one of --text, --image, or --video; for --text the page is
searched for the first element containing that text, which anchors the
flag's locator and highlight.

High-stakes kinds (scam, misinformation) are checked against the
verification oracle when one is configured; if the oracle disagrees you
are asked to confirm before anything is stored.

Example:
  pagemark flag https://news.example/a --text "moon made of cheese" \
      --kind misinformation --confidence 80 --out flagged.html`,
	Args: cobra.ExactArgs(1),
	RunE: runFlag,
}

func init() {
	flagCmd.Flags().StringVar(&flagFlagKind, "kind", "", "flag kind: scam, misinformation, fake_profile, other")
	flagCmd.Flags().StringVar(&flagText, "text", "", "selected text to flag")
	flagCmd.Flags().StringVar(&flagImageSrc, "image", "", "source URL of an image to flag")
	flagCmd.Flags().StringVar(&flagVideoSrc, "video", "", "source URL of a video to flag")
	flagCmd.Flags().StringVar(&flagNote, "note", "", "optional note")
	flagCmd.Flags().IntVar(&flagConfidence, "confidence", 50, "confidence percent, 0-100")
	flagCmd.Flags().StringVar(&flagOut, "out", "", "write the highlighted page to this file")
	_ = flagCmd.MarkFlagRequired("kind")
}

func runFlag(cmd *cobra.Command, args []string) error {
	pageURL := args[0]

	selection, err := buildSelection()
	if err != nil {
		return err
	}

	doc, err := fetchPage(pageURL)
	if err != nil {
		return err
	}
	node := selectionNode(doc, selection)
	if node == nil {
		return fmt.Errorf("selection not found on page")
	}

	workflow, err := newWorkflow()
	if err != nil {
		return err
	}

	result, err := workflow.SubmitContent(cmd.Context(), flagging.ContentRequest{
		Doc:        doc,
		Node:       node,
		Selection:  selection,
		PageURL:    pageURL,
		FlagKind:   flagFlagKind,
		Note:       flagNote,
		Confidence: flagConfidence,
	})
	if err != nil {
		return err
	}
	if result.Warning != "" {
		fmt.Println("Warning:", result.Warning)
	}

	if flagJSON {
		if err := printJSON(result.Record); err != nil {
			return err
		}
	} else {
		fmt.Printf("Flagged as %s (id %s)\n", result.Record.FlagKind, result.Record.ID)
		if result.Record.Performed {
			verdict := "agreed"
			if !result.Record.Agreed {
				verdict = "disagreed"
			}
			fmt.Println("Verification:", verdict)
		}
	}

	if flagOut != "" {
		return writeDocument(doc, flagOut)
	}
	return nil
}

// buildSelection turns the selection flags into a tagged selection,
// requiring exactly one of them.
func buildSelection() (types.SelectedContent, error) {
	set := 0
	for _, v := range []string{flagText, flagImageSrc, flagVideoSrc} {
		if v != "" {
			set++
		}
	}
	if set != 1 {
		return types.SelectedContent{}, fmt.Errorf("exactly one of --text, --image, --video is required")
	}
	switch {
	case flagText != "":
		return types.TextSelection(flagText), nil
	case flagImageSrc != "":
		return types.ImageSelection(flagImageSrc, ""), nil
	default:
		return types.VideoSelection(flagVideoSrc), nil
	}
}

// selectionNode locates the page node the selection refers to: the text
// node containing the selected text, or the media element with the
// matching source.
func selectionNode(doc *html.Node, selection types.SelectedContent) *html.Node {
	switch selection.Kind {
	case types.ContentText:
		return dom.FindText(doc, selection.Text)
	case types.ContentImage:
		return elementBySrc(doc, "img", selection.Src)
	case types.ContentVideo:
		return elementBySrc(doc, "video", selection.Src)
	}
	return nil
}

func elementBySrc(doc *html.Node, tag, src string) *html.Node {
	var found *html.Node
	dom.Elements(doc, func(n *html.Node) bool {
		if n.Data == tag && dom.Attr(n, "src") == src {
			found = n
			return false
		}
		return true
	})
	return found
}
