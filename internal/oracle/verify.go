package oracle

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mesh-intelligence/pagemark/pkg/types"
)

// VerifyResult is the oracle's judgment on a proposed flag.
type VerifyResult struct {
	Agrees    bool           `json:"agrees_with_flag"`
	Reasoning string         `json:"reasoning"`
	Sources   []types.Source `json:"sources"`
}

const verifySystemPrompt = `You are a fact-checking assistant. You are given a piece of web content and a category a reader wants to flag it as. Judge whether the flag is justified. Cite real, relevant sources where possible. Respond only with the requested JSON.`

var verifySchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"agrees_with_flag": {"type": "boolean"},
		"reasoning": {"type": "string"},
		"sources": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"url": {"type": "string"},
					"title": {"type": "string"},
					"relevance": {"type": "string"}
				},
				"required": ["url", "title", "relevance"],
				"additionalProperties": false
			}
		}
	},
	"required": ["agrees_with_flag", "reasoning", "sources"],
	"additionalProperties": false
}`)

// VerifyFlag asks the oracle whether flagging the given content under
// flagKind is justified. Returns ErrNotConfigured when no key is set.
func (c *Client) VerifyFlag(ctx context.Context, flagKind, content, pageURL string) (*VerifyResult, error) {
	userPrompt := fmt.Sprintf(
		"A reader wants to flag the following content as %q.\n\nPage URL: %s\n\nContent:\n%s\n\nDoes the evidence support this flag?",
		flagKind, pageURL, content)

	raw, err := c.complete(ctx, verifySystemPrompt, userPrompt, "flag_verification", verifySchema)
	if err != nil {
		return nil, err
	}

	var result VerifyResult
	if err := decodeStructured(raw, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
