package oracle

import (
	"context"
	"encoding/json"
	"fmt"
)

// ScanResult is the oracle's judgment on one chunk of page text.
type ScanResult struct {
	Suspicious bool     `json:"is_suspicious"`
	Reasoning  string   `json:"reasoning"`
	Sources    []string `json:"sources"`
}

const scanSystemPrompt = `You are a content-screening assistant. You are given a passage of text from a web page. Judge whether the passage contains likely misinformation, a scam, or other deceptive content. Be conservative: flag only when the passage itself makes a checkable, dubious claim. Respond only with the requested JSON.`

var scanSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"is_suspicious": {"type": "boolean"},
		"reasoning": {"type": "string"},
		"sources": {
			"type": "array",
			"items": {"type": "string"}
		}
	},
	"required": ["is_suspicious", "reasoning", "sources"],
	"additionalProperties": false
}`)

// CheckChunk asks the oracle whether a passage of page text is
// suspicious. Returns ErrNotConfigured when no key is set.
func (c *Client) CheckChunk(ctx context.Context, chunk, pageURL string) (*ScanResult, error) {
	userPrompt := fmt.Sprintf("Page URL: %s\n\nPassage:\n%s", pageURL, chunk)

	raw, err := c.complete(ctx, scanSystemPrompt, userPrompt, "content_scan", scanSchema)
	if err != nil {
		return nil, err
	}

	var result ScanResult
	if err := decodeStructured(raw, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
