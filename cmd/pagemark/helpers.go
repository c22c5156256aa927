// Shared helpers for the pagemark CLI.
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/mesh-intelligence/pagemark/internal/dom"
	"github.com/mesh-intelligence/pagemark/internal/flagging"
	"github.com/mesh-intelligence/pagemark/internal/oracle"
	"github.com/mesh-intelligence/pagemark/internal/paths"
	"github.com/mesh-intelligence/pagemark/internal/session"
	"github.com/mesh-intelligence/pagemark/internal/store"
)

const (
	fetchTimeout = 30 * time.Second
	userAgent    = "pagemark/" + version
)

// fetchPage loads and parses an HTML document from a URL or a local file
// path. File paths exist mostly for offline experiments and tests.
func fetchPage(target string) (*html.Node, error) {
	if !strings.HasPrefix(target, "http://") && !strings.HasPrefix(target, "https://") {
		f, err := os.Open(target)
		if err != nil {
			return nil, fmt.Errorf("open page file: %w", err)
		}
		defer f.Close()
		doc, err := dom.Parse(f)
		if err != nil {
			return nil, fmt.Errorf("parse page file: %w", err)
		}
		return doc, nil
	}

	client := &http.Client{Timeout: fetchTimeout}
	req, err := http.NewRequest(http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build page request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch page: status %d", resp.StatusCode)
	}

	doc, err := dom.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}
	return doc, nil
}

// newStoreClient builds the REST client from the effective settings.
func newStoreClient() (*store.Client, error) {
	return store.NewClient(store.Config{
		BaseURL: storeEndpoint(),
		APIKey:  storeAPIKey(),
	}, logger)
}

// newOracleClient builds the oracle client from config. The client may be
// unconfigured; callers check Configured().
func newOracleClient() *oracle.Client {
	return oracle.New(oracleConfig(), logger)
}

// openSession opens the local settings store under the data directory.
func openSession() (*session.Store, error) {
	dataDir, err := paths.ResolveDataDir(flagDataDir, config.GetString(cfgKeyDataDir))
	if err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}
	return session.Open(paths.SettingsDB(dataDir))
}

// newWorkflow assembles the submission workflow with the interactive
// confirmation gate.
func newWorkflow() (*flagging.Workflow, error) {
	client, err := newStoreClient()
	if err != nil {
		return nil, err
	}
	sess, err := openSession()
	if err != nil {
		return nil, err
	}
	defer sess.Close()
	username, err := sess.Username()
	if err != nil {
		return nil, err
	}

	return flagging.New(flagging.Config{
		Store:    client,
		Verifier: newOracleClient(),
		Confirm:  confirmDisagreement,
		Username: username,
		Log:      logger,
	}), nil
}

// confirmDisagreement shows the oracle's objection and asks the user
// whether to submit anyway.
func confirmDisagreement(result *oracle.VerifyResult) bool {
	fmt.Println("The verification oracle disagrees with this flag:")
	fmt.Println(" ", result.Reasoning)
	for _, src := range result.Sources {
		fmt.Printf("  - %s (%s)\n", src.URL, src.Title)
	}
	fmt.Print("Submit anyway? [y/N] ")

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

// printJSON writes v as indented JSON to stdout.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeDocument renders the document to the given file, or stdout when
// path is empty.
func writeDocument(doc *html.Node, path string) error {
	if path == "" {
		return dom.Render(os.Stdout, doc)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer f.Close()
	if err := dom.Render(f, doc); err != nil {
		return fmt.Errorf("write output file: %w", err)
	}
	return nil
}
