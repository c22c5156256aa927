// Package main provides the pagemark CLI.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/mesh-intelligence/pagemark/internal/flagging"
	"github.com/mesh-intelligence/pagemark/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps an error to the CLI exit convention: user-correctable
// problems (validation, declined confirmation) exit 1, everything else
// (store, oracle, transport) exits 2.
func exitCode(err error) int {
	userErrors := []error{
		types.ErrInvalidFlagKind,
		types.ErrInvalidContentKind,
		types.ErrContentEmpty,
		types.ErrContentTooLong,
		types.ErrNoteTooLong,
		types.ErrURLEmpty,
		types.ErrURLTooLong,
		types.ErrURLInvalid,
		types.ErrURLScheme,
		types.ErrLocatorTooLong,
		types.ErrInvalidConfidence,
		types.ErrNoSelection,
		types.ErrSourceMissing,
		flagging.ErrDeclined,
	}
	for _, target := range userErrors {
		if errors.Is(err, target) {
			return exitUserError
		}
	}
	return exitSysError
}
