// Serve command runs the local PostgREST-compatible shim.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/pagemark/internal/server"
)

var (
	serveAddr   string
	serveDSN    string
	serveMemory bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the local PostgREST-compatible flag store",
	Long: `Serve exposes the flagged_content and flagged_links tables over the
PostgREST subset the client uses, backed by Postgres (--dsn) or an
in-process store (--memory). Point store_endpoint at it to run the whole
system locally.

Example:
  pagemark serve --addr :3000 --dsn "postgres://pagemark@localhost/pagemark?sslmode=disable"
  pagemark serve --addr :3000 --memory`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":3000", "listen address")
	serveCmd.Flags().StringVar(&serveDSN, "dsn", "", "postgres connection string")
	serveCmd.Flags().BoolVar(&serveMemory, "memory", false, "use an in-process store instead of postgres")
}

func runServe(cmd *cobra.Command, args []string) error {
	var store server.FlagStore
	switch {
	case serveMemory:
		store = server.NewMemoryStore()
	case serveDSN != "":
		pg, err := server.OpenPostgres(serveDSN)
		if err != nil {
			return err
		}
		defer pg.Close()
		store = pg
	default:
		return fmt.Errorf("either --dsn or --memory is required")
	}

	fmt.Println("Serving flag store on", serveAddr)
	return server.New(store, logger).Router().Run(serveAddr)
}
