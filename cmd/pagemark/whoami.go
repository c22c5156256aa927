// Whoami command prints the pseudonymous display name.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Print the display name flags are submitted under",
	Long: `Whoami prints the pseudonymous display name attached to submitted
flags. The name is generated on first use and kept in the local settings
store.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := openSession()
		if err != nil {
			return err
		}
		defer sess.Close()

		name, err := sess.Username()
		if err != nil {
			return err
		}
		fmt.Println(name)
		return nil
	},
}
