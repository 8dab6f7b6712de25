// Command menus manages menu trees from the command line: schema
// migrations, yaml seeding and tree inspection.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type rootFlags struct {
	driver   string
	dsn      string
	logLevel string
	demo     bool
	actor    string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "menus",
		Short: "Manage hierarchical navigation menus",
		Long: `menus manages navigation menus stored through go-menus.

Configuration is read from MENUS_* environment variables. The --dsn and
--driver flags override the storage section and switch to the bun provider.`,
		SilenceUsage: true,
	}

	persistent := cmd.PersistentFlags()
	persistent.StringVar(&flags.driver, "driver", "", "Database driver (sqlite3, postgres)")
	persistent.StringVar(&flags.dsn, "dsn", "", "Database DSN; enables bun storage")
	persistent.StringVar(&flags.logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	persistent.BoolVar(&flags.demo, "demo", false, "Seed the demo menus before running the command")
	persistent.StringVar(&flags.actor, "actor", "cli", "Actor id recorded on writes")

	cmd.AddCommand(
		newMigrateCmd(flags),
		newSeedCmd(flags),
		newListCmd(flags),
		newTreeCmd(flags),
		newRenderCmd(flags),
	)
	return cmd
}
