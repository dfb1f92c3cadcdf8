// Nodeboard is the network device dashboard.
//
// It lists the devices held by a nodeboard-api inventory service, shows each
// device's interface health, and lets an operator edit a device in a modal.
// The same dashboard runs in the terminal or in a browser.
//
// Usage:
//
//	nodeboard [command] [flags]
//
// Running without arguments opens the terminal dashboard.
// See 'nodeboard --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/muurk/nodeboard/internal/urls"
	"github.com/muurk/nodeboard/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "nodeboard",
	Short: "Network device dashboard",
	Long: `A dashboard for the devices registered with a nodeboard-api inventory service.

The device list shows how many of each device's interfaces are up. Selecting a
device opens it in a modal where its name, location and interfaces can be
edited and saved back to the inventory.

If no command is specified, the terminal dashboard launches automatically.
Use 'nodeboard web' for the browser version.

Getting started: ` + urls.GettingStarted,
	Version: version.Version,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: terminal dashboard when no subcommand provided
		return runTUI(cmd, args)
	},
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.Banner("nodeboard"))
	},
}
