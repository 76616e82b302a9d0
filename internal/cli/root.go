// Package cli implements the vendo command line.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is stamped at build time.
var Version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   "vendo",
	Short: "vendo is a self-service vending machine simulator",
	Long: `vendo simulates a self-service vending machine: a customer selects a
drink, pays by cash or QR code, receives change when due, and collects
the dispensed item. The machine is driven entirely by a transition-table
state machine and exposes an HTTP API for presentation layers and for
the remote payer's phone.`,
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the vendo version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("vendo", Version)
	},
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
