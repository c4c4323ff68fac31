// The storefront binary bundles the HTTP server, the queue worker, and a
// few operational helpers behind one cobra CLI.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "storefront",
	Short: "Storefront e-commerce backend",
}

func main() {
	rootCmd.AddCommand(serveCmd, queueWorkCmd, routeListCmd, seedCmd, tokenCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
