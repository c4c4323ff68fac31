package main

import (
	"github.com/spf13/cobra"

	"github.com/marketlane/storefront/internal/server"
)

var queueWorkersFlag int

// storefront queue:work: run the queue workers and change-stream watchers
// without the HTTP server.
var queueWorkCmd = &cobra.Command{
	Use:   "queue:work",
	Short: "Run queue workers and document-change watchers",
	RunE: func(cmd *cobra.Command, args []string) error {
		return server.StartWorker(queueWorkersFlag)
	},
}

func init() {
	queueWorkCmd.Flags().IntVarP(&queueWorkersFlag, "workers", "w", 0, "number of workers (default from QUEUE_WORKERS)")
}
