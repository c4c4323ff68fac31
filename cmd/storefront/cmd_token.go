package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/marketlane/storefront/config"
	"github.com/marketlane/storefront/pkg/auth"
)

var (
	tokenUID string
	tokenTTL time.Duration
)

// storefront token: mint a bearer token for local testing, e.g. to call
// GET /analytics as a seeded admin.
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a JWT for a uid (local testing)",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Load(); err != nil {
			return err
		}
		if tokenUID == "" {
			return fmt.Errorf("--uid is required")
		}

		t, err := auth.GenerateToken(tokenUID, "", tokenTTL)
		if err != nil {
			return err
		}

		fmt.Println(t)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenUID, "uid", "", "user ID to embed in the token")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "token lifetime")
}
