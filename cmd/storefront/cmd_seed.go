package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/marketlane/storefront/app/models"
	"github.com/marketlane/storefront/app/repositories"
	"github.com/marketlane/storefront/config"
)

// storefront seed: load a demo admin user and a small catalogue so the
// service is explorable on a fresh database.
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed demo users and products",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Load(); err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		store, err := repositories.Connect(ctx, config.MongoURI(), config.MongoDB())
		if err != nil {
			return err
		}
		defer store.Close(context.Background())

		users := []models.User{
			{UID: "admin-1", Email: "admin@storefront.app", Role: models.RoleAdmin},
			{UID: "user-1", Email: "alex@example.com", Role: models.RoleCustomer},
		}
		for i := range users {
			if err := store.UpsertUser(ctx, &users[i]); err != nil {
				return err
			}
		}

		products := []models.Product{
			{
				ID:          "prod-espresso",
				Name:        "Espresso Machine",
				Category:    "kitchen",
				Description: "Compact 15-bar espresso machine",
				Tags:        []string{"coffee", "appliance"},
				Price:       249.99,
				Stock:       40,
			},
			{
				ID:       "prod-grinder",
				Name:     "Burr Grinder",
				Category: "kitchen",
				Tags:     []string{"coffee"},
				Price:    89.50,
				Stock:    120,
			},
			{
				ID:       "prod-kettle",
				Name:     "Gooseneck Kettle",
				Category: "kitchen",
				Price:    64.00,
				Stock:    75,
			},
		}
		for i := range products {
			if err := store.UpsertProduct(ctx, &products[i]); err != nil {
				return err
			}
		}

		fmt.Printf("Seeded %d users and %d products.\n", len(users), len(products))
		return nil
	},
}
