package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ardhi-group/parcel-cli/internal/listing"
	"github.com/ardhi-group/parcel-cli/internal/validator"
)

var listingCmd = &cobra.Command{
	Use:   "listing",
	Short: "Manage listing polygons",
}

var listingAddForce bool

var listingAddCmd = &cobra.Command{
	Use:   "add <listing-id> <geojson-file>",
	Short: "Store a listing polygon",
	Long:  "Validates and stores a listing polygon. Polygons failing validation are rejected unless --force is given.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]
		raw, err := readGeometry(args[1])
		if err != nil {
			return err
		}

		result := validator.Validate(raw)
		if !result.Valid && !listingAddForce {
			cmd.SilenceUsage = true
			return printJSON(result)
		}

		ctx := cmd.Context()
		environment, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer environment.Close()

		if err := environment.listings.Migrate(ctx); err != nil {
			return err
		}
		if err := environment.listings.Upsert(ctx, listing.Listing{ID: id, Geometry: raw}); err != nil {
			return err
		}

		zap.L().Info("listing stored",
			zap.String("listing_id", id),
			zap.Bool("valid", result.Valid),
		)
		return printJSON(result)
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create all database tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		environment, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer environment.Close()

		if err := environment.migrate(ctx); err != nil {
			return err
		}
		zap.L().Info("migrations complete")
		return nil
	},
}

func init() {
	listingAddCmd.Flags().BoolVar(&listingAddForce, "force", false, "store the polygon even if validation fails")
	listingCmd.AddCommand(listingAddCmd)
	rootCmd.AddCommand(listingCmd)
	rootCmd.AddCommand(migrateCmd)
}
