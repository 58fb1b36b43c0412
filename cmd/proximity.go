package main

import (
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/ardhi-group/parcel-cli/internal/geometry"
	"github.com/ardhi-group/parcel-cli/internal/proximity"
	"github.com/ardhi-group/parcel-cli/internal/resilience"
)

var proximityListingID string

var proximityCmd = &cobra.Command{
	Use:   "proximity <geojson-file>",
	Short: "Analyze nearby amenities for a polygon",
	Long:  "Queries Overpass for roads, hospitals, schools, marketplaces (5 km) and public transport (1 km) around the polygon and prints the ranked proximity record. With --listing-id the record is also upserted to the store.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := readGeometry(args[0])
		if err != nil {
			return err
		}
		poly, err := geometry.ParsePolygon(raw)
		if err != nil {
			return eris.Wrapf(err, "parse %s", args[0])
		}

		retry := resilience.DefaultRetryConfig()
		retry.MaxAttempts = cfg.Overpass.MaxRetries
		retry.OnRetry = resilience.RetryLogger("overpass", "nearby")
		client := proximity.NewClient(proximity.ClientOptions{
			Endpoint:          cfg.Overpass.Endpoint,
			UserAgent:         cfg.Overpass.UserAgent,
			Timeout:           time.Duration(cfg.Overpass.TimeoutSecs) * time.Second,
			RequestsPerSecond: cfg.Overpass.RequestsPerSecond,
			Retry:             retry,
		})

		ctx := cmd.Context()
		record, err := proximity.NewAnalyzer(client).Analyze(ctx, proximityListingID, poly)
		if err != nil {
			return err
		}

		if proximityListingID != "" {
			environment, err := initEnv(ctx)
			if err != nil {
				return err
			}
			defer environment.Close()
			if err := environment.proximity.Upsert(ctx, record); err != nil {
				return err
			}
		}

		return printJSON(record)
	},
}

func init() {
	proximityCmd.Flags().StringVar(&proximityListingID, "listing-id", "", "persist the record for this listing id")
	rootCmd.AddCommand(proximityCmd)
}
