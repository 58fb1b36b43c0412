package main

import (
	"github.com/spf13/cobra"

	"go.uber.org/zap"
)

var enrichCmd = &cobra.Command{
	Use:   "enrich <listing-id>...",
	Short: "Run the full enrichment pipeline for listings",
	Long:  "For each listing: validate the polygon, scan for likely duplicates, resolve the administrative boundary and compute the amenity proximity record. One listing's failure does not abort the batch.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		environment, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer environment.Close()

		var outcomes []any
		var failures int
		for _, id := range args {
			outcome, err := environment.pipeline.Enrich(ctx, id)
			if err != nil {
				zap.L().Error("enrichment failed",
					zap.String("listing_id", id),
					zap.Error(err),
				)
				failures++
				outcomes = append(outcomes, map[string]string{
					"listing_id": id,
					"error":      err.Error(),
				})
				continue
			}
			outcomes = append(outcomes, outcome)
		}

		if err := printJSON(outcomes); err != nil {
			return err
		}
		if failures > 0 {
			zap.L().Warn("enrichment batch finished with failures",
				zap.Int("failed", failures),
				zap.Int("total", len(args)),
			)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(enrichCmd)
}
