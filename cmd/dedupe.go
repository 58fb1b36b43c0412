package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ardhi-group/parcel-cli/internal/enrich"
	"github.com/ardhi-group/parcel-cli/internal/report"
)

var (
	dedupeThreshold int
	dedupeOutput    string
)

var dedupeCmd = &cobra.Command{
	Use:   "dedupe",
	Short: "Scan all listings for likely duplicate pairs",
	Long:  "Compares every listing pair with bounded concurrency and reports pairs scoring at or above the similarity threshold. With --output the report is written as an XLSX workbook for reviewer triage.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		environment, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer environment.Close()

		listings, err := environment.listings.All(ctx)
		if err != nil {
			return err
		}

		threshold := dedupeThreshold
		if threshold <= 0 {
			threshold = cfg.Enrich.SimilarityThreshold
		}
		scan, err := enrich.ScanDuplicates(ctx, listings, threshold, cfg.Enrich.MaxConcurrentListings)
		if err != nil {
			return err
		}

		if dedupeOutput != "" {
			if err := report.WriteDuplicateReport(dedupeOutput, scan); err != nil {
				return err
			}
			zap.L().Info("duplicate report written",
				zap.String("path", dedupeOutput),
				zap.String("run_id", scan.RunID),
			)
		}

		return printJSON(scan)
	},
}

func init() {
	dedupeCmd.Flags().IntVar(&dedupeThreshold, "threshold", 0, "similarity threshold 1-100 (default from config)")
	dedupeCmd.Flags().StringVar(&dedupeOutput, "output", "", "write an XLSX report to this path")
	rootCmd.AddCommand(dedupeCmd)
}
