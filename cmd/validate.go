package main

import (
	"github.com/spf13/cobra"

	"github.com/ardhi-group/parcel-cli/internal/validator"
)

var validateCmd = &cobra.Command{
	Use:   "validate <geojson-file>",
	Short: "Validate a listing polygon",
	Long:  "Runs the full polygon validation: structure, self-intersection, area and aspect-ratio bounds, vertex count, Tanzania bounds and convexity. Pass - to read from stdin.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := readGeometry(args[0])
		if err != nil {
			return err
		}

		result := validator.Validate(raw)
		if err := printJSON(result); err != nil {
			return err
		}
		if !result.Valid {
			cmd.SilenceUsage = true
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
