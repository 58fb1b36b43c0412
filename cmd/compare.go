package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/ardhi-group/parcel-cli/internal/comparator"
	"github.com/ardhi-group/parcel-cli/internal/geometry"
)

var compareCmd = &cobra.Command{
	Use:   "compare <geojson-file-1> <geojson-file-2>",
	Short: "Compare two polygons for overlap and similarity",
	Long:  "Computes the overlap (area and percentage relative to the first polygon) and the 0-100 duplicate-similarity score for two listing polygons.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw1, err := readGeometry(args[0])
		if err != nil {
			return err
		}
		raw2, err := readGeometry(args[1])
		if err != nil {
			return err
		}

		p1, err := geometry.ParsePolygon(raw1)
		if err != nil {
			return eris.Wrapf(err, "parse %s", args[0])
		}
		p2, err := geometry.ParsePolygon(raw2)
		if err != nil {
			return eris.Wrapf(err, "parse %s", args[1])
		}

		return printJSON(struct {
			Overlap    comparator.Overlap `json:"overlap"`
			Similarity int                `json:"similarity"`
		}{
			Overlap:    comparator.ComputeOverlap(p1, p2),
			Similarity: comparator.Similarity(p1, p2),
		})
	},
}

func init() {
	rootCmd.AddCommand(compareCmd)
}
