package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/ardhi-group/parcel-cli/internal/boundary"
	"github.com/ardhi-group/parcel-cli/internal/geometry"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <geojson-file>",
	Short: "Resolve a polygon's administrative location",
	Long:  "Walks the Region > District > Ward > Street/Village hierarchy in the boundary catalog and prints the matched unit at each level. Unmatched levels are null.",
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

		ctx := cmd.Context()
		catalog, closeCatalog, err := openCatalog(ctx)
		if err != nil {
			return err
		}
		defer closeCatalog()

		match, err := boundary.NewResolver(catalog).Resolve(ctx, poly)
		if err != nil {
			return err
		}
		return printJSON(match)
	},
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}
