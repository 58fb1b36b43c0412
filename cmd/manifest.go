package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/ardhi-group/parcel-cli/internal/boundary"
)

// loadManifest describes a multi-level catalog import.
type loadManifest struct {
	Levels []manifestLevel `yaml:"levels"`
}

type manifestLevel struct {
	Level       string `yaml:"level"`
	Shapefile   string `yaml:"shapefile"`
	NameField   string `yaml:"name_field"`
	IDField     string `yaml:"id_field"`
	ParentField string `yaml:"parent_field"`
}

var catalogLoadManifestCmd = &cobra.Command{
	Use:   "load-manifest <manifest.yaml>",
	Short: "Import all hierarchy levels from a YAML manifest",
	Long:  "Reads a YAML manifest listing one shapefile per hierarchy level and imports them in cascade order, so parent levels exist before their children.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return eris.Wrapf(err, "read manifest %s", args[0])
		}
		var manifest loadManifest
		if err := yaml.Unmarshal(data, &manifest); err != nil {
			return eris.Wrap(err, "parse manifest")
		}
		if len(manifest.Levels) == 0 {
			return eris.New("manifest lists no levels")
		}

		entries := map[boundary.Level]manifestLevel{}
		for _, entry := range manifest.Levels {
			level := boundary.Level(entry.Level)
			if !knownLevel(level) {
				return eris.Errorf("manifest: unknown level %q", entry.Level)
			}
			if entry.Shapefile == "" {
				return eris.Errorf("manifest: level %q has no shapefile", entry.Level)
			}
			entries[level] = entry
		}

		ctx := cmd.Context()
		catalog, closeCatalog, err := openCatalog(ctx)
		if err != nil {
			return err
		}
		defer closeCatalog()

		if err := catalog.Migrate(ctx); err != nil {
			return err
		}

		counts := map[string]int64{}
		for _, level := range boundary.Levels() {
			entry, ok := entries[level]
			if !ok {
				continue
			}
			units, err := boundary.LoadShapefile(entry.Shapefile, boundary.ShapefileOptions{
				NameField:   orDefault(entry.NameField, cfg.Catalog.NameField),
				IDField:     orDefault(entry.IDField, cfg.Catalog.IDField),
				ParentField: orDefault(entry.ParentField, cfg.Catalog.ParentField),
			})
			if err != nil {
				return eris.Wrapf(err, "load level %s", level)
			}
			n, err := catalog.UpsertUnits(ctx, level, units)
			if err != nil {
				return eris.Wrapf(err, "upsert level %s", level)
			}
			counts[string(level)] = n
			zap.L().Info("manifest level loaded",
				zap.String("level", string(level)),
				zap.String("shapefile", entry.Shapefile),
				zap.Int64("upserted", n),
			)
		}

		return printJSON(counts)
	},
}

func knownLevel(level boundary.Level) bool {
	for _, l := range boundary.Levels() {
		if l == level {
			return true
		}
	}
	return false
}

func orDefault(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}

func init() {
	catalogCmd.AddCommand(catalogLoadManifestCmd)
}
