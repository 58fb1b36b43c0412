package boundary

import (
	"strings"

	"github.com/google/uuid"
	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	geom "github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/charmap"
)

// ShapefileOptions configures a catalog import from a shapefile.
type ShapefileOptions struct {
	NameField   string // DBF field holding the unit name (required)
	IDField     string // DBF field holding a stable id; empty = generate UUIDs
	ParentField string // DBF field holding the parent unit id (required below region level)
}

// LoadShapefile reads administrative boundary polygons from a shapefile and
// returns catalog units with GeoJSON geometry. Non-polygon shapes and shapes
// with no valid rings are skipped with a log entry. DBF attributes are decoded
// from code page 1252, the common encoding for boundary dumps.
func LoadShapefile(path string, opts ShapefileOptions) ([]Unit, error) {
	if opts.NameField == "" {
		return nil, eris.New("boundary: shapefile name field is required")
	}

	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "boundary: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	fields := reader.Fields()
	fieldIdx := make(map[string]int, len(fields))
	for i, f := range fields {
		name := strings.TrimRight(f.String(), "\x00")
		fieldIdx[strings.ToLower(name)] = i
	}

	nameIdx, ok := fieldIdx[strings.ToLower(opts.NameField)]
	if !ok {
		return nil, eris.Errorf("boundary: shapefile has no field %q", opts.NameField)
	}
	idIdx, hasID := fieldIdx[strings.ToLower(opts.IDField)]
	parentIdx, hasParent := fieldIdx[strings.ToLower(opts.ParentField)]

	decoder := charmap.Windows1252.NewDecoder()
	attribute := func(idx int) string {
		raw := strings.TrimRight(reader.Attribute(idx), "\x00")
		decoded, err := decoder.String(raw)
		if err != nil {
			return strings.TrimSpace(raw)
		}
		return strings.TrimSpace(decoded)
	}

	var units []Unit
	var skipped int
	for reader.Next() {
		n, shape := reader.Shape()

		poly, ok := shape.(*shp.Polygon)
		if !ok {
			skipped++
			continue
		}
		g := polygonToMultiPolygon(poly)
		if g == nil {
			skipped++
			continue
		}
		encoded, err := geojson.Marshal(g)
		if err != nil {
			zap.L().Warn("boundary: failed to encode shape, skipping",
				zap.Int("shape", n), zap.Error(err))
			skipped++
			continue
		}

		u := Unit{Name: attribute(nameIdx), Geometry: encoded}
		if opts.IDField != "" && hasID {
			u.ID = attribute(idIdx)
		}
		if u.ID == "" {
			u.ID = uuid.NewString()
		}
		if opts.ParentField != "" && hasParent {
			u.ParentID = attribute(parentIdx)
		}
		units = append(units, u)
	}

	if skipped > 0 {
		zap.L().Info("boundary: skipped shapes during import",
			zap.String("path", path), zap.Int("skipped", skipped))
	}
	return units, nil
}

// polygonToMultiPolygon converts a shapefile polygon to a go-geom
// MultiPolygon. Malformed parts are dropped; nil is returned when no part
// survives.
func polygonToMultiPolygon(p *shp.Polygon) geom.T {
	if p == nil || p.NumParts == 0 || len(p.Points) == 0 {
		return nil
	}

	mp := geom.NewMultiPolygon(geom.XY)
	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		end := int32(len(p.Points))
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		}

		flat := make([]float64, 0, (end-start)*2)
		for j := start; j < end; j++ {
			flat = append(flat, p.Points[j].X, p.Points[j].Y)
		}

		ring := geom.NewLinearRingFlat(geom.XY, flat)
		part := geom.NewPolygon(geom.XY)
		if err := part.Push(ring); err != nil {
			zap.L().Debug("boundary: skipping malformed polygon ring", zap.Int32("part", i), zap.Error(err))
			continue
		}
		if err := mp.Push(part); err != nil {
			zap.L().Debug("boundary: skipping malformed polygon part", zap.Int32("part", i), zap.Error(err))
			continue
		}
	}

	if mp.NumPolygons() == 0 {
		return nil
	}
	return mp
}
