package proximity

import (
	"context"
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ardhi-group/parcel-cli/internal/geometry"
)

// maxPerCategory caps every stored category list.
const maxPerCategory = 10

// majorRoadClasses are the highway values that count as major roads.
var majorRoadClasses = map[string]bool{
	"motorway":  true,
	"trunk":     true,
	"primary":   true,
	"secondary": true,
	"tertiary":  true,
}

// Category is one mutually exclusive amenity bucket.
type Category string

const (
	CategoryRoad        Category = "road"
	CategoryHospital    Category = "hospital"
	CategorySchool      Category = "school"
	CategoryMarketplace Category = "marketplace"
	CategoryTransit     Category = "transit"
)

// Place is one ranked feature near a listing.
type Place struct {
	Name      string  `json:"name"`
	Kind      string  `json:"kind,omitempty"`
	DistanceM float64 `json:"distance_m"`
}

// Record is the proximity enrichment for one listing: nearest scalar fields
// per category plus the ranked top lists. Slices are ordered ascending by
// distance and hold at most ten entries.
type Record struct {
	ListingID string `json:"listing_id"`

	NearestRoad        *Place `json:"nearest_road,omitempty"`
	NearestMajorRoad   *Place `json:"nearest_major_road,omitempty"`
	NearestHospital    *Place `json:"nearest_hospital,omitempty"`
	NearestSchool      *Place `json:"nearest_school,omitempty"`
	NearestMarketplace *Place `json:"nearest_marketplace,omitempty"`

	Roads        []Place `json:"roads"`
	Hospitals    []Place `json:"hospitals"`
	Schools      []Place `json:"schools"`
	Marketplaces []Place `json:"marketplaces"`
	Transit      []Place `json:"transit"`
}

// NearbySearcher is the amenity data source. *Client implements it.
type NearbySearcher interface {
	Nearby(ctx context.Context, origin geometry.Point) ([]Element, error)
}

// Analyzer computes proximity records for listing polygons.
type Analyzer struct {
	searcher NearbySearcher
}

// NewAnalyzer creates an analyzer over the given amenity source.
func NewAnalyzer(searcher NearbySearcher) *Analyzer {
	return &Analyzer{searcher: searcher}
}

// Analyze queries amenities around the polygon and returns the ranked record.
//
// The search origin is the bounding-box midpoint, not the area centroid: for
// parcel-sized polygons the difference is negligible and the midpoint is
// cheaper. Any failure of the amenity query aborts the whole analysis; no
// partial record is produced.
func (a *Analyzer) Analyze(ctx context.Context, listingID string, poly *geometry.Polygon) (*Record, error) {
	if poly == nil {
		return nil, eris.New("proximity: nil polygon")
	}
	origin := poly.Bounds().Center()

	elements, err := a.searcher.Nearby(ctx, origin)
	if err != nil {
		return nil, eris.Wrap(err, "proximity: nearby search")
	}

	record := &Record{ListingID: listingID}
	buckets := map[Category][]Place{}
	var majorRoads []Place
	var skipped int

	for _, el := range elements {
		point, ok := el.Point()
		if !ok {
			skipped++
			continue
		}
		category, ok := classify(el.Tags)
		if !ok {
			continue
		}

		place := Place{
			Name:      displayName(el.Tags, category),
			Kind:      kindOf(el.Tags, category),
			DistanceM: geometry.HaversineM(origin, point),
		}
		buckets[category] = append(buckets[category], place)
		if category == CategoryRoad && majorRoadClasses[el.Tags["highway"]] {
			majorRoads = append(majorRoads, place)
		}
	}

	for cat, places := range buckets {
		sort.Slice(places, func(i, j int) bool { return places[i].DistanceM < places[j].DistanceM })
		buckets[cat] = places
	}
	sort.Slice(majorRoads, func(i, j int) bool { return majorRoads[i].DistanceM < majorRoads[j].DistanceM })

	record.Roads = truncate(buckets[CategoryRoad])
	record.Hospitals = truncate(buckets[CategoryHospital])
	record.Schools = truncate(buckets[CategorySchool])
	record.Marketplaces = truncate(buckets[CategoryMarketplace])
	record.Transit = truncate(buckets[CategoryTransit])

	record.NearestRoad = head(record.Roads)
	record.NearestMajorRoad = head(majorRoads)
	record.NearestHospital = head(record.Hospitals)
	record.NearestSchool = head(record.Schools)
	record.NearestMarketplace = head(record.Marketplaces)

	if skipped > 0 {
		zap.L().Debug("proximity: skipped elements without a resolvable point",
			zap.String("listing_id", listingID),
			zap.Int("skipped", skipped),
		)
	}
	return record, nil
}

// classify assigns an element to exactly one category. A highway tag wins
// over everything else; untagged or unrecognized elements are dropped.
func classify(tags map[string]string) (Category, bool) {
	if len(tags) == 0 {
		return "", false
	}
	if tags["highway"] != "" {
		return CategoryRoad, true
	}
	switch tags["amenity"] {
	case "hospital", "clinic":
		return CategoryHospital, true
	case "school", "university", "college":
		return CategorySchool, true
	case "marketplace":
		return CategoryMarketplace, true
	}
	switch tags["shop"] {
	case "supermarket", "mall":
		return CategoryMarketplace, true
	}
	if tags["public_transport"] != "" {
		return CategoryTransit, true
	}
	return "", false
}

// displayName prefers the name tag, falling back to a tag-derived label for
// the many unnamed residential roads and stops in OSM data.
func displayName(tags map[string]string, category Category) string {
	if name := tags["name"]; name != "" {
		return name
	}
	if kind := kindOf(tags, category); kind != "" {
		return "unnamed " + kind
	}
	return "unnamed " + string(category)
}

// kindOf returns the classifying tag value (highway class, amenity type, ...).
func kindOf(tags map[string]string, category Category) string {
	switch category {
	case CategoryRoad:
		return tags["highway"]
	case CategoryTransit:
		return tags["public_transport"]
	default:
		if v := tags["amenity"]; v != "" {
			return v
		}
		return tags["shop"]
	}
}

func truncate(places []Place) []Place {
	if len(places) > maxPerCategory {
		return places[:maxPerCategory]
	}
	return places
}

func head(places []Place) *Place {
	if len(places) == 0 {
		return nil
	}
	p := places[0]
	return &p
}
