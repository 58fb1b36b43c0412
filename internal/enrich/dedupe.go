package enrich

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ardhi-group/parcel-cli/internal/comparator"
	"github.com/ardhi-group/parcel-cli/internal/geometry"
	"github.com/ardhi-group/parcel-cli/internal/listing"
)

// Pair is one listing pair scoring at or above the scan threshold.
type Pair struct {
	ListingA   string `json:"listing_a"`
	ListingB   string `json:"listing_b"`
	Similarity int    `json:"similarity"`
}

// ScanReport is the outcome of a batch duplicate scan.
type ScanReport struct {
	RunID     string    `json:"run_id"`
	Generated time.Time `json:"generated"`
	Threshold int       `json:"threshold"`
	Scanned   int       `json:"scanned"`
	Skipped   int       `json:"skipped"`
	Pairs     []Pair    `json:"pairs"`
}

// ScanDuplicates compares every listing pair and reports those scoring at or
// above the threshold. Comparisons run with bounded concurrency; listings
// with unparseable geometry are skipped and counted. Each scan gets a fresh
// run id for report filing.
func ScanDuplicates(ctx context.Context, listings []listing.Listing, threshold, concurrency int) (*ScanReport, error) {
	if threshold <= 0 {
		threshold = 70
	}
	if concurrency <= 0 {
		concurrency = 5
	}

	report := &ScanReport{
		RunID:     uuid.NewString(),
		Generated: time.Now().UTC(),
		Threshold: threshold,
	}

	type parsed struct {
		id   string
		poly *geometry.Polygon
	}
	polys := make([]parsed, 0, len(listings))
	for _, l := range listings {
		poly, err := geometry.ParsePolygon(l.Geometry)
		if err != nil {
			zap.L().Debug("dedupe: skipping listing with malformed geometry",
				zap.String("listing_id", l.ID),
				zap.Error(err),
			)
			report.Skipped++
			continue
		}
		polys = append(polys, parsed{id: l.ID, poly: poly})
	}
	report.Scanned = len(polys)

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i := range polys {
		for j := i + 1; j < len(polys); j++ {
			a, b := polys[i], polys[j]
			g.Go(func() error {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				score := comparator.Similarity(a.poly, b.poly)
				if score >= threshold {
					mu.Lock()
					report.Pairs = append(report.Pairs, Pair{
						ListingA:   a.id,
						ListingB:   b.id,
						Similarity: score,
					})
					mu.Unlock()
				}
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(report.Pairs, func(i, j int) bool {
		if report.Pairs[i].Similarity != report.Pairs[j].Similarity {
			return report.Pairs[i].Similarity > report.Pairs[j].Similarity
		}
		if report.Pairs[i].ListingA != report.Pairs[j].ListingA {
			return report.Pairs[i].ListingA < report.Pairs[j].ListingA
		}
		return report.Pairs[i].ListingB < report.Pairs[j].ListingB
	})

	zap.L().Info("dedupe: scan complete",
		zap.String("run_id", report.RunID),
		zap.Int("scanned", report.Scanned),
		zap.Int("skipped", report.Skipped),
		zap.Int("pairs", len(report.Pairs)),
	)
	return report, nil
}
