// Package enrich runs the post-submission pipeline for a listing polygon:
// validation, duplicate scan against existing listings, then boundary
// resolution and proximity analysis in parallel.
package enrich

import (
	"context"
	"sort"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ardhi-group/parcel-cli/internal/boundary"
	"github.com/ardhi-group/parcel-cli/internal/comparator"
	"github.com/ardhi-group/parcel-cli/internal/geometry"
	"github.com/ardhi-group/parcel-cli/internal/listing"
	"github.com/ardhi-group/parcel-cli/internal/proximity"
	"github.com/ardhi-group/parcel-cli/internal/validator"
)

// ListingSource supplies listings and persists their resolved location.
// *listing.Store implements it.
type ListingSource interface {
	Get(ctx context.Context, id string) (*listing.Listing, error)
	Candidates(ctx context.Context, excludeID string, limit int) ([]listing.Listing, error)
	SaveBoundaryMatch(ctx context.Context, id string, match boundary.Match) error
}

// BoundaryResolver resolves a polygon's administrative location.
type BoundaryResolver interface {
	Resolve(ctx context.Context, poly *geometry.Polygon) (boundary.Match, error)
}

// ProximityAnalyzer computes a proximity record for a listing polygon.
type ProximityAnalyzer interface {
	Analyze(ctx context.Context, listingID string, poly *geometry.Polygon) (*proximity.Record, error)
}

// ProximityStore persists proximity records.
type ProximityStore interface {
	Upsert(ctx context.Context, record *proximity.Record) error
}

// Options tunes the pipeline.
type Options struct {
	// SimilarityThreshold flags candidate pairs at or above this score as
	// likely duplicates. Default: 70.
	SimilarityThreshold int
	// MaxConcurrency bounds the parallel duplicate comparisons. Default: 5.
	MaxConcurrency int
	// CandidateLimit caps the duplicate-scan candidate pool. Default: 200.
	CandidateLimit int
}

func (o Options) withDefaults() Options {
	if o.SimilarityThreshold <= 0 {
		o.SimilarityThreshold = 70
	}
	if o.MaxConcurrency <= 0 {
		o.MaxConcurrency = 5
	}
	if o.CandidateLimit <= 0 {
		o.CandidateLimit = 200
	}
	return o
}

// DuplicateHit is one existing listing scoring above the similarity
// threshold.
type DuplicateHit struct {
	ListingID  string `json:"listing_id"`
	Similarity int    `json:"similarity"`
}

// Outcome is the result of enriching one listing. A rejected polygon stops
// after validation; ProximityError carries the retryable amenity failure
// without failing the whole enrichment.
type Outcome struct {
	ListingID       string           `json:"listing_id"`
	Validation      validator.Result `json:"validation"`
	Duplicates      []DuplicateHit   `json:"duplicates,omitempty"`
	Boundary        *boundary.Match  `json:"boundary,omitempty"`
	ProximityStored bool             `json:"proximity_stored"`
	ProximityError  string           `json:"proximity_error,omitempty"`
}

// Pipeline wires the validator, comparator, resolver and analyzer together.
type Pipeline struct {
	listings ListingSource
	resolver BoundaryResolver
	analyzer ProximityAnalyzer
	records  ProximityStore
	opts     Options
}

// NewPipeline creates an enrichment pipeline.
func NewPipeline(listings ListingSource, resolver BoundaryResolver, analyzer ProximityAnalyzer, records ProximityStore, opts Options) *Pipeline {
	return &Pipeline{
		listings: listings,
		resolver: resolver,
		analyzer: analyzer,
		records:  records,
		opts:     opts.withDefaults(),
	}
}

// Enrich runs the full pipeline for one listing. An invalid polygon returns
// an outcome with the validation errors and no enrichment. Boundary
// resolution and proximity analysis run in parallel; a proximity failure is
// recorded on the outcome for the caller's retry scheduling while the
// boundary result still persists.
func (p *Pipeline) Enrich(ctx context.Context, listingID string) (*Outcome, error) {
	l, err := p.listings.Get(ctx, listingID)
	if err != nil {
		return nil, eris.Wrap(err, "enrich: load listing")
	}
	if l == nil {
		return nil, eris.Errorf("enrich: no listing with id %s", listingID)
	}

	outcome := &Outcome{ListingID: listingID}
	outcome.Validation = validator.Validate(l.Geometry)
	if !outcome.Validation.Valid {
		zap.L().Info("enrich: polygon rejected by validation",
			zap.String("listing_id", listingID),
			zap.Strings("errors", outcome.Validation.Errors),
		)
		return outcome, nil
	}

	poly, err := geometry.ParsePolygon(l.Geometry)
	if err != nil {
		return nil, eris.Wrap(err, "enrich: parse validated polygon")
	}

	outcome.Duplicates, err = p.scanDuplicates(ctx, listingID, poly)
	if err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		match, err := p.resolver.Resolve(gctx, poly)
		if err != nil {
			return eris.Wrap(err, "enrich: boundary resolution")
		}
		if err := p.listings.SaveBoundaryMatch(gctx, listingID, match); err != nil {
			return err
		}
		outcome.Boundary = &match
		return nil
	})
	g.Go(func() error {
		record, err := p.analyzer.Analyze(gctx, listingID, poly)
		if err == nil {
			err = p.records.Upsert(gctx, record)
		}
		if err != nil {
			// Retryable: the caller reschedules; boundary output still counts.
			zap.L().Warn("enrich: proximity analysis failed",
				zap.String("listing_id", listingID),
				zap.Error(err),
			)
			outcome.ProximityError = err.Error()
			return nil
		}
		outcome.ProximityStored = true
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return outcome, nil
}

// scanDuplicates scores the polygon against the candidate pool in parallel
// and returns hits at or above the threshold, highest first.
func (p *Pipeline) scanDuplicates(ctx context.Context, listingID string, poly *geometry.Polygon) ([]DuplicateHit, error) {
	candidates, err := p.listings.Candidates(ctx, listingID, p.opts.CandidateLimit)
	if err != nil {
		return nil, eris.Wrap(err, "enrich: load candidates")
	}

	var mu sync.Mutex
	var hits []DuplicateHit

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.MaxConcurrency)
	for _, candidate := range candidates {
		g.Go(func() error {
			other, err := geometry.ParsePolygon(candidate.Geometry)
			if err != nil {
				zap.L().Debug("enrich: skipping candidate with malformed geometry",
					zap.String("candidate_id", candidate.ID),
					zap.Error(err),
				)
				return nil
			}
			score := comparator.Similarity(poly, other)
			if score >= p.opts.SimilarityThreshold {
				mu.Lock()
				hits = append(hits, DuplicateHit{ListingID: candidate.ID, Similarity: score})
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Similarity != hits[j].Similarity {
			return hits[i].Similarity > hits[j].Similarity
		}
		return hits[i].ListingID < hits[j].ListingID
	})
	return hits, nil
}
