// Package proximity enriches listings with nearby-amenity data from an
// OpenStreetMap Overpass endpoint: roads, hospitals, schools, marketplaces
// and public transport, ranked by great-circle distance from the parcel.
package proximity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ardhi-group/parcel-cli/internal/geometry"
	"github.com/ardhi-group/parcel-cli/internal/resilience"
)

// DefaultEndpoint is the public Overpass API interpreter.
const DefaultEndpoint = "https://overpass-api.de/api/interpreter"

// Search radii in meters. Amenities are gathered wide; public transport only
// matters within walking distance.
const (
	AmenityRadiusM = 5000
	TransitRadiusM = 1000
)

// Element is one feature returned by Overpass. Nodes carry their own
// coordinate; ways carry a precomputed center from "out center".
type Element struct {
	Type   string            `json:"type"`
	ID     int64             `json:"id"`
	Lat    float64           `json:"lat,omitempty"`
	Lon    float64           `json:"lon,omitempty"`
	Center *Center           `json:"center,omitempty"`
	Tags   map[string]string `json:"tags,omitempty"`
}

// Center is a way's representative point.
type Center struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Point returns the element's representative coordinate. ok is false when the
// element has neither its own position nor a center.
func (e Element) Point() (geometry.Point, bool) {
	if e.Lat != 0 || e.Lon != 0 {
		return geometry.Point{Lng: e.Lon, Lat: e.Lat}, true
	}
	if e.Center != nil {
		return geometry.Point{Lng: e.Center.Lon, Lat: e.Center.Lat}, true
	}
	return geometry.Point{}, false
}

type overpassResponse struct {
	Elements []Element `json:"elements"`
}

// ClientOptions configures the Overpass client.
type ClientOptions struct {
	Endpoint  string
	UserAgent string
	Timeout   time.Duration
	// RequestsPerSecond throttles calls to the shared public endpoint.
	// Default: 1 req/s.
	RequestsPerSecond float64
	Retry             resilience.RetryConfig
}

// Client queries an Overpass interpreter with rate limiting and retries.
type Client struct {
	http     *http.Client
	endpoint string
	agent    string
	limiter  *rate.Limiter
	retry    resilience.RetryConfig
}

// NewClient creates an Overpass client.
func NewClient(opts ClientOptions) *Client {
	if opts.Endpoint == "" {
		opts.Endpoint = DefaultEndpoint
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "parcel-cli/1.0"
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = 1
	}
	if opts.Retry.MaxAttempts == 0 {
		opts.Retry = resilience.DefaultRetryConfig()
		opts.Retry.OnRetry = resilience.RetryLogger("overpass", "nearby")
	}
	return &Client{
		http:     &http.Client{Timeout: opts.Timeout},
		endpoint: opts.Endpoint,
		agent:    opts.UserAgent,
		limiter:  rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1),
		retry:    opts.Retry,
	}
}

// nearbyQuery builds the Overpass QL statement for one search origin:
// roads and amenities inside the wide radius, public transport inside the
// walking radius, all with a computed center for ways.
func nearbyQuery(origin geometry.Point) string {
	var b strings.Builder
	b.WriteString("[out:json][timeout:25];\n(\n")

	wide := func(selector string) {
		fmt.Fprintf(&b, "  %s(around:%d,%f,%f);\n", selector, AmenityRadiusM, origin.Lat, origin.Lng)
	}
	near := func(selector string) {
		fmt.Fprintf(&b, "  %s(around:%d,%f,%f);\n", selector, TransitRadiusM, origin.Lat, origin.Lng)
	}

	wide(`way["highway"]`)
	wide(`node["amenity"~"^(hospital|clinic|school|university|college|marketplace)$"]`)
	wide(`way["amenity"~"^(hospital|clinic|school|university|college|marketplace)$"]`)
	wide(`node["shop"~"^(supermarket|mall)$"]`)
	wide(`way["shop"~"^(supermarket|mall)$"]`)
	near(`node["public_transport"]`)

	b.WriteString(");\nout center;\n")
	return b.String()
}

// Nearby fetches all amenity and transit features around the origin. A
// non-2xx response, a malformed body or a network failure is returned as an
// error; transient statuses are retried with backoff.
func (c *Client) Nearby(ctx context.Context, origin geometry.Point) ([]Element, error) {
	query := nearbyQuery(origin)

	return resilience.DoVal(ctx, c.retry, func(ctx context.Context) ([]Element, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "proximity: rate limiter wait")
		}

		form := url.Values{"data": {query}}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
		if err != nil {
			return nil, eris.Wrap(err, "proximity: create request")
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("User-Agent", c.agent)

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, eris.Wrap(err, "proximity: overpass request")
		}
		defer resp.Body.Close() //nolint:errcheck

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			err := eris.Errorf("proximity: overpass returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
			if resilience.IsTransientHTTPStatus(resp.StatusCode) {
				return nil, resilience.NewTransientError(err, resp.StatusCode)
			}
			return nil, err
		}

		var decoded overpassResponse
		if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
			return nil, eris.Wrap(err, "proximity: decode overpass response")
		}

		zap.L().Debug("overpass query completed",
			zap.Float64("lat", origin.Lat),
			zap.Float64("lng", origin.Lng),
			zap.Int("elements", len(decoded.Elements)),
		)
		return decoded.Elements, nil
	})
}
