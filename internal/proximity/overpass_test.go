package proximity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardhi-group/parcel-cli/internal/geometry"
	"github.com/ardhi-group/parcel-cli/internal/resilience"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(ClientOptions{
		Endpoint:          server.URL,
		RequestsPerSecond: 1000,
		Retry: resilience.RetryConfig{
			MaxAttempts:    3,
			InitialBackoff: time.Millisecond,
		},
	})
}

func TestClientNearbySendsOverpassQuery(t *testing.T) {
	var query string
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseForm())
		query = r.PostForm.Get("data")
		w.Write([]byte(`{"elements":[
			{"type":"node","id":1,"lat":-6.81,"lon":39.29,"tags":{"amenity":"hospital","name":"Muhimbili"}},
			{"type":"way","id":2,"center":{"lat":-6.82,"lon":39.28},"tags":{"highway":"primary"}}
		]}`))
	})

	elements, err := client.Nearby(context.Background(), geometry.Point{Lng: 39.28, Lat: -6.82})
	require.NoError(t, err)
	require.Len(t, elements, 2)

	assert.Contains(t, query, "[out:json]")
	assert.Contains(t, query, `way["highway"](around:5000,-6.82`)
	assert.Contains(t, query, `node["public_transport"](around:1000,-6.82`)
	assert.Contains(t, query, "out center;")

	assert.Equal(t, "Muhimbili", elements[0].Tags["name"])
	point, ok := elements[0].Point()
	require.True(t, ok)
	assert.InDelta(t, 39.29, point.Lng, 1e-9)

	center, ok := elements[1].Point()
	require.True(t, ok)
	assert.InDelta(t, 39.28, center.Lng, 1e-9)
}

func TestClientNearbyRetriesTransientStatus(t *testing.T) {
	var calls atomic.Int32
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"elements":[]}`))
	})

	elements, err := client.Nearby(context.Background(), geometry.Point{Lng: 39.28, Lat: -6.82})
	require.NoError(t, err)
	assert.Empty(t, elements)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClientNearbyDoesNotRetryClientError(t *testing.T) {
	var calls atomic.Int32
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("parse error"))
	})

	_, err := client.Nearby(context.Background(), geometry.Point{Lng: 39.28, Lat: -6.82})
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
	assert.Contains(t, err.Error(), "400")
}

func TestClientNearbyMalformedBody(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	})

	_, err := client.Nearby(context.Background(), geometry.Point{Lng: 39.28, Lat: -6.82})
	require.Error(t, err)
}

func TestElementPointPrecedence(t *testing.T) {
	node := Element{Lat: -6.81, Lon: 39.29, Center: &Center{Lat: 1, Lon: 1}}
	point, ok := node.Point()
	require.True(t, ok)
	assert.InDelta(t, -6.81, point.Lat, 1e-9)

	_, ok = Element{}.Point()
	assert.False(t, ok)
}
