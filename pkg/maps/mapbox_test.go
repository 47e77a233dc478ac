package maps

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapboxGeocodeSkipsFeaturesWithoutCenter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"features": [
				{"id": "place.1", "place_name": "Pune, Maharashtra", "center": [73.8567, 18.5204]},
				{"id": "place.2", "place_name": "Nowhere", "center": []},
				{"id": "place.3", "place_name": "Halfway", "center": [73.0]}
			]
		}`))
	}))
	defer server.Close()

	provider := NewMapboxProvider("token", server.URL)
	resp, err := provider.Geocode(context.Background(), "Pune")
	require.NoError(t, err)

	require.Len(t, resp.Results, 1)
	assert.Equal(t, "place.1", resp.Results[0].PlaceID)
	assert.Equal(t, 18.5204, resp.Results[0].Coordinates.Latitude)
	assert.Equal(t, 73.8567, resp.Results[0].Coordinates.Longitude)
}

func TestMapboxDirections(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"code": "Ok",
			"routes": [{"distance": 148000, "duration": 9000, "geometry": "abc"}]
		}`))
	}))
	defer server.Close()

	provider := NewMapboxProvider("token", server.URL)
	resp, err := provider.GetDirections(context.Background(), &DirectionsRequest{
		Origin:      Location{Latitude: 18.52, Longitude: 73.85},
		Destination: Location{Latitude: 19.07, Longitude: 72.87},
	})
	require.NoError(t, err)

	require.Len(t, resp.Routes, 1)
	assert.Equal(t, float64(148000), resp.Routes[0].Distance.Value)
	assert.Equal(t, 9000, resp.Routes[0].Duration.Value)
}
