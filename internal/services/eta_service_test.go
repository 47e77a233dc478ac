package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"gocarpool/internal/models"
	"gocarpool/pkg/maps"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimateFromProvider(t *testing.T) {
	provider := &stubRoutingProvider{
		directions: func(req *maps.DirectionsRequest) (*maps.DirectionsResponse, error) {
			return &maps.DirectionsResponse{Routes: []maps.Route{{
				Distance: maps.Distance{Value: 12500},
				Duration: maps.Duration{Value: 1500},
			}}}, nil
		},
	}
	svc := NewETAService(provider, time.Second, testLogger())

	est := svc.Estimate(context.Background(), models.NewLocation(18.52, 73.85), models.NewLocation(19.07, 72.87))
	require.NotNil(t, est)
	assert.False(t, est.UsedFallback)
	assert.Equal(t, 1500, est.DurationSeconds)
	assert.Equal(t, "25 min", est.ETAText)
	assert.Equal(t, "12.5 km", est.DistanceText)
}

func TestEstimateFallback(t *testing.T) {
	t.Run("provider error falls back to great-circle at fixed speed", func(t *testing.T) {
		provider := &stubRoutingProvider{
			directions: func(*maps.DirectionsRequest) (*maps.DirectionsResponse, error) {
				return nil, errors.New("provider down")
			},
		}
		svc := NewETAService(provider, time.Second, testLogger())

		// One degree of latitude is about 111.2 km; at 40 km/h that is
		// roughly 167 minutes.
		est := svc.Estimate(context.Background(), models.NewLocation(18.0, 73.0), models.NewLocation(19.0, 73.0))
		require.NotNil(t, est)
		assert.True(t, est.UsedFallback)
		assert.InDelta(t, 111200, est.DistanceMeters, 500)
		assert.InDelta(t, 10000, est.DurationSeconds, 100)
	})

	t.Run("empty route set falls back", func(t *testing.T) {
		provider := &stubRoutingProvider{
			directions: func(*maps.DirectionsRequest) (*maps.DirectionsResponse, error) {
				return &maps.DirectionsResponse{}, nil
			},
		}
		svc := NewETAService(provider, time.Second, testLogger())

		est := svc.Estimate(context.Background(), models.NewLocation(18.0, 73.0), models.NewLocation(19.0, 73.0))
		require.NotNil(t, est)
		assert.True(t, est.UsedFallback)
	})

	t.Run("nil provider still estimates", func(t *testing.T) {
		svc := NewETAService(nil, time.Second, testLogger())

		est := svc.Estimate(context.Background(), models.NewLocation(18.0, 73.0), models.NewLocation(18.1, 73.0))
		require.NotNil(t, est)
		assert.True(t, est.UsedFallback)
	})
}

func TestEstimateInvalidPoints(t *testing.T) {
	svc := NewETAService(nil, time.Second, testLogger())

	assert.Nil(t, svc.Estimate(context.Background(), nil, models.NewLocation(18.0, 73.0)))
	assert.Nil(t, svc.Estimate(context.Background(), models.NewLocation(18.0, 73.0), nil))
	assert.Nil(t, svc.Estimate(context.Background(), models.NewLocation(95.0, 73.0), models.NewLocation(18.0, 73.0)))
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{0, "<1 min"},
		{59, "<1 min"},
		{60, "1 min"},
		{1500, "25 min"},
		{3599, "59 min"},
		{3600, "1h 0m"},
		{5400, "1h 30m"},
		{10800, "3h 0m"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.seconds); got != tt.want {
			t.Errorf("FormatDuration(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestFormatDistance(t *testing.T) {
	tests := []struct {
		meters float64
		want   string
	}{
		{0, "0 m"},
		{999, "999 m"},
		{1000, "1.0 km"},
		{12500, "12.5 km"},
		{120450, "120.5 km"},
	}
	for _, tt := range tests {
		if got := FormatDistance(tt.meters); got != tt.want {
			t.Errorf("FormatDistance(%g) = %q, want %q", tt.meters, got, tt.want)
		}
	}
}
