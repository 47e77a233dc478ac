package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"gocarpool/internal/models"
	"gocarpool/internal/utils"
	"gocarpool/pkg/logger"
	"gocarpool/pkg/maps"
)

// ETAEstimate is the best-effort remaining distance/time between two points.
type ETAEstimate struct {
	DurationSeconds int     `json:"duration_seconds"`
	DistanceMeters  float64 `json:"distance_meters"`
	ETAText         string  `json:"eta_text"`
	DistanceText    string  `json:"distance_text"`
	UsedFallback    bool    `json:"used_fallback"`
}

type ETAService interface {
	// Estimate never fails for provider-side reasons: on any provider
	// error, timeout or malformed response it falls back to a great-circle
	// estimate. It returns nil only when either point is missing/invalid.
	Estimate(ctx context.Context, from, to *models.Location) *ETAEstimate
}

type etaService struct {
	provider maps.RoutingProvider
	timeout  time.Duration
	log      *logger.Logger
}

func NewETAService(provider maps.RoutingProvider, timeout time.Duration, log *logger.Logger) ETAService {
	if timeout <= 0 {
		timeout = utils.ETAProviderTimeout
	}
	return &etaService{
		provider: provider,
		timeout:  timeout,
		log:      log,
	}
}

func (s *etaService) Estimate(ctx context.Context, from, to *models.Location) *ETAEstimate {
	if !from.IsValid() || !to.IsValid() {
		return nil
	}

	if s.provider != nil {
		if est := s.estimateFromProvider(ctx, from, to); est != nil {
			return est
		}
	}

	return s.fallbackEstimate(from, to)
}

func (s *etaService) estimateFromProvider(ctx context.Context, from, to *models.Location) *ETAEstimate {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.provider.GetDirections(ctx, &maps.DirectionsRequest{
		Origin:      maps.Location{Latitude: from.Latitude(), Longitude: from.Longitude()},
		Destination: maps.Location{Latitude: to.Latitude(), Longitude: to.Longitude()},
		Mode:        "driving",
	})
	if err != nil {
		s.log.WithError(err).Warn("Routing provider failed, using fallback estimate")
		return nil
	}
	if len(resp.Routes) == 0 || resp.Routes[0].Duration.Value <= 0 {
		s.log.Warn("Routing provider returned no usable route, using fallback estimate")
		return nil
	}

	route := resp.Routes[0]

	return &ETAEstimate{
		DurationSeconds: route.Duration.Value,
		DistanceMeters:  route.Distance.Value,
		ETAText:         FormatDuration(route.Duration.Value),
		DistanceText:    FormatDistance(route.Distance.Value),
		UsedFallback:    false,
	}
}

// fallbackEstimate assumes a fixed average road speed over the great-circle
// distance. No retry against the provider: one failed attempt falls back.
func (s *etaService) fallbackEstimate(from, to *models.Location) *ETAEstimate {
	distanceMeters := utils.CalculateDistanceMeters(
		from.Latitude(), from.Longitude(),
		to.Latitude(), to.Longitude(),
	)
	durationSeconds := int(math.Round(distanceMeters / 1000 / utils.FallbackSpeedKMH * 3600))

	return &ETAEstimate{
		DurationSeconds: durationSeconds,
		DistanceMeters:  distanceMeters,
		ETAText:         FormatDuration(durationSeconds),
		DistanceText:    FormatDistance(distanceMeters),
		UsedFallback:    true,
	}
}

// FormatDuration renders seconds as "<1 min", "N min" or "Hh Mm".
func FormatDuration(seconds int) string {
	minutes := seconds / 60
	if minutes < 1 {
		return "<1 min"
	}
	if minutes < 60 {
		return fmt.Sprintf("%d min", minutes)
	}
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}

// FormatDistance renders meters below one kilometer, else kilometers to one
// decimal.
func FormatDistance(meters float64) string {
	if meters < 1000 {
		return fmt.Sprintf("%d m", int(math.Round(meters)))
	}
	return fmt.Sprintf("%.1f km", meters/1000)
}
