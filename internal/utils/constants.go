package utils

import "time"

// Application Constants
const (
	AppName    = "GoCarpool"
	AppVersion = "1.0.0"

	// Response statuses
	StatusSuccess = "success"
	StatusError   = "error"

	// Common error messages
	ErrValidationFailed = "Validation failed"
	ErrInternalServer   = "Internal server error"
	ErrUnauthorized     = "Unauthorized"
	ErrForbidden        = "Forbidden"

	// Pagination
	DefaultPageSize = 20
	MaxPageSize     = 100
	MinPageSize     = 1

	// Authentication
	JWTAccessTokenTTL  = 24 * time.Hour
	JWTRefreshTokenTTL = 7 * 24 * time.Hour

	// Trip constants
	MaxScheduleWindow   = 7 * 24 * time.Hour
	CarMinSeats         = 1
	CarMaxSeats         = 7
	BikeSeats           = 1
	BaseTripCost        = 50.0
	CostPerSeat         = 10.0
	DefaultSearchRadius = 10.0 // kilometers
	MaxSearchRadius     = 50.0 // kilometers

	// ETA estimation
	ETAProviderTimeout = 5 * time.Second
	FallbackSpeedKMH   = 40.0
	EarthRadiusKM      = 6371.0

	// Active trip cache
	TripCacheTTL = 5 * time.Minute
)
