package validators

import (
	"fmt"
	"strings"
	"time"

	"gocarpool/internal/models"
	"gocarpool/internal/utils"
)

// CreateTripRequest is the publish-trip payload before normalization.
type CreateTripRequest struct {
	VehicleType   string    `json:"vehicle_type" validate:"required,vehicle_type"`
	TotalSeats    int       `json:"total_seats" validate:"required,min=1"`
	ScheduledTime time.Time `json:"scheduled_time" validate:"required"`
	Source        string    `json:"source" validate:"required,min=2,max=255"`
	Destination   string    `json:"destination" validate:"required,min=2,max=255"`

	SourceLat      *float64 `json:"source_lat"`
	SourceLng      *float64 `json:"source_lng"`
	DestinationLat *float64 `json:"destination_lat"`
	DestinationLng *float64 `json:"destination_lng"`
}

type LocationUpdateRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// ValidateCreateTrip checks the payload and, when clean, returns the
// normalized service input.
func ValidateCreateTrip(req *CreateTripRequest, now time.Time) (*models.VehicleType, ValidationErrors) {
	errs := ValidateStruct(req)

	vehicleType := models.VehicleType(strings.ToLower(req.VehicleType))
	if vehicleType.Valid() {
		minSeats, maxSeats := vehicleType.SeatRange()
		if req.TotalSeats < minSeats || req.TotalSeats > maxSeats {
			errs = append(errs, ValidationError{
				Field:   "total_seats",
				Message: seatRangeMessage(vehicleType, minSeats, maxSeats),
			})
		}
	}

	if !req.ScheduledTime.IsZero() {
		if !req.ScheduledTime.After(now) {
			errs = append(errs, ValidationError{
				Field:   "scheduled_time",
				Message: "scheduled time must be in the future",
			})
		} else if req.ScheduledTime.After(now.Add(utils.MaxScheduleWindow)) {
			errs = append(errs, ValidationError{
				Field:   "scheduled_time",
				Message: "scheduled time must be within 7 days",
			})
		}
	}

	errs = append(errs, validateOptionalPoint("source", req.SourceLat, req.SourceLng)...)
	errs = append(errs, validateOptionalPoint("destination", req.DestinationLat, req.DestinationLng)...)

	if len(errs) > 0 {
		return nil, errs
	}
	return &vehicleType, nil
}

func ValidateLocationUpdate(req *LocationUpdateRequest) ValidationErrors {
	var errs ValidationErrors
	if !utils.IsValidCoordinates(req.Latitude, req.Longitude) {
		errs = append(errs, ValidationError{
			Field:   "latitude",
			Message: "invalid GPS coordinates",
		})
	}
	return errs
}

func seatRangeMessage(v models.VehicleType, minSeats, maxSeats int) string {
	if minSeats == maxSeats {
		return fmt.Sprintf("%s trips carry exactly %d seat", v, minSeats)
	}
	return fmt.Sprintf("%s trips carry between %d and %d seats", v, minSeats, maxSeats)
}

// validateOptionalPoint accepts a fully absent pair; a half-supplied or
// out-of-range pair is an error.
func validateOptionalPoint(prefix string, lat, lng *float64) ValidationErrors {
	if lat == nil && lng == nil {
		return nil
	}
	if lat == nil || lng == nil {
		return ValidationErrors{{
			Field:   prefix + "_lat",
			Message: "latitude and longitude must be supplied together",
		}}
	}
	if !utils.IsValidCoordinates(*lat, *lng) {
		return ValidationErrors{{
			Field:   prefix + "_lat",
			Message: "invalid GPS coordinates",
		}}
	}
	return nil
}
