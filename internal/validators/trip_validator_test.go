package validators

import (
	"testing"
	"time"

	"gocarpool/internal/models"
)

func validCreateRequest() *CreateTripRequest {
	return &CreateTripRequest{
		VehicleType:   "car",
		TotalSeats:    4,
		ScheduledTime: time.Now().Add(48 * time.Hour),
		Source:        "Pune",
		Destination:   "Mumbai",
	}
}

func TestValidateCreateTrip(t *testing.T) {
	now := time.Now()

	t.Run("valid request normalizes vehicle type", func(t *testing.T) {
		req := validCreateRequest()
		req.VehicleType = "CAR"

		vt, errs := ValidateCreateTrip(req, now)
		if len(errs) != 0 {
			t.Fatalf("unexpected errors: %v", errs)
		}
		if *vt != models.VehicleTypeCar {
			t.Errorf("vehicle type = %s, want %s", *vt, models.VehicleTypeCar)
		}
	})

	tests := []struct {
		name   string
		mutate func(*CreateTripRequest)
		field  string
	}{
		{"unknown vehicle type", func(r *CreateTripRequest) { r.VehicleType = "truck" }, "VehicleType"},
		{"car with too many seats", func(r *CreateTripRequest) { r.TotalSeats = 8 }, "total_seats"},
		{"bike with more than one seat", func(r *CreateTripRequest) {
			r.VehicleType = "bike"
			r.TotalSeats = 2
		}, "total_seats"},
		{"zero seats", func(r *CreateTripRequest) { r.TotalSeats = 0 }, "TotalSeats"},
		{"schedule in the past", func(r *CreateTripRequest) { r.ScheduledTime = now.Add(-time.Hour) }, "scheduled_time"},
		{"schedule beyond seven days", func(r *CreateTripRequest) { r.ScheduledTime = now.Add(8 * 24 * time.Hour) }, "scheduled_time"},
		{"empty source", func(r *CreateTripRequest) { r.Source = "" }, "Source"},
		{"half supplied coordinates", func(r *CreateTripRequest) {
			lat := 18.52
			r.SourceLat = &lat
		}, "source_lat"},
		{"out of range coordinates", func(r *CreateTripRequest) {
			lat, lng := 95.0, 73.85
			r.SourceLat = &lat
			r.SourceLng = &lng
		}, "source_lat"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validCreateRequest()
			tt.mutate(req)

			vt, errs := ValidateCreateTrip(req, now)
			if vt != nil {
				t.Error("expected nil vehicle type on invalid request")
			}
			if len(errs) == 0 {
				t.Fatal("expected validation errors")
			}
			if _, ok := errs.Fields()[tt.field]; !ok {
				t.Errorf("expected error on field %q, got %v", tt.field, errs.Fields())
			}
		})
	}

	t.Run("boundary seat counts are accepted", func(t *testing.T) {
		for _, seats := range []int{1, 7} {
			req := validCreateRequest()
			req.TotalSeats = seats
			if _, errs := ValidateCreateTrip(req, now); len(errs) != 0 {
				t.Errorf("seats=%d: unexpected errors %v", seats, errs)
			}
		}
	})

	t.Run("full coordinate pairs are accepted", func(t *testing.T) {
		req := validCreateRequest()
		srcLat, srcLng := 18.52, 73.85
		dstLat, dstLng := 19.07, 72.87
		req.SourceLat, req.SourceLng = &srcLat, &srcLng
		req.DestinationLat, req.DestinationLng = &dstLat, &dstLng

		if _, errs := ValidateCreateTrip(req, now); len(errs) != 0 {
			t.Errorf("unexpected errors: %v", errs)
		}
	})
}

func TestValidateLocationUpdate(t *testing.T) {
	if errs := ValidateLocationUpdate(&LocationUpdateRequest{Latitude: 18.52, Longitude: 73.85}); len(errs) != 0 {
		t.Errorf("unexpected errors: %v", errs)
	}
	if errs := ValidateLocationUpdate(&LocationUpdateRequest{Latitude: 91, Longitude: 73.85}); len(errs) == 0 {
		t.Error("expected error for out-of-range latitude")
	}
	if errs := ValidateLocationUpdate(&LocationUpdateRequest{Latitude: 18.52, Longitude: -181}); len(errs) == 0 {
		t.Error("expected error for out-of-range longitude")
	}
}
