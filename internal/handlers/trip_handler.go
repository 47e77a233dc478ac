package handlers

import (
	"context"
	"strconv"
	"strings"
	"time"

	"gocarpool/internal/models"
	"gocarpool/internal/services"
	"gocarpool/internal/utils"
	"gocarpool/internal/validators"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TripHandler struct {
	tripService services.TripService
}

func NewTripHandler(tripService services.TripService) *TripHandler {
	return &TripHandler{
		tripService: tripService,
	}
}

// CreateTrip publishes a new trip for the authenticated driver.
func (h *TripHandler) CreateTrip(c *gin.Context) {
	driverID, ok := currentUserID(c)
	if !ok {
		return
	}

	var request validators.CreateTripRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	vehicleType, validationErrs := validators.ValidateCreateTrip(&request, time.Now())
	if len(validationErrs) > 0 {
		utils.ValidationErrorResponse(c, validationErrs.Fields())
		return
	}

	input := &services.CreateTripInput{
		VehicleType:         *vehicleType,
		TotalSeats:          request.TotalSeats,
		ScheduledTime:       request.ScheduledTime,
		Source:              request.Source,
		Destination:         request.Destination,
		SourceLocation:      pointFrom(request.SourceLat, request.SourceLng),
		DestinationLocation: pointFrom(request.DestinationLat, request.DestinationLng),
	}

	trip, err := h.tripService.Create(c.Request.Context(), driverID, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, "Trip created successfully", trip)
}

// GetTrip returns a trip together with its ride requests.
func (h *TripHandler) GetTrip(c *gin.Context) {
	tripID, ok := objectIDParam(c, "id", "trip")
	if !ok {
		return
	}

	trip, err := h.tripService.Get(c.Request.Context(), tripID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Trip retrieved successfully", trip)
}

func (h *TripHandler) StartTrip(c *gin.Context) {
	h.transition(c, h.tripService.Start, "Trip started successfully")
}

func (h *TripHandler) CompleteTrip(c *gin.Context) {
	h.transition(c, h.tripService.Complete, "Trip completed successfully")
}

func (h *TripHandler) CancelTrip(c *gin.Context) {
	h.transition(c, h.tripService.Cancel, "Trip cancelled successfully")
}

// UpdateLocation is the HTTP location path; the websocket channel is the
// live telemetry one.
func (h *TripHandler) UpdateLocation(c *gin.Context) {
	callerID, ok := currentUserID(c)
	if !ok {
		return
	}
	tripID, ok := objectIDParam(c, "id", "trip")
	if !ok {
		return
	}

	var request validators.LocationUpdateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	if validationErrs := validators.ValidateLocationUpdate(&request); len(validationErrs) > 0 {
		utils.ValidationErrorResponse(c, validationErrs.Fields())
		return
	}

	if err := h.tripService.UpdateLocation(c.Request.Context(), tripID, callerID, request.Latitude, request.Longitude); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Location updated successfully", nil)
}

// SearchTrips matches scheduled trips by source/destination substrings.
func (h *TripHandler) SearchTrips(c *gin.Context) {
	source := c.Query("source")
	destination := c.Query("destination")
	if source == "" && destination == "" {
		utils.BadRequestResponse(c, "At least one of source or destination is required")
		return
	}

	var vehicleType *models.VehicleType
	if raw := c.Query("vehicle_type"); raw != "" {
		vt := models.VehicleType(strings.ToLower(raw))
		if !vt.Valid() {
			utils.BadRequestResponse(c, "Invalid vehicle type")
			return
		}
		vehicleType = &vt
	}

	pagination := utils.GetPaginationParams(c)
	trips, total, err := h.tripService.Search(c.Request.Context(), source, destination, vehicleType, pagination)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Trips retrieved successfully", trips, &utils.Meta{
		Pagination: utils.NewPaginationMeta(pagination, total),
		Count:      len(trips),
	})
}

// SearchNearby matches scheduled trips whose endpoints fall within a radius
// of the given pickup and dropoff points.
func (h *TripHandler) SearchNearby(c *gin.Context) {
	srcLat, err1 := strconv.ParseFloat(c.Query("src_lat"), 64)
	srcLng, err2 := strconv.ParseFloat(c.Query("src_lng"), 64)
	destLat, err3 := strconv.ParseFloat(c.Query("dest_lat"), 64)
	destLng, err4 := strconv.ParseFloat(c.Query("dest_lng"), 64)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		utils.BadRequestResponse(c, "src_lat, src_lng, dest_lat and dest_lng are required")
		return
	}
	if !utils.IsValidCoordinates(srcLat, srcLng) || !utils.IsValidCoordinates(destLat, destLng) {
		utils.BadRequestResponse(c, "Invalid GPS coordinates")
		return
	}

	radius := utils.DefaultSearchRadius
	if raw := c.Query("radius"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed <= 0 {
			utils.BadRequestResponse(c, "Invalid radius")
			return
		}
		if parsed > utils.MaxSearchRadius {
			parsed = utils.MaxSearchRadius
		}
		radius = parsed
	}

	trips, err := h.tripService.SearchNearby(c.Request.Context(), srcLat, srcLng, destLat, destLng, radius)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Trips retrieved successfully", trips, &utils.Meta{
		Count: len(trips),
	})
}

func (h *TripHandler) transition(c *gin.Context, fn func(ctx context.Context, tripID, callerID primitive.ObjectID) (*models.Trip, error), message string) {
	callerID, ok := currentUserID(c)
	if !ok {
		return
	}
	tripID, ok := objectIDParam(c, "id", "trip")
	if !ok {
		return
	}

	trip, err := fn(c.Request.Context(), tripID, callerID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, message, trip)
}

func pointFrom(lat, lng *float64) *models.Location {
	if lat == nil || lng == nil {
		return nil
	}
	return models.NewLocation(*lat, *lng)
}
