package handlers

import (
	"context"

	"gocarpool/internal/models"
	"gocarpool/internal/services"
	"gocarpool/internal/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BookingHandler struct {
	bookingService services.BookingService
}

func NewBookingHandler(bookingService services.BookingService) *BookingHandler {
	return &BookingHandler{
		bookingService: bookingService,
	}
}

type rideRequestBody struct {
	TripID string `json:"trip_id" binding:"required"`
}

// RequestRide creates a pending seat request for the authenticated passenger.
func (h *BookingHandler) RequestRide(c *gin.Context) {
	passengerID, ok := currentUserID(c)
	if !ok {
		return
	}

	var body rideRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	tripID, err := primitive.ObjectIDFromHex(body.TripID)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid trip ID")
		return
	}

	request, svcErr := h.bookingService.RequestRide(c.Request.Context(), passengerID, tripID)
	if svcErr != nil {
		respondServiceError(c, svcErr)
		return
	}

	utils.CreatedResponse(c, "Ride requested successfully", request)
}

func (h *BookingHandler) ApproveRequest(c *gin.Context) {
	h.resolve(c, h.bookingService.Approve, "Ride request approved")
}

func (h *BookingHandler) RejectRequest(c *gin.Context) {
	h.resolve(c, h.bookingService.Reject, "Ride request rejected")
}

func (h *BookingHandler) MarkPickedUp(c *gin.Context) {
	h.resolve(c, h.bookingService.MarkPickedUp, "Passenger marked as picked up")
}

func (h *BookingHandler) MarkDroppedOff(c *gin.Context) {
	h.resolve(c, h.bookingService.MarkDroppedOff, "Passenger marked as dropped off")
}

// ListTripRequests returns every booking on one of the driver's trips.
func (h *BookingHandler) ListTripRequests(c *gin.Context) {
	driverID, ok := currentUserID(c)
	if !ok {
		return
	}
	tripID, ok := objectIDParam(c, "id", "trip")
	if !ok {
		return
	}

	requests, err := h.bookingService.ListTripRequests(c.Request.Context(), driverID, tripID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Ride requests retrieved successfully", requests, &utils.Meta{
		Count: len(requests),
	})
}

// ListMyRequests returns the authenticated passenger's booking history.
func (h *BookingHandler) ListMyRequests(c *gin.Context) {
	passengerID, ok := currentUserID(c)
	if !ok {
		return
	}

	requests, err := h.bookingService.ListMyRequests(c.Request.Context(), passengerID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Ride requests retrieved successfully", requests, &utils.Meta{
		Count: len(requests),
	})
}

func (h *BookingHandler) resolve(c *gin.Context, fn func(ctx context.Context, driverID, requestID primitive.ObjectID) (*models.RideRequest, error), message string) {
	driverID, ok := currentUserID(c)
	if !ok {
		return
	}
	requestID, ok := objectIDParam(c, "id", "ride request")
	if !ok {
		return
	}

	request, err := fn(c.Request.Context(), driverID, requestID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, message, request)
}
