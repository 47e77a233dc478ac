package handlers

import (
	"errors"
	"net/http"

	"gocarpool/internal/services"
	"gocarpool/internal/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// currentUserID reads the authenticated caller set by the auth middleware.
func currentUserID(c *gin.Context) (primitive.ObjectID, bool) {
	raw, exists := c.Get("user_id")
	if !exists {
		utils.UnauthorizedResponse(c)
		return primitive.NilObjectID, false
	}
	id, ok := raw.(primitive.ObjectID)
	if !ok {
		utils.UnauthorizedResponse(c)
		return primitive.NilObjectID, false
	}
	return id, true
}

func objectIDParam(c *gin.Context, name, resource string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid "+resource+" ID")
		return primitive.NilObjectID, false
	}
	return id, true
}

// respondServiceError translates domain errors into the HTTP taxonomy. The
// fallback is a 500 without the underlying error text.
func respondServiceError(c *gin.Context, err error) {
	var transition *services.InvalidTransitionError
	switch {
	case errors.Is(err, services.ErrTripNotFound):
		utils.NotFoundResponse(c, "Trip")
	case errors.Is(err, services.ErrRequestNotFound):
		utils.NotFoundResponse(c, "Ride request")
	case errors.Is(err, services.ErrForbidden):
		utils.ForbiddenResponse(c)
	case errors.Is(err, services.ErrSeatUnavailable):
		utils.ConflictResponse(c, "SEAT_UNAVAILABLE", "No seats available on this trip")
	case errors.Is(err, services.ErrDuplicateRequest):
		utils.ConflictResponse(c, "DUPLICATE_REQUEST", "A pending request for this trip already exists")
	case errors.Is(err, services.ErrRequestNotPending):
		utils.ConflictResponse(c, "REQUEST_NOT_PENDING", "Ride request has already been resolved")
	case errors.Is(err, services.ErrPickupOrder):
		utils.ConflictResponse(c, "PICKUP_ORDER", "Pickup status cannot advance from its current state")
	case errors.As(err, &transition):
		utils.ErrorResponseWithDetails(c, http.StatusConflict, "INVALID_TRANSITION", transition.Error(), map[string]string{
			"current":   string(transition.Current),
			"attempted": string(transition.Attempted),
		})
	default:
		utils.InternalServerErrorResponse(c)
	}
}
