package routes

import (
	"gocarpool/internal/handlers"
	"gocarpool/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupBookingRoutes registers the seat request protocol endpoints.
func SetupBookingRoutes(r *gin.RouterGroup, bookingHandler *handlers.BookingHandler, jwtSecret string) {
	rides := r.Group("/rides")
	rides.Use(middleware.AuthRequired(jwtSecret))
	{
		rides.POST("/request", bookingHandler.RequestRide)
		rides.GET("/mine", bookingHandler.ListMyRequests)

		drivers := rides.Group("")
		drivers.Use(middleware.DriverRequired())
		{
			drivers.POST("/:id/approve", bookingHandler.ApproveRequest)
			drivers.POST("/:id/reject", bookingHandler.RejectRequest)
			drivers.POST("/:id/pickup", bookingHandler.MarkPickedUp)
			drivers.POST("/:id/dropoff", bookingHandler.MarkDroppedOff)
		}
	}

	tripBookings := r.Group("/trips")
	tripBookings.Use(middleware.AuthRequired(jwtSecret), middleware.DriverRequired())
	{
		tripBookings.GET("/:id/requests", bookingHandler.ListTripRequests)
	}
}
