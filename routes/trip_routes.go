package routes

import (
	"gocarpool/internal/handlers"
	"gocarpool/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupTripRoutes registers trip lifecycle and discovery endpoints.
func SetupTripRoutes(r *gin.RouterGroup, tripHandler *handlers.TripHandler, jwtSecret string) {
	trips := r.Group("/trips")
	trips.Use(middleware.AuthRequired(jwtSecret))
	{
		trips.GET("/search", tripHandler.SearchTrips)
		trips.GET("/nearby", tripHandler.SearchNearby)
		trips.GET("/:id", tripHandler.GetTrip)

		drivers := trips.Group("")
		drivers.Use(middleware.DriverRequired())
		{
			drivers.POST("", tripHandler.CreateTrip)
			drivers.POST("/:id/start", tripHandler.StartTrip)
			drivers.POST("/:id/complete", tripHandler.CompleteTrip)
			drivers.POST("/:id/cancel", tripHandler.CancelTrip)
			drivers.PUT("/:id/location", tripHandler.UpdateLocation)
		}
	}
}
