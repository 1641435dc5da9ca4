package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"viajes/internal/handler"
	"viajes/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	TripHandler   *handler.TripHandler
	DriverHandler *handler.DriverHandler
	ClientHandler *handler.ClientHandler
	WSHandler     *handler.WSHandler
	RedisClient   *redis.Client
	NewRelicApp   *newrelic.Application
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORS())

	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	if deps.RedisClient != nil {
		router.Use(middleware.Idempotency(deps.RedisClient))
	}

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		// Client routes.
		clients := v1.Group("/clients")
		{
			clients.POST("", deps.ClientHandler.Register)
			clients.GET("", deps.ClientHandler.GetAll)
			clients.GET("/:id", deps.ClientHandler.Get)
			clients.GET("/:id/trips", deps.ClientHandler.GetHistory)
		}

		// Driver routes.
		drivers := v1.Group("/drivers")
		{
			drivers.POST("", deps.DriverHandler.Register)
			drivers.GET("", deps.DriverHandler.GetAll)
			drivers.GET("/:id", deps.DriverHandler.Get)
			drivers.POST("/:id/offline", deps.DriverHandler.SetOffline)
			drivers.POST("/:id/available", deps.DriverHandler.SetAvailable)
			drivers.GET("/:id/trips", deps.DriverHandler.GetAssignedTrips)
			drivers.GET("/:id/history", deps.DriverHandler.GetHistory)
		}

		// Trip routes.
		trips := v1.Group("/trips")
		{
			trips.POST("", deps.TripHandler.RequestTrip)
			trips.GET("/available", deps.TripHandler.GetAvailableTrips)
			trips.GET("/:id", deps.TripHandler.GetTrip)
			trips.POST("/:id/accept", deps.TripHandler.AcceptTrip)
			trips.POST("/:id/reject", deps.TripHandler.RejectTrip)
			trips.POST("/:id/arrival", deps.TripHandler.NotifyArrival)
			trips.POST("/:id/dropoff", deps.TripHandler.NotifyDropoff)
			trips.POST("/:id/start/driver", deps.TripHandler.StartTripByDriver)
			trips.POST("/:id/start/client", deps.TripHandler.StartTripByClient)
			trips.POST("/:id/complete/driver", deps.TripHandler.CompleteTripByDriver)
			trips.POST("/:id/complete/client", deps.TripHandler.CompleteTripByClient)
			trips.POST("/:id/cancel", deps.TripHandler.CancelTrip)
			trips.POST("/:id/rating", deps.TripHandler.RateTrip)
		}

		// Websocket routes.
		if deps.WSHandler != nil {
			ws := v1.Group("/ws")
			{
				ws.GET("/clients/:id", deps.WSHandler.ClientSocket)
				ws.GET("/drivers/:id", deps.WSHandler.DriverSocket)
			}
		}
	}

	return router
}
