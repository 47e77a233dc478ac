package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gocarpool/internal/config"
	"gocarpool/internal/handlers"
	"gocarpool/internal/middleware"
	mongorepo "gocarpool/internal/repositories/mongodb"
	"gocarpool/internal/services"
	"gocarpool/internal/utils"
	"gocarpool/pkg/cache"
	"gocarpool/pkg/database"
	"gocarpool/pkg/logger"
	"gocarpool/pkg/maps"
	"gocarpool/pkg/websocket"
	"gocarpool/routes"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(&logger.Config{
		Level:  logger.LogLevel(cfg.App.LogLevel),
		Format: cfg.App.LogFormat,
		Output: "stdout",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}

	db, err := database.NewMongoDB(&database.DatabaseConfig{
		URI:            cfg.Database.URI,
		Database:       cfg.Database.Database,
		MaxPoolSize:    cfg.Database.MaxPoolSize,
		MinPoolSize:    cfg.Database.MinPoolSize,
		ConnectTimeout: cfg.Database.ConnectTimeout,
		SocketTimeout:  cfg.Database.SocketTimeout,
	})
	if err != nil {
		log.WithError(err).Fatal("failed to connect to MongoDB")
	}
	defer db.Close()

	if err := database.NewMigrator(db.Database).Up(); err != nil {
		log.WithError(err).Fatal("failed to run migrations")
	}

	redisCache, err := cache.NewRedisCache(&cache.RedisConfig{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
	})
	if err != nil {
		log.WithError(err).Fatal("failed to connect to Redis")
	}
	defer redisCache.Close()

	routingProvider, err := buildRoutingProvider(cfg.Maps)
	if err != nil {
		log.WithError(err).Fatal("failed to init routing provider")
	}

	wsHandler := websocket.NewHandler(cfg.WebSocket, cfg.Security.JWTSecret, log)

	tripRepo := mongorepo.NewTripRepository(db.Database, redisCache)
	requestRepo := mongorepo.NewRideRequestRepository(db.Database)

	tripService := services.NewTripService(tripRepo, requestRepo, routingProvider, wsHandler, log)
	bookingService := services.NewBookingService(tripRepo, requestRepo, wsHandler, log)
	etaService := services.NewETAService(routingProvider, cfg.Maps.RequestTimeout, log)

	wsHandler.Attach(tripService, etaService)

	tripHandler := handlers.NewTripHandler(tripService)
	bookingHandler := handlers.NewBookingHandler(bookingService)

	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware(log))
	router.Use(middleware.CORSMiddleware(cfg.Security.CORSAllowedOrigins))

	v1 := router.Group("/api/v1")
	{
		routes.SetupTripRoutes(v1, tripHandler, cfg.Security.JWTSecret)
		routes.SetupBookingRoutes(v1, bookingHandler, cfg.Security.JWTSecret)
	}
	routes.SetupWebSocketRoutes(router, wsHandler, cfg.WebSocket.Path)

	router.GET("/health", func(c *gin.Context) {
		status := "healthy"
		code := http.StatusOK
		if err := db.Ping(); err != nil {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status":  status,
			"name":    utils.AppName,
			"version": utils.AppVersion,
		})
	})

	addr := fmt.Sprintf("%s:%d", cfg.App.Host, cfg.App.Port)
	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		log.Infof("server listening on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server stopped unexpectedly")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}

// buildRoutingProvider selects the maps backend from configuration.
func buildRoutingProvider(cfg *config.MapsConfig) (maps.RoutingProvider, error) {
	switch cfg.Provider {
	case "mapbox":
		return maps.NewMapboxProvider(cfg.Mapbox.AccessToken, cfg.Mapbox.BaseURL), nil
	default:
		return maps.NewGoogleMapsProvider(cfg.GoogleMaps.APIKey)
	}
}
