package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"nearest-geopoints/internal/cache"
	"nearest-geopoints/internal/config"
	"nearest-geopoints/internal/handler"
	"nearest-geopoints/internal/logger"
	"nearest-geopoints/internal/metrics"
	"nearest-geopoints/internal/repository"
	"nearest-geopoints/internal/server"
	"nearest-geopoints/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

//	@title			Nearest Geopoints API
//	@version		1.0
//	@description	Returns the geopoints closest to a reference location, ranked by Haversine distance.
//	@BasePath		/

func main() {
	config, err := config.LoadConfig("./configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}

	logger.Setup(config.LogLevel, config.LogFormat)
	gin.SetMode(config.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Point source
	fileRepo := repository.NewFileRepository(config.PointsFile, config.ReferenceFile)
	var pointSource cache.PointSource = fileRepo
	if config.PointsSource == "postgres" {
		conn, err := pgxpool.New(ctx, config.DBSource)
		if err != nil {
			log.Fatal().Err(err).Msg("cannot connect to db")
		}
		defer conn.Close()
		pointSource = repository.NewPostgresRepository(conn)
	}

	// Load the point set once. A failure is kept and reported by every query.
	points := cache.NewPointCache()
	if err := points.Load(ctx, pointSource); err != nil {
		log.Error().Err(err).Str("source", config.PointsSource).Msg("failed to load geopoints, queries will fail")
	} else {
		log.Info().Int("count", points.Len()).Str("source", config.PointsSource).Msg("loaded geopoints")
	}
	metrics.PointCacheState.Set(float64(points.State()))
	metrics.PointsLoaded.Set(float64(points.Len()))

	// Initialize layers
	nearestService := service.NewNearestService(points, fileRepo, config.RankingLimit, config.RankingPrecision)

	nearestHandler := handler.NewNearestHandler(nearestService)
	healthHandler := handler.NewHealthHandler(points)

	srv := &http.Server{
		Addr:              config.ServerAddress,
		Handler:           server.NewRouter(nearestHandler, healthHandler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", config.ServerAddress).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
