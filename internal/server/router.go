package server

import (
	"nearest-geopoints/docs"
	"nearest-geopoints/internal/handler"
	"nearest-geopoints/internal/logger"
	"nearest-geopoints/internal/metrics"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// NewRouter wires the HTTP routes
func NewRouter(nearest *handler.NearestHandler, health *handler.HealthHandler) *gin.Engine {
	r := gin.New()
	r.Use(logger.GinMiddleware(), gin.Recovery())

	r.GET("/health", health.Health)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	docs.SwaggerInfo.BasePath = "/"
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.GET("/nearest_geopoints_from_file/", nearest.Nearest)

	return r
}
