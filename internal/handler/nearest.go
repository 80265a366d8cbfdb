package handler

import (
	"context"
	"net/http"

	"nearest-geopoints/internal/apperror"
	"nearest-geopoints/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// NearestHandler handles nearest-geopoint requests
type NearestHandler struct {
	service NearestService
}

// NearestService interface for dependency injection
type NearestService interface {
	FindNearest(context.Context) ([]models.RankedResult, error)
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error  apperror.Kind `json:"error" example:"not_found"`
	Detail string        `json:"detail" example:"source data/user_location.json not found"`
}

// NewNearestHandler creates a new nearest handler
func NewNearestHandler(svc NearestService) *NearestHandler {
	return &NearestHandler{service: svc}
}

// Nearest handles GET /nearest_geopoints_from_file/ requests
//
//	@Summary		Nearest geopoints
//	@Description	Ranks the loaded geopoints by great-circle distance from the reference location file and returns the closest ones.
//	@Tags			geopoints
//	@Produce		json
//	@Success		200	{array}		models.RankedResult
//	@Failure		500	{object}	ErrorResponse
//	@Router			/nearest_geopoints_from_file/ [get]
func (h *NearestHandler) Nearest(c *gin.Context) {
	results, err := h.service.FindNearest(c.Request.Context())
	if err != nil {
		kind := apperror.KindOf(err)
		log.Error().Err(err).Str("kind", string(kind)).Msg("nearest geopoints query failed")
		c.Error(err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: kind, Detail: err.Error()})
		return
	}

	c.JSON(http.StatusOK, results)
}
