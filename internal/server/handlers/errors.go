package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Leeky19/meteo/internal/orchestrator"
	"github.com/Leeky19/meteo/internal/weather"
)

var errorKinds = []struct {
	err    error
	status int
	code   string
}{
	{weather.ErrValidation, http.StatusBadRequest, "VALIDATION_ERROR"},
	{weather.ErrCityNotFound, http.StatusNotFound, "CITY_NOT_FOUND"},
	{weather.ErrPermissionDenied, http.StatusForbidden, "PERMISSION_DENIED"},
	{weather.ErrLocationUnavailable, http.StatusUnprocessableEntity, "LOCATION_UNAVAILABLE"},
	{orchestrator.ErrSuperseded, http.StatusConflict, "SUPERSEDED"},
	{weather.ErrNetwork, http.StatusBadGateway, "NETWORK_ERROR"},
}

// NewErrorResponse maps err onto its HTTP status and body.
func NewErrorResponse(err error) (int, ErrorResponse) {
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			msg := weather.Message(err)
			if k.err == orchestrator.ErrSuperseded {
				msg = "Requête remplacée par une recherche plus récente"
			}
			return k.status, ErrorResponse{
				Error:   msg,
				Code:    k.code,
				Details: err.Error(),
			}
		}
	}

	return http.StatusInternalServerError, ErrorResponse{
		Error:   weather.Message(err),
		Code:    "INTERNAL_ERROR",
		Details: err.Error(),
	}
}

func writeError(c *gin.Context, logger *zap.Logger, err error) {
	status, body := NewErrorResponse(err)

	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", zap.String("code", body.Code), zap.Error(err))
	} else {
		logger.Info("Request rejected", zap.String("code", body.Code), zap.Error(err))
	}

	_ = c.Error(err)
	c.JSON(status, body)
}

func writeInvalidParams(c *gin.Context, logger *zap.Logger, details string) {
	logger.Warn("Invalid request parameters", zap.String("details", details))
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   "Invalid request parameters",
		Code:    "INVALID_PARAMS",
		Details: details,
	})
}
