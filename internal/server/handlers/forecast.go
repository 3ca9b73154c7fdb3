package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Leeky19/meteo/internal/location"
	"github.com/Leeky19/meteo/internal/orchestrator"
	"github.com/Leeky19/meteo/internal/server/utils"
	"github.com/Leeky19/meteo/internal/session"
	"github.com/Leeky19/meteo/internal/weather"
)

type ForecastHandler struct {
	sessions *session.Registry
	logger   *zap.Logger
}

func NewForecastHandler(sessions *session.Registry, logger *zap.Logger) *ForecastHandler {
	return &ForecastHandler{
		sessions: sessions,
		logger:   logger,
	}
}

func (h *ForecastHandler) requestLogger(c *gin.Context) *zap.Logger {
	return h.logger.With(
		zap.String("request_id", utils.GetRequestIDFromGinContext(c)),
		zap.String("session_id", utils.GetSessionIDFromGinContext(c)))
}

// Search runs a city search in the caller's session.
func (h *ForecastHandler) Search(c *gin.Context) {
	ctx := utils.GetContextFromGinContext(c)
	reqLogger := h.requestLogger(c)

	var req SearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		writeInvalidParams(c, reqLogger, err.Error())
		return
	}

	reqLogger.Info("Processing city search", zap.String("city", req.City))

	orch := h.sessions.Get(utils.GetSessionIDFromGinContext(c))
	view, err := orch.SearchCity(ctx, req.City)
	if err != nil {
		writeError(c, reqLogger, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// Locate runs the current-location pipeline with the position reported by the client.
func (h *ForecastHandler) Locate(c *gin.Context) {
	ctx := utils.GetContextFromGinContext(c)
	reqLogger := h.requestLogger(c)

	var req LocateRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		writeInvalidParams(c, reqLogger, err.Error())
		return
	}
	if errs := utils.ValidateStruct(req); errs != nil {
		writeInvalidParams(c, reqLogger, utils.DescribeValidationErrors(errs))
		return
	}
	if (req.Lat == nil) != (req.Lon == nil) {
		writeInvalidParams(c, reqLogger, "lat and lon must be given together")
		return
	}

	if req.Permission != "" {
		report := location.Report{Permission: location.ParsePermission(req.Permission)}
		if req.Lat != nil {
			report.Coordinates = &weather.Coordinates{Latitude: *req.Lat, Longitude: *req.Lon}
		}
		ctx = location.WithReport(ctx, report)
	}

	reqLogger.Info("Processing current location forecast",
		zap.String("permission", req.Permission),
		zap.Bool("reported_position", req.Lat != nil))

	orch := h.sessions.Get(utils.GetSessionIDFromGinContext(c))
	view, err := orch.UseCurrentLocation(ctx)
	if err != nil {
		writeError(c, reqLogger, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// State returns the session's latest pipeline state.
func (h *ForecastHandler) State(c *gin.Context) {
	state := h.sessions.Get(utils.GetSessionIDFromGinContext(c)).State()
	c.JSON(http.StatusOK, NewStateResponse(state))
}

func NewStateResponse(state orchestrator.State) StateResponse {
	resp := StateResponse{
		Phase:      state.Phase.String(),
		Generation: state.Generation,
		Busy:       state.Busy(),
		Query:      state.Query,
		Forecast:   state.View,
	}
	if state.Err != nil {
		_, body := NewErrorResponse(state.Err)
		resp.Error = &body
	}
	return resp
}
