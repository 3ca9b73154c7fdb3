package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Leeky19/meteo/internal/classifier"
	"github.com/Leeky19/meteo/internal/server/utils"
	"github.com/Leeky19/meteo/internal/service"
	"github.com/Leeky19/meteo/internal/weather"
)

type CurrentHandler struct {
	source service.DataSource
	logger *zap.Logger
}

func NewCurrentHandler(source service.DataSource, logger *zap.Logger) *CurrentHandler {
	return &CurrentHandler{
		source: source,
		logger: logger,
	}
}

func (h *CurrentHandler) GetCurrent(c *gin.Context) {
	ctx := utils.GetContextFromGinContext(c)
	requestID := utils.GetRequestIDFromGinContext(c)

	// Create logger with request ID for this request
	reqLogger := h.logger.With(zap.String("request_id", requestID))

	var req CurrentRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		writeInvalidParams(c, reqLogger, err.Error())
		return
	}
	if errs := utils.ValidateStruct(req); errs != nil {
		writeInvalidParams(c, reqLogger, utils.DescribeValidationErrors(errs))
		return
	}

	coords := weather.Coordinates{Latitude: *req.Lat, Longitude: *req.Lon}
	reqLogger.Info("Processing current conditions request",
		zap.Float64("lat", coords.Latitude),
		zap.Float64("lon", coords.Longitude))

	cur, err := h.source.FetchCurrent(ctx, coords)
	if err != nil {
		writeError(c, reqLogger, err)
		return
	}

	c.JSON(http.StatusOK, NewCurrentResponse(cur))
}

func NewCurrentResponse(cur weather.Current) CurrentResponse {
	s := cur.Sample
	return CurrentResponse{
		City:             cur.CityName,
		Country:          cur.CountryCode,
		Coordinates:      cur.Coordinates,
		Timestamp:        s.TimestampText,
		TemperatureC:     s.TemperatureC,
		FeelsLikeC:       s.FeelsLikeC,
		MinTempC:         s.MinTempC,
		MaxTempC:         s.MaxTempC,
		HumidityPct:      s.HumidityPct,
		WindSpeedKmh:     s.WindSpeedKmh(),
		WindDirectionDeg: s.WindDirectionDeg,
		Condition:        s.ConditionMain,
		Description:      s.ConditionDescription,
		Icon:             s.IconCode,
		Theme:            classifier.ThemeOf(s),
	}
}
