package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Leeky19/meteo/internal/server/utils"
	"github.com/Leeky19/meteo/internal/service"
)

// TileHandler proxies map overlay tiles so the API key never reaches clients.
type TileHandler struct {
	source service.DataSource
	layer  string
	logger *zap.Logger
}

func NewTileHandler(source service.DataSource, layer string, logger *zap.Logger) *TileHandler {
	return &TileHandler{
		source: source,
		layer:  layer,
		logger: logger,
	}
}

func (h *TileHandler) GetTile(c *gin.Context) {
	ctx := utils.GetContextFromGinContext(c)
	reqLogger := h.logger.With(zap.String("request_id", utils.GetRequestIDFromGinContext(c)))

	var req TileRequest
	if err := c.ShouldBindUri(&req); err != nil {
		writeInvalidParams(c, reqLogger, err.Error())
		return
	}
	if errs := utils.ValidateStruct(req); errs != nil {
		writeInvalidParams(c, reqLogger, utils.DescribeValidationErrors(errs))
		return
	}

	tile, err := h.source.FetchTile(ctx, h.layer, req.Z, req.X, req.Y)
	if err != nil {
		writeError(c, reqLogger, err)
		return
	}

	c.Header("Cache-Control", "public, max-age=600")
	c.Data(http.StatusOK, tile.ContentType, tile.Data)
}
