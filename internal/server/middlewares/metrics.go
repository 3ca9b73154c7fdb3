package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Leeky19/meteo/pkg/telemetry"
)

// HTTPRecorder receives request counts and latencies.
type HTTPRecorder interface {
	RequestStarted()
	RequestFinished(method, route string, status int, duration time.Duration)
}

type MetricsMiddleware struct {
	logger   *zap.Logger
	tele     *telemetry.Telemetry
	recorder HTTPRecorder
}

func NewMetricsMiddleware(logger *zap.Logger, tele *telemetry.Telemetry, recorder HTTPRecorder) *MetricsMiddleware {
	return &MetricsMiddleware{
		logger:   logger,
		tele:     tele,
		recorder: recorder,
	}
}

func (m *MetricsMiddleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		m.recorder.RequestStarted()

		c.Next()

		duration := time.Since(start)
		route := c.FullPath()
		method := c.Request.Method

		m.recorder.RequestFinished(method, route, c.Writer.Status(), duration)

		if m.tele.IsEnabled() {
			m.logger.Debug("HTTP metrics recorded",
				zap.String("method", method),
				zap.String("route", route),
				zap.Int("status", c.Writer.Status()),
				zap.Duration("duration", duration))
		}
	}
}
