package middleware

import (
	"sync"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ActiveWebSockets tracks the number of open chat websocket connections.
var ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "lifeboard_active_websockets",
	Help: "Number of currently open websocket connections.",
})

// RedisErrors counts Redis command failures by command name.
var RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "lifeboard_redis_errors_total",
	Help: "Total number of Redis command errors.",
}, []string{"command"})

// UploadedFiles counts stored upload files by declared content type.
var UploadedFiles = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "lifeboard_uploaded_files_total",
	Help: "Total number of stored upload files.",
}, []string{"content_type"})

// WebSocketDrops counts chat messages dropped on slow or closed clients.
var WebSocketDrops = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "lifeboard_websocket_drops_total",
	Help: "Total number of websocket messages dropped by reason.",
}, []string{"reason"})

// OrphanFilesDeleted counts upload files removed by orphan cleanup.
var OrphanFilesDeleted = promauto.NewCounter(prometheus.CounterOpts{
	Name: "lifeboard_orphan_files_deleted_total",
	Help: "Total number of upload files deleted because no content references them.",
})

var (
	promOnce sync.Once
	prom     *fiberprometheus.FiberPrometheus
)

// InitMetrics creates the fiberprometheus middleware for HTTP metrics.
// The underlying collectors register with the default registry exactly once;
// later calls reuse the same instance.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		prom = fiberprometheus.New(serviceName)
	})
	return prom
}

// MetricsMiddleware returns the HTTP instrumentation handler.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return prom.Middleware
}
