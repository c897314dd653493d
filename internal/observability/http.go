package observability

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsHandler exposes the Prometheus scrape endpoint on the Fiber app.
// Registration is forced first so a scrape before the first graded request
// still sees the collectors.
func MetricsHandler() fiber.Handler {
	RegisterMetrics()
	handler := promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
	return adaptor.HTTPHandler(handler)
}
