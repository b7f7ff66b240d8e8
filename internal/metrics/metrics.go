package metrics

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	HTTPRequestsTotal *prometheus.CounterVec
	OrdersCreated     prometheus.Counter
	OrdersFailed      prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_http_requests_total",
			Help: "Total number of HTTP requests served",
		}, []string{"method", "status"}),
		OrdersCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "storefront_orders_created_total",
			Help: "Total number of orders successfully created",
		}),
		OrdersFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "storefront_orders_failed_total",
			Help: "Total number of order submissions that failed",
		}),
	}
}

func (m *Metrics) IncrementOrdersCreated() {
	m.OrdersCreated.Inc()
}

func (m *Metrics) IncrementOrdersFailed() {
	m.OrdersFailed.Inc()
}

// RequestCounter counts every request by method and response status.
func RequestCounter(m *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		m.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			strconv.Itoa(c.Writer.Status()),
		).Inc()
	}
}
