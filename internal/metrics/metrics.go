package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Trading metrics
	OrdersPlaced = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orders_placed_total",
			Help: "Total number of order placement attempts",
		},
		[]string{"side", "status"},
	)
	CancelSweeps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cancel_sweeps_total",
			Help: "Total number of cancel-all sweeps",
		},
		[]string{"status"},
	)

	// Feed metrics
	WSReconnects = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ws_reconnect_attempts_total",
			Help: "Total number of WebSocket reconnect attempts",
		},
	)
	WSMessages = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ws_messages_total",
			Help: "Total number of WebSocket messages received",
		},
	)
	WSParseErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ws_parse_errors_total",
			Help: "Total number of dropped malformed feed messages",
		},
	)

	// Binance API metrics
	APIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "binance_api_request_duration_seconds",
			Help: "Duration of Binance REST API requests in seconds",
		},
		[]string{"endpoint"},
	)
)

// Init registers all collectors with the default registry, which already
// carries the Go runtime and process collectors.
func Init() {
	prometheus.MustRegister(OrdersPlaced)
	prometheus.MustRegister(CancelSweeps)
	prometheus.MustRegister(WSReconnects)
	prometheus.MustRegister(WSMessages)
	prometheus.MustRegister(WSParseErrors)
	prometheus.MustRegister(APIRequestDuration)
}
