package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prediction outcomes.
const (
	OutcomeSuccess      = "success"
	OutcomeInvalidInput = "invalid_input"
	OutcomeNoModel      = "no_model"
	OutcomeError        = "error"
)

var (
	PredictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricer_predictions_total",
			Help: "Total number of price predictions by source and outcome",
		},
		[]string{"source", "outcome"},
	)

	PredictionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "pricer_prediction_duration_seconds",
			Help: "Time spent validating, encoding and scoring a listing",
			// Tree walks finish in microseconds.
			Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
		},
		[]string{"source"},
	)

	PredictedPrice = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pricer_predicted_price_dollars",
			Help:    "Distribution of predicted nightly prices",
			Buckets: []float64{25, 50, 75, 100, 150, 200, 300, 500, 1000},
		},
		[]string{"room_type"},
	)

	HistoryWriteErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pricer_history_write_errors_total",
			Help: "Predictions that could not be appended to the history log",
		},
	)

	WebSocketClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pricer_websocket_clients",
			Help: "Connected prediction feed clients",
		},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricer_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pricer_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	RateLimitedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pricer_rate_limited_total",
			Help: "Requests rejected by the per-client rate limiter",
		},
	)

	ModelInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "pricer_model_info",
			Help: "Loaded model bundle, value is always 1",
		},
		[]string{"name", "version", "estimator"},
	)
)

// RecordPrediction records a finished prediction attempt. price and roomType are only used on success.
func RecordPrediction(source, outcome string, duration time.Duration, roomType string, price float64) {
	PredictionsTotal.WithLabelValues(source, outcome).Inc()
	PredictionDuration.WithLabelValues(source).Observe(duration.Seconds())
	if outcome == OutcomeSuccess {
		PredictedPrice.WithLabelValues(roomType).Observe(price)
	}
}

func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, statusClass(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func SetModelInfo(name, version, estimator string) {
	ModelInfo.Reset()
	ModelInfo.WithLabelValues(name, version, estimator).Set(1)
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
