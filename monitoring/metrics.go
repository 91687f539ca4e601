package monitoring

import (
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	reservations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inventory_reservations_total",
			Help: "Inventory reservation attempts by ticket type",
		},
		[]string{"ticket_type", "status"},
	)

	settlements = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "settlements_total",
			Help: "Settlement attempts",
		},
		[]string{"status"},
	)

	settlementDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "settlement_duration_seconds",
			Help:    "Duration of settlement transactions",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
	)

	refunds = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "refunds_total",
			Help: "Refund attempts",
		},
		[]string{"status"},
	)

	checkins = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkins_total",
			Help: "Ticket check-in attempts",
		},
		[]string{"status"},
	)

	intentOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intent_operations_total",
			Help: "Payment intent operations",
		},
		[]string{"operation", "status"},
	)
)

func TrackReservation(ticketTypeID, status string) {
	reservations.WithLabelValues(ticketTypeID, status).Inc()
}

func TrackSettlement(status string, duration time.Duration) {
	settlements.WithLabelValues(status).Inc()
	settlementDuration.Observe(duration.Seconds())
}

func TrackRefund(status string) {
	refunds.WithLabelValues(status).Inc()
}

func TrackCheckin(status string) {
	checkins.WithLabelValues(status).Inc()
}

func TrackIntentOperation(operation, status string) {
	intentOperations.WithLabelValues(operation, status).Inc()
}

// StartMetricsServer exposes /metrics on its own port.
func StartMetricsServer(port string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	go func() {
		if err := http.ListenAndServe(":"+port, mux); err != nil {
			log.Printf("Metrics server error: %v", err)
		}
	}()

	log.Printf("Metrics server started on port %s", port)
}
