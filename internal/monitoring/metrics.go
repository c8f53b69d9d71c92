package monitoring

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gatepass_http_requests_total",
		Help: "Total HTTP requests served, by method, route and status.",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gatepass_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	resaleListedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gatepass_resale_listed_total",
		Help: "Tickets listed for resale.",
	})

	resaleCompletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gatepass_resale_completed_total",
		Help: "Resale purchases settled.",
	})

	ticketsMintedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gatepass_tickets_minted_total",
		Help: "Tickets minted through primary purchases.",
	})

	ticketsRedeemedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gatepass_tickets_redeemed_total",
		Help: "Tickets redeemed at the gate.",
	})
)

func ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func ResaleListed() { resaleListedTotal.Inc() }

func ResaleCompleted() { resaleCompletedTotal.Inc() }

func TicketsMinted(n int) { ticketsMintedTotal.Add(float64(n)) }

func TicketRedeemed() { ticketsRedeemedTotal.Inc() }
