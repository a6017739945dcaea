package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	updatesReceivedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_updates_received_total",
			Help: "Incoming Telegram updates by kind.",
		},
		[]string{"kind"},
	)

	usersRegisteredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bot_users_registered_total",
			Help: "Completed registrations (phone shared).",
		},
	)

	searchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_search_requests_total",
			Help: "Search proxy requests by outcome (results, empty, error).",
		},
		[]string{"outcome"},
	)

	broadcastDeliveriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_broadcast_deliveries_total",
			Help: "Per-recipient broadcast deliveries by result.",
		},
		[]string{"result"},
	)
)

// Collectors returns every collector of this package
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		updatesReceivedTotal,
		usersRegisteredTotal,
		searchRequestsTotal,
		broadcastDeliveriesTotal,
	}
}

// Register adds all collectors to reg
func Register(reg prometheus.Registerer) error {
	for _, c := range Collectors() {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func IncUpdate(kind string) {
	updatesReceivedTotal.WithLabelValues(norm(kind)).Inc()
}

func IncUserRegistered() {
	usersRegisteredTotal.Inc()
}

func IncSearch(outcome string) {
	searchRequestsTotal.WithLabelValues(norm(outcome)).Inc()
}

func AddBroadcastDeliveries(delivered, failed int) {
	broadcastDeliveriesTotal.WithLabelValues("delivered").Add(float64(delivered))
	broadcastDeliveriesTotal.WithLabelValues("failed").Add(float64(failed))
}
