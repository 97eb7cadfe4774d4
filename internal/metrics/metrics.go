package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager holds the service metrics. A nil *Manager is valid and records
// nothing, so components can be built without metrics in tests.
type Manager struct {
	Registry *prometheus.Registry

	CatalogFetchesTotal    *prometheus.CounterVec
	FavoriteTogglesTotal   prometheus.Counter
	PersistenceErrorsTotal *prometheus.CounterVec
	ImagesPromotedTotal    prometheus.Counter
	RequestLatency         *prometheus.HistogramVec
}

// NewManager registers every metric on a private registry under namespace.
func NewManager(namespace string) *Manager {
	registry := prometheus.NewRegistry()

	fetches := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "catalog_fetches_total",
		Help:      "Catalog fetches by outcome (ok, fetch_error, parse_error).",
	}, []string{"outcome"})
	toggles := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "favorite_toggles_total",
		Help:      "Favorite toggles requested.",
	})
	persistence := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "favorites_persistence_errors_total",
		Help:      "Favorites store failures by operation (load, write).",
	}, []string{"op"})
	promoted := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "images_promoted_total",
		Help:      "Result card images promoted to loading.",
	})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "request_latency_seconds",
		Help:      "HTTP request latency by route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})

	registry.MustRegister(
		fetches,
		toggles,
		persistence,
		promoted,
		latency,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)

	return &Manager{
		Registry:               registry,
		CatalogFetchesTotal:    fetches,
		FavoriteTogglesTotal:   toggles,
		PersistenceErrorsTotal: persistence,
		ImagesPromotedTotal:    promoted,
		RequestLatency:         latency,
	}
}

func (m *Manager) CatalogFetch(outcome string) {
	if m == nil {
		return
	}
	m.CatalogFetchesTotal.WithLabelValues(outcome).Inc()
}

func (m *Manager) FavoriteToggle() {
	if m == nil {
		return
	}
	m.FavoriteTogglesTotal.Inc()
}

func (m *Manager) PersistenceError(op string) {
	if m == nil {
		return
	}
	m.PersistenceErrorsTotal.WithLabelValues(op).Inc()
}

func (m *Manager) ImagesPromoted(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.ImagesPromotedTotal.Add(float64(n))
}

func (m *Manager) ObserveLatency(route string, seconds float64) {
	if m == nil {
		return
	}
	m.RequestLatency.WithLabelValues(route).Observe(seconds)
}

// Handler exposes the registry in the Prometheus text format.
func (m *Manager) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}))
}
