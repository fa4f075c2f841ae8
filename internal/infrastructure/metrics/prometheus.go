// Package metrics expone contadores Prometheus del motor de stock y de la capa HTTP.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
)

const namespace = "stock_ledger"

var _ inventory.Recorder = (*Prometheus)(nil)

// Prometheus implementa inventory.Recorder sobre un registry propio.
type Prometheus struct {
	registry          *prometheus.Registry
	movementsApplied  *prometheus.CounterVec
	movementsRejected *prometheus.CounterVec
	itemIntakes       *prometheus.CounterVec
	itemsDeleted      *prometheus.CounterVec
	httpRequests      *prometheus.HistogramVec
}

// New registra los colectores en un registry nuevo (más los de proceso y runtime de Go).
func New() *Prometheus {
	p := &Prometheus{
		registry: prometheus.NewRegistry(),
		movementsApplied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "movements_applied_total",
			Help:      "Movimientos aplicados al stock por tipo.",
		}, []string{"type"}),
		movementsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "movements_rejected_total",
			Help:      "Operaciones de stock rechazadas por motivo.",
		}, []string{"reason"}),
		itemIntakes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "item_intakes_total",
			Help:      "Ingresos de ítems, separando altas y fusiones.",
		}, []string{"result"}),
		itemsDeleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_deleted_total",
			Help:      "Ítems eliminados por motivo.",
		}, []string{"reason"}),
		httpRequests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Latencia de peticiones HTTP.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
	p.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		p.movementsApplied,
		p.movementsRejected,
		p.itemIntakes,
		p.itemsDeleted,
		p.httpRequests,
	)
	return p
}

func (p *Prometheus) MovementApplied(movType string) {
	p.movementsApplied.WithLabelValues(movType).Inc()
}

func (p *Prometheus) MovementRejected(reason string) {
	p.movementsRejected.WithLabelValues(reason).Inc()
}

func (p *Prometheus) ItemIntake(merged bool) {
	result := "created"
	if merged {
		result = "merged"
	}
	p.itemIntakes.WithLabelValues(result).Inc()
}

func (p *Prometheus) ItemDeleted(reason string) {
	p.itemsDeleted.WithLabelValues(reason).Inc()
}

// ObserveRequest registra la latencia de una petición HTTP. route es el patrón, no la ruta concreta.
func (p *Prometheus) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	p.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// Handler expone el registry en formato Prometheus.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// Registry devuelve el registry subyacente.
func (p *Prometheus) Registry() *prometheus.Registry {
	return p.registry
}
