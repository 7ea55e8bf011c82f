// Package metrics holds the Prometheus collectors exported by permctl.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	Recomputations *prometheus.CounterVec
	HoldersLive    prometheus.Gauge
	Reloads        *prometheus.CounterVec
	Notifications  prometheus.Counter
	AppOpChanges   *prometheus.CounterVec
	RoleChanges    *prometheus.CounterVec
}

// New creates collectors on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,

		Recomputations: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "permctl_group_recomputations_total",
				Help: "Permission group recomputations by outcome",
			},
			[]string{"outcome"},
		),
		HoldersLive: f.NewGauge(prometheus.GaugeOpts{
			Name: "permctl_holders_live",
			Help: "Live package permission holders",
		}),
		Reloads: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "permctl_catalog_reloads_total",
				Help: "Catalog reloads by status",
			},
			[]string{"status"},
		),
		Notifications: f.NewCounter(prometheus.CounterOpts{
			Name: "permctl_package_notifications_total",
			Help: "Package change notifications delivered to subscribers",
		}),
		AppOpChanges: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "permctl_appop_changes_total",
				Help: "App-op mode changes by op and mode",
			},
			[]string{"op", "mode"},
		),
		RoleChanges: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "permctl_role_changes_total",
				Help: "Role holder changes by role and action",
			},
			[]string{"role", "action"},
		),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Recomputed(outcome string) {
	if m != nil {
		m.Recomputations.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) HolderAdded() {
	if m != nil {
		m.HoldersLive.Inc()
	}
}

func (m *Metrics) HolderRemoved() {
	if m != nil {
		m.HoldersLive.Dec()
	}
}

func (m *Metrics) Reloaded(status string) {
	if m != nil {
		m.Reloads.WithLabelValues(status).Inc()
	}
}

func (m *Metrics) Notified(n int) {
	if m != nil {
		m.Notifications.Add(float64(n))
	}
}

func (m *Metrics) AppOpChanged(op, mode string) {
	if m != nil {
		m.AppOpChanges.WithLabelValues(op, mode).Inc()
	}
}

func (m *Metrics) RoleChanged(role, action string) {
	if m != nil {
		m.RoleChanges.WithLabelValues(role, action).Inc()
	}
}
