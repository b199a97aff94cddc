// Package metrics records vault and configuration operations as Prometheus
// counters. A CLI run can dump them in node_exporter textfile format so
// scheduled automation runs are visible to the textfile collector.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels.
const (
	ResultSuccess  = "success"
	ResultFailure  = "failure"
	ResultFallback = "fallback"
)

var (
	registry = prometheus.NewRegistry()

	vaultOps = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Name: "sapauto_vault_operations_total",
		Help: "Credential vault operations by operation and result",
	}, []string{"op", "result"})

	configOps = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Name: "sapauto_config_operations_total",
		Help: "Configuration file operations by operation and result",
	}, []string{"op", "result"})

	legacyMigrations = promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Name: "sapauto_config_legacy_migrations_total",
		Help: "Legacy [sap_config] files upgraded to the layered format on load",
	})
)

// VaultOp counts a vault operation.
func VaultOp(op, result string) {
	vaultOps.WithLabelValues(op, result).Inc()
}

// ConfigOp counts a configuration operation.
func ConfigOp(op, result string) {
	configOps.WithLabelValues(op, result).Inc()
}

// LegacyMigration counts a legacy format upgrade.
func LegacyMigration() {
	legacyMigrations.Inc()
}

// Result maps an error to a result label.
func Result(err error) string {
	if err != nil {
		return ResultFailure
	}
	return ResultSuccess
}

// Gatherer exposes the private registry, mainly for tests.
func Gatherer() prometheus.Gatherer {
	return registry
}

// WriteTextfile writes all counters to path in text exposition format.
// The write goes through a temp file and rename.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, registry)
}
