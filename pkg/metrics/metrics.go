// Package metrics provides Prometheus instrumentation for the booking
// administration service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector records service-level counters. Services hold a *Collector and
// call the Record methods; a nil *Collector is safe and records nothing,
// which keeps tests free of registry setup.
type Collector struct {
	roleAssignments    *prometheus.CounterVec
	accountDeletions   prometheus.Counter
	storeInconsistency prometheus.Counter
	reconcilerRepairs  prometheus.Counter
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		roleAssignments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bookadmin_role_assignments_total",
			Help: "Successful role assignments by assigned role.",
		}, []string{"role"}),
		accountDeletions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bookadmin_account_deletions_total",
			Help: "Successful account deletions.",
		}),
		storeInconsistency: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bookadmin_store_inconsistencies_total",
			Help: "Writes that left claims and profile store disagreeing.",
		}),
		reconcilerRepairs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bookadmin_reconciler_repairs_total",
			Help: "Profile records repaired by the reconciliation sweep.",
		}),
	}

	reg.MustRegister(
		c.roleAssignments,
		c.accountDeletions,
		c.storeInconsistency,
		c.reconcilerRepairs,
	)

	return c
}

// RecordRoleAssignment counts a successful assignment.
func (c *Collector) RecordRoleAssignment(role string) {
	if c == nil {
		return
	}
	c.roleAssignments.WithLabelValues(role).Inc()
}

// RecordAccountDeletion counts a successful deletion.
func (c *Collector) RecordAccountDeletion() {
	if c == nil {
		return
	}
	c.accountDeletions.Inc()
}

// RecordStoreInconsistency counts a dual-write failure that left the two
// stores disagreeing.
func (c *Collector) RecordStoreInconsistency() {
	if c == nil {
		return
	}
	c.storeInconsistency.Inc()
}

// RecordReconcilerRepair counts repaired profile records.
func (c *Collector) RecordReconcilerRepair(n int) {
	if c == nil || n <= 0 {
		return
	}
	c.reconcilerRepairs.Add(float64(n))
}

// Handler returns the HTTP handler for Prometheus scrapes.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
