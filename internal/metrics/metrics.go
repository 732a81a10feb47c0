// Package metrics holds the in-process Prometheus instruments for check-in
// traffic, streak recalculation and storage health.
//
// Instruments live on a private registry owned by Metrics so tests and
// multiple services never collide on registration. Nothing is served over
// HTTP; the registry is dumped on demand by the stats command.
package metrics

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"

	"github.com/julianstephens/habitline/internal/models"
)

const metricsNamespace = "habitline"

// Metrics bundles every instrument. All methods are nil-safe so callers may
// run without instrumentation.
type Metrics struct {
	// CheckInsTotal counts committed check-ins. Labels: status
	CheckInsTotal *prometheus.CounterVec

	// RecalculationsTotal counts streak recalculations. Labels: result (updated, noop, error)
	RecalculationsTotal *prometheus.CounterVec

	// StorageErrorsTotal counts failed storage calls. Labels: op
	StorageErrorsTotal *prometheus.CounterVec

	// BackfilledEntries is the number of synthetic missed entries in the last analytics snapshot.
	BackfilledEntries prometheus.Gauge

	// AnalyticsRefreshTotal counts analytics refreshes. Labels: result (success, error)
	AnalyticsRefreshTotal *prometheus.CounterVec

	registry *prometheus.Registry
}

// New creates the instruments on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		CheckInsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "check_ins_total",
			Help:      "Committed check-ins by status",
		}, []string{"status"}),
		RecalculationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "streak_recalculations_total",
			Help:      "Streak recalculations by result",
		}, []string{"result"}),
		StorageErrorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "storage_errors_total",
			Help:      "Failed storage calls by operation",
		}, []string{"op"}),
		BackfilledEntries: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "backfilled_entries",
			Help:      "Synthetic missed entries in the most recent analytics snapshot",
		}),
		AnalyticsRefreshTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "analytics_refresh_total",
			Help:      "Analytics snapshot refreshes by result",
		}, []string{"result"}),
		registry: reg,
	}
}

func (m *Metrics) RecordCheckIn(status models.CheckInStatus) {
	if m == nil {
		return
	}
	m.CheckInsTotal.WithLabelValues(string(status)).Inc()
}

// RecordRecalculation notes one recalculation; updated is false when the habit
// had no check-ins and nothing was written.
func (m *Metrics) RecordRecalculation(updated bool, err error) {
	if m == nil {
		return
	}
	result := "updated"
	switch {
	case err != nil:
		result = "error"
	case !updated:
		result = "noop"
	}
	m.RecalculationsTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) RecordStorageError(op string) {
	if m == nil {
		return
	}
	m.StorageErrorsTotal.WithLabelValues(op).Inc()
}

func (m *Metrics) SetBackfilled(n int) {
	if m == nil {
		return
	}
	m.BackfilledEntries.Set(float64(n))
}

func (m *Metrics) RecordRefresh(err error) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "error"
	}
	m.AnalyticsRefreshTotal.WithLabelValues(result).Inc()
}

// Gatherer exposes the registry for callers that want to scrape it themselves.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	if m == nil {
		return prometheus.NewRegistry()
	}
	return m.registry
}

// Families gathers the current value of every instrument.
func (m *Metrics) Families() ([]*dto.MetricFamily, error) {
	if m == nil {
		return nil, nil
	}
	return m.registry.Gather()
}

// WriteText renders every instrument in the Prometheus text exposition format.
func (m *Metrics) WriteText(w io.Writer) error {
	families, err := m.Families()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
