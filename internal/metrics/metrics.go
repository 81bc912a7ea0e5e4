// Package metrics holds the prometheus collectors a client reports to.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/puyacodes/folder-hash/fhtypes"
)

// Operation names used as the "operation" label.
const (
	OpHash  = "hash"
	OpDiff  = "diff"
	OpApply = "apply"
)

// Metrics records operation outcomes. A nil *Metrics is valid and records nothing.
type Metrics struct {
	duration       *prometheus.HistogramVec
	failures       *prometheus.CounterVec
	entriesHashed  *prometheus.CounterVec
	changesFound   *prometheus.CounterVec
	changesApplied *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "folderhash_operation_duration_seconds",
				Help:    "Time to complete a hash, diff or apply",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1.0, 5.0, 30.0, 60.0},
			},
			[]string{"operation"},
		),
		failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "folderhash_operation_failures_total",
				Help: "Total failed operations",
			},
			[]string{"operation"},
		),
		entriesHashed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "folderhash_entries_hashed_total",
				Help: "Total files and directories fingerprinted",
			},
			[]string{"type"},
		),
		changesFound: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "folderhash_changes_found_total",
				Help: "Total change records produced by diffs",
			},
			[]string{"kind"},
		),
		changesApplied: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "folderhash_changes_applied_total",
				Help: "Total change records executed",
			},
			[]string{"kind"},
		),
	}

	for _, c := range []prometheus.Collector{
		m.duration,
		m.failures,
		m.entriesHashed,
		m.changesFound,
		m.changesApplied,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Observe records the duration of op and, if err is set, a failure.
func (m *Metrics) Observe(op string, start time.Time, err error) {
	if m == nil {
		return
	}
	m.duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		m.failures.WithLabelValues(op).Inc()
	}
}

// Hashed counts the directories and files of tree.
func (m *Metrics) Hashed(tree *fhtypes.TreeNode) {
	if m == nil || tree == nil {
		return
	}
	dirs, files := tree.Counts()
	m.entriesHashed.WithLabelValues("dir").Add(float64(dirs))
	m.entriesHashed.WithLabelValues("file").Add(float64(files))
}

// Found counts change records produced by a diff.
func (m *Metrics) Found(changes []fhtypes.ChangeRecord) {
	if m == nil {
		return
	}
	for _, c := range changes {
		m.changesFound.WithLabelValues(string(c.Kind)).Inc()
	}
}

// Applied counts change records that were executed.
func (m *Metrics) Applied(changes []fhtypes.ChangeRecord) {
	if m == nil {
		return
	}
	for _, c := range changes {
		m.changesApplied.WithLabelValues(string(c.Kind)).Inc()
	}
}
