// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the Prometheus collectors an Engine updates after every
// pass.
type Metrics struct {
	Passes       *prometheus.CounterVec
	PagesFetched prometheus.Counter
	PagesFailed  prometheus.Counter
	Folders      prometheus.Gauge
	Grouped      prometheus.Gauge
	Ungrouped    prometheus.Gauge
	Duration     prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with
// registerer. Use a fresh prometheus.NewRegistry() in tests.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)
	return &Metrics{
		Passes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "folderize",
			Name:      "passes_total",
			Help:      "Reconciliation passes by trigger and result.",
		}, []string{"trigger", "result"}),
		PagesFetched: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "folderize",
			Name:      "pages_fetched_total",
			Help:      "Additional list pages fetched and merged.",
		}),
		PagesFailed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "folderize",
			Name:      "pages_failed_total",
			Help:      "Additional list pages that could not be loaded.",
		}),
		Folders: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "folderize",
			Name:      "folders",
			Help:      "Folders projected by the last pass.",
		}),
		Grouped: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "folderize",
			Name:      "grouped_items",
			Help:      "Items inside folders after the last pass.",
		}),
		Ungrouped: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "folderize",
			Name:      "ungrouped_items",
			Help:      "Items left at the top level after the last pass.",
		}),
		Duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "folderize",
			Name:      "pass_duration_seconds",
			Help:      "Wall time of a reconciliation pass including page loads.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
	}
}

func (metrics *Metrics) observe(report Report, err error) {
	if metrics == nil {
		return
	}
	result := "ok"
	switch {
	case err != nil:
		result = "error"
	case report.Pages.Partial():
		result = "partial"
	}
	metrics.Passes.WithLabelValues(report.Trigger.String(), result).Inc()
	metrics.PagesFetched.Add(float64(report.Pages.Fetched))
	metrics.PagesFailed.Add(float64(len(report.Pages.Failed)))
	metrics.Duration.Observe(report.Duration.Seconds())
	if err == nil {
		metrics.Folders.Set(float64(report.Reconcile.Folders))
		metrics.Grouped.Set(float64(report.Reconcile.Grouped))
		metrics.Ungrouped.Set(float64(report.Reconcile.Ungrouped))
	}
}
