package metrics

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"biolinks/internal/models"
)

// Reorder outcomes.
const (
	ReorderApplied  = "applied"
	ReorderRejected = "rejected"
	ReorderStale    = "stale"
	ReorderPartial  = "partial"
	ReorderFailed   = "failed"
)

// Click recording outcomes.
const (
	ClickRecorded = "recorded"
	ClickIgnored  = "ignored"
	ClickFailed   = "failed"
)

var (
	clickTotalDesc = prometheus.NewDesc(
		"biolinks_link_clicks_total",
		"Total recorded link clicks by profile slug",
		[]string{"slug"},
		nil,
	)

	reorders = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "biolinks_reorders_total",
			Help: "Link reorder requests by outcome",
		},
		[]string{"outcome"},
	)

	clicks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "biolinks_click_events_total",
			Help: "Click events received by outcome",
		},
		[]string{"outcome"},
	)
)

// ClickTotals reads aggregate click counts. *db.DB implements it.
type ClickTotals interface {
	GetClickTotalsBySlug(ctx context.Context) ([]models.ClickTotal, error)
}

// ClickCollector is a custom Prometheus collector that reads click totals
// from the database on each scrape.
type ClickCollector struct {
	store   ClickTotals
	timeout time.Duration
}

// Describe sends the metric descriptor to the channel.
func (c *ClickCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- clickTotalDesc
}

// Collect queries the database for click totals and emits them as counters.
func (c *ClickCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	totals, err := c.store.GetClickTotalsBySlug(ctx)
	if err != nil {
		slog.Error("failed to collect click metrics", "error", err)
		return
	}
	for _, t := range totals {
		ch <- prometheus.MustNewConstMetric(
			clickTotalDesc,
			prometheus.CounterValue,
			float64(t.Count),
			t.Slug,
		)
	}
}

var registerOnce sync.Once

// Init registers the collectors with the default registry.
// Must be called once at startup.
func Init(store ClickTotals) {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			&ClickCollector{store: store, timeout: 5 * time.Second},
			reorders,
			clicks,
		)
	})
}

// RecordReorder counts a reorder request by outcome.
func RecordReorder(outcome string) {
	reorders.WithLabelValues(outcome).Inc()
}

// RecordClick counts a click event by outcome.
func RecordClick(outcome string) {
	clicks.WithLabelValues(outcome).Inc()
}
