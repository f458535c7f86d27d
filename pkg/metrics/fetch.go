package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// FetchMetrics records metadata for Shopify order fetches.
type FetchMetrics struct {
	pages    prometheus.Counter
	orders   prometheus.Counter
	capHits  prometheus.Counter
	duration prometheus.Histogram
}

// NewFetchMetrics registers the order-fetch metrics on the provided registerer.
func NewFetchMetrics(reg prometheus.Registerer) *FetchMetrics {
	if reg == nil {
		return &FetchMetrics{}
	}
	pages := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "shopify_fetch_pages_total",
		Help: "Pages requested from the Shopify orders endpoint.",
	})
	orders := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "shopify_fetch_orders_total",
		Help: "Orders accumulated across all fetches.",
	})
	capHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "shopify_fetch_cap_hits_total",
		Help: "Fetches aborted early by the order safety cap.",
	})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "shopify_fetch_duration_seconds",
		Help:    "Duration of complete paginated order fetches in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	reg.MustRegister(pages, orders, capHits, duration)
	return &FetchMetrics{
		pages:    pages,
		orders:   orders,
		capHits:  capHits,
		duration: duration,
	}
}

// IncPage counts one page request.
func (f *FetchMetrics) IncPage() {
	if f == nil || f.pages == nil {
		return
	}
	f.pages.Inc()
}

// AddOrders counts orders returned by a page.
func (f *FetchMetrics) AddOrders(n int) {
	if f == nil || f.orders == nil {
		return
	}
	f.orders.Add(float64(n))
}

// IncCapHit counts a fetch aborted by the safety cap.
func (f *FetchMetrics) IncCapHit() {
	if f == nil || f.capHits == nil {
		return
	}
	f.capHits.Inc()
}

// ObserveDuration records how long a full fetch took.
func (f *FetchMetrics) ObserveDuration(d time.Duration) {
	if f == nil || f.duration == nil {
		return
	}
	f.duration.Observe(d.Seconds())
}
