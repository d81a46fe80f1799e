package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the engine's Prometheus collectors. All methods are nil-safe
// so services can run without metrics in tests.
type Metrics struct {
	SearchDuration  prometheus.Histogram
	SearchResults   prometheus.Histogram
	CandidateCache  *prometheus.CounterVec
	ContactRequests *prometheus.CounterVec
	Messages        *prometheus.CounterVec
	Listings        *prometheus.CounterVec
	ScoreRecomputed prometheus.Counter
	HTTPDuration    *prometheus.HistogramVec
}

// New registers with the default registry.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers with reg. Tests pass a fresh prometheus.NewRegistry().
func NewWith(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		SearchDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "carelink_search_duration_seconds",
			Help:    "Duration of discovery searches including candidate loading",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
		SearchResults: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "carelink_search_results",
			Help:    "Number of candidates matching a search before pagination",
			Buckets: prometheus.ExponentialBuckets(1, 4, 7),
		}),
		CandidateCache: f.NewCounterVec(prometheus.CounterOpts{
			Name: "carelink_candidate_cache_total",
			Help: "Candidate cache lookups by result",
		}, []string{"result"}), // hit, miss, error
		ContactRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "carelink_contact_requests_total",
			Help: "Contact request operations by outcome",
		}, []string{"outcome"}), // created, conflict, accepted, rejected, denied
		Messages: f.NewCounterVec(prometheus.CounterOpts{
			Name: "carelink_messages_total",
			Help: "Message send attempts by outcome",
		}, []string{"outcome"}), // sent, denied
		Listings: f.NewCounterVec(prometheus.CounterOpts{
			Name: "carelink_listings_total",
			Help: "Listing operations by outcome",
		}, []string{"outcome"}), // created, blocked, featured, feature_blocked, deactivated
		ScoreRecomputed: f.NewCounter(prometheus.CounterOpts{
			Name: "carelink_care_score_recomputed_total",
			Help: "Care score recomputations on attribute writes and backfills",
		}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "carelink_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route pattern",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

func (m *Metrics) ObserveSearch(start time.Time, matched int) {
	if m == nil {
		return
	}
	m.SearchDuration.Observe(time.Since(start).Seconds())
	m.SearchResults.Observe(float64(matched))
}

func (m *Metrics) IncCandidateCache(result string) {
	if m != nil {
		m.CandidateCache.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) IncContactRequest(outcome string) {
	if m != nil {
		m.ContactRequests.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) IncMessage(outcome string) {
	if m != nil {
		m.Messages.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) IncListing(outcome string) {
	if m != nil {
		m.Listings.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) IncScoreRecomputed() {
	if m != nil {
		m.ScoreRecomputed.Inc()
	}
}

func (m *Metrics) ObserveHTTP(method, route string, d time.Duration) {
	if m != nil {
		m.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
	}
}
