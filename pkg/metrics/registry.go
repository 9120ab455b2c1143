package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RegistryMetrics records listing, offer and import activity.
type RegistryMetrics struct {
	listingRequests *prometheus.CounterVec
	listingDuration *prometheus.HistogramVec
	offers          *prometheus.CounterVec
	offerDuration   *prometheus.HistogramVec
	importRows      *prometheus.CounterVec
}

// NewRegistryMetrics registers the registry metrics on the provided registerer.
func NewRegistryMetrics(reg prometheus.Registerer) *RegistryMetrics {
	if reg == nil {
		return &RegistryMetrics{}
	}
	listingRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "listing_requests_total",
		Help: "Listing queries grouped by filter outcome.",
	}, []string{"outcome"})
	listingDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "listing_query_duration_seconds",
		Help:    "Duration of listing queries in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	offers := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "offer_pdf_total",
		Help: "Offer documents rendered, by language and result.",
	}, []string{"lang", "result"})
	offerDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "offer_pdf_duration_seconds",
		Help:    "Duration of offer rendering in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"lang"})
	importRows := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "import_rows_total",
		Help: "Imported rows by result.",
	}, []string{"result"})
	reg.MustRegister(listingRequests, listingDuration, offers, offerDuration, importRows)
	return &RegistryMetrics{
		listingRequests: listingRequests,
		listingDuration: listingDuration,
		offers:          offers,
		offerDuration:   offerDuration,
		importRows:      importRows,
	}
}

// ObserveListing records one listing query and how its filters resolved.
func (m *RegistryMetrics) ObserveListing(outcome string, duration time.Duration) {
	if m == nil || m.listingRequests == nil {
		return
	}
	outcome = normalizeLabel(outcome)
	m.listingRequests.WithLabelValues(outcome).Inc()
	m.listingDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// ObserveOffer records one offer render attempt.
func (m *RegistryMetrics) ObserveOffer(lang string, err error, duration time.Duration) {
	if m == nil || m.offers == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	lang = normalizeLabel(lang)
	m.offers.WithLabelValues(lang, result).Inc()
	m.offerDuration.WithLabelValues(lang).Observe(duration.Seconds())
}

// AddImportRows increments the imported row counter for result.
func (m *RegistryMetrics) AddImportRows(result string, n int) {
	if m == nil || m.importRows == nil || n <= 0 {
		return
	}
	m.importRows.WithLabelValues(normalizeLabel(result)).Add(float64(n))
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
