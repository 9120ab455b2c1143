package metrics

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestRegistryMetricsExportsCountersAndHistograms(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewRegistryMetrics(reg)
	metrics.ObserveListing("ok", 20*time.Millisecond)
	metrics.ObserveListing("invalid_filter", 5*time.Millisecond)
	metrics.ObserveListing("ok", 10*time.Millisecond)
	metrics.ObserveOffer("en", nil, 150*time.Millisecond)
	metrics.ObserveOffer("en", errors.New("render"), time.Millisecond)
	metrics.AddImportRows("created", 3)
	metrics.AddImportRows("failed", 0)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "listing_requests_total", "outcome", "ok"); err != nil {
		t.Fatalf("fetch listing ok: %v", err)
	} else if got != 2 {
		t.Fatalf("expected listing ok=2, got %f", got)
	}
	if got, err := fetchCounterValue(mfs, "listing_requests_total", "outcome", "invalid_filter"); err != nil {
		t.Fatalf("fetch listing invalid: %v", err)
	} else if got != 1 {
		t.Fatalf("expected listing invalid=1, got %f", got)
	}
	if got, err := fetchHistogramSum(mfs, "listing_query_duration_seconds", "outcome", "ok"); err != nil {
		t.Fatalf("fetch listing duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected listing duration sum > 0, got %f", got)
	}
	if got, err := fetchCounterValue(mfs, "offer_pdf_total", "result", "error"); err != nil {
		t.Fatalf("fetch offer errors: %v", err)
	} else if got != 1 {
		t.Fatalf("expected offer error=1, got %f", got)
	}
	if got, err := fetchCounterValue(mfs, "import_rows_total", "result", "created"); err != nil {
		t.Fatalf("fetch import rows: %v", err)
	} else if got != 3 {
		t.Fatalf("expected import created=3, got %f", got)
	}
	if _, err := fetchCounterValue(mfs, "import_rows_total", "result", "failed"); err == nil {
		t.Fatal("expected zero-row import to be skipped")
	}
}

func TestNilRegistryMetricsIsNoop(t *testing.T) {
	var metrics *RegistryMetrics
	metrics.ObserveListing("ok", time.Second)
	metrics.ObserveOffer("lt", nil, time.Second)
	metrics.AddImportRows("created", 1)

	unregistered := NewRegistryMetrics(nil)
	unregistered.ObserveListing("", time.Second)
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}
