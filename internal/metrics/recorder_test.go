package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/djdv/gpucache/internal/metrics"
)

func TestRecorderSetOccupancy(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := metrics.NewRecorder(reg, "test")
	r.SetOccupancy(3, 1024, 2, 512)
	r.IncEvictions(2)
	r.IncOverBudget()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	values := map[string]float64{}
	for _, fam := range families {
		for _, m := range fam.GetMetric() {
			switch fam.GetType() {
			case dto.MetricType_GAUGE:
				values[fam.GetName()] = m.GetGauge().GetValue()
			case dto.MetricType_COUNTER:
				values[fam.GetName()] = m.GetCounter().GetValue()
			}
		}
	}

	want := map[string]float64{
		"test_gpu_resource_cache_resources":          3,
		"test_gpu_resource_cache_bytes":               1024,
		"test_gpu_resource_cache_budgeted_resources":  2,
		"test_gpu_resource_cache_budgeted_bytes":      512,
		"test_gpu_resource_cache_evictions_total":     2,
		"test_gpu_resource_cache_over_budget_total":   1,
	}
	for name, expect := range want {
		if got, ok := values[name]; !ok || got != expect {
			t.Errorf("metric %s = %v (present=%v), want %v", name, got, ok, expect)
		}
	}
}
