package telemetry

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestObserveExchangeRecordsDurationAndError(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.ObserveExchange("obd", 0.05, nil)
	m.ObserveExchange("obd", 0.1, errBoom)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}

	var sawHistogram, sawCounter bool
	for _, f := range families {
		switch f.GetName() {
		case "obdcore_transport_exchange_duration_seconds":
			sawHistogram = true
			if got := f.Metric[0].GetHistogram().GetSampleCount(); got != 2 {
				t.Errorf("sample count = %d, want 2", got)
			}
		case "obdcore_transport_exchange_errors_total":
			sawCounter = true
			if got := f.Metric[0].GetCounter().GetValue(); got != 1 {
				t.Errorf("error count = %v, want 1", got)
			}
		}
	}
	if !sawHistogram || !sawCounter {
		t.Errorf("missing expected metric families: histogram=%v counter=%v", sawHistogram, sawCounter)
	}
}

func TestObserveDiscoveryModule(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.ObserveDiscoveryModule("7E0", "engine", 85)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}

	var found bool
	for _, f := range families {
		if f.GetName() != "obdcore_discovery_module_confidence" {
			continue
		}
		found = true
		for _, metric := range f.Metric {
			if metric.GetGauge().GetValue() != 85 {
				t.Errorf("confidence = %v, want 85", metric.GetGauge().GetValue())
			}
		}
	}
	if !found {
		t.Error("expected obdcore_discovery_module_confidence metric family")
	}
}

var errBoom = &boomError{}

type boomError struct{}

func (*boomError) Error() string { return "boom" }
