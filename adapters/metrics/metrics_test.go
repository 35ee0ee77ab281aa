package metrics_test

import (
	"strings"
	"testing"

	"github.com/artpar/cmdgate/adapters/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

func TestNewWithRegistry(t *testing.T) {
	// Use a new registry to avoid conflicts with other tests
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg)

	if m == nil {
		t.Fatal("NewWithRegistry returned nil")
	}
	if m.DispatchesTotal == nil {
		t.Error("DispatchesTotal is nil")
	}
	if m.DispatchDuration == nil {
		t.Error("DispatchDuration is nil")
	}
	if m.ValidationErrors == nil {
		t.Error("ValidationErrors is nil")
	}
	if m.RegisteredCommands == nil {
		t.Error("RegisteredCommands is nil")
	}
	if m.ConfigReloads == nil {
		t.Error("ConfigReloads is nil")
	}
	if m.RequestsTotal == nil {
		t.Error("RequestsTotal is nil")
	}
	if m.RequestsInFlight == nil {
		t.Error("RequestsInFlight is nil")
	}
}

func TestDispatchesTotal(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg)

	m.DispatchesTotal.WithLabelValues("ban", "dispatched").Inc()
	m.DispatchesTotal.WithLabelValues("ban", "rejected").Add(2)
	m.DispatchesTotal.WithLabelValues("roll", "throttled").Inc()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather error: %v", err)
	}

	found := false
	for _, f := range families {
		if f.GetName() == "cmdgate_dispatches_total" {
			found = true
			if len(f.GetMetric()) != 3 {
				t.Errorf("expected 3 metric series, got %d", len(f.GetMetric()))
			}
		}
	}
	if !found {
		t.Error("cmdgate_dispatches_total metric not found")
	}
}

func TestValidationErrors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg)

	m.ValidationErrors.WithLabelValues("ban", "type").Inc()
	m.ValidationErrors.WithLabelValues("ban", "required").Add(3)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather error: %v", err)
	}

	found := false
	for _, f := range families {
		if f.GetName() == "cmdgate_validation_errors_total" {
			found = true
		}
	}
	if !found {
		t.Error("cmdgate_validation_errors_total metric not found")
	}
}

func TestDispatchDuration(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg)

	m.DispatchDuration.WithLabelValues("ban").Observe(0.002)
	m.DispatchDuration.WithLabelValues("ban").Observe(0.05)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather error: %v", err)
	}

	found := false
	for _, f := range families {
		if f.GetName() == "cmdgate_dispatch_duration_seconds" {
			found = true
		}
	}
	if !found {
		t.Error("cmdgate_dispatch_duration_seconds metric not found")
	}
}

func TestRegisteredCommands(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg)

	m.RegisteredCommands.Set(4)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather error: %v", err)
	}

	for _, f := range families {
		if f.GetName() == "cmdgate_registered_commands" {
			if got := f.GetMetric()[0].GetGauge().GetValue(); got != 4 {
				t.Errorf("registered_commands = %v, want 4", got)
			}
			return
		}
	}
	t.Error("cmdgate_registered_commands metric not found")
}

func TestRequestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg)

	m.RequestsTotal.WithLabelValues("GET", "/commands", "2xx").Inc()
	m.RequestDuration.WithLabelValues("GET", "/commands", "2xx").Observe(0.01)
	m.RequestsInFlight.Inc()
	m.RequestsInFlight.Dec()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather error: %v", err)
	}

	want := map[string]bool{
		"cmdgate_http_requests_total":           false,
		"cmdgate_http_request_duration_seconds": false,
		"cmdgate_http_requests_in_flight":       false,
	}
	for _, f := range families {
		if _, ok := want[f.GetName()]; ok {
			want[f.GetName()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("%s metric not found", name)
		}
	}
}

func TestNormalizePath(t *testing.T) {
	if got := metrics.NormalizePath("/commands"); got != "/commands" {
		t.Errorf("NormalizePath(/commands) = %q", got)
	}

	long := "/" + strings.Repeat("a", 60)
	got := metrics.NormalizePath(long)
	if len(got) != 53 {
		t.Errorf("normalized length = %d, want 53", len(got))
	}
}
