package handler

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func servingStatus(t *testing.T, m *HealthMonitor, service string) healthpb.HealthCheckResponse_ServingStatus {
	t.Helper()
	resp, err := m.Server().Check(context.Background(), &healthpb.HealthCheckRequest{Service: service})
	if err != nil {
		t.Fatalf("Check(%q): %v", service, err)
	}
	return resp.GetStatus()
}

func TestHealthMonitor_StartsNotServing(t *testing.T) {
	m := NewHealthMonitor("flash-item", zap.NewNop())

	if m.Healthy() {
		t.Error("expected unhealthy before the first check")
	}
	if got := servingStatus(t, m, "flash-item"); got != healthpb.HealthCheckResponse_NOT_SERVING {
		t.Errorf("expected NOT_SERVING, got %v", got)
	}
}

func TestHealthMonitor_Check(t *testing.T) {
	m := NewHealthMonitor("flash-item", zap.NewNop())
	m.Register("database", func(ctx context.Context) error { return nil })

	if !m.Check(context.Background()) {
		t.Fatal("expected all checks to pass")
	}
	if got := servingStatus(t, m, ""); got != healthpb.HealthCheckResponse_SERVING {
		t.Errorf("overall: expected SERVING, got %v", got)
	}
	if got := servingStatus(t, m, "flash-item"); got != healthpb.HealthCheckResponse_SERVING {
		t.Errorf("service: expected SERVING, got %v", got)
	}

	m.Register("redis", func(ctx context.Context) error { return errors.New("connection refused") })
	if m.Check(context.Background()) {
		t.Fatal("expected failing check")
	}
	if m.Healthy() {
		t.Error("expected unhealthy")
	}
	if got := servingStatus(t, m, "flash-item"); got != healthpb.HealthCheckResponse_NOT_SERVING {
		t.Errorf("expected NOT_SERVING, got %v", got)
	}
}

func TestHealthMonitor_Shutdown(t *testing.T) {
	m := NewHealthMonitor("flash-item", zap.NewNop())
	m.Check(context.Background())

	m.Shutdown()
	if m.Healthy() {
		t.Error("expected unhealthy after shutdown")
	}
	if got := servingStatus(t, m, "flash-item"); got != healthpb.HealthCheckResponse_NOT_SERVING {
		t.Errorf("expected NOT_SERVING, got %v", got)
	}
}
