package handler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// HealthCheck probes one dependency.
type HealthCheck func(ctx context.Context) error

// HealthMonitor runs dependency probes and mirrors the result into the gRPC health
// service, which is also what /health reports.
type HealthMonitor struct {
	service string
	server  *health.Server
	logger  *zap.Logger

	mu     sync.Mutex
	checks map[string]HealthCheck

	healthy atomic.Bool
}

func NewHealthMonitor(service string, logger *zap.Logger) *HealthMonitor {
	m := &HealthMonitor{
		service: service,
		server:  health.NewServer(),
		logger:  logger,
		checks:  make(map[string]HealthCheck),
	}
	m.setStatus(healthpb.HealthCheckResponse_NOT_SERVING)
	return m
}

func (m *HealthMonitor) Register(name string, check HealthCheck) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checks[name] = check
}

// Server is registered on the gRPC server with healthpb.RegisterHealthServer.
func (m *HealthMonitor) Server() *health.Server {
	return m.server
}

func (m *HealthMonitor) Healthy() bool {
	return m.healthy.Load()
}

// Check runs every probe once and returns true when all of them pass.
func (m *HealthMonitor) Check(ctx context.Context) bool {
	m.mu.Lock()
	checks := make(map[string]HealthCheck, len(m.checks))
	for name, check := range m.checks {
		checks[name] = check
	}
	m.mu.Unlock()

	ok := true
	for name, check := range checks {
		if err := check(ctx); err != nil {
			m.logger.Warn("health check failed", zap.String("dependency", name), zap.Error(err))
			ok = false
		}
	}

	if ok {
		m.setStatus(healthpb.HealthCheckResponse_SERVING)
	} else {
		m.setStatus(healthpb.HealthCheckResponse_NOT_SERVING)
	}
	return ok
}

// Run re-checks every interval until ctx is done.
func (m *HealthMonitor) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			checkCtx, cancel := context.WithTimeout(ctx, interval)
			m.Check(checkCtx)
			cancel()
		}
	}
}

// Shutdown marks every service NOT_SERVING ahead of a graceful stop.
func (m *HealthMonitor) Shutdown() {
	m.healthy.Store(false)
	m.server.Shutdown()
}

func (m *HealthMonitor) setStatus(status healthpb.HealthCheckResponse_ServingStatus) {
	m.healthy.Store(status == healthpb.HealthCheckResponse_SERVING)
	m.server.SetServingStatus("", status)
	m.server.SetServingStatus(m.service, status)
}
