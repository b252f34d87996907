package httpapi

import (
	"context"
	"time"

	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"truefund.org/internal/obs"
)

// HealthServer exposes grpc.health.v1.Health. Its serving status follows the readiness
// probe, for the whole server ("") and for serviceName.
type HealthServer struct {
	*health.Server

	readiness readinessChecker
	interval  time.Duration
}

// NewHealthServer creates the gRPC health service. It reports NOT_SERVING until the
// first successful probe.
func NewHealthServer(r readinessChecker, interval time.Duration) *HealthServer {
	if r == nil {
		r = ReadyProbe{}
	}
	if interval <= 0 {
		interval = 5 * time.Second
	}
	s := &HealthServer{
		Server:    health.NewServer(),
		readiness: r,
		interval:  interval,
	}
	s.setStatus(healthpb.HealthCheckResponse_NOT_SERVING)
	return s
}

// Probe runs the readiness check once and publishes the result.
func (s *HealthServer) Probe(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, s.interval)
	defer cancel()
	if err := s.readiness.Check(ctx); err != nil {
		obs.SetReady(false)
		s.setStatus(healthpb.HealthCheckResponse_NOT_SERVING)
		return false
	}
	obs.SetReady(true)
	s.setStatus(healthpb.HealthCheckResponse_SERVING)
	return true
}

// Watch probes until ctx ends, then marks the server as shutting down.
func (s *HealthServer) Watch(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		s.Probe(ctx)
		select {
		case <-ctx.Done():
			s.Shutdown()
			return
		case <-ticker.C:
		}
	}
}

func (s *HealthServer) setStatus(st healthpb.HealthCheckResponse_ServingStatus) {
	s.SetServingStatus("", st)
	s.SetServingStatus(serviceName, st)
}
