package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerHealthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "healthCheck",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Description: "Returns server health status with component checks",
		Tags:        []string{"Health"},
	}, s.handleHealthCheck)
}

// ComponentHealth describes the health of a single component.
type ComponentHealth struct {
	Status  string `json:"status" doc:"Component status: healthy, degraded, or unhealthy"`
	Latency string `json:"latency,omitempty" doc:"Response time for this component"`
	Message string `json:"message,omitempty" doc:"Additional status information"`
}

// HealthResponse contains health check data in API responses.
type HealthResponse struct {
	Status     string                     `json:"status" doc:"Overall status: healthy, degraded, or unhealthy"`
	Mode       string                     `json:"mode" doc:"Execution mode: server or readonly"`
	Components map[string]ComponentHealth `json:"components" doc:"Individual component statuses"`
}

// HealthOutput wraps the health response for Huma.
type HealthOutput struct {
	Body HealthResponse
}

func (s *Server) handleHealthCheck(ctx context.Context, _ *struct{}) (*HealthOutput, error) {
	dbHealth := s.checkDatabase(ctx)

	overall := dbHealth.Status
	components := map[string]ComponentHealth{"database": dbHealth}

	authHealth := ComponentHealth{Status: "healthy"}
	if s.services.Auth == nil {
		authHealth = ComponentHealth{Status: "degraded", Message: "auth service not configured"}
		if overall == "healthy" {
			overall = "degraded"
		}
	}
	components["auth"] = authHealth

	mode := ""
	if s.services.Content != nil {
		mode = string(s.services.Content.Mode())
	}

	return &HealthOutput{
		Body: HealthResponse{
			Status:     overall,
			Mode:       mode,
			Components: components,
		},
	}, nil
}

// checkDatabase verifies the document store is reachable.
func (s *Server) checkDatabase(ctx context.Context) ComponentHealth {
	if s.services.DB == nil {
		return ComponentHealth{
			Status:  "degraded",
			Message: "database not configured",
		}
	}

	start := time.Now()
	err := s.services.DB.Ping(ctx)
	latency := time.Since(start)

	if err != nil {
		return ComponentHealth{
			Status:  "unhealthy",
			Latency: latency.String(),
			Message: "database ping failed",
		}
	}

	return ComponentHealth{
		Status:  "healthy",
		Latency: latency.String(),
	}
}
