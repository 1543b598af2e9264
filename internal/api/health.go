package api

import (
	"errors"
	"net/http"
)

var errUnhealthy = errors.New("unhealthy")

// HealthHandler reports the last dependency checks.
func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) (interface{}, error) {
	return s.health.GetHealthStatus(), nil
}

// ReadinessHandler fails while any dependency check fails.
func (s *Server) ReadinessHandler(w http.ResponseWriter, r *http.Request) (interface{}, error) {
	status := s.health.GetHealthStatus()
	if !status.Healthy {
		return nil, errUnhealthy
	}

	return status, nil
}
