package health

import (
	"context"
	"sort"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates total failure.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	components map[string]Pinger
}

// New creates a Service checking the search engine under the name "elasticsearch".
func New(engine Pinger) *Service {
	return &Service{components: map[string]Pinger{"elasticsearch": engine}}
}

// With registers an additional named component and returns s.
func (s *Service) With(name string, p Pinger) *Service {
	s.components[name] = p
	return s
}

// Check pings every component. All failing is Unhealthy, some failing is Degraded.
func (s *Service) Check(ctx context.Context) Report {
	names := make([]string, 0, len(s.components))
	for name := range s.components {
		names = append(names, name)
	}
	sort.Strings(names)

	checks := make(map[string]CheckResult, len(names))
	failed := 0
	for _, name := range names {
		if err := s.components[name].Ping(ctx); err != nil {
			checks[name] = CheckError
			failed++
			continue
		}
		checks[name] = CheckOK
	}

	status := Healthy
	switch {
	case failed == len(names) && failed > 0:
		status = Unhealthy
	case failed > 0:
		status = Degraded
	}

	return Report{Status: status, Checks: checks}
}
