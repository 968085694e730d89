// Package observability provides logging, metrics, and tracing capabilities
package observability

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
)

// HealthChecker provides application health monitoring
type HealthChecker struct {
	checks     map[string]HealthCheck
	mu         sync.RWMutex
	logger     *zap.Logger
	lastStatus *HealthStatus
	telemetry  *Telemetry
}

// HealthCheck defines a health check function
type HealthCheck struct {
	Name     string
	Check    func(ctx context.Context) error
	Timeout  time.Duration
	Critical bool // If true, failure makes the app unhealthy
}

// HealthStatus represents overall health status
type HealthStatus struct {
	Status     string                     `json:"status"` // healthy, degraded, unhealthy
	Timestamp  time.Time                  `json:"timestamp"`
	Version    string                     `json:"version"`
	Uptime     string                     `json:"uptime"`
	Components map[string]ComponentHealth `json:"components"`
	Pipeline   PipelineHealth             `json:"pipeline"`
}

// ComponentHealth represents health of a single component
type ComponentHealth struct {
	Status      string    `json:"status"` // healthy, unhealthy
	Message     string    `json:"message,omitempty"`
	LastChecked time.Time `json:"last_checked"`
	Latency     int64     `json:"latency_ms"`
}

// PipelineHealth represents the health of the aggregation pipeline.
type PipelineHealth struct {
	RegisteredAdapters int       `json:"registered_adapters"`
	LastRunFindings    int       `json:"last_run_findings"`
	LastRunTime        time.Time `json:"last_run_time"`
}

// NewHealthChecker creates a new health checker
func NewHealthChecker(logger *zap.Logger, telemetry *Telemetry) *HealthChecker {
	return &HealthChecker{
		checks:    make(map[string]HealthCheck),
		logger:    logger,
		telemetry: telemetry,
	}
}

// RegisterCheck registers a health check
func (h *HealthChecker) RegisterCheck(check HealthCheck) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if check.Timeout == 0 {
		check.Timeout = 5 * time.Second
	}
	h.checks[check.Name] = check
}

// RegisterResultsRootCheck registers a check that the configured results
// root is readable. The core never executes scanners, so "healthy" here
// means only "the tree the walker reads from exists".
func (h *HealthChecker) RegisterResultsRootCheck(root string) {
	h.RegisterCheck(HealthCheck{
		Name:     "results_root",
		Critical: false,
		Timeout:  2 * time.Second,
		Check: func(ctx context.Context) error {
			info, err := os.Stat(root)
			if err != nil {
				return err
			}
			if !info.IsDir() {
				return fmt.Errorf("results root %q is not a directory", root)
			}
			return nil
		},
	})
}

// RegisterRedisCheck registers a check for the optional redis-backed parse
// cache. pinger is nil when the cache runs purely in-memory, in which case
// the check is registered as always-healthy so /healthz still reports it.
func (h *HealthChecker) RegisterRedisCheck(pinger func(ctx context.Context) error) {
	h.RegisterCheck(HealthCheck{
		Name:     "parse_cache",
		Critical: false,
		Timeout:  3 * time.Second,
		Check: func(ctx context.Context) error {
			if pinger == nil {
				return nil
			}
			return pinger(ctx)
		},
	})
}

// RegisterRegistryCheck registers a check that at least one adapter is
// registered. An aggregator with zero adapters can still run (it will just
// never match a work unit) but that is almost always a misconfiguration.
func (h *HealthChecker) RegisterRegistryCheck(adapterCount func() int) {
	h.RegisterCheck(HealthCheck{
		Name:     "adapter_registry",
		Critical: true,
		Timeout:  1 * time.Second,
		Check: func(ctx context.Context) error {
			if adapterCount() == 0 {
				return fmt.Errorf("no adapters registered")
			}
			return nil
		},
	})
}

// Check performs all health checks
func (h *HealthChecker) Check(ctx context.Context) *HealthStatus {
	h.mu.RLock()
	checks := make(map[string]HealthCheck, len(h.checks))
	for k, v := range h.checks {
		checks[k] = v
	}
	h.mu.RUnlock()

	status := &HealthStatus{
		Status:     "healthy",
		Timestamp:  time.Now(),
		Components: make(map[string]ComponentHealth),
	}

	var wg sync.WaitGroup
	var mu sync.Mutex

	for _, check := range checks {
		wg.Add(1)
		go func(c HealthCheck) {
			defer wg.Done()

			checkCtx, cancel := context.WithTimeout(ctx, c.Timeout)
			defer cancel()

			start := time.Now()
			err := c.Check(checkCtx)
			latency := time.Since(start)

			health := ComponentHealth{
				Status:      "healthy",
				LastChecked: time.Now(),
				Latency:     latency.Milliseconds(),
			}

			if err != nil {
				health.Status = "unhealthy"
				health.Message = err.Error()

				h.logger.Warn("Health check failed",
					zap.String("component", c.Name),
					zap.Error(err),
					zap.Duration("latency", latency),
				)

				// Update metrics
				if h.telemetry != nil && h.telemetry.Metrics() != nil {
					h.telemetry.Metrics().HealthStatus.WithLabelValues(c.Name).Set(0)
				}
			} else {
				if h.telemetry != nil && h.telemetry.Metrics() != nil {
					h.telemetry.Metrics().HealthStatus.WithLabelValues(c.Name).Set(1)
				}
			}

			mu.Lock()
			status.Components[c.Name] = health

			// Update overall status
			if health.Status == "unhealthy" {
				if c.Critical {
					status.Status = "unhealthy"
				} else if status.Status == "healthy" {
					status.Status = "degraded"
				}
			}
			mu.Unlock()
		}(check)
	}

	wg.Wait()

	// Update metrics
	if h.telemetry != nil && h.telemetry.Metrics() != nil {
		h.telemetry.Metrics().LastHealthCheck.SetToCurrentTime()
	}

	h.mu.Lock()
	h.lastStatus = status
	h.mu.Unlock()

	return status
}

// LivenessHandler returns an HTTP handler for liveness probes
func (h *HealthChecker) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{
			"status": "alive",
			"time":   time.Now().Format(time.RFC3339),
		})
	}
}

// ReadinessHandler returns an HTTP handler for readiness probes
func (h *HealthChecker) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
		defer cancel()

		status := h.Check(ctx)

		w.Header().Set("Content-Type", "application/json")

		if status.Status == "unhealthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		} else {
			w.WriteHeader(http.StatusOK)
		}

		json.NewEncoder(w).Encode(status)
	}
}

// HealthHandler returns an HTTP handler for detailed health info
func (h *HealthChecker) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
		defer cancel()

		status := h.Check(ctx)

		w.Header().Set("Content-Type", "application/json")

		switch status.Status {
		case "healthy":
			w.WriteHeader(http.StatusOK)
		case "degraded":
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusServiceUnavailable)
		}

		json.NewEncoder(w).Encode(status)
	}
}

// Troubleshooting provides common issue detection and remediation
type Troubleshooting struct {
	logger *zap.Logger
}

// CommonIssue represents a detected issue
type CommonIssue struct {
	Component   string   `json:"component"`
	Issue       string   `json:"issue"`
	Severity    string   `json:"severity"`
	Description string   `json:"description"`
	Remediation []string `json:"remediation_steps"`
}

// NewTroubleshooting creates a new troubleshooting helper
func NewTroubleshooting(logger *zap.Logger) *Troubleshooting {
	return &Troubleshooting{logger: logger}
}

// DiagnoseHealthStatus analyzes health status and provides remediation
func (t *Troubleshooting) DiagnoseHealthStatus(status *HealthStatus) []CommonIssue {
	var issues []CommonIssue

	for name, component := range status.Components {
		if component.Status != "healthy" {
			issue := t.diagnoseComponent(name, component)
			if issue != nil {
				issues = append(issues, *issue)
			}
		}
	}

	return issues
}

func (t *Troubleshooting) diagnoseComponent(name string, health ComponentHealth) *CommonIssue {
	switch name {
	case "results_root":
		return t.diagnoseResultsRootIssue(health)
	case "parse_cache":
		return t.diagnoseCacheIssue(health)
	case "adapter_registry":
		return t.diagnoseRegistryIssue(health)
	default:
		return &CommonIssue{
			Component:   name,
			Issue:       "Component unhealthy",
			Severity:    "high",
			Description: health.Message,
			Remediation: []string{
				"Check component logs for errors",
				"Verify the component's dependencies are reachable",
				"Restart the aggregator if other checks pass",
			},
		}
	}
}

func (t *Troubleshooting) diagnoseResultsRootIssue(health ComponentHealth) *CommonIssue {
	return &CommonIssue{
		Component:   "results_root",
		Issue:       "Results root directory unreadable",
		Severity:    "high",
		Description: health.Message,
		Remediation: []string{
			"1. Verify core.results_root in config points at a mounted directory",
			"2. Confirm the scanner run that produced individual-repos/ completed",
			"3. Check filesystem permissions on the results tree",
		},
	}
}

func (t *Troubleshooting) diagnoseCacheIssue(health ComponentHealth) *CommonIssue {
	return &CommonIssue{
		Component:   "parse_cache",
		Issue:       "Parse-result cache (redis) unreachable",
		Severity:    "low",
		Description: health.Message,
		Remediation: []string{
			"1. Verify redis.addr in config is correct",
			"2. Check network connectivity to the redis instance",
			"3. The aggregator still functions without redis (in-memory fallback); this is advisory only",
		},
	}
}

func (t *Troubleshooting) diagnoseRegistryIssue(health ComponentHealth) *CommonIssue {
	return &CommonIssue{
		Component:   "adapter_registry",
		Issue:       "No adapters registered",
		Severity:    "high",
		Description: health.Message,
		Remediation: []string{
			"1. Verify adapters.All() is wired into the registry at startup",
			"2. Note that adapter.dev_dir is not used to load adapters; only the built-in set is registered",
		},
	}
}

// GetCommonRemediations returns common remediation patterns
func (t *Troubleshooting) GetCommonRemediations() map[string][]string {
	return map[string][]string{
		"adapter_timeout": {
			"The core applies no per-adapter timeout; check for a stuck filesystem mount instead",
			"Verify the tool output file size is within max_file_size_bytes",
		},
		"schema_validation_failure": {
			"Check the adapter's emitted finding against internal/schema/schema.json",
			"Validation is advisory; the finding is still included in the aggregation result",
		},
		"cache_stale": {
			"Parse-cache entries are keyed on (tool, path, size, mtime); a changed file invalidates automatically",
			"Force a fresh parse by clearing the redis key or restarting the in-memory cache",
		},
	}
}
