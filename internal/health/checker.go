package health

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/cancer-registry-edits/pkg/codes"
)

// State is the health of one component or of the whole service
type State string

const (
	StateHealthy   State = "healthy"
	StateWarning   State = "warning"
	StateUnhealthy State = "unhealthy"
)

// Component is the result of one check
type Component struct {
	Name     string                 `json:"name"`
	Status   State                  `json:"status"`
	Message  string                 `json:"message"`
	Duration time.Duration          `json:"duration"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
	Error    string                 `json:"error,omitempty"`
}

// Status aggregates every registered check
type Status struct {
	Overall    State                `json:"status"`
	Timestamp  time.Time            `json:"timestamp"`
	Version    string               `json:"version"`
	Uptime     string               `json:"uptime"`
	Goroutines int                  `json:"goroutines"`
	Components map[string]Component `json:"components"`
}

// Check inspects one dependency
type Check interface {
	Name() string
	Check(ctx context.Context) Component
}

// Checker runs the registered checks on demand
type Checker struct {
	mu      sync.RWMutex
	checks  map[string]Check
	version string
	started time.Time
	timeout time.Duration
	logger  *logrus.Logger
}

// NewChecker creates a checker; every check gets at most timeout
func NewChecker(version string, timeout time.Duration, logger *logrus.Logger) *Checker {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Checker{
		checks:  make(map[string]Check),
		version: version,
		started: time.Now(),
		timeout: timeout,
		logger:  logger,
	}
}

// RegisterCheck adds or replaces a check by name
func (c *Checker) RegisterCheck(check Check) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[check.Name()] = check
}

// Run executes all checks concurrently and aggregates the result.
// One unhealthy component makes the service unhealthy.
func (c *Checker) Run(ctx context.Context) Status {
	c.mu.RLock()
	checks := make([]Check, 0, len(c.checks))
	for _, check := range c.checks {
		checks = append(checks, check)
	}
	c.mu.RUnlock()
	sort.Slice(checks, func(i, j int) bool { return checks[i].Name() < checks[j].Name() })

	results := make([]Component, len(checks))
	var wg sync.WaitGroup
	for i, check := range checks {
		wg.Add(1)
		go func(i int, check Check) {
			defer wg.Done()
			checkCtx, cancel := context.WithTimeout(ctx, c.timeout)
			defer cancel()

			start := time.Now()
			result := check.Check(checkCtx)
			result.Name = check.Name()
			result.Duration = time.Since(start)
			results[i] = result
		}(i, check)
	}
	wg.Wait()

	status := Status{
		Overall:    StateHealthy,
		Timestamp:  time.Now().UTC(),
		Version:    c.version,
		Uptime:     time.Since(c.started).Round(time.Second).String(),
		Goroutines: runtime.NumGoroutine(),
		Components: make(map[string]Component, len(results)),
	}
	for _, r := range results {
		status.Components[r.Name] = r
		switch r.Status {
		case StateUnhealthy:
			status.Overall = StateUnhealthy
		case StateWarning:
			if status.Overall == StateHealthy {
				status.Overall = StateWarning
			}
		}
		if r.Status != StateHealthy {
			c.logger.WithFields(logrus.Fields{
				"component": r.Name,
				"status":    r.Status,
				"error":     r.Error,
			}).Warn("Health check degraded")
		}
	}
	return status
}

// DictionaryCheck reports the size of every code table.
// An empty table is a warning: the server runs but every check against it fails.
type DictionaryCheck struct {
	Registry *codes.Registry
}

// Name returns the check name
func (d *DictionaryCheck) Name() string { return "dictionaries" }

// Check inspects the loaded tables
func (d *DictionaryCheck) Check(_ context.Context) Component {
	if d.Registry == nil {
		return Component{Status: StateUnhealthy, Message: "code registry not loaded"}
	}

	meta := make(map[string]interface{}, len(codes.TableNames))
	var empty []string
	for _, name := range codes.TableNames {
		dict, _ := d.Registry.Table(name)
		meta[name] = dict.Len()
		if dict.Len() == 0 {
			empty = append(empty, name)
		}
	}

	if len(empty) > 0 {
		return Component{
			Status:   StateWarning,
			Message:  fmt.Sprintf("empty tables: %v", empty),
			Metadata: meta,
		}
	}
	return Component{Status: StateHealthy, Message: "all tables loaded", Metadata: meta}
}

// Pinger is the part of a Redis client the Redis check needs
type Pinger interface {
	Ping(ctx context.Context) *redis.StatusCmd
}

// RedisCheck pings the progress broker. Redis only carries progress events,
// so an unreachable broker is a warning.
type RedisCheck struct {
	Client     Pinger
	MaxLatency time.Duration
}

// Name returns the check name
func (r *RedisCheck) Name() string { return "redis" }

// Check pings Redis
func (r *RedisCheck) Check(ctx context.Context) Component {
	start := time.Now()
	if err := r.Client.Ping(ctx).Err(); err != nil {
		return Component{Status: StateWarning, Message: "redis unreachable", Error: err.Error()}
	}

	latency := time.Since(start)
	if r.MaxLatency > 0 && latency > r.MaxLatency {
		return Component{
			Status:   StateWarning,
			Message:  fmt.Sprintf("slow ping: %v", latency),
			Metadata: map[string]interface{}{"latency_ms": latency.Milliseconds()},
		}
	}
	return Component{Status: StateHealthy, Message: "ok", Metadata: map[string]interface{}{"latency_ms": latency.Milliseconds()}}
}
