// Package health aggregates readiness probes for the subsystems the API
// leans on at runtime, the database pool and the ranking sweep worker among
// them. Probes report an error; the registry turns that into the wire shape
// served by /healthz and /readyz.
package health

import (
	"context"
	"sync"
	"time"
)

// probeTimeout caps how long a single probe may run so one stuck dependency
// cannot hold the whole readiness response.
const probeTimeout = 2 * time.Second

// Check probes one subsystem. A nil return means healthy.
type Check func(ctx context.Context) error

// Result is the outcome of one probe.
type Result struct {
	Name    string `json:"name"`
	Healthy bool   `json:"healthy"`
	Error   string `json:"error,omitempty"`
}

// Report is the aggregate readiness of the process.
type Report struct {
	Healthy bool     `json:"healthy"`
	Checks  []Result `json:"checks"`
}

// Registry collects named probes. Registration order is preserved in reports.
type Registry struct {
	mu     sync.RWMutex
	order  []string
	checks map[string]Check
}

func NewRegistry() *Registry {
	return &Registry{checks: make(map[string]Check)}
}

// Register adds a probe under a name. Registering the same name again
// replaces the earlier probe.
func (r *Registry) Register(name string, check Check) {
	r.mu.Lock()
	if _, exists := r.checks[name]; !exists {
		r.order = append(r.order, name)
	}
	r.checks[name] = check
	r.mu.Unlock()
}

// Run executes every probe and returns the aggregate report. The report is
// healthy only when every probe passes; an empty registry is healthy.
func (r *Registry) Run(ctx context.Context) Report {
	r.mu.RLock()
	order := make([]string, len(r.order))
	copy(order, r.order)
	checks := make(map[string]Check, len(r.checks))
	for name, c := range r.checks {
		checks[name] = c
	}
	r.mu.RUnlock()

	report := Report{Healthy: true, Checks: make([]Result, 0, len(order))}
	for _, name := range order {
		probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
		err := checks[name](probeCtx)
		cancel()

		res := Result{Name: name, Healthy: err == nil}
		if err != nil {
			res.Error = err.Error()
			report.Healthy = false
		}
		report.Checks = append(report.Checks, res)
	}
	return report
}
