package metrics

import (
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"
)

// Components tracked by the health registry
const (
	ComponentEngine = "engine"
	ComponentStore  = "store"
)

// criticalComponents must be healthy for the bridge to report ready
var criticalComponents = []string{ComponentEngine, ComponentStore}

// HealthStatus is the JSON body served by /health and /ready
type HealthStatus struct {
	Status     string            `json:"status"` // "healthy", "unhealthy", "ready", "not_ready"
	Timestamp  time.Time         `json:"timestamp"`
	Components map[string]string `json:"components,omitempty"`
	Message    string            `json:"message,omitempty"`
	Version    string            `json:"version,omitempty"`
	Uptime     string            `json:"uptime,omitempty"`
}

// ComponentHealth tracks the health of a single component
type ComponentHealth struct {
	Name    string
	Healthy bool
	Message string
	Updated time.Time
}

// HealthChecker records the last reported state of each component
type HealthChecker struct {
	mu         sync.RWMutex
	components map[string]ComponentHealth
	startTime  time.Time
	version    string
}

func newHealthChecker() *HealthChecker {
	return &HealthChecker{
		components: make(map[string]ComponentHealth),
		startTime:  time.Now(),
	}
}

var healthChecker = newHealthChecker()

// SetVersion sets the version string for health responses
func SetVersion(version string) {
	healthChecker.mu.Lock()
	defer healthChecker.mu.Unlock()
	healthChecker.version = version
}

// UpdateComponent records the health of a component, registering it on first use
func UpdateComponent(name string, healthy bool, message string) {
	healthChecker.mu.Lock()
	defer healthChecker.mu.Unlock()

	healthChecker.components[name] = ComponentHealth{
		Name:    name,
		Healthy: healthy,
		Message: message,
		Updated: time.Now(),
	}
}

func describe(comp ComponentHealth, ok, notOK string) string {
	if comp.Healthy {
		return ok
	}
	return notOK + ": " + comp.Message
}

// GetHealth reports unhealthy if any registered component is unhealthy
func GetHealth() HealthStatus {
	healthChecker.mu.RLock()
	defer healthChecker.mu.RUnlock()

	status := HealthStatus{
		Status:     "healthy",
		Timestamp:  time.Now(),
		Components: make(map[string]string, len(healthChecker.components)),
		Version:    healthChecker.version,
		Uptime:     time.Since(healthChecker.startTime).String(),
	}

	for name, comp := range healthChecker.components {
		if !comp.Healthy {
			status.Status = "unhealthy"
		}
		status.Components[name] = describe(comp, "healthy", "unhealthy")
	}
	return status
}

// GetReadiness reports ready once every critical component is registered and healthy
func GetReadiness() HealthStatus {
	healthChecker.mu.RLock()
	defer healthChecker.mu.RUnlock()

	status := HealthStatus{
		Status:     "ready",
		Timestamp:  time.Now(),
		Components: make(map[string]string, len(criticalComponents)),
		Version:    healthChecker.version,
		Uptime:     time.Since(healthChecker.startTime).String(),
	}

	var waiting []string
	for _, name := range criticalComponents {
		comp, exists := healthChecker.components[name]
		if !exists {
			status.Components[name] = "not registered"
			waiting = append(waiting, name)
			continue
		}
		status.Components[name] = describe(comp, "ready", "not ready")
		if !comp.Healthy {
			waiting = append(waiting, name)
		}
	}

	if len(waiting) > 0 {
		sort.Strings(waiting)
		status.Status = "not_ready"
		status.Message = "waiting for " + waiting[0]
	}
	return status
}

func writeStatus(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

// HealthHandler serves GetHealth; 503 when unhealthy
func HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		health := GetHealth()
		code := http.StatusOK
		if health.Status == "unhealthy" {
			code = http.StatusServiceUnavailable
		}
		writeStatus(w, code, health)
	}
}

// ReadyHandler serves GetReadiness; 503 until ready
func ReadyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		readiness := GetReadiness()
		code := http.StatusOK
		if readiness.Status != "ready" {
			code = http.StatusServiceUnavailable
		}
		writeStatus(w, code, readiness)
	}
}

// LivenessHandler always answers 200 while the process is running
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, map[string]string{
			"status": "alive",
			"uptime": time.Since(healthChecker.startTime).String(),
		})
	}
}

// NewServeMux returns a mux serving /metrics, /health, /ready and /live
func NewServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	mux.Handle("/health", HealthHandler())
	mux.Handle("/ready", ReadyHandler())
	mux.Handle("/live", LivenessHandler())
	return mux
}
