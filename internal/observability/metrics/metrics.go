package metrics

import (
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

type requestLabel struct {
	method string
	path   string
	status string
}

// Recorder aggregates in-memory counters and gauges for HTTP requests, session
// lifecycle events, authorization denials, and backend rejections. It
// coordinates concurrent writers via a RWMutex while exposing a thread-safe
// gauge for active session tracking.
type Recorder struct {
	mu             sync.RWMutex
	requestCount   map[requestLabel]uint64
	requestDur     map[requestLabel]time.Duration
	sessionEvents  map[string]uint64
	deniedOps      map[string]uint64
	backendRejects map[string]uint64
	activeSessions atomic.Int64
}

var defaultRecorder = New()

// New constructs an empty Recorder with initialized backing maps so callers can
// immediately record metrics without additional setup.
func New() *Recorder {
	return &Recorder{
		requestCount:   make(map[requestLabel]uint64),
		requestDur:     make(map[requestLabel]time.Duration),
		sessionEvents:  make(map[string]uint64),
		deniedOps:      make(map[string]uint64),
		backendRejects: make(map[string]uint64),
	}
}

// Default returns the singleton Recorder shared across helper functions for
// packages that do not require custom instrumentation pipelines.
func Default() *Recorder {
	return defaultRecorder
}

// ObserveRequest normalizes the request label set and accumulates totals for
// request count and cumulative duration by HTTP method, normalized path, and
// status code.
func (r *Recorder) ObserveRequest(method, path string, status int, duration time.Duration) {
	label := requestLabel{
		method: strings.ToUpper(method),
		path:   normalizePath(path),
		status: fmt.Sprintf("%d", status),
	}
	r.mu.Lock()
	r.requestCount[label]++
	r.requestDur[label] += duration
	r.mu.Unlock()
}

// SessionOpened records a login event and increments the active session gauge
// atomically so concurrent logins remain consistent.
func (r *Recorder) SessionOpened() {
	r.incrementSessionEvent("opened")
	r.activeSessions.Add(1)
}

// SessionClosed records a logout event and decrements the active session
// gauge, guarding against negative counts when concurrent updates race.
func (r *Recorder) SessionClosed() {
	r.incrementSessionEvent("closed")
	r.decrementGauge(&r.activeSessions)
}

// SessionExpired records an idle expiry event and decrements the active
// session gauge.
func (r *Recorder) SessionExpired() {
	r.incrementSessionEvent("expired")
	r.decrementGauge(&r.activeSessions)
}

func (r *Recorder) incrementSessionEvent(event string) {
	normalized := normalizeName(event)
	r.mu.Lock()
	r.sessionEvents[normalized]++
	r.mu.Unlock()
}

// ObserveDenied records an authorization denial keyed by operation name
// (e.g., "sendKeyEvent", "addSongToPlaylist").
func (r *Recorder) ObserveDenied(operation string) {
	op := normalizeName(operation)
	r.mu.Lock()
	r.deniedOps[op]++
	r.mu.Unlock()
}

// ObserveBackendReject records a backend rejection keyed by operation name.
func (r *Recorder) ObserveBackendReject(operation string) {
	op := normalizeName(operation)
	r.mu.Lock()
	r.backendRejects[op]++
	r.mu.Unlock()
}

// ActiveSessions exposes the current gauge of concurrently open sessions.
func (r *Recorder) ActiveSessions() int64 {
	return r.activeSessions.Load()
}

// DeniedCounts returns a copy of the denial counters for testing and
// reporting purposes.
func (r *Recorder) DeniedCounts() map[string]uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	counts := make(map[string]uint64, len(r.deniedOps))
	for k, v := range r.deniedOps {
		counts[k] = v
	}
	return counts
}

// Reset clears all counters and gauges on the recorder. It is intended for
// test setups.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requestCount = make(map[requestLabel]uint64)
	r.requestDur = make(map[requestLabel]time.Duration)
	r.sessionEvents = make(map[string]uint64)
	r.deniedOps = make(map[string]uint64)
	r.backendRejects = make(map[string]uint64)
	r.activeSessions.Store(0)
}

// Handler exposes the Recorder as an http.Handler that writes Prometheus text
// exposition data with the appropriate content type.
func (r *Recorder) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4")
		r.Write(w)
	})
}

// Write renders the Recorder's metrics in Prometheus text format, sorting
// label sets to provide stable output for scrapes and tests.
func (r *Recorder) Write(w io.Writer) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	requestLabels := r.sortedRequestLabels()
	sessionEvents := sortedKeys(r.sessionEvents)
	deniedOps := sortedKeys(r.deniedOps)
	backendRejects := sortedKeys(r.backendRejects)

	fmt.Fprintln(w, "# HELP stagelink_http_requests_total Total number of HTTP requests processed by the gateway")
	fmt.Fprintln(w, "# TYPE stagelink_http_requests_total counter")
	for _, label := range requestLabels {
		count := r.requestCount[label]
		fmt.Fprintf(w, "stagelink_http_requests_total{method=\"%s\",path=\"%s\",status=\"%s\"} %d\n", label.method, label.path, label.status, count)
	}

	fmt.Fprintln(w, "# HELP stagelink_http_request_duration_seconds_sum Cumulative duration of HTTP requests in seconds")
	fmt.Fprintln(w, "# TYPE stagelink_http_request_duration_seconds_sum counter")
	for _, label := range requestLabels {
		duration := r.requestDur[label].Seconds()
		fmt.Fprintf(w, "stagelink_http_request_duration_seconds_sum{method=\"%s\",path=\"%s\",status=\"%s\"} %f\n", label.method, label.path, label.status, duration)
	}

	fmt.Fprintln(w, "# HELP stagelink_http_request_duration_seconds_count Total number of observations for request durations")
	fmt.Fprintln(w, "# TYPE stagelink_http_request_duration_seconds_count counter")
	for _, label := range requestLabels {
		count := r.requestCount[label]
		fmt.Fprintf(w, "stagelink_http_request_duration_seconds_count{method=\"%s\",path=\"%s\",status=\"%s\"} %d\n", label.method, label.path, label.status, count)
	}

	fmt.Fprintln(w, "# HELP stagelink_session_events_total Session lifecycle events by type")
	fmt.Fprintln(w, "# TYPE stagelink_session_events_total counter")
	for _, event := range sessionEvents {
		fmt.Fprintf(w, "stagelink_session_events_total{event=\"%s\"} %d\n", event, r.sessionEvents[event])
	}

	fmt.Fprintln(w, "# HELP stagelink_active_sessions Current number of open sessions")
	fmt.Fprintln(w, "# TYPE stagelink_active_sessions gauge")
	fmt.Fprintf(w, "stagelink_active_sessions %d\n", r.activeSessions.Load())

	fmt.Fprintln(w, "# HELP stagelink_denied_operations_total Authorization denials by operation")
	fmt.Fprintln(w, "# TYPE stagelink_denied_operations_total counter")
	for _, op := range deniedOps {
		fmt.Fprintf(w, "stagelink_denied_operations_total{operation=\"%s\"} %d\n", op, r.deniedOps[op])
	}

	fmt.Fprintln(w, "# HELP stagelink_backend_rejections_total Backend rejections by operation")
	fmt.Fprintln(w, "# TYPE stagelink_backend_rejections_total counter")
	for _, op := range backendRejects {
		fmt.Fprintf(w, "stagelink_backend_rejections_total{operation=\"%s\"} %d\n", op, r.backendRejects[op])
	}
}

func (r *Recorder) sortedRequestLabels() []requestLabel {
	labels := make([]requestLabel, 0, len(r.requestCount))
	for label := range r.requestCount {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		if labels[i].method != labels[j].method {
			return labels[i].method < labels[j].method
		}
		if labels[i].path != labels[j].path {
			return labels[i].path < labels[j].path
		}
		return labels[i].status < labels[j].status
	})
	return labels
}

func sortedKeys(m map[string]uint64) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func normalizePath(path string) string {
	if path == "" || path == "/" {
		return "/"
	}
	parts := strings.Split(path, "/")
	for i, part := range parts {
		if part == "" {
			continue
		}
		if looksLikeIdentifier(part) {
			parts[i] = ":id"
			continue
		}
	}
	normalized := strings.Join(parts, "/")
	if !strings.HasPrefix(normalized, "/") {
		normalized = "/" + normalized
	}
	if strings.HasSuffix(normalized, "/") && len(normalized) > 1 {
		normalized = strings.TrimSuffix(normalized, "/")
	}
	return normalized
}

func looksLikeIdentifier(segment string) bool {
	if len(segment) >= 24 {
		return true
	}
	digitCount := 0
	for _, r := range segment {
		if r >= '0' && r <= '9' {
			digitCount++
		}
	}
	return digitCount >= 3
}

func (r *Recorder) decrementGauge(gauge *atomic.Int64) {
	for {
		current := gauge.Load()
		if current <= 0 {
			return
		}
		if gauge.CompareAndSwap(current, current-1) {
			return
		}
	}
}

func normalizeName(name string) string {
	normalized := strings.TrimSpace(name)
	if normalized == "" {
		return "unknown"
	}
	return normalized
}

// ObserveRequest is a helper on the default recorder.
func ObserveRequest(method, path string, status int, duration time.Duration) {
	defaultRecorder.ObserveRequest(method, path, status, duration)
}

// SessionOpened increments counters on the default recorder.
func SessionOpened() {
	defaultRecorder.SessionOpened()
}

// SessionClosed decrements active sessions on the default recorder.
func SessionClosed() {
	defaultRecorder.SessionClosed()
}

// ObserveDenied records an authorization denial on the default recorder.
func ObserveDenied(operation string) {
	defaultRecorder.ObserveDenied(operation)
}

// Handler exposes the default recorder as an HTTP handler.
func Handler() http.Handler {
	return defaultRecorder.Handler()
}
