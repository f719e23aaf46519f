// Package gateway implements the session-authenticated, capability-gated
// dispatch layer of the control surface. Every exposed operation runs the
// same policy machine -- touch the session, gate on authentication and
// rights, dispatch to the backend port if wired -- and returns an explicit
// outcome descriptor instead of mutating ambient response state.
//
// Authorization failures are deliberately presented three different ways
// depending on the operation (explicit forbidden, silent empty payload, or
// silent no-op); the per-operation choice mirrors the behavior the
// companion UI was built against and must not be unified.
package gateway

import (
	"errors"
	"log/slog"

	"stagelink/internal/auth"
	"stagelink/internal/control"
	"stagelink/internal/observability/metrics"
)

// Config collects the gateway's collaborators.
type Config struct {
	Sessions *auth.Registry
	Port     *control.Port
	// MediaDir is the fixed base directory audio paths are resolved under.
	MediaDir string
	Logger   *slog.Logger
	Metrics  *metrics.Recorder
}

// Gateway dispatches control operations. It owns no long-lived state of
// its own; sessions live in the registry and backend wiring in the port.
type Gateway struct {
	sessions *auth.Registry
	port     *control.Port
	mediaDir string
	logger   *slog.Logger
	metrics  *metrics.Recorder
}

// New constructs a Gateway.
func New(cfg Config) *Gateway {
	port := cfg.Port
	if port == nil {
		port = control.NewPort()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	recorder := cfg.Metrics
	if recorder == nil {
		recorder = metrics.Default()
	}
	return &Gateway{
		sessions: cfg.Sessions,
		port:     port,
		mediaDir: cfg.MediaDir,
		logger:   logger,
		metrics:  recorder,
	}
}

// Port exposes the backend port for wiring by the owning application.
func (g *Gateway) Port() *control.Port {
	return g.port
}

// touch renews the session on every call carrying a token. Activity, not
// success, extends sessions: renewal happens even when the call later
// fails its rights check.
func (g *Gateway) touch(token string) {
	if token != "" {
		g.sessions.Touch(token)
	}
}

// checkRight runs the explicit authentication and authorization gates.
// The returned outcome is only meaningful when allowed is false.
func (g *Gateway) checkRight(token string, right auth.Right) (denied Outcome, allowed bool) {
	if g.sessions.ResolveUser(token) == auth.UnknownUser {
		return forbidden(ReasonNoSession), false
	}
	if !g.sessions.RequestRight(token, right) {
		g.metrics.ObserveDenied(right.String())
		return forbidden(ReasonNotAllowed), false
	}
	return Outcome{}, true
}

// holdsRight is the silent variant used by operations that degrade or
// no-op on denial instead of reporting it. Denials still count in the
// metrics even though the caller never sees them.
func (g *Gateway) holdsRight(token string, right auth.Right) bool {
	if g.sessions.RequestRight(token, right) {
		return true
	}
	g.metrics.ObserveDenied(right.String())
	return false
}

// backendOutcome converts a backend error into an outcome. Validation
// failures carry the backend's message verbatim as the forbidden reason;
// nothing propagates past this boundary.
func (g *Gateway) backendOutcome(err error, success Outcome) Outcome {
	if err == nil {
		return success
	}
	var verr *control.ValidationError
	if errors.As(err, &verr) {
		g.metrics.ObserveBackendReject("validation")
		return forbidden(verr.Message)
	}
	g.logger.Error("backend call failed", "error", err)
	g.metrics.ObserveBackendReject("internal")
	return forbidden(err.Error())
}
