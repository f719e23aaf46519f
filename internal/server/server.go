// Package server exposes the gateway's operations over HTTP. The route
// table mirrors the endpoint names the companion web client was built
// against, so paths are verbs rather than REST resources.
package server

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"stagelink/internal/gateway"
	"stagelink/internal/observability/metrics"
)

type TLSConfig struct {
	CertFile string
	KeyFile  string
}

type Config struct {
	Addr        string
	TLS         TLSConfig
	Logger      *slog.Logger
	AuditLogger *slog.Logger
	Metrics     *metrics.Recorder
}

type Server struct {
	httpServer  *http.Server
	logger      *slog.Logger
	auditLogger *slog.Logger
	metrics     *metrics.Recorder
	tlsCertFile string
	tlsKeyFile  string
}

func New(gw *gateway.Gateway, cfg Config) (*Server, error) {
	if gw == nil {
		return nil, fmt.Errorf("gateway is required")
	}
	recorder := cfg.Metrics
	if recorder == nil {
		recorder = metrics.Default()
	}

	routes := &router{gateway: gw}
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", routes.health)
	mux.Handle("/metrics", recorder.Handler())

	mux.HandleFunc("/login", routes.login)
	mux.HandleFunc("/logout", routes.logout)
	mux.HandleFunc("/isServerOnline", routes.isServerOnline)
	mux.HandleFunc("/getOwnProfileId", routes.getOwnProfileID)

	mux.HandleFunc("/sendKeyEvent", routes.sendKeyEvent)
	mux.HandleFunc("/sendKeyStringEvent", routes.sendKeyStringEvent)

	mux.HandleFunc("/getProfile", routes.getProfile)
	mux.HandleFunc("/sendProfile", routes.sendProfile)
	mux.HandleFunc("/getProfileList", routes.getProfileList)
	mux.HandleFunc("/sendPhoto", routes.sendPhoto)

	mux.HandleFunc("/getSong", routes.getSong)
	mux.HandleFunc("/getCurrentSongId", routes.getCurrentSongID)
	mux.HandleFunc("/getAllSongs", routes.getAllSongs)
	mux.HandleFunc("/getMp3File", routes.getAudioFile)

	mux.HandleFunc("/getPlaylists", routes.getPlaylists)
	mux.HandleFunc("/getPlaylist", routes.getPlaylist)
	mux.HandleFunc("/getPlaylistSongs", routes.getPlaylistSongs)
	mux.HandleFunc("/playlistContainsSong", routes.playlistContainsSong)
	mux.HandleFunc("/addSongToPlaylist", routes.addSongToPlaylist)
	mux.HandleFunc("/removeSongFromPlaylist", routes.removeSongFromPlaylist)
	mux.HandleFunc("/moveSongInPlaylist", routes.moveSongInPlaylist)
	mux.HandleFunc("/removePlaylist", routes.removePlaylist)
	mux.HandleFunc("/addPlaylist", routes.addPlaylist)

	mux.HandleFunc("/getUserRole", routes.getUserRole)
	mux.HandleFunc("/setUserRole", routes.setUserRole)
	mux.HandleFunc("/hasUserRight", routes.hasUserRight)

	mux.HandleFunc("/delayedImage", routes.delayedImage)
	mux.HandleFunc("/js/", routes.jsFile)
	mux.HandleFunc("/css/", routes.cssFile)
	mux.HandleFunc("/css/images/", routes.cssImageFile)
	mux.HandleFunc("/img/", routes.imgFile)
	mux.HandleFunc("/locales/", routes.localeFile)
	mux.HandleFunc("/", routes.index)

	handlerChain := http.Handler(mux)
	handlerChain = metricsMiddleware(recorder, handlerChain)
	handlerChain = auditMiddleware(cfg.AuditLogger, handlerChain)
	handlerChain = loggingMiddleware(cfg.Logger, handlerChain)

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handlerChain,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	srv := &Server{
		httpServer:  httpServer,
		logger:      cfg.Logger,
		auditLogger: cfg.AuditLogger,
		metrics:     recorder,
		tlsCertFile: strings.TrimSpace(cfg.TLS.CertFile),
		tlsKeyFile:  strings.TrimSpace(cfg.TLS.KeyFile),
	}

	if srv.tlsCertFile != "" && srv.tlsKeyFile != "" {
		httpServer.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	return srv, nil
}

// Handler exposes the full middleware chain for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) Start() error {
	if s.httpServer == nil {
		return fmt.Errorf("http server is not configured")
	}

	if s.tlsCertFile != "" && s.tlsKeyFile != "" {
		return s.httpServer.ListenAndServeTLS(s.tlsCertFile, s.tlsKeyFile)
	}

	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func newStatusRecorder(w http.ResponseWriter) *statusRecorder {
	return &statusRecorder{ResponseWriter: w, status: http.StatusOK}
}

func (sr *statusRecorder) WriteHeader(status int) {
	sr.status = status
	sr.ResponseWriter.WriteHeader(status)
}

func loggingMiddleware(logger *slog.Logger, next http.Handler) http.Handler {
	if logger == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorder := newStatusRecorder(w)
		start := time.Now()
		next.ServeHTTP(recorder, r)
		duration := time.Since(start)
		logger.Info("request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", recorder.status,
			"duration_ms", duration.Milliseconds(),
			"remote_ip", extractClientIP(r))
	})
}

func metricsMiddleware(recorder *metrics.Recorder, next http.Handler) http.Handler {
	if recorder == nil {
		recorder = metrics.Default()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sr := newStatusRecorder(w)
		start := time.Now()
		next.ServeHTTP(sr, r)
		recorder.ObserveRequest(r.Method, r.URL.Path, sr.status, time.Since(start))
	})
}

func auditMiddleware(logger *slog.Logger, next http.Handler) http.Handler {
	if logger == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sr := newStatusRecorder(w)
		start := time.Now()
		next.ServeHTTP(sr, r)
		if !shouldAudit(r) {
			return
		}
		duration := time.Since(start)
		fields := []interface{}{
			"method", r.Method,
			"path", r.URL.Path,
			"status", sr.status,
			"duration_ms", duration.Milliseconds(),
			"remote_ip", extractClientIP(r),
		}
		if hasSessionHeader(r) {
			fields = append(fields, "session", true)
		}
		logger.Info("audit", fields...)
	})
}

// shouldAudit limits the audit stream to mutating calls.
func shouldAudit(r *http.Request) bool {
	return r.Method != http.MethodGet && r.Method != http.MethodHead
}

func hasSessionHeader(r *http.Request) bool {
	return strings.TrimSpace(r.Header.Get(sessionHeader)) != ""
}

func extractClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		if len(parts) > 0 {
			return strings.TrimSpace(parts[0])
		}
	}
	if xrip := r.Header.Get("X-Real-IP"); xrip != "" {
		return strings.TrimSpace(xrip)
	}
	return clientIP(r.RemoteAddr)
}

func clientIP(remoteAddr string) string {
	if remoteAddr == "" {
		return ""
	}
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
