// Package broker serves the privileged fetch boundary over HTTP so that
// other processes (a browser extension, a second quicklinks instance) can
// reuse one authenticated transport.
package broker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/samber/lo"

	"github.com/five82/quicklinks/internal/logging"
	"github.com/five82/quicklinks/internal/remote"
)

// DefaultAddr is where the broker listens when no address is configured.
const DefaultAddr = "127.0.0.1:7878"

const requestBodyLimit = 64 << 10

// Fetch outcomes, used as the metrics label.
const (
	OutcomeOK         = "ok"
	OutcomeHTTPError  = "http_error"
	OutcomeParseError = "parse_error"
	OutcomeTransport  = "transport_error"
	OutcomeRejected   = "rejected"
)

// DefaultOrigins allows browser extensions and local pages.
var DefaultOrigins = []string{
	"chrome-extension://*",
	"moz-extension://*",
	"http://localhost:*",
	"http://127.0.0.1:*",
}

// Options configures a Server.
type Options struct {
	Addr           string
	AllowedOrigins []string
	// AllowedHosts restricts which hosts may be fetched. Empty allows any.
	AllowedHosts []string
	Logger       *slog.Logger
}

// Server answers FETCH_JSON requests using a Boundary.
type Server struct {
	boundary     remote.Boundary
	addr         string
	allowedHosts []string
	logger       *slog.Logger
	handler      http.Handler

	registry *prometheus.Registry
	fetches  *prometheus.CounterVec
	duration prometheus.Histogram
}

// New builds a Server around boundary.
func New(boundary remote.Boundary, opts Options) *Server {
	s := &Server{
		boundary: boundary,
		addr:     strings.TrimSpace(opts.Addr),
		allowedHosts: lo.Map(opts.AllowedHosts, func(h string, _ int) string {
			return strings.ToLower(strings.TrimSpace(h))
		}),
		logger:   logging.OrDiscard(opts.Logger),
		registry: prometheus.NewRegistry(),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quicklinks",
			Subsystem: "broker",
			Name:      "fetch_total",
			Help:      "Fetch requests handled by the broker, by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "quicklinks",
			Subsystem: "broker",
			Name:      "fetch_duration_seconds",
			Help:      "Time spent on upstream fetches.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if s.addr == "" {
		s.addr = DefaultAddr
	}
	s.registry.MustRegister(s.fetches, s.duration)

	router := mux.NewRouter()
	router.HandleFunc("/fetch", s.handleFetch).Methods(http.MethodPost)
	router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = DefaultOrigins
	}
	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Accept"},
		AllowCredentials: false,
		MaxAge:           86400,
	})
	s.handler = c.Handler(router)
	return s
}

// Handler returns the HTTP handler with routing and CORS applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.addr
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("broker listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown broker: %w", err)
		}
		s.logger.Info("broker stopped")
		return nil
	}
}

func (s *Server) handleFetch(w http.ResponseWriter, r *http.Request) {
	var req remote.FetchRequest
	body := io.LimitReader(r.Body, requestBodyLimit)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		s.reject(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}
	if req.Type != remote.RequestType {
		s.reject(w, http.StatusBadRequest, fmt.Sprintf("unsupported request type %q", req.Type))
		return
	}
	if err := s.checkTarget(req.URL); err != nil {
		s.reject(w, http.StatusForbidden, err.Error())
		return
	}

	start := time.Now()
	resp := s.boundary.FetchJSON(r.Context(), req)
	s.duration.Observe(time.Since(start).Seconds())
	if resp == nil {
		s.fetches.WithLabelValues(OutcomeTransport).Inc()
		writeJSON(w, http.StatusBadGateway, remote.FetchResponse{Text: "no response"})
		return
	}

	outcome := Classify(resp)
	s.fetches.WithLabelValues(outcome).Inc()
	if outcome != OutcomeOK {
		s.logger.Warn("broker fetch failed", "outcome", outcome, "status", resp.Status)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) reject(w http.ResponseWriter, status int, text string) {
	s.fetches.WithLabelValues(OutcomeRejected).Inc()
	s.logger.Warn("broker request rejected", "status", status, "reason", text)
	http.Error(w, text, status)
}

func (s *Server) checkTarget(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid url %q", raw)
	}
	if len(s.allowedHosts) == 0 {
		return nil
	}
	if !lo.Contains(s.allowedHosts, strings.ToLower(u.Hostname())) {
		return fmt.Errorf("host %q is not allowed", u.Hostname())
	}
	return nil
}

// Classify maps a boundary response to a metrics outcome.
func Classify(resp *remote.FetchResponse) string {
	switch {
	case resp == nil:
		return OutcomeTransport
	case resp.OK:
		return OutcomeOK
	case resp.Status > 0:
		return OutcomeHTTPError
	case strings.HasPrefix(resp.Text, remote.NotJSONPrefix):
		return OutcomeParseError
	default:
		return OutcomeTransport
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
