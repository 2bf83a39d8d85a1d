// Package api is the HTTP control surface of a running mcwatch: query,
// poll, reset, start and stop the monitor, plus health, metrics and a
// websocket feed of notifications.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/realDragonium/mcwatch/logging"
	"github.com/realDragonium/mcwatch/monitor"
)

// UnhealthyAfter is the number of failed polls in a row after which /health
// answers 503.
const UnhealthyAfter = 3

type Monitor interface {
	PollOnce(ctx context.Context) (string, error)
	QueryNow(ctx context.Context) string
	ResetState()
	Start(ctx context.Context) error
	Stop() error
	Health() monitor.Health
}

type API struct {
	monitor Monitor
	ws      http.Handler
	runCtx  context.Context
	origins []string

	// Limiter guards the routes that open a connection to the server.
	Limiter *RateLimiter
}

// New builds the API. runCtx bounds monitor loops started through it; ws may
// be nil when the websocket feed is disabled.
func New(runCtx context.Context, m Monitor, ws http.Handler, allowedOrigins []string) *API {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	return &API{
		monitor: m,
		ws:      ws,
		runCtx:  runCtx,
		origins: allowedOrigins,
	}
}

func (api *API) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: api.origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Group(func(r chi.Router) {
		r.Use(api.Limiter.Middleware)
		r.Get("/status", api.status)
		r.Post("/poll", api.poll)
	})
	r.Post("/reset", api.reset)
	r.Route("/monitor", func(r chi.Router) {
		r.Post("/start", api.start)
		r.Post("/stop", api.stop)
	})
	r.Get("/health", api.health)
	r.Handle("/metrics", promhttp.Handler())
	if api.ws != nil {
		r.Get("/ws", api.ws.ServeHTTP)
	}
	return r
}

// Serve runs srv on ln until ctx is done, then shuts it down gracefully.
func Serve(ctx context.Context, srv *http.Server, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
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
		return srv.Shutdown(shutdownCtx)
	}
}

type statusResponse struct {
	Status string `json:"status"`
}

type pollResponse struct {
	Changed bool   `json:"changed"`
	Text    string `json:"text,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (api *API) status(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(api.monitor.QueryNow(r.Context())))
}

func (api *API) poll(w http.ResponseWriter, r *http.Request) {
	text, err := api.monitor.PollOnce(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, pollResponse{Changed: text != "", Text: text})
}

func (api *API) reset(w http.ResponseWriter, r *http.Request) {
	api.monitor.ResetState()
	writeJSON(w, http.StatusOK, statusResponse{Status: "reset"})
}

func (api *API) start(w http.ResponseWriter, r *http.Request) {
	if err := api.monitor.Start(api.runCtx); err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "started"})
}

func (api *API) stop(w http.ResponseWriter, r *http.Request) {
	if err := api.monitor.Stop(); err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "stopped"})
}

func (api *API) health(w http.ResponseWriter, r *http.Request) {
	health := api.monitor.Health()
	code := http.StatusOK
	if health.ConsecutiveFailures >= UnhealthyAfter {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, health)
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger := logging.Component("api")
		logger.Warn().Err(err).Msg("failed to write response")
	}
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, errorResponse{Error: message})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		logger := logging.Component("api")
		logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}
