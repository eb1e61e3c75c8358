// Package server exposes the analysis pipeline over HTTP.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/moznion/go-optional"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rxtech-lab/argo-frvp/internal/analysis"
	"github.com/rxtech-lab/argo-frvp/internal/logger"
	"github.com/rxtech-lab/argo-frvp/internal/types"
	"github.com/rxtech-lab/argo-frvp/internal/version"
	"github.com/rxtech-lab/argo-frvp/pkg/errors"
	"github.com/rxtech-lab/argo-frvp/pkg/marketdata"
	"go.uber.org/zap"
)

// Runner runs one analysis. *analysis.Analyzer implements it.
type Runner interface {
	Run(ctx context.Context, symbol string, cfg analysis.Config) (*analysis.Result, error)
}

// Server serves analysis results as JSON. Every request runs its own
// pipeline over a copy of the base config.
type Server struct {
	runner  Runner
	config  analysis.Config
	logger  *logger.Logger
	metrics *Metrics

	httpServer *http.Server
	listener   net.Listener
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func NewServer(runner Runner, config analysis.Config, log *logger.Logger) *Server {
	if log == nil {
		log = logger.NewNop()
	}

	return &Server{
		runner:  runner,
		config:  config,
		logger:  log.Named("server"),
		metrics: NewMetrics(),
	}
}

// Metrics returns the server's metrics.
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// Handler returns the router with every endpoint registered.
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()

	router.HandleFunc("/analysis/{symbol}", s.handleAnalysis).Methods("GET")
	router.HandleFunc("/healthz", s.handleHealth).Methods("GET")
	router.Handle("/metrics", s.metrics.Handler()).Methods("GET")

	return router
}

// Start listens on address and serves in the background.
// If address is empty or ":0", a random available port is used.
func (s *Server) Start(address string) error {
	if address == "" {
		address = ":0"
	}

	listener, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}

	s.listener = listener
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != http.ErrServerClosed {
			s.logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	s.logger.Info("Server started", zap.String("address", listener.Addr().String()))

	return nil
}

// Stop shuts the server down, waiting up to five seconds for open requests.
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.httpServer.Shutdown(ctx)
}

// Address returns the address the server is listening on.
func (s *Server) Address() string {
	if s.listener == nil {
		return ""
	}

	return s.listener.Addr().String()
}

// handleAnalysis handles GET /analysis/{symbol}
func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(strings.TrimSpace(mux.Vars(r)["symbol"]))

	timer := prometheus.NewTimer(s.metrics.RunDuration)
	defer timer.ObserveDuration()

	cfg, err := s.requestConfig(r)
	if err != nil {
		s.fail(w, symbol, err)

		return
	}

	result, err := s.runner.Run(r.Context(), symbol, cfg)
	if err != nil {
		s.fail(w, symbol, err)

		return
	}

	s.metrics.observe(result)

	writeJSON(w, http.StatusOK, result)
}

// handleHealth handles GET /healthz
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": version.GetVersion()})
}

// requestConfig applies the query parameters range, interval, start, end
// and display over the base config.
func (s *Server) requestConfig(r *http.Request) (analysis.Config, error) {
	cfg := s.config
	query := r.URL.Query()

	if v := query.Get("interval"); v != "" {
		interval, err := types.ParseInterval(v)
		if err != nil {
			return cfg, err
		}

		cfg.Interval = interval
	}

	if v := query.Get("range"); v != "" {
		rng, err := marketdata.ParseRange(v)
		if err != nil {
			return cfg, err
		}

		cfg.Range = rng
	}

	for key, dst := range map[string]*optional.Option[time.Time]{"start": &cfg.Start, "end": &cfg.End} {
		v := query.Get(key)
		if v == "" {
			continue
		}

		t, err := ParseTime(v)
		if err != nil {
			return cfg, errors.Wrapf(errors.ErrCodeInvalidParameter, err, "invalid %s", key)
		}

		*dst = optional.Some(t)
	}

	if v := query.Get("display"); v != "" {
		display, err := ParseDisplay(v)
		if err != nil {
			return cfg, err
		}

		cfg.Display = display
	}

	return cfg, nil
}

func (s *Server) fail(w http.ResponseWriter, symbol string, err error) {
	status := StatusFor(err)

	s.metrics.RunsTotal.WithLabelValues("error").Inc()
	s.logger.Warn("Analysis request failed",
		zap.String("symbol", symbol),
		zap.Int("status", status),
		zap.Error(err),
	)

	writeJSON(w, status, errorResponse{Error: err.Error(), Code: errors.GetCode(err).String()})
}

// StatusFor maps an error code to an HTTP status.
func StatusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidParameter,
		errors.ErrCodeInvalidConfiguration,
		errors.ErrCodeMissingParameter,
		errors.ErrCodeInvalidRange,
		errors.ErrCodeInvalidPeriod,
		errors.ErrCodeInvalidThreshold,
		errors.ErrCodeUnsupportedInterval:
		return http.StatusBadRequest
	case errors.ErrCodeEmptySeries:
		return http.StatusNotFound
	case errors.ErrCodeMarketDataFetchFailed, errors.ErrCodeInvalidBar:
		return http.StatusBadGateway
	case errors.ErrCodeCanceled:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// ParseTime accepts RFC3339 timestamps and plain dates.
func ParseTime(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}

	return time.Parse(time.DateOnly, v)
}

// ParseDisplay reads a comma separated list of indicator names, or "all".
func ParseDisplay(v string) (analysis.Display, error) {
	var d analysis.Display

	for _, name := range strings.Split(v, ",") {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "all":
			d = analysis.All()
		case "ma_short":
			d.MAShort = true
		case "ma_long":
			d.MALong = true
		case "bollinger", "bb":
			d.Bollinger = true
		case "macd":
			d.MACD = true
		case "rsi":
			d.RSI = true
		case "obv":
			d.OBV = true
		case "adx":
			d.ADX = true
		case "", "none":
		default:
			return d, errors.Newf(errors.ErrCodeInvalidParameter, "unknown indicator %q", name)
		}
	}

	return d, nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
