// Package mockserver provides a mock Binance market data server for
// end-to-end tests. It serves the public REST endpoints the Binance bar
// source reads, from bars registered per symbol.
package mockserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/rxtech-lab/argo-frvp/internal/types"
)

// Page sizes of the klines endpoint.
const (
	binanceDefaultLimit = 500
	binanceMaxLimit     = 1000
)

// MockBinanceServer serves klines and ticker prices over HTTP.
type MockBinanceServer struct {
	mu sync.RWMutex

	httpServer *http.Server
	listener   net.Listener

	// bars are sorted by time per symbol
	bars     map[string][]types.Bar
	interval map[string]time.Duration

	// requests counts klines calls, for pagination assertions
	requests int
}

func NewMockBinanceServer() *MockBinanceServer {
	return &MockBinanceServer{
		bars:     make(map[string][]types.Bar),
		interval: make(map[string]time.Duration),
	}
}

// Start starts the mock server on the given address.
// If address is empty or ":0", a random available port is used.
func (s *MockBinanceServer) Start(address string) error {
	if address == "" {
		address = ":0"
	}

	listener, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}

	s.listener = listener

	router := mux.NewRouter()

	// REST API endpoints
	router.HandleFunc("/api/v3/ticker/price", s.handleTickerPrice).Methods("GET")
	router.HandleFunc("/api/v3/klines", s.handleKlines).Methods("GET")

	s.httpServer = &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != http.ErrServerClosed {
			fmt.Printf("HTTP server error: %v\n", err)
		}
	}()

	return nil
}

// Stop stops the mock server.
func (s *MockBinanceServer) Stop() error {
	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		return s.httpServer.Shutdown(ctx)
	}

	return nil
}

// Address returns the address the server is listening on.
func (s *MockBinanceServer) Address() string {
	if s.listener == nil {
		return ""
	}

	return s.listener.Addr().String()
}

// BaseURL returns the base URL for the server.
func (s *MockBinanceServer) BaseURL() string {
	return "http://" + s.Address()
}

// SetBars registers the bars served for symbol. interval is the bar length
// used for the kline close time.
func (s *MockBinanceServer) SetBars(symbol string, interval time.Duration, bars []types.Bar) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sorted := make([]types.Bar, len(bars))
	copy(sorted, bars)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Time.Before(sorted[j].Time) })

	s.bars[symbol] = sorted
	s.interval[symbol] = interval
}

// KlineRequests returns the number of klines calls served.
func (s *MockBinanceServer) KlineRequests() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.requests
}

// handleTickerPrice handles GET /api/v3/ticker/price
func (s *MockBinanceServer) handleTickerPrice(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type priceResponse struct {
		Symbol string `json:"symbol"`
		Price  string `json:"price"`
	}

	symbol := r.URL.Query().Get("symbol")

	bars, ok := s.bars[symbol]
	if !ok || len(bars) == 0 {
		http.Error(w, "Invalid symbol", http.StatusBadRequest)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(priceResponse{
		Symbol: symbol,
		Price:  strconv.FormatFloat(bars[len(bars)-1].Close, 'f', 8, 64),
	})
}

// handleKlines handles GET /api/v3/klines
func (s *MockBinanceServer) handleKlines(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	symbol := query.Get("symbol")

	if symbol == "" || query.Get("interval") == "" {
		http.Error(w, "Missing required parameters", http.StatusBadRequest)

		return
	}

	startTime := parseMillis(query.Get("startTime"), time.Time{})
	endTime := parseMillis(query.Get("endTime"), time.Now())

	limit := binanceDefaultLimit
	if v := query.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = min(n, binanceMaxLimit)
		}
	}

	s.mu.Lock()
	s.requests++
	bars := s.bars[symbol]
	interval := s.interval[symbol]
	s.mu.Unlock()

	// Convert to Binance kline format: [openTime, open, high, low, close, volume, closeTime, ...]
	klines := make([][]any, 0)

	for _, bar := range bars {
		if bar.Time.Before(startTime) || bar.Time.After(endTime) {
			continue
		}

		if len(klines) == limit {
			break
		}

		closeTime := bar.Time.Add(interval).UnixMilli() - 1
		klines = append(klines, []any{
			bar.Time.UnixMilli(),                        // Open time
			strconv.FormatFloat(bar.Open, 'f', 8, 64),   // Open
			strconv.FormatFloat(bar.High, 'f', 8, 64),   // High
			strconv.FormatFloat(bar.Low, 'f', 8, 64),    // Low
			strconv.FormatFloat(bar.Close, 'f', 8, 64),  // Close
			strconv.FormatFloat(bar.Volume, 'f', 8, 64), // Volume
			closeTime, // Close time
			"0",       // Quote asset volume
			0,         // Number of trades
			"0",       // Taker buy base asset volume
			"0",       // Taker buy quote asset volume
			"0",       // Ignore
		})
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(klines)
}

func parseMillis(v string, fallback time.Time) time.Time {
	if v == "" {
		return fallback
	}

	ms, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}

	return time.UnixMilli(ms)
}
