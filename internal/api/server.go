// Package api exposes the simulation engine to the presentation layer: a
// small REST surface for commands and reads, plus a WebSocket stream of
// state snapshots. The engine itself stays an in-process library; this is
// the hosting shell.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/shopspring/decimal"

	"github.com/maithyaurbanus123-oss/derivprotrade1/internal/domain"
	"github.com/maithyaurbanus123-oss/derivprotrade1/internal/engine"
	"github.com/maithyaurbanus123-oss/derivprotrade1/internal/infra"
)

// Server handles REST API and WebSocket connections.
type Server struct {
	sim    *engine.Simulator
	router *mux.Router
	hub    *Hub
	srv    *http.Server
}

// NewServer wires routes and subscribes the stream hub to engine updates.
func NewServer(sim *engine.Simulator, cfg *infra.Config) *Server {
	s := &Server{
		sim:    sim,
		router: mux.NewRouter(),
		hub:    NewHub(infra.GlobalMetrics),
	}
	sim.SetOnUpdate(s.hub.Broadcast)
	s.setupRoutes()

	handler := cors.New(cors.Options{
		AllowedOrigins: cfg.API.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
	}).Handler(s.router)

	s.srv = &http.Server{
		Addr:         cfg.API.Addr,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api/v1").Subrouter()

	// Market endpoints
	api.HandleFunc("/price", s.handleGetPrice).Methods("GET")
	api.HandleFunc("/price/history", s.handleGetHistory).Methods("GET")

	// Account endpoints
	api.HandleFunc("/orders", s.handleGetOrders).Methods("GET")
	api.HandleFunc("/orders", s.handleSubmitOrder).Methods("POST")
	api.HandleFunc("/balance", s.handleGetBalance).Methods("GET")
	api.HandleFunc("/deposit", s.handleDeposit).Methods("POST")
	api.HandleFunc("/reset", s.handleReset).Methods("POST")

	// Feed / observability
	api.HandleFunc("/feed", s.handleGetFeed).Methods("GET")
	api.HandleFunc("/metrics", s.handleGetMetrics).Methods("GET")

	// Connectivity
	api.HandleFunc("/connection", s.handleGetConnection).Methods("GET")
	api.HandleFunc("/connect", s.handleConnect).Methods("POST")
	api.HandleFunc("/disconnect", s.handleDisconnect).Methods("POST")

	// WebSocket snapshot stream
	s.router.HandleFunc("/ws", s.hub.HandleWS)
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("API server listening", slog.String("addr", s.srv.Addr))
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.srv.Shutdown(shutdownCtx)
	}
}

// Router exposes the handler for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// ======================================================================================
// Handlers
// ======================================================================================

func (s *Server) handleGetPrice(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"price": s.sim.CurrentPrice(),
	})
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.sim.PriceHistory())
}

func (s *Server) handleGetOrders(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.sim.Orders())
}

func (s *Server) handleGetFeed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.sim.FeedEvents())
}

func (s *Server) handleGetBalance(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"balance": s.sim.Balance(),
	})
}

func (s *Server) handleGetMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.sim.Metrics())
}

func (s *Server) handleGetConnection(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"connected": s.sim.Connected(),
	})
}

func (s *Server) handleSubmitOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Side string          `json:"side"`
		Size decimal.Decimal `json:"size"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	side, ok := domain.ParseSide(req.Side)
	if !ok {
		writeError(w, http.StatusBadRequest, "side must be BUY or SELL")
		return
	}

	order, err := s.sim.SubmitOrder(side, req.Size)
	if err != nil {
		if domain.IsRejection(err) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		} else {
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

func (s *Server) handleDeposit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount decimal.Decimal `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	s.sim.Deposit(req.Amount)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"balance": s.sim.Balance(),
	})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.sim.ResetAccount()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"balance": s.sim.Balance(),
	})
}

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Credential string `json:"credential"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	if err := s.sim.Connect(req.Credential); err != nil {
		if domain.IsRejection(err) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		} else {
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"connected": true,
	})
}

func (s *Server) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	s.sim.Disconnect()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"connected": false,
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", slog.Any("error", err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
