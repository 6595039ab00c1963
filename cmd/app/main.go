package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"github.com/maithyaurbanus123-oss/derivprotrade1/internal/api"
	"github.com/maithyaurbanus123-oss/derivprotrade1/internal/app"
	"github.com/maithyaurbanus123-oss/derivprotrade1/internal/book"
	"github.com/maithyaurbanus123-oss/derivprotrade1/internal/engine"
	"github.com/maithyaurbanus123-oss/derivprotrade1/internal/event"
	"github.com/maithyaurbanus123-oss/derivprotrade1/internal/feed"
	"github.com/maithyaurbanus123-oss/derivprotrade1/internal/gate"
	"github.com/maithyaurbanus123-oss/derivprotrade1/internal/infra"
	"github.com/maithyaurbanus123-oss/derivprotrade1/internal/ledger"
	"github.com/maithyaurbanus123-oss/derivprotrade1/internal/pricefeed"

	_ "net/http/pprof" // For pprof profiling
)

func main() {
	// 1. Pprof Server (for performance profiling)
	go func() {
		// Localhost only for security
		slog.Info("🕵️ Pprof server started on localhost:6060")
		if err := http.ListenAndServe("localhost:6060", nil); err != nil {
			slog.Error("Pprof server failed", slog.Any("error", err))
		}
	}()

	// 2. System Bootstrapping
	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize(); err != nil {
		slog.Error("❌ Bootstrapping failed", slog.Any("error", err))
		os.Exit(1)
	}
	cfg := bootstrap.Config

	// 3. Graceful Shutdown Context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Build the simulation aggregates
	event.Warmup()

	prices := pricefeed.NewGenerator(pricefeed.Config{
		StartPrice:  cfg.Market.StartPrice,
		MaxDelta:    cfg.Market.MaxDelta,
		Precision:   cfg.Market.PricePrecision,
		MinPrice:    cfg.Market.MinPrice,
		HistorySize: cfg.Market.HistorySize,
	}, nil)
	prices.Initialize(cfg.Market.SeedCount)

	orderBook := book.New(cfg.Book.Capacity)
	account := ledger.New(decimal.NewFromFloat(cfg.Account.InitialBalance))
	eventLog := feed.NewLog(cfg.Feed.Capacity)
	connGate := gate.New()
	policy := engine.NewRandomFillPolicy(cfg.Settlement.FillProbability, 0)

	sim := engine.NewSimulator(engine.Config{
		Symbol:        cfg.Market.Symbol,
		TickInterval:  time.Duration(cfg.Market.TickIntervalMS) * time.Millisecond,
		SweepInterval: time.Duration(cfg.Settlement.SweepIntervalMS) * time.Millisecond,
		ResetBalance:  decimal.NewFromFloat(cfg.Account.ResetBalance),
	}, prices, orderBook, account, eventLog, connGate, policy, bootstrap.Storage, infra.GlobalMetrics)

	// 5. API server (REST + WebSocket stream for the UI layer)
	server := api.NewServer(sim, cfg)

	// 6. Start the simulation loop and its timer drivers
	sim.Start(ctx)
	slog.InfoContext(ctx, "✅ Simulator started",
		slog.String("symbol", cfg.Market.Symbol),
		slog.String("price", prices.Current().String()))

	go func() {
		if err := server.Start(ctx); err != nil {
			slog.Error("API server failed", slog.Any("error", err))
			stop()
		}
	}()

	slog.InfoContext(ctx, "✨ DerivProTrade fully operational. Press Ctrl+C to exit.")

	// Wait for shutdown signal
	<-ctx.Done()

	sim.Wait()
	slog.Info("👋 Shutting down gracefully...")
}
