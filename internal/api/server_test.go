package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"

	"github.com/maithyaurbanus123-oss/derivprotrade1/internal/book"
	"github.com/maithyaurbanus123-oss/derivprotrade1/internal/domain"
	"github.com/maithyaurbanus123-oss/derivprotrade1/internal/engine"
	"github.com/maithyaurbanus123-oss/derivprotrade1/internal/feed"
	"github.com/maithyaurbanus123-oss/derivprotrade1/internal/gate"
	"github.com/maithyaurbanus123-oss/derivprotrade1/internal/infra"
	"github.com/maithyaurbanus123-oss/derivprotrade1/internal/ledger"
	"github.com/maithyaurbanus123-oss/derivprotrade1/internal/pricefeed"
)

type noFill struct{}

func (noFill) ShouldFill(domain.Order) bool { return false }

func newTestServer(t *testing.T) (*httptest.Server, *Server) {
	t.Helper()

	prices := pricefeed.NewGenerator(pricefeed.Config{
		StartPrice:  1.1,
		MaxDelta:    0.004,
		Precision:   5,
		MinPrice:    0.01,
		HistorySize: 200,
	}, nil)
	prices.Initialize(10)

	sim := engine.NewSimulator(engine.Config{
		Symbol:        "EUR/USD",
		TickInterval:  time.Hour,
		SweepInterval: time.Hour,
		ResetBalance:  decimal.NewFromInt(1000),
	}, prices, book.New(50), ledger.New(decimal.NewFromInt(1000)),
		feed.NewLog(50), gate.New(), noFill{}, nil, &infra.Metrics{})

	srv := NewServer(sim, infra.DefaultConfig())

	ctx, cancel := context.WithCancel(context.Background())
	sim.Start(ctx)
	t.Cleanup(func() {
		cancel()
		sim.Wait()
	})
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts, srv
}

func postJSON(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("POST %s failed: %v", url, err)
	}
	return resp
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
}

func TestServer_SubmitOrder(t *testing.T) {
	ts, _ := newTestServer(t)

	t.Run("Valid order", func(t *testing.T) {
		resp := postJSON(t, ts.URL+"/api/v1/orders", map[string]string{"side": "BUY", "size": "1"})
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("Expected 201, got %d", resp.StatusCode)
		}

		var order domain.Order
		decode(t, resp, &order)
		if order.Side != domain.SideBuy {
			t.Errorf("Expected BUY, got %s", order.Side)
		}
		if order.Status != domain.OrderStatusPending {
			t.Errorf("Expected PENDING, got %s", order.Status)
		}
		if order.EntryPrice.IsZero() {
			t.Error("Expected entry price stamped from current tick")
		}
	})

	t.Run("Unknown side", func(t *testing.T) {
		resp := postJSON(t, ts.URL+"/api/v1/orders", map[string]string{"side": "HOLD", "size": "1"})
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", resp.StatusCode)
		}
	})

	t.Run("Non-positive size", func(t *testing.T) {
		resp := postJSON(t, ts.URL+"/api/v1/orders", map[string]string{"side": "SELL", "size": "0"})
		resp.Body.Close()
		if resp.StatusCode != http.StatusUnprocessableEntity {
			t.Errorf("Expected 422, got %d", resp.StatusCode)
		}
	})
}

func TestServer_MarketReads(t *testing.T) {
	ts, _ := newTestServer(t)

	t.Run("Current price", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/api/v1/price")
		if err != nil {
			t.Fatal(err)
		}
		var body struct {
			Price decimal.Decimal `json:"price"`
		}
		decode(t, resp, &body)
		if body.Price.IsZero() {
			t.Error("Expected non-zero current price")
		}
	})

	t.Run("Price history", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/api/v1/price/history")
		if err != nil {
			t.Fatal(err)
		}
		var history []domain.PriceTick
		decode(t, resp, &history)
		if len(history) != 10 {
			t.Errorf("Expected 10 seeded ticks, got %d", len(history))
		}
	})
}

func TestServer_BalanceDepositReset(t *testing.T) {
	ts, _ := newTestServer(t)

	var body struct {
		Balance decimal.Decimal `json:"balance"`
	}

	resp, err := http.Get(ts.URL + "/api/v1/balance")
	if err != nil {
		t.Fatal(err)
	}
	decode(t, resp, &body)
	if !body.Balance.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("Expected initial balance 1000, got %s", body.Balance)
	}

	resp = postJSON(t, ts.URL+"/api/v1/deposit", map[string]string{"amount": "250.50"})
	decode(t, resp, &body)
	if !body.Balance.Equal(decimal.RequireFromString("1250.50")) {
		t.Errorf("Expected 1250.50 after deposit, got %s", body.Balance)
	}

	resp = postJSON(t, ts.URL+"/api/v1/reset", nil)
	decode(t, resp, &body)
	if !body.Balance.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("Expected 1000 after reset, got %s", body.Balance)
	}
}

func TestServer_Connection(t *testing.T) {
	ts, _ := newTestServer(t)

	t.Run("Connect without credential", func(t *testing.T) {
		resp := postJSON(t, ts.URL+"/api/v1/connect", map[string]string{"credential": ""})
		resp.Body.Close()
		if resp.StatusCode != http.StatusUnprocessableEntity {
			t.Errorf("Expected 422, got %d", resp.StatusCode)
		}
	})

	t.Run("Connect and disconnect", func(t *testing.T) {
		resp := postJSON(t, ts.URL+"/api/v1/connect", map[string]string{"credential": "token"})
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("Expected 200, got %d", resp.StatusCode)
		}

		var state struct {
			Connected bool `json:"connected"`
		}
		get, err := http.Get(ts.URL + "/api/v1/connection")
		if err != nil {
			t.Fatal(err)
		}
		decode(t, get, &state)
		if !state.Connected {
			t.Error("Expected connected state after connect")
		}

		resp = postJSON(t, ts.URL+"/api/v1/disconnect", nil)
		resp.Body.Close()

		get, err = http.Get(ts.URL + "/api/v1/connection")
		if err != nil {
			t.Fatal(err)
		}
		decode(t, get, &state)
		if state.Connected {
			t.Error("Expected disconnected state after disconnect")
		}
	})
}

func TestServer_StreamReceivesSnapshots(t *testing.T) {
	ts, srv := newTestServer(t)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()

	// The dial returns before HandleWS registers the client; wait for it.
	deadline := time.Now().Add(2 * time.Second)
	for srv.hub.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("Stream client was never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	resp := postJSON(t, ts.URL+"/api/v1/orders", map[string]string{"side": "BUY", "size": "1"})
	resp.Body.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, message, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Expected a snapshot on the stream: %v", err)
	}

	var snap engine.Snapshot
	if err := json.Unmarshal(message, &snap); err != nil {
		t.Fatalf("Failed to decode snapshot: %v", err)
	}
	if snap.Symbol != "EUR/USD" {
		t.Errorf("Expected symbol EUR/USD, got %q", snap.Symbol)
	}
	if snap.PendingOrders != 1 {
		t.Errorf("Expected 1 pending order in snapshot, got %d", snap.PendingOrders)
	}
	if snap.Price.IsZero() {
		t.Error("Expected non-zero price in snapshot")
	}
}

func TestServer_FeedAndMetrics(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/v1/orders", map[string]string{"side": "BUY", "size": "1"})
	resp.Body.Close()

	get, err := http.Get(ts.URL + "/api/v1/feed")
	if err != nil {
		t.Fatal(err)
	}
	var events []domain.FeedEvent
	decode(t, get, &events)
	if len(events) == 0 {
		t.Fatal("Expected feed events after a submission")
	}
	if events[0].Kind != domain.EventOrder {
		t.Errorf("Expected newest event to be ORDER, got %s", events[0].Kind)
	}

	get, err = http.Get(ts.URL + "/api/v1/metrics")
	if err != nil {
		t.Fatal(err)
	}
	var snap infra.MetricsSnapshot
	decode(t, get, &snap)
	if snap.OrdersSubmitted != 1 {
		t.Errorf("Expected 1 submitted order in metrics, got %d", snap.OrdersSubmitted)
	}
}
