// Package engine coordinates the market simulation: it owns the command
// loop that serializes every state mutation, the two periodic drivers that
// feed it (price tick and settlement sweep), and the synchronous API the
// presentation layer calls into.
package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/maithyaurbanus123-oss/derivprotrade1/internal/book"
	"github.com/maithyaurbanus123-oss/derivprotrade1/internal/domain"
	"github.com/maithyaurbanus123-oss/derivprotrade1/internal/event"
	"github.com/maithyaurbanus123-oss/derivprotrade1/internal/feed"
	"github.com/maithyaurbanus123-oss/derivprotrade1/internal/gate"
	"github.com/maithyaurbanus123-oss/derivprotrade1/internal/infra"
	"github.com/maithyaurbanus123-oss/derivprotrade1/internal/infra/storage"
	"github.com/maithyaurbanus123-oss/derivprotrade1/internal/ledger"
	"github.com/maithyaurbanus123-oss/derivprotrade1/internal/pricefeed"
)

const defaultInboxSize = 256

// ErrStopped is returned by the synchronous API once the command loop has
// shut down.
var ErrStopped = errors.New("simulator stopped")

// Config holds the simulator tunables. Cadences are tunables, not contracts:
// the defaults match the reference behavior.
type Config struct {
	Symbol        string
	TickInterval  time.Duration
	SweepInterval time.Duration
	ResetBalance  decimal.Decimal
	InboxSize     int
}

// Snapshot is the compact state view pushed to observers after a mutation.
type Snapshot struct {
	Symbol        string          `json:"symbol"`
	Price         decimal.Decimal `json:"price"`
	Balance       decimal.Decimal `json:"balance"`
	Connected     bool            `json:"connected"`
	PendingOrders int             `json:"pending_orders"`
	Timestamp     time.Time       `json:"timestamp"`
}

// Simulator is the single-writer coordinator. All mutation flows through
// Run's command loop; external reads take snapshots from the aggregates.
type Simulator struct {
	cfg     Config
	inbox   chan event.Command
	stopped chan struct{} // closed when Run exits

	prices *pricefeed.Generator
	book   *book.Book
	ledger *ledger.Ledger
	feed   *feed.Log
	gate   *gate.Gate
	policy FillPolicy

	store   *storage.Storage // optional journal, nil disables
	metrics *infra.Metrics

	// Boundary: used to notify the stream hub of state changes
	onUpdate func(Snapshot)

	wg sync.WaitGroup
}

// NewSimulator wires the coordinator. store may be nil (journaling off);
// metrics falls back to the global instance.
func NewSimulator(cfg Config, prices *pricefeed.Generator, bk *book.Book, led *ledger.Ledger, fd *feed.Log, gt *gate.Gate, policy FillPolicy, store *storage.Storage, metrics *infra.Metrics) *Simulator {
	if cfg.InboxSize <= 0 {
		cfg.InboxSize = defaultInboxSize
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = 950 * time.Millisecond
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = 3500 * time.Millisecond
	}
	if cfg.ResetBalance.IsZero() {
		cfg.ResetBalance = decimal.NewFromInt(1000)
	}
	if policy == nil {
		policy = NewRandomFillPolicy(DefaultFillProbability, 0)
	}
	if metrics == nil {
		metrics = infra.GlobalMetrics
	}
	return &Simulator{
		cfg:     cfg,
		inbox:   make(chan event.Command, cfg.InboxSize),
		stopped: make(chan struct{}),
		prices:  prices,
		book:    bk,
		ledger:  led,
		feed:    fd,
		gate:    gt,
		policy:  policy,
		store:   store,
		metrics: metrics,
	}
}

// SetOnUpdate registers the state-change observer. Must be called before
// Start.
func (s *Simulator) SetOnUpdate(fn func(Snapshot)) {
	s.onUpdate = fn
}

// Inbox returns the command channel. The timer drivers send here.
func (s *Simulator) Inbox() chan<- event.Command {
	return s.inbox
}

// Start launches the command loop and both timer drivers. They stop when
// ctx is cancelled; Wait blocks until everything has drained.
func (s *Simulator) Start(ctx context.Context) {
	s.wg.Add(3)
	go func() {
		defer s.wg.Done()
		s.Run(ctx)
	}()
	go s.drive(ctx, s.cfg.TickInterval, func(ts int64) event.Command {
		cmd := event.AcquireTickCommand()
		cmd.Ts = ts
		return cmd
	})
	go s.drive(ctx, s.cfg.SweepInterval, func(ts int64) event.Command {
		cmd := event.AcquireSweepCommand()
		cmd.Ts = ts
		return cmd
	})
}

// Wait blocks until the loop and drivers have stopped.
func (s *Simulator) Wait() {
	s.wg.Wait()
}

// drive posts one command per timer fire. The blocking send guarantees a
// driver never has two of its own commands in flight, so ticks of the same
// timer cannot overlap; the two drivers interleave arbitrarily.
func (s *Simulator) drive(ctx context.Context, interval time.Duration, make func(ts int64) event.Command) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			cmd := make(now.UnixMilli())
			select {
			case s.inbox <- cmd:
			case <-ctx.Done():
				releaseTimerCommand(cmd)
				return
			}
		}
	}
}

// Run starts the main command loop. This MUST be run in a single goroutine.
func (s *Simulator) Run(ctx context.Context) {
	slog.Info("Simulator started (single-writer loop)",
		slog.String("symbol", s.cfg.Symbol),
		slog.Duration("tick", s.cfg.TickInterval),
		slog.Duration("sweep", s.cfg.SweepInterval))

	defer close(s.stopped)
	defer func() {
		if r := recover(); r != nil {
			slog.Error("CRITICAL_PANIC_DETECTED", slog.Any("panic", r))
			s.DumpState("panic_dump.json")
			panic(fmt.Sprintf("HALTED: %v", r))
		}
	}()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Simulator stopping...")
			return
		case cmd := <-s.inbox:
			s.processCommand(cmd)
		}
	}
}

func (s *Simulator) processCommand(cmd event.Command) {
	start := time.Now()

	switch c := cmd.(type) {
	case *event.TickCommand:
		s.handleTick(c)
		event.ReleaseTickCommand(c)
	case *event.SweepCommand:
		s.handleSweep(c)
		event.ReleaseSweepCommand(c)
	case *event.SubmitCommand:
		s.handleSubmit(c)
	case *event.DepositCommand:
		s.handleDeposit(c)
	case *event.ResetCommand:
		s.handleReset(c)
	case *event.ConnectCommand:
		s.handleConnect(c)
	case *event.DisconnectCommand:
		s.handleDisconnect(c)
	default:
		slog.Warn("Unknown command type", slog.Any("kind", cmd.Kind()))
	}

	s.metrics.RecordCommand(time.Since(start).Nanoseconds())
}

func (s *Simulator) handleTick(c *event.TickCommand) {
	tick := s.prices.Tick(time.UnixMilli(c.Ts))
	s.feed.Publish(domain.EventPrice, fmt.Sprintf("%s %s", s.cfg.Symbol, tick.Price))
	s.metrics.RecordTick()
	s.notify()
}

// handleSweep runs one settlement pass. The fill price is the price current
// at evaluation time, not at order placement, and not at scheduling time.
func (s *Simulator) handleSweep(c *event.SweepCommand) {
	price := s.prices.Current()
	now := time.UnixMilli(c.Ts)

	fills := s.book.Settle(price, now, s.policy.ShouldFill)
	if len(fills) == 0 {
		return
	}

	for _, o := range fills {
		balance := s.ledger.Adjust(*o.PnL)
		s.feed.Publish(domain.EventTrade,
			fmt.Sprintf("Order %s filled @ %s, P/L %s", shortID(o.ID), price, o.PnL.StringFixed(2)))
		s.metrics.RecordOrderFilled()
		s.journalFill(o, price)

		slog.Debug("Order settled",
			slog.String("order_id", o.ID),
			slog.String("pnl", o.PnL.String()),
			slog.String("balance", balance.String()))
	}
	s.notify()
}

func (s *Simulator) handleSubmit(c *event.SubmitCommand) {
	o, err := s.book.Submit(c.Side, c.Size, s.prices.Current())
	if err != nil {
		s.feed.Publish(domain.EventError, fmt.Sprintf("Order rejected: %v", err))
		s.metrics.RecordError()
	} else {
		s.feed.Publish(domain.EventOrder,
			fmt.Sprintf("%s %s @ %s", o.Side, o.Size, o.EntryPrice))
		s.metrics.RecordOrderSubmitted()
		s.notify()
	}
	c.Reply <- event.SubmitResult{Order: o, Err: err}
}

func (s *Simulator) handleDeposit(c *event.DepositCommand) {
	balance := s.ledger.Adjust(c.Amount)
	s.feed.Publish(domain.EventSystem,
		fmt.Sprintf("Deposit %s accepted, balance %s", c.Amount.StringFixed(2), balance.StringFixed(2)))
	s.notify()
	close(c.Done)
}

// handleReset restores the canonical balance and clears the order book as
// one coordinated operation.
func (s *Simulator) handleReset(c *event.ResetCommand) {
	s.ledger.Reset(s.cfg.ResetBalance)
	s.book.Clear()
	s.feed.Publish(domain.EventSystem,
		fmt.Sprintf("Account reset to %s", s.cfg.ResetBalance.StringFixed(2)))
	s.notify()
	close(c.Done)
}

func (s *Simulator) handleConnect(c *event.ConnectCommand) {
	err := s.gate.Connect(c.Credential)
	if err != nil {
		s.feed.Publish(domain.EventError, fmt.Sprintf("Connect failed: %v", err))
		s.metrics.RecordError()
	} else {
		s.feed.Publish(domain.EventSystem, "Connected")
		s.metrics.SetConnected(true)
		if s.store != nil {
			if serr := s.store.SaveConfig("credential", c.Credential); serr != nil {
				slog.Warn("Failed to persist credential", slog.Any("error", serr))
			}
		}
		s.notify()
	}
	c.Reply <- err
}

func (s *Simulator) handleDisconnect(c *event.DisconnectCommand) {
	s.gate.Disconnect()
	s.feed.Publish(domain.EventSystem, "Disconnected")
	s.metrics.SetConnected(false)
	s.notify()
	close(c.Done)
}

func (s *Simulator) journalFill(o domain.Order, fillPrice decimal.Decimal) {
	if s.store == nil {
		return
	}
	rec := &domain.FillRecord{
		OrderID:    o.ID,
		Side:       string(o.Side),
		Size:       o.Size,
		EntryPrice: o.EntryPrice,
		FillPrice:  fillPrice,
		PnL:        *o.PnL,
		PlacedAt:   o.PlacedAt,
		FilledAt:   *o.FilledAt,
	}
	if err := s.store.SaveFill(rec); err != nil {
		slog.Warn("Failed to journal fill", slog.String("order_id", o.ID), slog.Any("error", err))
		s.metrics.RecordError()
	}
}

func (s *Simulator) notify() {
	if s.onUpdate != nil {
		s.onUpdate(s.snapshot())
	}
}

func (s *Simulator) snapshot() Snapshot {
	return Snapshot{
		Symbol:        s.cfg.Symbol,
		Price:         s.prices.Current(),
		Balance:       s.ledger.Balance(),
		Connected:     s.gate.Connected(),
		PendingOrders: s.book.PendingCount(),
		Timestamp:     time.Now(),
	}
}

// ======================================================================================
// External interface (called by the presentation layer)
// ======================================================================================

// SubmitOrder submits an order and waits for the loop to process it.
// Fails with ErrStopped once the loop has shut down.
func (s *Simulator) SubmitOrder(side domain.Side, size decimal.Decimal) (domain.Order, error) {
	reply := make(chan event.SubmitResult, 1)
	select {
	case s.inbox <- &event.SubmitCommand{Side: side, Size: size, Reply: reply}:
	case <-s.stopped:
		return domain.Order{}, ErrStopped
	}
	select {
	case res := <-reply:
		return res.Order, res.Err
	case <-s.stopped:
		return domain.Order{}, ErrStopped
	}
}

// Deposit adds funds to the account. A no-op once the loop has shut down.
func (s *Simulator) Deposit(amount decimal.Decimal) {
	done := make(chan struct{})
	select {
	case s.inbox <- &event.DepositCommand{Amount: amount, Done: done}:
	case <-s.stopped:
		return
	}
	select {
	case <-done:
	case <-s.stopped:
	}
}

// ResetAccount restores the canonical balance and empties the order list.
func (s *Simulator) ResetAccount() {
	done := make(chan struct{})
	select {
	case s.inbox <- &event.ResetCommand{Done: done}:
	case <-s.stopped:
		return
	}
	select {
	case <-done:
	case <-s.stopped:
	}
}

// Connect marks the account live with the given credential.
func (s *Simulator) Connect(credential string) error {
	reply := make(chan error, 1)
	select {
	case s.inbox <- &event.ConnectCommand{Credential: credential, Reply: reply}:
	case <-s.stopped:
		return ErrStopped
	}
	select {
	case err := <-reply:
		return err
	case <-s.stopped:
		return ErrStopped
	}
}

// Disconnect marks the account offline.
func (s *Simulator) Disconnect() {
	done := make(chan struct{})
	select {
	case s.inbox <- &event.DisconnectCommand{Done: done}:
	case <-s.stopped:
		return
	}
	select {
	case <-done:
	case <-s.stopped:
	}
}

// CurrentPrice returns the latest synthetic price.
func (s *Simulator) CurrentPrice() decimal.Decimal {
	return s.prices.Current()
}

// PriceHistory returns the rolling tick window, oldest first.
func (s *Simulator) PriceHistory() []domain.PriceTick {
	return s.prices.History()
}

// Orders returns the retained orders, newest first.
func (s *Simulator) Orders() []domain.Order {
	return s.book.List()
}

// FeedEvents returns the retained feed events, newest first.
func (s *Simulator) FeedEvents() []domain.FeedEvent {
	return s.feed.Snapshot()
}

// Balance returns the current account balance.
func (s *Simulator) Balance() decimal.Decimal {
	return s.ledger.Balance()
}

// Connected reports whether the account is live.
func (s *Simulator) Connected() bool {
	return s.gate.Connected()
}

// ConnectionState returns the gate snapshot.
func (s *Simulator) ConnectionState() domain.ConnectionState {
	return s.gate.State()
}

// Metrics returns a snapshot of the engine counters.
func (s *Simulator) Metrics() infra.MetricsSnapshot {
	return s.metrics.Snapshot()
}

// DumpState writes the entire internal state to a file (for post-mortem).
func (s *Simulator) DumpState(filename string) {
	slog.Info("Dumping internal state...", slog.String("file", filename))

	data := struct {
		Symbol  string             `json:"symbol"`
		Price   decimal.Decimal    `json:"price"`
		Balance decimal.Decimal    `json:"balance"`
		Orders  []domain.Order     `json:"orders"`
		Feed    []domain.FeedEvent `json:"feed"`
	}{
		Symbol:  s.cfg.Symbol,
		Price:   s.prices.Current(),
		Balance: s.ledger.Balance(),
		Orders:  s.book.List(),
		Feed:    s.feed.Snapshot(),
	}

	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		slog.Error("Failed to marshal state", slog.Any("error", err))
		return
	}

	if err := os.WriteFile(filename, b, 0644); err != nil {
		slog.Error("Failed to write state dump", slog.Any("error", err))
	}
}

func releaseTimerCommand(cmd event.Command) {
	switch c := cmd.(type) {
	case *event.TickCommand:
		event.ReleaseTickCommand(c)
	case *event.SweepCommand:
		event.ReleaseSweepCommand(c)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
