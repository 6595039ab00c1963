// Package event defines the commands processed by the simulator loop.
// Timer drivers and external callers post commands into the loop's inbox;
// the loop is the single writer for all simulation state.
package event

import (
	"github.com/shopspring/decimal"

	"github.com/maithyaurbanus123-oss/derivprotrade1/internal/domain"
)

// Kind identifies the command type for dispatch.
type Kind uint8

const (
	KindTick Kind = iota + 1
	KindSweep
	KindSubmit
	KindDeposit
	KindReset
	KindConnect
	KindDisconnect
)

// Command is anything the simulator loop can process.
type Command interface {
	Kind() Kind
}

// TickCommand asks the loop to advance the price process. Ts is the
// scheduled wall-clock time in unix milliseconds; the loop re-reads all
// other state at execution time rather than capturing it at scheduling time.
type TickCommand struct {
	Ts int64
}

func (*TickCommand) Kind() Kind { return KindTick }

// SweepCommand asks the loop to run one settlement pass over all pending
// orders at the price current at execution time.
type SweepCommand struct {
	Ts int64
}

func (*SweepCommand) Kind() Kind { return KindSweep }

// SubmitResult carries the outcome of an order submission back to the caller.
type SubmitResult struct {
	Order domain.Order
	Err   error
}

// SubmitCommand submits an order on behalf of the presentation layer.
// Reply must be buffered; the loop never blocks on it.
type SubmitCommand struct {
	Side  domain.Side
	Size  decimal.Decimal
	Reply chan SubmitResult
}

func (*SubmitCommand) Kind() Kind { return KindSubmit }

// DepositCommand adds funds to the ledger. Done is closed after the mutation
// is applied.
type DepositCommand struct {
	Amount decimal.Decimal
	Done   chan struct{}
}

func (*DepositCommand) Kind() Kind { return KindDeposit }

// ResetCommand restores the canonical opening balance and clears the order
// book as one coordinated operation.
type ResetCommand struct {
	Done chan struct{}
}

func (*ResetCommand) Kind() Kind { return KindReset }

// ConnectCommand configures the connectivity gate with a credential.
type ConnectCommand struct {
	Credential string
	Reply      chan error
}

func (*ConnectCommand) Kind() Kind { return KindConnect }

// DisconnectCommand marks the account offline.
type DisconnectCommand struct {
	Done chan struct{}
}

func (*DisconnectCommand) Kind() Kind { return KindDisconnect }
