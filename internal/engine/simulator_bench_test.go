package engine

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/maithyaurbanus123-oss/derivprotrade1/internal/domain"
	"github.com/maithyaurbanus123-oss/derivprotrade1/internal/event"
)

// BenchmarkSimulator_HandleTick measures the price-advance hotpath.
func BenchmarkSimulator_HandleTick(b *testing.B) {
	s := newBenchSimulator()

	cmd := event.AcquireTickCommand()
	base := time.Now()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		cmd.Ts = base.Add(time.Duration(i) * time.Second).UnixMilli()
		s.handleTick(cmd)
	}

	event.ReleaseTickCommand(cmd)
}

// BenchmarkSimulator_HandleSweep measures one settlement pass over a full
// book of pending orders.
func BenchmarkSimulator_HandleSweep(b *testing.B) {
	s := newBenchSimulator()

	for i := 0; i < 50; i++ {
		reply := make(chan event.SubmitResult, 1)
		s.handleSubmit(&event.SubmitCommand{Side: domain.SideBuy, Size: decimal.NewFromInt(1), Reply: reply})
		<-reply
	}

	cmd := event.AcquireSweepCommand()
	base := time.Now()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		cmd.Ts = base.Add(time.Duration(i) * time.Second).UnixMilli()
		s.handleSweep(cmd)
	}

	event.ReleaseSweepCommand(cmd)
}

func newBenchSimulator() *Simulator {
	// neverFill keeps the book full so every iteration scans all 50 orders.
	return newTestSimulator(neverFill{}, &fixedSource{vals: []float64{0.5}})
}
