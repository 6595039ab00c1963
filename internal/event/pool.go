package event

import (
	"sync"
)

// Pools for the two high-frequency timer commands. Tick and sweep commands
// are produced on every timer fire for the lifetime of the process; pooling
// them keeps the drivers allocation-free.
//
// Usage:
//
//	cmd := AcquireTickCommand()
//	cmd.Ts = now.UnixMilli()
//	// ... post to the inbox; the loop releases it after processing ...
var tickPool = sync.Pool{
	New: func() interface{} {
		return &TickCommand{}
	},
}

// AcquireTickCommand gets a TickCommand from the pool.
// The returned command has zero values and must be initialized.
func AcquireTickCommand() *TickCommand {
	return tickPool.Get().(*TickCommand)
}

// ReleaseTickCommand returns a TickCommand to the pool.
func ReleaseTickCommand(cmd *TickCommand) {
	if cmd == nil {
		return
	}
	cmd.Ts = 0
	tickPool.Put(cmd)
}

var sweepPool = sync.Pool{
	New: func() interface{} {
		return &SweepCommand{}
	},
}

// AcquireSweepCommand gets a SweepCommand from the pool.
func AcquireSweepCommand() *SweepCommand {
	return sweepPool.Get().(*SweepCommand)
}

// ReleaseSweepCommand returns a SweepCommand to the pool.
func ReleaseSweepCommand(cmd *SweepCommand) {
	if cmd == nil {
		return
	}
	cmd.Ts = 0
	sweepPool.Put(cmd)
}

// Warmup pre-allocates timer commands to reduce GC pressure at startup.
func Warmup() {
	const batchSize = 64

	ticks := make([]*TickCommand, 0, batchSize)
	for i := 0; i < batchSize; i++ {
		ticks = append(ticks, AcquireTickCommand())
	}
	for _, cmd := range ticks {
		ReleaseTickCommand(cmd)
	}

	sweeps := make([]*SweepCommand, 0, batchSize)
	for i := 0; i < batchSize; i++ {
		sweeps = append(sweeps, AcquireSweepCommand())
	}
	for _, cmd := range sweeps {
		ReleaseSweepCommand(cmd)
	}
}
