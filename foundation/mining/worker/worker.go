// Package worker implements block production and the keeper that triggers
// withdraws on the permissionless mining contracts.
package worker

import (
	"sync"
	"time"

	"github.com/ardanlabs/mining/foundation/mining/state"
	"github.com/ethereum/go-ethereum/common"
)

// Config represents the configuration for the background operations.
type Config struct {
	BlockTime time.Duration
	Keeper    common.Address // Zero disables the keeper.
	EvHandler state.EventHandler
}

// Worker manages the block and keeper workflows for the node.
type Worker struct {
	state     *state.State
	wg        sync.WaitGroup
	ticker    *time.Ticker
	shut      chan struct{}
	keep      chan uint64
	keeper    common.Address
	evHandler state.EventHandler
}

// Run creates a worker, registers the worker with the state package, and
// starts up all the background processes.
func Run(st *state.State, cfg Config) {
	ev := cfg.EvHandler
	if ev == nil {
		ev = func(v string, args ...any) {}
	}

	blockTime := cfg.BlockTime
	if blockTime <= 0 {
		blockTime = time.Second
	}

	w := Worker{
		state:     st,
		ticker:    time.NewTicker(blockTime),
		shut:      make(chan struct{}),
		keep:      make(chan uint64, 1),
		keeper:    cfg.Keeper,
		evHandler: ev,
	}

	// Register this worker with the state package.
	st.Worker = &w

	// Load the set of operations we need to run.
	operations := []func(){
		w.blockOperations,
	}
	if w.keeper != (common.Address{}) {
		operations = append(operations, w.keeperOperations)
	}

	// Set waitgroup to match the number of G's we need for the set
	// of operations we have.
	g := len(operations)
	w.wg.Add(g)

	// We don't want to return until we know all the G's are up and running.
	hasStarted := make(chan bool)

	// Start all the operational G's.
	for _, op := range operations {
		go func(op func()) {
			defer w.wg.Done()
			hasStarted <- true
			op()
		}(op)
	}

	// Wait for the G's to report they are running.
	for i := 0; i < g; i++ {
		<-hasStarted
	}
}

// =============================================================================
// These methods implement the state.Worker interface.

// Shutdown terminates the goroutines performing work.
func (w *Worker) Shutdown() {
	w.evHandler("worker: shutdown: started")
	defer w.evHandler("worker: shutdown: completed")

	w.evHandler("worker: shutdown: stop ticker")
	w.ticker.Stop()

	w.evHandler("worker: shutdown: terminate goroutines")
	close(w.shut)
	w.wg.Wait()
}

// =============================================================================

// blockOperations advances the chain by one block every tick of the ticker.
func (w *Worker) blockOperations() {
	w.evHandler("worker: blockOperations: G started")
	defer w.evHandler("worker: blockOperations: G completed")

	for {
		select {
		case <-w.ticker.C:
			if w.isShutdown() {
				return
			}
			tick := w.state.MineBlock()
			w.signalKeeper(tick)

		case <-w.shut:
			w.evHandler("worker: blockOperations: received shut signal")
			return
		}
	}
}

// signalKeeper wakes the keeper for the new block. If the keeper is still
// busy with a previous block the signal is dropped since the keeper always
// looks at the current tick.
func (w *Worker) signalKeeper(tick uint64) {
	if w.keeper == (common.Address{}) {
		return
	}

	select {
	case w.keep <- tick:
	default:
	}
}

// keeperOperations triggers a withdraw on every due permissionless contract
// after each block.
func (w *Worker) keeperOperations() {
	w.evHandler("worker: keeperOperations: G started")
	defer w.evHandler("worker: keeperOperations: G completed")

	for {
		select {
		case tick := <-w.keep:
			if !w.isShutdown() {
				w.runKeeperOperation(tick)
			}

		case <-w.shut:
			w.evHandler("worker: keeperOperations: received shut signal")
			return
		}
	}
}

// runKeeperOperation withdraws from the due contracts. A failure only means
// another caller got there first or the contract can't pay yet.
func (w *Worker) runKeeperOperation(tick uint64) {
	for _, name := range w.state.DueContracts() {
		amount, err := w.state.Withdraw(w.keeper, name)
		if err != nil {
			w.evHandler("worker: runKeeperOperation: tick[%d]: contract[%s]: WARNING: %s", tick, name, err)
			continue
		}

		w.evHandler("worker: runKeeperOperation: tick[%d]: contract[%s]: released[%s]", tick, name, amount.Dec())
	}
}

// isShutdown is used to test if a shutdown has been signaled.
func (w *Worker) isShutdown() bool {
	select {
	case <-w.shut:
		return true
	default:
		return false
	}
}
