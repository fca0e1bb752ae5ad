// Package state is the core API for the mining node and implements all the
// business rules for executing calls against the mining contracts.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/ardanlabs/mining/foundation/mining/clock"
	"github.com/ardanlabs/mining/foundation/mining/genesis"
	"github.com/ardanlabs/mining/foundation/mining/ledger"
	"github.com/ardanlabs/mining/foundation/mining/schedule"
	"github.com/ardanlabs/mining/foundation/mining/storage"
)

// Set of errors returned by the state.
var (
	ErrUnknownContract  = errors.New("unknown contract")
	ErrUnknownMethod    = errors.New("unknown method")
	ErrChainID          = errors.New("invalid chain id")
	ErrInvalidSignature = errors.New("invalid signature")
	ErrInvalidValue     = errors.New("invalid value")
)

// =============================================================================

// EventHandler defines a function that is called when events
// occur in the processing of calls.
type EventHandler func(v string, args ...any)

// Publisher defines the behavior required to broadcast contract events to
// the outside world. The topic is the contract name.
type Publisher interface {
	Send(topic string, data []byte)
}

// Worker interface represents the behavior required to be implemented by any
// package providing the background operations of the node.
type Worker interface {
	Shutdown()
}

// =============================================================================

// Config represents the configuration required to start the mining node.
type Config struct {
	Genesis   genesis.Genesis
	Clock     *clock.Chain
	Storage   storage.Storage
	Publisher Publisher
	EvHandler EventHandler
}

// contract binds a deployed schedule to its name.
type contract struct {
	name     string
	params   genesis.Params
	schedule *schedule.Schedule
}

// State manages the ledger and the deployed contracts.
type State struct {
	mu sync.Mutex

	genesis   genesis.Genesis
	clock     *clock.Chain
	ledger    *ledger.Ledger
	storage   storage.Storage
	publisher Publisher
	evHandler EventHandler

	names     []string
	contracts map[string]*contract

	Worker Worker
}

// New constructs the state of the node. When the storage holds a snapshot
// the ledger and contracts continue from it, otherwise they are built from
// the genesis.
func New(cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	if cfg.Storage == nil {
		return nil, errors.New("storage is required")
	}

	clk := cfg.Clock
	if clk == nil {
		clk = clock.New(0)
	}

	if err := cfg.Genesis.Validate(); err != nil {
		return nil, fmt.Errorf("genesis: %w", err)
	}

	s := State{
		genesis:   cfg.Genesis,
		clock:     clk,
		storage:   cfg.Storage,
		publisher: cfg.Publisher,
		evHandler: ev,
		contracts: make(map[string]*contract),
	}

	snap, err := cfg.Storage.Read()
	switch {
	case errors.Is(err, storage.ErrNotFound):
		ev("state: New: no snapshot found, deploying from genesis")
		if err := s.fromGenesis(); err != nil {
			return nil, err
		}

	case err != nil:
		return nil, fmt.Errorf("reading snapshot: %w", err)

	default:
		ev("state: New: restoring snapshot: tick[%d] accounts[%d] contracts[%d]", snap.Tick, len(snap.Accounts), len(snap.Contracts))
		if err := s.fromSnapshot(snap); err != nil {
			return nil, err
		}
	}

	// The Worker is not set here. The call to worker.Run will assign itself
	// and start everything up and running for the node.

	if err := s.persist(); err != nil {
		return nil, err
	}

	return &s, nil
}

// Shutdown cleanly brings the node down.
func (s *State) Shutdown() error {
	s.evHandler("state: shutdown: started")
	defer s.evHandler("state: shutdown: completed")

	// Make sure the storage is properly closed.
	defer func() {
		s.storage.Close()
	}()

	// Stop all background activity.
	if s.Worker != nil {
		s.Worker.Shutdown()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.persist()
}

// =============================================================================

// fromGenesis builds the ledger and deploys every contract fresh.
func (s *State) fromGenesis() error {
	balances, err := s.genesis.LedgerBalances()
	if err != nil {
		return err
	}
	s.ledger = ledger.New(balances)

	nonPayable, err := s.genesis.NonPayableAccounts()
	if err != nil {
		return err
	}
	for _, addr := range nonPayable {
		s.ledger.MarkNonPayable(addr)
	}

	for _, gc := range s.genesis.Contracts {
		if err := s.deploy(gc); err != nil {
			return err
		}
	}

	return nil
}

// fromSnapshot restores the ledger and contracts from storage. A contract in
// the genesis that is missing from the snapshot is deployed fresh.
func (s *State) fromSnapshot(snap storage.Snapshot) error {
	s.clock.MineTo(snap.Tick)

	accounts, err := storage.ToLedgerAccounts(snap.Accounts)
	if err != nil {
		return err
	}
	s.ledger = ledger.New(nil)
	s.ledger.Restore(accounts)

	saved := make(map[string]storage.Contract, len(snap.Contracts))
	for _, c := range snap.Contracts {
		saved[c.Name] = c
	}

	for _, gc := range s.genesis.Contracts {
		sc, exists := saved[gc.Name]
		if !exists {
			s.evHandler("state: fromSnapshot: contract[%s]: not in snapshot, deploying", gc.Name)
			if err := s.deploy(gc); err != nil {
				return err
			}
			continue
		}

		params, err := gc.Resolve()
		if err != nil {
			return err
		}

		schedSnap, err := sc.ToSchedule()
		if err != nil {
			return err
		}

		sched, err := schedule.Restore(s.scheduleConfig(params), schedSnap)
		if err != nil {
			return fmt.Errorf("contract %q: %w", gc.Name, err)
		}

		s.add(params, sched)
	}

	return nil
}

// deploy constructs a schedule from the genesis contract and funds it.
func (s *State) deploy(gc genesis.Contract) error {
	params, err := gc.Resolve()
	if err != nil {
		return err
	}

	sched, err := schedule.New(s.scheduleConfig(params))
	if err != nil {
		return fmt.Errorf("contract %q: %w", gc.Name, err)
	}

	if params.Fund != nil && !params.Fund.IsZero() {
		if err := sched.Deposit(params.Fund); err != nil {
			return fmt.Errorf("contract %q: fund: %w", gc.Name, err)
		}
	}

	s.evHandler("state: deploy: contract[%s]: gate[%s] interval[%d] amount[%s] fund[%s]", params.Name, params.Config.Gate, params.Config.WithdrawInterval, params.Config.WithdrawAmount.Dec(), params.Fund.Dec())

	s.add(params, sched)

	return nil
}

// scheduleConfig fills in the collaborators of the schedule config.
func (s *State) scheduleConfig(params genesis.Params) schedule.Config {
	cfg := params.Config
	cfg.Clock = s.clock
	cfg.Transfer = s.ledger
	cfg.Sink = s.sink(params.Name)

	return cfg
}

// add registers the schedule under its name.
func (s *State) add(params genesis.Params, sched *schedule.Schedule) {
	s.names = append(s.names, params.Name)
	s.contracts[params.Name] = &contract{
		name:     params.Name,
		params:   params,
		schedule: sched,
	}
}

// sink constructs the event sink for the named contract. Events are logged
// and published; the snapshot is written by the caller once the operation
// that emitted the event returns.
func (s *State) sink(name string) schedule.EventSink {
	f := func(ev schedule.Event) {
		msg := newEventMessage(name, s.clock.CurrentTick(), ev)

		s.evHandler("state: contract[%s]: event[%s]: %s", name, msg.Event, msg)

		if s.publisher == nil {
			return
		}

		data, err := json.Marshal(msg)
		if err != nil {
			s.evHandler("state: contract[%s]: event[%s]: ERROR: %s", name, msg.Event, err)
			return
		}

		s.publisher.Send(name, data)
	}

	return schedule.EventSinkFunc(f)
}

// persist writes a snapshot of the ledger and every contract. The caller must
// hold the lock.
func (s *State) persist() error {
	snap := storage.Snapshot{
		Tick:      s.clock.CurrentTick(),
		Accounts:  storage.NewAccounts(s.ledger.Copy()),
		Contracts: make([]storage.Contract, 0, len(s.names)),
	}

	for _, name := range s.names {
		snap.Contracts = append(snap.Contracts, storage.NewContract(name, s.contracts[name].schedule.Snapshot()))
	}

	if err := s.storage.Write(snap); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}

	return nil
}

// lookup returns the named contract.
func (s *State) lookup(name string) (*contract, error) {
	c, exists := s.contracts[name]
	if !exists {
		return nil, fmt.Errorf("%w: %q", ErrUnknownContract, name)
	}
	return c, nil
}
