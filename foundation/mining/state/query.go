package state

import (
	"github.com/ardanlabs/mining/foundation/mining/genesis"
	"github.com/ardanlabs/mining/foundation/mining/ledger"
	"github.com/ardanlabs/mining/foundation/mining/schedule"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Contract represents the current state of a deployed contract.
type Contract struct {
	Name              string
	Owner             common.Address
	Renounced         bool
	Receiver          common.Address
	Balance           *uint256.Int
	Gate              schedule.Gate
	WithdrawInterval  uint64
	WithdrawAmount    *uint256.Int
	MinWithdrawAmount *uint256.Int
	WithdrawCounter   uint64
	LastWithdrawTick  uint64
	NextWithdrawTick  uint64
	Due               bool
	Decay             *schedule.Decay
}

// =============================================================================

// Genesis returns a copy of the genesis information.
func (s *State) Genesis() genesis.Genesis {
	return s.genesis
}

// QueryTick returns the current tick of the chain.
func (s *State) QueryTick() uint64 {
	return s.clock.CurrentTick()
}

// MineBlock advances the chain by one block and returns the new tick.
func (s *State) MineBlock() uint64 {
	return s.clock.Advance(1)
}

// QueryContract returns the current state of the named contract.
func (s *State) QueryContract(name string) (Contract, error) {
	c, err := s.lookup(name)
	if err != nil {
		return Contract{}, err
	}

	return c.state(s.clock.CurrentTick()), nil
}

// QueryContracts returns the current state of every contract in the order
// they were deployed.
func (s *State) QueryContracts() []Contract {
	tick := s.clock.CurrentTick()

	out := make([]Contract, len(s.names))
	for i, name := range s.names {
		out[i] = s.contracts[name].state(tick)
	}

	return out
}

// DueContracts returns the names of the permissionless contracts that can
// be withdrawn from at the current tick.
func (s *State) DueContracts() []string {
	var names []string
	for _, name := range s.names {
		sched := s.contracts[name].schedule
		if sched.Gate() == schedule.GatePermissionless && sched.Due() {
			names = append(names, name)
		}
	}

	return names
}

// QueryAccount returns a copy of the ledger account.
func (s *State) QueryAccount(addr common.Address) ledger.Account {
	return s.ledger.Query(addr)
}

// QueryAccounts returns a copy of every ledger account.
func (s *State) QueryAccounts() []ledger.Account {
	return s.ledger.Copy()
}

// =============================================================================

// state builds the view of the contract from a single snapshot.
func (c *contract) state(tick uint64) Contract {
	snap := c.schedule.Snapshot()
	interval := c.schedule.WithdrawInterval()

	next := snap.LastWithdrawTick + interval
	if next < snap.LastWithdrawTick {
		next = ^uint64(0)
	}

	cs := Contract{
		Name:              c.name,
		Owner:             snap.Owner,
		Renounced:         snap.Renounced,
		Receiver:          snap.Receiver,
		Balance:           snap.Balance,
		Gate:              c.schedule.Gate(),
		WithdrawInterval:  interval,
		WithdrawAmount:    snap.WithdrawAmount,
		MinWithdrawAmount: snap.WithdrawAmount,
		WithdrawCounter:   snap.WithdrawCounter,
		LastWithdrawTick:  snap.LastWithdrawTick,
		NextWithdrawTick:  next,
		Due:               tick >= next,
	}

	if d, ok := c.schedule.Decay(); ok {
		cs.MinWithdrawAmount = d.MinWithdrawAmount
		cs.Decay = &d
	}

	return cs
}
