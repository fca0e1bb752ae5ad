package schedule

import (
	"math"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Owner returns the current owner. The bool is false once ownership has
// been renounced.
func (s *Schedule) Owner() (common.Address, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.owner()
}

func (s *Schedule) owner() (common.Address, bool) {
	if o, ok := s.ownership.(owned); ok {
		return common.Address(o), true
	}
	return common.Address{}, false
}

// IsOwner reports whether the address is the current owner.
func (s *Schedule) IsOwner(addr common.Address) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.ownership.authorize(addr) == nil
}

// Receiver returns the address that receives releases.
func (s *Schedule) Receiver() common.Address {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.receiver
}

// Balance returns the custodied balance.
func (s *Schedule) Balance() *uint256.Int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.balance.Clone()
}

// Gate returns who can trigger a withdraw.
func (s *Schedule) Gate() Gate {
	return s.gate
}

// WithdrawInterval returns the number of ticks required between releases.
func (s *Schedule) WithdrawInterval() uint64 {
	return s.interval
}

// LastWithdrawTick returns the tick of the last release, or the tick the
// schedule was created at if nothing has been released yet.
func (s *Schedule) LastWithdrawTick() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.lastWithdrawTick
}

// NextWithdrawTick returns the first tick at which a withdraw can succeed.
func (s *Schedule) NextWithdrawTick() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.nextWithdrawTick()
}

func (s *Schedule) nextWithdrawTick() uint64 {
	if s.lastWithdrawTick > math.MaxUint64-s.interval {
		return math.MaxUint64
	}
	return s.lastWithdrawTick + s.interval
}

// Due reports whether enough ticks have elapsed for a withdraw. It says
// nothing about whether the balance can cover it.
func (s *Schedule) Due() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	tick := s.clock.CurrentTick()
	return tick >= s.lastWithdrawTick && tick-s.lastWithdrawTick >= s.interval
}

// WithdrawAmount returns the amount the next release will pay.
func (s *Schedule) WithdrawAmount() *uint256.Int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withdrawAmount.Clone()
}

// WithdrawCounter returns the number of releases since the last decay reset.
// It is always zero for a schedule without decay.
func (s *Schedule) WithdrawCounter() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withdrawCounter
}

// MinWithdrawAmount returns the floor of the withdraw amount. Without decay
// the amount never changes, so the floor is the amount itself.
func (s *Schedule) MinWithdrawAmount() *uint256.Int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.decay == nil {
		return s.withdrawAmount.Clone()
	}
	return s.decay.MinWithdrawAmount.Clone()
}

// Decay returns a copy of the decay parameters. The bool is false for a
// schedule without decay.
func (s *Schedule) Decay() (Decay, bool) {
	if s.decay == nil {
		return Decay{}, false
	}
	return s.decay.clone(), true
}
