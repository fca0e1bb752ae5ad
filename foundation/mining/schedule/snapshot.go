package schedule

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Snapshot is a copy of the mutable state of a schedule.
type Snapshot struct {
	Owner            common.Address
	Renounced        bool
	Receiver         common.Address
	Balance          *uint256.Int
	LastWithdrawTick uint64
	WithdrawAmount   *uint256.Int
	WithdrawCounter  uint64
}

// Snapshot captures the mutable state of the schedule.
func (s *Schedule) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	owner, ok := s.owner()

	return Snapshot{
		Owner:            owner,
		Renounced:        !ok,
		Receiver:         s.receiver,
		Balance:          s.balance.Clone(),
		LastWithdrawTick: s.lastWithdrawTick,
		WithdrawAmount:   s.withdrawAmount.Clone(),
		WithdrawCounter:  s.withdrawCounter,
	}
}

// validate checks the snapshot holds a state the schedule could have reached
// with the specified configuration.
func (snap Snapshot) validate(cfg Config) error {
	if !snap.Renounced && snap.Owner == (common.Address{}) {
		return fmt.Errorf("%w: owner is the zero address", ErrInvalidSnapshot)
	}

	if snap.Receiver == (common.Address{}) {
		return fmt.Errorf("%w: receiver is the zero address", ErrInvalidSnapshot)
	}

	if snap.Balance == nil || snap.WithdrawAmount == nil {
		return fmt.Errorf("%w: balance and withdraw amount are required", ErrInvalidSnapshot)
	}

	if cfg.Decay == nil {
		if snap.WithdrawCounter != 0 {
			return fmt.Errorf("%w: counter %d without decay", ErrInvalidSnapshot, snap.WithdrawCounter)
		}
		if !snap.WithdrawAmount.Eq(cfg.WithdrawAmount) {
			return fmt.Errorf("%w: withdraw amount %s changed without decay", ErrInvalidSnapshot, snap.WithdrawAmount.Dec())
		}
		return nil
	}

	if snap.WithdrawCounter >= cfg.Decay.ResetThreshold {
		return fmt.Errorf("%w: counter %d not below threshold %d", ErrInvalidSnapshot, snap.WithdrawCounter, cfg.Decay.ResetThreshold)
	}

	if snap.WithdrawAmount.Lt(cfg.Decay.MinWithdrawAmount) {
		return fmt.Errorf("%w: withdraw amount %s below min %s", ErrInvalidSnapshot, snap.WithdrawAmount.Dec(), cfg.Decay.MinWithdrawAmount.Dec())
	}

	return nil
}
