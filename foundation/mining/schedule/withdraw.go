package schedule

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Withdraw releases the current withdraw amount to the receiver. Any number
// of elapsed intervals collapse into a single release. The caller only
// matters for an owner gated schedule; the value always goes to the receiver.
// The amount released is returned.
func (s *Schedule) Withdraw(caller common.Address) (*uint256.Int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gate == GateOwner {
		if err := s.ownership.authorize(caller); err != nil {
			return nil, err
		}
	}

	tick := s.clock.CurrentTick()
	if tick < s.lastWithdrawTick || tick-s.lastWithdrawTick < s.interval {
		return nil, ErrTooEarly
	}

	amount := s.withdrawAmount.Clone()
	if s.balance.Lt(amount) {
		return nil, fmt.Errorf("%w: insufficient balance, bal %s, needed %s", ErrTransferFailed, s.balance.Dec(), amount.Dec())
	}

	if err := s.transfer.Send(s.receiver, amount.Clone()); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransferFailed, err)
	}

	// The transfer is done so everything else must commit.
	s.balance = new(uint256.Int).Sub(s.balance, amount)
	s.lastWithdrawTick = tick

	s.emit(Withdrawal{To: s.receiver, Amount: amount.Clone()})

	if s.decay != nil {
		s.withdrawCounter++
		if s.withdrawCounter == s.decay.ResetThreshold {
			s.withdrawCounter = 0
			s.withdrawAmount = s.decay.next(s.withdrawAmount)
		}
	}

	return amount, nil
}

// Deposit adds value to the custodied balance. Anyone can deposit.
func (s *Schedule) Deposit(amount *uint256.Int) error {
	if amount == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	balance, overflow := new(uint256.Int).AddOverflow(s.balance, amount)
	if overflow {
		return ErrOverflow
	}
	s.balance = balance

	return nil
}
