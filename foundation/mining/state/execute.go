package state

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Execute verifies the signed call and runs the method it names against the
// contract. The nonce of the caller only advances when the method succeeds.
func (s *State) Execute(sc SignedCall) (Receipt, error) {
	if err := sc.validate(); err != nil {
		return Receipt{}, err
	}

	from, err := sc.FromAddress()
	if err != nil {
		return Receipt{}, fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}

	if sc.ChainID != s.genesis.ChainID {
		return Receipt{}, fmt.Errorf("%w: got %d, exp %d", ErrChainID, sc.ChainID, s.genesis.ChainID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ledger.ValidateNonce(from, sc.Nonce); err != nil {
		return Receipt{}, err
	}

	c, err := s.lookup(sc.Contract)
	if err != nil {
		return Receipt{}, err
	}

	var amount *uint256.Int

	switch sc.Method {
	case MethodWithdraw:
		amount, err = c.schedule.Withdraw(from)

	case MethodSetReceiver:
		err = c.schedule.SetReceiver(from, common.HexToAddress(sc.Address))

	case MethodTransferOwnership:
		err = c.schedule.TransferOwnership(from, common.HexToAddress(sc.Address))

	case MethodRenounceOwnership:
		err = c.schedule.RenounceOwnership(from)

	case MethodDeposit:
		amount, err = uint256.FromDecimal(sc.Value)
		if err != nil {
			return Receipt{}, fmt.Errorf("%w: %w", ErrInvalidValue, err)
		}
		err = s.deposit(from, c, amount)
	}

	if err != nil {
		s.evHandler("state: Execute: call[%s]: ERROR: %s", sc, err)
		return Receipt{}, err
	}

	// The method has run so the nonce is known to be valid.
	s.ledger.UpdateNonce(from, sc.Nonce)

	if err := s.persist(); err != nil {
		s.evHandler("state: Execute: call[%s]: ERROR: %s", sc, err)
	}

	r := Receipt{
		Contract: sc.Contract,
		Method:   sc.Method,
		From:     from.Hex(),
		Nonce:    sc.Nonce,
		Tick:     s.clock.CurrentTick(),
	}
	if amount != nil {
		r.Amount = amount.Dec()
	}

	s.evHandler("state: Execute: call[%s]: executed", sc)

	return r, nil
}

// Withdraw triggers a withdraw on the named contract on behalf of the
// caller. It is used by the node itself, so no signature or nonce is
// involved.
func (s *State) Withdraw(caller common.Address, name string) (*uint256.Int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.lookup(name)
	if err != nil {
		return nil, err
	}

	amount, err := c.schedule.Withdraw(caller)
	if err != nil {
		return nil, err
	}

	if err := s.persist(); err != nil {
		s.evHandler("state: Withdraw: contract[%s]: ERROR: %s", name, err)
	}

	return amount, nil
}

// Deposit moves value from the ledger account into the custodied balance of
// the named contract.
func (s *State) Deposit(from common.Address, name string, amount *uint256.Int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.lookup(name)
	if err != nil {
		return err
	}

	if err := s.deposit(from, c, amount); err != nil {
		return err
	}

	if err := s.persist(); err != nil {
		s.evHandler("state: Deposit: contract[%s]: ERROR: %s", name, err)
	}

	return nil
}

// deposit debits the account and credits the contract, refunding the
// account if the contract can't take the value. The caller must hold the
// lock.
func (s *State) deposit(from common.Address, c *contract, amount *uint256.Int) error {
	if amount.IsZero() {
		return fmt.Errorf("%w: deposit of zero", ErrInvalidValue)
	}

	if err := s.ledger.Debit(from, amount); err != nil {
		return err
	}

	if err := c.schedule.Deposit(amount); err != nil {
		if rerr := s.ledger.Credit(from, amount); rerr != nil {
			return fmt.Errorf("%w: refund: %w", err, rerr)
		}
		return err
	}

	s.evHandler("state: deposit: contract[%s]: from[%s] amount[%s]", c.name, from, amount.Dec())

	return nil
}
