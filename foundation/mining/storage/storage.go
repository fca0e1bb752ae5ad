// Package storage defines the snapshot that is persisted so a node can be
// restarted without losing the state of its contracts and ledger.
package storage

import (
	"errors"
	"fmt"

	"github.com/ardanlabs/mining/foundation/mining/ledger"
	"github.com/ardanlabs/mining/foundation/mining/schedule"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// ErrNotFound is returned by Read when no snapshot has been written.
var ErrNotFound = errors.New("snapshot not found")

// Storage interface represents the behavior required to be implemented by any
// package providing support for persisting snapshots.
type Storage interface {
	Write(snap Snapshot) error
	Read() (Snapshot, error)
	Reset() error
	Close() error
}

// =============================================================================

// Snapshot is the persisted state of a node.
type Snapshot struct {
	Tick      uint64     `json:"tick"`
	Accounts  []Account  `json:"accounts"`
	Contracts []Contract `json:"contracts"`
}

// Account is the persisted form of a ledger account.
type Account struct {
	Address    string `json:"address"`
	Nonce      uint64 `json:"nonce"`
	Balance    string `json:"balance"`
	NonPayable bool   `json:"non_payable,omitempty"`
}

// Contract is the persisted form of the mutable state of a schedule.
type Contract struct {
	Name             string `json:"name"`
	Owner            string `json:"owner"`
	Renounced        bool   `json:"renounced,omitempty"`
	Receiver         string `json:"receiver"`
	Balance          string `json:"balance"`
	LastWithdrawTick uint64 `json:"last_withdraw_tick"`
	WithdrawAmount   string `json:"withdraw_amount"`
	WithdrawCounter  uint64 `json:"withdraw_counter"`
}

// =============================================================================

// NewAccounts converts ledger accounts into their persisted form.
func NewAccounts(accounts []ledger.Account) []Account {
	out := make([]Account, len(accounts))
	for i, a := range accounts {
		out[i] = Account{
			Address:    a.Address.Hex(),
			Nonce:      a.Nonce,
			Balance:    a.Balance.Dec(),
			NonPayable: a.NonPayable,
		}
	}
	return out
}

// ToLedgerAccounts converts persisted accounts back into ledger accounts.
func ToLedgerAccounts(accounts []Account) ([]ledger.Account, error) {
	out := make([]ledger.Account, len(accounts))
	for i, a := range accounts {
		addr, err := toAddress(a.Address)
		if err != nil {
			return nil, err
		}

		balance, err := uint256.FromDecimal(a.Balance)
		if err != nil {
			return nil, fmt.Errorf("account %s: balance: %w", a.Address, err)
		}

		out[i] = ledger.Account{
			Address:    addr,
			Nonce:      a.Nonce,
			Balance:    balance,
			NonPayable: a.NonPayable,
		}
	}
	return out, nil
}

// NewContract converts a schedule snapshot into its persisted form.
func NewContract(name string, snap schedule.Snapshot) Contract {
	return Contract{
		Name:             name,
		Owner:            snap.Owner.Hex(),
		Renounced:        snap.Renounced,
		Receiver:         snap.Receiver.Hex(),
		Balance:          snap.Balance.Dec(),
		LastWithdrawTick: snap.LastWithdrawTick,
		WithdrawAmount:   snap.WithdrawAmount.Dec(),
		WithdrawCounter:  snap.WithdrawCounter,
	}
}

// ToSchedule converts a persisted contract back into a schedule snapshot.
func (c Contract) ToSchedule() (schedule.Snapshot, error) {
	owner, err := toAddress(c.Owner)
	if err != nil {
		return schedule.Snapshot{}, fmt.Errorf("contract %s: owner: %w", c.Name, err)
	}

	receiver, err := toAddress(c.Receiver)
	if err != nil {
		return schedule.Snapshot{}, fmt.Errorf("contract %s: receiver: %w", c.Name, err)
	}

	balance, err := uint256.FromDecimal(c.Balance)
	if err != nil {
		return schedule.Snapshot{}, fmt.Errorf("contract %s: balance: %w", c.Name, err)
	}

	amount, err := uint256.FromDecimal(c.WithdrawAmount)
	if err != nil {
		return schedule.Snapshot{}, fmt.Errorf("contract %s: withdraw amount: %w", c.Name, err)
	}

	snap := schedule.Snapshot{
		Owner:            owner,
		Renounced:        c.Renounced,
		Receiver:         receiver,
		Balance:          balance,
		LastWithdrawTick: c.LastWithdrawTick,
		WithdrawAmount:   amount,
		WithdrawCounter:  c.WithdrawCounter,
	}

	return snap, nil
}

// toAddress validates the hex form of an address.
func toAddress(hex string) (common.Address, error) {
	if !common.IsHexAddress(hex) {
		return common.Address{}, fmt.Errorf("invalid account format %q", hex)
	}
	return common.HexToAddress(hex), nil
}
