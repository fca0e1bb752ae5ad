// Package ledger maintains the native value balances of the accounts that
// interact with the mining contracts.
package ledger

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Set of errors returned by the ledger.
var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrRejected          = errors.New("recipient rejected value")
	ErrNonce             = errors.New("invalid nonce")
	ErrOverflow          = errors.New("balance overflow")
)

// Account represents the information stored for an individual account.
type Account struct {
	Address    common.Address
	Nonce      uint64
	Balance    *uint256.Int
	NonPayable bool
}

// clone returns a deep copy of the account.
func (a Account) clone() Account {
	a.Balance = a.Balance.Clone()
	return a
}

// =============================================================================

// Ledger manages the accounts. Addresses that are not known have a zero
// balance and a zero nonce.
type Ledger struct {
	mu       sync.RWMutex
	accounts map[common.Address]Account
}

// New constructs a ledger with the specified starting balances.
func New(balances map[common.Address]*uint256.Int) *Ledger {
	l := Ledger{
		accounts: make(map[common.Address]Account),
	}

	for addr, balance := range balances {
		l.accounts[addr] = Account{Address: addr, Balance: balance.Clone()}
	}

	return &l
}

// Restore replaces every account with the specified set.
func (l *Ledger) Restore(accounts []Account) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.accounts = make(map[common.Address]Account, len(accounts))
	for _, account := range accounts {
		if account.Balance == nil {
			account.Balance = new(uint256.Int)
		}
		l.accounts[account.Address] = account.clone()
	}
}

// Query returns a copy of the account for the specified address.
func (l *Ledger) Query(addr common.Address) Account {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.account(addr).clone()
}

// Balance returns the balance for the specified address.
func (l *Ledger) Balance(addr common.Address) *uint256.Int {
	return l.Query(addr).Balance
}

// Copy returns a copy of every account sorted by address.
func (l *Ledger) Copy() []Account {
	l.mu.RLock()
	defer l.mu.RUnlock()

	accounts := make([]Account, 0, len(l.accounts))
	for _, account := range l.accounts {
		accounts = append(accounts, account.clone())
	}
	sort.Sort(byAddress(accounts))

	return accounts
}

// MarkNonPayable flags the address as one that refuses incoming value.
func (l *Ledger) MarkNonPayable(addr common.Address) {
	l.mu.Lock()
	defer l.mu.Unlock()

	account := l.account(addr)
	account.NonPayable = true
	l.accounts[addr] = account
}

// Debit removes value from the specified account.
func (l *Ledger) Debit(addr common.Address, amount *uint256.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	account := l.account(addr)
	if account.Balance.Lt(amount) {
		return fmt.Errorf("%w: bal %s, needed %s", ErrInsufficientFunds, account.Balance.Dec(), amount.Dec())
	}

	account.Balance = new(uint256.Int).Sub(account.Balance, amount)
	l.accounts[addr] = account

	return nil
}

// Credit adds value to the specified account. This never fails because of
// the account being non-payable; use Send for transfers the recipient can
// refuse.
func (l *Ledger) Credit(addr common.Address, amount *uint256.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.credit(addr, amount)
}

// Send delivers value to the recipient. It fails for the zero address and
// for accounts marked non-payable. This implements schedule.ValueTransfer.
func (l *Ledger) Send(to common.Address, amount *uint256.Int) error {
	if to == (common.Address{}) {
		return fmt.Errorf("%w: zero address", ErrRejected)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.account(to).NonPayable {
		return fmt.Errorf("%w: %s is non-payable", ErrRejected, to)
	}

	return l.credit(to, amount)
}

// ValidateNonce checks the nonce is larger than the last one used by the
// account.
func (l *Ledger) ValidateNonce(addr common.Address, nonce uint64) error {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.validateNonce(addr, nonce)
}

// UpdateNonce records the nonce of a call that has been executed.
func (l *Ledger) UpdateNonce(addr common.Address, nonce uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.validateNonce(addr, nonce); err != nil {
		return err
	}

	account := l.account(addr)
	account.Nonce = nonce
	l.accounts[addr] = account

	return nil
}

// =============================================================================

// account returns the account for the address, or an empty one. The caller
// must hold the lock.
func (l *Ledger) account(addr common.Address) Account {
	account, exists := l.accounts[addr]
	if !exists {
		return Account{Address: addr, Balance: new(uint256.Int)}
	}
	return account
}

func (l *Ledger) credit(addr common.Address, amount *uint256.Int) error {
	account := l.account(addr)

	balance, overflow := new(uint256.Int).AddOverflow(account.Balance, amount)
	if overflow {
		return ErrOverflow
	}

	account.Balance = balance
	l.accounts[addr] = account

	return nil
}

func (l *Ledger) validateNonce(addr common.Address, nonce uint64) error {
	current := l.account(addr).Nonce
	if nonce <= current {
		return fmt.Errorf("%w: nonce too small, current %d, provided %d", ErrNonce, current, nonce)
	}
	return nil
}

// =============================================================================

// byAddress provides sorting support by the account address.
type byAddress []Account

func (ba byAddress) Len() int           { return len(ba) }
func (ba byAddress) Less(i, j int) bool { return ba[i].Address.Cmp(ba[j].Address) < 0 }
func (ba byAddress) Swap(i, j int)      { ba[i], ba[j] = ba[j], ba[i] }
