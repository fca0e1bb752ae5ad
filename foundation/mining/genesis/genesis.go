// Package genesis maintains access to the genesis file, which defines the
// starting balances of the ledger and the mining contracts to deploy.
package genesis

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Genesis represents the genesis file.
type Genesis struct {
	Date       time.Time         `json:"date"`
	ChainID    uint16            `json:"chain_id"`    // The chain id is signed into every call to prevent replays across chains.
	Balances   map[string]string `json:"balances"`    // Starting ledger balances in decimal.
	NonPayable []string          `json:"non_payable"` // Accounts that refuse incoming value.
	Contracts  []Contract        `json:"contracts"`
}

// =============================================================================

// Load opens and consumes the genesis file.
func Load(path string) (Genesis, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Genesis{}, err
	}

	var genesis Genesis
	if err := json.Unmarshal(content, &genesis); err != nil {
		return Genesis{}, err
	}

	if err := genesis.Validate(); err != nil {
		return Genesis{}, err
	}

	return genesis, nil
}

// Validate checks every account and contract in the genesis is usable.
func (g Genesis) Validate() error {
	if _, err := g.LedgerBalances(); err != nil {
		return err
	}

	if _, err := g.NonPayableAccounts(); err != nil {
		return err
	}

	names := make(map[string]bool, len(g.Contracts))
	for _, c := range g.Contracts {
		if c.Name == "" {
			return errors.New("contract name is required")
		}

		if names[c.Name] {
			return fmt.Errorf("contract %q defined more than once", c.Name)
		}
		names[c.Name] = true

		if _, err := c.Resolve(); err != nil {
			return err
		}
	}

	return nil
}

// LedgerBalances converts the starting balances.
func (g Genesis) LedgerBalances() (map[common.Address]*uint256.Int, error) {
	balances := make(map[common.Address]*uint256.Int, len(g.Balances))
	for account, value := range g.Balances {
		addr, err := toAddress(account)
		if err != nil {
			return nil, err
		}

		balance, err := uint256.FromDecimal(value)
		if err != nil {
			return nil, fmt.Errorf("balance for %s: %w", account, err)
		}

		balances[addr] = balance
	}

	return balances, nil
}

// NonPayableAccounts converts the set of accounts that refuse value.
func (g Genesis) NonPayableAccounts() ([]common.Address, error) {
	accounts := make([]common.Address, len(g.NonPayable))
	for i, account := range g.NonPayable {
		addr, err := toAddress(account)
		if err != nil {
			return nil, err
		}
		accounts[i] = addr
	}

	return accounts, nil
}

// toAddress validates the hex form of an address.
func toAddress(hex string) (common.Address, error) {
	if !common.IsHexAddress(hex) {
		return common.Address{}, fmt.Errorf("invalid account format %q", hex)
	}
	return common.HexToAddress(hex), nil
}
