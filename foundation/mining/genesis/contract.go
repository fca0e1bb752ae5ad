package genesis

import (
	"fmt"
	"sort"

	"github.com/ardanlabs/mining/foundation/mining/schedule"
	"github.com/holiman/uint256"
)

// Decay represents the decay parameters of a contract.
type Decay struct {
	MinWithdrawAmount string `json:"min_withdraw_amount"`
	Numerator         uint64 `json:"numerator"`
	Denominator       uint64 `json:"denominator"`
	ResetThreshold    uint64 `json:"reset_threshold"`
}

// Contract represents a mining contract to deploy. When a preset is named,
// its values are used for every field left empty.
type Contract struct {
	Name             string `json:"name"`
	Preset           string `json:"preset,omitempty"`
	Owner            string `json:"owner"`
	WithdrawInterval uint64 `json:"withdraw_interval,omitempty"`
	WithdrawAmount   string `json:"withdraw_amount,omitempty"`
	Gate             string `json:"gate,omitempty"`
	Decay            *Decay `json:"decay,omitempty"`
	Fund             string `json:"fund,omitempty"` // Balance the contract starts with.
}

// Params are the resolved values of a contract.
type Params struct {
	Name   string
	Config schedule.Config
	Fund   *uint256.Int
}

// Resolve applies the preset and converts the contract into the parameters
// for constructing a schedule. The collaborators of the schedule config are
// left for the caller to fill in.
func (c Contract) Resolve() (Params, error) {
	if c.Preset != "" {
		preset, exists := presets[c.Preset]
		if !exists {
			return Params{}, fmt.Errorf("contract %q: unknown preset %q", c.Name, c.Preset)
		}
		c = merge(preset, c)
	}

	owner, err := toAddress(c.Owner)
	if err != nil {
		return Params{}, fmt.Errorf("contract %q: owner: %w", c.Name, err)
	}

	amount, err := uint256.FromDecimal(c.WithdrawAmount)
	if err != nil {
		return Params{}, fmt.Errorf("contract %q: withdraw amount: %w", c.Name, err)
	}

	gate, err := schedule.ParseGate(c.Gate)
	if err != nil {
		return Params{}, fmt.Errorf("contract %q: %w", c.Name, err)
	}

	fund := new(uint256.Int)
	if c.Fund != "" {
		if fund, err = uint256.FromDecimal(c.Fund); err != nil {
			return Params{}, fmt.Errorf("contract %q: fund: %w", c.Name, err)
		}
	}

	cfg := schedule.Config{
		Owner:            owner,
		WithdrawInterval: c.WithdrawInterval,
		WithdrawAmount:   amount,
		Gate:             gate,
	}

	if c.Decay != nil {
		floor, err := uint256.FromDecimal(c.Decay.MinWithdrawAmount)
		if err != nil {
			return Params{}, fmt.Errorf("contract %q: min withdraw amount: %w", c.Name, err)
		}

		cfg.Decay = &schedule.Decay{
			MinWithdrawAmount: floor,
			Numerator:         c.Decay.Numerator,
			Denominator:       c.Decay.Denominator,
			ResetThreshold:    c.Decay.ResetThreshold,
		}
	}

	return Params{Name: c.Name, Config: cfg, Fund: fund}, nil
}

// merge fills the empty fields of c with the values of the preset.
func merge(preset Contract, c Contract) Contract {
	if c.WithdrawInterval == 0 {
		c.WithdrawInterval = preset.WithdrawInterval
	}
	if c.WithdrawAmount == "" {
		c.WithdrawAmount = preset.WithdrawAmount
	}
	if c.Gate == "" {
		c.Gate = preset.Gate
	}
	if c.Decay == nil && preset.Decay != nil {
		d := *preset.Decay
		c.Decay = &d
	}
	return c
}

// =============================================================================

// presets are the contracts the network was launched with plus the mock
// versions used for testing, which run on short intervals.
var presets = map[string]Contract{
	"mining-contract-mock": {
		WithdrawInterval: 10,
		WithdrawAmount:   "100000000000000000000",
		Gate:             "owner",
	},
	"proof-of-contribution": {
		WithdrawInterval: 864000,
		WithdrawAmount:   "1000000000000000000000000",
		Gate:             "owner",
	},
	"proof-of-investment": {
		WithdrawInterval: 864000,
		WithdrawAmount:   "3000000000000000000000000",
		Gate:             "owner",
	},
	"proof-of-transaction": {
		WithdrawInterval: 28800,
		WithdrawAmount:   "400000000000000000000000",
		Gate:             "permissionless",
		Decay: &Decay{
			MinWithdrawAmount: "200000000000000000000000",
			Numerator:         90,
			Denominator:       100,
			ResetThreshold:    365,
		},
	},
	"proof-of-transaction-mock": {
		WithdrawInterval: 10,
		WithdrawAmount:   "1000000000000000000",
		Gate:             "permissionless",
		Decay: &Decay{
			MinWithdrawAmount: "800000000000000000",
			Numerator:         90,
			Denominator:       100,
			ResetThreshold:    2,
		},
	},
}

// Presets returns the names of the known presets in sorted order.
func Presets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// Preset returns the named preset owned by the specified account.
func Preset(name string, owner string) (Contract, error) {
	preset, exists := presets[name]
	if !exists {
		return Contract{}, fmt.Errorf("unknown preset %q", name)
	}

	c := merge(preset, Contract{Name: name, Preset: name, Owner: owner})
	return c, nil
}
