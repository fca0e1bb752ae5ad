package genesis_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ardanlabs/mining/foundation/mining/genesis"
	"github.com/ardanlabs/mining/foundation/mining/schedule"
	"github.com/ethereum/go-ethereum/common"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

const owner = "0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4"

// =============================================================================

func Test_Presets(t *testing.T) {
	type table struct {
		preset   string
		amount   string
		interval uint64
		gate     schedule.Gate
		decay    bool
	}

	tt := []table{
		{"mining-contract-mock", "100000000000000000000", 10, schedule.GateOwner, false},
		{"proof-of-contribution", "1000000000000000000000000", 864000, schedule.GateOwner, false},
		{"proof-of-investment", "3000000000000000000000000", 864000, schedule.GateOwner, false},
		{"proof-of-transaction", "400000000000000000000000", 28800, schedule.GatePermissionless, true},
		{"proof-of-transaction-mock", "1000000000000000000", 10, schedule.GatePermissionless, true},
	}

	t.Log("Given the need to deploy the known contracts.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen resolving the %s preset.", testID, tst.preset)
			{
				c, err := genesis.Preset(tst.preset, owner)
				if err != nil {
					t.Fatalf("\t%s\tTest %d:\tShould find the preset: %v", failed, testID, err)
				}

				p, err := c.Resolve()
				if err != nil {
					t.Fatalf("\t%s\tTest %d:\tShould resolve the preset: %v", failed, testID, err)
				}
				t.Logf("\t%s\tTest %d:\tShould resolve the preset.", success, testID)

				cfg := p.Config
				if cfg.WithdrawAmount.Dec() != tst.amount || cfg.WithdrawInterval != tst.interval || cfg.Gate != tst.gate || (cfg.Decay != nil) != tst.decay {
					t.Fatalf("\t%s\tTest %d:\tShould have the preset values: %+v", failed, testID, cfg)
				}
				t.Logf("\t%s\tTest %d:\tShould have the preset values.", success, testID)

				if cfg.Owner != common.HexToAddress(owner) {
					t.Fatalf("\t%s\tTest %d:\tShould be owned by the owner.", failed, testID)
				}
				t.Logf("\t%s\tTest %d:\tShould be owned by the owner.", success, testID)
			}
		}
	}
}

func Test_Load(t *testing.T) {
	const doc = `{
	"chain_id": 1,
	"balances": {"0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4": "1000000000000000000000"},
	"non_payable": ["0xbEE6ACE826eC3DE1B6349888B9151B92522F7F76"],
	"contracts": [
		{"name": "pot", "preset": "proof-of-transaction-mock", "owner": "0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4", "withdraw_interval": 20, "fund": "50000000000000000000"},
		{"name": "custom", "owner": "0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4", "withdraw_interval": 5, "withdraw_amount": "7", "gate": "owner"}
	]
}`

	t.Log("Given the need to load a genesis file.")
	{
		t.Log("\tWhen the file overrides a preset.")
		{
			path := filepath.Join(t.TempDir(), "genesis.json")
			if err := os.WriteFile(path, []byte(doc), 0600); err != nil {
				t.Fatalf("\t%s\tShould be able to write the file: %v", failed, err)
			}

			g, err := genesis.Load(path)
			if err != nil {
				t.Fatalf("\t%s\tShould be able to load the file: %v", failed, err)
			}
			t.Logf("\t%s\tShould be able to load the file.", success)

			p, err := g.Contracts[0].Resolve()
			if err != nil {
				t.Fatalf("\t%s\tShould resolve the contract: %v", failed, err)
			}

			if p.Config.WithdrawInterval != 20 || p.Config.WithdrawAmount.Dec() != "1000000000000000000" || p.Fund.Dec() != "50000000000000000000" {
				t.Fatalf("\t%s\tShould override only the specified fields: %+v", failed, p.Config)
			}
			t.Logf("\t%s\tShould override only the specified fields.", success)

			p, err = g.Contracts[1].Resolve()
			if err != nil {
				t.Fatalf("\t%s\tShould resolve the custom contract: %v", failed, err)
			}
			if p.Config.Decay != nil || p.Config.Gate != schedule.GateOwner || !p.Fund.IsZero() {
				t.Fatalf("\t%s\tShould use the custom values: %+v", failed, p.Config)
			}
			t.Logf("\t%s\tShould use the custom values.", success)
		}

		t.Log("\tWhen the file is invalid.")
		{
			bad := map[string]genesis.Genesis{
				"bad balance":    {Balances: map[string]string{owner: "ten"}},
				"bad account":    {NonPayable: []string{"0x1234"}},
				"duplicate name": {Contracts: []genesis.Contract{{Name: "a", Preset: "proof-of-investment", Owner: owner}, {Name: "a", Preset: "proof-of-investment", Owner: owner}}},
				"unknown preset": {Contracts: []genesis.Contract{{Name: "a", Preset: "proof-of-nothing", Owner: owner}}},
				"bad owner":      {Contracts: []genesis.Contract{{Name: "a", Preset: "proof-of-investment", Owner: "pavel"}}},
			}

			for name, g := range bad {
				if err := g.Validate(); err == nil {
					t.Fatalf("\t%s\tShould reject a %s.", failed, name)
				}
				t.Logf("\t%s\tShould reject a %s.", success, name)
			}
		}
	}
}
