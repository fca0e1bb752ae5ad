// Package commands contains the functionality for the set of commands
// currently supported by the admin tooling.
package commands

import (
	"fmt"

	"github.com/ardanlabs/mining/foundation/mining/storage"
)

// Accounts prints the ledger accounts held in the snapshot. An optional
// account limits the output.
func Accounts(args []string, strg storage.Storage) error {
	var onlyAct string
	if len(args) == 3 {
		onlyAct = args[2]
	}

	snap, err := strg.Read()
	if err != nil {
		return err
	}

	fmt.Printf("Tick: %d\n\n", snap.Tick)

	for _, act := range snap.Accounts {
		if onlyAct != "" && act.Address != onlyAct {
			continue
		}
		fmt.Printf("Account: %s  Balance: %s  Nonce: %d  NonPayable: %t\n", act.Address, act.Balance, act.Nonce, act.NonPayable)
	}

	return nil
}

// Contracts prints the contracts held in the snapshot. An optional name
// limits the output.
func Contracts(args []string, strg storage.Storage) error {
	var onlyName string
	if len(args) == 3 {
		onlyName = args[2]
	}

	snap, err := strg.Read()
	if err != nil {
		return err
	}

	fmt.Printf("Tick: %d\n\n", snap.Tick)

	for _, c := range snap.Contracts {
		if onlyName != "" && c.Name != onlyName {
			continue
		}

		owner := c.Owner
		if c.Renounced {
			owner = "renounced"
		}

		fmt.Printf("Contract: %s\n", c.Name)
		fmt.Printf("  Owner:            %s\n", owner)
		fmt.Printf("  Receiver:         %s\n", c.Receiver)
		fmt.Printf("  Balance:          %s\n", c.Balance)
		fmt.Printf("  WithdrawAmount:   %s\n", c.WithdrawAmount)
		fmt.Printf("  WithdrawCounter:  %d\n", c.WithdrawCounter)
		fmt.Printf("  LastWithdrawTick: %d\n", c.LastWithdrawTick)
	}

	return nil
}
