package commands

import (
	"fmt"

	"github.com/ardanlabs/mining/foundation/mining/genesis"
)

// Presets prints the built in contract presets that can be named in the
// genesis file.
func Presets(args []string) error {
	for _, name := range genesis.Presets() {
		c, err := genesis.Preset(name, "0x0000000000000000000000000000000000000001")
		if err != nil {
			return err
		}

		fmt.Printf("Preset: %s\n", name)
		fmt.Printf("  Gate:             %s\n", c.Gate)
		fmt.Printf("  WithdrawInterval: %d\n", c.WithdrawInterval)
		fmt.Printf("  WithdrawAmount:   %s\n", c.WithdrawAmount)
		if c.Decay != nil {
			fmt.Printf("  Decay:            %d/%d every %d, floor %s\n", c.Decay.Numerator, c.Decay.Denominator, c.Decay.ResetThreshold, c.Decay.MinWithdrawAmount)
		}
	}

	return nil
}
