package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status [contract]",
	Short: "Print the state of the contracts, or of the one named.",
	Args:  cobra.MaximumNArgs(1),
	Run:   statusRun,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func statusRun(cmd *cobra.Command, args []string) {
	path := "/v1/contracts/list"
	if len(args) == 1 {
		path += "/" + args[0]
	}

	var status json.RawMessage
	if err := get(path, &status); err != nil {
		log.Fatal(err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "    ")
	if err := enc.Encode(status); err != nil {
		log.Fatal(err)
	}

	fmt.Println()
}
