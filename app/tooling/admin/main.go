// This program performs administrative tasks for the mining node.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/ardanlabs/mining/app/tooling/admin/commands"
	"github.com/ardanlabs/mining/foundation/logger"
	"github.com/ardanlabs/mining/foundation/mining/storage/disk"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

// snapshotPath is the default location of the snapshot written by the node.
const snapshotPath = "zblock/snapshot/snapshot.json"

func main() {

	// Construct the application logger.
	log, err := logger.New("ADMIN")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log); err != nil {
		log.Errorw("startup", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {
	log.Infow("startup", "version", build)

	path := snapshotPath
	if p := os.Getenv("ADMIN_SNAPSHOT_PATH"); p != "" {
		path = p
	}

	strg, err := disk.New(path)
	if err != nil {
		return err
	}
	defer strg.Close()

	return processCommands(os.Args, strg)
}

// processCommands handles the execution of the commands specified on
// the command line.
func processCommands(args []string, strg *disk.Disk) error {
	if len(args) < 2 {
		return errors.New("usage: admin [accounts|contracts|presets|reset]")
	}

	switch args[1] {
	case "accounts":
		if err := commands.Accounts(args, strg); err != nil {
			return fmt.Errorf("getting accounts: %w", err)
		}
	case "contracts":
		if err := commands.Contracts(args, strg); err != nil {
			return fmt.Errorf("getting contracts: %w", err)
		}
	case "presets":
		if err := commands.Presets(args); err != nil {
			return fmt.Errorf("getting presets: %w", err)
		}
	case "reset":
		if err := strg.Reset(); err != nil {
			return fmt.Errorf("resetting snapshot: %w", err)
		}
	default:
		return fmt.Errorf("unknown command %q", args[1])
	}

	return nil
}
