package main

import "github.com/ardanlabs/mining/app/wallet/cli/cmd"

func main() {
	cmd.Execute()
}
