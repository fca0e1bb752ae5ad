package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/ardanlabs/mining/foundation/mining/state"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
)

var (
	contract string
	address  string
	value    string
)

var withdrawCmd = &cobra.Command{
	Use:   "withdraw",
	Short: "Release the withdraw amount of a contract to its receiver.",
	Run:   callRun(state.MethodWithdraw),
}

var depositCmd = &cobra.Command{
	Use:   "deposit",
	Short: "Move value from your account into a contract.",
	Run:   callRun(state.MethodDeposit),
}

var receiverCmd = &cobra.Command{
	Use:   "receiver",
	Short: "Change the account that receives the releases of a contract.",
	Run:   callRun(state.MethodSetReceiver),
}

var transferCmd = &cobra.Command{
	Use:   "transfer",
	Short: "Transfer the ownership of a contract.",
	Run:   callRun(state.MethodTransferOwnership),
}

var renounceCmd = &cobra.Command{
	Use:   "renounce",
	Short: "Renounce the ownership of a contract. This can't be undone.",
	Run:   callRun(state.MethodRenounceOwnership),
}

func init() {
	for _, c := range []*cobra.Command{withdrawCmd, depositCmd, receiverCmd, transferCmd, renounceCmd} {
		rootCmd.AddCommand(c)
		c.Flags().StringVarP(&contract, "contract", "c", "", "Name of the contract.")
		c.MarkFlagRequired("contract")
	}

	depositCmd.Flags().StringVarP(&value, "value", "v", "", "Amount to deposit.")
	depositCmd.MarkFlagRequired("value")

	receiverCmd.Flags().StringVarP(&address, "to", "t", "", "Address of the new receiver.")
	receiverCmd.MarkFlagRequired("to")

	transferCmd.Flags().StringVarP(&address, "to", "t", "", "Address of the new owner.")
	transferCmd.MarkFlagRequired("to")
}

// callRun returns the command function that signs and submits a call for
// the specified method.
func callRun(method string) func(cmd *cobra.Command, args []string) {
	return func(cmd *cobra.Command, args []string) {
		privateKey, err := crypto.LoadECDSA(getPrivateKeyPath())
		if err != nil {
			log.Fatal(err)
		}

		addr := crypto.PubkeyToAddress(privateKey.PublicKey)

		var gen struct {
			ChainID uint16 `json:"chain_id"`
		}
		if err := get("/v1/genesis/list", &gen); err != nil {
			log.Fatal(err)
		}

		act, err := queryAccount(addr)
		if err != nil {
			log.Fatal(err)
		}

		call, err := state.NewCall(gen.ChainID, act.Nonce+1, contract, method, address, value)
		if err != nil {
			log.Fatal(err)
		}

		signedCall, err := call.Sign(privateKey)
		if err != nil {
			log.Fatal(err)
		}

		data, err := json.Marshal(signedCall)
		if err != nil {
			log.Fatal(err)
		}

		resp, err := http.Post(fmt.Sprintf("%s/v1/contracts/call", url), "application/json", bytes.NewBuffer(data))
		if err != nil {
			log.Fatal(err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			log.Fatal(decodeError(resp))
		}

		var receipt state.Receipt
		if err := json.NewDecoder(resp.Body).Decode(&receipt); err != nil {
			log.Fatal(err)
		}

		fmt.Printf("%s.%s executed at tick %d", receipt.Contract, receipt.Method, receipt.Tick)
		if receipt.Amount != "" {
			fmt.Printf(": amount %s", receipt.Amount)
		}
		fmt.Println()
	}
}

// =============================================================================

type account struct {
	Account string `json:"account"`
	Balance string `json:"balance"`
	Nonce   uint64 `json:"nonce"`
}

// queryAccount retrieves the ledger account from the node.
func queryAccount(addr common.Address) (account, error) {
	var info struct {
		Accounts []account `json:"accounts"`
	}
	if err := get("/v1/accounts/list/"+addr.Hex(), &info); err != nil {
		return account{}, err
	}

	if len(info.Accounts) == 0 {
		return account{Account: addr.Hex(), Balance: "0"}, nil
	}

	return info.Accounts[0], nil
}

// get performs a GET against the node and decodes the response.
func get(path string, v any) error {
	resp, err := http.Get(url + path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}

	return json.NewDecoder(resp.Body).Decode(v)
}

// decodeError converts the error response of the node into an error.
func decodeError(resp *http.Response) error {
	var er struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return fmt.Errorf("status %d", resp.StatusCode)
	}

	if len(er.Fields) > 0 {
		return fmt.Errorf("status %d: %s: %v", resp.StatusCode, er.Error, er.Fields)
	}
	return fmt.Errorf("status %d: %s", resp.StatusCode, er.Error)
}
