package public

import (
	"math/big"

	"github.com/ardanlabs/mining/business/sys/validate"
	"github.com/ardanlabs/mining/foundation/mining/ledger"
	"github.com/ardanlabs/mining/foundation/mining/state"
	"github.com/ardanlabs/mining/foundation/nameservice"
)

type tick struct {
	Tick uint64 `json:"tick"`
}

type decay struct {
	Numerator      uint64 `json:"numerator"`
	Denominator    uint64 `json:"denominator"`
	ResetThreshold uint64 `json:"reset_threshold"`
}

type contract struct {
	Name              string `json:"name"`
	Owner             string `json:"owner,omitempty"`
	OwnerName         string `json:"owner_name,omitempty"`
	Renounced         bool   `json:"renounced"`
	Receiver          string `json:"receiver"`
	ReceiverName      string `json:"receiver_name"`
	Balance           string `json:"balance"`
	Gate              string `json:"gate"`
	WithdrawInterval  uint64 `json:"withdraw_interval"`
	WithdrawAmount    string `json:"withdraw_amount"`
	MinWithdrawAmount string `json:"min_withdraw_amount"`
	WithdrawCounter   uint64 `json:"withdraw_counter"`
	LastWithdrawTick  uint64 `json:"last_withdraw_tick"`
	NextWithdrawTick  uint64 `json:"next_withdraw_tick"`
	Due               bool   `json:"due"`
	Decay             *decay `json:"decay,omitempty"`
}

func toContract(c state.Contract, ns *nameservice.NameService) contract {
	out := contract{
		Name:              c.Name,
		Renounced:         c.Renounced,
		Receiver:          c.Receiver.Hex(),
		ReceiverName:      ns.Lookup(c.Receiver),
		Balance:           c.Balance.Dec(),
		Gate:              c.Gate.String(),
		WithdrawInterval:  c.WithdrawInterval,
		WithdrawAmount:    c.WithdrawAmount.Dec(),
		MinWithdrawAmount: c.MinWithdrawAmount.Dec(),
		WithdrawCounter:   c.WithdrawCounter,
		LastWithdrawTick:  c.LastWithdrawTick,
		NextWithdrawTick:  c.NextWithdrawTick,
		Due:               c.Due,
	}

	if !c.Renounced {
		out.Owner = c.Owner.Hex()
		out.OwnerName = ns.Lookup(c.Owner)
	}

	if c.Decay != nil {
		out.Decay = &decay{
			Numerator:      c.Decay.Numerator,
			Denominator:    c.Decay.Denominator,
			ResetThreshold: c.Decay.ResetThreshold,
		}
	}

	return out
}

type account struct {
	Account    string `json:"account"`
	Name       string `json:"name"`
	Balance    string `json:"balance"`
	Nonce      uint64 `json:"nonce"`
	NonPayable bool   `json:"non_payable,omitempty"`
}

func toAccount(a ledger.Account, ns *nameservice.NameService) account {
	return account{
		Account:    a.Address.Hex(),
		Name:       ns.Lookup(a.Address),
		Balance:    a.Balance.Dec(),
		Nonce:      a.Nonce,
		NonPayable: a.NonPayable,
	}
}

type actInfo struct {
	Tick     uint64    `json:"tick"`
	Accounts []account `json:"accounts"`
}

// signedCall is the payload submitted to execute a contract method.
type signedCall struct {
	ChainID  uint16   `json:"chain_id" validate:"required"`
	Nonce    uint64   `json:"nonce" validate:"required"`
	Contract string   `json:"contract" validate:"required"`
	Method   string   `json:"method" validate:"required,oneof=withdraw setReceiver transferOwnership renounceOwnership deposit"`
	Address  string   `json:"address" validate:"omitempty,eth_addr"`
	Value    string   `json:"value" validate:"omitempty,numeric"`
	V        *big.Int `json:"v" validate:"required"`
	R        *big.Int `json:"r" validate:"required"`
	S        *big.Int `json:"s" validate:"required"`
}

// Validate checks the data in the model is considered clean.
func (sc signedCall) Validate() error {
	return validate.Check(sc)
}

func (sc signedCall) toState() state.SignedCall {
	return state.SignedCall{
		Call: state.Call{
			ChainID:  sc.ChainID,
			Nonce:    sc.Nonce,
			Contract: sc.Contract,
			Method:   sc.Method,
			Address:  sc.Address,
			Value:    sc.Value,
		},
		V: sc.V,
		R: sc.R,
		S: sc.S,
	}
}
