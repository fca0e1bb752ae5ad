package state

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/ardanlabs/mining/foundation/mining/schedule"
	"github.com/ardanlabs/mining/foundation/mining/signature"
	"github.com/ethereum/go-ethereum/common"
)

// Set of methods that can be called on a contract.
const (
	MethodWithdraw          = "withdraw"
	MethodSetReceiver       = "setReceiver"
	MethodTransferOwnership = "transferOwnership"
	MethodRenounceOwnership = "renounceOwnership"
	MethodDeposit           = "deposit"
)

// methods is the set of methods a call can name.
var methods = map[string]bool{
	MethodWithdraw:          true,
	MethodSetReceiver:       true,
	MethodTransferOwnership: true,
	MethodRenounceOwnership: true,
	MethodDeposit:           true,
}

// =============================================================================

// Call is the data submitted by a user to invoke a contract method.
type Call struct {
	ChainID  uint16 `json:"chain_id"` // Ethereum: The chain id that is listed in the genesis file.
	Nonce    uint64 `json:"nonce"`    // Ethereum: Unique id for the call supplied by the user.
	Contract string `json:"contract"` // Name of the contract being called.
	Method   string `json:"method"`   // Name of the method being called.
	Address  string `json:"address"`  // Argument for setReceiver and transferOwnership.
	Value    string `json:"value"`    // Decimal amount for deposit.
}

// NewCall constructs a new call.
func NewCall(chainID uint16, nonce uint64, contract string, method string, address string, value string) (Call, error) {
	call := Call{
		ChainID:  chainID,
		Nonce:    nonce,
		Contract: contract,
		Method:   method,
		Address:  address,
		Value:    value,
	}

	if err := call.validate(); err != nil {
		return Call{}, err
	}

	return call, nil
}

// Sign uses the specified private key to sign the call.
func (c Call) Sign(privateKey *ecdsa.PrivateKey) (SignedCall, error) {
	if err := c.validate(); err != nil {
		return SignedCall{}, err
	}

	v, r, s, err := signature.Sign(c, privateKey)
	if err != nil {
		return SignedCall{}, err
	}

	signedCall := SignedCall{
		Call: c,
		V:    v,
		R:    r,
		S:    s,
	}

	return signedCall, nil
}

// validate checks the call names a known method with the arguments the
// method needs.
func (c Call) validate() error {
	if !methods[c.Method] {
		return fmt.Errorf("%w: %q", ErrUnknownMethod, c.Method)
	}

	switch c.Method {
	case MethodSetReceiver, MethodTransferOwnership:
		if !common.IsHexAddress(c.Address) {
			return fmt.Errorf("%w: %q is not properly formatted", schedule.ErrInvalidAddress, c.Address)
		}
	case MethodDeposit:
		if c.Value == "" {
			return fmt.Errorf("%w: deposit requires a value", ErrInvalidValue)
		}
	}

	return nil
}

// =============================================================================

// SignedCall is a signed version of the call.
type SignedCall struct {
	Call
	V *big.Int `json:"v"` // Recovery identifier, either 29 or 30.
	R *big.Int `json:"r"` // First coordinate of the ECDSA signature.
	S *big.Int `json:"s"` // Second coordinate of the ECDSA signature.
}

// FromAddress verifies the signature and extracts the address of the
// account that signed the call.
func (sc SignedCall) FromAddress() (common.Address, error) {
	return signature.FromAddress(sc.Call, sc.V, sc.R, sc.S)
}

// SignatureString returns the signature as a string.
func (sc SignedCall) SignatureString() string {
	return signature.SignatureString(sc.V, sc.R, sc.S)
}

// String implements the fmt.Stringer interface for logging.
func (sc SignedCall) String() string {
	from := "unknown"
	if addr, err := sc.FromAddress(); err == nil {
		from = addr.Hex()
	}

	return fmt.Sprintf("%s:%d:%s.%s", from, sc.Nonce, sc.Contract, sc.Method)
}

// =============================================================================

// Receipt describes the result of a call that was executed.
type Receipt struct {
	Contract string `json:"contract"`
	Method   string `json:"method"`
	From     string `json:"from"`
	Nonce    uint64 `json:"nonce"`
	Amount   string `json:"amount,omitempty"` // Value released by withdraw or added by deposit.
	Tick     uint64 `json:"tick"`
}
