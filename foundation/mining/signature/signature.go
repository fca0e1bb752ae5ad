// Package signature provides support for signing and verifying the calls
// submitted to the mining contracts.
package signature

import (
	"crypto/ecdsa"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// ZeroHash represents a hash code of zeros.
const ZeroHash string = "0x0000000000000000000000000000000000000000000000000000000000000000"

// recoveryOffset is added to the recovery id of every signature so a
// signature produced here can't be replayed as a plain Ethereum signature.
const recoveryOffset = 29

// stampPrefix is hashed together with the data being signed.
var stampPrefix = []byte("\x19Mining Signed Message:\n32")

// =============================================================================

// Hash returns a unique string for the value.
func Hash(value any) string {
	data, err := json.Marshal(value)
	if err != nil {
		return ZeroHash
	}

	return hexutil.Encode(crypto.Keccak256(data))
}

// Sign uses the specified private key to sign the value.
func Sign(value any, privateKey *ecdsa.PrivateKey) (v, r, s *big.Int, err error) {
	data, err := stamp(value)
	if err != nil {
		return nil, nil, nil, err
	}

	sig, err := crypto.Sign(data, privateKey)
	if err != nil {
		return nil, nil, nil, err
	}

	// Make sure the signature recovers the key that produced it.
	publicKey, err := crypto.SigToPub(data, sig)
	if err != nil {
		return nil, nil, nil, err
	}
	if !crypto.VerifySignature(crypto.FromECDSAPub(publicKey), data, sig[:crypto.RecoveryIDOffset]) {
		return nil, nil, nil, errors.New("invalid signature")
	}

	r = new(big.Int).SetBytes(sig[:32])
	s = new(big.Int).SetBytes(sig[32:64])
	v = new(big.Int).SetUint64(uint64(sig[crypto.RecoveryIDOffset]) + recoveryOffset)

	return v, r, s, nil
}

// VerifySignature verifies the signature values are well formed.
func VerifySignature(v, r, s *big.Int) error {
	if v == nil || r == nil || s == nil {
		return errors.New("missing signature values")
	}

	if !v.IsUint64() || v.Uint64() < recoveryOffset {
		return errors.New("invalid recovery id")
	}

	id := v.Uint64() - recoveryOffset
	if id != 0 && id != 1 {
		return errors.New("invalid recovery id")
	}

	if !crypto.ValidateSignatureValues(byte(id), r, s, false) {
		return errors.New("invalid signature values")
	}

	return nil
}

// FromAddress recovers the address of the account that signed the value. The
// exact value that was signed must be provided or a different address is
// returned.
func FromAddress(value any, v, r, s *big.Int) (common.Address, error) {
	if err := VerifySignature(v, r, s); err != nil {
		return common.Address{}, err
	}

	data, err := stamp(value)
	if err != nil {
		return common.Address{}, err
	}

	publicKey, err := crypto.SigToPub(data, ToSignatureBytes(v, r, s))
	if err != nil {
		return common.Address{}, fmt.Errorf("recovering public key: %w", err)
	}

	return crypto.PubkeyToAddress(*publicKey), nil
}

// SignatureString returns the signature as a hex string including the
// recovery offset.
func SignatureString(v, r, s *big.Int) string {
	sig := ToSignatureBytes(v, r, s)
	sig[crypto.RecoveryIDOffset] = byte(v.Uint64())

	return hexutil.Encode(sig)
}

// ToVRSFromHexSignature converts a hex representation of the signature into
// its R, S and V parts.
func ToVRSFromHexSignature(sigStr string) (v, r, s *big.Int, err error) {
	sig, err := hexutil.Decode(sigStr)
	if err != nil {
		return nil, nil, nil, err
	}

	if len(sig) != crypto.SignatureLength {
		return nil, nil, nil, fmt.Errorf("invalid signature length %d", len(sig))
	}

	r = new(big.Int).SetBytes(sig[:32])
	s = new(big.Int).SetBytes(sig[32:64])
	v = new(big.Int).SetBytes([]byte{sig[64]})

	return v, r, s, nil
}

// ToSignatureBytes converts the r, s, v values into the 65 byte [R|S|V]
// form with the recovery offset removed.
func ToSignatureBytes(v, r, s *big.Int) []byte {
	sig := make([]byte, crypto.SignatureLength)

	r.FillBytes(sig[:32])
	s.FillBytes(sig[32:64])
	sig[crypto.RecoveryIDOffset] = byte(v.Uint64() - recoveryOffset)

	return sig
}

// =============================================================================

// stamp returns the 32 byte hash that is signed for the value.
func stamp(value any) ([]byte, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}

	return crypto.Keccak256(stampPrefix, crypto.Keccak256(data)), nil
}
