package authgate

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

var (
	// ErrZeroBackend is returned when no backend signer is registered.
	ErrZeroBackend = errors.New("backend signer is not set")
	// ErrBadSignature is returned for malformed or unrecoverable signatures.
	ErrBadSignature = errors.New("invalid signature")
	// ErrSignatureMismatch is returned when the recovered signer is not the
	// registered backend.
	ErrSignatureMismatch = errors.New("signer is not the registered backend")
)

// Domain binds fast-withdrawal signatures to one protocol deployment: a fixed
// name/version string and the verifying bridge address. Signatures made for
// one deployment can never be replayed against another.
type Domain struct {
	Name              string
	Version           string
	VerifyingContract common.Address
}

// Separator returns the domain separator hash.
func (d Domain) Separator() common.Hash {
	return crypto.Keccak256Hash(
		crypto.Keccak256([]byte(d.Name)),
		crypto.Keccak256([]byte(d.Version)),
		d.VerifyingContract.Bytes(),
	)
}

// FastWithdrawalRequest is the fixed-order signed payload of the fast
// settlement path.
type FastWithdrawalRequest struct {
	VerifyingContract common.Address
	LocalAsset        common.Address
	RemoteAsset       common.Address
	From              common.Address
	To                common.Address
	Amount            *big.Int
	Nonce             uint64
	BlockReference    common.Hash
	ProofPayload      []byte
}

// HashFastWithdrawal computes the struct hash of the request under the domain
// separator. Field order is fixed wire format; do not reorder.
func HashFastWithdrawal(d Domain, req FastWithdrawalRequest) common.Hash {
	amount := req.Amount
	if amount == nil {
		amount = new(big.Int)
	}
	sep := d.Separator()
	structHash := crypto.Keccak256Hash(
		req.VerifyingContract.Bytes(),
		req.LocalAsset.Bytes(),
		req.RemoteAsset.Bytes(),
		req.From.Bytes(),
		req.To.Bytes(),
		common.BigToHash(amount).Bytes(),
		common.BigToHash(new(big.Int).SetUint64(req.Nonce)).Bytes(),
		req.BlockReference.Bytes(),
		crypto.Keccak256(req.ProofPayload),
	)
	return crypto.Keccak256Hash(sep.Bytes(), structHash.Bytes())
}

// VerifyBackendSignature recovers the signer of a 65-byte (r,s,v) signature
// over the request hash and compares it to the registered backend address.
func VerifyBackendSignature(d Domain, req FastWithdrawalRequest, sig []byte, backend common.Address) error {
	if backend == (common.Address{}) {
		return ErrZeroBackend
	}
	if len(sig) != crypto.SignatureLength {
		return fmt.Errorf("%w: length %d, want %d", ErrBadSignature, len(sig), crypto.SignatureLength)
	}

	// Normalize the recovery id: wallets emit 27/28, crypto expects 0/1.
	normalized := make([]byte, crypto.SignatureLength)
	copy(normalized, sig)
	if normalized[64] >= 27 {
		normalized[64] -= 27
	}

	digest := HashFastWithdrawal(d, req)
	pub, err := crypto.SigToPub(digest.Bytes(), normalized)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadSignature, err)
	}
	if crypto.PubkeyToAddress(*pub) != backend {
		return fmt.Errorf("%w: recovered %s", ErrSignatureMismatch, crypto.PubkeyToAddress(*pub).Hex())
	}
	return nil
}

// SignFastWithdrawal produces a 65-byte signature over the request hash.
// Used by the backend service and the test suite.
func SignFastWithdrawal(d Domain, req FastWithdrawalRequest, key *ecdsa.PrivateKey) ([]byte, error) {
	digest := HashFastWithdrawal(d, req)
	return crypto.Sign(digest.Bytes(), key)
}
