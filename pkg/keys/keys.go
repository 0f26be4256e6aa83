// Package keys manages the fast-withdrawal backend signing key. The key is
// either generated fresh or derived deterministically from a server seed, so
// every replica of the backend signs with the same address.
package keys

import (
	"crypto/ecdsa"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/crypto/hkdf"

	"github.com/chainsafe/standard-bridge/pkg/authgate"
)

// minSeedSize is the minimum server seed length in bytes.
const minSeedSize = 32

// BackendKey is the secp256k1 keypair the fast-withdrawal backend signs with.
type BackendKey struct {
	priv *ecdsa.PrivateKey
}

// GenerateBackendKey creates a new random backend key.
func GenerateBackendKey() (*BackendKey, error) {
	priv, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate secp256k1 keypair: %w", err)
	}
	return &BackendKey{priv: priv}, nil
}

// DeriveBackendKey deterministically derives the backend key for one chain
// from the server seed. Uses HKDF with SHA-256, bound to the chain name so the
// two sides of the pair never share a signing key.
func DeriveBackendKey(chainName string, seed []byte) (*BackendKey, error) {
	if len(seed) < minSeedSize {
		return nil, fmt.Errorf("server seed must be at least %d bytes", minSeedSize)
	}

	info := []byte("fast-backend-" + chainName)
	hkdfReader := hkdf.New(sha256.New, seed, nil, info)

	privBytes := make([]byte, 32)
	if _, err := io.ReadFull(hkdfReader, privBytes); err != nil {
		return nil, fmt.Errorf("failed to derive key seed: %w", err)
	}

	priv, err := crypto.ToECDSA(privBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to create private key: %w", err)
	}
	return &BackendKey{priv: priv}, nil
}

// BackendKeyFromPrivateKey wraps an existing 32-byte secp256k1 private key.
func BackendKeyFromPrivateKey(privateKey []byte) (*BackendKey, error) {
	priv, err := crypto.ToECDSA(privateKey)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return &BackendKey{priv: priv}, nil
}

// Address returns the signing address to register as the bridge backend.
func (k *BackendKey) Address() common.Address {
	return crypto.PubkeyToAddress(k.priv.PublicKey)
}

// SignFastWithdrawal signs a fast-withdrawal request under the deployment
// domain, producing the 65-byte signature the bridge verifies.
func (k *BackendKey) SignFastWithdrawal(d authgate.Domain, req authgate.FastWithdrawalRequest) ([]byte, error) {
	return authgate.SignFastWithdrawal(d, req, k.priv)
}

// SeedFromBase64 decodes a base64-encoded server seed.
func SeedFromBase64(encoded string) ([]byte, error) {
	seed, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode seed: %w", err)
	}
	if len(seed) < minSeedSize {
		return nil, fmt.Errorf("seed must be at least %d bytes, got %d", minSeedSize, len(seed))
	}
	return seed, nil
}
