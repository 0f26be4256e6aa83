// Package token defines the asset collaborator interfaces the bridge settles
// against: fungible tokens, bridge-controlled wrapped representations, and
// their non-fungible counterparts. In-memory implementations back the
// simulator and the test suites.
package token

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/chainsafe/standard-bridge/pkg/journal"
)

// InterfaceID is a four-byte capability identifier, probed via
// SupportsInterface to classify assets at bridge time.
type InterfaceID [4]byte

var (
	// IfaceWrappedERC20 identifies a fungible token whose supply is
	// mint/burn-controlled by a bridge.
	IfaceWrappedERC20 = InterfaceID{0x1d, 0x1d, 0x8b, 0x63}
	// IfaceWrappedERC721 identifies the non-fungible equivalent.
	IfaceWrappedERC721 = InterfaceID{0xec, 0x4f, 0xc8, 0xe3}
)

// ERC20 is the minimal fungible-token surface the bridge needs.
// Transfer returns the amount actually received by the recipient, which may
// be less than requested for fee-on-transfer tokens.
type ERC20 interface {
	Address() common.Address
	BalanceOf(addr common.Address) *big.Int
	TotalSupply() *big.Int
	Transfer(j *journal.Journal, from, to common.Address, amount *big.Int) (received *big.Int, err error)
}

// Mintable is a wrapped fungible token controlled by a bridge.
type Mintable interface {
	ERC20
	Mint(j *journal.Journal, to common.Address, amount *big.Int) error
	Burn(j *journal.Journal, from common.Address, amount *big.Int) error
	// RemoteToken returns the paired token address on the other chain.
	RemoteToken() common.Address
}

// Probe is the capability self-identification surface.
type Probe interface {
	SupportsInterface(id InterfaceID) bool
}

// ERC721 is the minimal non-fungible-token surface the bridge needs.
type ERC721 interface {
	Address() common.Address
	OwnerOf(id *big.Int) (common.Address, error)
	TransferFrom(j *journal.Journal, from, to common.Address, id *big.Int) error
}

// MintableERC721 is a wrapped NFT controlled by a bridge. SafeMint refuses
// recipients that cannot acknowledge the token standard.
type MintableERC721 interface {
	ERC721
	SafeMint(j *journal.Journal, to common.Address, id *big.Int) error
	Burn(j *journal.Journal, id *big.Int) error
	RemoteToken() common.Address
}

// IsWrapped reports whether t self-identifies as a bridge-controlled wrapped
// fungible token.
func IsWrapped(t ERC20) bool {
	p, ok := t.(Probe)
	return ok && p.SupportsInterface(IfaceWrappedERC20)
}

// IsWrappedNFT reports whether t self-identifies as a bridge-controlled
// wrapped NFT.
func IsWrappedNFT(t ERC721) bool {
	p, ok := t.(Probe)
	return ok && p.SupportsInterface(IfaceWrappedERC721)
}
