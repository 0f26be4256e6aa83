package token

import (
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/chainsafe/standard-bridge/pkg/journal"
)

var (
	// ErrTokenNotFound is returned when the queried token ID does not exist.
	ErrTokenNotFound = errors.New("token id does not exist")
	// ErrNotOwner is returned when a transfer is attempted by a non-owner.
	ErrNotOwner = errors.New("caller is not the token owner")
	// ErrTokenExists is returned when minting an ID that already exists.
	ErrTokenExists = errors.New("token id already exists")
	// ErrUnsafeRecipient is returned by SafeMint when the recipient contract
	// cannot acknowledge the token standard.
	ErrUnsafeRecipient = errors.New("recipient cannot receive the token")
)

// ReceiverChecker reports whether an address can accept a safe-minted token.
// *chain.Chain satisfies it.
type ReceiverChecker interface {
	CanReceiveNFT(addr common.Address) bool
}

// StandardNFT is an in-memory non-fungible token collection.
type StandardNFT struct {
	addr common.Address

	mu     sync.Mutex
	owners map[string]common.Address
}

// NewStandardNFT creates an empty collection at the given address.
func NewStandardNFT(addr common.Address) *StandardNFT {
	return &StandardNFT{
		addr:   addr,
		owners: make(map[string]common.Address),
	}
}

// Address returns the collection contract address.
func (n *StandardNFT) Address() common.Address { return n.addr }

// Faucet assigns a fresh token ID to owner. Test/genesis helper.
func (n *StandardNFT) Faucet(owner common.Address, id *big.Int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.owners[id.String()] = owner
}

// OwnerOf returns the current owner of id.
func (n *StandardNFT) OwnerOf(id *big.Int) (common.Address, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	owner, ok := n.owners[id.String()]
	if !ok {
		return common.Address{}, fmt.Errorf("%w: %s", ErrTokenNotFound, id)
	}
	return owner, nil
}

// TransferFrom moves id from its current owner to the recipient.
func (n *StandardNFT) TransferFrom(j *journal.Journal, from, to common.Address, id *big.Int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	key := id.String()
	owner, ok := n.owners[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrTokenNotFound, id)
	}
	if owner != from {
		return fmt.Errorf("%w: %s owned by %s", ErrNotOwner, id, owner.Hex())
	}
	n.owners[key] = to
	j.Record(func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		n.owners[key] = from
	})
	return nil
}

// WrappedNFT is a mint/burn-controlled NFT collection representing a
// collection whose canonical tokens live on the paired chain.
type WrappedNFT struct {
	StandardNFT
	remote   common.Address
	receiver ReceiverChecker
}

// NewWrappedNFT creates a wrapped collection declaring remote as its pair.
// The receiver checker backs the safe-mint recipient probe.
func NewWrappedNFT(addr, remote common.Address, receiver ReceiverChecker) *WrappedNFT {
	return &WrappedNFT{
		StandardNFT: *NewStandardNFT(addr),
		remote:      remote,
		receiver:    receiver,
	}
}

// RemoteToken returns the declared paired collection address.
func (n *WrappedNFT) RemoteToken() common.Address { return n.remote }

// SupportsInterface reports wrapped-NFT capability.
func (n *WrappedNFT) SupportsInterface(id InterfaceID) bool {
	return id == IfaceWrappedERC721
}

// SafeMint issues id to the recipient, refusing recipients that cannot
// acknowledge the token standard.
func (n *WrappedNFT) SafeMint(j *journal.Journal, to common.Address, id *big.Int) error {
	if n.receiver != nil && !n.receiver.CanReceiveNFT(to) {
		return fmt.Errorf("%w: %s", ErrUnsafeRecipient, to.Hex())
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	key := id.String()
	if _, exists := n.owners[key]; exists {
		return fmt.Errorf("%w: %s", ErrTokenExists, id)
	}
	n.owners[key] = to
	j.Record(func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.owners, key)
	})
	return nil
}

// Burn destroys id.
func (n *WrappedNFT) Burn(j *journal.Journal, id *big.Int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	key := id.String()
	owner, ok := n.owners[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrTokenNotFound, id)
	}
	delete(n.owners, key)
	j.Record(func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		n.owners[key] = owner
	})
	return nil
}
