// Package escrow maintains the deposit ledger: how much of each asset pair is
// currently locked on this chain. Finalize-side checks go through Unlock so a
// release can never exceed what was locked.
package escrow

import (
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/chainsafe/standard-bridge/pkg/journal"
)

var (
	// ErrInsufficientEscrow is returned when an unlock exceeds the tracked
	// deposit for the pair.
	ErrInsufficientEscrow = errors.New("unlock exceeds tracked escrow")
	// ErrNotEscrowed is returned when unlocking an NFT slot that is not held.
	ErrNotEscrowed = errors.New("token is not escrowed")
	// ErrAlreadyEscrowed is returned when locking an NFT slot twice.
	ErrAlreadyEscrowed = errors.New("token is already escrowed")
)

// PairKey identifies one fungible deposit slot.
type PairKey struct {
	Local  common.Address
	Remote common.Address
}

// NFTKey identifies one non-fungible deposit slot.
type NFTKey struct {
	Local   common.Address
	Remote  common.Address
	TokenID string
}

// NewNFTKey builds an NFTKey from a big-integer token ID.
func NewNFTKey(local, remote common.Address, id *big.Int) NFTKey {
	return NFTKey{Local: local, Remote: remote, TokenID: id.String()}
}

// Store is a thread-safe deposit ledger.
type Store struct {
	mu      sync.Mutex
	amounts map[PairKey]*big.Int
	nfts    map[NFTKey]bool
}

// NewStore creates an empty deposit ledger.
func NewStore() *Store {
	return &Store{
		amounts: make(map[PairKey]*big.Int),
		nfts:    make(map[NFTKey]bool),
	}
}

// Lock increases the tracked deposit for the pair. The caller must already
// hold custody of the asset; the amount passed is the amount actually
// received, not the amount requested.
func (s *Store) Lock(j *journal.Journal, key PairKey, amount *big.Int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.amounts[key]
	if !ok {
		cur = new(big.Int)
		s.amounts[key] = cur
	}
	cur.Add(cur, amount)

	amt := new(big.Int).Set(amount)
	j.Record(func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.amounts[key].Sub(s.amounts[key], amt)
	})
}

// Unlock decreases the tracked deposit for the pair, failing if the amount
// exceeds what is locked. The ledger never goes negative.
func (s *Store) Unlock(j *journal.Journal, key PairKey, amount *big.Int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.amounts[key]
	if !ok || cur.Cmp(amount) < 0 {
		return fmt.Errorf("%w: locked %s, requested %s", ErrInsufficientEscrow, cur, amount)
	}
	cur.Sub(cur, amount)

	amt := new(big.Int).Set(amount)
	j.Record(func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.amounts[key].Add(s.amounts[key], amt)
	})
	return nil
}

// Locked returns a copy of the tracked deposit for the pair.
func (s *Store) Locked(key PairKey) *big.Int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.amounts[key]; ok {
		return new(big.Int).Set(cur)
	}
	return new(big.Int)
}

// LockNFT marks the slot as escrowed. Locking a held slot fails.
func (s *Store) LockNFT(j *journal.Journal, key NFTKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.nfts[key] {
		return fmt.Errorf("%w: %s/%s id %s", ErrAlreadyEscrowed, key.Local.Hex(), key.Remote.Hex(), key.TokenID)
	}
	s.nfts[key] = true
	j.Record(func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.nfts, key)
	})
	return nil
}

// UnlockNFT clears the slot. Unlocking a slot that is not held fails, which
// makes replayed finalizations fail on the second attempt.
func (s *Store) UnlockNFT(j *journal.Journal, key NFTKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.nfts[key] {
		return fmt.Errorf("%w: %s/%s id %s", ErrNotEscrowed, key.Local.Hex(), key.Remote.Hex(), key.TokenID)
	}
	delete(s.nfts, key)
	j.Record(func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.nfts[key] = true
	})
	return nil
}

// IsNFTEscrowed reports whether the slot is currently held.
func (s *Store) IsNFTEscrowed(key NFTKey) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nfts[key]
}

// Pairs returns a snapshot of all fungible slots with a non-zero deposit.
func (s *Store) Pairs() map[PairKey]*big.Int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[PairKey]*big.Int, len(s.amounts))
	for k, v := range s.amounts {
		if v.Sign() > 0 {
			out[k] = new(big.Int).Set(v)
		}
	}
	return out
}
