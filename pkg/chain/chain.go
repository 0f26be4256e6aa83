// Package chain models one side's deterministic execution environment: the
// native-currency balance table, the contract-code registry used for EOA
// checks, and per-address transfer acceptance. Each bridge instance owns a
// reference to the chain it executes on.
package chain

import (
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/chainsafe/standard-bridge/pkg/journal"
)

var (
	// ErrInsufficientFunds is returned when a native transfer exceeds the
	// sender's balance.
	ErrInsufficientFunds = errors.New("insufficient native balance")
	// ErrTransferRejected is returned when the recipient does not accept
	// incoming native value.
	ErrTransferRejected = errors.New("recipient rejected native transfer")
	// ErrZeroAmount is returned for nil or negative transfer amounts.
	ErrZeroAmount = errors.New("transfer amount must be non-negative")
)

// Chain holds the world state of one side of the bridge.
type Chain struct {
	name string

	mu            sync.Mutex
	balances      map[common.Address]*big.Int
	code          map[common.Address]struct{}
	rejectsNative map[common.Address]struct{}
	nftReceivers  map[common.Address]struct{}
}

// New creates an empty chain with the given name ("l1", "l2", ...).
func New(name string) *Chain {
	return &Chain{
		name:          name,
		balances:      make(map[common.Address]*big.Int),
		code:          make(map[common.Address]struct{}),
		rejectsNative: make(map[common.Address]struct{}),
		nftReceivers:  make(map[common.Address]struct{}),
	}
}

// Name returns the chain name.
func (c *Chain) Name() string { return c.name }

// BalanceOf returns a copy of the native balance of addr.
func (c *Chain) BalanceOf(addr common.Address) *big.Int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if b, ok := c.balances[addr]; ok {
		return new(big.Int).Set(b)
	}
	return new(big.Int)
}

// Mint credits native currency to addr. Genesis/faucet helper, not reachable
// from any bridge operation.
func (c *Chain) Mint(addr common.Address, amount *big.Int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.credit(addr, amount)
}

// Transfer moves native currency from one address to another. The inverse is
// recorded on j so a failing caller can unwind.
func (c *Chain) Transfer(j *journal.Journal, from, to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrZeroAmount
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, rejects := c.rejectsNative[to]; rejects {
		return fmt.Errorf("%w: %s", ErrTransferRejected, to.Hex())
	}
	bal, ok := c.balances[from]
	if !ok || bal.Cmp(amount) < 0 {
		return fmt.Errorf("%w: %s has %s, needs %s", ErrInsufficientFunds, from.Hex(), bal, amount)
	}
	c.debit(from, amount)
	c.credit(to, amount)

	amt := new(big.Int).Set(amount)
	j.Record(func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.debit(to, amt)
		c.credit(from, amt)
	})
	return nil
}

// SetCode marks addr as having contract code. Addresses without code are EOAs.
func (c *Chain) SetCode(addr common.Address) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.code[addr] = struct{}{}
}

// IsContract reports whether addr has contract code.
func (c *Chain) IsContract(addr common.Address) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.code[addr]
	return ok
}

// SetRejectsNative marks addr as refusing incoming native transfers, modelling
// a contract without a receive hook.
func (c *Chain) SetRejectsNative(addr common.Address, rejects bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if rejects {
		c.rejectsNative[addr] = struct{}{}
	} else {
		delete(c.rejectsNative, addr)
	}
}

// SetNFTReceiver marks a contract address as implementing the token-receiver
// callback, so safe mints and safe transfers to it succeed.
func (c *Chain) SetNFTReceiver(addr common.Address) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nftReceivers[addr] = struct{}{}
}

// CanReceiveNFT reports whether addr can accept a safe-minted token. EOAs
// always can; contracts only when registered as receivers.
func (c *Chain) CanReceiveNFT(addr common.Address) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, isContract := c.code[addr]; !isContract {
		return true
	}
	_, ok := c.nftReceivers[addr]
	return ok
}

// credit and debit require c.mu held.
func (c *Chain) credit(addr common.Address, amount *big.Int) {
	if amount == nil || amount.Sign() == 0 {
		return
	}
	bal, ok := c.balances[addr]
	if !ok {
		bal = new(big.Int)
		c.balances[addr] = bal
	}
	bal.Add(bal, amount)
}

func (c *Chain) debit(addr common.Address, amount *big.Int) {
	if amount == nil || amount.Sign() == 0 {
		return
	}
	bal := c.balances[addr]
	bal.Sub(bal, amount)
}
