// Package ledger implements the liquidity pool: a shared custody primitive
// holding native currency and tokens, paying out only on bridge-role
// authorized request. Multiple bridge instances draw on the same pool; the
// pool never assumes a single writer and never caches balances across calls.
package ledger

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/chainsafe/standard-bridge/pkg/chain"
	"github.com/chainsafe/standard-bridge/pkg/journal"
	"github.com/chainsafe/standard-bridge/pkg/roles"
	"github.com/chainsafe/standard-bridge/pkg/token"
)

// ErrNotBridge is returned when a pool payout is requested by a caller
// without the bridge role.
var ErrNotBridge = errors.New("caller does not hold the bridge role")

// Pool is one side's liquidity pool.
type Pool struct {
	addr  common.Address
	chain *chain.Chain
	roles *roles.Registry
}

// NewPool creates a pool custodied at addr, authorized against reg.
func NewPool(addr common.Address, ch *chain.Chain, reg *roles.Registry) *Pool {
	ch.SetCode(addr)
	return &Pool{addr: addr, chain: ch, roles: reg}
}

// Address returns the pool's custody address.
func (p *Pool) Address() common.Address { return p.addr }

// NativeBalance returns the pool's current native balance, read fresh from
// the chain on every call.
func (p *Pool) NativeBalance() *big.Int {
	return p.chain.BalanceOf(p.addr)
}

// TokenBalance returns the pool's current balance of tok.
func (p *Pool) TokenBalance(tok token.ERC20) *big.Int {
	return tok.BalanceOf(p.addr)
}

// SendNative pays out native currency. Bridge-role gated.
func (p *Pool) SendNative(j *journal.Journal, caller, to common.Address, amount *big.Int) error {
	if !p.roles.Has(roles.RoleBridge, caller) {
		return fmt.Errorf("%w: %s", ErrNotBridge, caller.Hex())
	}
	return p.chain.Transfer(j, p.addr, to, amount)
}

// SendERC20 pays out token units. Bridge-role gated.
func (p *Pool) SendERC20(j *journal.Journal, caller common.Address, tok token.ERC20, to common.Address, amount *big.Int) error {
	if !p.roles.Has(roles.RoleBridge, caller) {
		return fmt.Errorf("%w: %s", ErrNotBridge, caller.Hex())
	}
	_, err := tok.Transfer(j, p.addr, to, amount)
	return err
}

// ReceiveNative moves native currency from the sender into the pool.
func (p *Pool) ReceiveNative(j *journal.Journal, from common.Address, amount *big.Int) error {
	return p.chain.Transfer(j, from, p.addr, amount)
}

// ReceiveERC20 moves token units from the sender into the pool and returns
// the amount actually received.
func (p *Pool) ReceiveERC20(j *journal.Journal, tok token.ERC20, from common.Address, amount *big.Int) (*big.Int, error) {
	return tok.Transfer(j, from, p.addr, amount)
}
