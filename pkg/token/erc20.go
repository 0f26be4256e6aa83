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
	// ErrInsufficientBalance is returned when a transfer or burn exceeds the
	// holder's balance.
	ErrInsufficientBalance = errors.New("insufficient token balance")
	// ErrNegativeAmount is returned for nil or negative amounts.
	ErrNegativeAmount = errors.New("token amount must be non-negative")
)

// StandardToken is an in-memory fungible token. A non-zero TransferFeeBps
// makes it fee-on-transfer: the recipient receives amount minus the fee,
// which is destroyed.
type StandardToken struct {
	addr           common.Address
	transferFeeBps uint64

	mu       sync.Mutex
	balances map[common.Address]*big.Int
	supply   *big.Int
}

// NewStandardToken creates an empty token at the given address.
func NewStandardToken(addr common.Address) *StandardToken {
	return &StandardToken{
		addr:     addr,
		balances: make(map[common.Address]*big.Int),
		supply:   new(big.Int),
	}
}

// NewFeeOnTransferToken creates a token that burns feeBps/10000 of every
// transfer in flight.
func NewFeeOnTransferToken(addr common.Address, feeBps uint64) *StandardToken {
	t := NewStandardToken(addr)
	t.transferFeeBps = feeBps
	return t
}

// Address returns the token contract address.
func (t *StandardToken) Address() common.Address { return t.addr }

// BalanceOf returns a copy of addr's balance.
func (t *StandardToken) BalanceOf(addr common.Address) *big.Int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if b, ok := t.balances[addr]; ok {
		return new(big.Int).Set(b)
	}
	return new(big.Int)
}

// TotalSupply returns a copy of the current supply.
func (t *StandardToken) TotalSupply() *big.Int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return new(big.Int).Set(t.supply)
}

// Faucet credits freshly issued units to addr. Test/genesis helper.
func (t *StandardToken) Faucet(addr common.Address, amount *big.Int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.credit(addr, amount)
	t.supply.Add(t.supply, amount)
}

// Transfer moves amount from one holder to another and returns the amount
// actually received.
func (t *StandardToken) Transfer(j *journal.Journal, from, to common.Address, amount *big.Int) (*big.Int, error) {
	if amount == nil || amount.Sign() < 0 {
		return nil, ErrNegativeAmount
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	bal, ok := t.balances[from]
	if !ok || bal.Cmp(amount) < 0 {
		return nil, fmt.Errorf("%w: %s has %s, needs %s", ErrInsufficientBalance, from.Hex(), bal, amount)
	}

	received := new(big.Int).Set(amount)
	if t.transferFeeBps > 0 {
		fee := new(big.Int).Mul(amount, new(big.Int).SetUint64(t.transferFeeBps))
		fee.Div(fee, big.NewInt(10000))
		received.Sub(received, fee)
		t.supply.Sub(t.supply, fee)
	}

	t.debit(from, amount)
	t.credit(to, received)

	sent := new(big.Int).Set(amount)
	got := new(big.Int).Set(received)
	j.Record(func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		t.debit(to, got)
		t.credit(from, sent)
		if burned := new(big.Int).Sub(sent, got); burned.Sign() > 0 {
			t.supply.Add(t.supply, burned)
		}
	})
	return received, nil
}

// credit and debit require t.mu held.
func (t *StandardToken) credit(addr common.Address, amount *big.Int) {
	if amount == nil || amount.Sign() == 0 {
		return
	}
	bal, ok := t.balances[addr]
	if !ok {
		bal = new(big.Int)
		t.balances[addr] = bal
	}
	bal.Add(bal, amount)
}

func (t *StandardToken) debit(addr common.Address, amount *big.Int) {
	if amount == nil || amount.Sign() == 0 {
		return
	}
	t.balances[addr].Sub(t.balances[addr], amount)
}

// WrappedToken is a mint/burn-controlled representation of an asset whose
// canonical supply lives on the paired chain.
type WrappedToken struct {
	StandardToken
	remote common.Address
}

// NewWrappedToken creates a wrapped token declaring remote as its pair.
func NewWrappedToken(addr, remote common.Address) *WrappedToken {
	return &WrappedToken{
		StandardToken: *NewStandardToken(addr),
		remote:        remote,
	}
}

// RemoteToken returns the declared paired token address.
func (t *WrappedToken) RemoteToken() common.Address { return t.remote }

// SupportsInterface reports wrapped-fungible capability.
func (t *WrappedToken) SupportsInterface(id InterfaceID) bool {
	return id == IfaceWrappedERC20
}

// Mint issues amount to the recipient.
func (t *WrappedToken) Mint(j *journal.Journal, to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrNegativeAmount
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.credit(to, amount)
	t.supply.Add(t.supply, amount)

	amt := new(big.Int).Set(amount)
	j.Record(func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		t.debit(to, amt)
		t.supply.Sub(t.supply, amt)
	})
	return nil
}

// Burn destroys amount held by from.
func (t *WrappedToken) Burn(j *journal.Journal, from common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrNegativeAmount
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	bal, ok := t.balances[from]
	if !ok || bal.Cmp(amount) < 0 {
		return fmt.Errorf("%w: %s has %s, burns %s", ErrInsufficientBalance, from.Hex(), bal, amount)
	}
	t.debit(from, amount)
	t.supply.Sub(t.supply, amount)

	amt := new(big.Int).Set(amount)
	j.Record(func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		t.credit(from, amt)
		t.supply.Add(t.supply, amt)
	})
	return nil
}
