// Package bridge implements the fungible-asset settlement state machine: the
// initiate/finalize transitions for deposits and withdrawals, the
// mint-versus-escrow branching, and the signature-authenticated fast path.
// One Bridge instance runs on each chain; the pair trusts each other through
// the messenger's sender authentication.
package bridge

import (
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/chainsafe/standard-bridge/pkg/authgate"
	"github.com/chainsafe/standard-bridge/pkg/chain"
	"github.com/chainsafe/standard-bridge/pkg/escrow"
	"github.com/chainsafe/standard-bridge/pkg/fees"
	"github.com/chainsafe/standard-bridge/pkg/ledger"
	"github.com/chainsafe/standard-bridge/pkg/messenger"
	"github.com/chainsafe/standard-bridge/pkg/roles"
	"github.com/chainsafe/standard-bridge/pkg/token"
)

var (
	// ErrUnknownAsset is returned when the local asset is not registered.
	ErrUnknownAsset = errors.New("unknown local asset")
	// ErrAssetPairMismatch is returned when a wrapped token's declared remote
	// pair does not match the supplied counterpart address.
	ErrAssetPairMismatch = errors.New("wrapped token remote pair mismatch")
	// ErrInvalidRecipient is returned for destinations that would strand
	// funds: the zero address, the bridge itself, or the messenger.
	ErrInvalidRecipient = errors.New("invalid funds destination")
	// ErrInsufficientCredit is returned when a fast-bridge claim exceeds the
	// beneficiary's credited balance.
	ErrInsufficientCredit = errors.New("insufficient fast-bridge credit")
	// ErrInvalidAmount is returned when a fast-bridge amount is nil or
	// negative.
	ErrInvalidAmount = errors.New("invalid fast-bridge amount")
)

// Config wires one bridge instance.
type Config struct {
	Chain     *chain.Chain
	Escrow    *escrow.Store
	Fees      *fees.Engine
	Roles     *roles.Registry
	Pool      *ledger.Pool
	Messenger messenger.Messenger
	Hooks     Hooks
	Proofs    ProofSink

	// Address is the bridge's own custody address on its chain.
	Address common.Address
	// OtherBridge is the only accepted origin of finalize messages.
	OtherBridge common.Address
	// NativeRemoteAsset is the wrapped representation of this chain's native
	// currency on the paired chain.
	NativeRemoteAsset common.Address
	// DefaultGasLimit is used for direct native-value deposits.
	DefaultGasLimit uint64
	// Domain binds fast-withdrawal signatures to this deployment.
	Domain authgate.Domain
	// SupersonicFee is the dedicated fast-withdrawal fee.
	SupersonicFee *big.Int
}

type creditKey struct {
	beneficiary common.Address
	token       common.Address
}

// Bridge is one side of the paired fungible bridge.
type Bridge struct {
	mu sync.Mutex

	chain  *chain.Chain
	escrow *escrow.Store
	fees   *fees.Engine
	roles  *roles.Registry
	pool   *ledger.Pool
	msgr   messenger.Messenger
	hooks  Hooks
	proofs ProofSink

	addr              common.Address
	otherBridge       common.Address
	nativeRemoteAsset common.Address
	defaultGas        uint64
	domain            authgate.Domain
	supersonicFee     *big.Int

	paused  bool
	backend common.Address
	tokens  map[common.Address]token.ERC20
	credits map[creditKey]*big.Int
	nonces  map[common.Address]uint64
}

// New creates a bridge instance. The bridge address is registered as contract
// code on its chain.
func New(cfg Config) *Bridge {
	if cfg.Hooks == nil {
		cfg.Hooks = NopHooks{}
	}
	if cfg.Proofs == nil {
		cfg.Proofs = NewProofLog()
	}
	if cfg.SupersonicFee == nil {
		cfg.SupersonicFee = new(big.Int)
	}
	cfg.Chain.SetCode(cfg.Address)

	return &Bridge{
		chain:             cfg.Chain,
		escrow:            cfg.Escrow,
		fees:              cfg.Fees,
		roles:             cfg.Roles,
		pool:              cfg.Pool,
		msgr:              cfg.Messenger,
		hooks:             cfg.Hooks,
		proofs:            cfg.Proofs,
		addr:              cfg.Address,
		otherBridge:       cfg.OtherBridge,
		nativeRemoteAsset: cfg.NativeRemoteAsset,
		defaultGas:        cfg.DefaultGasLimit,
		domain:            cfg.Domain,
		supersonicFee:     new(big.Int).Set(cfg.SupersonicFee),
		tokens:            make(map[common.Address]token.ERC20),
		credits:           make(map[creditKey]*big.Int),
		nonces:            make(map[common.Address]uint64),
	}
}

// Address returns the bridge's custody address.
func (b *Bridge) Address() common.Address { return b.addr }

// OtherBridge returns the registered paired bridge address.
func (b *Bridge) OtherBridge() common.Address { return b.otherBridge }

// Domain returns the fast-withdrawal signature domain.
func (b *Bridge) Domain() authgate.Domain { return b.domain }

// Escrow exposes the deposit ledger for read-side consumers.
func (b *Bridge) Escrow() *escrow.Store { return b.escrow }

// RegisterToken makes a token contract resolvable by address.
func (b *Bridge) RegisterToken(t token.ERC20) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tokens[t.Address()] = t
}

// resolveToken looks up a registered token.
func (b *Bridge) resolveToken(addr common.Address) (token.ERC20, error) {
	t, ok := b.tokens[addr]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAsset, addr.Hex())
	}
	return t, nil
}

// Paused reports the pause flag.
func (b *Bridge) Paused() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.paused
}

// requireNotPaused must be called with b.mu held.
func (b *Bridge) requireNotPaused() error {
	if b.paused {
		return authgate.ErrPaused
	}
	return nil
}

// validDestination rejects destinations that would strand funds or create a
// re-entrant drain vector.
func (b *Bridge) validDestination(to common.Address) error {
	if to == (common.Address{}) || to == b.addr || to == b.msgr.Address() {
		return fmt.Errorf("%w: %s", ErrInvalidRecipient, to.Hex())
	}
	return nil
}

// FastNonce returns the current fast-withdrawal counter for an initiator.
func (b *Bridge) FastNonce(from common.Address) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.nonces[from]
}

// RestoreFastNonce seeds an initiator's fast-withdrawal counter from
// persisted state. The counter only ever moves forward; a stale value is
// ignored.
func (b *Bridge) RestoreFastNonce(initiator common.Address, nonce uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if nonce > b.nonces[initiator] {
		b.nonces[initiator] = nonce
	}
}

// FastCredit returns the fast-bridge credit of a beneficiary for a token
// (zero address for native currency).
func (b *Bridge) FastCredit(beneficiary, tokenAddr common.Address) *big.Int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if c, ok := b.credits[creditKey{beneficiary, tokenAddr}]; ok {
		return new(big.Int).Set(c)
	}
	return new(big.Int)
}
