// Package nftbridge implements the non-fungible settlement state machine.
// It mirrors the fungible bridge's initiate/finalize shape with simpler
// accounting: a flat fee only, one boolean escrow slot per token, and the
// initiator's current ownership as the custody proof.
package nftbridge

import (
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/chainsafe/standard-bridge/pkg/chain"
	"github.com/chainsafe/standard-bridge/pkg/escrow"
	"github.com/chainsafe/standard-bridge/pkg/fees"
	"github.com/chainsafe/standard-bridge/pkg/messenger"
	"github.com/chainsafe/standard-bridge/pkg/roles"
	"github.com/chainsafe/standard-bridge/pkg/token"
)

var (
	// ErrUnknownCollection is returned when the local collection is not
	// registered.
	ErrUnknownCollection = errors.New("unknown local collection")
	// ErrPairMismatch is returned when a wrapped collection's declared remote
	// pair does not match the supplied counterpart address.
	ErrPairMismatch = errors.New("wrapped collection remote pair mismatch")
	// ErrNotTokenOwner is returned when the initiator does not currently own
	// the token.
	ErrNotTokenOwner = errors.New("initiator does not own the token")
	// ErrInvalidRecipient is returned for destinations that would strand the
	// token.
	ErrInvalidRecipient = errors.New("invalid token destination")
)

// Event is the emission payload of NFT bridge transitions.
type Event struct {
	Chain            string
	LocalCollection  common.Address
	RemoteCollection common.Address
	From             common.Address
	To               common.Address
	TokenID          *big.Int
}

// Hooks receives emission callbacks from NFT bridge transitions.
type Hooks interface {
	OnDepositInitiated(e Event)
	OnWithdrawalFinalized(e Event)
}

// MultiHooks fans each emission out to every element in order.
type MultiHooks []Hooks

func (m MultiHooks) OnDepositInitiated(e Event) {
	for _, h := range m {
		h.OnDepositInitiated(e)
	}
}

func (m MultiHooks) OnWithdrawalFinalized(e Event) {
	for _, h := range m {
		h.OnWithdrawalFinalized(e)
	}
}

// NopHooks discards all emissions.
type NopHooks struct{}

func (NopHooks) OnDepositInitiated(Event)    {}
func (NopHooks) OnWithdrawalFinalized(Event) {}

// LogHooks emits transitions as structured logs.
type LogHooks struct {
	Logger *zap.Logger
}

func (h LogHooks) OnDepositInitiated(e Event) {
	h.Logger.Info("NFT bridge deposit initiated",
		zap.String("chain", e.Chain),
		zap.String("collection", e.LocalCollection.Hex()),
		zap.String("from", e.From.Hex()),
		zap.String("to", e.To.Hex()),
		zap.String("token_id", e.TokenID.String()))
}

func (h LogHooks) OnWithdrawalFinalized(e Event) {
	h.Logger.Info("NFT bridge withdrawal finalized",
		zap.String("chain", e.Chain),
		zap.String("collection", e.LocalCollection.Hex()),
		zap.String("to", e.To.Hex()),
		zap.String("token_id", e.TokenID.String()))
}

// Config wires one NFT bridge instance.
type Config struct {
	Chain     *chain.Chain
	Escrow    *escrow.Store
	Fees      *fees.Engine
	Roles     *roles.Registry
	Messenger messenger.Messenger
	Hooks     Hooks

	Address         common.Address
	OtherBridge     common.Address
	DefaultGasLimit uint64
}

// Bridge is one side of the paired NFT bridge.
type Bridge struct {
	mu sync.Mutex

	chain  *chain.Chain
	escrow *escrow.Store
	fees   *fees.Engine
	roles  *roles.Registry
	msgr   messenger.Messenger
	hooks  Hooks

	addr        common.Address
	otherBridge common.Address
	defaultGas  uint64

	paused      bool
	collections map[common.Address]token.ERC721
}

// New creates an NFT bridge instance.
func New(cfg Config) *Bridge {
	if cfg.Hooks == nil {
		cfg.Hooks = NopHooks{}
	}
	cfg.Chain.SetCode(cfg.Address)
	return &Bridge{
		chain:       cfg.Chain,
		escrow:      cfg.Escrow,
		fees:        cfg.Fees,
		roles:       cfg.Roles,
		msgr:        cfg.Messenger,
		hooks:       cfg.Hooks,
		addr:        cfg.Address,
		otherBridge: cfg.OtherBridge,
		defaultGas:  cfg.DefaultGasLimit,
		collections: make(map[common.Address]token.ERC721),
	}
}

// Address returns the bridge's custody address.
func (b *Bridge) Address() common.Address { return b.addr }

// RegisterCollection makes a collection resolvable by address.
func (b *Bridge) RegisterCollection(c token.ERC721) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.collections[c.Address()] = c
}

func (b *Bridge) resolveCollection(addr common.Address) (token.ERC721, error) {
	c, ok := b.collections[addr]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCollection, addr.Hex())
	}
	return c, nil
}

// Paused reports the pause flag.
func (b *Bridge) Paused() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.paused
}

// Pause gates all token-moving entry points. Pauser or admin only.
func (b *Bridge) Pause(caller common.Address) error {
	if err := b.roles.RequirePauserOrAdmin(caller); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.paused = true
	return nil
}

// Unpause re-enables token-moving entry points. Pauser or admin only.
func (b *Bridge) Unpause(caller common.Address) error {
	if err := b.roles.RequirePauserOrAdmin(caller); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.paused = false
	return nil
}
