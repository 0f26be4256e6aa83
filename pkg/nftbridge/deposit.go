package nftbridge

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/chainsafe/standard-bridge/pkg/authgate"
	"github.com/chainsafe/standard-bridge/pkg/escrow"
	"github.com/chainsafe/standard-bridge/pkg/fees"
	"github.com/chainsafe/standard-bridge/pkg/journal"
	"github.com/chainsafe/standard-bridge/pkg/messenger"
	"github.com/chainsafe/standard-bridge/pkg/token"
)

// DepositArgs describes one NFT initiate-deposit call. Value is the attached
// native value and must equal the flat fee exactly.
type DepositArgs struct {
	LocalCollection  common.Address
	RemoteCollection common.Address
	To               common.Address
	TokenID          *big.Int
	Value            *big.Int
	MinGasLimit      uint64
	ExtraData        []byte
}

// InitiateDeposit starts an NFT transfer to the paired chain. The caller must
// be an externally-owned account and must currently own the token. Wrapped
// tokens are burned; native tokens are pulled into bridge custody and the
// escrow slot for (local, remote, id) is set. Fee, custody and message
// dispatch either all succeed or the call leaves no state change behind.
func (b *Bridge) InitiateDeposit(from common.Address, args DepositArgs) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.paused {
		return authgate.ErrPaused
	}
	if err := authgate.RequireEOA(b.chain, from); err != nil {
		return err
	}

	col, err := b.resolveCollection(args.LocalCollection)
	if err != nil {
		return err
	}
	owner, err := col.OwnerOf(args.TokenID)
	if err != nil {
		return err
	}
	if owner != from {
		return fmt.Errorf("%w: %s owns %s, caller is %s",
			ErrNotTokenOwner, owner.Hex(), args.TokenID, from.Hex())
	}

	j := journal.New()
	if err := b.custody(j, from, col, args); err != nil {
		j.Revert()
		return err
	}

	msg := messenger.Message{
		Target:      b.otherBridge,
		Kind:        messenger.KindFinalizeNFT,
		LocalAsset:  args.RemoteCollection,
		RemoteAsset: args.LocalCollection,
		From:        from,
		To:          args.To,
		TokenID:     args.TokenID,
		MinGasLimit: args.MinGasLimit,
		ExtraData:   args.ExtraData,
	}
	if msg.MinGasLimit == 0 {
		msg.MinGasLimit = b.defaultGas
	}
	if err := b.msgr.SendMessage(b.addr, msg); err != nil {
		j.Revert()
		return fmt.Errorf("message dispatch: %w", err)
	}

	j.Discard()
	b.hooks.OnDepositInitiated(Event{
		Chain:            b.chain.Name(),
		LocalCollection:  args.LocalCollection,
		RemoteCollection: args.RemoteCollection,
		From:             from,
		To:               args.To,
		TokenID:          args.TokenID,
	})
	return nil
}

// custody stages the fee leg and token custody on j. Callers revert j on
// error.
func (b *Bridge) custody(j *journal.Journal, from common.Address, col token.ERC721, args DepositArgs) error {
	// NFT transfers carry the flat fee only, attached as native value.
	sched, err := b.fees.TokenDeposit(args.Value, big.NewInt(0), args.LocalCollection)
	if err != nil {
		return err
	}
	if err := b.chain.Transfer(j, from, b.addr, args.Value); err != nil {
		return err
	}
	if err := b.fees.Route(j, b.chain, b.addr, nil, fees.Schedule{Flat: sched.Flat}, nil); err != nil {
		return err
	}

	if token.IsWrappedNFT(col) {
		mintable, ok := col.(token.MintableERC721)
		if !ok {
			return fmt.Errorf("%w: %s probes wrapped but is not mintable", ErrUnknownCollection, args.LocalCollection.Hex())
		}
		if mintable.RemoteToken() != args.RemoteCollection {
			return fmt.Errorf("%w: collection declares %s, call supplied %s",
				ErrPairMismatch, mintable.RemoteToken().Hex(), args.RemoteCollection.Hex())
		}
		return mintable.Burn(j, args.TokenID)
	}

	if err := col.TransferFrom(j, from, b.addr, args.TokenID); err != nil {
		return err
	}
	return b.escrow.LockNFT(j, escrow.NewNFTKey(args.LocalCollection, args.RemoteCollection, args.TokenID))
}
