package nftbridge

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/chainsafe/standard-bridge/pkg/authgate"
	"github.com/chainsafe/standard-bridge/pkg/escrow"
	"github.com/chainsafe/standard-bridge/pkg/journal"
	"github.com/chainsafe/standard-bridge/pkg/messenger"
	"github.com/chainsafe/standard-bridge/pkg/token"
)

// FinalizeArgs describes one NFT finalize call as decoded from a relayed
// message. LocalCollection is local to the finalizing side.
type FinalizeArgs struct {
	LocalCollection  common.Address
	RemoteCollection common.Address
	From             common.Address
	To               common.Address
	TokenID          *big.Int
	ExtraData        []byte
}

// HandleMessage implements messenger.Handler for relayed NFT finalize calls.
func (b *Bridge) HandleMessage(msg messenger.Message) error {
	if msg.Kind != messenger.KindFinalizeNFT {
		return fmt.Errorf("%w: kind %d", ErrUnknownCollection, msg.Kind)
	}
	return b.FinalizeBridge(b.msgr.Address(), FinalizeArgs{
		LocalCollection:  msg.LocalAsset,
		RemoteCollection: msg.RemoteAsset,
		From:             msg.From,
		To:               msg.To,
		TokenID:          msg.TokenID,
		ExtraData:        msg.ExtraData,
	})
}

// FinalizeBridge completes an NFT transfer initiated on the paired chain. Only
// the messenger, relaying a message from the registered paired bridge, is
// accepted. Wrapped collections safe-mint after re-validating the pair; native
// collections clear the escrow slot and release custody. A replayed message
// fails on the already-cleared slot.
func (b *Bridge) FinalizeBridge(caller common.Address, args FinalizeArgs) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := authgate.RequirePairedBridge(b.msgr, caller, b.otherBridge); err != nil {
		return err
	}
	if b.paused {
		return authgate.ErrPaused
	}
	if args.To == (common.Address{}) || args.To == b.addr || args.To == b.msgr.Address() {
		return fmt.Errorf("%w: %s", ErrInvalidRecipient, args.To.Hex())
	}

	j := journal.New()
	if err := b.release(j, args); err != nil {
		j.Revert()
		return err
	}
	j.Discard()

	b.hooks.OnWithdrawalFinalized(Event{
		Chain:            b.chain.Name(),
		LocalCollection:  args.LocalCollection,
		RemoteCollection: args.RemoteCollection,
		From:             args.From,
		To:               args.To,
		TokenID:          args.TokenID,
	})
	return nil
}

func (b *Bridge) release(j *journal.Journal, args FinalizeArgs) error {
	col, err := b.resolveCollection(args.LocalCollection)
	if err != nil {
		return err
	}

	if token.IsWrappedNFT(col) {
		mintable, ok := col.(token.MintableERC721)
		if !ok {
			return fmt.Errorf("%w: %s probes wrapped but is not mintable", ErrUnknownCollection, args.LocalCollection.Hex())
		}
		if mintable.RemoteToken() != args.RemoteCollection {
			return fmt.Errorf("%w: collection declares %s, message supplied %s",
				ErrPairMismatch, mintable.RemoteToken().Hex(), args.RemoteCollection.Hex())
		}
		return mintable.SafeMint(j, args.To, args.TokenID)
	}

	if err := b.escrow.UnlockNFT(j, escrow.NewNFTKey(args.LocalCollection, args.RemoteCollection, args.TokenID)); err != nil {
		return err
	}
	return col.TransferFrom(j, b.addr, args.To, args.TokenID)
}
