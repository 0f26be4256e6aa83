package bridge

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

// FinalizeArgs describes one finalize call as decoded from a relayed message.
// LocalAsset is local to the finalizing side.
type FinalizeArgs struct {
	LocalAsset  common.Address
	RemoteAsset common.Address
	From        common.Address
	To          common.Address
	Amount      *big.Int
	ExtraData   []byte
}

func pairKeyOf(local, remote common.Address) escrow.PairKey {
	return escrow.PairKey{Local: local, Remote: remote}
}

// HandleMessage implements messenger.Handler: the transport delivers relayed
// finalize calls here.
func (b *Bridge) HandleMessage(msg messenger.Message) error {
	if msg.Kind != messenger.KindFinalizeFungible {
		return fmt.Errorf("%w: kind %d", ErrUnknownAsset, msg.Kind)
	}
	return b.FinalizeBridge(b.msgr.Address(), FinalizeArgs{
		LocalAsset:  msg.LocalAsset,
		RemoteAsset: msg.RemoteAsset,
		From:        msg.From,
		To:          msg.To,
		Amount:      msg.Amount,
		ExtraData:   msg.ExtraData,
	})
}

// FinalizeBridge completes a transfer initiated on the paired chain. Only the
// messenger, relaying a message from the registered paired bridge, is
// accepted. For wrapped assets it mints after re-validating the pair; for
// native assets it unlocks tracked escrow and releases custody. An unlock or
// transfer failure aborts the whole call with no partial release.
func (b *Bridge) FinalizeBridge(caller common.Address, args FinalizeArgs) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := authgate.RequirePairedBridge(b.msgr, caller, b.otherBridge); err != nil {
		return err
	}
	if err := b.requireNotPaused(); err != nil {
		return err
	}
	if err := b.validDestination(args.To); err != nil {
		return err
	}

	j := journal.New()
	if err := b.finalize(j, args); err != nil {
		j.Revert()
		return err
	}
	j.Discard()

	b.hooks.OnWithdrawalFinalized(TransferEvent{
		Chain:       b.chain.Name(),
		LocalAsset:  args.LocalAsset,
		RemoteAsset: args.RemoteAsset,
		From:        args.From,
		To:          args.To,
		Amount:      args.Amount,
		ExtraData:   args.ExtraData,
	})
	return nil
}

func (b *Bridge) finalize(j *journal.Journal, args FinalizeArgs) error {
	// Native currency: escrow-backed release from bridge custody.
	if args.LocalAsset == (common.Address{}) {
		if err := b.escrow.Unlock(j, pairKeyOf(args.LocalAsset, args.RemoteAsset), args.Amount); err != nil {
			return err
		}
		return b.chain.Transfer(j, b.addr, args.To, args.Amount)
	}

	tok, err := b.resolveToken(args.LocalAsset)
	if err != nil {
		return err
	}

	if token.IsWrapped(tok) {
		mintable, ok := tok.(token.Mintable)
		if !ok {
			return fmt.Errorf("%w: %s probes wrapped but is not mintable", ErrUnknownAsset, args.LocalAsset.Hex())
		}
		// Re-validate the pair: an unrelated wrapped token must never be able
		// to stand in for the escrowed asset.
		if mintable.RemoteToken() != args.RemoteAsset {
			return fmt.Errorf("%w: token declares %s, message supplied %s",
				ErrAssetPairMismatch, mintable.RemoteToken().Hex(), args.RemoteAsset.Hex())
		}
		return mintable.Mint(j, args.To, args.Amount)
	}

	if err := b.escrow.Unlock(j, pairKeyOf(args.LocalAsset, args.RemoteAsset), args.Amount); err != nil {
		return err
	}
	_, err = tok.Transfer(j, b.addr, args.To, args.Amount)
	return err
}
