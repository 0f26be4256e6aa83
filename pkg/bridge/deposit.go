package bridge

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/chainsafe/standard-bridge/pkg/authgate"
	"github.com/chainsafe/standard-bridge/pkg/fees"
	"github.com/chainsafe/standard-bridge/pkg/journal"
	"github.com/chainsafe/standard-bridge/pkg/messenger"
	"github.com/chainsafe/standard-bridge/pkg/token"
)

// DepositArgs describes one initiate-deposit call. A zero LocalAsset bridges
// the chain's native currency; Value is the attached native value and Amount
// the token amount (ignored for native deposits).
type DepositArgs struct {
	LocalAsset  common.Address
	RemoteAsset common.Address
	To          common.Address
	Value       *big.Int
	Amount      *big.Int
	MinGasLimit uint64
	ExtraData   []byte
}

// InitiateDeposit starts a transfer to the paired chain. The caller must be
// an externally-owned account. Fee computation, fee routing, asset custody
// (burn or transfer-in-then-lock) and the message dispatch either all succeed
// or the call leaves no state change behind.
func (b *Bridge) InitiateDeposit(from common.Address, args DepositArgs) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.requireNotPaused(); err != nil {
		return err
	}
	if err := authgate.RequireEOA(b.chain, from); err != nil {
		return err
	}

	j := journal.New()
	principal, sched, err := b.initiateDeposit(j, from, args)
	if err != nil {
		j.Revert()
		return err
	}

	// Asset order is swapped so the receiving side sees its own local asset
	// first.
	msg := messenger.Message{
		Target:      b.otherBridge,
		Kind:        messenger.KindFinalizeFungible,
		LocalAsset:  args.RemoteAsset,
		RemoteAsset: args.LocalAsset,
		From:        from,
		To:          args.To,
		Amount:      principal,
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
	b.hooks.OnDepositInitiated(TransferEvent{
		Chain:       b.chain.Name(),
		LocalAsset:  args.LocalAsset,
		RemoteAsset: args.RemoteAsset,
		From:        from,
		To:          args.To,
		Amount:      principal,
		FlatFee:     sched.Flat,
		PoolFee:     sched.Proportional,
		ExtraData:   args.ExtraData,
	})
	return nil
}

// initiateDeposit stages all custody and fee mutations on j and returns the
// bridged principal with the settled fee schedule. Callers revert j on error.
func (b *Bridge) initiateDeposit(j *journal.Journal, from common.Address, args DepositArgs) (*big.Int, fees.Schedule, error) {
	if args.LocalAsset == (common.Address{}) {
		return b.initiateNativeDeposit(j, from, args)
	}

	tok, err := b.resolveToken(args.LocalAsset)
	if err != nil {
		return nil, fees.Schedule{}, err
	}

	sched, err := b.fees.TokenDeposit(args.Value, args.Amount, args.LocalAsset)
	if err != nil {
		return nil, fees.Schedule{}, err
	}

	// Flat fee is attached native value; custody it on the bridge before
	// routing so a failed leg unwinds cleanly.
	if err := b.chain.Transfer(j, from, b.addr, args.Value); err != nil {
		return nil, fees.Schedule{}, err
	}
	if err := b.fees.Route(j, b.chain, b.addr, b.pool, fees.Schedule{Flat: sched.Flat}, nil); err != nil {
		return nil, fees.Schedule{}, err
	}

	if token.IsWrapped(tok) {
		mintable, ok := tok.(token.Mintable)
		if !ok {
			return nil, fees.Schedule{}, fmt.Errorf("%w: %s probes wrapped but is not mintable", ErrUnknownAsset, args.LocalAsset.Hex())
		}
		if mintable.RemoteToken() != args.RemoteAsset {
			return nil, fees.Schedule{}, fmt.Errorf("%w: token declares %s, call supplied %s",
				ErrAssetPairMismatch, mintable.RemoteToken().Hex(), args.RemoteAsset.Hex())
		}
		// Remote-native asset: the proportional fee moves to the pool, the
		// principal is burned from the sender.
		if sched.Proportional.Sign() > 0 {
			if _, err := tok.Transfer(j, from, b.pool.Address(), sched.Proportional); err != nil {
				return nil, fees.Schedule{}, fmt.Errorf("%w: %v", fees.ErrPoolFeeLeg, err)
			}
		}
		if err := mintable.Burn(j, from, sched.Principal); err != nil {
			return nil, fees.Schedule{}, err
		}
		return sched.Principal, sched, nil
	}

	// Local-native asset: transfer in, then lock what actually arrived minus
	// the proportional fee. Fee-on-transfer discrepancies shrink the
	// principal, never the escrow backing.
	received, err := tok.Transfer(j, from, b.addr, args.Amount)
	if err != nil {
		return nil, fees.Schedule{}, err
	}
	if sched.Proportional.Sign() > 0 {
		if _, err := tok.Transfer(j, b.addr, b.pool.Address(), sched.Proportional); err != nil {
			return nil, fees.Schedule{}, fmt.Errorf("%w: %v", fees.ErrPoolFeeLeg, err)
		}
	}
	principal := new(big.Int).Sub(received, sched.Proportional)
	if principal.Sign() < 0 {
		return nil, fees.Schedule{}, fmt.Errorf("%w: received %s does not cover proportional fee %s",
			fees.ErrInsufficientFee, received, sched.Proportional)
	}
	b.escrow.Lock(j, pairKeyOf(args.LocalAsset, args.RemoteAsset), principal)
	return principal, sched, nil
}

// initiateNativeDeposit handles the chain's native currency: the attached
// value covers both fees and principal.
func (b *Bridge) initiateNativeDeposit(j *journal.Journal, from common.Address, args DepositArgs) (*big.Int, fees.Schedule, error) {
	sched, err := b.fees.NativeDeposit(args.Value)
	if err != nil {
		return nil, fees.Schedule{}, err
	}
	if err := b.chain.Transfer(j, from, b.addr, args.Value); err != nil {
		return nil, fees.Schedule{}, err
	}
	if err := b.fees.Route(j, b.chain, b.addr, b.pool, sched, nil); err != nil {
		return nil, fees.Schedule{}, err
	}
	b.escrow.Lock(j, pairKeyOf(common.Address{}, args.RemoteAsset), sched.Principal)
	return sched.Principal, sched, nil
}

// ReceiveNative is the convenience alias for sending value directly to the
// bridge: a native deposit back to the sender's own address on the paired
// chain, with the default gas limit. EOA-only.
func (b *Bridge) ReceiveNative(from common.Address, value *big.Int) error {
	return b.InitiateDeposit(from, DepositArgs{
		RemoteAsset: b.nativeRemoteAsset,
		To:          from,
		Value:       value,
		MinGasLimit: b.defaultGas,
	})
}
