package bridge

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// TransferEvent is the emission payload of initiate and finalize transitions.
// The fee legs are populated on initiate events only; fees are charged where
// the transfer starts.
type TransferEvent struct {
	Chain       string
	LocalAsset  common.Address
	RemoteAsset common.Address
	From        common.Address
	To          common.Address
	Amount      *big.Int
	FlatFee     *big.Int
	PoolFee     *big.Int
	ExtraData   []byte
}

// FastEvent is the emission payload of fast-path settlements. Initiator is
// the account whose nonce counter the settlement consumed.
type FastEvent struct {
	Chain       string
	Initiator   common.Address
	Beneficiary common.Address
	Token       common.Address
	Amount      *big.Int
	Fee         *big.Int
	Nonce       uint64
}

// Hooks receives emission callbacks from bridge transitions. Implementations
// are composed per bridge variant instead of inherited.
type Hooks interface {
	OnDepositInitiated(e TransferEvent)
	OnWithdrawalFinalized(e TransferEvent)
	OnFastWithdrawal(e FastEvent)
	OnPauseChanged(chainName string, paused bool)
}

// MultiHooks fans each emission out to every element in order.
type MultiHooks []Hooks

func (m MultiHooks) OnDepositInitiated(e TransferEvent) {
	for _, h := range m {
		h.OnDepositInitiated(e)
	}
}

func (m MultiHooks) OnWithdrawalFinalized(e TransferEvent) {
	for _, h := range m {
		h.OnWithdrawalFinalized(e)
	}
}

func (m MultiHooks) OnFastWithdrawal(e FastEvent) {
	for _, h := range m {
		h.OnFastWithdrawal(e)
	}
}

func (m MultiHooks) OnPauseChanged(chainName string, paused bool) {
	for _, h := range m {
		h.OnPauseChanged(chainName, paused)
	}
}

// NopHooks discards all emissions.
type NopHooks struct{}

func (NopHooks) OnDepositInitiated(TransferEvent)    {}
func (NopHooks) OnWithdrawalFinalized(TransferEvent) {}
func (NopHooks) OnFastWithdrawal(FastEvent)          {}
func (NopHooks) OnPauseChanged(string, bool)         {}

// LogHooks emits transitions as structured logs.
type LogHooks struct {
	Logger *zap.Logger
}

func (h LogHooks) OnDepositInitiated(e TransferEvent) {
	h.Logger.Info("Bridge deposit initiated",
		zap.String("chain", e.Chain),
		zap.String("local_asset", e.LocalAsset.Hex()),
		zap.String("remote_asset", e.RemoteAsset.Hex()),
		zap.String("from", e.From.Hex()),
		zap.String("to", e.To.Hex()),
		zap.String("amount", e.Amount.String()))
}

func (h LogHooks) OnWithdrawalFinalized(e TransferEvent) {
	h.Logger.Info("Bridge withdrawal finalized",
		zap.String("chain", e.Chain),
		zap.String("local_asset", e.LocalAsset.Hex()),
		zap.String("to", e.To.Hex()),
		zap.String("amount", e.Amount.String()))
}

func (h LogHooks) OnFastWithdrawal(e FastEvent) {
	h.Logger.Info("Fast withdrawal settled",
		zap.String("chain", e.Chain),
		zap.String("initiator", e.Initiator.Hex()),
		zap.String("beneficiary", e.Beneficiary.Hex()),
		zap.String("token", e.Token.Hex()),
		zap.String("amount", e.Amount.String()),
		zap.Uint64("nonce", e.Nonce))
}

func (h LogHooks) OnPauseChanged(chainName string, paused bool) {
	h.Logger.Warn("Bridge pause flag changed",
		zap.String("chain", chainName),
		zap.Bool("paused", paused))
}
