package bridged

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/chainsafe/standard-bridge/internal/metrics"
	"github.com/chainsafe/standard-bridge/pkg/bridge"
	"github.com/chainsafe/standard-bridge/pkg/nftbridge"
	"github.com/chainsafe/standard-bridge/pkg/store"
)

const nonceWriteTimeout = 5 * time.Second

// bridgeMetrics mirrors fungible bridge transitions into the Prometheus
// collectors.
type bridgeMetrics struct{}

func (bridgeMetrics) OnDepositInitiated(e bridge.TransferEvent) {
	metrics.DepositsInitiated.WithLabelValues(e.Chain, assetKind(e.LocalAsset)).Inc()
	addFee(e.Chain, "flat", e.FlatFee)
	addFee(e.Chain, "pool", e.PoolFee)
}

func (bridgeMetrics) OnWithdrawalFinalized(e bridge.TransferEvent) {
	metrics.WithdrawalsFinalized.WithLabelValues(e.Chain, assetKind(e.LocalAsset)).Inc()
}

func (bridgeMetrics) OnFastWithdrawal(e bridge.FastEvent) {
	metrics.FastWithdrawals.WithLabelValues(e.Chain, "settled").Inc()
	addFee(e.Chain, "supersonic", e.Fee)
}

func (bridgeMetrics) OnPauseChanged(string, bool) {}

// nftMetrics feeds NFT bridge transitions into the same counters under the
// nft kind.
type nftMetrics struct{}

func (nftMetrics) OnDepositInitiated(e nftbridge.Event) {
	metrics.DepositsInitiated.WithLabelValues(e.Chain, "nft").Inc()
}

func (nftMetrics) OnWithdrawalFinalized(e nftbridge.Event) {
	metrics.WithdrawalsFinalized.WithLabelValues(e.Chain, "nft").Inc()
}

func assetKind(asset common.Address) string {
	if asset == (common.Address{}) {
		return "native"
	}
	return "token"
}

func addFee(chainName, leg string, amount *big.Int) {
	if amount == nil || amount.Sign() <= 0 {
		return
	}
	f, _ := new(big.Float).SetInt(amount).Float64()
	metrics.FeesCollected.WithLabelValues(chainName, leg).Add(f)
}

// fastNonceStore is the slice of the activity store the nonce recorder needs.
type fastNonceStore interface {
	UpsertFastNonce(ctx context.Context, n *store.FastNonce) error
}

// FastNonceLister reads back the persisted counters for one chain.
type FastNonceLister interface {
	ListFastNonces(ctx context.Context, chain string) ([]*store.FastNonce, error)
}

// nonceRecorder persists each initiator's fast-withdrawal counter as
// settlements happen, so a restarted process does not reopen settled nonces.
type nonceRecorder struct {
	bridge.NopHooks
	st     fastNonceStore
	logger *zap.Logger
}

func (r nonceRecorder) OnFastWithdrawal(e bridge.FastEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), nonceWriteTimeout)
	defer cancel()

	// The settled request consumed e.Nonce; the counter now sits one past it.
	err := r.st.UpsertFastNonce(ctx, &store.FastNonce{
		Chain:     e.Chain,
		Initiator: e.Initiator.Hex(),
		Nonce:     int64(e.Nonce) + 1,
		UpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		r.logger.Error("Failed to persist fast-withdrawal counter",
			zap.String("chain", e.Chain),
			zap.String("initiator", e.Initiator.Hex()),
			zap.Error(err))
	}
}
