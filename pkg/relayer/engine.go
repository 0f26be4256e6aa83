// Package relayer moves queued bridge messages between the paired chains. One
// processor per direction drains a side's outbox and executes each message
// against the other side's finalize handlers, recording every transfer.
package relayer

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/chainsafe/standard-bridge/internal/metrics"
	"github.com/chainsafe/standard-bridge/pkg/config"
	"github.com/chainsafe/standard-bridge/pkg/store"
)

// Engine orchestrates the bridge relayer operations
type Engine struct {
	config *config.RelayerConfig
	retry  RetryPolicy
	l1     *Side
	l2     *Side
	store  BridgeStore
	logger *zap.Logger

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewEngine creates a new relayer engine. The bridge config supplies the
// redelivery policy applied to failed submissions.
func NewEngine(cfg *config.RelayerConfig, bridgeCfg *config.BridgeConfig, l1, l2 *Side, st BridgeStore, logger *zap.Logger) *Engine {
	var retry RetryPolicy
	if bridgeCfg != nil {
		retry = RetryPolicy{MaxRetries: bridgeCfg.MaxRetries, Delay: bridgeCfg.RetryDelay}
	}
	return &Engine{
		config: cfg,
		retry:  retry,
		l1:     l1,
		l2:     l2,
		store:  st,
		logger: logger,
		stopCh: make(chan struct{}),
	}
}

// Start starts the relayer engine
func (e *Engine) Start(ctx context.Context) error {
	e.logger.Info("Starting relayer engine",
		zap.String("l1", e.l1.Name),
		zap.String("l2", e.l2.Name))

	l1Source := NewQueueSource(e.l1, e.l2.Name, e.config.PollInterval, e.config.BatchSize)
	l2Dest := NewSideDestination(e.l2)
	l1Processor := NewProcessor(l1Source, l2Dest, e.store, e.logger, e.l1.Name+"_processor", e.retry)

	l2Source := NewQueueSource(e.l2, e.l1.Name, e.config.PollInterval, e.config.BatchSize)
	l1Dest := NewSideDestination(e.l1)
	l2Processor := NewProcessor(l2Source, l1Dest, e.store, e.logger, e.l2.Name+"_processor", e.retry)

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		if err := l1Processor.Start(ctx); err != nil && ctx.Err() == nil {
			e.logger.Error("L1 processor failed", zap.Error(err))
		}
	}()

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		if err := l2Processor.Start(ctx); err != nil && ctx.Err() == nil {
			e.logger.Error("L2 processor failed", zap.Error(err))
		}
	}()

	// Start periodic reconciliation
	e.wg.Add(1)
	go e.reconcile(ctx)

	e.logger.Info("Relayer engine started")
	return nil
}

// Stop stops the relayer engine
func (e *Engine) Stop() {
	e.logger.Info("Stopping relayer engine")
	close(e.stopCh)
	e.wg.Wait()
	e.logger.Info("Relayer engine stopped")
}

// reconcile periodically snapshots escrow levels and queue depths
func (e *Engine) reconcile(ctx context.Context) {
	defer e.wg.Done()

	interval := e.config.ReconcileEvery
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-e.stopCh:
			return
		case <-ticker.C:
			if err := e.runReconciliation(ctx); err != nil {
				e.logger.Error("Reconciliation failed", zap.Error(err))
			}
		}
	}
}

// runReconciliation records current escrow levels and pending message counts
func (e *Engine) runReconciliation(ctx context.Context) error {
	e.logger.Info("Running reconciliation")

	for _, side := range []*Side{e.l1, e.l2} {
		pending := side.Queue.Pending()
		metrics.PendingMessages.WithLabelValues(side.Name).Set(float64(pending))

		if side.Pool != nil {
			bal, _ := new(big.Float).SetInt(side.Pool.NativeBalance()).Float64()
			metrics.PoolBalance.WithLabelValues(side.Name, "native").Set(bal)
		}

		if side.Escrow == nil {
			continue
		}
		for pair, locked := range side.Escrow.Pairs() {
			snap := &store.EscrowSnapshot{
				Chain:       side.Name,
				LocalAsset:  pair.Local.Hex(),
				RemoteAsset: pair.Remote.Hex(),
				Locked:      decimal.NewFromBigInt(locked, 0),
				ObservedAt:  time.Now().UTC(),
			}
			if err := e.store.UpsertEscrowSnapshot(ctx, snap); err != nil {
				return err
			}
			lockedF, _ := snap.Locked.Float64()
			metrics.EscrowLocked.WithLabelValues(side.Name, pair.Local.Hex()+"/"+pair.Remote.Hex()).Set(lockedF)
		}
	}

	e.logger.Info("Reconciliation summary",
		zap.Int("l1_pending", e.l1.Queue.Pending()),
		zap.Int("l2_pending", e.l2.Queue.Pending()))

	return nil
}
