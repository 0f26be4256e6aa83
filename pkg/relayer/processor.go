package relayer

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/chainsafe/standard-bridge/internal/metrics"
	"github.com/chainsafe/standard-bridge/pkg/messenger"
	"github.com/chainsafe/standard-bridge/pkg/store"
)

// Event represents one outbound bridge message picked up from a source chain
type Event struct {
	ID               string
	SourceChain      string
	DestinationChain string
	Message          messenger.Message
}

// Source defines the interface for fetching outbound messages from a chain
type Source interface {
	// StreamEvents streams outbound messages as they appear in the outbox
	StreamEvents(ctx context.Context) (<-chan *Event, <-chan error)
	// GetChainID returns the chain ID
	GetChainID() string
}

// Destination defines the interface for delivering messages to a chain
type Destination interface {
	// SubmitTransfer delivers a message to the destination chain
	SubmitTransfer(ctx context.Context, event *Event) error
	// GetChainID returns the chain ID
	GetChainID() string
}

// BridgeStore defines the store operations the relayer needs
type BridgeStore interface {
	CreateTransfer(ctx context.Context, transfer *store.Transfer) error
	GetTransfer(ctx context.Context, id string) (*store.Transfer, error)
	UpdateTransferStatus(ctx context.Context, id string, status store.TransferStatus, errMsg string) error
	UpsertEscrowSnapshot(ctx context.Context, snap *store.EscrowSnapshot) error
}

// RetryPolicy bounds redelivery attempts for a failed submission. A zero
// policy means a single attempt with no retries.
type RetryPolicy struct {
	MaxRetries int
	Delay      time.Duration
}

// Processor moves messages from a Source to a Destination, recording each one
type Processor struct {
	source      Source
	destination Destination
	store       BridgeStore
	logger      *zap.Logger
	metricsName string
	retry       RetryPolicy
}

// NewProcessor creates a new transfer processor
func NewProcessor(source Source, destination Destination, st BridgeStore, logger *zap.Logger, metricsName string, retry RetryPolicy) *Processor {
	return &Processor{
		source:      source,
		destination: destination,
		store:       st,
		logger:      logger,
		metricsName: metricsName,
		retry:       retry,
	}
}

// Start starts the processor and blocks until the source closes or ctx ends
func (p *Processor) Start(ctx context.Context) error {
	p.logger.Info("Starting processor",
		zap.String("source", p.source.GetChainID()),
		zap.String("destination", p.destination.GetChainID()))

	eventCh, errCh := p.source.StreamEvents(ctx)

	for {
		select {
		case event, ok := <-eventCh:
			if !ok {
				return nil
			}
			if err := p.processEvent(ctx, event); err != nil {
				p.logger.Error("Failed to process event",
					zap.String("event_id", event.ID),
					zap.Error(err))
				metrics.ErrorsTotal.WithLabelValues(p.metricsName, "processing").Inc()
			}
		case err := <-errCh:
			if err != nil {
				return fmt.Errorf("source stream error: %w", err)
			}
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// processEvent handles a single outbound message
func (p *Processor) processEvent(ctx context.Context, event *Event) error {
	// Check if already processed
	existing, _ := p.store.GetTransfer(ctx, event.ID)
	if existing != nil {
		p.logger.Debug("Event already processed", zap.String("event_id", event.ID))
		return nil
	}

	transfer := toTransfer(event)
	if err := p.store.CreateTransfer(ctx, transfer); err != nil {
		return fmt.Errorf("failed to create transfer: %w", err)
	}

	p.logger.Info("Relaying message",
		zap.String("id", event.ID),
		zap.String("direction", p.direction()),
		zap.String("to", event.Message.To.Hex()))

	start := time.Now()
	if err := p.deliver(ctx, event); err != nil {
		p.logger.Error("Failed to deliver message",
			zap.String("id", event.ID),
			zap.Error(err))

		if uerr := p.store.UpdateTransferStatus(ctx, event.ID, store.TransferStatusFailed, err.Error()); uerr != nil {
			p.logger.Error("Failed to record failure", zap.String("id", event.ID), zap.Error(uerr))
		}
		metrics.MessagesRelayed.WithLabelValues(p.direction(), "failed").Inc()
		return fmt.Errorf("delivery failed: %w", err)
	}

	if err := p.store.UpdateTransferStatus(ctx, event.ID, store.TransferStatusCompleted, ""); err != nil {
		p.logger.Error("Failed to record completion", zap.String("id", event.ID), zap.Error(err))
	}

	metrics.MessagesRelayed.WithLabelValues(p.direction(), "completed").Inc()
	metrics.RelayDuration.WithLabelValues(p.direction()).Observe(time.Since(start).Seconds())
	amount, _ := transfer.Amount.Float64()
	metrics.TransferAmount.WithLabelValues(p.direction(), transfer.LocalAsset).Observe(amount)

	p.logger.Info("Message delivered",
		zap.String("id", event.ID),
		zap.String("destination", p.destination.GetChainID()))

	return nil
}

// deliver submits the event, retrying per the configured policy. Each retry
// waits out the delay unless the context ends first.
func (p *Processor) deliver(ctx context.Context, event *Event) error {
	var err error
	for attempt := 0; attempt <= p.retry.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(p.retry.Delay):
			case <-ctx.Done():
				return ctx.Err()
			}
			p.logger.Warn("Retrying delivery",
				zap.String("id", event.ID),
				zap.Int("attempt", attempt))
		}
		if err = p.destination.SubmitTransfer(ctx, event); err == nil {
			return nil
		}
	}
	return err
}

func (p *Processor) direction() string {
	return p.source.GetChainID() + "_to_" + p.destination.GetChainID()
}

// toTransfer maps an outbound message to its persistent record
func toTransfer(event *Event) *store.Transfer {
	kind := store.KindFungible
	tokenID := ""
	amount := "0"
	if event.Message.Kind == messenger.KindFinalizeNFT {
		kind = store.KindNFT
		if event.Message.TokenID != nil {
			tokenID = event.Message.TokenID.String()
		}
	} else if event.Message.Amount != nil {
		amount = event.Message.Amount.String()
	}

	t := &store.Transfer{
		ID:               event.ID,
		Kind:             kind,
		Status:           store.TransferStatusPending,
		SourceChain:      event.SourceChain,
		DestinationChain: event.DestinationChain,
		LocalAsset:       event.Message.RemoteAsset.Hex(),
		RemoteAsset:      event.Message.LocalAsset.Hex(),
		Sender:           event.Message.From.Hex(),
		Recipient:        event.Message.To.Hex(),
		TokenID:          tokenID,
	}
	// Amounts originate from big.Int strings, always parseable.
	t.Amount, _ = decimal.NewFromString(amount)
	return t
}
