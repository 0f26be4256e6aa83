package relayer

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/chainsafe/standard-bridge/pkg/escrow"
	"github.com/chainsafe/standard-bridge/pkg/ledger"
	"github.com/chainsafe/standard-bridge/pkg/messenger"
)

const defaultBatchSize = 32

// Side bundles one chain's transport endpoint and finalize handlers. Handlers
// are keyed by the target address messages are routed to, so the fungible and
// NFT bridges on the same chain each receive their own traffic.
type Side struct {
	Name     string
	Queue    *messenger.Queue
	Escrow   *escrow.Store
	Pool     *ledger.Pool
	Handlers map[common.Address]messenger.Handler
}

// QueueSource implements Source by polling a side's outbox
type QueueSource struct {
	side         *Side
	destination  string
	pollInterval time.Duration
	batchSize    int
}

// NewQueueSource creates a source that drains the side's outbox, at most
// batchSize messages per poll.
func NewQueueSource(side *Side, destination string, pollInterval time.Duration, batchSize int) *QueueSource {
	if pollInterval <= 0 {
		pollInterval = time.Second
	}
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &QueueSource{side: side, destination: destination, pollInterval: pollInterval, batchSize: batchSize}
}

func (s *QueueSource) GetChainID() string {
	return s.side.Name
}

func (s *QueueSource) StreamEvents(ctx context.Context) (<-chan *Event, <-chan error) {
	outCh := make(chan *Event)
	outErrCh := make(chan error)

	go func() {
		defer close(outCh)
		defer close(outErrCh)

		ticker := time.NewTicker(s.pollInterval)
		defer ticker.Stop()

		for {
			// Drain up to one batch before sleeping again.
			for n := 0; n < s.batchSize; n++ {
				msg, ok := s.side.Queue.Dequeue()
				if !ok {
					break
				}
				// The message nonce is unique per queue, so the derived ID is
				// stable across redelivery of the same message.
				event := &Event{
					ID:               fmt.Sprintf("%s-%d", s.side.Name, msg.Nonce),
					SourceChain:      s.side.Name,
					DestinationChain: s.destination,
					Message:          msg,
				}
				select {
				case outCh <- event:
				case <-ctx.Done():
					return
				}
			}

			select {
			case <-ticker.C:
			case <-ctx.Done():
				return
			}
		}
	}()

	return outCh, outErrCh
}

// SideDestination implements Destination by executing messages against the
// receiving side's registered handlers
type SideDestination struct {
	side *Side
}

// NewSideDestination creates a destination for the given side
func NewSideDestination(side *Side) *SideDestination {
	return &SideDestination{side: side}
}

func (d *SideDestination) GetChainID() string {
	return d.side.Name
}

func (d *SideDestination) SubmitTransfer(_ context.Context, event *Event) error {
	handler, ok := d.side.Handlers[event.Message.Target]
	if !ok {
		return fmt.Errorf("no handler registered for target %s on %s",
			event.Message.Target.Hex(), d.side.Name)
	}
	return d.side.Queue.Deliver(event.Message, handler)
}
