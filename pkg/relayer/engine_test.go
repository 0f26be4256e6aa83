package relayer

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/chainsafe/standard-bridge/internal/metrics"
	"github.com/chainsafe/standard-bridge/pkg/chain"
	"github.com/chainsafe/standard-bridge/pkg/config"
	"github.com/chainsafe/standard-bridge/pkg/ledger"
	"github.com/chainsafe/standard-bridge/pkg/messenger"
	"github.com/chainsafe/standard-bridge/pkg/roles"
	"github.com/chainsafe/standard-bridge/pkg/store"
)

func TestProcessor_ProcessEvent(t *testing.T) {
	var created *store.Transfer
	mockStore := &MockStore{
		GetTransferFunc: func(ctx context.Context, id string) (*store.Transfer, error) {
			return nil, nil // Not found, new transfer
		},
		CreateTransferFunc: func(ctx context.Context, transfer *store.Transfer) error {
			created = transfer
			return nil
		},
		UpdateTransferStatusFunc: func(ctx context.Context, id string, status store.TransferStatus, errMsg string) error {
			if id != "event-1" {
				t.Errorf("Expected transfer ID event-1, got %s", id)
			}
			if status != store.TransferStatusCompleted {
				t.Errorf("Expected status Completed, got %s", status)
			}
			return nil
		},
	}

	mockSource := &MockSource{
		GetChainIDFunc: func() string { return "l1" },
	}

	delivered := false
	mockDest := &MockDestination{
		GetChainIDFunc: func() string { return "l2" },
		SubmitTransferFunc: func(ctx context.Context, event *Event) error {
			if event.ID != "event-1" {
				t.Errorf("Expected event ID event-1, got %s", event.ID)
			}
			delivered = true
			return nil
		},
	}

	processor := NewProcessor(mockSource, mockDest, mockStore, zap.NewNop(), "test_processor", RetryPolicy{})

	event := &Event{
		ID:               "event-1",
		SourceChain:      "l1",
		DestinationChain: "l2",
		Message: messenger.Message{
			Kind:   messenger.KindFinalizeFungible,
			From:   common.HexToAddress("0x01"),
			To:     common.HexToAddress("0x02"),
			Amount: big.NewInt(100),
		},
	}

	if err := processor.processEvent(context.Background(), event); err != nil {
		t.Errorf("processEvent failed: %v", err)
	}
	if !delivered {
		t.Error("Expected message to be delivered")
	}
	if created == nil {
		t.Fatal("Expected transfer record to be created")
	}
	if created.Kind != store.KindFungible {
		t.Errorf("Expected fungible kind, got %s", created.Kind)
	}
	if created.Amount.String() != "100" {
		t.Errorf("Expected amount 100, got %s", created.Amount)
	}
}

func TestProcessor_ProcessEvent_AlreadyProcessed(t *testing.T) {
	mockStore := &MockStore{
		GetTransferFunc: func(ctx context.Context, id string) (*store.Transfer, error) {
			return &store.Transfer{ID: id, Status: store.TransferStatusCompleted}, nil
		},
		CreateTransferFunc: func(ctx context.Context, transfer *store.Transfer) error {
			t.Error("CreateTransfer should not be called for a processed event")
			return nil
		},
	}

	mockDest := &MockDestination{
		SubmitTransferFunc: func(ctx context.Context, event *Event) error {
			t.Error("SubmitTransfer should not be called for a processed event")
			return nil
		},
	}

	processor := NewProcessor(&MockSource{}, mockDest, mockStore, zap.NewNop(), "test_processor", RetryPolicy{})

	event := &Event{ID: "event-1", Message: messenger.Message{Amount: big.NewInt(1)}}
	if err := processor.processEvent(context.Background(), event); err != nil {
		t.Errorf("processEvent failed: %v", err)
	}
}

func TestProcessor_ProcessEvent_DeliveryFailure(t *testing.T) {
	var recordedStatus store.TransferStatus
	var recordedErr string
	mockStore := &MockStore{
		UpdateTransferStatusFunc: func(ctx context.Context, id string, status store.TransferStatus, errMsg string) error {
			recordedStatus = status
			recordedErr = errMsg
			return nil
		},
	}

	mockDest := &MockDestination{
		GetChainIDFunc: func() string { return "l2" },
		SubmitTransferFunc: func(ctx context.Context, event *Event) error {
			return errors.New("handler rejected message")
		},
	}

	processor := NewProcessor(&MockSource{GetChainIDFunc: func() string { return "l1" }}, mockDest, mockStore, zap.NewNop(), "test_processor", RetryPolicy{})

	event := &Event{ID: "event-1", Message: messenger.Message{Amount: big.NewInt(1)}}
	err := processor.processEvent(context.Background(), event)
	if err == nil {
		t.Fatal("Expected processEvent to fail")
	}
	if recordedStatus != store.TransferStatusFailed {
		t.Errorf("Expected status Failed, got %s", recordedStatus)
	}
	if recordedErr == "" {
		t.Error("Expected failure message to be recorded")
	}
}

func TestProcessor_RetriesDeliveryUntilSuccess(t *testing.T) {
	var completed bool
	mockStore := &MockStore{
		UpdateTransferStatusFunc: func(ctx context.Context, id string, status store.TransferStatus, errMsg string) error {
			if status == store.TransferStatusCompleted {
				completed = true
			}
			return nil
		},
	}

	attempts := 0
	mockDest := &MockDestination{
		GetChainIDFunc: func() string { return "l2" },
		SubmitTransferFunc: func(ctx context.Context, event *Event) error {
			attempts++
			if attempts < 3 {
				return errors.New("handler rejected message")
			}
			return nil
		},
	}

	retry := RetryPolicy{MaxRetries: 2, Delay: time.Millisecond}
	processor := NewProcessor(&MockSource{GetChainIDFunc: func() string { return "l1" }}, mockDest, mockStore, zap.NewNop(), "test_processor", retry)

	event := &Event{ID: "event-1", Message: messenger.Message{Amount: big.NewInt(1)}}
	if err := processor.processEvent(context.Background(), event); err != nil {
		t.Fatalf("processEvent failed: %v", err)
	}
	if attempts != 3 {
		t.Errorf("Expected 3 delivery attempts, got %d", attempts)
	}
	if !completed {
		t.Error("Expected transfer recorded as completed after retries")
	}
}

func TestProcessor_RetriesExhausted(t *testing.T) {
	var recordedStatus store.TransferStatus
	mockStore := &MockStore{
		UpdateTransferStatusFunc: func(ctx context.Context, id string, status store.TransferStatus, errMsg string) error {
			recordedStatus = status
			return nil
		},
	}

	attempts := 0
	mockDest := &MockDestination{
		GetChainIDFunc: func() string { return "l2" },
		SubmitTransferFunc: func(ctx context.Context, event *Event) error {
			attempts++
			return errors.New("handler rejected message")
		},
	}

	retry := RetryPolicy{MaxRetries: 1, Delay: time.Millisecond}
	processor := NewProcessor(&MockSource{GetChainIDFunc: func() string { return "l1" }}, mockDest, mockStore, zap.NewNop(), "test_processor", retry)

	event := &Event{ID: "event-1", Message: messenger.Message{Amount: big.NewInt(1)}}
	if err := processor.processEvent(context.Background(), event); err == nil {
		t.Fatal("Expected processEvent to fail once retries are exhausted")
	}
	if attempts != 2 {
		t.Errorf("Expected 2 delivery attempts, got %d", attempts)
	}
	if recordedStatus != store.TransferStatusFailed {
		t.Errorf("Expected status Failed, got %s", recordedStatus)
	}
}

func TestQueueSource_StreamEvents(t *testing.T) {
	queue := messenger.NewQueue(common.HexToAddress("0xAA"))
	side := &Side{Name: "l1", Queue: queue}

	_ = queue.SendMessage(common.HexToAddress("0xB1"), messenger.Message{
		Target: common.HexToAddress("0xB2"),
		Kind:   messenger.KindFinalizeFungible,
		Amount: big.NewInt(42),
	})

	source := NewQueueSource(side, "l2", 10*time.Millisecond, 0)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	eventCh, _ := source.StreamEvents(ctx)

	select {
	case event := <-eventCh:
		if event.SourceChain != "l1" {
			t.Errorf("Expected SourceChain l1, got %s", event.SourceChain)
		}
		if event.DestinationChain != "l2" {
			t.Errorf("Expected DestinationChain l2, got %s", event.DestinationChain)
		}
		if event.Message.Amount.Cmp(big.NewInt(42)) != 0 {
			t.Errorf("Expected amount 42, got %s", event.Message.Amount)
		}
		if event.Message.Sender != common.HexToAddress("0xB1") {
			t.Errorf("Expected sender to be stamped, got %s", event.Message.Sender.Hex())
		}
	case <-ctx.Done():
		t.Error("Timed out waiting for event")
	}
}

func TestQueueSource_EventIDsSurviveRedelivery(t *testing.T) {
	sender := common.HexToAddress("0xB1")
	send := func(q *messenger.Queue) {
		for i := int64(1); i <= 2; i++ {
			if err := q.SendMessage(sender, messenger.Message{Amount: big.NewInt(i)}); err != nil {
				t.Fatalf("SendMessage failed: %v", err)
			}
		}
	}

	// Two queues sending the same traffic mint the same event IDs, so a
	// transfer recorded before a crash is recognized after the replay.
	var ids [2][]string
	for run := 0; run < 2; run++ {
		queue := messenger.NewQueue(common.HexToAddress("0xAA"))
		send(queue)
		side := &Side{Name: "l1", Queue: queue}
		source := NewQueueSource(side, "l2", 10*time.Millisecond, 0)

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		eventCh, _ := source.StreamEvents(ctx)
		for i := 0; i < 2; i++ {
			select {
			case event := <-eventCh:
				ids[run] = append(ids[run], event.ID)
			case <-ctx.Done():
				t.Fatal("Timed out waiting for event")
			}
		}
		cancel()
	}

	if ids[0][0] == ids[0][1] {
		t.Errorf("Expected distinct IDs for distinct messages, got %q twice", ids[0][0])
	}
	for i := 0; i < 2; i++ {
		if ids[0][i] != ids[1][i] {
			t.Errorf("Expected stable event ID, got %q then %q", ids[0][i], ids[1][i])
		}
	}
}

func TestQueueSource_DrainsAtMostOneBatchPerPoll(t *testing.T) {
	queue := messenger.NewQueue(common.HexToAddress("0xAA"))
	for i := int64(1); i <= 3; i++ {
		if err := queue.SendMessage(common.HexToAddress("0xB1"), messenger.Message{Amount: big.NewInt(i)}); err != nil {
			t.Fatalf("SendMessage failed: %v", err)
		}
	}

	side := &Side{Name: "l1", Queue: queue}
	source := NewQueueSource(side, "l2", time.Hour, 2)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	eventCh, _ := source.StreamEvents(ctx)

	for i := 0; i < 2; i++ {
		select {
		case <-eventCh:
		case <-time.After(time.Second):
			t.Fatal("Timed out waiting for batched event")
		}
	}

	// The third message waits for the next poll tick.
	select {
	case event := <-eventCh:
		t.Errorf("Expected batch cap to hold back the third message, got %s", event.ID)
	case <-time.After(50 * time.Millisecond):
	}
	if queue.Pending() != 1 {
		t.Errorf("Expected 1 message left in the outbox, got %d", queue.Pending())
	}
}

func TestRunReconciliation_RecordsPoolBalance(t *testing.T) {
	ch := chain.New("l1")
	reg := roles.NewRegistry(common.HexToAddress("0xAD"))
	pool := ledger.NewPool(common.HexToAddress("0x51"), ch, reg)
	ch.Mint(pool.Address(), big.NewInt(12345))

	l1 := &Side{Name: "l1", Queue: messenger.NewQueue(common.HexToAddress("0x41")), Pool: pool}
	l2 := &Side{Name: "l2", Queue: messenger.NewQueue(common.HexToAddress("0x42"))}

	engine := NewEngine(&config.RelayerConfig{}, nil, l1, l2, &MockStore{}, zap.NewNop())
	if err := engine.runReconciliation(context.Background()); err != nil {
		t.Fatalf("runReconciliation failed: %v", err)
	}

	if got := testutil.ToFloat64(metrics.PoolBalance.WithLabelValues("l1", "native")); got != 12345 {
		t.Errorf("Expected pool balance gauge 12345, got %f", got)
	}
}

func TestSideDestination_RoutesByTarget(t *testing.T) {
	queue := messenger.NewQueue(common.HexToAddress("0xAA"))
	fungible := &MockHandler{}
	nft := &MockHandler{}

	fungibleAddr := common.HexToAddress("0xF1")
	nftAddr := common.HexToAddress("0xF2")
	side := &Side{
		Name:  "l2",
		Queue: queue,
		Handlers: map[common.Address]messenger.Handler{
			fungibleAddr: fungible,
			nftAddr:      nft,
		},
	}

	dest := NewSideDestination(side)

	event := &Event{
		ID: "event-1",
		Message: messenger.Message{
			Target: nftAddr,
			Kind:   messenger.KindFinalizeNFT,
		},
	}
	if err := dest.SubmitTransfer(context.Background(), event); err != nil {
		t.Fatalf("SubmitTransfer failed: %v", err)
	}
	if len(nft.Received) != 1 {
		t.Errorf("Expected NFT handler to receive 1 message, got %d", len(nft.Received))
	}
	if len(fungible.Received) != 0 {
		t.Errorf("Expected fungible handler to receive no messages, got %d", len(fungible.Received))
	}
}

func TestSideDestination_UnknownTarget(t *testing.T) {
	side := &Side{
		Name:     "l2",
		Queue:    messenger.NewQueue(common.HexToAddress("0xAA")),
		Handlers: map[common.Address]messenger.Handler{},
	}
	dest := NewSideDestination(side)

	event := &Event{ID: "event-1", Message: messenger.Message{Target: common.HexToAddress("0xDEAD")}}
	if err := dest.SubmitTransfer(context.Background(), event); err == nil {
		t.Error("Expected error for unregistered target")
	}
}

func TestSideDestination_XDomainSenderDuringDelivery(t *testing.T) {
	queue := messenger.NewQueue(common.HexToAddress("0xAA"))
	target := common.HexToAddress("0xF1")
	origin := common.HexToAddress("0xB1")

	handler := &MockHandler{
		HandleMessageFunc: func(msg messenger.Message) error {
			sender, err := queue.XDomainSender()
			if err != nil {
				t.Errorf("XDomainSender failed during delivery: %v", err)
			}
			if sender != origin {
				t.Errorf("Expected xdomain sender %s, got %s", origin.Hex(), sender.Hex())
			}
			return nil
		},
	}

	side := &Side{
		Name:     "l2",
		Queue:    queue,
		Handlers: map[common.Address]messenger.Handler{target: handler},
	}
	dest := NewSideDestination(side)

	event := &Event{
		ID:      "event-1",
		Message: messenger.Message{Target: target, Sender: origin},
	}
	if err := dest.SubmitTransfer(context.Background(), event); err != nil {
		t.Fatalf("SubmitTransfer failed: %v", err)
	}

	if _, err := queue.XDomainSender(); err == nil {
		t.Error("Expected XDomainSender to fail outside of delivery")
	}
}
