package relayer

import (
	"context"

	"github.com/chainsafe/standard-bridge/pkg/messenger"
	"github.com/chainsafe/standard-bridge/pkg/store"
)

// MockStore is a mock implementation of BridgeStore
type MockStore struct {
	GetTransferFunc          func(ctx context.Context, id string) (*store.Transfer, error)
	CreateTransferFunc       func(ctx context.Context, transfer *store.Transfer) error
	UpdateTransferStatusFunc func(ctx context.Context, id string, status store.TransferStatus, errMsg string) error
	UpsertEscrowSnapshotFunc func(ctx context.Context, snap *store.EscrowSnapshot) error
}

func (m *MockStore) GetTransfer(ctx context.Context, id string) (*store.Transfer, error) {
	if m.GetTransferFunc != nil {
		return m.GetTransferFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockStore) CreateTransfer(ctx context.Context, transfer *store.Transfer) error {
	if m.CreateTransferFunc != nil {
		return m.CreateTransferFunc(ctx, transfer)
	}
	return nil
}

func (m *MockStore) UpdateTransferStatus(ctx context.Context, id string, status store.TransferStatus, errMsg string) error {
	if m.UpdateTransferStatusFunc != nil {
		return m.UpdateTransferStatusFunc(ctx, id, status, errMsg)
	}
	return nil
}

func (m *MockStore) UpsertEscrowSnapshot(ctx context.Context, snap *store.EscrowSnapshot) error {
	if m.UpsertEscrowSnapshotFunc != nil {
		return m.UpsertEscrowSnapshotFunc(ctx, snap)
	}
	return nil
}

// MockSource is a mock implementation of Source
type MockSource struct {
	StreamEventsFunc func(ctx context.Context) (<-chan *Event, <-chan error)
	GetChainIDFunc   func() string
}

func (m *MockSource) StreamEvents(ctx context.Context) (<-chan *Event, <-chan error) {
	if m.StreamEventsFunc != nil {
		return m.StreamEventsFunc(ctx)
	}
	return nil, nil
}

func (m *MockSource) GetChainID() string {
	if m.GetChainIDFunc != nil {
		return m.GetChainIDFunc()
	}
	return ""
}

// MockDestination is a mock implementation of Destination
type MockDestination struct {
	SubmitTransferFunc func(ctx context.Context, event *Event) error
	GetChainIDFunc     func() string
}

func (m *MockDestination) SubmitTransfer(ctx context.Context, event *Event) error {
	if m.SubmitTransferFunc != nil {
		return m.SubmitTransferFunc(ctx, event)
	}
	return nil
}

func (m *MockDestination) GetChainID() string {
	if m.GetChainIDFunc != nil {
		return m.GetChainIDFunc()
	}
	return ""
}

// MockHandler is a mock implementation of messenger.Handler
type MockHandler struct {
	HandleMessageFunc func(msg messenger.Message) error
	Received          []messenger.Message
}

func (m *MockHandler) HandleMessage(msg messenger.Message) error {
	m.Received = append(m.Received, msg)
	if m.HandleMessageFunc != nil {
		return m.HandleMessageFunc(msg)
	}
	return nil
}
