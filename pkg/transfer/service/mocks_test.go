package service

import (
	"context"

	"github.com/chainsafe/standard-bridge/pkg/store"
)

// MockStore is a functional mock of store.Store.
type MockStore struct {
	CreateTransferFunc       func(ctx context.Context, transfer *store.Transfer) error
	GetTransferFunc          func(ctx context.Context, id string) (*store.Transfer, error)
	UpdateTransferStatusFunc func(ctx context.Context, id string, status store.TransferStatus, errMsg string) error
	ListTransfersFunc        func(ctx context.Context, opts ...store.QueryOption) ([]*store.Transfer, error)
	UpsertEscrowSnapshotFunc func(ctx context.Context, snap *store.EscrowSnapshot) error
	ListEscrowSnapshotsFunc  func(ctx context.Context, chain string) ([]*store.EscrowSnapshot, error)
	UpsertFastNonceFunc      func(ctx context.Context, n *store.FastNonce) error
	GetFastNonceFunc         func(ctx context.Context, chain, initiator string) (int64, error)
	ListFastNoncesFunc       func(ctx context.Context, chain string) ([]*store.FastNonce, error)
}

func (m *MockStore) CreateTransfer(ctx context.Context, transfer *store.Transfer) error {
	return m.CreateTransferFunc(ctx, transfer)
}

func (m *MockStore) GetTransfer(ctx context.Context, id string) (*store.Transfer, error) {
	return m.GetTransferFunc(ctx, id)
}

func (m *MockStore) UpdateTransferStatus(ctx context.Context, id string, status store.TransferStatus, errMsg string) error {
	return m.UpdateTransferStatusFunc(ctx, id, status, errMsg)
}

func (m *MockStore) ListTransfers(ctx context.Context, opts ...store.QueryOption) ([]*store.Transfer, error) {
	return m.ListTransfersFunc(ctx, opts...)
}

func (m *MockStore) UpsertEscrowSnapshot(ctx context.Context, snap *store.EscrowSnapshot) error {
	return m.UpsertEscrowSnapshotFunc(ctx, snap)
}

func (m *MockStore) ListEscrowSnapshots(ctx context.Context, chain string) ([]*store.EscrowSnapshot, error) {
	return m.ListEscrowSnapshotsFunc(ctx, chain)
}

func (m *MockStore) UpsertFastNonce(ctx context.Context, n *store.FastNonce) error {
	return m.UpsertFastNonceFunc(ctx, n)
}

func (m *MockStore) GetFastNonce(ctx context.Context, chain, initiator string) (int64, error) {
	return m.GetFastNonceFunc(ctx, chain, initiator)
}

func (m *MockStore) ListFastNonces(ctx context.Context, chain string) ([]*store.FastNonce, error) {
	return m.ListFastNoncesFunc(ctx, chain)
}

var _ store.Store = (*MockStore)(nil)
