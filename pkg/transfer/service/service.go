// Package service exposes the read side of the bridge: transfer history and
// escrow snapshots recorded by the relayer.
package service

import (
	"context"
	"errors"
	"fmt"

	apperrors "github.com/chainsafe/standard-bridge/pkg/app/errors"
	"github.com/chainsafe/standard-bridge/pkg/store"
)

// Service defines the interface for the transfer query business logic
type Service interface {
	GetTransfer(ctx context.Context, id string) (*store.Transfer, error)
	ListTransfers(ctx context.Context, opts ...store.QueryOption) ([]*store.Transfer, error)
	ListEscrowSnapshots(ctx context.Context, chain string) ([]*store.EscrowSnapshot, error)
}

type transferService struct {
	store store.Store
}

// NewService creates a new transfer query service
func NewService(st store.Store) Service {
	return &transferService{store: st}
}

func (s *transferService) GetTransfer(ctx context.Context, id string) (*store.Transfer, error) {
	transfer, err := s.store.GetTransfer(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrTransferNotFound) {
			return nil, apperrors.ResourceNotFoundError(err, "transfer not found")
		}
		return nil, fmt.Errorf("failed to load transfer: %w", err)
	}
	return transfer, nil
}

func (s *transferService) ListTransfers(ctx context.Context, opts ...store.QueryOption) ([]*store.Transfer, error) {
	transfers, err := s.store.ListTransfers(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transfers: %w", err)
	}
	return transfers, nil
}

func (s *transferService) ListEscrowSnapshots(ctx context.Context, chain string) ([]*store.EscrowSnapshot, error) {
	snapshots, err := s.store.ListEscrowSnapshots(ctx, chain)
	if err != nil {
		return nil, fmt.Errorf("failed to list escrow snapshots: %w", err)
	}
	return snapshots, nil
}
