package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"

	"github.com/chainsafe/standard-bridge/pkg/store/dao"
)

type pgStore struct {
	db *bun.DB
}

// NewStore creates a new postgres implementation of the bridge activity store
func NewStore(db *bun.DB) Store {
	return &pgStore{db: db}
}


func (s *pgStore) CreateTransfer(ctx context.Context, transfer *Transfer) error {
	if transfer.ID == "" {
		transfer.ID = uuid.NewString()
	}
	d := toTransferDao(transfer)

	_, err := s.db.NewInsert().
		Model(d).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create transfer: %w", err)
	}

	return nil
}

func (s *pgStore) GetTransfer(ctx context.Context, id string) (*Transfer, error) {
	d := new(dao.TransferDao)
	err := s.db.NewSelect().
		Model(d).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTransferNotFound
		}
		return nil, fmt.Errorf("failed to get transfer: %w", err)
	}
	return toTransfer(d)
}

func (s *pgStore) UpdateTransferStatus(ctx context.Context, id string, status TransferStatus, errMsg string) error {
	q := s.db.NewUpdate().
		Model((*dao.TransferDao)(nil)).
		Set("status = ?", string(status)).
		Set("updated_at = NOW()").
		Where("id = ?", id)

	if errMsg != "" {
		q = q.Set("error_message = ?", errMsg)
	}
	if status == TransferStatusCompleted {
		q = q.Set("completed_at = NOW()")
	}

	res, err := q.Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update transfer status: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrTransferNotFound
	}
	return nil
}

func (s *pgStore) ListTransfers(ctx context.Context, opts ...QueryOption) ([]*Transfer, error) {
	options := &QueryOptions{Limit: 100}
	for _, opt := range opts {
		opt(options)
	}

	var daos []dao.TransferDao
	query := s.db.NewSelect().Model(&daos)

	if options.Status != nil {
		query = query.Where("status = ?", string(*options.Status))
	}
	if options.Kind != nil {
		query = query.Where("kind = ?", string(*options.Kind))
	}
	if options.Sender != nil {
		query = query.Where("sender = ?", *options.Sender)
	}

	err := query.
		Order("created_at DESC").
		Limit(options.Limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list transfers: %w", err)
	}

	transfers := make([]*Transfer, len(daos))
	for i := range daos {
		transfers[i], err = toTransfer(&daos[i])
		if err != nil {
			return nil, err
		}
	}
	return transfers, nil
}

func (s *pgStore) UpsertEscrowSnapshot(ctx context.Context, snap *EscrowSnapshot) error {
	d := &dao.EscrowSnapshotDao{
		Chain:       snap.Chain,
		LocalAsset:  snap.LocalAsset,
		RemoteAsset: snap.RemoteAsset,
		Locked:      snap.Locked.String(),
		ObservedAt:  snap.ObservedAt,
	}
	_, err := s.db.NewInsert().
		Model(d).
		On("CONFLICT (chain, local_asset, remote_asset) DO UPDATE").
		Set("locked = EXCLUDED.locked").
		Set("observed_at = NOW()").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert escrow snapshot: %w", err)
	}
	return nil
}

func (s *pgStore) ListEscrowSnapshots(ctx context.Context, chain string) ([]*EscrowSnapshot, error) {
	var daos []dao.EscrowSnapshotDao
	err := s.db.NewSelect().
		Model(&daos).
		Where("chain = ?", chain).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list escrow snapshots: %w", err)
	}

	snaps := make([]*EscrowSnapshot, len(daos))
	for i := range daos {
		locked, err := decimal.NewFromString(daos[i].Locked)
		if err != nil {
			return nil, fmt.Errorf("corrupt locked amount %q: %w", daos[i].Locked, err)
		}
		snaps[i] = &EscrowSnapshot{
			Chain:       daos[i].Chain,
			LocalAsset:  daos[i].LocalAsset,
			RemoteAsset: daos[i].RemoteAsset,
			Locked:      locked,
			ObservedAt:  daos[i].ObservedAt,
		}
	}
	return snaps, nil
}

func (s *pgStore) UpsertFastNonce(ctx context.Context, n *FastNonce) error {
	d := &dao.FastNonceDao{
		Chain:     n.Chain,
		Initiator: n.Initiator,
		Nonce:     n.Nonce,
		UpdatedAt: n.UpdatedAt,
	}
	_, err := s.db.NewInsert().
		Model(d).
		On("CONFLICT (chain, initiator) DO UPDATE").
		Set("nonce = EXCLUDED.nonce").
		Set("updated_at = NOW()").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert fast nonce: %w", err)
	}
	return nil
}

func (s *pgStore) GetFastNonce(ctx context.Context, chain, initiator string) (int64, error) {
	d := new(dao.FastNonceDao)
	err := s.db.NewSelect().
		Model(d).
		Where("chain = ?", chain).
		Where("initiator = ?", initiator).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get fast nonce: %w", err)
	}
	return d.Nonce, nil
}

func (s *pgStore) ListFastNonces(ctx context.Context, chain string) ([]*FastNonce, error) {
	var daos []dao.FastNonceDao
	err := s.db.NewSelect().
		Model(&daos).
		Where("chain = ?", chain).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list fast nonces: %w", err)
	}

	nonces := make([]*FastNonce, len(daos))
	for i := range daos {
		nonces[i] = &FastNonce{
			Chain:     daos[i].Chain,
			Initiator: daos[i].Initiator,
			Nonce:     daos[i].Nonce,
			UpdatedAt: daos[i].UpdatedAt,
		}
	}
	return nonces, nil
}

// toTransferDao converts a Transfer to TransferDao.
func toTransferDao(t *Transfer) *dao.TransferDao {
	d := &dao.TransferDao{
		ID:               t.ID,
		Kind:             string(t.Kind),
		Status:           string(t.Status),
		SourceChain:      t.SourceChain,
		DestinationChain: t.DestinationChain,
		LocalAsset:       t.LocalAsset,
		RemoteAsset:      t.RemoteAsset,
		Sender:           t.Sender,
		Recipient:        t.Recipient,
		Amount:           t.Amount.String(),
		CreatedAt:        t.CreatedAt,
		UpdatedAt:        t.UpdatedAt,
	}
	if t.TokenID != "" {
		d.TokenID = &t.TokenID
	}
	if t.ErrorMessage != "" {
		d.ErrorMessage = &t.ErrorMessage
	}
	if t.CompletedAt != nil {
		d.CompletedAt = t.CompletedAt
	}
	return d
}

// toTransfer converts a TransferDao to Transfer.
func toTransfer(d *dao.TransferDao) (*Transfer, error) {
	amount, err := decimal.NewFromString(d.Amount)
	if err != nil {
		return nil, fmt.Errorf("corrupt amount %q: %w", d.Amount, err)
	}
	t := &Transfer{
		ID:               d.ID,
		Kind:             TransferKind(d.Kind),
		Status:           TransferStatus(d.Status),
		SourceChain:      d.SourceChain,
		DestinationChain: d.DestinationChain,
		LocalAsset:       d.LocalAsset,
		RemoteAsset:      d.RemoteAsset,
		Sender:           d.Sender,
		Recipient:        d.Recipient,
		Amount:           amount,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}
	if d.TokenID != nil {
		t.TokenID = *d.TokenID
	}
	if d.ErrorMessage != nil {
		t.ErrorMessage = *d.ErrorMessage
	}
	if d.CompletedAt != nil {
		t.CompletedAt = d.CompletedAt
	}
	return t, nil
}

var _ Store = (*pgStore)(nil)
