// Package store persists the middleware's view of bridge activity: one record
// per cross-chain transfer, escrow snapshots, and the fast-withdrawal nonce
// cache. The settlement state machines stay authoritative; the store is the
// queryable history the API and relayer read.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrTransferNotFound is returned when a transfer lookup finds no matching record.
var ErrTransferNotFound = errors.New("transfer not found")

// TransferStatus represents the current state of a cross-chain transfer
type TransferStatus string

const (
	TransferStatusPending   TransferStatus = "pending"
	TransferStatusRelayed   TransferStatus = "relayed"
	TransferStatusCompleted TransferStatus = "completed"
	TransferStatusFailed    TransferStatus = "failed"
)

// TransferKind distinguishes fungible, NFT and fast-path settlements
type TransferKind string

const (
	KindFungible TransferKind = "fungible"
	KindNFT      TransferKind = "nft"
	KindFast     TransferKind = "fast"
)

// Transfer represents one cross-chain transfer as observed by the relayer
type Transfer struct {
	ID               string
	Kind             TransferKind
	Status           TransferStatus
	SourceChain      string
	DestinationChain string
	LocalAsset       string
	RemoteAsset      string
	Sender           string
	Recipient        string
	Amount           decimal.Decimal
	TokenID          string
	ErrorMessage     string
	CreatedAt        time.Time
	UpdatedAt        time.Time
	CompletedAt      *time.Time
}

// EscrowSnapshot is one observed escrow level for an asset pair
type EscrowSnapshot struct {
	Chain       string
	LocalAsset  string
	RemoteAsset string
	Locked      decimal.Decimal
	ObservedAt  time.Time
}

// FastNonce mirrors an initiator's fast-withdrawal counter
type FastNonce struct {
	Chain     string
	Initiator string
	Nonce     int64
	UpdatedAt time.Time
}

// QueryOptions defines options for querying transfers
type QueryOptions struct {
	Status *TransferStatus
	Kind   *TransferKind
	Sender *string
	Limit  int
}

// QueryOption is a functional option for querying transfers
type QueryOption func(*QueryOptions)

// WithStatus sets the status filter
func WithStatus(status TransferStatus) QueryOption {
	return func(opts *QueryOptions) {
		opts.Status = &status
	}
}

// WithKind sets the kind filter
func WithKind(kind TransferKind) QueryOption {
	return func(opts *QueryOptions) {
		opts.Kind = &kind
	}
}

// WithSender sets the sender filter
func WithSender(sender string) QueryOption {
	return func(opts *QueryOptions) {
		opts.Sender = &sender
	}
}

// WithLimit caps the number of returned records
func WithLimit(limit int) QueryOption {
	return func(opts *QueryOptions) {
		opts.Limit = limit
	}
}

// Store defines the interface for bridge activity persistence
type Store interface {
	CreateTransfer(ctx context.Context, transfer *Transfer) error
	GetTransfer(ctx context.Context, id string) (*Transfer, error)
	UpdateTransferStatus(ctx context.Context, id string, status TransferStatus, errMsg string) error
	ListTransfers(ctx context.Context, opts ...QueryOption) ([]*Transfer, error)

	UpsertEscrowSnapshot(ctx context.Context, snap *EscrowSnapshot) error
	ListEscrowSnapshots(ctx context.Context, chain string) ([]*EscrowSnapshot, error)

	UpsertFastNonce(ctx context.Context, n *FastNonce) error
	GetFastNonce(ctx context.Context, chain, initiator string) (int64, error)
	ListFastNonces(ctx context.Context, chain string) ([]*FastNonce, error)
}
