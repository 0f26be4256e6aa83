package store

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/chainsafe/standard-bridge/pkg/pgutil"
	mghelper "github.com/chainsafe/standard-bridge/pkg/pgutil/migrations"
	"github.com/chainsafe/standard-bridge/pkg/store/dao"
)

func setupStore(t *testing.T) (context.Context, Store) {
	t.Helper()
	requireDockerAccess(t)

	ctx := context.Background()
	db, cleanup := pgutil.SetupTestDB(t)
	t.Cleanup(cleanup)

	err := mghelper.CreateSchema(ctx, db, &dao.TransferDao{}, &dao.EscrowSnapshotDao{}, &dao.FastNonceDao{})
	if err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	return ctx, NewStore(db)
}

func requireDockerAccess(t *testing.T) {
	t.Helper()

	candidates := []string{
		"/var/run/docker.sock",
		filepath.Join(os.Getenv("HOME"), ".docker/run/docker.sock"),
	}

	for _, sock := range candidates {
		if sock == "" {
			continue
		}
		if _, err := os.Stat(sock); err != nil {
			continue
		}
		conn, err := (&net.Dialer{}).DialContext(context.Background(), "unix", sock)
		if err == nil {
			_ = conn.Close()
			return
		}
	}

	t.Skip("docker daemon socket is not accessible; skipping testcontainer-backed store tests")
}

func newTestTransfer(kind TransferKind, sender string) *Transfer {
	return &Transfer{
		Kind:             kind,
		Status:           TransferStatusPending,
		SourceChain:      "l1",
		DestinationChain: "l2",
		LocalAsset:       "0x0000000000000000000000000000000000000000",
		RemoteAsset:      "0x0000000000000000000000000000000000000072",
		Sender:           sender,
		Recipient:        "0x00000000000000000000000000000000000000bb",
		Amount:           decimal.NewFromInt(99700),
		CreatedAt:        time.Now().UTC(),
		UpdatedAt:        time.Now().UTC(),
	}
}

func TestCreateAndGetTransfer(t *testing.T) {
	ctx, st := setupStore(t)

	transfer := newTestTransfer(KindFungible, "0xa1")
	if err := st.CreateTransfer(ctx, transfer); err != nil {
		t.Fatalf("CreateTransfer failed: %v", err)
	}
	if transfer.ID == "" {
		t.Fatal("Expected a generated transfer id")
	}

	got, err := st.GetTransfer(ctx, transfer.ID)
	if err != nil {
		t.Fatalf("GetTransfer failed: %v", err)
	}
	if got.Kind != KindFungible || got.Sender != "0xa1" {
		t.Errorf("Unexpected transfer %+v", got)
	}
	if !got.Amount.Equal(decimal.NewFromInt(99700)) {
		t.Errorf("Expected amount 99700, got %s", got.Amount)
	}
	if got.CompletedAt != nil {
		t.Error("Expected pending transfer without completion time")
	}
}

func TestGetTransfer_NotFound(t *testing.T) {
	ctx, st := setupStore(t)

	_, err := st.GetTransfer(ctx, "00000000-0000-0000-0000-000000000000")
	if !errors.Is(err, ErrTransferNotFound) {
		t.Errorf("Expected ErrTransferNotFound, got %v", err)
	}
}

func TestUpdateTransferStatus(t *testing.T) {
	ctx, st := setupStore(t)

	transfer := newTestTransfer(KindFungible, "0xa1")
	if err := st.CreateTransfer(ctx, transfer); err != nil {
		t.Fatalf("CreateTransfer failed: %v", err)
	}

	err := st.UpdateTransferStatus(ctx, transfer.ID, TransferStatusCompleted, "")
	if err != nil {
		t.Fatalf("UpdateTransferStatus failed: %v", err)
	}

	got, err := st.GetTransfer(ctx, transfer.ID)
	if err != nil {
		t.Fatalf("GetTransfer failed: %v", err)
	}
	if got.Status != TransferStatusCompleted {
		t.Errorf("Expected completed status, got %s", got.Status)
	}
	if got.CompletedAt == nil {
		t.Error("Expected completion time to be set")
	}

	// A failure keeps the error message.
	err = st.UpdateTransferStatus(ctx, transfer.ID, TransferStatusFailed, "escrow exceeded")
	if err != nil {
		t.Fatalf("UpdateTransferStatus failed: %v", err)
	}
	got, err = st.GetTransfer(ctx, transfer.ID)
	if err != nil {
		t.Fatalf("GetTransfer failed: %v", err)
	}
	if got.ErrorMessage != "escrow exceeded" {
		t.Errorf("Expected error message, got %q", got.ErrorMessage)
	}
}

func TestUpdateTransferStatus_NotFound(t *testing.T) {
	ctx, st := setupStore(t)

	err := st.UpdateTransferStatus(ctx, "00000000-0000-0000-0000-000000000000", TransferStatusRelayed, "")
	if !errors.Is(err, ErrTransferNotFound) {
		t.Errorf("Expected ErrTransferNotFound, got %v", err)
	}
}

func TestListTransfers_Filters(t *testing.T) {
	ctx, st := setupStore(t)

	for _, transfer := range []*Transfer{
		newTestTransfer(KindFungible, "0xa1"),
		newTestTransfer(KindFast, "0xa1"),
		newTestTransfer(KindNFT, "0xa2"),
	} {
		if err := st.CreateTransfer(ctx, transfer); err != nil {
			t.Fatalf("CreateTransfer failed: %v", err)
		}
	}

	transfers, err := st.ListTransfers(ctx, WithSender("0xa1"))
	if err != nil {
		t.Fatalf("ListTransfers failed: %v", err)
	}
	if len(transfers) != 2 {
		t.Errorf("Expected 2 transfers for sender 0xa1, got %d", len(transfers))
	}

	transfers, err = st.ListTransfers(ctx, WithKind(KindFast), WithStatus(TransferStatusPending))
	if err != nil {
		t.Fatalf("ListTransfers failed: %v", err)
	}
	if len(transfers) != 1 || transfers[0].Kind != KindFast {
		t.Errorf("Expected one fast transfer, got %v", transfers)
	}

	transfers, err = st.ListTransfers(ctx, WithLimit(1))
	if err != nil {
		t.Fatalf("ListTransfers failed: %v", err)
	}
	if len(transfers) != 1 {
		t.Errorf("Expected limit 1 to apply, got %d", len(transfers))
	}
}

func TestUpsertEscrowSnapshot(t *testing.T) {
	ctx, st := setupStore(t)

	snap := &EscrowSnapshot{
		Chain:       "l1",
		LocalAsset:  "0x0000000000000000000000000000000000000000",
		RemoteAsset: "0x0000000000000000000000000000000000000072",
		Locked:      decimal.NewFromInt(99700),
		ObservedAt:  time.Now().UTC(),
	}
	if err := st.UpsertEscrowSnapshot(ctx, snap); err != nil {
		t.Fatalf("UpsertEscrowSnapshot failed: %v", err)
	}

	// Same pair again replaces the level instead of adding a row.
	snap.Locked = decimal.NewFromInt(49850)
	if err := st.UpsertEscrowSnapshot(ctx, snap); err != nil {
		t.Fatalf("UpsertEscrowSnapshot failed: %v", err)
	}

	snaps, err := st.ListEscrowSnapshots(ctx, "l1")
	if err != nil {
		t.Fatalf("ListEscrowSnapshots failed: %v", err)
	}
	if len(snaps) != 1 {
		t.Fatalf("Expected 1 snapshot, got %d", len(snaps))
	}
	if !snaps[0].Locked.Equal(decimal.NewFromInt(49850)) {
		t.Errorf("Expected locked 49850, got %s", snaps[0].Locked)
	}

	snaps, err = st.ListEscrowSnapshots(ctx, "l2")
	if err != nil {
		t.Fatalf("ListEscrowSnapshots failed: %v", err)
	}
	if len(snaps) != 0 {
		t.Errorf("Expected no snapshots for l2, got %d", len(snaps))
	}
}

func TestFastNonceRoundTrip(t *testing.T) {
	ctx, st := setupStore(t)

	nonce, err := st.GetFastNonce(ctx, "l1", "0xa1")
	if err != nil {
		t.Fatalf("GetFastNonce failed: %v", err)
	}
	if nonce != 0 {
		t.Errorf("Expected zero nonce for unknown initiator, got %d", nonce)
	}

	err = st.UpsertFastNonce(ctx, &FastNonce{Chain: "l1", Initiator: "0xa1", Nonce: 1, UpdatedAt: time.Now().UTC()})
	if err != nil {
		t.Fatalf("UpsertFastNonce failed: %v", err)
	}
	err = st.UpsertFastNonce(ctx, &FastNonce{Chain: "l1", Initiator: "0xa1", Nonce: 2, UpdatedAt: time.Now().UTC()})
	if err != nil {
		t.Fatalf("UpsertFastNonce failed: %v", err)
	}

	nonce, err = st.GetFastNonce(ctx, "l1", "0xa1")
	if err != nil {
		t.Fatalf("GetFastNonce failed: %v", err)
	}
	if nonce != 2 {
		t.Errorf("Expected nonce 2, got %d", nonce)
	}

	// Counters are scoped per chain.
	nonce, err = st.GetFastNonce(ctx, "l2", "0xa1")
	if err != nil {
		t.Fatalf("GetFastNonce failed: %v", err)
	}
	if nonce != 0 {
		t.Errorf("Expected zero nonce on the other chain, got %d", nonce)
	}
}

func TestListFastNonces(t *testing.T) {
	ctx, st := setupStore(t)

	seed := []*FastNonce{
		{Chain: "l1", Initiator: "0xa1", Nonce: 3, UpdatedAt: time.Now().UTC()},
		{Chain: "l1", Initiator: "0xa2", Nonce: 7, UpdatedAt: time.Now().UTC()},
		{Chain: "l2", Initiator: "0xa1", Nonce: 1, UpdatedAt: time.Now().UTC()},
	}
	for _, n := range seed {
		if err := st.UpsertFastNonce(ctx, n); err != nil {
			t.Fatalf("UpsertFastNonce failed: %v", err)
		}
	}

	nonces, err := st.ListFastNonces(ctx, "l1")
	if err != nil {
		t.Fatalf("ListFastNonces failed: %v", err)
	}
	if len(nonces) != 2 {
		t.Fatalf("Expected 2 counters for l1, got %d", len(nonces))
	}
	byInitiator := make(map[string]int64)
	for _, n := range nonces {
		byInitiator[n.Initiator] = n.Nonce
	}
	if byInitiator["0xa1"] != 3 || byInitiator["0xa2"] != 7 {
		t.Errorf("Expected counters 0xa1=3 0xa2=7, got %v", byInitiator)
	}

	nonces, err = st.ListFastNonces(ctx, "l3")
	if err != nil {
		t.Fatalf("ListFastNonces failed: %v", err)
	}
	if len(nonces) != 0 {
		t.Errorf("Expected no counters for l3, got %d", len(nonces))
	}
}
