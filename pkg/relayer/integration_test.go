package relayer

import (
	"context"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/chainsafe/standard-bridge/pkg/bridge"
	"github.com/chainsafe/standard-bridge/pkg/chain"
	"github.com/chainsafe/standard-bridge/pkg/config"
	"github.com/chainsafe/standard-bridge/pkg/escrow"
	"github.com/chainsafe/standard-bridge/pkg/fees"
	"github.com/chainsafe/standard-bridge/pkg/ledger"
	"github.com/chainsafe/standard-bridge/pkg/messenger"
	"github.com/chainsafe/standard-bridge/pkg/roles"
	"github.com/chainsafe/standard-bridge/pkg/store"
	"github.com/chainsafe/standard-bridge/pkg/token"
)

var (
	itAdmin        = common.HexToAddress("0xAD")
	itFeeRecipient = common.HexToAddress("0xFE")
	itAlice        = common.HexToAddress("0xA1")
	itBob          = common.HexToAddress("0xB0")

	itL1Bridge    = common.HexToAddress("0x1B")
	itL2Bridge    = common.HexToAddress("0x2B")
	itL1Messenger = common.HexToAddress("0x1C")
	itL2Messenger = common.HexToAddress("0x2C")
	itL1Pool      = common.HexToAddress("0x1D")
	itL2Pool      = common.HexToAddress("0x2D")
	itWrappedEth  = common.HexToAddress("0x2E")
)

// itWorld is one fully wired bridge pair for end-to-end relay tests.
type itWorld struct {
	l1Chain  *chain.Chain
	l2Chain  *chain.Chain
	l1       *bridge.Bridge
	l2       *bridge.Bridge
	l1Side   *Side
	l2Side   *Side
	wrapped  *token.WrappedToken
	l1Escrow *escrow.Store
}

func newITWorld(t *testing.T) *itWorld {
	t.Helper()

	l1Chain := chain.New("l1")
	l2Chain := chain.New("l2")
	l1Queue := messenger.NewQueue(itL1Messenger)
	l2Queue := messenger.NewQueue(itL2Messenger)
	l1Escrow := escrow.NewStore()
	l2Escrow := escrow.NewStore()
	l1Roles := roles.NewRegistry(itAdmin)
	l2Roles := roles.NewRegistry(itAdmin)

	feeCfg := fees.Config{
		FlatFee:              big.NewInt(1000),
		BridgingFeeNumerator: 3,
		FlatFeeRecipient:     itFeeRecipient,
	}

	l1Pool := ledger.NewPool(itL1Pool, l1Chain, l1Roles)
	l2Pool := ledger.NewPool(itL2Pool, l2Chain, l2Roles)

	l1 := bridge.New(bridge.Config{
		Chain:       l1Chain,
		Escrow:      l1Escrow,
		Fees:        fees.NewEngine(feeCfg, fees.V2),
		Roles:       l1Roles,
		Pool:        l1Pool,
		Messenger:   l1Queue,
		Address:     itL1Bridge,
		OtherBridge: itL2Bridge,
	})
	l2 := bridge.New(bridge.Config{
		Chain:       l2Chain,
		Escrow:      l2Escrow,
		Fees:        fees.NewEngine(feeCfg, fees.V2),
		Roles:       l2Roles,
		Pool:        l2Pool,
		Messenger:   l2Queue,
		Address:     itL2Bridge,
		OtherBridge: itL1Bridge,
	})

	// L2's representation of L1 native currency.
	wrapped := token.NewWrappedToken(itWrappedEth, common.Address{})
	l2.RegisterToken(wrapped)

	l1Side := &Side{
		Name:   "l1",
		Queue:  l1Queue,
		Escrow: l1Escrow,
		Handlers: map[common.Address]messenger.Handler{
			itL1Bridge: l1,
		},
	}
	l2Side := &Side{
		Name:   "l2",
		Queue:  l2Queue,
		Escrow: l2Escrow,
		Handlers: map[common.Address]messenger.Handler{
			itL2Bridge: l2,
		},
	}

	return &itWorld{
		l1Chain:  l1Chain,
		l2Chain:  l2Chain,
		l1:       l1,
		l2:       l2,
		l1Side:   l1Side,
		l2Side:   l2Side,
		wrapped:  wrapped,
		l1Escrow: l1Escrow,
	}
}

// recordingStore keeps transfers in memory so the test can assert on them.
type recordingStore struct {
	mu        sync.Mutex
	transfers map[string]*store.Transfer
}

func newRecordingStore() *recordingStore {
	return &recordingStore{transfers: make(map[string]*store.Transfer)}
}

func (s *recordingStore) CreateTransfer(_ context.Context, transfer *store.Transfer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transfers[transfer.ID] = transfer
	return nil
}

func (s *recordingStore) GetTransfer(_ context.Context, id string) (*store.Transfer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.transfers[id]; ok {
		return t, nil
	}
	return nil, store.ErrTransferNotFound
}

func (s *recordingStore) UpdateTransferStatus(_ context.Context, id string, status store.TransferStatus, errMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.transfers[id]; ok {
		t.Status = status
		t.ErrorMessage = errMsg
	}
	return nil
}

func (s *recordingStore) UpsertEscrowSnapshot(_ context.Context, _ *store.EscrowSnapshot) error {
	return nil
}

func (s *recordingStore) statuses() map[store.TransferStatus]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[store.TransferStatus]int)
	for _, t := range s.transfers {
		out[t.Status]++
	}
	return out
}

func TestEngine_RelaysNativeDepositEndToEnd(t *testing.T) {
	w := newITWorld(t)
	st := newRecordingStore()

	w.l1Chain.Mint(itAlice, big.NewInt(1_000_000))

	cfg := &config.RelayerConfig{PollInterval: 10 * time.Millisecond, ReconcileEvery: time.Hour}
	engine := NewEngine(cfg, nil, w.l1Side, w.l2Side, st, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := engine.Start(ctx); err != nil {
		t.Fatalf("engine.Start failed: %v", err)
	}

	// Alice bridges 101000 native units: 1000 flat fee, 3/1000 of the
	// remaining 100000 to the pool, principal 99700.
	err := w.l1.InitiateDeposit(itAlice, bridge.DepositArgs{
		RemoteAsset: itWrappedEth,
		To:          itBob,
		Value:       big.NewInt(101_000),
	})
	if err != nil {
		t.Fatalf("InitiateDeposit failed: %v", err)
	}

	waitFor(t, time.Second, func() bool {
		return w.wrapped.BalanceOf(itBob).Sign() > 0
	})

	if got := w.wrapped.BalanceOf(itBob); got.Cmp(big.NewInt(99_700)) != 0 {
		t.Errorf("Expected Bob to receive 99700 wrapped units, got %s", got)
	}
	if got := w.l1Escrow.Locked(escrow.PairKey{Remote: itWrappedEth}); got.Cmp(big.NewInt(99_700)) != 0 {
		t.Errorf("Expected 99700 locked on L1, got %s", got)
	}

	statuses := st.statuses()
	if statuses[store.TransferStatusCompleted] != 1 {
		t.Errorf("Expected 1 completed transfer, got %v", statuses)
	}

	cancel()
	engine.Stop()
}

func TestEngine_RoundTripReleasesEscrow(t *testing.T) {
	w := newITWorld(t)
	st := newRecordingStore()

	w.l1Chain.Mint(itAlice, big.NewInt(1_000_000))
	// Bob needs native currency on L2 for the return leg's flat fee.
	w.l2Chain.Mint(itBob, big.NewInt(10_000))

	cfg := &config.RelayerConfig{PollInterval: 10 * time.Millisecond, ReconcileEvery: time.Hour}
	engine := NewEngine(cfg, nil, w.l1Side, w.l2Side, st, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := engine.Start(ctx); err != nil {
		t.Fatalf("engine.Start failed: %v", err)
	}

	err := w.l1.InitiateDeposit(itAlice, bridge.DepositArgs{
		RemoteAsset: itWrappedEth,
		To:          itBob,
		Value:       big.NewInt(101_000),
	})
	if err != nil {
		t.Fatalf("forward deposit failed: %v", err)
	}
	waitFor(t, time.Second, func() bool {
		return w.wrapped.BalanceOf(itBob).Sign() > 0
	})

	minted := new(big.Int).Set(w.wrapped.BalanceOf(itBob))
	l1Before := w.l1Chain.BalanceOf(itBob)

	// Bob burns the wrapped units back to L1. Wrapped tokens pay the flat fee
	// plus a proportional token leg to the pool.
	err = w.l2.InitiateDeposit(itBob, bridge.DepositArgs{
		LocalAsset:  itWrappedEth,
		RemoteAsset: common.Address{},
		To:          itBob,
		Value:       big.NewInt(1000),
		Amount:      minted,
	})
	if err != nil {
		t.Fatalf("return deposit failed: %v", err)
	}

	waitFor(t, time.Second, func() bool {
		return w.l1Chain.BalanceOf(itBob).Cmp(l1Before) > 0
	})

	if got := w.wrapped.BalanceOf(itBob); got.Sign() != 0 {
		t.Errorf("Expected all wrapped units spent, got %s", got)
	}
	// Returned principal is the burned amount minus the proportional token fee.
	gained := new(big.Int).Sub(w.l1Chain.BalanceOf(itBob), l1Before)
	if gained.Sign() <= 0 || gained.Cmp(minted) >= 0 {
		t.Errorf("Expected returned principal below %s, got %s", minted, gained)
	}
	// Escrow never goes negative and ends at minted - returned.
	remaining := w.l1Escrow.Locked(escrow.PairKey{Remote: itWrappedEth})
	expected := new(big.Int).Sub(minted, gained)
	if remaining.Cmp(expected) != 0 {
		t.Errorf("Expected %s still locked, got %s", expected, remaining)
	}

	cancel()
	engine.Stop()
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}
