package bridged

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	adminservice "github.com/chainsafe/standard-bridge/pkg/admin/service"
	"github.com/chainsafe/standard-bridge/pkg/authgate"
	"github.com/chainsafe/standard-bridge/pkg/bridge"
	"github.com/chainsafe/standard-bridge/pkg/chain"
	"github.com/chainsafe/standard-bridge/pkg/config"
	"github.com/chainsafe/standard-bridge/pkg/escrow"
	"github.com/chainsafe/standard-bridge/pkg/fees"
	"github.com/chainsafe/standard-bridge/pkg/keys"
	"github.com/chainsafe/standard-bridge/pkg/ledger"
	"github.com/chainsafe/standard-bridge/pkg/messenger"
	"github.com/chainsafe/standard-bridge/pkg/nftbridge"
	"github.com/chainsafe/standard-bridge/pkg/relayer"
	"github.com/chainsafe/standard-bridge/pkg/roles"
	"github.com/chainsafe/standard-bridge/pkg/store"
	"github.com/chainsafe/standard-bridge/pkg/token"
)

// ChainSide is one fully assembled side of the bridge pair.
type ChainSide struct {
	Name      string
	Chain     *chain.Chain
	Queue     *messenger.Queue
	Escrow    *escrow.Store
	Roles     *roles.Registry
	Pool      *ledger.Pool
	Bridge    *bridge.Bridge
	NFTBridge *nftbridge.Bridge
	RelaySide *relayer.Side
}

// World is the assembled bridge pair.
type World struct {
	L1 *ChainSide
	L2 *ChainSide
}

// AdminTargets exposes both sides to the admin service, keyed by chain name.
func (w *World) AdminTargets() map[string]*adminservice.Target {
	return map[string]*adminservice.Target{
		w.L1.Name: {Fungible: w.L1.Bridge, NFT: w.L1.NFTBridge, Roles: w.L1.Roles},
		w.L2.Name: {Fungible: w.L2.Bridge, NFT: w.L2.NFTBridge, Roles: w.L2.Roles},
	}
}

// BuildWorld assembles both chains, their bridges and the relay sides from
// config. A nil store disables fast-nonce persistence; everything else works
// the same.
func BuildWorld(cfg *config.Config, st store.Store, logger *zap.Logger) (*World, error) {
	feeCfg, err := feeConfig(&cfg.Fees)
	if err != nil {
		return nil, err
	}
	version := fees.V2
	if cfg.Bridge.ProtocolVersion == 1 {
		version = fees.V1
	}

	l1, err := buildSide(&cfg.L1, &cfg.L2, cfg, feeCfg, version, st, logger)
	if err != nil {
		return nil, fmt.Errorf("assemble %s: %w", cfg.L1.Name, err)
	}
	l2, err := buildSide(&cfg.L2, &cfg.L1, cfg, feeCfg, version, st, logger)
	if err != nil {
		return nil, fmt.Errorf("assemble %s: %w", cfg.L2.Name, err)
	}

	return &World{L1: l1, L2: l2}, nil
}

// SeedFastNonces primes each bridge's fast-withdrawal counters from persisted
// state so a restart does not reopen settled nonces.
func SeedFastNonces(ctx context.Context, st FastNonceLister, world *World, logger *zap.Logger) error {
	for _, side := range []*ChainSide{world.L1, world.L2} {
		nonces, err := st.ListFastNonces(ctx, side.Name)
		if err != nil {
			return fmt.Errorf("list fast nonces for %s: %w", side.Name, err)
		}
		for _, n := range nonces {
			if n.Nonce < 0 {
				continue
			}
			side.Bridge.RestoreFastNonce(common.HexToAddress(n.Initiator), uint64(n.Nonce))
		}
		if len(nonces) > 0 {
			logger.Info("Restored fast-withdrawal counters",
				zap.String("chain", side.Name),
				zap.Int("initiators", len(nonces)))
		}
	}
	return nil
}

func buildSide(
	own, other *config.ChainConfig,
	cfg *config.Config,
	feeCfg fees.Config,
	version fees.ProtocolVersion,
	st store.Store,
	logger *zap.Logger,
) (*ChainSide, error) {
	ch := chain.New(own.Name)
	queue := messenger.NewQueue(mustAddr(own.MessengerAddress))
	esc := escrow.NewStore()
	admin := mustAddr(own.AdminAddress)
	reg := roles.NewRegistry(admin)
	pool := ledger.NewPool(mustAddr(own.PoolAddress), ch, reg)
	engine := fees.NewEngine(feeCfg, version)

	bridgeAddr := mustAddr(own.BridgeAddress)

	supersonicFee, err := parseWei("fast.supersonic_fee_wei", cfg.Fast.SupersonicFeeWei)
	if err != nil {
		return nil, err
	}

	hooks := bridge.MultiHooks{bridge.LogHooks{Logger: logger}, bridgeMetrics{}}
	if st != nil {
		hooks = append(hooks, nonceRecorder{st: st, logger: logger})
	}

	br := bridge.New(bridge.Config{
		Chain:             ch,
		Escrow:            esc,
		Fees:              engine,
		Roles:             reg,
		Pool:              pool,
		Messenger:         queue,
		Hooks:             hooks,
		Address:           bridgeAddr,
		OtherBridge:       mustAddr(other.BridgeAddress),
		NativeRemoteAsset: mustAddr(other.NativeWrapper),
		DefaultGasLimit:   own.DefaultGasLimit,
		Domain: authgate.Domain{
			Name:              own.DomainName,
			Version:           own.DomainVersion,
			VerifyingContract: bridgeAddr,
		},
		SupersonicFee: supersonicFee,
	})

	// The pool pays out only under the bridge role.
	if err := reg.Grant(admin, roles.RoleBridge, bridgeAddr); err != nil {
		return nil, fmt.Errorf("grant bridge role: %w", err)
	}

	// This chain's representation of the other side's native currency.
	if own.NativeWrapper != "" {
		wrapped := token.NewWrappedToken(mustAddr(own.NativeWrapper), common.Address{})
		br.RegisterToken(wrapped)
	}

	handlers := map[common.Address]messenger.Handler{
		bridgeAddr: br,
	}

	var nft *nftbridge.Bridge
	if own.NFTBridgeAddress != "" {
		nftAddr := mustAddr(own.NFTBridgeAddress)
		nft = nftbridge.New(nftbridge.Config{
			Chain:           ch,
			Escrow:          esc,
			Fees:            engine,
			Roles:           reg,
			Messenger:       queue,
			Hooks:           nftbridge.MultiHooks{nftbridge.LogHooks{Logger: logger}, nftMetrics{}},
			Address:         nftAddr,
			OtherBridge:     mustAddr(other.NFTBridgeAddress),
			DefaultGasLimit: own.DefaultGasLimit,
		})
		handlers[nftAddr] = nft
	}

	if cfg.Fast.Enabled {
		if err := wireFastBackend(br, reg, admin, own.Name, &cfg.Fast, logger); err != nil {
			return nil, err
		}
	}

	return &ChainSide{
		Name:      own.Name,
		Chain:     ch,
		Queue:     queue,
		Escrow:    esc,
		Roles:     reg,
		Pool:      pool,
		Bridge:    br,
		NFTBridge: nft,
		RelaySide: &relayer.Side{
			Name:     own.Name,
			Queue:    queue,
			Escrow:   esc,
			Pool:     pool,
			Handlers: handlers,
		},
	}, nil
}

// wireFastBackend registers the fast-withdrawal signer, either a configured
// address or one derived from the server seed.
func wireFastBackend(
	br *bridge.Bridge,
	reg *roles.Registry,
	admin common.Address,
	chainName string,
	cfg *config.FastConfig,
	logger *zap.Logger,
) error {
	var backend common.Address
	switch {
	case cfg.BackendAddress != "":
		backend = mustAddr(cfg.BackendAddress)
	case cfg.KeySeed != "":
		seed, err := keys.SeedFromBase64(cfg.KeySeed)
		if err != nil {
			return fmt.Errorf("fast.key_seed: %w", err)
		}
		key, err := keys.DeriveBackendKey(chainName, seed)
		if err != nil {
			return fmt.Errorf("derive backend key: %w", err)
		}
		backend = key.Address()
	default:
		return fmt.Errorf("fast path enabled without backend_address or key_seed")
	}

	if _, _, err := br.SetBackend(admin, backend); err != nil {
		return fmt.Errorf("set backend: %w", err)
	}
	if err := reg.Grant(admin, roles.RoleBackend, backend); err != nil {
		return fmt.Errorf("grant backend role: %w", err)
	}

	logger.Info("Fast-withdrawal backend registered",
		zap.String("chain", chainName),
		zap.String("backend", backend.Hex()))
	return nil
}

func feeConfig(cfg *config.FeesConfig) (fees.Config, error) {
	flat, err := parseWei("fees.flat_fee_wei", cfg.FlatFeeWei)
	if err != nil {
		return fees.Config{}, err
	}
	return fees.Config{
		FlatFee:              flat,
		BridgingFeeNumerator: cfg.BridgingFeeNumerator,
		FlatFeeRecipient:     mustAddr(cfg.FlatFeeRecipient),
		CapInclusive:         cfg.CapInclusive,
	}, nil
}
