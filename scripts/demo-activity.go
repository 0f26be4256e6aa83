//go:build ignore

// This script assembles the bridge pair in process, runs a native deposit
// from l1 to l2 and relays the resulting message, then prints the money
// movement on both sides.
// Run with: go run scripts/demo-activity.go

package main

import (
	"fmt"
	"log"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/chainsafe/standard-bridge/pkg/app/bridged"
	"github.com/chainsafe/standard-bridge/pkg/bridge"
	"github.com/chainsafe/standard-bridge/pkg/config"
)

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("error building logger: %s", err.Error())
	}
	defer logger.Sync()

	cfg := demoConfig()
	world, err := bridged.BuildWorld(cfg, nil, logger)
	if err != nil {
		log.Fatalf("error assembling bridge pair: %s", err.Error())
	}

	user := common.HexToAddress("0x00000000000000000000000000000000000000aa")
	recipient := common.HexToAddress("0x00000000000000000000000000000000000000bb")

	// Seed the depositor with native funds on l1.
	world.L1.Chain.Mint(user, big.NewInt(1_000_000))

	err = world.L1.Bridge.InitiateDeposit(user, bridge.DepositArgs{
		RemoteAsset: common.HexToAddress(cfg.L2.NativeWrapper),
		To:          recipient,
		Value:       big.NewInt(101_000),
	})
	if err != nil {
		log.Fatalf("error initiating deposit: %s", err.Error())
	}

	// Relay the queued message to the other side by hand.
	msg, ok := world.L1.Queue.Dequeue()
	if !ok {
		log.Fatal("expected a queued message after the deposit")
	}
	handler, ok := world.L2.RelaySide.Handlers[msg.Target]
	if !ok {
		log.Fatalf("no handler registered for target %s", msg.Target.Hex())
	}
	if err := world.L2.Queue.Deliver(msg, handler); err != nil {
		log.Fatalf("error delivering message: %s", err.Error())
	}

	feeRecipient := common.HexToAddress(cfg.Fees.FlatFeeRecipient)
	fmt.Println("l1 depositor balance: ", world.L1.Chain.BalanceOf(user))
	fmt.Println("l1 fee recipient:     ", world.L1.Chain.BalanceOf(feeRecipient))
	for pair, locked := range world.L1.Escrow.Pairs() {
		fmt.Printf("l1 escrow %s/%s: %s\n", pair.Local.Hex(), pair.Remote.Hex(), locked)
	}
	fmt.Println("l1 outbox depth:      ", world.L1.Queue.Pending())
	fmt.Println("l2 outbox depth:      ", world.L2.Queue.Pending())
}

func demoConfig() *config.Config {
	return &config.Config{
		Bridge: config.BridgeConfig{ProtocolVersion: 2},
		Fees: config.FeesConfig{
			FlatFeeWei:           "1000",
			BridgingFeeNumerator: 3,
			FlatFeeRecipient:     "0x00000000000000000000000000000000000000fc",
		},
		L1: config.ChainConfig{
			Name:             "l1",
			BridgeAddress:    "0x00000000000000000000000000000000000000b1",
			MessengerAddress: "0x0000000000000000000000000000000000000041",
			PoolAddress:      "0x0000000000000000000000000000000000000051",
			AdminAddress:     "0x00000000000000000000000000000000000000ad",
			NativeWrapper:    "0x0000000000000000000000000000000000000071",
			DefaultGasLimit:  200000,
			DomainName:       "StandardBridge",
			DomainVersion:    "1",
		},
		L2: config.ChainConfig{
			Name:             "l2",
			BridgeAddress:    "0x00000000000000000000000000000000000000b2",
			MessengerAddress: "0x0000000000000000000000000000000000000042",
			PoolAddress:      "0x0000000000000000000000000000000000000052",
			AdminAddress:     "0x00000000000000000000000000000000000000ad",
			NativeWrapper:    "0x0000000000000000000000000000000000000072",
			DefaultGasLimit:  200000,
			DomainName:       "StandardBridge",
			DomainVersion:    "1",
		},
	}
}
