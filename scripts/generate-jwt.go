//go:build ignore

// This script generates a JWT token for the bridge admin API.
// Run with: go run scripts/generate-jwt.go -config config.yaml -actor 0x...

package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/ethereum/go-ethereum/common"

	"github.com/chainsafe/standard-bridge/pkg/auth"
	"github.com/chainsafe/standard-bridge/pkg/config"
)

func main() {
	cfgPath := flag.String("config", "config.example.yaml", "Path to configuration file")
	actor := flag.String("actor", "", "Address the token acts as (hex)")
	flag.Parse()

	if !common.IsHexAddress(*actor) {
		log.Fatalf("-actor must be a hex address, got %q", *actor)
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("error reading configuration file: %s", err.Error())
	}

	tokens := auth.NewTokenService(&cfg.API)
	token, err := tokens.Issue(common.HexToAddress(*actor))
	if err != nil {
		log.Fatalf("error issuing token: %s", err.Error())
	}

	fmt.Println(token)
}
