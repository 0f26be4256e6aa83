// Package service exposes the operator surface of the bridge pair: pausing,
// fee knobs, role membership and fast-withdrawal credits. Every operation runs
// as the authenticated actor address, so the core role registry stays the
// single authorization authority.
package service

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	apperrors "github.com/chainsafe/standard-bridge/pkg/app/errors"
	"github.com/chainsafe/standard-bridge/pkg/auth"
	"github.com/chainsafe/standard-bridge/pkg/bridge"
	"github.com/chainsafe/standard-bridge/pkg/nftbridge"
	"github.com/chainsafe/standard-bridge/pkg/roles"
)

// Target bundles one chain's administrable components.
type Target struct {
	Fungible *bridge.Bridge
	NFT      *nftbridge.Bridge
	Roles    *roles.Registry
}

// FeeChange reports a fee update as previous and current value.
type FeeChange struct {
	Previous string `json:"previous"`
	Current  string `json:"current"`
}

// Service defines the interface for the bridge admin business logic
type Service interface {
	Pause(ctx context.Context, chain string) error
	Unpause(ctx context.Context, chain string) error

	SetFlatFee(ctx context.Context, chain string, fee *big.Int) (*FeeChange, error)
	SetBridgingFee(ctx context.Context, chain string, numerator uint64) (*FeeChange, error)
	SetFlatFeeRecipient(ctx context.Context, chain string, recipient common.Address) (*FeeChange, error)
	SetFeeExempt(ctx context.Context, chain string, asset common.Address, exempt bool) error

	SetBackend(ctx context.Context, chain string, backend common.Address) (*FeeChange, error)
	SetSupersonicFee(ctx context.Context, chain string, fee *big.Int) (*FeeChange, error)
	CreditFastBridge(ctx context.Context, chain string, beneficiary, token common.Address, amount *big.Int) error

	GrantRole(ctx context.Context, chain string, role roles.Role, addr common.Address) error
	RevokeRole(ctx context.Context, chain string, role roles.Role, addr common.Address) error
	RoleMembers(ctx context.Context, chain string, role roles.Role) ([]common.Address, error)
}

type adminService struct {
	targets map[string]*Target
}

// NewService creates an admin service over the given chain targets, keyed by
// chain name.
func NewService(targets map[string]*Target) Service {
	return &adminService{targets: targets}
}

func (s *adminService) resolve(ctx context.Context, chain string) (*Target, common.Address, error) {
	actor, ok := auth.ActorFromContext(ctx)
	if !ok {
		return nil, common.Address{}, apperrors.UnAuthorizedError(nil, "no authenticated actor")
	}
	target, ok := s.targets[chain]
	if !ok {
		return nil, common.Address{}, apperrors.ResourceNotFoundError(nil, fmt.Sprintf("unknown chain %q", chain))
	}
	return target, actor, nil
}

// Pause halts fund movement on both bridges of the chain. The NFT bridge is
// paused first so a role failure leaves nothing half-stopped.
func (s *adminService) Pause(ctx context.Context, chain string) error {
	target, actor, err := s.resolve(ctx, chain)
	if err != nil {
		return err
	}
	if target.NFT != nil {
		if err := target.NFT.Pause(actor); err != nil {
			return apperrors.FromBridge(err)
		}
	}
	if err := target.Fungible.Pause(actor); err != nil {
		return apperrors.FromBridge(err)
	}
	return nil
}

func (s *adminService) Unpause(ctx context.Context, chain string) error {
	target, actor, err := s.resolve(ctx, chain)
	if err != nil {
		return err
	}
	if err := target.Fungible.Unpause(actor); err != nil {
		return apperrors.FromBridge(err)
	}
	if target.NFT != nil {
		if err := target.NFT.Unpause(actor); err != nil {
			return apperrors.FromBridge(err)
		}
	}
	return nil
}

func (s *adminService) SetFlatFee(ctx context.Context, chain string, fee *big.Int) (*FeeChange, error) {
	target, actor, err := s.resolve(ctx, chain)
	if err != nil {
		return nil, err
	}
	prev, cur, err := target.Fungible.SetFlatFee(actor, fee)
	if err != nil {
		return nil, apperrors.FromBridge(err)
	}
	return &FeeChange{Previous: prev.String(), Current: cur.String()}, nil
}

func (s *adminService) SetBridgingFee(ctx context.Context, chain string, numerator uint64) (*FeeChange, error) {
	target, actor, err := s.resolve(ctx, chain)
	if err != nil {
		return nil, err
	}
	prev, cur, err := target.Fungible.SetBridgingFee(actor, numerator)
	if err != nil {
		return nil, apperrors.FromBridge(err)
	}
	return &FeeChange{
		Previous: fmt.Sprintf("%d", prev),
		Current:  fmt.Sprintf("%d", cur),
	}, nil
}

func (s *adminService) SetFlatFeeRecipient(ctx context.Context, chain string, recipient common.Address) (*FeeChange, error) {
	target, actor, err := s.resolve(ctx, chain)
	if err != nil {
		return nil, err
	}
	prev, cur, err := target.Fungible.SetFlatFeeRecipient(actor, recipient)
	if err != nil {
		return nil, apperrors.FromBridge(err)
	}
	return &FeeChange{Previous: prev.Hex(), Current: cur.Hex()}, nil
}

func (s *adminService) SetFeeExempt(ctx context.Context, chain string, asset common.Address, exempt bool) error {
	target, actor, err := s.resolve(ctx, chain)
	if err != nil {
		return err
	}
	if err := target.Fungible.SetFeeExempt(actor, asset, exempt); err != nil {
		return apperrors.FromBridge(err)
	}
	return nil
}

func (s *adminService) SetBackend(ctx context.Context, chain string, backend common.Address) (*FeeChange, error) {
	target, actor, err := s.resolve(ctx, chain)
	if err != nil {
		return nil, err
	}
	prev, cur, err := target.Fungible.SetBackend(actor, backend)
	if err != nil {
		return nil, apperrors.FromBridge(err)
	}
	return &FeeChange{Previous: prev.Hex(), Current: cur.Hex()}, nil
}

func (s *adminService) SetSupersonicFee(ctx context.Context, chain string, fee *big.Int) (*FeeChange, error) {
	target, actor, err := s.resolve(ctx, chain)
	if err != nil {
		return nil, err
	}
	prev, cur, err := target.Fungible.SetSupersonicFee(actor, fee)
	if err != nil {
		return nil, apperrors.FromBridge(err)
	}
	change := &FeeChange{Current: cur.String()}
	if prev != nil {
		change.Previous = prev.String()
	}
	return change, nil
}

func (s *adminService) CreditFastBridge(ctx context.Context, chain string, beneficiary, token common.Address, amount *big.Int) error {
	target, actor, err := s.resolve(ctx, chain)
	if err != nil {
		return err
	}
	if err := target.Fungible.CreditFastBridge(actor, beneficiary, token, amount); err != nil {
		return apperrors.FromBridge(err)
	}
	return nil
}

func (s *adminService) GrantRole(ctx context.Context, chain string, role roles.Role, addr common.Address) error {
	target, actor, err := s.resolve(ctx, chain)
	if err != nil {
		return err
	}
	if err := target.Roles.Grant(actor, role, addr); err != nil {
		return apperrors.FromBridge(err)
	}
	return nil
}

func (s *adminService) RevokeRole(ctx context.Context, chain string, role roles.Role, addr common.Address) error {
	target, actor, err := s.resolve(ctx, chain)
	if err != nil {
		return err
	}
	if err := target.Roles.Revoke(actor, role, addr); err != nil {
		return apperrors.FromBridge(err)
	}
	return nil
}

func (s *adminService) RoleMembers(ctx context.Context, chain string, role roles.Role) ([]common.Address, error) {
	target, _, err := s.resolve(ctx, chain)
	if err != nil {
		return nil, err
	}
	return target.Roles.MembersOf(role), nil
}
