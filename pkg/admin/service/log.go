package service

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/chainsafe/standard-bridge/pkg/roles"
)

const serviceName = "AdminService"

// logService wraps Service with automatic logging of all method calls
type logService struct {
	svc    Service
	logger *zap.Logger
}

// NewLog creates a logging decorator for the admin Service. Every operator
// action is logged at Info so the audit trail survives in the log stream.
func NewLog(svc Service, logger *zap.Logger) Service {
	return &logService{svc: svc, logger: logger}
}

func (ls *logService) Pause(ctx context.Context, chain string) (err error) {
	defer ls.log("Pause", time.Now(), &err, zap.String("chain", chain))()
	return ls.svc.Pause(ctx, chain)
}

func (ls *logService) Unpause(ctx context.Context, chain string) (err error) {
	defer ls.log("Unpause", time.Now(), &err, zap.String("chain", chain))()
	return ls.svc.Unpause(ctx, chain)
}

func (ls *logService) SetFlatFee(ctx context.Context, chain string, fee *big.Int) (change *FeeChange, err error) {
	defer ls.log("SetFlatFee", time.Now(), &err, zap.String("chain", chain), zap.String("fee", fee.String()))()
	return ls.svc.SetFlatFee(ctx, chain, fee)
}

func (ls *logService) SetBridgingFee(ctx context.Context, chain string, numerator uint64) (change *FeeChange, err error) {
	defer ls.log("SetBridgingFee", time.Now(), &err, zap.String("chain", chain), zap.Uint64("numerator", numerator))()
	return ls.svc.SetBridgingFee(ctx, chain, numerator)
}

func (ls *logService) SetFlatFeeRecipient(ctx context.Context, chain string, recipient common.Address) (change *FeeChange, err error) {
	defer ls.log("SetFlatFeeRecipient", time.Now(), &err, zap.String("chain", chain), zap.String("recipient", recipient.Hex()))()
	return ls.svc.SetFlatFeeRecipient(ctx, chain, recipient)
}

func (ls *logService) SetFeeExempt(ctx context.Context, chain string, asset common.Address, exempt bool) (err error) {
	defer ls.log("SetFeeExempt", time.Now(), &err,
		zap.String("chain", chain), zap.String("asset", asset.Hex()), zap.Bool("exempt", exempt))()
	return ls.svc.SetFeeExempt(ctx, chain, asset, exempt)
}

func (ls *logService) SetBackend(ctx context.Context, chain string, backend common.Address) (change *FeeChange, err error) {
	defer ls.log("SetBackend", time.Now(), &err, zap.String("chain", chain), zap.String("backend", backend.Hex()))()
	return ls.svc.SetBackend(ctx, chain, backend)
}

func (ls *logService) SetSupersonicFee(ctx context.Context, chain string, fee *big.Int) (change *FeeChange, err error) {
	defer ls.log("SetSupersonicFee", time.Now(), &err, zap.String("chain", chain), zap.String("fee", fee.String()))()
	return ls.svc.SetSupersonicFee(ctx, chain, fee)
}

func (ls *logService) CreditFastBridge(ctx context.Context, chain string, beneficiary, token common.Address, amount *big.Int) (err error) {
	defer ls.log("CreditFastBridge", time.Now(), &err,
		zap.String("chain", chain),
		zap.String("beneficiary", beneficiary.Hex()),
		zap.String("token", token.Hex()),
		zap.String("amount", amount.String()))()
	return ls.svc.CreditFastBridge(ctx, chain, beneficiary, token, amount)
}

func (ls *logService) GrantRole(ctx context.Context, chain string, role roles.Role, addr common.Address) (err error) {
	defer ls.log("GrantRole", time.Now(), &err,
		zap.String("chain", chain), zap.String("role", string(role)), zap.String("address", addr.Hex()))()
	return ls.svc.GrantRole(ctx, chain, role, addr)
}

func (ls *logService) RevokeRole(ctx context.Context, chain string, role roles.Role, addr common.Address) (err error) {
	defer ls.log("RevokeRole", time.Now(), &err,
		zap.String("chain", chain), zap.String("role", string(role)), zap.String("address", addr.Hex()))()
	return ls.svc.RevokeRole(ctx, chain, role, addr)
}

func (ls *logService) RoleMembers(ctx context.Context, chain string, role roles.Role) (members []common.Address, err error) {
	defer ls.log("RoleMembers", time.Now(), &err,
		zap.String("chain", chain), zap.String("role", string(role)))()
	return ls.svc.RoleMembers(ctx, chain, role)
}

// log returns a deferred closure recording method completion with duration.
func (ls *logService) log(method string, start time.Time, errp *error, fields ...zap.Field) func() {
	return func() {
		fields = append(fields,
			zap.String("service", serviceName),
			zap.String("method", method),
			zap.Duration("duration", time.Since(start)),
		)
		if *errp != nil {
			ls.logger.Error(method+" failed", append(fields, zap.Error(*errp))...)
			return
		}
		ls.logger.Info(method+" completed", fields...)
	}
}
