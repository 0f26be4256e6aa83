package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/chainsafe/standard-bridge/pkg/store"
)

const serviceName = "TransferService"

// logService wraps Service with automatic logging of all method calls
type logService struct {
	svc    Service
	logger *zap.Logger
}

// NewLog creates a logging decorator for the transfer Service.
func NewLog(svc Service, logger *zap.Logger) Service {
	return &logService{svc: svc, logger: logger}
}

func (ls *logService) GetTransfer(ctx context.Context, id string) (t *store.Transfer, err error) {
	start := time.Now()
	defer func() {
		ls.log("GetTransfer", start, err, zap.String("id", id))
	}()
	return ls.svc.GetTransfer(ctx, id)
}

func (ls *logService) ListTransfers(ctx context.Context, opts ...store.QueryOption) (transfers []*store.Transfer, err error) {
	start := time.Now()
	defer func() {
		ls.log("ListTransfers", start, err, zap.Int("count", len(transfers)))
	}()
	return ls.svc.ListTransfers(ctx, opts...)
}

func (ls *logService) ListEscrowSnapshots(ctx context.Context, chain string) (snaps []*store.EscrowSnapshot, err error) {
	start := time.Now()
	defer func() {
		ls.log("ListEscrowSnapshots", start, err, zap.String("chain", chain), zap.Int("count", len(snaps)))
	}()
	return ls.svc.ListEscrowSnapshots(ctx, chain)
}

func (ls *logService) log(method string, start time.Time, err error, fields ...zap.Field) {
	fields = append(fields,
		zap.String("service", serviceName),
		zap.String("method", method),
		zap.Duration("duration", time.Since(start)),
	)
	if err != nil {
		ls.logger.Error(method+" failed", append(fields, zap.Error(err))...)
		return
	}
	ls.logger.Debug(method+" completed", fields...)
}
