package bridgedb

import (
	"context"
	"log"

	"github.com/uptrace/bun"

	mghelper "github.com/chainsafe/standard-bridge/pkg/pgutil/migrations"
	"github.com/chainsafe/standard-bridge/pkg/store/dao"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		log.Println("creating escrow_snapshots table...")
		return mghelper.CreateSchema(ctx, db, &dao.EscrowSnapshotDao{})
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping escrow_snapshots table...")
		return mghelper.DropTables(ctx, db, &dao.EscrowSnapshotDao{})
	})
}
