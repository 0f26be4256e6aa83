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
		log.Println("creating fast_nonces table...")
		return mghelper.CreateSchema(ctx, db, &dao.FastNonceDao{})
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping fast_nonces table...")
		return mghelper.DropTables(ctx, db, &dao.FastNonceDao{})
	})
}
