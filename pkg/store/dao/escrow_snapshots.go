package dao

import (
	"time"

	"github.com/uptrace/bun"
)

// EscrowSnapshotDao maps directly to the 'escrow_snapshots' table in PostgreSQL.
// One row per (chain, local, remote) pair, overwritten on each observation.
type EscrowSnapshotDao struct {
	bun.BaseModel `bun:"table:escrow_snapshots,alias:es"`
	Chain         string    `bun:"chain,pk,type:varchar(32)"`
	LocalAsset    string    `bun:"local_asset,pk,type:varchar(42)"`
	RemoteAsset   string    `bun:"remote_asset,pk,type:varchar(42)"`
	Locked        string    `bun:"locked,notnull,type:numeric(38,0)"`
	ObservedAt    time.Time `bun:"observed_at,nullzero,default:current_timestamp"`
}
