package dao

import (
	"time"

	"github.com/uptrace/bun"
)

// FastNonceDao maps directly to the 'fast_nonces' table in PostgreSQL. It
// mirrors the per-initiator fast-withdrawal counters so the backend signer can
// fill in the expected nonce without querying the settlement core.
type FastNonceDao struct {
	bun.BaseModel `bun:"table:fast_nonces,alias:fn"`
	Chain         string    `bun:"chain,pk,type:varchar(32)"`
	Initiator     string    `bun:"initiator,pk,type:varchar(42)"`
	Nonce         int64     `bun:"nonce,notnull,use_zero"`
	UpdatedAt     time.Time `bun:"updated_at,nullzero,default:current_timestamp"`
}
