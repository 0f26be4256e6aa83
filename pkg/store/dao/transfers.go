package dao

import (
	"time"

	"github.com/uptrace/bun"
)

// TransferDao is a data access object that maps directly to the 'transfers' table in PostgreSQL.
type TransferDao struct {
	bun.BaseModel    `bun:"table:transfers,alias:t"`
	ID               string     `bun:"id,pk,type:varchar(36)"`
	Kind             string     `bun:"kind,notnull,type:varchar(16)"`
	Status           string     `bun:"status,notnull,type:varchar(16)"`
	SourceChain      string     `bun:"source_chain,notnull,type:varchar(32)"`
	DestinationChain string     `bun:"destination_chain,notnull,type:varchar(32)"`
	LocalAsset       string     `bun:"local_asset,notnull,type:varchar(42)"`
	RemoteAsset      string     `bun:"remote_asset,notnull,type:varchar(42)"`
	Sender           string     `bun:"sender,notnull,type:varchar(42)"`
	Recipient        string     `bun:"recipient,notnull,type:varchar(42)"`
	Amount           string     `bun:"amount,notnull,type:numeric(38,0)"`
	TokenID          *string    `bun:"token_id,type:numeric(78,0)"`
	ErrorMessage     *string    `bun:"error_message,type:text"`
	CreatedAt        time.Time  `bun:"created_at,nullzero,default:current_timestamp"`
	UpdatedAt        time.Time  `bun:"updated_at,nullzero,default:current_timestamp"`
	CompletedAt      *time.Time `bun:"completed_at"`
}
