package model

import "github.com/uptrace/bun"

// Event links a message the bot sent to the Pocket item it shows, so a
// reaction on that message can act on the item.
type Event struct {
	bun.BaseModel `bun:"table:events"`

	ID      int64  `bun:"id,pk,autoincrement"`
	EventID string `bun:"event_id,notnull,unique"` // required
	ItemID  string `bun:"item_id,notnull"`         // required
	UserID  string `bun:"user_id,notnull"`         // required
}
