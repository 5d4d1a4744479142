package model

import (
	"time"

	"github.com/uptrace/bun"
)

// One row per chat identity. A user is authenticated when AccessToken is
// set and has a pending login when RequestState is set.
type User struct {
	bun.BaseModel `bun:"table:users"`

	ID               int64     `bun:"id,pk,autoincrement"`
	UserID           string    `bun:"user_id,notnull,unique"` // required
	AccessToken      string    `bun:"access_token,notnull"`
	RequestRoom      string    `bun:"request_room,notnull"`
	RequestToken     string    `bun:"request_token,notnull"`
	RequestTokenDate time.Time `bun:"request_token_date,nullzero"` // written on login, never read
	RequestState     string    `bun:"request_state,notnull"`
}

func (u *User) IsAuthenticated() bool {
	return u != nil && u.AccessToken != ""
}

func (u *User) IsPending() bool {
	return u != nil && u.AccessToken == "" && u.RequestState != ""
}
