package store

import (
	"context"
	"database/sql"
	"errors"

	"pocketbot/src-server/model"

	"github.com/uptrace/bun"
)

// EventLinkStore remembers which Pocket item a sent message shows.
type EventLinkStore struct {
	db bun.IDB
}

func NewEventLinkStore(db bun.IDB) *EventLinkStore {
	return &EventLinkStore{db: db}
}

// GetLink returns nil when eventID was never linked or belongs to another
// user.
func (e *EventLinkStore) GetLink(ctx context.Context, userID, eventID string) (*model.Event, error) {
	eventModel := new(model.Event)
	err := e.db.NewSelect().
		Model(eventModel).
		Where("user_id = ?", userID).
		Where("event_id = ?", eventID).
		Limit(1).
		Scan(ctx)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil
	case err != nil:
		return nil, storageError("GetLink", err)
	}
	return eventModel, nil
}

// StoreLink is insert only. Linking the same eventID twice fails.
func (e *EventLinkStore) StoreLink(ctx context.Context, userID, eventID, itemID string) error {
	if _, err := e.db.NewInsert().
		Model(&model.Event{
			EventID: eventID,
			ItemID:  itemID,
			UserID:  userID,
		}).
		Exec(ctx); err != nil {
		return storageError("StoreLink", err)
	}
	return nil
}
