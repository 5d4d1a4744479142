package handler

import (
	"context"
	"fmt"
	"log/slog"

	"pocketbot/src-server/oauth"
	"pocketbot/src-server/utils"
)

// archiveEmoji lists the checkmark family, variation selectors stripped.
var archiveEmoji = map[string]bool{
	"✅": true,
	"☑": true,
	"✔": true,
}

// archiveHandler archives the item behind a linked message. Every failure
// is only logged; the user never gets an error message for a reaction.
func archiveHandler(as *utils.AppState) utils.ReactionHandler {
	return func(ctx context.Context, r utils.Reaction) error {
		if !archiveEmoji[utils.CleanupEmoji(r.Emoji)] {
			return nil
		}

		link, err := as.Links.GetLink(ctx, r.SenderID, r.MessageID)
		if err != nil {
			return fmt.Errorf("archiveHandler: %w", err)
		}
		if link == nil {
			return nil
		}

		userModel, state, err := as.Flow.User(ctx, r.SenderID)
		if err != nil {
			return fmt.Errorf("archiveHandler: %w", err)
		}
		if state != oauth.StateAuthenticated {
			return nil
		}

		if err := as.Pocket.Archive(ctx, userModel.AccessToken, link.ItemID); err != nil {
			return fmt.Errorf("archiveHandler: %w", err)
		}
		slog.Info("archived item", "user", r.SenderID, "item", link.ItemID)

		if err := as.Messenger.React(ctx, r.RoomID, r.MessageID, CheckmarkEmoji); err != nil {
			return fmt.Errorf("archiveHandler: can't acknowledge archive: %w", err)
		}
		return nil
	}
}
