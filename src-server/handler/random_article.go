package handler

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"pocketbot/src-server/oauth"
	"pocketbot/src-server/utils"
)

// CheckmarkEmoji is appended to article replies and used as the archive
// acknowledgement.
const CheckmarkEmoji = "✅"

func randomArticleHandler(as *utils.AppState) subCmdHandler {
	return func(ctx context.Context, m utils.Message) error {
		prefix := as.GetCommandPrefix()
		handlerID := prefix + "pocket"

		// #region - require a logged in user
		userModel, state, err := as.Flow.User(ctx, m.SenderID)
		if err != nil {
			reply(ctx, as, m, handlerID, "Failed to look up your Pocket account, please try again later.")
			return fmt.Errorf("randomArticleHandler: %w", err)
		}
		if state != oauth.StateAuthenticated {
			reply(ctx, as, m, handlerID, fmt.Sprintf("You're not logged into Pocket. Try `%spocket login` first.", prefix))
			return nil
		}
		// #endregion

		// #region - pick one saved item
		items, err := as.Pocket.Retrieve(ctx, userModel.AccessToken)
		if err != nil {
			slog.Warn("can't fetch articles", "user", m.SenderID, "error", err)
			reply(ctx, as, m, handlerID, "Failed to fetch your saved articles from Pocket, please try again later.")
			return nil
		}
		if len(items) == 0 {
			reply(ctx, as, m, handlerID, "Didn't find any saved articles. Is your Pocket empty?")
			return nil
		}
		slog.Info("got articles for a user, randomizing one", "user", m.SenderID, "count", len(items))
		item := items[rand.IntN(len(items))]
		// #endregion

		content := fmt.Sprintf("%s - %s (react with %s to archive)",
			utils.CleanupString(item.Title()), item.URL(), CheckmarkEmoji)
		messageID := reply(ctx, as, m, handlerID, content)
		if messageID == "" || item.ItemID == "" {
			return nil
		}

		// the reply is what users react to, so it is the link key
		if err := as.Links.StoreLink(ctx, m.SenderID, messageID, item.ItemID); err != nil {
			slog.Error("can't store article link", "user", m.SenderID, "message", messageID, "error", err)
			return fmt.Errorf("randomArticleHandler: %w", err)
		}
		return nil
	}
}
