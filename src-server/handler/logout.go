package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"pocketbot/src-server/oauth"
	"pocketbot/src-server/utils"
)

func logout(as *utils.AppState, cmdInfo *[]subCmdInfo, cmdHandler map[string]subCmdHandler) {
	id := "logout"
	*cmdInfo = append(*cmdInfo, subCmdInfo{
		name:        id,
		description: "Disconnect from Pocket",
	})
	cmdHandler[id] = logoutHandler(as)
}

func logoutHandler(as *utils.AppState) subCmdHandler {
	return func(ctx context.Context, m utils.Message) error {
		handlerID := handlerName(as.GetCommandPrefix(), "logout")

		err := as.Flow.Logout(ctx, m.SenderID)
		switch {
		case errors.Is(err, oauth.ErrNotAuthenticated):
			reply(ctx, as, m, handlerID, "You're not logged into Pocket.")
			return nil
		case err != nil:
			slog.Error("can't clear access token", "user", m.SenderID, "error", err)
			reply(ctx, as, m, handlerID, "Failed to clear access token, please contact bot admin.")
			return fmt.Errorf("logoutHandler: %w", err)
		}

		reply(ctx, as, m, handlerID, "Successfully disconnected from Pocket.")
		return nil
	}
}
