package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"pocketbot/src-server/oauth"
	"pocketbot/src-server/pocket"
	"pocketbot/src-server/store"
	"pocketbot/src-server/utils"
)

func login(as *utils.AppState, cmdInfo *[]subCmdInfo, cmdHandler map[string]subCmdHandler) {
	id := "login"
	*cmdInfo = append(*cmdInfo, subCmdInfo{
		name:        id,
		description: "Authenticate with Pocket",
	})
	cmdHandler[id] = loginHandler(as)
}

func loginHandler(as *utils.AppState) subCmdHandler {
	return func(ctx context.Context, m utils.Message) error {
		prefix := as.GetCommandPrefix()
		authorizeURL, err := as.Flow.BeginLogin(ctx, m.SenderID, m.RoomID)

		var authErr *pocket.AuthError
		var storageErr *store.StorageError
		switch {
		case errors.Is(err, oauth.ErrAlreadyAuthenticated):
			reply(ctx, as, m, handlerName(prefix, "login"), fmt.Sprintf(
				"You're already logged into Pocket. Use `%spocket logout` to clear the current access token.", prefix))
			return nil
		case errors.As(err, &authErr):
			slog.Warn("can't obtain request token", "user", m.SenderID, "error", err)
			reply(ctx, as, m, handlerName(prefix, "login"), fmt.Sprintf(
				"Failed to initialize authentication flow, response code: %d", authErr.Code))
			return nil
		case errors.As(err, &storageErr) && storageErr.Op == "UpsertPending":
			slog.Error("can't store request token", "user", m.SenderID, "error", err)
			reply(ctx, as, m, handlerName(prefix, "login"), fmt.Sprintf(
				"Failed to store request token, please try `%spocket login` again.", prefix))
			return fmt.Errorf("loginHandler: %w", err)
		case err != nil:
			// the user lookup failed, no request token was asked for yet
			slog.Error("can't look up user", "user", m.SenderID, "error", err)
			reply(ctx, as, m, handlerName(prefix, "login"), fmt.Sprintf(
				"Failed to look up your Pocket account, please try `%spocket login` again later.", prefix))
			return fmt.Errorf("loginHandler: %w", err)
		}

		reply(ctx, as, m, handlerName(prefix, "login"),
			"Please continue by going to the following url and allowing access to your Pocket account: "+authorizeURL)
		return nil
	}
}

func handlerName(prefix, subcommand string) string {
	return prefix + "pocket " + subcommand
}
