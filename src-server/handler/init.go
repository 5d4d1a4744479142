package handler

import (
	"context"
	"log/slog"
	"strings"

	"pocketbot/src-server/utils"
)

type subCmdHandler func(ctx context.Context, m utils.Message) error

type subCmdInfo struct {
	name        string
	description string
}

// Init builds the command table once: the "pocket" command with its
// subcommands, and the archive reaction.
func Init(as *utils.AppState) {
	localCmdInfo := make([]subCmdInfo, 0)
	localCmdHandler := make(map[string]subCmdHandler)

	login(as, &localCmdInfo, localCmdHandler)
	logout(as, &localCmdInfo, localCmdHandler)
	help(as, &localCmdInfo, localCmdHandler)

	randomArticle := randomArticleHandler(as)

	as.AddCmdHandler("pocket", func(ctx context.Context, m utils.Message, args []string) error {
		if err := as.Messenger.MarkRead(ctx, m.RoomID, m.ID); err != nil {
			slog.Debug("can't mark command as read", "error", err)
		}
		if len(args) > 0 {
			if handler, ok := localCmdHandler[strings.ToLower(args[0])]; ok {
				return handler(ctx, m)
			}
		}
		// no subcommand or an unknown one: the default action
		return randomArticle(ctx, m)
	})
	as.AddReactionHandler(archiveHandler(as))
}

// Dispatch routes a chat message to its command handler. Messages that are
// not commands are ignored.
func Dispatch(ctx context.Context, as *utils.AppState, m utils.Message) error {
	prefix := as.GetCommandPrefix()
	if !strings.HasPrefix(m.Content, prefix) {
		return nil
	}
	fields := strings.Fields(strings.TrimPrefix(m.Content, prefix))
	if len(fields) == 0 {
		return nil
	}
	handler, ok := as.GetCmdHandler(strings.ToLower(fields[0]))
	if !ok {
		return nil
	}
	return handler(ctx, m, fields[1:])
}

// DispatchReaction hands a reaction to every reaction handler.
func DispatchReaction(ctx context.Context, as *utils.AppState, r utils.Reaction) {
	as.IterateReactionHandler(func(handler utils.ReactionHandler) {
		if err := handler(ctx, r); err != nil {
			slog.Warn("reaction handler error", "message", r.MessageID, "error", err)
		}
	})
}

// reply sends content and logs a failed send; the returned ID is empty then.
func reply(ctx context.Context, as *utils.AppState, m utils.Message, handler, content string) string {
	messageID, err := as.Messenger.Reply(ctx, m.RoomID, m.ID, content)
	if err != nil {
		slog.Warn("can't respond", "handler", handler, "content", content, "error", err)
		return ""
	}
	return messageID
}
