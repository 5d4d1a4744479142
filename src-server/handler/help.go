package handler

import (
	"context"
	"fmt"
	"strings"

	"pocketbot/src-server/utils"
)

func help(as *utils.AppState, cmdInfo *[]subCmdInfo, cmdHandler map[string]subCmdHandler) {
	id := "help"
	*cmdInfo = append(*cmdInfo, subCmdInfo{
		name:        id,
		description: "Show this message",
	})
	cmdHandler[id] = helpHandler(as, cmdInfo)
}

// cmdInfo is read on every call so entries registered after help still show.
func helpHandler(as *utils.AppState, cmdInfo *[]subCmdInfo) subCmdHandler {
	return func(ctx context.Context, m utils.Message) error {
		prefix := as.GetCommandPrefix()
		var sb strings.Builder
		fmt.Fprintf(&sb, "**Usage:** `%spocket [subcommand]`\n", prefix)
		fmt.Fprintf(&sb, "`%spocket` - Get a random article from your Pocket list\n", prefix)
		for _, info := range *cmdInfo {
			fmt.Fprintf(&sb, "`%spocket %s` - %s\n", prefix, info.name, info.description)
		}
		reply(ctx, as, m, handlerName(prefix, "help"), strings.TrimSuffix(sb.String(), "\n"))
		return nil
	}
}
