package handler

import (
	"context"
	"log/slog"

	"pocketbot/src-server/utils"

	"github.com/bwmarrin/discordgo"
)

// MessageCreate adapts discordgo message events to Dispatch.
func MessageCreate(as *utils.AppState) func(s *discordgo.Session, m *discordgo.MessageCreate) {
	return func(s *discordgo.Session, m *discordgo.MessageCreate) {
		if m == nil || m.Message == nil || m.Author == nil {
			return
		}
		if m.Author.Bot || (s.State != nil && s.State.User != nil && m.Author.ID == s.State.User.ID) {
			return
		}
		msg := utils.Message{
			ID:       m.ID,
			RoomID:   m.ChannelID,
			SenderID: m.Author.ID,
			Content:  m.Content,
		}
		if err := Dispatch(context.Background(), as, msg); err != nil {
			slog.Error("handler error", "content", m.Content, "error", err)
		}
	}
}

// MessageReactionAdd adapts discordgo reaction events to DispatchReaction.
func MessageReactionAdd(as *utils.AppState) func(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
	return func(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
		if r == nil || r.MessageReaction == nil {
			return
		}
		if s.State != nil && s.State.User != nil && r.UserID == s.State.User.ID {
			return
		}
		DispatchReaction(context.Background(), as, utils.Reaction{
			RoomID:    r.ChannelID,
			MessageID: r.MessageID,
			SenderID:  r.UserID,
			Emoji:     r.Emoji.Name,
		})
	}
}
