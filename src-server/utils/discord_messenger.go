package utils

import (
	"context"
	"fmt"
	"time"

	"pocketbot/src-server/metric"

	"github.com/bwmarrin/discordgo"
)

// DiscordMessenger sends through a discordgo session.
type DiscordMessenger struct {
	s *discordgo.Session
}

var _ Messenger = (*DiscordMessenger)(nil)

func NewDiscordMessenger(s *discordgo.Session) *DiscordMessenger {
	return &DiscordMessenger{s: s}
}

func (d *DiscordMessenger) Reply(ctx context.Context, roomID, replyToID, content string) (string, error) {
	startTimer := time.Now()
	defer metric.ObserveDiscordSend("reply", startTimer)

	msg, err := d.s.ChannelMessageSendReply(roomID, content, &discordgo.MessageReference{
		MessageID: replyToID,
		ChannelID: roomID,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("(*DiscordMessenger).Reply: %w", err)
	}
	return msg.ID, nil
}

func (d *DiscordMessenger) React(ctx context.Context, roomID, messageID, emoji string) error {
	startTimer := time.Now()
	defer metric.ObserveDiscordSend("react", startTimer)

	if err := d.s.MessageReactionAdd(roomID, messageID, emoji, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("(*DiscordMessenger).React: %w", err)
	}
	return nil
}

func (d *DiscordMessenger) SendNotice(ctx context.Context, roomID, content string) error {
	startTimer := time.Now()
	defer metric.ObserveDiscordSend("notice", startTimer)

	if _, err := d.s.ChannelMessageSend(roomID, content, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("(*DiscordMessenger).SendNotice: %w", err)
	}
	return nil
}

// Discord has no read receipts; the typing indicator plays that role.
func (d *DiscordMessenger) MarkRead(ctx context.Context, roomID, _ string) error {
	startTimer := time.Now()
	defer metric.ObserveDiscordSend("typing", startTimer)

	if err := d.s.ChannelTyping(roomID, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("(*DiscordMessenger).MarkRead: %w", err)
	}
	return nil
}
