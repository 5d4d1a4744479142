package utils

import "context"

// Message is an inbound chat message, independent of the chat network.
type Message struct {
	ID       string
	RoomID   string
	SenderID string
	Content  string
}

// Reaction is an emoji added to MessageID by SenderID.
type Reaction struct {
	RoomID    string
	MessageID string
	SenderID  string
	Emoji     string
}

// Messenger is the outbound side of the chat network.
type Messenger interface {
	// Reply answers replyToID and returns the ID of the sent message.
	Reply(ctx context.Context, roomID, replyToID, content string) (string, error)
	React(ctx context.Context, roomID, messageID, emoji string) error
	SendNotice(ctx context.Context, roomID, content string) error
	// MarkRead acknowledges a command before it is processed.
	MarkRead(ctx context.Context, roomID, messageID string) error
}

// CmdHandler handles one top-level command; args are the words after it.
type CmdHandler func(ctx context.Context, m Message, args []string) error

type ReactionHandler func(ctx context.Context, r Reaction) error
