package repository

import (
	"context"

	"lingua-chat/internal/domain/chat"
	"lingua-chat/internal/domain/user"
)

// ChatBackend is the storage contract shared by the relational backend and
// the document-store fallback. Implementations report failure through errors;
// the service layer above translates those into the total boolean/empty
// contract exposed to callers.
type ChatBackend interface {
	// GetOrCreateChat returns the id of the chat between the unordered pair
	// (userA, userB), creating it on first contact.
	GetOrCreateChat(ctx context.Context, userA, userB int64) (int64, error)

	// ListChats returns the user's chats with last-message and unread
	// summaries, most recent activity first.
	ListChats(ctx context.Context, userID int64) ([]chat.Summary, error)

	// ListMessages returns the chat's messages ordered by sent_at ascending,
	// optionally only those with id greater than afterID, capped at limit
	// (limit <= 0 means no cap).
	ListMessages(ctx context.Context, chatID int64, limit int, afterID int64) ([]chat.Message, error)

	// AppendMessage stores a new message from senderID.
	AppendMessage(ctx context.Context, chatID, senderID int64, body string) error

	// EditMessage replaces the body of a message. Only the sender may edit.
	EditMessage(ctx context.Context, messageID, userID int64, newBody string) error

	// DeleteMessage tombstones a message: the row survives with an empty body
	// and the deleted flag set. Only the sender may delete.
	DeleteMessage(ctx context.Context, messageID, userID int64) error

	// MarkRead marks every message in the chat not sent by userID as read by
	// userID. Idempotent.
	MarkRead(ctx context.Context, chatID, userID int64) error
}

// UserDirectory resolves user display names for chat summaries.
type UserDirectory interface {
	FindUserByID(ctx context.Context, id int64) (user.User, error)
}
