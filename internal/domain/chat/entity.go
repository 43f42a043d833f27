package chat

import (
	"database/sql"
	"time"
)

// Chat represents the chats table. A chat is a 1:1 thread between two users;
// the participant pair is unordered, so (User1ID, User2ID) and
// (User2ID, User1ID) identify the same chat.
type Chat struct {
	ID        int64
	User1ID   int64
	User2ID   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ChatMessage represents the chat_messages table.
// The edited/deleted columns only exist on migrated databases; whether they
// can be written is decided by the schema capability probe.
type ChatMessage struct {
	ID         int64
	ChatID     int64
	SenderID   int64
	Message    string
	SentAt     time.Time
	ReadStatus bool
	Edited     bool
	EditedAt   sql.NullTime
	Deleted    bool
	DeletedAt  sql.NullTime
}

func (Chat) TableName() string {
	return "chats"
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}
