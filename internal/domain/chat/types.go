package chat

import "time"

// Message is the canonical message value returned to callers. Both backends
// normalize into this shape, so nothing downstream branches on storage origin.
type Message struct {
	ID        int64      `json:"id"`
	ChatID    int64      `json:"conversation_id"`
	SenderID  int64      `json:"sender_id"`
	Body      string     `json:"body"`
	SentAt    time.Time  `json:"sent_at"`
	Edited    bool       `json:"edited"`
	EditedAt  *time.Time `json:"edited_at,omitempty"`
	Deleted   bool       `json:"deleted"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// Summary is one row of a user's chat list: the other participant, the most
// recent message and the number of messages still unread by the viewer.
type Summary struct {
	ChatID        int64      `json:"conversation_id"`
	OtherUserID   int64      `json:"other_user_id"`
	OtherUsername string     `json:"other_username"`
	FirstName     string     `json:"first_name"`
	LastName      string     `json:"last_name"`
	LastMessage   string     `json:"last_message"`
	LastAt        *time.Time `json:"last_at,omitempty"`
	UnreadCount   int64      `json:"unread_count"`
}

// FromRow normalizes a chat_messages row. A deleted row keeps its id, sender
// and timestamp but always presents an empty body.
func FromRow(row ChatMessage) Message {
	m := Message{
		ID:       row.ID,
		ChatID:   row.ChatID,
		SenderID: row.SenderID,
		Body:     row.Message,
		SentAt:   row.SentAt,
		Edited:   row.Edited,
		Deleted:  row.Deleted,
	}
	if row.EditedAt.Valid {
		t := row.EditedAt.Time
		m.EditedAt = &t
	}
	if row.DeletedAt.Valid {
		t := row.DeletedAt.Time
		m.DeletedAt = &t
	}
	if m.Deleted {
		m.Body = ""
	}
	return m
}
