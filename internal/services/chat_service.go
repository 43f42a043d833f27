package services

import (
	"context"
	"errors"

	"lingua-chat/internal/domain/chat"
	"lingua-chat/internal/middleware"
	"lingua-chat/internal/repository"
	lingua_errors "lingua-chat/pkg/errors"
	"lingua-chat/pkg/logger"
)

// ChatService is the public surface of the chat persistence core. Every
// operation tries the relational backend first and retries against the
// document store when the relational path errors out. The contract here is
// total: no method returns an error or panics; failure degrades to a zero
// id, false, or an empty slice, and the reason is logged and counted
// internally.
type ChatService struct {
	primary  repository.ChatBackend
	fallback repository.ChatBackend
	log      *logger.Logger
}

func NewChatService(primary, fallback repository.ChatBackend, log *logger.Logger) *ChatService {
	return &ChatService{primary: primary, fallback: fallback, log: log}
}

// GetOrCreateConversation returns the id of the conversation between the two
// users, creating it on first contact. Returns 0 when either id is missing
// or both backends fail.
func (s *ChatService) GetOrCreateConversation(ctx context.Context, userA, userB int64) int64 {
	const op = "get_or_create_conversation"
	if userA == 0 || userB == 0 {
		middleware.RecordChatOperation(op, "rejected")
		return 0
	}

	id, err := s.primary.GetOrCreateChat(ctx, userA, userB)
	if err == nil {
		middleware.RecordChatOperation(op, "ok")
		return id
	}
	if !s.shouldFallback(op, err) {
		middleware.RecordChatOperation(op, "rejected")
		return 0
	}

	id, err = s.fallback.GetOrCreateChat(ctx, userA, userB)
	if err != nil {
		s.bothFailed(op, err)
		return 0
	}
	middleware.RecordChatOperation(op, "ok")
	return id
}

// ListConversations returns the user's conversations, most recent activity
// first. Never nil; failures degrade to an empty list.
func (s *ChatService) ListConversations(ctx context.Context, userID int64) []chat.Summary {
	const op = "list_conversations"
	if userID == 0 {
		middleware.RecordChatOperation(op, "rejected")
		return []chat.Summary{}
	}

	summaries, err := s.primary.ListChats(ctx, userID)
	if err == nil {
		middleware.RecordChatOperation(op, "ok")
		return summaries
	}
	if !s.shouldFallback(op, err) {
		middleware.RecordChatOperation(op, "rejected")
		return []chat.Summary{}
	}

	summaries, err = s.fallback.ListChats(ctx, userID)
	if err != nil {
		s.bothFailed(op, err)
		return []chat.Summary{}
	}
	middleware.RecordChatOperation(op, "ok")
	return summaries
}

// ListMessages returns the conversation's messages ordered by sent_at
// ascending. limit <= 0 means no cap; afterID > 0 restricts to messages with
// a greater id. Never nil.
func (s *ChatService) ListMessages(ctx context.Context, chatID int64, limit int, afterID int64) []chat.Message {
	const op = "list_messages"
	if chatID == 0 {
		middleware.RecordChatOperation(op, "rejected")
		return []chat.Message{}
	}

	messages, err := s.primary.ListMessages(ctx, chatID, limit, afterID)
	if err == nil {
		middleware.RecordChatOperation(op, "ok")
		return messages
	}
	if !s.shouldFallback(op, err) {
		middleware.RecordChatOperation(op, "rejected")
		return []chat.Message{}
	}

	messages, err = s.fallback.ListMessages(ctx, chatID, limit, afterID)
	if err != nil {
		s.bothFailed(op, err)
		return []chat.Message{}
	}
	middleware.RecordChatOperation(op, "ok")
	return messages
}

// SendMessage appends a message to the conversation.
func (s *ChatService) SendMessage(ctx context.Context, chatID, senderID int64, body string) bool {
	const op = "send_message"
	if chatID == 0 || senderID == 0 || body == "" {
		middleware.RecordChatOperation(op, "rejected")
		return false
	}
	return s.mutate(ctx, op, func(b repository.ChatBackend) error {
		return b.AppendMessage(ctx, chatID, senderID, body)
	})
}

// EditMessage replaces a message's body. Only the sender may edit; an empty
// replacement body is a valid edit.
func (s *ChatService) EditMessage(ctx context.Context, messageID, userID int64, newBody string) bool {
	const op = "edit_message"
	if messageID == 0 || userID == 0 {
		middleware.RecordChatOperation(op, "rejected")
		return false
	}
	return s.mutate(ctx, op, func(b repository.ChatBackend) error {
		return b.EditMessage(ctx, messageID, userID, newBody)
	})
}

// DeleteMessage tombstones a message: it stays listed with an empty body and
// the deleted flag set. Only the sender may delete.
func (s *ChatService) DeleteMessage(ctx context.Context, messageID, userID int64) bool {
	const op = "delete_message"
	if messageID == 0 || userID == 0 {
		middleware.RecordChatOperation(op, "rejected")
		return false
	}
	return s.mutate(ctx, op, func(b repository.ChatBackend) error {
		return b.DeleteMessage(ctx, messageID, userID)
	})
}

// MarkRead marks every message in the conversation not sent by userID as
// read by userID. Idempotent, best effort.
func (s *ChatService) MarkRead(ctx context.Context, chatID, userID int64) bool {
	const op = "mark_read"
	if chatID == 0 || userID == 0 {
		middleware.RecordChatOperation(op, "rejected")
		return false
	}
	return s.mutate(ctx, op, func(b repository.ChatBackend) error {
		return b.MarkRead(ctx, chatID, userID)
	})
}

// mutate runs a write against the primary backend, retrying on the fallback
// per the dispatch rule.
func (s *ChatService) mutate(ctx context.Context, op string, fn func(repository.ChatBackend) error) bool {
	err := fn(s.primary)
	if err == nil {
		middleware.RecordChatOperation(op, "ok")
		return true
	}
	if !s.shouldFallback(op, err) {
		middleware.RecordChatOperation(op, "rejected")
		return false
	}

	if err := fn(s.fallback); err != nil {
		if errors.Is(err, lingua_errors.ErrUnauthorized) || errors.Is(err, lingua_errors.ErrNotFound) {
			middleware.RecordChatOperation(op, "rejected")
			return false
		}
		s.bothFailed(op, err)
		return false
	}
	middleware.RecordChatOperation(op, "ok")
	return true
}

// shouldFallback decides whether a primary-backend error warrants retrying
// on the document store. Authorization and not-found are definitive answers,
// not backend failures, and never fall through.
func (s *ChatService) shouldFallback(op string, err error) bool {
	if errors.Is(err, lingua_errors.ErrUnauthorized) || errors.Is(err, lingua_errors.ErrNotFound) {
		return false
	}
	if s.log != nil {
		s.log.Warnf("%s: relational backend failed, using document store: %v", op, err)
	}
	middleware.RecordChatFallback(op)
	return true
}

func (s *ChatService) bothFailed(op string, err error) {
	if s.log != nil {
		s.log.Errorf("%s: document store failed after relational backend: %v", op, err)
	}
	middleware.RecordChatOperation(op, "failed")
}
