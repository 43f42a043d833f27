package repository

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"time"

	"lingua-chat/internal/domain/chat"
	lingua_errors "lingua-chat/pkg/errors"

	"gorm.io/gorm"
)

// legacyMessageColumns is the column set every schema generation has.
var legacyMessageColumns = []string{"id", "chat_id", "sender_id", "message", "sent_at", "read_status"}

type PostgresChatRepository struct {
	db         *gorm.DB
	capability *SchemaCapability
	users      UserDirectory
}

func NewChatRepository(db *gorm.DB, capability *SchemaCapability, users UserDirectory) ChatBackend {
	if capability == nil {
		capability = NewSchemaCapability(db)
	}
	return &PostgresChatRepository{db: db, capability: capability, users: users}
}

func (r *PostgresChatRepository) GetOrCreateChat(ctx context.Context, userA, userB int64) (int64, error) {
	id, err := r.findChatID(ctx, userA, userB)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, lingua_errors.ErrNotFound) {
		return 0, err
	}

	now := time.Now().UTC()
	c := chat.Chat{User1ID: userA, User2ID: userB, CreatedAt: now, UpdatedAt: now}
	if err := r.db.WithContext(ctx).Create(&c).Error; err != nil {
		if isUniqueViolation(err) {
			// Lost a race against a concurrent first contact.
			return r.findChatID(ctx, userA, userB)
		}
		return 0, err
	}
	return c.ID, nil
}

func (r *PostgresChatRepository) findChatID(ctx context.Context, userA, userB int64) (int64, error) {
	var c chat.Chat
	err := r.db.WithContext(ctx).
		Where("(user1_id = ? AND user2_id = ?) OR (user1_id = ? AND user2_id = ?)", userA, userB, userB, userA).
		First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, lingua_errors.ErrNotFound
		}
		return 0, err
	}
	return c.ID, nil
}

func (r *PostgresChatRepository) ListChats(ctx context.Context, userID int64) ([]chat.Summary, error) {
	var chats []chat.Chat
	err := r.db.WithContext(ctx).
		Where("user1_id = ? OR user2_id = ?", userID, userID).
		Find(&chats).Error
	if err != nil {
		return nil, err
	}

	summaries := make([]chat.Summary, 0, len(chats))
	for _, c := range chats {
		otherID := c.User1ID
		if otherID == userID {
			otherID = c.User2ID
		}

		s := chat.Summary{ChatID: c.ID, OtherUserID: otherID}

		var last chat.ChatMessage
		err := r.db.WithContext(ctx).
			Select(legacyMessageColumns).
			Where("chat_id = ?", c.ID).
			Order("sent_at DESC, id DESC").
			First(&last).Error
		if err == nil {
			s.LastMessage = last.Message
			t := last.SentAt
			s.LastAt = &t
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		if err := r.db.WithContext(ctx).
			Model(&chat.ChatMessage{}).
			Where("chat_id = ? AND sender_id = ? AND read_status = ?", c.ID, otherID, false).
			Count(&s.UnreadCount).Error; err != nil {
			return nil, err
		}

		if r.users != nil {
			if u, err := r.users.FindUserByID(ctx, otherID); err == nil {
				s.OtherUsername = u.Username
				s.FirstName = u.FirstName
				s.LastName = u.LastName
			}
		}

		summaries = append(summaries, s)
	}

	sortSummaries(summaries)
	return summaries, nil
}

func (r *PostgresChatRepository) ListMessages(ctx context.Context, chatID int64, limit int, afterID int64) ([]chat.Message, error) {
	q := r.db.WithContext(ctx).Where("chat_id = ?", chatID)
	if !r.capability.SupportsMessageMetadata() {
		q = q.Select(legacyMessageColumns)
	}
	if afterID > 0 {
		q = q.Where("id > ?", afterID)
	}
	q = q.Order("sent_at ASC, id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var rows []chat.ChatMessage
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}

	messages := make([]chat.Message, 0, len(rows))
	for _, row := range rows {
		messages = append(messages, chat.FromRow(row))
	}
	return messages, nil
}

func (r *PostgresChatRepository) AppendMessage(ctx context.Context, chatID, senderID int64, body string) error {
	now := time.Now().UTC()
	m := chat.ChatMessage{
		ChatID:   chatID,
		SenderID: senderID,
		Message:  body,
		SentAt:   now,
	}

	tx := r.db.WithContext(ctx)
	if !r.capability.SupportsMessageMetadata() {
		tx = tx.Select("chat_id", "sender_id", "message", "sent_at", "read_status")
	}
	if err := tx.Create(&m).Error; err != nil {
		return err
	}

	// Activity touch; a failure here must not fail the send.
	_ = r.db.WithContext(ctx).
		Model(&chat.Chat{}).
		Where("id = ?", chatID).
		Update("updated_at", now).Error

	return nil
}

func (r *PostgresChatRepository) EditMessage(ctx context.Context, messageID, userID int64, newBody string) error {
	if err := r.authorizeSender(ctx, messageID, userID); err != nil {
		return err
	}

	if r.capability.SupportsMessageMetadata() {
		err := r.db.WithContext(ctx).
			Model(&chat.ChatMessage{}).
			Where("id = ?", messageID).
			Updates(map[string]interface{}{
				"message":   newBody,
				"edited":    true,
				"edited_at": sql.NullTime{Time: time.Now().UTC(), Valid: true},
			}).Error
		if err == nil {
			return nil
		}
		if !isUndefinedColumn(err) {
			return err
		}
		// Stale capability answer; fall through to the legacy update.
	}

	return r.db.WithContext(ctx).
		Model(&chat.ChatMessage{}).
		Where("id = ?", messageID).
		Update("message", newBody).Error
}

func (r *PostgresChatRepository) DeleteMessage(ctx context.Context, messageID, userID int64) error {
	if err := r.authorizeSender(ctx, messageID, userID); err != nil {
		return err
	}

	if r.capability.SupportsMessageMetadata() {
		err := r.db.WithContext(ctx).
			Model(&chat.ChatMessage{}).
			Where("id = ?", messageID).
			Updates(map[string]interface{}{
				"message":    "",
				"deleted":    true,
				"deleted_at": sql.NullTime{Time: time.Now().UTC(), Valid: true},
			}).Error
		if err == nil {
			return nil
		}
		if !isUndefinedColumn(err) {
			return err
		}
	}

	// Legacy schema keeps no tombstone flag; clearing the body is all it can do.
	return r.db.WithContext(ctx).
		Model(&chat.ChatMessage{}).
		Where("id = ?", messageID).
		Update("message", "").Error
}

func (r *PostgresChatRepository) MarkRead(ctx context.Context, chatID, userID int64) error {
	return r.db.WithContext(ctx).
		Model(&chat.ChatMessage{}).
		Where("chat_id = ? AND sender_id <> ? AND read_status = ?", chatID, userID, false).
		Update("read_status", true).Error
}

func (r *PostgresChatRepository) authorizeSender(ctx context.Context, messageID, userID int64) error {
	var row chat.ChatMessage
	err := r.db.WithContext(ctx).
		Select("id", "chat_id", "sender_id").
		Where("id = ?", messageID).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return lingua_errors.ErrNotFound
		}
		return err
	}
	if row.SenderID != userID {
		return lingua_errors.ErrUnauthorized
	}
	return nil
}

// sortSummaries orders by last activity descending; chats without messages
// sink to the bottom.
func sortSummaries(summaries []chat.Summary) {
	sort.SliceStable(summaries, func(i, j int) bool {
		a, b := summaries[i].LastAt, summaries[j].LastAt
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})
}
