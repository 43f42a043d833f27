// Package filestore is the durable JSON file behind the fallback chat
// backend. One file holds the whole document: id counters plus every chat
// with its embedded messages.
package filestore

import (
	"encoding/json"
	"os"
	"path/filepath"
)

type StoredMessage struct {
	ID        int64   `json:"id"`
	SenderID  int64   `json:"sender_id"`
	Message   string  `json:"message"`
	SentAt    string  `json:"sent_at"`
	ReadBy    []int64 `json:"read_by"`
	Edited    bool    `json:"edited"`
	EditedAt  *string `json:"edited_at"`
	Deleted   bool    `json:"deleted"`
	DeletedAt *string `json:"deleted_at"`
}

type StoredChat struct {
	ID       int64           `json:"id"`
	User1ID  int64           `json:"user1_id"`
	User2ID  int64           `json:"user2_id"`
	Messages []StoredMessage `json:"messages"`
}

type Document struct {
	NextChatID    int64        `json:"next_chat_id"`
	NextMessageID int64        `json:"next_message_id"`
	Chats         []StoredChat `json:"chats"`
}

func newDocument() *Document {
	return &Document{NextChatID: 1, NextMessageID: 1, Chats: []StoredChat{}}
}

// AllocateChatID hands out the next chat id. The document must be saved for
// the allocation to stick.
func (d *Document) AllocateChatID() int64 {
	id := d.NextChatID
	d.NextChatID++
	return id
}

func (d *Document) AllocateMessageID() int64 {
	id := d.NextMessageID
	d.NextMessageID++
	return id
}

// FindChat returns a pointer into the document's chat list, or nil.
func (d *Document) FindChat(id int64) *StoredChat {
	for i := range d.Chats {
		if d.Chats[i].ID == id {
			return &d.Chats[i]
		}
	}
	return nil
}

// FindChatByPair matches the unordered participant pair.
func (d *Document) FindChatByPair(userA, userB int64) *StoredChat {
	for i := range d.Chats {
		c := &d.Chats[i]
		if (c.User1ID == userA && c.User2ID == userB) || (c.User1ID == userB && c.User2ID == userA) {
			return c
		}
	}
	return nil
}

// FindMessage locates a message anywhere in the document and returns it with
// its owning chat.
func (d *Document) FindMessage(id int64) (*StoredChat, *StoredMessage) {
	for i := range d.Chats {
		c := &d.Chats[i]
		for j := range c.Messages {
			if c.Messages[j].ID == id {
				return c, &c.Messages[j]
			}
		}
	}
	return nil, nil
}

// Store reads and writes the document file.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load returns the stored document, or a fresh empty one when the file is
// missing or unreadable. It never fails.
func (s *Store) Load() *Document {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return newDocument()
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return newDocument()
	}
	if doc.NextChatID < 1 {
		doc.NextChatID = 1
	}
	if doc.NextMessageID < 1 {
		doc.NextMessageID = 1
	}
	if doc.Chats == nil {
		doc.Chats = []StoredChat{}
	}
	return &doc
}

// Save writes the whole document back, creating the parent directory when
// needed. Returns false instead of an error: the file store is a last
// resort and its I/O problems must not crash anything above it.
func (s *Store) Save(doc *Document) bool {
	if doc == nil {
		return false
	}
	if dir := filepath.Dir(s.path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return false
		}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return false
	}
	return os.WriteFile(s.path, data, 0o644) == nil
}
