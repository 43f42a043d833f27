package repository

import (
	"sync"

	"gorm.io/gorm"
)

// SchemaCapability answers whether the chat_messages table carries the
// edited/edited_at/deleted/deleted_at columns. Older databases predate that
// migration, and the ledger has to keep working against them.
//
// The probe runs once per instance and the answer is cached for the process
// lifetime; a schema change mid-run is not picked up.
type SchemaCapability struct {
	db        *gorm.DB
	once      sync.Once
	supported bool
}

func NewSchemaCapability(db *gorm.DB) *SchemaCapability {
	return &SchemaCapability{db: db}
}

// NewStaticSchemaCapability returns a capability with a fixed answer,
// bypassing the probe. Used by tests to pin either schema generation.
func NewStaticSchemaCapability(supported bool) *SchemaCapability {
	c := &SchemaCapability{supported: supported}
	c.once.Do(func() {})
	return c
}

// SupportsMessageMetadata probes the table on first call by selecting one of
// the extended columns. Any error means the column is absent.
func (c *SchemaCapability) SupportsMessageMetadata() bool {
	c.once.Do(func() {
		rows, err := c.db.Raw("SELECT edited FROM chat_messages LIMIT 1").Rows()
		if err != nil {
			c.supported = false
			return
		}
		rows.Close()
		c.supported = true
	})
	return c.supported
}
