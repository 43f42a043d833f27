package user

import "time"

// User represents the users table. Only the fields the chat layer needs for
// rendering display names are mapped here.
type User struct {
	ID        int64
	Username  string
	FirstName string
	LastName  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (User) TableName() string {
	return "users"
}
