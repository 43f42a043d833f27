package repository

import (
	"context"
	"errors"

	"lingua-chat/internal/domain/user"
	lingua_errors "lingua-chat/pkg/errors"

	"gorm.io/gorm"
)

type PostgresUserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserDirectory {
	return &PostgresUserRepository{db: db}
}

func (r *PostgresUserRepository) FindUserByID(ctx context.Context, id int64) (user.User, error) {
	var u user.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return user.User{}, lingua_errors.ErrNotFound
		}
		return user.User{}, err
	}
	return u, nil
}
