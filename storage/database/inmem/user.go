package inmemdb

import (
	"context"
	"time"

	"github.com/trezcool/masomo-portal/core/user"
)

type userRepository struct {
	db *userTable
}

func NewUserRepository(db *DB) user.Writer {
	return &userRepository{db: db.user}
}

func (repo *userRepository) CreateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.table[usr.ID]; ok {
		return user.User{}, user.ErrIDExists
	}
	usr.PasswordHash = append([]byte(nil), usr.PasswordHash...)
	repo.db.table[usr.ID] = &usr
	return usr, nil
}

func (repo *userRepository) GetUserByID(_ context.Context, id string) (user.User, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if usr, ok := repo.db.table[id]; ok {
		return *usr, nil
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) UpdatePassword(_ context.Context, id string, hash []byte, updatedAt time.Time) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	usr, ok := repo.db.table[id]
	if !ok {
		return user.ErrNotFound
	}
	usr.PasswordHash = append([]byte(nil), hash...)
	usr.UpdatedAt = updatedAt
	return nil
}
