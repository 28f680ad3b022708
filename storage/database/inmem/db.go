package inmemdb

import (
	"sync"

	"github.com/trezcool/masomo-portal/core/user"
)

type (
	DB struct {
		user *userTable
	}

	userTable struct {
		table map[string]*user.User
		mutex sync.RWMutex
	}
)

func Open() *DB {
	return &DB{
		user: &userTable{table: make(map[string]*user.User)},
	}
}
