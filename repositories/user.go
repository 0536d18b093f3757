//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"errors"
	"time"

	"livehub/domain"
	apperrors "livehub/errors"

	"github.com/dgraph-io/badger/v4"
)

type IUserRepository interface {
	SaveUser(user domain.User) error
	UserByID(id string) (domain.User, error)
}

type UserRepository struct {
	db *badger.DB
}

func NewUserRepository(db *badger.DB) IUserRepository {
	return &UserRepository{db: db}
}

// diskUser mirrors the account service's record shape, so both sides can
// read the same database during local development.
type diskUser struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Banned    bool   `json:"is_banned"`
	Admin     bool   `json:"is_admin"`
	CreatedAt int64  `json:"created_at"`
}

// SaveUser upserts an account record. Records are normally written by the
// account service; this path exists for seeds, tests and the load tester.
func (u UserRepository) SaveUser(user domain.User) error {
	data, err := json.Marshal(diskUser{
		ID:        user.ID,
		Username:  user.Username,
		Banned:    user.Banned,
		Admin:     user.Admin,
		CreatedAt: user.CreatedAt.UnixNano(),
	})
	if err != nil {
		return err
	}
	return u.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte("user:"+user.ID), data)
	})
}

// UserByID retrieves an account record and converts it to the domain struct.
func (u UserRepository) UserByID(id string) (domain.User, error) {
	var disk diskUser
	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte("user:" + id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return apperrors.ErrUserNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(value []byte) error {
			return json.Unmarshal(value, &disk)
		})
	})
	if err != nil {
		return domain.User{}, err
	}
	return domain.User{
		ID:        disk.ID,
		Username:  disk.Username,
		Banned:    disk.Banned,
		Admin:     disk.Admin,
		CreatedAt: time.Unix(0, disk.CreatedAt).UTC(),
	}, nil
}
