//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"time"

	"dmchat/domain"
	"dmchat/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

type IUserRepository interface {
	CreateUser(username, passwordHash string) (string, error)
	GetAllUsers() (map[string]domain.User, error)
	GetUserByUsername(username string) (User, error)
}

type UserRepository struct {
	db *badger.DB
}

func NewUserRepository(db *badger.DB) IUserRepository {
	return &UserRepository{db: db}
}

// User is the stored directory record. The directory snapshot handed to
// subscribers only exposes the domain.User part.
type User struct {
	UID          string `json:"uid"`
	Username     string `json:"username"`
	PasswordHash string `json:"password_hash"`
	CreatedAt    int64  `json:"created_at"`
}

// CreateUser persists a directory record and returns the generated uid.
// A secondary "uname:" key enforces username uniqueness with a single Get.
func (u UserRepository) CreateUser(username, passwordHash string) (string, error) {
	newID := uuid.New().String()
	record := User{
		UID:          newID,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().Unix(),
	}

	data, err := json.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("marshal failed: %w", err)
	}

	err = u.db.Update(func(txn *badger.Txn) error {
		unameKey := []byte("uname:" + username)
		if _, err = txn.Get(unameKey); err == nil {
			return errors.ErrUserAlreadyExists
		}
		if err = txn.Set(unameKey, []byte(newID)); err != nil {
			return err
		}
		return txn.Set([]byte("user:"+newID), data)
	})

	return newID, err
}

// GetAllUsers returns the directory as a uid -> profile snapshot.
// Records without a username are kept here; excluding them is the contact
// builder's concern.
func (u UserRepository) GetAllUsers() (map[string]domain.User, error) {
	users := make(map[string]domain.User)
	err := u.db.View(func(txn *badger.Txn) error {
		prefix := []byte("user:")
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var record User
				if err := json.Unmarshal(val, &record); err != nil {
					return err
				}
				users[record.UID] = domain.User{UID: record.UID, Username: record.Username}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}

// GetUserByUsername resolves the full stored record, password hash included.
// Used by the session layer, never by the view engine.
func (u UserRepository) GetUserByUsername(username string) (User, error) {
	var record User
	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte("uname:" + username))
		if err != nil {
			return err
		}
		var uid string
		if err = item.Value(func(val []byte) error {
			uid = string(val)
			return nil
		}); err != nil {
			return err
		}

		item, err = txn.Get([]byte("user:" + uid))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &record)
		})
	})
	if err != nil {
		return User{}, err
	}
	return record, nil
}
