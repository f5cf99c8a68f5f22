package storage

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"

	"chat-core/domain"
	apperrors "chat-core/errors"
)

// CreateUser allocates an id and persists the user plus the uniqueness
// indexes for username and phone number inside one transaction.
func (s *Store) CreateUser(user domain.User) (domain.User, error) {
	id, err := nextID(s.userSeq)
	if err != nil {
		return domain.User{}, err
	}
	user.ID = domain.UserID(id)
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	err = s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(userByNameKey(user.Username)); err == nil {
			return apperrors.ErrUserAlreadyExists
		}
		if _, err := txn.Get(userByPhoneKey(user.PhoneNumber)); err == nil {
			return apperrors.ErrUserAlreadyExists
		}
		if err := setJSON(txn, userKey(user.ID), user); err != nil {
			return err
		}
		if err := txn.Set(userByNameKey(user.Username), userKey(user.ID)); err != nil {
			return err
		}
		return txn.Set(userByPhoneKey(user.PhoneNumber), userKey(user.ID))
	})
	if err != nil {
		return domain.User{}, err
	}
	return user, nil
}

func (s *Store) GetUserByID(id domain.UserID) (domain.User, error) {
	var user domain.User
	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, userKey(id), &user)
	})
	return user, err
}

func (s *Store) GetUserByUsername(username string) (domain.User, error) {
	return s.getUserByIndex(userByNameKey(username))
}

func (s *Store) GetUserByPhone(phone string) (domain.User, error) {
	return s.getUserByIndex(userByPhoneKey(phone))
}

func (s *Store) getUserByIndex(indexKey []byte) (domain.User, error) {
	var user domain.User
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(indexKey)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return apperrors.ErrNotFound
		}
		if err != nil {
			return err
		}
		var primary []byte
		if err := item.Value(func(v []byte) error {
			primary = append([]byte(nil), v...)
			return nil
		}); err != nil {
			return err
		}
		return getJSON(txn, primary, &user)
	})
	return user, err
}

func (s *Store) UpdateUser(user domain.User) error {
	user.UpdatedAt = time.Now().UTC()
	return s.db.Update(func(txn *badger.Txn) error {
		var existing domain.User
		if err := getJSON(txn, userKey(user.ID), &existing); err != nil {
			return err
		}
		return setJSON(txn, userKey(user.ID), user)
	})
}

// DeleteUser removes the user and its uniqueness indexes. Chats and
// messages referencing the id are left in place; history stays readable
// for the remaining participants.
func (s *Store) DeleteUser(id domain.UserID) error {
	return s.db.Update(func(txn *badger.Txn) error {
		var user domain.User
		if err := getJSON(txn, userKey(id), &user); err != nil {
			return err
		}
		if err := txn.Delete(userByNameKey(user.Username)); err != nil {
			return err
		}
		if err := txn.Delete(userByPhoneKey(user.PhoneNumber)); err != nil {
			return err
		}
		return txn.Delete(userKey(id))
	})
}

func (s *Store) ListUsers() ([]domain.User, error) {
	var users []domain.User
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := userPrefix()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var user domain.User
			err := it.Item().Value(func(v []byte) error {
				return json.Unmarshal(v, &user)
			})
			if err != nil {
				return err
			}
			users = append(users, user)
		}
		return nil
	})
	return users, err
}

func (s *Store) SetUserOnline(id domain.UserID, online bool) error {
	return s.db.Update(func(txn *badger.Txn) error {
		var user domain.User
		if err := getJSON(txn, userKey(id), &user); err != nil {
			return err
		}
		user.Online = online
		now := time.Now().UTC()
		user.LastSeenAt = &now
		user.UpdatedAt = now
		return setJSON(txn, userKey(id), user)
	})
}
