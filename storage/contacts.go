package storage

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"

	"chat-core/domain"
	apperrors "chat-core/errors"
)

func (s *Store) AddContact(ownerID, contactUserID domain.UserID) error {
	c := domain.Contact{
		OwnerID:       ownerID,
		ContactUserID: contactUserID,
		AddedAt:       time.Now().UTC(),
	}
	return s.db.Update(func(txn *badger.Txn) error {
		// The contact must reference an existing account.
		var u domain.User
		if err := getJSON(txn, userKey(contactUserID), &u); err != nil {
			return err
		}
		return setJSON(txn, contactKey(ownerID, contactUserID), c)
	})
}

func (s *Store) ListContacts(ownerID domain.UserID) ([]domain.Contact, error) {
	var contacts []domain.Contact
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := contactPrefix(ownerID)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var c domain.Contact
			err := it.Item().Value(func(v []byte) error {
				return json.Unmarshal(v, &c)
			})
			if err != nil {
				return err
			}
			contacts = append(contacts, c)
		}
		return nil
	})
	return contacts, err
}

func (s *Store) RemoveContact(ownerID, contactUserID domain.UserID) error {
	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(contactKey(ownerID, contactUserID)); errors.Is(err, badger.ErrKeyNotFound) {
			return apperrors.ErrNotFound
		} else if err != nil {
			return err
		}
		return txn.Delete(contactKey(ownerID, contactUserID))
	})
}

func (s *Store) HasContact(ownerID, contactUserID domain.UserID) (bool, error) {
	return s.keyExists(contactKey(ownerID, contactUserID))
}

func (s *Store) BlockUser(blockerID, blockedID domain.UserID) error {
	b := domain.BlockedUser{
		BlockerID: blockerID,
		BlockedID: blockedID,
		BlockedAt: time.Now().UTC(),
	}
	return s.db.Update(func(txn *badger.Txn) error {
		var u domain.User
		if err := getJSON(txn, userKey(blockedID), &u); err != nil {
			return err
		}
		return setJSON(txn, blockKey(blockerID, blockedID), b)
	})
}

func (s *Store) UnblockUser(blockerID, blockedID domain.UserID) error {
	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(blockKey(blockerID, blockedID)); errors.Is(err, badger.ErrKeyNotFound) {
			return apperrors.ErrNotFound
		} else if err != nil {
			return err
		}
		return txn.Delete(blockKey(blockerID, blockedID))
	})
}

func (s *Store) IsBlocked(blockerID, blockedID domain.UserID) (bool, error) {
	return s.keyExists(blockKey(blockerID, blockedID))
}

func (s *Store) keyExists(key []byte) (bool, error) {
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
