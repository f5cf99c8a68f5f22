package storage

import (
	"time"

	"github.com/dgraph-io/badger/v4"

	"chat-core/domain"
)

func (s *Store) CreateNotification(n domain.Notification) (domain.Notification, error) {
	id, err := nextID(s.notifSeq)
	if err != nil {
		return domain.Notification{}, err
	}
	n.ID = domain.NotificationID(id)
	n.CreatedAt = time.Now().UTC()

	err = s.db.Update(func(txn *badger.Txn) error {
		if err := setJSON(txn, notificationKey(n.ID), n); err != nil {
			return err
		}
		return txn.Set(userNotificationKey(n.RecipientID, n.ID), notificationKey(n.ID))
	})
	if err != nil {
		return domain.Notification{}, err
	}
	return n, nil
}

func (s *Store) GetNotification(id domain.NotificationID) (domain.Notification, error) {
	var n domain.Notification
	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, notificationKey(id), &n)
	})
	return n, err
}

func (s *Store) ListNotifications(recipientID domain.UserID) ([]domain.Notification, error) {
	var notifs []domain.Notification
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := userNotificationPrefix(recipientID)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var primary []byte
			err := it.Item().Value(func(v []byte) error {
				primary = append([]byte(nil), v...)
				return nil
			})
			if err != nil {
				return err
			}
			var n domain.Notification
			if err := getJSON(txn, primary, &n); err != nil {
				return err
			}
			notifs = append(notifs, n)
		}
		return nil
	})
	return notifs, err
}

func (s *Store) MarkNotificationRead(id domain.NotificationID) error {
	return s.db.Update(func(txn *badger.Txn) error {
		var n domain.Notification
		if err := getJSON(txn, notificationKey(id), &n); err != nil {
			return err
		}
		n.Read = true
		return setJSON(txn, notificationKey(id), n)
	})
}

func (s *Store) DeleteNotification(id domain.NotificationID) error {
	return s.db.Update(func(txn *badger.Txn) error {
		var n domain.Notification
		if err := getJSON(txn, notificationKey(id), &n); err != nil {
			return err
		}
		if err := txn.Delete(userNotificationKey(n.RecipientID, n.ID)); err != nil {
			return err
		}
		return txn.Delete(notificationKey(id))
	})
}
