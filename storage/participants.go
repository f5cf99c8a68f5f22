package storage

import (
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"

	"chat-core/domain"
	apperrors "chat-core/errors"
)

func (s *Store) AddParticipant(p domain.ChatParticipant) error {
	if p.JoinedAt.IsZero() {
		p.JoinedAt = time.Now().UTC()
	}
	return s.db.Update(func(txn *badger.Txn) error {
		if err := setJSON(txn, participantKey(p.ChatID, p.UserID), p); err != nil {
			return err
		}
		return txn.Set(userChatKey(p.UserID, p.ChatID), []byte{})
	})
}

func (s *Store) GetParticipant(chatID domain.ChatID, userID domain.UserID) (domain.ChatParticipant, error) {
	var p domain.ChatParticipant
	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, participantKey(chatID, userID), &p)
	})
	return p, err
}

func (s *Store) ListParticipants(chatID domain.ChatID) ([]domain.ChatParticipant, error) {
	var members []domain.ChatParticipant
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		members, err = collectParticipants(txn, chatID)
		return err
	})
	return members, err
}

func (s *Store) UpdateParticipantRole(chatID domain.ChatID, userID domain.UserID, role domain.Role) error {
	return s.db.Update(func(txn *badger.Txn) error {
		var p domain.ChatParticipant
		if err := getJSON(txn, participantKey(chatID, userID), &p); err != nil {
			return err
		}
		p.Role = role
		return setJSON(txn, participantKey(chatID, userID), p)
	})
}

func (s *Store) RemoveParticipant(chatID domain.ChatID, userID domain.UserID) error {
	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(participantKey(chatID, userID)); errors.Is(err, badger.ErrKeyNotFound) {
			return apperrors.ErrNotFound
		} else if err != nil {
			return err
		}
		if err := txn.Delete(participantKey(chatID, userID)); err != nil {
			return err
		}
		return txn.Delete(userChatKey(userID, chatID))
	})
}

func (s *Store) IsParticipant(chatID domain.ChatID, userID domain.UserID) (bool, error) {
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(participantKey(chatID, userID))
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

// IncrementUnread bumps the unread counter by exactly one. Called once
// per message for each recipient without a live channel.
func (s *Store) IncrementUnread(chatID domain.ChatID, userID domain.UserID) error {
	return s.db.Update(func(txn *badger.Txn) error {
		var p domain.ChatParticipant
		if err := getJSON(txn, participantKey(chatID, userID), &p); err != nil {
			return err
		}
		p.UnreadCount++
		return setJSON(txn, participantKey(chatID, userID), p)
	})
}

// ResetUnread zeroes the counter and records the message the user has
// read up to.
func (s *Store) ResetUnread(chatID domain.ChatID, userID domain.UserID, lastRead domain.MessageID) error {
	return s.db.Update(func(txn *badger.Txn) error {
		var p domain.ChatParticipant
		if err := getJSON(txn, participantKey(chatID, userID), &p); err != nil {
			return err
		}
		p.UnreadCount = 0
		p.LastReadMessageID = &lastRead
		return setJSON(txn, participantKey(chatID, userID), p)
	})
}
