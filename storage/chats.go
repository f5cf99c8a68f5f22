package storage

import (
	"encoding/json"
	"time"

	"github.com/dgraph-io/badger/v4"

	"chat-core/domain"
)

func (s *Store) CreateChat(chat domain.Chat) (domain.Chat, error) {
	id, err := nextID(s.chatSeq)
	if err != nil {
		return domain.Chat{}, err
	}
	chat.ID = domain.ChatID(id)
	now := time.Now().UTC()
	chat.CreatedAt = now
	chat.UpdatedAt = now

	err = s.db.Update(func(txn *badger.Txn) error {
		return setJSON(txn, chatKey(chat.ID), chat)
	})
	if err != nil {
		return domain.Chat{}, err
	}
	return chat, nil
}

func (s *Store) GetChat(id domain.ChatID) (domain.Chat, error) {
	var chat domain.Chat
	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, chatKey(id), &chat)
	})
	return chat, err
}

func (s *Store) UpdateChat(chat domain.Chat) error {
	chat.UpdatedAt = time.Now().UTC()
	return s.db.Update(func(txn *badger.Txn) error {
		var existing domain.Chat
		if err := getJSON(txn, chatKey(chat.ID), &existing); err != nil {
			return err
		}
		return setJSON(txn, chatKey(chat.ID), chat)
	})
}

// DeleteChat removes the chat record, its membership rows and the
// per-user reverse index entries. Messages keep their primary records
// but the chat index is dropped so listing stops returning them.
func (s *Store) DeleteChat(id domain.ChatID) error {
	return s.db.Update(func(txn *badger.Txn) error {
		var chat domain.Chat
		if err := getJSON(txn, chatKey(id), &chat); err != nil {
			return err
		}

		members, err := collectParticipants(txn, id)
		if err != nil {
			return err
		}
		for _, m := range members {
			if err := txn.Delete(participantKey(id, m.UserID)); err != nil {
				return err
			}
			if err := txn.Delete(userChatKey(m.UserID, id)); err != nil {
				return err
			}
		}

		if err := deletePrefix(txn, chatMessagePrefix(id)); err != nil {
			return err
		}
		return txn.Delete(chatKey(id))
	})
}

func (s *Store) ListChatsForUser(userID domain.UserID) ([]domain.Chat, error) {
	var chats []domain.Chat
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := userChatPrefix(userID)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			chatID, err := chatIDFromUserChatKey(it.Item().Key(), prefix)
			if err != nil {
				return err
			}
			var chat domain.Chat
			if err := getJSON(txn, chatKey(chatID), &chat); err != nil {
				return err
			}
			chats = append(chats, chat)
		}
		return nil
	})
	return chats, err
}

func deletePrefix(txn *badger.Txn, prefix []byte) error {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	it := txn.NewIterator(opts)
	defer it.Close()

	var keys [][]byte
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		keys = append(keys, it.Item().KeyCopy(nil))
	}
	for _, k := range keys {
		if err := txn.Delete(k); err != nil {
			return err
		}
	}
	return nil
}

func collectParticipants(txn *badger.Txn, chatID domain.ChatID) ([]domain.ChatParticipant, error) {
	opts := badger.DefaultIteratorOptions
	it := txn.NewIterator(opts)
	defer it.Close()

	var members []domain.ChatParticipant
	prefix := participantPrefix(chatID)
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		var p domain.ChatParticipant
		err := it.Item().Value(func(v []byte) error {
			return json.Unmarshal(v, &p)
		})
		if err != nil {
			return nil, err
		}
		members = append(members, p)
	}
	return members, nil
}
