package storage

import (
	"context"
	"strconv"
	"time"

	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"

	"chat-core/domain"
)

// CreateMessage persists the message, appends it to the per-chat index
// and makes its body searchable. The Badger write commits first; a
// failed index update only degrades search, never message history.
func (s *Store) CreateMessage(msg domain.Message) (domain.Message, error) {
	id, err := nextID(s.msgSeq)
	if err != nil {
		return domain.Message{}, err
	}
	msg.ID = domain.MessageID(id)
	msg.SentAt = time.Now().UTC()

	err = s.db.Update(func(txn *badger.Txn) error {
		if err := setJSON(txn, messageKey(msg.ID), msg); err != nil {
			return err
		}
		return txn.Set(chatMessageKey(msg.ChatID, msg.ID), messageKey(msg.ID))
	})
	if err != nil {
		return domain.Message{}, err
	}

	if err := s.indexMessage(msg); err != nil {
		s.log.Warn("message not indexed for search", "messageId", msg.ID, "error", err)
	}
	return msg, nil
}

func (s *Store) GetMessage(id domain.MessageID) (domain.Message, error) {
	var msg domain.Message
	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, messageKey(id), &msg)
	})
	return msg, err
}

func (s *Store) UpdateMessage(msg domain.Message) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		var existing domain.Message
		if err := getJSON(txn, messageKey(msg.ID), &existing); err != nil {
			return err
		}
		return setJSON(txn, messageKey(msg.ID), msg)
	})
	if err != nil {
		return err
	}
	if err := s.indexMessage(msg); err != nil {
		s.log.Warn("message index not refreshed", "messageId", msg.ID, "error", err)
	}
	return nil
}

// SoftDeleteMessage flags the message as deleted and drops it from the
// search index. The record stays so replies keep a resolvable target.
func (s *Store) SoftDeleteMessage(id domain.MessageID) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		var msg domain.Message
		if err := getJSON(txn, messageKey(id), &msg); err != nil {
			return err
		}
		msg.Deleted = true
		msg.Content = ""
		return setJSON(txn, messageKey(id), msg)
	})
	if err != nil {
		return err
	}
	if err := s.index.Delete(bluge.Identifier(messageDocID(id))); err != nil {
		s.log.Warn("deleted message still indexed", "messageId", id, "error", err)
	}
	return nil
}

// ListMessages returns up to limit messages of a chat, newest window
// first by offset, in chronological order within the window.
func (s *Store) ListMessages(chatID domain.ChatID, limit, offset int) ([]domain.Message, error) {
	if limit <= 0 {
		limit = 50
	}
	var msgs []domain.Message
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := chatMessagePrefix(chatID)
		// Reverse iteration starts just past the last key of the prefix.
		seek := append(append([]byte(nil), prefix...), 0xFF)
		skipped := 0
		for it.Seek(seek); it.ValidForPrefix(prefix); it.Next() {
			if skipped < offset {
				skipped++
				continue
			}
			if len(msgs) == limit {
				break
			}
			var primary []byte
			err := it.Item().Value(func(v []byte) error {
				primary = append([]byte(nil), v...)
				return nil
			})
			if err != nil {
				return err
			}
			var msg domain.Message
			if err := getJSON(txn, primary, &msg); err != nil {
				return err
			}
			msgs = append(msgs, msg)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	// Oldest first inside the returned window.
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

// SearchMessages runs a full-text match over message bodies, restricted
// to chats the user belongs to.
func (s *Store) SearchMessages(userID domain.UserID, query string, limit int) ([]domain.Message, error) {
	if limit <= 0 {
		limit = 20
	}
	chatIDs, err := s.chatIDsForUser(userID)
	if err != nil {
		return nil, err
	}
	if len(chatIDs) == 0 {
		return nil, nil
	}

	reader, err := s.index.Reader()
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	scope := bluge.NewBooleanQuery()
	scope.SetMinShould(1)
	for _, id := range chatIDs {
		scope.AddShould(bluge.NewTermQuery(chatDocTerm(id)).SetField("chat"))
	}
	q := bluge.NewBooleanQuery().
		AddMust(bluge.NewMatchQuery(query).SetField("content")).
		AddMust(scope)

	dmi, err := reader.Search(context.Background(), bluge.NewTopNSearch(limit, q))
	if err != nil {
		return nil, err
	}

	var msgs []domain.Message
	for {
		match, err := dmi.Next()
		if err != nil {
			return nil, err
		}
		if match == nil {
			break
		}
		var docID string
		err = match.VisitStoredFields(func(field string, value []byte) bool {
			if field == "_id" {
				docID = string(value)
				return false
			}
			return true
		})
		if err != nil {
			return nil, err
		}
		id, err := strconv.ParseInt(docID, 10, 64)
		if err != nil {
			continue
		}
		msg, err := s.GetMessage(domain.MessageID(id))
		if err != nil {
			continue
		}
		if !msg.Deleted {
			msgs = append(msgs, msg)
		}
	}
	return msgs, nil
}

func (s *Store) chatIDsForUser(userID domain.UserID) ([]domain.ChatID, error) {
	var ids []domain.ChatID
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := userChatPrefix(userID)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			id, err := chatIDFromUserChatKey(it.Item().Key(), prefix)
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}
		return nil
	})
	return ids, err
}

func (s *Store) indexMessage(msg domain.Message) error {
	if msg.Deleted {
		return s.index.Delete(bluge.Identifier(messageDocID(msg.ID)))
	}
	doc := bluge.NewDocument(messageDocID(msg.ID)).
		AddField(bluge.NewTextField("content", msg.Content).StoreValue()).
		AddField(bluge.NewKeywordField("chat", chatDocTerm(msg.ChatID)))
	return s.index.Update(doc.ID(), doc)
}

func messageDocID(id domain.MessageID) string {
	return strconv.FormatInt(int64(id), 10)
}

func chatDocTerm(id domain.ChatID) string {
	return strconv.FormatInt(int64(id), 10)
}
