// Package storage implements the persistence collaborator on BadgerDB,
// with a Bluge index over message bodies for full-text search.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"

	apperrors "chat-core/errors"
)

const sequenceBandwidth = 64

// Store owns the Badger handle, the search index writer and the id
// sequences. All methods are safe for concurrent use; Badger
// transactions provide the isolation.
type Store struct {
	db    *badger.DB
	index *bluge.Writer
	log   *slog.Logger

	userSeq  *badger.Sequence
	chatSeq  *badger.Sequence
	msgSeq   *badger.Sequence
	notifSeq *badger.Sequence
	mediaSeq *badger.Sequence
}

func NewStore(db *badger.DB, index *bluge.Writer, log *slog.Logger) (*Store, error) {
	s := &Store{db: db, index: index, log: log}

	var err error
	for _, seq := range []struct {
		name string
		dst  **badger.Sequence
	}{
		{"seq:user", &s.userSeq},
		{"seq:chat", &s.chatSeq},
		{"seq:msg", &s.msgSeq},
		{"seq:notif", &s.notifSeq},
		{"seq:media", &s.mediaSeq},
	} {
		if *seq.dst, err = db.GetSequence([]byte(seq.name), sequenceBandwidth); err != nil {
			return nil, fmt.Errorf("sequence %s: %w", seq.name, err)
		}
	}
	return s, nil
}

// Close releases the id sequences. The Badger and Bluge handles are
// owned by the caller that opened them.
func (s *Store) Close() {
	for _, seq := range []*badger.Sequence{s.userSeq, s.chatSeq, s.msgSeq, s.notifSeq, s.mediaSeq} {
		if seq != nil {
			_ = seq.Release()
		}
	}
}

// nextID skips the zero value sequences start at, ids begin at 1.
func nextID(seq *badger.Sequence) (int64, error) {
	n, err := seq.Next()
	if err != nil {
		return 0, err
	}
	return int64(n) + 1, nil
}

// setJSON stores value under key inside txn.
func setJSON(txn *badger.Txn, key []byte, value any) error {
	bytes, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return txn.Set(key, bytes)
}

// getJSON loads key into dst, mapping a missing key to ErrNotFound.
func getJSON(txn *badger.Txn, key []byte, dst any) error {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return apperrors.ErrNotFound
	}
	if err != nil {
		return err
	}
	return item.Value(func(v []byte) error {
		return json.Unmarshal(v, dst)
	})
}
