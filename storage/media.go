package storage

import (
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gabriel-vasile/mimetype"

	"chat-core/domain"
	apperrors "chat-core/errors"
)

// CreateMedia stores the attachment metadata and its bytes. The mime
// type is sniffed from the content; whatever the client claimed is
// overwritten.
func (s *Store) CreateMedia(m domain.Media, content []byte) (domain.Media, error) {
	id, err := nextID(s.mediaSeq)
	if err != nil {
		return domain.Media{}, err
	}
	m.ID = domain.MediaID(id)
	m.MimeType = mimetype.Detect(content).String()
	m.SizeBytes = int64(len(content))
	m.UploadedAt = time.Now().UTC()

	err = s.db.Update(func(txn *badger.Txn) error {
		if err := setJSON(txn, mediaKey(m.ID), m); err != nil {
			return err
		}
		return txn.Set(mediaBlobKey(m.ID), content)
	})
	if err != nil {
		return domain.Media{}, err
	}
	return m, nil
}

func (s *Store) GetMedia(id domain.MediaID) (domain.Media, error) {
	var m domain.Media
	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, mediaKey(id), &m)
	})
	return m, err
}

func (s *Store) GetMediaContent(id domain.MediaID) ([]byte, error) {
	var content []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(mediaBlobKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return apperrors.ErrNotFound
		}
		if err != nil {
			return err
		}
		content, err = item.ValueCopy(nil)
		return err
	})
	return content, err
}
