package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"chat-core/domain"

	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"
)

// inspect dumps the primary entity rows of a chat-core database as a
// table. Index rows (idx:, userchat:, chatmsg:, usernotif:) are skipped
// because they only duplicate what the primary rows already show.
func main() {
	_ = godotenv.Load()

	defaultPath := os.Getenv("BADGER_FILEPATH")
	dbPath := flag.String("db", defaultPath, "Path to badger DB")
	prefix := flag.String("prefix", "", "Prefix to scan (empty scans every entity)")
	flag.Parse()

	db, err := openDB(*dbPath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Type", "Timestamp", "Entity ID", "Detail"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefixBytes := []byte(*prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			item := it.Item()
			key := string(item.Key())

			if isIndexKey(key) {
				continue
			}

			err := item.Value(func(v []byte) error {
				row, ok := mapRow(key, v)
				if !ok {
					return nil
				}
				table.Append(row)
				return nil
			})
			if err != nil {
				fmt.Printf("Error reading key %s: %v\n", key, err)
			}
		}
		return nil
	})
	if err != nil {
		log.Fatal("Error while scanning: ", err)
	}

	table.Render()
}

func isIndexKey(key string) bool {
	for _, p := range []string{"idx:", "userchat:", "chatmsg:", "usernotif:", "seq:", "mediablob:"} {
		if strings.HasPrefix(key, p) {
			return true
		}
	}
	return false
}

// mapRow decodes the JSON value behind a primary key into a short
// human readable line, dispatching on the key prefix.
func mapRow(key string, val []byte) ([]string, bool) {
	switch {
	case strings.HasPrefix(key, "user:"):
		var u domain.User
		if err := json.Unmarshal(val, &u); err != nil {
			return nil, false
		}
		detail := fmt.Sprintf("%s (%s) online=%t", u.Username, u.PhoneNumber, u.Online)
		return []string{key, "USER", u.CreatedAt.Format("15:04:05"), fmt.Sprint(u.ID), detail}, true

	case strings.HasPrefix(key, "chat:"):
		var c domain.Chat
		if err := json.Unmarshal(val, &c); err != nil {
			return nil, false
		}
		detail := fmt.Sprintf("%s [%s] creator=%d", c.Name, c.Type, c.CreatorID)
		return []string{key, "CHAT", c.CreatedAt.Format("15:04:05"), fmt.Sprint(c.ID), detail}, true

	case strings.HasPrefix(key, "msg:"):
		var m domain.Message
		if err := json.Unmarshal(val, &m); err != nil {
			return nil, false
		}
		detail := truncate(m.Content, 60)
		if m.Deleted {
			detail = "(deleted)"
		}
		detail = fmt.Sprintf("chat=%d sender=%d %s", m.ChatID, m.SenderID, detail)
		return []string{key, "MSG", m.SentAt.Format("15:04:05"), fmt.Sprint(m.ID), detail}, true

	case strings.HasPrefix(key, "member:"):
		var p domain.ChatParticipant
		if err := json.Unmarshal(val, &p); err != nil {
			return nil, false
		}
		detail := fmt.Sprintf("chat=%d user=%d role=%s unread=%d", p.ChatID, p.UserID, p.Role, p.UnreadCount)
		return []string{key, "MEMBER", p.JoinedAt.Format("15:04:05"), fmt.Sprint(p.UserID), detail}, true

	case strings.HasPrefix(key, "notif:"):
		var n domain.Notification
		if err := json.Unmarshal(val, &n); err != nil {
			return nil, false
		}
		detail := fmt.Sprintf("to=%d read=%t %s", n.RecipientID, n.Read, truncate(n.Text, 40))
		return []string{key, "NOTIF", n.CreatedAt.Format("15:04:05"), fmt.Sprint(n.ID), detail}, true

	case strings.HasPrefix(key, "media:"):
		var m domain.Media
		if err := json.Unmarshal(val, &m); err != nil {
			return nil, false
		}
		detail := fmt.Sprintf("%s %s %dB", m.FileName, m.MimeType, m.SizeBytes)
		return []string{key, "MEDIA", m.UploadedAt.Format("15:04:05"), fmt.Sprint(m.ID), detail}, true
	}

	return []string{key, "RAW", "", "", truncate(string(val), 60)}, true
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}

func openDB(path string) (*badger.DB, error) {
	// BypassLockGuard allows opening while the server holds the lock.
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLoggingLevel(badger.WARNING)
	return badger.Open(opts)
}
