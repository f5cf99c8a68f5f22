package storage

import (
	"bytes"
	"fmt"
	"strconv"

	"chat-core/domain"
)

// Keys use 19-digit zero padding so that lexicographic iteration order
// matches numeric id order, the same scheme the message log relies on
// for chronological prefix scans.

func userKey(id domain.UserID) []byte {
	return []byte(fmt.Sprintf("user:%019d", id))
}

func userByNameKey(username string) []byte {
	return []byte("idx:user:name:" + username)
}

func userByPhoneKey(phone string) []byte {
	return []byte("idx:user:phone:" + phone)
}

func chatKey(id domain.ChatID) []byte {
	return []byte(fmt.Sprintf("chat:%019d", id))
}

func messageKey(id domain.MessageID) []byte {
	return []byte(fmt.Sprintf("msg:%019d", id))
}

// chatMessageKey indexes a message inside its chat; iteration over the
// chat prefix yields messages in persistence order.
func chatMessageKey(chatID domain.ChatID, id domain.MessageID) []byte {
	return []byte(fmt.Sprintf("chatmsg:%019d:%019d", chatID, id))
}

func chatMessagePrefix(chatID domain.ChatID) []byte {
	return []byte(fmt.Sprintf("chatmsg:%019d:", chatID))
}

func participantKey(chatID domain.ChatID, userID domain.UserID) []byte {
	return []byte(fmt.Sprintf("member:%019d:%019d", chatID, userID))
}

func participantPrefix(chatID domain.ChatID) []byte {
	return []byte(fmt.Sprintf("member:%019d:", chatID))
}

// userChatKey is the reverse index: chats a user belongs to.
func userChatKey(userID domain.UserID, chatID domain.ChatID) []byte {
	return []byte(fmt.Sprintf("userchat:%019d:%019d", userID, chatID))
}

func userChatPrefix(userID domain.UserID) []byte {
	return []byte(fmt.Sprintf("userchat:%019d:", userID))
}

func contactKey(ownerID, contactID domain.UserID) []byte {
	return []byte(fmt.Sprintf("contact:%019d:%019d", ownerID, contactID))
}

func contactPrefix(ownerID domain.UserID) []byte {
	return []byte(fmt.Sprintf("contact:%019d:", ownerID))
}

func blockKey(blockerID, blockedID domain.UserID) []byte {
	return []byte(fmt.Sprintf("block:%019d:%019d", blockerID, blockedID))
}

func notificationKey(id domain.NotificationID) []byte {
	return []byte(fmt.Sprintf("notif:%019d", id))
}

func userNotificationKey(recipientID domain.UserID, id domain.NotificationID) []byte {
	return []byte(fmt.Sprintf("usernotif:%019d:%019d", recipientID, id))
}

func userNotificationPrefix(recipientID domain.UserID) []byte {
	return []byte(fmt.Sprintf("usernotif:%019d:", recipientID))
}

func mediaKey(id domain.MediaID) []byte {
	return []byte(fmt.Sprintf("media:%019d", id))
}

func mediaBlobKey(id domain.MediaID) []byte {
	return []byte(fmt.Sprintf("mediablob:%019d", id))
}

func userPrefix() []byte { return []byte("user:") }

// chatIDFromUserChatKey recovers the chat id suffix of a reverse index
// key. The prefix has already been matched by the iterator.
func chatIDFromUserChatKey(key, prefix []byte) (domain.ChatID, error) {
	raw := bytes.TrimPrefix(key, prefix)
	id, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed reverse index key %q: %w", key, err)
	}
	return domain.ChatID(id), nil
}
