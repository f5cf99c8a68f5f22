package services

import (
	"testing"

	"github.com/stretchr/testify/require"

	"chat-core/domain"
	"chat-core/protocol"
)

// Three participants: the sender, one online recipient and one offline
// recipient. The online one gets a push and keeps a zero counter; the
// offline one gets a counter bump; the sender's counter resets.
func TestDelivery_FanoutOnlineAndOffline(t *testing.T) {
	req := require.New(t)
	env := newTestEnv(t)

	alice := registerUser(t, env, "alice", "+33600000001")
	bob := registerUser(t, env, "bob", "+33600000002")
	clara := registerUser(t, env, "clara", "+33600000003")
	aliceUser, _ := alice.User()
	bobUser, _ := bob.User()
	claraUser, _ := clara.User()

	created := env.dispatcher.Dispatch(t.Context(), alice, command(protocol.KindCreateChat, &protocol.CreateChatPayload{Name: "general"}))
	var chat domain.Chat
	req.NoError(unmarshalData(created.Data, &chat))

	for _, id := range []domain.UserID{bobUser.ID, claraUser.ID} {
		resp := env.dispatcher.Dispatch(t.Context(), alice, command(protocol.KindAddParticipant, &protocol.AddParticipantPayload{
			ChatID: chat.ID,
			UserID: id,
		}))
		req.True(resp.OK, resp.Message)
	}

	// Clara goes offline
	env.registry.Unregister(claraUser.ID, clara.ch)

	bobPushesBefore := len(bob.ch.responses())
	sent := env.dispatcher.Dispatch(t.Context(), alice, command(protocol.KindSendMessage, &protocol.SendMessagePayload{
		ChatID:  chat.ID,
		Content: "hello everyone",
	}))
	req.True(sent.OK, sent.Message)

	var msg domain.Message
	req.NoError(unmarshalData(sent.Data, &msg))
	req.Equal("hello everyone", msg.Content)

	// Bob received exactly one push carrying the persisted message
	bobPushes := bob.ch.responses()[bobPushesBefore:]
	req.Len(bobPushes, 1)
	req.Equal(protocol.PushNewMessage, bobPushes[0].Message)
	var pushed domain.Message
	req.NoError(unmarshalData(bobPushes[0].Data, &pushed))
	req.Equal(msg.ID, pushed.ID)

	// Bob stayed online: no counter bump
	bobPart, err := env.store.GetParticipant(chat.ID, bobUser.ID)
	req.NoError(err)
	req.Equal(0, bobPart.UnreadCount)

	// Clara was offline: counter bumped once
	claraPart, err := env.store.GetParticipant(chat.ID, claraUser.ID)
	req.NoError(err)
	req.Equal(1, claraPart.UnreadCount)

	// The sender's counter reset and records the last read message
	alicePart, err := env.store.GetParticipant(chat.ID, aliceUser.ID)
	req.NoError(err)
	req.Equal(0, alicePart.UnreadCount)
	req.NotNil(alicePart.LastReadMessageID)
	req.Equal(msg.ID, *alicePart.LastReadMessageID)
}

func TestDelivery_NonParticipantCannotSend(t *testing.T) {
	req := require.New(t)
	env := newTestEnv(t)

	alice := registerUser(t, env, "alice", "+33600000001")
	mallory := registerUser(t, env, "mallory", "+33600000004")

	created := env.dispatcher.Dispatch(t.Context(), alice, command(protocol.KindCreateChat, &protocol.CreateChatPayload{Name: "private"}))
	var chat domain.Chat
	req.NoError(unmarshalData(created.Data, &chat))

	resp := env.dispatcher.Dispatch(t.Context(), mallory, command(protocol.KindSendMessage, &protocol.SendMessagePayload{
		ChatID:  chat.ID,
		Content: "let me in",
	}))
	req.False(resp.OK)

	// Nothing was persisted
	msgs, err := env.store.ListMessages(chat.ID, 10, 0)
	req.NoError(err)
	req.Empty(msgs)
}

func TestDelivery_CensorsBannedWords(t *testing.T) {
	req := require.New(t)
	env := newTestEnv(t)

	alice := registerUser(t, env, "alice", "+33600000001")

	created := env.dispatcher.Dispatch(t.Context(), alice, command(protocol.KindCreateChat, &protocol.CreateChatPayload{Name: "general"}))
	var chat domain.Chat
	req.NoError(unmarshalData(created.Data, &chat))

	sent := env.dispatcher.Dispatch(t.Context(), alice, command(protocol.KindSendMessage, &protocol.SendMessagePayload{
		ChatID:  chat.ID,
		Content: "this is a badword here",
	}))
	req.True(sent.OK, sent.Message)

	var msg domain.Message
	req.NoError(unmarshalData(sent.Data, &msg))
	req.NotContains(msg.Content, "badword")
	req.Contains(msg.Content, "*******")
}

func TestDelivery_TagsMessageLanguage(t *testing.T) {
	req := require.New(t)
	env := newTestEnv(t)

	alice := registerUser(t, env, "alice", "+33600000001")

	created := env.dispatcher.Dispatch(t.Context(), alice, command(protocol.KindCreateChat, &protocol.CreateChatPayload{Name: "general"}))
	var chat domain.Chat
	req.NoError(unmarshalData(created.Data, &chat))

	sent := env.dispatcher.Dispatch(t.Context(), alice, command(protocol.KindSendMessage, &protocol.SendMessagePayload{
		ChatID:  chat.ID,
		Content: "the quick brown fox jumps over the lazy dog and keeps on running through the fields",
	}))
	req.True(sent.OK)

	var msg domain.Message
	req.NoError(unmarshalData(sent.Data, &msg))
	req.Equal("eng", msg.Language)
}
