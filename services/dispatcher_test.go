package services

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"chat-core/domain"
	apperrors "chat-core/errors"
	"chat-core/mocks"
	"chat-core/protocol"
)

func TestDispatcher_RegisterThenLogin(t *testing.T) {
	req := require.New(t)
	env := newTestEnv(t)

	sess := registerUser(t, env, "alice", "+33600000001")
	user, ok := sess.User()
	req.True(ok)
	req.Equal("alice", user.Username)
	req.Equal(1, env.registry.OnlineCount())

	stored, err := env.store.GetUserByUsername("alice")
	req.NoError(err)
	req.True(stored.Online)

	// A fresh connection can log in with the same credentials
	second := newFakeSession(env.registry)
	resp := env.dispatcher.Dispatch(t.Context(), second, command(protocol.KindLogin, &protocol.LoginPayload{
		Username: "alice",
		Password: testPassword,
	}))
	req.True(resp.OK, resp.Message)

	// Still one channel: the second login evicted the first
	req.Equal(1, env.registry.OnlineCount())
	current, found := env.registry.Lookup(user.ID)
	req.True(found)
	req.Same(second.ch, current)
}

func TestDispatcher_LoginWrongPassword(t *testing.T) {
	req := require.New(t)
	env := newTestEnv(t)

	registerUser(t, env, "alice", "+33600000001")

	sess := newFakeSession(env.registry)
	resp := env.dispatcher.Dispatch(t.Context(), sess, command(protocol.KindLogin, &protocol.LoginPayload{
		Username: "alice",
		Password: "WrongPass123!",
	}))
	req.False(resp.OK)
	_, ok := sess.User()
	req.False(ok)
}

func TestDispatcher_UnauthenticatedCommandHasNoEffect(t *testing.T) {
	req := require.New(t)
	env := newTestEnv(t)

	sess := newFakeSession(env.registry)
	resp := env.dispatcher.Dispatch(t.Context(), sess, command(protocol.KindSendMessage, &protocol.SendMessagePayload{
		ChatID:  1,
		Content: "sneaky",
	}))
	req.False(resp.OK)
	req.Equal("Authentication required", resp.Message)
	req.Equal(0, env.registry.OnlineCount())
}

func TestDispatcher_ResumeSession(t *testing.T) {
	req := require.New(t)
	env := newTestEnv(t)

	sess := registerUser(t, env, "alice", "+33600000001")
	user, _ := sess.User()

	// Extract the token from the registration response data
	login := env.dispatcher.Dispatch(t.Context(), newFakeSession(env.registry), command(protocol.KindLogin, &protocol.LoginPayload{
		Username: "alice",
		Password: testPassword,
	}))
	req.True(login.OK)

	var data struct {
		Token string `json:"token"`
	}
	req.NoError(unmarshalData(login.Data, &data))
	req.NotEmpty(data.Token)

	resumed := newFakeSession(env.registry)
	resp := env.dispatcher.Dispatch(t.Context(), resumed, command(protocol.KindResumeSession, &protocol.ResumeSessionPayload{
		Token: data.Token,
	}))
	req.True(resp.OK, resp.Message)

	resumedUser, ok := resumed.User()
	req.True(ok)
	req.Equal(user.ID, resumedUser.ID)

	// Garbage tokens never authenticate
	resp = env.dispatcher.Dispatch(t.Context(), newFakeSession(env.registry), command(protocol.KindResumeSession, &protocol.ResumeSessionPayload{
		Token: "not-a-token",
	}))
	req.False(resp.OK)
}

func TestDispatcher_ChatAuthorization(t *testing.T) {
	req := require.New(t)
	env := newTestEnv(t)

	alice := registerUser(t, env, "alice", "+33600000001")
	bob := registerUser(t, env, "bob", "+33600000002")
	bobUser, _ := bob.User()

	created := env.dispatcher.Dispatch(t.Context(), alice, command(protocol.KindCreateChat, &protocol.CreateChatPayload{
		Name: "general",
	}))
	req.True(created.OK)

	var chat domain.Chat
	req.NoError(unmarshalData(created.Data, &chat))

	// Bob is not a participant: details are refused
	resp := env.dispatcher.Dispatch(t.Context(), bob, command(protocol.KindGetChatDetails, &protocol.ChatRefPayload{ChatID: chat.ID}))
	req.False(resp.OK)

	// Alice adds Bob as a plain member
	resp = env.dispatcher.Dispatch(t.Context(), alice, command(protocol.KindAddParticipant, &protocol.AddParticipantPayload{
		ChatID: chat.ID,
		UserID: bobUser.ID,
	}))
	req.True(resp.OK, resp.Message)

	// A member cannot rename the chat
	name := "hijacked"
	resp = env.dispatcher.Dispatch(t.Context(), bob, command(protocol.KindUpdateChat, &protocol.UpdateChatPayload{
		ChatID: chat.ID,
		Name:   &name,
	}))
	req.False(resp.OK)

	// A member cannot add participants either
	resp = env.dispatcher.Dispatch(t.Context(), bob, command(protocol.KindAddParticipant, &protocol.AddParticipantPayload{
		ChatID: chat.ID,
		UserID: bobUser.ID,
	}))
	req.False(resp.OK)

	// Leaving on your own is always allowed
	resp = env.dispatcher.Dispatch(t.Context(), bob, command(protocol.KindRemoveParticipant, &protocol.RemoveParticipantPayload{
		ChatID: chat.ID,
		UserID: bobUser.ID,
	}))
	req.True(resp.OK, resp.Message)

	// The creator cannot be removed
	aliceUser, _ := alice.User()
	resp = env.dispatcher.Dispatch(t.Context(), alice, command(protocol.KindRemoveParticipant, &protocol.RemoveParticipantPayload{
		ChatID: chat.ID,
		UserID: aliceUser.ID,
	}))
	req.True(resp.OK) // self removal, even for the creator, is a leave

	// Only the creator can delete the chat
	resp = env.dispatcher.Dispatch(t.Context(), bob, command(protocol.KindDeleteChat, &protocol.ChatRefPayload{ChatID: chat.ID}))
	req.False(resp.OK)
}

func TestDispatcher_MessageOwnership(t *testing.T) {
	req := require.New(t)
	env := newTestEnv(t)

	alice := registerUser(t, env, "alice", "+33600000001")
	bob := registerUser(t, env, "bob", "+33600000002")
	bobUser, _ := bob.User()

	created := env.dispatcher.Dispatch(t.Context(), alice, command(protocol.KindCreateChat, &protocol.CreateChatPayload{Name: "general"}))
	var chat domain.Chat
	req.NoError(unmarshalData(created.Data, &chat))

	resp := env.dispatcher.Dispatch(t.Context(), alice, command(protocol.KindAddParticipant, &protocol.AddParticipantPayload{
		ChatID: chat.ID,
		UserID: bobUser.ID,
	}))
	req.True(resp.OK)

	sent := env.dispatcher.Dispatch(t.Context(), alice, command(protocol.KindSendMessage, &protocol.SendMessagePayload{
		ChatID:  chat.ID,
		Content: "hello bob",
	}))
	req.True(sent.OK, sent.Message)

	var msg domain.Message
	req.NoError(unmarshalData(sent.Data, &msg))

	// Bob cannot edit or delete Alice's message
	resp = env.dispatcher.Dispatch(t.Context(), bob, command(protocol.KindUpdateMessage, &protocol.UpdateMessagePayload{
		MessageID: msg.ID,
		Content:   "defaced",
	}))
	req.False(resp.OK)

	resp = env.dispatcher.Dispatch(t.Context(), bob, command(protocol.KindDeleteMessage, &protocol.MessageRefPayload{MessageID: msg.ID}))
	req.False(resp.OK)

	// Alice edits her own message
	resp = env.dispatcher.Dispatch(t.Context(), alice, command(protocol.KindUpdateMessage, &protocol.UpdateMessagePayload{
		MessageID: msg.ID,
		Content:   "hello again",
	}))
	req.True(resp.OK, resp.Message)

	var edited domain.Message
	req.NoError(unmarshalData(resp.Data, &edited))
	req.Equal("hello again", edited.Content)
	req.NotNil(edited.EditedAt)
}

func TestDispatcher_ContactsAndBlocks(t *testing.T) {
	req := require.New(t)
	env := newTestEnv(t)

	alice := registerUser(t, env, "alice", "+33600000001")
	bob := registerUser(t, env, "bob", "+33600000002")
	aliceUser, _ := alice.User()
	bobUser, _ := bob.User()

	// No self contact
	resp := env.dispatcher.Dispatch(t.Context(), alice, command(protocol.KindAddContact, &protocol.ContactPayload{ContactUserID: aliceUser.ID}))
	req.False(resp.OK)

	resp = env.dispatcher.Dispatch(t.Context(), alice, command(protocol.KindAddContact, &protocol.ContactPayload{ContactUserID: bobUser.ID}))
	req.True(resp.OK, resp.Message)

	// No self block
	resp = env.dispatcher.Dispatch(t.Context(), alice, command(protocol.KindBlockUser, &protocol.BlockPayload{TargetUserID: aliceUser.ID}))
	req.False(resp.OK)

	resp = env.dispatcher.Dispatch(t.Context(), bob, command(protocol.KindBlockUser, &protocol.BlockPayload{TargetUserID: aliceUser.ID}))
	req.True(resp.OK)

	// Alice can no longer signal a call to Bob
	resp = env.dispatcher.Dispatch(t.Context(), alice, command(protocol.KindCallAction, &protocol.CallActionPayload{
		CalleeID: bobUser.ID,
		Action:   protocol.CallRing,
	}))
	req.False(resp.OK)

	resp = env.dispatcher.Dispatch(t.Context(), bob, command(protocol.KindUnblockUser, &protocol.BlockPayload{TargetUserID: aliceUser.ID}))
	req.True(resp.OK)

	// Unblocked: the RING reaches Bob's channel as a push
	resp = env.dispatcher.Dispatch(t.Context(), alice, command(protocol.KindCallAction, &protocol.CallActionPayload{
		CalleeID: bobUser.ID,
		Action:   protocol.CallRing,
	}))
	req.True(resp.OK, resp.Message)

	pushes := bob.ch.responses()
	req.NotEmpty(pushes)
	req.Equal(protocol.PushIncomingCall, pushes[len(pushes)-1].Message)
}

func TestDispatcher_CallActionOfflineCallee(t *testing.T) {
	req := require.New(t)
	env := newTestEnv(t)

	alice := registerUser(t, env, "alice", "+33600000001")
	bob := registerUser(t, env, "bob", "+33600000002")
	bobUser, _ := bob.User()

	// Bob disconnects
	env.registry.Unregister(bobUser.ID, bob.ch)

	resp := env.dispatcher.Dispatch(t.Context(), alice, command(protocol.KindCallAction, &protocol.CallActionPayload{
		CalleeID: bobUser.ID,
		Action:   protocol.CallRing,
	}))
	req.False(resp.OK)
	req.Equal("User is offline", resp.Message)
}

func TestDispatcher_MediaUploadAndLookup(t *testing.T) {
	req := require.New(t)
	env := newTestEnv(t)

	alice := registerUser(t, env, "alice", "+33600000001")
	aliceUser, _ := alice.User()

	pngHeader := []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0}
	resp := env.dispatcher.Dispatch(t.Context(), alice, command(protocol.KindUploadMedia, &protocol.UploadMediaPayload{
		FileName: "avatar.png",
		Content:  pngHeader,
	}))
	req.True(resp.OK, resp.Message)

	var uploaded domain.Media
	req.NoError(unmarshalData(resp.Data, &uploaded))
	req.Equal(aliceUser.ID, uploaded.UploaderID)
	req.Equal("avatar.png", uploaded.FileName)
	// The stored mime type comes from sniffing the bytes, not the name.
	req.Equal("image/png", uploaded.MimeType)
	req.Equal(int64(len(pngHeader)), uploaded.SizeBytes)

	resp = env.dispatcher.Dispatch(t.Context(), alice, command(protocol.KindGetMedia, &protocol.MediaRefPayload{MediaID: uploaded.ID}))
	req.True(resp.OK, resp.Message)

	var fetched mediaData
	req.NoError(unmarshalData(resp.Data, &fetched))
	req.Equal(uploaded.ID, fetched.ID)
	req.Equal("image/png", fetched.MimeType)
	// The download carries the exact bytes that were uploaded
	req.Equal(pngHeader, fetched.Content)

	resp = env.dispatcher.Dispatch(t.Context(), alice, command(protocol.KindGetMedia, &protocol.MediaRefPayload{MediaID: uploaded.ID + 100}))
	req.False(resp.OK)
}

func TestDispatcher_UploadMediaStorageFailure(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStorage(ctrl)
	store.EXPECT().
		CreateMedia(gomock.Any(), gomock.Any()).
		Return(domain.Media{}, errors.New("value log write failed"))

	d := NewDispatcher(nil, nil, nil, store, nil, slog.Default())
	sess := &fakeSession{user: &domain.User{ID: 7, Username: "alice"}}

	resp := d.Dispatch(t.Context(), sess, command(protocol.KindUploadMedia, &protocol.UploadMediaPayload{
		FileName: "pic.png",
		Content:  []byte{1, 2, 3},
	}))
	req.False(resp.OK)
	req.Equal(apperrors.ErrStorage.Error(), resp.Message)
}
