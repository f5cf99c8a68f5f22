package protocol

// Kind enumerates the operations a client can request.
type Kind string

const (
	// Session
	KindLogin         Kind = "LOGIN"
	KindRegister      Kind = "REGISTER"
	KindResumeSession Kind = "RESUME_SESSION"
	KindLogout        Kind = "LOGOUT"

	// User management
	KindGetUserProfile    Kind = "GET_USER_PROFILE"
	KindUpdateUserProfile Kind = "UPDATE_USER_PROFILE"
	KindDeleteUser        Kind = "DELETE_USER"
	KindGetAllUsers       Kind = "GET_ALL_USERS"

	// Chat management
	KindCreateChat     Kind = "CREATE_CHAT"
	KindGetUserChats   Kind = "GET_USER_CHATS"
	KindGetChatDetails Kind = "GET_CHAT_DETAILS"
	KindUpdateChat     Kind = "UPDATE_CHAT"
	KindDeleteChat     Kind = "DELETE_CHAT"

	// Message management
	KindSendMessage     Kind = "SEND_MESSAGE"
	KindGetChatMessages Kind = "GET_CHAT_MESSAGES"
	KindUpdateMessage   Kind = "UPDATE_MESSAGE"
	KindDeleteMessage   Kind = "DELETE_MESSAGE"
	KindMarkRead        Kind = "MARK_MESSAGE_AS_READ"
	KindSearchMessages  Kind = "SEARCH_MESSAGES"
	KindUploadMedia     Kind = "UPLOAD_MEDIA"
	KindGetMedia        Kind = "GET_MEDIA"

	// Participant management
	KindAddParticipant    Kind = "ADD_CHAT_PARTICIPANT"
	KindGetParticipants   Kind = "GET_CHAT_PARTICIPANTS"
	KindUpdateParticipant Kind = "UPDATE_CHAT_PARTICIPANT"
	KindRemoveParticipant Kind = "REMOVE_CHAT_PARTICIPANT"

	// Contacts and blocks
	KindAddContact    Kind = "ADD_CONTACT"
	KindGetContacts   Kind = "GET_CONTACTS"
	KindRemoveContact Kind = "REMOVE_CONTACT"
	KindBlockUser     Kind = "BLOCK_USER"
	KindUnblockUser   Kind = "UNBLOCK_USER"

	// Notifications
	KindGetNotifications Kind = "GET_USER_NOTIFICATIONS"
	KindMarkNotification Kind = "MARK_NOTIFICATION_AS_READ"
	KindDeleteNotif      Kind = "DELETE_NOTIFICATION"

	// Calls
	KindCallAction Kind = "CALL_ACTION"
)

// Authenticating reports whether the kind is allowed before login.
func (k Kind) Authenticating() bool {
	switch k {
	case KindLogin, KindRegister, KindResumeSession:
		return true
	}
	return false
}
