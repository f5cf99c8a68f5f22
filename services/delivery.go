package services

import (
	"log/slog"

	"github.com/abadojack/whatlanggo"

	"chat-core/contract"
	"chat-core/domain"
	apperrors "chat-core/errors"
	"chat-core/moderation"
	"chat-core/protocol"
)

// DeliveryService implements the send path: authorize, censor, tag the
// language, persist, then fan out. Recipients with a live channel get a
// push; the others get their unread counter bumped. The sender's own
// counter resets because their message is now the newest in the chat.
type DeliveryService struct {
	store     contract.Storage
	registry  contract.Registry
	moderator *moderation.Moderator
	log       *slog.Logger
}

func NewDeliveryService(store contract.Storage, registry contract.Registry, moderator *moderation.Moderator, log *slog.Logger) *DeliveryService {
	return &DeliveryService{store: store, registry: registry, moderator: moderator, log: log}
}

func (d *DeliveryService) Deliver(sender domain.User, payload protocol.SendMessagePayload) (domain.Message, error) {
	ok, err := d.store.IsParticipant(payload.ChatID, sender.ID)
	if err != nil {
		return domain.Message{}, err
	}
	if !ok {
		return domain.Message{}, apperrors.ErrAuthorizationDenied
	}

	content := payload.Content
	if d.moderator != nil {
		censored, hit := d.moderator.Censor(content)
		if hit {
			d.log.Info("message censored", "chatId", payload.ChatID, "senderId", sender.ID)
		}
		content = censored
	}

	msgType := payload.Type
	if msgType == "" {
		msgType = domain.MessageTypeText
	}

	msg := domain.Message{
		ChatID:            payload.ChatID,
		SenderID:          sender.ID,
		Type:              msgType,
		Content:           content,
		Language:          detectLanguage(content),
		MediaID:           payload.MediaID,
		RepliedToID:       payload.RepliedToID,
		ForwardedFromUser: payload.ForwardedFromUser,
		ForwardedFromChat: payload.ForwardedFromChat,
	}

	// Persistence first. A message is never pushed before it is durable.
	msg, err = d.store.CreateMessage(msg)
	if err != nil {
		return domain.Message{}, err
	}

	participants, err := d.store.ListParticipants(payload.ChatID)
	if err != nil {
		return domain.Message{}, err
	}

	push := protocol.OkResponse(protocol.PushNewMessage, msg)
	for _, p := range participants {
		if p.UserID == sender.ID {
			continue
		}
		if ch, online := d.registry.Lookup(p.UserID); online {
			if err := ch.Send(push); err != nil {
				d.log.Warn("push not delivered", "userId", p.UserID, "messageId", msg.ID, "error", err)
			}
			continue
		}
		if err := d.store.IncrementUnread(payload.ChatID, p.UserID); err != nil {
			d.log.Warn("unread counter not bumped", "userId", p.UserID, "chatId", payload.ChatID, "error", err)
		}
	}

	if err := d.store.ResetUnread(payload.ChatID, sender.ID, msg.ID); err != nil {
		d.log.Warn("sender unread counter not reset", "userId", sender.ID, "chatId", payload.ChatID, "error", err)
	}
	return msg, nil
}

// detectLanguage tags the message with an ISO 639-3 code, empty when
// detection is not confident enough to be useful.
func detectLanguage(content string) string {
	info := whatlanggo.Detect(content)
	if !info.IsReliable() {
		return ""
	}
	return info.Lang.Iso6393()
}
