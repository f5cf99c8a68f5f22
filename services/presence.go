// Package services holds the business rules: authentication, command
// dispatch, message delivery and presence. Services speak to storage
// and the registry through the contract interfaces only.
package services

import (
	"log/slog"

	"github.com/samber/lo"

	"chat-core/contract"
	"chat-core/domain"
	"chat-core/protocol"
)

// PresenceService persists connectivity flips and pushes online/offline
// events to the contacts of the user who changed state.
type PresenceService struct {
	store    contract.Storage
	registry contract.Registry
	log      *slog.Logger
}

func NewPresenceService(store contract.Storage, registry contract.Registry, log *slog.Logger) *PresenceService {
	return &PresenceService{store: store, registry: registry, log: log}
}

func (p *PresenceService) WentOnline(userID domain.UserID) {
	if err := p.store.SetUserOnline(userID, true); err != nil {
		p.log.Warn("online flag not persisted", "userId", userID, "error", err)
	}
	p.notifyContacts(userID, protocol.PushUserOnline)
}

// WentOffline runs during session teardown; every step is best-effort.
func (p *PresenceService) WentOffline(userID domain.UserID) {
	if err := p.store.SetUserOnline(userID, false); err != nil {
		p.log.Warn("offline flag not persisted", "userId", userID, "error", err)
	}
	p.notifyContacts(userID, protocol.PushUserOffline)
}

func (p *PresenceService) notifyContacts(userID domain.UserID, sentinel string) {
	contacts, err := p.store.ListContacts(userID)
	if err != nil {
		p.log.Warn("contacts not loaded for presence push", "userId", userID, "error", err)
		return
	}
	if len(contacts) == 0 {
		return
	}

	targets := lo.Map(contacts, func(c domain.Contact, _ int) domain.UserID {
		return c.ContactUserID
	})
	payload := struct {
		UserID domain.UserID `json:"userId"`
	}{UserID: userID}
	p.registry.BroadcastExcept(targets, userID, protocol.OkResponse(sentinel, payload))
}
