package services

import (
	"context"

	"chat-core/contract"
	"chat-core/domain"
	"chat-core/protocol"
)

// handleUploadMedia stores an attachment ahead of the message that will
// reference it. Clients send the returned id in a later SEND_MESSAGE.
func (d *Dispatcher) handleUploadMedia(_ context.Context, sess contract.Session, cmd protocol.Command) protocol.Response {
	payload := cmd.Payload.(*protocol.UploadMediaPayload)
	self, _ := sess.User()

	media, err := d.store.CreateMedia(domain.Media{
		UploaderID: self.ID,
		FileName:   payload.FileName,
	}, payload.Content)
	if err != nil {
		return d.fail(err)
	}
	return protocol.OkResponse("Media uploaded", media)
}

func (d *Dispatcher) handleGetMedia(_ context.Context, _ contract.Session, cmd protocol.Command) protocol.Response {
	payload := cmd.Payload.(*protocol.MediaRefPayload)

	media, err := d.store.GetMedia(payload.MediaID)
	if err != nil {
		return d.fail(err)
	}
	content, err := d.store.GetMediaContent(payload.MediaID)
	if err != nil {
		return d.fail(err)
	}
	return protocol.OkResponse("Media details", mediaData{Media: media, Content: content})
}

type mediaData struct {
	domain.Media
	Content []byte `json:"content"`
}
