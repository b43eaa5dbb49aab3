package events

import (
	"context"
	"fmt"

	"github.com/itchan-dev/filemsg/backend/internal/callbacks"
	"github.com/itchan-dev/filemsg/backend/internal/service"
)

const (
	RoutingKeyFileUploaded = "file.uploaded"
	TypeFileUploaded       = "file.uploaded.v1"
)

type FileUploaded struct {
	UserId    string  `json:"user_id"`
	RoomId    string  `json:"room_id"`
	MessageId string  `json:"message_id"`
	FileId    string  `json:"file_id,omitempty"`
	ThumbId   *string `json:"thumb_id,omitempty"`
}

// Subscribe makes pub receive every afterFileUpload event.
func Subscribe(registry *callbacks.Registry, pub Publisher) {
	registry.Add(service.EventAfterFileUpload, "events.file-uploaded", callbacks.PriorityLow, func(ctx context.Context, payload any) error {
		p, ok := payload.(service.AfterFileUploadPayload)
		if !ok {
			return fmt.Errorf("unexpected payload %T", payload)
		}
		return pub.Publish(ctx, RoutingKeyFileUploaded, Envelope{
			Meta: Meta{Type: TypeFileUploaded},
			Data: fileUploaded(p),
		})
	})
}

func fileUploaded(p service.AfterFileUploadPayload) FileUploaded {
	e := FileUploaded{
		UserId: p.User.Id,
		RoomId: p.Room.Id,
	}
	if msg := p.Message; msg != nil {
		e.MessageId = msg.Id
		if msg.File != nil {
			e.FileId = msg.File.Id
			e.ThumbId = msg.File.ThumbId
		}
	}
	return e
}
