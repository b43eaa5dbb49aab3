package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	internal_errors "github.com/itchan-dev/filemsg/backend/internal/errors"
	"github.com/itchan-dev/filemsg/backend/internal/metrics"
	"github.com/itchan-dev/filemsg/shared/domain"
	"github.com/itchan-dev/filemsg/shared/logger"
)

type SendFileRequest struct {
	RoomId  domain.RoomId
	Store   string
	File    domain.UploadRecord
	MsgData map[string]any
}

// SendFile turns a finished upload into a chat message.
type SendFile struct {
	rooms    RoomAccess
	files    FileStorage
	builder  *AttachmentBuilder
	composer *MessageComposer
	post     PostProcessor
}

func NewSendFile(rooms RoomAccess, files FileStorage, builder *AttachmentBuilder, composer *MessageComposer, post PostProcessor) *SendFile {
	return &SendFile{
		rooms:    rooms,
		files:    files,
		builder:  builder,
		composer: composer,
		post:     post,
	}
}

// SendFileMessage finalizes the upload, builds its attachment, sends the
// message and schedules post-processing. Nothing is written before the
// access check and the caller data validation both pass.
func (s *SendFile) SendFileMessage(ctx context.Context, user *domain.User, req SendFileRequest) (*domain.Message, error) {
	start := time.Now()
	msg, err := s.sendFileMessage(ctx, user, req)
	result := "ok"
	if err != nil {
		result = "error"
	}
	metrics.SendFileDuration.WithLabelValues(result).Observe(time.Since(start).Seconds())
	return msg, err
}

func (s *SendFile) sendFileMessage(ctx context.Context, user *domain.User, req SendFileRequest) (*domain.Message, error) {
	if user == nil || user.Id == "" {
		return nil, internal_errors.ErrInvalidUser
	}

	room, err := s.rooms.GetRoom(ctx, req.RoomId)
	if err != nil && !errors.Is(err, internal_errors.NotFound) {
		return nil, fmt.Errorf("get room: %w", err)
	}
	if !user.IsApp() && !s.rooms.CanAccessRoom(ctx, room, user) {
		return nil, internal_errors.ErrRoomAccessDenied
	}
	if room == nil {
		return nil, internal_errors.NotFound
	}

	overrides, err := ParseOverrides(req.MsgData)
	if err != nil {
		return nil, err
	}

	upload := req.File
	if upload.Store == "" {
		upload.Store = req.Store
	}
	if err := s.files.FinalizeUpload(ctx, upload.Id, user.Id, upload); err != nil {
		return nil, fmt.Errorf("finalize upload: %w", err)
	}

	link := s.files.PublicPath(upload.Id, upload.Name)
	attachment, thumbId := s.builder.Build(ctx, BuildInput{
		Upload: &upload,
		Link:   link,
		RoomId: room.Id,
		UserId: user.Id,
	})

	draft := s.composer.Compose(ComposeInput{
		RoomId:     room.Id,
		Attachment: attachment,
		File: domain.FileRef{
			Id:      upload.Id,
			ThumbId: thumbId,
			Name:    upload.Name,
			Type:    upload.Type,
		},
		Overrides: overrides,
	})

	msg, err := s.composer.Send(ctx, user, draft)
	if err != nil {
		return nil, err
	}

	s.post.AfterFileUpload(user, room, msg)

	logger.Log.Info("file message sent",
		"component", "sendfile",
		"message_id", msg.Id,
		"room_id", room.Id,
		"file_id", upload.Id,
		"thumbnail", thumbId != nil)
	return msg, nil
}
