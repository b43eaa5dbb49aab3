package handler

import (
	"context"

	"github.com/itchan-dev/filemsg/backend/internal/service"
	"github.com/itchan-dev/filemsg/backend/internal/toolbox"
	"github.com/itchan-dev/filemsg/shared/domain"
)

type MockSendFileService struct {
	MockSendFileMessage func(ctx context.Context, user *domain.User, req service.SendFileRequest) (*domain.Message, error)
}

func (m *MockSendFileService) SendFileMessage(ctx context.Context, user *domain.User, req service.SendFileRequest) (*domain.Message, error) {
	if m.MockSendFileMessage != nil {
		return m.MockSendFileMessage(ctx, user, req)
	}
	return &domain.Message{Id: "msg1", RoomId: req.RoomId}, nil
}

type MockCannedResponseService struct {
	MockList        func(ctx context.Context, user *domain.User, filter domain.CannedResponseFilter) ([]domain.CannedResponse, int, error)
	MockListForUser func(ctx context.Context, user *domain.User) ([]domain.CannedResponse, error)
	MockSave        func(ctx context.Context, user *domain.User, id string, in service.CannedResponseInput) (*domain.CannedResponse, error)
}

func (m *MockCannedResponseService) List(ctx context.Context, user *domain.User, filter domain.CannedResponseFilter) ([]domain.CannedResponse, int, error) {
	if m.MockList != nil {
		return m.MockList(ctx, user, filter)
	}
	return []domain.CannedResponse{}, 0, nil
}

func (m *MockCannedResponseService) ListForUser(ctx context.Context, user *domain.User) ([]domain.CannedResponse, error) {
	if m.MockListForUser != nil {
		return m.MockListForUser(ctx, user)
	}
	return []domain.CannedResponse{}, nil
}

func (m *MockCannedResponseService) Save(ctx context.Context, user *domain.User, id string, in service.CannedResponseInput) (*domain.CannedResponse, error) {
	if m.MockSave != nil {
		return m.MockSave(ctx, user, id, in)
	}
	if id == "" {
		id = "new-id"
	}
	return &domain.CannedResponse{Id: id, Shortcut: in.Shortcut, Text: in.Text, Scope: in.Scope}, nil
}

type MockRoomAccess struct {
	MockGetRoom       func(ctx context.Context, roomId domain.RoomId) (*domain.Room, error)
	MockCanAccessRoom func(ctx context.Context, room *domain.Room, user *domain.User) bool
}

func (m *MockRoomAccess) GetRoom(ctx context.Context, roomId domain.RoomId) (*domain.Room, error) {
	if m.MockGetRoom != nil {
		return m.MockGetRoom(ctx, roomId)
	}
	return &domain.Room{Id: roomId, Type: domain.RoomTypeChannel}, nil
}

func (m *MockRoomAccess) CanAccessRoom(ctx context.Context, room *domain.Room, user *domain.User) bool {
	if m.MockCanAccessRoom != nil {
		return m.MockCanAccessRoom(ctx, room, user)
	}
	return true
}

type MockActionLister struct {
	MockForRoom func(room *domain.Room) []toolbox.ActionConfig
}

func (m *MockActionLister) ForRoom(room *domain.Room) []toolbox.ActionConfig {
	if m.MockForRoom != nil {
		return m.MockForRoom(room)
	}
	return nil
}

type MockHealthChecker struct {
	PingFunc func(ctx context.Context) error
}

func (m *MockHealthChecker) Ping(ctx context.Context) error {
	if m.PingFunc != nil {
		return m.PingFunc(ctx)
	}
	return nil
}
