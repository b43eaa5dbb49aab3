package service

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/itchan-dev/filemsg/shared/domain"
)

// --- FileStorage ---

type MockFileStorage struct {
	mu                 sync.Mutex
	FinalizeUploadFunc func(ctx context.Context, fileId domain.FileId, userId domain.UserId, meta domain.UploadRecord) error
	OpenUploadFunc     func(ctx context.Context, fileId domain.FileId) (io.ReadCloser, error)
	StoreThumbnailFunc func(ctx context.Context, original *domain.UploadRecord, buf *domain.ThumbnailBuffer, roomId domain.RoomId, userId domain.UserId) (*domain.ThumbnailRecord, error)
	PublicPathFunc     func(fileId domain.FileId, filename string) string

	FinalizeUploadCalls []domain.UploadRecord
	StoreThumbnailCalls []*domain.ThumbnailBuffer
}

func (m *MockFileStorage) FinalizeUpload(ctx context.Context, fileId domain.FileId, userId domain.UserId, meta domain.UploadRecord) error {
	m.mu.Lock()
	m.FinalizeUploadCalls = append(m.FinalizeUploadCalls, meta)
	m.mu.Unlock()
	if m.FinalizeUploadFunc != nil {
		return m.FinalizeUploadFunc(ctx, fileId, userId, meta)
	}
	return nil
}

func (m *MockFileStorage) OpenUpload(ctx context.Context, fileId domain.FileId) (io.ReadCloser, error) {
	if m.OpenUploadFunc != nil {
		return m.OpenUploadFunc(ctx, fileId)
	}
	return io.NopCloser(bytes.NewReader([]byte("original"))), nil
}

func (m *MockFileStorage) StoreThumbnail(ctx context.Context, original *domain.UploadRecord, buf *domain.ThumbnailBuffer, roomId domain.RoomId, userId domain.UserId) (*domain.ThumbnailRecord, error) {
	m.mu.Lock()
	m.StoreThumbnailCalls = append(m.StoreThumbnailCalls, buf)
	m.mu.Unlock()
	if m.StoreThumbnailFunc != nil {
		return m.StoreThumbnailFunc(ctx, original, buf, roomId, userId)
	}
	return &domain.ThumbnailRecord{
		Id:             "thumb-" + original.Id,
		OriginalFileId: original.Id,
		Name:           "thumb-" + original.Name,
		Type:           buf.MimeType,
		Size:           int64(len(buf.Data)),
		Dimensions:     domain.Dimensions{Width: buf.Width, Height: buf.Height},
		RoomId:         roomId,
		UserId:         userId,
	}, nil
}

func (m *MockFileStorage) PublicPath(fileId domain.FileId, filename string) string {
	if m.PublicPathFunc != nil {
		return m.PublicPathFunc(fileId, filename)
	}
	return "/file-upload/" + fileId + "/" + filename
}

func (m *MockFileStorage) writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.FinalizeUploadCalls) + len(m.StoreThumbnailCalls)
}

// --- ImageProcessor ---

type MockImageProcessor struct {
	PreviewFunc   func(ctx context.Context, src []byte) (string, error)
	ThumbnailFunc func(ctx context.Context, src []byte) (*domain.ThumbnailBuffer, error)
}

func (m *MockImageProcessor) Preview(ctx context.Context, src []byte) (string, error) {
	if m.PreviewFunc != nil {
		return m.PreviewFunc(ctx, src)
	}
	return "cHJldmlldw==", nil
}

func (m *MockImageProcessor) Thumbnail(ctx context.Context, src []byte) (*domain.ThumbnailBuffer, error) {
	if m.ThumbnailFunc != nil {
		return m.ThumbnailFunc(ctx, src)
	}
	return &domain.ThumbnailBuffer{Data: []byte("thumbnail"), MimeType: "image/png", Width: 480, Height: 360}, nil
}

// --- ThumbnailDeriver ---

type MockThumbnailDeriver struct {
	DeriveFunc  func(ctx context.Context, in DeriveInput) Derivation
	DeriveCalls int
}

func (m *MockThumbnailDeriver) Derive(ctx context.Context, in DeriveInput) Derivation {
	m.DeriveCalls++
	if m.DeriveFunc != nil {
		return m.DeriveFunc(ctx, in)
	}
	return Derivation{Kind: DerivationNone}
}

// --- MessageSender ---

type MockMessageSender struct {
	mu              sync.Mutex
	SendMessageFunc func(ctx context.Context, user *domain.User, msg *domain.Message) (*domain.Message, error)
	Sent            []*domain.Message
}

func (m *MockMessageSender) SendMessage(ctx context.Context, user *domain.User, msg *domain.Message) (*domain.Message, error) {
	m.mu.Lock()
	m.Sent = append(m.Sent, msg)
	m.mu.Unlock()
	if m.SendMessageFunc != nil {
		return m.SendMessageFunc(ctx, user, msg)
	}
	final := msg.Clone()
	final.User = &domain.UserRef{Id: user.Id, Username: user.Username}
	final.UpdatedAt = msg.CreatedAt
	return final, nil
}

// --- RoomAccess ---

type MockRoomAccess struct {
	GetRoomFunc       func(ctx context.Context, roomId domain.RoomId) (*domain.Room, error)
	CanAccessRoomFunc func(ctx context.Context, room *domain.Room, user *domain.User) bool
}

func (m *MockRoomAccess) GetRoom(ctx context.Context, roomId domain.RoomId) (*domain.Room, error) {
	if m.GetRoomFunc != nil {
		return m.GetRoomFunc(ctx, roomId)
	}
	return &domain.Room{Id: roomId, Type: domain.RoomTypeChannel, Name: "general"}, nil
}

func (m *MockRoomAccess) CanAccessRoom(ctx context.Context, room *domain.Room, user *domain.User) bool {
	if m.CanAccessRoomFunc != nil {
		return m.CanAccessRoomFunc(ctx, room, user)
	}
	return true
}

// --- PostProcessor ---

type afterFileUploadCall struct {
	User    *domain.User
	Room    *domain.Room
	Message *domain.Message
}

type MockPostProcessor struct {
	mu    sync.Mutex
	Calls []afterFileUploadCall
}

func (m *MockPostProcessor) AfterFileUpload(user *domain.User, room *domain.Room, msg *domain.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, afterFileUploadCall{User: user, Room: room, Message: msg})
}

// --- TaskSubmitter / CallbackRunner ---

type MockTaskSubmitter struct {
	mu     sync.Mutex
	Reject bool
	Names  []string
	Tasks  []func(ctx context.Context) error
}

func (m *MockTaskSubmitter) Submit(name string, task func(ctx context.Context) error) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Reject {
		return false
	}
	m.Names = append(m.Names, name)
	m.Tasks = append(m.Tasks, task)
	return true
}

type MockCallbackRunner struct {
	mu       sync.Mutex
	RunFunc  func(ctx context.Context, event string, payload any) error
	Events   []string
	Payloads []any
}

func (m *MockCallbackRunner) Run(ctx context.Context, event string, payload any) error {
	m.mu.Lock()
	m.Events = append(m.Events, event)
	m.Payloads = append(m.Payloads, payload)
	m.mu.Unlock()
	if m.RunFunc != nil {
		return m.RunFunc(ctx, event, payload)
	}
	return nil
}
