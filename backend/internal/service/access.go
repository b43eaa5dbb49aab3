package service

import (
	"context"

	"github.com/itchan-dev/filemsg/shared/domain"
)

type RoomStorage interface {
	GetRoom(ctx context.Context, roomId domain.RoomId) (*domain.Room, error)
}

// RoomAccess resolves rooms and decides whether a user may post to them.
type RoomAccess interface {
	GetRoom(ctx context.Context, roomId domain.RoomId) (*domain.Room, error)
	CanAccessRoom(ctx context.Context, room *domain.Room, user *domain.User) bool
}

// RoomPolicy grants access to public channels and to room members.
type RoomPolicy struct {
	storage RoomStorage
}

func NewRoomPolicy(storage RoomStorage) *RoomPolicy {
	return &RoomPolicy{storage: storage}
}

func (p *RoomPolicy) GetRoom(ctx context.Context, roomId domain.RoomId) (*domain.Room, error) {
	return p.storage.GetRoom(ctx, roomId)
}

func (p *RoomPolicy) CanAccessRoom(ctx context.Context, room *domain.Room, user *domain.User) bool {
	if room == nil || user == nil {
		return false
	}
	if room.Type == domain.RoomTypeChannel {
		return true
	}
	return room.HasMember(user.Id)
}
