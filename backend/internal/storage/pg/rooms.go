package pg

import (
	"context"
	"database/sql"
	"errors"

	internal_errors "github.com/itchan-dev/filemsg/backend/internal/errors"
	"github.com/itchan-dev/filemsg/shared/domain"
	sharedpg "github.com/itchan-dev/filemsg/shared/storage/pg"
	"github.com/lib/pq"
)

func (s *Storage) GetRoom(ctx context.Context, roomId domain.RoomId) (*domain.Room, error) {
	var (
		room    domain.Room
		members pq.StringArray
	)
	err := s.db.QueryRowContext(ctx, `
	SELECT r.id, r.type, r.name,
		COALESCE(array_agg(m.user_id ORDER BY m.user_id) FILTER (WHERE m.user_id IS NOT NULL), '{}')
	FROM rooms r
	LEFT JOIN room_members m ON m.room_id = r.id
	WHERE r.id = $1
	GROUP BY r.id`, roomId).Scan(&room.Id, &room.Type, &room.Name, &members)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, internal_errors.NotFound
		}
		return nil, err
	}
	room.Members = []domain.UserId(members)
	return &room, nil
}

// CreateRoom inserts a room with its members.
func (s *Storage) CreateRoom(ctx context.Context, room *domain.Room) error {
	return sharedpg.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
		INSERT INTO rooms(id, type, name) VALUES($1, $2, $3)`,
			room.Id, room.Type, room.Name); err != nil {
			return err
		}
		for _, userId := range room.Members {
			if err := addRoomMember(ctx, tx, room.Id, userId); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Storage) AddRoomMember(ctx context.Context, roomId domain.RoomId, userId domain.UserId) error {
	return addRoomMember(ctx, s.db, roomId, userId)
}

func addRoomMember(ctx context.Context, q sharedpg.Querier, roomId domain.RoomId, userId domain.UserId) error {
	_, err := q.ExecContext(ctx, `
	INSERT INTO room_members(room_id, user_id) VALUES($1, $2)
	ON CONFLICT DO NOTHING`, roomId, userId)
	return err
}
