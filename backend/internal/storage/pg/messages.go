package pg

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	internal_errors "github.com/itchan-dev/filemsg/backend/internal/errors"
	"github.com/itchan-dev/filemsg/shared/domain"
)

// SendMessage persists msg and returns the stored version, which carries
// the author and the update timestamp.
func (s *Storage) SendMessage(ctx context.Context, user *domain.User, msg *domain.Message) (*domain.Message, error) {
	final := msg.Clone()
	final.User = &domain.UserRef{Id: user.Id, Username: user.Username}
	// database anyway rounds to microseconds
	final.CreatedAt = final.CreatedAt.UTC().Round(time.Microsecond)
	final.UpdatedAt = time.Now().UTC().Round(time.Microsecond)
	if final.Attachments == nil {
		final.Attachments = []domain.Attachment{}
	}

	file, err := marshalNullable(final.File)
	if err != nil {
		return nil, fmt.Errorf("marshal file: %w", err)
	}
	attachments, err := json.Marshal(final.Attachments)
	if err != nil {
		return nil, fmt.Errorf("marshal attachments: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
	INSERT INTO messages(id, room_id, user_id, username, msg, file, attachments, groupable, avatar, emoji, alias, tmid, created_at, updated_at)
	VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		final.Id, final.RoomId, final.User.Id, final.User.Username, final.Msg, file, string(attachments),
		final.Groupable, final.Avatar, final.Emoji, final.Alias, final.ThreadId, final.CreatedAt, final.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return final, nil
}

func (s *Storage) GetMessage(ctx context.Context, id domain.MsgId) (*domain.Message, error) {
	var (
		msg         domain.Message
		user        domain.UserRef
		file        []byte
		attachments []byte
	)
	err := s.db.QueryRowContext(ctx, `
	SELECT id, room_id, user_id, username, msg, file, attachments, groupable, avatar, emoji, alias, tmid, created_at, updated_at
	FROM messages
	WHERE id = $1`, id).Scan(&msg.Id, &msg.RoomId, &user.Id, &user.Username, &msg.Msg, &file, &attachments,
		&msg.Groupable, &msg.Avatar, &msg.Emoji, &msg.Alias, &msg.ThreadId, &msg.CreatedAt, &msg.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, internal_errors.NotFound
		}
		return nil, err
	}
	msg.User = &user
	if file != nil {
		msg.File = &domain.FileRef{}
		if err := json.Unmarshal(file, msg.File); err != nil {
			return nil, fmt.Errorf("unmarshal file: %w", err)
		}
	}
	if err := json.Unmarshal(attachments, &msg.Attachments); err != nil {
		return nil, fmt.Errorf("unmarshal attachments: %w", err)
	}
	return &msg, nil
}

// marshalNullable encodes v for a JSONB column, nil becomes SQL NULL.
func marshalNullable[T any](v *T) (any, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}
