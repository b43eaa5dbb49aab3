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

// FinalizeUpload records the upload metadata and marks it complete.
// An upload owned by another user is reported as not found.
func (s *Storage) FinalizeUpload(ctx context.Context, fileId domain.FileId, userId domain.UserId, meta domain.UploadRecord) error {
	identify, err := marshalNullable(meta.Identify)
	if err != nil {
		return fmt.Errorf("marshal identify: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
	INSERT INTO uploads(id, name, type, size, store, description, identify, user_id, complete, uploaded_at)
	VALUES($1, $2, $3, $4, $5, $6, $7, $8, true, $9)
	ON CONFLICT (id) DO UPDATE SET
		name = EXCLUDED.name,
		type = EXCLUDED.type,
		size = EXCLUDED.size,
		store = EXCLUDED.store,
		description = EXCLUDED.description,
		identify = EXCLUDED.identify,
		complete = true,
		uploaded_at = EXCLUDED.uploaded_at
	WHERE uploads.user_id = EXCLUDED.user_id`,
		fileId, meta.Name, meta.Type, meta.Size, meta.Store, meta.Description, identify, userId, time.Now().UTC())
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return internal_errors.NotFound
	}
	return nil
}

func (s *Storage) GetUpload(ctx context.Context, fileId domain.FileId) (*domain.UploadRecord, error) {
	var (
		u        domain.UploadRecord
		identify []byte
	)
	err := s.db.QueryRowContext(ctx, `
	SELECT id, name, type, size, store, description, identify
	FROM uploads
	WHERE id = $1`, fileId).Scan(&u.Id, &u.Name, &u.Type, &u.Size, &u.Store, &u.Description, &identify)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, internal_errors.NotFound
		}
		return nil, err
	}
	if identify != nil {
		u.Identify = &domain.Identify{}
		if err := json.Unmarshal(identify, u.Identify); err != nil {
			return nil, fmt.Errorf("unmarshal identify: %w", err)
		}
	}
	return &u, nil
}

func (s *Storage) SaveThumbnail(ctx context.Context, t *domain.ThumbnailRecord) error {
	_, err := s.db.ExecContext(ctx, `
	INSERT INTO thumbnails(id, original_file_id, name, type, size, width, height, room_id, user_id, created_at)
	VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		t.Id, t.OriginalFileId, t.Name, t.Type, t.Size, t.Dimensions.Width, t.Dimensions.Height, t.RoomId, t.UserId, t.CreatedAt)
	return err
}

func (s *Storage) GetThumbnail(ctx context.Context, id domain.ThumbnailId) (*domain.ThumbnailRecord, error) {
	var t domain.ThumbnailRecord
	err := s.db.QueryRowContext(ctx, `
	SELECT id, original_file_id, name, type, size, width, height, room_id, user_id, created_at
	FROM thumbnails
	WHERE id = $1`, id).Scan(&t.Id, &t.OriginalFileId, &t.Name, &t.Type, &t.Size,
		&t.Dimensions.Width, &t.Dimensions.Height, &t.RoomId, &t.UserId, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, internal_errors.NotFound
		}
		return nil, err
	}
	return &t, nil
}

// GetAllFileIds lists every upload and thumbnail id, for the media GC.
func (s *Storage) GetAllFileIds(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT id FROM uploads
	UNION ALL
	SELECT id FROM thumbnails`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
