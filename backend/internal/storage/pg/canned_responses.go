package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	internal_errors "github.com/itchan-dev/filemsg/backend/internal/errors"
	"github.com/itchan-dev/filemsg/shared/domain"
	"github.com/lib/pq"
)

const cannedColumns = `id, shortcut, text, scope, tags, department_id, user_id, created_by_id, created_by_username, created_at, updated_at`

var cannedSortColumns = map[string]string{
	"shortcut":  "shortcut",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCannedResponse(row rowScanner, extra ...any) (*domain.CannedResponse, error) {
	var (
		cr   domain.CannedResponse
		tags pq.StringArray
	)
	dest := append([]any{&cr.Id, &cr.Shortcut, &cr.Text, &cr.Scope, &tags, &cr.DepartmentId, &cr.UserId,
		&cr.CreatedBy.Id, &cr.CreatedBy.Username, &cr.CreatedAt, &cr.UpdatedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	if len(tags) > 0 {
		cr.Tags = []string(tags)
	}
	return &cr, nil
}

// ListCannedResponses returns the page selected by filter and the number of
// matching rows ignoring pagination. Count 0 means no limit.
func (s *Storage) ListCannedResponses(ctx context.Context, filter domain.CannedResponseFilter) ([]domain.CannedResponse, int, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Viewer != "" {
		where = append(where, fmt.Sprintf("(scope <> 'user' OR user_id = %s)", arg(filter.Viewer)))
	}
	if filter.Shortcut != "" {
		where = append(where, "shortcut ILIKE "+arg(likePattern(filter.Shortcut)))
	}
	if filter.Text != "" {
		where = append(where, "text ILIKE "+arg(likePattern(filter.Text)))
	}
	if filter.Scope != "" {
		where = append(where, "scope = "+arg(filter.Scope))
	}
	if len(filter.Tags) > 0 {
		where = append(where, "tags && "+arg(pq.StringArray(filter.Tags)))
	}
	if filter.DepartmentId != "" {
		where = append(where, "department_id = "+arg(filter.DepartmentId))
	}
	if filter.CreatedBy != "" {
		where = append(where, "created_by_id = "+arg(filter.CreatedBy))
	}

	query := "SELECT " + cannedColumns + ", COUNT(*) OVER() FROM canned_responses"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}

	column, ok := cannedSortColumns[filter.SortField]
	if !ok {
		column = "created_at"
	}
	direction := "ASC"
	if filter.SortDesc {
		direction = "DESC"
	}
	query += fmt.Sprintf(" ORDER BY %s %s, id", column, direction)

	if filter.Count > 0 {
		query += " LIMIT " + arg(filter.Count)
	}
	if filter.Offset > 0 {
		query += " OFFSET " + arg(filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	responses := []domain.CannedResponse{}
	total := 0
	for rows.Next() {
		cr, err := scanCannedResponse(rows, &total)
		if err != nil {
			return nil, 0, err
		}
		responses = append(responses, *cr)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	// An offset past the end returns no rows and so no window count.
	if len(responses) == 0 && filter.Offset > 0 {
		if total, err = s.countCannedResponses(ctx, where, args, filter); err != nil {
			return nil, 0, err
		}
	}
	return responses, total, nil
}

func (s *Storage) countCannedResponses(ctx context.Context, where []string, args []any, filter domain.CannedResponseFilter) (int, error) {
	query := "SELECT COUNT(*) FROM canned_responses"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	// LIMIT and OFFSET arguments come last.
	n := len(args)
	if filter.Count > 0 {
		n--
	}
	if filter.Offset > 0 {
		n--
	}
	var total int
	err := s.db.QueryRowContext(ctx, query, args[:n]...).Scan(&total)
	return total, err
}

func (s *Storage) GetCannedResponse(ctx context.Context, id string) (*domain.CannedResponse, error) {
	return s.getCannedResponse(ctx, "id", id)
}

func (s *Storage) GetCannedResponseByShortcut(ctx context.Context, shortcut string) (*domain.CannedResponse, error) {
	return s.getCannedResponse(ctx, "shortcut", shortcut)
}

func (s *Storage) getCannedResponse(ctx context.Context, column, value string) (*domain.CannedResponse, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+cannedColumns+" FROM canned_responses WHERE "+column+" = $1", value)
	cr, err := scanCannedResponse(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, internal_errors.NotFound
		}
		return nil, err
	}
	return cr, nil
}

// SaveCannedResponse inserts cr or replaces the row with the same id.
func (s *Storage) SaveCannedResponse(ctx context.Context, cr *domain.CannedResponse) error {
	tags := cr.Tags
	if tags == nil {
		tags = []string{}
	}
	_, err := s.db.ExecContext(ctx, `
	INSERT INTO canned_responses(`+cannedColumns+`)
	VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	ON CONFLICT (id) DO UPDATE SET
		shortcut = EXCLUDED.shortcut,
		text = EXCLUDED.text,
		scope = EXCLUDED.scope,
		tags = EXCLUDED.tags,
		department_id = EXCLUDED.department_id,
		user_id = EXCLUDED.user_id,
		updated_at = EXCLUDED.updated_at`,
		cr.Id, cr.Shortcut, cr.Text, cr.Scope, pq.StringArray(tags), cr.DepartmentId, cr.UserId,
		cr.CreatedBy.Id, cr.CreatedBy.Username, cr.CreatedAt, cr.UpdatedAt)
	if isUniqueViolation(err) {
		return &internal_errors.ValidationError{Message: "invalid canned response", Fields: []string{"shortcut: already in use"}}
	}
	return err
}

// likePattern matches s anywhere, with LIKE wildcards in s taken literally.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}
