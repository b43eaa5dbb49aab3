package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	internal_errors "github.com/itchan-dev/filemsg/backend/internal/errors"
	"github.com/itchan-dev/filemsg/shared/domain"
	"github.com/itchan-dev/filemsg/shared/logger"
)

type CannedResponseStorage interface {
	ListCannedResponses(ctx context.Context, filter domain.CannedResponseFilter) ([]domain.CannedResponse, int, error)
	GetCannedResponse(ctx context.Context, id string) (*domain.CannedResponse, error)
	GetCannedResponseByShortcut(ctx context.Context, shortcut string) (*domain.CannedResponse, error)
	SaveCannedResponse(ctx context.Context, cr *domain.CannedResponse) error
}

type CannedResponseInput struct {
	Shortcut     string
	Text         string
	Scope        string
	Tags         []string
	DepartmentId string
}

var cannedSortFields = []string{"", "shortcut", "createdAt", "updatedAt"}

type CannedResponse struct {
	storage   CannedResponseStorage
	pageLimit int
	newId     func() string
	now       func() time.Time
}

func NewCannedResponse(storage CannedResponseStorage, pageLimit int) *CannedResponse {
	return &CannedResponse{
		storage:   storage,
		pageLimit: pageLimit,
		newId:     uuid.NewString,
		now:       time.Now,
	}
}

// List returns one page of the responses visible to user and the total
// number of matches.
func (s *CannedResponse) List(ctx context.Context, user *domain.User, filter domain.CannedResponseFilter) ([]domain.CannedResponse, int, error) {
	if user == nil {
		return nil, 0, internal_errors.ErrInvalidUser
	}
	if filter.Offset < 0 {
		return nil, 0, &internal_errors.ValidationError{Message: "invalid pagination", Fields: []string{"offset: must not be negative"}}
	}
	if !slices.Contains(cannedSortFields, filter.SortField) {
		return nil, 0, &internal_errors.ValidationError{Message: "invalid sort", Fields: []string{"sort: unknown field " + filter.SortField}}
	}
	if filter.Scope != "" && !validScope(filter.Scope) {
		return nil, 0, &internal_errors.ValidationError{Message: "invalid filter", Fields: []string{"scope: unknown scope " + filter.Scope}}
	}
	if filter.Count <= 0 || filter.Count > s.pageLimit {
		filter.Count = s.pageLimit
	}
	if filter.SortField == "" {
		filter.SortField, filter.SortDesc = "createdAt", true
	}
	filter.Viewer = user.Id

	responses, total, err := s.storage.ListCannedResponses(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list canned responses: %w", err)
	}
	return responses, total, nil
}

// ListForUser returns every response the user can insert.
func (s *CannedResponse) ListForUser(ctx context.Context, user *domain.User) ([]domain.CannedResponse, error) {
	if user == nil {
		return nil, internal_errors.ErrInvalidUser
	}
	responses, _, err := s.storage.ListCannedResponses(ctx, domain.CannedResponseFilter{
		Viewer:    user.Id,
		SortField: "shortcut",
	})
	if err != nil {
		return nil, fmt.Errorf("list canned responses: %w", err)
	}
	return responses, nil
}

// Save creates a response when id is empty and replaces it otherwise.
// Shortcuts are unique; user-scoped responses belong to their creator.
func (s *CannedResponse) Save(ctx context.Context, user *domain.User, id string, in CannedResponseInput) (*domain.CannedResponse, error) {
	if user == nil {
		return nil, internal_errors.ErrInvalidUser
	}
	if !validScope(in.Scope) {
		return nil, &internal_errors.ValidationError{Message: "invalid canned response", Fields: []string{"scope: unknown scope " + in.Scope}}
	}

	now := s.now().UTC()
	cr := &domain.CannedResponse{
		Id:        id,
		CreatedBy: domain.UserRef{Id: user.Id, Username: user.Username},
		CreatedAt: now,
	}
	if id != "" {
		existing, err := s.storage.GetCannedResponse(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("get canned response: %w", err)
		}
		if existing.Scope == domain.CannedScopeUser && existing.UserId != user.Id {
			return nil, internal_errors.NotFound
		}
		cr.CreatedBy, cr.CreatedAt = existing.CreatedBy, existing.CreatedAt
	} else {
		cr.Id = s.newId()
	}

	clash, err := s.storage.GetCannedResponseByShortcut(ctx, in.Shortcut)
	switch {
	case err == nil && clash.Id != cr.Id:
		return nil, &internal_errors.ValidationError{Message: "invalid canned response", Fields: []string{"shortcut: already in use"}}
	case err != nil && !errors.Is(err, internal_errors.NotFound):
		return nil, fmt.Errorf("check shortcut: %w", err)
	}

	cr.Shortcut = in.Shortcut
	cr.Text = in.Text
	cr.Scope = in.Scope
	cr.Tags = in.Tags
	cr.UpdatedAt = now
	switch in.Scope {
	case domain.CannedScopeDepartment:
		cr.DepartmentId = in.DepartmentId
	case domain.CannedScopeUser:
		cr.UserId = user.Id
	}

	if err := s.storage.SaveCannedResponse(ctx, cr); err != nil {
		return nil, fmt.Errorf("save canned response: %w", err)
	}
	logger.Log.Info("canned response saved",
		"component", "canned_response",
		"id", cr.Id,
		"shortcut", cr.Shortcut,
		"scope", cr.Scope,
		"user_id", user.Id)
	return cr, nil
}

func validScope(scope string) bool {
	switch scope {
	case domain.CannedScopeGlobal, domain.CannedScopeDepartment, domain.CannedScopeUser:
		return true
	}
	return false
}
