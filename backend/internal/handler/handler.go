package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	internal_errors "github.com/itchan-dev/filemsg/backend/internal/errors"
	"github.com/itchan-dev/filemsg/backend/internal/service"
	"github.com/itchan-dev/filemsg/backend/internal/toolbox"
	"github.com/itchan-dev/filemsg/shared/domain"
	"github.com/itchan-dev/filemsg/shared/logger"
	"github.com/itchan-dev/filemsg/shared/utils"
)

type SendFileService interface {
	SendFileMessage(ctx context.Context, user *domain.User, req service.SendFileRequest) (*domain.Message, error)
}

type CannedResponseService interface {
	List(ctx context.Context, user *domain.User, filter domain.CannedResponseFilter) ([]domain.CannedResponse, int, error)
	ListForUser(ctx context.Context, user *domain.User) ([]domain.CannedResponse, error)
	Save(ctx context.Context, user *domain.User, id string, in service.CannedResponseInput) (*domain.CannedResponse, error)
}

type ActionLister interface {
	ForRoom(room *domain.Room) []toolbox.ActionConfig
}

type HealthChecker interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	sendFile SendFileService
	canned   CannedResponseService
	rooms    service.RoomAccess
	actions  ActionLister
	health   HealthChecker
}

func New(sendFile SendFileService, canned CannedResponseService, rooms service.RoomAccess, actions ActionLister, health HealthChecker) *Handler {
	return &Handler{
		sendFile: sendFile,
		canned:   canned,
		rooms:    rooms,
		actions:  actions,
		health:   health,
	}
}

// writeError maps domain errors to status codes. Anything unknown is a 500.
func writeError(w http.ResponseWriter, err error) {
	var validationErr *internal_errors.ValidationError
	switch {
	case errors.As(err, &validationErr):
		http.Error(w, validationErr.Error(), http.StatusBadRequest)
	case errors.Is(err, internal_errors.ErrInvalidUser):
		http.Error(w, "Please sign-in", http.StatusUnauthorized)
	case errors.Is(err, internal_errors.ErrRoomAccessDenied):
		http.Error(w, "Not allowed", http.StatusForbidden)
	case errors.Is(err, internal_errors.NotFound):
		http.Error(w, "Not found", http.StatusNotFound)
	case errors.Is(err, context.Canceled):
		logger.Log.Debug("request cancelled", "error", err)
	default:
		utils.WriteErrorAndStatusCode(w, err)
	}
}

// parseIntParam parses an integer parameter from a string and returns a meaningful error
func parseIntParam(param string, paramName string) (int, error) {
	val, err := strconv.Atoi(param)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: must be an integer", paramName)
	}
	return val, nil
}
