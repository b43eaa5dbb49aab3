package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	internal_errors "github.com/itchan-dev/filemsg/backend/internal/errors"
	"github.com/itchan-dev/filemsg/shared/api"
	mw "github.com/itchan-dev/filemsg/shared/middleware"
	"github.com/itchan-dev/filemsg/shared/utils"
)

// GetRoomActions lists the toolbox actions available in a room.
func (h *Handler) GetRoomActions(w http.ResponseWriter, r *http.Request) {
	user := mw.GetUserFromContext(r)
	if user == nil {
		http.Error(w, "Please sign-in", http.StatusUnauthorized)
		return
	}

	room, err := h.rooms.GetRoom(r.Context(), chi.URLParam(r, "roomId"))
	if err != nil && !errors.Is(err, internal_errors.NotFound) {
		writeError(w, err)
		return
	}
	if !user.IsApp() && !h.rooms.CanAccessRoom(r.Context(), room, user) {
		writeError(w, internal_errors.ErrRoomAccessDenied)
		return
	}
	if room == nil {
		writeError(w, internal_errors.NotFound)
		return
	}

	configs := h.actions.ForRoom(room)
	actions := make([]api.RoomAction, len(configs))
	for i, c := range configs {
		actions[i] = api.RoomAction{
			Id:       c.Id,
			Icon:     c.Icon,
			Title:    c.Title,
			Order:    c.Order,
			Full:     c.Full,
			Hotkey:   c.Hotkey,
			Template: c.Template,
		}
	}
	utils.WriteJSON(w, http.StatusOK, api.RoomActionsResponse{Actions: actions})
}
