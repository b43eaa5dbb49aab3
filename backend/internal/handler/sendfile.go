package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/itchan-dev/filemsg/backend/internal/service"
	"github.com/itchan-dev/filemsg/shared/api"
	mw "github.com/itchan-dev/filemsg/shared/middleware"
	"github.com/itchan-dev/filemsg/shared/utils"
)

func (h *Handler) SendFileMessage(w http.ResponseWriter, r *http.Request) {
	user := mw.GetUserFromContext(r)
	if user == nil {
		http.Error(w, "Please sign-in", http.StatusUnauthorized)
		return
	}

	var body api.SendFileMessageRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	msg, err := h.sendFile.SendFileMessage(r.Context(), user, service.SendFileRequest{
		RoomId:  chi.URLParam(r, "roomId"),
		Store:   body.Store,
		File:    body.File,
		MsgData: body.MsgData,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, api.SendFileMessageResponse{Message: msg})
}
