package handler

import (
	"net/http"
	"strings"

	"github.com/itchan-dev/filemsg/backend/internal/service"
	"github.com/itchan-dev/filemsg/shared/api"
	"github.com/itchan-dev/filemsg/shared/domain"
	mw "github.com/itchan-dev/filemsg/shared/middleware"
	"github.com/itchan-dev/filemsg/shared/utils"
)

// GetCannedResponses lists canned responses page by page.
// Query: shortcut, text, scope, tags (comma separated), departmentId,
// createdBy, offset, count and sort ("-field" for descending).
func (h *Handler) GetCannedResponses(w http.ResponseWriter, r *http.Request) {
	user := mw.GetUserFromContext(r)
	if user == nil {
		http.Error(w, "Please sign-in", http.StatusUnauthorized)
		return
	}

	filter, err := parseCannedResponseFilter(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	responses, total, err := h.canned.List(r.Context(), user, filter)
	if err != nil {
		writeError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, api.CannedResponsesResponse{
		CannedResponses: responses,
		Count:           len(responses),
		Offset:          filter.Offset,
		Total:           total,
	})
}

// GetUserCannedResponses returns everything the user can insert, for the composer.
func (h *Handler) GetUserCannedResponses(w http.ResponseWriter, r *http.Request) {
	user := mw.GetUserFromContext(r)
	if user == nil {
		http.Error(w, "Please sign-in", http.StatusUnauthorized)
		return
	}

	responses, err := h.canned.ListForUser(r.Context(), user)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, api.UserCannedResponsesResponse{Responses: responses})
}

// SaveCannedResponse creates a response, or updates it when _id is set.
func (h *Handler) SaveCannedResponse(w http.ResponseWriter, r *http.Request) {
	user := mw.GetUserFromContext(r)
	if user == nil {
		http.Error(w, "Please sign-in", http.StatusUnauthorized)
		return
	}

	var body api.SaveCannedResponseRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	saved, err := h.canned.Save(r.Context(), user, body.Id, service.CannedResponseInput{
		Shortcut:     body.Shortcut,
		Text:         body.Text,
		Scope:        body.Scope,
		Tags:         body.Tags,
		DepartmentId: body.DepartmentId,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	status := http.StatusOK
	if body.Id == "" {
		status = http.StatusCreated
	}
	utils.WriteJSON(w, status, saved)
}

func parseCannedResponseFilter(r *http.Request) (domain.CannedResponseFilter, error) {
	q := r.URL.Query()
	filter := domain.CannedResponseFilter{
		Shortcut:     q.Get("shortcut"),
		Text:         q.Get("text"),
		Scope:        q.Get("scope"),
		DepartmentId: q.Get("departmentId"),
		CreatedBy:    q.Get("createdBy"),
	}

	if tags := q.Get("tags"); tags != "" {
		for _, tag := range strings.Split(tags, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				filter.Tags = append(filter.Tags, tag)
			}
		}
	}

	var err error
	if v := q.Get("offset"); v != "" {
		if filter.Offset, err = parseIntParam(v, "offset"); err != nil {
			return filter, err
		}
	}
	if v := q.Get("count"); v != "" {
		if filter.Count, err = parseIntParam(v, "count"); err != nil {
			return filter, err
		}
	}
	if sort := q.Get("sort"); sort != "" {
		filter.SortField, filter.SortDesc = strings.CutPrefix(sort, "-")
		// unknown fields are rejected by the service
	}
	return filter, nil
}
