package api

import "github.com/itchan-dev/filemsg/shared/domain"

// Request DTOs

// SendFileMessageRequest posts a finalized upload into a room.
// MsgData is checked against the override allow-list by the service,
// so it stays untyped here.
type SendFileMessageRequest struct {
	Store   string              `json:"store" validate:"required"`
	File    domain.UploadRecord `json:"file" validate:"required"`
	MsgData map[string]any      `json:"msgData,omitempty"`
}

type SaveCannedResponseRequest struct {
	Id           string   `json:"_id,omitempty"`
	Shortcut     string   `json:"shortcut" validate:"required,max=100"`
	Text         string   `json:"text" validate:"required,max=10000"`
	Scope        string   `json:"scope" validate:"required,oneof=global department user"`
	Tags         []string `json:"tags,omitempty" validate:"omitempty,dive,required,max=50"`
	DepartmentId string   `json:"departmentId,omitempty" validate:"required_if=Scope department"`
}

// Response DTOs

type SendFileMessageResponse struct {
	Message *domain.Message `json:"message"`
}

type CannedResponsesResponse struct {
	CannedResponses []domain.CannedResponse `json:"cannedResponses"`
	Count           int                     `json:"count"`
	Offset          int                     `json:"offset"`
	Total           int                     `json:"total"`
}

type UserCannedResponsesResponse struct {
	Responses []domain.CannedResponse `json:"responses"`
}

type RoomActionsResponse struct {
	Actions []RoomAction `json:"actions"`
}

type RoomAction struct {
	Id       string `json:"id"`
	Icon     string `json:"icon"`
	Title    string `json:"title"`
	Order    int    `json:"order"`
	Full     bool   `json:"full,omitempty"`
	Hotkey   string `json:"hotkey,omitempty"`
	Template string `json:"template,omitempty"`
}
