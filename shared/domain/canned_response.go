package domain

import "time"

const (
	CannedScopeGlobal     = "global"
	CannedScopeDepartment = "department"
	CannedScopeUser       = "user"
)

// CannedResponse is a reusable text snippet inserted by shortcut.
type CannedResponse struct {
	Id           string    `json:"_id"`
	Shortcut     string    `json:"shortcut"`
	Text         string    `json:"text"`
	Scope        string    `json:"scope"`
	Tags         []string  `json:"tags,omitempty"`
	DepartmentId string    `json:"departmentId,omitempty"`
	UserId       UserId    `json:"userId,omitempty"`
	CreatedBy    UserRef   `json:"createdBy"`
	CreatedAt    time.Time `json:"_createdAt"`
	UpdatedAt    time.Time `json:"_updatedAt"`
}

// CannedResponseFilter narrows a canned response listing.
// Zero values mean "no constraint".
type CannedResponseFilter struct {
	// Viewer limits user-scoped responses to the ones owned by this user.
	Viewer       UserId
	Shortcut     string
	Text         string
	Scope        string
	Tags         []string
	DepartmentId string
	CreatedBy    UserId
	Offset       int
	Count        int
	SortField    string
	SortDesc     bool
}
