package domain

type User struct {
	Id       UserId
	Username string
	Type     string
}

func (u *User) IsApp() bool {
	return u != nil && u.Type == UserTypeApp
}

// UserRef is the compact author reference stored on messages.
type UserRef struct {
	Id       UserId `json:"_id"`
	Username string `json:"username"`
}
