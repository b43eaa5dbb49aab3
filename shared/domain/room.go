package domain

import "slices"

type Room struct {
	Id      RoomId
	Type    string
	Name    string
	Members []UserId
}

func (r *Room) HasMember(userId UserId) bool {
	return slices.Contains(r.Members, userId)
}

// IsDirectMultiple reports whether a direct room has more than two members.
func (r *Room) IsDirectMultiple() bool {
	return r.Type == RoomTypeDirect && len(r.Members) > 2
}
