package domain

type (
	UserId      = string
	RoomId      = string
	FileId      = string
	MsgId       = string
	ThumbnailId = string

	MsgText  = string
	MimeType = string
)

// Room types, same letters the chat clients already use.
const (
	RoomTypeChannel = "c"
	RoomTypePrivate = "p"
	RoomTypeDirect  = "d"
	RoomTypeLive    = "l"
)

// UserTypeApp marks integration accounts, they skip the room access gate.
const UserTypeApp = "app"
