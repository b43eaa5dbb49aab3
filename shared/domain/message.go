package domain

import "time"

// FileRef is the file summary carried by a message.
type FileRef struct {
	Id      FileId       `json:"_id"`
	ThumbId *ThumbnailId `json:"thumbId,omitempty"`
	Name    string       `json:"name"`
	Type    MimeType     `json:"type"`
}

type Message struct {
	Id          MsgId        `json:"_id"`
	RoomId      RoomId       `json:"rid"`
	CreatedAt   time.Time    `json:"ts"`
	Msg         MsgText      `json:"msg"`
	File        *FileRef     `json:"file,omitempty"`
	Groupable   bool         `json:"groupable"`
	Attachments []Attachment `json:"attachments"`

	Avatar   string `json:"avatar,omitempty"`
	Emoji    string `json:"emoji,omitempty"`
	Alias    string `json:"alias,omitempty"`
	ThreadId MsgId  `json:"tmid,omitempty"`

	// Set by the send subsystem.
	User      *UserRef  `json:"u,omitempty"`
	UpdatedAt time.Time `json:"_updatedAt,omitempty"`
}

// Clone returns a deep copy, safe to hand to another goroutine.
func (m *Message) Clone() *Message {
	if m == nil {
		return nil
	}
	c := *m
	if m.File != nil {
		f := *m.File
		if m.File.ThumbId != nil {
			id := *m.File.ThumbId
			f.ThumbId = &id
		}
		c.File = &f
	}
	if m.User != nil {
		u := *m.User
		c.User = &u
	}
	if m.Attachments != nil {
		c.Attachments = make([]Attachment, len(m.Attachments))
		for i, a := range m.Attachments {
			c.Attachments[i] = a.Clone()
		}
	}
	return &c
}
