package service

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	internal_errors "github.com/itchan-dev/filemsg/backend/internal/errors"
	"github.com/itchan-dev/filemsg/shared/domain"
)

// MessageSender persists and broadcasts a message. The returned message is
// authoritative, it may carry fields the draft did not have.
type MessageSender interface {
	SendMessage(ctx context.Context, user *domain.User, msg *domain.Message) (*domain.Message, error)
}

// MessageOverrides are the message fields a caller may set.
// Everything else, attachments and file included, is computed.
type MessageOverrides struct {
	Avatar    *string `validate:"omitempty,max=2048"`
	Emoji     *string `validate:"omitempty,max=64"`
	Alias     *string `validate:"omitempty,max=256"`
	Groupable *bool
	Msg       *string `validate:"omitempty,max=10000"`
	ThreadId  *string `validate:"omitempty,max=64"`
}

var overridesValidator = validator.New()

// ParseOverrides checks raw caller data against the override allow-list.
// Unknown keys and values of the wrong type are rejected as a whole.
func ParseOverrides(raw map[string]any) (*MessageOverrides, error) {
	o := &MessageOverrides{}
	var problems []string

	str := func(key string, v any) *string {
		s, ok := v.(string)
		if !ok {
			problems = append(problems, key+": must be a string")
			return nil
		}
		return &s
	}

	for key, v := range raw {
		switch key {
		case "avatar":
			o.Avatar = str(key, v)
		case "emoji":
			o.Emoji = str(key, v)
		case "alias":
			o.Alias = str(key, v)
		case "msg":
			o.Msg = str(key, v)
		case "tmid":
			o.ThreadId = str(key, v)
		case "groupable":
			b, ok := v.(bool)
			if !ok {
				problems = append(problems, key+": must be a boolean")
				continue
			}
			o.Groupable = &b
		default:
			problems = append(problems, key+": not allowed")
		}
	}

	if len(problems) == 0 {
		if err := overridesValidator.Struct(o); err != nil {
			if verrs, ok := err.(validator.ValidationErrors); ok {
				for _, fe := range verrs {
					problems = append(problems, fmt.Sprintf("%s: exceeds %s characters", fe.Field(), fe.Param()))
				}
			} else {
				return nil, err
			}
		}
	}

	if len(problems) > 0 {
		slices.Sort(problems)
		return nil, &internal_errors.ValidationError{Message: "invalid message data", Fields: problems}
	}
	return o, nil
}

type ComposeInput struct {
	RoomId     domain.RoomId
	Attachment domain.Attachment
	File       domain.FileRef
	Overrides  *MessageOverrides
}

type MessageComposer struct {
	sender MessageSender
	newId  func() string
	now    func() time.Time
}

func NewMessageComposer(sender MessageSender) *MessageComposer {
	return &MessageComposer{
		sender: sender,
		newId:  uuid.NewString,
		now:    time.Now,
	}
}

// Compose builds the draft message: computed defaults first, then the
// caller's overrides, last write wins.
func (c *MessageComposer) Compose(in ComposeInput) *domain.Message {
	file := in.File
	msg := &domain.Message{
		Id:          c.newId(),
		RoomId:      in.RoomId,
		CreatedAt:   c.now().UTC(),
		Msg:         "",
		File:        &file,
		Groupable:   false,
		Attachments: []domain.Attachment{in.Attachment},
	}

	if o := in.Overrides; o != nil {
		if o.Avatar != nil {
			msg.Avatar = *o.Avatar
		}
		if o.Emoji != nil {
			msg.Emoji = *o.Emoji
		}
		if o.Alias != nil {
			msg.Alias = *o.Alias
		}
		if o.Groupable != nil {
			msg.Groupable = *o.Groupable
		}
		if o.Msg != nil {
			msg.Msg = *o.Msg
		}
		if o.ThreadId != nil {
			msg.ThreadId = *o.ThreadId
		}
	}
	return msg
}

// Send hands the draft to the send subsystem and returns its version.
func (c *MessageComposer) Send(ctx context.Context, user *domain.User, draft *domain.Message) (*domain.Message, error) {
	msg, err := c.sender.SendMessage(ctx, user, draft)
	if err != nil {
		return nil, fmt.Errorf("send message: %w", err)
	}
	return msg, nil
}
