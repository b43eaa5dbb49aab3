package service

import (
	"context"
	"fmt"

	"github.com/itchan-dev/filemsg/shared/domain"
	"github.com/itchan-dev/filemsg/shared/logger"
)

// EventAfterFileUpload fires once a file message has been sent.
const EventAfterFileUpload = "afterFileUpload"

// AfterFileUploadPayload is what afterFileUpload callbacks receive.
type AfterFileUploadPayload struct {
	User    domain.User
	Room    domain.Room
	Message *domain.Message
}

// TaskSubmitter runs tasks in the background. Submit must not block.
type TaskSubmitter interface {
	Submit(name string, task func(ctx context.Context) error) bool
}

type CallbackRunner interface {
	Run(ctx context.Context, event string, payload any) error
}

// PostProcessor schedules the post-processing of a sent file message.
type PostProcessor interface {
	AfterFileUpload(user *domain.User, room *domain.Room, msg *domain.Message)
}

type Notifier struct {
	tasks     TaskSubmitter
	callbacks CallbackRunner
}

func NewNotifier(tasks TaskSubmitter, callbacks CallbackRunner) *Notifier {
	return &Notifier{tasks: tasks, callbacks: callbacks}
}

// AfterFileUpload schedules the afterFileUpload callbacks and returns
// immediately. Callbacks get their own copy of the message and run with the
// queue's context, so they outlive the request.
func (n *Notifier) AfterFileUpload(user *domain.User, room *domain.Room, msg *domain.Message) {
	payload := AfterFileUploadPayload{Message: msg.Clone()}
	if user != nil {
		payload.User = *user
	}
	if room != nil {
		payload.Room = *room
		payload.Room.Members = append([]domain.UserId(nil), room.Members...)
	}

	accepted := n.tasks.Submit(EventAfterFileUpload, func(ctx context.Context) error {
		if err := n.callbacks.Run(ctx, EventAfterFileUpload, payload); err != nil {
			return fmt.Errorf("message %s: %w", payload.Message.Id, err)
		}
		return nil
	})
	if !accepted {
		logger.Log.Warn("post-processing dropped",
			"component", "notifier",
			"event", EventAfterFileUpload,
			"message_id", msg.Id)
	}
}
