package services

import (
	"chat-client/auth"
	"chat-client/contract"
	"chat-client/domain"
	"chat-client/domain/event"
	"chat-client/errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

type IComposer interface {
	Submit(text string, room domain.RoomReference, identity domain.Identity) (event.SendRequest, error)
}

// Composer validates one pending outbound message and builds its send
// request. It does not touch the timeline: the sender sees the message
// once the service echoes it back, like every other participant.
type Composer struct {
	log   *slog.Logger
	clock contract.Clock
}

func NewComposer(log *slog.Logger, clock contract.Clock) *Composer {
	return &Composer{log: log, clock: clock}
}

// Submit refuses whitespace-only text and unconfirmed rooms locally,
// without any network call.
func (c *Composer) Submit(text string, room domain.RoomReference, identity domain.Identity) (event.SendRequest, error) {
	if strings.TrimSpace(text) == "" {
		return event.SendRequest{}, errors.ErrEmptyText
	}
	if !room.IsConfirmed() {
		return event.SendRequest{}, errors.ErrNoRoom
	}

	message := domain.Message{
		SenderID:   identity.UserID,
		SenderName: identity.Username,
		Content:    text,
		CreatedAt:  c.clock.Now().UTC(),
		RoomID:     room.ConfirmedID,
	}
	request := toSendRequest(message, room)
	if err := auth.ValidateSendRequest(request); err != nil {
		return event.SendRequest{}, fmt.Errorf("invalid send request: %w", err)
	}
	c.log.Debug("Message composed", "room_id", room.ConfirmedID, "length", len(text))
	return request, nil
}

func toSendRequest(message domain.Message, room domain.RoomReference) event.SendRequest {
	return event.SendRequest{
		UserID:    message.SenderID,
		Content:   message.Content,
		RoomHint:  room.Hint,
		UserName:  message.SenderName,
		RoomID:    message.RoomID,
		CreatedAt: message.CreatedAt.Format(time.RFC3339Nano),
	}
}
