// Package event defines the frames exchanged with the messaging service.
// Inbound frames are decoded lazily: the envelope is read first and the
// payload only once a handler bound to its kind asks for it.
package event

import (
	"encoding/json"
	"time"
)

type Kind string

// Outbound kinds.
const (
	KindJoinRoom    Kind = "joinRoom"
	KindSendMessage Kind = "sendMessage"
)

// Inbound kinds.
const (
	KindRoomConfirmed Kind = "roomName"
	KindSnapshot      Kind = "allMessages"
	KindLiveMessage   Kind = "message"
)

// Frame is one event as carried on the channel.
type Frame struct {
	Event Kind            `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// NewFrame encodes payload under kind.
func NewFrame(kind Kind, payload any) (Frame, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Frame{}, err
	}
	return Frame{Event: kind, Data: data}, nil
}

// JoinRequest asks the service to place the user in a room.
// An empty RoomHint lets the service pick its public default.
type JoinRequest struct {
	RoomHint string `json:"roomHint"`
	UserID   string `json:"userId"`
}

// SendRequest carries one outbound message.
type SendRequest struct {
	UserID    string `json:"userId" validate:"required"`
	Content   string `json:"content" validate:"required"`
	RoomHint  string `json:"roomHint"`
	UserName  string `json:"userName" validate:"required"`
	RoomID    string `json:"roomId" validate:"required"`
	CreatedAt string `json:"createdAt" validate:"required"`
}

// RoomConfirmed is the room identity acknowledged by the service.
type RoomConfirmed struct {
	RoomID   string `json:"roomId"`
	RoomName string `json:"roomName"`
	// NameOnly is set when the service sent a bare room name and RoomID
	// was copied from it.
	NameOnly bool `json:"-"`
}

// Record is a message record as sent by the service, in a snapshot batch
// or as a live event. Older services name the sender "username".
type Record struct {
	SenderID   json.RawMessage `json:"senderId,omitempty"`
	SenderName string          `json:"senderName"`
	Username   string          `json:"username"`
	Content    string          `json:"content"`
	CreatedAt  string          `json:"createdAt"`
	RoomID     json.RawMessage `json:"roomId,omitempty"`
}

func (r Record) Sender() string {
	if r.SenderName != "" {
		return r.SenderName
	}
	return r.Username
}

// Timestamp parses CreatedAt, accepting RFC 3339 with or without fraction.
func (r Record) Timestamp() (time.Time, error) {
	return time.Parse(time.RFC3339Nano, r.CreatedAt)
}
