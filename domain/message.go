// Package domain contains core concepts of the chat client.
// This file defines Message records and their display projection.
// Messages are immutable once created.
package domain

import "time"

// Message represents an immutable chat record, either built locally
// for a send or decoded from an inbound event.
type Message struct {
	SenderID   string
	SenderName string
	Content    string
	CreatedAt  time.Time
	RoomID     string
}

type Alignment string

const (
	AlignSelf  Alignment = "self"
	AlignOther Alignment = "other"
)

// DisplayMessage is the rendering-ready projection of a Message.
// It is never mutated after creation.
type DisplayMessage struct {
	Alignment Alignment
	Text      string
	Title     string
	Timestamp time.Time
}

// MessageSequence is kept in arrival order, never resorted by timestamp.
type MessageSequence []DisplayMessage

// Project builds the display projection of m as seen by identity.
// Self alignment compares display names, not ids.
func (m Message) Project(identity Identity) DisplayMessage {
	alignment := AlignOther
	if m.SenderName == identity.Username {
		alignment = AlignSelf
	}
	return DisplayMessage{
		Alignment: alignment,
		Text:      m.Content,
		Title:     m.SenderName,
		Timestamp: m.CreatedAt,
	}
}

// Clone returns a copy safe to hand to readers outside the event loop.
func (s MessageSequence) Clone() MessageSequence {
	if s == nil {
		return nil
	}
	out := make(MessageSequence, len(s))
	copy(out, s)
	return out
}
