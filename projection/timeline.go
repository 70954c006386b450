// Package projection builds the local timeline of the current room from
// the events the service delivers. It keeps delivery order and never
// de-duplicates: the channel has no replay path, so every delivery is new.
// Does not emit events or interact with UI directly.
package projection

import (
	"chat-client/domain"
	"chat-client/domain/event"
	"chat-client/errors"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/samber/lo"
)

// Timeline holds the ordered, append-only message sequence of one room.
type Timeline struct {
	log      *slog.Logger
	Owner    domain.Identity
	room     domain.RoomReference
	attached bool
	messages domain.MessageSequence
}

func NewTimeline(log *slog.Logger, owner domain.Identity) *Timeline {
	return &Timeline{log: log, Owner: owner}
}

// Attach starts accepting events for a confirmed room.
func (t *Timeline) Attach(room domain.RoomReference) {
	t.room = room
	t.attached = room.IsConfirmed()
}

// Reset detaches from the room and discards the sequence.
func (t *Timeline) Reset() {
	t.room = domain.RoomReference{}
	t.attached = false
	t.messages = nil
}

func (t *Timeline) Messages() domain.MessageSequence {
	return t.messages
}

// OnSnapshot replaces the sequence wholesale with the snapshot records.
// The last snapshot wins; live entries received before it are discarded.
// Malformed records are dropped and the rest of the batch is kept.
func (t *Timeline) OnSnapshot(records []json.RawMessage) (domain.MessageSequence, bool) {
	if !t.attached {
		t.log.Debug("Ignoring snapshot outside of a confirmed room", "records", len(records))
		return t.messages, false
	}
	t.messages = lo.FilterMap(records, func(raw json.RawMessage, index int) (domain.DisplayMessage, bool) {
		msg, err := t.toMessage(raw)
		if err != nil {
			t.log.Warn("Dropping malformed snapshot record", "index", index, "error", err)
			return domain.DisplayMessage{}, false
		}
		return msg.Project(t.Owner), true
	})
	t.log.Debug("Snapshot applied", "room_id", t.room.ConfirmedID,
		"received", len(records), "kept", len(t.messages))
	return t.messages, true
}

// OnLiveMessage appends one record at the end of the sequence.
// It is ignored outside of a confirmed room and when the record names
// another room.
func (t *Timeline) OnLiveMessage(raw json.RawMessage) bool {
	if !t.attached {
		t.log.Debug("Ignoring live message outside of a confirmed room")
		return false
	}
	msg, err := t.toMessage(raw)
	if err != nil {
		t.log.Warn("Dropping malformed live record", "error", err)
		return false
	}
	if !t.belongsToRoom(msg.RoomID) {
		t.log.Debug("Ignoring live message for another room",
			"room_id", msg.RoomID, "current_room_id", t.room.ConfirmedID)
		return false
	}
	t.messages = append(t.messages, msg.Project(t.Owner))
	return true
}

// belongsToRoom accepts records without a room id. A bare-name confirmation
// makes the room name the only identity known, so both are matched.
func (t *Timeline) belongsToRoom(roomID string) bool {
	return roomID == "" || roomID == t.room.ConfirmedID || roomID == t.room.ConfirmedName
}

func (t *Timeline) toMessage(raw json.RawMessage) (domain.Message, error) {
	record, err := event.DecodeRecord(raw)
	if err != nil {
		return domain.Message{}, err
	}
	createdAt, err := record.Timestamp()
	if err != nil {
		return domain.Message{}, fmt.Errorf("%w: createdAt %q: %v", errors.ErrMalformedRecord, record.CreatedAt, err)
	}
	senderID, err := event.IDString(record.SenderID)
	if err != nil {
		return domain.Message{}, err
	}
	roomID, err := event.IDString(record.RoomID)
	if err != nil {
		return domain.Message{}, err
	}
	return domain.Message{
		SenderID:   senderID,
		SenderName: record.Sender(),
		Content:    record.Content,
		CreatedAt:  createdAt,
		RoomID:     roomID,
	}, nil
}
