package runtime

import (
	"chat-client/domain"
	"chat-client/domain/event"
	"chat-client/errors"
	"context"
	"fmt"
	"log/slog"

	"github.com/samber/lo"
)

// Negotiator joins rooms and records the room identity the service asserts.
// It never decides the room id itself.
type Negotiator struct {
	log   *slog.Logger
	room  domain.RoomReference
	epoch Epoch
	// left holds the references of rooms left since the last confirmation.
	left []string
}

func NewNegotiator(log *slog.Logger) *Negotiator {
	return &Negotiator{log: log}
}

func (n *Negotiator) Room() domain.RoomReference {
	return n.room
}

// Join emits a join request for navigation on behalf of identity and opens
// a new join epoch. An empty navigation asks the service for its public default.
func (n *Negotiator) Join(ctx context.Context, manager *Manager, navigation domain.Navigation, identity domain.Identity) (Epoch, error) {
	if err := manager.Transition(domain.JoiningRoom); err != nil {
		return 0, err
	}
	n.epoch++
	n.room = domain.NewRoomReference(navigation)
	if navigation.IsEmpty() {
		n.log.Info("Joining default room", "user_id", identity.UserID, "epoch", n.epoch)
	} else {
		n.log.Info("Joining room", "room_hint", n.room.Hint, "room_id", n.room.RoomID,
			"user_id", identity.UserID, "epoch", n.epoch)
	}
	request := event.JoinRequest{RoomHint: n.room.Hint, UserID: identity.UserID}
	if err := manager.Emit(ctx, event.KindJoinRoom, request); err != nil {
		return n.epoch, fmt.Errorf("emitting join request: %w", err)
	}
	return n.epoch, nil
}

// Confirm applies the room confirmation sent by the service.
// A confirmation repeated while already in the room is ignored, as is a
// late confirmation for a room left while joining another one. A bare room
// name is paired with the room id from navigation when one is known.
func (n *Negotiator) Confirm(manager *Manager, confirmed event.RoomConfirmed) error {
	switch manager.State() {
	case domain.JoiningRoom:
	case domain.InRoom:
		n.log.Debug("Ignoring repeated room confirmation",
			"room_id", confirmed.RoomID, "current_room_id", n.room.ConfirmedID)
		return nil
	default:
		return fmt.Errorf("%w: room confirmation in state %s", errors.ErrIllegalTransition, manager.State())
	}
	if n.stale(confirmed) {
		n.log.Debug("Ignoring confirmation for a room already left",
			"room_id", confirmed.RoomID, "room_name", confirmed.RoomName, "room_hint", n.room.Hint)
		return nil
	}
	if err := manager.Transition(domain.InRoom); err != nil {
		return err
	}
	id := confirmed.RoomID
	if confirmed.NameOnly && n.room.RoomID != "" {
		id = n.room.RoomID
	}
	n.room = n.room.Confirm(id, confirmed.RoomName)
	n.left = nil
	n.log.Info("Room confirmed", "room_id", n.room.ConfirmedID, "room_name", n.room.ConfirmedName)
	return nil
}

// NeedsRejoin reports whether hint differs from the room currently joined.
func (n *Negotiator) NeedsRejoin(state domain.SessionState, hint string) bool {
	if state != domain.JoiningRoom && state != domain.InRoom {
		return false
	}
	return hint != n.room.Hint
}

// Leave drops the current room context and returns the epoch whose
// handlers must be unbound.
func (n *Negotiator) Leave(manager *Manager) (Epoch, error) {
	if err := manager.Transition(domain.ConnectedNoRoom); err != nil {
		return 0, err
	}
	n.log.Info("Leaving room", "room_id", n.room.ConfirmedID, "room_hint", n.room.Hint)
	n.left = append(n.left, lo.Compact([]string{
		n.room.Hint, n.room.RoomID, n.room.ConfirmedID, n.room.ConfirmedName,
	})...)
	n.room = domain.RoomReference{}
	return n.epoch, nil
}

// stale reports whether confirmed names a room left since the last
// confirmation rather than the one requested. Without a hint the service
// picks the room, so nothing is stale.
func (n *Negotiator) stale(confirmed event.RoomConfirmed) bool {
	if n.room.Hint == "" {
		return false
	}
	if n.room.Requested(confirmed.RoomName) || n.room.Requested(confirmed.RoomID) {
		return false
	}
	return lo.Contains(n.left, confirmed.RoomName) || lo.Contains(n.left, confirmed.RoomID)
}
