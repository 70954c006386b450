package runtime

import (
	"chat-client/domain/event"
	"chat-client/errors"
	"encoding/json"
	"fmt"
)

// Epoch identifies one room join. Handlers registered for a join are
// tagged with its epoch so that leaving the room drops exactly them.
type Epoch uint64

type Handler func(data json.RawMessage)

type binding struct {
	epoch  Epoch
	handle Handler
}

// Registry is the table of inbound event handlers keyed by event kind.
// At most one handler is bound per kind; a kind must be unbound before
// it can be bound again, so no event is ever handled twice.
// Registry is owned by the session loop and is not safe for concurrent use.
type Registry struct {
	bindings map[event.Kind]binding
}

func NewRegistry() *Registry {
	return &Registry{bindings: make(map[event.Kind]binding)}
}

// Bind registers handle for kind under epoch.
func (r *Registry) Bind(kind event.Kind, epoch Epoch, handle Handler) error {
	if current, ok := r.bindings[kind]; ok {
		return fmt.Errorf("%w: %s (epoch %d)", errors.ErrDuplicateHandler, kind, current.epoch)
	}
	r.bindings[kind] = binding{epoch: epoch, handle: handle}
	return nil
}

// Unbind removes every handler registered under epoch and returns how
// many were removed. Unbinding an epoch twice is a no-op.
func (r *Registry) Unbind(epoch Epoch) int {
	removed := 0
	for kind, b := range r.bindings {
		if b.epoch == epoch {
			delete(r.bindings, kind)
			removed++
		}
	}
	return removed
}

func (r *Registry) UnbindAll() {
	clear(r.bindings)
}

func (r *Registry) Bound(kind event.Kind) bool {
	_, ok := r.bindings[kind]
	return ok
}

// Dispatch hands the frame payload to the handler bound for its kind.
// It reports false when no handler is bound.
func (r *Registry) Dispatch(frame event.Frame) bool {
	b, ok := r.bindings[frame.Event]
	if !ok {
		return false
	}
	b.handle(frame.Data)
	return true
}
