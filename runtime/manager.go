package runtime

import (
	"chat-client/contract"
	"chat-client/domain"
	"chat-client/domain/event"
	"chat-client/errors"
	"context"
	"fmt"
	"log/slog"
)

// transitions lists the legal moves of the session state machine.
// Closed is reachable from every state and leads nowhere.
var transitions = map[domain.SessionState][]domain.SessionState{
	domain.Disconnected:    {domain.Connecting},
	domain.Connecting:      {domain.ConnectedNoRoom},
	domain.ConnectedNoRoom: {domain.JoiningRoom},
	domain.JoiningRoom:     {domain.InRoom, domain.ConnectedNoRoom},
	domain.InRoom:          {domain.ConnectedNoRoom},
}

// Manager owns the session state and the single channel of a session.
// Everything but Dial must be called from the session loop.
type Manager struct {
	log     *slog.Logger
	dialer  contract.Dialer
	state   domain.SessionState
	channel contract.Channel
}

func NewManager(log *slog.Logger, dialer contract.Dialer) *Manager {
	return &Manager{log: log, dialer: dialer, state: domain.Disconnected}
}

func (m *Manager) State() domain.SessionState {
	return m.state
}

// Transition moves the state machine, refusing moves it does not list.
func (m *Manager) Transition(to domain.SessionState) error {
	if to == domain.Closed {
		m.state = domain.Closed
		return nil
	}
	for _, allowed := range transitions[m.state] {
		if allowed == to {
			m.log.Debug("Session state changed", "from", m.state.String(), "to", to.String())
			m.state = to
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", errors.ErrIllegalTransition, m.state, to)
}

// Begin marks the session as connecting once an identity is resolved.
func (m *Manager) Begin() error {
	return m.Transition(domain.Connecting)
}

// Dial opens a new channel without touching the manager state, so it may
// run outside the session loop. The result is handed to Attach.
func (m *Manager) Dial(ctx context.Context, token string) (contract.Channel, error) {
	channel, err := m.dialer.Dial(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrChannelOpen, err)
	}
	return channel, nil
}

// Attach takes ownership of an opened channel. A session holds at most
// one channel; attaching a second one is refused and the caller keeps it.
func (m *Manager) Attach(channel contract.Channel) error {
	if m.channel != nil {
		return errors.ErrChannelAlreadyOpen
	}
	if err := m.Transition(domain.ConnectedNoRoom); err != nil {
		return err
	}
	m.channel = channel
	return nil
}

// Emit encodes payload under kind and writes it on the owned channel.
func (m *Manager) Emit(ctx context.Context, kind event.Kind, payload any) error {
	if m.channel == nil || m.state == domain.Closed {
		return errors.ErrChannelClosed
	}
	frame, err := event.NewFrame(kind, payload)
	if err != nil {
		return err
	}
	return m.channel.Emit(ctx, frame)
}

// Fail moves to Closed after an unrecoverable error and releases the channel.
func (m *Manager) Fail() {
	m.state = domain.Closed
	if err := m.release(); err != nil {
		m.log.Debug("Closing failed channel", "error", err)
	}
}

// Close tears the session down. The channel is released exactly once;
// further calls return nil.
func (m *Manager) Close() error {
	m.state = domain.Closed
	return m.release()
}

func (m *Manager) release() error {
	if m.channel == nil {
		return nil
	}
	channel := m.channel
	m.channel = nil
	return channel.Close()
}
