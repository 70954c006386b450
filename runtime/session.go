// Package runtime runs the chat session core: one loop goroutine owns the
// channel manager, the room negotiator and the timeline, and processes
// inbound frames and caller requests one at a time, in arrival order.
package runtime

import (
	"chat-client/auth"
	"chat-client/contract"
	"chat-client/domain"
	"chat-client/domain/event"
	"chat-client/errors"
	"chat-client/projection"
	"chat-client/services"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"
)

type Session struct {
	id         string
	log        *slog.Logger
	credential domain.Credential
	manager    *Manager
	negotiator *Negotiator
	registry   *Registry
	composer   services.IComposer
	timeline   *projection.Timeline
	identity   domain.Identity
	navigation domain.Navigation
	err        error

	// inbox is unbuffered: a successful post means the loop took the reaction.
	inbox  chan func()
	done   chan struct{}
	ctx    context.Context
	cancel context.CancelFunc

	lifecycle sync.Mutex
	started   bool
	closeOnce sync.Once

	mu        sync.RWMutex
	view      domain.SessionView
	observers []contract.Observer
}

// NewSession prepares a session for credential, heading to the room named
// by navigation. Nothing happens until Start.
func NewSession(log *slog.Logger, dialer contract.Dialer, composer services.IComposer,
	credential domain.Credential, navigation domain.Navigation) *Session {
	id := uuid.NewString()
	log = log.With("session_id", id)
	return &Session{
		id:         id,
		log:        log,
		credential: credential,
		manager:    NewManager(log, dialer),
		negotiator: NewNegotiator(log),
		registry:   NewRegistry(),
		composer:   composer,
		navigation: navigation,
		inbox:      make(chan func()),
		done:       make(chan struct{}),
		view:       domain.SessionView{SessionID: id, State: domain.Disconnected},
	}
}

func (s *Session) ID() string {
	return s.id
}

// Start activates the session. Identity resolution and the channel open
// complete asynchronously; their outcome is observed through the view.
func (s *Session) Start(ctx context.Context) error {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()
	if s.started {
		return fmt.Errorf("%w: session already started", errors.ErrIllegalTransition)
	}
	if s.manager.State() == domain.Closed {
		return errors.ErrSessionClosed
	}
	s.started = true
	s.ctx, s.cancel = context.WithCancel(ctx)
	go s.loop()
	return s.post(ctx, s.activate)
}

// Navigate points the session at another room. While joined, a different
// hint leaves the current room, discards its messages and joins again.
func (s *Session) Navigate(ctx context.Context, navigation domain.Navigation) error {
	s.lifecycle.Lock()
	if !s.started {
		s.navigation = navigation
		s.lifecycle.Unlock()
		return nil
	}
	s.lifecycle.Unlock()
	return s.post(ctx, func() { s.navigate(navigation) })
}

// Submit sends text to the current room. Empty text and a missing room
// are refused locally. The message shows up in the timeline only when the
// service echoes it back.
func (s *Session) Submit(ctx context.Context, text string) error {
	s.lifecycle.Lock()
	started := s.started
	s.lifecycle.Unlock()
	if !started {
		_, err := s.composer.Submit(text, domain.RoomReference{}, domain.Identity{})
		return err
	}
	result := make(chan error, 1)
	if err := s.post(ctx, func() { result <- s.submit(ctx, text) }); err != nil {
		return err
	}
	return <-result
}

// Close tears the session down: every handler is deregistered and the
// channel is closed exactly once. Further calls return nil.
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.lifecycle.Lock()
		if !s.started {
			err = s.manager.Close()
			s.publish()
			s.lifecycle.Unlock()
			return
		}
		s.lifecycle.Unlock()

		result := make(chan error, 1)
		if postErr := s.post(context.Background(), func() { result <- s.teardown() }); postErr != nil {
			// The loop already ended on a failure.
			return
		}
		err = <-result
		<-s.done
	})
	return err
}

// Done is closed once the session loop has ended.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Observe registers an observer notified after every processed event.
func (s *Session) Observe(observer contract.Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, observer)
}

func (s *Session) View() domain.SessionView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view
}

func (s *Session) State() domain.SessionState {
	return s.View().State
}

func (s *Session) Room() domain.RoomReference {
	return s.View().Room
}

func (s *Session) Messages() domain.MessageSequence {
	return s.View().Messages.Clone()
}

func (s *Session) loop() {
	defer close(s.done)
	defer s.cancel()
	for {
		select {
		case react := <-s.inbox:
			react()
		case <-s.ctx.Done():
			if err := s.teardown(); err != nil {
				s.log.Warn("Closing channel after cancellation", "error", err)
			}
		}
		s.publish()
		if s.manager.State() == domain.Closed {
			return
		}
	}
}

func (s *Session) post(ctx context.Context, react func()) error {
	select {
	case s.inbox <- react:
		return nil
	case <-s.done:
		return errors.ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Session) activate() {
	identity, err := auth.ResolveIdentity(s.credential)
	if err != nil {
		s.log.Warn("Credential resolution failed", "error", err)
		s.fail(fmt.Errorf("%w: %w", errors.ErrAuthRequired, err))
		return
	}
	s.identity = identity
	s.timeline = projection.NewTimeline(s.log, identity)
	if err := s.manager.Begin(); err != nil {
		s.fail(err)
		return
	}
	s.log.Info("Connecting", "user_id", identity.UserID, "username", identity.Username)

	token := s.credential.Token
	go func() {
		channel, err := s.manager.Dial(s.ctx, token)
		if postErr := s.post(context.Background(), func() { s.opened(channel, err) }); postErr != nil && channel != nil {
			_ = channel.Close()
		}
	}()
}

func (s *Session) opened(channel contract.Channel, err error) {
	if err != nil {
		s.log.Error("Channel open failed", "error", err)
		s.fail(err)
		return
	}
	if err := s.manager.Attach(channel); err != nil {
		_ = channel.Close()
		s.fail(err)
		return
	}
	s.log.Info("Channel open")
	go s.read(channel)
	s.join(s.navigation)
}

func (s *Session) read(channel contract.Channel) {
	for {
		frame, err := channel.Receive(s.ctx)
		if err != nil {
			_ = s.post(context.Background(), func() { s.drop(err) })
			return
		}
		if err := s.post(context.Background(), func() { s.dispatch(frame) }); err != nil {
			return
		}
	}
}

func (s *Session) dispatch(frame event.Frame) {
	if !s.registry.Dispatch(frame) {
		s.log.Debug("No handler bound, dropping frame", "event", frame.Event)
	}
}

func (s *Session) navigate(navigation domain.Navigation) {
	s.navigation = navigation
	hint := navigation.Hint()
	switch state := s.manager.State(); state {
	case domain.ConnectedNoRoom:
		s.join(navigation)
	case domain.JoiningRoom, domain.InRoom:
		if !s.negotiator.NeedsRejoin(state, hint) {
			return
		}
		epoch, err := s.negotiator.Leave(s.manager)
		if err != nil {
			s.log.Error("Leaving room failed", "error", err)
			return
		}
		removed := s.registry.Unbind(epoch)
		s.timeline.Reset()
		s.log.Debug("Room handlers released", "epoch", epoch, "handlers", removed)
		s.join(navigation)
	default:
		// Joined once the channel is open.
	}
}

func (s *Session) join(navigation domain.Navigation) {
	epoch, err := s.negotiator.Join(s.ctx, s.manager, navigation, s.identity)
	if epoch == 0 {
		s.log.Error("Join refused", "error", err)
		return
	}
	for kind, handle := range map[event.Kind]Handler{
		event.KindRoomConfirmed: s.onRoomConfirmed,
		event.KindSnapshot:      s.onSnapshot,
		event.KindLiveMessage:   s.onLiveMessage,
	} {
		if bindErr := s.registry.Bind(kind, epoch, handle); bindErr != nil {
			s.log.Error("Binding room handler failed", "event", kind, "error", bindErr)
		}
	}
	if err != nil {
		s.drop(err)
	}
}

func (s *Session) submit(ctx context.Context, text string) error {
	if s.manager.State() == domain.Closed {
		return errors.ErrSessionClosed
	}
	request, err := s.composer.Submit(text, s.negotiator.Room(), s.identity)
	if err != nil {
		return err
	}
	if err := s.manager.Emit(ctx, event.KindSendMessage, request); err != nil {
		s.drop(err)
		return fmt.Errorf("sending message: %w", err)
	}
	return nil
}

func (s *Session) onRoomConfirmed(data json.RawMessage) {
	confirmed, err := event.DecodeRoomConfirmed(data)
	if err != nil {
		s.log.Warn("Dropping malformed room confirmation", "error", err)
		return
	}
	if err := s.negotiator.Confirm(s.manager, confirmed); err != nil {
		s.log.Warn("Room confirmation refused", "error", err)
		return
	}
	s.timeline.Attach(s.negotiator.Room())
}

func (s *Session) onSnapshot(data json.RawMessage) {
	records, err := event.DecodeBatch(data)
	if err != nil {
		s.log.Warn("Dropping malformed snapshot", "error", err)
		return
	}
	s.timeline.OnSnapshot(records)
}

func (s *Session) onLiveMessage(data json.RawMessage) {
	s.timeline.OnLiveMessage(data)
}

// drop ends the session after the channel failed underneath it.
// A drop caused by cancellation is an ordinary teardown.
func (s *Session) drop(cause error) {
	if s.ctx.Err() != nil {
		_ = s.teardown()
		return
	}
	s.log.Error("Channel dropped", "error", cause)
	s.fail(fmt.Errorf("%w: %v", errors.ErrUnexpectedDisconnect, cause))
}

func (s *Session) fail(err error) {
	s.err = err
	s.registry.UnbindAll()
	s.manager.Fail()
}

func (s *Session) teardown() error {
	s.registry.UnbindAll()
	err := s.manager.Close()
	s.log.Info("Session closed")
	return err
}

func (s *Session) publish() {
	view := domain.SessionView{
		SessionID: s.id,
		State:     s.manager.State(),
		Room:      s.negotiator.Room(),
		Err:       s.err,
	}
	if s.timeline != nil {
		view.Messages = s.timeline.Messages().Clone()
	}
	s.mu.Lock()
	s.view = view
	observers := slices.Clone(s.observers)
	s.mu.Unlock()

	for _, observer := range observers {
		observer.OnChange(view)
	}
}
