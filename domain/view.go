package domain

// SessionView is the read-only picture of a session handed to renderers
// after every processed event.
type SessionView struct {
	SessionID string
	State     SessionState
	Room      RoomReference
	Messages  MessageSequence
	// Err is the fatal cause once the session reached Closed on failure.
	Err error
}
