//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"chat-client/domain"
	"chat-client/domain/event"
	"context"
	"time"
)

// Dialer opens the bidirectional event channel to the messaging service.
type Dialer interface {
	Dial(ctx context.Context, token string) (Channel, error)
}

// Channel is one open link to the messaging service.
// Receive is called from a single goroutine; Emit may be called
// concurrently with Receive but not with itself.
type Channel interface {
	Emit(ctx context.Context, frame event.Frame) error
	Receive(ctx context.Context) (event.Frame, error)
	Close() error
}

// Observer is notified with a fresh view after every state change.
type Observer interface {
	OnChange(view domain.SessionView)
}

type Clock interface {
	Now() time.Time
}

// ICredentialStore is the application side holding the issued credential.
type ICredentialStore interface {
	Load() (domain.Credential, error)
	Save(cred domain.Credential) error
	Clear() error
}
