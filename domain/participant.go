// Package domain contains core concepts of the chat client.
// This file defines the local participant: the credential handed over by
// the surrounding application and the identity resolved from it.
// No runtime, network, or UI logic should be added here.
package domain

// AnonymousName is shown when the cached user record cannot provide a name.
const AnonymousName = "Anonymous"

// Credential is owned by the surrounding application and read-only to the core.
// User holds the raw cached user record ({id, username}) as it was stored.
type Credential struct {
	Token string
	User  []byte
}

// CachedUser is the decoded form of Credential.User.
type CachedUser struct {
	ID       any    `json:"id"`
	Username string `json:"username" validate:"required,max=255"`
}

type Identity struct {
	UserID   string
	Username string
}
