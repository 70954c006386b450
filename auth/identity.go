package auth

import (
	"chat-client/domain"
	"chat-client/errors"
	"encoding/json"
	"fmt"
	"strings"
)

// ResolveIdentity turns the stored credential into the local identity.
// It reads nothing but its argument, so repeated calls with the same
// credential return the same identity.
func ResolveIdentity(cred domain.Credential) (domain.Identity, error) {
	if strings.TrimSpace(cred.Token) == "" {
		return domain.Identity{}, errors.ErrNoCredential
	}
	claims, err := DecodeToken(cred.Token)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %v", errors.ErrMalformedCredential, err)
	}
	return domain.Identity{
		UserID:   claims.Subject(),
		Username: DisplayName(cred.User),
	}, nil
}

// DisplayName extracts the username of the cached user record,
// falling back to domain.AnonymousName.
func DisplayName(record []byte) string {
	if len(record) == 0 {
		return domain.AnonymousName
	}
	var user domain.CachedUser
	if err := json.Unmarshal(record, &user); err != nil {
		return domain.AnonymousName
	}
	if err := validate.Struct(user); err != nil {
		return domain.AnonymousName
	}
	return user.Username
}
