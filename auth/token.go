package auth

import (
	"chat-client/domain/event"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// CustomClaims is the subset of the backend token read by the client.
// The backend puts the user id in "id"; older tokens use "user_id".
type CustomClaims struct {
	UserID       flexibleID `json:"id"`
	LegacyUserID flexibleID `json:"user_id"`
	jwt.RegisteredClaims
}

// Subject returns the stable user id carried by the token.
func (c CustomClaims) Subject() string {
	if c.UserID != "" {
		return string(c.UserID)
	}
	return string(c.LegacyUserID)
}

// flexibleID accepts both numeric and string ids.
type flexibleID string

func (f *flexibleID) UnmarshalJSON(data []byte) error {
	id, err := event.IDString(data)
	if err != nil {
		return err
	}
	*f = flexibleID(id)
	return nil
}

var parser = jwt.NewParser()

// DecodeToken reads the claims of a JWT without verifying its signature.
// The signing key belongs to the backend, which checks it on every call;
// the client only needs the identity the token names.
func DecodeToken(tokenString string) (*CustomClaims, error) {
	claims := &CustomClaims{}
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return nil, err
	}
	if claims.Subject() == "" {
		return nil, fmt.Errorf("token carries no user id")
	}
	return claims, nil
}
