package auth

import (
	"chat-client/domain/event"
	"chat-client/errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type LoginRequest struct {
	Identifier string `validate:"required,email"`
	Password   string `validate:"required,min=6"`
}

type RoomRequest struct {
	Name string `validate:"required,max=255"`
}

type RegisterRequest struct {
	Username string `validate:"required,min=4"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
}

func ValidateLogin(req LoginRequest) error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidForm, err)
	}
	return nil
}

func ValidateRegister(req RegisterRequest) error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidForm, err)
	}
	return nil
}

func ValidateRoom(req RoomRequest) error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidForm, err)
	}
	return nil
}

// ValidateSendRequest checks the structure of an outbound message.
// Text and room checks happen before, in the composer.
func ValidateSendRequest(req event.SendRequest) error {
	return validate.Struct(req)
}
