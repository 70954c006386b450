// Package client talks to the REST backend that issues credentials and
// creates private rooms. The messaging channel itself lives in
// infrastructure/websocket.
package client

import (
	"bytes"
	"chat-client/auth"
	"chat-client/domain"
	"chat-client/domain/event"
	"chat-client/errors"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// APIURL serves the auth endpoints.
	APIURL string
	// RoomsURL serves room creation, next to the messaging service.
	RoomsURL string
	Timeout  time.Duration
}

type API struct {
	log      *slog.Logger
	http     *http.Client
	apiURL   string
	roomsURL string
}

func NewAPI(log *slog.Logger, config Config) *API {
	return &API{
		log:      log,
		http:     &http.Client{Timeout: config.Timeout},
		apiURL:   strings.TrimRight(config.APIURL, "/"),
		roomsURL: strings.TrimRight(config.RoomsURL, "/"),
	}
}

type loginBody struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type registerBody struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	JWT  string          `json:"jwt"`
	User json.RawMessage `json:"user"`
}

type roomBody struct {
	Data roomData `json:"data"`
}

type roomData struct {
	Name         string `json:"Name"`
	Enumeration  string `json:"Enumeration"`
	Participants []any  `json:"participants"`
}

type roomResponse struct {
	Data struct {
		ID json.RawMessage `json:"id"`
	} `json:"data"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Login exchanges an email and password for a credential.
func (a *API) Login(ctx context.Context, identifier, password string) (domain.Credential, error) {
	if err := auth.ValidateLogin(auth.LoginRequest{Identifier: identifier, Password: password}); err != nil {
		return domain.Credential{}, err
	}
	var resp authResponse
	if err := a.post(ctx, a.apiURL+"/api/auth/local", "", loginBody{identifier, password}, &resp); err != nil {
		return domain.Credential{}, fmt.Errorf("login: %w", err)
	}
	return toCredential(resp, "login")
}

// Register creates an account and returns its credential.
func (a *API) Register(ctx context.Context, username, email, password string) (domain.Credential, error) {
	form := auth.RegisterRequest{Username: username, Email: email, Password: password}
	if err := auth.ValidateRegister(form); err != nil {
		return domain.Credential{}, err
	}
	var resp authResponse
	if err := a.post(ctx, a.apiURL+"/api/auth/local/register", "", registerBody{username, email, password}, &resp); err != nil {
		return domain.Credential{}, fmt.Errorf("register: %w", err)
	}
	return toCredential(resp, "signup")
}

// CreateRoom creates a private room with the credential owner as its only
// participant and returns where to navigate to join it.
func (a *API) CreateRoom(ctx context.Context, credential domain.Credential, name string) (domain.Navigation, error) {
	if err := auth.ValidateRoom(auth.RoomRequest{Name: name}); err != nil {
		return domain.Navigation{}, err
	}
	identity, err := auth.ResolveIdentity(credential)
	if err != nil {
		return domain.Navigation{}, fmt.Errorf("%w: %w", errors.ErrAuthRequired, err)
	}
	body := roomBody{Data: roomData{
		Name:         name,
		Enumeration:  "private",
		Participants: []any{participant(identity.UserID)},
	}}
	var resp roomResponse
	if err := a.post(ctx, a.roomsURL+"/api/rooms", credential.Token, body, &resp); err != nil {
		return domain.Navigation{}, fmt.Errorf("create room: %w", err)
	}
	roomID, err := event.IDString(resp.Data.ID)
	if err != nil || roomID == "" {
		return domain.Navigation{}, fmt.Errorf("%w: room created without id", errors.ErrBackend)
	}
	a.log.Info("Room created", "room_name", name, "room_id", roomID)
	return domain.Navigation{RoomName: name, RoomID: roomID}, nil
}

func (a *API) post(ctx context.Context, url, token string, body, into any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", errors.ErrBackend, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: reading response: %v", errors.ErrBackend, err)
	}
	a.log.Debug("Backend call", "url", url, "status", resp.StatusCode)

	if resp.StatusCode >= http.StatusBadRequest {
		var failure errorResponse
		if json.Unmarshal(data, &failure) == nil && failure.Error.Message != "" {
			return fmt.Errorf("%w: %s", errors.ErrBackend, failure.Error.Message)
		}
		return fmt.Errorf("%w: status %d", errors.ErrBackend, resp.StatusCode)
	}
	if err := json.Unmarshal(data, into); err != nil {
		return fmt.Errorf("%w: decoding response: %v", errors.ErrBackend, err)
	}
	return nil
}

func toCredential(resp authResponse, action string) (domain.Credential, error) {
	if resp.JWT == "" {
		return domain.Credential{}, fmt.Errorf("%w: %s failed", errors.ErrBackend, action)
	}
	credential := domain.Credential{Token: resp.JWT}
	if len(resp.User) > 0 && string(resp.User) != "null" {
		credential.User = resp.User
	}
	return credential, nil
}

// participant keeps numeric user ids numeric on the wire.
func participant(userID string) any {
	if id, err := strconv.ParseInt(userID, 10, 64); err == nil {
		return id
	}
	return userID
}
