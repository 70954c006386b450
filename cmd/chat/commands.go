package main

import (
	"bufio"
	"chat-client/client"
	"chat-client/contract"
	"chat-client/domain"
	"chat-client/errors"
	"chat-client/infrastructure/websocket"
	"chat-client/internal"
	"chat-client/runtime"
	"chat-client/services"
	"chat-client/ui"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/pflag"
)

type app struct {
	config internal.Config
	log    *slog.Logger
	store  contract.ICredentialStore
	api    *client.API
	in     io.Reader
	out    io.Writer
}

type command func(ctx context.Context, app *app, args []string) error

var commands = map[string]command{
	"login":    login,
	"register": register,
	"logout":   logout,
	"room":     createRoom,
	"chat":     chat,
}

func login(ctx context.Context, app *app, args []string) error {
	var email, password string
	flagSet := pflag.NewFlagSet("login", pflag.ContinueOnError)
	flagSet.StringVar(&email, "email", "", "account email")
	flagSet.StringVar(&password, "password", "", "account password (read from stdin when empty)")
	if err := flagSet.Parse(args); err != nil {
		return err
	}
	if password == "" {
		password = app.prompt("Password: ")
	}
	credential, err := app.api.Login(ctx, email, password)
	if err != nil {
		return err
	}
	if err := app.store.Save(credential); err != nil {
		return err
	}
	fmt.Fprintln(app.out, "Login successful")
	return nil
}

func register(ctx context.Context, app *app, args []string) error {
	var username, email, password string
	flagSet := pflag.NewFlagSet("register", pflag.ContinueOnError)
	flagSet.StringVar(&username, "username", "", "display name, at least 4 characters")
	flagSet.StringVar(&email, "email", "", "account email")
	flagSet.StringVar(&password, "password", "", "account password (read from stdin when empty)")
	if err := flagSet.Parse(args); err != nil {
		return err
	}
	if password == "" {
		password = app.prompt("Password: ")
	}
	credential, err := app.api.Register(ctx, username, email, password)
	if err != nil {
		return err
	}
	if err := app.store.Save(credential); err != nil {
		return err
	}
	fmt.Fprintln(app.out, "Signup successful")
	return nil
}

func logout(_ context.Context, app *app, _ []string) error {
	if err := app.store.Clear(); err != nil {
		return err
	}
	fmt.Fprintln(app.out, "Logged out")
	return nil
}

func createRoom(ctx context.Context, app *app, args []string) error {
	var name string
	flagSet := pflag.NewFlagSet("room", pflag.ContinueOnError)
	flagSet.StringVar(&name, "name", "", "name of the private room")
	if err := flagSet.Parse(args); err != nil {
		return err
	}
	credential, err := app.store.Load()
	if err != nil {
		return fmt.Errorf("%w: please login first", err)
	}
	navigation, err := app.api.CreateRoom(ctx, credential, name)
	if err != nil {
		return err
	}
	fmt.Fprintf(app.out, "Room %s created, join it with: chat chat --room %s --room-id %s\n",
		navigation.RoomName, navigation.RoomName, navigation.RoomID)
	return nil
}

func chat(ctx context.Context, app *app, args []string) error {
	var navigation domain.Navigation
	var public bool
	flagSet := pflag.NewFlagSet("chat", pflag.ContinueOnError)
	flagSet.StringVar(&navigation.RoomName, "room", "", "room name to join")
	flagSet.StringVar(&navigation.RoomID, "room-id", "", "room id to join")
	flagSet.BoolVar(&public, "public", false, "join the public room")
	if err := flagSet.Parse(args); err != nil {
		return err
	}
	if public {
		navigation = domain.PublicRoom
	}

	// A missing credential is reported by the session itself.
	credential, err := app.store.Load()
	if err != nil && !errors.Is(err, errors.ErrNoCredential) {
		return err
	}

	dialer := websocket.NewDialer(app.log, websocket.Config{
		URL:              app.config.ChatServerURL,
		HandshakeTimeout: app.config.HandshakeTimeout,
		WriteWait:        app.config.WriteWait,
		PongWait:         app.config.PongWait,
		PingInterval:     app.config.PingInterval,
		MaxMessageSize:   app.config.MaxMessageSize,
	})
	composer := services.NewComposer(app.log, runtime.SystemClock{})
	session := runtime.NewSession(app.log, dialer, composer, credential, navigation)
	session.Observe(ui.NewTerminal(app.out, app.config.TerminalWidth))
	defer func() { _ = session.Close() }()

	if err := session.Start(ctx); err != nil {
		return err
	}

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(app.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-session.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-session.Done():
			return sessionError(session.View())
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if quit := app.handle(ctx, session, parseInput(line)); quit {
				return nil
			}
		}
	}
}

// handle applies one line of user input and reports whether to quit.
func (a *app) handle(ctx context.Context, session *runtime.Session, in input) bool {
	switch in.kind {
	case inputQuit:
		return true
	case inputRoom:
		if err := session.Navigate(ctx, in.navigation); err != nil {
			fmt.Fprintln(a.out, "Cannot switch room:", err)
		}
	case inputMessage:
		if err := session.Submit(ctx, in.text); err != nil {
			switch {
			case errors.Is(err, errors.ErrEmptyText):
			case errors.Is(err, errors.ErrNoRoom):
				fmt.Fprintln(a.out, "Not in a room yet, message not sent")
			default:
				fmt.Fprintln(a.out, "Message not sent:", err)
			}
		}
	case inputUnknown:
		fmt.Fprintln(a.out, "Unknown command:", in.text)
	}
	return false
}

// sessionError turns a failed session into the command error; the
// terminal already told the user why.
func sessionError(view domain.SessionView) error {
	if view.Err == nil || errors.Is(view.Err, errors.ErrAuthRequired) {
		return nil
	}
	return view.Err
}

func (a *app) prompt(label string) string {
	fmt.Fprint(a.out, label)
	line, _ := bufio.NewReader(a.in).ReadString('\n')
	return strings.TrimRight(line, "\r\n")
}
