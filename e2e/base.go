package e2e

import (
	"chat-client/client"
	"chat-client/domain"
	"chat-client/infrastructure/websocket"
	"chat-client/runtime"
	"chat-client/services"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/gookit/color"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/suite"
)

const stepTimeout = 30 * time.Second

type BaseSuite struct {
	suite.Suite
	Config Config
	Log    *slog.Logger
}

// SetupSuite loads the environment configuration before running tests.
// The suite is skipped when no messaging service is configured.
func (s *BaseSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
	if s.Config.ServerURL == "" || s.Config.APIURL == "" {
		s.T().Skip("CHAT_SERVER_URL and CHAT_API_URL are required for e2e tests")
	}
	if s.Config.RoomsURL == "" {
		s.Config.RoomsURL = s.Config.APIURL
	}
	s.Log = logs.GetLoggerFromLevel(slog.LevelDebug)
}

// Step prints a colorized header for a scenario step in logs
func (s *BaseSuite) Step(name string) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	s.T().Log(header)
}

func (s *BaseSuite) API() *client.API {
	return client.NewAPI(s.Log, client.Config{
		APIURL:   s.Config.APIURL,
		RoomsURL: s.Config.RoomsURL,
		Timeout:  stepTimeout,
	})
}

// WithSession runs fn against a started session and closes it afterwards
func (s *BaseSuite) WithSession(name string, credential domain.Credential, navigation domain.Navigation,
	fn func(ctx context.Context, session *runtime.Session)) {
	s.Step(name)
	dialer := websocket.NewDialer(s.Log, websocket.Config{
		URL:              s.Config.ServerURL,
		HandshakeTimeout: 10 * time.Second,
		WriteWait:        10 * time.Second,
		PongWait:         time.Minute,
		PingInterval:     30 * time.Second,
		MaxMessageSize:   1 << 20,
	})
	session := runtime.NewSession(s.Log, dialer, services.NewComposer(s.Log, runtime.SystemClock{}), credential, navigation)
	if s.Config.DebugJSON {
		session.Observe(viewDumper{suite: s})
	}
	defer func() { s.Require().NoError(session.Close()) }()

	ctx, cancel := context.WithTimeout(context.Background(), stepTimeout)
	defer cancel()
	s.Require().NoError(session.Start(ctx))
	fn(ctx, session)
}

// WaitFor polls the session view until cond holds
func (s *BaseSuite) WaitFor(session *runtime.Session, msg string, cond func(view domain.SessionView) bool) {
	s.Require().Eventually(func() bool { return cond(session.View()) }, stepTimeout, 50*time.Millisecond, msg)
}

type viewDumper struct {
	suite *BaseSuite
}

func (d viewDumper) OnChange(view domain.SessionView) {
	dump := struct {
		State    string
		Room     domain.RoomReference
		Messages int
		Err      string
	}{State: view.State.String(), Room: view.Room, Messages: len(view.Messages)}
	if view.Err != nil {
		dump.Err = view.Err.Error()
	}
	data, _ := json.MarshalIndent(dump, "", "  ")
	d.suite.T().Log(string(data))
}
