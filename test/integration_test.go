package test

import (
	"chat-client/domain"
	"chat-client/domain/event"
	"chat-client/infrastructure/websocket"
	"chat-client/runtime"
	"chat-client/services"
	"chat-client/storage"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/golang-jwt/jwt/v5"
	gorilla "github.com/gorilla/websocket"
	"github.com/mama165/sdk-go/logs"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

// messagingService emulates the chat server: it confirms joins, sends the
// room history and echoes every sent message back to the room.
type messagingService struct {
	mu      sync.Mutex
	rooms   map[string]string
	history map[string][]event.Record
}

func newMessagingService() *messagingService {
	return &messagingService{
		rooms: map[string]string{"general": "42", "public": "3"},
		history: map[string][]event.Record{
			"42": {{SenderName: "carol", Content: "hi", CreatedAt: "2024-01-01T10:00:00Z"}},
		},
	}
}

func (m *messagingService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	upgrader := gorilla.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	var current string
	for {
		var frame event.Frame
		if err := conn.ReadJSON(&frame); err != nil {
			return
		}
		switch frame.Event {
		case event.KindJoinRoom:
			var join event.JoinRequest
			_ = json.Unmarshal(frame.Data, &join)
			hint := lo.Ternary(join.RoomHint == "", "public", join.RoomHint)
			current = m.roomID(hint)
			m.write(conn, event.KindRoomConfirmed, event.RoomConfirmed{RoomID: current, RoomName: hint})
			m.write(conn, event.KindSnapshot, [][]event.Record{m.records(current)})
		case event.KindSendMessage:
			var send event.SendRequest
			_ = json.Unmarshal(frame.Data, &send)
			record := event.Record{SenderName: send.UserName, Content: send.Content, CreatedAt: send.CreatedAt,
				RoomID: json.RawMessage(`"` + send.RoomID + `"`)}
			m.append(send.RoomID, record)
			m.write(conn, event.KindLiveMessage, record)
		}
	}
}

func (m *messagingService) roomID(name string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id, ok := m.rooms[name]; ok {
		return id
	}
	id := name + "-id"
	m.rooms[name] = id
	return id
}

func (m *messagingService) records(roomID string) []event.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]event.Record{}, m.history[roomID]...)
}

func (m *messagingService) append(roomID string, record event.Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history[roomID] = append(m.history[roomID], record)
}

func (m *messagingService) write(conn *gorilla.Conn, kind event.Kind, payload any) {
	frame, err := event.NewFrame(kind, payload)
	if err != nil {
		return
	}
	_ = conn.WriteJSON(frame)
}

func texts(messages domain.MessageSequence) []string {
	return lo.Map(messages, func(msg domain.DisplayMessage, _ int) string { return msg.Text })
}

func Test_Scenario(t *testing.T) {
	ctx := context.Background()
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).
		WithLoggingLevel(badger.ERROR).
		WithValueLogFileSize(16 << 20))
	req.NoError(err)
	defer db.Close()

	server := httptest.NewServer(newMessagingService())
	defer server.Close()

	// Given bob logged in earlier
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"id": 7}).SignedString([]byte("test-secret"))
	req.NoError(err)
	store := storage.NewCredentialStore(db, log)
	req.NoError(store.Save(domain.Credential{Token: token, User: []byte(`{"id":7,"username":"bob"}`)}))
	credential, err := store.Load()
	req.NoError(err)

	dialer := websocket.NewDialer(log, websocket.Config{
		URL:              "ws" + strings.TrimPrefix(server.URL, "http"),
		HandshakeTimeout: time.Second,
		WriteWait:        time.Second,
		PongWait:         time.Minute,
		PingInterval:     time.Second,
		MaxMessageSize:   1 << 16,
	})
	session := runtime.NewSession(log, dialer, services.NewComposer(log, runtime.SystemClock{}),
		credential, domain.Navigation{RoomName: "general"})
	defer func() { req.NoError(session.Close()) }()

	// When bob opens the general room
	req.NoError(session.Start(ctx))
	req.Eventually(func() bool {
		return session.State() == domain.InRoom && len(session.Messages()) == 1
	}, 5*time.Second, 10*time.Millisecond)

	// Then the room identity comes from the service and history is shown
	req.Equal("42", session.Room().ConfirmedID)
	req.Equal([]string{"hi"}, texts(session.Messages()))
	req.Equal(domain.AlignOther, session.Messages()[0].Alignment)

	// When bob sends a message, it shows up once echoed, on his side
	req.NoError(session.Submit(ctx, "hello"))
	req.Eventually(func() bool { return len(session.Messages()) == 2 }, 5*time.Second, 10*time.Millisecond)
	req.Equal(domain.AlignSelf, session.Messages()[1].Alignment)

	// When bob moves to the public room
	req.NoError(session.Navigate(ctx, domain.PublicRoom))
	req.Eventually(func() bool {
		return session.State() == domain.InRoom && session.Room().ConfirmedID == "3"
	}, 5*time.Second, 10*time.Millisecond)

	// Then nothing from the general room is left
	req.Empty(session.Messages())
	req.NoError(session.Submit(ctx, "anyone here?"))
	req.Eventually(func() bool {
		return lo.Contains(texts(session.Messages()), "anyone here?")
	}, 5*time.Second, 10*time.Millisecond)
	req.NotContains(texts(session.Messages()), "hello")
}
