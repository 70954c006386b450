package projection

import (
	"chat-client/domain"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func raw(records ...string) []json.RawMessage {
	out := make([]json.RawMessage, 0, len(records))
	for _, record := range records {
		out = append(out, json.RawMessage(record))
	}
	return out
}

func attachedTimeline() *Timeline {
	timeline := NewTimeline(logs.GetLoggerFromLevel(slog.LevelDebug), domain.Identity{UserID: "7", Username: "bob"})
	timeline.Attach(domain.RoomReference{Hint: "general", ConfirmedID: "42", ConfirmedName: "general"})
	return timeline
}

func TestTimeline_Snapshot_Projects_Alignment(t *testing.T) {
	req := require.New(t)
	timeline := attachedTimeline()

	// Given a snapshot with one message from carol and one from bob
	messages, applied := timeline.OnSnapshot(raw(
		`{"senderName":"carol","content":"hi","createdAt":"2024-01-01T10:00:00Z"}`,
		`{"username":"bob","content":"hey","createdAt":"2024-01-01T10:00:30.5Z"}`,
	))

	// Then both are shown in order, aligned by sender name
	req.True(applied)
	req.Equal(domain.MessageSequence{
		{Alignment: domain.AlignOther, Text: "hi", Title: "carol", Timestamp: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)},
		{Alignment: domain.AlignSelf, Text: "hey", Title: "bob", Timestamp: time.Date(2024, 1, 1, 10, 0, 30, 500_000_000, time.UTC)},
	}, messages)
}

func TestTimeline_Snapshot_Replaces_Live_Messages(t *testing.T) {
	req := require.New(t)
	timeline := attachedTimeline()

	// Given a live message received before the snapshot
	req.True(timeline.OnLiveMessage(json.RawMessage(`{"senderName":"dave","content":"early","createdAt":"2024-01-01T09:00:00Z"}`)))

	// When the snapshot arrives
	timeline.OnSnapshot(raw(`{"senderName":"carol","content":"hi","createdAt":"2024-01-01T10:00:00Z"}`))

	// Then the last snapshot wins
	req.Len(timeline.Messages(), 1)
	req.Equal("hi", timeline.Messages()[0].Text)

	// And an empty snapshot empties the room
	timeline.OnSnapshot(raw())
	req.Empty(timeline.Messages())
}

func TestTimeline_Malformed_Records_Are_Dropped(t *testing.T) {
	req := require.New(t)
	timeline := attachedTimeline()

	messages, _ := timeline.OnSnapshot(raw(
		`{"senderName":"carol","content":"one","createdAt":"2024-01-01T10:00:00Z"}`,
		`{"senderName":"carol","content":"bad date","createdAt":"yesterday"}`,
		`"not an object"`,
		`{"senderName":"carol","content":"two","createdAt":"2024-01-01T10:01:00Z"}`,
	))

	req.Len(messages, 2)
	req.Equal("one", messages[0].Text)
	req.Equal("two", messages[1].Text)

	req.False(timeline.OnLiveMessage(json.RawMessage(`{"senderName":"carol","createdAt":12}`)))
	req.Len(timeline.Messages(), 2)
}

func TestTimeline_Live_Messages_Keep_Arrival_Order(t *testing.T) {
	req := require.New(t)
	timeline := attachedTimeline()

	// Given live messages delivered out of timestamp order, one of them twice
	req.True(timeline.OnLiveMessage(json.RawMessage(`{"senderName":"carol","content":"later","createdAt":"2024-01-01T11:00:00Z","roomId":42}`)))
	req.True(timeline.OnLiveMessage(json.RawMessage(`{"senderName":"carol","content":"earlier","createdAt":"2024-01-01T10:00:00Z","roomId":"42"}`)))
	req.True(timeline.OnLiveMessage(json.RawMessage(`{"senderName":"carol","content":"earlier","createdAt":"2024-01-01T10:00:00Z"}`)))

	// Then they are neither resorted nor de-duplicated
	texts := []string{}
	for _, msg := range timeline.Messages() {
		texts = append(texts, msg.Text)
	}
	req.Equal([]string{"later", "earlier", "earlier"}, texts)
}

func TestTimeline_Ignores_Other_Rooms_And_Unattached_Events(t *testing.T) {
	req := require.New(t)
	timeline := NewTimeline(logs.GetLoggerFromLevel(slog.LevelDebug), domain.Identity{Username: "bob"})
	record := json.RawMessage(`{"senderName":"carol","content":"hi","createdAt":"2024-01-01T10:00:00Z","roomId":"42"}`)

	// Given no confirmed room, nothing is accepted
	req.False(timeline.OnLiveMessage(record))
	_, applied := timeline.OnSnapshot(raw(string(record)))
	req.False(applied)

	// Given room 42 is confirmed, records for room 1 are ignored
	timeline.Attach(domain.RoomReference{ConfirmedID: "42", ConfirmedName: "general"})
	req.False(timeline.OnLiveMessage(json.RawMessage(`{"senderName":"carol","content":"elsewhere","createdAt":"2024-01-01T10:00:00Z","roomId":"1"}`)))
	req.True(timeline.OnLiveMessage(record))

	// And a record naming the room by its name is accepted
	req.True(timeline.OnLiveMessage(json.RawMessage(`{"senderName":"carol","content":"by name","createdAt":"2024-01-01T10:00:00Z","roomId":"general"}`)))
	req.Len(timeline.Messages(), 2)

	// When reset, the timeline is empty and detached
	timeline.Reset()
	req.Empty(timeline.Messages())
	req.False(timeline.OnLiveMessage(record))
}
