package event

import (
	"chat-client/errors"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeRoomConfirmed(t *testing.T) {
	cases := []struct {
		name    string
		data    string
		want    RoomConfirmed
		wantErr bool
	}{
		{name: "object", data: `{"roomId":"42","roomName":"general"}`, want: RoomConfirmed{RoomID: "42", RoomName: "general"}},
		{name: "bare name", data: `"general"`, want: RoomConfirmed{RoomID: "general", RoomName: "general", NameOnly: true}},
		{name: "name only", data: `{"roomName":"general"}`, want: RoomConfirmed{RoomID: "general", RoomName: "general", NameOnly: true}},
		{name: "id only", data: `{"roomId":"42"}`, want: RoomConfirmed{RoomID: "42", RoomName: "42"}},
		{name: "empty string", data: `""`, wantErr: true},
		{name: "empty object", data: `{}`, wantErr: true},
		{name: "number", data: `42`, wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := require.New(t)
			got, err := DecodeRoomConfirmed(json.RawMessage(tc.data))
			if tc.wantErr {
				req.ErrorIs(err, errors.ErrMalformedRecord)
				return
			}
			req.NoError(err)
			req.Equal(tc.want, got)
		})
	}
}

func TestDecodeBatch_Flat_And_Wrapped(t *testing.T) {
	req := require.New(t)
	record := `{"senderName":"carol","content":"hi","createdAt":"2024-01-01T10:00:00Z"}`

	flat, err := DecodeBatch(json.RawMessage(`[` + record + `,` + record + `]`))
	req.NoError(err)
	req.Len(flat, 2)

	wrapped, err := DecodeBatch(json.RawMessage(`[[` + record + `]]`))
	req.NoError(err)
	req.Len(wrapped, 1)
	req.JSONEq(record, string(wrapped[0]))

	empty, err := DecodeBatch(json.RawMessage(`[]`))
	req.NoError(err)
	req.Empty(empty)

	_, err = DecodeBatch(json.RawMessage(`{"not":"a batch"}`))
	req.ErrorIs(err, errors.ErrMalformedRecord)
}

func TestDecodeRecord_Sender_Fallback(t *testing.T) {
	req := require.New(t)

	legacy, err := DecodeRecord(json.RawMessage(`{"username":"carol","content":"hi","createdAt":"2024-01-01T10:00:00Z"}`))
	req.NoError(err)
	req.Equal("carol", legacy.Sender())

	both, err := DecodeRecord(json.RawMessage(`{"senderName":"bob","username":"carol"}`))
	req.NoError(err)
	req.Equal("bob", both.Sender())

	_, err = DecodeRecord(json.RawMessage(`[1,2]`))
	req.ErrorIs(err, errors.ErrMalformedRecord)
}

func TestIDString(t *testing.T) {
	req := require.New(t)

	for data, want := range map[string]string{
		`42`:   "42",
		`"42"`: "42",
		`null`: "",
		``:     "",
		`4.5`:  "4.5",
	} {
		got, err := IDString(json.RawMessage(data))
		req.NoError(err, data)
		req.Equal(want, got, data)
	}

	_, err := IDString(json.RawMessage(`{"id":1}`))
	req.ErrorIs(err, errors.ErrMalformedRecord)
}

func TestNewFrame_Envelope(t *testing.T) {
	req := require.New(t)

	frame, err := NewFrame(KindJoinRoom, JoinRequest{RoomHint: "general", UserID: "7"})
	req.NoError(err)

	encoded, err := json.Marshal(frame)
	req.NoError(err)
	req.JSONEq(`{"event":"joinRoom","data":{"roomHint":"general","userId":"7"}}`, string(encoded))
}
