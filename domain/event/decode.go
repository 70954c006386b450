package event

import (
	"bytes"
	"chat-client/errors"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// DecodeRoomConfirmed accepts either a bare room name string or an object.
// A bare string stands for both the id and the name.
func DecodeRoomConfirmed(data json.RawMessage) (RoomConfirmed, error) {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		if name == "" {
			return RoomConfirmed{}, fmt.Errorf("%w: empty room confirmation", errors.ErrMalformedRecord)
		}
		return RoomConfirmed{RoomID: name, RoomName: name, NameOnly: true}, nil
	}
	var confirmed RoomConfirmed
	if err := json.Unmarshal(data, &confirmed); err != nil {
		return RoomConfirmed{}, fmt.Errorf("%w: %v", errors.ErrMalformedRecord, err)
	}
	if confirmed.RoomID == "" {
		confirmed.RoomID = confirmed.RoomName
		confirmed.NameOnly = confirmed.RoomName != ""
	}
	if confirmed.RoomName == "" {
		confirmed.RoomName = confirmed.RoomID
	}
	if confirmed.RoomID == "" {
		return RoomConfirmed{}, fmt.Errorf("%w: room confirmation without id", errors.ErrMalformedRecord)
	}
	return confirmed, nil
}

// DecodeBatch splits a snapshot payload into raw records.
// The batch may be wrapped in an outer array, in which case only the
// first inner batch is used.
func DecodeBatch(data json.RawMessage) ([]json.RawMessage, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrMalformedRecord, err)
	}
	if len(items) > 0 && bytes.HasPrefix(bytes.TrimSpace(items[0]), []byte("[")) {
		var inner []json.RawMessage
		if err := json.Unmarshal(items[0], &inner); err != nil {
			return nil, fmt.Errorf("%w: %v", errors.ErrMalformedRecord, err)
		}
		return inner, nil
	}
	return items, nil
}

func DecodeRecord(data json.RawMessage) (Record, error) {
	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return Record{}, fmt.Errorf("%w: %v", errors.ErrMalformedRecord, err)
	}
	return record, nil
}

// IDString normalizes a JSON id that may be a number or a string.
// It returns "" for an absent or null id.
func IDString(raw json.RawMessage) (string, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("%w: id %s", errors.ErrMalformedRecord, trimmed)
	}
	if i, err := n.Int64(); err == nil {
		return strconv.FormatInt(i, 10), nil
	}
	return n.String(), nil
}
