package main

import (
	"chat-client/domain"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseInput(t *testing.T) {
	cases := []struct {
		line string
		want input
	}{
		{line: "hello", want: input{kind: inputMessage, text: "hello"}},
		{line: "   ", want: input{kind: inputMessage, text: "   "}},
		{line: "//shrug", want: input{kind: inputMessage, text: "/shrug"}},
		{line: "/quit", want: input{kind: inputQuit}},
		{line: "/room general", want: input{kind: inputRoom, navigation: domain.Navigation{RoomName: "general"}}},
		{line: "/room   secret club ", want: input{kind: inputRoom, navigation: domain.Navigation{RoomName: "secret club"}}},
		{line: "/public", want: input{kind: inputRoom, navigation: domain.PublicRoom}},
		{line: "/room", want: input{kind: inputUnknown, text: "/room"}},
		{line: "/dance", want: input{kind: inputUnknown, text: "/dance"}},
	}
	for _, tc := range cases {
		t.Run(tc.line, func(t *testing.T) {
			require.Equal(t, tc.want, parseInput(tc.line))
		})
	}
}
