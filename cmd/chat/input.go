package main

import (
	"chat-client/domain"
	"strings"
)

type inputKind int

const (
	inputMessage inputKind = iota
	inputRoom
	inputQuit
	inputUnknown
)

type input struct {
	kind       inputKind
	text       string
	navigation domain.Navigation
}

// parseInput reads one terminal line. Lines starting with a slash are
// commands; "//" escapes a message that starts with a slash.
func parseInput(line string) input {
	if !strings.HasPrefix(line, "/") {
		return input{kind: inputMessage, text: line}
	}
	if strings.HasPrefix(line, "//") {
		return input{kind: inputMessage, text: line[1:]}
	}
	name, arg, _ := strings.Cut(strings.TrimSpace(line[1:]), " ")
	arg = strings.TrimSpace(arg)
	switch name {
	case "quit", "exit":
		return input{kind: inputQuit}
	case "public":
		return input{kind: inputRoom, navigation: domain.PublicRoom}
	case "room":
		if arg == "" {
			return input{kind: inputUnknown, text: line}
		}
		return input{kind: inputRoom, navigation: domain.Navigation{RoomName: arg}}
	default:
		return input{kind: inputUnknown, text: line}
	}
}
