package domain

type SessionState int

const (
	Disconnected SessionState = iota
	Connecting
	ConnectedNoRoom
	JoiningRoom
	InRoom
	Closed
)

var stateNames = map[SessionState]string{
	Disconnected:    "Disconnected",
	Connecting:      "Connecting",
	ConnectedNoRoom: "ConnectedNoRoom",
	JoiningRoom:     "JoiningRoom",
	InRoom:          "InRoom",
	Closed:          "Closed",
}

func (s SessionState) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "Unknown"
}

// CanCompose reports whether the compose control may be enabled.
func (s SessionState) CanCompose() bool {
	return s == InRoom
}
