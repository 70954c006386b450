package domain

// PublicRoom is the navigation pair used when the user picks the open room.
var PublicRoom = Navigation{RoomName: "public", RoomID: "3"}

// Navigation is the optional room pair read from navigation context.
// An empty RoomName asks the service for its default public room.
type Navigation struct {
	RoomName string
	RoomID   string
}

func (n Navigation) IsEmpty() bool {
	return n.RoomName == "" && n.RoomID == ""
}

// RoomReference tracks the requested room and, once the service
// acknowledged the join, the authoritative room identity.
// RoomID is the backend id from navigation, kept for confirmations that
// only carry the room name.
type RoomReference struct {
	Hint          string
	RoomID        string
	ConfirmedID   string
	ConfirmedName string
}

func NewRoomReference(navigation Navigation) RoomReference {
	return RoomReference{Hint: navigation.Hint(), RoomID: navigation.RoomID}
}

// Requested reports whether ref names the room asked for.
func (r RoomReference) Requested(ref string) bool {
	return ref != "" && (ref == r.Hint || ref == r.RoomID)
}

func (r RoomReference) IsConfirmed() bool {
	return r.ConfirmedID != ""
}

// Confirm returns a copy of r carrying the identity asserted by the service.
func (r RoomReference) Confirm(id, name string) RoomReference {
	r.ConfirmedID = id
	r.ConfirmedName = name
	return r
}

// DisplayName is what a "you are in" status line shows.
func (r RoomReference) DisplayName() string {
	switch {
	case r.ConfirmedName != "":
		return r.ConfirmedName
	case r.Hint != "":
		return r.Hint
	default:
		return "Public"
	}
}

// Hint is the room hint sent with a join request: the room name, or the
// room id when only the id is known.
func (n Navigation) Hint() string {
	if n.RoomName != "" {
		return n.RoomName
	}
	return n.RoomID
}
