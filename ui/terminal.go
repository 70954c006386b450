// Package ui renders session views on a terminal.
// It observes the session and never changes it.
package ui

import (
	"chat-client/domain"
	"chat-client/errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
)

const timeLayout = "15:04:05"

var (
	selfStyle   = color.New(color.FgGreen)
	otherStyle  = color.New(color.FgCyan)
	statusStyle = color.New(color.BgBlack, color.FgYellow)
	errorStyle  = color.New(color.FgRed)
)

// Terminal prints state changes as status lines, the first batch of a
// room as a table and every later entry as one coloured line, own
// messages right-aligned.
type Terminal struct {
	out   io.Writer
	width int

	mu       sync.Mutex
	state    domain.SessionState
	room     domain.RoomReference
	rendered domain.MessageSequence
	drawn    bool
}

func NewTerminal(out io.Writer, width int) *Terminal {
	return &Terminal{out: out, width: width, state: domain.Disconnected}
}

func (t *Terminal) OnChange(view domain.SessionView) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if view.State != t.state || view.Room != t.room {
		t.status(view)
		t.state = view.State
		t.room = view.Room
	}
	t.messages(view.Messages)
}

func (t *Terminal) status(view domain.SessionView) {
	var line string
	switch view.State {
	case domain.Connecting:
		line = "Connecting..."
	case domain.ConnectedNoRoom:
		line = "Connected"
	case domain.JoiningRoom:
		line = fmt.Sprintf("Joining %s...", view.Room.DisplayName())
	case domain.InRoom:
		line = "You are in: " + view.Room.DisplayName()
	case domain.Closed:
		t.closed(view.Err)
		return
	default:
		return
	}
	fmt.Fprintln(t.out, statusStyle.Render(line))
}

func (t *Terminal) closed(err error) {
	switch {
	case err == nil:
		fmt.Fprintln(t.out, statusStyle.Render("Session closed"))
	case errors.Is(err, errors.ErrAuthRequired):
		fmt.Fprintln(t.out, errorStyle.Render("Please login first: chat login --email <email>"))
	default:
		fmt.Fprintln(t.out, errorStyle.Render("Disconnected: "+err.Error()))
	}
}

func (t *Terminal) messages(messages domain.MessageSequence) {
	switch {
	case len(messages) == 0:
		if len(t.rendered) > 0 {
			t.rendered = nil
			t.drawn = false
		}
		return
	case !t.drawn || !extends(messages, t.rendered):
		t.table(messages)
		t.drawn = true
	default:
		for _, msg := range messages[len(t.rendered):] {
			fmt.Fprintln(t.out, t.line(msg))
		}
	}
	t.rendered = messages.Clone()
}

func (t *Terminal) table(messages domain.MessageSequence) {
	table := tablewriter.NewWriter(t.out)
	table.SetHeader([]string{"Time", "From", "Message"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	for _, msg := range messages {
		from := msg.Title
		if msg.Alignment == domain.AlignSelf {
			from += " (you)"
		}
		table.Append([]string{msg.Timestamp.Local().Format(timeLayout), from, msg.Text})
	}
	table.Render()
}

func (t *Terminal) line(msg domain.DisplayMessage) string {
	text := fmt.Sprintf("[%s] %s: %s", msg.Timestamp.Local().Format(timeLayout), msg.Title, msg.Text)
	if msg.Alignment != domain.AlignSelf {
		return otherStyle.Render(text)
	}
	if pad := t.width - utf8.RuneCountInString(text); pad > 0 {
		text = strings.Repeat(" ", pad) + text
	}
	return selfStyle.Render(text)
}

// extends reports whether messages is rendered followed by new entries.
func extends(messages, rendered domain.MessageSequence) bool {
	if len(messages) < len(rendered) {
		return false
	}
	for i := range rendered {
		if messages[i] != rendered[i] {
			return false
		}
	}
	return true
}
