package domain

import (
	"regexp"
	"strings"
	"time"
)

// MembershipStatus is the room membership state announced by a system message
type MembershipStatus string

const (
	StatusJoined  MembershipStatus = "joined"
	StatusLeft    MembershipStatus = "left"
	StatusRemoved MembershipStatus = "removed"
)

// Phrases the chat client writes into system messages
const (
	PhraseLeft    = "left this chatroom"
	PhraseJoined  = "joined this chatroom"
	PhraseRemoved = "has been removed from this chatroom"
)

// StatusPhrases lists every phrase that marks a message as a status message.
var StatusPhrases = []string{PhraseLeft, PhraseJoined, PhraseRemoved}

var removedSubjectPattern = regexp.MustCompile(`^(.+?) ` + regexp.QuoteMeta(PhraseRemoved))

// StatusEvent is a membership change derived from a system message
type StatusEvent struct {
	User   string
	Status MembershipStatus
	At     time.Time
}

// IsDeparture reports whether the status takes the user out of the room.
func (s MembershipStatus) IsDeparture() bool {
	return s == StatusLeft || s == StatusRemoved
}

// ParseStatusEvent derives a status event from a message.
// Phrases are checked in the order left, removed, joined. For removals the
// subject is taken from the text, the sender being whoever removed them;
// a removal whose text does not start with "<name> has been removed" yields false.
func ParseStatusEvent(msg Message) (StatusEvent, bool) {
	switch {
	case strings.Contains(msg.Text, PhraseLeft):
		return StatusEvent{User: msg.UserName, Status: StatusLeft, At: msg.SentAt}, true
	case strings.Contains(msg.Text, PhraseRemoved):
		m := removedSubjectPattern.FindStringSubmatch(msg.Text)
		if m == nil {
			return StatusEvent{}, false
		}
		return StatusEvent{User: m[1], Status: StatusRemoved, At: msg.SentAt}, true
	case strings.Contains(msg.Text, PhraseJoined):
		return StatusEvent{User: msg.UserName, Status: StatusJoined, At: msg.SentAt}, true
	}
	return StatusEvent{}, false
}
