package conversation

import (
	"sort"
	"strings"
)

// Separator joins the two participant ids of a conversation key.
const Separator = "_"

// ID identifies the conversation between an unordered pair of participants.
type ID string

// NewID returns the conversation key for participants a and b. The pair is
// sorted before joining, so NewID(a, b) == NewID(b, a).
func NewID(a, b string) ID {
	pair := []string{a, b}
	sort.Strings(pair)
	return ID(strings.Join(pair, Separator))
}

// String implements fmt.Stringer.
func (id ID) String() string {
	return string(id)
}

// ValidParticipant reports whether p can be half of a conversation key:
// non-empty and free of Separator, so every key splits back into exactly one
// pair.
func ValidParticipant(p string) bool {
	return p != "" && !strings.Contains(p, Separator)
}

// Parties splits id into its two participants. ok is false when id is not a
// key of two valid participants.
func (id ID) Parties() (a, b string, ok bool) {
	a, b, found := strings.Cut(string(id), Separator)
	if !found || !ValidParticipant(a) || !ValidParticipant(b) {
		return "", "", false
	}
	return a, b, true
}

// Includes reports whether participant is one of the two parties of id.
func (id ID) Includes(participant string) bool {
	_, ok := id.Peer(participant)
	return ok
}

// Peer returns the other party of id as seen from self, and false if self is
// not part of the conversation.
func (id ID) Peer(self string) (string, bool) {
	a, b, ok := id.Parties()
	switch {
	case !ok:
		return "", false
	case self == a:
		return b, true
	case self == b:
		return a, true
	}
	return "", false
}
