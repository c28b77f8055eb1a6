package ircd

import (
	"strconv"
	"strings"
	"time"
)

// channel is a named conversation room. The server exclusively owns
// channel records; a channel's membership holds connection handles, not
// client pointers, so a disconnect can never leave a dangling reference
// behind (section 3, section 9 design notes).
type channel struct {
	name        string // folded, used for lookup
	displayName string // verbatim spelling of the name that created it

	topic      string
	topicBy    string // display nickname of the setter
	topicSetAt time.Time

	// members is the membership set, keyed by connection handle.
	members map[int]struct{}

	// order lists member handles in join order, so NAMES and broadcasts are
	// deterministic and reproducible in tests.
	order []int

	// operators is a subset of members (operator-containment invariant).
	operators map[int]struct{}

	// invited holds folded nicknames invited past invite-only (i) mode.
	invited map[string]struct{}

	inviteOnly     bool
	topicProtected bool
	key            string // mode k active iff non-empty
	limit          int    // mode l active iff > 0
}

func newChannel(displayName string) *channel {
	return &channel{
		name:        foldChannel(displayName),
		displayName: displayName,
		members:     make(map[int]struct{}),
		operators:   make(map[int]struct{}),
		invited:     make(map[string]struct{}),
	}
}

func (ch *channel) isMember(handle int) bool {
	_, ok := ch.members[handle]
	return ok
}

func (ch *channel) isOperator(handle int) bool {
	_, ok := ch.operators[handle]
	return ok
}

func (ch *channel) addMember(handle int, asOperator bool) {
	ch.members[handle] = struct{}{}
	ch.order = append(ch.order, handle)
	if asOperator {
		ch.operators[handle] = struct{}{}
	}
}

// removeMember removes a member and its operator status. Callers are
// responsible for deleting the channel from the server index once
// memberCount reaches zero (the "channel destroyed exactly when its
// membership set becomes empty" invariant).
func (ch *channel) removeMember(handle int) {
	delete(ch.members, handle)
	delete(ch.operators, handle)
	for i, h := range ch.order {
		if h == handle {
			ch.order = append(ch.order[:i], ch.order[i+1:]...)
			break
		}
	}
}

func (ch *channel) memberCount() int {
	return len(ch.members)
}

func (ch *channel) isInvited(foldedNick string) bool {
	_, ok := ch.invited[foldedNick]
	return ok
}

// modeParts renders the active boolean/value modes as positional
// parameters: the mode-flag token first, then one argument per
// value-carrying mode in the same order the flags appear. Used for
// RPL_CHANNELMODEIS, where each argument must be its own wire parameter
// rather than embedded in one space-containing string.
func (ch *channel) modeParts() []string {
	modes := "+"
	var args []string
	if ch.inviteOnly {
		modes += "i"
	}
	if ch.topicProtected {
		modes += "t"
	}
	if ch.key != "" {
		modes += "k"
		args = append(args, ch.key)
	}
	if ch.limit > 0 {
		modes += "l"
		args = append(args, strconv.Itoa(ch.limit))
	}
	return append([]string{modes}, args...)
}

// modeString is modeParts joined for display/testing purposes.
func (ch *channel) modeString() string {
	return strings.Join(ch.modeParts(), " ")
}
