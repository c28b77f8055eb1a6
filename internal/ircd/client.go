package ircd

import "time"

// Registration steps. A client progresses through these strictly in order;
// the step never moves backward (section 4.3).
const (
	stepConnected registrationStep = iota
	stepHasPass
	stepHasNick
	stepRegistered
)

type registrationStep int

const maxPasswordAttempts = 3

// client is the per-connection record the loop goroutine owns exclusively.
// handle identifies the connection for the lifetime of the socket; handles
// come from an increasing counter and are never reused, and disconnect
// purges every reference to one in one step (see disconnect in loop.go).
type client struct {
	handle int

	nick        string // folded, empty until NICK accepted
	displayNick string // as given, case preserved
	username    string
	realname    string
	hostname    string

	step             registrationStep
	passwordAttempts int

	// channels is the set of folded channel names this client has joined.
	// It must always equal the set of channels whose membership contains
	// this client's handle (membership consistency invariant, section 3).
	channels map[string]struct{}

	recv recvBuffer

	// outbox is drained by this connection's writer goroutine. The loop
	// goroutine is the only writer to it.
	outbox chan string

	connectedAt time.Time

	// quitSent marks that a QUIT broadcast has already gone out for this
	// client, so disconnect never double-broadcasts it.
	quitSent bool
}

func newClient(handle int, hostname string, outbox chan string) *client {
	return &client{
		handle:      handle,
		hostname:    hostname,
		step:        stepConnected,
		channels:    make(map[string]struct{}),
		outbox:      outbox,
		connectedAt: time.Now(),
	}
}

// prefix returns this client's "nick!user@host" source prefix.
func (c *client) prefix() string {
	return nickUhost(c.displayNick, c.username, c.hostname)
}

// target returns the value used as the numeric reply target field: the
// display nickname once known, otherwise "*".
func (c *client) target() string {
	if c.displayNick == "" {
		return "*"
	}
	return c.displayNick
}
