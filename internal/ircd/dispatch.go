package ircd

// handlerFunc is the shape every command handler satisfies. Handlers only
// ever touch the three server capabilities described in the design notes:
// find/create/remove a channel, find a client by nick or handle, and send
// bytes to a handle.
type handlerFunc func(s *server, c *client, m message)

// dispatchTable is an init-time mapping from uppercase command name to
// handler, generalizing the if/else command cascades the command set grew
// out of into the data-driven form recommended for testability.
var dispatchTable = map[string]handlerFunc{
	"PASS": handlePass,
	"NICK": handleNick,
	"USER": handleUser,

	"JOIN":   handleJoin,
	"PART":   handlePart,
	"TOPIC":  handleTopic,
	"MODE":   handleMode,
	"INVITE": handleInvite,
	"KICK":   handleKick,

	"PRIVMSG": handlePrivmsg,
	"PING":    handlePing,
	"PONG":    handlePong,
	"QUIT":    handleQuit,
}

// dispatch looks up and runs the handler for m, or replies 421 if none is
// registered for the (unfolded) command token received.
func dispatch(s *server, c *client, m message) {
	h, ok := dispatchTable[m.Command]
	if !ok {
		s.sendNumeric(c, errUnknownCommand, []string{m.RawCommand}, "Unknown command")
		return
	}
	h(s, c, m)
}

// requireRegistered replies 451 and returns false unless the client has
// completed registration. PING/PONG/QUIT bypass this check entirely by not
// calling it (section 4.4).
func requireRegistered(s *server, c *client) bool {
	if c.step != stepRegistered {
		s.sendNumeric(c, errNotRegistered, nil, "You have not registered")
		return false
	}
	return true
}
