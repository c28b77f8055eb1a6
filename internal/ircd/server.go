package ircd

import "log"

// Config is the fixed external configuration a server instance needs: a
// listen port and shared password supplied at start (section 6).
type Config struct {
	Port     int
	Password string
	Name     string // server name used as the numeric-reply prefix, default "ft_irc"
}

// server owns every mutable record: the nickname index, the channel index,
// and the connection index. Only the loop goroutine (loop.go) ever calls
// into the methods below; there is no locking because there is no other
// caller (section 5).
type server struct {
	config Config

	clients  map[int]*client
	nicks    map[string]int // folded nickname -> handle
	channels map[string]*channel

	log *log.Logger
}

func newServer(config Config, logger *log.Logger) *server {
	if config.Name == "" {
		config.Name = "ft_irc"
	}
	return &server{
		config:   config,
		clients:  make(map[int]*client),
		nicks:    make(map[string]int),
		channels: make(map[string]*channel),
		log:      logger,
	}
}

// findClientByHandle implements the "find client by handle" capability
// handlers need (section 9 design notes).
func (s *server) findClientByHandle(handle int) (*client, bool) {
	c, ok := s.clients[handle]
	return c, ok
}

// findClientByNick implements "find client by nickname".
func (s *server) findClientByNick(nick string) (*client, bool) {
	handle, ok := s.nicks[foldNick(nick)]
	if !ok {
		return nil, false
	}
	return s.findClientByHandle(handle)
}

// findChannel implements "find channel" by its display or folded name.
func (s *server) findChannel(name string) (*channel, bool) {
	ch, ok := s.channels[foldChannel(name)]
	return ch, ok
}

// createChannel implements "create channel"; callers must already have
// checked findChannel returned false.
func (s *server) createChannel(displayName string) *channel {
	ch := newChannel(displayName)
	s.channels[ch.name] = ch
	return ch
}

// removeChannel implements "remove channel".
func (s *server) removeChannel(ch *channel) {
	delete(s.channels, ch.name)
}

// send implements "send bytes to a handle". It is the single funnel every
// outbound line passes through, as required by section 2's "channels never
// write directly" data-flow rule. A write to a client that is already gone
// is silently dropped; a write to a client whose outbox is full is dropped
// with a log line.
func (s *server) send(handle int, data string) {
	c, ok := s.clients[handle]
	if !ok {
		return
	}
	select {
	case c.outbox <- data:
	default:
		// Outbox full: the client is not draining fast enough. Drop rather
		// than block the loop goroutine on a slow reader.
		s.log.Printf("client %d: outbox full, dropping message", handle)
	}
}

// sendNumeric is a convenience wrapper around send+numericReply.
func (s *server) sendNumeric(c *client, code string, params []string, trailing string) {
	s.send(c.handle, numericReply(s.config.Name, code, c.target(), params, trailing))
}

// sendNumericPlain is sendNumeric's counterpart for numerics with no
// trailing parameter (e.g. RPL_MYINFO).
func (s *server) sendNumericPlain(c *client, code string, params []string) {
	s.send(c.handle, numericReplyPlain(s.config.Name, code, c.target(), params))
}

// broadcastToChannel sends a line to every member of ch, including the
// handler's own caller (used by JOIN/PART/TOPIC/MODE/KICK, all of which
// the spec describes as "including the caller").
func (s *server) broadcastToChannel(ch *channel, data string) {
	for _, handle := range ch.order {
		s.send(handle, data)
	}
}

// broadcastToChannelExcept sends a line to every member of ch except one
// handle (the "broadcast exclusion" testable property PRIVMSG relies on).
func (s *server) broadcastToChannelExcept(ch *channel, exclude int, data string) {
	for _, handle := range ch.order {
		if handle == exclude {
			continue
		}
		s.send(handle, data)
	}
}

// peersOf returns the set of connection handles that share at least one
// channel with c, not including c itself.
func (s *server) peersOf(c *client) map[int]struct{} {
	peers := make(map[int]struct{})
	for chName := range c.channels {
		ch, ok := s.channels[chName]
		if !ok {
			continue
		}
		for _, h := range ch.order {
			if h == c.handle {
				continue
			}
			peers[h] = struct{}{}
		}
	}
	return peers
}

// registerClient adds a newly accepted connection to the connection index.
func (s *server) registerClient(c *client) {
	s.clients[c.handle] = c
}

// registerNick adds a client to the nickname index once step reaches
// HasNick (the "nickname index contains every client whose step>=2"
// invariant).
func (s *server) registerNick(c *client) {
	s.nicks[c.nick] = c.handle
}

// unregisterNick removes a client's current nickname from the index, used
// both on NICK change and on disconnect.
func (s *server) unregisterNick(c *client) {
	if c.nick == "" {
		return
	}
	if s.nicks[c.nick] == c.handle {
		delete(s.nicks, c.nick)
	}
}
