package ircd

// errNoTextToSend is RFC 2812's ERR_NOTEXTTOSEND. It is not present in the
// fixed numeric list in section 4.2, but section 4.4's PRIVMSG description
// explicitly calls for it on empty message text, so it is implemented as
// directed there.
const errNoTextToSend = "412"

// handlePrivmsg implements PRIVMSG to either a channel or a nickname.
func handlePrivmsg(s *server, c *client, m message) {
	if !requireRegistered(s, c) {
		return
	}
	if len(m.Params) < 1 || m.Params[0] == "" {
		s.sendNumeric(c, errNeedMoreParams, []string{m.Command}, "Not enough parameters")
		return
	}
	if len(m.Params) < 2 || m.Params[1] == "" {
		s.sendNumeric(c, errNoTextToSend, nil, "No text to send")
		return
	}

	target := m.Params[0]
	text := m.Params[1]

	if target[0] == '#' {
		ch, ok := s.findChannel(target)
		if !ok {
			s.sendNumeric(c, errNoSuchChannel, []string{target}, "No such channel")
			return
		}
		if !ch.isMember(c.handle) {
			s.sendNumeric(c, errCannotSendToChan, []string{ch.displayName}, "Cannot send to channel")
			return
		}
		s.broadcastToChannelExcept(ch, c.handle,
			line(c.prefix(), "PRIVMSG", []string{ch.displayName}, text))
		return
	}

	recipient, ok := s.findClientByNick(target)
	if !ok {
		s.sendNumeric(c, errNoSuchNick, []string{target}, "No such nick/channel")
		return
	}
	s.send(recipient.handle, line(c.prefix(), "PRIVMSG", []string{recipient.displayNick}, text))
}

// handlePing implements PING, accepted regardless of registration state.
func handlePing(s *server, c *client, m message) {
	if len(m.Params) < 1 {
		s.sendNumeric(c, errNeedMoreParams, []string{m.Command}, "Not enough parameters")
		return
	}
	s.send(c.handle, line(s.config.Name, "PONG", []string{s.config.Name}, m.Params[0]))
}

// handlePong is ignored: the core has no keepalive logic that depends on
// clients answering its own pings (section 4.4).
func handlePong(s *server, c *client, m message) {}

// handleQuit implements QUIT, accepted regardless of registration state.
func handleQuit(s *server, c *client, m message) {
	reason := "Leaving"
	if len(m.Params) >= 1 && m.Params[0] != "" {
		reason = m.Params[0]
	}
	disconnect(s, c, reason)
}
