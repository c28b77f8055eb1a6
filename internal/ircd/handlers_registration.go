package ircd

// handlePass implements the PASS step of registration: state 0, accepting
// or counting a wrong attempt against the 3-try cap; any later state
// replies 462 since the password step only makes sense before a client has
// started registering (section 4.3).
func handlePass(s *server, c *client, m message) {
	if c.step != stepConnected {
		s.sendNumeric(c, errAlreadyRegistred, nil, "You may not reregister")
		return
	}

	if len(m.Params) < 1 {
		s.sendNumeric(c, errNeedMoreParams, []string{m.Command}, "Not enough parameters")
		return
	}

	if m.Params[0] != s.config.Password {
		c.passwordAttempts++
		s.sendNumeric(c, errPasswdMismatch, nil, "Password incorrect")
		if c.passwordAttempts >= maxPasswordAttempts {
			disconnect(s, c, "Too many password attempts")
		}
		return
	}

	c.step = stepHasPass
}

// handleNick implements NICK across every registration state (section
// 4.3): before a password it is rejected outright, during registration it
// advances the client to HasNick, and once registered it is a live
// nickname change broadcast to the client and everyone who shares a
// channel with them.
func handleNick(s *server, c *client, m message) {
	if c.step == stepConnected {
		s.sendNumeric(c, errNotRegistered, nil, "You have not registered")
		return
	}

	if len(m.Params) < 1 || m.Params[0] == "" {
		s.sendNumeric(c, errNoNicknameGiven, nil, "No nickname given")
		return
	}

	newDisplay := m.Params[0]
	newFolded := foldNick(newDisplay)

	if !isValidNick(newDisplay) {
		s.sendNumeric(c, errErroneousNick, []string{newDisplay}, "Erroneous nickname")
		return
	}

	if existing, ok := s.findClientByNick(newDisplay); ok && existing.handle != c.handle {
		s.sendNumeric(c, errNicknameInUse, []string{newDisplay}, "Nickname is already in use")
		return
	}

	wasRegistered := c.step == stepRegistered
	oldPrefix := c.prefix()

	s.unregisterNick(c)
	c.nick = newFolded
	c.displayNick = newDisplay
	s.registerNick(c)

	if c.step < stepHasNick {
		c.step = stepHasNick
	}

	if wasRegistered {
		data := line(oldPrefix, "NICK", nil, newDisplay)
		peers := s.peersOf(c)
		peers[c.handle] = struct{}{}
		for h := range peers {
			s.send(h, data)
		}
	}
}

// handleUser implements USER: only meaningful at HasNick, where it
// completes registration and sends the welcome burst.
func handleUser(s *server, c *client, m message) {
	if c.step == stepRegistered {
		s.sendNumeric(c, errAlreadyRegistred, nil, "You may not reregister")
		return
	}

	if c.step != stepHasNick {
		s.sendNumeric(c, errNotRegistered, nil, "You have not registered")
		return
	}

	if len(m.Params) < 1 {
		s.sendNumeric(c, errNeedMoreParams, []string{m.Command}, "Not enough parameters")
		return
	}

	username := m.Params[0]

	realname := username
	if len(m.Params) >= 4 {
		realname = m.Params[3]
	}
	// realname is the fourth parameter when there is one (for the usual
	// "USER alice 0 * :Alice" form that is the trailing parameter),
	// otherwise the username. The parsed message does not mark which
	// parameter was colon-introduced, so a trailing parameter in any other
	// position, as in "USER alice 0 :Alice", is not used as the realname.

	c.username = username
	c.realname = realname
	c.step = stepRegistered

	sendWelcomeBurst(s, c)
}

// sendWelcomeBurst emits the 001..004 numerics new clients receive once
// registration completes.
func sendWelcomeBurst(s *server, c *client) {
	s.sendNumeric(c, rplWelcome, nil,
		"Welcome to the IRC Network "+c.prefix())
	s.sendNumeric(c, rplYourHost, nil,
		"Your host is "+s.config.Name+", running version ft_irc-1.0")
	s.sendNumeric(c, rplCreated, nil,
		"This server was created for this session")
	s.sendNumericPlain(c, rplMyInfo, []string{s.config.Name, "1.0", "o", "itkol"})
}
