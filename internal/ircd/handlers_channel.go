package ircd

import (
	"strconv"
	"strings"
	"time"
)

// handleJoin implements JOIN for a comma-separated list of channels, each
// with its own optional key, per section 4.4.
func handleJoin(s *server, c *client, m message) {
	if !requireRegistered(s, c) {
		return
	}
	if len(m.Params) < 1 {
		s.sendNumeric(c, errNeedMoreParams, []string{m.Command}, "Not enough parameters")
		return
	}

	names := strings.Split(m.Params[0], ",")
	var keys []string
	if len(m.Params) >= 2 {
		keys = strings.Split(m.Params[1], ",")
	}

	for i, name := range names {
		key := ""
		if i < len(keys) {
			key = keys[i]
		}
		joinOne(s, c, name, key)
	}
}

func joinOne(s *server, c *client, chName, key string) {
	if !isValidChannel(chName) {
		s.sendNumeric(c, errBadChanMask, []string{chName}, "Bad Channel Mask")
		return
	}

	ch, exists := s.findChannel(chName)
	creating := !exists
	if creating {
		ch = s.createChannel(chName)
	}

	if ch.isMember(c.handle) {
		return
	}

	if !creating {
		if ch.key != "" && key != ch.key {
			s.sendNumeric(c, errBadChannelKey, []string{ch.displayName}, "Cannot join channel (+k)")
			return
		}
		if ch.inviteOnly && !ch.isInvited(c.nick) {
			s.sendNumeric(c, errInviteOnlyChan, []string{ch.displayName}, "Cannot join channel (+i)")
			return
		}
		if ch.limit > 0 && ch.memberCount() >= ch.limit {
			s.sendNumeric(c, errChannelIsFull, []string{ch.displayName}, "Cannot join channel (+l)")
			return
		}
	}

	ch.addMember(c.handle, creating)
	c.channels[ch.name] = struct{}{}
	delete(ch.invited, c.nick)

	s.broadcastToChannel(ch, line(c.prefix(), "JOIN", nil, ch.displayName))

	if ch.topic == "" {
		s.sendNumeric(c, rplNoTopic, []string{ch.displayName}, "No topic is set")
	} else {
		s.sendNumeric(c, rplTopic, []string{ch.displayName}, ch.topic)
	}

	s.sendNumeric(c, rplNameReply, []string{"=", ch.displayName}, namesList(s, ch))
	s.sendNumeric(c, rplEndOfNames, []string{ch.displayName}, "End of /NAMES list")
}

// namesList renders the space-separated NAMES list for ch, prefixing
// operators with '@', in join order.
func namesList(s *server, ch *channel) string {
	var names []string
	for _, handle := range ch.order {
		member, ok := s.findClientByHandle(handle)
		if !ok {
			continue
		}
		nick := member.displayNick
		if ch.isOperator(handle) {
			nick = "@" + nick
		}
		names = append(names, nick)
	}
	return strings.Join(names, " ")
}

// handlePart implements PART for a comma-separated list of channels,
// sharing one reason across all of them.
func handlePart(s *server, c *client, m message) {
	if !requireRegistered(s, c) {
		return
	}
	if len(m.Params) < 1 {
		s.sendNumeric(c, errNeedMoreParams, []string{m.Command}, "Not enough parameters")
		return
	}

	reason := "Leaving"
	if len(m.Params) >= 2 {
		reason = m.Params[len(m.Params)-1]
	}

	for _, name := range strings.Split(m.Params[0], ",") {
		partOne(s, c, name, reason)
	}
}

func partOne(s *server, c *client, chName, reason string) {
	ch, ok := s.findChannel(chName)
	if !ok {
		s.sendNumeric(c, errNoSuchChannel, []string{chName}, "No such channel")
		return
	}
	if !ch.isMember(c.handle) {
		s.sendNumeric(c, errNotOnChannel, []string{ch.displayName}, "You're not on that channel")
		return
	}

	s.broadcastToChannel(ch, line(c.prefix(), "PART", []string{ch.displayName}, reason))

	ch.removeMember(c.handle)
	delete(c.channels, ch.name)
	if ch.memberCount() == 0 {
		s.removeChannel(ch)
	}
}

// handleTopic implements TOPIC: reading the current topic with no second
// argument, setting it (subject to the topic-protected mode) otherwise.
func handleTopic(s *server, c *client, m message) {
	if !requireRegistered(s, c) {
		return
	}
	if len(m.Params) < 1 {
		s.sendNumeric(c, errNeedMoreParams, []string{m.Command}, "Not enough parameters")
		return
	}

	ch, ok := s.findChannel(m.Params[0])
	if !ok {
		s.sendNumeric(c, errNoSuchChannel, []string{m.Params[0]}, "No such channel")
		return
	}
	if !ch.isMember(c.handle) {
		s.sendNumeric(c, errNotOnChannel, []string{ch.displayName}, "You're not on that channel")
		return
	}

	if len(m.Params) < 2 {
		if ch.topic == "" {
			s.sendNumeric(c, rplNoTopic, []string{ch.displayName}, "No topic is set")
		} else {
			s.sendNumeric(c, rplTopic, []string{ch.displayName}, ch.topic)
		}
		return
	}

	if ch.topicProtected && !ch.isOperator(c.handle) {
		s.sendNumeric(c, errChanOPrivsNeeded, []string{ch.displayName}, "You're not channel operator")
		return
	}

	ch.topic = m.Params[1]
	ch.topicBy = c.displayNick
	ch.topicSetAt = time.Now()

	s.broadcastToChannel(ch, line(c.prefix(), "TOPIC", []string{ch.displayName}, ch.topic))
}

// handleMode implements channel MODE: reporting the current mode string
// with no modestring, and otherwise setting exactly one mode letter,
// gated on channel-operator status (section 4.4).
func handleMode(s *server, c *client, m message) {
	if !requireRegistered(s, c) {
		return
	}
	if len(m.Params) < 1 {
		s.sendNumeric(c, errNeedMoreParams, []string{m.Command}, "Not enough parameters")
		return
	}

	ch, ok := s.findChannel(m.Params[0])
	if !ok {
		s.sendNumeric(c, errNoSuchChannel, []string{m.Params[0]}, "No such channel")
		return
	}
	if !ch.isMember(c.handle) {
		s.sendNumeric(c, errNotOnChannel, []string{ch.displayName}, "You're not on that channel")
		return
	}

	if len(m.Params) < 2 {
		s.sendNumericPlain(c, rplChannelModeIs, append([]string{ch.displayName}, ch.modeParts()...))
		return
	}

	if !ch.isOperator(c.handle) {
		s.sendNumeric(c, errChanOPrivsNeeded, []string{ch.displayName}, "You're not channel operator")
		return
	}

	modestring := m.Params[1]
	if len(modestring) != 2 || (modestring[0] != '+' && modestring[0] != '-') {
		s.sendNumeric(c, errUnknownMode, []string{modestring}, "is unknown mode char to me")
		return
	}
	set := modestring[0] == '+'
	letter := modestring[1]

	var arg string
	broadcastArgs := []string{ch.displayName, modestring}

	switch letter {
	case 'i':
		ch.inviteOnly = set
	case 't':
		ch.topicProtected = set
	case 'k':
		if set {
			if len(m.Params) < 3 {
				s.sendNumeric(c, errNeedMoreParams, []string{m.Command}, "Not enough parameters")
				return
			}
			arg = m.Params[2]
			ch.key = arg
			broadcastArgs = append(broadcastArgs, arg)
		} else {
			ch.key = ""
		}
	case 'o':
		if len(m.Params) < 3 {
			s.sendNumeric(c, errNeedMoreParams, []string{m.Command}, "Not enough parameters")
			return
		}
		targetNick := m.Params[2]
		target, ok := s.findClientByNick(targetNick)
		if !ok {
			s.sendNumeric(c, errNoSuchNick, []string{targetNick}, "No such nick/channel")
			return
		}
		if !ch.isMember(target.handle) {
			s.sendNumeric(c, errUserNotInChannel, []string{targetNick, ch.displayName}, "They aren't on that channel")
			return
		}
		if set {
			ch.operators[target.handle] = struct{}{}
		} else {
			delete(ch.operators, target.handle)
		}
		broadcastArgs = append(broadcastArgs, target.displayNick)
	case 'l':
		if set {
			if len(m.Params) < 3 {
				s.sendNumeric(c, errNeedMoreParams, []string{m.Command}, "Not enough parameters")
				return
			}
			n, err := strconv.Atoi(m.Params[2])
			if err != nil || n <= 0 {
				s.sendNumeric(c, errNeedMoreParams, []string{m.Command}, "Not enough parameters")
				return
			}
			ch.limit = n
			broadcastArgs = append(broadcastArgs, m.Params[2])
		} else {
			ch.limit = 0
		}
	default:
		s.sendNumeric(c, errUnknownMode, []string{string(letter)}, "is unknown mode char to me")
		return
	}

	s.broadcastToChannel(ch, encode(c.prefix(), "MODE", broadcastArgs))
}

// handleInvite implements INVITE: only operators may invite into an
// invite-only channel, and the target must not already be a member.
func handleInvite(s *server, c *client, m message) {
	if !requireRegistered(s, c) {
		return
	}
	if len(m.Params) < 2 {
		s.sendNumeric(c, errNeedMoreParams, []string{m.Command}, "Not enough parameters")
		return
	}

	targetNick := m.Params[0]
	chName := m.Params[1]

	target, ok := s.findClientByNick(targetNick)
	if !ok {
		s.sendNumeric(c, errNoSuchNick, []string{targetNick}, "No such nick/channel")
		return
	}

	ch, ok := s.findChannel(chName)
	if !ok {
		s.sendNumeric(c, errNoSuchChannel, []string{chName}, "No such channel")
		return
	}

	if !ch.isMember(c.handle) {
		s.sendNumeric(c, errNotOnChannel, []string{ch.displayName}, "You're not on that channel")
		return
	}
	if ch.isMember(target.handle) {
		s.sendNumeric(c, errUserOnChannel, []string{targetNick, ch.displayName}, "is already on channel")
		return
	}
	if ch.inviteOnly && !ch.isOperator(c.handle) {
		s.sendNumeric(c, errChanOPrivsNeeded, []string{ch.displayName}, "You're not channel operator")
		return
	}

	ch.invited[foldNick(targetNick)] = struct{}{}

	s.sendNumericPlain(c, rplInviting, []string{target.displayNick, ch.displayName})
	s.send(target.handle, line(c.prefix(), "INVITE", []string{target.displayNick}, ch.displayName))
}

// handleKick implements KICK: only operators may kick, and the target must
// be a member of the channel.
func handleKick(s *server, c *client, m message) {
	if !requireRegistered(s, c) {
		return
	}
	if len(m.Params) < 2 {
		s.sendNumeric(c, errNeedMoreParams, []string{m.Command}, "Not enough parameters")
		return
	}

	chName := m.Params[0]
	targetNick := m.Params[1]

	ch, ok := s.findChannel(chName)
	if !ok {
		s.sendNumeric(c, errNoSuchChannel, []string{chName}, "No such channel")
		return
	}
	if !ch.isMember(c.handle) {
		s.sendNumeric(c, errNotOnChannel, []string{ch.displayName}, "You're not on that channel")
		return
	}
	if !ch.isOperator(c.handle) {
		s.sendNumeric(c, errChanOPrivsNeeded, []string{ch.displayName}, "You're not channel operator")
		return
	}

	target, ok := s.findClientByNick(targetNick)
	if !ok {
		s.sendNumeric(c, errNoSuchNick, []string{targetNick}, "No such nick/channel")
		return
	}
	if !ch.isMember(target.handle) {
		s.sendNumeric(c, errUserNotInChannel, []string{targetNick, ch.displayName}, "They aren't on that channel")
		return
	}

	reason := c.displayNick
	if len(m.Params) >= 3 {
		reason = m.Params[2]
	}

	s.broadcastToChannel(ch, line(c.prefix(), "KICK", []string{ch.displayName, target.displayNick}, reason))

	ch.removeMember(target.handle)
	delete(target.channels, ch.name)
	if ch.memberCount() == 0 {
		s.removeChannel(ch)
	}
}
