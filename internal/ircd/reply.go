package ircd

import "strings"

// Numeric reply codes used by this server. Named the RFC 2812 way so
// handler code reads like the protocol text it implements.
const (
	rplWelcome          = "001"
	rplYourHost         = "002"
	rplCreated          = "003"
	rplMyInfo           = "004"
	rplChannelModeIs    = "324"
	rplNoTopic          = "331"
	rplTopic            = "332"
	rplInviting         = "341"
	rplNameReply        = "353"
	rplEndOfNames       = "366"
	errNoSuchNick       = "401"
	errNoSuchChannel    = "403"
	errCannotSendToChan = "404"
	errUnknownCommand   = "421"
	errNoNicknameGiven  = "431"
	errErroneousNick    = "432"
	errNicknameInUse    = "433"
	errUserNotInChannel = "441"
	errNotOnChannel     = "442"
	errUserOnChannel    = "443"
	errNotRegistered    = "451"
	errNeedMoreParams   = "461"
	errAlreadyRegistred = "462"
	errPasswdMismatch   = "464"
	errChannelIsFull    = "471"
	errUnknownMode      = "472"
	errInviteOnlyChan   = "473"
	errBadChannelKey    = "475"
	errBadChanMask      = "476"
	errChanOPrivsNeeded = "482"
)

// nickUhost builds the "nick!user@host" prefix used to identify the origin
// of a relayed message.
func nickUhost(nick, user, host string) string {
	return nick + "!" + user + "@" + host
}

// line joins an optional prefix, a command, and parameters into one
// CRLF-terminated line. params holds every parameter but the last; the last
// is always sent as the trailing, colon-introduced parameter, even when it
// is empty. Lines with no trailing parameter at all are built with encode.
func line(pfx, command string, params []string, trailing string) string {
	var b strings.Builder

	if pfx != "" {
		b.WriteByte(':')
		b.WriteString(pfx)
		b.WriteByte(' ')
	}
	b.WriteString(command)

	for _, p := range params {
		b.WriteByte(' ')
		b.WriteString(p)
	}

	b.WriteString(" :")
	b.WriteString(trailing)
	b.WriteString("\r\n")
	return b.String()
}

// encode joins an optional prefix, a command, and parameters into one
// CRLF-terminated line with no trailing parameter at all.
func encode(pfx, command string, params []string) string {
	var b strings.Builder

	if pfx != "" {
		b.WriteByte(':')
		b.WriteString(pfx)
		b.WriteByte(' ')
	}
	b.WriteString(command)

	for _, p := range params {
		b.WriteByte(' ')
		b.WriteString(p)
	}

	b.WriteString("\r\n")
	return b.String()
}

// numericReply formats a server numeric reply with a trailing parameter.
// target is the client's display nickname, or "*" if it hasn't registered
// one yet.
func numericReply(server, code, target string, params []string, trailing string) string {
	all := append([]string{target}, params...)
	return line(server, code, all, trailing)
}

// numericReplyPlain formats a server numeric reply with no trailing
// parameter, for numerics like RPL_MYINFO whose fields are all plain
// positional parameters.
func numericReplyPlain(server, code, target string, params []string) string {
	all := append([]string{target}, params...)
	return encode(server, code, all)
}
