package ircd

import (
	"strings"

	"github.com/pkg/errors"
)

// maxParams bounds the total number of parameters the parser keeps, the
// trailing parameter included; anything past the limit is dropped. The spec
// requires accepting at least 15; we allow a generous margin above that for
// tolerant clients.
const maxParams = 20

// errMalformedMessage is the parse failure the spec calls "MalformedMessage".
// It is protocol tier: callers discard the line silently rather than
// surfacing it to the client (spec.md section 7).
var errMalformedMessage = errors.New("malformed message")

// message is a parsed command record: optional prefix, uppercase command
// token, and parameters in order, the last of which may have come from a
// colon-introduced trailing parameter.
type message struct {
	Prefix  string
	Command string
	// RawCommand is the command token exactly as received, before the
	// uppercase fold. 421 replies echo this, not Command.
	RawCommand string
	Params     []string
	Raw        string
}

// parseMessage decomposes one line into a message. The line may end in
// "\r\n", a bare "\n", or neither; at most one such terminator is stripped,
// and the stripped terminator never appears in the output params.
func parseMessage(line string) (message, error) {
	raw := line

	s := strings.TrimSuffix(line, "\r\n")
	if s == line {
		s = strings.TrimSuffix(line, "\n")
	}

	// Skip leading spaces.
	i := 0
	for i < len(s) && s[i] == ' ' {
		i++
	}
	s = s[i:]

	if len(s) == 0 {
		return message{}, errMalformedMessage
	}

	m := message{Raw: raw}

	if s[0] == ':' {
		sp := strings.IndexByte(s, ' ')
		if sp < 0 {
			return message{}, errMalformedMessage
		}
		m.Prefix = s[1:sp]
		s = s[sp+1:]
	}

	// Skip spaces before the command token.
	i = 0
	for i < len(s) && s[i] == ' ' {
		i++
	}
	s = s[i:]

	sp := strings.IndexByte(s, ' ')
	var cmd string
	if sp < 0 {
		cmd = s
		s = ""
	} else {
		cmd = s[:sp]
		s = s[sp+1:]
	}
	if cmd == "" {
		return message{}, errMalformedMessage
	}
	m.RawCommand = cmd
	m.Command = asciiUpper(cmd)

	for len(m.Params) < maxParams {
		// Skip spaces between parameters.
		i = 0
		for i < len(s) && s[i] == ' ' {
			i++
		}
		s = s[i:]

		if len(s) == 0 {
			break
		}

		if s[0] == ':' {
			m.Params = append(m.Params, s[1:])
			s = ""
			break
		}

		sp := strings.IndexByte(s, ' ')
		if sp < 0 {
			m.Params = append(m.Params, s)
			s = ""
			break
		}
		m.Params = append(m.Params, s[:sp])
		s = s[sp+1:]
	}

	return m, nil
}
