package ircd

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNumericReplyWelcome(t *testing.T) {
	got := numericReply("ft_irc", rplWelcome, "alice", nil,
		"Welcome to the IRC Network alice!alice@unknown")
	require.Equal(t,
		":ft_irc 001 alice :Welcome to the IRC Network alice!alice@unknown\r\n",
		got)
}

func TestLineCommandRelay(t *testing.T) {
	got := line(nickUhost("alice", "alice", "unknown"), "JOIN", nil, "#room")
	require.Equal(t, ":alice!alice@unknown JOIN :#room\r\n", got)
}

func TestEncodeBareCommand(t *testing.T) {
	got := encode("", "PONG", []string{"ft_irc"})
	require.Equal(t, "PONG ft_irc\r\n", got)
}

func TestNumericReplyMultipleParams(t *testing.T) {
	got := numericReply("ft_irc", rplMyInfo, "nick", []string{"ft_irc", "1.0"}, "ioC ns")
	require.Equal(t, ":ft_irc 004 nick ft_irc 1.0 :ioC ns\r\n", got)
}

func TestNickUhost(t *testing.T) {
	require.Equal(t, "alice!alice@unknown", nickUhost("alice", "alice", "unknown"))
}
