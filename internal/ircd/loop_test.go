package ircd

import (
	"bufio"
	"log"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// testServer starts a Server on an ephemeral port and returns a dialer
// along with a teardown func.
func testServer(t *testing.T, password string) (dial func() net.Conn, shutdown func()) {
	t.Helper()

	srv := New(Config{Port: 0, Password: password, Name: "ft_irc"}, log.New(nopWriter{}, "", 0))

	done := make(chan error, 1)
	go func() { done <- srv.Run() }()

	addr := srv.Addr()

	dial = func() net.Conn {
		conn, err := net.DialTimeout("tcp", addr.String(), time.Second)
		require.NoError(t, err)
		return conn
	}

	shutdown = func() {
		srv.Shutdown()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("server did not shut down")
		}
	}

	return dial, shutdown
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }

func mustReadLine(t *testing.T, r *bufio.Reader) string {
	t.Helper()
	line, err := r.ReadString('\n')
	require.NoError(t, err)
	return line
}

func register(t *testing.T, conn net.Conn, password, nick string) *bufio.Reader {
	t.Helper()
	require.NoError(t, conn.SetDeadline(time.Now().Add(2*time.Second)))
	_, err := conn.Write([]byte("PASS " + password + "\r\n"))
	require.NoError(t, err)
	_, err = conn.Write([]byte("NICK " + nick + "\r\n"))
	require.NoError(t, err)
	_, err = conn.Write([]byte("USER " + nick + " 0 * :" + nick + "\r\n"))
	require.NoError(t, err)
	return bufio.NewReader(conn)
}

func TestHappyRegistration(t *testing.T) {
	dial, shutdown := testServer(t, "secret")
	defer shutdown()

	conn := dial()
	defer func() { _ = conn.Close() }()
	r := register(t, conn, "secret", "alice")

	line := mustReadLine(t, r)
	require.Equal(t, ":ft_irc 001 alice :Welcome to the IRC Network alice!alice@127.0.0.1\r\n", line)

	require.Contains(t, mustReadLine(t, r), " 002 ")
	require.Contains(t, mustReadLine(t, r), " 003 ")
	require.Contains(t, mustReadLine(t, r), " 004 ")
}

func TestNicknameCollision(t *testing.T) {
	dial, shutdown := testServer(t, "secret")
	defer shutdown()

	connA := dial()
	defer func() { _ = connA.Close() }()
	_ = register(t, connA, "secret", "alice")

	connB := dial()
	defer func() { _ = connB.Close() }()
	require.NoError(t, connB.SetDeadline(time.Now().Add(2*time.Second)))
	_, err := connB.Write([]byte("PASS secret\r\nNICK alice\r\n"))
	require.NoError(t, err)

	r := bufio.NewReader(connB)
	line := mustReadLine(t, r)
	require.Equal(t, ":ft_irc 433 * alice :Nickname is already in use\r\n", line)
}

func TestChannelCreationAndJoin(t *testing.T) {
	dial, shutdown := testServer(t, "secret")
	defer shutdown()

	connA := dial()
	defer func() { _ = connA.Close() }()
	rA := register(t, connA, "secret", "alice")
	drainWelcome(t, rA)

	_, err := connA.Write([]byte("JOIN #room\r\n"))
	require.NoError(t, err)
	require.Equal(t, ":alice!alice@127.0.0.1 JOIN :#room\r\n", mustReadLine(t, rA))
	_ = mustReadLine(t, rA) // 331
	_ = mustReadLine(t, rA) // 353
	_ = mustReadLine(t, rA) // 366

	connB := dial()
	defer func() { _ = connB.Close() }()
	rB := register(t, connB, "secret", "bob")
	drainWelcome(t, rB)

	_, err = connB.Write([]byte("JOIN #room\r\n"))
	require.NoError(t, err)

	require.Equal(t, ":bob!bob@127.0.0.1 JOIN :#room\r\n", mustReadLine(t, rB))
	require.Equal(t, ":ft_irc 331 bob #room :No topic is set\r\n", mustReadLine(t, rB))
	require.Equal(t, ":ft_irc 353 bob = #room :@alice bob\r\n", mustReadLine(t, rB))
	require.Equal(t, ":ft_irc 366 bob #room :End of /NAMES list\r\n", mustReadLine(t, rB))

	require.Equal(t, ":bob!bob@127.0.0.1 JOIN :#room\r\n", mustReadLine(t, rA))
}

func TestInviteOnlyEnforcement(t *testing.T) {
	dial, shutdown := testServer(t, "secret")
	defer shutdown()

	connA := dial()
	defer func() { _ = connA.Close() }()
	rA := register(t, connA, "secret", "alice")
	drainWelcome(t, rA)
	joinAndDrain(t, connA, rA, "#room")

	connC := dial()
	defer func() { _ = connC.Close() }()
	rC := register(t, connC, "secret", "carol")
	drainWelcome(t, rC)

	_, err := connA.Write([]byte("MODE #room +i\r\n"))
	require.NoError(t, err)
	_ = mustReadLine(t, rA) // MODE broadcast to alice

	_, err = connC.Write([]byte("JOIN #room\r\n"))
	require.NoError(t, err)
	require.Equal(t, ":ft_irc 473 carol #room :Cannot join channel (+i)\r\n", mustReadLine(t, rC))

	_, err = connA.Write([]byte("INVITE carol #room\r\n"))
	require.NoError(t, err)
	_ = mustReadLine(t, rA) // 341 RPL_INVITING
	require.Equal(t, ":alice!alice@127.0.0.1 INVITE carol :#room\r\n", mustReadLine(t, rC))

	_, err = connC.Write([]byte("JOIN #room\r\n"))
	require.NoError(t, err)
	require.Equal(t, ":carol!carol@127.0.0.1 JOIN :#room\r\n", mustReadLine(t, rC))
}

func TestBroadcastExclusion(t *testing.T) {
	dial, shutdown := testServer(t, "secret")
	defer shutdown()

	connA := dial()
	defer func() { _ = connA.Close() }()
	rA := register(t, connA, "secret", "alice")
	drainWelcome(t, rA)
	joinAndDrain(t, connA, rA, "#room")

	connB := dial()
	defer func() { _ = connB.Close() }()
	rB := register(t, connB, "secret", "bob")
	drainWelcome(t, rB)
	joinAndDrain(t, connB, rB, "#room")
	_ = mustReadLine(t, rA) // bob's JOIN broadcast seen by alice

	_, err := connA.Write([]byte("PRIVMSG #room :hi\r\n"))
	require.NoError(t, err)
	require.Equal(t, ":alice!alice@127.0.0.1 PRIVMSG #room :hi\r\n", mustReadLine(t, rB))

	require.NoError(t, connA.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, err = rA.ReadString('\n')
	require.Error(t, err, "sender must not receive its own channel broadcast")
}

func TestDisconnectCleanup(t *testing.T) {
	dial, shutdown := testServer(t, "secret")
	defer shutdown()

	connA := dial()
	rA := register(t, connA, "secret", "alice")
	drainWelcome(t, rA)
	joinAndDrain(t, connA, rA, "#room")

	connB := dial()
	defer func() { _ = connB.Close() }()
	rB := register(t, connB, "secret", "bob")
	drainWelcome(t, rB)
	joinAndDrain(t, connB, rB, "#room")
	_ = mustReadLine(t, rA) // bob's JOIN

	_, err := connA.Write([]byte("QUIT :bye\r\n"))
	require.NoError(t, err)
	require.Equal(t, ":alice!alice@127.0.0.1 QUIT :bye\r\n", mustReadLine(t, rB))

	_ = connA.Close()
}

func drainWelcome(t *testing.T, r *bufio.Reader) {
	t.Helper()
	for i := 0; i < 4; i++ {
		_ = mustReadLine(t, r)
	}
}

func joinAndDrain(t *testing.T, conn net.Conn, r *bufio.Reader, ch string) {
	t.Helper()
	_, err := conn.Write([]byte("JOIN " + ch + "\r\n"))
	require.NoError(t, err)
	_ = mustReadLine(t, r) // JOIN
	_ = mustReadLine(t, r) // 331/332
	_ = mustReadLine(t, r) // 353
	_ = mustReadLine(t, r) // 366
}
