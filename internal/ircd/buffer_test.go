package ircd

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRecvBufferSplitCRLF(t *testing.T) {
	var b recvBuffer

	b.append([]byte("X\r"))
	require.Empty(t, b.extract())

	b.append([]byte("\nY"))
	msgs := b.extract()
	require.Equal(t, []string{"X\r\n"}, msgs)
	require.Equal(t, []byte("Y"), b.peek())
}

func TestRecvBufferMultipleMessagesOneAppend(t *testing.T) {
	var b recvBuffer

	b.append([]byte("NICK alice\r\nUSER alice 0 * :Alice\r\n"))
	msgs := b.extract()
	require.Equal(t, []string{
		"NICK alice\r\n",
		"USER alice 0 * :Alice\r\n",
	}, msgs)
	require.Empty(t, b.peek())
}

func TestRecvBufferNoCompleteMessage(t *testing.T) {
	var b recvBuffer

	b.append([]byte("PING abc"))
	require.Empty(t, b.extract())
	require.Equal(t, []byte("PING abc"), b.peek())
}

func TestRecvBufferClear(t *testing.T) {
	var b recvBuffer
	b.append([]byte("abc"))
	b.clear()
	require.Empty(t, b.peek())
}

// TestRecvBufferRoundTrip is the buffer round-trip property from the
// testable-properties list: feeding a string of CRLF-terminated messages
// plus an incomplete tail through append/extract one byte at a time must
// reproduce exactly the complete messages present, leaving the incomplete
// tail buffered.
func TestRecvBufferRoundTrip(t *testing.T) {
	s := "JOIN #room\r\nPRIVMSG #room :hi\r\nPART #roo"

	var b recvBuffer
	var got string
	for i := 0; i < len(s); i++ {
		b.append([]byte{s[i]})
		for _, m := range b.extract() {
			got += m
		}
	}

	require.Equal(t, "JOIN #room\r\nPRIVMSG #room :hi\r\n", got)
	require.Equal(t, []byte("PART #roo"), b.peek())
}
