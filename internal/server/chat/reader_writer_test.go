package chat

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testClient is the client end of a piped session: it drives the protocol
// from the peer's point of view.
type testClient struct {
	t    *testing.T
	conn net.Conn
	buf  *bufio.Reader
}

func newTestClient(t *testing.T, conn net.Conn) *testClient {
	return &testClient{t: t, conn: conn, buf: bufio.NewReader(conn)}
}

func (c *testClient) send(line string) {
	c.t.Helper()
	_ = c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	_, err := fmt.Fprintln(c.conn, line)
	require.NoError(c.t, err)
}

func (c *testClient) readLine() string {
	c.t.Helper()
	_ = c.conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	line, err := c.buf.ReadString('\n')
	require.NoError(c.t, err)
	return strings.TrimSpace(line)
}

// expect reads lines until one contains substr and returns it.
func (c *testClient) expect(substr string) string {
	c.t.Helper()
	for {
		line := c.readLine()
		if strings.Contains(line, substr) {
			return line
		}
	}
}

// startSession registers userName and starts its reader/writer pair, as
// promotion would, returning the client end of the connection.
func startSession(t *testing.T, r *Registry, userName string) *testClient {
	t.Helper()

	server, client := net.Pipe()
	t.Cleanup(func() {
		server.Close()
		client.Close()
	})

	s, err := r.Add(userName, server, 8)
	require.NoError(t, err)

	logger := discardLogger()
	w := newWriter(s, r, logger)
	go w.run(context.Background())

	rd := newReader(s, bufio.NewReader(server), r, logger, r.metrics)
	go rd.run(context.Background())

	return newTestClient(t, client)
}

func TestRouting_DeliversToRecipient(t *testing.T) {
	reg := NewRegistry(newTestMetrics())
	alice := startSession(t, reg, "alice")
	bob := startSession(t, reg, "bob")

	alice.send("bob hello")
	assert.Equal(t, "alice: hello", bob.readLine())
}

func TestRouting_FIFOPerRecipient(t *testing.T) {
	reg := NewRegistry(newTestMetrics())
	alice := startSession(t, reg, "alice")
	bob := startSession(t, reg, "bob")

	alice.send("bob one")
	alice.send("bob two")
	alice.send("bob three")

	assert.Equal(t, "alice: one", bob.readLine())
	assert.Equal(t, "alice: two", bob.readLine())
	assert.Equal(t, "alice: three", bob.readLine())
}

func TestRouting_MessageToSelf(t *testing.T) {
	reg := NewRegistry(newTestMetrics())
	alice := startSession(t, reg, "alice")

	alice.send("alice hi")
	assert.Equal(t, "alice: hi", alice.readLine())
}

func TestRouting_OfflineRecipient(t *testing.T) {
	reg := NewRegistry(newTestMetrics())
	alice := startSession(t, reg, "alice")

	alice.send("carol hi")
	assert.Equal(t, "carol is not online.", alice.readLine())
}

func TestRouting_MissingBody(t *testing.T) {
	reg := NewRegistry(newTestMetrics())
	alice := startSession(t, reg, "alice")

	alice.send("bob")
	assert.Equal(t, "Usage: <recipient> <message>", alice.readLine())
}

func TestRouting_NotSeenByThirdParty(t *testing.T) {
	reg := NewRegistry(newTestMetrics())
	alice := startSession(t, reg, "alice")
	bob := startSession(t, reg, "bob")
	carol := startSession(t, reg, "carol")

	alice.send("bob secret")
	assert.Equal(t, "alice: secret", bob.readLine())

	// carol must see nothing
	_ = carol.conn.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	_, err := carol.buf.ReadString('\n')
	require.Error(t, err, "third party must not observe the message")
}

func TestQuit_RemovesSession(t *testing.T) {
	reg := NewRegistry(newTestMetrics())
	alice := startSession(t, reg, "alice")

	alice.send("quit")

	assert.Eventually(t, func() bool { return !reg.Contains("alice") },
		2*time.Second, 10*time.Millisecond, "quit must remove the session")
}

func TestDisconnect_DoesNotAffectOtherSessions(t *testing.T) {
	reg := NewRegistry(newTestMetrics())
	alice := startSession(t, reg, "alice")
	bob := startSession(t, reg, "bob")
	carol := startSession(t, reg, "carol")

	require.NoError(t, alice.conn.Close())
	assert.Eventually(t, func() bool { return !reg.Contains("alice") },
		2*time.Second, 10*time.Millisecond, "disconnect must remove the session")

	bob.send("carol still here?")
	assert.Equal(t, "bob: still here?", carol.readLine())
}

func TestSendToDisconnectedUser_Notifies(t *testing.T) {
	reg := NewRegistry(newTestMetrics())
	alice := startSession(t, reg, "alice")
	bob := startSession(t, reg, "bob")

	bob.send("quit")
	require.Eventually(t, func() bool { return !reg.Contains("bob") },
		2*time.Second, 10*time.Millisecond)

	alice.send("bob hello?")
	assert.Equal(t, "bob is not online.", alice.readLine())
}
