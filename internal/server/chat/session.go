// Package chat implements the server-side session and message-routing
// subsystem: the per-connection authentication loop, the registry of
// logged-in users and their outbound queues, and the paired reader/writer
// goroutines that move messages between a client's socket and its queue.
package chat

import (
	"net"
	"sync"
	"time"

	"github.com/dmitrijs2005/gochat/internal/common"
)

// Options carries the tunables the chat components depend on. The values
// come from the server config; this package never reads configuration
// itself.
type Options struct {
	MinUsernameLength int
	MinPasswordLength int
	QueueSize         int
	SecretKey         []byte
	TokenValidity     time.Duration
}

// Session is the live state for one authenticated user: the username, the
// connection, and the outbound queue its writer drains. A session is
// created at promotion and destroyed when its reader exits or a write
// fails.
type Session struct {
	UserName string

	conn  net.Conn
	queue chan string
	done  chan struct{}
	once  sync.Once
}

func newSession(userName string, conn net.Conn, queueSize int) *Session {
	return &Session{
		UserName: userName,
		conn:     conn,
		queue:    make(chan string, queueSize),
		done:     make(chan struct{}),
	}
}

// Enqueue places msg on the session's outbound queue in FIFO order. It
// never blocks: a finished session yields common.ErrSessionClosed and a
// full queue yields common.ErrQueueFull, so a sender's reader is never
// stalled by a slow recipient.
func (s *Session) Enqueue(msg string) error {
	select {
	case <-s.done:
		return common.ErrSessionClosed
	default:
	}

	select {
	case s.queue <- msg:
		return nil
	case <-s.done:
		return common.ErrSessionClosed
	default:
		return common.ErrQueueFull
	}
}

// close signals the writer and any enqueuing readers that the session is
// over and closes the connection. Safe to call more than once.
func (s *Session) close() {
	s.once.Do(func() {
		close(s.done)
		_ = s.conn.Close()
	})
}
