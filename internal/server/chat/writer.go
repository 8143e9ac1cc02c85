package chat

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gochat/internal/logging"
)

// Writer drains one session's outbound queue and serializes each message
// onto the connection, one line per message. It is the sole consumer of
// the queue.
type Writer struct {
	session  *Session
	registry *Registry
	logger   logging.Logger
}

func newWriter(session *Session, registry *Registry, logger logging.Logger) *Writer {
	return &Writer{
		session:  session,
		registry: registry,
		logger:   logger.With("module", "writer", "user", session.UserName),
	}
}

// run loops until the session is torn down or a write fails. A failed
// write removes the session from the registry, which closes the connection
// and so unblocks the paired reader as well.
func (w *Writer) run(ctx context.Context) {
	for {
		select {
		case msg := <-w.session.queue:
			if _, err := fmt.Fprintln(w.session.conn, msg); err != nil {
				w.logger.Warn(ctx, "write failed, ending session", "error", err.Error())
				w.registry.Remove(w.session)
				return
			}
		case <-w.session.done:
			return
		}
	}
}
