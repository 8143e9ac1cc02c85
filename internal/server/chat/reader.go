package chat

import (
	"bufio"
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/gochat/internal/common"
	"github.com/dmitrijs2005/gochat/internal/logging"
	"github.com/dmitrijs2005/gochat/internal/server/metrics"
)

type readerState int

const (
	stateActive readerState = iota
	stateTerminating
	stateTerminated
)

// Reader parses one session's incoming lines into routing commands of the
// form "<destination> <message>", resolves the destination through the
// registry and enqueues onto the destination's queue. Routing failures are
// reported back on the sender's own queue, never dropped silently.
//
// State transitions are driven only by read outcomes: a successful read
// keeps the reader Active; EOF, an I/O error or the quit command move it to
// Terminating and then Terminated. The terminal state is never re-entered.
type Reader struct {
	session  *Session
	buf      *bufio.Reader
	registry *Registry
	logger   logging.Logger
	metrics  *metrics.Metrics
	state    readerState
}

func newReader(session *Session, buf *bufio.Reader, registry *Registry, logger logging.Logger, m *metrics.Metrics) *Reader {
	return &Reader{
		session:  session,
		buf:      buf,
		registry: registry,
		logger:   logger.With("module", "reader", "user", session.UserName),
		metrics:  m,
	}
}

func (r *Reader) run(ctx context.Context) {
	for r.state == stateActive {
		line, err := r.buf.ReadString('\n')
		if err != nil {
			r.state = stateTerminating
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.EqualFold(line, "quit") {
			r.state = stateTerminating
			break
		}

		r.route(line)
	}

	r.terminate(ctx)
}

func (r *Reader) route(line string) {
	dest, body, _ := strings.Cut(line, " ")
	body = strings.TrimSpace(body)
	if body == "" {
		r.notify("Usage: <recipient> <message>")
		return
	}

	target, ok := r.registry.Lookup(dest)
	if !ok {
		r.metrics.RoutingFailures.Inc()
		r.notify(dest + " is not online.")
		return
	}

	err := target.Enqueue(r.session.UserName + ": " + body)
	switch {
	case err == nil:
		r.metrics.MessagesRouted.Inc()
	case errors.Is(err, common.ErrQueueFull):
		r.metrics.RoutingFailures.Inc()
		r.notify("Could not deliver to " + dest + ": their queue is full.")
	default:
		// session ended between lookup and enqueue
		r.metrics.RoutingFailures.Inc()
		r.notify(dest + " is not online.")
	}
}

// notify queues a status line for the reader's own user. A failure here
// means our own session is already ending, so the error is ignored.
func (r *Reader) notify(msg string) {
	_ = r.session.Enqueue(msg)
}

func (r *Reader) terminate(ctx context.Context) {
	r.state = stateTerminated
	r.registry.Remove(r.session)
	r.logger.Info(ctx, "session ended")
}
