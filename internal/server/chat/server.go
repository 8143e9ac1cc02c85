package chat

import (
	"context"
	"net"
	"sync"

	"github.com/dmitrijs2005/gochat/internal/logging"
	"github.com/dmitrijs2005/gochat/internal/server/metrics"
	"github.com/dmitrijs2005/gochat/internal/server/users"
	"github.com/google/uuid"
)

// Server accepts TCP connections and runs one Authenticator goroutine per
// connection. One connection's failure never affects another.
type Server struct {
	address  string
	opts     Options
	registry *Registry
	users    *users.Service
	logger   logging.Logger
	metrics  *metrics.Metrics

	mu sync.Mutex
	ln net.Listener
}

func NewServer(address string, opts Options, registry *Registry, us *users.Service, logger logging.Logger, m *metrics.Metrics) *Server {
	return &Server{
		address:  address,
		opts:     opts,
		registry: registry,
		users:    us,
		logger:   logger.With("module", "chat_server"),
		metrics:  m,
	}
}

// Addr returns the listener's address once Run has bound it, or "" before
// that. Useful with a ":0" configured address.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ln == nil {
		return ""
	}
	return s.ln.Addr().String()
}

// Run listens on the configured address and accepts connections until ctx
// is cancelled. Cancellation closes the listener and tears down every live
// session.
func (s *Server) Run(ctx context.Context) error {

	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.ln = listen
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping chat server...")
		listen.Close()
	}()

	s.logger.Info(ctx, "Starting chat server", "address", s.address)

	for {
		conn, err := listen.Accept()
		if err != nil {
			// Teardown happens here, not in the watcher goroutine, so
			// every session is gone by the time Run returns.
			if ctx.Err() != nil {
				s.registry.CloseAll()
				return nil
			}
			return err
		}

		s.metrics.ConnectionsAccepted.Inc()

		logger := s.logger.With("conn", uuid.NewString())
		logger.Info(ctx, "client connected", "remote", conn.RemoteAddr().String())

		a := NewAuthenticator(conn, s.registry, s.users, s.opts, logger, s.metrics)
		go a.Run(ctx)
	}
}
