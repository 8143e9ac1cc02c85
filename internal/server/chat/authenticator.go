package chat

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/gochat/internal/common"
	"github.com/dmitrijs2005/gochat/internal/logging"
	"github.com/dmitrijs2005/gochat/internal/server/auth"
	"github.com/dmitrijs2005/gochat/internal/server/metrics"
	"github.com/dmitrijs2005/gochat/internal/server/users"
)

// Pre-session protocol lines.
const (
	welcomeLine      = "Welcome to the messaging service."
	menuText         = "Commands:\n     login\n     register\n     token\n     quit\n"
	unrecognisedLine = "Unrecognised Input. Try Again."
)

// Authenticator gates one raw connection through login, registration or
// token resume before it is promoted to a session. It owns the connection
// until promotion; on any I/O failure or quit it closes the connection and
// exits without ever leaving a half-registered session behind.
type Authenticator struct {
	conn     net.Conn
	buf      *bufio.Reader
	registry *Registry
	users    *users.Service
	opts     Options
	logger   logging.Logger
	metrics  *metrics.Metrics
}

func NewAuthenticator(conn net.Conn, registry *Registry, us *users.Service, opts Options, logger logging.Logger, m *metrics.Metrics) *Authenticator {
	return &Authenticator{
		conn:     conn,
		buf:      bufio.NewReader(conn),
		registry: registry,
		users:    us,
		opts:     opts,
		logger:   logger.With("module", "authenticator"),
		metrics:  m,
	}
}

// Run drives the menu loop until the peer authenticates, quits or the
// connection fails. On success the connection is handed off to a new
// session's reader/writer pair and Run returns without closing it.
func (a *Authenticator) Run(ctx context.Context) {
	if err := a.println(welcomeLine); err != nil {
		a.conn.Close()
		return
	}

	for {
		if err := a.println(menuText); err != nil {
			a.conn.Close()
			return
		}

		line, err := a.readLine()
		if err != nil {
			a.logger.Info(ctx, "client left before logging in")
			a.conn.Close()
			return
		}

		var userName string
		switch strings.ToLower(line) {
		case "login":
			userName, err = a.attemptLogin(ctx)
		case "register":
			userName, err = a.attemptRegister(ctx)
		case "token":
			userName, err = a.attemptToken(ctx)
		case "quit":
			a.logger.Info(ctx, "client quit before logging in")
			a.conn.Close()
			return
		default:
			if err := a.println(unrecognisedLine); err != nil {
				a.conn.Close()
				return
			}
			continue
		}

		if err != nil {
			a.logger.Error(ctx, "authentication aborted", "error", err.Error())
			a.conn.Close()
			return
		}
		if userName == "" {
			// attempt failed, stay in the menu loop
			continue
		}
		if a.promote(ctx, userName) {
			return
		}
	}
}

// attemptLogin runs one login exchange. It returns the authenticated
// username, or "" to re-loop after a reported failure; a non-nil error is
// fatal for the connection.
func (a *Authenticator) attemptLogin(ctx context.Context) (string, error) {
	if err := a.println("Username: "); err != nil {
		return "", err
	}
	userName, err := a.readLine()
	if err != nil {
		return "", err
	}

	exists, err := a.users.Exists(ctx, userName)
	if err != nil {
		return "", fmt.Errorf("password store: %w", err)
	}
	if !exists {
		a.metrics.AuthFailures.Inc()
		if err := a.println("No such username. Please try again or register."); err != nil {
			return "", err
		}
		return "", nil
	}

	if err := a.println("Password: "); err != nil {
		return "", err
	}
	password, err := a.readLine()
	if err != nil {
		return "", err
	}

	_, err = a.users.Authenticate(ctx, userName, password)
	switch {
	case err == nil:
		return userName, nil
	case errors.Is(err, common.ErrorUnauthorized), errors.Is(err, common.ErrorNotFound):
		a.metrics.AuthFailures.Inc()
		if err := a.println("Incorrect Password. Please try again or register."); err != nil {
			return "", err
		}
		return "", nil
	default:
		return "", fmt.Errorf("password store: %w", err)
	}
}

// attemptRegister runs one registration exchange, validating the desired
// username and password before creating the account.
func (a *Authenticator) attemptRegister(ctx context.Context) (string, error) {
	if err := a.println("Desired username: "); err != nil {
		return "", err
	}
	userName, err := a.readLine()
	if err != nil {
		return "", err
	}

	if utf8.RuneCountInString(userName) < a.opts.MinUsernameLength {
		a.metrics.AuthFailures.Inc()
		if err := a.println("Username too short. Please try again."); err != nil {
			return "", err
		}
		return "", nil
	}

	exists, err := a.users.Exists(ctx, userName)
	if err != nil {
		return "", fmt.Errorf("password store: %w", err)
	}
	if exists {
		a.metrics.AuthFailures.Inc()
		if err := a.println("Username already taken. Please try again."); err != nil {
			return "", err
		}
		return "", nil
	}

	if err := a.println("Desired password: "); err != nil {
		return "", err
	}
	password, err := a.readLine()
	if err != nil {
		return "", err
	}

	if utf8.RuneCountInString(password) < a.opts.MinPasswordLength {
		a.metrics.AuthFailures.Inc()
		msg := fmt.Sprintf("Invalid password. Password must be at least %d chars long.", a.opts.MinPasswordLength)
		if err := a.println(msg); err != nil {
			return "", err
		}
		return "", nil
	}

	if err := a.println("Please confirm password: "); err != nil {
		return "", err
	}
	confirmation, err := a.readLine()
	if err != nil {
		return "", err
	}
	if confirmation != password {
		a.metrics.AuthFailures.Inc()
		if err := a.println("Passwords did not match. Please try again."); err != nil {
			return "", err
		}
		return "", nil
	}

	_, err = a.users.Register(ctx, userName, password)
	if err != nil {
		// lost a race with a concurrent registration for the same name
		if errors.Is(err, common.ErrUsernameTaken) {
			a.metrics.AuthFailures.Inc()
			if err := a.println("Username already taken. Please try again."); err != nil {
				return "", err
			}
			return "", nil
		}
		return "", fmt.Errorf("password store: %w", err)
	}

	a.metrics.Registrations.Inc()
	if err := a.println("Account successfully created."); err != nil {
		return "", err
	}
	return userName, nil
}

// attemptToken runs one session-resume exchange against a previously
// issued token.
func (a *Authenticator) attemptToken(ctx context.Context) (string, error) {
	if err := a.println("Token: "); err != nil {
		return "", err
	}
	token, err := a.readLine()
	if err != nil {
		return "", err
	}

	userName, err := auth.GetUserNameFromToken(token, a.opts.SecretKey)
	if err != nil {
		a.metrics.AuthFailures.Inc()
		if err := a.println("Invalid or expired token. Please log in."); err != nil {
			return "", err
		}
		return "", nil
	}

	exists, err := a.users.Exists(ctx, userName)
	if err != nil {
		return "", fmt.Errorf("password store: %w", err)
	}
	if !exists {
		a.metrics.AuthFailures.Inc()
		if err := a.println("No such username. Please try again or register."); err != nil {
			return "", err
		}
		return "", nil
	}

	return userName, nil
}

// promote registers a session for userName and starts its writer/reader
// pair, handing them the connection and the buffered reader (which may
// hold bytes already read past the last prompt). It returns false when the
// username is already logged in, in which case the menu loop continues.
func (a *Authenticator) promote(ctx context.Context, userName string) bool {
	session, err := a.registry.Add(userName, a.conn, a.opts.QueueSize)
	if err != nil {
		a.metrics.AuthFailures.Inc()
		if err := a.println("Already logged in elsewhere."); err != nil {
			a.conn.Close()
			// the menu loop's next read will fail and end the goroutine
		}
		return false
	}

	if token, err := auth.GenerateToken(userName, a.opts.SecretKey, a.opts.TokenValidity); err != nil {
		a.logger.Warn(ctx, "could not issue session token", "error", err.Error())
	} else if err := a.println("Session token: " + token); err != nil {
		// connection already failing; the reader will notice immediately
		a.logger.Warn(ctx, "could not send session token", "error", err.Error())
	}

	a.logger.Info(ctx, "user logged on", "user", userName)

	w := newWriter(session, a.registry, a.logger)
	go w.run(ctx)

	r := newReader(session, a.buf, a.registry, a.logger, a.metrics)
	go r.run(ctx)

	return true
}

func (a *Authenticator) println(msg string) error {
	_, err := fmt.Fprintln(a.conn, msg)
	return err
}

// readLine reads the peer's next line, trimmed. A partial line followed by
// EOF still counts as input.
func (a *Authenticator) readLine() (string, error) {
	line, err := a.buf.ReadString('\n')
	if err != nil {
		trimmed := strings.TrimSpace(line)
		if errors.Is(err, io.EOF) && trimmed != "" {
			return trimmed, nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}
