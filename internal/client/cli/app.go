// Package cli implements the interactive chat client.
//
// The session has two phases. While the server is authenticating the
// connection it drives a strict line dialogue: the client prints every
// server line and, whenever a line asks for input, reads one answer and
// sends it back. Password prompts are answered without local echo when
// stdin is a terminal. Once the server issues a session token the client
// switches to a free pump: one goroutine prints incoming messages, another
// forwards typed lines, until either side goes away.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/dmitrijs2005/gochat/internal/client/config"
	"github.com/dmitrijs2005/gochat/internal/common"
)

// readPassword is a test seam for term.ReadPassword.
// In tests you can replace it with a stub to avoid touching the terminal.
var readPassword = term.ReadPassword

// isTerminal is a test seam for term.IsTerminal.
var isTerminal = term.IsTerminal

// Server lines the client keys its dialogue off.
const (
	menuTailLine    = "quit"
	menuHeaderLine  = "Commands:"
	tokenLinePrefix = "Session token: "
)

// App is the interactive chat client. It owns one TCP connection plus the
// user's input and output streams.
type App struct {
	config *config.Config
	conn   net.Conn
	in     io.Reader
	out    io.Writer
}

// NewApp dials the configured server and returns a client bound to the
// process's stdin and stdout.
func NewApp(cfg *config.Config) (*App, error) {
	conn, err := net.Dial("tcp", cfg.ServerAddr)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", cfg.ServerAddr, err)
	}
	return newApp(cfg, conn, os.Stdin, os.Stdout), nil
}

func newApp(cfg *config.Config, conn net.Conn, in io.Reader, out io.Writer) *App {
	return &App{config: cfg, conn: conn, in: in, out: out}
}

// Run drives the session until the server closes the connection, the user's
// input reaches EOF, or ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	defer a.conn.Close()

	fromServer := bufio.NewReader(a.conn)
	stdin := bufio.NewReader(a.in)

	authed, err := a.authenticate(fromServer, stdin)
	if err != nil {
		return err
	}
	if !authed {
		return nil
	}
	return a.pump(ctx, fromServer, stdin)
}

// authenticate follows the server's pre-session dialogue. It returns true
// once the server promotes the connection to a session, false when the
// dialogue ends without one (quit, server gone, stdin closed).
func (a *App) authenticate(fromServer *bufio.Reader, stdin *bufio.Reader) (bool, error) {
	for {
		line, err := fromServer.ReadString('\n')
		if len(line) > 0 {
			fmt.Fprint(a.out, line)
		}
		if err != nil {
			return false, nil
		}

		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, tokenLinePrefix):
			return true, nil
		case trimmed == menuTailLine || isInputPrompt(trimmed):
			answer, err := a.readAnswer(stdin, isSecretPrompt(trimmed))
			if err != nil {
				// user is done typing; bow out of the menu politely
				if errors.Is(err, io.EOF) {
					a.conn.Write([]byte("quit\n"))
					return false, nil
				}
				return false, err
			}
			if _, err := a.conn.Write([]byte(answer + "\n")); err != nil {
				return false, nil
			}
		}
	}
}

// pump is the post-authentication mode: print whatever the server sends,
// send whatever the user types. Either side going away ends the session.
func (a *App) pump(ctx context.Context, fromServer *bufio.Reader, stdin *bufio.Reader) error {
	recvDone := make(chan struct{})
	sendDone := make(chan struct{})

	go func() {
		defer close(recvDone)
		for {
			line, err := fromServer.ReadString('\n')
			if len(line) > 0 {
				fmt.Fprint(a.out, line)
			}
			if err != nil {
				return
			}
		}
	}()

	go func() {
		defer close(sendDone)
		for {
			line, err := stdin.ReadString('\n')
			line = strings.TrimRight(line, "\r\n")
			if err != nil {
				if errors.Is(err, io.EOF) && line != "" {
					a.conn.Write([]byte(line + "\n"))
				}
				return
			}
			if _, err := a.conn.Write([]byte(line + "\n")); err != nil {
				return
			}
		}
	}()

	select {
	case <-ctx.Done():
	case <-recvDone:
	case <-sendDone:
	}
	// Unblocks whichever loop is still reading the connection.
	a.conn.Close()
	return nil
}

// readAnswer reads one line of user input. Secret answers are read without
// echo when stdin is an interactive terminal.
func (a *App) readAnswer(stdin *bufio.Reader, secret bool) (string, error) {
	if secret {
		if fd, ok := a.terminalFd(); ok {
			pw, err := readPassword(fd)
			fmt.Fprintln(a.out)
			if err != nil {
				return "", err
			}
			answer := string(pw)
			common.WipeByteArray(pw)
			return answer, nil
		}
	}
	line, err := stdin.ReadString('\n')
	if err != nil {
		trimmed := strings.TrimSpace(line)
		if errors.Is(err, io.EOF) && trimmed != "" {
			return trimmed, nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// terminalFd reports whether input comes from an interactive terminal, and
// if so returns its file descriptor.
func (a *App) terminalFd() (int, bool) {
	f, ok := a.in.(*os.File)
	if !ok {
		return 0, false
	}
	fd := int(f.Fd())
	if !isTerminal(fd) {
		return 0, false
	}
	return fd, true
}

// isInputPrompt reports whether a server line asks the user to type an
// answer. Prompts end with a colon; the menu header does not count.
func isInputPrompt(trimmed string) bool {
	return strings.HasSuffix(trimmed, ":") && trimmed != menuHeaderLine
}

// isSecretPrompt reports whether a prompt asks for a password.
func isSecretPrompt(trimmed string) bool {
	return strings.HasSuffix(strings.ToLower(trimmed), "password:")
}
