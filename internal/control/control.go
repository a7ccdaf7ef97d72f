// Package control provides the agent's unix control socket. The
// listening socket doubles as the single-instance lock: a second
// launch finds the address in use, hands its command to the running
// agent, and exits.
package control

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrAlreadyRunning reports that another agent holds the socket.
var ErrAlreadyRunning = errors.New("another bubblechat agent is already running")

const dialTimeout = 2 * time.Second

// SocketPath returns the control socket location: an explicit override,
// or the runtime directory, or a per-user file under the temp dir.
func SocketPath(override string) string {
	if trimmed := strings.TrimSpace(override); trimmed != "" {
		return trimmed
	}
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "bubblechat.sock")
	}
	return filepath.Join(os.TempDir(), fmt.Sprintf("bubblechat-%d.sock", os.Getuid()))
}

// Handler processes one command received over the socket.
type Handler func(command string) error

// Server owns the listening side of the control socket.
type Server struct {
	listener net.Listener
	path     string
}

// Listen binds the control socket and starts serving commands through
// the handler. A live competing listener yields ErrAlreadyRunning; a
// stale socket file left by a dead agent is removed and rebound.
func Listen(path string, handler Handler) (*Server, error) {
	listener, err := net.Listen("unix", path)
	if err != nil {
		if conn, dialErr := net.DialTimeout("unix", path, dialTimeout); dialErr == nil {
			conn.Close()
			return nil, ErrAlreadyRunning
		}
		// Nobody answered: the previous agent died without cleanup.
		if rmErr := os.Remove(path); rmErr != nil {
			return nil, fmt.Errorf("bind control socket: %w", err)
		}
		listener, err = net.Listen("unix", path)
		if err != nil {
			return nil, fmt.Errorf("bind control socket: %w", err)
		}
	}

	s := &Server{listener: listener, path: path}
	go s.serve(handler)
	return s, nil
}

func (s *Server) serve(handler Handler) {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}
		go handleConn(conn, handler)
	}
}

func handleConn(conn net.Conn, handler Handler) {
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(dialTimeout))

	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		return
	}
	command := strings.TrimSpace(line)
	if command == "" {
		fmt.Fprintf(conn, "err empty command\n")
		return
	}
	if err := handler(command); err != nil {
		fmt.Fprintf(conn, "err %s\n", err)
		return
	}
	fmt.Fprintf(conn, "ok\n")
}

// Close stops serving and removes the socket file.
func (s *Server) Close() {
	s.listener.Close()
	os.Remove(s.path)
}

// Send delivers one command to the agent listening on path and waits
// for its acknowledgement.
func Send(path, command string) error {
	conn, err := net.DialTimeout("unix", path, dialTimeout)
	if err != nil {
		return fmt.Errorf("no running agent at %s: %w", path, err)
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(dialTimeout))

	if _, err := fmt.Fprintf(conn, "%s\n", command); err != nil {
		return fmt.Errorf("send %q: %w", command, err)
	}
	reply, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		return fmt.Errorf("send %q: %w", command, err)
	}
	reply = strings.TrimSpace(reply)
	if strings.HasPrefix(reply, "err") {
		return fmt.Errorf("agent rejected %q: %s", command, strings.TrimSpace(strings.TrimPrefix(reply, "err")))
	}
	return nil
}
