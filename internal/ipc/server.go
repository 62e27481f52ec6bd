// Package ipc implements the CLI-to-daemon admin-override protocol over a
// Unix domain socket: a colon-delimited command line in, a response
// terminated by an "END" line out. Adapted from the teacher's
// internal/ipc/server.go bufio.Scanner line protocol, repointed from
// domain-block/panic-mode commands at the tracker's admin-override surface
// (grant-extension, reset-time, status, reload).
package ipc

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/emosenkis/family-policy/internal/daemon"
	"github.com/emosenkis/family-policy/internal/logging"
	"github.com/emosenkis/family-policy/internal/tracker"
)

var log = logging.For("ipc")

// SocketPath returns the fixed admin socket path inside the OS temp
// directory.
func SocketPath() string {
	return filepath.Join(os.TempDir(), "family-policy-admin.sock")
}

// Server accepts admin-override commands and dispatches them to a running
// Tracker and/or Daemon. Either dependency may be nil (e.g. a host running
// only the policy daemon with no children configured); commands that need
// the missing one report an error instead of panicking.
type Server struct {
	path     string
	tracker  *tracker.Tracker
	daemon   *daemon.Daemon
	listener net.Listener
}

// New builds a Server. t and d may each be nil.
func New(path string, t *tracker.Tracker, d *daemon.Daemon) *Server {
	if path == "" {
		path = SocketPath()
	}
	return &Server{path: path, tracker: t, daemon: d}
}

// Start removes any stale socket file, binds a new one, restricts it to
// the owner, and begins accepting connections in the background.
func (s *Server) Start() error {
	_ = os.Remove(s.path)
	listener, err := net.Listen("unix", s.path)
	if err != nil {
		return fmt.Errorf("binding admin socket %s: %w", s.path, err)
	}
	if err := os.Chmod(s.path, 0o600); err != nil {
		log.Warn("could not restrict admin socket permissions", "path", s.path, "error", err)
	}
	s.listener = listener
	go s.acceptLoop()
	return nil
}

// Stop closes the listener and removes the socket file.
func (s *Server) Stop() error {
	if s.listener == nil {
		return nil
	}
	err := s.listener.Close()
	_ = os.Remove(s.path)
	return err
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}
		go s.handleConnection(conn)
	}
}

func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		s.dispatch(conn, line)
		fmt.Fprintln(conn, "END")
	}
}

func (s *Server) dispatch(conn net.Conn, line string) {
	fields := strings.Split(line, ":")
	action := strings.TrimSpace(fields[0])
	log.Debug("admin command received", "action", action)

	switch action {
	case "status":
		s.handleStatus(conn)
	case "grant-extension":
		s.handleGrantExtension(conn, fields)
	case "reset-time":
		s.handleResetTime(conn, fields)
	case "select-child":
		s.handleSelectChild(conn, fields)
	case "pause":
		s.withTracker(conn, func(t *tracker.Tracker) { t.Pause(); fmt.Fprintln(conn, "OK: tracker paused") })
	case "resume":
		s.withTracker(conn, func(t *tracker.Tracker) { t.Resume(); fmt.Fprintln(conn, "OK: tracker resumed") })
	case "reload":
		s.handleReload(conn)
	default:
		fmt.Fprintf(conn, "ERROR: unknown action %q\n", action)
	}
}

func (s *Server) withTracker(conn net.Conn, fn func(*tracker.Tracker)) {
	if s.tracker == nil {
		fmt.Fprintln(conn, "ERROR: time-limits tracking is not enabled on this host")
		return
	}
	fn(s.tracker)
}

func (s *Server) handleStatus(conn net.Conn) {
	if s.tracker != nil {
		st := s.tracker.GetState()
		for _, child := range st.Children {
			fmt.Fprintf(conn, "child=%s used=%ds locked=%v\n", child.ID, child.Today.UsedSeconds, child.Today.IsLocked())
		}
	}
	if s.daemon != nil {
		applied := s.daemon.AppliedState()
		fmt.Fprintf(conn, "policy_hash=%s last_checked=%s\n", applied.ConfigHash, applied.LastChecked.Format("2006-01-02T15:04:05Z07:00"))
	}
	if s.tracker == nil && s.daemon == nil {
		fmt.Fprintln(conn, "ERROR: no components running")
	}
}

func (s *Server) handleGrantExtension(conn net.Conn, fields []string) {
	// grant-extension:childID:minutes:password:reason
	if len(fields) < 4 {
		fmt.Fprintln(conn, "ERROR: usage grant-extension:childID:minutes:password[:reason]")
		return
	}
	childID := strings.TrimSpace(fields[1])
	minutes, err := strconv.ParseUint(strings.TrimSpace(fields[2]), 10, 32)
	if err != nil {
		fmt.Fprintln(conn, "ERROR: minutes must be a positive integer")
		return
	}
	password := fields[3]
	reason := ""
	if len(fields) > 4 {
		reason = strings.Join(fields[4:], ":")
	}
	s.withTracker(conn, func(t *tracker.Tracker) {
		if err := t.GrantExtension(childID, uint32(minutes), password, reason); err != nil {
			fmt.Fprintf(conn, "ERROR: %v\n", err)
			return
		}
		fmt.Fprintf(conn, "OK: granted %d extra minutes to %s\n", minutes, childID)
	})
}

func (s *Server) handleResetTime(conn net.Conn, fields []string) {
	// reset-time:childID:password
	if len(fields) != 3 {
		fmt.Fprintln(conn, "ERROR: usage reset-time:childID:password")
		return
	}
	childID := strings.TrimSpace(fields[1])
	password := fields[2]
	s.withTracker(conn, func(t *tracker.Tracker) {
		if err := t.ResetTime(childID, password); err != nil {
			fmt.Fprintf(conn, "ERROR: %v\n", err)
			return
		}
		fmt.Fprintf(conn, "OK: reset usage for %s\n", childID)
	})
}

func (s *Server) handleSelectChild(conn net.Conn, fields []string) {
	if len(fields) != 2 {
		fmt.Fprintln(conn, "ERROR: usage select-child:childID")
		return
	}
	childID := strings.TrimSpace(fields[1])
	s.withTracker(conn, func(t *tracker.Tracker) {
		if err := t.SelectChild(childID); err != nil {
			fmt.Fprintf(conn, "ERROR: %v\n", err)
			return
		}
		fmt.Fprintf(conn, "OK: active child is now %s\n", childID)
	})
}

func (s *Server) handleReload(conn net.Conn) {
	if s.daemon == nil {
		fmt.Fprintln(conn, "ERROR: the policy daemon is not running")
		return
	}
	fmt.Fprintln(conn, "OK: reload requested")
	go func() {
		if err := s.daemon.CheckNow(context.Background(), false); err != nil {
			log.Warn("reload check failed", "error", err)
		}
	}()
}

// SendCommand dials path (or the default SocketPath if empty), writes a
// single command line, and returns the response up to the "END" marker.
func SendCommand(path, command string) (string, error) {
	if path == "" {
		path = SocketPath()
	}
	conn, err := net.Dial("unix", path)
	if err != nil {
		return "", fmt.Errorf("connecting to admin socket: %w", err)
	}
	defer conn.Close()

	if _, err := fmt.Fprintln(conn, command); err != nil {
		return "", fmt.Errorf("sending command: %w", err)
	}

	var response strings.Builder
	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "END" {
			break
		}
		response.WriteString(line)
		response.WriteString("\n")
	}
	return response.String(), scanner.Err()
}
