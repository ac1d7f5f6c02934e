package player

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"
)

type ipcCommand struct {
	Command   []any `json:"command"`
	RequestID int   `json:"request_id,omitempty"`
}

type ipcResponse struct {
	Data      any    `json:"data"`
	Error     string `json:"error"`
	Event     string `json:"event"`
	RequestID int    `json:"request_id"`
}

// ErrPropertyUnavailable is returned for properties mpv has no value for, such as
// time-pos while nothing is loaded.
var ErrPropertyUnavailable = errors.New("property unavailable")

const (
	maxRetries   = 3
	retryDelay   = 100 * time.Millisecond
	readDeadline = time.Second
)

// command sends one JSON-IPC command on a fresh connection, retrying transient failures.
func (m *MPV) command(args ...any) (any, error) {
	return m.call(maxRetries, args)
}

// commandOnce sends args a single time, waiting at most readDeadline for the reply.
func (m *MPV) commandOnce(args ...any) (any, error) {
	return m.call(1, args)
}

func (m *MPV) call(attempts int, args []any) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var lastErr error
	for attempt := range attempts {
		if attempt > 0 {
			time.Sleep(retryDelay)
		}

		result, err := send(m.socketPath, args)
		if err == nil || errors.Is(err, ErrPropertyUnavailable) {
			return result, err
		}
		lastErr = err
	}

	return nil, fmt.Errorf("ipc command %v failed after %d attempts: %w", args[0], attempts, lastErr)
}

func send(socketPath string, args []any) (any, error) {
	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()

	if err := writeCommand(conn, ipcCommand{Command: args, RequestID: 1}); err != nil {
		return nil, err
	}
	if err := conn.SetReadDeadline(time.Now().Add(readDeadline)); err != nil {
		return nil, fmt.Errorf("set deadline: %w", err)
	}

	// mpv broadcasts events to every client; skip them until the reply shows up.
	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		var resp ipcResponse
		if err := json.Unmarshal(scanner.Bytes(), &resp); err != nil {
			return nil, fmt.Errorf("unmarshal: %w", err)
		}
		if resp.Event != "" || resp.RequestID != 1 {
			continue
		}
		return resp.Data, replyError(resp.Error)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return nil, errors.New("read: connection closed before reply")
}

func writeCommand(conn net.Conn, cmd ipcCommand) error {
	payload, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if _, err := conn.Write(append(payload, '\n')); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

func replyError(msg string) error {
	switch msg {
	case "", "success":
		return nil
	case "property unavailable":
		return ErrPropertyUnavailable
	default:
		return fmt.Errorf("mpv error: %s", msg)
	}
}
