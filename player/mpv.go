package player

import (
	"crypto/rand"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/anisan-cli/skipsync/constant"
	"github.com/anisan-cli/skipsync/log"
	"github.com/anisan-cli/skipsync/where"
)

const (
	socketWaitRetries = 10
	socketWaitDelay   = 300 * time.Millisecond
)

// MPV drives an mpv process over its JSON-IPC socket.
type MPV struct {
	path       string
	args       []string
	socketPath string
	cmd        *exec.Cmd
	exited     chan struct{}
	mu         sync.Mutex
}

// NewMPV prepares an mpv session using the executable at path. Nothing runs until Play.
func NewMPV(path string, args ...string) *MPV {
	if path == "" {
		path = "mpv"
	}
	return &MPV{
		path:   path,
		args:   args,
		exited: make(chan struct{}),
	}
}

// Attach connects to an mpv that was started elsewhere with --input-ipc-server=socket.
// Wait is closed when the socket stops answering.
func Attach(socket string) (*MPV, error) {
	m := &MPV{socketPath: socket, exited: make(chan struct{})}
	if _, err := m.command("get_property", "pid"); err != nil {
		return nil, fmt.Errorf("attach %s: %w", socket, err)
	}

	go func() {
		defer close(m.exited)
		for {
			time.Sleep(time.Second)
			if _, err := m.command("get_property", "pid"); err != nil {
				return
			}
		}
	}()
	return m, nil
}

// Play starts mpv on media, or loads media into the running instance.
func (m *MPV) Play(media, title string) error {
	target, err := sanitizeMediaTarget(media)
	if err != nil {
		return fmt.Errorf("invalid media target: %w", err)
	}

	if m.IsRunning() {
		_, err := m.command("loadfile", target, "replace")
		return err
	}

	if m.socketPath == "" {
		random := make([]byte, 4)
		if _, err := rand.Read(random); err != nil {
			return fmt.Errorf("generate socket name: %w", err)
		}
		m.socketPath = filepath.Join(where.Temp(), fmt.Sprintf("%s-%x.sock", constant.App, random))
	}

	args := append([]string{
		"--no-terminal",
		"--really-quiet",
		"--force-window=yes",
		"--input-ipc-server=" + m.socketPath,
	}, m.args...)
	if title = sanitizeTitle(title); title != "" {
		args = append(args, "--force-media-title="+title)
	}
	args = append(args, "--", target)

	m.cmd = exec.Command(m.path, args...)
	m.cmd.SysProcAttr = sysProcAttr()

	if err := m.cmd.Start(); err != nil {
		return fmt.Errorf("start mpv: %w", err)
	}

	m.exited = make(chan struct{})
	go func() {
		_ = m.cmd.Wait()
		close(m.exited)
	}()

	if err := m.waitForSocket(); err != nil {
		select {
		case <-m.exited:
		default:
			log.Warnf("killing mpv: socket never became ready")
			_ = killProcess(m.cmd)
		}
		return fmt.Errorf("mpv socket not ready: %w", err)
	}

	return nil
}

// Wait returns a channel that is closed when mpv exits.
func (m *MPV) Wait() <-chan struct{} {
	return m.exited
}

func (m *MPV) waitForSocket() error {
	for range socketWaitRetries {
		time.Sleep(socketWaitDelay)

		select {
		case <-m.exited:
			return errors.New("mpv exited before socket was ready")
		default:
		}

		if conn, err := net.Dial("unix", m.socketPath); err == nil {
			conn.Close()
			return nil
		}
	}
	return fmt.Errorf("socket %s not ready after %d attempts", m.socketPath, socketWaitRetries)
}

// TimePos returns the playback position in seconds.
func (m *MPV) TimePos() (float64, error) {
	return m.float("time-pos")
}

// Duration returns the duration of the loaded media in seconds.
func (m *MPV) Duration() (float64, error) {
	return m.float("duration")
}

// Paused reports whether playback is paused.
func (m *MPV) Paused() (bool, error) {
	data, err := m.command("get_property", "pause")
	if err != nil {
		return false, err
	}
	paused, _ := data.(bool)
	return paused, nil
}

// Path returns the path or URL of the loaded media.
func (m *MPV) Path() (string, error) {
	data, err := m.command("get_property", "path")
	if err != nil {
		return "", err
	}
	path, _ := data.(string)
	return path, nil
}

// Seek moves playback to an absolute position in seconds. It is not retried, so a
// skip never holds the coordinator for longer than one IPC round trip.
func (m *MPV) Seek(seconds float64) error {
	_, err := m.commandOnce("seek", seconds, "absolute+exact")
	return err
}

// ShowText shows text on the OSD for d.
func (m *MPV) ShowText(text string, d time.Duration) error {
	_, err := m.command("show-text", text, d.Milliseconds())
	return err
}

// Chapter is an entry of mpv's chapter-list.
type Chapter struct {
	Title string  `json:"title"`
	Time  float64 `json:"time"`
}

// SetChapters replaces the chapters of the loaded media, marking segments on the timeline.
func (m *MPV) SetChapters(chapters []Chapter) error {
	return m.Set("chapter-list", chapters)
}

// Set sets an mpv property.
func (m *MPV) Set(property string, value any) error {
	_, err := m.command("set_property", property, value)
	return err
}

// IsRunning reports whether mpv answers on its socket.
func (m *MPV) IsRunning() bool {
	if m.socketPath == "" {
		return false
	}

	select {
	case <-m.exited:
		return false
	default:
	}

	_, err := m.command("get_property", "pid")
	return err == nil
}

// Close quits a process started by Play and removes its socket. An attached mpv is left running.
func (m *MPV) Close() error {
	if m.cmd == nil {
		return nil
	}

	_, _ = m.command("quit")

	select {
	case <-m.exited:
	case <-time.After(3 * time.Second):
		_ = killProcess(m.cmd)
	}

	_ = os.Remove(m.socketPath)
	return nil
}

// Socket returns the IPC socket path.
func (m *MPV) Socket() string {
	return m.socketPath
}

func (m *MPV) float(name string) (float64, error) {
	data, err := m.command("get_property", name)
	if err != nil {
		return 0, err
	}

	val, ok := data.(float64)
	if !ok {
		return 0, fmt.Errorf("property %s: expected float64, got %T", name, data)
	}
	return val, nil
}

// sanitizeMediaTarget rejects targets mpv would read as options or that are not
// local files or http(s) URLs.
func sanitizeMediaTarget(link string) (string, error) {
	l := strings.TrimSpace(link)
	if l == "" {
		return "", errors.New("empty URL")
	}

	if strings.ContainsAny(l, "\x00\n\r") {
		return "", errors.New("invalid control characters in URL")
	}

	if strings.HasPrefix(l, "-") {
		return "", errors.New("url must not start with '-' (looks like a flag)")
	}

	if strings.Contains(l, "://") {
		u, err := url.Parse(l)
		if err != nil {
			return "", fmt.Errorf("invalid URL: %w", err)
		}
		switch strings.ToLower(u.Scheme) {
		case "http", "https":
			return l, nil
		default:
			return "", fmt.Errorf("unsupported URL scheme: %s", u.Scheme)
		}
	}

	return filepath.Clean(l), nil
}

func sanitizeTitle(title string) string {
	return strings.TrimSpace(strings.NewReplacer("\n", " ", "\r", " ", "\t", " ", "\x00", "").Replace(title))
}
