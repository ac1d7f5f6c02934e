package player

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/anisan-cli/skipsync/log"
)

// Event is an mpv event. Property changes carry the property as Name and its value as
// Data; client messages carry their arguments in Args.
type Event struct {
	Name string
	Data any
	Args []string
	// At is when the listener read the event. Zero for events that were not read
	// from mpv.
	At time.Time
}

// Observed are the properties the listener subscribes to.
var Observed = []string{
	"path",
	"duration",
	"time-pos",
	"pause",
	"seeking",
	"paused-for-cache",
	"speed",
	"eof-reached",
}

// EventListener streams mpv events from a dedicated connection.
type EventListener struct {
	socketPath string
	callback   func(Event)
	conn       net.Conn
	done       chan struct{}
	mu         sync.Mutex
}

// NewEventListener creates a listener for socketPath. callback runs on the listener's
// goroutine, one event at a time.
func NewEventListener(socketPath string, callback func(Event)) *EventListener {
	return &EventListener{
		socketPath: socketPath,
		callback:   callback,
		done:       make(chan struct{}),
	}
}

// Start subscribes to the observed properties and starts reading events.
func (el *EventListener) Start() error {
	el.mu.Lock()
	defer el.mu.Unlock()

	if el.conn != nil {
		return nil
	}

	conn, err := net.Dial("unix", el.socketPath)
	if err != nil {
		return fmt.Errorf("event listener connect: %w", err)
	}

	// Observers belong to the connection that registered them.
	for i, name := range Observed {
		if err := writeCommand(conn, ipcCommand{Command: []any{"observe_property", i + 1, name}}); err != nil {
			conn.Close()
			return fmt.Errorf("observe %s: %w", name, err)
		}
	}

	el.conn = conn
	go el.readLoop(conn)

	log.Infof("mpv event listener started on %s", el.socketPath)
	return nil
}

// Stop closes the connection and waits for the read loop to finish.
func (el *EventListener) Stop() {
	el.mu.Lock()
	conn := el.conn
	el.mu.Unlock()

	if conn == nil {
		return
	}
	conn.Close()
	<-el.done
}

// Done is closed once the read loop has finished, either after Stop or when mpv goes away.
func (el *EventListener) Done() <-chan struct{} {
	return el.done
}

func (el *EventListener) readLoop(conn net.Conn) {
	defer close(el.done)

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		if ev, ok := parseEvent(scanner.Bytes()); ok {
			ev.At = time.Now()
			el.callback(ev)
		}
	}

	if err := scanner.Err(); err != nil && !errors.Is(err, net.ErrClosed) {
		log.Warnf("event listener read error: %v", err)
	}
}

type rawEvent struct {
	Event string   `json:"event"`
	Name  string   `json:"name"`
	Data  any      `json:"data"`
	Args  []string `json:"args"`
}

func parseEvent(line []byte) (Event, bool) {
	var raw rawEvent
	if err := json.Unmarshal(line, &raw); err != nil || raw.Event == "" {
		return Event{}, false
	}

	switch raw.Event {
	case "property-change":
		if raw.Name == "" {
			return Event{}, false
		}
		return Event{Name: raw.Name, Data: raw.Data}, true
	case "client-message":
		return Event{Name: raw.Event, Args: raw.Args}, true
	default:
		return Event{Name: raw.Event}, true
	}
}
