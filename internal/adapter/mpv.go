package adapter

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mmcdole/airwave/internal/domain"
)

const (
	defaultDialTimeout  = 5 * time.Second
	defaultReplyTimeout = 3 * time.Second
)

// errConnClosed is delivered to commands still waiting when the player goes away
var errConnClosed = errors.New("player connection closed")

type ipcRequest struct {
	Command   []any `json:"command"`
	RequestID int   `json:"request_id"`
}

// ipcMessage is either a command reply (RequestID set) or an event
type ipcMessage struct {
	RequestID int             `json:"request_id,omitempty"`
	Error     string          `json:"error,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	Event     string          `json:"event,omitempty"`
	Reason    string          `json:"reason,omitempty"`
}

// MPVOutput implements domain.AudioOutput by driving an mpv process over
// its JSON IPC socket. The process is started on first use.
type MPVOutput struct {
	launcher     *Launcher
	logger       *slog.Logger
	socketPath   string
	spawn        func(socket string) (stop func() error, err error)
	dialTimeout  time.Duration
	replyTimeout time.Duration

	mu     sync.Mutex // serializes commands
	conn   net.Conn
	stop   func() error
	nextID int

	pendingMu sync.Mutex
	pending   map[int]chan ipcMessage
	dead      bool

	stateMu sync.Mutex
	url     string
	playing bool
	volume  float64
}

// NewMPVOutput creates an output that launches the player via launcher
func NewMPVOutput(launcher *Launcher, logger *slog.Logger) *MPVOutput {
	if logger == nil {
		logger = slog.Default()
	}
	o := &MPVOutput{
		launcher:     launcher,
		logger:       logger,
		socketPath:   filepath.Join(os.TempDir(), fmt.Sprintf("%s-%d.sock", appName, os.Getpid())),
		dialTimeout:  defaultDialTimeout,
		replyTimeout: defaultReplyTimeout,
		pending:      make(map[int]chan ipcMessage),
		volume:       1,
	}
	o.spawn = o.spawnPlayer
	return o
}

// spawnPlayer starts the player process listening on socket
func (o *MPVOutput) spawnPlayer(socket string) (func() error, error) {
	binary, err := o.launcher.Resolve()
	if err != nil {
		return nil, err
	}

	_ = os.Remove(socket) // stale socket from a crashed run
	cmd := o.launcher.Command(binary, socket)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPlayerUnavailable, err)
	}

	done := make(chan struct{})
	go func() {
		err := cmd.Wait()
		o.logger.Debug("player process exited", "error", err)
		close(done)
	}()

	return func() error {
		select {
		case <-done:
			return nil
		default:
		}
		if err := cmd.Process.Kill(); err != nil {
			return err
		}
		<-done
		return nil
	}, nil
}

// connected reports whether a live player connection exists
func (o *MPVOutput) connected() bool {
	o.pendingMu.Lock()
	defer o.pendingMu.Unlock()
	return o.conn != nil && !o.dead
}

// ensureStarted launches and connects to the player. Caller holds o.mu.
func (o *MPVOutput) ensureStarted() error {
	if o.connected() {
		return nil
	}
	o.teardown()

	stop, err := o.spawn(o.socketPath)
	if err != nil {
		return err
	}

	conn, err := o.dial()
	if err != nil {
		_ = stop()
		return fmt.Errorf("%w: %v", domain.ErrPlayerUnavailable, err)
	}

	o.pendingMu.Lock()
	o.conn = conn
	o.dead = false
	o.pendingMu.Unlock()
	o.stop = stop
	go o.readLoop(conn)

	o.stateMu.Lock()
	volume := o.volume
	o.stateMu.Unlock()
	o.logger.Info("player connected", "socket", o.socketPath)
	return o.send("set_property", "volume", volume*100)
}

// dial retries until the player has created its socket
func (o *MPVOutput) dial() (net.Conn, error) {
	deadline := time.Now().Add(o.dialTimeout)
	for {
		conn, err := net.DialTimeout("unix", o.socketPath, 250*time.Millisecond)
		if err == nil {
			return conn, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("connecting to %s: %w", o.socketPath, err)
		}
		time.Sleep(50 * time.Millisecond)
	}
}

// teardown drops the connection and process. Caller holds o.mu.
func (o *MPVOutput) teardown() {
	o.pendingMu.Lock()
	conn := o.conn
	o.conn = nil
	o.pendingMu.Unlock()

	if conn != nil {
		_ = conn.Close()
		o.clearState()
	}
	if o.stop != nil {
		if err := o.stop(); err != nil {
			o.logger.Warn("failed to stop player", "error", err)
		}
		o.stop = nil
	}
}

func (o *MPVOutput) readLoop(conn net.Conn) {
	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		var msg ipcMessage
		if err := json.Unmarshal(scanner.Bytes(), &msg); err != nil {
			o.logger.Debug("ignoring malformed player message", "error", err)
			continue
		}

		if msg.RequestID > 0 {
			o.pendingMu.Lock()
			ch, ok := o.pending[msg.RequestID]
			delete(o.pending, msg.RequestID)
			o.pendingMu.Unlock()
			if ok {
				ch <- msg
			}
			continue
		}

		if msg.Event == "end-file" && (msg.Reason == "error" || msg.Reason == "eof") && o.isCurrent(conn) {
			// mpv unloads the file; the next resume has to load it again
			o.logger.Warn("stream ended", "reason", msg.Reason)
			o.clearState()
		}
	}

	// A replaced connection owns neither the pending replies nor the state
	o.pendingMu.Lock()
	if o.conn != conn {
		o.pendingMu.Unlock()
		return
	}
	o.dead = true
	for id, ch := range o.pending {
		ch <- ipcMessage{RequestID: id, Error: errConnClosed.Error()}
		delete(o.pending, id)
	}
	o.pendingMu.Unlock()

	o.clearState()
}

func (o *MPVOutput) isCurrent(conn net.Conn) bool {
	o.pendingMu.Lock()
	defer o.pendingMu.Unlock()
	return o.conn == conn
}

func (o *MPVOutput) clearState() {
	o.stateMu.Lock()
	o.url = ""
	o.playing = false
	o.stateMu.Unlock()
}

// send issues one IPC command and waits for its reply. Caller holds o.mu.
func (o *MPVOutput) send(args ...any) error {
	o.nextID++
	id := o.nextID
	ch := make(chan ipcMessage, 1)

	o.pendingMu.Lock()
	conn := o.conn
	if conn == nil || o.dead {
		o.pendingMu.Unlock()
		return errConnClosed
	}
	o.pending[id] = ch
	o.pendingMu.Unlock()

	data, err := json.Marshal(ipcRequest{Command: args, RequestID: id})
	if err != nil {
		return fmt.Errorf("encoding player command: %w", err)
	}
	if _, err := conn.Write(append(data, '\n')); err != nil {
		o.pendingMu.Lock()
		delete(o.pending, id)
		o.pendingMu.Unlock()
		return fmt.Errorf("writing player command: %w", err)
	}

	select {
	case reply := <-ch:
		if reply.Error != "success" {
			return fmt.Errorf("player command %v: %s", args[0], reply.Error)
		}
		return nil
	case <-time.After(o.replyTimeout):
		o.pendingMu.Lock()
		delete(o.pending, id)
		o.pendingMu.Unlock()
		return fmt.Errorf("player command %v: timed out", args[0])
	}
}

// Load replaces the current source, leaving the player paused
func (o *MPVOutput) Load(url string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.ensureStarted(); err != nil {
		return err
	}
	if err := o.send("set_property", "pause", true); err != nil {
		return err
	}
	if err := o.send("loadfile", url, "replace"); err != nil {
		return err
	}

	o.stateMu.Lock()
	o.url = url
	o.playing = false
	o.stateMu.Unlock()
	return nil
}

// Play starts or resumes the loaded source
func (o *MPVOutput) Play() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.Loaded() {
		return nil
	}
	if err := o.ensureStarted(); err != nil {
		return err
	}
	if err := o.send("set_property", "pause", false); err != nil {
		return err
	}

	o.stateMu.Lock()
	o.playing = true
	o.stateMu.Unlock()
	return nil
}

// Pause halts playback, keeping the source loaded
func (o *MPVOutput) Pause() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.stateMu.Lock()
	o.playing = false
	o.stateMu.Unlock()

	if !o.connected() {
		return nil
	}
	return o.send("set_property", "pause", true)
}

// Reset stops playback and unloads the source
func (o *MPVOutput) Reset() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.clearState()

	if !o.connected() {
		return nil
	}
	return o.send("stop")
}

// SetVolume sets the output level (0.0-1.0). Before the player starts the
// level is remembered and applied on connect.
func (o *MPVOutput) SetVolume(level float64) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.stateMu.Lock()
	o.volume = level
	o.stateMu.Unlock()

	if !o.connected() {
		return nil
	}
	return o.send("set_property", "volume", level*100)
}

// Playing reports whether audio is playing
func (o *MPVOutput) Playing() bool {
	o.stateMu.Lock()
	defer o.stateMu.Unlock()
	return o.playing
}

// Loaded reports whether a source is loaded
func (o *MPVOutput) Loaded() bool {
	o.stateMu.Lock()
	defer o.stateMu.Unlock()
	return o.url != ""
}

// Close quits the player and removes its socket
func (o *MPVOutput) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.connected() {
		if err := o.send("quit"); err != nil {
			o.logger.Debug("player quit failed", "error", err)
		}
	}
	o.teardown()
	if err := os.Remove(o.socketPath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
