package adapter

import (
	"bufio"
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/airwave/internal/domain"
)

var (
	_ domain.AudioOutput = (*MPVOutput)(nil)
	_ domain.AudioOutput = (*NullOutput)(nil)
)

// fakeMPV speaks enough of the mpv JSON IPC protocol for the output
type fakeMPV struct {
	ln net.Listener

	mu       sync.Mutex
	conns    []net.Conn
	commands [][]any
	fail     map[string]string // command name -> error reply
}

func startFakeMPV(t *testing.T, socket string) *fakeMPV {
	t.Helper()
	ln, err := net.Listen("unix", socket)
	require.NoError(t, err)

	f := &fakeMPV{ln: ln, fail: map[string]string{}}
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			f.mu.Lock()
			f.conns = append(f.conns, conn)
			f.mu.Unlock()
			go f.serve(conn)
		}
	}()
	return f
}

func (f *fakeMPV) serve(conn net.Conn) {
	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		var req ipcRequest
		if err := json.Unmarshal(scanner.Bytes(), &req); err != nil {
			continue
		}

		f.mu.Lock()
		f.commands = append(f.commands, req.Command)
		reply := "success"
		if name, ok := req.Command[0].(string); ok && f.fail[name] != "" {
			reply = f.fail[name]
		}
		f.mu.Unlock()

		data, _ := json.Marshal(ipcMessage{RequestID: req.RequestID, Error: reply})
		_, _ = conn.Write(append(data, '\n'))
	}
}

func (f *fakeMPV) event(t *testing.T, raw string) {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.conns {
		_, err := c.Write([]byte(raw + "\n"))
		require.NoError(t, err)
	}
}

func (f *fakeMPV) Close() error {
	err := f.ln.Close()
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.conns {
		_ = c.Close()
	}
	return err
}

func (f *fakeMPV) recorded() [][]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]any, len(f.commands))
	copy(out, f.commands)
	return out
}

type mpvHarness struct {
	out    *MPVOutput
	fake   *fakeMPV
	spawns int
}

func newMPVHarness(t *testing.T) *mpvHarness {
	t.Helper()
	// unix socket paths are length limited, keep it short
	dir, err := os.MkdirTemp("", "aw")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	h := &mpvHarness{}
	h.out = NewMPVOutput(NewLauncher("", nil, NullLogger()), NullLogger())
	h.out.socketPath = filepath.Join(dir, "mpv.sock")
	h.out.dialTimeout = time.Second
	h.out.replyTimeout = time.Second
	h.out.spawn = func(socket string) (func() error, error) {
		h.spawns++
		h.fake = startFakeMPV(t, socket)
		return h.fake.Close, nil
	}
	t.Cleanup(func() { h.out.Close() })
	return h
}

func TestMPVOutputStartsLazily(t *testing.T) {
	h := newMPVHarness(t)

	require.NoError(t, h.out.SetVolume(0.5))
	require.NoError(t, h.out.Pause())
	require.NoError(t, h.out.Reset())
	assert.Equal(t, 0, h.spawns)
	assert.False(t, h.out.Loaded())
}

func TestMPVOutputCommands(t *testing.T) {
	h := newMPVHarness(t)
	require.NoError(t, h.out.SetVolume(0.5))

	require.NoError(t, h.out.Load("http://stream.example/a"))
	assert.Equal(t, 1, h.spawns)
	assert.True(t, h.out.Loaded())
	assert.False(t, h.out.Playing())

	require.NoError(t, h.out.Play())
	assert.True(t, h.out.Playing())

	require.NoError(t, h.out.SetVolume(0.2))
	require.NoError(t, h.out.Pause())
	assert.False(t, h.out.Playing())
	require.NoError(t, h.out.Reset())
	assert.False(t, h.out.Loaded())

	assert.Equal(t, [][]any{
		{"set_property", "volume", float64(50)},
		{"set_property", "pause", true},
		{"loadfile", "http://stream.example/a", "replace"},
		{"set_property", "pause", false},
		{"set_property", "volume", float64(20)},
		{"set_property", "pause", true},
		{"stop"},
	}, h.fake.recorded())
}

func TestMPVOutputPlayWithoutSourceIsNoop(t *testing.T) {
	h := newMPVHarness(t)
	require.NoError(t, h.out.Play())
	assert.Equal(t, 0, h.spawns)
	assert.False(t, h.out.Playing())
}

func TestMPVOutputErrorReply(t *testing.T) {
	h := newMPVHarness(t)
	require.NoError(t, h.out.Load("http://stream.example/a"))

	h.fake.mu.Lock()
	h.fake.fail["loadfile"] = "loading failed"
	h.fake.mu.Unlock()

	err := h.out.Load("http://stream.example/b")
	assert.ErrorContains(t, err, "loading failed")
}

func TestMPVOutputStreamEnd(t *testing.T) {
	h := newMPVHarness(t)
	require.NoError(t, h.out.Load("http://stream.example/a"))
	require.NoError(t, h.out.Play())

	h.fake.event(t, `{"event":"end-file","reason":"error"}`)

	assert.Eventually(t, func() bool {
		return !h.out.Playing() && !h.out.Loaded()
	}, time.Second, 5*time.Millisecond)
}

func TestMPVOutputRestartsAfterCrash(t *testing.T) {
	h := newMPVHarness(t)
	require.NoError(t, h.out.Load("http://stream.example/a"))
	require.NoError(t, h.out.Play())

	require.NoError(t, h.fake.Close())
	require.Eventually(t, func() bool { return !h.out.Loaded() }, time.Second, 5*time.Millisecond)

	require.NoError(t, h.out.Load("http://stream.example/a"))
	require.NoError(t, h.out.Play())
	assert.Equal(t, 2, h.spawns)
	assert.True(t, h.out.Playing())
}

func TestMPVOutputCloseQuits(t *testing.T) {
	h := newMPVHarness(t)
	require.NoError(t, h.out.Load("http://stream.example/a"))
	fake := h.fake

	require.NoError(t, h.out.Close())
	cmds := fake.recorded()
	assert.Equal(t, []any{"quit"}, cmds[len(cmds)-1])
	_, err := os.Stat(h.out.socketPath)
	assert.True(t, os.IsNotExist(err))
}

func TestMPVOutputReplacedConnectionLeavesStateAlone(t *testing.T) {
	h := newMPVHarness(t)
	require.NoError(t, h.out.Load("http://stream.example/a"))
	require.NoError(t, h.out.Play())

	waiting := make(chan ipcMessage, 1)
	h.out.pendingMu.Lock()
	h.out.pending[999] = waiting
	h.out.pendingMu.Unlock()

	// A read loop left over from an earlier connection winds down
	old, peer := net.Pipe()
	done := make(chan struct{})
	go func() {
		h.out.readLoop(old)
		close(done)
	}()
	_, err := peer.Write([]byte(`{"event":"end-file","reason":"eof"}` + "\n"))
	require.NoError(t, err)
	require.NoError(t, peer.Close())

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("read loop did not exit")
	}

	assert.True(t, h.out.Playing())
	assert.True(t, h.out.Loaded())
	select {
	case <-waiting:
		t.Fatal("reply on the live connection was failed")
	default:
	}

	h.out.pendingMu.Lock()
	delete(h.out.pending, 999)
	h.out.pendingMu.Unlock()
	require.NoError(t, h.out.Pause())
}

func TestMPVOutputCloseClearsState(t *testing.T) {
	h := newMPVHarness(t)
	require.NoError(t, h.out.Load("http://stream.example/a"))
	require.NoError(t, h.out.Play())

	require.NoError(t, h.out.Close())
	assert.False(t, h.out.Playing())
	assert.False(t, h.out.Loaded())
}
