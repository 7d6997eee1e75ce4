package adapter

import (
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/mmcdole/airwave/internal/domain"
)

// Launcher resolves and starts the mpv-compatible player process that
// backs MPVOutput
type Launcher struct {
	command  string   // configured player command, empty to auto-detect
	args     []string // additional arguments for the player
	logger   *slog.Logger
	lookPath func(string) (string, error)
}

// playerConfig defines how to find one IPC-capable player
type playerConfig struct {
	ipcFlag   string              // flag that takes the socket path
	platforms map[string][]string // platform -> paths to try in order
}

// players registry - single source of truth for supported players
var players = map[string]playerConfig{
	"mpv": {
		ipcFlag: "--input-ipc-server=",
		platforms: map[string][]string{
			"darwin":  {"mpv", "/opt/homebrew/bin/mpv", "/usr/local/bin/mpv", "/Applications/mpv.app/Contents/MacOS/mpv"},
			"linux":   {"mpv", "/usr/bin/mpv", "/snap/bin/mpv"},
			"freebsd": {"mpv", "/usr/local/bin/mpv"},
			"windows": {"mpv.exe", "mpv"},
		},
	},
	"mpvnet": {
		ipcFlag: "--input-ipc-server=",
		platforms: map[string][]string{
			"windows": {"mpvnet.exe"},
		},
	},
}

// candidatePlayers defines the preferred player order for each platform
var candidatePlayers = map[string][]string{
	"darwin":  {"mpv"},
	"linux":   {"mpv"},
	"freebsd": {"mpv"},
	"windows": {"mpv", "mpvnet"},
}

// baseArgs keep the player headless and waiting for IPC commands
var baseArgs = []string{"--idle=yes", "--no-video", "--no-terminal", "--really-quiet"}

// NewLauncher creates a launcher for the configured command, or for the
// first detected candidate when command is empty
func NewLauncher(command string, args []string, logger *slog.Logger) *Launcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Launcher{
		command:  command,
		args:     args,
		logger:   logger,
		lookPath: exec.LookPath,
	}
}

// Resolve returns the absolute path of the player binary
func (l *Launcher) Resolve() (string, error) {
	if l.command != "" {
		path, err := l.lookPath(l.command)
		if err != nil {
			return "", fmt.Errorf("%w: configured player %q: %v", domain.ErrPlayerUnavailable, l.command, err)
		}
		l.logger.Debug("using configured player", "command", l.command, "path", path)
		return path, nil
	}

	candidates, ok := candidatePlayers[runtime.GOOS]
	if !ok {
		candidates = candidatePlayers["linux"] // default
	}

	for _, name := range candidates {
		player, exists := players[name]
		if !exists {
			continue
		}
		paths, ok := player.platforms[runtime.GOOS]
		if !ok {
			paths = player.platforms["linux"]
		}
		for _, p := range paths {
			path, err := l.lookPath(p)
			if err == nil {
				l.logger.Info("detected player", "player", name, "path", path)
				return path, nil
			}
			l.logger.Debug("player path not available", "player", name, "path", p, "error", err)
		}
	}

	return "", fmt.Errorf("%w: no mpv-compatible player found in PATH", domain.ErrPlayerUnavailable)
}

// Command builds the player process listening on socket
func (l *Launcher) Command(binary, socket string) *exec.Cmd {
	args := append([]string{}, baseArgs...)
	args = append(args, ipcFlagFor(binary)+socket)
	args = append(args, l.args...)

	l.logger.Info("starting player", "command", binary, "args", args)
	return exec.Command(binary, args...)
}

// ipcFlagFor looks up the IPC flag for a binary, defaulting to mpv's
func ipcFlagFor(binary string) string {
	base := strings.ToLower(filepath.Base(binary))
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if cfg, ok := players[base]; ok && cfg.ipcFlag != "" {
		return cfg.ipcFlag
	}
	return players["mpv"].ipcFlag
}
