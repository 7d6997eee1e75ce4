package adapter

import (
	"log/slog"
	"sync"

	"github.com/mmcdole/airwave/internal/domain"
)

// NewAudioOutput returns an mpv-backed output, or a NullOutput when no
// player can be found
func NewAudioOutput(launcher *Launcher, logger *slog.Logger) domain.AudioOutput {
	if logger == nil {
		logger = slog.Default()
	}
	if _, err := launcher.Resolve(); err != nil {
		logger.Warn("audio disabled, no player available", "error", err)
		return NewNullOutput(logger)
	}
	return NewMPVOutput(launcher, logger)
}

// NullOutput is an AudioOutput that only tracks state
type NullOutput struct {
	logger *slog.Logger

	mu      sync.Mutex
	url     string
	playing bool
	level   float64
}

// NewNullOutput creates a silent output
func NewNullOutput(logger *slog.Logger) *NullOutput {
	if logger == nil {
		logger = slog.Default()
	}
	return &NullOutput{logger: logger, level: 1}
}

func (o *NullOutput) Load(url string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.logger.Debug("null output load", "url", url)
	o.url = url
	o.playing = false
	return nil
}

func (o *NullOutput) Play() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.playing = o.url != ""
	return nil
}

func (o *NullOutput) Pause() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.playing = false
	return nil
}

func (o *NullOutput) Reset() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.url = ""
	o.playing = false
	return nil
}

func (o *NullOutput) SetVolume(level float64) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.level = level
	return nil
}

func (o *NullOutput) Playing() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.playing
}

func (o *NullOutput) Loaded() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.url != ""
}

func (o *NullOutput) Close() error { return nil }
