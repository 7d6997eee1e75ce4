package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/mmcdole/airwave/internal/domain"
)

const (
	// DefaultVolume is used when nothing was persisted
	DefaultVolume = 100

	// NoSelectionName is shown when no station is selected
	NoSelectionName = "No station selected"
)

// PlaybackService owns the shared audio output and the current selection.
// All mutations of the output happen under mu.
type PlaybackService struct {
	output domain.AudioOutput
	kv     domain.KeyValueStore
	clicks domain.ClickReporter
	logger *slog.Logger

	mu     sync.Mutex
	url    string
	name   string
	volume int
}

// NewPlaybackService creates the service and restores the persisted
// selection and volume. No audio is started.
func NewPlaybackService(
	output domain.AudioOutput,
	kv domain.KeyValueStore,
	clicks domain.ClickReporter,
	logger *slog.Logger,
) *PlaybackService {
	if logger == nil {
		logger = slog.Default()
	}

	s := &PlaybackService{
		output: output,
		kv:     kv,
		clicks: clicks,
		logger: logger,
		volume: DefaultVolume,
	}

	s.url, _ = kv.Get(domain.KeyCurrentURL)
	s.name, _ = kv.Get(domain.KeyCurrentName)
	if raw, ok := kv.Get(domain.KeyVolume); ok {
		if v, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil {
			s.volume = clampVolume(v)
		} else {
			logger.Warn("ignoring invalid persisted volume", "value", raw)
		}
	}

	if err := output.SetVolume(volumeLevel(s.volume)); err != nil {
		logger.Warn("failed to apply restored volume", "error", err)
	}

	logger.Debug("playback restored", "url", s.url, "name", s.name, "volume", s.volume)
	return s
}

// Play selects url, persists the selection and starts playing it
func (s *PlaybackService) Play(ctx context.Context, url, name string) error {
	url = strings.TrimSpace(url)
	if url == "" {
		return fmt.Errorf("play %q: %w", name, domain.ErrNoCurrentStation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.url = url
	s.name = name

	var errs []error
	if err := s.kv.Set(domain.KeyCurrentURL, url); err != nil {
		errs = append(errs, fmt.Errorf("saving current url: %w", err))
	}
	if err := s.kv.Set(domain.KeyCurrentName, name); err != nil {
		errs = append(errs, fmt.Errorf("saving current name: %w", err))
	}

	s.logger.Info("starting playback", "name", name, "url", url)

	if err := s.output.Load(url); err != nil {
		s.logger.Error("failed to load stream", "error", err, "url", url)
		return errors.Join(append(errs, fmt.Errorf("loading stream: %w", err))...)
	}
	if err := s.output.Play(); err != nil {
		s.logger.Error("failed to start playback", "error", err, "url", url)
		errs = append(errs, fmt.Errorf("starting playback: %w", err))
	}
	return errors.Join(errs...)
}

// PlayStation plays a directory station and reports the play to the
// directory's click counter
func (s *PlaybackService) PlayStation(ctx context.Context, station domain.Station) error {
	if err := s.Play(ctx, station.StreamURL(), station.DisplayName()); err != nil {
		return err
	}
	if s.clicks != nil && station.ID != "" {
		s.clicks.ReportClick(ctx, station.ID)
	}
	return nil
}

// Stop clears the selection from memory and storage and silences the output
func (s *PlaybackService) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logger.Info("stopping playback", "name", s.name)
	s.url = ""
	s.name = ""

	var errs []error
	if err := s.kv.Delete(domain.KeyCurrentURL); err != nil {
		errs = append(errs, fmt.Errorf("clearing current url: %w", err))
	}
	if err := s.kv.Delete(domain.KeyCurrentName); err != nil {
		errs = append(errs, fmt.Errorf("clearing current name: %w", err))
	}
	if err := s.output.Pause(); err != nil {
		errs = append(errs, fmt.Errorf("pausing output: %w", err))
	}
	if err := s.output.Reset(); err != nil {
		errs = append(errs, fmt.Errorf("resetting output: %w", err))
	}
	return errors.Join(errs...)
}

// TogglePause pauses a playing stream or resumes the current selection.
// A selection restored from storage is loaded on first resume.
// Without a selection it does nothing.
func (s *PlaybackService) TogglePause() (playing bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.url == "" {
		return false, nil
	}

	if s.output.Playing() {
		if err := s.output.Pause(); err != nil {
			return true, fmt.Errorf("pausing output: %w", err)
		}
		s.logger.Debug("playback paused", "name", s.name)
		return false, nil
	}

	if !s.output.Loaded() {
		if err := s.output.Load(s.url); err != nil {
			return false, fmt.Errorf("loading stream: %w", err)
		}
	}
	if err := s.output.Play(); err != nil {
		return false, fmt.Errorf("starting playback: %w", err)
	}
	s.logger.Debug("playback resumed", "name", s.name)
	return true, nil
}

// SetVolume clamps v to 0-100, applies it and persists it
func (s *PlaybackService) SetVolume(v int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setVolumeLocked(v)
}

// AdjustVolume moves the volume by delta and returns the new value
func (s *PlaybackService) AdjustVolume(delta int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.setVolumeLocked(s.volume + delta)
	return s.volume, err
}

func (s *PlaybackService) setVolumeLocked(v int) error {
	s.volume = clampVolume(v)
	if err := s.output.SetVolume(volumeLevel(s.volume)); err != nil {
		return fmt.Errorf("setting volume: %w", err)
	}
	if err := s.kv.Set(domain.KeyVolume, strconv.Itoa(s.volume)); err != nil {
		return fmt.Errorf("saving volume: %w", err)
	}
	return nil
}

func clampVolume(v int) int {
	return max(0, min(100, v))
}

// volumeLevel maps 0-100 onto the output's 0.0-1.0 range
func volumeLevel(v int) float64 {
	return float64(v) / 100
}

// Volume returns the current volume (0-100)
func (s *PlaybackService) Volume() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.volume
}

// VolumeTier returns the icon band of the current volume
func (s *PlaybackService) VolumeTier() domain.VolumeTier {
	return domain.TierForVolume(s.Volume())
}

// Current returns the selected stream, if any
func (s *PlaybackService) Current() (url, name string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.url, s.name, s.url != ""
}

// CurrentURL returns the selected stream URL or ""
func (s *PlaybackService) CurrentURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.url
}

// IsCurrent returns true if url is the selected stream
func (s *PlaybackService) IsCurrent(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return url != "" && s.url == url
}

// IsPlaying returns true if audio is playing
func (s *PlaybackService) IsPlaying() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.url != "" && s.output.Playing()
}

// DisplayName returns the selected station's name
func (s *PlaybackService) DisplayName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.url == "":
		return NoSelectionName
	case s.name == "":
		return s.url
	default:
		return s.name
	}
}
