package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/mmcdole/airwave/internal/adapter"
	"github.com/mmcdole/airwave/internal/directory/radiobrowser"
	"github.com/mmcdole/airwave/internal/service"
	"github.com/mmcdole/airwave/internal/store"
	"github.com/mmcdole/airwave/internal/tui"
)

// Version is set at build time via -ldflags
var Version = "dev"

func main() {
	var (
		showVersion  bool
		noPersist    bool
		initConfig   bool
		refreshLists bool
	)
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.BoolVar(&noPersist, "no-persist", false, "keep favorites and settings in memory only")
	flag.BoolVar(&initConfig, "init-config", false, "write the default config file and exit")
	flag.BoolVar(&refreshLists, "refresh-lists", false, "drop cached country and language lists")
	flag.Parse()

	if showVersion {
		fmt.Printf("airwave %s\n", Version)
		return
	}

	if initConfig {
		if err := writeDefaultConfig(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(noPersist, refreshLists); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// writeDefaultConfig saves the defaults unless a config file already exists
func writeDefaultConfig() error {
	path := adapter.ConfigFile()
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if err := adapter.SaveConfig(adapter.DefaultConfig()); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}

func run(noPersist, refreshLists bool) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("airwave needs an interactive terminal")
	}

	// Load configuration
	cfg, err := adapter.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Setup logger
	logger, logCloser, err := adapter.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = adapter.NullLogger()
	} else {
		defer logCloser.Close()
	}
	slog.SetDefault(logger)

	logger.Info("starting airwave", "version", Version)

	storageDir := cfg.Storage.Dir
	if noPersist {
		storageDir = ""
	}
	kv, err := store.Open(storageDir)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer kv.Close()

	// Directory client
	client := radiobrowser.NewClient(cfg.Directory.URL, "airwave/"+Version, cfg.Directory.Timeout, logger)
	lists := kv.Lists(client.BaseURL())
	if refreshLists {
		if err := lists.InvalidateAll(); err != nil {
			logger.Warn("failed to clear cached lists", "error", err)
		}
	}

	// Audio output (mpv when available, silent otherwise)
	launcher := adapter.NewLauncher(cfg.Player.Command, cfg.Player.Args, logger)
	output := adapter.NewAudioOutput(launcher, logger)
	defer output.Close()

	// Create services
	playbackSvc := service.NewPlaybackService(output, kv, client, logger)
	favoritesSvc := service.NewFavoritesService(kv, client, playbackSvc, logger)
	searchCtl := service.NewSearchController(client, cfg.Directory.PageSize, logger)
	optionsSvc := service.NewFilterOptionsService(client, lists, cfg.Directory.ListCacheTTL, logger)

	// Create TUI model
	model := tui.NewModel(favoritesSvc, searchCtl, playbackSvc, optionsSvc, tui.Options{
		WideThreshold: cfg.UI.WideThreshold,
		VolumeStep:    cfg.UI.VolumeStep,
	})

	// Run the TUI
	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	logger.Info("starting TUI", "persistent", kv.Persistent())

	if _, err := p.Run(); err != nil {
		logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	logger.Info("shutting down")
	return nil
}
