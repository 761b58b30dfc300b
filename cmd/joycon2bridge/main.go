// Command joycon2bridge scans for, connects to, and bridges up to two
// Nintendo Joy-Con 2 controllers' BLE input to the host's keyboard and
// mouse, under a declarative TOML mapping profile.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/2vincentLin/joycon2bridge/internal/backend"
	"github.com/2vincentLin/joycon2bridge/internal/cache"
	"github.com/2vincentLin/joycon2bridge/internal/manager"
	"github.com/2vincentLin/joycon2bridge/internal/mapping"
)

func main() {
	os.Exit(run())
}

func run() int {
	logLevelPtr := flag.String("loglevel", "warn", "log level (panic, fatal, error, warn, info, debug, trace)")
	configPath := flag.String("config", "configs/default.toml", "path to the mapping config file")
	adapterID := flag.String("adapter", "hci0", "BlueZ adapter to use")
	mock := flag.Bool("mock", false, "use a logging mock backend instead of real keyboard/mouse injection")
	flag.Parse()

	level, err := log.ParseLevel(*logLevelPtr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "joycon2bridge: invalid -loglevel %q: %v\n", *logLevelPtr, err)
		return 1
	}
	log.SetLevel(level)

	cfg, err := mapping.LoadFile(*configPath)
	if err != nil {
		log.Errorf("joycon2bridge: config error: %v", err)
		return 1
	}

	kb, mouse, err := buildBackends(*mock)
	if err != nil {
		log.Errorf("joycon2bridge: backend setup failed: %v", err)
		return 1
	}

	cachePath := filepath.Join(filepath.Dir(mustExecutablePath()), "joycon_cache.json")
	c, err := cache.Load(cachePath)
	if err != nil {
		log.Errorf("joycon2bridge: cache load failed: %v", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Infof("joycon2bridge: starting on adapter %s with profile %q", *adapterID, cfg.Profiles[cfg.DefaultProfileIndex()].Name)

	m := manager.New(*adapterID, cfg, c, kb, mouse)
	m.Run(ctx)

	if err := c.Save(); err != nil {
		log.Warnf("joycon2bridge: final cache save failed: %v", err)
	}

	log.Info("joycon2bridge: shut down cleanly")
	return 0
}

func buildBackends(mock bool) (backend.Keyboard, backend.Mouse, error) {
	if mock {
		log.Info("joycon2bridge: using mock keyboard/mouse backend")
		return backend.NewMockKeyboard(), backend.NewMockMouse(), nil
	}

	kb, err := backend.NewUinputKeyboard()
	if err != nil {
		return nil, nil, fmt.Errorf("creating uinput keyboard: %w", err)
	}
	mouse, err := backend.NewUinputMouse()
	if err != nil {
		return nil, nil, fmt.Errorf("creating uinput mouse: %w", err)
	}
	return kb, mouse, nil
}

func mustExecutablePath() string {
	p, err := os.Executable()
	if err != nil {
		return "."
	}
	return p
}
