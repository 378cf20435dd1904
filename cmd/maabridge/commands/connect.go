package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/foxwhite25/maabridge/internal/bridge"
	"github.com/foxwhite25/maabridge/internal/config"
	"github.com/foxwhite25/maabridge/internal/engine"
	"github.com/foxwhite25/maabridge/internal/event"
	"github.com/foxwhite25/maabridge/internal/logging"
)

// connectTimeout bounds engine startup and the device connection.
const connectTimeout = 2 * time.Minute

// Shared connection flags
var (
	flagResources string
	flagAddress   string
	flagAdbPath   string
	flagAdbConfig string
	flagTouchMode string
)

// mergeFlags applies the connection flags over cfg.
func mergeFlags(cfg *config.Config) config.Config {
	merged := *cfg
	if flagResources != "" {
		merged.Resources = flagResources
	}
	if flagAddress != "" {
		merged.Device.Address = flagAddress
	}
	if flagAdbPath != "" {
		merged.Device.AdbPath = flagAdbPath
	}
	if flagAdbConfig != "" {
		merged.Device.AdbConfig = flagAdbConfig
	}
	if flagTouchMode != "" {
		merged.Options.TouchMode = flagTouchMode
	}
	return merged
}

// newBuilder prepares a bridge.Builder from the configuration file and flags.
// The engine work directory is created when missing; the engine refuses a
// user directory that does not exist.
func newBuilder(eng engine.Engine, cfg *config.Config, bus *event.Bus) (*bridge.Builder, error) {
	merged := mergeFlags(cfg)
	if err := merged.Validate(); err != nil {
		return nil, err
	}

	opts := bridge.DefaultOptions()
	if merged.Options.TouchMode != "" {
		mode, err := bridge.ParseTouchMode(merged.Options.TouchMode)
		if err != nil {
			return nil, err
		}
		opts.TouchMode = mode
	}
	opts.DeploymentWithPause = config.Bool(merged.Options.DeploymentWithPause)
	opts.AdbLiteEnabled = config.Bool(merged.Options.AdbLiteEnabled)
	opts.KillAdbOnExit = config.Bool(merged.Options.KillAdbOnExit)

	workDir := merged.WorkDir
	if workDir == "" {
		paths := config.GetPaths()
		if err := paths.EnsurePaths(); err != nil {
			return nil, fmt.Errorf("creating state directories: %w", err)
		}
		workDir = paths.WorkDir()
	}
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating work directory: %w", err)
	}

	b := bridge.NewBuilder(eng, merged.Resources, merged.Device.Address).
		WithIncrementalPath(merged.Incremental).
		WithAdbPath(merged.Device.AdbPath).
		WithWorkDir(workDir).
		WithOptions(opts).
		WithBus(bus).
		WithLogger(logging.Component("bridge"))
	if merged.Device.AdbConfig != "" {
		b = b.WithAdbConfig(merged.Device.AdbConfig)
	}
	return b, nil
}

// connect opens the native engine and connects to the configured device.
func connect(ctx context.Context, bus *event.Bus) (*bridge.Connection, error) {
	eng, err := engine.Open()
	if err != nil {
		return nil, err
	}
	b, err := newBuilder(eng, appConfig, bus)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	conn, err := b.Build(ctx)
	if err != nil {
		return nil, fmt.Errorf("connecting: %w", err)
	}
	return conn, nil
}
