package bridge

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os/exec"
	"runtime"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/foxwhite25/maabridge/internal/engine"
	"github.com/foxwhite25/maabridge/internal/event"
	"github.com/foxwhite25/maabridge/internal/logging"
	"github.com/foxwhite25/maabridge/internal/resource"
)

// DefaultAdbConfig is the engine's generic adb profile.
const DefaultAdbConfig = "General"

// Builder collects everything needed to bring up a Connection.
type Builder struct {
	eng             engine.Engine
	resourcesPath   string
	address         string
	incrementalPath string
	adbPath         string
	workDir         string
	adbConfig       string
	options         Options
	block           bool
	fs              afero.Fs
	bus             *event.Bus
	log             *zerolog.Logger
	lookPath        func(string) (string, error)
}

// NewBuilder starts a Connection for the device at address using the engine
// resources under resourcesPath.
func NewBuilder(eng engine.Engine, resourcesPath, address string) *Builder {
	return &Builder{
		eng:           eng,
		resourcesPath: resourcesPath,
		address:       address,
		adbConfig:     DefaultAdbConfig,
		options:       DefaultOptions(),
		block:         true,
		fs:            afero.NewOsFs(),
		lookPath:      exec.LookPath,
	}
}

// WithIncrementalPath loads a second resource directory on top of the first,
// typically a client-specific overlay.
func (b *Builder) WithIncrementalPath(path string) *Builder {
	b.incrementalPath = path
	return b
}

// WithAdbPath sets the adb executable. Without it adb is looked up on PATH.
func (b *Builder) WithAdbPath(path string) *Builder {
	b.adbPath = path
	return b
}

// WithWorkDir sets the engine's user directory for logs and caches.
func (b *Builder) WithWorkDir(dir string) *Builder {
	b.workDir = dir
	return b
}

func (b *Builder) WithAdbConfig(config string) *Builder {
	b.adbConfig = config
	return b
}

func (b *Builder) WithOptions(opts Options) *Builder {
	b.options = opts
	return b
}

// WithBlockingConnect controls whether the engine connects synchronously.
func (b *Builder) WithBlockingConnect(block bool) *Builder {
	b.block = block
	return b
}

// WithFs sets the filesystem the item index is read from.
func (b *Builder) WithFs(fs afero.Fs) *Builder {
	b.fs = fs
	return b
}

// WithBus sets where dispatch publishes events. Defaults to event.Default().
func (b *Builder) WithBus(bus *event.Bus) *Builder {
	b.bus = bus
	return b
}

func (b *Builder) WithLogger(log zerolog.Logger) *Builder {
	b.log = &log
	return b
}

func (b *Builder) logger() zerolog.Logger {
	if b.log != nil {
		return *b.log
	}
	return logging.Component("bridge")
}

// Build loads resources, creates the engine instance, applies options and
// connects to the device. On failure everything created so far is released.
func (b *Builder) Build(ctx context.Context) (*Connection, error) {
	log := b.logger()

	if b.workDir != "" {
		if err := b.eng.SetUserDir(b.workDir); err != nil {
			return nil, fmt.Errorf("set user dir %s: %w", b.workDir, err)
		}
	}
	if err := b.eng.LoadResource(b.resourcesPath); err != nil {
		return nil, fmt.Errorf("load resources %s: %w", b.resourcesPath, err)
	}
	items, err := resource.LoadIndex(b.fs, b.resourcesPath)
	if err != nil {
		return nil, err
	}
	if b.incrementalPath != "" {
		if err := b.eng.LoadResource(b.incrementalPath); err != nil {
			return nil, fmt.Errorf("load incremental resources %s: %w", b.incrementalPath, err)
		}
	}
	log.Debug().Int("items", items.Len()).Str("resources", b.resourcesPath).Msg("resources loaded")

	bus := b.bus
	if bus == nil {
		bus = event.Default()
	}

	session := rand.Uint64()
	log = log.With().Uint64("session", session).Logger()

	conn := &Connection{
		eng:      b.eng,
		session:  session,
		target:   b.address,
		table:    NewTable(),
		uuid:     &uuidCell{},
		finished: &atomic.Bool{},
		items:    items,
		bus:      bus,
		log:      log,
	}
	conn.setState(StateResourcesLoaded)

	conn.channel = acquireChannel()
	adapter := NewAdapter(session, conn.channel, log).withFinished(conn.finished)
	inst, err := b.eng.Create(session, adapter.Callback)
	if err != nil {
		releaseChannel(conn.channel)
		return nil, fmt.Errorf("create instance: %w", err)
	}
	conn.instance = inst
	conn.setState(StateHandleCreated)
	runtime.SetFinalizer(conn, finalizeConnection)

	if err := b.connect(ctx, conn); err != nil {
		conn.Destroy()
		return nil, err
	}

	log.Info().Str("address", b.address).Msg("connected")
	return conn, nil
}

func (b *Builder) connect(ctx context.Context, conn *Connection) error {
	for _, opt := range b.options.values() {
		if err := conn.instance.SetOption(opt.key, opt.value); err != nil {
			return fmt.Errorf("%w: %s=%s: %v", ErrOptionRejected, opt.key, opt.value, err)
		}
	}

	conn.dispatch = &dispatcher{
		session:  conn.session,
		ch:       conn.channel,
		table:    conn.table,
		uuid:     conn.uuid,
		finished: conn.finished,
		items:    conn.items,
		bus:      conn.bus,
		log:      conn.log,
		done:     make(chan struct{}),
	}
	conn.dispatch.start()
	conn.setState(StatePolling)

	adbPath := b.adbPath
	if adbPath == "" {
		found, err := b.lookPath("adb")
		if err != nil {
			return fmt.Errorf("%w: %v", ErrAdbNotFound, err)
		}
		adbPath = found
	}

	id, err := conn.instance.AsyncConnect(adbPath, b.address, b.adbConfig, b.block)
	if err != nil {
		return fmt.Errorf("connect %s: %w", b.address, err)
	}
	if id == 0 {
		return fmt.Errorf("connect %s: %w", b.address, ErrConnectRejected)
	}

	ret, err := conn.Watch(id).Wait(ctx)
	if err != nil {
		return fmt.Errorf("connect %s: %w", b.address, err)
	}

	switch v := ret.(type) {
	case bool:
		if !v {
			return fmt.Errorf("connect %s: %w", b.address, ErrConnectFailed)
		}
	default:
		return &ResultError{CallID: id, Value: ret}
	}

	conn.setState(StateConnected)
	return nil
}
