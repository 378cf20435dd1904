// Package enginetest provides an in-process engine for tests. It records every
// call and lets tests emit notifications as if they came from the engine thread.
package enginetest

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/foxwhite25/maabridge/internal/engine"
)

// AppendedTask is a task recorded by Instance.AppendTask.
type AppendedTask struct {
	ID     int32
	Kind   string
	Params json.RawMessage
}

// Engine is a scriptable engine.Engine. The zero value is not usable; call New.
type Engine struct {
	mu sync.Mutex

	// Script, read when the corresponding call happens.
	RejectLoad    map[string]bool
	RejectUserDir bool
	NullHandle    bool
	RejectOption  map[engine.OptionKey]bool

	// ConnectID is returned by AsyncConnect. Zero means refusal.
	ConnectID int32
	// ConnectResult is emitted as details.ret in the AsyncCallInfo
	// notification. A nil value suppresses the notification.
	ConnectResult any
	// ConnectAsync delivers the AsyncCallInfo from a separate goroutine
	// instead of from inside AsyncConnect.
	ConnectAsync bool

	RejectAppend bool
	RejectStart  bool

	// DestroyEmits is how many notifications Destroy emits before it
	// returns, as the engine does while joining its threads.
	DestroyEmits int

	version   string
	loaded    []string
	userDir   string
	instances []*Instance
}

// New returns an engine that connects successfully with async call id 1.
func New() *Engine {
	return &Engine{
		RejectLoad:    make(map[string]bool),
		RejectOption:  make(map[engine.OptionKey]bool),
		ConnectID:     1,
		ConnectResult: true,
		version:       "v4.10.0-test",
	}
}

var _ engine.Engine = (*Engine)(nil)

func (e *Engine) SetUserDir(path string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.RejectUserDir {
		return engine.Rejected("AsstSetUserDir")
	}
	e.userDir = path
	return nil
}

func (e *Engine) LoadResource(path string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.RejectLoad[path] {
		return engine.Rejected("AsstLoadResource")
	}
	e.loaded = append(e.loaded, path)
	return nil
}

func (e *Engine) Version() string {
	return e.version
}

func (e *Engine) Create(token uint64, cb engine.Callback) (engine.Instance, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.NullHandle {
		return nil, engine.ErrNullHandle
	}
	inst := &Instance{engine: e, token: token, cb: cb}
	e.instances = append(e.instances, inst)
	return inst, nil
}

// Loaded returns the resource paths loaded so far, in order.
func (e *Engine) Loaded() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.loaded...)
}

// UserDir returns the last user dir set.
func (e *Engine) UserDir() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.userDir
}

// Instances returns every instance created so far.
func (e *Engine) Instances() []*Instance {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*Instance(nil), e.instances...)
}

// Last returns the most recently created instance, or nil.
func (e *Engine) Last() *Instance {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.instances) == 0 {
		return nil
	}
	return e.instances[len(e.instances)-1]
}

// OptionCall is a recorded SetOption call.
type OptionCall struct {
	Key   engine.OptionKey
	Value string
}

// ConnectCall is a recorded AsyncConnect call.
type ConnectCall struct {
	AdbPath string
	Address string
	Config  string
	Block   bool
}

// Instance is the fake engine.Instance.
type Instance struct {
	engine *Engine
	token  uint64
	cb     engine.Callback

	mu        sync.Mutex
	options   []OptionCall
	connects  []ConnectCall
	appended  []AppendedTask
	nextTask  int32
	running   bool
	destroyed int
	wg        sync.WaitGroup
}

var _ engine.Instance = (*Instance)(nil)

// Token returns the user token the instance was created with.
func (i *Instance) Token() uint64 { return i.token }

// Emit invokes the registered callback as the engine thread would.
func (i *Instance) Emit(kind engine.MessageKind, details string) {
	i.cb(int32(kind), []byte(details), i.token)
}

// EmitRaw invokes the callback with an arbitrary numeric kind.
func (i *Instance) EmitRaw(kind int32, details []byte) {
	i.cb(kind, details, i.token)
}

func (i *Instance) SetOption(key engine.OptionKey, value string) error {
	i.engine.mu.Lock()
	reject := i.engine.RejectOption[key]
	i.engine.mu.Unlock()
	if reject {
		return engine.Rejected("AsstSetInstanceOption(" + key.String() + ")")
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	i.options = append(i.options, OptionCall{Key: key, Value: value})
	return nil
}

func (i *Instance) AsyncConnect(adbPath, address, config string, block bool) (int32, error) {
	i.engine.mu.Lock()
	id := i.engine.ConnectID
	result := i.engine.ConnectResult
	async := i.engine.ConnectAsync
	i.engine.mu.Unlock()

	i.mu.Lock()
	i.connects = append(i.connects, ConnectCall{AdbPath: adbPath, Address: address, Config: config, Block: block})
	i.mu.Unlock()

	if id == 0 || result == nil {
		return id, nil
	}

	details, err := json.Marshal(map[string]any{
		"uuid":          "",
		"what":          "Connect",
		"async_call_id": id,
		"details":       map[string]any{"ret": result, "cost": 12},
	})
	if err != nil {
		return 0, fmt.Errorf("marshal async call info: %w", err)
	}

	connected := fmt.Sprintf(`{"what":"Connected","why":"","uuid":"","details":{"adb":%q,"address":%q,"config":%q}}`,
		adbPath, address, config)
	emit := func() {
		i.cb(int32(engine.ConnectionInfo), []byte(connected), i.token)
		i.cb(int32(engine.AsyncCallInfo), details, i.token)
	}
	if async {
		i.wg.Add(1)
		go func() {
			defer i.wg.Done()
			emit()
		}()
	} else {
		emit()
	}
	return id, nil
}

func (i *Instance) AppendTask(kind string, params []byte) (int32, error) {
	i.engine.mu.Lock()
	reject := i.engine.RejectAppend
	i.engine.mu.Unlock()
	if reject {
		return 0, nil
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	i.nextTask++
	i.appended = append(i.appended, AppendedTask{
		ID:     i.nextTask,
		Kind:   kind,
		Params: append(json.RawMessage(nil), params...),
	})
	return i.nextTask, nil
}

func (i *Instance) Start() error {
	i.engine.mu.Lock()
	reject := i.engine.RejectStart
	i.engine.mu.Unlock()
	if reject {
		return engine.Rejected("AsstStart")
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	i.running = true
	return nil
}

func (i *Instance) Stop() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.running = false
	return nil
}

func (i *Instance) Running() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.running
}

// SetRunning changes what Running reports.
func (i *Instance) SetRunning(running bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.running = running
}

func (i *Instance) Destroy() {
	i.wg.Wait()

	i.engine.mu.Lock()
	emits := i.engine.DestroyEmits
	i.engine.mu.Unlock()
	for n := 0; n < emits; n++ {
		i.cb(int32(engine.SubTaskCompleted), []byte(`{}`), i.token)
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	i.destroyed++
	i.running = false
}

// Destroyed returns how many times Destroy was called.
func (i *Instance) Destroyed() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.destroyed
}

// Options returns the recorded SetOption calls in order.
func (i *Instance) Options() []OptionCall {
	i.mu.Lock()
	defer i.mu.Unlock()
	return append([]OptionCall(nil), i.options...)
}

// Connects returns the recorded AsyncConnect calls.
func (i *Instance) Connects() []ConnectCall {
	i.mu.Lock()
	defer i.mu.Unlock()
	return append([]ConnectCall(nil), i.connects...)
}

// Appended returns the recorded tasks.
func (i *Instance) Appended() []AppendedTask {
	i.mu.Lock()
	defer i.mu.Unlock()
	return append([]AppendedTask(nil), i.appended...)
}
