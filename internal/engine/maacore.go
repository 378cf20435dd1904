//go:build maacore

package engine

/*
#cgo LDFLAGS: -lMaaCore
#include <stdint.h>
#include <stdlib.h>
#include "AsstCaller.h"

extern void goAsstCallback(int32_t msg, char* details, void* arg);

static void ASST_CALL asstTrampoline(AsstMsgId msg, const char* details, void* arg) {
	goAsstCallback(msg, (char*)details, arg);
}

static AsstHandle asstCreateWithCallback(uintptr_t arg) {
	return AsstCreateEx(asstTrampoline, (void*)arg);
}
*/
import "C"

import (
	"runtime/cgo"
	"sync"
	"unsafe"
)

type callbackTarget struct {
	token uint64
	cb    Callback
}

//export goAsstCallback
func goAsstCallback(msg C.int32_t, details *C.char, arg unsafe.Pointer) {
	target, ok := cgo.Handle(uintptr(arg)).Value().(*callbackTarget)
	if !ok {
		return
	}
	var payload []byte
	if details != nil {
		payload = C.GoBytes(unsafe.Pointer(details), C.int(C.strlen(details)))
	}
	target.cb(int32(msg), payload, target.token)
}

// Open returns the MaaCore binding.
func Open() (Engine, error) {
	return native{}, nil
}

type native struct{}

func (native) SetUserDir(path string) error {
	cpath := C.CString(path)
	defer C.free(unsafe.Pointer(cpath))
	if C.AsstSetUserDir(cpath) == 0 {
		return Rejected("AsstSetUserDir")
	}
	return nil
}

func (native) LoadResource(path string) error {
	cpath := C.CString(path)
	defer C.free(unsafe.Pointer(cpath))
	if C.AsstLoadResource(cpath) == 0 {
		return Rejected("AsstLoadResource")
	}
	return nil
}

func (native) Version() string {
	return C.GoString(C.AsstGetVersion())
}

func (native) Create(token uint64, cb Callback) (Instance, error) {
	h := cgo.NewHandle(&callbackTarget{token: token, cb: cb})
	handle := C.asstCreateWithCallback(C.uintptr_t(h))
	if handle == nil {
		h.Delete()
		return nil, ErrNullHandle
	}
	return &instance{handle: handle, target: h}, nil
}

type instance struct {
	handle C.AsstHandle
	target cgo.Handle
	once   sync.Once
}

func (i *instance) SetOption(key OptionKey, value string) error {
	cvalue := C.CString(value)
	defer C.free(unsafe.Pointer(cvalue))
	if C.AsstSetInstanceOption(i.handle, C.AsstInstanceOptionKey(key), cvalue) == 0 {
		return Rejected("AsstSetInstanceOption(" + key.String() + ")")
	}
	return nil
}

func (i *instance) AsyncConnect(adbPath, address, config string, block bool) (int32, error) {
	cadb := C.CString(adbPath)
	defer C.free(unsafe.Pointer(cadb))
	caddr := C.CString(address)
	defer C.free(unsafe.Pointer(caddr))
	ccfg := C.CString(config)
	defer C.free(unsafe.Pointer(ccfg))

	var cblock C.AsstBool
	if block {
		cblock = 1
	}
	return int32(C.AsstAsyncConnect(i.handle, cadb, caddr, ccfg, cblock)), nil
}

func (i *instance) AppendTask(kind string, params []byte) (int32, error) {
	ckind := C.CString(kind)
	defer C.free(unsafe.Pointer(ckind))
	cparams := C.CString(string(params))
	defer C.free(unsafe.Pointer(cparams))
	return int32(C.AsstAppendTask(i.handle, ckind, cparams)), nil
}

func (i *instance) Start() error {
	if C.AsstStart(i.handle) == 0 {
		return Rejected("AsstStart")
	}
	return nil
}

func (i *instance) Stop() error {
	if C.AsstStop(i.handle) == 0 {
		return Rejected("AsstStop")
	}
	return nil
}

func (i *instance) Running() bool {
	return C.AsstRunning(i.handle) != 0
}

// Destroy joins the engine threads, so no callback runs after it returns and
// the callback handle can be released.
func (i *instance) Destroy() {
	i.once.Do(func() {
		C.AsstDestroy(i.handle)
		i.target.Delete()
	})
}
