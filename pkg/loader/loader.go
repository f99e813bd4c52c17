// SPDX-License-Identifier: Apache-2.0
/*
Copyright (C) 2026 The Falco Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/


// Package loader loads modules built as C shared libraries that export
// the symbols of the pkg/symbols/free package, and exposes the heap of
// such a module as a raw.Heap. Installing that heap in the host makes
// the allocators of the host bind to the loaded module, so memory can be
// allocated by the host and released by the module, or the other way
// round.
package loader

// note: cgo does not support calling function pointers, so we have to
// create wrappers around those to access them from Go code

/*
#cgo linux LDFLAGS: -ldl

#include <dlfcn.h>
#include <stdint.h>
#include <stdlib.h>

typedef struct
{
	void* handle;
	int32_t (*configure)(const char*);
	void (*deconfigure)();
	uintptr_t (*capture)(int);
	void* (*allocate)(uintptr_t, size_t);
	void (*deallocate)(uintptr_t, void*);
	void (*release)(uintptr_t);
	void (*free_mem)(void*);
} module_api;

static const char* __load(const char* path, module_api* a)
{
	a->handle = dlopen(path, RTLD_NOW | RTLD_LOCAL);
	if (!a->handle) return dlerror();
	a->configure = (int32_t (*)(const char*)) dlsym(a->handle, "modbound_configure");
	a->deconfigure = (void (*)()) dlsym(a->handle, "modbound_deconfigure");
	a->capture = (uintptr_t (*)(int)) dlsym(a->handle, "modbound_capture");
	a->allocate = (void* (*)(uintptr_t, size_t)) dlsym(a->handle, "modbound_allocate");
	a->deallocate = (void (*)(uintptr_t, void*)) dlsym(a->handle, "modbound_deallocate");
	a->release = (void (*)(uintptr_t)) dlsym(a->handle, "modbound_release");
	a->free_mem = (void (*)(void*)) dlsym(a->handle, "modbound_free_mem");
	return NULL;
}

static void __unload(module_api* a)
{
	if (a->handle) dlclose(a->handle);
	a->handle = NULL;
}

static int32_t __configure(module_api* a, const char* c)
{
	return a->configure(c);
}

static void __deconfigure(module_api* a)
{
	a->deconfigure();
}

static uintptr_t __capture(module_api* a, int array)
{
	return a->capture(array);
}

static void* __allocate(module_api* a, uintptr_t h, size_t size)
{
	return a->allocate(h, size);
}

static void __deallocate(module_api* a, uintptr_t h, void* p)
{
	a->deallocate(h, p);
}

static void __release(module_api* a, uintptr_t h)
{
	a->release(h);
}

static void __free_mem(module_api* a, void* p)
{
	a->free_mem(p);
}
*/
import "C"
import (
	"errors"
	"fmt"
	"sync"
	"unsafe"

	"github.com/hashicorp/go-multierror"

	"github.com/falcosecurity/modbound-go/pkg/log"
	"github.com/falcosecurity/modbound-go/pkg/raw"
)

var (
	// ErrMissingSymbol is returned when a loaded library does not export
	// all the symbols of a module.
	ErrMissingSymbol = errors.New("missing module symbol")

	// ErrConfigure is returned when a module rejects a configuration.
	ErrConfigure = errors.New("module configuration failed")

	errUnloaded = errors.New("module is unloaded")
)

// Module represents a module loaded from an external shared dynamic
// library.
type Module struct {
	m       sync.Mutex
	path    string
	api     *C.module_api
	handles []C.uintptr_t
}

// Load loads the module present at the given path and checks that it
// exports all the symbols of a module.
func Load(path string) (*Module, error) {
	api := (*C.module_api)(C.calloc(1, C.sizeof_module_api))
	cPath := C.CString(path)
	defer C.free(unsafe.Pointer(cPath))
	if errStr := C.__load(cPath, api); errStr != nil {
		C.free(unsafe.Pointer(api))
		return nil, errors.New(C.GoString(errStr))
	}

	var errs *multierror.Error
	missing := func(ok bool, name string) {
		if !ok {
			errs = multierror.Append(errs, fmt.Errorf("%w: %s", ErrMissingSymbol, name))
		}
	}
	missing(api.configure != nil, "modbound_configure")
	missing(api.deconfigure != nil, "modbound_deconfigure")
	missing(api.capture != nil, "modbound_capture")
	missing(api.allocate != nil, "modbound_allocate")
	missing(api.deallocate != nil, "modbound_deallocate")
	missing(api.release != nil, "modbound_release")
	missing(api.free_mem != nil, "modbound_free_mem")
	if err := errs.ErrorOrNil(); err != nil {
		C.__unload(api)
		C.free(unsafe.Pointer(api))
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}

	log.WithPrefix("loader").WithField("path", path).Debug("loaded module")
	return &Module{path: path, api: api}, nil
}

// Path returns the path the module was loaded from.
func (m *Module) Path() string {
	return m.path
}

// Configure configures the heap of the module with a JSON document, see
// the pkg/config package.
func (m *Module) Configure(document string) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.api == nil {
		return errUnloaded
	}
	cDoc := C.CString(document)
	defer C.free(unsafe.Pointer(cDoc))
	if rc := C.__configure(m.api, cDoc); rc != 0 {
		return fmt.Errorf("%w: %s returned %d", ErrConfigure, m.path, int32(rc))
	}
	return nil
}

// Capture captures a raw pair of the heap currently installed in the
// module. The pair stays valid until the module is unloaded.
func (m *Module) Capture(array bool) (raw.Operators, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.api == nil {
		return raw.Operators{}, errUnloaded
	}
	flag := C.int(0)
	if array {
		flag = 1
	}
	h := C.__capture(m.api, flag)
	m.handles = append(m.handles, h)

	api := m.api
	name := fmt.Sprintf("%s#%d", m.path, uint64(h))
	return raw.NewOperators(name,
		func(size uintptr) (unsafe.Pointer, error) {
			return C.__allocate(api, h, C.size_t(size)), nil
		},
		func(p unsafe.Pointer) {
			C.__deallocate(api, h, p)
		},
	), nil
}

// Heap returns a heap made of the two pairs currently installed in the
// module.
func (m *Module) Heap() (*raw.Heap, error) {
	single, err := m.Capture(false)
	if err != nil {
		return nil, err
	}
	array, err := m.Capture(true)
	if err != nil {
		return nil, err
	}
	return raw.NewHeap(m.path, single, array), nil
}

// FreeMem releases p through the modbound_free_mem symbol of the module.
func (m *Module) FreeMem(p unsafe.Pointer) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.api != nil {
		C.__free_mem(m.api, p)
	}
}

// Unload releases the captured pairs, restores the default heap of the
// module and unloads it. Operators obtained from Capture or Heap must not
// be used afterwards.
//
// Unloading an already-unloaded Module is a no-op.
func (m *Module) Unload() {
	m.m.Lock()
	defer m.m.Unlock()
	if m.api == nil {
		return
	}
	for _, h := range m.handles {
		C.__release(m.api, h)
	}
	m.handles = nil
	C.__deconfigure(m.api)
	C.__unload(m.api)
	C.free(unsafe.Pointer(m.api))
	m.api = nil
	log.WithPrefix("loader").WithField("path", m.path).Debug("unloaded module")
}
