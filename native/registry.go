package native

import (
	"errors"
	"sort"
	"sync"
)

var (
	ErrNoLibrary      = errors.New("no native gbm library registered. import a backend such as c/libgbm")
	ErrUnknownLibrary = errors.New("no native gbm library registered under that name")
)

// DefaultName is the name the cgo libgbm binding registers itself under.
// Default prefers it over any other registered library.
const DefaultName = "libgbm"

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Library)
)

// Register makes lib available under name. Backends call it from init.
// Registering a name twice replaces the previous library.
func Register(name string, lib Library) {
	if lib == nil {
		panic("native: Register called with a nil Library for " + name)
	}

	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = lib
}

// Unregister removes the library registered under name, if any.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(registry, name)
}

// Get returns the library registered under name.
func Get(name string) (Library, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	lib, ok := registry[name]
	if !ok {
		return nil, ErrUnknownLibrary
	}
	return lib, nil
}

// Default returns the library registered as DefaultName, or the first
// registered library by name when DefaultName is absent.
func Default() (Library, error) {
	if lib, err := Get(DefaultName); err == nil {
		return lib, nil
	}

	names := List()
	if len(names) == 0 {
		return nil, ErrNoLibrary
	}
	return Get(names[0])
}

// List returns the names of all registered libraries, sorted.
func List() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
