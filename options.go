package gbm

import (
	"log/slog"

	"github.com/GreatValueCreamSoda/gogbm/native"
)

// DeviceOption configures a Device during NewDevice.
//
// Example:
//
//	// System libgbm, registered by importing the cgo backend
//	import _ "github.com/GreatValueCreamSoda/gogbm/c/libgbm"
//	dev, err := gbm.NewDevice(file)
//
//	// Injected backend, e.g. the in-memory fake in native/nativetest
//	dev, err := gbm.NewDevice(file, gbm.WithLibrary(nativetest.New()))
type DeviceOption func(*deviceOptions)

type deviceOptions struct {
	library native.Library
	backend string
	logger  *slog.Logger
}

// WithLibrary makes the Device, and everything derived from it, call into lib.
// It takes precedence over WithBackend.
func WithLibrary(lib native.Library) DeviceOption {
	return func(o *deviceOptions) { o.library = lib }
}

// WithBackend selects a library registered with native.Register by name.
func WithBackend(name string) DeviceOption {
	return func(o *deviceOptions) { o.backend = name }
}

// WithLogger overrides the package logger for one Device and everything
// derived from it.
func WithLogger(l *slog.Logger) DeviceOption {
	return func(o *deviceOptions) { o.logger = l }
}

// resolve picks the native library and logger the options describe.
func (o deviceOptions) resolve() (native.Library, *slog.Logger, error) {
	logger := o.logger
	if logger == nil {
		logger = Logger()
	}

	switch {
	case o.library != nil:
		return o.library, logger, nil
	case o.backend != "":
		lib, err := native.Get(o.backend)
		return lib, logger, err
	default:
		lib, err := native.Default()
		return lib, logger, err
	}
}
