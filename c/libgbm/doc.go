// Package libgbm binds the system libgbm through cgo and registers it with
// the native package under native.DefaultName.
//
// Import it for its side effect:
//
//	import _ "github.com/GreatValueCreamSoda/gogbm/c/libgbm"
//
// The binding is only built on linux with cgo enabled and needs gbm.h and
// libgbm.so at build time (libgbm-dev or mesa-libgbm-devel). Elsewhere the
// package is empty and registers nothing.
package libgbm
