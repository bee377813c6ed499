package gbm

import (
	"fmt"
	"strings"

	"github.com/gogpu/gputypes"
)

// Format is a DRM fourcc pixel format code.
type Format uint32

const (
	// FormatXRGB8888 ('XR24') is 32-bit little-endian [B, G, R, X] with an
	// ignored padding byte.
	FormatXRGB8888 Format = 0x34325258
	// FormatARGB8888 ('AR24') is 32-bit little-endian [B, G, R, A].
	FormatARGB8888 Format = 0x34325241
)

func (f Format) String() string {
	switch f {
	case FormatXRGB8888:
		return "XRGB8888"
	case FormatARGB8888:
		return "ARGB8888"
	}
	return fmt.Sprintf("Format(%#08x)", uint32(f))
}

// HasAlpha reports whether the fourth channel carries alpha.
func (f Format) HasAlpha() bool { return f == FormatARGB8888 }

// BytesPerPixel returns the size of one pixel, or 0 for unknown formats.
func (f Format) BytesPerPixel() int {
	switch f {
	case FormatXRGB8888, FormatARGB8888:
		return 4
	}
	return 0
}

// TextureFormat returns the GPU texture format with the same memory layout.
// Both supported formats are BGRA byte order in memory. Unknown formats map
// to TextureFormatUndefined.
func (f Format) TextureFormat() gputypes.TextureFormat {
	switch f {
	case FormatXRGB8888, FormatARGB8888:
		return gputypes.TextureFormatBGRA8Unorm
	}
	return gputypes.TextureFormatUndefined
}

// BufferFlags describes how a buffer is going to be used. Flags combine
// freely.
type BufferFlags uint32

const (
	// Scanout buffers can be presented on screen by a CRTC.
	Scanout BufferFlags = 1 << iota
	// Cursor buffers can be used as a hardware cursor.
	Cursor
	// Rendering buffers can be used as a render target.
	Rendering
	// Write buffers can be written to from the CPU.
	Write
	// Linear buffers use a linear, untiled memory layout.
	Linear
)

var flagNames = []struct {
	flag BufferFlags
	name string
}{
	{Scanout, "scanout"},
	{Cursor, "cursor"},
	{Rendering, "rendering"},
	{Write, "write"},
	{Linear, "linear"},
}

// Has reports whether every flag in other is set in f.
func (f BufferFlags) Has(other BufferFlags) bool { return f&other == other }

func (f BufferFlags) String() string {
	if f == 0 {
		return "none"
	}

	var parts []string
	rest := f
	for _, fn := range flagNames {
		if f&fn.flag != 0 {
			parts = append(parts, fn.name)
			rest &^= fn.flag
		}
	}
	if rest != 0 {
		parts = append(parts, fmt.Sprintf("%#x", uint32(rest)))
	}
	return strings.Join(parts, "|")
}

// TextureUsage maps the flags onto the closest GPU texture usage bits, for
// handing buffers to a gogpu renderer. Scanout buffers are read by the
// display engine, which is closest to a copy source. Cursor and Linear have
// no texture usage equivalent and are dropped.
func (f BufferFlags) TextureUsage() gputypes.TextureUsage {
	var usage gputypes.TextureUsage
	if f&Rendering != 0 {
		usage |= gputypes.TextureUsageRenderAttachment |
			gputypes.TextureUsageTextureBinding
	}
	if f&Write != 0 {
		usage |= gputypes.TextureUsageCopyDst
	}
	if f&Scanout != 0 {
		usage |= gputypes.TextureUsageCopySrc
	}
	return usage
}
