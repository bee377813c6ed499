package main

import (
	"fmt"
	"log/slog"
	"os"

	gbm "github.com/GreatValueCreamSoda/gogbm"
	_ "github.com/GreatValueCreamSoda/gogbm/c/libgbm"
	"github.com/GreatValueCreamSoda/gogbm/native"
	"github.com/GreatValueCreamSoda/gogbm/native/nativetest"
	"github.com/spf13/pflag"
)

// bufferTag is attached to the sample buffer to show user data surviving
// the trip through the native slot.
type bufferTag struct {
	name  string
	index int
}

func main() {
	parseSettings()

	level := slog.LevelInfo
	if settings.verbose {
		level = slog.LevelDebug
	}
	gbm.SetLogger(slog.New(slog.NewTextHandler(os.Stderr,
		&slog.HandlerOptions{Level: level})))

	devicePath := settings.devicePath
	var opts []gbm.DeviceOption
	if settings.dryRun {
		native.Register(nativetest.BackendName, nativetest.New())
		opts = append(opts, gbm.WithBackend(nativetest.BackendName))
		if !pflag.CommandLine.Changed("device") {
			devicePath = os.DevNull
		}
	}

	file, err := os.OpenFile(devicePath, os.O_RDWR, 0)
	if err != nil {
		panic(err)
	}
	defer file.Close()

	device, err := gbm.NewDevice(file, opts...)
	if err != nil {
		panic(err)
	}
	defer device.Close()

	printDevice(device)

	if err := sampleBuffer(device); err != nil {
		panic(err)
	}

	allocTimes, err := stressBuffers(device)
	if err != nil {
		panic(err)
	}

	timings := map[string][]float64{"buffer allocate": allocTimes}

	if settings.dryRun {
		lockWaits, err := stressFrontBuffer(device)
		if err != nil {
			panic(err)
		}
		timings["front buffer wait"] = lockWaits
	} else {
		fmt.Fprintln(os.Stderr, "Skipping the front buffer stress: a real "+
			"surface has nothing to lock until EGL renders into it. Use "+
			"--dry-run to exercise it.")
	}

	printSummary(timings)
}

func printDevice(device *gbm.Device) {
	fmt.Fprintln(os.Stderr, "Device")
	fmt.Fprintln(os.Stderr, "======")
	fmt.Fprintf(os.Stderr, "  file    : %s\n", device.File().Name())
	fmt.Fprintf(os.Stderr, "  backend : %s\n", device.BackendName())
	fmt.Fprintf(os.Stderr, "  libs    : %v\n", native.List())
	fmt.Fprintln(os.Stderr)

	fmt.Fprintln(os.Stderr, "Format support")
	fmt.Fprintln(os.Stderr, "==============")
	for _, format := range []gbm.Format{gbm.FormatXRGB8888,
		gbm.FormatARGB8888} {
		for _, flags := range []gbm.BufferFlags{gbm.Scanout, gbm.Cursor,
			gbm.Rendering, gbm.Write, gbm.Linear, settings.flags} {
			fmt.Fprintf(os.Stderr, "  %-8s %-24s : %t\n", format, flags,
				device.IsFormatSupported(format, flags))
		}
	}
	fmt.Fprintln(os.Stderr)
}

// sampleBuffer allocates one buffer with the configured settings, prints
// its layout and round trips a value through its user data.
func sampleBuffer(device *gbm.Device) error {
	buffer, err := device.Buffer(settings.width, settings.height,
		settings.format, settings.flags)
	if err != nil {
		return err
	}
	defer buffer.Close()

	width, height := buffer.Size()
	fmt.Fprintln(os.Stderr, "Buffer")
	fmt.Fprintln(os.Stderr, "======")
	fmt.Fprintf(os.Stderr, "  size    : %dx%d\n", width, height)
	fmt.Fprintf(os.Stderr, "  stride  : %d\n", buffer.Stride())
	fmt.Fprintf(os.Stderr, "  format  : %s (%v)\n", buffer.Format(),
		buffer.Format().TextureFormat())
	fmt.Fprintf(os.Stderr, "  usage   : %s (%v)\n", settings.flags,
		settings.flags.TextureUsage())
	fmt.Fprintf(os.Stderr, "  handle  : %#x\n", buffer.Handle())

	gbm.SetUserData(buffer, &bufferTag{name: "sample", index: 1})
	tag, ok := gbm.UserData[bufferTag](buffer)
	if !ok || tag.name != "sample" {
		return fmt.Errorf("user data did not round trip")
	}
	fmt.Fprintf(os.Stderr, "  tag     : %s/%d\n", tag.name, tag.index)
	fmt.Fprintln(os.Stderr)

	return nil
}
