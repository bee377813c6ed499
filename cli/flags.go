package main

import (
	"fmt"
	"os"
	"strings"

	gbm "github.com/GreatValueCreamSoda/gogbm"
	"github.com/spf13/pflag"
)

type cliSettings struct {
	devicePath string
	dryRun     bool
	verbose    bool

	width, height uint32
	format        gbm.Format
	flags         gbm.BufferFlags

	workers, lockCycles int
	allocCycles             int
}

var settings cliSettings

var (
	printHelp           *bool
	cliFormat, cliFlags *string
)

var formatNames = map[string]gbm.Format{
	"xrgb8888": gbm.FormatXRGB8888,
	"argb8888": gbm.FormatARGB8888,
}

var flagNamesByText = map[string]gbm.BufferFlags{
	"scanout":   gbm.Scanout,
	"cursor":    gbm.Cursor,
	"rendering": gbm.Rendering,
	"write":     gbm.Write,
	"linear":    gbm.Linear,
}

func init() {
	pflag.CommandLine.SortFlags = false

	// General Flags
	pflag.StringVarP(&settings.devicePath, "device", "d", "/dev/dri/card0", "The DRM device node to open")
	pflag.BoolVar(&settings.dryRun, "dry-run", false, "Use the in-memory test backend instead of libgbm. Enables the front buffer stress")
	pflag.BoolVarP(&settings.verbose, "verbose", "v", false, "Log every native handle creation and destruction")
	printHelp = pflag.BoolP("help", "h", false, "Show this help message")

	// Buffer settings
	var bufferSectionName string = "Buffer Options"
	pflag.Uint32Var(&settings.width, "width", 256, "Width in pixels of the test buffer and surface")
	addFlagToHelpGroup("width", bufferSectionName)

	pflag.Uint32Var(&settings.height, "height", 256, "Height in pixels of the test buffer and surface")
	addFlagToHelpGroup("height", bufferSectionName)

	cliFormat = pflag.String("format", "xrgb8888", "Pixel format [xrgb8888, argb8888]")
	addFlagToHelpGroup("format", bufferSectionName)

	cliFlags = pflag.String("usage", "scanout,rendering", "Comma seperated usage flags [scanout, cursor, rendering, write, linear]")
	addFlagToHelpGroup("usage", bufferSectionName)

	// Stress settings
	var stressSectionName string = "Stress Options"
	pflag.IntVar(&settings.allocCycles, "alloc-cycles", 64, "Number of buffer allocate and destroy cycles per worker")
	addFlagToHelpGroup("alloc-cycles", stressSectionName)

	pflag.IntVar(&settings.workers, "workers", 4, "Number of goroutines running each stress")
	addFlagToHelpGroup("workers", stressSectionName)

	pflag.IntVar(&settings.lockCycles, "lock-cycles", 256, "Number of front buffer lock and release cycles per worker")
	addFlagToHelpGroup("lock-cycles", stressSectionName)
}

// parseSettings parses the command line into settings, exiting on bad input.
func parseSettings() {
	pflag.Parse()

	if *printHelp {
		cliUsage()
		os.Exit(0)
	}

	var ok bool
	settings.format, ok = formatNames[strings.ToLower(*cliFormat)]
	if !ok {
		fatalf("unknown format %q", *cliFormat)
	}

	for _, name := range strings.Split(*cliFlags, ",") {
		name = strings.TrimSpace(strings.ToLower(name))
		if name == "" {
			continue
		}
		flag, ok := flagNamesByText[name]
		if !ok {
			fatalf("unknown usage flag %q", name)
		}
		settings.flags |= flag
	}

	if settings.workers < 1 {
		fatalf("at least 1 worker must be used")
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorText(hiYellow, "error: ")+format+"\n", args...)
	os.Exit(2)
}
