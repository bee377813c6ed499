package main

import (
	"errors"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	gbm "github.com/GreatValueCreamSoda/gogbm"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"
)

func newBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
	)
}

// stressBuffers allocates and destroys buffers from every worker at once and
// returns how long each allocation took in milliseconds.
func stressBuffers(device *gbm.Device) ([]float64, error) {
	bar := newBar(settings.workers*settings.allocCycles, "Allocating buffers")
	defer bar.Finish()

	results := make([][]float64, settings.workers)
	var group errgroup.Group

	for worker := range settings.workers {
		group.Go(func() error {
			times := make([]float64, 0, settings.allocCycles)
			for i := range settings.allocCycles {
				start := time.Now()
				buffer, err := device.Buffer(settings.width, settings.height,
					settings.format, settings.flags)
				if err != nil {
					return err
				}
				times = append(times, milliseconds(time.Since(start)))

				gbm.SetUserData(buffer, &bufferTag{name: "stress", index: i})
				if err := buffer.Close(); err != nil {
					return err
				}
				bar.Add(1)
			}
			results[worker] = times
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}
	fmt.Fprintln(os.Stderr)
	return flatten(results), nil
}

// stressFrontBuffer makes every worker fight over one surface's front buffer
// and returns how long each LockFrontBuffer waited in milliseconds.
func stressFrontBuffer(device *gbm.Device) ([]float64, error) {
	surface, err := device.Surface(settings.width, settings.height,
		settings.format, settings.flags)
	if err != nil {
		return nil, err
	}

	bar := newBar(settings.workers*settings.lockCycles, "Locking front buffer")
	defer bar.Finish()

	var busy atomic.Int64
	results := make([][]float64, settings.workers)
	var group errgroup.Group

	for worker := range settings.workers {
		group.Go(func() error {
			waits := make([]float64, 0, settings.lockCycles)
			for range settings.lockCycles {
				front, err := surface.TryLockFrontBuffer()
				if errors.Is(err, gbm.ErrFrontBufferBusy) {
					busy.Add(1)
					start := time.Now()
					front, err = surface.LockFrontBuffer()
					waits = append(waits, milliseconds(time.Since(start)))
				} else {
					waits = append(waits, 0)
				}
				if err != nil {
					return err
				}

				if err := front.Close(); err != nil {
					return err
				}
				bar.Add(1)
			}
			results[worker] = waits
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		surface.Close()
		return nil, err
	}
	fmt.Fprintln(os.Stderr)
	fmt.Fprintf(os.Stderr, "Front buffer was busy on %d of %d attempts\n",
		busy.Load(), settings.workers*settings.lockCycles)

	return flatten(results), surface.Close()
}

func milliseconds(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

func flatten(results [][]float64) []float64 {
	var all []float64
	for _, r := range results {
		all = append(all, r...)
	}
	return all
}
