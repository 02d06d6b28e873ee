package soft

import (
	"image"
	"sync/atomic"

	"github.com/gogpu/iconstage"
)

// Counting is a transparent pixel count in progress.
type Counting interface {
	iconstage.Fence
	iconstage.Readback
	// Release frees the resources of the count.
	Release()
}

// Counter starts counting the fully transparent pixels of an image.
// *gpucount.Counter implements it.
type Counter interface {
	Start(img *image.RGBA) (Counting, error)
}

// CPUCounter counts on a goroutine.
type CPUCounter struct{}

// Start implements Counter.
func (CPUCounter) Start(img *image.RGBA) (Counting, error) {
	c := &cpuCount{}
	go func() {
		c.n.Store(CountTransparent(img))
		c.done.Store(true)
	}()
	return c, nil
}

type cpuCount struct {
	n    atomic.Uint32
	done atomic.Bool
}

// Passed is always true; the pixels were copied synchronously.
func (c *cpuCount) Passed() bool { return true }

func (c *cpuCount) TransparentCount() (uint32, bool) {
	if !c.done.Load() {
		return 0, false
	}
	return c.n.Load(), true
}

func (c *cpuCount) Release() {}

// CountTransparent returns the number of pixels of img with zero alpha.
func CountTransparent(img *image.RGBA) uint32 {
	var n uint32
	b := img.Rect
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[img.PixOffset(b.Min.X, y):img.PixOffset(b.Max.X, y)]
		for i := 3; i < len(row); i += 4 {
			if row[i] == 0 {
				n++
			}
		}
	}
	return n
}

// frame is a captured image and its count.
type frame struct {
	img      *image.RGBA
	counting Counting
}

func (f *frame) Fence() iconstage.Fence {
	if f.counting == nil {
		return iconstage.PassedFence
	}
	return f.counting
}

func (f *frame) Count() iconstage.Readback {
	if f.counting == nil {
		return iconstage.NoReadback
	}
	return f.counting
}

func (f *frame) Size() (int, int) {
	if f.img == nil {
		return 0, 0
	}
	return f.img.Rect.Dx(), f.img.Rect.Dy()
}

func (f *frame) Image() image.Image {
	if f.img == nil {
		return nil
	}
	return f.img
}

func (f *frame) Release() {
	if f.counting != nil {
		f.counting.Release()
	}
	f.img = nil
}
