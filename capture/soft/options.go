package soft

import (
	"hash/fnv"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Option configures a Host.
type Option func(*options)

type options struct {
	resolution  int
	fov         float64
	counter     Counter
	light       mgl64.Vec3
	ambient     float64
	environment float64
	palette     func(key string) [3]float64
}

func defaultOptions() options {
	return options{
		resolution:  256,
		fov:         45,
		counter:     CPUCounter{},
		light:       mgl64.Vec3{-0.4, 0.7, -0.6}.Normalize(),
		ambient:     0.3,
		environment: 0.25,
		palette:     keyColor,
	}
}

// WithResolution sets the image size used when a framing carries none.
func WithResolution(size int) Option {
	return func(o *options) {
		if size > 0 {
			o.resolution = size
		}
	}
}

// WithFOV sets the field of view, in degrees, used when a framing carries
// none.
func WithFOV(deg float64) Option {
	return func(o *options) {
		if deg > 0 {
			o.fov = deg
		}
	}
}

// WithCounter replaces the CPU transparent pixel counter.
func WithCounter(c Counter) Option {
	return func(o *options) {
		if c != nil {
			o.counter = c
		}
	}
}

// WithLight sets the direction the stage light shines from, in camera
// space.
func WithLight(dir mgl64.Vec3) Option {
	return func(o *options) {
		if dir.Len() > 0 {
			o.light = dir.Normalize()
		}
	}
}

// WithPalette sets the base color of each item.
func WithPalette(fn func(key string) [3]float64) Option {
	return func(o *options) {
		if fn != nil {
			o.palette = fn
		}
	}
}

// keyColor picks a saturated hue from the item key.
func keyColor(key string) [3]float64 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	hue := float64(h.Sum32()%360) / 60

	const s, v = 0.55, 0.9
	c := v * s
	x := c * (1 - math.Abs(math.Mod(hue, 2)-1))
	var r, g, b float64
	switch int(hue) {
	case 0:
		r, g, b = c, x, 0
	case 1:
		r, g, b = x, c, 0
	case 2:
		r, g, b = 0, c, x
	case 3:
		r, g, b = 0, x, c
	case 4:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	m := v - c
	return [3]float64{r + m, g + m, b + m}
}
