package iconstage

// Option configures a Stage during creation.
//
// Example:
//
//	st, err := iconstage.New(sampler, rig,
//	    iconstage.WithThreshold(0.95),
//	    iconstage.WithResolution(128, 16),
//	    iconstage.WithListFilter(iconstage.NewListFilter(iconstage.ListBlack, "Vanilla/Vanilla/Key")),
//	)
type Option func(*options)

// options holds optional configuration for Stage creation.
type options struct {
	threshold     float64
	resolution    int
	margin        int
	iterations    int
	orthographic  bool
	nearClip      float64
	farClip       float64
	filter        ListFilter
	overrides     Overrides
	placeholders  *Placeholders
	sink          IconSink
	clock         FrameClock
	dumper        Dumper
	meshCacheSize int
	resultTimeout int64
}

// Defaults applied by New.
const (
	DefaultThreshold     = 0.98
	DefaultResolution    = 256
	DefaultMargin        = 32
	DefaultIterations    = 1
	DefaultNearClip      = 0.1
	DefaultFarClip       = 10
	DefaultMeshCacheSize = 256
	DefaultSpawnDelay    = 2
)

// defaultOptions returns the default stage options.
func defaultOptions() options {
	return options{
		threshold:     DefaultThreshold,
		resolution:    DefaultResolution,
		margin:        DefaultMargin,
		iterations:    DefaultIterations,
		nearClip:      DefaultNearClip,
		farClip:       DefaultFarClip,
		filter:        NewListFilter(ListBlack),
		meshCacheSize: DefaultMeshCacheSize,
	}
}

// WithThreshold sets the transparent pixel ratio at or above which a render
// is rejected as empty.
func WithThreshold(ratio float64) Option {
	return func(o *options) {
		o.threshold = ratio
	}
}

// WithResolution sets the square capture size and the transparent margin
// kept around the object, both in pixels.
func WithResolution(size, margin int) Option {
	return func(o *options) {
		o.resolution = size
		o.margin = margin
	}
}

// WithIterations sets how many times the perspective camera is re-aimed
// before the field of view is solved.
func WithIterations(n int) Option {
	return func(o *options) {
		o.iterations = n
	}
}

// WithOrthographic frames objects for an orthographic camera.
func WithOrthographic(enabled bool) Option {
	return func(o *options) {
		o.orthographic = enabled
	}
}

// WithClipPlanes sets the camera near and far planes.
func WithClipPlanes(near, far float64) Option {
	return func(o *options) {
		o.nearClip = near
		o.farClip = far
	}
}

// WithListFilter sets the allow or deny list. The default is an empty
// deny list.
func WithListFilter(f ListFilter) Option {
	return func(o *options) {
		o.filter = f
	}
}

// WithOverrides sets the per-item overrides. Overrides for the
// placeholder keys replace the built-in placeholder images.
func WithOverrides(ov Overrides) Option {
	return func(o *options) {
		o.overrides = ov
	}
}

// WithPlaceholders replaces the built-in placeholder icons.
func WithPlaceholders(p Placeholders) Option {
	return func(o *options) {
		o.placeholders = &p
	}
}

// WithIconSink sets the receiver of final icons.
func WithIconSink(s IconSink) Option {
	return func(o *options) {
		o.sink = s
	}
}

// WithFrameClock makes the stage read frame numbers from the host instead
// of counting Update calls.
func WithFrameClock(c FrameClock) Option {
	return func(o *options) {
		o.clock = c
	}
}

// WithDumper writes every finalized capture through d.
func WithDumper(d Dumper) Option {
	return func(o *options) {
		o.dumper = d
	}
}

// WithMeshCacheSize sets the soft limit of the sampled mesh cache.
// 0 disables the limit.
func WithMeshCacheSize(n int) Option {
	return func(o *options) {
		o.meshCacheSize = n
	}
}

// WithResultTimeout abandons a capture whose fence or count is still
// missing after the given number of frames. The default, 0, waits forever
// and keeps results strictly in submission order.
func WithResultTimeout(frames int64) Option {
	return func(o *options) {
		o.resultTimeout = frames
	}
}
