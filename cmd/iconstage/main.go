// Command iconstage renders item icons for OBJ meshes or built-in shapes
// through the full staging pipeline and writes them as PNG files.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"time"

	_ "github.com/gogpu/wgpu/hal/vulkan" // standalone device for -gpu

	"github.com/gogpu/iconstage"
	"github.com/gogpu/iconstage/capture/gpucount"
	"github.com/gogpu/iconstage/capture/soft"
	"github.com/gogpu/iconstage/config"
	"github.com/gogpu/iconstage/dump"
	"github.com/gogpu/iconstage/objmesh"
)

type object struct {
	id   uint64
	item *iconstage.Item
}

func (o *object) ID() uint64            { return o.id }
func (o *object) Item() *iconstage.Item { return o.item }
func (o *object) Alive() bool           { return true }
func (o *object) Pocketed() bool        { return false }

func main() {
	var (
		cfgPath   = flag.String("config", "", "configuration file (yaml, toml or json)")
		out       = flag.String("out", "icons", "output directory")
		size      = flag.Int("size", 0, "icon size in pixels, overrides the configuration")
		shape     = flag.String("shape", "", "built-in shape to render: box, plate, rod or ball")
		maxFrames = flag.Int("frames", 600, "give up after this many frames")
		useGPU    = flag.Bool("gpu", false, "count transparent pixels on the GPU (Vulkan)")
	)
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *size > 0 {
		cfg.Resolution = *size
		cfg.Margin = min(cfg.Margin, *size/8)
		if err := cfg.Validate(); err != nil {
			log.Fatalf("Invalid size: %v", err)
		}
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()}))
	iconstage.SetLogger(logger)
	soft.SetLogger(logger)
	gpucount.SetLogger(logger)

	lib, objects, err := loadObjects(*shape, flag.Args())
	if err != nil {
		log.Fatalf("Failed to load meshes: %v", err)
	}
	if len(objects) == 0 {
		log.Fatalf("Nothing to render: pass OBJ files or -shape")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opts, err := cfg.Options(ctx)
	if err != nil {
		log.Fatalf("Failed to apply config: %v", err)
	}
	hostOpts := []soft.Option{soft.WithResolution(cfg.Resolution), soft.WithFOV(cfg.FOV)}
	if *useGPU {
		counter, err := openCounter(cfg.Resolution)
		if err != nil {
			log.Printf("GPU counter unavailable, counting on the CPU: %v", err)
		} else {
			defer counter.Close()
			hostOpts = append(hostOpts, soft.WithCounter(counter))
		}
	}
	host := soft.NewHost(lib, hostOpts...)
	st, err := iconstage.New(lib, host.Rig(), opts...)
	if err != nil {
		log.Fatalf("Failed to create stage: %v", err)
	}
	if err := st.Start(ctx); err != nil {
		log.Fatalf("Failed to start stage: %v", err)
	}
	defer st.Stop()

	for _, obj := range objects {
		st.Enqueue(obj, nil, 0)
	}

	if err := run(ctx, st, host, *maxFrames); err != nil {
		log.Printf("Stopped early: %v", err)
	}

	w := dump.NewFormat(*out, dump.PNG)
	for _, obj := range objects {
		it := obj.Item()
		icon := it.Icon()
		if icon == nil || icon.Image == nil {
			log.Printf("%s: no icon", it.Key)
			continue
		}
		if err := w.Dump(it.Key, icon.Image); err != nil {
			log.Fatalf("Failed to save %s: %v", it.Key, err)
		}
	}

	s := st.Stats()
	log.Printf("Rendered %d icons to %s (%d empty, %d retries)\n", w.Written(), *out, s.Empty, s.Retries)
}

// run ticks frames until every request reached an outcome.
func run(ctx context.Context, st *iconstage.Stage, host *soft.Host, maxFrames int) error {
	tick := time.NewTicker(time.Second / 120)
	defer tick.Stop()
	for frame := 0; !st.Idle(); frame++ {
		if frame >= maxFrames {
			return fmt.Errorf("%d requests still outstanding after %d frames", st.Stats().Outstanding, maxFrames)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tick.C:
		}
		st.Update()
		host.RenderFrame(st)
	}
	return nil
}

// openCounter opens the Vulkan transparent pixel counter. The icon size must
// be a whole number of count tiles.
func openCounter(resolution int) (*gpucount.Counter, error) {
	if resolution%gpucount.TileSize != 0 {
		return nil, fmt.Errorf("size %d is not a multiple of %d", resolution, gpucount.TileSize)
	}
	return gpucount.OpenVulkan()
}

func loadObjects(shape string, paths []string) (*objmesh.Library, []iconstage.Object, error) {
	lib := objmesh.NewLibrary()
	var meshes []*objmesh.Mesh
	if shape != "" {
		m, err := objmesh.Shape(shape)
		if err != nil {
			return nil, nil, err
		}
		meshes = append(meshes, m)
	}
	for _, p := range paths {
		m, err := objmesh.Load(p)
		if err != nil {
			return nil, nil, err
		}
		m.Normalize(1)
		meshes = append(meshes, m)
	}

	objects := make([]iconstage.Object, 0, len(meshes))
	for i, m := range meshes {
		key := iconstage.ItemKey("", "", m.Name)
		if err := lib.Add(key, m); err != nil {
			return nil, nil, err
		}
		objects = append(objects, &object{id: uint64(i + 1), item: iconstage.NewItem(m.Name, key)})
	}
	return lib, objects, nil
}
