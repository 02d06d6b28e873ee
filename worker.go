package iconstage

import (
	"context"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/gogpu/iconstage/fit"
	"github.com/gogpu/iconstage/internal/mailbox"
	"github.com/gogpu/iconstage/internal/meshcache"
)

// readyJob is a fitted job, or the failure of one, travelling from the
// worker to the frame loop.
type readyJob struct {
	req *Request
	job *fit.Job
	err error
}

// doneNote tells the worker that an item's capture was finalized.
type doneNote struct {
	item   *Item
	key    string
	ratio  float64
	passed bool
}

// worker is the single compute goroutine. Everything in it except the
// queues is owned by that goroutine.
type worker struct {
	st      *Stage
	table   *dedupTable
	backlog []*Request

	sampler MeshSampler
	cache   *meshcache.Cache
	fitter  *fit.Fitter
	camera  fit.Camera
}

func newWorker(st *Stage, sampler MeshSampler) *worker {
	o := &st.opts
	return &worker{
		st:      st,
		table:   newDedupTable(),
		sampler: sampler,
		cache:   meshcache.New(o.meshCacheSize),
		fitter:  fit.NewFitter(float64(o.resolution), float64(o.margin), o.iterations),
		camera: fit.Camera{
			Orthographic: o.orthographic,
			Aspect:       1,
			NearClip:     o.nearClip,
		},
	}
}

// run processes work until ctx is done. It sleeps only when every queue
// is empty.
func (w *worker) run(ctx context.Context) {
	slogger().Info("iconstage: compute worker started")
	defer slogger().Info("iconstage: compute worker stopped")

	for ctx.Err() == nil {
		if w.step() {
			continue
		}
		if err := w.st.wake.Wait(ctx); err != nil {
			return
		}
	}
}

// step drains the finished captures, then does one unit of work: a
// promoted alternate, else a retry, else a fresh admission. It reports
// whether anything was done.
func (w *worker) step() bool {
	st := w.st
	worked := false
	for {
		note, ok := st.done.TryPop()
		if !ok {
			break
		}
		w.finished(note)
		worked = true
	}

	if req, ok := w.nextPromoted(); ok {
		w.submit(req)
		return true
	}

	if item, ok := st.retries.TryPop(); ok {
		w.release(item)
		return true
	}

	if req, ok := st.admissions.TryPop(); ok {
		if w.table.admit(req) {
			st.stats.admitted.Add(1)
			st.stats.inFlight.Store(int64(w.table.len()))
			w.submit(req)
		} else {
			st.stats.alternates.Add(1)
			slogger().Debug("iconstage: item already in flight, queued as alternate",
				"item", req.Key, "alternates", w.table.alternates(req.Item))
		}
		return true
	}
	return worked
}

func (w *worker) finished(n doneNote) {
	if n.passed {
		slogger().Info("iconstage: item now has a new icon", "item", n.key)
	} else {
		slogger().Error("iconstage: generated empty sprite",
			"item", n.key, "transparent", fmt.Sprintf("%.0f%%", n.ratio*100))
	}
	w.release(n.item)
}

// release ends the in-flight request of item and promotes its oldest
// alternate.
func (w *worker) release(item *Item) {
	if next, ok := w.table.release(item); ok {
		w.backlog = append(w.backlog, next)
	}
	w.st.stats.inFlight.Store(int64(w.table.len()))
}

// nextPromoted pops the oldest promoted alternate that is still worth
// computing. Stale ones end here and promote their own successor.
func (w *worker) nextPromoted() (*Request, bool) {
	st := w.st
	for len(w.backlog) > 0 {
		req := w.backlog[0]
		w.backlog[0] = nil
		w.backlog = w.backlog[1:]
		if req.eligible(st.opts.filter, st.ph) {
			return req, true
		}
		slogger().Debug("iconstage: dropping stale alternate", "item", req.Key)
		st.stats.outstanding.Add(-1)
		w.release(req.Item)
	}
	return nil, false
}

// submit fits req and hands the result to the frame loop.
func (w *worker) submit(req *Request) {
	rj := w.compute(req)
	if rj.err != nil {
		w.st.stats.failed.Add(1)
		slogger().Error("iconstage: fitting failed", "item", req.Key, "err", rj.err)
	} else {
		w.st.stats.computed.Add(1)
	}
	w.st.ready.Push(mailbox.Seal(rj))
}

func (w *worker) compute(req *Request) (rj *readyJob) {
	rj = &readyJob{req: req}
	defer func() {
		if r := recover(); r != nil {
			rj.job = nil
			rj.err = fmt.Errorf("iconstage: panic while fitting %s: %v", req.Key, r)
		}
	}()

	rotation, pose := req.samplePose()
	key := meshcache.Key{Object: req.Object.ID(), Pose: pose}
	vertices, err := w.cache.GetOrSample(key, func() ([]mgl64.Vec3, error) {
		return w.sampler.Sample(req.Object, pose)
	})
	if err != nil {
		rj.err = fmt.Errorf("iconstage: sample %s: %w", req.Key, err)
		return rj
	}

	job := fit.NewJob(req.Key, vertices, rotation, w.camera)
	job.StageRotation = req.stageRotation()
	if _, err := w.fitter.Run(job); err != nil {
		rj.err = fmt.Errorf("iconstage: fit %s: %w", req.Key, err)
		return rj
	}
	rj.job = job
	return rj
}
