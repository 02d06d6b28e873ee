package iconstage

import (
	"math"

	"github.com/gogpu/iconstage/fit"
)

// renderSlot is the job the camera is aimed at this frame.
type renderSlot struct {
	req     *Request
	framing Framing
	staged  bool
}

// prepareNext takes the next usable fitted job and aims the camera at it.
// Failed and stale jobs are retried on the way.
func (s *Stage) prepareNext() {
	if s.slot != nil {
		slogger().Warn("iconstage: render slot was never captured", "item", s.slot.req.Key)
		s.retry(s.slot.req)
		s.slot = nil
	}

	for {
		sealed, ok := s.ready.TryPop()
		if !ok {
			s.rig.Camera.Disable()
			return
		}
		rj, ok := sealed.Open()
		if !ok {
			continue
		}
		if rj.err != nil || rj.job == nil {
			s.retry(rj.req)
			continue
		}
		if !rj.req.eligible(s.opts.filter, s.ph) {
			slogger().Warn("iconstage: target is gone or has an icon, retrying", "item", rj.req.Key)
			s.retry(rj.req)
			continue
		}

		f := s.framing(rj.req, rj.job)
		slogger().Debug("iconstage: aiming camera", "item", f.Key,
			"position", f.Position, "camera_offset", f.CameraOffset, "fov", f.FOV)
		s.rig.Camera.Aim(f)
		s.slot = &renderSlot{req: rj.req, framing: f}
		return
	}
}

func (s *Stage) framing(req *Request, job *fit.Job) Framing {
	far := s.opts.farClip
	if reach := job.CameraOffset.Len() * 2; reach > far {
		far = reach
	}
	return Framing{
		Key:            req.Key,
		Position:       job.Position,
		Rotation:       job.Rotation,
		CameraOffset:   job.CameraOffset,
		CameraRotation: job.CameraRotation,
		FOV:            job.CameraFOV,
		Orthographic:   job.Camera.Orthographic,
		Near:           s.opts.nearClip,
		Far:            math.Max(far, s.opts.nearClip),
		Resolution:     s.opts.resolution,
	}
}

// OnRenderBegin is called by the host before cam renders. When cam is the
// icon camera and a job is waiting, the object is put on the stage.
func (s *Stage) OnRenderBegin(cam Camera) {
	s.restore()
	if cam != s.rig.Camera || s.slot == nil {
		return
	}

	slot := s.slot
	obj := slot.req.Object
	if !obj.Alive() || obj.Pocketed() {
		slogger().Warn("iconstage: target vanished before render", "item", slot.req.Key, "err", ErrTargetGone)
		s.retry(slot.req)
		s.slot = nil
		return
	}

	restore, err := s.rig.Scene.Place(obj, slot.framing)
	if err != nil {
		slogger().Warn("iconstage: could not stage object", "item", slot.req.Key, "err", err)
		s.retry(slot.req)
		s.slot = nil
		return
	}
	if restore != nil {
		s.cleanup = append(s.cleanup, restore)
	}
	if undo := s.rig.Scene.IsolateLights(obj); undo != nil {
		s.cleanup = append(s.cleanup, undo)
	}

	slot.req.Item.SetIcon(s.ph.Rendering)
	slot.staged = true
}

// OnRenderEnd is called by the host after cam rendered. The shot of the
// staged object is captured and queued for classification.
func (s *Stage) OnRenderEnd(cam Camera) {
	defer s.restore()
	if cam != s.rig.Camera || s.slot == nil {
		return
	}

	slot := s.slot
	s.slot = nil
	if !slot.staged {
		slogger().Warn("iconstage: render ended without a staged object", "item", slot.req.Key)
		s.retry(slot.req)
		return
	}

	frame, err := s.rig.Capturer.Capture(cam, slot.req.Key)
	if err != nil {
		slogger().Error("iconstage: capture failed", "item", slot.req.Key, "err", err)
		s.assign(slot.req, slot.req.Fallback)
		s.stats.empty.Add(1)
		s.finish(slot.req, 1, false)
		return
	}

	s.stats.rendered.Add(1)
	s.pending = append(s.pending, &pendingResult{
		req:       slot.req,
		frame:     frame,
		fence:     frame.Fence(),
		count:     frame.Count(),
		submitted: s.Frame(),
	})
	s.stats.pending.Store(int64(len(s.pending)))
}

// restore undoes staging and light isolation, newest first.
func (s *Stage) restore() {
	for i := len(s.cleanup) - 1; i >= 0; i-- {
		s.cleanup[i]()
		s.cleanup[i] = nil
	}
	s.cleanup = s.cleanup[:0]
}
