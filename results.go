package iconstage

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"
)

// pendingResult is a capture waiting for its fence and its count.
type pendingResult struct {
	req       *Request
	frame     Frame
	fence     Fence
	count     Readback
	submitted int64

	fenced      bool
	transparent uint32
	counted     bool
}

// ready polls the fence, then the count. Both are cached once seen.
func (p *pendingResult) ready() bool {
	if !p.fenced {
		p.fenced = p.fence == nil || p.fence.Passed()
		if !p.fenced {
			return false
		}
	}
	if !p.counted {
		rb := p.count
		if rb == nil {
			rb = NoReadback
		}
		p.transparent, p.counted = rb.TransparentCount()
	}
	return p.counted
}

// ratio returns the fraction of fully transparent pixels.
func (p *pendingResult) ratio() float64 {
	if p.transparent == NoCount {
		return 1
	}
	w, h := p.frame.Size()
	total := float64(w) * float64(h)
	if total <= 0 {
		return 1
	}
	return float64(p.transparent) / total
}

// finalizeHead finalizes the oldest capture once it is complete. Later
// captures wait behind it even if they completed first.
func (s *Stage) finalizeHead(frame int64) {
	if len(s.pending) == 0 {
		return
	}
	head := s.pending[0]
	if !head.ready() {
		if t := s.opts.resultTimeout; t > 0 && frame-head.submitted >= t {
			s.popHead()
			s.abandon(head)
		}
		return
	}
	s.popHead()
	s.finalize(head)
}

func (s *Stage) popHead() {
	s.pending[0] = nil
	s.pending = s.pending[1:]
	s.stats.pending.Store(int64(len(s.pending)))
}

// finalize classifies a completed capture and assigns exactly one icon.
func (s *Stage) finalize(p *pendingResult) {
	req := p.req
	ratio := p.ratio()
	// A ratio equal to the threshold is rejected.
	passed := ratio < s.opts.threshold

	icon, ok := s.buildIcon(p, passed)
	if !ok {
		passed = false
		icon = req.Fallback
	}
	if passed {
		s.stats.succeeded.Add(1)
	} else {
		s.stats.empty.Add(1)
	}

	s.assign(req, icon)
	s.finish(req, ratio, passed)
}

// buildIcon turns the captured pixels into the item icon. ok is false when
// the capture is rejected or the icon could not be built. The frame is
// always released.
func (s *Stage) buildIcon(p *pendingResult, passed bool) (icon *Icon, ok bool) {
	defer p.frame.Release()
	defer func() {
		if r := recover(); r != nil {
			slogger().Error("iconstage: building icon failed", "item", p.req.Key, "err", fmt.Sprint(r))
			icon, ok = nil, false
		}
	}()

	img := p.frame.Image()
	if s.opts.dumper != nil && img != nil {
		if err := s.opts.dumper.Dump(p.req.Key, img); err != nil {
			slogger().Warn("iconstage: dump failed", "item", p.req.Key, "err", err)
		}
	}
	if !passed {
		return nil, false
	}
	if img == nil {
		slogger().Error("iconstage: capture has no pixels", "item", p.req.Key)
		return nil, false
	}
	return &Icon{Name: p.req.Key, Image: unpremultiply(img)}, true
}

// abandon gives up on a capture that did not complete in time.
func (s *Stage) abandon(p *pendingResult) {
	slogger().Warn("iconstage: capture timed out", "item", p.req.Key,
		"fenced", p.fenced, "frames", s.opts.resultTimeout)
	p.frame.Release()
	s.stats.timedOut.Add(1)
	s.assign(p.req, p.req.Fallback)
	s.retry(p.req)
}

// assign sets the final icon of req's item and tells the sink.
func (s *Stage) assign(req *Request, icon *Icon) {
	req.Item.SetIcon(icon)
	s.notify(req.Object, icon)
}

// unpremultiply copies a capture into straight alpha.
func unpremultiply(src image.Image) *image.NRGBA {
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}
