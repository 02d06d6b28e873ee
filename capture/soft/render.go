package soft

import (
	"image"
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/image/draw"

	"github.com/gogpu/gg"
)

// face is a projected triangle.
type face struct {
	pts   [3]mgl64.Vec2
	depth float64
	shade float64
}

// render draws the staged triangles back to front on a transparent
// target.
func (h *Host) render() *image.RGBA {
	res := h.framing.Resolution
	dc := gg.NewContext(res, res)
	defer dc.Close()
	dc.Clear()

	faces := make([]face, 0, len(h.tris))
	for _, t := range h.tris {
		var f face
		visible := true
		for i, p := range t {
			q, ok := h.project(p, float64(res))
			if !ok {
				visible = false
				break
			}
			f.pts[i] = q
			f.depth += p.Z() / 3
		}
		if !visible {
			continue
		}
		f.shade = h.shade(t)
		faces = append(faces, f)
	}
	sort.SliceStable(faces, func(i, j int) bool { return faces[i].depth > faces[j].depth })

	col := h.color
	for _, f := range faces {
		dc.SetRGB(col[0]*f.shade, col[1]*f.shade, col[2]*f.shade)
		dc.MoveTo(f.pts[0].X(), f.pts[0].Y())
		dc.LineTo(f.pts[1].X(), f.pts[1].Y())
		dc.LineTo(f.pts[2].X(), f.pts[2].Y())
		dc.ClosePath()
		if err := dc.Fill(); err != nil {
			slogger().Warn("soft: fill failed", "err", err)
		}
	}

	if img, ok := dc.Image().(*image.RGBA); ok {
		return img
	}
	src := dc.Image()
	img := image.NewRGBA(src.Bounds())
	draw.Draw(img, img.Rect, src, src.Bounds().Min, draw.Src)
	return img
}

// project maps a camera space point to pixel coordinates. Points outside
// the clip planes are not visible.
func (h *Host) project(p mgl64.Vec3, res float64) (mgl64.Vec2, bool) {
	f := &h.framing
	z := p.Z()
	if z < f.Near || (f.Far > f.Near && z > f.Far) {
		return mgl64.Vec2{}, false
	}

	var x, y float64
	if f.Orthographic {
		x, y = p.X()/f.FOV, p.Y()/f.FOV
	} else {
		t := math.Tan(mgl64.DegToRad(f.FOV) / 2)
		x, y = p.X()/(z*t), p.Y()/(z*t)
	}
	return mgl64.Vec2{(x + 1) / 2 * res, (1 - y) / 2 * res}, true
}

// shade returns the brightness of a triangle lit from both sides.
func (h *Host) shade(t Triangle) float64 {
	ambient := h.opts.ambient
	if !h.isolated {
		ambient += h.opts.environment
	}
	n := t[1].Sub(t[0]).Cross(t[2].Sub(t[0]))
	if n.Len() == 0 {
		return math.Min(ambient, 1)
	}
	d := math.Abs(n.Normalize().Dot(h.opts.light))
	return math.Min(ambient+(1-h.opts.ambient)*d, 1)
}
