package iconstage

import (
	"image"
	"math"

	"github.com/gogpu/gg"
)

// Placeholder icon names.
const (
	LoadingIconName   = "iconstage.Loading"
	RenderingIconName = "iconstage.Rendering"
	WarningIconName   = "iconstage.Warning"
	ErrorIconName     = "iconstage.Error"
)

// Override keys that replace the placeholder images.
const (
	LoadingOverrideKey = "iconstage/loading"
	WarningOverrideKey = "iconstage/warning"
	ErrorOverrideKey   = "iconstage/error"
)

// Placeholders are the icons shown while an item waits or after it
// failed. Loading marks an item as still needing an icon; Rendering marks
// it as taken by the render slot and counts as a valid icon.
type Placeholders struct {
	Loading   *Icon
	Rendering *Icon
	Warning   *Icon
	Error     *Icon
}

const placeholderSize = 64

// DefaultPlaceholders draws the built-in placeholder icons.
func DefaultPlaceholders() Placeholders {
	return Placeholders{
		Loading:   &Icon{Name: LoadingIconName, Image: drawSpinner(gg.RGB(0.55, 0.55, 0.6), 0.75)},
		Rendering: &Icon{Name: RenderingIconName, Image: drawSpinner(gg.RGB(0.35, 0.6, 0.9), 1)},
		Warning:   &Icon{Name: WarningIconName, Image: drawBadge(gg.RGB(0.95, 0.7, 0.15))},
		Error:     &Icon{Name: ErrorIconName, Image: drawBadge(gg.RGB(0.85, 0.2, 0.2))},
	}
}

// drawSpinner draws a ring of dots.
func drawSpinner(col gg.RGBA, fraction float64) image.Image {
	dc := gg.NewContext(placeholderSize, placeholderSize)
	defer dc.Close()

	const dots = 8
	c := placeholderSize / 2.0
	for i := 0; i < dots; i++ {
		a := 2 * math.Pi * float64(i) / dots
		alpha := fraction * (0.25 + 0.75*float64(i)/dots)
		dc.SetRGBA(col.R, col.G, col.B, alpha)
		dc.DrawCircle(c+math.Cos(a)*c*0.65, c+math.Sin(a)*c*0.65, c*0.14)
		_ = dc.Fill()
	}
	return dc.Image()
}

// drawBadge draws a filled disc with an exclamation mark cut in.
func drawBadge(col gg.RGBA) image.Image {
	dc := gg.NewContext(placeholderSize, placeholderSize)
	defer dc.Close()

	c := placeholderSize / 2.0
	dc.SetColor(col.Color())
	dc.DrawCircle(c, c, c*0.85)
	_ = dc.Fill()

	dc.SetRGB(1, 1, 1)
	dc.DrawRoundedRectangle(c-4, c*0.4, 8, c*0.85, 3)
	_ = dc.Fill()
	dc.DrawCircle(c, c*1.5, 4.5)
	_ = dc.Fill()
	return dc.Image()
}

// withOverrides replaces placeholders that have an override image.
func (p Placeholders) withOverrides(o Overrides) Placeholders {
	if o == nil {
		return p
	}
	swap := func(dst **Icon, key, name string) {
		if e, ok := o.Lookup(key); ok && e.Icon != nil {
			*dst = &Icon{Name: name, Image: e.Icon}
		}
	}
	swap(&p.Loading, LoadingOverrideKey, LoadingIconName)
	swap(&p.Warning, WarningOverrideKey, WarningIconName)
	swap(&p.Error, ErrorOverrideKey, ErrorIconName)
	return p
}
