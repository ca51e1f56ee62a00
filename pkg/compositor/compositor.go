// Package compositor implements the per-user layered compositor (spec
// §4.7): declarative z-index assignment from join order, and PNG-export
// compositing of every participant's layer pair onto a white scratch canvas.
package compositor

import (
	"image"
	"image/color"
	"sort"

	"golang.org/x/image/draw"

	"github.com/oekaki-cafe/drawcore/pkg/raster"
)

// ZIndex returns the background/foreground z-index for the i-th joined
// participant (zero-based join order), per the normative 100-level scheme
// in §4.7: the 40-level separation per half plus 20 reserved keeps any two
// users' layers from interleaving even as participants join/leave mid-session.
func ZIndex(joinIndex int) (bgZ, fgZ int) {
	base := 1000 - joinIndex*100
	return base, base + 40
}

// ParticipantSurfaces is one participant's exportable raster pair, tagged
// with its declarative z-index.
type ParticipantSurfaces struct {
	UserID string
	BG, FG *raster.Layer
	BGZ    int
	FGZ    int
}

// ForParticipants builds the ParticipantSurfaces slice for a set of
// participants already ordered by join time, assigning z-indices
// declaratively rather than incrementally — recomputing in full each time
// the participant set changes is what keeps z-index collision-free across
// joins/leaves (§4.7, §9).
func ForParticipants(userIDs []string, layersOf func(userID string) (bg, fg *raster.Layer)) []ParticipantSurfaces {
	out := make([]ParticipantSurfaces, 0, len(userIDs))
	for i, id := range userIDs {
		bg, fg := layersOf(id)
		bgZ, fgZ := ZIndex(i)
		out = append(out, ParticipantSurfaces{UserID: id, BG: bg, FG: fg, BGZ: bgZ, FGZ: fgZ})
	}
	return out
}

// surfaceLayer is one z-ordered raster within an export.
type surfaceLayer struct {
	z   int
	img *image.RGBA
}

// Export composites every participant's (bg, fg) pair onto a w x h white
// scratch canvas in ascending z-index order (§4.7 "Export"). Per-participant
// rasterization to *image.RGBA fans out across goroutines (grounded on the
// teacher's conc.WaitGroup usage in api/pkg/agent/agent.go); the final
// ordered blit is sequential because compositing order is semantically
// load-bearing.
func Export(w, h int, participants []ParticipantSurfaces) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(out, out.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	layers := rasterizeParticipants(w, h, participants)
	sort.Slice(layers, func(i, j int) bool { return layers[i].z < layers[j].z })
	for _, l := range layers {
		draw.Draw(out, out.Bounds(), l.img, image.Point{}, draw.Over)
	}
	return out
}

// toRGBAImage converts a straight-alpha Layer into a premultiplied
// *image.RGBA, which is what image/draw's Porter-Duff Over expects.
func toRGBAImage(w, h int, l *raster.Layer) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(l.Pix); i += 4 {
		r, g, b, a := l.Pix[i], l.Pix[i+1], l.Pix[i+2], l.Pix[i+3]
		img.Pix[i] = premultiply(r, a)
		img.Pix[i+1] = premultiply(g, a)
		img.Pix[i+2] = premultiply(b, a)
		img.Pix[i+3] = a
	}
	return img
}

func premultiply(c, a uint8) uint8 {
	return uint8((uint16(c)*uint16(a) + 127) / 255)
}
