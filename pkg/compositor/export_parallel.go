package compositor

import (
	"github.com/sourcegraph/conc"
)

// rasterizeParticipants converts every participant's (bg, fg) layer pair
// into two z-tagged *image.RGBA surfaces, one goroutine per participant —
// each participant's own straight-to-premultiplied conversion is
// independent of every other participant's, so this is embarrassingly
// parallel; only the cross-participant z-order merge in Export must stay
// sequential, since compositing order there is semantically load-bearing.
func rasterizeParticipants(w, h int, participants []ParticipantSurfaces) []surfaceLayer {
	out := make([]surfaceLayer, len(participants)*2)
	var wg conc.WaitGroup
	for i, p := range participants {
		i, p := i, p
		wg.Go(func() {
			out[2*i] = surfaceLayer{z: p.BGZ, img: toRGBAImage(w, h, p.BG)}
			out[2*i+1] = surfaceLayer{z: p.FGZ, img: toRGBAImage(w, h, p.FG)}
		})
	}
	wg.Wait()
	return out
}
