package compositor

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oekaki-cafe/drawcore/pkg/raster"
)

func TestZIndexNeverCollidesAcrossParticipants(t *testing.T) {
	seen := map[int]bool{}
	for i := 0; i < 20; i++ {
		bg, fg := ZIndex(i)
		assert.False(t, seen[bg])
		assert.False(t, seen[fg])
		seen[bg], seen[fg] = true, true
		assert.Less(t, bg, fg, "a participant's own bg must stack below their own fg")
	}
}

func TestZIndexLaterJoinersStackBelowEarlierOnes(t *testing.T) {
	bg0, _ := ZIndex(0)
	bg1, _ := ZIndex(1)
	assert.Greater(t, bg0, bg1)
}

func TestForParticipantsAssignsZIndexByPosition(t *testing.T) {
	layersOf := func(userID string) (bg, fg *raster.Layer) {
		return raster.NewLayer(2, 2), raster.NewLayer(2, 2)
	}
	out := ForParticipants([]string{"a", "b"}, layersOf)
	require := assert.New(t)
	require.Len(out, 2)
	require.Equal("a", out[0].UserID)
	require.Greater(out[0].BGZ, out[1].BGZ)
}

func TestExportProducesWhiteCanvasWhenNoParticipants(t *testing.T) {
	img := Export(4, 4, nil)
	r, g, b, _ := img.At(0, 0).RGBA()
	white := color.White
	wr, wg, wb, _ := white.RGBA()
	assert.Equal(t, wr, r)
	assert.Equal(t, wg, g)
	assert.Equal(t, wb, b)
}

func TestExportCompositesInZOrder(t *testing.T) {
	bottomBG := raster.NewLayer(2, 2)
	bottomBG.SetRaw(0, 0, raster.RGBA{R: 255, A: 255})
	topFG := raster.NewLayer(2, 2)
	topFG.SetRaw(0, 0, raster.RGBA{G: 255, A: 255})

	participants := []ParticipantSurfaces{
		{UserID: "u", BG: bottomBG, BGZ: 10, FG: topFG, FGZ: 20},
	}
	img := Export(2, 2, participants)
	r, g, _, _ := img.At(0, 0).RGBA()
	assert.Zero(t, r, "the foreground green fully covers the background red at full opacity")
	assert.NotZero(t, g)
}

func TestToRGBAImagePremultipliesAlpha(t *testing.T) {
	l := raster.NewLayer(1, 1)
	l.SetRaw(0, 0, raster.RGBA{R: 200, G: 200, B: 200, A: 128})
	img := toRGBAImage(1, 1, l)
	// premultiplied red channel should be roughly half of straight-alpha red.
	assert.InDelta(t, 100, int(img.Pix[0]), 2)
}
