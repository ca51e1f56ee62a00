package raster

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oekaki-cafe/drawcore/pkg/types"
)

func TestNewEngineStartsFullyTransparentAtUnitZoom(t *testing.T) {
	e := NewEngine(8, 8)
	assert.Equal(t, RGBA{}, e.Layer(types.LayerBackground).At(0, 0))
	_, _, zoom := e.PanZoom()
	assert.Equal(t, 1.0, zoom)
}

func TestQueueLayerUpdateInvokesCallbackOnce(t *testing.T) {
	e := NewEngine(4, 4)
	var calls []types.LayerKind
	e.AttachDOMCanvases(func(which types.LayerKind) { calls = append(calls, which) })
	e.QueueLayerUpdate(types.LayerForeground)
	assert.Equal(t, []types.LayerKind{types.LayerForeground}, calls)
}

func TestUpdateAllDOMCanvasesImmediateTouchesBothLayers(t *testing.T) {
	e := NewEngine(4, 4)
	var calls []types.LayerKind
	e.AttachDOMCanvases(func(which types.LayerKind) { calls = append(calls, which) })
	e.UpdateAllDOMCanvasesImmediate()
	assert.ElementsMatch(t, []types.LayerKind{types.LayerBackground, types.LayerForeground}, calls)
}

func TestAdjustPanForZoomKeepsPivotFixed(t *testing.T) {
	e := NewEngine(100, 100)
	e.UpdatePanOffset(10, 10, 100, 100, 1.0)
	e.AdjustPanForZoom(1.0, 2.0, 50, 50)
	panX, panY, zoom := e.PanZoom()
	assert.Equal(t, 2.0, zoom)
	// pivot (50,50) must map to the same screen point before and after:
	// 50 - (50-10)*2 = -30
	assert.InDelta(t, -30, panX, 1e-9)
	assert.InDelta(t, -30, panY, 1e-9)
}

func TestApplyOperationDispatchesByKind(t *testing.T) {
	e := NewEngine(10, 10)
	e.ApplyOperation(types.Operation{
		Kind: types.OpFill, Layer: types.LayerForeground, X: 5, Y: 5,
		Color: types.RGBA{R: 1, G: 2, B: 3, A: 255},
	})
	assert.Equal(t, types.RGBA{R: 1, G: 2, B: 3, A: 255}, e.Layer(types.LayerForeground).At(0, 0))
	assert.Equal(t, RGBA{}, e.Layer(types.LayerBackground).At(0, 0))
}
