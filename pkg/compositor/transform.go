package compositor

import "fmt"

// ContainerTransform renders the single CSS transform applied to the
// session's container element (§4.7 "Pan/zoom"): scale then translate.
// The drawing engine's own pan/zoom state (raster.Engine.UpdatePanOffset)
// must be kept in sync with whatever consumes this string so that pointer
// -> canvas coordinate conversion (input.ToCanvasCoords) stays correct.
func ContainerTransform(panX, panY, zoom float64) string {
	return fmt.Sprintf("scale(%g) translate(%gpx, %gpx)", zoom, panX, panY)
}
