package raster

// DoFloodFill performs a 4-connected flood fill from (x,y) on target,
// matching the exact 4-byte tuple at the seed pixel and writing c via the
// same straight-alpha blend rule as a normal dab (§4.1). It never crosses
// layer boundaries — target is the only layer touched.
func DoFloodFill(target *Layer, x, y int, c RGBA) {
	if !target.InBounds(x, y) {
		return // BoundsFault: clamp-and-continue means "do nothing" here, §7
	}
	want := target.At(x, y)
	if want == c {
		return // already the fill color; nothing to do
	}

	visited := make([]bool, target.W*target.H)
	stack := []int{y*target.W + x}
	visited[stack[0]] = true

	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		px, py := i%target.W, i/target.W

		blendOver(target, px, py, c)

		for _, n := range [4][2]int{{px - 1, py}, {px + 1, py}, {px, py - 1}, {px, py + 1}} {
			nx, ny := n[0], n[1]
			if !target.InBounds(nx, ny) {
				continue
			}
			ni := ny*target.W + nx
			if visited[ni] {
				continue
			}
			if target.At(nx, ny) != want {
				continue
			}
			visited[ni] = true
			stack = append(stack, ni)
		}
	}
}

// FloodFillBounds returns the conservative 200x200 reported bounds for a
// fill centered at (x,y), clamped to the canvas (§4.1: "it may touch more,
// but §4.6 treats it as layer-scoped").
func FloodFillBounds(x, y, w, h int) Rect {
	return Rect{MinX: x - 100, MinY: y - 100, MaxX: x + 100, MaxY: y + 100}.Clamp(w, h)
}
