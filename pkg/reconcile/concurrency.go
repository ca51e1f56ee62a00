package reconcile

import "github.com/oekaki-cafe/drawcore/pkg/types"

type compatKind int

const (
	compatSpatial compatKind = iota
	compatLayer
	compatOK
)

// domainTable is the cross-domain compatibility table of §4.6: rows/cols
// ordered drawing, layer, selection, annotation, transform (matching
// types.Domain's iota order exactly).
//
//	            drawing  layer  selection  annotation  transform
//	drawing        S       L        S          S           L
//	layer          L       L        OK         OK          OK
//	selection      S       OK       S          OK          OK
//	annotation     S       OK       OK         S           OK
//	transform      L       OK       OK         OK          L
var domainTable = [5][5]compatKind{
	{compatSpatial, compatLayer, compatSpatial, compatSpatial, compatLayer},
	{compatLayer, compatLayer, compatOK, compatOK, compatOK},
	{compatSpatial, compatOK, compatSpatial, compatOK, compatOK},
	{compatSpatial, compatOK, compatOK, compatSpatial, compatOK},
	{compatLayer, compatOK, compatOK, compatOK, compatLayer},
}

// Concurrent reports whether two operations' affected areas may be applied
// in either order without visible difference (§4.6's concurrency test). A
// true result means "no conflict, no rollback needed"; false means the two
// ops touch overlapping state and ordering matters.
func Concurrent(a, b types.AffectedArea, cache *RectCache) bool {
	if (a.Indirect != nil && a.Indirect.AffectsCanvas) || (b.Indirect != nil && b.Indirect.AffectsCanvas) {
		return false
	}
	if indirectIntersects(a, b) {
		return false
	}

	switch domainTable[a.Domain][b.Domain] {
	case compatOK:
		return true
	case compatLayer:
		return a.LayerID != b.LayerID
	default: // compatSpatial
		if a.LayerID != "" && b.LayerID != "" && a.LayerID != b.LayerID {
			return true
		}
		return !cache.Intersects(a.Bounds, b.Bounds)
	}
}

// indirectIntersects reports whether either side's indirect effect set
// (§3 IndirectEffect) touches a layer the other side's op is scoped to.
func indirectIntersects(a, b types.AffectedArea) bool {
	if a.Indirect != nil {
		for _, layerID := range a.Indirect.AffectsLayers {
			if layerID == b.LayerID {
				return true
			}
		}
	}
	if b.Indirect != nil {
		for _, layerID := range b.Indirect.AffectsLayers {
			if layerID == a.LayerID {
				return true
			}
		}
	}
	return false
}
