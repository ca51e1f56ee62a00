package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oekaki-cafe/drawcore/pkg/types"
)

func TestRectCacheMatchesDirectIntersects(t *testing.T) {
	c, err := NewRectCache(100)
	require.NoError(t, err)

	a := types.Rect{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10}
	b := types.Rect{MinX: 5, MinY: 5, MaxX: 15, MaxY: 15}
	d := types.Rect{MinX: 100, MinY: 100, MaxX: 110, MaxY: 110}

	assert.Equal(t, a.Intersects(b), c.Intersects(a, b))
	assert.Equal(t, a.Intersects(d), c.Intersects(a, d))
}

func TestRectCacheIsOrderIndependent(t *testing.T) {
	c, err := NewRectCache(100)
	require.NoError(t, err)
	a := types.Rect{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10}
	b := types.Rect{MinX: 5, MinY: 5, MaxX: 15, MaxY: 15}

	got1 := c.Intersects(a, b)
	c.Wait()
	got2 := c.Intersects(b, a)
	assert.Equal(t, got1, got2)
}

func TestNewRectCacheDefaultsNonPositiveSize(t *testing.T) {
	c, err := NewRectCache(0)
	require.NoError(t, err)
	require.NotNil(t, c)
}
