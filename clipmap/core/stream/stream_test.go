package stream

import (
	"testing"

	"github.com/PetrSeifert/voxelicous-clipmap-go/clipmap/core/brick"
	"github.com/PetrSeifert/voxelicous-clipmap-go/clipmap/core/page"
	"github.com/PetrSeifert/voxelicous-clipmap-go/clipmap/core/terrain"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runUntilReady drives Update until every LOD has finished its first full
// build or the step budget is exhausted, whichever comes first.
func runUntilReady(c *Controller, camera mgl32.Vec3, maxSteps int) bool {
	for i := 0; i < maxSteps; i++ {
		c.Update(camera)
		allReady := true
		for lod := 0; lod < page.LODCount; lod++ {
			if !c.LODReady(lod) {
				allReady = false
				break
			}
		}
		if allReady {
			return true
		}
	}
	return false
}

func TestBootstrapReachesReadyAcrossAllLODs(t *testing.T) {
	oracle := terrain.NewFlatOracle(0)
	c := New(oracle, DefaultConfig(), nil, nil)
	defer c.Close()

	ok := runUntilReady(c, mgl32.Vec3{0, 0, 0}, 20000)
	require.True(t, ok, "expected every LOD to become ready within the step budget")
}

func TestLOD0IsRenderableBeforeFullyReady(t *testing.T) {
	oracle := terrain.NewFlatOracle(0)
	c := New(oracle, DefaultConfig(), nil, nil)
	defer c.Close()

	coarsest := page.LODCount - 1
	sawRenderableBeforeReady := false
	for i := 0; i < 20000; i++ {
		c.Update(mgl32.Vec3{0, 0, 0})
		// A coarse LOD reports ready while its queue is still empty, before
		// bootstrap has enqueued its own full rebuild (Generation 0), so it
		// only counts as finished once that rebuild has drained.
		coarsestFinished := c.lods[coarsest].Generation > 0 && c.LODReady(coarsest)
		if c.LODRenderable(0) && !coarsestFinished {
			sawRenderableBeforeReady = true
			break
		}
		if coarsestFinished {
			break
		}
	}
	assert.True(t, sawRenderableBeforeReady, "LOD0 should become renderable well before the coarsest LOD finishes")
}

func TestToroidalIndexWrapsOnCameraShift(t *testing.T) {
	oracle := terrain.NewFlatOracle(0)
	c := New(oracle, DefaultConfig(), nil, nil)
	defer c.Close()

	require.True(t, runUntilReady(c, mgl32.Vec3{0, 0, 0}, 20000))

	originBefore := c.LODOrigin(0)

	pageSize0 := float32(page.PageSize(0))
	ok := false
	for i := 0; i < 20000; i++ {
		c.Update(mgl32.Vec3{pageSize0 * 3, 0, 0})
		if c.LODOrigin(0) != originBefore {
			ok = true
		}
	}
	assert.True(t, ok, "expected LOD0's origin to move after a large camera shift")

	seen := make(map[int]bool)
	indices := c.PageBrickIndices(0)
	assert.Equal(t, page.Count*page.Bricks, len(indices))
	coords := c.PageCoords(0)
	for _, co := range coords {
		if co == page.InvalidCoord {
			continue
		}
		idx := page.IndexFromCoord(page.Coord{X: int64(co[0]), Y: int64(co[1]), Z: int64(co[2])})
		assert.False(t, seen[idx], "two live pages must never collide on the same toroidal slot")
		seen[idx] = true
	}
}

func TestSmallCameraShiftProducesDirtyPagesEventually(t *testing.T) {
	oracle := terrain.NewFlatOracle(0)
	c := New(oracle, DefaultConfig(), nil, nil)
	defer c.Close()

	require.True(t, runUntilReady(c, mgl32.Vec3{0, 0, 0}, 20000))
	_ = c.TakeDirtyState(0)

	sawDirty := false
	for i := 0; i < 20000; i++ {
		// One LOD0 page: the origin snaps to page boundaries, so any
		// smaller shift leaves it unchanged.
		c.Update(mgl32.Vec3{float32(page.PageSize(0)), 0, 0})
		dirty := c.TakeDirtyState(0)
		if len(dirty.DirtyPages[0]) > 0 {
			sawDirty = true
			break
		}
	}
	assert.True(t, sawDirty, "a sustained small shift should eventually dirty LOD0 pages")
}

func TestPendingPagesPrioritizeCameraProximity(t *testing.T) {
	oracle := terrain.NewFlatOracle(0)
	c := New(oracle, DefaultConfig(), nil, nil)
	defer c.Close()

	pageSize := page.PageSize(0)
	origin := page.AlignedOrigin(page.WorldCoord{}, page.Coverage(0), pageSize)
	c.enqueueFullRebuild(0, origin, pageSize)

	state := c.lods[0]
	require.Greater(t, state.PendingPages.Len(), 1)

	first, ok := state.PendingPages.PopFront()
	require.True(t, ok)
	second, ok := state.PendingPages.PopFront()
	require.True(t, ok)

	dFirst := page.DistanceToCameraSq(first, c.cameraVoxel, pageSize)
	dSecond := page.DistanceToCameraSq(second, c.cameraVoxel, pageSize)
	assert.LessOrEqual(t, dFirst.Cmp(dSecond), 0, "pending pages must be ordered nearest-to-camera first")
}

func TestRuntimeEditOverridesGeneratedBlock(t *testing.T) {
	oracle := terrain.NewFlatOracle(0)
	c := New(oracle, DefaultConfig(), nil, nil)
	defer c.Close()

	require.True(t, runUntilReady(c, mgl32.Vec3{0, 0, 0}, 20000))

	assert.Equal(t, brick.Air, c.BlockAtWorld(0, 10, 0))

	changed := c.SetBlockAtWorld(0, 10, 0, brick.Stone)
	assert.True(t, changed)
	assert.Equal(t, brick.Stone, c.BlockAtWorld(0, 10, 0))

	changedAgain := c.SetBlockAtWorld(0, 10, 0, brick.Stone)
	assert.False(t, changedAgain, "setting the same effective value again must report no change")

	reverted := c.SetBlockAtWorld(0, 10, 0, brick.Air)
	assert.True(t, reverted)
	assert.Equal(t, brick.Air, c.BlockAtWorld(0, 10, 0))
}

func TestDestroyBlockAtWorldOnlyAffectsSolid(t *testing.T) {
	oracle := terrain.NewFlatOracle(0)
	c := New(oracle, DefaultConfig(), nil, nil)
	defer c.Close()

	assert.False(t, c.DestroyBlockAtWorld(0, 10, 0), "destroying already-air must report no change")
	assert.True(t, c.DestroyBlockAtWorld(0, 0, 0), "destroying the solid surface block must report a change")
	assert.Equal(t, brick.Air, c.BlockAtWorld(0, 0, 0))
}
