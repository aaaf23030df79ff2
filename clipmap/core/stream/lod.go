package stream

import (
	"sort"

	"github.com/PetrSeifert/voxelicous-clipmap-go/clipmap/core/brick"
	"github.com/PetrSeifert/voxelicous-clipmap-go/clipmap/core/page"
)

type axis int

const (
	axisX axis = iota
	axisY
	axisZ
)

// updateLOD recomputes the page-aligned origin for lod and decides whether
// the camera moved far enough to force a full rebuild, far enough for a
// toroidal slice shift along one or more axes, or not at all.
func (c *Controller) updateLOD(lod int, cameraVoxel page.WorldCoord, force bool) {
	ps := page.PageSize(lod)
	coverage := page.Coverage(lod)
	origin := page.AlignedOrigin(cameraVoxel, coverage, ps)

	oldOrigin := origin
	if c.lods[lod].HasOrigin {
		oldOrigin = c.lods[lod].Origin
	}

	var shiftX, shiftY, shiftZ int64
	if force {
		shiftX, shiftY, shiftZ = page.Grid, page.Grid, page.Grid
	} else {
		shiftX = (origin.X - oldOrigin.X) / ps
		shiftY = (origin.Y - oldOrigin.Y) / ps
		shiftZ = (origin.Z - oldOrigin.Z) / ps
	}

	maxShift := absInt64(shiftX)
	if s := absInt64(shiftY); s > maxShift {
		maxShift = s
	}
	if s := absInt64(shiftZ); s > maxShift {
		maxShift = s
	}

	if force || maxShift >= page.Grid {
		c.enqueueFullRebuild(lod, origin, ps)
		return
	}

	if shiftX == 0 && shiftY == 0 && shiftZ == 0 {
		c.lods[lod].Origin = origin
		c.lods[lod].HasOrigin = true
		return
	}

	pageOrigin := page.Coord{
		X: page.DivFloor(origin.X, ps),
		Y: page.DivFloor(origin.Y, ps),
		Z: page.DivFloor(origin.Z, ps),
	}

	if shiftX != 0 {
		c.enqueueSlice(lod, pageOrigin, axisX, shiftX)
	}
	if shiftY != 0 {
		c.enqueueSlice(lod, pageOrigin, axisY, shiftY)
	}
	if shiftZ != 0 {
		c.enqueueSlice(lod, pageOrigin, axisZ, shiftZ)
	}

	c.lods[lod].Origin = origin
	c.lods[lod].HasOrigin = true
}

func absInt64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

// enqueueFullRebuild releases every brick currently referenced by lod (via
// the deferred-free queue), wipes its page table, bumps its generation so
// any in-flight build for the previous generation is discarded on arrival,
// and refills the pending queue with every page coordinate in the new
// coverage window, nearest-to-camera first.
func (c *Controller) enqueueFullRebuild(lod int, origin page.WorldCoord, pageSize int64) {
	state := c.lods[lod]

	for _, rawID := range state.PageBrickIndices {
		if rawID != 0 {
			c.queueFreeBrick(brick.BrickId(rawID))
		}
	}

	pageOrigin := page.Coord{
		X: page.DivFloor(origin.X, pageSize),
		Y: page.DivFloor(origin.Y, pageSize),
		Z: page.DivFloor(origin.Z, pageSize),
	}

	state.Generation++
	state.Origin = origin
	state.HasOrigin = true
	state.PendingPages.Clear()
	for i := range state.PageBrickIndices {
		state.PageBrickIndices[i] = 0
	}
	for i := range state.PageOcc {
		state.PageOcc[i] = [2]uint32{0, 0}
	}
	for i := range state.PageCoords {
		state.PageCoords[i] = page.InvalidCoord
	}
	for i := range state.PageLoaded {
		state.PageLoaded[i] = false
	}
	state.LoadedPages = 0
	state.DirtyPages = make([]int, page.Count)
	for i := 0; i < page.Count; i++ {
		state.DirtyPages[i] = i
	}
	state.Ready = false

	coords := make([]page.Coord, 0, page.Count)
	for z := int64(0); z < page.Grid; z++ {
		for y := int64(0); y < page.Grid; y++ {
			for x := int64(0); x < page.Grid; x++ {
				coords = append(coords, page.Coord{
					X: pageOrigin.X + x,
					Y: pageOrigin.Y + y,
					Z: pageOrigin.Z + z,
				})
			}
		}
	}

	sortByDistance(coords, c.cameraVoxel, pageSize)
	state.PendingPages.Reset(coords)
}

// enqueueSlice computes the slab of pages newly entering coverage along
// one axis after a shift, clears their destination toroidal slots up
// front (so a stale page never briefly reappears at the wrong world
// location), and queues them nearest-to-camera first.
func (c *Controller) enqueueSlice(lod int, pageOrigin page.Coord, ax axis, shift int64) {
	count := absInt64(shift)
	grid := int64(page.Grid)

	var start, end int64
	if shift > 0 {
		start, end = grid-count, grid
	} else {
		start, end = 0, count
	}

	coords := make([]page.Coord, 0, count*grid*grid)
	for idx := start; idx < end; idx++ {
		for j := int64(0); j < grid; j++ {
			for k := int64(0); k < grid; k++ {
				var p page.Coord
				switch ax {
				case axisX:
					p = page.Coord{X: pageOrigin.X + idx, Y: pageOrigin.Y + j, Z: pageOrigin.Z + k}
				case axisY:
					p = page.Coord{X: pageOrigin.X + j, Y: pageOrigin.Y + idx, Z: pageOrigin.Z + k}
				default:
					p = page.Coord{X: pageOrigin.X + j, Y: pageOrigin.Y + k, Z: pageOrigin.Z + idx}
				}
				coords = append(coords, p)
			}
		}
	}

	for _, coord := range coords {
		c.invalidatePageSlot(lod, coord)
	}

	pageSize := page.PageSize(lod)
	sortByDistance(coords, c.cameraVoxel, pageSize)
	c.lods[lod].PendingPages.PushBackAll(coords)
}

func sortByDistance(coords []page.Coord, camera page.WorldCoord, pageSize int64) {
	sort.Slice(coords, func(i, j int) bool {
		di := page.DistanceToCameraSq(coords[i], camera, pageSize)
		dj := page.DistanceToCameraSq(coords[j], camera, pageSize)
		return di.Cmp(dj) < 0
	})
}
