package stream

import (
	"github.com/PetrSeifert/voxelicous-clipmap-go/clipmap/core/brick"
	"github.com/PetrSeifert/voxelicous-clipmap-go/clipmap/core/page"
)

// processPendingPages spawns as many queued build jobs as the inflight cap
// allows, then drains completed results up to applyBudget. Stale results
// (generation mismatch - their LOD was rebuilt while the job was running)
// are silently discarded, never logged: a cancelled-and-replaced build is
// expected streaming behavior, not an error. Once a LOD's pending queue
// and inflight count both reach zero, it is marked ready.
func (c *Controller) processPendingPages(applyBudget int) {
	c.spawnPendingJobs()

	for applyBudget > 0 {
		var result buildResult
		select {
		case r, ok := <-c.pool.results:
			if !ok {
				applyBudget = 0
				continue
			}
			result = r
		default:
			applyBudget = 0
			continue
		}

		c.inflightJobs--
		state := c.lods[result.lod]
		if state.InflightPages > 0 {
			state.InflightPages--
		}

		if result.generation != state.Generation {
			continue
		}

		c.applyBuiltPage(result.lod, result.page)
		applyBudget--
	}

	for lod := 0; lod < page.LODCount; lod++ {
		state := c.lods[lod]
		if state.HasOrigin && state.PendingPages.Len() == 0 && state.InflightPages == 0 {
			state.Ready = true
		}
	}
}

func (c *Controller) spawnPendingJobs() {
	for c.inflightJobs < c.cfg.MaxInflightPageJobs {
		lod, coord, voxelSize, generation, ok := c.popNextPendingPage()
		if !ok {
			break
		}

		c.inflightJobs++
		c.lods[lod].InflightPages++

		c.pool.submit(buildJob{
			lod:        lod,
			coord:      coord,
			voxelSize:  voxelSize,
			generation: generation,
			edits:      c.editSnapshot,
		})
	}
}

func (c *Controller) popNextPendingPage() (lod int, coord page.Coord, voxelSize int64, generation uint64, ok bool) {
	for lod = 0; lod < page.LODCount; lod++ {
		voxelSize = page.VoxelSize(lod)
		generation = c.lods[lod].Generation
		for {
			next, has := c.lods[lod].PendingPages.PopFront()
			if !has {
				break
			}
			if !c.isPageInCoverage(lod, next) {
				continue
			}
			return lod, next, voxelSize, generation, true
		}
	}
	return 0, page.Coord{}, 0, 0, false
}

func (c *Controller) applyBuiltPage(lod int, built page.Built) {
	if !c.isPageInCoverage(lod, built.Coord) {
		return
	}

	pageIndex := page.IndexFromCoord(built.Coord)
	c.clearPageSlot(lod, pageIndex)

	state := c.lods[lod]
	baseOffset := pageIndex * page.Bricks
	var occ uint64
	for brickIdx, voxels := range built.Bricks {
		v := voxels
		brickID := c.store.AllocateBrick(&v)
		state.PageBrickIndices[baseOffset+brickIdx] = uint32(brickID)

		if brickID != 0 {
			occ |= 1 << uint(brickIdx)
			c.markBrickDirty(brickID)
		}
	}

	finalOcc := occ
	if built.Occ != 0 {
		finalOcc = built.Occ
	}
	state.PageOcc[pageIndex] = [2]uint32{uint32(finalOcc & 0xFFFFFFFF), uint32(finalOcc >> 32)}
	state.PageCoords[pageIndex] = [4]int32{int32(built.Coord.X), int32(built.Coord.Y), int32(built.Coord.Z), 0}
	if !state.PageLoaded[pageIndex] {
		state.PageLoaded[pageIndex] = true
		state.LoadedPages++
	}
	state.DirtyPages = append(state.DirtyPages, pageIndex)
}

func (c *Controller) invalidatePageSlot(lod int, coord page.Coord) {
	c.clearPageSlot(lod, page.IndexFromCoord(coord))
}

// clearPageSlot frees every brick owned by a toroidal slot (deferred, via
// queueFreeBrick) and resets its table entries, marking the slot dirty
// only if it actually held data.
func (c *Controller) clearPageSlot(lod int, pageIndex int) {
	state := c.lods[lod]
	baseOffset := pageIndex * page.Bricks
	hadData := false
	var idsToFree []brick.BrickId

	for i := 0; i < page.Bricks; i++ {
		slot := baseOffset + i
		id := brick.BrickId(state.PageBrickIndices[slot])
		if id != 0 {
			idsToFree = append(idsToFree, id)
			hadData = true
		}
		state.PageBrickIndices[slot] = 0
	}

	if state.PageOcc[pageIndex] != [2]uint32{0, 0} {
		hadData = true
	}
	state.PageOcc[pageIndex] = [2]uint32{0, 0}

	if state.PageCoords[pageIndex] != page.InvalidCoord {
		state.PageCoords[pageIndex] = page.InvalidCoord
		hadData = true
	}

	if state.PageLoaded[pageIndex] {
		state.PageLoaded[pageIndex] = false
		if state.LoadedPages > 0 {
			state.LoadedPages--
		}
		hadData = true
	}

	if hadData {
		state.DirtyPages = append(state.DirtyPages, pageIndex)
	}

	for _, id := range idsToFree {
		c.queueFreeBrick(id)
	}
}

func (c *Controller) queueFreeBrick(id brick.BrickId) {
	if id == 0 {
		return
	}
	c.pendingFrees = append(c.pendingFrees, deferredFree{
		releaseFrame: c.frameCounter + c.cfg.BrickFreeDelayFrames,
		id:           id,
	})
}

// processDeferredBrickFrees releases bricks whose delay has elapsed back
// to the store's free-lists, giving any prior frame's GPU reads of their
// pool entries time to finish before the bytes are overwritten.
func (c *Controller) processDeferredBrickFrees() {
	i := 0
	for i < len(c.pendingFrees) {
		if c.pendingFrees[i].releaseFrame > c.frameCounter {
			break
		}
		c.store.FreeBrick(c.pendingFrees[i].id)
		i++
	}
	c.pendingFrees = c.pendingFrees[i:]
}

func (c *Controller) isPageInCoverage(lod int, coord page.Coord) bool {
	state := c.lods[lod]
	if !state.HasOrigin {
		return false
	}
	pageSize := page.PageSize(lod)
	originPage := page.Coord{
		X: page.DivFloor(state.Origin.X, pageSize),
		Y: page.DivFloor(state.Origin.Y, pageSize),
		Z: page.DivFloor(state.Origin.Z, pageSize),
	}
	grid := int64(page.Grid)
	return coord.X >= originPage.X && coord.X < originPage.X+grid &&
		coord.Y >= originPage.Y && coord.Y < originPage.Y+grid &&
		coord.Z >= originPage.Z && coord.Z < originPage.Z+grid
}

func (c *Controller) markBrickDirty(id brick.BrickId) {
	header, ok := c.store.Header(id)
	if !ok {
		return
	}
	c.dirty.appendBrick(id, header)
}
