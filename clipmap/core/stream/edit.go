package stream

import "github.com/PetrSeifert/voxelicous-clipmap-go/clipmap/core/page"

// applyEditImmediate synchronously rebuilds every page touching world across
// the finest SyncEditLODs LODs, so a player-visible edit never waits on the
// async build queue to show up at the LOD the player is actually looking at.
func (c *Controller) applyEditImmediate(world page.WorldCoord) {
	for lod := 0; lod < c.cfg.SyncEditLODs && lod < page.LODCount; lod++ {
		voxelSize := page.VoxelSize(lod)
		for _, coord := range c.affectedPagesForEdit(lod, world) {
			if !c.isPageInCoverage(lod, coord) {
				continue
			}
			built := page.BuildPage(c.oracle, c.editSnapshot, coord, voxelSize)
			c.applyBuiltPage(lod, built)
			c.lods[lod].PendingPages.RemoveAll(coord)
		}
		c.lods[lod].Ready = false
	}
}

// enqueuePagesAffectedByEdit jumps the queue for every LOD coarser than
// SyncEditLODs: those pages rebuild asynchronously, but at the front of the
// pending queue rather than the back, so an edit's ripple to coarse LODs
// still lands ahead of routine streaming work.
func (c *Controller) enqueuePagesAffectedByEdit(world page.WorldCoord) {
	for lod := c.cfg.SyncEditLODs; lod < page.LODCount; lod++ {
		if !c.lods[lod].HasOrigin {
			continue
		}
		for _, coord := range c.affectedPagesForEdit(lod, world) {
			if !c.isPageInCoverage(lod, coord) {
				continue
			}
			c.lods[lod].PendingPages.RemoveAll(coord)
			c.lods[lod].PendingPages.PushFront(coord)
		}
		c.lods[lod].Ready = false
	}
}

// affectedPagesForEdit returns every page coordinate at lod whose sampled
// volume could include world. A downsampled voxel at lod samples base
// voxels up to half its own voxel size away, so each axis contributes its
// own page plus the page half a voxel-size below - but only when that half
// is non-zero: at LOD0 (voxel_size==1) half==0 and an edit affects exactly
// the one page it lands in, never a neighbor.
//
// Grounded on affected_pages_for_edit in
// original_source/crates/voxelicous-world/src/clipmap_streaming.rs.
func (c *Controller) affectedPagesForEdit(lod int, world page.WorldCoord) []page.Coord {
	pageSize := page.PageSize(lod)
	voxelSize := page.VoxelSize(lod)
	half := voxelSize / 2

	xs := []int64{page.DivFloor(world.X, pageSize)}
	ys := []int64{page.DivFloor(world.Y, pageSize)}
	zs := []int64{page.DivFloor(world.Z, pageSize)}
	if half > 0 {
		xs = append(xs, page.DivFloor(world.X-half, pageSize))
		ys = append(ys, page.DivFloor(world.Y-half, pageSize))
		zs = append(zs, page.DivFloor(world.Z-half, pageSize))
	}

	seen := make(map[page.Coord]struct{}, 8)
	var out []page.Coord
	for _, x := range xs {
		for _, y := range ys {
			for _, z := range zs {
				c := page.Coord{X: x, Y: y, Z: z}
				if _, ok := seen[c]; ok {
					continue
				}
				seen[c] = struct{}{}
				out = append(out, c)
			}
		}
	}
	return out
}
