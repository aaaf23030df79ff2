package page

import (
	"github.com/PetrSeifert/voxelicous-clipmap-go/clipmap/core/brick"
	"github.com/PetrSeifert/voxelicous-clipmap-go/clipmap/core/terrain"
)

// EditSnapshot is an immutable point-in-time view of runtime edits,
// world voxel coordinate to overriding block id. A snapshot is replaced
// wholesale on each edit (never mutated in place) so it is safe to share
// by pointer across build worker goroutines without locking.
type EditSnapshot map[WorldCoord]brick.BlockId

func (e EditSnapshot) lookup(x, y, z int64) (brick.BlockId, bool) {
	v, ok := e[WorldCoord{X: x, Y: y, Z: z}]
	return v, ok
}

// Clone returns an independent copy of the snapshot. Edits replace the
// controller's snapshot wholesale on each write rather than mutating it in
// place, so a cloned snapshot can be safely handed to in-flight build jobs
// without locking.
func (e EditSnapshot) Clone() EditSnapshot {
	out := make(EditSnapshot, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// Built is the pure output of BuildPage: one page's worth of brick voxel
// grids plus a coarse per-brick occupancy hint.
type Built struct {
	Coord  Coord
	Bricks []brick.VoxelGrid
	Occ    uint64
}

// BuildPage deterministically samples one page's voxel content from the
// terrain oracle and edit snapshot. Identical (oracle, edits, coord,
// voxelSize) inputs always produce byte-identical output - this pure
// function is what streaming worker goroutines run off the main thread.
//
// Grounded on build_page_voxels in original_source's clipmap_streaming.rs.
func BuildPage(oracle terrain.Oracle, edits EditSnapshot, coord Coord, voxelSize int64) Built {
	pageSize := PageSize(lodForVoxelSize(voxelSize))
	pageOrigin := WorldCoord{
		X: coord.X * pageSize,
		Y: coord.Y * pageSize,
		Z: coord.Z * pageSize,
	}

	if voxelSize == 1 {
		return buildUnitLOD(oracle, edits, coord, pageOrigin)
	}

	var occ uint64
	bricks := make([]brick.VoxelGrid, 0, Bricks)

	for bz := 0; bz < BricksPerAxis; bz++ {
		for by := 0; by < BricksPerAxis; by++ {
			for bx := 0; bx < BricksPerAxis; bx++ {
				brickOrigin := WorldCoord{
					X: pageOrigin.X + int64(bx*brick.Size)*voxelSize,
					Y: pageOrigin.Y + int64(by*brick.Size)*voxelSize,
					Z: pageOrigin.Z + int64(bz*brick.Size)*voxelSize,
				}

				var voxels brick.VoxelGrid
				anySolid := false
				for z := 0; z < brick.Size; z++ {
					for y := 0; y < brick.Size; y++ {
						for x := 0; x < brick.Size; x++ {
							worldX := brickOrigin.X + int64(x)*voxelSize
							worldY := brickOrigin.Y + int64(y)*voxelSize
							worldZ := brickOrigin.Z + int64(z)*voxelSize

							block := sampleVoxel(oracle, edits, worldX, worldY, worldZ, voxelSize)
							voxels[brick.Index(x, y, z)] = block
							if block.IsSolid() {
								anySolid = true
							}
						}
					}
				}

				brickIdx := bx + by*BricksPerAxis + bz*BricksPerAxis*BricksPerAxis
				if anySolid {
					occ |= 1 << uint(brickIdx)
				}
				bricks = append(bricks, voxels)
			}
		}
	}

	return Built{Coord: coord, Bricks: bricks, Occ: occ}
}

func buildUnitLOD(oracle terrain.Oracle, edits EditSnapshot, coord Coord, pageOrigin WorldCoord) Built {
	var occ uint64
	bricks := make([]brick.VoxelGrid, 0, Bricks)

	surfaceHeights := make([]int32, VoxelsPerAxis*VoxelsPerAxis)
	surfaceBlocks := make([]brick.BlockId, VoxelsPerAxis*VoxelsPerAxis)

	for z := 0; z < VoxelsPerAxis; z++ {
		for x := 0; x < VoxelsPerAxis; x++ {
			worldX := pageOrigin.X + int64(x)
			worldZ := pageOrigin.Z + int64(z)
			sample := oracle.SurfaceAt(worldX, worldZ)
			idx := x + z*VoxelsPerAxis
			surfaceHeights[idx] = sample.SurfaceHeight
			surfaceBlocks[idx] = sample.TopBlock
		}
	}

	dirtDepth := oracle.DirtDepth()
	for bz := 0; bz < BricksPerAxis; bz++ {
		for by := 0; by < BricksPerAxis; by++ {
			for bx := 0; bx < BricksPerAxis; bx++ {
				brickOrigin := WorldCoord{
					X: pageOrigin.X + int64(bx*brick.Size),
					Y: pageOrigin.Y + int64(by*brick.Size),
					Z: pageOrigin.Z + int64(bz*brick.Size),
				}

				var voxels brick.VoxelGrid
				anySolid := false
				for z := 0; z < brick.Size; z++ {
					for y := 0; y < brick.Size; y++ {
						for x := 0; x < brick.Size; x++ {
							worldX := brickOrigin.X + int64(x)
							worldY := brickOrigin.Y + int64(y)
							worldZ := brickOrigin.Z + int64(z)
							pageX := bx*brick.Size + x
							pageZ := bz*brick.Size + z
							idx := pageX + pageZ*VoxelsPerAxis
							surfaceHeight := int64(surfaceHeights[idx])
							surfaceBlock := surfaceBlocks[idx]

							generated := blockFromSurfaceHeight(worldY, surfaceHeight, dirtDepth, surfaceBlock)
							block := generated
							if override, ok := edits.lookup(worldX, worldY, worldZ); ok {
								block = override
							}
							voxels[brick.Index(x, y, z)] = block
							if block.IsSolid() {
								anySolid = true
							}
						}
					}
				}

				brickIdx := bx + by*BricksPerAxis + bz*BricksPerAxis*BricksPerAxis
				if anySolid {
					occ |= 1 << uint(brickIdx)
				}
				bricks = append(bricks, voxels)
			}
		}
	}

	return Built{Coord: coord, Bricks: bricks, Occ: occ}
}

func sampleVoxel(oracle terrain.Oracle, edits EditSnapshot, worldX, worldY, worldZ, voxelSize int64) brick.BlockId {
	if voxelSize <= 1 {
		return sampleBase(oracle, edits, worldX, worldY, worldZ)
	}

	child := voxelSize / 2
	var children [8]brick.BlockId
	idx := 0
	for dz := int64(0); dz < 2; dz++ {
		for dy := int64(0); dy < 2; dy++ {
			for dx := int64(0); dx < 2; dx++ {
				children[idx] = sampleBase(oracle, edits, worldX+dx*child, worldY+dy*child, worldZ+dz*child)
				idx++
			}
		}
	}
	return brick.DownsampleVoxel(&children)
}

func sampleBase(oracle terrain.Oracle, edits EditSnapshot, worldX, worldY, worldZ int64) brick.BlockId {
	if v, ok := edits.lookup(worldX, worldY, worldZ); ok {
		return v
	}
	return oracle.BlockAtWorld(worldX, worldY, worldZ)
}

func blockFromSurfaceHeight(worldY, surfaceHeight, dirtDepth int64, surfaceBlock brick.BlockId) brick.BlockId {
	switch {
	case worldY > surfaceHeight:
		return brick.Air
	case worldY == surfaceHeight:
		return surfaceBlock
	case worldY > surfaceHeight-dirtDepth:
		return brick.Dirt
	default:
		return brick.Stone
	}
}

// lodForVoxelSize inverts VoxelSize(lod) = 1<<lod.
func lodForVoxelSize(voxelSize int64) int {
	lod := 0
	for v := voxelSize; v > 1; v >>= 1 {
		lod++
	}
	return lod
}
