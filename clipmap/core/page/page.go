// Package page implements the clipmap LOD page table (C3) and the pure
// page-build function (C4): toroidal SoA page tables per LOD level and a
// deterministic terrain-to-bricks builder.
//
// Grounded on ClipmapLodState/build_page_voxels in
// original_source/crates/voxelicous-world/src/clipmap_streaming.rs.
package page

import "math/big"

const (
	// LODCount is the number of clipmap levels of detail.
	LODCount = 6
	// Grid is the page grid size per axis, per LOD.
	Grid = 16
	// BricksPerAxis is the number of bricks per page per axis (4x4x4).
	BricksPerAxis = 4
	// Bricks is the total bricks per page (4x4x4 = 64).
	Bricks = BricksPerAxis * BricksPerAxis * BricksPerAxis
	// VoxelsPerAxis is voxels per page per axis (4 bricks * 8 voxels = 32).
	VoxelsPerAxis = BricksPerAxis * 8

	// Count is the total number of page slots per LOD (16^3).
	Count = Grid * Grid * Grid
)

// WorldCoord is an integer world-space voxel coordinate.
type WorldCoord struct {
	X, Y, Z int64
}

// Coord is a page-grid coordinate: one unit equals one page at whatever
// voxel size its owning LOD uses.
type Coord struct {
	X, Y, Z int64
}

// VoxelSize returns the edge length, in base voxels, of one voxel at lod.
func VoxelSize(lod int) int64 { return int64(1) << uint(lod) }

// Coverage returns the world-space extent, in base voxels, covered by lod.
func Coverage(lod int) int64 {
	voxels := int64(Grid * VoxelsPerAxis)
	return voxels * VoxelSize(lod)
}

// PageSize returns the world-space edge length, in base voxels, of one
// page at lod.
func PageSize(lod int) int64 {
	return int64(VoxelsPerAxis) * VoxelSize(lod)
}

// InvalidCoord is the page_coords sentinel for an empty toroidal slot.
var InvalidCoord = [4]int32{int32(-1 << 31), int32(-1 << 31), int32(-1 << 31), 0}

// DivFloor performs Euclidean (floor) integer division.
func DivFloor(value, divisor int64) int64 {
	q := value / divisor
	r := value % divisor
	if r != 0 && (r > 0) != (divisor > 0) {
		q--
	}
	return q
}

// ModFloor performs Euclidean (floor) integer modulo, always non-negative
// for a positive modulus.
func ModFloor(value, modulus int64) int64 {
	r := value % modulus
	if r < 0 {
		r += modulus
	}
	return r
}

// AlignedOrigin snaps a camera-centered window to a page-size-aligned
// world-space origin (the LOD's min corner).
func AlignedOrigin(camera WorldCoord, coverage, pageSize int64) WorldCoord {
	half := coverage / 2
	return WorldCoord{
		X: DivFloor(camera.X-half, pageSize) * pageSize,
		Y: DivFloor(camera.Y-half, pageSize) * pageSize,
		Z: DivFloor(camera.Z-half, pageSize) * pageSize,
	}
}

// IndexFromCoord maps a page-grid coordinate onto its toroidal slot index
// via Euclidean modulo, so the same fixed-size SoA arrays back whichever
// window of the infinite world is currently in view.
func IndexFromCoord(coord Coord) int {
	ix := int(ModFloor(coord.X, Grid))
	iy := int(ModFloor(coord.Y, Grid))
	iz := int(ModFloor(coord.Z, Grid))
	return ix + iy*Grid + iz*Grid*Grid
}

// DistanceToCameraSq computes the squared distance from a page's center to
// the camera voxel, in big.Int to avoid overflow: at coarse LODs page_size
// and page coordinates both grow, and their product can exceed the range
// of a native 64-bit integer well before the comparison that orders the
// pending-page queue would overflow silently.
func DistanceToCameraSq(coord Coord, camera WorldCoord, pageSize int64) *big.Int {
	halfPage := pageSize / 2

	centerX := new(big.Int).Mul(big.NewInt(coord.X), big.NewInt(pageSize))
	centerX.Add(centerX, big.NewInt(halfPage))
	centerY := new(big.Int).Mul(big.NewInt(coord.Y), big.NewInt(pageSize))
	centerY.Add(centerY, big.NewInt(halfPage))
	centerZ := new(big.Int).Mul(big.NewInt(coord.Z), big.NewInt(pageSize))
	centerZ.Add(centerZ, big.NewInt(halfPage))

	dx := new(big.Int).Sub(centerX, big.NewInt(camera.X))
	dy := new(big.Int).Sub(centerY, big.NewInt(camera.Y))
	dz := new(big.Int).Sub(centerZ, big.NewInt(camera.Z))

	dx.Mul(dx, dx)
	dy.Mul(dy, dy)
	dz.Mul(dz, dz)

	dx.Add(dx, dy)
	dx.Add(dx, dz)
	return dx
}
