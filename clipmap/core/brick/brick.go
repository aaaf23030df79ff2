// Package brick implements the clipmap brick codec and brick store: fixed
// 8x8x8 voxel bricks encoded as palette16, palette32, or raw16 payloads,
// backed by three byte pools and a shared header table.
//
// Grounded on original_source/crates/voxelicous-voxel/src/clipmap.rs, with
// free-list/pool vocabulary matched to the teacher's
// voxelrt/rt/volume/xbrickmap.go and voxelrt/rt/gpu/manager_brickpool.go.
package brick

// BlockId identifies a block type. Zero is air.
type BlockId uint16

func (b BlockId) IsAir() bool   { return b == 0 }
func (b BlockId) IsSolid() bool { return b != 0 }

// Well-known block ids used by the downsample rule and package tests.
const (
	Air   BlockId = 0
	Stone BlockId = 1
	Dirt  BlockId = 2
	Grass BlockId = 3
)

// BrickId identifies a brick inside a Store. Zero is the permanent empty
// (all-air) brick sentinel; it is never encoded, pooled, or freed.
type BrickId uint32

const (
	// Size is the brick edge length in voxels.
	Size = 8
	// Voxels is the total voxel count per brick (8*8*8).
	Voxels = Size * Size * Size
)

// VoxelGrid is the dense voxel payload of one brick, x-fastest then y then z.
type VoxelGrid [Voxels]BlockId

func Index(x, y, z int) int { return x + y*Size + z*Size*Size }

// Encoding selects how a brick's voxel grid is packed into a pool entry.
type Encoding uint8

const (
	EncodingPalette16 Encoding = 0
	EncodingPalette32 Encoding = 1
	EncodingRaw16     Encoding = 2
)

func EncodingFromByte(v uint8) (Encoding, bool) {
	switch v {
	case uint8(EncodingPalette16):
		return EncodingPalette16, true
	case uint8(EncodingPalette32):
		return EncodingPalette32, true
	case uint8(EncodingRaw16):
		return EncodingRaw16, true
	default:
		return 0, false
	}
}

// Pool entry strides in bytes, per encoding.
const (
	Palette16Stride = 288
	Palette32Stride = 384
	Raw16Stride     = 1024
)

func strideFor(e Encoding) int {
	switch e {
	case EncodingPalette16:
		return Palette16Stride
	case EncodingPalette32:
		return Palette32Stride
	default:
		return Raw16Stride
	}
}
