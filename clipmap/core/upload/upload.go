// Package upload specifies the abstract GPU-upload contract (C8): the
// dirty-range payload a stream.Controller produces each frame, and the
// byte-exact buffer layouts an Uploader implementation consumes. No
// concrete GPU backend ships here - a real implementation lives outside
// this module and is wired in only through the Uploader interface.
package upload

import (
	"encoding/binary"
	"math"

	"github.com/PetrSeifert/voxelicous-clipmap-go/clipmap/core/brick"
	"github.com/PetrSeifert/voxelicous-clipmap-go/clipmap/core/page"
)

// DirtyState mirrors the payload drained from a clipmap dirty ledger for
// one frame: which page slots changed per LOD, and which brick headers
// and pool entries need re-upload.
type DirtyState struct {
	DirtyPages           [page.LODCount][]int
	DirtyHeaders         []brick.BrickId
	DirtyPalette16Entries []uint32
	DirtyPalette32Entries []uint32
	DirtyRaw16Entries     []uint32
}

// GrowRequest signals that a pool or header buffer must be reallocated
// before the next upload: GPU buffers grow by doubling, and the old
// buffer must be retired only after in-flight GPU work referencing it has
// drained (deferred-delete), never freed synchronously with the resize.
type GrowRequest struct {
	GrowHeaders    bool
	GrowPalette16  bool
	GrowPalette32  bool
	GrowRaw16      bool
	NewHeaderCap   int
	NewPool16Cap   int
	NewPool32Cap   int
	NewPool64Cap   int
}

// Uploader is the external GPU-facing consumer of clipmap state. An
// implementation owns device buffers sized from the brick store's pools
// and the per-LOD page tables, and applies only the byte ranges named by
// DirtyState on each call.
type Uploader interface {
	// Upload pushes this frame's dirty ranges to the device. Returning a
	// non-nil GrowRequest tells the controller's caller that a buffer
	// must be grown (doubled) before the next call succeeds.
	Upload(store *brick.Store, lods [page.LODCount]*page.State, dirty DirtyState) (*GrowRequest, error)
}

// Pool entry strides in bytes, mirrored from package brick for callers
// that only import upload.
const (
	Palette16Stride = brick.Palette16Stride
	Palette32Stride = brick.Palette32Stride
	Raw16Stride     = brick.Raw16Stride
	HeaderStride    = brick.HeaderSize
)

// InfoSize is the exact byte size of GpuClipmapInfo.
const InfoSize = 576

// Info is the per-frame GPU-facing clipmap description, byte-exact to spec
// §6's GpuClipmapInfo. Device buffer addresses are opaque uint64 values
// this module never populates (no concrete GPU backend ships here - see
// DESIGN.md); a real Uploader fills them in with whatever device pointers
// or bind-group offsets its backend uses.
type Info struct {
	// PageBrickIndicesAddr/PageOccAddr/PageCoordAddr are the per-LOD device
	// addresses of each LOD's page tables.
	PageBrickIndicesAddr [page.LODCount]uint64
	PageOccAddr          [page.LODCount]uint64
	PageCoordAddr        [page.LODCount]uint64
	// BrickHeaderAddr/Palette16Addr/Palette32Addr/Raw16Addr are the brick
	// store's device addresses, shared across every LOD.
	BrickHeaderAddr uint64
	Palette16Addr   uint64
	Palette32Addr   uint64
	Raw16Addr       uint64
	Pad0            uint64
	Pad1            uint64
	// Origin, in base world voxels, per LOD. Component 3 is padding, to
	// keep each LOD's entry 16-byte aligned for direct shader binding.
	Origin [page.LODCount][4]int32
	// VoxelSize, in base voxels, per LOD; component 3 is padding.
	VoxelSize [page.LODCount][4]uint32
	// AABBMin/AABBMax, in world units, per LOD (for frustum culling);
	// component 3 is padding.
	AABBMin [page.LODCount][4]float32
	AABBMax [page.LODCount][4]float32
}

// MarshalBinary encodes Info into exactly InfoSize little-endian bytes,
// field order matching spec §6's GpuClipmapInfo exactly: three per-LOD
// address arrays (144B), four scalar addresses plus two pad u64s (48B),
// then origin/voxel_size/aabb_min/aabb_max, each a per-LOD vec4 (96B each).
func (i Info) MarshalBinary() []byte {
	buf := make([]byte, InfoSize)
	off := 0

	putU64Array := func(vals [page.LODCount]uint64) {
		for lod := 0; lod < page.LODCount; lod++ {
			binary.LittleEndian.PutUint64(buf[off:off+8], vals[lod])
			off += 8
		}
	}
	putU64Array(i.PageBrickIndicesAddr)
	putU64Array(i.PageOccAddr)
	putU64Array(i.PageCoordAddr)

	for _, addr := range []uint64{i.BrickHeaderAddr, i.Palette16Addr, i.Palette32Addr, i.Raw16Addr, i.Pad0, i.Pad1} {
		binary.LittleEndian.PutUint64(buf[off:off+8], addr)
		off += 8
	}

	for lod := 0; lod < page.LODCount; lod++ {
		for comp := 0; comp < 4; comp++ {
			binary.LittleEndian.PutUint32(buf[off:off+4], uint32(i.Origin[lod][comp]))
			off += 4
		}
	}
	for lod := 0; lod < page.LODCount; lod++ {
		for comp := 0; comp < 4; comp++ {
			binary.LittleEndian.PutUint32(buf[off:off+4], i.VoxelSize[lod][comp])
			off += 4
		}
	}
	for lod := 0; lod < page.LODCount; lod++ {
		for comp := 0; comp < 4; comp++ {
			binary.LittleEndian.PutUint32(buf[off:off+4], math.Float32bits(i.AABBMin[lod][comp]))
			off += 4
		}
	}
	for lod := 0; lod < page.LODCount; lod++ {
		for comp := 0; comp < 4; comp++ {
			binary.LittleEndian.PutUint32(buf[off:off+4], math.Float32bits(i.AABBMax[lod][comp]))
			off += 4
		}
	}

	return buf
}
