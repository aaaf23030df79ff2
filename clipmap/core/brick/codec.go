package brick

import "sort"

// EncodedBrick is the CPU-side result of Encode, ready for pool allocation.
type EncodedBrick struct {
	Encoding   Encoding
	PaletteLen uint8
	Data       []byte
}

// Encode packs a voxel grid into its smallest fitting encoding: palette16
// when at most 16 distinct block ids appear, palette32 for up to 32, else
// raw16. Palette entries are ordered by descending frequency, ties broken
// by ascending BlockId, so encoding is fully deterministic.
func Encode(voxels *VoxelGrid) EncodedBrick {
	counts := make(map[BlockId]int, 32)
	for _, v := range voxels {
		counts[v]++
	}

	type entry struct {
		id    BlockId
		count int
	}
	palette := make([]entry, 0, len(counts))
	for id, c := range counts {
		palette = append(palette, entry{id, c})
	}
	sort.Slice(palette, func(i, j int) bool {
		if palette[i].count != palette[j].count {
			return palette[i].count > palette[j].count
		}
		return palette[i].id < palette[j].id
	})

	switch {
	case len(palette) <= 16:
		var ids [16]BlockId
		for i, e := range palette {
			ids[i] = e.id
		}
		return EncodedBrick{
			Encoding:   EncodingPalette16,
			PaletteLen: uint8(len(palette)),
			Data:       encodePalette16(voxels, &ids),
		}
	case len(palette) <= 32:
		var ids [32]BlockId
		for i, e := range palette {
			ids[i] = e.id
		}
		return EncodedBrick{
			Encoding:   EncodingPalette32,
			PaletteLen: uint8(len(palette)),
			Data:       encodePalette32(voxels, &ids),
		}
	default:
		return EncodedBrick{
			Encoding:   EncodingRaw16,
			PaletteLen: 0,
			Data:       encodeRaw16(voxels),
		}
	}
}

// Decode unpacks a pool entry back into a dense voxel grid.
func Decode(encoding Encoding, paletteLen uint8, data []byte) VoxelGrid {
	switch encoding {
	case EncodingPalette16:
		return decodePalette16(data)
	case EncodingPalette32:
		return decodePalette32(data, paletteLen)
	default:
		return decodeRaw16(data)
	}
}

func encodePalette16(voxels *VoxelGrid, palette *[16]BlockId) []byte {
	data := make([]byte, Palette16Stride)
	index := make(map[BlockId]uint8, 16)
	for i, id := range palette {
		data[i*2] = byte(id)
		data[i*2+1] = byte(id >> 8)
		index[id] = uint8(i)
	}

	out := 32
	for i := 0; i < Voxels; i += 2 {
		idx0 := index[voxels[i]]
		idx1 := index[voxels[i+1]]
		data[out] = (idx0 & 0x0F) | ((idx1 & 0x0F) << 4)
		out++
	}
	return data
}

func decodePalette16(data []byte) VoxelGrid {
	var palette [16]BlockId
	for i := 0; i < 16; i++ {
		palette[i] = BlockId(uint16(data[i*2]) | uint16(data[i*2+1])<<8)
	}

	var out VoxelGrid
	outIdx := 0
	for _, b := range data[32:] {
		idx0 := b & 0x0F
		idx1 := (b >> 4) & 0x0F
		out[outIdx] = palette[idx0]
		out[outIdx+1] = palette[idx1]
		outIdx += 2
	}
	return out
}

func encodePalette32(voxels *VoxelGrid, palette *[32]BlockId) []byte {
	data := make([]byte, Palette32Stride)
	index := make(map[BlockId]uint8, 32)
	for i, id := range palette {
		data[i*2] = byte(id)
		data[i*2+1] = byte(id >> 8)
		index[id] = uint8(i)
	}

	const base = 64
	bitCursor := 0
	for _, v := range voxels {
		idx := index[v] & 0x1F
		byteIdx := base + (bitCursor >> 3)
		bitOff := uint(bitCursor & 7)

		data[byteIdx] |= idx << bitOff
		if bitOff > 3 && byteIdx+1 < len(data) {
			data[byteIdx+1] |= idx >> (8 - bitOff)
		}
		bitCursor += 5
	}
	return data
}

func decodePalette32(data []byte, paletteLen uint8) VoxelGrid {
	var palette [32]BlockId
	for i := 0; i < 32; i++ {
		palette[i] = BlockId(uint16(data[i*2]) | uint16(data[i*2+1])<<8)
	}
	maxIndex := paletteLen
	if maxIndex > 32 {
		maxIndex = 32
	}

	var out VoxelGrid
	const base = 64
	bitCursor := 0
	for i := 0; i < Voxels; i++ {
		byteIdx := base + (bitCursor >> 3)
		bitOff := uint(bitCursor & 7)
		low := uint16(data[byteIdx])
		var high uint16
		if byteIdx+1 < len(data) {
			high = uint16(data[byteIdx+1]) << 8
		}
		raw := low | high
		idx := uint8((raw >> bitOff) & 0x1F)
		if idx >= maxIndex {
			idx = 0
		}
		out[i] = palette[idx]
		bitCursor += 5
	}
	return out
}

func encodeRaw16(voxels *VoxelGrid) []byte {
	data := make([]byte, Raw16Stride)
	offset := 0
	for _, v := range voxels {
		data[offset] = byte(v)
		data[offset+1] = byte(v >> 8)
		offset += 2
	}
	return data
}

func decodeRaw16(data []byte) VoxelGrid {
	var out VoxelGrid
	for i := 0; i < Voxels; i++ {
		offset := i * 2
		out[i] = BlockId(uint16(data[offset]) | uint16(data[offset+1])<<8)
	}
	return out
}

// ComputeOccupancy derives the hierarchical occupancy masks from a dense
// voxel grid: occ_l0 at 2-voxel granularity (64 bits, split lo/hi),
// occ_l1 at 4-voxel granularity (8 bits), occ_l2 as any-solid (1 bit).
func ComputeOccupancy(voxels *VoxelGrid) (occL0Lo, occL0Hi uint32, occL1, occL2 uint8) {
	var occL0 uint64
	var any bool

	for z := 0; z < 4; z++ {
		for y := 0; y < 4; y++ {
			for x := 0; x < 4; x++ {
				solid := false
				for dz := 0; dz < 2 && !solid; dz++ {
					for dy := 0; dy < 2 && !solid; dy++ {
						for dx := 0; dx < 2 && !solid; dx++ {
							vx, vy, vz := x*2+dx, y*2+dy, z*2+dz
							if voxels[Index(vx, vy, vz)].IsSolid() {
								solid = true
								any = true
							}
						}
					}
				}
				if solid {
					bit := uint(x + y*4 + z*16)
					occL0 |= 1 << bit
				}
			}
		}
	}

	var occL1v uint8
	for z := 0; z < 2; z++ {
		for y := 0; y < 2; y++ {
			for x := 0; x < 2; x++ {
				solid := false
				for dz := 0; dz < 2 && !solid; dz++ {
					for dy := 0; dy < 2 && !solid; dy++ {
						for dx := 0; dx < 2 && !solid; dx++ {
							sx, sy, sz := x*2+dx, y*2+dy, z*2+dz
							bit := uint(sx + sy*4 + sz*16)
							if (occL0>>bit)&1 == 1 {
								solid = true
							}
						}
					}
				}
				if solid {
					bit := uint8(x + y*2 + z*4)
					occL1v |= 1 << bit
				}
			}
		}
	}

	if any {
		occL2 = 1
	}
	return uint32(occL0 & 0xFFFFFFFF), uint32(occL0 >> 32), occL1v, occL2
}

// DownsampleVoxel reduces a 2x2x2 group of child voxels to one parent voxel.
// Fewer than two solid children yields air. A mix of air and grass preserves
// grass, keeping thin surface shells visible at coarser LODs. Otherwise the
// most frequent solid id wins, ties broken by ascending BlockId.
func DownsampleVoxel(children *[8]BlockId) BlockId {
	counts := make(map[BlockId]int, 8)
	solidCount := 0
	hasAir := false
	hasGrass := false
	for _, v := range children {
		if v.IsSolid() {
			solidCount++
			counts[v]++
			if v == Grass {
				hasGrass = true
			}
		} else {
			hasAir = true
		}
	}

	if solidCount < 2 {
		return Air
	}
	if hasAir && hasGrass {
		return Grass
	}

	best := Air
	bestCount := 0
	for id, count := range counts {
		if count > bestCount || (count == bestCount && id < best) {
			best = id
			bestCount = count
		}
	}
	return best
}
