package brick

// Store holds every brick's header plus the three per-encoding byte pools
// backing their payloads. BrickId 0 is reserved at construction as the
// permanent empty/air sentinel and is never allocated, freed, or encoded.
//
// Grounded on ClipmapVoxelStore in original_source's clipmap.rs; free-list
// and pool-growth vocabulary matched to the teacher's
// voxelrt/rt/gpu/manager_brickpool.go.
type Store struct {
	headers []Header

	palette16Pool []byte
	palette32Pool []byte
	raw16Pool     []byte

	freeHeaders   []uint32
	freePalette16 []uint32
	freePalette32 []uint32
	freeRaw16     []uint32
}

// NewStore constructs an empty store with brick id 0 reserved for air.
func NewStore() *Store {
	s := &Store{}
	s.headers = append(s.headers, defaultHeader())
	return s
}

// BrickCount returns the total number of brick headers, including the
// reserved empty brick at id 0.
func (s *Store) BrickCount() int { return len(s.headers) }

// Header returns the header for id, if allocated.
func (s *Store) Header(id BrickId) (Header, bool) {
	idx := int(id)
	if idx < 0 || idx >= len(s.headers) {
		return Header{}, false
	}
	return s.headers[idx], true
}

// AllocateBrick encodes voxels and stores them, returning the new BrickId.
// An all-air grid always returns BrickId 0 without allocating pool space.
func (s *Store) AllocateBrick(voxels *VoxelGrid) BrickId {
	allAir := true
	for _, v := range voxels {
		if v.IsSolid() {
			allAir = false
			break
		}
	}
	if allAir {
		return BrickId(0)
	}

	encoded := Encode(voxels)

	var dataIndex uint32
	switch encoded.Encoding {
	case EncodingPalette16:
		dataIndex = allocatePoolEntry(Palette16Stride, &s.palette16Pool, &s.freePalette16, encoded.Data)
	case EncodingPalette32:
		dataIndex = allocatePoolEntry(Palette32Stride, &s.palette32Pool, &s.freePalette32, encoded.Data)
	default:
		dataIndex = allocatePoolEntry(Raw16Stride, &s.raw16Pool, &s.freeRaw16, encoded.Data)
	}

	occL0Lo, occL0Hi, occL1, occL2 := ComputeOccupancy(voxels)

	header := Header{
		PaletteLen: encoded.PaletteLen,
		Encoding:   encoded.Encoding,
		DataIndex:  dataIndex,
		OccL0Lo:    occL0Lo,
		OccL0Hi:    occL0Hi,
		OccL1:      occL1,
		OccL2:      occL2,
	}

	if n := len(s.freeHeaders); n > 0 {
		idx := s.freeHeaders[n-1]
		s.freeHeaders = s.freeHeaders[:n-1]
		if int(idx) < len(s.headers) {
			s.headers[idx] = header
			return BrickId(idx)
		}
	}

	id := BrickId(len(s.headers))
	s.headers = append(s.headers, header)
	return id
}

// FreeBrick releases a brick's pool entry and header back to their
// free-lists. Freeing BrickId 0 is a no-op. Callers needing GPU-lifetime
// safety should defer the call via a release-frame queue (see
// clipmap/core/stream.Controller) rather than calling this directly from
// render-visible code paths.
func (s *Store) FreeBrick(id BrickId) {
	if id == 0 {
		return
	}
	idx := int(id)
	if idx >= len(s.headers) {
		return
	}
	header := s.headers[idx]
	if enc, ok := EncodingFromByte(uint8(header.Encoding)); ok {
		switch enc {
		case EncodingPalette16:
			s.freePalette16 = append(s.freePalette16, header.DataIndex)
		case EncodingPalette32:
			s.freePalette32 = append(s.freePalette32, header.DataIndex)
		case EncodingRaw16:
			s.freeRaw16 = append(s.freeRaw16, header.DataIndex)
		}
	}
	s.headers[idx] = defaultHeader()
	s.freeHeaders = append(s.freeHeaders, uint32(idx))
}

// DecodeBrick reconstructs the dense voxel grid for id.
func (s *Store) DecodeBrick(id BrickId) (VoxelGrid, bool) {
	header, ok := s.Header(id)
	if !ok {
		return VoxelGrid{}, false
	}
	enc, ok := EncodingFromByte(uint8(header.Encoding))
	if !ok {
		return VoxelGrid{}, false
	}

	var data []byte
	switch enc {
	case EncodingPalette16:
		data, ok = poolEntry(s.palette16Pool, Palette16Stride, header.DataIndex)
	case EncodingPalette32:
		data, ok = poolEntry(s.palette32Pool, Palette32Stride, header.DataIndex)
	default:
		data, ok = poolEntry(s.raw16Pool, Raw16Stride, header.DataIndex)
	}
	if !ok {
		return VoxelGrid{}, false
	}
	return Decode(enc, header.PaletteLen, data), true
}

// Headers returns the raw header table for GPU upload.
func (s *Store) Headers() []Header { return s.headers }

// Palette16Pool returns the palette16 pool as raw bytes for GPU upload.
func (s *Store) Palette16Pool() []byte { return s.palette16Pool }

// Palette32Pool returns the palette32 pool as raw bytes for GPU upload.
func (s *Store) Palette32Pool() []byte { return s.palette32Pool }

// Raw16Pool returns the raw16 pool as raw bytes for GPU upload.
func (s *Store) Raw16Pool() []byte { return s.raw16Pool }

// PoolBytesUsed returns the combined byte length of every encoding pool,
// for the pool_bytes_used profiler counter.
func (s *Store) PoolBytesUsed() int {
	return len(s.palette16Pool) + len(s.palette32Pool) + len(s.raw16Pool)
}

func allocatePoolEntry(stride int, pool *[]byte, freeList *[]uint32, data []byte) uint32 {
	if n := len(*freeList); n > 0 {
		index := (*freeList)[n-1]
		*freeList = (*freeList)[:n-1]
		offset := int(index) * stride
		copy((*pool)[offset:offset+stride], data)
		return index
	}
	index := uint32(len(*pool) / stride)
	*pool = append(*pool, data...)
	return index
}

func poolEntry(pool []byte, stride int, index uint32) ([]byte, bool) {
	offset := int(index) * stride
	if offset+stride > len(pool) {
		return nil, false
	}
	return pool[offset : offset+stride], true
}
