package brick

import "testing"

func TestHeaderSize(t *testing.T) {
	if HeaderSize != 32 {
		t.Fatalf("HeaderSize = %d, want 32", HeaderSize)
	}
	if got := len(Header{}.MarshalBinary()); got != HeaderSize {
		t.Fatalf("MarshalBinary length = %d, want %d", got, HeaderSize)
	}
}

func TestHeaderRoundTrip(t *testing.T) {
	h := Header{
		PaletteLen: 7,
		Encoding:   EncodingPalette32,
		Flags:      0x1234,
		DataIndex:  99,
		OccL0Lo:    0xAABBCCDD,
		OccL0Hi:    0x11223344,
		OccL1:      0xF0,
		OccL2:      1,
	}
	got := UnmarshalHeader(h.MarshalBinary())
	if got != h {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, h)
	}
}

func TestPalette16RoundTrip(t *testing.T) {
	var voxels VoxelGrid
	for i := range voxels {
		if i%7 == 0 {
			voxels[i] = Stone
		}
	}
	encoded := Encode(&voxels)
	if encoded.Encoding != EncodingPalette16 {
		t.Fatalf("encoding = %v, want Palette16", encoded.Encoding)
	}
	decoded := Decode(encoded.Encoding, encoded.PaletteLen, encoded.Data)
	if decoded != voxels {
		t.Fatalf("decoded grid does not match input")
	}
}

func TestPalette32RoundTrip(t *testing.T) {
	var voxels VoxelGrid
	for i := range voxels {
		voxels[i] = BlockId(i%31 + 1)
	}
	encoded := Encode(&voxels)
	if encoded.Encoding != EncodingPalette32 {
		t.Fatalf("encoding = %v, want Palette32", encoded.Encoding)
	}
	decoded := Decode(encoded.Encoding, encoded.PaletteLen, encoded.Data)
	if decoded != voxels {
		t.Fatalf("decoded grid does not match input")
	}
}

func TestRaw16RoundTrip(t *testing.T) {
	var voxels VoxelGrid
	for i := range voxels {
		voxels[i] = BlockId(i + 1)
	}
	encoded := Encode(&voxels)
	if encoded.Encoding != EncodingRaw16 {
		t.Fatalf("encoding = %v, want Raw16", encoded.Encoding)
	}
	decoded := Decode(encoded.Encoding, encoded.PaletteLen, encoded.Data)
	if decoded != voxels {
		t.Fatalf("decoded grid does not match input")
	}
}

func TestPalette32DecodeClampsOutOfRangeIndex(t *testing.T) {
	// A hand-built palette32 entry with paletteLen=1 and every index bit
	// set to 0x1F (31) must clamp to palette slot 0, per the store's
	// "out-of-range index clamps to 0" invariant.
	data := make([]byte, Palette32Stride)
	data[0], data[1] = byte(Stone), 0
	for i := 64; i < Palette32Stride; i++ {
		data[i] = 0xFF
	}
	decoded := decodePalette32(data, 1)
	for i, v := range decoded {
		if v != Stone {
			t.Fatalf("voxel %d = %v, want Stone (clamped)", i, v)
		}
	}
}

func TestComputeOccupancy(t *testing.T) {
	var voxels VoxelGrid
	voxels[0] = Stone
	voxels[Voxels-1] = Stone

	lo, hi, l1, l2 := ComputeOccupancy(&voxels)
	if lo == 0 && hi == 0 {
		t.Fatalf("occ_l0 should be non-zero")
	}
	if l1 == 0 {
		t.Fatalf("occ_l1 should be non-zero")
	}
	if l2 != 1 {
		t.Fatalf("occ_l2 = %d, want 1", l2)
	}
}

func TestComputeOccupancyEmpty(t *testing.T) {
	var voxels VoxelGrid
	lo, hi, l1, l2 := ComputeOccupancy(&voxels)
	if lo != 0 || hi != 0 || l1 != 0 || l2 != 0 {
		t.Fatalf("all-air brick should have zero occupancy")
	}
}

func TestDownsampleRule(t *testing.T) {
	children := [8]BlockId{Air, Stone, Stone, Air, Air, Air, Air, Air}
	if got := DownsampleVoxel(&children); got != Stone {
		t.Fatalf("DownsampleVoxel = %v, want Stone", got)
	}
}

func TestDownsamplePreservesSurfaceGrass(t *testing.T) {
	children := [8]BlockId{Air, Air, Grass, Dirt, Stone, Stone, Air, Air}
	if got := DownsampleVoxel(&children); got != Grass {
		t.Fatalf("DownsampleVoxel = %v, want Grass", got)
	}
}

func TestDownsampleSingleSolidIsAir(t *testing.T) {
	children := [8]BlockId{Air, Air, Air, Air, Air, Air, Air, Stone}
	if got := DownsampleVoxel(&children); got != Air {
		t.Fatalf("DownsampleVoxel = %v, want Air (single solid neighbor)", got)
	}
}

func TestStoreAllocateAndDecode(t *testing.T) {
	store := NewStore()

	var voxels VoxelGrid
	voxels[0] = Stone
	id := store.AllocateBrick(&voxels)
	if id == 0 {
		t.Fatalf("allocating a non-air brick must not return BrickId 0")
	}

	decoded, ok := store.DecodeBrick(id)
	if !ok {
		t.Fatalf("DecodeBrick(%d) failed", id)
	}
	if decoded != voxels {
		t.Fatalf("decoded voxels do not match allocated voxels")
	}
}

func TestStoreAllAirReturnsSentinel(t *testing.T) {
	store := NewStore()
	var voxels VoxelGrid
	if id := store.AllocateBrick(&voxels); id != 0 {
		t.Fatalf("all-air brick should allocate to BrickId 0, got %d", id)
	}
}

func TestStoreFreeReusesHeaderSlot(t *testing.T) {
	store := NewStore()
	var voxels VoxelGrid
	voxels[0] = Stone

	id1 := store.AllocateBrick(&voxels)
	store.FreeBrick(id1)

	voxels[1] = Dirt
	id2 := store.AllocateBrick(&voxels)
	if id2 != id1 {
		t.Fatalf("freed header slot should be reused: got %d, want %d", id2, id1)
	}
}

func TestStoreFreeBrickZeroIsNoop(t *testing.T) {
	store := NewStore()
	store.FreeBrick(0)
	if store.BrickCount() != 1 {
		t.Fatalf("freeing BrickId 0 must not mutate the store")
	}
}
