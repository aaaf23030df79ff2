package page

// State is one LOD level's toroidal page table: fixed-size SoA arrays
// addressed by Euclidean-modulo page coordinate, plus the bookkeeping a
// streaming controller needs to decide what to (re)build next.
//
// Grounded on ClipmapLodState in original_source's clipmap_streaming.rs.
type State struct {
	Origin    WorldCoord
	HasOrigin bool

	// PageBrickIndices is Count*Bricks brick.BrickId values, flattened.
	PageBrickIndices []uint32
	// PageOcc is a [lo, hi] 64-bit occupancy mask per page, split in two
	// 32-bit halves for GPU upload.
	PageOcc [][2]uint32
	// PageCoords holds the owning page-grid coordinate per slot, or
	// InvalidCoord when the slot is empty.
	PageCoords  [][4]int32
	PageLoaded  []bool
	LoadedPages int

	DirtyPages   []int
	PendingPages CoordDeque
	Generation   uint64
	InflightPages int
	Ready        bool
}

// NewState allocates a zeroed page table for one LOD level.
func NewState() *State {
	s := &State{
		PageBrickIndices: make([]uint32, Count*Bricks),
		PageOcc:          make([][2]uint32, Count),
		PageCoords:       make([][4]int32, Count),
		PageLoaded:       make([]bool, Count),
	}
	for i := range s.PageCoords {
		s.PageCoords[i] = InvalidCoord
	}
	return s
}

// Renderable reports whether at least one page is currently loaded.
func (s *State) Renderable() bool { return s.LoadedPages > 0 }
