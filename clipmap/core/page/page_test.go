package page

import (
	"testing"

	"github.com/PetrSeifert/voxelicous-clipmap-go/clipmap/core/brick"
	"github.com/PetrSeifert/voxelicous-clipmap-go/clipmap/core/terrain"
)

func TestDivFloorModFloorNegative(t *testing.T) {
	cases := []struct{ value, divisor, wantQ, wantR int64 }{
		{-1, 16, -1, 15},
		{-16, 16, -1, 0},
		{-17, 16, -2, 15},
		{31, 16, 1, 15},
		{32, 16, 2, 0},
	}
	for _, c := range cases {
		if q := DivFloor(c.value, c.divisor); q != c.wantQ {
			t.Errorf("DivFloor(%d, %d) = %d, want %d", c.value, c.divisor, q, c.wantQ)
		}
		if r := ModFloor(c.value, c.divisor); r != c.wantR {
			t.Errorf("ModFloor(%d, %d) = %d, want %d", c.value, c.divisor, r, c.wantR)
		}
	}
}

func TestIndexFromCoordWraps(t *testing.T) {
	a := IndexFromCoord(Coord{X: 0, Y: 0, Z: 0})
	b := IndexFromCoord(Coord{X: Grid, Y: 0, Z: 0})
	if a != b {
		t.Fatalf("coordinates one grid period apart should map to the same slot: %d != %d", a, b)
	}
	c := IndexFromCoord(Coord{X: -1, Y: 0, Z: 0})
	if c != IndexFromCoord(Coord{X: Grid - 1, Y: 0, Z: 0}) {
		t.Fatalf("negative coordinates should wrap via floor modulo")
	}
}

func TestDistanceToCameraSqOrdersByProximity(t *testing.T) {
	camera := WorldCoord{X: 10, Y: 11, Z: 12}
	pageSize := PageSize(0)
	near := DistanceToCameraSq(Coord{X: 0, Y: 0, Z: 0}, camera, pageSize)
	far := DistanceToCameraSq(Coord{X: 5, Y: 5, Z: 5}, camera, pageSize)
	if near.Cmp(far) >= 0 {
		t.Fatalf("expected the nearer page coordinate to have the smaller squared distance")
	}
}

func TestBuildPageDeterministic(t *testing.T) {
	oracle := terrain.NewHeightFieldOracle()
	edits := EditSnapshot{}

	a := BuildPage(oracle, edits, Coord{X: 1, Y: 0, Z: -2}, VoxelSize(0))
	b := BuildPage(oracle, edits, Coord{X: 1, Y: 0, Z: -2}, VoxelSize(0))

	if len(a.Bricks) != len(b.Bricks) {
		t.Fatalf("brick count mismatch: %d vs %d", len(a.Bricks), len(b.Bricks))
	}
	for i := range a.Bricks {
		if a.Bricks[i] != b.Bricks[i] {
			t.Fatalf("brick %d differs between identical BuildPage calls", i)
		}
	}
	if a.Occ != b.Occ {
		t.Fatalf("occupancy differs between identical BuildPage calls")
	}
}

func TestBuildPageEditOverridesGeneration(t *testing.T) {
	oracle := terrain.NewFlatOracle(10)
	edits := EditSnapshot{}
	coord := Coord{X: 0, Y: 0, Z: 0}

	base := BuildPage(oracle, edits, coord, VoxelSize(0))
	if base.Bricks[0][0].IsAir() {
		t.Fatalf("expected deep-underground voxel to be solid before any edit")
	}

	edits[WorldCoord{X: 0, Y: 0, Z: 0}] = 0 // air override
	edited := BuildPage(oracle, edits, coord, VoxelSize(0))
	if !edited.Bricks[0][0].IsAir() {
		t.Fatalf("edit override should take precedence over generated terrain")
	}
}

func TestBuildPageCoarseLODDownsamples(t *testing.T) {
	oracle := terrain.NewFlatOracle(64)
	edits := EditSnapshot{}

	built := BuildPage(oracle, edits, Coord{X: 0, Y: 0, Z: 0}, VoxelSize(2))
	if len(built.Bricks) != Bricks {
		t.Fatalf("expected %d bricks per page, got %d", Bricks, len(built.Bricks))
	}

	// The coarse voxel at world y=64 covers the grass surface (y=64) and the
	// air above it (y=66); the downsample rule keeps it as grass.
	if got := built.Bricks[2*BricksPerAxis][brick.Index(0, 0, 0)]; got != brick.Grass {
		t.Fatalf("surface voxel = %v, want Grass", got)
	}
}
