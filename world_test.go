package clipmap

import (
	"testing"

	"github.com/PetrSeifert/voxelicous-clipmap-go/clipmap/camera"
	"github.com/PetrSeifert/voxelicous-clipmap-go/clipmap/core/brick"
	"github.com/PetrSeifert/voxelicous-clipmap-go/clipmap/core/terrain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWorldAssignsDistinctIDs(t *testing.T) {
	w := NewWorld(terrain.NewFlatOracle(0))
	defer w.Close()

	other := NewWorld(terrain.NewFlatOracle(0))
	defer other.Close()

	assert.NotEqual(t, w.ID, other.ID, "each world should get its own identity")
}

func TestWorldUpdateDrivenByCamera(t *testing.T) {
	w := NewWorld(terrain.NewFlatOracle(0))
	defer w.Close()

	cam := camera.New()
	for i := 0; i < 500; i++ {
		w.Update(cam.Position)
		cam.Move(0.1, 0, 0)
	}

	require.NotPanics(t, func() { w.Stats() })
}

func TestWorldEditRoundTrips(t *testing.T) {
	w := NewWorld(terrain.NewFlatOracle(0))
	defer w.Close()

	cam := camera.New()
	for i := 0; i < 200; i++ {
		w.Update(cam.Position)
	}

	require.True(t, w.DestroyBlockAtWorld(0, 0, 0), "the flat oracle's surface block at y=0 must be solid")
	assert.Equal(t, brick.Air, w.BlockAtWorld(0, 0, 0))

	require.True(t, w.SetBlockAtWorld(0, 0, 0, brick.Grass), "restoring the generated block must report a change")
	assert.Equal(t, brick.Grass, w.BlockAtWorld(0, 0, 0))
}
