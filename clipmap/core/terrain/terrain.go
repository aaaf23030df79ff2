// Package terrain defines the external terrain-oracle contract (C7) that
// the page builder samples from, plus small deterministic value-typed
// test doubles. Real procedural generation (noise-based, biome-aware) is
// out of scope here and lives in the external collaborator this interface
// abstracts over.
//
// Contract shape grounded on TerrainGenerator/SurfaceSample in
// original_source/crates/voxelicous-world/src/generation.rs.
package terrain

import "github.com/PetrSeifert/voxelicous-clipmap-go/clipmap/core/brick"

// Biome is a coarse terrain classification surfaced alongside a height
// sample; the core streaming pipeline does not interpret it, but carries
// it through for consumers that shade or place decoration by biome.
type Biome uint8

const (
	BiomePlains Biome = iota
	BiomeForest
	BiomeDesert
	BiomeHills
	BiomeSnowyMountains
)

// SurfaceSample is the result of a single (x, z) column query.
type SurfaceSample struct {
	SurfaceHeight    int32
	TopBlock         brick.BlockId
	SubsurfaceBlock  brick.BlockId
	WaterLevel       int32
	Biome            Biome
}

// Oracle is a pure, deterministic, concurrency-safe terrain source. A
// single oracle value is shared across every page-build worker goroutine,
// so implementations must not hold mutable state that BlockAtWorld or
// SurfaceAt writes to.
type Oracle interface {
	// BlockAtWorld returns the generated (pre-edit) block at a world voxel
	// coordinate. Must be a pure function of (x, y, z).
	BlockAtWorld(x, y, z int64) brick.BlockId
	// SurfaceAt returns the column sample used by the page builder's
	// unit-LOD fast path.
	SurfaceAt(x, z int64) SurfaceSample
	// DirtDepth sets where the column becomes Stone: below the surface
	// block, layers with y > surfaceHeight-DirtDepth are Dirt (DirtDepth-1
	// layers) and deeper ones are Stone, mirroring TerrainConfig.dirt_depth.
	DirtDepth() int64
}

// FlatOracle is a deterministic test double: a single flat surface height
// with a fixed top/subsurface block, dirt depth, and no water.
type FlatOracle struct {
	SurfaceHeight int32
	TopBlock      brick.BlockId
	Subsurface    brick.BlockId
	Depth         int64
}

// NewFlatOracle returns a FlatOracle with reasonable stone/dirt/grass defaults.
func NewFlatOracle(surfaceHeight int32) *FlatOracle {
	return &FlatOracle{
		SurfaceHeight: surfaceHeight,
		TopBlock:      brick.Grass,
		Subsurface:    brick.Dirt,
		Depth:         4,
	}
}

func (o *FlatOracle) BlockAtWorld(x, y, z int64) brick.BlockId {
	h := int64(o.SurfaceHeight)
	switch {
	case y > h:
		return brick.Air
	case y == h:
		return o.TopBlock
	case y > h-o.Depth:
		return o.Subsurface
	default:
		return brick.Stone
	}
}

func (o *FlatOracle) SurfaceAt(x, z int64) SurfaceSample {
	return SurfaceSample{
		SurfaceHeight:   o.SurfaceHeight,
		TopBlock:        o.TopBlock,
		SubsurfaceBlock: o.Subsurface,
		WaterLevel:      int32(o.SurfaceHeight) - 1,
		Biome:           BiomePlains,
	}
}

func (o *FlatOracle) DirtDepth() int64 { return o.Depth }

// HeightFieldOracle is a deterministic test double whose surface height
// varies with a simple closed-form function of (x, z), useful for
// exercising the builder's downsample path across a non-flat surface.
type HeightFieldOracle struct {
	BaseHeight int32
	Amplitude  int32
	Period     int64
	TopBlock   brick.BlockId
	Subsurface brick.BlockId
	Depth      int64
}

func NewHeightFieldOracle() *HeightFieldOracle {
	return &HeightFieldOracle{
		BaseHeight: 64,
		Amplitude:  8,
		Period:     32,
		TopBlock:   brick.Grass,
		Subsurface: brick.Dirt,
		Depth:      4,
	}
}

func (o *HeightFieldOracle) heightAt(x, z int64) int32 {
	// A cheap, fully deterministic triangle wave - no noise library, since
	// this exists only to exercise the pipeline in tests, not to generate
	// production terrain.
	period := o.Period
	if period <= 0 {
		period = 1
	}
	phase := modFloor(x+z, period)
	half := period / 2
	var tri int64
	if phase < half {
		tri = phase
	} else {
		tri = period - phase
	}
	return o.BaseHeight + int32(tri*int64(o.Amplitude)/half)
}

func modFloor(value, modulus int64) int64 {
	r := value % modulus
	if r < 0 {
		r += modulus
	}
	return r
}

func (o *HeightFieldOracle) BlockAtWorld(x, y, z int64) brick.BlockId {
	h := int64(o.heightAt(x, z))
	switch {
	case y > h:
		return brick.Air
	case y == h:
		return o.TopBlock
	case y > h-o.Depth:
		return o.Subsurface
	default:
		return brick.Stone
	}
}

func (o *HeightFieldOracle) SurfaceAt(x, z int64) SurfaceSample {
	h := o.heightAt(x, z)
	return SurfaceSample{
		SurfaceHeight:   h,
		TopBlock:        o.TopBlock,
		SubsurfaceBlock: o.Subsurface,
		WaterLevel:      h - 1,
		Biome:           BiomePlains,
	}
}

func (o *HeightFieldOracle) DirtDepth() int64 { return o.Depth }
