// Package clipmap is the voxel clipmap streaming core: a toroidal,
// multi-LOD brick store kept in sync with a moving camera by an async
// page-build pipeline, exposed through World as a single facade a host
// application constructs once per voxel world.
//
// Grounded on the App/World wiring in voxelrt's root package and on
// ClipmapWorld in original_source/crates/voxelicous-world/src/lib.rs.
package clipmap

import (
	"github.com/PetrSeifert/voxelicous-clipmap-go/clipmap/core/brick"
	"github.com/PetrSeifert/voxelicous-clipmap-go/clipmap/core/stream"
	"github.com/PetrSeifert/voxelicous-clipmap-go/clipmap/core/terrain"
	"github.com/PetrSeifert/voxelicous-clipmap-go/clipmap/core/upload"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// Option configures a World at construction time.
type Option func(*worldOptions)

type worldOptions struct {
	logger Logger
	config stream.Config
}

// WithLogger installs a custom Logger. The default is DefaultLogger with
// debug logging disabled.
func WithLogger(logger Logger) Option {
	return func(o *worldOptions) { o.logger = logger }
}

// WithConfig overrides the streaming controller's tunables. The default is
// stream.DefaultConfig().
func WithConfig(cfg stream.Config) Option {
	return func(o *worldOptions) { o.config = cfg }
}

// World is one streamed voxel volume: a brick store, six LOD page tables,
// and the async build pipeline that keeps them current, identified by a
// stable id so a host managing several worlds (e.g. per save slot, per
// dimension) can tell them apart in logs and metrics.
type World struct {
	ID uuid.UUID

	logger   Logger
	profiler *Profiler
	ctrl     *stream.Controller
}

// NewWorld constructs a World streaming from oracle. Building starts on the
// first Update call, centered on whatever camera position is passed then.
func NewWorld(oracle terrain.Oracle, opts ...Option) *World {
	options := worldOptions{
		logger: NewDefaultLogger("clipmap", false),
		config: stream.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(&options)
	}

	profiler := NewProfiler()
	return &World{
		ID:       uuid.New(),
		logger:   options.logger,
		profiler: profiler,
		ctrl:     stream.New(oracle, options.config, options.logger, profiler),
	}
}

// Update advances streaming by one frame around cameraWorldPos. Controller.Update
// instruments its own per-stage scopes and counters through the same
// profiler, so no additional wrapping scope is taken here.
func (w *World) Update(cameraWorldPos mgl32.Vec3) {
	w.ctrl.Update(cameraWorldPos)
}

// TakeDirtyState drains the dirty ranges accumulated for frameSlot since its
// last call, ready to hand to an Uploader. frameSlot identifies which
// in-flight pipelined GPU frame is draining, out of stream.FrameSlots.
func (w *World) TakeDirtyState(frameSlot int) upload.DirtyState {
	return w.ctrl.TakeDirtyState(frameSlot)
}

// Upload runs uploader over the current brick store and page tables plus
// frameSlot's dirty ranges.
func (w *World) Upload(frameSlot int, uploader upload.Uploader) (*upload.GrowRequest, error) {
	dirty := w.TakeDirtyState(frameSlot)
	return uploader.Upload(w.ctrl.Store(), w.ctrl.LODStates(), dirty)
}

// BlockAtWorld samples the effective block id at a world voxel coordinate.
func (w *World) BlockAtWorld(x, y, z int64) brick.BlockId { return w.ctrl.BlockAtWorld(x, y, z) }

// SetBlockAtWorld applies a runtime edit. Returns true if the effective
// value changed.
func (w *World) SetBlockAtWorld(x, y, z int64, block brick.BlockId) bool {
	return w.ctrl.SetBlockAtWorld(x, y, z, block)
}

// DestroyBlockAtWorld sets a world voxel to air. Returns true if a solid
// block was destroyed.
func (w *World) DestroyBlockAtWorld(x, y, z int64) bool {
	return w.ctrl.DestroyBlockAtWorld(x, y, z)
}

// LODReady reports whether lod has an origin and no pending or in-flight
// page builds (see stream.Controller.LODReady).
func (w *World) LODReady(lod int) bool { return w.ctrl.LODReady(lod) }

// LODRenderable reports whether lod has at least one loaded page.
func (w *World) LODRenderable(lod int) bool { return w.ctrl.LODRenderable(lod) }

// Stats returns the profiler's accumulated per-scope timing summary.
func (w *World) Stats() string { return w.profiler.GetStatsString() }

// Close releases the streaming controller's worker pool. Call once, when
// the world is no longer needed.
func (w *World) Close() { w.ctrl.Close() }
