// Package stream implements the clipmap streaming controller (C5) and its
// dirty ledger (C6): per-frame orchestration of toroidal page tables across
// every LOD, backed by an async worker pool that runs the page builder off
// the main thread.
//
// Grounded on ClipmapStreamingController in
// original_source/crates/voxelicous-world/src/clipmap_streaming.rs. The
// original's rayon::spawn-per-job model is replaced by a persistent
// goroutine pool (see workers.go); every other stage mirrors the original
// update() orchestration exactly.
package stream

import (
	"math"

	"github.com/PetrSeifert/voxelicous-clipmap-go/clipmap/core/brick"
	"github.com/PetrSeifert/voxelicous-clipmap-go/clipmap/core/page"
	"github.com/PetrSeifert/voxelicous-clipmap-go/clipmap/core/terrain"
	"github.com/go-gl/mathgl/mgl32"
)

// Logger is the minimal sink type the controller accepts for soft,
// non-fatal conditions. The controller keeps it but writes nothing to it:
// stale results and out-of-coverage pages are dropped silently.
// Structurally compatible with the root package's Logger interface so any
// implementation of one satisfies the other.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any) {}
func (nopLogger) Infof(string, ...any)  {}
func (nopLogger) Warnf(string, ...any)  {}
func (nopLogger) Errorf(string, ...any) {}

type deferredFree struct {
	releaseFrame uint64
	id           brick.BrickId
}

// Controller is the clipmap streaming core: one brick store, one toroidal
// page table per LOD, a runtime edit overlay, and the async page-build
// pipeline that keeps them all in sync with a moving camera.
type Controller struct {
	cfg      Config
	logger   Logger
	profiler Profiler

	oracle       terrain.Oracle
	edits        page.EditSnapshot
	editSnapshot page.EditSnapshot

	store *brick.Store
	lods  [page.LODCount]*page.State

	cameraVoxel     page.WorldCoord
	frameCounter    uint64
	coarseLODCursor int
	bootstrapLOD    int

	dirty dirtyLedger

	pool         *workerPool
	inflightJobs int
	pendingFrees []deferredFree
}

// New constructs a streaming controller over oracle. A nil logger installs
// a no-op sink; a nil profiler installs a no-op sink.
func New(oracle terrain.Oracle, cfg Config, logger Logger, profiler Profiler) *Controller {
	if logger == nil {
		logger = nopLogger{}
	}
	if profiler == nil {
		profiler = nopProfiler{}
	}

	c := &Controller{
		cfg:             cfg,
		logger:          logger,
		profiler:        profiler,
		oracle:          oracle,
		edits:           page.EditSnapshot{},
		editSnapshot:    page.EditSnapshot{},
		store:           brick.NewStore(),
		coarseLODCursor: 1,
		bootstrapLOD:    0,
		dirty:           newDirtyLedger(),
	}
	for lod := range c.lods {
		c.lods[lod] = page.NewState()
	}
	c.pool = newWorkerPool(cfg.Workers, oracle)
	return c
}

// Close stops the worker pool. Call once, when the controller is no longer
// needed; further Update calls after Close are not supported.
func (c *Controller) Close() { c.pool.stop() }

// Store exposes the brick store for GPU upload.
func (c *Controller) Store() *brick.Store { return c.store }

// LODOrigin returns the world-space min corner currently covered by lod.
func (c *Controller) LODOrigin(lod int) page.WorldCoord {
	if c.lods[lod].HasOrigin {
		return c.lods[lod].Origin
	}
	return page.WorldCoord{}
}

// LODVoxelSize returns the edge length, in base voxels, of one voxel at lod.
func (c *Controller) LODVoxelSize(lod int) int64 { return page.VoxelSize(lod) }

// LODCoverage returns the world-space extent, in base voxels, of lod.
func (c *Controller) LODCoverage(lod int) int64 { return page.Coverage(lod) }

// LODReady reports whether lod has an origin and no pending or in-flight
// page builds. During bootstrap a coarse LOD whose full rebuild has not been
// enqueued yet also reports ready, since its queue is empty.
func (c *Controller) LODReady(lod int) bool { return c.lods[lod].Ready }

// LODRenderable reports whether lod has at least one loaded page.
func (c *Controller) LODRenderable(lod int) bool { return c.lods[lod].Renderable() }

// PageBrickIndices exposes one LOD's flattened page->brick index table.
func (c *Controller) PageBrickIndices(lod int) []uint32 { return c.lods[lod].PageBrickIndices }

// PageOcc exposes one LOD's per-page occupancy masks.
func (c *Controller) PageOcc(lod int) [][2]uint32 { return c.lods[lod].PageOcc }

// PageCoords exposes one LOD's per-slot owning page coordinate.
func (c *Controller) PageCoords(lod int) [][4]int32 { return c.lods[lod].PageCoords }

// LODStates exposes the full per-LOD page table array, for handing to an
// Uploader implementation.
func (c *Controller) LODStates() [page.LODCount]*page.State { return c.lods }

// BlockAtWorld samples the effective block id at a world voxel coordinate,
// including any runtime edit.
func (c *Controller) BlockAtWorld(x, y, z int64) brick.BlockId {
	if v, ok := c.edits[page.WorldCoord{X: x, Y: y, Z: z}]; ok {
		return v
	}
	return c.oracle.BlockAtWorld(x, y, z)
}

// SetBlockAtWorld sets the effective block id at a world voxel coordinate,
// rebuilding the finest SyncEditLODs LODs synchronously and enqueueing the
// rest. Returns true when the effective value changed.
func (c *Controller) SetBlockAtWorld(x, y, z int64, block brick.BlockId) bool {
	coord := page.WorldCoord{X: x, Y: y, Z: z}
	previous := c.BlockAtWorld(x, y, z)
	if previous == block {
		return false
	}

	generated := c.oracle.BlockAtWorld(x, y, z)
	if block == generated {
		delete(c.edits, coord)
	} else {
		c.edits[coord] = block
	}
	c.editSnapshot = c.edits.Clone()

	c.applyEditImmediate(coord)
	c.enqueuePagesAffectedByEdit(coord)
	return true
}

// DestroyBlockAtWorld sets the block at a world voxel coordinate to air.
// Returns true when a solid block was destroyed.
func (c *Controller) DestroyBlockAtWorld(x, y, z int64) bool {
	if c.BlockAtWorld(x, y, z).IsAir() {
		return false
	}
	return c.SetBlockAtWorld(x, y, z, brick.Air)
}

// Update advances the clipmap by one frame around camera (world units):
// reclaims deferred brick frees, updates the camera voxel, drives either
// bootstrap (sequential per-LOD full rebuilds) or steady-state (LOD0 every
// frame, one coarse LOD round-robin) streaming, applies completed builds
// up to this frame's budget, marks fully-drained LODs ready, and advances
// the frame counter.
func (c *Controller) Update(cameraWorldPos mgl32.Vec3) {
	c.profiler.BeginScope("deferred_frees")
	c.processDeferredBrickFrees()
	c.profiler.EndScope("deferred_frees")

	cameraVoxel := page.WorldCoord{
		X: int64(math.Floor(float64(cameraWorldPos.X()))),
		Y: int64(math.Floor(float64(cameraWorldPos.Y()))),
		Z: int64(math.Floor(float64(cameraWorldPos.Z()))),
	}
	c.cameraVoxel = cameraVoxel

	anyUnseeded := false
	for _, l := range c.lods {
		if !l.HasOrigin {
			anyUnseeded = true
			break
		}
	}

	c.profiler.BeginScope("update_lods")
	switch {
	case anyUnseeded:
		for lod := 0; lod < page.LODCount; lod++ {
			pageSize := page.PageSize(lod)
			coverage := page.Coverage(lod)
			origin := page.AlignedOrigin(cameraVoxel, coverage, pageSize)
			c.lods[lod].Origin = origin
			c.lods[lod].HasOrigin = true
		}

		pageSize0 := page.PageSize(0)
		coverage0 := page.Coverage(0)
		origin0 := page.AlignedOrigin(cameraVoxel, coverage0, pageSize0)
		c.enqueueFullRebuild(0, origin0, pageSize0)
		c.bootstrapLOD = 0

	case c.bootstrapLOD < page.LODCount:
		c.updateLOD(0, cameraVoxel, false)
		for lod := 1; lod < c.bootstrapLOD; lod++ {
			c.updateLOD(lod, cameraVoxel, false)
		}

		if c.lods[c.bootstrapLOD].PendingPages.Len() == 0 {
			c.bootstrapLOD++
			if c.bootstrapLOD < page.LODCount {
				lod := c.bootstrapLOD
				pageSize := page.PageSize(lod)
				coverage := page.Coverage(lod)
				origin := page.AlignedOrigin(cameraVoxel, coverage, pageSize)
				c.lods[lod].Origin = origin
				c.lods[lod].HasOrigin = true
				c.enqueueFullRebuild(lod, origin, pageSize)
			}
		}

	default:
		c.updateLOD(0, cameraVoxel, false)

		lod := c.coarseLODCursor
		c.updateLOD(lod, cameraVoxel, false)
		c.coarseLODCursor++
		if c.coarseLODCursor >= page.LODCount {
			c.coarseLODCursor = 1
		}
	}
	c.profiler.EndScope("update_lods")

	applyBudget := c.cfg.PageApplyBudgetSteady
	if c.bootstrapLOD < page.LODCount {
		applyBudget = c.cfg.PageApplyBudgetBootstrap
	}
	c.profiler.BeginScope("apply_pages")
	c.processPendingPages(applyBudget)
	c.profiler.EndScope("apply_pages")

	c.dirty.collectPages(&c.lods)
	var dirtyPagesTotal int64
	for lod := 0; lod < page.LODCount; lod++ {
		dirtyPagesTotal += int64(len(c.dirty.pending.dirtyPages[lod]))
	}
	c.dirty.BroadcastDirty()

	c.profiler.SetCount("dirty_pages_total", dirtyPagesTotal)
	c.profiler.SetCount("inflight_jobs", int64(c.inflightJobs))
	c.profiler.SetCount("pool_bytes_used", int64(c.store.PoolBytesUsed()))

	c.frameCounter++
}
