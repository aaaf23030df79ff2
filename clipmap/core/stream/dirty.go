package stream

import (
	"github.com/PetrSeifert/voxelicous-clipmap-go/clipmap/core/brick"
	"github.com/PetrSeifert/voxelicous-clipmap-go/clipmap/core/page"
	"github.com/PetrSeifert/voxelicous-clipmap-go/clipmap/core/upload"
)

// FrameSlots is the number of in-flight GPU frames the dirty ledger keeps
// independent dirty state for. A renderer that pipelines N frames ahead of
// the GPU needs every one of those N frames' upload lists to converge to
// the same state, so a dirty delta observed on one controller update must
// remain visible to every frame slot until that slot's own Take drains it.
const FrameSlots = 3

// dirtyDelta is one accumulation of dirty ranges: either the controller's
// not-yet-broadcast pending delta, or one frame slot's not-yet-taken one.
type dirtyDelta struct {
	dirtyPages            [page.LODCount]map[int]struct{}
	dirtyHeaders          map[brick.BrickId]struct{}
	dirtyPalette16Entries map[uint32]struct{}
	dirtyPalette32Entries map[uint32]struct{}
	dirtyRaw16Entries     map[uint32]struct{}
}

func newDirtyDelta() dirtyDelta {
	d := dirtyDelta{
		dirtyHeaders:          make(map[brick.BrickId]struct{}),
		dirtyPalette16Entries: make(map[uint32]struct{}),
		dirtyPalette32Entries: make(map[uint32]struct{}),
		dirtyRaw16Entries:     make(map[uint32]struct{}),
	}
	for lod := range d.dirtyPages {
		d.dirtyPages[lod] = make(map[int]struct{})
	}
	return d
}

func (d *dirtyDelta) mergeFrom(src *dirtyDelta) {
	for lod := 0; lod < page.LODCount; lod++ {
		for idx := range src.dirtyPages[lod] {
			d.dirtyPages[lod][idx] = struct{}{}
		}
	}
	for id := range src.dirtyHeaders {
		d.dirtyHeaders[id] = struct{}{}
	}
	for idx := range src.dirtyPalette16Entries {
		d.dirtyPalette16Entries[idx] = struct{}{}
	}
	for idx := range src.dirtyPalette32Entries {
		d.dirtyPalette32Entries[idx] = struct{}{}
	}
	for idx := range src.dirtyRaw16Entries {
		d.dirtyRaw16Entries[idx] = struct{}{}
	}
}

func (d *dirtyDelta) toDirtyState() upload.DirtyState {
	var out upload.DirtyState
	for lod := 0; lod < page.LODCount; lod++ {
		for idx := range d.dirtyPages[lod] {
			out.DirtyPages[lod] = append(out.DirtyPages[lod], idx)
		}
	}
	for id := range d.dirtyHeaders {
		out.DirtyHeaders = append(out.DirtyHeaders, id)
	}
	for idx := range d.dirtyPalette16Entries {
		out.DirtyPalette16Entries = append(out.DirtyPalette16Entries, idx)
	}
	for idx := range d.dirtyPalette32Entries {
		out.DirtyPalette32Entries = append(out.DirtyPalette32Entries, idx)
	}
	for idx := range d.dirtyRaw16Entries {
		out.DirtyRaw16Entries = append(out.DirtyRaw16Entries, idx)
	}
	return out
}

// dirtyLedger is the clipmap dirty ledger (C6): appendPage/appendBrick/
// BroadcastDirty/Take(frameSlot), grounded on ClipmapDirtyState in
// original_source's clipmap_streaming.rs and spec §4.6. appendPage/appendBrick accumulate
// this update's dirty ranges as the controller discovers them; BroadcastDirty
// fans that accumulated delta into every in-flight frame slot at the end of
// the update so N-deep frame pipelining sees consistent state; Take drains
// and clears exactly one frame slot.
type dirtyLedger struct {
	pending dirtyDelta
	slots   [FrameSlots]dirtyDelta
}

func newDirtyLedger() dirtyLedger {
	d := dirtyLedger{pending: newDirtyDelta()}
	for i := range d.slots {
		d.slots[i] = newDirtyDelta()
	}
	return d
}

// appendPage records one dirty page slot into the pending delta. Called as
// the controller discovers dirty pages (applyBuiltPage, clearPageSlot) by
// way of collectPages below, which drains each LOD's per-update list.
func (d *dirtyLedger) appendPage(lod, pageIndex int) {
	d.pending.dirtyPages[lod][pageIndex] = struct{}{}
}

// appendBrick records one dirty brick header and its pool entry into the
// pending delta. Called directly from Controller.markBrickDirty.
func (d *dirtyLedger) appendBrick(id brick.BrickId, header brick.Header) {
	d.pending.dirtyHeaders[id] = struct{}{}
	switch header.Encoding {
	case brick.EncodingPalette16:
		d.pending.dirtyPalette16Entries[header.DataIndex] = struct{}{}
	case brick.EncodingPalette32:
		d.pending.dirtyPalette32Entries[header.DataIndex] = struct{}{}
	case brick.EncodingRaw16:
		d.pending.dirtyRaw16Entries[header.DataIndex] = struct{}{}
	}
}

// collectPages drains each LOD's per-update dirty page list (filled
// directly on page.State by applyBuiltPage/clearPageSlot/enqueueFullRebuild)
// into the pending delta, and clears those lists so the next update starts
// from empty.
func (d *dirtyLedger) collectPages(lods *[page.LODCount]*page.State) {
	for lod := 0; lod < page.LODCount; lod++ {
		state := lods[lod]
		for _, idx := range state.DirtyPages {
			d.appendPage(lod, idx)
		}
		state.DirtyPages = nil
	}
}

// BroadcastDirty fans the pending delta into every in-flight frame slot,
// then clears pending - called once per Controller.Update, after the
// frame's page/brick mutations are complete.
func (d *dirtyLedger) BroadcastDirty() {
	for i := range d.slots {
		d.slots[i].mergeFrom(&d.pending)
	}
	d.pending = newDirtyDelta()
}

// Take drains and clears one frame slot's accumulated dirty ranges.
func (d *dirtyLedger) Take(frameSlot int) upload.DirtyState {
	slot := frameSlot % FrameSlots
	if slot < 0 {
		slot += FrameSlots
	}
	out := d.slots[slot].toDirtyState()
	d.slots[slot] = newDirtyDelta()
	return out
}

// TakeDirtyState drains and clears frameSlot's accumulated dirty ranges:
// which page slots changed per LOD, and which brick headers and pool
// entries need re-upload, since that slot was last drained.
func (c *Controller) TakeDirtyState(frameSlot int) upload.DirtyState {
	return c.dirty.Take(frameSlot)
}
