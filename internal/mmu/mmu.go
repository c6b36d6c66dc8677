// Package mmu models the physical-memory management unit: a fixed pool of
// frames, the free/busy bookkeeping over them, and the fault-free access
// path. It is intentionally a pure data structure — no replacement policy
// lives here. The only job of Access is to detect non-residency; every
// residency transition is driven by the kernel's fault handler.
package mmu

import (
	"fmt"

	"pvsim/internal/pte"
	"pvsim/internal/rng"
)

// Frame is a physical page frame identified by a dense, 0-based fid.
type Frame struct {
	Fid  int
	Busy bool
	Pid  int
	Page int
}

// Stats is the read-only utilization snapshot the kernel publishes to the
// renderer each tick.
type Stats struct {
	Total       int
	Busy        int
	Free        int
	LoadPercent float64
}

// MMU owns the frame table, the busy/free partition over it, and nothing
// else; it holds no reference to any process.
type MMU struct {
	frames []Frame

	// busy lists occupied fids in the order they most recently became
	// busy. The clock policy depends on this being a stable iteration
	// order for the duration of one scan; freeing a frame removes it
	// from the middle without reordering the rest.
	busy []int

	// free is a stack of unused fids; Alloc pops from the end.
	free []int
}

// New constructs an MMU with total frames, all initially free.
func New(total int) *MMU {
	free := make([]int, total)
	for i := range free {
		// Filled so the first Alloc call returns fid 0, the second
		// fid 1, and so on — purely cosmetic, but it keeps example
		// traces (and the end-to-end test fixtures) readable.
		free[i] = total - 1 - i
	}
	return &MMU{
		frames: make([]Frame, total),
		free:   free,
	}
}

// NewRandomSized builds an MMU whose frame count is drawn uniformly from
// [512, 1024], per the simulator's default configuration.
func NewRandomSized(r *rng.Source) *MMU {
	return New(r.Int(512, 1024))
}

// Alloc pops a free frame and binds it to (pid, page). ok is false when no
// frame is free.
func (m *MMU) Alloc(pid, page int) (fid int, ok bool) {
	n := len(m.free)
	if n == 0 {
		return 0, false
	}
	fid = m.free[n-1]
	m.free = m.free[:n-1]
	m.frames[fid] = Frame{Fid: fid, Busy: true, Pid: pid, Page: page}
	m.busy = append(m.busy, fid)
	return fid, true
}

// Free releases fid back to the pool. It reports false, as a no-op, when
// fid was not busy.
func (m *MMU) Free(fid int) bool {
	f := &m.frames[fid]
	if !f.Busy {
		return false
	}
	f.Busy = false
	f.Pid, f.Page = 0, 0
	m.removeBusy(fid)
	m.free = append(m.free, fid)
	return true
}

// Realloc unconditionally rewrites a busy frame's (pid, page) binding.
// Busy-set membership is unchanged; this is what the fault handler calls
// when repurposing a victim frame rather than freeing then re-allocating
// it, which would transiently (and pointlessly) touch the free list.
func (m *MMU) Realloc(fid, pid, page int) bool {
	f := &m.frames[fid]
	f.Pid, f.Page = pid, page
	return true
}

func (m *MMU) removeBusy(fid int) {
	for i, b := range m.busy {
		if b == fid {
			m.busy = append(m.busy[:i], m.busy[i+1:]...)
			return
		}
	}
	panic(fmt.Sprintf("mmu: frame %d freed while not in the busy list (invariant violation)", fid))
}

// Access services a fault-free reference to entry, setting its reference
// bit and, if modify, its modify bit. It returns false — without touching
// entry — when the page is not resident, leaving the caller to raise the
// page fault.
func (m *MMU) Access(entry *pte.Entry, modify bool) bool {
	if !entry.Presented() {
		return false
	}
	entry.Referenced = true
	if modify {
		entry.Modified = true
	}
	return true
}

// BusyFids returns a snapshot of the currently busy fids in stable
// insertion order. The replacer's MemoryView is satisfied in terms of
// this; callers must not mutate the returned slice.
func (m *MMU) BusyFids() []int {
	out := make([]int, len(m.busy))
	copy(out, m.busy)
	return out
}

// FrameOwner reports the (pid, page) a busy frame is bound to. ok is false
// for a free frame.
func (m *MMU) FrameOwner(fid int) (pid, page int, ok bool) {
	f := &m.frames[fid]
	return f.Pid, f.Page, f.Busy
}

// Stats reports current utilization, with load expressed as a percentage
// (the dashboard prints it to 2 decimal places) — this method
// itself hands back the unrounded float so multiple consumers (the
// dashboard, tests) can format it however they like.
func (m *MMU) Stats() Stats {
	total := len(m.frames)
	busy := len(m.busy)
	load := 0.0
	if total > 0 {
		load = 100 * float64(busy) / float64(total)
	}
	return Stats{Total: total, Busy: busy, Free: total - busy, LoadPercent: load}
}
