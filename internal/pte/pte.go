// Package pte defines the per-virtual-page metadata a process's page table
// is built from.
package pte

// residency distinguishes a page that has never been mapped, or was
// evicted, from one currently backed by a physical frame. It is
// intentionally unexported: the only way to observe or change residency
// is through Entry's methods, which keep the frame id unrepresentable
// while the page is not resident. This is the fix for the source's latent
// bug where a stale fid could be read from an entry after eviction.
type residency int

const (
	unmapped residency = iota
	resident
)

// Entry is one process's page-table entry for a single virtual page.
type Entry struct {
	state residency
	fid   int

	// Referenced and Modified are the access bits every replacement
	// policy and the MMU's fault-free access path read and set
	// directly; they carry no invariant beyond "true/false", so there
	// is no reason to hide them behind accessors the way residency is.
	Referenced bool
	Modified   bool
}

// Presented reports whether the entry is currently backed by a frame.
func (e *Entry) Presented() bool {
	return e.state == resident
}

// Fid returns the frame backing this entry. ok is false when the entry is
// not resident, in which case the returned fid is meaningless and must not
// be used — there is no stale value to accidentally read.
func (e *Entry) Fid() (fid int, ok bool) {
	if e.state != resident {
		return 0, false
	}
	return e.fid, true
}

// SetResident binds the entry to fid. Newly-bound entries retain whatever
// Referenced/Modified values they already carried; a fresh Entry starts
// with both false, and a replaced entry starts with the incoming page's
// pre-fault values, consistent with the simulator's access semantics.
func (e *Entry) SetResident(fid int) {
	e.state = resident
	e.fid = fid
}

// SetUnmapped clears residency. The frame id becomes unreadable via Fid
// until the entry is rebound; callers must capture the fid before calling
// this if they still need it (the fault handler does, to repurpose the
// frame).
func (e *Entry) SetUnmapped() {
	e.state = unmapped
	e.fid = 0
}
