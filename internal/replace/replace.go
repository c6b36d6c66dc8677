// Package replace implements pluggable page-replacement policies. A
// Policy is a capability — {Replace(view) -> victim} — rather than a
// class hierarchy; Clock and Random are its two registered
// implementations.
package replace

import (
	"fmt"

	"pvsim/internal/pte"
	"pvsim/internal/rng"
	"pvsim/internal/util"
)

// MemoryView is the replacer's non-owning window onto kernel-owned state.
// It grants read access to the busy-frame list and read/write access to
// PTE reference bits, but no way to change frame occupancy or residency —
// only the fault handler does that, which is what keeps a replacement
// atomic with the new mapping.
type MemoryView interface {
	// BusyFids returns the currently busy fids in a stable order for
	// the duration of one scan.
	BusyFids() []int
	// FrameOwner resolves a busy fid to the (pid, page) it backs.
	FrameOwner(fid int) (pid, page int, ok bool)
	// Entry resolves a process's page-table entry by (pid, page).
	Entry(pid, page int) (*pte.Entry, bool)
}

// Victim identifies the page a Policy selected for eviction.
type Victim struct {
	Pid   int
	Page  int
	Entry *pte.Entry
}

// Policy selects a victim among the currently resident pages. A Policy
// must not itself clear Presented or mutate frame bindings; it only
// reads/mutates reference bits.
type Policy interface {
	Replace(view MemoryView) (Victim, error)
}

func resolveVictim(view MemoryView, fid int) (Victim, error) {
	pid, page, ok := view.FrameOwner(fid)
	if !ok {
		return Victim{}, fmt.Errorf("replace: frame %d is not busy (invariant violation)", fid)
	}
	entry, ok := view.Entry(pid, page)
	if !ok {
		return Victim{}, fmt.Errorf("replace: frame %d claims owner pid=%d, but no such process/page exists (invariant violation)", fid, pid)
	}
	return Victim{Pid: pid, Page: page, Entry: entry}, nil
}

var errEmptyBusySet = fmt.Errorf("replace: called with an empty busy set")

// Clock implements second-chance replacement: a persistent hand scans the
// busy-frame list circularly, clearing reference bits until one is found
// already clear.
type Clock struct {
	hand int
}

// NewClock returns a Clock replacer with its hand at the start of the
// busy list.
func NewClock() *Clock {
	return &Clock{}
}

// Replace implements Policy.
func (c *Clock) Replace(view MemoryView) (Victim, error) {
	busy := view.BusyFids()
	if len(busy) == 0 {
		return Victim{}, errEmptyBusySet
	}
	// The busy list can shrink between calls as processes exit.
	c.hand = util.Clamp(c.hand, 0, len(busy)-1)

	for {
		fid := busy[c.hand]
		c.hand = (c.hand + 1) % len(busy)

		v, err := resolveVictim(view, fid)
		if err != nil {
			return Victim{}, err
		}
		if !v.Entry.Referenced {
			return v, nil
		}
		v.Entry.Referenced = false
	}
}

// Random returns a uniformly chosen busy frame's page as the victim.
type Random struct {
	r *rng.Source
}

// NewRandom returns a Random replacer drawing from r.
func NewRandom(r *rng.Source) *Random {
	return &Random{r: r}
}

// Replace implements Policy.
func (rp *Random) Replace(view MemoryView) (Victim, error) {
	busy := view.BusyFids()
	if len(busy) == 0 {
		return Victim{}, errEmptyBusySet
	}
	fid := rng.Pick(rp.r, busy)
	return resolveVictim(view, fid)
}

// New looks up a policy by name against the registry {clock, random}.
func New(name string, r *rng.Source) (Policy, error) {
	switch name {
	case "clock":
		return NewClock(), nil
	case "random":
		return NewRandom(r), nil
	default:
		return nil, fmt.Errorf("replace: unknown policy %q, want one of %v", name, Names())
	}
}

// Names lists the registered policy names, for CLI help text and error
// messages.
func Names() []string {
	return []string{"clock", "random"}
}
