// Package proc models the synthetic workload: a process with a page
// table, a working-set/idle-set partition that periodically rotates, a
// bounded lifetime, and per-tick reference emission.
package proc

import (
	"pvsim/internal/pte"
	"pvsim/internal/rng"
	"pvsim/internal/sysmsg"
)

// SyscallSink is the kernel's receiving end of a process's syscalls. A
// Process depends only on this narrow interface, not on the kernel type
// itself, so that proc and kernel don't import one another.
type SyscallSink interface {
	Syscall(sysmsg.Syscall)
}

// Process is a synthetic workload exhibiting locality of reference.
type Process struct {
	Pid       int
	PageTable []pte.Entry
	TTL       int
	Counter   int

	WorkingSet    []int
	IdleSet       []int
	WorkingSetTTL int
}

// New creates a process with a page table sized uniformly in [32, 64] and
// a lifetime (in references) drawn from [1024, 2048], then performs its
// initial working-set partition.
func New(pid int, r *rng.Source) *Process {
	p := &Process{
		Pid:       pid,
		PageTable: make([]pte.Entry, r.Int(32, 64)),
		TTL:       r.Int(1024, 2048),
	}
	p.rotate(r)
	return p
}

// rotate re-partitions the page table into a working set and an idle set
// by independent Bernoulli trials at p = 0.20, and schedules the next
// rotation. Empty sets are permitted on either side.
func (p *Process) rotate(r *rng.Source) {
	p.WorkingSetTTL += r.Int(128, 256)
	var ws, idle []int
	for i := range p.PageTable {
		if r.Bernoulli(0.20) {
			ws = append(ws, i)
		} else {
			idle = append(idle, i)
		}
	}
	p.WorkingSet, p.IdleSet = ws, idle
}

// Run advances the process by one step. Steps 1 through TTL-1 each issue
// one memory reference; step TTL issues Exit instead and returns true.
// Callers must not call Run again on a terminated process.
func (p *Process) Run(sink SyscallSink, r *rng.Source) (terminated bool) {
	p.Counter++
	if p.Counter >= p.TTL {
		sink.Syscall(sysmsg.Exit{Pid: p.Pid})
		return true
	}

	if p.Counter >= p.WorkingSetTTL {
		p.rotate(r)
	}

	set := p.IdleSet
	if r.Bernoulli(0.9) {
		set = p.WorkingSet
	}
	if len(set) == 0 {
		if len(p.WorkingSet) == 0 && len(p.IdleSet) == 0 {
			// Both sets empty can only happen for a zero-length
			// page table, which New never produces; nothing to
			// reference in that degenerate case.
			return false
		}
		set = p.WorkingSet
		if len(set) == 0 {
			set = p.IdleSet
		}
	}

	page := rng.Pick(r, set)
	modify := r.Bernoulli(0.5)
	sink.Syscall(sysmsg.AccessMemory{Pid: p.Pid, Page: page, Modify: modify})
	return false
}

// Stats is the read-only view of a process's state the renderer draws on.
type Stats struct {
	Pid                    int
	TTL                    int
	Counter                int
	PageTableSize          int
	WorkingSetSize         int
	WorkingSetTTL          int
	WorkingSetRatioPercent float64
}

// Stats snapshots the process's current state.
func (p *Process) Stats() Stats {
	ratio := 0.0
	if n := len(p.PageTable); n > 0 {
		ratio = 100 * float64(len(p.WorkingSet)) / float64(n)
	}
	return Stats{
		Pid:                    p.Pid,
		TTL:                    p.TTL,
		Counter:                p.Counter,
		PageTableSize:          len(p.PageTable),
		WorkingSetSize:         len(p.WorkingSet),
		WorkingSetTTL:          p.WorkingSetTTL,
		WorkingSetRatioPercent: ratio,
	}
}
