// Package kernel owns the processes and the MMU, drives the simulation
// loop, services syscalls, handles page faults, spawns new processes, and
// aggregates the statistics the dashboard renders.
package kernel

import (
	"context"
	"fmt"
	"time"

	"pvsim/internal/counter"
	"pvsim/internal/diag"
	"pvsim/internal/evlog"
	"pvsim/internal/mmu"
	"pvsim/internal/pte"
	"pvsim/internal/proc"
	"pvsim/internal/replace"
	"pvsim/internal/rng"
	"pvsim/internal/sysmsg"
	"pvsim/internal/ticks"

	"github.com/rs/zerolog"
)

// MaxProcessCount bounds the number of simultaneously live processes.
const MaxProcessCount = 25

const eventLogCapacity = 64

// AccessStats aggregates memory-reference outcomes across the whole
// simulation.
type AccessStats struct {
	Total    int64
	Faults   int64
	Replaced int64
	// Writes counts replacements whose victim page was dirty at
	// eviction time. It is a pure statistic; no write-back to any
	// backing store is modeled (evictions remain instantaneous).
	Writes int64
}

// FaultRatePercent is 100*Faults/Total, or NaN before any access has
// occurred.
func (s AccessStats) FaultRatePercent() float64 {
	if s.Total == 0 {
		return nan()
	}
	return 100 * float64(s.Faults) / float64(s.Total)
}

// ReplacementRatePercent is 100*Replaced/Faults, or NaN before any fault
// has occurred.
func (s AccessStats) ReplacementRatePercent() float64 {
	if s.Faults == 0 {
		return nan()
	}
	return 100 * float64(s.Replaced) / float64(s.Faults)
}

func nan() float64 {
	var zero float64
	return zero / zero
}

// Kernel drives the memory-management loop described in the package doc.
type Kernel struct {
	mmu       *mmu.MMU
	policy    replace.Policy
	rng       *rng.Source
	log       zerolog.Logger
	tick      time.Duration
	processes map[int]*proc.Process
	order     []int // spawn order, for a deterministic per-tick scan

	totalC    counter.Counter
	faultsC   counter.Counter
	replacedC counter.Counter
	writesC   counter.Counter

	events *evlog.Ring
	acc    ticks.Account
}

// Options configures a new Kernel. Zero values pick the spec's defaults.
type Options struct {
	Policy string
	RNG    *rng.Source
	// Log defaults to a no-op logger when nil; pass a real zerolog.Logger
	// to observe lifecycle events.
	Log  *zerolog.Logger
	Tick time.Duration
	// Frames, when non-zero, overrides the MMU's randomly chosen frame
	// count (normally drawn from [512, 1024]); tests use this to build
	// tiny MMUs deterministically.
	Frames int
}

// New validates opts.Policy against the registry, builds the MMU and
// process map, and spawns an initial rand_int(5,10) processes.
func New(opts Options) (*Kernel, error) {
	if opts.RNG == nil {
		opts.RNG = rng.NewEntropy()
	}
	if opts.Policy == "" {
		opts.Policy = "clock"
	}
	policy, err := replace.New(opts.Policy, opts.RNG)
	if err != nil {
		return nil, err
	}

	log := opts.Log
	if log == nil {
		nop := zerolog.Nop()
		log = &nop
	}

	m := mmu.New(opts.Frames)
	if opts.Frames == 0 {
		m = mmu.NewRandomSized(opts.RNG)
	}

	tick := opts.Tick
	if tick == 0 {
		tick = 500 * time.Millisecond
	}

	k := &Kernel{
		mmu:       m,
		policy:    policy,
		rng:       opts.RNG,
		log:       *log,
		tick:      tick,
		processes: make(map[int]*proc.Process),
		events:    evlog.NewRing(eventLogCapacity),
	}
	k.spawn(opts.RNG.Int(5, 10))
	return k, nil
}

func (k *Kernel) spawn(n int) {
	room := MaxProcessCount - len(k.processes)
	if n > room {
		n = room
	}
	for i := 0; i < n; i++ {
		pid := k.rng.UniqueInt(1000, 9999, func(c int) bool {
			_, taken := k.processes[c]
			return taken
		})
		p := proc.New(pid, k.rng)
		k.processes[pid] = p
		k.order = append(k.order, pid)
		k.log.Info().Int("pid", pid).Int("pages", len(p.PageTable)).Int("ttl", p.TTL).Msg("process spawned")
		k.events.Push(evlog.Event{Kind: "spawn", Pid: pid})
	}
}

func (k *Kernel) removeFromOrder(pid int) {
	for i, p := range k.order {
		if p == pid {
			k.order = append(k.order[:i], k.order[i+1:]...)
			return
		}
	}
}

// Syscall dispatches sc to the handler for its kind. All effects are
// synchronous and complete before Syscall returns.
func (k *Kernel) Syscall(sc sysmsg.Syscall) {
	switch m := sc.(type) {
	case sysmsg.Exit:
		k.terminateProcess(m.Pid)
	case sysmsg.AccessMemory:
		k.accessMemory(m.Pid, m.Page, m.Modify)
	default:
		panic(fmt.Sprintf("kernel: unhandled syscall kind %v (invariant violation)\n%s", sc.Kind(), diag.Callerdump(2)))
	}
}

func (k *Kernel) accessMemory(pid, page int, modify bool) {
	entry, ok := k.Entry(pid, page)
	if !ok {
		panic(fmt.Sprintf("kernel: access from process/page that does not exist: pid=%d page=%d (invariant violation)\n%s", pid, page, diag.Callerdump(2)))
	}
	if k.mmu.Access(entry, modify) {
		return
	}
	k.handlePageFault(pid, page, entry)
	// The page is resident now; complete the reference that faulted.
	k.mmu.Access(entry, modify)
}

func (k *Kernel) handlePageFault(pid, page int, entry *pte.Entry) {
	k.faultsC.Inc()
	k.log.Debug().Int("pid", pid).Int("page", page).Msg("page fault")
	k.events.Push(evlog.Event{Kind: "fault", Pid: pid, Page: page})

	if fid, ok := k.mmu.Alloc(pid, page); ok {
		entry.SetResident(fid)
		return
	}

	k.replacedC.Inc()
	victim, err := k.policy.Replace(k)
	if err != nil {
		// zerolog's Fatal level logs the event, then calls os.Exit(1),
		// matching the spec's "process terminates with diagnostic
		// output" treatment of invariant violations.
		k.log.Fatal().Err(err).Msg("replace: invariant violation")
		return
	}
	if victim.Entry.Modified {
		k.writesC.Inc()
	}

	fid, _ := victim.Entry.Fid() // resident by construction: Replace only returns entries for busy frames.
	k.mmu.Realloc(fid, pid, page)
	victim.Entry.SetUnmapped()
	entry.SetResident(fid)

	k.log.Debug().Int("victim_pid", victim.Pid).Int("victim_page", victim.Page).Int("fid", fid).Msg("page replaced")
	k.events.Push(evlog.Event{Kind: "replace", Pid: victim.Pid, Page: victim.Page})
}

func (k *Kernel) terminateProcess(pid int) {
	p := k.processes[pid]
	for page := range p.PageTable {
		if fid, ok := p.PageTable[page].Fid(); ok {
			k.mmu.Free(fid)
		}
	}
	delete(k.processes, pid)
	k.removeFromOrder(pid)
	k.log.Info().Int("pid", pid).Msg("process exited")
	k.events.Push(evlog.Event{Kind: "exit", Pid: pid})
}

// Entry resolves a process's page-table entry by (pid, page), implementing
// replace.MemoryView alongside BusyFids/FrameOwner below.
func (k *Kernel) Entry(pid, page int) (*pte.Entry, bool) {
	p, ok := k.processes[pid]
	if !ok || page < 0 || page >= len(p.PageTable) {
		return nil, false
	}
	return &p.PageTable[page], true
}

// BusyFids implements replace.MemoryView.
func (k *Kernel) BusyFids() []int { return k.mmu.BusyFids() }

// FrameOwner implements replace.MemoryView.
func (k *Kernel) FrameOwner(fid int) (pid, page int, ok bool) { return k.mmu.FrameOwner(fid) }

// MemoryStats reports the MMU's current utilization.
func (k *Kernel) MemoryStats() mmu.Stats { return k.mmu.Stats() }

// AccessStats reports the running access counters.
func (k *Kernel) AccessStats() AccessStats {
	return AccessStats{
		Total:    k.totalC.Load(),
		Faults:   k.faultsC.Load(),
		Replaced: k.replacedC.Load(),
		Writes:   k.writesC.Load(),
	}
}

// ProcessStats snapshots every live process, in spawn order.
func (k *Kernel) ProcessStats() []proc.Stats {
	out := make([]proc.Stats, 0, len(k.order))
	for _, pid := range k.order {
		out = append(out, k.processes[pid].Stats())
	}
	return out
}

// RecentEvents returns the most recent kernel lifecycle events, oldest
// first. The events are not part of Publish, and the dashboard renderer
// does not display them.
func (k *Kernel) RecentEvents() []evlog.Event { return k.events.Recent() }

// Live reports the number of currently live processes.
func (k *Kernel) Live() int { return len(k.processes) }

// Publish is called once per tick with the three records the renderer
// needs: memory utilization, access-rate statistics, and per-process
// state (the renderer shows only the first 20).
type Publish func(mmu.Stats, AccessStats, []proc.Stats)

// Run drives the simulation until the process map empties or ctx is
// cancelled, whichever comes first. Within a tick, live processes step in
// the fixed spawn-order snapshot taken at tick start; new processes
// spawned mid-tick do not run until the next tick.
func (k *Kernel) Run(ctx context.Context, publish Publish) error {
	for len(k.processes) > 0 {
		start := k.acc.Begin()

		snapshot := append([]int(nil), k.order...)
		for _, pid := range snapshot {
			p, ok := k.processes[pid]
			if !ok {
				continue // defensive: terminateProcess also drops the pid from k.order, so snapshotted pids are live.
			}
			steps := k.rng.Int(64, 128)
			for i := 0; i < steps; i++ {
				k.totalC.Inc()
				if p.Run(k, k.rng) {
					break
				}
			}
		}

		if len(k.processes) < MaxProcessCount && k.rng.Bernoulli(0.45) {
			k.spawn(k.rng.Int(1, 3))
		}

		k.acc.Finish(start)

		if publish != nil {
			publish(k.mmu.Stats(), k.AccessStats(), k.ProcessStats())
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if len(k.processes) == 0 {
			break
		}
		time.Sleep(k.tick)
	}
	return nil
}
