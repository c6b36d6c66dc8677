package kernel

import (
	"context"
	"testing"

	"pvsim/internal/pte"
	"pvsim/internal/proc"
	"pvsim/internal/rng"
	"pvsim/internal/sysmsg"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestKernel(t *testing.T, frames int) *Kernel {
	t.Helper()
	k, err := New(Options{Policy: "clock", RNG: rng.NewSeeded(1, 2), Frames: frames})
	require.NoError(t, err)
	// Tests drive the kernel directly via Syscall/handlePageFault-adjacent
	// helpers, not through Run, so clear the processes spawned by New.
	for pid := range k.processes {
		delete(k.processes, pid)
	}
	k.order = nil
	return k
}

func (k *Kernel) addProcessForTest(pid, pages int) {
	p := proc.New(pid, k.rng)
	p.PageTable = make([]pte.Entry, pages)
	p.WorkingSet = nil
	p.IdleSet = make([]int, pages)
	for i := range p.IdleSet {
		p.IdleSet[i] = i
	}
	k.processes[pid] = p
	k.order = append(k.order, pid)
}

func TestNoFaultAccess(t *testing.T) {
	k := newTestKernel(t, 4)
	k.addProcessForTest(1, 2)
	k.processes[1].PageTable[0].SetResident(0)
	k.processes[1].PageTable[1].SetResident(1)

	for i := 0; i < 10; i++ {
		page := i % 2
		k.Syscall(sysmsg.AccessMemory{Pid: 1, Page: page, Modify: i%3 == 0})
	}

	st := k.AccessStats()
	assert.Equal(t, int64(0), st.Faults)
	assert.True(t, k.processes[1].PageTable[0].Referenced)
	assert.True(t, k.processes[1].PageTable[1].Referenced)
	assert.Equal(t, 2, k.mmu.Stats().Busy)
}

func TestSingleFaultFreeFrameAvailable(t *testing.T) {
	k := newTestKernel(t, 4)
	k.addProcessForTest(1, 1)

	k.Syscall(sysmsg.AccessMemory{Pid: 1, Page: 0, Modify: false})

	st := k.AccessStats()
	assert.Equal(t, int64(1), st.Faults)
	assert.Equal(t, int64(0), st.Replaced)
	assert.True(t, k.processes[1].PageTable[0].Presented())
	assert.Equal(t, 1, k.mmu.Stats().Busy)
}

func TestFaultWithEvictionClock(t *testing.T) {
	k := newTestKernel(t, 1)
	k.addProcessForTest(1, 2)

	fid, ok := k.mmu.Alloc(1, 0)
	require.True(t, ok)
	k.processes[1].PageTable[0].SetResident(fid)
	k.processes[1].PageTable[0].Referenced = false

	k.Syscall(sysmsg.AccessMemory{Pid: 1, Page: 1, Modify: true})

	st := k.AccessStats()
	assert.Equal(t, int64(1), st.Faults)
	assert.Equal(t, int64(1), st.Replaced)
	assert.False(t, k.processes[1].PageTable[0].Presented(), "page 0 must be evicted")
	assert.True(t, k.processes[1].PageTable[1].Presented())
	assert.True(t, k.processes[1].PageTable[1].Modified)
}

func TestProcessExitFreesFrames(t *testing.T) {
	k := newTestKernel(t, 8)
	k.addProcessForTest(1, 3)
	for page := 0; page < 3; page++ {
		fid, ok := k.mmu.Alloc(1, page)
		require.True(t, ok)
		k.processes[1].PageTable[page].SetResident(fid)
	}
	require.Equal(t, 3, k.mmu.Stats().Busy)

	k.Syscall(sysmsg.Exit{Pid: 1})

	st := k.mmu.Stats()
	assert.Equal(t, 0, st.Busy)
	assert.Equal(t, 8, st.Free)
	assert.Equal(t, 0, len(k.processes))
}

func TestSpawnCap(t *testing.T) {
	k := newTestKernel(t, 512)
	for i := 0; i < 23; i++ {
		k.addProcessForTest(1000+i, 1)
	}
	require.Equal(t, 23, k.Live())

	for i := 0; i < 5; i++ {
		k.spawn(3)
	}
	assert.LessOrEqual(t, k.Live(), MaxProcessCount)
	assert.Equal(t, MaxProcessCount, k.Live())
}

func TestAccessStatsRatesAreNaNBeforeAnyActivity(t *testing.T) {
	var s AccessStats
	assert.True(t, isNaN(s.FaultRatePercent()))
	assert.True(t, isNaN(s.ReplacementRatePercent()))
}

func isNaN(f float64) bool { return f != f }

func TestRunTerminatesWhenAllProcessesExit(t *testing.T) {
	k := newTestKernel(t, 16)
	k.addProcessForTest(1, 4)
	k.processes[1].TTL = 1

	err := k.Run(context.Background(), nil)
	assert.NoError(t, err)
	assert.Equal(t, 0, k.Live())
}

func TestRunHonorsCancellation(t *testing.T) {
	k := newTestKernel(t, 16)
	k.addProcessForTest(1, 4)
	k.processes[1].TTL = 1_000_000

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := k.Run(ctx, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
