package mmu

import (
	"testing"

	"pvsim/internal/pte"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocFreePartition(t *testing.T) {
	m := New(4)
	var fids []int
	for i := 0; i < 4; i++ {
		fid, ok := m.Alloc(1, i)
		require.True(t, ok)
		fids = append(fids, fid)
	}
	_, ok := m.Alloc(1, 99)
	assert.False(t, ok, "alloc with an exhausted free list must fail")

	st := m.Stats()
	assert.Equal(t, 4, st.Total)
	assert.Equal(t, 4, st.Busy)
	assert.Equal(t, 0, st.Free)

	for _, fid := range fids {
		assert.True(t, m.Free(fid))
	}
	st = m.Stats()
	assert.Equal(t, 0, st.Busy)
	assert.Equal(t, 4, st.Free)
}

func TestFreeNonBusyIsNoop(t *testing.T) {
	m := New(2)
	fid, ok := m.Alloc(1, 0)
	require.True(t, ok)
	require.True(t, m.Free(fid))
	assert.False(t, m.Free(fid), "freeing an already-free frame must report false")
}

func TestAllocFreeRoundTrip(t *testing.T) {
	m := New(2)
	fid, ok := m.Alloc(5, 1)
	require.True(t, ok)
	require.True(t, m.Free(fid))

	m2 := New(2)
	fid2, ok := m2.Alloc(5, 1)
	require.True(t, ok)
	require.True(t, m2.Realloc(fid2, 7, 2))
	require.True(t, m2.Free(fid2))

	assert.Equal(t, m.Stats(), m2.Stats())
}

func TestRealloc(t *testing.T) {
	m := New(1)
	fid, ok := m.Alloc(1, 0)
	require.True(t, ok)
	require.True(t, m.Realloc(fid, 2, 5))
	pid, page, busy := m.FrameOwner(fid)
	assert.Equal(t, 2, pid)
	assert.Equal(t, 5, page)
	assert.True(t, busy)
}

func TestAccessNonResidentFails(t *testing.T) {
	m := New(1)
	var e pte.Entry
	ok := m.Access(&e, false)
	assert.False(t, ok)
	assert.False(t, e.Referenced)
}

func TestAccessResidentSetsBits(t *testing.T) {
	m := New(1)
	var e pte.Entry
	e.SetResident(0)

	assert.True(t, m.Access(&e, false))
	assert.True(t, e.Referenced)
	assert.False(t, e.Modified)

	e.Referenced = false
	assert.True(t, m.Access(&e, true))
	assert.True(t, e.Referenced)
	assert.True(t, e.Modified)
}

func TestBusyFidsStableOrder(t *testing.T) {
	m := New(4)
	f0, _ := m.Alloc(1, 0)
	f1, _ := m.Alloc(1, 1)
	f2, _ := m.Alloc(1, 2)

	assert.Equal(t, []int{f0, f1, f2}, m.BusyFids())

	m.Free(f1)
	assert.Equal(t, []int{f0, f2}, m.BusyFids(), "freeing a middle frame must not reorder the remaining busy fids")
}
