package memdisk

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/IvanBrykalov/blockcache/device"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestDisk_UnwrittenReadsZeros(t *testing.T) {
	t.Parallel()

	d := New(8, nil)
	p := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	require.NoError(t, d.ReadBlock(0, 3, p))
	if diff := cmp.Diff(make([]byte, 8), p); diff != "" {
		t.Fatalf("unwritten block mismatch (-want +got):\n%s", diff)
	}
	require.EqualValues(t, 1, d.Reads())
}

func TestDisk_FillAndWrite(t *testing.T) {
	t.Parallel()

	d := New(8, func(dev uint32, blockNo uint64, p []byte) {
		binary.LittleEndian.PutUint64(p, uint64(dev)<<32|blockNo)
	})

	p := make([]byte, 8)
	require.NoError(t, d.ReadBlock(2, 9, p))
	require.Equal(t, uint64(2)<<32|9, binary.LittleEndian.Uint64(p))

	w := []byte("abcdefgh")
	require.NoError(t, d.WriteBlock(2, 9, w))
	w[0] = 'z' // disk must hold its own copy

	require.NoError(t, d.ReadBlock(2, 9, p))
	require.Equal(t, "abcdefgh", string(p))

	got, ok := d.Block(2, 9)
	require.True(t, ok)
	require.Equal(t, "abcdefgh", string(got))
	_, ok = d.Block(2, 10)
	require.False(t, ok)
	require.EqualValues(t, 1, d.Writes())
}

func TestDisk_ShortBuffer(t *testing.T) {
	t.Parallel()

	d := New(8, nil)
	require.ErrorIs(t, d.ReadBlock(0, 0, make([]byte, 4)), device.ErrShortBlock)
	require.ErrorIs(t, d.WriteBlock(0, 0, make([]byte, 9)), device.ErrShortBlock)
}

func TestDisk_Fail(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	d := New(4, nil)
	d.Fail(1, 1, boom)

	require.ErrorIs(t, d.ReadBlock(1, 1, make([]byte, 4)), boom)
	require.ErrorIs(t, d.WriteBlock(1, 1, make([]byte, 4)), boom)
	require.NoError(t, d.ReadBlock(1, 2, make([]byte, 4)))

	d.Fail(1, 1, nil)
	require.NoError(t, d.ReadBlock(1, 1, make([]byte, 4)))
}
