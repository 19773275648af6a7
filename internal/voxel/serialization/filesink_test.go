package serialization

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/almondvoxel/voxelcore/internal/voxel/chunk"
	"github.com/almondvoxel/voxelcore/internal/voxel/voxeltype"
)

func TestFileSinkRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshots.bin")

	sink, err := OpenFileSink(path)
	require.NoError(t, err)

	s := chunk.New(fullConfig())
	fillByLinearIndex(s)

	keyA := voxeltype.RegionKey{X: 1, Y: 2, Z: 3}
	keyB := voxeltype.RegionKey{X: -4, Y: 0, Z: 7}

	require.NoError(t, sink.Append(keyA, SerializeChunk(s)))
	require.NoError(t, sink.Append(keyB, SerializeChunk(s)))
	require.NoError(t, sink.Close())

	sink, err = OpenFileSink(path)
	require.NoError(t, err)
	defer sink.Close()

	blobs, err := sink.ReadAll()
	require.NoError(t, err)
	require.Len(t, blobs, 2)
	require.Equal(t, keyA, blobs[0].Key)
	require.Equal(t, keyB, blobs[1].Key)
	require.Equal(t, SerializeChunk(s), blobs[0].Payload)
}

func TestFileSinkAppendAfterReadAll(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshots.bin")

	sink, err := OpenFileSink(path)
	require.NoError(t, err)
	defer sink.Close()

	s := chunk.New(fullConfig())
	key := voxeltype.RegionKey{X: 9, Y: 9, Z: 9}

	require.NoError(t, sink.Append(key, SerializeChunk(s)))
	_, err = sink.ReadAll()
	require.NoError(t, err)

	require.NoError(t, sink.Append(key, SerializeChunk(s)))
	blobs, err := sink.ReadAll()
	require.NoError(t, err)
	require.Len(t, blobs, 2)
}
