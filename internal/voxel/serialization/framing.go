package serialization

import (
	"bytes"
	"io"

	"github.com/almondvoxel/voxelcore/internal/voxel/voxelerr"
	"github.com/almondvoxel/voxelcore/internal/voxel/voxeltype"
)

// WriteFramedBlob writes region_key.{x,y,z} (i32 each), a u32 payload
// length, then the payload bytes.
func WriteFramedBlob(w io.Writer, key voxeltype.RegionKey, payload []byte) error {
	buf := new(bytes.Buffer)
	writeI32(buf, key.X)
	writeI32(buf, key.Y)
	writeI32(buf, key.Z)
	writeU32(buf, uint32(len(payload)))
	buf.Write(payload)
	_, err := w.Write(buf.Bytes())
	return err
}

// ReadFramedBlob reads one framed blob from r.
func ReadFramedBlob(r io.Reader) (SnapshotBlob, error) {
	var header [16]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		if err == io.EOF {
			return SnapshotBlob{}, err
		}
		return SnapshotBlob{}, voxelerr.Wrap(voxelerr.Truncated, "framed blob header", err)
	}

	key := voxeltype.RegionKey{
		X: int32(endian.Uint32(header[0:4])),
		Y: int32(endian.Uint32(header[4:8])),
		Z: int32(endian.Uint32(header[8:12])),
	}
	payloadLen := endian.Uint32(header[12:16])

	payload := make([]byte, payloadLen)
	if _, err := io.ReadFull(r, payload); err != nil {
		return SnapshotBlob{}, voxelerr.Wrap(voxelerr.Truncated, "framed blob payload", err)
	}

	return SnapshotBlob{Key: key, Payload: payload}, nil
}

func writeI32(buf *bytes.Buffer, v int32) {
	writeU32(buf, uint32(v))
}
