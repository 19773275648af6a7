package serialization

import (
	"io"
	"os"

	"github.com/golang/snappy"

	"github.com/almondvoxel/voxelcore/internal/voxel/voxeltype"
)

// FileSink appends snapshot blobs to a single flat file, compressing each
// payload with snappy's block format before it's written. The region-key/length/payload
// framing WriteFramedBlob/ReadFramedBlob describe is untouched; only the
// payload bytes themselves are compressed, transparently, so a reader
// with no knowledge of compression would see garbage rather than a
// length mismatch — FileSink owns both ends.
type FileSink struct {
	file *os.File
}

// OpenFileSink opens (creating if necessary) path for appending snapshot
// blobs.
func OpenFileSink(path string) (*FileSink, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	return &FileSink{file: f}, nil
}

// Close closes the underlying file.
func (fs *FileSink) Close() error {
	return fs.file.Close()
}

// Append writes one snapshot blob, snappy-compressing its payload.
func (fs *FileSink) Append(key voxeltype.RegionKey, payload []byte) error {
	return WriteFramedBlob(fs.file, key, snappy.Encode(nil, payload))
}

// ReadAll reads every blob in the file from the beginning, decompressing
// each payload back to its original bytes. It seeks the file back to the
// end afterward so subsequent Append calls still append.
func (fs *FileSink) ReadAll() ([]SnapshotBlob, error) {
	if _, err := fs.file.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	defer fs.file.Seek(0, io.SeekEnd)

	var blobs []SnapshotBlob
	for {
		blob, err := ReadFramedBlob(fs.file)
		if err == io.EOF {
			break
		}
		if err != nil {
			return blobs, err
		}

		decoded, err := snappy.Decode(nil, blob.Payload)
		if err != nil {
			return blobs, err
		}
		blob.Payload = decoded
		blobs = append(blobs, blob)
	}
	return blobs, nil
}
