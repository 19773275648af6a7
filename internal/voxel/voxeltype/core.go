// Package voxeltype holds the value types shared by every voxelcore
// package: the voxel scalar, chunk extents, block faces, region keys, and
// the linear-index view over a dense plane buffer.
package voxeltype

import "github.com/cespare/xxhash/v2"

// VoxelID is the canonical per-cell scalar. Zero always means empty.
type VoxelID uint16

const EmptyVoxel VoxelID = 0

// Axis names one of the three grid dimensions.
type Axis uint8

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

// BlockFace is one of the six axis-aligned outward directions.
type BlockFace uint8

const (
	FacePosX BlockFace = iota
	FaceNegX
	FacePosY
	FaceNegY
	FacePosZ
	FaceNegZ
)

const BlockFaceCount = 6

// AllFaces lists every face in a stable, deterministic order.
var AllFaces = [BlockFaceCount]BlockFace{FacePosX, FaceNegX, FacePosY, FaceNegY, FacePosZ, FaceNegZ}

func (f BlockFace) Axis() Axis {
	switch f {
	case FacePosX, FaceNegX:
		return AxisX
	case FacePosY, FaceNegY:
		return AxisY
	default:
		return AxisZ
	}
}

func (f BlockFace) Sign() int {
	switch f {
	case FacePosX, FacePosY, FacePosZ:
		return 1
	default:
		return -1
	}
}

func (f BlockFace) Opposite() BlockFace {
	switch f {
	case FacePosX:
		return FaceNegX
	case FaceNegX:
		return FacePosX
	case FacePosY:
		return FaceNegY
	case FaceNegY:
		return FacePosY
	case FacePosZ:
		return FaceNegZ
	default:
		return FacePosZ
	}
}

// Normal returns the integer outward normal for the face.
func (f BlockFace) Normal() [3]int {
	switch f {
	case FacePosX:
		return [3]int{1, 0, 0}
	case FaceNegX:
		return [3]int{-1, 0, 0}
	case FacePosY:
		return [3]int{0, 1, 0}
	case FaceNegY:
		return [3]int{0, -1, 0}
	case FacePosZ:
		return [3]int{0, 0, 1}
	default:
		return [3]int{0, 0, -1}
	}
}

func (f BlockFace) String() string {
	switch f {
	case FacePosX:
		return "+X"
	case FaceNegX:
		return "-X"
	case FacePosY:
		return "+Y"
	case FaceNegY:
		return "-Y"
	case FacePosZ:
		return "+Z"
	default:
		return "-Z"
	}
}

// ChunkExtent is a positive 3D size triple.
type ChunkExtent struct {
	X, Y, Z uint32
}

// CubicExtent builds an extent with equal sides.
func CubicExtent(edge uint32) ChunkExtent { return ChunkExtent{edge, edge, edge} }

func (e ChunkExtent) Volume() int {
	return int(e.X) * int(e.Y) * int(e.Z)
}

func (e ChunkExtent) Contains(x, y, z int) bool {
	return x >= 0 && y >= 0 && z >= 0 && x < int(e.X) && y < int(e.Y) && z < int(e.Z)
}

func (e ChunkExtent) ToArray() [3]uint32 { return [3]uint32{e.X, e.Y, e.Z} }

// RegionKey names a chunk slot in world space.
type RegionKey struct {
	X, Y, Z int32
}

// Hash mixes the three components with golden-ratio constants so that
// neighboring keys do not alias into the same bucket.
func (k RegionKey) Hash() uint64 {
	hx := uint64(uint32(k.X))
	hy := uint64(uint32(k.Y))
	hz := uint64(uint32(k.Z))
	hash := hx * 0x9E3779B185EBCA87
	hash ^= hy + 0x9E3779B97F4A7C15 + (hash << 6) + (hash >> 2)
	hash ^= hz + 0xC2B2AE3D27D4EB4F + (hash << 6) + (hash >> 2)
	return hash
}

// HashXX is an alternate 64-bit xxhash of the three components, offered
// for cache layers that don't need Hash's golden-ratio mixing. No package
// in this module calls it; the artifact cache keys entries by kind plus
// content digest.
func (k RegionKey) HashXX() uint64 {
	var buf [12]byte
	putI32(buf[0:4], k.X)
	putI32(buf[4:8], k.Y)
	putI32(buf[8:12], k.Z)
	return xxhash.Sum64(buf[:])
}

func putI32(b []byte, v int32) {
	u := uint32(v)
	b[0] = byte(u)
	b[1] = byte(u >> 8)
	b[2] = byte(u >> 16)
	b[3] = byte(u >> 24)
}

// ManhattanDistance sums the per-axis key differences; face-adjacent
// regions are at distance 1. Navigation stitching computes the same test
// inline rather than calling this method.
func (k RegionKey) ManhattanDistance(other RegionKey) int64 {
	return absI64(int64(k.X)-int64(other.X)) + absI64(int64(k.Y)-int64(other.Y)) + absI64(int64(k.Z)-int64(other.Z))
}

func absI64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
