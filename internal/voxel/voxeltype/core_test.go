package voxeltype

import "testing"

func TestIndexMapping(t *testing.T) {
	extent := ChunkExtent{X: 4, Y: 5, Z: 6}
	for z := 0; z < int(extent.Z); z++ {
		for y := 0; y < int(extent.Y); y++ {
			for x := 0; x < int(extent.X); x++ {
				idx := Index(extent, x, y, z)
				want := x + int(extent.X)*(y+int(extent.Y)*z)
				if idx != want {
					t.Fatalf("Index(%d,%d,%d) = %d, want %d", x, y, z, idx, want)
				}
				if idx >= extent.Volume() {
					t.Fatalf("index %d out of volume %d", idx, extent.Volume())
				}
			}
		}
	}
}

func TestRegionKeyHashNoAliasNeighbors(t *testing.T) {
	base := RegionKey{X: 10, Y: 10, Z: 10}
	seen := map[uint64]RegionKey{}
	for dx := int32(-2); dx <= 2; dx++ {
		for dy := int32(-2); dy <= 2; dy++ {
			for dz := int32(-2); dz <= 2; dz++ {
				k := RegionKey{X: base.X + dx, Y: base.Y + dy, Z: base.Z + dz}
				h := k.Hash()
				if other, ok := seen[h]; ok && other != k {
					t.Fatalf("hash collision between %v and %v", k, other)
				}
				seen[h] = k
			}
		}
	}
}

func TestBlockFaceOppositeAndNormal(t *testing.T) {
	for _, f := range AllFaces {
		if f.Opposite().Opposite() != f {
			t.Fatalf("opposite not involutive for %v", f)
		}
		n := f.Normal()
		sum := n[0]*n[0] + n[1]*n[1] + n[2]*n[2]
		if sum != 1 {
			t.Fatalf("normal for %v is not unit axis-aligned: %v", f, n)
		}
	}
}
