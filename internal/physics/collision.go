// Package physics provides a minimal axis-aligned bounding-box collider
// against the voxel grid, for keeping a probe point from passing through
// solid chunk contents. No other package in this module imports it.
package physics

// Vec3 is a plain float position in voxel-grid units.
type Vec3 struct {
	X, Y, Z float64
}

// BoxCollider is an axis-aligned box sized in whole voxels, centered on
// an entity's position.
type BoxCollider struct {
	Width, Height, Depth float64
}

// NewBoxCollider builds a collider with the given extents.
func NewBoxCollider(width, height, depth float64) *BoxCollider {
	return &BoxCollider{Width: width, Height: height, Depth: depth}
}

// IsPointInside reports whether point lies within a collider centered
// at colliderPos.
func (bc *BoxCollider) IsPointInside(colliderPos, point Vec3) bool {
	halfW, halfH, halfD := bc.Width/2, bc.Height/2, bc.Depth/2

	return point.X >= colliderPos.X-halfW && point.X < colliderPos.X+halfW &&
		point.Y >= colliderPos.Y-halfH && point.Y < colliderPos.Y+halfH &&
		point.Z >= colliderPos.Z-halfD && point.Z < colliderPos.Z+halfD
}

// CheckBoxCollision reports whether two AABBs, each centered at its own
// position, overlap.
func CheckBoxCollision(pos1 Vec3, collider1 *BoxCollider, pos2 Vec3, collider2 *BoxCollider) bool {
	halfW1, halfH1, halfD1 := collider1.Width/2, collider1.Height/2, collider1.Depth/2
	halfW2, halfH2, halfD2 := collider2.Width/2, collider2.Height/2, collider2.Depth/2

	return pos1.X+halfW1 > pos2.X-halfW2 && pos1.X-halfW1 < pos2.X+halfW2 &&
		pos1.Y+halfH1 > pos2.Y-halfH2 && pos1.Y-halfH1 < pos2.Y+halfH2 &&
		pos1.Z+halfD1 > pos2.Z-halfD2 && pos1.Z-halfD1 < pos2.Z+halfD2
}

// GetCollisionPoints returns the sample points used to test a collider
// against the voxel grid: the eight corners plus the center for a box
// larger than a single cell, or just the center for a 1x1x1 probe.
func GetCollisionPoints(pos Vec3, collider *BoxCollider) []Vec3 {
	halfW, halfH, halfD := collider.Width/2, collider.Height/2, collider.Depth/2

	if collider.Width <= 1 && collider.Height <= 1 && collider.Depth <= 1 {
		return []Vec3{pos}
	}

	points := make([]Vec3, 0, 9)
	for _, dx := range []float64{-halfW, halfW - 1} {
		for _, dy := range []float64{-halfH, halfH - 1} {
			for _, dz := range []float64{-halfD, halfD - 1} {
				points = append(points, Vec3{X: pos.X + dx, Y: pos.Y + dy, Z: pos.Z + dz})
			}
		}
	}
	points = append(points, pos)
	return points
}

// CanMoveToPosition reports whether every sample point of collider at
// newPos passes voxelPassable.
func CanMoveToPosition(newPos Vec3, collider *BoxCollider, voxelPassable func(Vec3) bool) bool {
	for _, point := range GetCollisionPoints(newPos, collider) {
		if !voxelPassable(point) {
			return false
		}
	}
	return true
}
