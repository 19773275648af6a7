package physics

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsPointInside(t *testing.T) {
	bc := NewBoxCollider(2, 2, 2)
	center := Vec3{X: 5, Y: 5, Z: 5}

	require.True(t, bc.IsPointInside(center, Vec3{X: 5, Y: 5, Z: 5}))
	require.True(t, bc.IsPointInside(center, Vec3{X: 4.1, Y: 4.1, Z: 4.1}))
	require.False(t, bc.IsPointInside(center, Vec3{X: 6, Y: 5, Z: 5}))
}

func TestCheckBoxCollisionOverlap(t *testing.T) {
	a := NewBoxCollider(2, 2, 2)
	b := NewBoxCollider(2, 2, 2)

	require.True(t, CheckBoxCollision(Vec3{X: 0, Y: 0, Z: 0}, a, Vec3{X: 1, Y: 0, Z: 0}, b))
	require.False(t, CheckBoxCollision(Vec3{X: 0, Y: 0, Z: 0}, a, Vec3{X: 10, Y: 0, Z: 0}, b))
}

func TestGetCollisionPointsSingleProbeIsJustCenter(t *testing.T) {
	bc := NewBoxCollider(1, 1, 1)
	pos := Vec3{X: 3, Y: 4, Z: 5}

	points := GetCollisionPoints(pos, bc)
	require.Equal(t, []Vec3{pos}, points)
}

func TestGetCollisionPointsLargerBoxSamplesCornersAndCenter(t *testing.T) {
	bc := NewBoxCollider(2, 2, 2)
	pos := Vec3{X: 0, Y: 0, Z: 0}

	points := GetCollisionPoints(pos, bc)
	require.Len(t, points, 9) // 8 corners + center
	require.Contains(t, points, pos)
}

func TestCanMoveToPositionBlockedBySolidVoxel(t *testing.T) {
	bc := NewBoxCollider(1, 1, 1)
	passable := func(p Vec3) bool { return p.X < 10 }

	require.True(t, CanMoveToPosition(Vec3{X: 5, Y: 0, Z: 0}, bc, passable))
	require.False(t, CanMoveToPosition(Vec3{X: 15, Y: 0, Z: 0}, bc, passable))
}
