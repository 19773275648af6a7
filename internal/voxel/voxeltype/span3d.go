package voxeltype

// Index computes the linear offset of (x, y, z) into a dense plane sized
// extent.Volume(), addressed x + X*(y + Y*z).
func Index(extent ChunkExtent, x, y, z int) int {
	return x + int(extent.X)*(y+int(extent.Y)*z)
}

// View3D is a read-only, non-owning view over a contiguous plane buffer.
type View3D[T any] struct {
	data   []T
	extent ChunkExtent
}

func NewView3D[T any](data []T, extent ChunkExtent) View3D[T] {
	return View3D[T]{data: data, extent: extent}
}

func (v View3D[T]) Extent() ChunkExtent { return v.extent }
func (v View3D[T]) Size() int           { return v.extent.Volume() }
func (v View3D[T]) Empty() bool         { return len(v.data) == 0 }
func (v View3D[T]) Linear() []T         { return v.data }

func (v View3D[T]) At(x, y, z int) T {
	return v.data[Index(v.extent, x, y, z)]
}

func (v View3D[T]) Contains(x, y, z int) bool { return v.extent.Contains(x, y, z) }

// MutView3D is the mutable counterpart of View3D.
type MutView3D[T any] struct {
	data   []T
	extent ChunkExtent
}

func NewMutView3D[T any](data []T, extent ChunkExtent) MutView3D[T] {
	return MutView3D[T]{data: data, extent: extent}
}

func (v MutView3D[T]) Extent() ChunkExtent     { return v.extent }
func (v MutView3D[T]) Size() int               { return v.extent.Volume() }
func (v MutView3D[T]) Empty() bool             { return len(v.data) == 0 }
func (v MutView3D[T]) Linear() []T             { return v.data }
func (v MutView3D[T]) Contains(x, y, z int) bool { return v.extent.Contains(x, y, z) }

func (v MutView3D[T]) At(x, y, z int) T {
	return v.data[Index(v.extent, x, y, z)]
}

func (v MutView3D[T]) Set(x, y, z int, value T) {
	v.data[Index(v.extent, x, y, z)] = value
}

func (v MutView3D[T]) AsConst() View3D[T] {
	return View3D[T]{data: v.data, extent: v.extent}
}
