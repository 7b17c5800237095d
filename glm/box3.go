package glm

// Box3 is an axis aligned bounding box.
type Box3[T Numeric] struct {
	Min Vec3[T]
	Max Vec3[T]
}

// Box3FromPoints returns the smallest box containing all the given points.
// The result is the zero box if no points are given.
func Box3FromPoints[T Numeric](points ...Vec3[T]) Box3[T] {
	if len(points) == 0 {
		return Box3[T]{}
	}

	box := Box3[T]{Min: points[0], Max: points[0]}
	for _, point := range points[1:] {
		box = box.Extend(point)
	}

	return box
}

func (b Box3[T]) Extend(point Vec3[T]) Box3[T] {
	return Box3[T]{
		Min: b.Min.Min(point),
		Max: b.Max.Max(point),
	}
}

func (b Box3[T]) Union(other Box3[T]) Box3[T] {
	return b.Extend(other.Min).Extend(other.Max)
}

func (b Box3[T]) Size() Vec3[T] {
	return b.Max.Sub(b.Min)
}

func (b Box3[T]) Center() Vec3[T] {
	return Vec3[T]{
		(b.Min[0] + b.Max[0]) / 2,
		(b.Min[1] + b.Max[1]) / 2,
		(b.Min[2] + b.Max[2]) / 2,
	}
}

func (b Box3[T]) Contains(point Vec3[T]) bool {
	return point[0] >= b.Min[0] && point[0] <= b.Max[0] &&
		point[1] >= b.Min[1] && point[1] <= b.Max[1] &&
		point[2] >= b.Min[2] && point[2] <= b.Max[2]
}

// Octant returns the child box with the given index in [0, 8). Bit 0 selects
// the upper half along x, bit 1 along y and bit 2 along z.
func (b Box3[T]) Octant(idx int) Box3[T] {
	center := b.Center()

	child := b
	for axis := range 3 {
		if idx&(1<<axis) != 0 {
			child.Min[axis] = center[axis]
		} else {
			child.Max[axis] = center[axis]
		}
	}

	return child
}

// OctantOf returns the index of the octant the point falls into.
func (b Box3[T]) OctantOf(point Vec3[T]) int {
	center := b.Center()

	var idx int
	for axis := range 3 {
		if point[axis] >= center[axis] {
			idx |= 1 << axis
		}
	}

	return idx
}
