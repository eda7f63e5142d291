package common

// BoundingBox is an axis-aligned box spanning [Min, Max] on each axis.
// The zero value is not a valid box; construct with NewBoundingBox or start
// from the box of a single point and grow it with Union.
type BoundingBox struct {
	Min [3]float32
	Max [3]float32
}

// NewBoundingBox creates a bounding box containing only the given point.
//
// Parameters:
//   - point: the initial point
//
// Returns:
//   - BoundingBox: a degenerate box at the point
func NewBoundingBox(point [3]float32) BoundingBox {
	return BoundingBox{Min: point, Max: point}
}

// Union returns the smallest box containing both b and other.
func (b BoundingBox) Union(other BoundingBox) BoundingBox {
	out := b
	for i := range 3 {
		if other.Min[i] < out.Min[i] {
			out.Min[i] = other.Min[i]
		}
		if other.Max[i] > out.Max[i] {
			out.Max[i] = other.Max[i]
		}
	}
	return out
}

// Expand returns the box grown to contain the given point.
func (b BoundingBox) Expand(point [3]float32) BoundingBox {
	return b.Union(BoundingBox{Min: point, Max: point})
}

// Contains reports whether the point lies inside or on the box boundary.
func (b BoundingBox) Contains(point [3]float32) bool {
	for i := range 3 {
		if point[i] < b.Min[i] || point[i] > b.Max[i] {
			return false
		}
	}
	return true
}

// Center returns the midpoint of the box.
func (b BoundingBox) Center() [3]float32 {
	return [3]float32{
		(b.Min[0] + b.Max[0]) / 2,
		(b.Min[1] + b.Max[1]) / 2,
		(b.Min[2] + b.Max[2]) / 2,
	}
}

// Radius returns the radius of the smallest sphere centered at Center that
// contains the box. Used for coarse sphere-vs-frustum culling.
func (b BoundingBox) Radius() float32 {
	c := b.Center()
	return Length3([3]float32{b.Max[0] - c[0], b.Max[1] - c[1], b.Max[2] - c[2]})
}
