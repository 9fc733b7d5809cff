// Package quantity enforces per-product order bounds.
package quantity

// Bounds are the min/max order constraints of a product. A nil Max means the
// product has no upper bound.
type Bounds struct {
	Min int
	Max *int
}

// Between returns bounds with both ends set.
func Between(min, max int) Bounds {
	return Bounds{Min: min, Max: &max}
}

// AtLeast returns bounds with no upper limit.
func AtLeast(min int) Bounds {
	return Bounds{Min: min}
}

// Clamp returns requested when it lies in [min, max] and the nearest bound
// otherwise. When max < min the range collapses to min.
func Clamp(requested, min int, max *int) int {
	if max != nil && *max >= min && requested > *max {
		return *max
	}
	if requested < min {
		return min
	}
	if max != nil && *max < min {
		return min
	}
	return requested
}

// Clamp applies the bounds to requested.
func (b Bounds) Clamp(requested int) int {
	return Clamp(requested, b.Min, b.Max)
}

// Contains reports whether q already satisfies the bounds.
func (b Bounds) Contains(q int) bool {
	return b.Clamp(q) == q
}
