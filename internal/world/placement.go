// Building placement: axis-aligned overlap test and the deterministic
// ring search used to find a free spot for a new building.
package world

// DefaultMargin is the clearance kept between building footprints.
const DefaultMargin = 1.0

// OverlapsXZ reports whether two axis-aligned building footprints, each
// expanded by margin on every side, intersect on the XZ plane. Symmetric
// and side-effect free.
func OverlapsXZ(posA, sizeA, posB, sizeB Vec3, margin float64) bool {
	ax0 := posA.X - sizeA.X/2 - margin
	ax1 := posA.X + sizeA.X/2 + margin
	az0 := posA.Z - sizeA.Z/2 - margin
	az1 := posA.Z + sizeA.Z/2 + margin

	bx0 := posB.X - sizeB.X/2 - margin
	bx1 := posB.X + sizeB.X/2 + margin
	bz0 := posB.Z - sizeB.Z/2 - margin
	bz1 := posB.Z + sizeB.Z/2 + margin

	return ax0 < bx1 && ax1 > bx0 && az0 < bz1 && az1 > bz0
}

// FindNonOverlappingPosition searches concentric square rings around the
// origin for a position where a building of the given size fits without
// overlapping any existing building. The origin is tried first, then each
// ring perimeter at increasing radius (interior points are already covered
// by smaller rings). Candidate order is fixed, so identical inputs always
// produce the same position.
//
// If no free spot exists within bounds, the fallback position just outside
// the search area is returned. It may still overlap visually, but the
// search always terminates with a usable result.
func FindNonOverlappingPosition(size Vec3, buildings []*Building, bounds, step float64) Vec3 {
	if bounds <= 0 {
		bounds = 40
	}
	if step <= 0 {
		step = 3
	}

	fits := func(p Vec3) bool {
		for _, b := range buildings {
			if OverlapsXZ(p, size, b.Position, b.Size, DefaultMargin) {
				return false
			}
		}
		return true
	}

	origin := Vec3{X: 0, Y: DisplayHeight, Z: 0}
	if fits(origin) {
		return origin
	}

	for r := step; r <= bounds; r += step {
		for x := -r; x <= r; x += step {
			for z := -r; z <= r; z += step {
				// Ring perimeter only; interior was tried at smaller radii.
				if x > -r && x < r && z > -r && z < r {
					continue
				}
				p := Vec3{X: x, Y: DisplayHeight, Z: z}
				if fits(p) {
					return p
				}
			}
		}
	}

	// Degenerate fallback outside the search bounds.
	return Vec3{X: bounds + size.X, Y: DisplayHeight, Z: bounds + size.Z}
}
