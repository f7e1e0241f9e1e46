// Package world provides the campus geometry: buildings, zones, and the
// deterministic placement search used when new buildings are added at runtime.
package world

// Vec3 is a point or extent in world space. Y is up; buildings live on the
// XZ plane with Y fixed at display height.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// DistSqXZ returns the squared XZ distance. Used in hot loops where the
// actual distance is not needed.
func DistSqXZ(a, b Vec3) float64 {
	dx := a.X - b.X
	dz := a.Z - b.Z
	return dx*dx + dz*dz
}

// Zone categorizes a building's district.
type Zone string

const (
	ZoneCampus      Zone = "campus"
	ZoneDowntown    Zone = "downtown"
	ZoneResidential Zone = "residential"
	ZoneCommercial  Zone = "commercial"
)

// DisplayHeight is the fixed Y coordinate at which buildings sit.
const DisplayHeight = 0

// Building is a structure on the campus map. ID is the only stable handle;
// Name is user-facing and matched fuzzily, so it is not guaranteed unique.
type Building struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Position  Vec3    `json:"position"`
	Size      Vec3    `json:"size"`
	Activity  float64 `json:"activity"`  // 0..1, converges toward the environment target
	Occupancy int     `json:"occupancy"` // recomputed every tick, never cumulative
	Zone      Zone    `json:"zone,omitempty"`
	IsCustom  bool    `json:"is_custom,omitempty"` // true for directive-created buildings
}
