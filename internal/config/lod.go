package config

// LOD is a level of detail tier. Culled chunks keep their data but get no mesh.
type LOD uint8

const (
	LOD0 LOD = iota
	LOD1
	LOD2
	LOD3
	LODCulled
)

func (l LOD) String() string {
	switch l {
	case LOD0:
		return "lod0"
	case LOD1:
		return "lod1"
	case LOD2:
		return "lod2"
	case LOD3:
		return "lod3"
	default:
		return "culled"
	}
}

// LODSettings maps horizontal chunk distance to detail tiers. A chunk at
// distance d uses the first tier whose bound is >= d.
type LODSettings struct {
	LOD0Distance      int     `yaml:"lod0_distance"`
	LOD1Distance      int     `yaml:"lod1_distance"`
	LOD2Distance      int     `yaml:"lod2_distance"`
	LOD3Distance      int     `yaml:"lod3_distance"`
	CollisionDistance int     `yaml:"collision_distance"`
	UpdateInterval    float64 `yaml:"update_interval"`
	CollisionInterval float64 `yaml:"collision_interval"`
}

// DefaultLODSettings returns the stock distance bands.
func DefaultLODSettings() LODSettings {
	return LODSettings{
		LOD0Distance:      4,
		LOD1Distance:      12,
		LOD2Distance:      28,
		LOD3Distance:      48,
		CollisionDistance: 3,
		UpdateInterval:    0.5,
		CollisionInterval: 0.5,
	}
}

// LODBand is one row of the distance table.
type LODBand struct {
	MaxDistance int
	Level       LOD
	Step        int
}

// Bands returns the distance table ordered by distance.
func (l LODSettings) Bands() []LODBand {
	return []LODBand{
		{MaxDistance: l.LOD0Distance, Level: LOD0, Step: StepForLOD(LOD0)},
		{MaxDistance: l.LOD1Distance, Level: LOD1, Step: StepForLOD(LOD1)},
		{MaxDistance: l.LOD2Distance, Level: LOD2, Step: StepForLOD(LOD2)},
		{MaxDistance: l.LOD3Distance, Level: LOD3, Step: StepForLOD(LOD3)},
	}
}

// LODForDistance returns the tier for a horizontal chunk distance.
func (l LODSettings) LODForDistance(d float64) LOD {
	switch {
	case d <= float64(l.LOD0Distance):
		return LOD0
	case d <= float64(l.LOD1Distance):
		return LOD1
	case d <= float64(l.LOD2Distance):
		return LOD2
	case d <= float64(l.LOD3Distance):
		return LOD3
	}
	return LODCulled
}

// CollisionForDistance reports whether a chunk at distance d needs collision.
func (l LODSettings) CollisionForDistance(d float64) bool {
	return d <= float64(l.CollisionDistance)
}

// StepForLOD returns the marching cubes stride for a tier.
func StepForLOD(l LOD) int {
	switch l {
	case LOD0:
		return 1
	case LOD1:
		return 2
	case LOD2:
		return 4
	case LOD3:
		return 8
	}
	return 0
}
