package config

// MesherMode selects the surface extraction strategy for a world. It is fixed
// when the chunk store is created.
type MesherMode string

const (
	MesherSmooth MesherMode = "smooth" // marching cubes over the density field
	MesherCulled MesherMode = "culled" // one quad per exposed voxel face
	MesherGreedy MesherMode = "greedy" // merged same-material face rectangles
)

// BiomeSettings shapes the large terrain features.
type BiomeSettings struct {
	Scale           float64 `yaml:"scale"`
	PlateauHeight   float64 `yaml:"plateau_height"`
	PlateauFlatness float64 `yaml:"plateau_flatness"`
	ValleyDepth     float64 `yaml:"valley_depth"`
	CliffSteepness  float64 `yaml:"cliff_steepness"`
	EnablePlateaus  bool    `yaml:"enable_plateaus"`
	EnableValleys   bool    `yaml:"enable_valleys"`
	EnableCanyons   bool    `yaml:"enable_canyons"`
}

// Settings holds everything a world reads at initialization. A *Settings
// handed to a sampler or chunk store must not be modified afterwards.
type Settings struct {
	ChunkSize         int     `yaml:"chunk_size"`
	VoxelSize         float32 `yaml:"voxel_size"`
	RenderDistance    int     `yaml:"render_distance"`
	WorldHeightChunks int     `yaml:"world_height_chunks"`
	Seed              int64   `yaml:"seed"`

	BaseTerrainHeight float64 `yaml:"base_terrain_height"`
	TerrainAmplitude  float64 `yaml:"terrain_amplitude"`
	NoiseFrequency    float64 `yaml:"noise_frequency"`
	NoiseOctaves      int     `yaml:"noise_octaves"`
	GenerateCaves     bool    `yaml:"generate_caves"`
	CaveThreshold     float64 `yaml:"cave_threshold"`
	MinSolidThickness float64 `yaml:"min_solid_thickness"`

	Biome BiomeSettings `yaml:"biome"`
	LOD   LODSettings   `yaml:"lod"`

	Mesher            MesherMode `yaml:"mesher"`
	AsyncGeneration   bool       `yaml:"async_generation"`
	GenerationWorkers int        `yaml:"generation_workers"`
	ChunksPerTick     int        `yaml:"chunks_per_tick"`
	MeshBuildsPerTick int        `yaml:"mesh_builds_per_tick"`
	UsePooling        bool       `yaml:"use_pooling"`
	PoolSize          int        `yaml:"pool_size"`
	VertexDedup       bool       `yaml:"vertex_dedup"`
	SkipEmptyChunks   bool       `yaml:"skip_empty_chunks"`
}

// DefaultSettings returns the stock world configuration.
func DefaultSettings() *Settings {
	return &Settings{
		ChunkSize:         32,
		VoxelSize:         1,
		RenderDistance:    8,
		WorldHeightChunks: 8,
		Seed:              12345,

		BaseTerrainHeight: 96,
		TerrainAmplitude:  32,
		NoiseFrequency:    0.01,
		NoiseOctaves:      4,
		GenerateCaves:     true,
		CaveThreshold:     0.5,
		MinSolidThickness: 1,

		Biome: BiomeSettings{
			Scale:           0.002,
			PlateauHeight:   60,
			PlateauFlatness: 0.85,
			ValleyDepth:     40,
			CliffSteepness:  2.5,
			EnablePlateaus:  true,
			EnableValleys:   true,
			EnableCanyons:   true,
		},
		LOD: DefaultLODSettings(),

		Mesher:            MesherSmooth,
		AsyncGeneration:   true,
		GenerationWorkers: 4,
		ChunksPerTick:     8,
		MeshBuildsPerTick: 6,
		UsePooling:        true,
		PoolSize:          64,
		VertexDedup:       true,
		SkipEmptyChunks:   true,
	}
}

// DensityScale is the divisor that maps raw height differences into [-1,1].
const DensityScale = 5.0

// MinSolidDensity is the smallest magnitude a solid density sample can have
// after normalization. Thickness beyond DensityScale saturates at 1.
func (s *Settings) MinSolidDensity() float64 {
	return min(s.MinSolidThickness, DensityScale) / DensityScale
}

// ChunkWorldSize returns the edge length of a chunk in world units.
func (s *Settings) ChunkWorldSize() float32 {
	return float32(s.ChunkSize) * s.VoxelSize
}
