package terrain

import "image/color"

// Material identifies what a voxel cell is made of.
type Material uint8

const (
	Air Material = iota
	Stone
	Dirt
	Grass
	Sand
	Water
	Snow
	Bedrock
	Gravel
	Clay
	Ice
	Lava
	PlateauStone
	DarkStone
	RedRock

	materialCount
)

var materialNames = [materialCount]string{
	"air", "stone", "dirt", "grass", "sand", "water", "snow", "bedrock",
	"gravel", "clay", "ice", "lava", "plateau_stone", "dark_stone", "red_rock",
}

func (m Material) String() string {
	if m < materialCount {
		return materialNames[m]
	}
	return "unknown"
}

// IsSolid reports whether the material blocks movement and rays.
func (m Material) IsSolid() bool {
	return m != Air && m != Water
}

// IsTransparent reports whether faces behind this material stay visible.
func (m Material) IsTransparent() bool {
	return m == Air || m == Water || m == Ice
}

// IsLiquid reports whether the material flows.
func (m Material) IsLiquid() bool {
	return m == Water || m == Lava
}

var materialColors = [materialCount]color.RGBA{
	Air:          {255, 255, 255, 0},
	Stone:        {128, 128, 128, 255},
	Dirt:         {139, 90, 43, 255},
	Grass:        {34, 139, 34, 255},
	Sand:         {238, 214, 175, 255},
	Water:        {64, 164, 223, 180},
	Snow:         {255, 250, 250, 255},
	Bedrock:      {50, 50, 50, 255},
	Gravel:       {160, 160, 160, 255},
	Clay:         {180, 160, 140, 255},
	Ice:          {200, 230, 255, 200},
	Lava:         {255, 100, 0, 255},
	PlateauStone: {176, 132, 96, 255},
	DarkStone:    {72, 70, 78, 255},
	RedRock:      {168, 74, 48, 255},
}

// Color returns the vertex color used for the material.
func (m Material) Color() color.RGBA {
	if m < materialCount {
		return materialColors[m]
	}
	return color.RGBA{255, 255, 255, 255}
}
