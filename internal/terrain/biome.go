package terrain

// Biome classifies a terrain column.
type Biome uint8

const (
	Plains Biome = iota
	Desert
	Mountains
	Forest
	Tundra
	Ocean
	Swamp
	Plateau
	DeepValley
	Canyon
	Badlands
	HighlandPlains

	biomeCount
)

var biomeNames = [biomeCount]string{
	"plains", "desert", "mountains", "forest", "tundra", "ocean",
	"swamp", "plateau", "deep_valley", "canyon", "badlands", "highland_plains",
}

func (b Biome) String() string {
	if b < biomeCount {
		return biomeNames[b]
	}
	return "unknown"
}

// Biomes lists every biome in id order.
func Biomes() []Biome {
	out := make([]Biome, biomeCount)
	for i := range out {
		out[i] = Biome(i)
	}
	return out
}

// classifyClimate is the climate decision table. Strong plateau and valley
// influence override the climate channels.
func classifyClimate(c *Column) Biome {
	if c.Plateau > 0.6 {
		if c.Temperature < 0.3 {
			return Tundra
		}
		return HighlandPlains
	}
	if c.Valley > 0.6 {
		return DeepValley
	}
	if c.Continentalness < 0.3 {
		return Ocean
	}
	if c.Temperature < 0.25 {
		return Tundra
	}
	if c.Temperature > 0.75 {
		if c.Moisture < 0.3 {
			if c.Erosion < 0.4 {
				return Badlands
			}
			return Desert
		}
		if c.Moisture > 0.7 {
			return Swamp
		}
	}
	if c.Erosion < 0.3 {
		return Mountains
	}
	if c.Moisture > 0.5 {
		return Forest
	}
	return Plains
}

// classifyFeature applies feature biomes ahead of the climate table:
// canyon, then valley, then plateau.
func classifyFeature(c *Column) Biome {
	switch {
	case c.Canyon > 0.5:
		return Canyon
	case c.Valley > 0.5:
		return DeepValley
	case c.Plateau > 0.5:
		return Plateau
	}
	return c.Climate
}
