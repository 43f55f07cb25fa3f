package terrain

import "math"

// Voxel is the fused per-cell record used by the blocky meshers.
type Voxel struct {
	Material Material
	Density  uint8 // 255 fully solid, 0 fully empty
	Light    uint8
}

// IsSolid reports whether the voxel blocks rays and hides faces.
func (v Voxel) IsSolid() bool { return v.Material.IsSolid() }

// IsTransparent reports whether a neighbor's face against this voxel is drawn.
func (v Voxel) IsTransparent() bool { return v.Material.IsTransparent() }

// DensityToByte maps a signed density in [-1,1] to the 0..255 voxel range.
func DensityToByte(d float64) uint8 {
	v := (1-d)*127.5 + 0.5
	if v != v || v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// ByteToDensity is the inverse of DensityToByte up to quantization.
func ByteToDensity(b uint8) float64 {
	return math.Max(-1, math.Min(1, 1-float64(b)/127.5))
}
