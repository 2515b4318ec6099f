package graph

import (
	"math"
	"math/rand/v2"
)

// Clamp01 bounds v to [0,1]. NaN maps to 0.
func Clamp01(v float64) float64 {
	if !(v > 0) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// RandomTraffic draws base + U(-0.5,0.5)*variability*4, clamped to [0,1].
func RandomTraffic(r *rand.Rand, base, variability float64) float64 {
	return Clamp01(base + (r.Float64()-0.5)*variability*4)
}

// Speed maps a traffic weight to km/h: 60 when empty, 5 when jammed.
func Speed(weight float64) int {
	return int(math.Round(60 - weight*55))
}

// VehicleCount derives a vehicle count from weight plus jitter in [-5,5].
func VehicleCount(r *rand.Rand, weight float64) int {
	n := int(math.Floor(weight*100)) + r.IntN(11) - 5
	if n < 0 {
		return 0
	}
	return n
}
