package wayland

import "math"

// Fixed is the protocol's signed 24.8 fixed-point number.
type Fixed int32

// FixedFromFloat converts v to 24.8 fixed point, rounding to the nearest
// 1/256 with halves rounded away from zero.
func FixedFromFloat(v float64) Fixed {
	return Fixed(math.Round(v * 256))
}

// Float returns the value as a float64.
func (f Fixed) Float() float64 {
	return float64(f) / 256
}
