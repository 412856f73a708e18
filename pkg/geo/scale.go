// Package geo converts floating-point GPS coordinates to the fixed-point
// integer representation used in on-chain report payloads. EVM contracts have
// no native floating point, so coordinates travel as integers scaled by 10^8.
package geo

import "github.com/shopspring/decimal"

// Precision is the number of decimal digits preserved by ScaleCoordinate.
// Eight digits keeps sub-meter GPS precision.
const Precision = 8

var scaleFactor = decimal.New(1, Precision)

// ScaleCoordinate converts a coordinate component to fixed point by
// multiplying by 10^8 and rounding to the nearest integer (half away from
// zero). The full latitude/longitude domain fits in int64.
func ScaleCoordinate(v float64) int64 {
	return decimal.NewFromFloat(v).Mul(scaleFactor).Round(0).IntPart()
}

// UnscaleCoordinate is the inverse of ScaleCoordinate, for display purposes.
func UnscaleCoordinate(v int64) float64 {
	f, _ := decimal.New(v, -Precision).Float64()
	return f
}

// ValidLatitude reports whether lat lies in [-90, 90].
func ValidLatitude(lat float64) bool {
	return lat >= -90 && lat <= 90
}

// ValidLongitude reports whether lon lies in [-180, 180].
func ValidLongitude(lon float64) bool {
	return lon >= -180 && lon <= 180
}
