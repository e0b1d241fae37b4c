// Package geometry holds the room dimension arithmetic the UI displays:
// floor areas from stored centimetre dimensions and perimeter wall areas
// for paint/wallpaper estimates.
package geometry

import "math"

// DefaultCeilingHeightM is assumed when a room has no stored height.
// Standard for modern UK new-builds.
const DefaultCeilingHeightM = 2.4

// FloorAreaSqM converts centimetre dimensions to square metres,
// rounded to 2 dp. 400cm x 350cm -> 14.00.
func FloorAreaSqM(lengthCM, widthCM int) float64 {
	return round2(float64(lengthCM) / 100 * float64(widthCM) / 100)
}

// WallAreaSqM is the area of the two walls along one dimension plus the two
// along the other: 2*(l+w)*h. With 400cm x 350cm and a 2.4m ceiling this is
// 2*(9.60+8.40) = 36.00.
func WallAreaSqM(lengthCM, widthCM int, ceilingM float64) float64 {
	l := float64(lengthCM) / 100
	w := float64(widthCM) / 100
	return round2(2 * (l + w) * ceilingM)
}

// CeilingHeightM picks the stored height when present, the default otherwise.
func CeilingHeightM(heightCM *int) float64 {
	if heightCM != nil && *heightCM > 0 {
		return float64(*heightCM) / 100
	}
	return DefaultCeilingHeightM
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
