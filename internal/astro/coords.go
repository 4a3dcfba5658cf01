// Package astro holds the fixed ICRS to Galactic coordinate rotation.
package astro

import "math"

// Rotation matrix from ICRS equatorial to Galactic cartesian coordinates
// (Hipparcos definition of the Galactic frame).
var icrsToGal = [3][3]float64{
	{-0.0548755604162154, -0.8734370902348850, -0.4838350155487132},
	{+0.4941094278755837, -0.4448296299600112, +0.7469822444972189},
	{-0.8676661490190047, -0.1980763734312015, +0.4559837761750669},
}

// ICRSToGalactic converts equatorial coordinates (degrees) to Galactic
// longitude and latitude (degrees, l in [0, 360)).
func ICRSToGalactic(raDeg, decDeg float64) (lDeg, bDeg float64) {
	ra := raDeg * math.Pi / 180
	dec := decDeg * math.Pi / 180

	v := [3]float64{
		math.Cos(dec) * math.Cos(ra),
		math.Cos(dec) * math.Sin(ra),
		math.Sin(dec),
	}

	var g [3]float64
	for i := range icrsToGal {
		for j := range v {
			g[i] += icrsToGal[i][j] * v[j]
		}
	}

	lDeg = math.Atan2(g[1], g[0]) * 180 / math.Pi
	if lDeg < 0 {
		lDeg += 360
	}
	bDeg = math.Asin(math.Max(-1, math.Min(1, g[2]))) * 180 / math.Pi
	return lDeg, bDeg
}
