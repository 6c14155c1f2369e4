package parallel

// Band is the half-open row range [Y0, Y1) of an image.
type Band struct {
	Y0, Y1 int
}

// Height returns the number of rows in the band.
func (b Band) Height() int { return b.Y1 - b.Y0 }

// Overlaps reports whether rows [y0, y1) intersect the band.
func (b Band) Overlaps(y0, y1 int) bool { return y0 < b.Y1 && y1 > b.Y0 }

// SplitRows divides height rows into at most n bands of near-equal height,
// top to bottom. Bands are never empty; fewer than n are returned when
// there are fewer rows than bands.
func SplitRows(height, n int) []Band {
	if height <= 0 {
		return nil
	}
	n = max(1, min(n, height))
	bands := make([]Band, n)
	base, extra := height/n, height%n
	y := 0
	for i := range bands {
		h := base
		if i < extra {
			h++
		}
		bands[i] = Band{Y0: y, Y1: y + h}
		y += h
	}
	return bands
}
