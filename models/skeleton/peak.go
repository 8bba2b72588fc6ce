package skeleton

import "github.com/chewxy/math32"

// Peak is the highest scoring pixel of a channel plane.
type Peak struct {
	Row   int
	Col   int
	Score float32
}

// FindPeak scans a row-major plane and returns its maximum. Ties resolve to
// the first pixel in scan order (lowest row, then lowest column). The order is
// an artifact of the scan and carries no anatomical meaning. NaN scores never
// win.
//
// The plane must hold at least one value and width must be positive.
//
// Arguments:
//   - plane: The channel scores.
//   - width: The number of columns per row.
//
// Returns:
//   - Peak: The row, column and score of the maximum.
func FindPeak(plane []float32, width int) Peak {
	peak := Peak{Row: -1, Col: -1, Score: -math32.MaxFloat32}
	for i, v := range plane {
		if v > peak.Score {
			peak.Score = v
			peak.Row = i / width
			peak.Col = i % width
		}
	}
	return peak
}
