package skeleton

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
)

func TestFindPeak(t *testing.T) {
	nan := math32.NaN()

	tests := []struct {
		name     string
		plane    []float32
		width    int
		expected Peak
	}{
		{
			name:     "single pixel",
			plane:    []float32{0.4},
			width:    1,
			expected: Peak{Row: 0, Col: 0, Score: 0.4},
		},
		{
			name:     "last pixel",
			plane:    []float32{0.1, 0.2, 0.3, 0.4},
			width:    2,
			expected: Peak{Row: 1, Col: 1, Score: 0.4},
		},
		{
			name:     "tie resolves to first in row-major order",
			plane:    []float32{0.1, 0.5, 0.5, 0.5},
			width:    2,
			expected: Peak{Row: 0, Col: 1, Score: 0.5},
		},
		{
			name:     "tie across rows",
			plane:    []float32{0.0, 0.0, 0.8, 0.8, 0.0, 0.0},
			width:    3,
			expected: Peak{Row: 0, Col: 2, Score: 0.8},
		},
		{
			name:     "negative scores",
			plane:    []float32{-3, -1, -2},
			width:    3,
			expected: Peak{Row: 0, Col: 1, Score: -1},
		},
		{
			name:     "nan never wins",
			plane:    []float32{nan, 0.2, nan},
			width:    3,
			expected: Peak{Row: 0, Col: 1, Score: 0.2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FindPeak(tt.plane, tt.width))
		})
	}
}

func TestFindPeakAllNaN(t *testing.T) {
	nan := math32.NaN()
	p := FindPeak([]float32{nan, nan}, 2)
	assert.Equal(t, -1, p.Row)
	assert.Equal(t, -1, p.Col)
}

func TestScale(t *testing.T) {
	s := NewScale(Size{Width: 640, Height: 480}, 60, 80)
	assert.Equal(t, Scale{H: 8, W: 8}, s)
	assert.False(t, s.Identity())
	assert.Equal(t, Keypoint{X: 24, Y: 16}, s.Apply(Peak{Row: 2, Col: 3}))

	id := NewScale(Size{Width: 80, Height: 60}, 60, 80)
	assert.True(t, id.Identity())
	assert.Equal(t, Keypoint{X: 3, Y: 2}, id.Apply(Peak{Row: 2, Col: 3}))
}
