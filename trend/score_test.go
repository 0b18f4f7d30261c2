package trend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewScores(t *testing.T) {
	predicted := []float64{10.0, 20.0, 30.0}
	actual := []float64{11.0, 19.0, 30.0}

	s, err := NewScores(predicted, actual)
	require.NoError(t, err)

	assert.InDelta(t, 2.0/3.0, s.MSE, 1e-9)
	assert.InDelta(t, (1.0/11.0+1.0/19.0)/3.0, s.MAPE, 1e-9)
	assert.Greater(t, s.R2, 0.9)
}

func TestScoresLenMismatch(t *testing.T) {
	_, err := MSE([]float64{1.0}, []float64{1.0, 2.0})
	assert.ErrorIs(t, err, ErrResLenMismatch)

	_, err = MAPE([]float64{1.0}, []float64{1.0, 2.0})
	assert.ErrorIs(t, err, ErrResLenMismatch)
}

func TestPerfectFitScores(t *testing.T) {
	y := []float64{4.7, 6.28, 7.87, 9.45}
	s, err := NewScores(y, y)
	require.NoError(t, err)
	assert.Zero(t, s.MSE)
	assert.Zero(t, s.MAPE)
	assert.InDelta(t, 1.0, s.R2, 1e-9)
}
