package model_selection

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/lassoridge/pkg/errors"
)

func TestKFold_Partition(t *testing.T) {
	tests := []struct {
		name      string
		n, k      int
		shuffle   bool
		wantSizes []int
	}{
		{"even", 10, 5, false, []int{2, 2, 2, 2, 2}},
		{"remainder goes to first folds", 11, 3, false, []int{4, 4, 3}},
		{"shuffled", 23, 4, true, []int{6, 6, 6, 5}},
		{"leave one out", 4, 4, false, []int{1, 1, 1, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			folds, err := NewKFold(tt.k, tt.shuffle, 42).Split(tt.n)
			require.NoError(t, err)
			require.Len(t, folds, tt.k)

			seen := make([]int, tt.n)
			for i, fold := range folds {
				assert.Len(t, fold.TestIndices, tt.wantSizes[i])
				assert.Len(t, fold.TrainIndices, tt.n-tt.wantSizes[i])
				assert.True(t, sort.IntsAreSorted(fold.TrainIndices))

				all := append(append([]int(nil), fold.TrainIndices...), fold.TestIndices...)
				sort.Ints(all)
				for idx, v := range all {
					assert.Equal(t, idx, v, "train and test must partition the samples")
				}
				for _, idx := range fold.TestIndices {
					seen[idx]++
				}
			}
			for idx, c := range seen {
				assert.Equalf(t, 1, c, "sample %d", idx)
			}
		})
	}
}

func TestKFold_ShuffleDeterministic(t *testing.T) {
	a, err := NewKFold(3, true, 7).Split(30)
	require.NoError(t, err)
	b, err := NewKFold(3, true, 7).Split(30)
	require.NoError(t, err)
	c, err := NewKFold(3, false, 7).Split(30)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a[0].TestIndices, c[0].TestIndices)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, c[0].TestIndices)
}

func TestKFold_InvalidSplits(t *testing.T) {
	_, err := NewKFold(1, false, 0).Split(10)
	var ve *errors.ValidationError
	assert.True(t, errors.As(err, &ve))

	_, err = NewKFold(11, false, 0).Split(10)
	assert.True(t, errors.As(err, &ve))
}

func TestTrainTestSplit(t *testing.T) {
	X := mat.NewDense(10, 2, nil)
	y := mat.NewDense(10, 1, nil)
	for i := 0; i < 10; i++ {
		X.Set(i, 0, float64(i))
		X.Set(i, 1, float64(-i))
		y.Set(i, 0, float64(i))
	}

	split, err := TrainTestSplit(X, y, 0.25, 3)
	require.NoError(t, err)
	assert.Len(t, split.TestIndices, 3)
	assert.Len(t, split.TrainIndices, 7)

	rows, _ := split.XTest.Dims()
	assert.Equal(t, 3, rows)
	for i, idx := range split.TestIndices {
		assert.Equal(t, float64(idx), split.XTest.At(i, 0))
		assert.Equal(t, float64(idx), split.YTest.At(i, 0))
	}

	again, err := TrainTestSplit(X, y, 0.25, 3)
	require.NoError(t, err)
	assert.Equal(t, split.TestIndices, again.TestIndices)

	_, err = TrainTestSplit(X, y, 1.5, 3)
	assert.Error(t, err)
	_, err = TrainTestSplit(X, mat.NewDense(9, 1, nil), 0.25, 3)
	assert.Error(t, err)
}

func TestGrids(t *testing.T) {
	grid, err := LogSpace(0.01, 100, 5)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.01, 0.1, 1, 10, 100}, grid, 1e-12)

	lin, err := LinSpace(0, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0.5, 1}, lin)

	assert.Equal(t, []float64{0, 1, 2}, WithZero([]float64{1, 2}))
	assert.Equal(t, []float64{0, 1}, WithZero([]float64{0, 1}))

	_, err = LogSpace(0, 1, 5)
	assert.Error(t, err)
	_, err = LinSpace(0, 1, 1)
	assert.Error(t, err)

	assert.Error(t, validateGrid(nil))
	assert.Error(t, validateGrid([]float64{1, -0.5}))
	assert.NoError(t, validateGrid([]float64{0, 1}))
}
