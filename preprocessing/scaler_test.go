package preprocessing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/lassoridge/pkg/errors"
)

func TestStandardScaler_FitTransform(t *testing.T) {
	X := mat.NewDense(4, 2, []float64{
		1, 10,
		2, 20,
		3, 30,
		4, 40,
	})

	scaler := NewStandardScaler()
	out, err := scaler.FitTransform(X)
	require.NoError(t, err)

	assert.InDeltaSlice(t, []float64{2.5, 25}, scaler.Mean, 1e-12)
	assert.InDelta(t, math.Sqrt(1.25), scaler.Scale[0], 1e-12)

	r, c := out.Dims()
	for j := 0; j < c; j++ {
		mean, sq := 0.0, 0.0
		for i := 0; i < r; i++ {
			mean += out.At(i, j)
			sq += out.At(i, j) * out.At(i, j)
		}
		assert.InDelta(t, 0.0, mean/float64(r), 1e-12)
		assert.InDelta(t, 1.0, sq/float64(r), 1e-12)
	}
}

func TestStandardScaler_InverseTransform(t *testing.T) {
	X := mat.NewDense(3, 2, []float64{1, -1, 5, 0, 9, 7})
	scaler := NewStandardScaler()
	scaled, err := scaler.FitTransform(X)
	require.NoError(t, err)

	back, err := scaler.InverseTransform(scaled)
	require.NoError(t, err)
	assert.True(t, mat.EqualApprox(X, back, 1e-12))
}

func TestStandardScaler_ZeroVariance(t *testing.T) {
	X := mat.NewDense(3, 2, []float64{1, 5, 2, 5, 3, 5})

	t.Run("lenient keeps scale one", func(t *testing.T) {
		scaler := NewStandardScaler()
		out, err := scaler.FitTransform(X)
		require.NoError(t, err)
		assert.Equal(t, 1.0, scaler.Scale[1])
		assert.Equal(t, 0.0, out.At(0, 1))
	})

	t.Run("strict returns ZeroVarianceError", func(t *testing.T) {
		scaler := NewStandardScaler(WithStrict())
		err := scaler.Fit(X)
		require.Error(t, err)
		var zv *errors.ZeroVarianceError
		require.True(t, errors.As(err, &zv))
		assert.Equal(t, 1, zv.Column)
		assert.False(t, scaler.IsFitted())
	})
}

func TestStandardScaler_Errors(t *testing.T) {
	scaler := NewStandardScaler()

	_, err := scaler.Transform(mat.NewDense(1, 1, []float64{1}))
	var nf *errors.NotFittedError
	assert.True(t, errors.As(err, &nf))

	require.NoError(t, scaler.Fit(mat.NewDense(2, 2, []float64{1, 2, 3, 4})))
	_, err = scaler.Transform(mat.NewDense(1, 3, nil))
	var dim *errors.DimensionError
	assert.True(t, errors.As(err, &dim))

	err = scaler.Fit(mat.NewDense(2, 1, []float64{1, math.NaN()}))
	var ni *errors.NumericalInstabilityError
	assert.True(t, errors.As(err, &ni))
}

func TestStandardScaler_Options(t *testing.T) {
	X := mat.NewDense(2, 1, []float64{2, 4})

	scaler := NewStandardScaler(WithoutMean(), WithoutStd())
	out, err := scaler.FitTransform(X)
	require.NoError(t, err)
	assert.True(t, mat.Equal(X, out))
	assert.Equal(t, false, scaler.GetParams()["with_mean"])
	assert.Contains(t, scaler.String(), "n_features=1")
}
