package preprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/lassoridge/core/parallel"
	"github.com/YuminosukeSato/lassoridge/pkg/errors"
)

func TestPolynomialFeatures_Degree2(t *testing.T) {
	tests := []struct {
		name      string
		opts      []PolynomialOption
		wantNames []string
		wantRow   []float64
	}{
		{
			name:      "default",
			wantNames: []string{"1", "a", "b", "a^2", "a*b", "b^2"},
			wantRow:   []float64{1, 2, 3, 4, 6, 9},
		},
		{
			name:      "without bias",
			opts:      []PolynomialOption{WithoutBias()},
			wantNames: []string{"a", "b", "a^2", "a*b", "b^2"},
			wantRow:   []float64{2, 3, 4, 6, 9},
		},
		{
			name:      "interaction only",
			opts:      []PolynomialOption{WithInteractionOnly(), WithoutBias()},
			wantNames: []string{"a", "b", "a*b"},
			wantRow:   []float64{2, 3, 6},
		},
	}

	X := mat.NewDense(1, 2, []float64{2, 3})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			poly := NewPolynomialFeatures(2, tt.opts...)
			out, err := poly.FitTransform(X)
			require.NoError(t, err)

			names, err := poly.FeatureNames([]string{"a", "b"})
			require.NoError(t, err)
			assert.Equal(t, tt.wantNames, names)
			assert.Equal(t, tt.wantRow, mat.Row(nil, 0, out))
			assert.Equal(t, len(tt.wantNames), poly.NOutputFeatures())
		})
	}
}

func TestPolynomialFeatures_Degree3Names(t *testing.T) {
	poly := NewPolynomialFeatures(3, WithoutBias())
	require.NoError(t, poly.Fit(mat.NewDense(1, 2, []float64{1, 1})))

	names, err := poly.FeatureNames(nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"x0", "x1", "x0^2", "x0*x1", "x1^2", "x0^3", "x0^2*x1", "x0*x1^2", "x1^3"}, names)
}

func TestPolynomialFeatures_LargeInputMatchesSequential(t *testing.T) {
	n := parallel.DefaultThreshold + 100
	data := make([]float64, n*3)
	for i := range data {
		data[i] = float64(i%7) - 3
	}
	X := mat.NewDense(n, 3, data)

	poly := NewPolynomialFeatures(2)
	out, err := poly.FitTransform(X)
	require.NoError(t, err)

	for _, i := range []int{0, n / 2, n - 1} {
		a, b, c := X.At(i, 0), X.At(i, 1), X.At(i, 2)
		want := []float64{1, a, b, c, a * a, a * b, a * c, b * b, b * c, c * c}
		assert.Equal(t, want, mat.Row(nil, i, out), "row %d", i)
	}
}

func TestPolynomialFeatures_Errors(t *testing.T) {
	poly := NewPolynomialFeatures(0)
	var ve *errors.ValidationError
	assert.True(t, errors.As(poly.Fit(mat.NewDense(1, 1, nil)), &ve))

	poly = NewPolynomialFeatures(2)
	_, err := poly.Transform(mat.NewDense(1, 1, nil))
	var nf *errors.NotFittedError
	assert.True(t, errors.As(err, &nf))

	require.NoError(t, poly.Fit(mat.NewDense(1, 2, nil)))
	_, err = poly.FeatureNames([]string{"only-one"})
	var dim *errors.DimensionError
	assert.True(t, errors.As(err, &dim))
}
