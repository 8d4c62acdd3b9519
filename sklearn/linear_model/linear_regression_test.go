package linear_model

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/lassoridge/pkg/errors"
)

func TestLinearRegression_RecoversCoefficients(t *testing.T) {
	tests := []struct {
		name         string
		fitIntercept bool
		intercept    float64
	}{
		{"with intercept", true, 5},
		{"without intercept", false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			coef := []float64{2, -1, 0.5}
			X, y := makeRegression(50, coef, tt.intercept, 0, 14)

			lr := NewLinearRegression(WithLRFitIntercept(tt.fitIntercept))
			require.NoError(t, lr.Fit(X, y))

			if diff := cmp.Diff(coef, lr.Coef(), cmpopts.EquateApprox(0, 1e-10)); diff != "" {
				t.Errorf("coef mismatch (-want +got):\n%s", diff)
			}
			assert.InDelta(t, tt.intercept, lr.Intercept(), 1e-10)

			score, err := lr.Score(X, y)
			require.NoError(t, err)
			assert.InDelta(t, 1.0, score, 1e-12)
		})
	}
}

func TestLinearRegression_Errors(t *testing.T) {
	lr := NewLinearRegression()

	_, err := lr.Predict(mat.NewDense(1, 1, []float64{1}))
	var nf *errors.NotFittedError
	assert.True(t, errors.As(err, &nf))

	err = lr.Fit(mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6}), mat.NewDense(2, 1, []float64{1, 2}))
	var ve *errors.ValueError
	assert.True(t, errors.As(err, &ve))

	X, y := makeRegression(20, []float64{1, 1}, 0, 0.1, 15)
	require.NoError(t, lr.Fit(X, y))
	_, err = lr.Predict(mat.NewDense(1, 3, nil))
	var de *errors.DimensionError
	assert.True(t, errors.As(err, &de))
}

func TestLinearRegression_WeightsRoundTrip(t *testing.T) {
	X, y := makeRegression(30, []float64{1, -1}, 1, 0.1, 16)
	lr := NewLinearRegression()
	require.NoError(t, lr.Fit(X, y))

	weights, err := lr.ExportWeights()
	require.NoError(t, err)
	assert.Equal(t, "LinearRegression", weights.ModelType)

	restored := lr.Clone()
	require.NoError(t, restored.ImportWeights(weights))
	assert.Equal(t, lr.Coef(), restored.Coef())
	assert.Equal(t, lr.Intercept(), restored.Intercept())
}
