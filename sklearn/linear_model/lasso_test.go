package linear_model

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/lassoridge/core/model"
	"github.com/YuminosukeSato/lassoridge/pkg/errors"
)

func TestLasso_SingleFeatureClosedForm(t *testing.T) {
	X := mat.NewDense(3, 1, []float64{1, 2, 3})
	y := mat.NewDense(3, 1, []float64{1, 2, 3})

	// z = 2/3, ρ = 2/3 → β = (2/3 − 0.25) / (2/3) = 0.625
	lasso := NewLasso(WithAlpha(0.5))
	require.NoError(t, lasso.Fit(X, y))

	assert.InDelta(t, 0.625, lasso.Coef()[0], 1e-12)
	assert.InDelta(t, 0.75, lasso.Intercept(), 1e-12)
	assert.Equal(t, 2, lasso.NIter())

	alphaMax, err := LassoAlphaMax(X, y, true)
	require.NoError(t, err)
	assert.InDelta(t, 4.0/3.0, alphaMax, 1e-12)
}

func TestLasso_ZeroAlphaMatchesOLS(t *testing.T) {
	X, y := makeRegression(200, []float64{1.5, -2, 0.5}, 3, 0.3, 1)

	var warnings []error
	errors.SetWarningHandler(func(w error) { warnings = append(warnings, w) })
	defer errors.SetWarningHandler(func(error) {})

	lasso := NewLasso(WithAlpha(0), WithTol(1e-10), WithMaxIter(10000))
	require.NoError(t, lasso.Fit(X, y))

	ols := NewLinearRegression()
	require.NoError(t, ols.Fit(X, y))

	if diff := cmp.Diff(ols.Coef(), lasso.Coef(), cmpopts.EquateApprox(0, 1e-6)); diff != "" {
		t.Errorf("coefficients mismatch (-ols +lasso):\n%s", diff)
	}
	assert.InDelta(t, ols.Intercept(), lasso.Intercept(), 1e-6)
	for _, c := range lasso.Coef() {
		assert.NotZero(t, c)
	}

	require.Len(t, warnings, 1)
	var fw *errors.FitWarning
	require.True(t, errors.As(warnings[0], &fw))
	assert.Equal(t, "Lasso", fw.Model)
}

func TestLasso_AboveAlphaMaxAllZero(t *testing.T) {
	X, y := makeRegression(120, []float64{2, -1, 0.5, 0}, -1, 0.5, 2)

	alphaMax, err := LassoAlphaMax(X, y, true)
	require.NoError(t, err)
	require.Greater(t, alphaMax, 0.0)

	for _, factor := range []float64{1.0, 1.01, 10} {
		lasso := NewLasso(WithAlpha(alphaMax * factor))
		require.NoError(t, lasso.Fit(X, y))
		for j, c := range lasso.Coef() {
			assert.Equalf(t, 0.0, c, "factor %g coef %d", factor, j)
		}
		assert.InDelta(t, mat.Sum(y)/120, lasso.Intercept(), 1e-12)
		assert.Equal(t, 1, lasso.NIter())
	}

	// 少しでも alphaMax を下回れば非ゼロの係数が現れる
	lasso := NewLasso(WithAlpha(alphaMax * 0.9))
	require.NoError(t, lasso.Fit(X, y))
	assert.Greater(t, L1Norm(lasso.Coef()), 0.0)
}

func TestLasso_L1NormMonotoneInAlpha(t *testing.T) {
	X, y := makeRegression(150, []float64{3, -2, 1, 0.5, 0, 0}, 0, 1, 3)
	alphaMax, err := LassoAlphaMax(X, y, true)
	require.NoError(t, err)

	prev := -1.0
	for k := 0; k <= 20; k++ {
		alpha := alphaMax * float64(k) / 20
		lasso := NewLasso(WithAlpha(alpha), WithTol(1e-10), WithMaxIter(10000))
		require.NoError(t, lasso.Fit(X, y))

		norm := L1Norm(lasso.Coef())
		if prev >= 0 {
			assert.LessOrEqualf(t, norm, prev+1e-8, "alpha=%g", alpha)
		}
		prev = norm
	}
	assert.InDelta(t, 0.0, prev, 1e-12)
}

func TestLasso_Deterministic(t *testing.T) {
	X, y := makeRegression(100, []float64{1, 2, -3, 0}, 0.5, 0.5, 4)

	a := NewLasso(WithAlpha(0.2))
	b := NewLasso(WithAlpha(0.2))
	require.NoError(t, a.Fit(X, y))
	require.NoError(t, b.Fit(X, y))
	assert.Equal(t, a.Coef(), b.Coef())
	assert.Equal(t, a.Intercept(), b.Intercept())

	// 同じインスタンスで再学習しても同じ結果
	first := a.Coef()
	require.NoError(t, a.Fit(X, y))
	assert.Equal(t, first, a.Coef())
}

func TestLasso_NoiseFeatureZeroed(t *testing.T) {
	X, y := makeRegression(200, []float64{3, 0}, 0, 0.1, 5)

	lasso := NewLasso(WithAlpha(0.5), WithFeatureNames([]string{"signal", "noise"}))
	require.NoError(t, lasso.Fit(X, y))

	coef := lasso.Coef()
	assert.NotZero(t, coef[0])
	assert.InDelta(t, 2.75, coef[0], 0.3)
	assert.Equal(t, 0.0, coef[1])
}

func TestLasso_ZeroVarianceColumn(t *testing.T) {
	X := mat.NewDense(4, 2, []float64{
		1, 7,
		2, 7,
		3, 7,
		4, 7,
	})
	y := mat.NewDense(4, 1, []float64{1, 2, 3, 4})

	lasso := NewLasso(WithAlpha(0.1), WithFeatureNames([]string{"x", "const"}))
	err := lasso.Fit(X, y)
	require.Error(t, err)

	var zv *errors.ZeroVarianceError
	require.True(t, errors.As(err, &zv))
	assert.Equal(t, 1, zv.Column)
	assert.Equal(t, "const", zv.Name)
	assert.False(t, lasso.IsFitted())
}

func TestLasso_NonConvergenceIsReported(t *testing.T) {
	X, y := makeRegression(50, []float64{1, 1, 1}, 0, 0.1, 6)

	lasso := NewLasso(WithAlpha(0.01), WithMaxIter(1), WithTol(1e-12))
	err := lasso.Fit(X, y)
	require.Error(t, err)

	var ce *errors.ConvergenceError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "Lasso", ce.Algorithm)
	assert.Equal(t, 1, ce.Iterations)
	assert.Greater(t, ce.MaxDelta, ce.Tol)

	assert.False(t, lasso.IsFitted())
	_, err = lasso.Predict(X)
	var nf *errors.NotFittedError
	assert.True(t, errors.As(err, &nf))
}

func TestLasso_RandomSelection(t *testing.T) {
	X, y := makeRegression(120, []float64{2, -1, 0.5, 0, 1}, 0, 0.5, 7)

	fit := func(opts ...LassoOption) []float64 {
		lasso := NewLasso(append([]LassoOption{WithAlpha(0.1), WithTol(1e-10), WithMaxIter(10000)}, opts...)...)
		require.NoError(t, lasso.Fit(X, y))
		return lasso.Coef()
	}

	r1 := fit(WithSelection(SelectionRandom), WithRandomState(42))
	r2 := fit(WithSelection(SelectionRandom), WithRandomState(42))
	assert.Equal(t, r1, r2)

	// 最適解は一意なので順序によらず同じ解に収束する
	cyclic := fit()
	if diff := cmp.Diff(cyclic, r1, cmpopts.EquateApprox(0, 1e-6)); diff != "" {
		t.Errorf("random selection converged elsewhere (-cyclic +random):\n%s", diff)
	}
}

func TestLasso_Positive(t *testing.T) {
	X, y := makeRegression(100, []float64{2, -3}, 0, 0.1, 8)

	lasso := NewLasso(WithAlpha(0.01), WithPositive(true))
	require.NoError(t, lasso.Fit(X, y))
	coef := lasso.Coef()
	assert.Greater(t, coef[0], 0.0)
	assert.Equal(t, 0.0, coef[1])
}

func TestLassoPath_MatchesIndependentFits(t *testing.T) {
	X, y := makeRegression(100, []float64{1, -2, 0.5}, 1, 0.5, 9)
	alphas := []float64{1.0, 0.3, 0.1, 0.01}

	path, err := LassoPath(X, y, alphas, WithTol(1e-10), WithMaxIter(10000))
	require.NoError(t, err)
	require.Len(t, path, len(alphas))

	for k, alpha := range alphas {
		lasso := NewLasso(WithAlpha(alpha), WithTol(1e-10), WithMaxIter(10000))
		require.NoError(t, lasso.Fit(X, y))
		if diff := cmp.Diff(lasso.Coef(), path[k], cmpopts.EquateApprox(0, 1e-7)); diff != "" {
			t.Errorf("alpha=%g (-cold +warm):\n%s", alpha, diff)
		}
	}
}

func TestLasso_InvalidInput(t *testing.T) {
	X := mat.NewDense(3, 1, []float64{1, 2, 3})
	y := mat.NewDense(3, 1, []float64{1, 2, 3})

	tests := []struct {
		name  string
		model *Lasso
		X, y  mat.Matrix
		check func(t *testing.T, err error)
	}{
		{
			name: "negative alpha", model: NewLasso(WithAlpha(-1)), X: X, y: y,
			check: func(t *testing.T, err error) {
				var ve *errors.ValidationError
				assert.True(t, errors.As(err, &ve))
				assert.Equal(t, "alpha", ve.ParamName)
			},
		},
		{
			name: "unknown selection", model: NewLasso(WithSelection("shuffled")), X: X, y: y,
			check: func(t *testing.T, err error) {
				var ve *errors.ValidationError
				assert.True(t, errors.As(err, &ve))
			},
		},
		{
			name: "row mismatch", model: NewLasso(), X: X, y: mat.NewDense(2, 1, []float64{1, 2}),
			check: func(t *testing.T, err error) {
				var de *errors.DimensionError
				assert.True(t, errors.As(err, &de))
			},
		},
		{
			name: "nan in target", model: NewLasso(), X: X, y: mat.NewDense(3, 1, []float64{1, nan(), 3}),
			check: func(t *testing.T, err error) {
				var ni *errors.NumericalInstabilityError
				assert.True(t, errors.As(err, &ni))
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.model.Fit(tt.X, tt.y)
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestLasso_WeightsRoundTrip(t *testing.T) {
	X, y := makeRegression(80, []float64{1, 0, -1}, 2, 0.2, 10)
	lasso := NewLasso(WithAlpha(0.05), WithFeatureNames([]string{"a", "b", "c"}))
	require.NoError(t, lasso.Fit(X, y))

	var buf bytes.Buffer
	require.NoError(t, model.SaveWeightsToWriter(lasso, &buf))
	assert.Contains(t, buf.String(), `"model_type": "Lasso"`)

	restored := NewLasso()
	require.NoError(t, model.LoadWeightsFromReader(restored, &buf))
	assert.Equal(t, lasso.Coef(), restored.Coef())
	assert.Equal(t, lasso.Intercept(), restored.Intercept())
	assert.Equal(t, lasso.GetParams(), restored.GetParams())

	want, err := lasso.Predict(X)
	require.NoError(t, err)
	got, err := restored.Predict(X)
	require.NoError(t, err)
	assert.True(t, mat.EqualApprox(want, got, 1e-12))

	weights, err := lasso.ExportWeights()
	require.NoError(t, err)
	weights.Coefficients[0] += 1
	assert.Error(t, NewLasso().ImportWeights(weights), "tampered coefficients must fail the checksum")
	assert.Error(t, NewRidge().ImportWeights(weights))
}

func TestLasso_CloneAndString(t *testing.T) {
	lasso := NewLasso(WithAlpha(0.3), WithSelection(SelectionRandom), WithRandomState(7))
	clone := lasso.Clone()
	assert.Equal(t, lasso.GetParams(), clone.GetParams())
	assert.False(t, clone.IsFitted())
	assert.Contains(t, lasso.String(), "alpha=0.3")

	require.NoError(t, clone.SetParams(map[string]interface{}{"alpha": 2, "max_iter": 50.0}))
	assert.Equal(t, 2.0, clone.Alpha())
	assert.Equal(t, 50, clone.GetParams()["max_iter"])
	assert.Error(t, clone.SetParams(map[string]interface{}{"tol": -1.0}))
}
