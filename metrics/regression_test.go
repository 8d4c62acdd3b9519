package metrics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/lassoridge/pkg/errors"
)

func TestVectorMetrics(t *testing.T) {
	type metricFunc func(yTrue, yPred mat.Vector) (float64, error)

	tests := []struct {
		name      string
		metric    metricFunc
		yTrue     []float64
		yPred     []float64
		want      float64
		tolerance float64
		wantErr   bool
	}{
		{"mse perfect", MSE, []float64{1, 2, 3, 4, 5}, []float64{1, 2, 3, 4, 5}, 0, 1e-12, false},
		{"mse simple", MSE, []float64{1, 2, 3, 4}, []float64{1.5, 2.5, 2.5, 3.5}, 0.25, 1e-12, false},
		{"mse larger errors", MSE, []float64{10, 20, 30}, []float64{12, 18, 33}, 17.0 / 3.0, 1e-12, false},
		{"rmse", RMSE, []float64{10, 20, 30}, []float64{12, 18, 33}, math.Sqrt(17.0 / 3.0), 1e-12, false},
		{"mae", MAE, []float64{1, 2, 3, 4}, []float64{2, 2, 1, 4}, 0.75, 1e-12, false},
		{"r2 perfect", R2Score, []float64{1, 2, 3, 4, 5}, []float64{1, 2, 3, 4, 5}, 1, 1e-12, false},
		{"r2 mean baseline", R2Score, []float64{1, 2, 3, 4}, []float64{2.5, 2.5, 2.5, 2.5}, 0, 1e-12, false},
		{"r2 worse than mean", R2Score, []float64{1, 2, 3, 4}, []float64{4, 3, 2, 1}, -3, 1e-12, false},
		{"r2 constant target", R2Score, []float64{3, 3, 3}, []float64{2, 3, 4}, 0, 0, true},
		{"mape", MAPE, []float64{100, 200, 0}, []float64{110, 180, 5}, 10, 1e-12, false},
		{"mape all zero", MAPE, []float64{0, 0}, []float64{1, 1}, 0, 0, true},
		{"explained variance with bias", ExplainedVarianceScore, []float64{1, 2, 3}, []float64{2, 3, 4}, 1, 1e-12, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			yTrue := mat.NewVecDense(len(tt.yTrue), tt.yTrue)
			yPred := mat.NewVecDense(len(tt.yPred), tt.yPred)
			got, err := tt.metric(yTrue, yPred)

			if (err != nil) != tt.wantErr {
				t.Errorf("error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && math.Abs(got-tt.want) > tt.tolerance {
				t.Errorf("got %v, want %v (tolerance: %v)", got, tt.want, tt.tolerance)
			}
		})
	}
}

func TestVectorMetrics_InvalidInput(t *testing.T) {
	_, err := MSE(&mat.VecDense{}, &mat.VecDense{})
	var ve *errors.ValueError
	assert.True(t, errors.As(err, &ve))

	_, err = R2Score(mat.NewVecDense(3, []float64{1, 2, 3}), mat.NewVecDense(2, []float64{1, 2}))
	var de *errors.DimensionError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, 3, de.Expected)
	assert.Equal(t, 2, de.Got)
}

func TestMatrixMetrics(t *testing.T) {
	yTrue := mat.NewDense(4, 1, []float64{1, 2, 3, 4})
	yPred := mat.NewDense(4, 1, []float64{1.5, 2.5, 2.5, 3.5})

	mse, err := MSEMatrix(yTrue, yPred)
	require.NoError(t, err)
	assert.InDelta(t, 0.25, mse, 1e-12)

	r2, err := R2ScoreMatrix(yTrue, yPred)
	require.NoError(t, err)
	assert.InDelta(t, 0.8, r2, 1e-12)

	// VecDense も n×1 行列として受け付ける
	r2, err = R2ScoreMatrix(mat.NewVecDense(4, []float64{1, 2, 3, 4}), yPred)
	require.NoError(t, err)
	assert.InDelta(t, 0.8, r2, 1e-12)

	_, err = MSEMatrix(mat.NewDense(2, 2, []float64{1, 2, 3, 4}), mat.NewDense(2, 2, []float64{1, 2, 3, 4}))
	assert.Error(t, err)
}

func BenchmarkMSE(b *testing.B) {
	size := 10000
	yTrue := mat.NewVecDense(size, nil)
	yPred := mat.NewVecDense(size, nil)
	for i := 0; i < size; i++ {
		yTrue.SetVec(i, float64(i))
		yPred.SetVec(i, float64(i)+0.1*float64(i%10))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = MSE(yTrue, yPred)
	}
}
