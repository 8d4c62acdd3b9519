// Package linear_model provides scikit-learn style linear regressors:
// Lasso (coordinate descent), Ridge (closed form) and LinearRegression (OLS).
package linear_model

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/lassoridge/core/model"
	"github.com/YuminosukeSato/lassoridge/metrics"
	"github.com/YuminosukeSato/lassoridge/pkg/errors"
)

// zeroVarianceTol 以下の列分散はゼロ分散とみなす
const zeroVarianceTol = 1e-12

// modelVersion はExportWeightsに書き込むフォーマットのバージョン
const modelVersion = "1.0.0"

// validateXy は X (n×p) と y (n×1) の形状と有限性を検証する
func validateXy(op string, X, y mat.Matrix) (n, p int, err error) {
	n, p = X.Dims()
	yRows, yCols := y.Dims()
	if n == 0 || p == 0 {
		return 0, 0, errors.NewModelError(op, "empty data", errors.ErrEmptyData)
	}
	if n != yRows {
		return 0, 0, errors.NewDimensionError(op, n, yRows, 0)
	}
	if yCols != 1 {
		return 0, 0, errors.NewDimensionError(op, 1, yCols, 1)
	}
	if err := errors.CheckMatrix(op, X, n, p, 0); err != nil {
		return 0, 0, err
	}
	if err := errors.CheckMatrix(op, y, n, 1, 0); err != nil {
		return 0, 0, err
	}
	return n, p, nil
}

// centered は中心化済みの設計行列（列優先）と目的変数
type centered struct {
	cols  [][]float64 // cols[j][i] = X[i][j] - xMean[j]
	y     []float64
	xMean []float64
	yMean float64
	sqSum []float64 // 各列の (1/n)Σx²
}

// centerData は fitIntercept のとき X と y を列平均で中心化する
// 返り値は入力のコピーで、呼び出し側の行列は変更しない
func centerData(X, y mat.Matrix, n, p int, fitIntercept bool) *centered {
	c := &centered{
		cols:  make([][]float64, p),
		y:     mat.Col(nil, 0, y),
		xMean: make([]float64, p),
		sqSum: make([]float64, p),
	}
	for j := 0; j < p; j++ {
		c.cols[j] = mat.Col(nil, j, X)
	}
	if fitIntercept {
		for j := 0; j < p; j++ {
			c.xMean[j] = mean(c.cols[j])
			for i := range c.cols[j] {
				c.cols[j][i] -= c.xMean[j]
			}
		}
		c.yMean = mean(c.y)
		for i := range c.y {
			c.y[i] -= c.yMean
		}
	}
	for j := 0; j < p; j++ {
		s := 0.0
		for _, v := range c.cols[j] {
			s += v * v
		}
		c.sqSum[j] = s / float64(n)
	}
	return c
}

// checkVariance は分散ゼロの列を ZeroVarianceError として報告する
func (c *centered) checkVariance(op string, names []string) error {
	for j, z := range c.sqSum {
		if z < zeroVarianceTol {
			if j < len(names) {
				return errors.NewZeroVarianceErrorNamed(op, j, names[j])
			}
			return errors.NewZeroVarianceError(op, j)
		}
	}
	return nil
}

// intercept は中心化を戻して切片を計算する
func (c *centered) intercept(coef []float64) float64 {
	b := c.yMean
	for j, m := range c.xMean {
		b -= m * coef[j]
	}
	return b
}

func mean(x []float64) float64 {
	s := 0.0
	for _, v := range x {
		s += v
	}
	return s / float64(len(x))
}

// predictLinear は X·coef + intercept を n×1 行列で返す
func predictLinear(op string, X mat.Matrix, coef []float64, intercept float64) (mat.Matrix, error) {
	rows, cols := X.Dims()
	if cols != len(coef) {
		return nil, errors.NewDimensionError(op, len(coef), cols, 1)
	}
	predictions := mat.NewDense(rows, 1, nil)
	predictions.Mul(X, mat.NewVecDense(cols, coef))
	for i := 0; i < rows; i++ {
		predictions.Set(i, 0, predictions.At(i, 0)+intercept)
	}
	return predictions, nil
}

// scoreR2 は予測値に対する決定係数（R²）を計算する
func scoreR2(p interface {
	Predict(X mat.Matrix) (mat.Matrix, error)
}, X, y mat.Matrix) (float64, error) {
	predictions, err := p.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.R2ScoreMatrix(y, predictions)
}

// countNonZero は厳密にゼロでない係数の数を返す
func countNonZero(coef []float64) int {
	n := 0
	for _, c := range coef {
		if c != 0 {
			n++
		}
	}
	return n
}

// copyCoef は係数スライスのコピーを返す（nil はそのまま）
func copyCoef(coef []float64) []float64 {
	if coef == nil {
		return nil
	}
	return append([]float64(nil), coef...)
}

// L1Norm は係数の L1 ノルムを返す
func L1Norm(coef []float64) float64 {
	s := 0.0
	for _, c := range coef {
		if c < 0 {
			s -= c
		} else {
			s += c
		}
	}
	return s
}

var (
	_ model.LinearRegressor = (*Lasso)(nil)
	_ model.LinearRegressor = (*Ridge)(nil)
	_ model.LinearRegressor = (*LinearRegression)(nil)
	_ model.WeightExporter  = (*Lasso)(nil)
	_ model.WeightExporter  = (*Ridge)(nil)
	_ model.WeightExporter  = (*LinearRegression)(nil)
	_ model.ParamEstimator  = (*Lasso)(nil)
	_ model.ParamEstimator  = (*Ridge)(nil)
)
