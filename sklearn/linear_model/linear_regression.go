package linear_model

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/lassoridge/core/model"
	"github.com/YuminosukeSato/lassoridge/pkg/errors"
	"github.com/YuminosukeSato/lassoridge/pkg/log"
)

// LinearRegression is a linear regression model using ordinary least squares.
// It is the unregularized reference for Lasso and Ridge (alpha = 0).
type LinearRegression struct {
	state *model.StateManager

	fitIntercept bool
	featureNames []string

	coef_      []float64
	intercept_ float64
	rank_      int

	logger log.Logger
}

// LinearRegressionOption は設定オプション
type LinearRegressionOption func(*LinearRegression)

// WithLRFitIntercept は切片の学習有無を設定（LinearRegression用）
func WithLRFitIntercept(fit bool) LinearRegressionOption {
	return func(lr *LinearRegression) { lr.fitIntercept = fit }
}

// WithLRFeatureNames は特徴量名を設定（LinearRegression用）
func WithLRFeatureNames(names []string) LinearRegressionOption {
	return func(lr *LinearRegression) { lr.featureNames = append([]string(nil), names...) }
}

// NewLinearRegression は新しいLinearRegressionモデルを作成
func NewLinearRegression(options ...LinearRegressionOption) *LinearRegression {
	lr := &LinearRegression{
		state:        model.NewStateManager(),
		fitIntercept: true,
		logger:       log.GetLoggerWithName("linear_model.ols"),
	}
	for _, opt := range options {
		opt(lr)
	}
	return lr
}

// Fit はモデルを訓練データで学習
// 中心化したデータに対して QR 分解で最小二乗問題を解く
func (lr *LinearRegression) Fit(X, y mat.Matrix) error {
	lr.state.Reset()

	n, p, err := validateXy("LinearRegression.Fit", X, y)
	if err != nil {
		return err
	}
	if n < p {
		return errors.NewValueError("LinearRegression.Fit",
			fmt.Sprintf("underdetermined system: %d samples for %d features", n, p))
	}

	data := centerData(X, y, n, p, lr.fitIntercept)
	Xc := mat.NewDense(n, p, nil)
	for j, col := range data.cols {
		Xc.SetCol(j, col)
	}

	// 正規方程式より数値的に安定なQR分解を使用
	var qr mat.QR
	qr.Factorize(Xc)

	coefficients := mat.NewDense(p, 1, nil)
	if err := qr.SolveTo(coefficients, false, mat.NewDense(n, 1, data.y)); err != nil {
		return errors.Wrapf(errors.ErrSingularMatrix, "LinearRegression.Fit: %v", err)
	}

	coef := mat.Col(nil, 0, coefficients)
	if err := errors.CheckNumericalStability("LinearRegression.Fit", coef, 0); err != nil {
		return err
	}

	lr.coef_ = coef
	lr.intercept_ = data.intercept(coef)
	lr.rank_ = p
	lr.state.SetDimensions(p, n)
	lr.state.SetFitted()

	lr.logger.Debug("LinearRegression fit completed",
		log.OperationKey, log.OperationFit,
		log.SamplesKey, n,
		log.FeaturesKey, p,
	)
	return nil
}

// Predict は入力データに対する予測を行う
func (lr *LinearRegression) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !lr.state.IsFitted() {
		return nil, errors.NewNotFittedError("LinearRegression", "Predict")
	}
	return predictLinear("LinearRegression.Predict", X, lr.coef_, lr.intercept_)
}

// Score はモデルの決定係数（R²）を計算
func (lr *LinearRegression) Score(X, y mat.Matrix) (float64, error) {
	return scoreR2(lr, X, y)
}

// Coef は学習された重み係数を返す
func (lr *LinearRegression) Coef() []float64 {
	return copyCoef(lr.coef_)
}

// Intercept は学習された切片を返す
func (lr *LinearRegression) Intercept() float64 {
	return lr.intercept_
}

// IsFitted returns whether the model has been fitted
func (lr *LinearRegression) IsFitted() bool {
	return lr.state.IsFitted()
}

// GetParams returns the model's hyperparameters (scikit-learn compatible)
func (lr *LinearRegression) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"fit_intercept": lr.fitIntercept,
	}
}

// SetParams sets the model's hyperparameters (scikit-learn compatible)
func (lr *LinearRegression) SetParams(params map[string]interface{}) error {
	if v, ok := params["fit_intercept"].(bool); ok {
		lr.fitIntercept = v
	}
	return nil
}

// ExportWeights はモデルの重みをエクスポート
func (lr *LinearRegression) ExportWeights() (*model.ModelWeights, error) {
	if !lr.state.IsFitted() {
		return nil, errors.NewNotFittedError("LinearRegression", "ExportWeights")
	}
	nFeatures, nSamples := lr.state.GetDimensions()
	return &model.ModelWeights{
		ModelType:       "LinearRegression",
		Version:         modelVersion,
		Coefficients:    lr.Coef(),
		Intercept:       lr.intercept_,
		Features:        append([]string(nil), lr.featureNames...),
		IsFitted:        true,
		Hyperparameters: lr.GetParams(),
		Metadata: map[string]interface{}{
			"n_features": nFeatures,
			"n_samples":  nSamples,
			"rank":       lr.rank_,
			"checksum":   model.Checksum(lr.coef_),
		},
	}, nil
}

// ImportWeights はモデルの重みをインポート
func (lr *LinearRegression) ImportWeights(weights *model.ModelWeights) error {
	if weights == nil {
		return errors.NewValueError("LinearRegression.ImportWeights", "weights cannot be nil")
	}
	if weights.ModelType != "LinearRegression" {
		return errors.NewValueError("LinearRegression.ImportWeights",
			fmt.Sprintf("model type mismatch: expected LinearRegression, got %s", weights.ModelType))
	}
	if err := weights.Validate(); err != nil {
		return err
	}
	if err := lr.SetParams(weights.Hyperparameters); err != nil {
		return err
	}

	lr.coef_ = copyCoef(weights.Coefficients)
	lr.intercept_ = weights.Intercept
	lr.featureNames = append([]string(nil), weights.Features...)
	nSamples := 0
	if v, ok := toFloat(weights.Metadata["n_samples"]); ok {
		nSamples = int(v)
	}
	if v, ok := toFloat(weights.Metadata["rank"]); ok {
		lr.rank_ = int(v)
	}
	lr.state.SetDimensions(len(lr.coef_), nSamples)
	lr.state.SetFitted()
	return nil
}

// Clone はモデルの新しいインスタンスを作成（同じハイパーパラメータ、未学習）
func (lr *LinearRegression) Clone() *LinearRegression {
	return NewLinearRegression(
		WithLRFitIntercept(lr.fitIntercept),
		WithLRFeatureNames(lr.featureNames),
	)
}

// String returns the string representation of the model
func (lr *LinearRegression) String() string {
	if !lr.state.IsFitted() {
		return fmt.Sprintf("LinearRegression(fit_intercept=%t)", lr.fitIntercept)
	}
	return fmt.Sprintf("LinearRegression(fit_intercept=%t, n_features=%d, fitted=true)",
		lr.fitIntercept, len(lr.coef_))
}
