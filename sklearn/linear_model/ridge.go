package linear_model

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/lassoridge/core/model"
	"github.com/YuminosukeSato/lassoridge/pkg/errors"
	"github.com/YuminosukeSato/lassoridge/pkg/log"
)

// Ridge は L2 正則化付き線形回帰（閉形式解）
//
// 目的関数は scikit-learn と同じスケール:
//
//	‖y − Xβ − b‖² + alpha·‖β‖²
//
// 中心化したデータで (XᵀX + alpha·I)β = Xᵀy をコレスキー分解で解く。
type Ridge struct {
	state *model.StateManager

	alpha        float64
	fitIntercept bool
	featureNames []string

	coef_      []float64
	intercept_ float64

	logger log.Logger
}

// RidgeOption はRidgeの設定オプション
type RidgeOption func(*Ridge)

// WithRidgeAlpha は正則化の強さを設定（Ridge用）
func WithRidgeAlpha(alpha float64) RidgeOption {
	return func(r *Ridge) { r.alpha = alpha }
}

// WithRidgeFitIntercept は切片の学習有無を設定（Ridge用）
func WithRidgeFitIntercept(fit bool) RidgeOption {
	return func(r *Ridge) { r.fitIntercept = fit }
}

// WithRidgeFeatureNames は特徴量名を設定（Ridge用）
func WithRidgeFeatureNames(names []string) RidgeOption {
	return func(r *Ridge) { r.featureNames = append([]string(nil), names...) }
}

// NewRidge は新しいRidgeモデルを作成
func NewRidge(options ...RidgeOption) *Ridge {
	r := &Ridge{
		state:        model.NewStateManager(),
		alpha:        1.0,
		fitIntercept: true,
		logger:       log.GetLoggerWithName("linear_model.ridge"),
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

func (r *Ridge) validateParams() error {
	if r.alpha < 0 || math.IsNaN(r.alpha) || math.IsInf(r.alpha, 0) {
		return errors.NewValidationError("alpha", "must be a finite value >= 0", r.alpha)
	}
	return nil
}

// Fit は正規方程式を解いてモデルを学習する
func (r *Ridge) Fit(X, y mat.Matrix) error {
	start := time.Now()
	r.state.Reset()

	if err := r.validateParams(); err != nil {
		return err
	}
	n, p, err := validateXy("Ridge.Fit", X, y)
	if err != nil {
		return err
	}
	if len(r.featureNames) > 0 && len(r.featureNames) != p {
		return errors.NewDimensionError("Ridge.Fit", len(r.featureNames), p, 1)
	}

	data := centerData(X, y, n, p, r.fitIntercept)
	if err := data.checkVariance("Ridge.Fit", r.featureNames); err != nil {
		return err
	}

	Xc := mat.NewDense(n, p, nil)
	for j, col := range data.cols {
		Xc.SetCol(j, col)
	}
	yc := mat.NewVecDense(n, data.y)

	// A = XᵀX + alpha·I
	gram := mat.NewSymDense(p, nil)
	gram.SymOuterK(1, Xc.T())
	for j := 0; j < p; j++ {
		gram.SetSym(j, j, gram.At(j, j)+r.alpha)
	}

	var rhs mat.VecDense
	rhs.MulVec(Xc.T(), yc)

	var chol mat.Cholesky
	if ok := chol.Factorize(gram); !ok || chol.Cond() > mat.ConditionTolerance {
		return errors.Wrapf(errors.ErrSingularMatrix, "Ridge.Fit: XᵀX + alpha·I is not positive definite (alpha=%g)", r.alpha)
	}
	var beta mat.VecDense
	if err := chol.SolveVecTo(&beta, &rhs); err != nil {
		return errors.Wrap(err, "Ridge.Fit: failed to solve linear system")
	}

	coef := mat.Col(nil, 0, &beta)
	if err := errors.CheckNumericalStability("Ridge.Fit", coef, 0); err != nil {
		return err
	}

	r.coef_ = coef
	r.intercept_ = data.intercept(coef)
	r.state.SetDimensions(p, n)
	r.state.SetFitted()

	r.logger.Debug("Ridge fit completed",
		log.OperationKey, log.OperationFit,
		log.RegularizationKey, r.alpha,
		log.SamplesKey, n,
		log.FeaturesKey, p,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return nil
}

// Predict は入力データに対する予測を行う
func (r *Ridge) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !r.state.IsFitted() {
		return nil, errors.NewNotFittedError("Ridge", "Predict")
	}
	return predictLinear("Ridge.Predict", X, r.coef_, r.intercept_)
}

// Score はモデルの決定係数（R²）を計算
func (r *Ridge) Score(X, y mat.Matrix) (float64, error) {
	return scoreR2(r, X, y)
}

// Coef は学習された重み係数のコピーを返す
func (r *Ridge) Coef() []float64 {
	return copyCoef(r.coef_)
}

// Intercept は学習された切片を返す
func (r *Ridge) Intercept() float64 {
	return r.intercept_
}

// Alpha は正則化の強さを返す
func (r *Ridge) Alpha() float64 {
	return r.alpha
}

// IsFitted returns whether the model has been fitted
func (r *Ridge) IsFitted() bool {
	return r.state.IsFitted()
}

// GetParams returns the model's hyperparameters (scikit-learn compatible)
func (r *Ridge) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"alpha":         r.alpha,
		"fit_intercept": r.fitIntercept,
	}
}

// SetParams sets the model's hyperparameters (scikit-learn compatible)
func (r *Ridge) SetParams(params map[string]interface{}) error {
	if v, ok := toFloat(params["alpha"]); ok {
		r.alpha = v
	}
	if v, ok := params["fit_intercept"].(bool); ok {
		r.fitIntercept = v
	}
	return r.validateParams()
}

// ExportWeights はモデルの重みをエクスポート
func (r *Ridge) ExportWeights() (*model.ModelWeights, error) {
	if !r.state.IsFitted() {
		return nil, errors.NewNotFittedError("Ridge", "ExportWeights")
	}
	nFeatures, nSamples := r.state.GetDimensions()
	return &model.ModelWeights{
		ModelType:       "Ridge",
		Version:         modelVersion,
		Coefficients:    r.Coef(),
		Intercept:       r.intercept_,
		Features:        append([]string(nil), r.featureNames...),
		IsFitted:        true,
		Hyperparameters: r.GetParams(),
		Metadata: map[string]interface{}{
			"n_features": nFeatures,
			"n_samples":  nSamples,
			"checksum":   model.Checksum(r.coef_),
		},
	}, nil
}

// ImportWeights はモデルの重みをインポート
func (r *Ridge) ImportWeights(weights *model.ModelWeights) error {
	if weights == nil {
		return errors.NewValueError("Ridge.ImportWeights", "weights cannot be nil")
	}
	if weights.ModelType != "Ridge" {
		return errors.NewValueError("Ridge.ImportWeights",
			fmt.Sprintf("model type mismatch: expected Ridge, got %s", weights.ModelType))
	}
	if err := weights.Validate(); err != nil {
		return err
	}
	if err := r.SetParams(weights.Hyperparameters); err != nil {
		return err
	}

	r.coef_ = copyCoef(weights.Coefficients)
	r.intercept_ = weights.Intercept
	r.featureNames = append([]string(nil), weights.Features...)
	nSamples := 0
	if v, ok := toFloat(weights.Metadata["n_samples"]); ok {
		nSamples = int(v)
	}
	r.state.SetDimensions(len(r.coef_), nSamples)
	r.state.SetFitted()
	return nil
}

// Clone はモデルの新しいインスタンスを作成（同じハイパーパラメータ、未学習）
func (r *Ridge) Clone() *Ridge {
	return NewRidge(
		WithRidgeAlpha(r.alpha),
		WithRidgeFitIntercept(r.fitIntercept),
		WithRidgeFeatureNames(r.featureNames),
	)
}

// String returns the string representation of the model
func (r *Ridge) String() string {
	if !r.state.IsFitted() {
		return fmt.Sprintf("Ridge(alpha=%g, fit_intercept=%t)", r.alpha, r.fitIntercept)
	}
	return fmt.Sprintf("Ridge(alpha=%g, n_features=%d, fitted=true)", r.alpha, len(r.coef_))
}
