package linear_model

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/lassoridge/core/model"
	"github.com/YuminosukeSato/lassoridge/pkg/errors"
	"github.com/YuminosukeSato/lassoridge/pkg/log"
)

// 座標の選択方法
const (
	SelectionCyclic = "cyclic"
	SelectionRandom = "random"
)

// Lasso は座標降下法で L1 正則化付き線形回帰を学習する
//
// 目的関数:
//
//	(1/n)·‖y − Xβ − b‖² + alpha·‖β‖₁
//
// 切片 b は正則化しない。fitIntercept が true のとき X と y を内部で中心化する。
// 各座標の更新は
//
//	ρⱼ = (1/n)·Σᵢ xᵢⱼ·(yᵢ − Σ_{k≠j} xᵢₖβₖ)
//	βⱼ = S(ρⱼ, alpha/2) / zⱼ,   zⱼ = (1/n)·Σᵢ xᵢⱼ²
//
// で、S はソフト閾値関数。標準化済みの列では zⱼ = 1 になる。
// 1 パス中の係数変化の最大値が tol 未満になれば収束とみなす。
type Lasso struct {
	state *model.StateManager

	// ハイパーパラメータ
	alpha        float64
	fitIntercept bool
	maxIter      int
	tol          float64
	selection    string
	randomState  uint64
	warmStart    bool
	positive     bool

	featureNames []string

	// 学習済みパラメータ
	coef_      []float64
	intercept_ float64
	nIter_     int

	logger log.Logger
}

// LassoOption はLassoの設定オプション
type LassoOption func(*Lasso)

// WithAlpha は正則化の強さを設定
func WithAlpha(alpha float64) LassoOption {
	return func(l *Lasso) { l.alpha = alpha }
}

// WithFitIntercept は切片の学習有無を設定
func WithFitIntercept(fit bool) LassoOption {
	return func(l *Lasso) { l.fitIntercept = fit }
}

// WithMaxIter は最大パス数を設定
func WithMaxIter(n int) LassoOption {
	return func(l *Lasso) { l.maxIter = n }
}

// WithTol は収束判定の許容誤差を設定
func WithTol(tol float64) LassoOption {
	return func(l *Lasso) { l.tol = tol }
}

// WithSelection は座標の選択方法を設定（"cyclic" または "random"）
func WithSelection(selection string) LassoOption {
	return func(l *Lasso) { l.selection = selection }
}

// WithRandomState は selection="random" の乱数シードを設定
func WithRandomState(seed uint64) LassoOption {
	return func(l *Lasso) { l.randomState = seed }
}

// WithWarmStart は前回の解から学習を再開するかを設定
func WithWarmStart(warm bool) LassoOption {
	return func(l *Lasso) { l.warmStart = warm }
}

// WithPositive は係数を非負に制約するかを設定
func WithPositive(positive bool) LassoOption {
	return func(l *Lasso) { l.positive = positive }
}

// WithFeatureNames はエラーや重みのエクスポートで使う特徴量名を設定
func WithFeatureNames(names []string) LassoOption {
	return func(l *Lasso) { l.featureNames = append([]string(nil), names...) }
}

// NewLasso は新しいLassoモデルを作成
//
// 使用例:
//
//	lasso := linear_model.NewLasso(linear_model.WithAlpha(0.1))
//	if err := lasso.Fit(X, y); err != nil {
//	    var ce *errors.ConvergenceError
//	    if errors.As(err, &ce) { ... }
//	}
func NewLasso(options ...LassoOption) *Lasso {
	l := &Lasso{
		state:        model.NewStateManager(),
		alpha:        1.0,
		fitIntercept: true,
		maxIter:      1000,
		tol:          1e-4,
		selection:    SelectionCyclic,
		logger:       log.GetLoggerWithName("linear_model.lasso"),
	}
	for _, opt := range options {
		opt(l)
	}
	return l
}

func (l *Lasso) validateParams() error {
	if l.alpha < 0 || math.IsNaN(l.alpha) || math.IsInf(l.alpha, 0) {
		return errors.NewValidationError("alpha", "must be a finite value >= 0", l.alpha)
	}
	if l.maxIter < 1 {
		return errors.NewValidationError("max_iter", "must be >= 1", l.maxIter)
	}
	if !(l.tol > 0) {
		return errors.NewValidationError("tol", "must be > 0", l.tol)
	}
	if l.selection != SelectionCyclic && l.selection != SelectionRandom {
		return errors.NewValidationError("selection", "must be \"cyclic\" or \"random\"", l.selection)
	}
	return nil
}

// Fit は座標降下法でモデルを学習する
//
// 収束しなかった場合は *errors.ConvergenceError を返し、モデルは未学習のままになる。
// 分散ゼロの列があれば *errors.ZeroVarianceError を返す。
func (l *Lasso) Fit(X, y mat.Matrix) error {
	start := time.Now()

	// 前回の解（warm start 用）は Reset で無効になるため先に退避する
	var prev []float64
	if l.warmStart && l.state.IsFitted() {
		prev = l.coef_
	}
	l.state.Reset()

	if err := l.validateParams(); err != nil {
		return err
	}
	n, p, err := validateXy("Lasso.Fit", X, y)
	if err != nil {
		return err
	}
	if len(l.featureNames) > 0 && len(l.featureNames) != p {
		return errors.NewDimensionError("Lasso.Fit", len(l.featureNames), p, 1)
	}

	data := centerData(X, y, n, p, l.fitIntercept)
	if err := data.checkVariance("Lasso.Fit", l.featureNames); err != nil {
		return err
	}

	if l.alpha == 0 {
		errors.Warn(errors.NewFitWarning("Lasso",
			"alpha=0 reduces to ordinary least squares; LinearRegression is better suited"))
	}

	beta := make([]float64, p)
	if len(prev) == p {
		copy(beta, prev)
	}

	nIter, err := l.coordinateDescent(data, beta, n)
	if err != nil {
		l.logger.Error("Lasso did not converge", err,
			log.ErrorCodeKey, log.ErrorConvergence,
			log.RegularizationKey, l.alpha,
		)
		return err
	}

	l.coef_ = beta
	l.intercept_ = data.intercept(beta)
	l.nIter_ = nIter
	l.state.SetDimensions(p, n)
	l.state.SetFitted()

	l.logger.Debug("Lasso fit completed",
		log.OperationKey, log.OperationFit,
		log.RegularizationKey, l.alpha,
		log.SamplesKey, n,
		log.FeaturesKey, p,
		log.IterationKey, nIter,
		log.NonZeroKey, countNonZero(beta),
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return nil
}

// coordinateDescent は beta をその場で更新し、収束までのパス数を返す
func (l *Lasso) coordinateDescent(data *centered, beta []float64, n int) (int, error) {
	p := len(beta)
	nf := float64(n)
	threshold := l.alpha / 2

	// 残差 r = y − Xβ
	residual := append([]float64(nil), data.y...)
	for j, b := range beta {
		if b == 0 {
			continue
		}
		for i, x := range data.cols[j] {
			residual[i] -= x * b
		}
	}

	order := make([]int, p)
	for j := range order {
		order[j] = j
	}
	var rng *rand.Rand
	if l.selection == SelectionRandom {
		rng = rand.New(rand.NewPCG(l.randomState, l.randomState))
	}

	debug := l.logger.Enabled(context.Background(), log.LevelDebug)
	maxDelta := 0.0
	for iter := 1; iter <= l.maxIter; iter++ {
		if rng != nil {
			rng.Shuffle(p, func(a, b int) { order[a], order[b] = order[b], order[a] })
		}

		maxDelta = 0.0
		for _, j := range order {
			col := data.cols[j]
			old := beta[j]

			// ρⱼ は j を除いた部分残差との相関
			rho := 0.0
			for i, x := range col {
				rho += x * residual[i]
			}
			rho = rho/nf + data.sqSum[j]*old

			updated := softThreshold(rho, threshold) / data.sqSum[j]
			if l.positive && updated < 0 {
				updated = 0
			}

			delta := updated - old
			if delta != 0 {
				for i, x := range col {
					residual[i] -= x * delta
				}
				beta[j] = updated
			}
			if d := math.Abs(delta); d > maxDelta {
				maxDelta = d
			}
		}

		if err := errors.CheckNumericalStability("Lasso.Fit", beta, iter); err != nil {
			return iter, err
		}
		if debug {
			l.logger.Debug("coordinate descent pass",
				log.IterationKey, iter,
				log.MaxDeltaKey, maxDelta,
				log.NonZeroKey, countNonZero(beta),
			)
		}
		if maxDelta < l.tol {
			return iter, nil
		}
	}
	return l.maxIter, errors.NewConvergenceError("Lasso", l.maxIter, l.tol, maxDelta)
}

// softThreshold は S(ρ, t) = sign(ρ)·max(|ρ| − t, 0)
func softThreshold(rho, t float64) float64 {
	switch {
	case rho > t:
		return rho - t
	case rho < -t:
		return rho + t
	default:
		return 0
	}
}

// LassoAlphaMax は全係数をゼロにする最小の alpha（2·maxⱼ|ρⱼ(β=0)|）を返す
// これより大きい alpha では Fit の結果がすべてゼロになる
func LassoAlphaMax(X, y mat.Matrix, fitIntercept bool) (float64, error) {
	n, p, err := validateXy("LassoAlphaMax", X, y)
	if err != nil {
		return 0, err
	}
	data := centerData(X, y, n, p, fitIntercept)
	maxRho := 0.0
	for j := 0; j < p; j++ {
		rho := 0.0
		for i, x := range data.cols[j] {
			rho += x * data.y[i]
		}
		if r := math.Abs(rho / float64(n)); r > maxRho {
			maxRho = r
		}
	}
	return 2 * maxRho, nil
}

// LassoPath は alphas の順に warm start でLassoを学習し、各 alpha の係数を返す
// alphas は降順にすると収束が速い
func LassoPath(X, y mat.Matrix, alphas []float64, options ...LassoOption) ([][]float64, error) {
	lasso := NewLasso(append(options, WithWarmStart(true))...)
	path := make([][]float64, len(alphas))
	for k, alpha := range alphas {
		lasso.alpha = alpha
		if err := lasso.Fit(X, y); err != nil {
			return nil, errors.Wrapf(err, "lasso path at alpha=%g", alpha)
		}
		path[k] = lasso.Coef()
	}
	return path, nil
}

// Predict は入力データに対する予測を行う
func (l *Lasso) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !l.state.IsFitted() {
		return nil, errors.NewNotFittedError("Lasso", "Predict")
	}
	return predictLinear("Lasso.Predict", X, l.coef_, l.intercept_)
}

// Score はモデルの決定係数（R²）を計算
func (l *Lasso) Score(X, y mat.Matrix) (float64, error) {
	return scoreR2(l, X, y)
}

// Coef は学習された重み係数のコピーを返す
func (l *Lasso) Coef() []float64 {
	return copyCoef(l.coef_)
}

// Intercept は学習された切片を返す
func (l *Lasso) Intercept() float64 {
	return l.intercept_
}

// NIter は収束までに要したパス数を返す
func (l *Lasso) NIter() int {
	return l.nIter_
}

// Alpha は正則化の強さを返す
func (l *Lasso) Alpha() float64 {
	return l.alpha
}

// IsFitted returns whether the model has been fitted
func (l *Lasso) IsFitted() bool {
	return l.state.IsFitted()
}

// GetParams returns the model's hyperparameters (scikit-learn compatible)
func (l *Lasso) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"alpha":         l.alpha,
		"fit_intercept": l.fitIntercept,
		"max_iter":      l.maxIter,
		"tol":           l.tol,
		"selection":     l.selection,
		"random_state":  l.randomState,
		"warm_start":    l.warmStart,
		"positive":      l.positive,
	}
}

// SetParams sets the model's hyperparameters (scikit-learn compatible)
// JSON から読み戻した値は数値が float64 になるため両方を受け付ける
func (l *Lasso) SetParams(params map[string]interface{}) error {
	if v, ok := toFloat(params["alpha"]); ok {
		l.alpha = v
	}
	if v, ok := params["fit_intercept"].(bool); ok {
		l.fitIntercept = v
	}
	if v, ok := toFloat(params["max_iter"]); ok {
		l.maxIter = int(v)
	}
	if v, ok := toFloat(params["tol"]); ok {
		l.tol = v
	}
	if v, ok := params["selection"].(string); ok {
		l.selection = v
	}
	if v, ok := toFloat(params["random_state"]); ok {
		l.randomState = uint64(v)
	}
	if v, ok := params["warm_start"].(bool); ok {
		l.warmStart = v
	}
	if v, ok := params["positive"].(bool); ok {
		l.positive = v
	}
	return l.validateParams()
}

// ExportWeights はモデルの重みをエクスポート
func (l *Lasso) ExportWeights() (*model.ModelWeights, error) {
	if !l.state.IsFitted() {
		return nil, errors.NewNotFittedError("Lasso", "ExportWeights")
	}
	nFeatures, nSamples := l.state.GetDimensions()
	return &model.ModelWeights{
		ModelType:       "Lasso",
		Version:         modelVersion,
		Coefficients:    l.Coef(),
		Intercept:       l.intercept_,
		Features:        append([]string(nil), l.featureNames...),
		IsFitted:        true,
		Hyperparameters: l.GetParams(),
		Metadata: map[string]interface{}{
			"n_features": nFeatures,
			"n_samples":  nSamples,
			"n_iter":     l.nIter_,
			"n_nonzero":  countNonZero(l.coef_),
			"checksum":   model.Checksum(l.coef_),
		},
	}, nil
}

// ImportWeights はモデルの重みをインポート
func (l *Lasso) ImportWeights(weights *model.ModelWeights) error {
	if weights == nil {
		return errors.NewValueError("Lasso.ImportWeights", "weights cannot be nil")
	}
	if weights.ModelType != "Lasso" {
		return errors.NewValueError("Lasso.ImportWeights",
			fmt.Sprintf("model type mismatch: expected Lasso, got %s", weights.ModelType))
	}
	if err := weights.Validate(); err != nil {
		return err
	}
	if err := l.SetParams(weights.Hyperparameters); err != nil {
		return err
	}

	l.coef_ = copyCoef(weights.Coefficients)
	l.intercept_ = weights.Intercept
	l.featureNames = append([]string(nil), weights.Features...)
	nSamples := 0
	if v, ok := toFloat(weights.Metadata["n_samples"]); ok {
		nSamples = int(v)
	}
	if v, ok := toFloat(weights.Metadata["n_iter"]); ok {
		l.nIter_ = int(v)
	}
	l.state.SetDimensions(len(l.coef_), nSamples)
	l.state.SetFitted()
	return nil
}

// Clone はモデルの新しいインスタンスを作成（同じハイパーパラメータ、未学習）
func (l *Lasso) Clone() *Lasso {
	return NewLasso(
		WithAlpha(l.alpha),
		WithFitIntercept(l.fitIntercept),
		WithMaxIter(l.maxIter),
		WithTol(l.tol),
		WithSelection(l.selection),
		WithRandomState(l.randomState),
		WithWarmStart(l.warmStart),
		WithPositive(l.positive),
		WithFeatureNames(l.featureNames),
	)
}

// String returns the string representation of the model
func (l *Lasso) String() string {
	if !l.state.IsFitted() {
		return fmt.Sprintf("Lasso(alpha=%g, fit_intercept=%t, max_iter=%d, tol=%g, selection=%s)",
			l.alpha, l.fitIntercept, l.maxIter, l.tol, l.selection)
	}
	return fmt.Sprintf("Lasso(alpha=%g, n_features=%d, n_nonzero=%d, n_iter=%d, fitted=true)",
		l.alpha, len(l.coef_), countNonZero(l.coef_), l.nIter_)
}

// toFloat は int / float64 / uint64 のパラメータ値を float64 に変換する
func toFloat(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	case uint64:
		return float64(x), true
	default:
		return 0, false
	}
}
