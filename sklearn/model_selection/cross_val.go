package model_selection

import (
	"math"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/lassoridge/core/model"
	"github.com/YuminosukeSato/lassoridge/metrics"
	"github.com/YuminosukeSato/lassoridge/pkg/errors"
	"github.com/YuminosukeSato/lassoridge/pkg/log"
	"github.com/YuminosukeSato/lassoridge/preprocessing"
	"github.com/YuminosukeSato/lassoridge/sklearn/linear_model"
)

// スコアリング名
const (
	ScoringR2     = "r2"
	ScoringNegMSE = "neg_mean_squared_error"
)

// Scorer は n×1 の正解と予測からスコア（大きいほど良い）を計算する
type Scorer func(yTrue, yPred mat.Matrix) (float64, error)

// GetScorer はスコアリング名に対応するScorerを返す
func GetScorer(name string) (Scorer, error) {
	switch name {
	case ScoringR2, "":
		return metrics.R2ScoreMatrix, nil
	case ScoringNegMSE:
		return func(yTrue, yPred mat.Matrix) (float64, error) {
			mse, err := metrics.MSEMatrix(yTrue, yPred)
			return -mse, err
		}, nil
	default:
		return nil, errors.NewValidationError("scoring", "must be \"r2\" or \"neg_mean_squared_error\"", name)
	}
}

// EstimatorFactory は未学習の推定器を新しく作る
// 各フォールドで新しいインスタンスを使うため、状態が共有されない
type EstimatorFactory func() model.Regressor

// config は CrossValidate と RegularizationSweep の共通設定
type config struct {
	scoring     string
	standardize bool
	shuffle     bool
	randomSeed  uint64
	lassoOpts   []linear_model.LassoOption
	logger      log.Logger
}

// Option は CrossValidate / RegularizationSweep の設定関数
type Option func(*config)

// WithScoring はスコアリング名を設定（"r2" または "neg_mean_squared_error"）
func WithScoring(name string) Option {
	return func(c *config) { c.scoring = name }
}

// WithStandardize は各訓練フォールドで StandardScaler を学習し、テストフォールドに適用するかを設定
func WithStandardize(standardize bool) Option {
	return func(c *config) { c.standardize = standardize }
}

// WithShuffle はフォールド分割前にシードつきでシャッフルする（RegularizationSweep 用）
func WithShuffle(seed uint64) Option {
	return func(c *config) {
		c.shuffle = true
		c.randomSeed = seed
	}
}

// WithLassoOptions はスイープで使うLassoの追加オプション（tol, max_iter, selection など）
func WithLassoOptions(opts ...linear_model.LassoOption) Option {
	return func(c *config) { c.lassoOpts = append(c.lassoOpts, opts...) }
}

func newConfig(opts []Option) *config {
	c := &config{
		scoring: ScoringR2,
		logger:  log.GetLoggerWithName("model_selection"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CVResult stores cross-validation results
type CVResult struct {
	TestScores []float64
	FitTimes   []time.Duration
	Estimators []model.Regressor
}

// GetMeanScore returns mean test score
func (cv *CVResult) GetMeanScore() float64 {
	if len(cv.TestScores) == 0 {
		return 0.0
	}
	return stat.Mean(cv.TestScores, nil)
}

// GetStdScore returns the sample standard deviation of test scores
func (cv *CVResult) GetStdScore() float64 {
	if len(cv.TestScores) <= 1 {
		return 0.0
	}
	return math.Sqrt(stat.Variance(cv.TestScores, nil))
}

// CrossValidate は各フォールドで新しい推定器を学習し、テストフォールドのスコアを記録する
//
// フォールドは順に処理する。どれか1つでも失敗したらフォールド番号つきのエラーを返す。
func CrossValidate(newEstimator EstimatorFactory, X, y mat.Matrix, splitter Splitter, opts ...Option) (*CVResult, error) {
	cfg := newConfig(opts)
	return crossValidate(newEstimator, X, y, splitter, cfg)
}

// CrossValScore は CrossValidate のフォールドごとのスコアだけを返す
func CrossValScore(newEstimator EstimatorFactory, X, y mat.Matrix, splitter Splitter, opts ...Option) ([]float64, error) {
	result, err := CrossValidate(newEstimator, X, y, splitter, opts...)
	if err != nil {
		return nil, err
	}
	return result.TestScores, nil
}

func crossValidate(newEstimator EstimatorFactory, X, y mat.Matrix, splitter Splitter, cfg *config) (*CVResult, error) {
	scorer, err := GetScorer(cfg.scoring)
	if err != nil {
		return nil, err
	}
	n, _ := X.Dims()
	yRows, yCols := y.Dims()
	if n != yRows {
		return nil, errors.NewDimensionError("CrossValidate", n, yRows, 0)
	}
	if yCols != 1 {
		return nil, errors.NewDimensionError("CrossValidate", 1, yCols, 1)
	}

	folds, err := splitter.Split(n)
	if err != nil {
		return nil, err
	}

	result := &CVResult{
		TestScores: make([]float64, len(folds)),
		FitTimes:   make([]time.Duration, len(folds)),
		Estimators: make([]model.Regressor, len(folds)),
	}
	for k, fold := range folds {
		score, est, elapsed, err := fitAndScore(newEstimator, X, y, fold, scorer, cfg.standardize)
		if err != nil {
			return nil, errors.Wrapf(err, "fold %d/%d", k+1, len(folds))
		}
		result.TestScores[k] = score
		result.FitTimes[k] = elapsed
		result.Estimators[k] = est

		cfg.logger.Debug("fold scored",
			log.FoldKey, k,
			log.PhaseKey, log.PhaseValidation,
			log.SamplesKey, len(fold.TrainIndices),
			"score", score,
		)
	}
	return result, nil
}

func fitAndScore(newEstimator EstimatorFactory, X, y mat.Matrix, fold Fold, scorer Scorer, standardize bool) (float64, model.Regressor, time.Duration, error) {
	var trainX, testX mat.Matrix = TakeRows(X, fold.TrainIndices), TakeRows(X, fold.TestIndices)
	trainY, testY := TakeRows(y, fold.TrainIndices), TakeRows(y, fold.TestIndices)

	if standardize {
		scaler := preprocessing.NewStandardScaler(preprocessing.WithStrict())
		var err error
		if trainX, err = scaler.FitTransform(trainX); err != nil {
			return 0, nil, 0, err
		}
		if testX, err = scaler.Transform(testX); err != nil {
			return 0, nil, 0, err
		}
	}

	est := newEstimator()
	start := time.Now()
	if err := est.Fit(trainX, trainY); err != nil {
		return 0, nil, 0, err
	}
	elapsed := time.Since(start)

	pred, err := est.Predict(testX)
	if err != nil {
		return 0, nil, 0, err
	}
	score, err := scorer(testY, pred)
	if err != nil {
		return 0, nil, 0, err
	}
	return score, est, elapsed, nil
}
