package model_selection

import (
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/lassoridge/core/model"
	"github.com/YuminosukeSato/lassoridge/pkg/errors"
	"github.com/YuminosukeSato/lassoridge/pkg/log"
	"github.com/YuminosukeSato/lassoridge/preprocessing"
	"github.com/YuminosukeSato/lassoridge/sklearn/linear_model"
)

// SweepResult はλグリッドごとの交差検証結果
// スライスはすべて Lambdas と同じインデックスで対応する
type SweepResult struct {
	// ID はログと出力ファイルを対応づけるための実行ID
	ID string

	Lambdas []float64

	// 各λでのフォールド平均スコア
	LassoScores []float64
	RidgeScores []float64

	// フォールド間の標準偏差
	LassoStd []float64
	RidgeStd []float64

	// 全データ（標準化済み）で学習したときの非ゼロ係数の数と係数
	LassoNonZero []int
	LassoCoef    [][]float64
	RidgeCoef    [][]float64

	// 同じフォールドでの正則化なし最小二乗法のスコア（比較の基準）
	OLSScore float64

	Folds   int
	Scoring string
}

// BestLasso は最良スコアのλとそのスコアを返す（同点なら小さいインデックス）
func (r *SweepResult) BestLasso() (lambda, score float64) {
	return best(r.Lambdas, r.LassoScores)
}

// BestRidge は最良スコアのλとそのスコアを返す（同点なら小さいインデックス）
func (r *SweepResult) BestRidge() (lambda, score float64) {
	return best(r.Lambdas, r.RidgeScores)
}

func best(lambdas, scores []float64) (float64, float64) {
	bi := 0
	for i := range scores {
		if scores[i] > scores[bi] {
			bi = i
		}
	}
	return lambdas[bi], scores[bi]
}

// RegularizationSweep はλグリッドの各値でLassoとRidgeを k 分割交差検証し、平均スコアを記録する
//
// Lasso のλは (1/n)‖y−Xβ‖² + λ‖β‖₁ の、Ridge のλは ‖y−Xβ‖² + λ‖β‖² の係数として渡す。
// 標準化はデフォルトで有効で、各訓練フォールドで新しい StandardScaler を学習する。
// どのフォールドで失敗しても（Lassoの非収束を含む）、λとフォールドを示すエラーで中断する。
func RegularizationSweep(grid []float64, k int, X, y mat.Matrix, opts ...Option) (*SweepResult, error) {
	start := time.Now()
	cfg := newConfig(append([]Option{WithStandardize(true)}, opts...))

	if err := validateGrid(grid); err != nil {
		return nil, err
	}
	n, p := X.Dims()
	if k < 2 || k > n {
		return nil, errors.NewValidationError("k", "must satisfy 2 <= k <= n_samples", k)
	}
	splitter := NewKFold(k, cfg.shuffle, cfg.randomSeed)

	result := &SweepResult{
		ID:           uuid.New().String(),
		Lambdas:      append([]float64(nil), grid...),
		LassoScores:  make([]float64, len(grid)),
		RidgeScores:  make([]float64, len(grid)),
		LassoStd:     make([]float64, len(grid)),
		RidgeStd:     make([]float64, len(grid)),
		LassoNonZero: make([]int, len(grid)),
		LassoCoef:    make([][]float64, len(grid)),
		RidgeCoef:    make([][]float64, len(grid)),
		Folds:        k,
		Scoring:      cfg.scoring,
	}
	logger := cfg.logger.With("sweep_id", result.ID)

	ols, err := crossValidate(func() model.Regressor {
		return linear_model.NewLinearRegression()
	}, X, y, splitter, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "least squares reference")
	}
	result.OLSScore = ols.GetMeanScore()

	// 係数の記録用に全データを一度だけ標準化する
	var XFull mat.Matrix = X
	if cfg.standardize {
		if XFull, err = preprocessing.NewStandardScaler(preprocessing.WithStrict()).FitTransform(X); err != nil {
			return nil, err
		}
	}

	for i, lambda := range grid {
		lassoOpts := append(append([]linear_model.LassoOption(nil), cfg.lassoOpts...), linear_model.WithAlpha(lambda))
		newLasso := func() model.Regressor { return linear_model.NewLasso(lassoOpts...) }
		newRidge := func() model.Regressor { return linear_model.NewRidge(linear_model.WithRidgeAlpha(lambda)) }

		lassoCV, err := crossValidate(newLasso, X, y, splitter, cfg)
		if err != nil {
			return nil, errors.Wrapf(err, "lasso lambda=%g", lambda)
		}
		ridgeCV, err := crossValidate(newRidge, X, y, splitter, cfg)
		if err != nil {
			return nil, errors.Wrapf(err, "ridge lambda=%g", lambda)
		}

		lasso := linear_model.NewLasso(lassoOpts...)
		if err := lasso.Fit(XFull, y); err != nil {
			return nil, errors.Wrapf(err, "lasso lambda=%g full data", lambda)
		}
		ridge := linear_model.NewRidge(linear_model.WithRidgeAlpha(lambda))
		if err := ridge.Fit(XFull, y); err != nil {
			return nil, errors.Wrapf(err, "ridge lambda=%g full data", lambda)
		}

		result.LassoScores[i] = lassoCV.GetMeanScore()
		result.RidgeScores[i] = ridgeCV.GetMeanScore()
		result.LassoStd[i] = lassoCV.GetStdScore()
		result.RidgeStd[i] = ridgeCV.GetStdScore()
		result.LassoCoef[i] = lasso.Coef()
		result.RidgeCoef[i] = ridge.Coef()
		result.LassoNonZero[i] = countNonZero(result.LassoCoef[i])

		logger.Info("sweep point",
			log.OperationKey, log.OperationSweep,
			log.RegularizationKey, lambda,
			"lasso_score", result.LassoScores[i],
			"ridge_score", result.RidgeScores[i],
			log.NonZeroKey, result.LassoNonZero[i],
		)
	}

	logger.Info("sweep completed",
		log.OperationKey, log.OperationSweep,
		log.SamplesKey, n,
		log.FeaturesKey, p,
		log.FoldsKey, k,
		"grid_size", len(grid),
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return result, nil
}

func countNonZero(coef []float64) int {
	n := 0
	for _, c := range coef {
		if c != 0 {
			n++
		}
	}
	return n
}
