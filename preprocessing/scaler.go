// Package preprocessing provides column scaling and polynomial feature
// expansion for design matrices.
package preprocessing

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/lassoridge/core/model"
	"github.com/YuminosukeSato/lassoridge/pkg/errors"
)

// zeroScaleTol 以下の標準偏差はゼロ分散とみなす
const zeroScaleTol = 1e-8

// StandardScaler はscikit-learn互換の標準化スケーラー
// データを平均0、標準偏差1に変換する
type StandardScaler struct {
	state *model.StateManager

	// Mean は各特徴量の平均値
	Mean []float64

	// Scale は各特徴量の標準偏差（母分散ベース）
	Scale []float64

	// NFeatures は特徴量の数
	NFeatures int

	// WithMean は平均を引くかどうか (デフォルト: true)
	WithMean bool

	// WithStd は標準偏差で割るかどうか (デフォルト: true)
	WithStd bool

	// Strict が true のとき、ゼロ分散列はスケール1に置き換えずエラーにする
	Strict bool
}

// ScalerOption はStandardScalerの設定関数
type ScalerOption func(*StandardScaler)

// WithoutMean は平均の減算を無効にする
func WithoutMean() ScalerOption {
	return func(s *StandardScaler) { s.WithMean = false }
}

// WithoutStd は標準偏差による除算を無効にする
func WithoutStd() ScalerOption {
	return func(s *StandardScaler) { s.WithStd = false }
}

// WithStrict はゼロ分散列をエラーとして扱う
func WithStrict() ScalerOption {
	return func(s *StandardScaler) { s.Strict = true }
}

// NewStandardScaler は新しいStandardScalerを作成する
//
// 使用例:
//
//	scaler := preprocessing.NewStandardScaler(preprocessing.WithStrict())
//	XScaled, err := scaler.FitTransform(X)
func NewStandardScaler(opts ...ScalerOption) *StandardScaler {
	s := &StandardScaler{
		state:    model.NewStateManager(),
		WithMean: true,
		WithStd:  true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IsFitted returns whether Fit has succeeded.
func (s *StandardScaler) IsFitted() bool {
	return s.state.IsFitted()
}

// Fit は訓練データから統計情報（平均、標準偏差）を計算する
func (s *StandardScaler) Fit(X mat.Matrix) error {
	s.state.Reset()

	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("StandardScaler.Fit", "empty data", errors.ErrEmptyData)
	}
	if err := errors.CheckMatrix("StandardScaler.Fit", X, r, c, 0); err != nil {
		return err
	}

	mean := make([]float64, c)
	scale := make([]float64, c)
	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, X)

		m := 0.0
		for _, v := range col {
			m += v
		}
		m /= float64(r)
		if s.WithMean {
			mean[j] = m
		}

		scale[j] = 1.0
		if !s.WithStd {
			continue
		}
		sumSquares := 0.0
		for _, v := range col {
			d := v - m
			sumSquares += d * d
		}
		sd := math.Sqrt(sumSquares / float64(r))
		if sd < zeroScaleTol {
			if s.Strict {
				return errors.NewZeroVarianceError("StandardScaler.Fit", j)
			}
			continue
		}
		scale[j] = sd
	}

	s.Mean = mean
	s.Scale = scale
	s.NFeatures = c
	s.state.SetDimensions(c, r)
	s.state.SetFitted()
	return nil
}

// Transform は学習済みの統計情報を使ってデータを標準化する
func (s *StandardScaler) Transform(X mat.Matrix) (mat.Matrix, error) {
	if !s.IsFitted() {
		return nil, errors.NewNotFittedError("StandardScaler", "Transform")
	}

	r, c := X.Dims()
	if c != s.NFeatures {
		return nil, errors.NewDimensionError("StandardScaler.Transform", s.NFeatures, c, 1)
	}

	result := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			result.Set(i, j, (X.At(i, j)-s.Mean[j])/s.Scale[j])
		}
	}
	return result, nil
}

// FitTransform は学習と変換を一度に行う
func (s *StandardScaler) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

// InverseTransform は標準化されたデータを元のスケールに戻す
func (s *StandardScaler) InverseTransform(X mat.Matrix) (mat.Matrix, error) {
	if !s.IsFitted() {
		return nil, errors.NewNotFittedError("StandardScaler", "InverseTransform")
	}

	r, c := X.Dims()
	if c != s.NFeatures {
		return nil, errors.NewDimensionError("StandardScaler.InverseTransform", s.NFeatures, c, 1)
	}

	result := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			result.Set(i, j, X.At(i, j)*s.Scale[j]+s.Mean[j])
		}
	}
	return result, nil
}

// GetParams はスケーラーのパラメータを取得する
func (s *StandardScaler) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"with_mean": s.WithMean,
		"with_std":  s.WithStd,
		"strict":    s.Strict,
	}
}

// String はスケーラーの文字列表現を返す
func (s *StandardScaler) String() string {
	if !s.IsFitted() {
		return fmt.Sprintf("StandardScaler(with_mean=%t, with_std=%t, strict=%t)", s.WithMean, s.WithStd, s.Strict)
	}
	return fmt.Sprintf("StandardScaler(with_mean=%t, with_std=%t, strict=%t, n_features=%d)",
		s.WithMean, s.WithStd, s.Strict, s.NFeatures)
}
