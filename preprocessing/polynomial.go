package preprocessing

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/lassoridge/core/model"
	"github.com/YuminosukeSato/lassoridge/core/parallel"
	"github.com/YuminosukeSato/lassoridge/pkg/errors"
)

// PolynomialFeatures は多項式・交互作用特徴量を生成する
//
// 出力列の順序はscikit-learnと同じ（次数の昇順、各次数内は辞書順の重複組合せ）。
// 入力 [a, b] と Degree=2 なら [1, a, b, a^2, a*b, b^2] となる。
type PolynomialFeatures struct {
	state *model.StateManager

	// Degree は最大次数
	Degree int

	// InteractionOnly が true のとき同じ特徴量の累乗（a^2 など）を含めない
	InteractionOnly bool

	// IncludeBias が true のとき定数列 1 を先頭に含める (デフォルト: true)
	IncludeBias bool

	// combos は各出力列を構成する入力列インデックスの組
	combos [][]int
	nInput int
}

var (
	_ model.Transformer = (*StandardScaler)(nil)
	_ model.Transformer = (*PolynomialFeatures)(nil)
)

// PolynomialOption はPolynomialFeaturesの設定関数
type PolynomialOption func(*PolynomialFeatures)

// WithInteractionOnly は交互作用項のみを生成する
func WithInteractionOnly() PolynomialOption {
	return func(p *PolynomialFeatures) { p.InteractionOnly = true }
}

// WithoutBias は定数列を生成しない
func WithoutBias() PolynomialOption {
	return func(p *PolynomialFeatures) { p.IncludeBias = false }
}

// NewPolynomialFeatures は新しいPolynomialFeaturesを作成する
//
// 使用例:
//
//	poly := preprocessing.NewPolynomialFeatures(2, preprocessing.WithoutBias())
//	XPoly, err := poly.FitTransform(X)
//	names, _ := poly.FeatureNames([]string{"balance", "income"})
func NewPolynomialFeatures(degree int, opts ...PolynomialOption) *PolynomialFeatures {
	p := &PolynomialFeatures{
		state:       model.NewStateManager(),
		Degree:      degree,
		IncludeBias: true,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// IsFitted returns whether Fit has succeeded.
func (p *PolynomialFeatures) IsFitted() bool {
	return p.state.IsFitted()
}

// Fit は入力の列数から出力列の組合せを決定する
func (p *PolynomialFeatures) Fit(X mat.Matrix) error {
	p.state.Reset()

	if p.Degree < 1 {
		return errors.NewValidationError("degree", "must be >= 1", p.Degree)
	}
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("PolynomialFeatures.Fit", "empty data", errors.ErrEmptyData)
	}

	var combos [][]int
	if p.IncludeBias {
		combos = append(combos, []int{})
	}
	for d := 1; d <= p.Degree; d++ {
		combos = appendCombinations(combos, c, d, !p.InteractionOnly)
	}

	p.combos = combos
	p.nInput = c
	p.state.SetDimensions(c, r)
	p.state.SetFitted()
	return nil
}

// appendCombinations は 0..n-1 から k 個選ぶ組合せ（repeat なら重複あり）を辞書順に追加する
func appendCombinations(dst [][]int, n, k int, repeat bool) [][]int {
	if k > n && !repeat {
		return dst
	}
	idx := make([]int, k)
	if !repeat {
		for i := range idx {
			idx[i] = i
		}
	}
	for {
		dst = append(dst, append([]int(nil), idx...))

		// 右端から増やせる位置を探す
		i := k - 1
		for ; i >= 0; i-- {
			limit := n - 1
			if !repeat {
				limit = n - k + i
			}
			if idx[i] < limit {
				break
			}
		}
		if i < 0 {
			return dst
		}
		idx[i]++
		for j := i + 1; j < k; j++ {
			if repeat {
				idx[j] = idx[i]
			} else {
				idx[j] = idx[j-1] + 1
			}
		}
	}
}

// NOutputFeatures は出力列数を返す
func (p *PolynomialFeatures) NOutputFeatures() int {
	return len(p.combos)
}

// Transform は多項式特徴量を計算する
// 行数が多い場合は行単位で並列に計算する
func (p *PolynomialFeatures) Transform(X mat.Matrix) (mat.Matrix, error) {
	if !p.IsFitted() {
		return nil, errors.NewNotFittedError("PolynomialFeatures", "Transform")
	}
	r, c := X.Dims()
	if c != p.nInput {
		return nil, errors.NewDimensionError("PolynomialFeatures.Transform", p.nInput, c, 1)
	}

	out := mat.NewDense(r, len(p.combos), nil)
	combos := p.combos
	parallel.ParallelizeWithThreshold(r, parallel.DefaultThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			row := out.RawRowView(i)
			for k, combo := range combos {
				v := 1.0
				for _, j := range combo {
					v *= X.At(i, j)
				}
				row[k] = v
			}
		}
	})
	return out, nil
}

// FitTransform は学習と変換を一度に行う
func (p *PolynomialFeatures) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := p.Fit(X); err != nil {
		return nil, err
	}
	return p.Transform(X)
}

// FeatureNames は出力列の名前を返す
// input が nil の場合は x0, x1, ... を使う。名前の形式は "a", "a^2", "a*b", "a^2*b"
func (p *PolynomialFeatures) FeatureNames(input []string) ([]string, error) {
	if !p.IsFitted() {
		return nil, errors.NewNotFittedError("PolynomialFeatures", "FeatureNames")
	}
	if input == nil {
		input = make([]string, p.nInput)
		for j := range input {
			input[j] = fmt.Sprintf("x%d", j)
		}
	}
	if len(input) != p.nInput {
		return nil, errors.NewDimensionError("PolynomialFeatures.FeatureNames", p.nInput, len(input), 1)
	}

	names := make([]string, len(p.combos))
	for k, combo := range p.combos {
		if len(combo) == 0 {
			names[k] = "1"
			continue
		}
		var parts []string
		for i := 0; i < len(combo); {
			j := i
			for j < len(combo) && combo[j] == combo[i] {
				j++
			}
			if power := j - i; power > 1 {
				parts = append(parts, fmt.Sprintf("%s^%d", input[combo[i]], power))
			} else {
				parts = append(parts, input[combo[i]])
			}
			i = j
		}
		names[k] = strings.Join(parts, "*")
	}
	return names, nil
}

// String はPolynomialFeaturesの文字列表現を返す
func (p *PolynomialFeatures) String() string {
	return fmt.Sprintf("PolynomialFeatures(degree=%d, interaction_only=%t, include_bias=%t)",
		p.Degree, p.InteractionOnly, p.IncludeBias)
}
