package datasets

import (
	"slices"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/lassoridge/pkg/errors"
	"github.com/YuminosukeSato/lassoridge/pkg/log"
	"github.com/YuminosukeSato/lassoridge/preprocessing"
)

// DefaultColumns はDefaultデータセットに必要な列
var DefaultColumns = []string{"default", "student", "balance", "income"}

// DefaultEngineered は基本列に追加する2次の項
// 目的変数を含む項は使わない
var DefaultEngineered = []string{"balance*income", "student*balance", "balance^2", "income^2"}

// indexColumns はCSV書き出し時に付く行番号の列名
var indexColumns = []string{"", "Unnamed: 0"}

// BuildDefaultFeatures はDefaultデータセットから説明変数と目的変数を作る
//
// 手順:
//  1. 行番号の列を削除
//  2. 必要な列に欠損がある行を削除
//  3. Yes/No を 1/0 に変換
//  4. 目的変数以外の基本列に DefaultEngineered の項を追加
//
// 戻り値の X は n×p、y は n×1、names は X の列名。table は変更される。
func BuildDefaultFeatures(table *Table, target string) (*mat.Dense, *mat.Dense, []string, error) {
	const op = "BuildDefaultFeatures"
	logger := log.GetLoggerWithName("datasets")

	required := append([]string(nil), DefaultColumns...)
	if !slices.Contains(required, target) {
		required = append(required, target)
	}
	var missing []string
	for _, c := range required {
		if !table.Has(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, nil, nil, errors.NewMissingColumnError(op, missing...)
	}

	for _, c := range indexColumns {
		table.DropColumn(c)
	}
	dropped, err := table.DropMissing(required...)
	if err != nil {
		return nil, nil, nil, err
	}
	if table.NRows() == 0 {
		return nil, nil, nil, errors.Wrap(errors.ErrEmptyData, op)
	}

	var base []string
	for _, c := range DefaultColumns {
		if c != target {
			base = append(base, c)
		}
	}

	n := table.NRows()
	B := mat.NewDense(n, len(base), nil)
	for j, c := range base {
		v, err := table.Float(c)
		if err != nil {
			return nil, nil, nil, err
		}
		B.SetCol(j, v)
	}
	yv, err := table.Float(target)
	if err != nil {
		return nil, nil, nil, err
	}

	poly := preprocessing.NewPolynomialFeatures(2, preprocessing.WithoutBias())
	P, err := poly.FitTransform(B)
	if err != nil {
		return nil, nil, nil, errors.Wrap(err, op)
	}
	polyNames, err := poly.FeatureNames(base)
	if err != nil {
		return nil, nil, nil, errors.Wrap(err, op)
	}

	names := append([]string(nil), base...)
	cols := make([]int, 0, len(base)+len(DefaultEngineered))
	for j := range base {
		cols = append(cols, j)
	}
	for _, want := range DefaultEngineered {
		for j, got := range polyNames {
			if got == want {
				names = append(names, want)
				cols = append(cols, j)
				break
			}
		}
	}

	X := mat.NewDense(n, len(cols), nil)
	for k, j := range cols {
		X.SetCol(k, mat.Col(nil, j, P))
	}
	y := mat.NewDense(n, 1, yv)

	logger.Info("features built",
		log.SamplesKey, n,
		log.FeaturesKey, len(names),
		log.DroppedRowsKey, dropped,
		"target", target,
	)
	return X, y, names, nil
}
