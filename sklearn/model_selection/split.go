package model_selection

import (
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/lassoridge/pkg/errors"
)

// TakeRows は指定した行を順に取り出した新しい行列を返す
func TakeRows(m mat.Matrix, indices []int) *mat.Dense {
	_, cols := m.Dims()
	out := mat.NewDense(len(indices), cols, nil)
	for i, idx := range indices {
		for j := 0; j < cols; j++ {
			out.Set(i, j, m.At(idx, j))
		}
	}
	return out
}

// Split is the result of TrainTestSplit.
type Split struct {
	XTrain, XTest *mat.Dense
	YTrain, YTest *mat.Dense

	TrainIndices []int
	TestIndices  []int
}

// TrainTestSplit はデータをシャッフルして訓練用とテスト用に分割する
// testSize は (0, 1) の割合で、テスト行数は ceil(n·testSize)（scikit-learn と同じ）
func TrainTestSplit(X, y mat.Matrix, testSize float64, seed uint64) (*Split, error) {
	n, _ := X.Dims()
	yRows, _ := y.Dims()
	if n != yRows {
		return nil, errors.NewDimensionError("TrainTestSplit", n, yRows, 0)
	}
	if !(testSize > 0 && testSize < 1) {
		return nil, errors.NewValidationError("test_size", "must be in (0, 1)", testSize)
	}
	nTest := int(math.Ceil(float64(n) * testSize))
	if nTest < 1 || nTest >= n {
		return nil, errors.NewValueError("TrainTestSplit",
			"test_size leaves an empty train or test set for this number of samples")
	}

	r := rand.New(rand.NewPCG(seed, seed))
	perm := r.Perm(n)
	test := append([]int(nil), perm[:nTest]...)
	train := append([]int(nil), perm[nTest:]...)
	sort.Ints(test)
	sort.Ints(train)

	return &Split{
		XTrain:       TakeRows(X, train),
		XTest:        TakeRows(X, test),
		YTrain:       TakeRows(y, train),
		YTest:        TakeRows(y, test),
		TrainIndices: train,
		TestIndices:  test,
	}, nil
}
