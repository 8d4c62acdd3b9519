// Package model_selection provides k-fold splitting, cross-validation and the
// Lasso/Ridge regularization sweep.
package model_selection

import (
	"math/rand/v2"

	"github.com/YuminosukeSato/lassoridge/pkg/errors"
)

// Splitter defines interface for cross-validation splitters
type Splitter interface {
	Split(nSamples int) ([]Fold, error)
	GetNSplits() int
}

// Fold represents a single fold in cross-validation
type Fold struct {
	TrainIndices []int
	TestIndices  []int
}

// KFold implements k-fold cross-validation splitter
//
// 各サンプルはちょうど1つのテストフォールドに入る。n が k で割り切れない場合は
// 先頭の n%k 個のフォールドが1つ多くなる（scikit-learn と同じ）。
type KFold struct {
	NSplits    int
	Shuffle    bool
	RandomSeed uint64
}

// NewKFold creates a new k-fold splitter
func NewKFold(nSplits int, shuffle bool, randomSeed uint64) *KFold {
	return &KFold{
		NSplits:    nSplits,
		Shuffle:    shuffle,
		RandomSeed: randomSeed,
	}
}

// GetNSplits returns the number of splits
func (kf *KFold) GetNSplits() int {
	return kf.NSplits
}

// Split generates train/test indices for each fold
// 訓練インデックスは昇順に並ぶ
func (kf *KFold) Split(nSamples int) ([]Fold, error) {
	if kf.NSplits < 2 {
		return nil, errors.NewValidationError("n_splits", "must be >= 2", kf.NSplits)
	}
	if kf.NSplits > nSamples {
		return nil, errors.NewValidationError("n_splits", "cannot be greater than the number of samples", kf.NSplits)
	}

	indices := make([]int, nSamples)
	for i := range indices {
		indices[i] = i
	}
	if kf.Shuffle {
		r := rand.New(rand.NewPCG(kf.RandomSeed, kf.RandomSeed))
		r.Shuffle(len(indices), func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})
	}

	folds := make([]Fold, kf.NSplits)
	foldSize := nSamples / kf.NSplits
	remainder := nSamples % kf.NSplits
	inTest := make([]bool, nSamples)

	current := 0
	for k := range folds {
		testSize := foldSize
		if k < remainder {
			testSize++
		}
		test := append([]int(nil), indices[current:current+testSize]...)
		for _, idx := range test {
			inTest[idx] = true
		}

		train := make([]int, 0, nSamples-testSize)
		for idx := 0; idx < nSamples; idx++ {
			if !inTest[idx] {
				train = append(train, idx)
			}
		}
		for _, idx := range test {
			inTest[idx] = false
		}

		folds[k] = Fold{TrainIndices: train, TestIndices: test}
		current += testSize
	}
	return folds, nil
}
