package model_selection

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/YuminosukeSato/lassoridge/pkg/errors"
)

// LogSpace は lo から hi まで対数等間隔の n 点を返す（両端を含む）
// lo, hi は指数ではなく値そのもの
func LogSpace(lo, hi float64, n int) ([]float64, error) {
	if n < 2 {
		return nil, errors.NewValidationError("n", "must be >= 2", n)
	}
	if !(lo > 0) || !(hi > lo) || math.IsInf(hi, 0) {
		return nil, errors.NewValidationError("bounds", "require 0 < lo < hi < +Inf", [2]float64{lo, hi})
	}
	return floats.LogSpan(make([]float64, n), lo, hi), nil
}

// LinSpace は lo から hi まで等間隔の n 点を返す（両端を含む）
func LinSpace(lo, hi float64, n int) ([]float64, error) {
	if n < 2 {
		return nil, errors.NewValidationError("n", "must be >= 2", n)
	}
	if !(hi > lo) || math.IsInf(lo, 0) || math.IsInf(hi, 0) {
		return nil, errors.NewValidationError("bounds", "require finite lo < hi", [2]float64{lo, hi})
	}
	return floats.Span(make([]float64, n), lo, hi), nil
}

// WithZero は grid の先頭に 0 を加えた新しいスライスを返す（既に含む場合はコピーのみ）
func WithZero(grid []float64) []float64 {
	for _, v := range grid {
		if v == 0 {
			return append([]float64(nil), grid...)
		}
	}
	return append([]float64{0}, grid...)
}

// validateGrid は空でなく、すべて有限の非負値であることを確認する
func validateGrid(grid []float64) error {
	if len(grid) == 0 {
		return errors.NewValidationError("grid", "must not be empty", len(grid))
	}
	for _, v := range grid {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.NewValidationError("grid", "values must be finite and >= 0", v)
		}
	}
	return nil
}
