package plot

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/YuminosukeSato/lassoridge/pkg/errors"
	"github.com/YuminosukeSato/lassoridge/sklearn/model_selection"
)

// CoefficientTable は特徴量ごとのLasso/Ridge係数を整列した表で書き出す
// Lasso で 0 になった係数には "*" を付ける
func CoefficientTable(w io.Writer, names []string, lasso, ridge []float64) error {
	if len(lasso) != len(names) {
		return errors.NewDimensionError("CoefficientTable", len(names), len(lasso), 0)
	}
	if len(ridge) != len(names) {
		return errors.NewDimensionError("CoefficientTable", len(names), len(ridge), 0)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "feature\tlasso\tridge\t")
	for j, name := range names {
		mark := ""
		if lasso[j] == 0 {
			mark = " *"
		}
		fmt.Fprintf(tw, "%s\t%.6f%s\t%.6f\t\n", name, lasso[j], mark, ridge[j])
	}
	return tw.Flush()
}

// SweepTable はスイープ結果をλごとに1行で書き出す
func SweepTable(w io.Writer, result *model_selection.SweepResult) error {
	if err := checkResult("SweepTable", result); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "lambda\tlasso\tlasso_std\tnonzero\tridge\tridge_std\t")
	for i, lambda := range result.Lambdas {
		fmt.Fprintf(tw, "%.6g\t%.4f\t%.4f\t%s\t%.4f\t%.4f\t\n",
			lambda,
			result.LassoScores[i], at(result.LassoStd, i),
			nonZero(result.LassoNonZero, i),
			result.RidgeScores[i], at(result.RidgeStd, i),
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	bestLambda, bestLasso := result.BestLasso()
	bestRidgeLambda, bestRidge := result.BestRidge()
	_, err := fmt.Fprintf(w, "best lasso: lambda=%g score=%.4f | best ridge: lambda=%g score=%.4f | ols: %.4f\n",
		bestLambda, bestLasso, bestRidgeLambda, bestRidge, result.OLSScore)
	return err
}

func at(xs []float64, i int) float64 {
	if i < len(xs) {
		return xs[i]
	}
	return 0
}

func nonZero(xs []int, i int) string {
	if i < len(xs) {
		return fmt.Sprint(xs[i])
	}
	return "-"
}
