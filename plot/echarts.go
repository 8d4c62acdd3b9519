package plot

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/YuminosukeSato/lassoridge/pkg/errors"
	"github.com/YuminosukeSato/lassoridge/sklearn/model_selection"
)

// SweepHTML はSweepPNGと同じ図をインタラクティブなHTMLとして w に書き出す
func SweepHTML(result *model_selection.SweepResult, w io.Writer) error {
	if err := checkResult("SweepHTML", result); err != nil {
		return err
	}

	xType := "value"
	if allPositive(result.Lambdas) {
		xType = "log"
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Lasso vs Ridge", Width: "900px", Height: "540px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Lasso vs Ridge",
			Subtitle: fmt.Sprintf("scoring=%s folds=%d ols=%.4f", result.Scoring, result.Folds, result.OLSScore),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Right: "10%"}),
		charts.WithXAxisOpts(opts.XAxis{Type: xType, Name: "lambda", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: "mean CV score", Scale: opts.Bool(true)}),
	)
	line.AddSeries("Lasso", lineData(result.Lambdas, result.LassoScores)).
		AddSeries("Ridge", lineData(result.Lambdas, result.RidgeScores))

	if err := line.Render(w); err != nil {
		return errors.Wrap(err, "render sweep chart")
	}
	return nil
}

func lineData(xs, ys []float64) []opts.LineData {
	data := make([]opts.LineData, len(xs))
	for i := range xs {
		data[i] = opts.LineData{Value: []interface{}{xs[i], ys[i]}}
	}
	return data
}
