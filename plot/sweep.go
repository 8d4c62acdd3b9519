// Package plot は正則化スイープの結果を図と表にする
//
// PNG は gonum/plot、HTML は go-echarts で描画する。
package plot

import (
	"fmt"
	"image/color"

	gonumplot "gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/YuminosukeSato/lassoridge/pkg/errors"
	"github.com/YuminosukeSato/lassoridge/pkg/log"
	"github.com/YuminosukeSato/lassoridge/sklearn/model_selection"
)

var (
	lassoColor = color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff}
	ridgeColor = color.RGBA{R: 0xff, G: 0x7f, B: 0x0e, A: 0xff}
	olsColor   = color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xff}
)

// 図のサイズ
const (
	pngWidth  = 8 * vg.Inch
	pngHeight = 5 * vg.Inch
)

// SweepPNG はλと平均CVスコアの折れ線図を path に保存する
// 拡張子で形式が決まる (.png, .svg, .pdf)。λ がすべて正で2種類以上あれば x 軸は対数
func SweepPNG(result *model_selection.SweepResult, path string) error {
	if err := checkResult("SweepPNG", result); err != nil {
		return err
	}

	return errors.SafeExecute("plot.SweepPNG", func() error {
		p := gonumplot.New()
		p.Title.Text = "Lasso vs Ridge"
		p.X.Label.Text = "lambda"
		p.Y.Label.Text = fmt.Sprintf("mean CV score (%s, %d folds)", result.Scoring, result.Folds)
		p.Add(plotter.NewGrid())

		logX := allPositive(result.Lambdas) && distinct(result.Lambdas)
		if logX {
			p.X.Scale = gonumplot.LogScale{}
			p.X.Tick.Marker = gonumplot.LogTicks{Prec: -1}
		}

		lasso, err := plotter.NewLine(points(result.Lambdas, result.LassoScores))
		if err != nil {
			return errors.Wrap(err, "lasso line")
		}
		lasso.Color = lassoColor
		lasso.Width = vg.Points(1.5)

		ridge, err := plotter.NewLine(points(result.Lambdas, result.RidgeScores))
		if err != nil {
			return errors.Wrap(err, "ridge line")
		}
		ridge.Color = ridgeColor
		ridge.Width = vg.Points(1.5)

		p.Add(lasso, ridge)
		p.Legend.Add("Lasso", lasso)
		p.Legend.Add("Ridge", ridge)

		lo, hi := result.Lambdas[0], result.Lambdas[len(result.Lambdas)-1]
		if lo != hi {
			ols, err := plotter.NewLine(plotter.XYs{{X: lo, Y: result.OLSScore}, {X: hi, Y: result.OLSScore}})
			if err != nil {
				return errors.Wrap(err, "ols line")
			}
			ols.Color = olsColor
			ols.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
			p.Add(ols)
			p.Legend.Add("OLS", ols)
		}

		p.Legend.Top = false
		p.Legend.Left = true
		p.Legend.XOffs = vg.Points(10)
		p.Legend.YOffs = vg.Points(10)
		p.Legend.ThumbnailWidth = vg.Points(20)

		if err := p.Save(pngWidth, pngHeight, path); err != nil {
			return errors.Wrapf(err, "save %s", path)
		}
		log.GetLoggerWithName("plot").Info("sweep plot saved",
			"path", path,
			"log_x", logX,
			"points", len(result.Lambdas),
		)
		return nil
	})
}

func points(xs, ys []float64) plotter.XYs {
	pts := make(plotter.XYs, len(xs))
	for i := range xs {
		pts[i].X = xs[i]
		pts[i].Y = ys[i]
	}
	return pts
}

func allPositive(xs []float64) bool {
	for _, x := range xs {
		if x <= 0 {
			return false
		}
	}
	return true
}

// distinct は2種類以上の値を含むかを返す。1点だけの対数軸は範囲が負になる
func distinct(xs []float64) bool {
	for _, x := range xs {
		if x != xs[0] {
			return true
		}
	}
	return false
}

// checkResult はλとスコアの長さが揃っているかを確認する
func checkResult(op string, r *model_selection.SweepResult) error {
	if r == nil || len(r.Lambdas) == 0 {
		return errors.NewValueError(op, "empty sweep result")
	}
	n := len(r.Lambdas)
	if len(r.LassoScores) != n {
		return errors.NewDimensionError(op, n, len(r.LassoScores), 0)
	}
	if len(r.RidgeScores) != n {
		return errors.NewDimensionError(op, n, len(r.RidgeScores), 0)
	}
	return nil
}
