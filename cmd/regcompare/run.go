package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/lassoridge/core/model"
	"github.com/YuminosukeSato/lassoridge/internal/cfg"
	"github.com/YuminosukeSato/lassoridge/pkg/errors"
	"github.com/YuminosukeSato/lassoridge/pkg/log"
	"github.com/YuminosukeSato/lassoridge/plot"
	"github.com/YuminosukeSato/lassoridge/preprocessing"
	"github.com/YuminosukeSato/lassoridge/sklearn/datasets"
	"github.com/YuminosukeSato/lassoridge/sklearn/linear_model"
	"github.com/YuminosukeSato/lassoridge/sklearn/model_selection"
)

// run はフラグを解釈して比較とスイープを実行する。結果の表は stdout、ログは stderr に書く
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("regcompare", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		configPath = fs.String("config", "", "YAML config file (default: $CONFIG_FILE)")
		dataPath   = fs.String("data", "", "local CSV path (takes precedence over the URL)")
		dataURL    = fs.String("url", "", "CSV URL to fetch when -data is empty")
		target     = fs.String("target", "", "target column")
		lambda     = fs.Float64("lambda", 0, "regularization strength for the single fit")
		folds      = fs.Int("folds", 0, "number of cross-validation folds")
		gridMin    = fs.Float64("grid-min", 0, "smallest positive lambda in the sweep")
		gridMax    = fs.Float64("grid-max", 0, "largest lambda in the sweep")
		gridN      = fs.Int("grid-n", 0, "number of log-spaced lambdas")
		pngPath    = fs.String("png", "", "sweep plot output (.png, .svg, .pdf)")
		htmlPath   = fs.String("html", "", "interactive sweep chart output")
		weights    = fs.String("weights-json", "", "export fitted coefficients as JSON")
		logLevel   = fs.String("log-level", "", "log level: debug, info, warn, error")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	s, err := cfg.Read(*configPath)
	if err != nil {
		return err
	}
	// フラグで指定された値だけ上書きする
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "data":
			s.DataPath = *dataPath
		case "url":
			s.DataURL = *dataURL
		case "target":
			s.Target = *target
		case "lambda":
			s.Lambda = *lambda
		case "folds":
			s.Folds = *folds
		case "grid-min":
			s.GridMin = *gridMin
		case "grid-max":
			s.GridMax = *gridMax
		case "grid-n":
			s.GridN = *gridN
		case "png":
			s.PNGPath = *pngPath
		case "html":
			s.HTMLPath = *htmlPath
		case "weights-json":
			s.WeightsPath = *weights
		case "log-level":
			s.LogLevel = *logLevel
		}
	})
	if err := cfg.Validate(&s); err != nil {
		return err
	}
	if err := log.SetupLogger(s.LogLevel, stderr, s.LogConsole); err != nil {
		return err
	}
	logger := log.GetLoggerWithName("regcompare")

	table, err := loadTable(ctx, s)
	if err != nil {
		logger.Error("load dataset failed", err)
		return err
	}
	X, y, names, err := datasets.BuildDefaultFeatures(table, s.Target)
	if err != nil {
		logger.Error("build features failed", err)
		return err
	}

	lasso, ridge, err := compare(stdout, s, X, y, names)
	if err != nil {
		logger.Error("fixed lambda fit failed", err, log.RegularizationKey, s.Lambda)
		return err
	}

	if s.WeightsPath != "" {
		if err := saveWeights(s.WeightsPath, lasso, ridge); err != nil {
			return err
		}
		logger.Info("weights exported", "path", s.WeightsPath)
	}

	result, err := sweep(s, X, y)
	if err != nil {
		logger.Error("sweep failed", err)
		return err
	}
	fmt.Fprintf(stdout, "\n%d-fold cross-validation (%s) sweep=%s\n", result.Folds, result.Scoring, result.ID)
	if err := plot.SweepTable(stdout, result); err != nil {
		return err
	}

	if s.PNGPath != "" {
		if err := plot.SweepPNG(result, s.PNGPath); err != nil {
			return err
		}
	}
	if s.HTMLPath != "" {
		if err := writeHTML(s.HTMLPath, result); err != nil {
			return err
		}
	}
	return nil
}

func loadTable(ctx context.Context, s cfg.Settings) (*datasets.Table, error) {
	if s.DataPath != "" {
		return datasets.LoadCSV(s.DataPath)
	}
	return datasets.FetchCSV(ctx, s.DataURL, datasets.FetchOptions{
		Timeout: s.FetchTimeout,
		Retries: s.FetchRetries,
	})
}

// compare は訓練・テストに分割し、固定λでLassoとRidgeを学習してR²と係数を表示する
func compare(w io.Writer, s cfg.Settings, X, y *mat.Dense, names []string) (*linear_model.Lasso, *linear_model.Ridge, error) {
	split, err := model_selection.TrainTestSplit(X, y, s.TestSize, s.RandomSeed)
	if err != nil {
		return nil, nil, err
	}

	scaler := preprocessing.NewStandardScaler(preprocessing.WithStrict())
	XTrain, err := scaler.FitTransform(split.XTrain)
	if err != nil {
		return nil, nil, err
	}
	XTest, err := scaler.Transform(split.XTest)
	if err != nil {
		return nil, nil, err
	}

	lasso := linear_model.NewLasso(append(lassoOptions(s),
		linear_model.WithAlpha(s.Lambda),
		linear_model.WithFeatureNames(names),
	)...)
	if err := lasso.Fit(XTrain, split.YTrain); err != nil {
		return nil, nil, err
	}
	ridge := linear_model.NewRidge(
		linear_model.WithRidgeAlpha(s.Lambda),
		linear_model.WithRidgeFeatureNames(names),
	)
	if err := ridge.Fit(XTrain, split.YTrain); err != nil {
		return nil, nil, err
	}

	type scored interface {
		Score(X, y mat.Matrix) (float64, error)
	}
	fmt.Fprintf(w, "lambda=%g train=%d test=%d\n", s.Lambda, len(split.TrainIndices), len(split.TestIndices))
	for _, m := range []struct {
		name string
		est  scored
	}{{"Ridge", ridge}, {"Lasso", lasso}} {
		train, err := m.est.Score(XTrain, split.YTrain)
		if err != nil {
			return nil, nil, err
		}
		test, err := m.est.Score(XTest, split.YTest)
		if err != nil {
			return nil, nil, err
		}
		fmt.Fprintf(w, "%-5s R^2 train=%.4f test=%.4f\n", m.name, train, test)
	}
	fmt.Fprintf(w, "Lasso converged in %d iterations\n\n", lasso.NIter())

	if err := plot.CoefficientTable(w, names, lasso.Coef(), ridge.Coef()); err != nil {
		return nil, nil, err
	}
	return lasso, ridge, nil
}

func lassoOptions(s cfg.Settings) []linear_model.LassoOption {
	return []linear_model.LassoOption{
		linear_model.WithTol(s.Tol),
		linear_model.WithMaxIter(s.MaxIter),
		linear_model.WithSelection(s.Selection),
		linear_model.WithRandomState(s.RandomSeed),
	}
}

func sweep(s cfg.Settings, X, y mat.Matrix) (*model_selection.SweepResult, error) {
	grid, err := model_selection.LogSpace(s.GridMin, s.GridMax, s.GridN)
	if err != nil {
		return nil, err
	}
	if s.IncludeZero {
		grid = model_selection.WithZero(grid)
	}

	opts := []model_selection.Option{
		model_selection.WithScoring(s.Scoring),
		model_selection.WithLassoOptions(lassoOptions(s)...),
	}
	if s.Shuffle {
		opts = append(opts, model_selection.WithShuffle(s.RandomSeed))
	}
	return model_selection.RegularizationSweep(grid, s.Folds, X, y, opts...)
}

// saveWeights は path の拡張子の前にモデル名を付けて2つのファイルに書き出す
// weights.json → weights_lasso.json, weights_ridge.json
func saveWeights(path string, lasso *linear_model.Lasso, ridge *linear_model.Ridge) error {
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	if ext == "" {
		ext = ".json"
	}
	for suffix, m := range map[string]model.WeightExporter{"lasso": lasso, "ridge": ridge} {
		if err := model.SaveWeights(m, fmt.Sprintf("%s_%s%s", base, suffix, ext)); err != nil {
			return err
		}
	}
	return nil
}

func writeHTML(path string, result *model_selection.SweepResult) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return plot.SweepHTML(result, f)
}
