package model

import (
	"io"
	"os"

	"github.com/YuminosukeSato/lassoridge/pkg/errors"
)

// SaveWeights は学習済みモデルの重みをJSONファイルに保存する
//
// 使用例:
//
//	lasso := linear_model.NewLasso(linear_model.WithAlpha(0.1))
//	// ... 学習 ...
//	err := model.SaveWeights(lasso, "lasso.json")
func SaveWeights(m WeightExporter, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", filename)
	}
	defer file.Close()

	return SaveWeightsToWriter(m, file)
}

// SaveWeightsToWriter は重みをio.Writerに書き出す
func SaveWeightsToWriter(m WeightExporter, w io.Writer) error {
	weights, err := m.ExportWeights()
	if err != nil {
		return err
	}
	data, err := weights.ToJSON()
	if err != nil {
		return errors.Wrap(err, "failed to encode weights")
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return errors.Wrap(err, "failed to write weights")
	}
	return nil
}

// LoadWeights はJSONファイルから重みを読み込み、モデルに設定する
func LoadWeights(m WeightExporter, filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return errors.Wrapf(err, "failed to open %s", filename)
	}
	defer file.Close()

	return LoadWeightsFromReader(m, file)
}

// LoadWeightsFromReader はio.Readerから重みを読み込む
func LoadWeightsFromReader(m WeightExporter, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return errors.Wrap(err, "failed to read weights")
	}
	var weights ModelWeights
	if err := weights.FromJSON(data); err != nil {
		return errors.Wrap(err, "failed to decode weights")
	}
	if err := weights.Validate(); err != nil {
		return err
	}
	return m.ImportWeights(&weights)
}
