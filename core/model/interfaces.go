package model

import (
	"gonum.org/v1/gonum/mat"
)

// Scorer is the interface for models that can compute a score.
type Scorer interface {
	// Score returns the coefficient of determination R^2 of the prediction.
	Score(X mat.Matrix, y mat.Matrix) (float64, error)
}

// Regressor combines the interfaces every regression estimator implements.
// Cross-validation only depends on this.
type Regressor interface {
	Fitter
	Predictor
	Scorer
}

// LinearRegressor is a Regressor that exposes its coefficients.
type LinearRegressor interface {
	Regressor
	LinearModel
}

// ParamEstimator exposes scikit-learn style hyperparameter access.
type ParamEstimator interface {
	// GetParams returns the model's hyperparameters.
	GetParams() map[string]interface{}

	// SetParams sets the model's hyperparameters. Unknown keys are ignored.
	SetParams(params map[string]interface{}) error
}

// WeightExporter は重みをエクスポート可能なモデルのインターフェース
type WeightExporter interface {
	// ExportWeights はモデルの重みをエクスポート
	ExportWeights() (*ModelWeights, error)

	// ImportWeights はモデルの重みをインポート
	ImportWeights(weights *ModelWeights) error
}
