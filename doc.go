// Package lassoridge compares L1 (Lasso) and L2 (Ridge) regularized linear
// regression with a scikit-learn-like API for Go.
//
// Lasso is fitted with a hand-written coordinate-descent solver; Ridge and
// ordinary least squares use gonum's Cholesky and QR factorizations.
// A k-fold cross-validated sweep over the regularization strength shows how
// the two penalties trade fit against sparsity.
//
// # Quick Start
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/lassoridge/sklearn/linear_model"
//	    "gonum.org/v1/gonum/mat"
//	)
//
//	func main() {
//	    X := mat.NewDense(4, 2, []float64{0, 1, 1, 0, 2, 1, 3, 0})
//	    y := mat.NewDense(4, 1, []float64{0, 1, 2, 3})
//
//	    lasso := linear_model.NewLasso(linear_model.WithAlpha(0.1))
//	    if err := lasso.Fit(X, y); err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(lasso.Coef(), lasso.Intercept())
//	}
//
// # Packages
//
//   - sklearn/linear_model: Lasso, Ridge, LinearRegression, LassoPath
//   - sklearn/model_selection: KFold, TrainTestSplit, CrossValidate, RegularizationSweep
//   - sklearn/datasets: CSV loading (local or HTTP) and the Default feature set
//   - preprocessing: StandardScaler, PolynomialFeatures
//   - metrics: R², MSE, RMSE, MAE, MAPE, explained variance
//   - plot: sweep charts (PNG via gonum/plot, HTML via go-echarts) and tables
//   - core/model: estimator interfaces, state, JSON weight export
//   - core/parallel: row-chunked parallel loops
//   - pkg/errors, pkg/log: typed errors and zerolog-backed structured logging
//
// The regcompare command in cmd/regcompare wires these together.
package lassoridge
