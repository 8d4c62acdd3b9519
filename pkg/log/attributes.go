package log

// Model and operation context.
const (
	// ModelNameKey identifies the estimator type, e.g. "Lasso", "Ridge".
	ModelNameKey = "model.name"

	// OperationKey specifies the operation being performed.
	// Standard values: "fit", "predict", "transform", "score", "sweep".
	OperationKey = "ml.operation"

	// ComponentKey identifies which package is logging.
	ComponentKey = "ml.component"

	// PhaseKey indicates the phase, e.g. "training", "validation".
	PhaseKey = "ml.phase"
)

// Data shape.
const (
	SamplesKey  = "data.samples"
	FeaturesKey = "data.features"

	// SourceKey records where a dataset was loaded from (URL or path).
	SourceKey = "data.source"

	// DroppedRowsKey records how many rows were removed during cleaning.
	DroppedRowsKey = "data.dropped_rows"
)

// Training and evaluation.
const (
	DurationMsKey = "perf.duration_ms"
	R2ScoreKey    = "metrics.r2_score"
	MSEKey        = "metrics.mse"

	// IterationKey records the current coordinate-descent pass.
	IterationKey = "training.iteration"

	// MaxDeltaKey records the largest coefficient change in a pass.
	MaxDeltaKey = "training.max_delta"

	// NonZeroKey records how many coefficients are non-zero.
	NonZeroKey = "training.nonzero"

	// FoldKey records the cross-validation fold index.
	FoldKey = "cv.fold"

	// FoldsKey records the number of cross-validation folds.
	FoldsKey = "cv.folds"
)

// Hyperparameters.
const (
	// RegularizationKey records the regularization strength.
	RegularizationKey = "hyperparams.regularization"

	// SelectionKey records the coordinate selection policy ("cyclic", "random").
	SelectionKey = "hyperparams.selection"

	// TolKey records the convergence tolerance.
	TolKey = "hyperparams.tol"

	// RandomSeedKey records the random seed for reproducibility.
	RandomSeedKey = "config.random_seed"
)

// Error context.
const (
	ErrorCodeKey = "error.code"

	// StacktraceKey carries the stack extracted from cockroachdb/errors.
	StacktraceKey = "error.stacktrace"
)

// Standard values.
const (
	OperationFit     = "fit"
	OperationPredict = "predict"
	OperationScore   = "score"
	OperationSweep   = "sweep"

	PhaseTraining      = "training"
	PhaseValidation    = "validation"
	PhasePreprocessing = "preprocessing"

	ErrorConvergence  = "CONVERGENCE_FAILURE"
	ErrorZeroVariance = "ZERO_VARIANCE"
)
