// Package cfg loads the experiment settings for cmd/regcompare.
package cfg

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/YuminosukeSato/lassoridge/pkg/errors"
)

// envPrefix is prepended to every environment override.
const envPrefix = "LASSORIDGE_"

type Settings struct {
	DataURL      string
	DataPath     string
	Target       string
	FetchTimeout time.Duration
	FetchRetries int
	TestSize     float64

	Lambda     float64
	Selection  string
	Tol        float64
	MaxIter    int
	RandomSeed uint64

	Folds       int
	GridMin     float64
	GridMax     float64
	GridN       int
	IncludeZero bool
	Shuffle     bool
	Scoring     string

	PNGPath     string
	HTMLPath    string
	WeightsPath string

	LogLevel   string
	LogConsole bool
}

type ConfigFile struct {
	Data struct {
		URL          string  `yaml:"url"`
		Path         string  `yaml:"path"`
		Target       string  `yaml:"target"`
		FetchTimeout string  `yaml:"fetchTimeout"`
		FetchRetries int     `yaml:"fetchRetries"`
		TestSize     float64 `yaml:"testSize"`
	} `yaml:"data"`

	Model struct {
		Lambda     *float64 `yaml:"lambda"`
		Selection  string   `yaml:"selection"`
		Tol        float64  `yaml:"tol"`
		MaxIter    int      `yaml:"maxIter"`
		RandomSeed uint64   `yaml:"randomSeed"`
	} `yaml:"model"`

	Sweep struct {
		Folds       int     `yaml:"folds"`
		GridMin     float64 `yaml:"gridMin"`
		GridMax     float64 `yaml:"gridMax"`
		GridN       int     `yaml:"gridN"`
		IncludeZero *bool   `yaml:"includeZero"`
		Shuffle     bool    `yaml:"shuffle"`
		Scoring     string  `yaml:"scoring"`
	} `yaml:"sweep"`

	Output struct {
		PNG     string `yaml:"png"`
		HTML    string `yaml:"html"`
		Weights string `yaml:"weights"`
	} `yaml:"output"`

	Log struct {
		Level   string `yaml:"level"`
		Console bool   `yaml:"console"`
	} `yaml:"log"`
}

// Defaults returns the settings used when neither a file nor the environment
// provides a value.
func Defaults() Settings {
	return Settings{
		Target:       "default",
		FetchTimeout: 30 * time.Second,
		FetchRetries: 2,
		TestSize:     0.25,
		Lambda:       0.01,
		Selection:    "cyclic",
		Tol:          1e-4,
		MaxIter:      10000,
		RandomSeed:   42,
		Folds:        5,
		GridMin:      1e-4,
		GridMax:      1,
		GridN:        30,
		IncludeZero:  true,
		Scoring:      "r2",
		PNGPath:      "lasso_ridge_sweep.png",
		LogLevel:     "info",
	}
}

// Load reads .env (if present), then the YAML file at path (or $CONFIG_FILE),
// then applies LASSORIDGE_* environment overrides and validates the result.
func Load(path string) (Settings, error) {
	return load(path, ".env")
}

// Read is Load without validation. Callers that apply further overrides
// (command-line flags) call Validate themselves.
func Read(path string) (Settings, error) {
	return read(path, ".env")
}

func load(path, dotenv string) (Settings, error) {
	settings, err := read(path, dotenv)
	if err != nil {
		return Settings{}, err
	}
	if err := Validate(&settings); err != nil {
		return Settings{}, errors.Wrap(err, "configuration validation failed")
	}
	return settings, nil
}

func read(path, dotenv string) (Settings, error) {
	if err := LoadDotEnv(dotenv); err != nil {
		return Settings{}, err
	}

	settings := Defaults()
	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path != "" {
		if err := loadFromYAML(path, &settings); err != nil {
			return Settings{}, err
		}
	}
	applyEnv(&settings)
	return settings, nil
}

// LoadDotEnv loads KEY=VALUE pairs from file into the environment without
// overriding variables that are already set. A missing file is not an error.
func LoadDotEnv(file string) error {
	if _, err := os.Stat(file); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(file); err != nil {
		return errors.Wrapf(err, "failed to load %s", file)
	}
	return nil
}

func loadFromYAML(path string, s *Settings) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "failed to read config file %s", path)
	}

	var config ConfigFile
	if err := yaml.Unmarshal(data, &config); err != nil {
		return errors.Wrap(err, "failed to parse config file")
	}

	setString(&s.DataURL, config.Data.URL)
	setString(&s.DataPath, config.Data.Path)
	setString(&s.Target, config.Data.Target)
	if config.Data.FetchTimeout != "" {
		d, err := time.ParseDuration(config.Data.FetchTimeout)
		if err != nil {
			return errors.Wrapf(err, "invalid data.fetchTimeout %q", config.Data.FetchTimeout)
		}
		s.FetchTimeout = d
	}
	setInt(&s.FetchRetries, config.Data.FetchRetries)
	setFloat(&s.TestSize, config.Data.TestSize)

	// lambda = 0 is a meaningful value, so it is a pointer
	if config.Model.Lambda != nil {
		s.Lambda = *config.Model.Lambda
	}
	setString(&s.Selection, config.Model.Selection)
	setFloat(&s.Tol, config.Model.Tol)
	setInt(&s.MaxIter, config.Model.MaxIter)
	if config.Model.RandomSeed != 0 {
		s.RandomSeed = config.Model.RandomSeed
	}

	setInt(&s.Folds, config.Sweep.Folds)
	setFloat(&s.GridMin, config.Sweep.GridMin)
	setFloat(&s.GridMax, config.Sweep.GridMax)
	setInt(&s.GridN, config.Sweep.GridN)
	if config.Sweep.IncludeZero != nil {
		s.IncludeZero = *config.Sweep.IncludeZero
	}
	s.Shuffle = s.Shuffle || config.Sweep.Shuffle
	setString(&s.Scoring, config.Sweep.Scoring)

	setString(&s.PNGPath, config.Output.PNG)
	setString(&s.HTMLPath, config.Output.HTML)
	setString(&s.WeightsPath, config.Output.Weights)

	setString(&s.LogLevel, config.Log.Level)
	s.LogConsole = s.LogConsole || config.Log.Console
	return nil
}

func applyEnv(s *Settings) {
	s.DataURL = getEnvOrDefault("DATA_URL", s.DataURL)
	s.DataPath = getEnvOrDefault("DATA_PATH", s.DataPath)
	s.Target = getEnvOrDefault("TARGET", s.Target)
	s.FetchTimeout = getDurationOrDefault("FETCH_TIMEOUT", s.FetchTimeout)
	s.FetchRetries = getIntOrDefault("FETCH_RETRIES", s.FetchRetries)
	s.TestSize = getFloatOrDefault("TEST_SIZE", s.TestSize)

	s.Lambda = getFloatOrDefault("LAMBDA", s.Lambda)
	s.Selection = getEnvOrDefault("SELECTION", s.Selection)
	s.Tol = getFloatOrDefault("TOL", s.Tol)
	s.MaxIter = getIntOrDefault("MAX_ITER", s.MaxIter)
	s.RandomSeed = uint64(getIntOrDefault("RANDOM_SEED", int(s.RandomSeed)))

	s.Folds = getIntOrDefault("FOLDS", s.Folds)
	s.GridMin = getFloatOrDefault("GRID_MIN", s.GridMin)
	s.GridMax = getFloatOrDefault("GRID_MAX", s.GridMax)
	s.GridN = getIntOrDefault("GRID_N", s.GridN)
	s.IncludeZero = getBoolOrDefault("INCLUDE_ZERO", s.IncludeZero)
	s.Shuffle = getBoolOrDefault("SHUFFLE", s.Shuffle)
	s.Scoring = getEnvOrDefault("SCORING", s.Scoring)

	s.PNGPath = getEnvOrDefault("PNG", s.PNGPath)
	s.HTMLPath = getEnvOrDefault("HTML", s.HTMLPath)
	s.WeightsPath = getEnvOrDefault("WEIGHTS", s.WeightsPath)

	s.LogLevel = getEnvOrDefault("LOG_LEVEL", s.LogLevel)
	s.LogConsole = getBoolOrDefault("LOG_CONSOLE", s.LogConsole)
}

// Validate checks ranges and enumerations. The CLI calls it again after
// applying flags.
func Validate(s *Settings) error {
	if s.DataURL == "" && s.DataPath == "" {
		return errors.NewValidationError("data", "either a URL or a local path is required", "")
	}
	if s.Target == "" {
		return errors.NewValidationError("target", "cannot be empty", s.Target)
	}
	if s.FetchTimeout < time.Second || s.FetchTimeout > 10*time.Minute {
		return errors.NewValidationError("fetch_timeout", "must be between 1s and 10m", s.FetchTimeout)
	}
	if s.FetchRetries < 0 || s.FetchRetries > 10 {
		return errors.NewValidationError("fetch_retries", "must be between 0 and 10", s.FetchRetries)
	}
	if !(s.TestSize > 0 && s.TestSize < 1) {
		return errors.NewValidationError("test_size", "must be in (0, 1)", s.TestSize)
	}

	if s.Lambda < 0 {
		return errors.NewValidationError("lambda", "must be >= 0", s.Lambda)
	}
	if s.Selection != "cyclic" && s.Selection != "random" {
		return errors.NewValidationError("selection", "must be \"cyclic\" or \"random\"", s.Selection)
	}
	if !(s.Tol > 0) {
		return errors.NewValidationError("tol", "must be > 0", s.Tol)
	}
	if s.MaxIter < 1 {
		return errors.NewValidationError("max_iter", "must be >= 1", s.MaxIter)
	}

	if s.Folds < 2 {
		return errors.NewValidationError("folds", "must be >= 2", s.Folds)
	}
	if !(s.GridMin > 0) || !(s.GridMax > s.GridMin) {
		return errors.NewValidationError("grid", "require 0 < grid_min < grid_max", [2]float64{s.GridMin, s.GridMax})
	}
	if s.GridN < 2 || s.GridN > 1000 {
		return errors.NewValidationError("grid_n", "must be between 2 and 1000", s.GridN)
	}
	if s.Scoring != "r2" && s.Scoring != "neg_mean_squared_error" {
		return errors.NewValidationError("scoring", "must be \"r2\" or \"neg_mean_squared_error\"", s.Scoring)
	}

	switch s.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return errors.NewValidationError("log_level", "must be one of debug, info, warn, error", s.LogLevel)
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func setFloat(dst *float64, v float64) {
	if v != 0 {
		*dst = v
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(envPrefix + key); v != "" {
		return v
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(envPrefix + key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if v := os.Getenv(envPrefix + key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultValue
}

func getFloatOrDefault(key string, defaultValue float64) float64 {
	if v := os.Getenv(envPrefix + key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	if v := os.Getenv(envPrefix + key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultValue
}
