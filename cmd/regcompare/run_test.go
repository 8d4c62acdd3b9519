package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/lassoridge/core/model"
	"github.com/YuminosukeSato/lassoridge/sklearn/linear_model"
)

// writeDefaultCSV はDefaultデータセットと同じ列を持つ合成CSVを書き出す
func writeDefaultCSV(t *testing.T, dir string, n int) string {
	t.Helper()
	rng := rand.New(rand.NewPCG(7, 7))

	var b strings.Builder
	b.WriteString(`"","default","student","balance","income"` + "\n")
	for i := 0; i < n; i++ {
		student := "No"
		if rng.Float64() < 0.3 {
			student = "Yes"
		}
		balance := 2500 * rng.Float64()
		income := 10000 + 50000*rng.Float64()
		def := "No"
		if balance+300*rng.NormFloat64() > 1800 {
			def = "Yes"
		}
		fmt.Fprintf(&b, "\"%d\",\"%s\",\"%s\",%.2f,%.2f\n", i+1, def, student, balance, income)
	}
	// 欠損行は読み込み時に削除される
	b.WriteString(`"x","No","No",NA,1000` + "\n")

	path := filepath.Join(dir, "Default.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o600))
	return path
}

func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("LASSORIDGE_DATA_URL", "")
	t.Setenv("LASSORIDGE_DATA_PATH", "")
	t.Setenv("LASSORIDGE_MAX_ITER", "100000")
	t.Setenv("LASSORIDGE_TOL", "1e-3")
	t.Setenv("LASSORIDGE_INCLUDE_ZERO", "false")
}

func TestRun_EndToEnd(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	data := writeDefaultCSV(t, dir, 150)
	png := filepath.Join(dir, "sweep.png")
	html := filepath.Join(dir, "sweep.html")
	weights := filepath.Join(dir, "weights.json")

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{
		"-data", data,
		"-lambda", "0.01",
		"-folds", "3",
		"-grid-min", "0.001",
		"-grid-max", "1",
		"-grid-n", "4",
		"-png", png,
		"-html", html,
		"-weights-json", weights,
		"-log-level", "warn",
	}, &stdout, &stderr)
	require.NoError(t, err, stderr.String())

	out := stdout.String()
	assert.Contains(t, out, "Ridge R^2 train=")
	assert.Contains(t, out, "Lasso R^2 train=")
	assert.Contains(t, out, "balance*income")
	assert.Contains(t, out, "3-fold cross-validation (r2)")
	assert.Contains(t, out, "best lasso:")

	for _, p := range []string{png, html} {
		info, err := os.Stat(p)
		require.NoError(t, err, p)
		assert.Greater(t, info.Size(), int64(0))
	}

	lasso := linear_model.NewLasso()
	require.NoError(t, model.LoadWeights(lasso, filepath.Join(dir, "weights_lasso.json")))
	assert.Len(t, lasso.Coef(), 7)
	assert.Equal(t, 0.01, lasso.Alpha())

	ridge := linear_model.NewRidge()
	require.NoError(t, model.LoadWeights(ridge, filepath.Join(dir, "weights_ridge.json")))
	assert.Len(t, ridge.Coef(), 7)
}

func TestRun_Errors(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	data := writeDefaultCSV(t, dir, 40)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no data source", nil, "data"},
		{"unknown flag", []string{"-nope"}, "nope"},
		{"missing file", []string{"-data", filepath.Join(dir, "none.csv")}, "none.csv"},
		{"bad folds", []string{"-data", data, "-folds", "1"}, "folds"},
		{"unknown target", []string{"-data", data, "-target", "age"}, "age"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := run(context.Background(), tt.args, io.Discard, io.Discard)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
