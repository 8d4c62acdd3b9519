package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeExecute_Panic(t *testing.T) {
	err := SafeExecute("plot.SweepPNG", func() error {
		panic("no data points")
	})
	require.Error(t, err)

	var panicErr *PanicError
	require.True(t, errors.As(err, &panicErr))
	assert.Equal(t, "plot.SweepPNG", panicErr.Operation)
	assert.Equal(t, "no data points", panicErr.PanicValue)
	assert.NotEmpty(t, panicErr.StackTrace)
	assert.Equal(t, "panic in plot.SweepPNG: no data points", err.Error())
	assert.Contains(t, panicErr.String(), "Stack trace:")
}

func TestSafeExecute_PassesThrough(t *testing.T) {
	assert.NoError(t, SafeExecute("noop", func() error { return nil }))

	want := fmt.Errorf("render failed")
	assert.Same(t, want, SafeExecute("render", func() error { return want }))
}

func TestRecover_KeepsExistingError(t *testing.T) {
	original := errors.New("validation failed")
	fn := func() (err error) {
		defer Recover(&err, "Lasso.Fit")
		err = original
		panic("index out of range")
	}

	err := fn()
	require.Error(t, err)
	assert.True(t, errors.Is(err, original))
	assert.Contains(t, err.Error(), "panic in Lasso.Fit")
	assert.Contains(t, err.Error(), "index out of range")
}
