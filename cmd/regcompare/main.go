// Command regcompare compares Ridge and Lasso regression on the Default
// dataset and sweeps the regularization strength with k-fold cross-validation.
//
//	regcompare -data Default.csv -lambda 0.01 -folds 5 -png sweep.png
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "regcompare: %v\n", err)
		os.Exit(1)
	}
}
