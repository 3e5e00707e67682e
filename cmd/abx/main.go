// abx scores ABX discriminability of sequence groups.
//
// Usage:
//
//	abx run [--metric=cosine|euclidian] [--symmetric] [--workers=N] [--format=text|arrow]
//	abx version
//
// Exit status is 2 for invalid settings, 3 when a unit violates a triplet
// precondition and 1 for any other failure.
package main

import (
	"errors"
	"fmt"
	"os"

	abxerrors "github.com/23skdu/abx/internal/errors"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	switch {
	case errors.Is(err, abxerrors.Validation), errors.Is(err, abxerrors.Configuration):
		return 2
	case errors.Is(err, abxerrors.Precondition):
		return 3
	default:
		return 1
	}
}
