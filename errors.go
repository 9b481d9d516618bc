// SPDX-License-Identifier: MIT
package ssetree

import (
	"context"
	"errors"
	"fmt"

	"github.com/katalvlaran/ssetree/loglik"
	"github.com/katalvlaran/ssetree/matrix"
	"github.com/katalvlaran/ssetree/model"
	"github.com/katalvlaran/ssetree/ode"
	"github.com/katalvlaran/ssetree/tree"
)

// Error categories. Every error returned by the Compute functions, except
// context cancellation, wraps exactly one of them.
var (
	// ErrInvalidInput covers malformed rates, trees, states or solver settings.
	ErrInvalidInput = errors.New("ssetree: invalid input")

	// ErrUnsupported covers valid inputs asking for an unavailable feature,
	// such as complete-tree conditioning together with time zones.
	ErrUnsupported = errors.New("ssetree: unsupported feature")

	// ErrNumerical covers NaN, Inf or all-zero states met during evaluation.
	ErrNumerical = errors.New("ssetree: numerical failure")

	// ErrIntegrator covers a solver that could not meet its tolerances within
	// its step bounds.
	ErrIntegrator = errors.New("ssetree: integrator failure")
)

var (
	invalid = []error{
		tree.ErrEmpty, tree.ErrNodeOutOfRange, tree.ErrBadLength, tree.ErrMalformed,
		tree.ErrCycleDetected, tree.ErrNotTopological, tree.ErrMissingTipState,
		tree.ErrDimensionMismatch, tree.ErrBadTipState,
		matrix.ErrInvalidDimensions, matrix.ErrOutOfRange, matrix.ErrDimensionMismatch,
		matrix.ErrNonSquare, matrix.ErrNaNInf, matrix.ErrNegative, matrix.ErrNilMatrix,
		model.ErrDimension, model.ErrCriticalTime, model.ErrNilModel,
		ode.ErrUnknownMethod, ode.ErrBadInterval, ode.ErrBadConfig,
	}
	numerical = []error{
		loglik.ErrDegenerate, loglik.ErrNonFinite, loglik.ErrOddLength,
		model.ErrExtinctionMismatch, ode.ErrNonFinite,
	}
	integrator = []error{ode.ErrStepUnderflow, ode.ErrTooManySteps}
)

// classify wraps err with its category. Unknown errors and context errors are
// returned unchanged.
func classify(err error) error {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if errors.Is(err, model.ErrUnsupported) {
		return fmt.Errorf("%w: %w", ErrUnsupported, err)
	}
	for _, group := range []struct {
		cat  error
		errs []error
	}{
		{ErrIntegrator, integrator},
		{ErrNumerical, numerical},
		{ErrInvalidInput, invalid},
	} {
		for _, e := range group.errs {
			if errors.Is(err, e) {
				return fmt.Errorf("%w: %w", group.cat, err)
			}
		}
	}

	return err
}

// invalidf builds an ErrInvalidInput error for checks done by this package.
func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidInput}, args...)...)
}
