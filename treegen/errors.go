// SPDX-License-Identifier: MIT
package treegen

import "errors"

var (
	// ErrTooFewTips indicates fewer than two tips were requested.
	ErrTooFewTips = errors.New("treegen: at least two tips are required")

	// ErrBadLength indicates the length function produced a negative or
	// non-finite branch length.
	ErrBadLength = errors.New("treegen: invalid branch length")
)
