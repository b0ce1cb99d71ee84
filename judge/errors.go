/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package judge

import "errors"

var (
	// ErrUnavailable indicates a transient failure (network, quota, timeout)
	// after retries were exhausted. Callers may record an error verdict for
	// the affected pairing and continue with the rest of the run.
	ErrUnavailable = errors.New("judge unavailable")

	// ErrMalformedResponse indicates the model replied, but its output could
	// not be parsed into a decision.
	ErrMalformedResponse = errors.New("malformed judge response")
)
