/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package corpus

import (
	"context"
	"errors"
)

// ErrImageNotFound indicates the named image does not exist in the store.
var ErrImageNotFound = errors.New("image not found")

// Store provides read access to one category's pair corpus.
type Store interface {
	// Pairs returns every pair in the corpus, in corpus order.
	Pairs(ctx context.Context) ([]Pair, error)

	// Image fetches the named image from the kind's folder. Returns
	// ErrImageNotFound when no such image exists.
	Image(ctx context.Context, kind ImageKind, filename string) ([]byte, error)
}
