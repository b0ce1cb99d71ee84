/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package corpus

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Layout under the local root, one subtree per category:
//
//	{root}/{category}/metadata.jsonl
//	{root}/{category}/hypothesis_images/{filename}
//	{root}/{category}/adversarial_images/{filename}

// LocalStore reads a category's corpus from the local filesystem.
type LocalStore struct {
	root     string
	category string
}

// NewLocalStore creates a store rooted at dir for the given category.
func NewLocalStore(dir, category string) (*LocalStore, error) {
	base := filepath.Join(dir, category)
	if info, err := os.Stat(base); err != nil {
		return nil, fmt.Errorf("corpus directory %q: %w", base, err)
	} else if !info.IsDir() {
		return nil, fmt.Errorf("corpus path %q is not a directory", base)
	}
	return &LocalStore{root: dir, category: category}, nil
}

// Pairs implements Store.
func (s *LocalStore) Pairs(ctx context.Context) ([]Pair, error) {
	path := filepath.Join(s.root, s.category, "metadata.jsonl")
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening corpus metadata: %w", err)
	}
	defer f.Close()
	return decodePairs(ctx, f, s.category)
}

// Image implements Store.
func (s *LocalStore) Image(_ context.Context, kind ImageKind, filename string) ([]byte, error) {
	var subdir string
	switch kind {
	case Hypothesis:
		subdir = "hypothesis_images"
	case Adversarial:
		subdir = "adversarial_images"
	default:
		return nil, fmt.Errorf("unsupported image kind: %q", kind)
	}

	// filename comes from corpus metadata; keep it inside the subtree.
	path := filepath.Join(s.root, s.category, subdir, filepath.Base(filename))
	content, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %q", ErrImageNotFound, filename)
	}
	if err != nil {
		return nil, fmt.Errorf("reading image %q: %w", filename, err)
	}
	return content, nil
}
