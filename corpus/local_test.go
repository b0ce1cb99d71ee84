/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package corpus

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeLocalCorpus(t *testing.T, root, category string) {
	t.Helper()
	base := filepath.Join(root, category)
	for _, dir := range []string{base, filepath.Join(base, "hypothesis_images"), filepath.Join(base, "adversarial_images")} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	metadata := `{"id": "p1", "text": "t", "hypothesis": "h", "adversarial": "a", "hypo_id": "h1.jpg", "adversarial_id": "a1.jpg"}` + "\n"
	if err := os.WriteFile(filepath.Join(base, "metadata.jsonl"), []byte(metadata), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(base, "hypothesis_images", "h1.jpg"), []byte("hypo-bytes"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(base, "adversarial_images", "a1.jpg"), []byte("adv-bytes"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLocalStore(t *testing.T) {
	root := t.TempDir()
	writeLocalCorpus(t, root, "animal")

	store, err := NewLocalStore(root, "animal")
	if err != nil {
		t.Fatalf("NewLocalStore() error = %v", err)
	}

	pairs, err := store.Pairs(context.Background())
	if err != nil {
		t.Fatalf("Pairs() error = %v", err)
	}
	if len(pairs) != 1 || pairs[0].ID != "p1" || pairs[0].Category != "animal" {
		t.Errorf("Pairs() = %+v, wanted one pair p1 in animal", pairs)
	}

	img, err := store.Image(context.Background(), Hypothesis, "h1.jpg")
	if err != nil {
		t.Fatalf("Image(Hypothesis) error = %v", err)
	}
	if !bytes.Equal(img, []byte("hypo-bytes")) {
		t.Errorf("Image(Hypothesis) = %q, wanted = %q", img, "hypo-bytes")
	}

	img, err = store.Image(context.Background(), Adversarial, "a1.jpg")
	if err != nil {
		t.Fatalf("Image(Adversarial) error = %v", err)
	}
	if !bytes.Equal(img, []byte("adv-bytes")) {
		t.Errorf("Image(Adversarial) = %q, wanted = %q", img, "adv-bytes")
	}
}

func TestLocalStoreImageNotFound(t *testing.T) {
	root := t.TempDir()
	writeLocalCorpus(t, root, "animal")

	store, err := NewLocalStore(root, "animal")
	if err != nil {
		t.Fatalf("NewLocalStore() error = %v", err)
	}
	if _, err := store.Image(context.Background(), Hypothesis, "nope.jpg"); !errors.Is(err, ErrImageNotFound) {
		t.Errorf("Image() error = %v, wanted ErrImageNotFound", err)
	}
}

func TestLocalStoreMissingCategory(t *testing.T) {
	if _, err := NewLocalStore(t.TempDir(), "nope"); err == nil {
		t.Error("NewLocalStore() expected error for missing category directory")
	}
}

func TestLocalStoreBadKind(t *testing.T) {
	root := t.TempDir()
	writeLocalCorpus(t, root, "animal")

	store, err := NewLocalStore(root, "animal")
	if err != nil {
		t.Fatalf("NewLocalStore() error = %v", err)
	}
	if _, err := store.Image(context.Background(), "sideways", "h1.jpg"); err == nil {
		t.Error("Image() expected error for unsupported kind")
	}
}
