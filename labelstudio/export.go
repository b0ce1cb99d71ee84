/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package labelstudio

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// WriteTasks writes tasks as a JSON array to path. The write is atomic:
// content lands in a temp file in the same directory and is renamed into
// place, so a crash never leaves a truncated export. An empty task slice
// writes an empty array rather than null.
func WriteTasks(path string, tasks []Task) error {
	if tasks == nil {
		tasks = []Task{}
	}
	content, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling tasks: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(content, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("writing tasks: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("renaming into place: %w", err)
	}
	return nil
}
