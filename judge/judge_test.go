/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package judge

import (
	"context"
	"testing"
)

func TestNewOpenAIDefaults(t *testing.T) {
	// The openai backend builds its client without touching the network.
	j, err := New(context.Background(), Config{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if j == nil {
		t.Fatal("New() returned nil judge")
	}
}

func TestNewConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{{
		name: "unsupported backend",
		cfg:  Config{Backend: "llamacpp"},
	}, {
		name: "claude without project",
		cfg:  Config{Backend: BackendClaude, Region: "us-east5"},
	}, {
		name: "claude without region",
		cfg:  Config{Backend: BackendClaude, Project: "my-project"},
	}, {
		name: "google without project",
		cfg:  Config{Backend: BackendGoogle, Region: "us-central1"},
	}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(context.Background(), tt.cfg); err == nil {
				t.Error("New() expected error, got nil")
			}
		})
	}
}
