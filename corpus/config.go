/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package corpus

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// CategoryConfig locates one category's corpus in Google Drive. Each
// reference may be a full Drive URL or a bare ID.
type CategoryConfig struct {
	// Metadata references the category's metadata JSONL file.
	Metadata string `yaml:"metadata"`

	// HypothesisFolder references the folder of hypothesis images.
	HypothesisFolder string `yaml:"hypothesis_folder"`

	// AdversarialFolder references the folder of adversarial images.
	AdversarialFolder string `yaml:"adversarial_folder"`
}

// defaultCategories are the corpora this tool was built to screen.
var defaultCategories = map[string]CategoryConfig{
	"demography": {
		Metadata:          "https://drive.google.com/file/d/1G-LMafYzvBTEsyFnMCeU1rwr7C-hZ0bT/view?usp=drive_link",
		HypothesisFolder:  "https://drive.google.com/drive/folders/1CkUxRFl1R1-0Kc-C6KLZim8pVWWG6fDw?usp=drive_link",
		AdversarialFolder: "https://drive.google.com/drive/folders/1If1mId-e8jHYd_FsM8d7iyY1vNgNPH6n?usp=drive_link",
	},
	"animal": {
		Metadata:          "https://drive.google.com/file/d/1ylO1ElyR5TtOaAsSYC3DLG9VKvtuudZ6/view?usp=drive_link",
		HypothesisFolder:  "https://drive.google.com/drive/folders/1E_44-tKC5yg-1Lsqod2Uf5jNUw3u7888?usp=drive_link",
		AdversarialFolder: "https://drive.google.com/drive/folders/11XtDkPac2QL9F45CP3cxTOiW35JjvJAi?usp=drive_link",
	},
	"objects": {
		Metadata:          "https://drive.google.com/file/d/1ECF7RIb8kOKyku8_B_W5ZMKgQhKAcQoC/view?usp=drive_link",
		HypothesisFolder:  "https://drive.google.com/drive/folders/1_0Gcb1gU4jIbBGv0wVO8fMvCgQpgm7dR?usp=drive_link",
		AdversarialFolder: "https://drive.google.com/drive/folders/1YU7P2KGHLX6FlcJzPRMknM_Z4lzY0MZC?usp=drive_link",
	},
}

// Categories returns the category configuration, optionally merged with a
// YAML overrides file mapping category name to CategoryConfig. Overrides
// replace built-in entries wholesale and may add new categories.
func Categories(overridesFile string) (map[string]CategoryConfig, error) {
	categories := make(map[string]CategoryConfig, len(defaultCategories))
	for name, cfg := range defaultCategories {
		categories[name] = cfg
	}

	if overridesFile != "" {
		content, err := os.ReadFile(overridesFile)
		if err != nil {
			return nil, fmt.Errorf("reading category config: %w", err)
		}
		var overrides map[string]CategoryConfig
		if err := yaml.Unmarshal(content, &overrides); err != nil {
			return nil, fmt.Errorf("parsing category config: %w", err)
		}
		for name, cfg := range overrides {
			categories[name] = cfg
		}
	}
	return categories, nil
}

// Category resolves one category by name.
func Category(name, overridesFile string) (CategoryConfig, error) {
	categories, err := Categories(overridesFile)
	if err != nil {
		return CategoryConfig{}, err
	}
	cfg, ok := categories[name]
	if !ok {
		names := make([]string, 0, len(categories))
		for n := range categories {
			names = append(names, n)
		}
		sort.Strings(names)
		return CategoryConfig{}, fmt.Errorf("unknown category %q (known: %v)", name, names)
	}
	return cfg, nil
}
