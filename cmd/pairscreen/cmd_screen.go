/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"fmt"
	"math"
	"os"
	"time"

	"chainguard.dev/pairscreen/corpus"
	"chainguard.dev/pairscreen/filter"
	"chainguard.dev/pairscreen/judge"
	"github.com/chainguard-dev/clog"
	"github.com/sethvargo/go-envconfig"
	"github.com/spf13/cobra"
)

var screenFlags struct {
	category        string
	categoryConfig  string
	serviceAccount  string
	localRoot       string
	backend         string
	model           string
	baseURL         string
	project         string
	region          string
	outputDir       string
	startIdx        int
	endIdx          int
	checkpointEvery int
	timeout         time.Duration
	temperature     float64
	maxTokens       int64
}

// screenEnv supplies defaults for flags left unset. Explicit flags win.
type screenEnv struct {
	Backend        string `env:"PAIRSCREEN_BACKEND"`
	Model          string `env:"PAIRSCREEN_MODEL"`
	BaseURL        string `env:"PAIRSCREEN_BASE_URL"`
	APIKey         string `env:"PAIRSCREEN_API_KEY"`
	Project        string `env:"PAIRSCREEN_PROJECT"`
	Region         string `env:"PAIRSCREEN_REGION"`
	ServiceAccount string `env:"PAIRSCREEN_SERVICE_ACCOUNT"`
	OutputDir      string `env:"PAIRSCREEN_OUTPUT_DIR"`
}

var screenCmd = &cobra.Command{
	Use:   "screen",
	Short: "Screen one category's pair corpus",
	Long: `Screen a window of a category's pair corpus: each pair's hypothesis and
adversarial images are judged against their captions, every outcome is
appended to a detailed JSONL stream, and pairs with both images accepted
are exported as a Label Studio import file.

The corpus is read from Google Drive with a service-account credential,
or from a local directory tree with --local-root. The judge defaults to
an OpenAI-compatible endpoint (e.g. vLLM serving Qwen-VL); --backend
selects Claude or Gemini on Vertex AI instead.`,
	Args: cobra.NoArgs,
	RunE: runScreen,
}

func init() {
	f := screenCmd.Flags()
	f.StringVar(&screenFlags.category, "category", "", "Corpus category to screen (required)")
	f.StringVar(&screenFlags.categoryConfig, "category-config", "", "YAML file overriding the built-in category corpus references")
	f.StringVar(&screenFlags.serviceAccount, "service-account", "", "Path to a Google service-account JSON key (default: $PAIRSCREEN_SERVICE_ACCOUNT)")
	f.StringVar(&screenFlags.localRoot, "local-root", "", "Read the corpus from this local directory instead of Drive")
	f.StringVar(&screenFlags.backend, "backend", judge.BackendOpenAI, "Judge backend: openai, claude, or google")
	f.StringVar(&screenFlags.model, "model", "", "Judge model name (default: backend-specific)")
	f.StringVar(&screenFlags.baseURL, "base-url", "", "OpenAI-compatible endpoint URL (default: "+judge.DefaultBaseURL+")")
	f.StringVar(&screenFlags.project, "project", "", "Vertex AI project (claude and google backends)")
	f.StringVar(&screenFlags.region, "region", "", "Vertex AI region (claude and google backends)")
	f.StringVar(&screenFlags.outputDir, "output-dir", "./mllm_results", "Output directory for results")
	f.IntVar(&screenFlags.startIdx, "start-idx", 0, "Starting corpus index")
	f.IntVar(&screenFlags.endIdx, "end-idx", -1, "Ending corpus index, exclusive (-1 for all)")
	f.IntVar(&screenFlags.checkpointEvery, "checkpoint-every", filter.DefaultCheckpointEvery, "Pairs between checkpoint snapshots (negative disables)")
	f.DurationVar(&screenFlags.timeout, "timeout", 2*time.Minute, "Per-judgment timeout (0 disables)")
	f.Float64Var(&screenFlags.temperature, "temperature", 0.0, "Sampling temperature (0 for deterministic)")
	f.Int64Var(&screenFlags.maxTokens, "max-tokens", 0, "Maximum tokens for judge responses (0 for backend default)")
	_ = screenCmd.MarkFlagRequired("category")
}

func runScreen(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	log := clog.FromContext(ctx)

	var env screenEnv
	if err := envconfig.Process(ctx, &env); err != nil {
		return fmt.Errorf("processing environment: %w", err)
	}
	applyEnvDefault(cmd, "backend", &screenFlags.backend, env.Backend)
	applyEnvDefault(cmd, "model", &screenFlags.model, env.Model)
	applyEnvDefault(cmd, "base-url", &screenFlags.baseURL, env.BaseURL)
	applyEnvDefault(cmd, "project", &screenFlags.project, env.Project)
	applyEnvDefault(cmd, "region", &screenFlags.region, env.Region)
	applyEnvDefault(cmd, "service-account", &screenFlags.serviceAccount, env.ServiceAccount)
	applyEnvDefault(cmd, "output-dir", &screenFlags.outputDir, env.OutputDir)

	store, err := newStore(cmd)
	if err != nil {
		return err
	}

	// The Vertex backends authenticate with application default
	// credentials; point them at the service-account key when one was
	// given and nothing else is configured.
	if screenFlags.serviceAccount != "" && os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") == "" {
		os.Setenv("GOOGLE_APPLICATION_CREDENTIALS", screenFlags.serviceAccount)
	}

	j, err := judge.New(ctx, judge.Config{
		Backend:     screenFlags.backend,
		Model:       screenFlags.model,
		BaseURL:     screenFlags.baseURL,
		APIKey:      env.APIKey,
		Project:     screenFlags.project,
		Region:      screenFlags.region,
		MaxTokens:   screenFlags.maxTokens,
		Temperature: screenFlags.temperature,
	})
	if err != nil {
		return fmt.Errorf("creating judge: %w", err)
	}

	end := screenFlags.endIdx
	if end < 0 {
		end = math.MaxInt // clamped to the corpus size
	}

	runner := &filter.Runner{
		Store:           store,
		Judge:           j,
		Category:        screenFlags.category,
		OutputDir:       screenFlags.outputDir,
		CheckpointEvery: screenFlags.checkpointEvery,
		Timeout:         screenFlags.timeout,
	}

	log.With("category", screenFlags.category).
		With("backend", screenFlags.backend).
		Info("Starting screening run")

	summary, err := runner.Run(ctx, screenFlags.startIdx, end)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), summary.Render())
	fmt.Fprintf(cmd.OutOrStdout(), "\n%d pairs ready for Label Studio (both accepted)\n", summary.BothAccepted)
	return nil
}

// newStore builds the corpus store from flags: local tree when
// --local-root is set, Google Drive otherwise.
func newStore(cmd *cobra.Command) (corpus.Store, error) {
	if screenFlags.localRoot != "" {
		return corpus.NewLocalStore(screenFlags.localRoot, screenFlags.category)
	}

	if screenFlags.serviceAccount == "" {
		return nil, fmt.Errorf("--service-account is required when reading from Drive (or use --local-root)")
	}
	cfg, err := corpus.Category(screenFlags.category, screenFlags.categoryConfig)
	if err != nil {
		return nil, err
	}
	return corpus.NewDriveStore(cmd.Context(), screenFlags.serviceAccount, screenFlags.category, cfg)
}

// applyEnvDefault fills a flag from the environment when the flag was not
// set explicitly.
func applyEnvDefault(cmd *cobra.Command, name string, dst *string, envValue string) {
	if !cmd.Flags().Changed(name) && envValue != "" {
		*dst = envValue
	}
}
