// Package cli — extract.go implements the extraction workflow behind the
// root command and the explicit "receipted extract" subcommand.
//
// The run is a sequential pipeline per image: send to the inference
// endpoint, pull the JSON object out of the completion, write it next to
// the image. Failures are caught at the per-image boundary so one bad
// receipt never stops the rest of the batch; only a missing credential
// aborts the whole run, since no image can be processed without it.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/receipted/internal/config"
	"github.com/mmr-tortoise/receipted/internal/credential"
	"github.com/mmr-tortoise/receipted/internal/extract"
	"github.com/mmr-tortoise/receipted/internal/image"
	"github.com/mmr-tortoise/receipted/internal/model"
	"github.com/mmr-tortoise/receipted/internal/parse"
	"github.com/mmr-tortoise/receipted/internal/schema"
)

// NewExtractCommand creates the "extract" cobra command, the explicit
// spelling of the root command's default behavior.
func NewExtractCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "extract [image]",
		Short: "Extract receipt data from one image or every image in the current directory",
		Long: `Extract receipt data using the configured vision-language model.

With no argument, every supported image in the current directory is
processed in filename order. With a file argument, only that image is
processed. Each result is written as <basename>.json next to its image.

Examples:
  receipted extract
  receipted extract uctenka_001.jpg
  receipted extract --json`,

		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd.Context(), args)
		},
	}
}

// imageResult records the outcome for a single image in a batch.
type imageResult struct {
	// Ref is the processed image.
	Ref model.ImageRef

	// Output is the path of the written JSON file on success.
	Output string

	// Err is the failure, nil on success.
	Err error
}

// runExtract is the main logic for the extraction workflow: resolve
// configuration and credential, discover images, process the batch, and
// map the aggregate outcome onto an exit code.
func runExtract(ctx context.Context, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "invalid configuration", err)
	}
	VerboseLog("Using model %s at %s", cfg.Model, cfg.BaseURL)

	// Credential check runs before discovery: without a key there is no
	// point enumerating images.
	store := credential.NewStore(cfg.EnvFile)
	apiKey, err := store.Load()
	if err != nil {
		return model.WrapCLIError(model.ExitMissingCredential,
			fmt.Sprintf("no API key configured — run 'receipted key set <key>' or set %s", store.KeyName),
			err)
	}

	fieldSchema := schema.Default()
	if cfg.SchemaFile != "" {
		fieldSchema, err = schema.LoadFile(cfg.SchemaFile)
		if err != nil {
			return model.WrapCLIError(model.ExitGeneralError, "invalid extraction schema", err)
		}
		VerboseLog("Using schema override from %s (%d fields)", cfg.SchemaFile, len(fieldSchema.Fields))
	}
	instruction, err := extract.BuildInstruction(fieldSchema)
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to build extraction prompt", err)
	}

	refs, err := discoverImages(args)
	if err != nil {
		return err
	}
	if len(refs) == 0 {
		fmt.Println("No image files found in the current directory.")
		return nil
	}
	VerboseLog("Found %d image(s) to process", len(refs))

	client := extract.NewClient(apiKey, cfg, instruction)
	results := processBatch(ctx, client, refs)

	return reportBatch(results)
}

// discoverImages turns the command line into the list of images to
// process: an explicit file argument is resolved and validated, no
// argument scans the current directory.
func discoverImages(args []string) ([]model.ImageRef, error) {
	if len(args) == 1 {
		ref, err := image.Resolve(args[0])
		if err != nil {
			switch {
			case errors.Is(err, model.ErrFileNotFound):
				return nil, model.WrapCLIError(model.ExitFileNotFound, "cannot open image", err)
			case errors.Is(err, model.ErrUnsupportedFormat):
				return nil, model.WrapCLIError(model.ExitUnsupportedFormat, "cannot process image", err)
			default:
				return nil, model.WrapCLIError(model.ExitGeneralError, "cannot resolve image", err)
			}
		}
		return []model.ImageRef{ref}, nil
	}

	refs, err := image.List(".")
	if err != nil {
		return nil, model.WrapCLIError(model.ExitGeneralError, "cannot scan current directory", err)
	}
	return refs, nil
}

// processBatch runs the extraction pipeline over every image in order.
// Each image is processed independently: a failure is recorded and the
// batch moves on to the next image. Per-image progress goes to stdout in
// text mode as the batch runs, so long runs show liveness.
func processBatch(ctx context.Context, ex extract.Extractor, refs []model.ImageRef) []imageResult {
	results := make([]imageResult, 0, len(refs))

	for _, ref := range refs {
		if !IsJSONOutput() {
			fmt.Printf("Processing: %s\n", ref.Path)
		}

		output, err := processImage(ctx, ex, ref)
		if err != nil {
			if !IsJSONOutput() {
				fmt.Printf("  failed: %v\n", err)
			}
			results = append(results, imageResult{Ref: ref, Err: err})
			continue
		}

		if !IsJSONOutput() {
			fmt.Printf("  saved: %s\n", output)
		}
		results = append(results, imageResult{Ref: ref, Output: output})
	}

	return results
}

// processImage runs the pipeline for one image: inference call, JSON
// extraction from the completion text, and persistence next to the image.
func processImage(ctx context.Context, ex extract.Extractor, ref model.ImageRef) (string, error) {
	raw, err := ex.Extract(ctx, ref)
	if err != nil {
		return "", err
	}

	doc, err := parse.ExtractJSON(raw)
	if err != nil {
		return "", fmt.Errorf("%s: %w", ref.Path, err)
	}

	target := ref.OutputPath()
	if err := parse.Persist(doc, target); err != nil {
		return "", err
	}
	return target, nil
}

// reportBatch prints the batch summary and maps the aggregate outcome
// onto the process exit code: nil when every image succeeded, a
// CLIError with ExitPartialFailure otherwise.
func reportBatch(results []imageResult) error {
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	succeeded := len(results) - failed

	if IsJSONOutput() {
		printBatchJSON(results)
	} else {
		fmt.Printf("Processed %d/%d image(s) successfully\n", succeeded, len(results))
	}

	if failed > 0 {
		return model.NewCLIError(model.ExitPartialFailure,
			fmt.Sprintf("%d of %d image(s) failed", failed, len(results)))
	}
	return nil
}

// batchResultJSON is the JSON output structure for a single image in the
// batch report.
type batchResultJSON struct {
	Image  string `json:"image"`
	Output string `json:"output,omitempty"`
	Error  string `json:"error,omitempty"`
}

// printBatchJSON outputs the batch report as structured JSON. The
// top-level key is "results" containing one entry per processed image.
func printBatchJSON(results []imageResult) {
	type reportJSON struct {
		Results []batchResultJSON `json:"results"`
	}

	report := reportJSON{
		// Use an empty slice instead of nil so JSON output shows []
		// instead of null when nothing was processed.
		Results: make([]batchResultJSON, 0, len(results)),
	}
	for _, r := range results {
		entry := batchResultJSON{Image: r.Ref.Path}
		if r.Err != nil {
			entry.Error = r.Err.Error()
		} else {
			entry.Output = r.Output
		}
		report.Results = append(report.Results, entry)
	}

	data, _ := json.MarshalIndent(report, "", "  ")
	fmt.Println(string(data))
}
