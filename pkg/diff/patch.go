package diff

import (
	"context"
	"fmt"
	"strings"
	"time"

	"devstudio/pkg/store"
)

// Report is the outcome of applying a multi-file diff. Success is true only
// when no file failed; AppliedFiles preserves diff order.
type Report struct {
	Success      bool
	AppliedFiles []string
	Errors       []string
}

// Verification is the outcome of a pre-flight existence check.
type Verification struct {
	Valid  bool
	Errors []string
}

// Option configures Apply.
type Option func(*applyConfig)

type applyConfig struct {
	apply    ApplyOptions
	progress func(string)
}

// WithVerifyContext enables strict context matching during apply.
func WithVerifyContext() Option {
	return func(cfg *applyConfig) { cfg.apply.VerifyContext = true }
}

// WithProgress registers a callback invoked synchronously with human-readable
// status messages as each file is processed.
func WithProgress(fn func(string)) Option {
	return func(cfg *applyConfig) { cfg.progress = fn }
}

// Apply parses diffText and applies each chunk to the files behind the store,
// one file at a time in diff order. A failure on one file is recorded and the
// remaining files are still attempted; nothing is rolled back. Backups are
// the caller's responsibility (see Backup).
func Apply(ctx context.Context, fs store.FileStore, diffText string, opts ...Option) *Report {
	cfg := applyConfig{progress: func(string) {}}
	for _, opt := range opts {
		opt(&cfg)
	}

	report := &Report{}
	for _, chunk := range Parse(diffText) {
		if err := ctx.Err(); err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", chunk.File, err))
			continue
		}
		for _, header := range chunk.Malformed {
			cfg.progress(fmt.Sprintf("Warning: skipped malformed hunk header in %s: %s", chunk.File, header))
		}

		cfg.progress(fmt.Sprintf("Reading %s...", chunk.File))
		content, err := fs.ReadFile(ctx, chunk.File)
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", chunk.File, err))
			cfg.progress(fmt.Sprintf("✗ Failed to read %s: %v", chunk.File, err))
			continue
		}

		cfg.progress(fmt.Sprintf("Applying changes to %s...", chunk.File))
		updated, err := ApplyToContent(content, chunk, cfg.apply)
		if err != nil {
			report.Errors = append(report.Errors, err.Error())
			cfg.progress(fmt.Sprintf("✗ %v", err))
			continue
		}

		cfg.progress(fmt.Sprintf("Writing %s...", chunk.File))
		if err := fs.WriteFile(ctx, chunk.File, updated); err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", chunk.File, err))
			cfg.progress(fmt.Sprintf("✗ Failed to write %s: %v", chunk.File, err))
			continue
		}

		report.AppliedFiles = append(report.AppliedFiles, chunk.File)
		cfg.progress(fmt.Sprintf("✓ Applied changes to %s", chunk.File))
	}
	report.Success = len(report.Errors) == 0
	return report
}

// Verify checks that every file named by the diff exists in the store. It
// does not dry-run the hunks; a valid result only means the targets are
// readable.
func Verify(ctx context.Context, fs store.FileStore, diffText string) *Verification {
	verification := &Verification{}
	for _, chunk := range Parse(diffText) {
		if _, err := fs.ReadFile(ctx, chunk.File); err != nil {
			verification.Errors = append(verification.Errors, "File not found: "+chunk.File)
		}
	}
	verification.Valid = len(verification.Errors) == 0
	return verification
}

var backupStampReplacer = strings.NewReplacer(":", "-", ".", "-")

// Backup copies the file's current content to a sibling path suffixed with
// ".backup.<timestamp>" and returns the backup path. Read and write failures
// propagate as wrapped errors.
func Backup(ctx context.Context, fs store.FileStore, path string) (string, error) {
	content, err := fs.ReadFile(ctx, path)
	if err != nil {
		return "", fmt.Errorf("backup of %s failed: %w", path, err)
	}
	stamp := backupStampReplacer.Replace(time.Now().UTC().Format("2006-01-02T15:04:05.000Z"))
	backupPath := path + ".backup." + stamp
	if err := fs.WriteFile(ctx, backupPath, content); err != nil {
		return "", fmt.Errorf("backup of %s failed: %w", path, err)
	}
	return backupPath, nil
}

// FormatReport renders a Report as a multi-line human-readable summary.
func FormatReport(report *Report) string {
	if report == nil {
		return "No report."
	}
	var parts []string
	if report.Success {
		parts = append(parts, "Patch applied successfully.")
	} else {
		parts = append(parts, "Patch applied with errors.")
	}
	for _, file := range report.AppliedFiles {
		parts = append(parts, "✓ "+file)
	}
	for _, msg := range report.Errors {
		parts = append(parts, "✗ "+msg)
	}
	return strings.Join(parts, "\n")
}
