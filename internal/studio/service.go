// Package studio hosts the Dev Studio orchestration around the diff engine:
// proposal validation, rate limiting, backups, history, and logging.
package studio

import (
	"context"
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"devstudio/internal/ledger"
	"devstudio/internal/ratelimit"
	"devstudio/pkg/diff"
	"devstudio/pkg/store"
)

// ErrRateLimited is returned when a client key exceeds its request budget.
var ErrRateLimited = errors.New("rate limit exceeded")

const defaultRecentSize = 32

// Options configure a Service. Store is required; everything else has a
// working zero value (no limiting, no ledger, discarded logs).
type Options struct {
	Store   store.FileStore
	Logger  Logger
	Limiter *ratelimit.Limiter
	Ledger  *ledger.Ledger

	// VerifyContext applies patches strictly, rejecting hunks whose context
	// or removed lines do not match the file content.
	VerifyContext bool
	// BackupBeforeApply writes a timestamped backup of every existing target
	// file before the patch touches it.
	BackupBeforeApply bool
	// RecentSize bounds the in-memory history of proposal reports.
	RecentSize int
}

// Service drives patch review operations for one workspace.
type Service struct {
	opts   Options
	logger Logger
	recent *lru.Cache[string, *diff.Report]
}

// NewService validates options and builds a Service.
func NewService(opts Options) (*Service, error) {
	if opts.Store == nil {
		return nil, errors.New("studio: file store is required")
	}
	if opts.Logger == nil {
		opts.Logger = &NoOpLogger{}
	}
	size := opts.RecentSize
	if size <= 0 {
		size = defaultRecentSize
	}
	recent, err := lru.New[string, *diff.Report](size)
	if err != nil {
		return nil, err
	}
	return &Service{opts: opts, logger: opts.Logger, recent: recent}, nil
}

// ApplyProposal validates, sanitizes and applies a JSON patch proposal.
// The report is retained in the recent history under the proposal ID.
func (s *Service) ApplyProposal(ctx context.Context, clientKey, payload string) (*diff.Report, error) {
	if !s.opts.Limiter.Allow(clientKey) {
		return nil, ErrRateLimited
	}
	proposal, err := ParseProposal(payload)
	if err != nil {
		s.logger.Warn(ctx, "proposal rejected", Field("client", clientKey), Field("reason", err.Error()))
		return nil, err
	}
	s.logger.Info(ctx, "applying proposal",
		Field("proposal", proposal.ID),
		Field("title", proposal.Title),
		Field("author", proposal.Author))

	report, err := s.applyDiff(ctx, proposal.Diff, proposal.Title, proposal.Author)
	if err != nil {
		return nil, err
	}
	s.recent.Add(proposal.ID, report)
	return report, nil
}

// ApplyDiff applies raw unified-diff text for the given client.
func (s *Service) ApplyDiff(ctx context.Context, clientKey, diffText string) (*diff.Report, error) {
	if !s.opts.Limiter.Allow(clientKey) {
		return nil, ErrRateLimited
	}
	return s.applyDiff(ctx, diffText, "", "")
}

func (s *Service) applyDiff(ctx context.Context, diffText, title, author string) (*diff.Report, error) {
	if s.opts.BackupBeforeApply {
		if err := s.backupTargets(ctx, diffText); err != nil {
			return nil, err
		}
	}

	applyOpts := []diff.Option{diff.WithProgress(func(msg string) {
		s.logger.Debug(ctx, msg)
	})}
	if s.opts.VerifyContext {
		applyOpts = append(applyOpts, diff.WithVerifyContext())
	}
	report := diff.Apply(ctx, s.opts.Store, diffText, applyOpts...)

	if !report.Success {
		s.logger.Warn(ctx, "patch finished with errors",
			Field("applied", len(report.AppliedFiles)),
			Field("failed", len(report.Errors)))
	}
	if s.opts.Ledger != nil {
		if _, err := s.opts.Ledger.Record(ctx, ledger.Entry{
			Title:   title,
			Author:  author,
			Success: report.Success,
			Files:   report.AppliedFiles,
			Errors:  report.Errors,
		}); err != nil {
			s.logger.Error(ctx, "failed to record patch in ledger", err)
		}
	}
	return report, nil
}

// backupTargets snapshots every target file that already exists. Missing
// files are left for Apply to report.
func (s *Service) backupTargets(ctx context.Context, diffText string) error {
	for _, chunk := range diff.Parse(diffText) {
		if _, err := s.opts.Store.ReadFile(ctx, chunk.File); err != nil {
			continue
		}
		backupPath, err := diff.Backup(ctx, s.opts.Store, chunk.File)
		if err != nil {
			return fmt.Errorf("pre-apply backup failed: %w", err)
		}
		s.logger.Debug(ctx, "backed up file", Field("file", chunk.File), Field("backup", backupPath))
	}
	return nil
}

// VerifyDiff runs the existence pre-flight for raw diff text.
func (s *Service) VerifyDiff(ctx context.Context, clientKey, diffText string) (*diff.Verification, error) {
	if !s.opts.Limiter.Allow(clientKey) {
		return nil, ErrRateLimited
	}
	return diff.Verify(ctx, s.opts.Store, diffText), nil
}

// ProposeDiff builds unified-diff text for a single file edit, ready to be
// reviewed and submitted as a proposal.
func (s *Service) ProposeDiff(path, oldText, newText string) string {
	return diff.Generate(oldText, newText, path, diff.DefaultContextLines)
}

// Recent returns the report recorded for a proposal ID, if still retained.
func (s *Service) Recent(proposalID string) (*diff.Report, bool) {
	return s.recent.Get(proposalID)
}
