package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/crmimport/internal/config"
	"github.com/JonMunkholm/crmimport/internal/logging"
	"github.com/JonMunkholm/crmimport/internal/metrics"
)

// Service runs imports against a record store.
type Service struct {
	committer *Committer
	options   OptionProvider
	limiter   *ImportLimiter
	maxRows   int
}

// NewService creates a Service. options may be nil, in which case every
// owner starts with empty option lists.
func NewService(store RecordStore, options OptionProvider, cfg *config.Config) *Service {
	if options == nil {
		options = StaticOptions{}
	}
	return &Service{
		committer: NewCommitter(store),
		options:   options,
		limiter:   NewImportLimiter(cfg.Import.MaxConcurrent, cfg.Import.MaxWaitTime),
		maxRows:   cfg.Import.MaxRows,
	}
}

// Schemas returns every registered schema in identifier order.
func (s *Service) Schemas() []*Schema {
	return All()
}

// Template returns the exemplar workbook of a schema and its file name.
func (s *Service) Template(id SchemaID) ([]byte, string, error) {
	data, err := GenerateTemplate(id)
	if err != nil {
		return nil, "", err
	}
	return data, TemplateFileName(id), nil
}

// Options returns the default option lists available to owner.
func (s *Service) Options(ctx context.Context, owner uuid.UUID) (DefaultOptions, error) {
	return s.options.DefaultOptions(ctx, owner)
}

// Prepare loads the owner's option lists and parses the file concurrently,
// then returns a Mapped session. An option loading failure is logged and the
// session continues with empty lists. A read failure returns no session.
func (s *Service) Prepare(ctx context.Context, owner uuid.UUID, id SchemaID, fileName string, data []byte) (*Session, error) {
	schema, err := Lookup(id)
	if err != nil {
		return nil, err
	}
	logger := logging.WithFields(ctx, "schema", id, "file", fileName)

	var (
		opts   DefaultOptions
		header Header
		rows   []SourceRow
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		o, err := s.options.DefaultOptions(gctx, owner)
		if err != nil {
			logger.Warn("failed to load default options", "error", err)
			return nil
		}
		opts = o
		return nil
	})
	g.Go(func() error {
		h, r, err := ParseFile(data)
		if err != nil {
			return err
		}
		header, rows = h, r
		return nil
	})
	if err := g.Wait(); err != nil {
		logger.Warn("failed to read file", "error", err)
		metrics.ObserveImport(string(id), metrics.OutcomeParse, 0)
		return nil, err
	}

	if s.maxRows > 0 && len(rows) > s.maxRows {
		err := fmt.Errorf("file too large: %d rows exceeds the limit of %d", len(rows), s.maxRows)
		metrics.ObserveImport(string(id), metrics.OutcomeRejected, len(rows))
		return nil, err
	}

	sess := NewSession(owner, schema)
	if err := sess.SetOptions(opts); err != nil {
		return nil, err
	}
	sess.Accept(fileName, header, rows)

	logger.Debug("file prepared",
		"columns", len(header),
		"rows", len(rows),
		"mapped", countActive(sess.Mapping),
	)
	return sess, nil
}

func countActive(m Mapping) int {
	n := 0
	for _, fm := range m {
		if fm.Active() {
			n++
		}
	}
	return n
}

// Run commits a prepared session. It waits for an import slot first.
func (s *Service) Run(ctx context.Context, sess *Session, n Notifier) (ImportResult, error) {
	if n == nil {
		n = NopNotifier{}
	}
	id := sess.Schema.Info.ID
	logger := logging.WithFields(ctx, "schema", id, "file", sess.FileName, "owner", sess.Owner)

	if err := s.limiter.Acquire(ctx); err != nil {
		metrics.ObserveImport(string(id), metrics.OutcomeRejected, len(sess.Rows))
		n.Notify(FailureNotification(err))
		msg := MapError(err)
		return ImportResult{Schema: id, FileName: sess.FileName, TotalRows: len(sess.Rows), Error: msg.Message, Code: msg.Code}, err
	}
	defer s.limiter.Release()
	defer metrics.TrackInFlight()()

	start := time.Now()
	result, err := sess.Commit(ctx, s.committer, n)

	var (
		commitErr  *CommitError
		missingErr *MissingRequiredFieldError
	)
	switch {
	case err == nil:
		metrics.ObserveCommit(string(id), result.Inserted, time.Since(start))
		metrics.ObserveImport(string(id), metrics.OutcomeSuccess, result.TotalRows)
		logger.Info("import completed",
			"run_id", result.RunID,
			"rows", result.TotalRows,
			"inserted", result.Inserted,
			"duration", result.Duration,
		)
	case errors.As(err, &commitErr):
		metrics.ObserveCommit(string(id), 0, time.Since(start))
		metrics.ObserveImport(string(id), metrics.OutcomeCommit, result.TotalRows)
		logger.Error("import commit failed", "run_id", result.RunID, "rows", result.TotalRows, "error", err)
	case errors.As(err, &missingErr), errors.Is(err, ErrNoMappedColumns):
		metrics.ObserveImport(string(id), metrics.OutcomeValidation, result.TotalRows)
		logger.Info("import blocked by validation", "run_id", result.RunID, "error", err)
	default:
		logger.Warn("import not started", "error", err)
	}

	return result, err
}

// ImportRequest is a complete non-interactive import.
type ImportRequest struct {
	Owner     uuid.UUID
	Schema    SchemaID
	FileName  string
	Data      []byte
	Overrides map[int]string // Column index to target field, applied after auto matching
	Defaults  Defaults       // Batch defaults, applied over the owner's initial defaults
}

// Import prepares, configures and commits a file in one call.
func (s *Service) Import(ctx context.Context, req ImportRequest, n Notifier) (ImportResult, error) {
	if n == nil {
		n = NopNotifier{}
	}

	sess, err := s.Prepare(ctx, req.Owner, req.Schema, req.FileName, req.Data)
	if err != nil {
		n.Notify(FailureNotification(err))
		msg := MapError(err)
		return ImportResult{Schema: req.Schema, FileName: req.FileName, Error: msg.Message, Code: msg.Code}, err
	}

	if err := s.Configure(sess, req.Overrides, req.Defaults); err != nil {
		n.Notify(FailureNotification(err))
		msg := MapError(err)
		return ImportResult{Schema: req.Schema, FileName: req.FileName, TotalRows: len(sess.Rows), Error: msg.Message, Code: msg.Code}, err
	}

	return s.Run(ctx, sess, n)
}

// Configure applies caller overrides and defaults to a prepared session.
func (s *Service) Configure(sess *Session, overrides map[int]string, defaults Defaults) error {
	if len(overrides) > 0 {
		if err := sess.ApplyOverrides(overrides); err != nil {
			return err
		}
	}
	for field, value := range defaults {
		if err := sess.SetDefault(field, value); err != nil {
			return err
		}
	}
	return nil
}

// LimiterStatus returns the import limiter state for monitoring.
func (s *Service) LimiterStatus() ImportLimiterStatus {
	return s.limiter.Status()
}

// WaitForImports blocks until all active imports complete or ctx is done.
func (s *Service) WaitForImports(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}
