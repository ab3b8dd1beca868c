// Package pipeline orchestrates the denormalization run: read a batch of
// titles, resolve related rows, build aggregate documents, materialize
// them. Batches are processed sequentially; cancellation stops new batch
// work but never rolls back committed batches.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cineexplorer/cinedoc/internal/aggregate"
	cerrors "github.com/cineexplorer/cinedoc/internal/errors"
	"github.com/cineexplorer/cinedoc/internal/join"
	"github.com/cineexplorer/cinedoc/internal/materialize"
	"github.com/cineexplorer/cinedoc/internal/reader"
)

// Report summarizes a run. On failure it still carries how far the run
// got: the destination is never left half-written without reporting the
// committed document count.
type Report struct {
	RunID       uuid.UUID
	Batches     int
	Documents   int64
	Anomalies   int
	FailureKind cerrors.Kind
}

// Pipeline wires the four stages together.
type Pipeline struct {
	reader       *reader.TitleReader
	resolver     *join.Resolver
	builder      *aggregate.Builder
	materializer *materialize.Materializer
	storeTimeout time.Duration
	logger       *zap.Logger
}

// New creates a pipeline from its stages. storeTimeout bounds every store
// call so a stalled store surfaces as an error instead of a hang; zero
// disables the bound.
func New(
	r *reader.TitleReader,
	resolver *join.Resolver,
	builder *aggregate.Builder,
	materializer *materialize.Materializer,
	storeTimeout time.Duration,
	logger *zap.Logger,
) *Pipeline {
	return &Pipeline{
		reader:       r,
		resolver:     resolver,
		builder:      builder,
		materializer: materializer,
		storeTimeout: storeTimeout,
		logger:       logger,
	}
}

func (p *Pipeline) stageContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.storeTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, p.storeTimeout)
}

// Run executes one full rebuild. The returned report is meaningful even on
// error.
func (p *Pipeline) Run(ctx context.Context) (Report, error) {
	report := Report{RunID: uuid.New()}
	logger := p.logger.With(zap.String("run_id", report.RunID.String()))
	logger.Info("rebuild started")

	for {
		if err := ctx.Err(); err != nil {
			report.Documents = p.materializer.Written()
			logger.Warn("run cancelled",
				zap.Int("batches_committed", report.Batches),
				zap.Int64("documents_committed", report.Documents))
			return report, err
		}

		stageCtx, cancel := p.stageContext(ctx)
		titles, err := p.reader.Next(stageCtx)
		cancel()
		if err != nil {
			return p.fail(logger, report, err)
		}
		if titles == nil {
			break
		}

		stageCtx, cancel = p.stageContext(ctx)
		joined, err := p.resolver.Resolve(stageCtx, titles)
		cancel()
		if err != nil {
			return p.fail(logger, report, err)
		}
		report.Anomalies += joined.Anomalies

		stageCtx, cancel = p.stageContext(ctx)
		docs, anomalies, err := p.builder.Build(stageCtx, joined)
		cancel()
		if err != nil {
			return p.fail(logger, report, err)
		}
		report.Anomalies += anomalies

		stageCtx, cancel = p.stageContext(ctx)
		err = p.materializer.Write(stageCtx, docs)
		cancel()
		if err != nil {
			return p.fail(logger, report, err)
		}

		report.Batches++
		logger.Debug("batch committed",
			zap.Int("batch", report.Batches),
			zap.Int("documents", len(docs)))
	}

	finishCtx, cancel := p.stageContext(ctx)
	written, err := p.materializer.Finish(finishCtx)
	cancel()
	report.Documents = written
	if err != nil {
		return p.fail(logger, report, err)
	}

	logger.Info("rebuild finished",
		zap.Int("batches", report.Batches),
		zap.Int64("documents", report.Documents),
		zap.Int("anomalies", report.Anomalies))
	return report, nil
}

func (p *Pipeline) fail(logger *zap.Logger, report Report, err error) (Report, error) {
	report.Documents = p.materializer.Written()
	report.FailureKind = cerrors.KindOf(err)
	logger.Error("run aborted",
		zap.String("kind", string(report.FailureKind)),
		zap.Bool("fatal", cerrors.IsFatal(err)),
		zap.Int("batches_committed", report.Batches),
		zap.Int64("documents_committed", report.Documents),
		zap.Error(err))
	return report, err
}
