package sourceobs

import (
	"context"

	"newspulse/internal/interfaces"
	"newspulse/internal/logger"
	"newspulse/internal/trace"
	"newspulse/internal/types"
)

type observableSource struct {
	source interfaces.Source
	kind   string
}

var _ interfaces.Source = (*observableSource)(nil)

// Wrap adds spans and logs around every table read. kind names the backend (CSV, SQLITE).
func Wrap(source interfaces.Source, kind string) interfaces.Source {
	return &observableSource{source: source, kind: kind}
}

func (o *observableSource) News(ctx context.Context) ([]types.NewsRecord, error) {
	ctx, span := trace.StartSpan(ctx, "source.News")
	defer span.End()

	rows, err := o.source.News(ctx)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to read news table", err, "source", o.kind)
		return nil, err
	}
	logger.DebugSkip(ctx, 1, "News table read", "source", o.kind, "rows", len(rows))
	return rows, nil
}

func (o *observableSource) Weekly(ctx context.Context) ([]types.WeeklyStat, error) {
	ctx, span := trace.StartSpan(ctx, "source.Weekly")
	defer span.End()

	rows, err := o.source.Weekly(ctx)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to read weekly table", err, "source", o.kind)
		return nil, err
	}
	logger.DebugSkip(ctx, 1, "Weekly table read", "source", o.kind, "rows", len(rows))
	return rows, nil
}
