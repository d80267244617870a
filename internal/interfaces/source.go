package interfaces

import (
	"context"

	"newspulse/internal/types"
)

// Source reads the two raw tables from external storage.
type Source interface {
	News(ctx context.Context) ([]types.NewsRecord, error)
	Weekly(ctx context.Context) ([]types.WeeklyStat, error)
}
