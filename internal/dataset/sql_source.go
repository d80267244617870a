package dataset

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"newspulse/internal/interfaces"
	"newspulse/internal/types"
)

// NewsModel is the SQLite row for a news record. Dates are stored as text.
type NewsModel struct {
	Date            string  `gorm:"column:date"`
	Object          string  `gorm:"column:object;index"`
	Domain          string  `gorm:"column:domain"`
	Label           string  `gorm:"column:label"`
	Source          string  `gorm:"column:source"`
	Title           string  `gorm:"column:title"`
	PMI             float64 `gorm:"column:pmi"`
	Confidence      float64 `gorm:"column:confidence"`
	RS              float64 `gorm:"column:rs"`
	ConsensusWeight float64 `gorm:"column:consensus_weight"`
}

// WeeklyModel is the SQLite row for a weekly aggregate.
type WeeklyModel struct {
	Object        string  `gorm:"column:object;index"`
	Week          string  `gorm:"column:week"`
	PMILevel      float64 `gorm:"column:pmi_level"`
	RollingMean   float64 `gorm:"column:rolling_mean"`
	RollingStd    float64 `gorm:"column:rolling_std"`
	TotalRS       float64 `gorm:"column:total_rs"`
	UniqueSources float64 `gorm:"column:unique_sources"`
	Count         float64 `gorm:"column:count"`
	MarketStatus  string  `gorm:"column:market_status"`
}

// SQLSource reads the two tables from a SQLite database.
type SQLSource struct {
	db          *gorm.DB
	newsTable   string
	weeklyTable string
}

var _ interfaces.Source = (*SQLSource)(nil)

// OpenSQLite opens dsn and returns a source reading newsTable and weeklyTable.
func OpenSQLite(dsn, newsTable, weeklyTable string) (*SQLSource, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dsn, err)
	}
	return NewSQLSource(db, newsTable, weeklyTable), nil
}

// NewSQLSource wraps an already opened database.
func NewSQLSource(db *gorm.DB, newsTable, weeklyTable string) *SQLSource {
	return &SQLSource{db: db, newsTable: newsTable, weeklyTable: weeklyTable}
}

func (s *SQLSource) News(ctx context.Context) ([]types.NewsRecord, error) {
	if !s.db.Migrator().HasTable(s.newsTable) {
		return nil, fmt.Errorf("table %s: %w", s.newsTable, ErrMissingTable)
	}
	var rows []NewsModel
	if err := s.db.WithContext(ctx).Table(s.newsTable).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query %s: %w", s.newsTable, err)
	}

	out := make([]types.NewsRecord, 0, len(rows))
	for i, r := range rows {
		d, err := types.ParseDate(r.Date)
		if err == nil {
			err = errors.Join(
				checkFinite("pmi", r.PMI),
				checkFinite("confidence", r.Confidence),
				checkFinite("rs", r.RS),
				checkFinite("consensus_weight", r.ConsensusWeight),
			)
		}
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", s.newsTable, i+1, err)
		}
		out = append(out, types.NewsRecord{
			Date:            d,
			Object:          r.Object,
			Domain:          r.Domain,
			Label:           r.Label,
			Source:          r.Source,
			Title:           r.Title,
			PMI:             r.PMI,
			Confidence:      r.Confidence,
			RS:              r.RS,
			ConsensusWeight: r.ConsensusWeight,
		})
	}
	return out, nil
}

func (s *SQLSource) Weekly(ctx context.Context) ([]types.WeeklyStat, error) {
	if !s.db.Migrator().HasTable(s.weeklyTable) {
		return nil, fmt.Errorf("table %s: %w", s.weeklyTable, ErrMissingTable)
	}
	var rows []WeeklyModel
	if err := s.db.WithContext(ctx).Table(s.weeklyTable).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query %s: %w", s.weeklyTable, err)
	}

	out := make([]types.WeeklyStat, 0, len(rows))
	for i, r := range rows {
		w, err := types.ParseDate(r.Week)
		if err == nil {
			err = errors.Join(
				checkFinite("pmi_level", r.PMILevel),
				checkFinite("rolling_mean", r.RollingMean),
				checkFinite("rolling_std", r.RollingStd),
				checkFinite("total_rs", r.TotalRS),
			)
		}
		var uniqueSources, count int
		if err == nil {
			uniqueSources, err = toCount("unique_sources", r.UniqueSources)
		}
		if err == nil {
			count, err = toCount("count", r.Count)
		}
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", s.weeklyTable, i+1, err)
		}
		out = append(out, types.WeeklyStat{
			Object:        r.Object,
			Week:          w,
			PMILevel:      r.PMILevel,
			RollingMean:   r.RollingMean,
			RollingStd:    r.RollingStd,
			TotalRS:       r.TotalRS,
			UniqueSources: uniqueSources,
			Count:         count,
			MarketStatus:  r.MarketStatus,
		})
	}
	return out, nil
}
