package dataset

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"newspulse/internal/store"
	"newspulse/internal/types"
)

func testdata(name string) string {
	return filepath.Join("testdata", name)
}

func TestCSVSourceLoadsTypedRecords(t *testing.T) {
	src := NewCSVSource(testdata("news.csv"), testdata("weekly.csv"))
	ctx := context.Background()

	news, err := src.News(ctx)
	require.NoError(t, err)
	require.Len(t, news, 5)
	assert.Equal(t, types.NewDate(2024, 1, 3), news[0].Date)
	assert.Equal(t, "Energy ministry drafts grid code, seeks comment", news[0].Title)
	assert.Equal(t, "Regulation", news[0].Domain)
	assert.InDelta(t, 0.82, news[0].Confidence, 1e-9)

	weekly, err := src.Weekly(ctx)
	require.NoError(t, err)
	require.Len(t, weekly, 4)
	assert.Equal(t, 3, weekly[0].UniqueSources)
	assert.Equal(t, 4, weekly[0].Count)
	assert.Equal(t, "Consolidating", weekly[0].MarketStatus)
}

func TestCSVSourceBadDateFailsWholeLoad(t *testing.T) {
	src := NewCSVSource(testdata("news_bad_date.csv"), testdata("weekly.csv"))
	news, err := src.News(context.Background())
	require.Error(t, err)
	assert.Nil(t, news)
}

func TestCSVSourceMissingColumn(t *testing.T) {
	src := NewCSVSource(testdata("news.csv"), testdata("weekly_missing_column.csv"))
	_, err := src.Weekly(context.Background())
	require.ErrorIs(t, err, ErrMissingColumn)
	assert.Contains(t, err.Error(), "rolling_std")
}

func TestCSVSourceRejectsBadNumericCells(t *testing.T) {
	tests := []struct {
		name   string
		file   string
		column string
		row    string
	}{
		{name: "blank rolling std", file: "weekly_blank_std.csv", column: "rolling_std", row: "row 1"},
		{name: "NaN pmi level", file: "weekly_nan.csv", column: "pmi_level", row: "row 2"},
		{name: "fractional count", file: "weekly_fractional_count.csv", column: "unique_sources", row: "row 1"},
		{name: "negative count", file: "weekly_negative_count.csv", column: "count", row: "row 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore(NewCSVSource(testdata("news.csv"), testdata(tt.file)))
			tables, err := s.Load(context.Background())
			assert.Nil(t, tables)

			var lerr *LoadError
			require.ErrorAs(t, err, &lerr)
			require.ErrorIs(t, err, ErrBadValue)
			assert.Contains(t, err.Error(), tt.file)
			assert.Contains(t, err.Error(), tt.row)
			assert.Contains(t, err.Error(), "column "+tt.column)
		})
	}
}

func TestCSVSourceStripsByteOrderMark(t *testing.T) {
	src := NewCSVSource(testdata("news.csv"), testdata("weekly_bom.csv"))
	weekly, err := src.Weekly(context.Background())
	require.NoError(t, err)
	require.Len(t, weekly, 4)
	assert.Equal(t, "Energy", weekly[0].Object)
}

func TestStoreLoadDerivesDeltas(t *testing.T) {
	s := NewStore(NewCSVSource(testdata("news.csv"), testdata("weekly.csv")))
	tables, err := s.Load(context.Background())
	require.NoError(t, err)

	require.Len(t, tables.Weekly, 4)
	energy := tables.Weekly[:3]
	assert.Equal(t, "2024-01-01", energy[0].Week.String())
	assert.InDelta(t, 0.0, energy[0].PMIDelta, 1e-9)
	assert.InDelta(t, 0.8, energy[1].PMIDelta, 1e-9)
	assert.InDelta(t, -0.3, energy[2].PMIDelta, 1e-9)
	assert.Equal(t, []string{"Energy", "Mining"}, tables.Sectors())
	assert.True(t, tables.HasSector("Mining"))
	assert.False(t, tables.HasSector("Fisheries"))
}

func TestStoreMissingFileIsLoadError(t *testing.T) {
	s := NewStore(NewCSVSource(testdata("absent.csv"), testdata("weekly.csv")))
	tables, err := s.Load(context.Background())
	assert.Nil(t, tables)

	var lerr *LoadError
	require.ErrorAs(t, err, &lerr)
	assert.Contains(t, err.Error(), "critical data error")
}

type countingSource struct {
	calls atomic.Int32
	err   error
}

func (c *countingSource) News(ctx context.Context) ([]types.NewsRecord, error) {
	c.calls.Add(1)
	if c.err != nil {
		return nil, c.err
	}
	return []types.NewsRecord{{Object: "Energy", Date: types.NewDate(2024, 1, 3)}}, nil
}

func (c *countingSource) Weekly(ctx context.Context) ([]types.WeeklyStat, error) {
	return []types.WeeklyStat{{Object: "Energy", Week: types.NewDate(2024, 1, 1)}}, nil
}

func TestStoreReadsSourceOnceUnderConcurrency(t *testing.T) {
	src := &countingSource{}
	s := NewStore(src)

	const callers = 16
	results := make([]*Tables, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tables, err := s.Load(context.Background())
			assert.NoError(t, err)
			results[i] = tables
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), src.calls.Load())
	for _, r := range results {
		assert.Same(t, results[0], r)
	}
}

func TestStoreMemoizesFailure(t *testing.T) {
	src := &countingSource{err: errors.New("disk gone")}
	s := NewStore(src)

	_, err1 := s.Load(context.Background())
	_, err2 := s.Load(context.Background())
	require.Error(t, err1)
	assert.Same(t, err1, err2)
	assert.Equal(t, int32(1), src.calls.Load())
}

func seedSQLite(t *testing.T) string {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "newspulse.db")
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)

	require.NoError(t, db.Table("classified_news").AutoMigrate(&NewsModel{}))
	require.NoError(t, db.Table("weekly_pmi_stats").AutoMigrate(&WeeklyModel{}))
	require.NoError(t, db.Table("classified_news").Create(&[]NewsModel{
		{Date: "2024-01-03", Object: "Energy", Domain: "Regulation", Label: "Discourse", Source: "Reuters", Title: "Grid code drafted", PMI: 2, Confidence: 0.8},
		{Date: "2024-01-09 10:30:00", Object: "Energy", Domain: "Regulation", Label: "Execution", Source: "Kompas", Title: "Grid code consultation", PMI: 3.5},
	}).Error)
	require.NoError(t, db.Table("weekly_pmi_stats").Create(&[]WeeklyModel{
		{Object: "Energy", Week: "2024-01-08", PMILevel: 2.8, RollingStd: 0.4, TotalRS: 3, UniqueSources: 2, Count: 2, MarketStatus: "Emerging"},
		{Object: "Energy", Week: "2024-01-01", PMILevel: 2.0, TotalRS: 4.5, UniqueSources: 1, Count: 1, MarketStatus: "Discourse"},
	}).Error)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())
	return dsn
}

func TestSQLiteSourceThroughStore(t *testing.T) {
	cfg := store.Default()
	cfg.Data.Source = "SQLITE"
	cfg.Data.SQLiteDSN = seedSQLite(t)

	s, err := NewStoreFromConfig(cfg)
	require.NoError(t, err)
	tables, err := s.Load(context.Background())
	require.NoError(t, err)

	require.Len(t, tables.News, 2)
	assert.Equal(t, types.NewDate(2024, 1, 9), tables.News[1].Date, "time of day is dropped")
	require.Len(t, tables.Weekly, 2)
	assert.Equal(t, "2024-01-01", tables.Weekly[0].Week.String())
	assert.InDelta(t, 0.8, tables.Weekly[1].PMIDelta, 1e-9)
	assert.Equal(t, 2, tables.Weekly[1].UniqueSources)
}

func TestSQLiteSourceRejectsNegativeCount(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "bad.db")), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.Table("classified_news").AutoMigrate(&NewsModel{}))
	require.NoError(t, db.Table("weekly_pmi_stats").AutoMigrate(&WeeklyModel{}))
	require.NoError(t, db.Table("weekly_pmi_stats").Create(&[]WeeklyModel{
		{Object: "Energy", Week: "2024-01-01", PMILevel: 2.0, UniqueSources: 1, Count: -1},
	}).Error)

	_, err = NewStore(NewSQLSource(db, "classified_news", "weekly_pmi_stats")).Load(context.Background())
	require.ErrorIs(t, err, ErrBadValue)
	assert.Contains(t, err.Error(), "weekly_pmi_stats row 1")
}

func TestSQLiteSourceMissingTable(t *testing.T) {
	src, err := OpenSQLite(filepath.Join(t.TempDir(), "empty.db"), "classified_news", "weekly_pmi_stats")
	require.NoError(t, err)

	_, err = NewStore(src).Load(context.Background())
	require.ErrorIs(t, err, ErrMissingTable)
}
