package dataset

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/gocarina/gocsv"

	"newspulse/internal/interfaces"
	"newspulse/internal/types"
)

// CSVSource reads the two tables from delimited files.
type CSVSource struct {
	NewsPath   string
	WeeklyPath string
}

var _ interfaces.Source = (*CSVSource)(nil)

// NewCSVSource creates a source over the given files
func NewCSVSource(newsPath, weeklyPath string) *CSVSource {
	return &CSVSource{NewsPath: newsPath, WeeklyPath: weeklyPath}
}

func (s *CSVSource) News(ctx context.Context) ([]types.NewsRecord, error) {
	var rows []*newsRow
	if err := decodeFile(ctx, s.NewsPath, NewsColumns, &rows); err != nil {
		return nil, err
	}
	out := make([]types.NewsRecord, 0, len(rows))
	for i, r := range rows {
		rec, err := r.record()
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", s.NewsPath, i+1, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *CSVSource) Weekly(ctx context.Context) ([]types.WeeklyStat, error) {
	var rows []*weeklyRow
	if err := decodeFile(ctx, s.WeeklyPath, WeeklyColumns, &rows); err != nil {
		return nil, err
	}
	out := make([]types.WeeklyStat, 0, len(rows))
	for i, r := range rows {
		w, err := r.stat()
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", s.WeeklyPath, i+1, err)
		}
		out = append(out, w)
	}
	return out, nil
}

var utf8BOM = []byte("\xef\xbb\xbf")

// decodeFile reads path, checks the header carries every required column, then
// decodes all rows into out. Any bad row fails the whole file.
func decodeFile(ctx context.Context, path string, required []string, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	// Spreadsheet exports often lead with a UTF-8 byte order mark.
	b = bytes.TrimPrefix(b, utf8BOM)
	if err := checkHeader(b, required); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := gocsv.UnmarshalBytes(b, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func checkHeader(b []byte, required []string) error {
	header, err := csv.NewReader(bytes.NewReader(b)).Read()
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[strings.TrimSpace(h)] = true
	}
	var missing []string
	for _, col := range required {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return nil
}
