package provider

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/rxtech-lab/argo-rules/internal/types"
	"github.com/rxtech-lab/argo-rules/pkg/marketdata/writer"
)

var csvDateLayouts = []string{
	types.DateFormat,
	time.RFC3339,
	"2006-01-02 15:04:05-07:00",
	"2006-01-02 15:04:05",
}

// csvDate parses the Date column of daily exports.
type csvDate struct {
	time.Time
}

func (d *csvDate) UnmarshalCSV(value string) error {
	value = strings.TrimSpace(value)

	for _, layout := range csvDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			d.Time = types.Day(t)

			return nil
		}
	}

	return fmt.Errorf("unrecognized date %q", value)
}

// csvRow follows the column names of a Yahoo Finance daily export.
type csvRow struct {
	Date      csvDate `csv:"Date"`
	Open      float64 `csv:"Open"`
	High      float64 `csv:"High"`
	Low       float64 `csv:"Low"`
	Close     float64 `csv:"Close"`
	AdjClose  float64 `csv:"Adj Close"`
	Volume    float64 `csv:"Volume"`
	Dividends float64 `csv:"Dividends"`
}

// CSVProvider reads daily bars from <dir>/<TICKER>.csv files.
type CSVProvider struct {
	dir    string
	writer writer.SeriesWriter
}

func NewCSVProvider(dir string) (Provider, error) {
	if dir == "" {
		return nil, fmt.Errorf("csv directory is required")
	}

	return &CSVProvider{dir: dir}, nil
}

func (p *CSVProvider) ConfigWriter(w writer.SeriesWriter) {
	p.writer = w
}

func (p *CSVProvider) Download(ctx context.Context, ticker string, startDate time.Time, endDate time.Time, onProgress OnDownloadProgress) (path string, err error) {
	if p.writer == nil {
		return "", fmt.Errorf("no writer configured for CSVProvider. Call ConfigWriter first")
	}

	rows, err := p.readRows(ticker)
	if err != nil {
		return "", err
	}

	err = p.writer.Initialize()
	if err != nil {
		return "", fmt.Errorf("failed to initialize writer: %w", err)
	}

	for i, row := range rows {
		if ctx.Err() != nil {
			return "", finalizeOnError(p.writer, ctx.Err())
		}

		if row.Date.Before(types.Day(startDate)) || row.Date.After(types.Day(endDate)) {
			continue
		}

		adjClose := row.AdjClose
		if adjClose == 0 {
			adjClose = row.Close
		}

		bar := types.Bar{
			Symbol:   ticker,
			Time:     row.Date.Time,
			Open:     row.Open,
			High:     row.High,
			Low:      row.Low,
			Close:    row.Close,
			AdjClose: adjClose,
			Volume:   row.Volume,
			Dividend: row.Dividends,
		}

		if err := p.writer.Write(bar); err != nil {
			return "", finalizeOnError(p.writer, fmt.Errorf("failed to write data: %w", err))
		}

		reportProgress(onProgress, float64(i+1), float64(len(rows)), fmt.Sprintf("Reading %s", ticker))
	}

	outputPath, err := p.writer.Finalize()
	if err != nil {
		return "", fmt.Errorf("failed to finalize writer: %w", err)
	}

	return outputPath, nil
}

func (p *CSVProvider) readRows(ticker string) ([]*csvRow, error) {
	filePath := filepath.Join(p.dir, ticker+".csv")

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", filePath, err)
	}
	defer file.Close()

	var rows []*csvRow
	if err := gocsv.UnmarshalFile(file, &rows); err != nil {
		return nil, fmt.Errorf("failed to read CSV %s: %w", filePath, err)
	}

	return rows, nil
}
