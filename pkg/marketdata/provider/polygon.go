package provider

import (
	"context"
	"fmt"
	"time"

	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"
	"github.com/rxtech-lab/argo-rules/internal/types"
	"github.com/rxtech-lab/argo-rules/pkg/marketdata/writer"
)

// PolygonAggsIterator is the iterator returned by ListAggs.
type PolygonAggsIterator interface {
	Next() bool
	Item() models.Agg
	Err() error
}

// PolygonDividendsIterator is the iterator returned by ListDividends.
type PolygonDividendsIterator interface {
	Next() bool
	Item() models.Dividend
	Err() error
}

// PolygonAPIClient is the subset of the Polygon REST client used by PolygonClient.
type PolygonAPIClient interface {
	ListAggs(ctx context.Context, params *models.ListAggsParams, options ...models.RequestOption) PolygonAggsIterator
	ListDividends(ctx context.Context, params *models.ListDividendsParams, options ...models.RequestOption) PolygonDividendsIterator
}

type polygonRESTClient struct {
	client *polygon.Client
}

func (c *polygonRESTClient) ListAggs(ctx context.Context, params *models.ListAggsParams, options ...models.RequestOption) PolygonAggsIterator {
	return c.client.ListAggs(ctx, params, options...)
}

func (c *polygonRESTClient) ListDividends(ctx context.Context, params *models.ListDividendsParams, options ...models.RequestOption) PolygonDividendsIterator {
	return c.client.ListDividends(ctx, params, options...)
}

type PolygonClient struct {
	apiClient PolygonAPIClient
	writer    writer.SeriesWriter
}

func NewPolygonClient(apiKey string) (Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("apiKey is required")
	}

	return NewPolygonClientWithAPI(&polygonRESTClient{client: polygon.New(apiKey)}), nil
}

// NewPolygonClientWithAPI creates a PolygonClient on top of the given API client.
func NewPolygonClientWithAPI(apiClient PolygonAPIClient) *PolygonClient {
	return &PolygonClient{
		apiClient: apiClient,
		writer:    nil,
	}
}

func (c *PolygonClient) ConfigWriter(w writer.SeriesWriter) {
	c.writer = w
}

func (c *PolygonClient) Download(ctx context.Context, ticker string, startDate time.Time, endDate time.Time, onProgress OnDownloadProgress) (path string, err error) {
	if c.writer == nil {
		return "", fmt.Errorf("no writer configured for PolygonClient. Call ConfigWriter first")
	}

	err = c.writer.Initialize()
	if err != nil {
		return "", fmt.Errorf("failed to initialize writer: %w", err)
	}

	dividends, err := c.listDividends(ctx, ticker, startDate, endDate)
	if err != nil {
		return "", finalizeOnError(c.writer, err)
	}

	totalDays := endDate.Sub(startDate).Hours()/24 + 1

	//nolint:exhaustruct // third-party struct with many optional fields
	params := models.ListAggsParams{
		Ticker:     ticker,
		Multiplier: 1,
		Timespan:   models.Day,
		From:       models.Millis(startDate),
		To:         models.Millis(endDate),
	}.WithLimit(50000)

	iter := c.apiClient.ListAggs(ctx, params)

	processedCount := 0

	for iter.Next() {
		agg := iter.Item()
		day := types.Day(time.Time(agg.Timestamp).UTC())

		bar := types.Bar{
			Symbol:   ticker,
			Time:     day,
			Open:     agg.Open,
			High:     agg.High,
			Low:      agg.Low,
			Close:    agg.Close,
			AdjClose: agg.Close,
			Volume:   agg.Volume,
			Dividend: dividends[day],
		}

		if err := c.writer.Write(bar); err != nil {
			return "", finalizeOnError(c.writer, fmt.Errorf("failed to write data: %w", err))
		}

		processedCount++

		reportProgress(onProgress, day.Sub(startDate).Hours()/24, totalDays, fmt.Sprintf("Downloading %s", ticker))
	}

	if iter.Err() != nil {
		return "", finalizeOnError(c.writer, fmt.Errorf("error iterating polygon aggregates: %w", iter.Err()))
	}

	reportProgress(onProgress, totalDays, totalDays, fmt.Sprintf("Downloaded %d bars for %s", processedCount, ticker))

	outputPath, err := c.writer.Finalize()
	if err != nil {
		return "", fmt.Errorf("failed to finalize writer: %w", err)
	}

	return outputPath, nil
}

// listDividends returns the cash dividend per share keyed by ex-dividend day.
func (c *PolygonClient) listDividends(ctx context.Context, ticker string, startDate time.Time, endDate time.Time) (map[time.Time]float64, error) {
	params := models.ListDividendsParams{}.
		WithTicker(models.EQ, ticker).
		WithExDividendDate(models.GTE, models.Date(startDate)).
		WithExDividendDate(models.LTE, models.Date(endDate)).
		WithLimit(1000)

	dividends := make(map[time.Time]float64)

	iter := c.apiClient.ListDividends(ctx, params)
	for iter.Next() {
		dividend := iter.Item()
		if dividend.ExDividendDate == "" {
			continue
		}

		day, err := types.ParseDay(dividend.ExDividendDate)
		if err != nil {
			return nil, fmt.Errorf("invalid ex-dividend date for %s: %w", ticker, err)
		}

		dividends[day] += dividend.CashAmount
	}

	if iter.Err() != nil {
		return nil, fmt.Errorf("error iterating polygon dividends: %w", iter.Err())
	}

	return dividends, nil
}
