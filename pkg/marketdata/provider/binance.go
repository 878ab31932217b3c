package provider

import (
	"context"
	"fmt"
	"strconv"
	"time"

	binance "github.com/adshao/go-binance/v2"
	"github.com/rxtech-lab/argo-rules/internal/types"
	"github.com/rxtech-lab/argo-rules/pkg/marketdata/writer"
)

// binancePageSize is the number of klines returned by one request.
const binancePageSize = 500

// BinanceKlinesService is the subset of the klines service used by BinanceClient.
type BinanceKlinesService interface {
	Symbol(symbol string) BinanceKlinesService
	Interval(interval string) BinanceKlinesService
	StartTime(startTime int64) BinanceKlinesService
	EndTime(endTime int64) BinanceKlinesService
	Do(ctx context.Context) ([]*binance.Kline, error)
}

// BinanceAPIClient is the subset of the Binance client used by BinanceClient.
type BinanceAPIClient interface {
	NewKlinesService() BinanceKlinesService
}

type binanceRESTClient struct {
	client *binance.Client
}

func (c *binanceRESTClient) NewKlinesService() BinanceKlinesService {
	return &binanceKlinesService{service: c.client.NewKlinesService()}
}

type binanceKlinesService struct {
	service *binance.KlinesService
}

func (s *binanceKlinesService) Symbol(symbol string) BinanceKlinesService {
	s.service = s.service.Symbol(symbol)

	return s
}

func (s *binanceKlinesService) Interval(interval string) BinanceKlinesService {
	s.service = s.service.Interval(interval)

	return s
}

func (s *binanceKlinesService) StartTime(startTime int64) BinanceKlinesService {
	s.service = s.service.StartTime(startTime)

	return s
}

func (s *binanceKlinesService) EndTime(endTime int64) BinanceKlinesService {
	s.service = s.service.EndTime(endTime)

	return s
}

func (s *binanceKlinesService) Do(ctx context.Context) ([]*binance.Kline, error) {
	return s.service.Do(ctx)
}

// BinanceClient downloads daily klines. Crypto pairs pay no dividends.
type BinanceClient struct {
	apiClient BinanceAPIClient
	writer    writer.SeriesWriter
}

func NewBinanceClient() (Provider, error) {
	return NewBinanceClientWithAPI(&binanceRESTClient{client: binance.NewClient("", "")}), nil
}

// NewBinanceClientWithAPI creates a BinanceClient on top of the given API client.
func NewBinanceClientWithAPI(apiClient BinanceAPIClient) *BinanceClient {
	return &BinanceClient{
		apiClient: apiClient,
		writer:    nil,
	}
}

func (c *BinanceClient) ConfigWriter(w writer.SeriesWriter) {
	c.writer = w
}

// Download downloads the daily klines for the given ticker and date range from Binance.
func (c *BinanceClient) Download(ctx context.Context, ticker string, startDate time.Time, endDate time.Time, onProgress OnDownloadProgress) (path string, err error) {
	if c.writer == nil {
		return "", fmt.Errorf("writer is not configured")
	}

	err = c.writer.Initialize()
	if err != nil {
		return "", fmt.Errorf("failed to initialize writer: %w", err)
	}

	startTimeMillis := startDate.UnixMilli()
	endTimeMillis := endDate.UnixMilli()
	currentStartTime := startTimeMillis

	for {
		if ctx.Err() != nil {
			return "", finalizeOnError(c.writer, ctx.Err())
		}

		klines, err := c.apiClient.NewKlinesService().
			Symbol(ticker).
			Interval("1d").
			StartTime(currentStartTime).
			EndTime(endTimeMillis).
			Do(ctx)
		if err != nil {
			return "", finalizeOnError(c.writer, fmt.Errorf("failed to fetch klines from Binance: %w", err))
		}

		reportProgress(onProgress, float64(currentStartTime-startTimeMillis), float64(endTimeMillis-startTimeMillis),
			fmt.Sprintf("Downloading %s klines from Binance", ticker))

		if err := processKlines(c.writer, ticker, klines); err != nil {
			return "", finalizeOnError(c.writer, fmt.Errorf("failed to process klines: %w", err))
		}

		if len(klines) < binancePageSize {
			break
		}

		// Continue after the close of the last kline to avoid duplicates
		currentStartTime = klines[len(klines)-1].CloseTime + 1
		if currentStartTime >= endTimeMillis {
			break
		}
	}

	outputPath, err := c.writer.Finalize()
	if err != nil {
		return "", fmt.Errorf("failed to finalize writer: %w", err)
	}

	return outputPath, nil
}

// processKlines converts Binance klines to daily bars and writes them.
func processKlines(w writer.SeriesWriter, ticker string, klines []*binance.Kline) error {
	for _, k := range klines {
		open, err := strconv.ParseFloat(k.Open, 64)
		if err != nil {
			return fmt.Errorf("invalid open %q: %w", k.Open, err)
		}

		high, err := strconv.ParseFloat(k.High, 64)
		if err != nil {
			return fmt.Errorf("invalid high %q: %w", k.High, err)
		}

		low, err := strconv.ParseFloat(k.Low, 64)
		if err != nil {
			return fmt.Errorf("invalid low %q: %w", k.Low, err)
		}

		closePrice, err := strconv.ParseFloat(k.Close, 64)
		if err != nil {
			return fmt.Errorf("invalid close %q: %w", k.Close, err)
		}

		volume, err := strconv.ParseFloat(k.Volume, 64)
		if err != nil {
			return fmt.Errorf("invalid volume %q: %w", k.Volume, err)
		}

		bar := types.Bar{
			Symbol:   ticker,
			Time:     types.Day(time.UnixMilli(k.OpenTime).UTC()),
			Open:     open,
			High:     high,
			Low:      low,
			Close:    closePrice,
			AdjClose: closePrice,
			Volume:   volume,
		}

		if err := w.Write(bar); err != nil {
			return fmt.Errorf("failed to write bar: %w", err)
		}
	}

	return nil
}
