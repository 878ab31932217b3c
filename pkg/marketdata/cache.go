package marketdata

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/argo-rules/internal/logger"
	"github.com/rxtech-lab/argo-rules/internal/types"
	"github.com/rxtech-lab/argo-rules/pkg/errors"
	"github.com/rxtech-lab/argo-rules/pkg/marketdata/provider"
	"github.com/rxtech-lab/argo-rules/pkg/marketdata/writer"
	"go.uber.org/zap"
)

// DefaultHistoryStart is the first day requested when a symbol is downloaded.
var DefaultHistoryStart = time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)

// CacheConfig holds the configuration of the on-disk series cache.
type CacheConfig struct {
	ProviderType  provider.ProviderType `yaml:"provider" json:"provider" jsonschema:"title=Provider,description=Market data provider used to fill the cache,enum=polygon,enum=binance,enum=csv" validate:"required,oneof=polygon binance csv"`
	CacheDir      string                `yaml:"cache_dir" json:"cache_dir" jsonschema:"title=Cache Directory,description=Directory holding one parquet file per symbol" validate:"required"`
	PolygonApiKey string                `yaml:"polygon_api_key,omitempty" json:"polygon_api_key,omitempty" jsonschema:"title=Polygon API Key" validate:"required_if=ProviderType polygon"`
	CSVDir        string                `yaml:"csv_dir,omitempty" json:"csv_dir,omitempty" jsonschema:"title=CSV Directory,description=Directory holding <SYMBOL>.csv daily exports" validate:"required_if=ProviderType csv"`
	HistoryStart  time.Time             `yaml:"history_start,omitempty" json:"history_start,omitempty" jsonschema:"title=History Start,description=First day downloaded for a symbol"`
}

// CacheOption configures a SeriesCache.
type CacheOption func(*SeriesCache)

// WithProvider replaces the provider built from the configuration.
func WithProvider(p provider.Provider) CacheOption {
	return func(c *SeriesCache) {
		c.provider = p
	}
}

func WithLogger(log *logger.Logger) CacheOption {
	return func(c *SeriesCache) {
		c.logger = log
	}
}

// WithProgress reports download progress of cache misses.
func WithProgress(onProgress provider.OnDownloadProgress) CacheOption {
	return func(c *SeriesCache) {
		c.onProgress = onProgress
	}
}

// WithClock sets the clock used as the end of a download.
func WithClock(clock func() time.Time) CacheOption {
	return func(c *SeriesCache) {
		c.clock = clock
	}
}

// SeriesCache serves daily series from <CacheDir>/<SYMBOL>.parquet files,
// downloading a symbol through its provider the first time it is requested.
// Loaded series are memoized for the lifetime of the cache.
type SeriesCache struct {
	config     CacheConfig
	provider   provider.Provider
	logger     *logger.Logger
	onProgress provider.OnDownloadProgress
	clock      func() time.Time
	memo       map[string]types.Series
}

var _ SeriesProvider = (*SeriesCache)(nil)

// NewSeriesCache validates the configuration, creates the cache directory
// and builds the configured provider.
func NewSeriesCache(config CacheConfig, opts ...CacheOption) (*SeriesCache, error) {
	validate := validator.New()
	if err := validate.Struct(config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid cache configuration", err)
	}

	if config.HistoryStart.IsZero() {
		config.HistoryStart = DefaultHistoryStart
	}

	cache := &SeriesCache{
		config:     config,
		provider:   nil,
		logger:     logger.NewNopLogger(),
		onProgress: nil,
		clock:      time.Now,
		memo:       make(map[string]types.Series),
	}

	for _, opt := range opts {
		opt(cache)
	}

	if cache.provider == nil {
		p, err := provider.NewMarketDataProvider(config.ProviderType, providerConfig(config))
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidProvider, "failed to create market data provider", err)
		}

		cache.provider = p
	}

	if err := os.MkdirAll(config.CacheDir, 0755); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeCacheWriteFailed, err, "failed to create cache directory %s", config.CacheDir)
	}

	return cache, nil
}

func providerConfig(config CacheConfig) any {
	switch config.ProviderType {
	case provider.ProviderPolygon:
		return config.PolygonApiKey
	case provider.ProviderCSV:
		return config.CSVDir
	default:
		return nil
	}
}

// Path returns the cache file of a symbol.
func (c *SeriesCache) Path(symbol string) string {
	return filepath.Join(c.config.CacheDir, NormalizeSymbol(symbol)+".parquet")
}

// Cached reports whether a symbol already has a cache file.
func (c *SeriesCache) Cached(symbol string) bool {
	_, err := os.Stat(c.Path(symbol))

	return err == nil
}

// GetSeries returns the daily history of a symbol, downloading it on a cache miss.
func (c *SeriesCache) GetSeries(ctx context.Context, symbol string) (types.Series, error) {
	sym := NormalizeSymbol(symbol)
	if sym == "" {
		return types.Series{}, errors.New(errors.ErrCodeInvalidParameter, "symbol is required")
	}

	if series, ok := c.memo[sym]; ok {
		return series, nil
	}

	path := c.Path(sym)
	if !c.Cached(sym) {
		if err := c.download(ctx, sym, path); err != nil {
			return types.Series{}, err
		}
	}

	bars, err := ReadBars(ctx, path)
	if err != nil {
		return types.Series{}, err
	}

	if len(bars) == 0 {
		return types.Series{}, errors.Newf(errors.ErrCodeDataNotFound, "no data for %s", sym)
	}

	series := types.NewSeries(sym, bars)
	c.memo[sym] = series

	c.logger.Debug("Loaded series",
		zap.String("symbol", sym),
		zap.Int("bars", series.Len()),
		zap.String("path", path),
	)

	return series, nil
}

// Refresh downloads a symbol again, replacing its cache file and memo entry.
func (c *SeriesCache) Refresh(ctx context.Context, symbol string) (types.Series, error) {
	sym := NormalizeSymbol(symbol)
	if sym == "" {
		return types.Series{}, errors.New(errors.ErrCodeInvalidParameter, "symbol is required")
	}

	delete(c.memo, sym)

	if err := os.Remove(c.Path(sym)); err != nil && !os.IsNotExist(err) {
		return types.Series{}, errors.Wrapf(errors.ErrCodeCacheWriteFailed, err, "failed to remove cache file for %s", sym)
	}

	return c.GetSeries(ctx, sym)
}

// JoinSeries aligns one field of the given symbols by calendar day. Columns
// are named by the normalized symbol and keep the requested order.
func (c *SeriesCache) JoinSeries(ctx context.Context, symbols []string, field types.Field) (*types.Table, error) {
	series := make([]types.Series, 0, len(symbols))
	seen := make(map[string]struct{}, len(symbols))

	for _, symbol := range symbols {
		sym := NormalizeSymbol(symbol)
		if _, ok := seen[sym]; ok {
			continue
		}

		seen[sym] = struct{}{}

		s, err := c.GetSeries(ctx, sym)
		if err != nil {
			return nil, err
		}

		series = append(series, s)
	}

	return types.JoinSeries(field, series...), nil
}

// LastPrice returns the most recent close of a symbol.
func (c *SeriesCache) LastPrice(ctx context.Context, symbol string) (float64, error) {
	series, err := c.GetSeries(ctx, symbol)
	if err != nil {
		return 0, err
	}

	last, ok := series.Last()
	if !ok {
		return 0, errors.Newf(errors.ErrCodeDataNotFound, "no data for %s", series.Symbol)
	}

	return last.Close, nil
}

func (c *SeriesCache) download(ctx context.Context, symbol string, path string) error {
	start := c.config.HistoryStart
	end := types.Day(c.clock())

	c.logger.Info("Downloading series",
		zap.String("symbol", symbol),
		zap.String("provider", string(c.config.ProviderType)),
		zap.Time("start", start),
		zap.Time("end", end),
	)

	seriesWriter := writer.NewDuckDBWriter(path)
	defer func() {
		if err := seriesWriter.Close(); err != nil {
			c.logger.Warn("Failed to close writer", zap.String("symbol", symbol), zap.Error(err))
		}
	}()

	c.provider.ConfigWriter(seriesWriter)

	if _, err := c.provider.Download(ctx, symbol, start, end, c.onProgress); err != nil {
		// a failed download may still have flushed a partial file
		if removeErr := os.Remove(path); removeErr != nil && !os.IsNotExist(removeErr) {
			c.logger.Warn("Failed to remove partial cache file", zap.String("path", path), zap.Error(removeErr))
		}

		return errors.Wrap(errors.ErrCodeMarketDataFetchFailed, fmt.Sprintf("failed to download %s", symbol), err)
	}

	return nil
}
