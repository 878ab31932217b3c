package marketdata

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rxtech-lab/argo-rules/internal/types"
	"github.com/rxtech-lab/argo-rules/mocks"
	argoErrors "github.com/rxtech-lab/argo-rules/pkg/errors"
	"github.com/rxtech-lab/argo-rules/pkg/marketdata/provider"
	"github.com/rxtech-lab/argo-rules/pkg/marketdata/writer"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type SeriesCacheTestSuite struct {
	suite.Suite
	ctrl         *gomock.Controller
	mockProvider *mocks.MockProvider
	cacheDir     string
	now          time.Time
}

func TestSeriesCacheSuite(t *testing.T) {
	suite.Run(t, new(SeriesCacheTestSuite))
}

func (suite *SeriesCacheTestSuite) SetupTest() {
	suite.ctrl = gomock.NewController(suite.T())
	suite.mockProvider = mocks.NewMockProvider(suite.ctrl)
	suite.cacheDir = filepath.Join(suite.T().TempDir(), "cache")
	suite.now = time.Date(2024, 6, 3, 15, 30, 0, 0, time.UTC)
}

func (suite *SeriesCacheTestSuite) TearDownTest() {
	suite.ctrl.Finish()
}

func (suite *SeriesCacheTestSuite) newCache() *SeriesCache {
	cache, err := NewSeriesCache(CacheConfig{
		ProviderType: provider.ProviderCSV,
		CacheDir:     suite.cacheDir,
		CSVDir:       "unused",
	},
		WithProvider(suite.mockProvider),
		WithClock(func() time.Time { return suite.now }),
	)
	suite.Require().NoError(err)

	return cache
}

func bar(symbol string, day string, closePrice float64, dividend float64) types.Bar {
	return types.Bar{
		Symbol:   symbol,
		Time:     types.MustParseDay(day),
		Open:     closePrice,
		High:     closePrice,
		Low:      closePrice,
		Close:    closePrice,
		AdjClose: closePrice,
		Volume:   100,
		Dividend: dividend,
	}
}

// expectDownload makes the mock provider write bars through the writer the
// cache configured.
func (suite *SeriesCacheTestSuite) expectDownload(symbol string, bars ...types.Bar) {
	var configured writer.SeriesWriter

	suite.mockProvider.EXPECT().
		ConfigWriter(gomock.Any()).
		Do(func(w writer.SeriesWriter) { configured = w }).
		Times(1)

	suite.mockProvider.EXPECT().
		Download(gomock.Any(), symbol, DefaultHistoryStart, types.Day(suite.now), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, _ time.Time, _ time.Time, _ provider.OnDownloadProgress) (string, error) {
			if err := configured.Initialize(); err != nil {
				return "", err
			}

			for _, b := range bars {
				if err := configured.Write(b); err != nil {
					return "", err
				}
			}

			return configured.Finalize()
		}).
		Times(1)
}

func (suite *SeriesCacheTestSuite) TestNewSeriesCacheValidation() {
	tests := []struct {
		name        string
		config      CacheConfig
		expectError bool
	}{
		{name: "csv", config: CacheConfig{ProviderType: provider.ProviderCSV, CacheDir: suite.cacheDir, CSVDir: "data"}},
		{name: "binance", config: CacheConfig{ProviderType: provider.ProviderBinance, CacheDir: suite.cacheDir}},
		{name: "polygon", config: CacheConfig{ProviderType: provider.ProviderPolygon, CacheDir: suite.cacheDir, PolygonApiKey: "key"}},
		{name: "polygon without key", config: CacheConfig{ProviderType: provider.ProviderPolygon, CacheDir: suite.cacheDir}, expectError: true},
		{name: "csv without directory", config: CacheConfig{ProviderType: provider.ProviderCSV, CacheDir: suite.cacheDir}, expectError: true},
		{name: "missing cache dir", config: CacheConfig{ProviderType: provider.ProviderBinance}, expectError: true},
		{name: "unknown provider", config: CacheConfig{ProviderType: "yahoo", CacheDir: suite.cacheDir}, expectError: true},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			cache, err := NewSeriesCache(tc.config)
			if tc.expectError {
				suite.Error(err)
				suite.True(argoErrors.HasCode(err, argoErrors.ErrCodeInvalidConfiguration))
				suite.Nil(cache)

				return
			}

			suite.NoError(err)
			suite.NotNil(cache)
			suite.True(cache.config.HistoryStart.Equal(DefaultHistoryStart))

			info, statErr := os.Stat(suite.cacheDir)
			suite.NoError(statErr)
			suite.True(info.IsDir())
		})
	}
}

func (suite *SeriesCacheTestSuite) TestGetSeriesDownloadsOnce() {
	suite.expectDownload("SPY",
		bar("SPY", "2020-01-03", 101, 0),
		bar("SPY", "2020-01-02", 100, 0),
		bar("SPY", "2020-01-06", 102, 1.5),
	)

	cache := suite.newCache()

	series, err := cache.GetSeries(context.Background(), " spy ")
	suite.Require().NoError(err)
	suite.Equal("SPY", series.Symbol)
	suite.Equal(3, series.Len())

	first, ok := series.First()
	suite.True(ok)
	suite.True(first.Time.Equal(types.MustParseDay("2020-01-02")))

	last, ok := series.Last()
	suite.True(ok)
	suite.Equal(1.5, last.Dividend)

	suite.FileExists(filepath.Join(suite.cacheDir, "SPY.parquet"))
	suite.True(cache.Cached("spy"))

	// memoized
	again, err := cache.GetSeries(context.Background(), "SPY")
	suite.Require().NoError(err)
	suite.Equal(series, again)

	// a new cache on the same directory reads the parquet file
	reopened := suite.newCache()
	fromDisk, err := reopened.GetSeries(context.Background(), "SPY")
	suite.Require().NoError(err)
	suite.Equal(3, fromDisk.Len())
}

func (suite *SeriesCacheTestSuite) TestGetSeriesErrors() {
	suite.Run("empty symbol", func() {
		_, err := suite.newCache().GetSeries(context.Background(), "  ")
		suite.True(argoErrors.HasCode(err, argoErrors.ErrCodeInvalidParameter))
	})

	suite.Run("download failure leaves no cache file", func() {
		suite.mockProvider.EXPECT().ConfigWriter(gomock.Any()).Times(1)
		suite.mockProvider.EXPECT().
			Download(gomock.Any(), "QQQ", gomock.Any(), gomock.Any(), gomock.Any()).
			Return("", errors.New("network down")).
			Times(1)

		cache := suite.newCache()
		_, err := cache.GetSeries(context.Background(), "qqq")
		suite.True(argoErrors.HasCode(err, argoErrors.ErrCodeMarketDataFetchFailed))
		suite.ErrorContains(err, "network down")
		suite.False(cache.Cached("QQQ"))
	})

	suite.Run("empty download", func() {
		suite.expectDownload("IWM")

		_, err := suite.newCache().GetSeries(context.Background(), "IWM")
		suite.True(argoErrors.HasCode(err, argoErrors.ErrCodeDataNotFound))
	})
}

func (suite *SeriesCacheTestSuite) TestJoinSeries() {
	suite.expectDownload("SPY",
		bar("SPY", "2020-01-02", 100, 0),
		bar("SPY", "2020-01-03", 101, 0.5),
	)
	suite.expectDownload("BND",
		bar("BND", "2020-01-03", 80, 0),
		bar("BND", "2020-01-06", 81, 0),
	)

	cache := suite.newCache()

	table, err := cache.JoinSeries(context.Background(), []string{"spy", "BND", "SPY"}, types.FieldClose)
	suite.Require().NoError(err)
	suite.Equal([]string{"SPY", "BND"}, table.Symbols)
	suite.Equal(3, table.Len())

	v, ok := table.Value(types.MustParseDay("2020-01-02"), "SPY")
	suite.True(ok)
	suite.Equal(100.0, v)

	_, ok = table.Value(types.MustParseDay("2020-01-02"), "BND")
	suite.False(ok)

	dividends, err := cache.JoinSeries(context.Background(), []string{"SPY"}, types.FieldDividend)
	suite.Require().NoError(err)

	d, ok := dividends.Value(types.MustParseDay("2020-01-03"), "SPY")
	suite.True(ok)
	suite.Equal(0.5, d)
}

func (suite *SeriesCacheTestSuite) TestLastPriceAndRefresh() {
	suite.expectDownload("SPY", bar("SPY", "2020-01-02", 100, 0), bar("SPY", "2020-01-03", 101, 0))

	cache := suite.newCache()

	price, err := cache.LastPrice(context.Background(), "SPY")
	suite.Require().NoError(err)
	suite.Equal(101.0, price)

	suite.expectDownload("SPY", bar("SPY", "2020-01-02", 100, 0), bar("SPY", "2020-01-06", 105, 0))

	series, err := cache.Refresh(context.Background(), "spy")
	suite.Require().NoError(err)
	suite.Equal(2, series.Len())

	price, err = cache.LastPrice(context.Background(), "SPY")
	suite.Require().NoError(err)
	suite.Equal(105.0, price)
}

func (suite *SeriesCacheTestSuite) TestCSVProviderEndToEnd() {
	csvDir := suite.T().TempDir()
	content := "Date,Open,High,Low,Close,Adj Close,Volume,Dividends\n" +
		"2020-01-02,100,101,99,100.5,100.5,1000,0\n" +
		"2020-01-03,100.5,102,100,101,101,1100,0.25\n"
	suite.Require().NoError(os.WriteFile(filepath.Join(csvDir, "SPY.csv"), []byte(content), 0644))

	cache, err := NewSeriesCache(CacheConfig{
		ProviderType: provider.ProviderCSV,
		CacheDir:     suite.cacheDir,
		CSVDir:       csvDir,
	}, WithClock(func() time.Time { return suite.now }))
	suite.Require().NoError(err)

	series, err := cache.GetSeries(context.Background(), "SPY")
	suite.Require().NoError(err)
	suite.Equal(2, series.Len())

	b, ok := series.At(types.MustParseDay("2020-01-03"))
	suite.True(ok)
	suite.Equal(101.0, b.Close)
	suite.Equal(0.25, b.Dividend)
}
