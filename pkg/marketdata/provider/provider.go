package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/rxtech-lab/argo-rules/pkg/marketdata/writer"
)

// ProviderType defines the type of market data provider.
type ProviderType string

const (
	ProviderPolygon ProviderType = "polygon"
	ProviderBinance ProviderType = "binance"
	ProviderCSV     ProviderType = "csv"
)

type OnDownloadProgress = func(current float64, total float64, message string)

// Provider downloads the daily history of a symbol.
type Provider interface {
	// ConfigWriter configures the writer for the provider
	// Writer is used to persist the downloaded bars.
	ConfigWriter(writer writer.SeriesWriter)
	// Download downloads the daily bars, dividends included, for the given ticker and date range.
	// The context can be used to cancel the download operation.
	// example:
	// Download(ctx, "SPY", time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2020, 12, 31, 0, 0, 0, 0, time.UTC), onProgress)
	Download(ctx context.Context, ticker string, startDate time.Time, endDate time.Time, onProgress OnDownloadProgress) (path string, err error)
}

// NewMarketDataProvider creates a new market data provider based on the provider type.
// Polygon expects its API key and CSV its data directory as config.
func NewMarketDataProvider(providerType ProviderType, config any) (Provider, error) {
	switch providerType {
	case ProviderBinance:
		return NewBinanceClient()
	case ProviderPolygon:
		apiKey, ok := config.(string)
		if !ok {
			return nil, fmt.Errorf("polygon provider requires API key string config")
		}

		return NewPolygonClient(apiKey)
	case ProviderCSV:
		dir, ok := config.(string)
		if !ok {
			return nil, fmt.Errorf("csv provider requires a directory string config")
		}

		return NewCSVProvider(dir)
	default:
		return nil, fmt.Errorf("unsupported market data provider: %s", providerType)
	}
}

func reportProgress(onProgress OnDownloadProgress, current float64, total float64, message string) {
	if onProgress != nil {
		onProgress(current, total, message)
	}
}

// finalizeOnError finalizes the writer after a failed download so partial
// data is not left in an open transaction.
func finalizeOnError(w writer.SeriesWriter, err error) error {
	if _, finalizeErr := w.Finalize(); finalizeErr != nil {
		return fmt.Errorf("%w; also failed to finalize writer: %v", err, finalizeErr)
	}

	return err
}
